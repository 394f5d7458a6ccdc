package meta

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/searchkit/internal/worker"
	"github.com/operator-framework/searchkit/pkg/search"
)

// Restart is restart based search. Every round runs the inner engine
// until the failure limit given by the cutoff sequence is exceeded. The
// master space then receives the nogoods of the round and a clone of it
// becomes the root of the next round.
type Restart struct {
	log    logrus.FieldLogger
	tracer search.Tracer
	inner  Inner
	stop   *RestartStop
	user   search.Stop
	cutoff search.Cutoff
	limit  uint64

	optimize bool
	master   search.Space
	last     search.Space
	// pending is set after a solution was returned; the master is
	// updated on the next call to Next.
	pending  bool
	complete bool
	// sslr counts the solutions since the last restart.
	sslr uint64

	stats   search.Statistics
	stopped bool
	done    bool
}

// NewRestart returns a restart engine for root whose rounds are run by
// the engine returned by build. If optimize is set the inner engine must
// accept Constrain, and every solution restarts the search from a master
// constrained by it.
func NewRestart(root search.Space, opts *search.Options, build Builder, optimize bool) (*Restart, error) {
	r := &Restart{
		log:      opts.Logger,
		tracer:   opts.Tracer,
		optimize: optimize,
		user:     opts.StopCondition(),
		cutoff:   opts.Cutoff,
		complete: true,
	}
	r.stop = NewRestartStop(r.user)
	if root == nil || root.Status() == search.StatusFailed {
		r.done = true
		r.stats.Fail++
		return r, nil
	}
	if opts.Clone {
		r.master = root.Clone()
	} else {
		r.master = root
	}
	s := r.master.Clone()
	r.complete = slave(s, search.MetaInfo{Asset: -1})

	inner, err := build(s, opts)
	if err != nil {
		return nil, fmt.Errorf("building restart engine: %w", err)
	}
	inner.SetStop(r.stop)
	r.inner = inner
	r.limit = r.cutoff.Next()
	r.log.WithField("cutoff", r.cutoff.String()).Debug("created engine")
	return r, nil
}

// updateMaster hands mi to the master. Unless the master implements
// search.Master it receives the nogoods and, when optimizing, is
// constrained by the last solution. It returns whether a restart is
// required.
func (r *Restart) updateMaster(mi search.MetaInfo) bool {
	if m, ok := r.master.(search.Master); ok {
		r.stats.NoGood += uint64(mi.NoGoods.Len())
		return m.Master(mi)
	}
	restart := false
	if r.optimize && mi.Last != nil && mi.Solution > 0 {
		if c, ok := r.master.(search.Constrainer); ok {
			c.Constrain(mi.Last)
			restart = true
		}
	}
	if p, ok := r.master.(search.NoGoodPoster); ok && !mi.NoGoods.Empty() {
		p.PostNoGoods(mi.NoGoods)
		r.stats.NoGood += uint64(mi.NoGoods.Len())
	}
	return restart
}

// reset starts a new round from a clone of the master.
func (r *Restart) reset(mi search.MetaInfo) {
	s := r.master
	r.master = s.Clone()
	r.complete = slave(s, mi)
	r.inner.Reset(s)
	r.stats.Restart++
	r.sslr = 0
	r.tracer.Trace(search.TraceEvent{Kind: search.TraceRestart, Node: r.Statistics().Node})
	r.log.WithFields(logrus.Fields{
		"restart": r.stats.Restart,
		"limit":   r.limit,
	}).Debug("restarted")
}

func (r *Restart) metaInfo() search.MetaInfo {
	return search.MetaInfo{
		Restart:  r.stats.Restart,
		Solution: r.sslr,
		Fail:     r.inner.Statistics().Fail,
		Last:     r.last,
		NoGoods:  r.inner.NoGoods(),
		Asset:    -1,
	}
}

// Next returns the next solution, or nil when the search is exhausted
// or stopped.
func (r *Restart) Next(ctx context.Context) search.Space {
	r.stopped = false
	if r.done {
		return nil
	}
	worker.ResetStop(r.user)
	if r.pending {
		r.pending = false
		r.sslr++
		mi := r.metaInfo()
		restart := r.updateMaster(mi)
		if r.master.Status() == search.StatusFailed {
			// nothing better exists outside of the current round
			restart = false
			r.complete = true
		}
		if restart {
			r.reset(mi)
		}
	}
	for {
		if ctx.Err() != nil {
			r.stopped = true
			return nil
		}
		r.stop.Limit(r.inner.Statistics(), r.limit)
		if s := r.inner.Next(ctx); s != nil {
			r.pending = true
			r.last = s.Clone()
			return s
		}
		switch {
		case ctx.Err() != nil || r.stop.EngineStopped():
			r.stopped = true
			return nil
		case !r.inner.Stopped() && r.complete:
			r.done = true
			return nil
		}
		// the round hit its cutoff, or exhausted an incomplete slave
		r.sslr = 0
		mi := r.metaInfo()
		r.updateMaster(mi)
		r.limit = r.cutoff.Next()
		if r.master.Status() == search.StatusFailed {
			r.done = true
			return nil
		}
		r.reset(mi)
	}
}

func (r *Restart) Stopped() bool {
	return r.stopped
}

func (r *Restart) Statistics() search.Statistics {
	s := r.stats
	if r.inner != nil {
		s.Add(r.inner.Statistics())
	}
	return s
}

// Constrain constrains the master and the running round by b.
func (r *Restart) Constrain(b search.Space) error {
	if !r.optimize {
		return search.ErrNotOptimizing
	}
	if r.master == nil {
		return nil
	}
	c, ok := r.master.(search.Constrainer)
	if !ok {
		return search.ErrNotOptimizing
	}
	c.Constrain(b)
	if err := r.inner.Constrain(b); err != nil && !errors.Is(err, search.ErrNotOptimizing) {
		return err
	}
	return nil
}

func (r *Restart) Close() {
	if r.inner != nil {
		r.inner.Close()
	}
	r.master = nil
	r.last = nil
}
