package par

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/operator-framework/searchkit/internal/path"
	"github.com/operator-framework/searchkit/internal/worker"
	"github.com/operator-framework/searchkit/pkg/search"
)

// stealBackoff is how long an idle worker waits before it scans the
// other workers again.
const stealBackoff = 200 * time.Microsecond

type searchWorker struct {
	*worker.Worker
	e    *Engine
	cmds chan command

	// mu guards everything below and the embedded statistics. Other
	// workers take it to steal.
	mu   sync.Mutex
	path *path.Path
	cur  search.Space
	d    int
	idle bool

	pubNode uint64
	pubFail uint64
}

func newSearchWorker(e *Engine, id int) *searchWorker {
	return &searchWorker{
		Worker: worker.New(id, e.log, e.opts.Tracer),
		e:      e,
		cmds:   make(chan command),
		path:   path.New(0),
	}
}

func (w *searchWorker) run() {
	defer w.e.wg.Done()
	c := command{kind: cmdWait}
	for {
		switch c.kind {
		case cmdWait:
			c = <-w.cmds
		case cmdTerminate:
			c.ack.Done()
			<-c.release
			w.Logger().Debug("worker terminated")
			return
		case cmdReset:
			c.ack.Done()
			<-c.release
			c.ack.Done()
			c = command{kind: cmdWait}
		case cmdWork:
			if !w.step() {
				t := time.NewTimer(stealBackoff)
				select {
				case c = <-w.cmds:
					t.Stop()
					continue
				case <-t.C:
				}
			}
			select {
			case c = <-w.cmds:
			default:
			}
		}
	}
}

// publish adds the counters of the last step to the engine totals.
func (w *searchWorker) publish() {
	if d := w.Node - w.pubNode; d > 0 {
		atomic.AddUint64(&w.e.nodes, d)
		w.pubNode = w.Node
	}
	if d := w.Fail - w.pubFail; d > 0 {
		atomic.AddUint64(&w.e.fails, d)
		w.pubFail = w.Fail
	}
}

// step performs one unit of exploration. It returns false when the
// worker could not make progress, either because it is stopped or
// because there was nothing to steal.
func (w *searchWorker) step() bool {
	w.mu.Lock()
	switch {
	case w.idle:
		w.mu.Unlock()
		return w.find()
	case w.cur != nil:
		if w.StopWith(context.Background(), w.e.stop, w.e.totals(w.Statistics)) {
			w.mu.Unlock()
			w.e.stopped()
			return false
		}
		w.Node++
		nid := w.NextID()
		switch w.cur.Status() {
		case search.StatusFailed:
			w.Fail++
			w.Trace(search.TraceEvent{Kind: search.TraceFailed, Node: nid, Depth: w.path.Entries()})
			w.cur = nil
			w.path.Next()
			w.publish()
			w.mu.Unlock()
		case search.StatusSolved:
			s := w.cur
			w.cur = nil
			w.Trace(search.TraceEvent{Kind: search.TraceSolved, Node: nid, Depth: w.path.Entries()})
			w.path.Next()
			w.publish()
			w.mu.Unlock()
			w.e.solution(s)
		case search.StatusBranch:
			var c search.Space
			if w.d == 0 || w.d >= w.e.opts.CloneDistance {
				c = w.cur.Clone()
				w.d = 1
			} else {
				w.d++
			}
			ch := w.path.Push(w.Worker, w.cur, c, nid)
			w.Trace(search.TraceEvent{Kind: search.TraceBranch, Node: nid, Depth: w.path.Entries(), Alternatives: ch.Alternatives()})
			w.cur.Commit(ch, 0)
			w.publish()
			w.mu.Unlock()
		}
		return true
	case !w.path.Empty():
		w.cur = w.path.Recompute(&w.d, w.e.opts.AdaptiveDistance, w.Worker)
		if w.cur == nil {
			w.path.Next()
		}
		w.publish()
		w.mu.Unlock()
		return true
	default:
		w.idle = true
		w.path.SetNoGoodsLimit(0)
		w.mu.Unlock()
		w.e.idle()
		return true
	}
}

// find tries to steal work from the other workers.
func (w *searchWorker) find() bool {
	for _, v := range w.e.workers {
		if v == w {
			continue
		}
		s := v.steal(w)
		if s == nil {
			continue
		}
		w.mu.Lock()
		w.idle = false
		w.path.Reset(0)
		w.d = 0
		w.cur = s
		w.mu.Unlock()
		w.Logger().WithField("victim", v.ID()).Debug("stole work")
		return true
	}
	return false
}

// steal gives work of w to thief, if there is any.
func (w *searchWorker) steal(thief *searchWorker) search.Space {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.idle {
		return nil
	}
	s := w.path.Steal(thief.Worker)
	if s != nil {
		w.e.busyOne()
	}
	return s
}

// reset installs root as the only work of the worker. It must only be
// called while the worker is parked.
func (w *searchWorker) reset(root search.Space, ngdl int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cur = nil
	w.path.Reset(ngdl)
	w.d = 0
	w.idle = false
	if root != nil && root.Status() != search.StatusFailed {
		w.cur = root
	}
	w.Worker.Reset()
}
