package meta

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/operator-framework/searchkit/pkg/search"
)

// errAssetDone ends a round of the portfolio as soon as one asset has
// found a solution or exhausted its tree.
var errAssetDone = errors.New("asset done")

type asset struct {
	engine   search.Engine
	complete bool
	// finished is set once the asset has exhausted its tree.
	finished bool
}

// Portfolio runs several engines, its assets, on clones of the same
// root. Each call to Next runs all assets concurrently until one of them
// reports; the others are cancelled and resume from where they stopped
// on the next call.
type Portfolio struct {
	log      logrus.FieldLogger
	assets   []*asset
	optimize bool

	queue     []search.Space
	last      search.Space
	exhausted bool
	stopped   bool
}

// NewPortfolio creates opts.Assets engines with build. Every asset gets
// its own clone of root, prepared by the search.Slave hook with the
// index of the asset. If optimize is set the assets must accept
// Constrain and every solution is propagated to all of them.
func NewPortfolio(root search.Space, opts *search.Options, build AssetBuilder, optimize bool) (*Portfolio, error) {
	p := &Portfolio{
		log:      opts.Logger,
		optimize: optimize,
	}
	if root == nil || root.Status() == search.StatusFailed {
		p.exhausted = true
		return p, nil
	}
	inner, err := opts.Copy(search.WithoutClone())
	if err != nil {
		return nil, err
	}
	for i := 0; i < opts.Assets; i++ {
		s := root.Clone()
		complete := slave(s, search.MetaInfo{Asset: i})
		e, err := build(s, inner)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("building asset %d: %w", i, err)
		}
		p.assets = append(p.assets, &asset{engine: e, complete: complete})
	}
	p.log.WithField("assets", len(p.assets)).Debug("created engine")
	return p, nil
}

// better reports whether s improves on the last solution.
func (p *Portfolio) better(s search.Space) bool {
	if !p.optimize || p.last == nil {
		return true
	}
	c := s.Clone()
	c.(search.Constrainer).Constrain(p.last)
	return c.Status() != search.StatusFailed
}

func (p *Portfolio) dequeue() search.Space {
	for len(p.queue) > 0 {
		s := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		if p.better(s) {
			return p.report(s)
		}
	}
	return nil
}

// report records s as the last solution and, when optimizing, makes
// all assets look for better ones only.
func (p *Portfolio) report(s search.Space) search.Space {
	if p.optimize {
		p.last = s.Clone()
		for _, a := range p.assets {
			if err := a.engine.Constrain(s); err != nil {
				p.log.WithError(err).Warn("asset rejected bound")
			}
		}
	}
	return s
}

// round runs all unfinished assets until the first one reports.
func (p *Portfolio) round(ctx context.Context) ([]search.Space, bool) {
	found := make([]search.Space, len(p.assets))
	done := make([]bool, len(p.assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range p.assets {
		if a.finished {
			continue
		}
		i, a := i, a
		g.Go(func() error {
			if s := a.engine.Next(gctx); s != nil {
				found[i] = s
				return errAssetDone
			}
			if !a.engine.Stopped() {
				done[i] = true
				return errAssetDone
			}
			return nil
		})
	}
	_ = g.Wait()

	var (
		solutions []search.Space
		exhausted bool
	)
	for i, a := range p.assets {
		if found[i] != nil {
			solutions = append(solutions, found[i])
		}
		if done[i] {
			a.finished = true
			if a.complete {
				p.log.WithField("asset", i).Debug("asset exhausted")
				exhausted = true
			}
		}
	}
	return solutions, exhausted
}

func (p *Portfolio) active() bool {
	for _, a := range p.assets {
		if !a.finished {
			return true
		}
	}
	return false
}

// Next returns the next solution reported by any asset.
func (p *Portfolio) Next(ctx context.Context) search.Space {
	p.stopped = false
	for {
		if s := p.dequeue(); s != nil {
			return s
		}
		if p.exhausted || !p.active() {
			return nil
		}
		solutions, exhausted := p.round(ctx)
		p.queue = append(p.queue, solutions...)
		if exhausted {
			p.exhausted = true
			continue
		}
		if len(solutions) == 0 && p.active() {
			p.stopped = true
			return nil
		}
	}
}

func (p *Portfolio) Stopped() bool {
	return p.stopped
}

// Statistics sums the statistics of all assets.
func (p *Portfolio) Statistics() search.Statistics {
	var s search.Statistics
	for _, a := range p.assets {
		s.Add(a.engine.Statistics())
	}
	return s
}

// Constrain forwards b to all assets.
func (p *Portfolio) Constrain(b search.Space) error {
	if !p.optimize {
		return search.ErrNotOptimizing
	}
	if p.last == nil || p.better(b) {
		p.last = b.Clone()
	}
	for _, a := range p.assets {
		if err := a.engine.Constrain(b); err != nil {
			return err
		}
	}
	return nil
}

func (p *Portfolio) Close() {
	for _, a := range p.assets {
		a.engine.Close()
	}
	p.queue = nil
	p.last = nil
}
