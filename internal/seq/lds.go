package seq

import (
	"context"

	"github.com/operator-framework/searchkit/internal/worker"
	"github.com/operator-framework/searchkit/pkg/search"
)

type probeNode struct {
	space  search.Space
	choice search.Choice
	// alt is the next alternative to try.
	alt int
	nid uint64
}

// probe finds all solutions with exactly d discrepancies. Solutions with
// fewer discrepancies are skipped, they have been found by an earlier
// probe.
type probe struct {
	w         *worker.Worker
	stack     []probeNode
	cur       search.Space
	d         int
	exhausted bool
}

func (p *probe) reset(s search.Space, d int) {
	for i := range p.stack {
		p.stack[i] = probeNode{}
	}
	p.stack = p.stack[:0]
	p.cur = s
	p.d = d
	p.exhausted = true
}

func (p *probe) backtrack(ctx context.Context, st search.Stop) bool {
	if len(p.stack) == 0 {
		return false
	}
	if p.w.Stop(ctx, st) {
		return false
	}
	top := &p.stack[len(p.stack)-1]
	if a := top.alt; a == 0 {
		p.cur = top.space
		ch := top.choice
		p.stack[len(p.stack)-1] = probeNode{}
		p.stack = p.stack[:len(p.stack)-1]
		p.cur.Commit(ch, 0)
	} else {
		top.alt--
		p.cur = top.space.Clone()
		p.cur.Commit(top.choice, a)
	}
	p.w.Node++
	p.d++
	return true
}

func (p *probe) next(ctx context.Context, st search.Stop) search.Space {
	for {
		if p.cur == nil && !p.backtrack(ctx, st) {
			return nil
		}
		if p.d == 0 {
			s, stopped := p.complete(ctx, st)
			if stopped {
				return nil
			}
			if s != nil {
				return s
			}
			continue
		}
		p.w.Node++
		nid := p.w.NextID()
		switch p.cur.Status() {
		case search.StatusFailed:
			p.w.Fail++
			p.w.Trace(search.TraceEvent{Kind: search.TraceFailed, Node: nid, Depth: len(p.stack)})
			p.cur = nil
		case search.StatusSolved:
			p.cur = nil
		case search.StatusBranch:
			ch := p.cur.Choice()
			if ch == nil || ch.Alternatives() < 1 {
				search.Misuse("LDS", "choice without alternatives")
			}
			alt := ch.Alternatives()
			p.w.Trace(search.TraceEvent{Kind: search.TraceBranch, Node: nid, Depth: len(p.stack), Alternatives: alt})
			if alt == 1 {
				p.cur.Commit(ch, 0)
				p.w.Node++
				continue
			}
			if p.d < alt-1 {
				p.exhausted = false
			}
			da := alt - 1
			if p.d < da {
				da = p.d
			}
			p.stack = append(p.stack, probeNode{space: p.cur.Clone(), choice: ch, alt: da - 1, nid: nid})
			p.w.StackDepth(len(p.stack))
			p.cur.Commit(ch, da)
			p.d -= da
		}
	}
}

// complete follows the leftmost alternatives below cur and returns the
// solution it reaches, or nil on failure. A stop leaves cur set so that
// the completion resumes.
func (p *probe) complete(ctx context.Context, st search.Stop) (search.Space, bool) {
	s := p.cur
	status := s.Status()
	for status == search.StatusBranch {
		if p.w.Stop(ctx, st) {
			p.cur = s
			return nil, true
		}
		ch := s.Choice()
		if ch == nil || ch.Alternatives() < 1 {
			search.Misuse("LDS", "choice without alternatives")
		}
		if ch.Alternatives() > 1 {
			p.exhausted = false
		}
		s.Commit(ch, 0)
		p.w.Node++
		status = s.Status()
	}
	p.cur = nil
	if status == search.StatusFailed {
		p.w.Fail++
		return nil, false
	}
	p.w.Trace(search.TraceEvent{Kind: search.TraceSolved, Node: p.w.NextID(), Depth: len(p.stack)})
	return s, false
}

// LDS is limited discrepancy search. Round d reports the solutions
// reached with exactly d discrepancies, where taking alternative i of a
// choice counts as i discrepancies.
type LDS struct {
	base
	probe probe
	root  search.Space
	d     int
}

// NewLDS returns a limited discrepancy engine for root. A negative
// discrepancy limit in opts means unbounded.
func NewLDS(root search.Space, opts *search.Options) *LDS {
	e := &LDS{base: newBase(opts)}
	e.probe.w = e.w
	e.w.Node = 1
	if failedRoot(root) {
		e.w.Fail++
		e.probe.reset(nil, 0)
	} else {
		c := snapshot(root, opts)
		if opts.DiscrepancyLimit != 0 {
			e.root = c.Clone()
		}
		e.probe.reset(c, 0)
	}
	e.w.Logger().WithField("limit", opts.DiscrepancyLimit).Debug("created engine")
	return e
}

func (e *LDS) unbounded() bool {
	return e.opts.DiscrepancyLimit < 0
}

func (e *LDS) Next(ctx context.Context) search.Space {
	e.w.Start(e.stop)
	for {
		if s := e.probe.next(ctx, e.stop); s != nil {
			return s
		}
		if e.w.Stopped() || e.probe.exhausted {
			return nil
		}
		if !e.unbounded() && e.d >= e.opts.DiscrepancyLimit {
			return nil
		}
		e.d++
		e.w.Logger().WithField("discrepancies", e.d).Debug("next round")
		if !e.unbounded() && e.d == e.opts.DiscrepancyLimit {
			if e.root != nil {
				e.probe.reset(e.root, e.d)
			}
			e.root = nil
		} else if e.root != nil {
			e.probe.reset(e.root.Clone(), e.d)
		}
	}
}

// Constrain is not supported by limited discrepancy search.
func (e *LDS) Constrain(_ search.Space) error {
	return search.ErrNotOptimizing
}

// Reset restarts the rounds from root.
func (e *LDS) Reset(root search.Space) {
	e.root = nil
	e.d = 0
	e.w.Node++
	e.w.Reset()
	if failedRoot(root) {
		e.w.Fail++
		e.probe.reset(nil, 0)
		return
	}
	if e.opts.DiscrepancyLimit != 0 {
		e.root = root.Clone()
	}
	e.probe.reset(root, 0)
}

// NoGoods returns no nogoods, rounds of discrepancy search revisit the
// tree from the root.
func (e *LDS) NoGoods() search.NoGoods {
	return search.NoGoods{}
}

func (e *LDS) Close() {
	e.root = nil
	e.probe.reset(nil, 0)
}
