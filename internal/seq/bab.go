package seq

import (
	"context"

	"github.com/operator-framework/searchkit/internal/path"
	"github.com/operator-framework/searchkit/pkg/search"
)

// BAB is branch and bound search. Every solution it returns is better
// than the previous one.
//
// Edges stored at a depth below mark may hold spaces that have not been
// constrained by best yet; edges above it are known to be.
type BAB struct {
	base
	path *path.Path
	cur  search.Space
	d    int
	best search.Space
	mark int
}

// NewBAB returns a branch and bound engine for root, which must
// implement search.Constrainer.
func NewBAB(root search.Space, opts *search.Options) (*BAB, error) {
	if root != nil {
		if _, ok := root.(search.Constrainer); !ok {
			return nil, search.ErrNotConstrainable
		}
	}
	e := &BAB{
		base: newBase(opts),
		path: path.New(opts.NoGoodsLimit),
	}
	if failedRoot(root) {
		e.w.Fail++
	} else {
		e.cur = snapshot(root, opts)
	}
	e.w.Logger().Debug("created engine")
	return e, nil
}

func (e *BAB) Next(ctx context.Context) search.Space {
	e.w.Start(e.stop)
	for {
		if e.cur == nil && e.path.Empty() {
			return nil
		}
		if e.w.Stop(ctx, e.stop) {
			return nil
		}
		for e.cur == nil {
			if e.path.Empty() {
				return nil
			}
			e.cur = e.path.RecomputeBest(&e.d, e.opts.AdaptiveDistance, e.w, e.best, &e.mark)
			if e.cur != nil {
				break
			}
			e.path.Next()
		}
		e.w.Node++
		nid := e.w.NextID()
		switch e.cur.Status() {
		case search.StatusFailed:
			e.w.Fail++
			e.w.Trace(search.TraceEvent{Kind: search.TraceFailed, Node: nid, Depth: e.path.Entries()})
			e.cur = nil
			e.path.Next()
		case search.StatusSolved:
			e.best = e.cur
			e.cur = nil
			e.w.Trace(search.TraceEvent{Kind: search.TraceSolved, Node: nid, Depth: e.path.Entries()})
			e.path.Next()
			e.mark = e.path.Entries()
			e.w.Logger().WithField("node", nid).Debug("improved solution")
			return e.best.Clone()
		case search.StatusBranch:
			var c search.Space
			if e.d == 0 || e.d >= e.opts.CloneDistance {
				c = e.cur.Clone()
				e.d = 1
			} else {
				e.d++
			}
			ch := e.path.Push(e.w, e.cur, c, nid)
			e.w.Trace(search.TraceEvent{Kind: search.TraceBranch, Node: nid, Depth: e.path.Entries(), Alternatives: ch.Alternatives()})
			e.cur.Commit(ch, 0)
		}
	}
}

// Constrain makes all further solutions better than b. If the best
// solution found so far is already better than b nothing changes.
func (e *BAB) Constrain(b search.Space) error {
	if b == nil {
		return nil
	}
	if _, ok := b.(search.Constrainer); !ok {
		return search.ErrNotConstrainable
	}
	if e.best != nil {
		e.best.(search.Constrainer).Constrain(b)
		if e.best.Status() != search.StatusFailed {
			return nil
		}
	}
	e.best = b.Clone()
	if e.cur != nil {
		e.cur.(search.Constrainer).Constrain(b)
	}
	e.mark = e.path.Entries()
	return nil
}

// Reset restarts the search from root. The best solution is forgotten.
func (e *BAB) Reset(root search.Space) {
	e.best = nil
	e.path.Reset(e.opts.NoGoodsLimit)
	e.d = 0
	e.mark = 0
	e.cur = nil
	if !failedRoot(root) {
		e.cur = root
	}
	e.w.Reset()
}

func (e *BAB) NoGoods() search.NoGoods {
	return e.path.NoGoods()
}

func (e *BAB) Close() {
	e.cur = nil
	e.best = nil
	e.path.Reset(0)
}
