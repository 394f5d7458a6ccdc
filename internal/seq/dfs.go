package seq

import (
	"context"

	"github.com/operator-framework/searchkit/internal/path"
	"github.com/operator-framework/searchkit/pkg/search"
)

// DFS is depth-first search with recomputation. If cur is set the path
// is exactly its ancestry, otherwise the path denotes the next node to
// be recomputed.
type DFS struct {
	base
	path *path.Path
	cur  search.Space
	d    int
}

// NewDFS returns a depth-first engine for root.
func NewDFS(root search.Space, opts *search.Options) *DFS {
	e := &DFS{
		base: newBase(opts),
		path: path.New(opts.NoGoodsLimit),
	}
	if failedRoot(root) {
		e.w.Fail++
	} else {
		e.cur = snapshot(root, opts)
	}
	e.w.Logger().Debug("created engine")
	return e
}

// Next returns the next solution. It returns nil when the search is
// exhausted or stopped.
func (e *DFS) Next(ctx context.Context) search.Space {
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
			e.cur = e.path.Recompute(&e.d, e.opts.AdaptiveDistance, e.w)
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
			s := e.cur
			e.cur = nil
			e.w.Trace(search.TraceEvent{Kind: search.TraceSolved, Node: nid, Depth: e.path.Entries()})
			e.path.Next()
			return s
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

// Constrain is not supported by depth-first search.
func (e *DFS) Constrain(_ search.Space) error {
	return search.ErrNotOptimizing
}

// Reset restarts the search from root. Statistics are kept.
func (e *DFS) Reset(root search.Space) {
	e.path.Reset(e.opts.NoGoodsLimit)
	e.d = 0
	e.cur = nil
	if !failedRoot(root) {
		e.cur = root
	}
	e.w.Reset()
}

// NoGoods returns the nogoods of the part of the tree explored so far.
func (e *DFS) NoGoods() search.NoGoods {
	return e.path.NoGoods()
}

func (e *DFS) Close() {
	e.cur = nil
	e.path.Reset(0)
}
