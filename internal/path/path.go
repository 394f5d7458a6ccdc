// Package path implements the depth-first stack with recomputation used
// by all engines. Only every few levels a clone is stored; the spaces
// in between are rebuilt by replaying the committed alternatives.
package path

import (
	"github.com/operator-framework/searchkit/internal/worker"
	"github.com/operator-framework/searchkit/pkg/search"
)

// Path is a stack of edges from the root to the frontier. Replaying the
// alternatives of the edges from the nearest stored clone reproduces
// the current space, or the next one to explore.
type Path struct {
	edges []Edge
	ngdl  int
	mem   int
}

// New returns an empty path that extracts nogoods up to depth ngdl.
func New(ngdl int) *Path {
	return &Path{ngdl: ngdl}
}

// NoGoodsLimit returns the nogood depth limit.
func (p *Path) NoGoodsLimit() int {
	return p.ngdl
}

func (p *Path) SetNoGoodsLimit(l int) {
	p.ngdl = l
}

// Push records that s has status StatusBranch. The edge owns c, which
// is either a clone of s or nil. The choice is returned so that the
// caller can commit its first alternative.
func (p *Path) Push(w *worker.Worker, s, c search.Space, nid uint64) search.Choice {
	if n := len(p.edges); n > 0 && p.edges[n-1].lao() {
		p.pop()
	}
	ch := s.Choice()
	if ch == nil || ch.Alternatives() < 1 {
		n := 0
		if ch != nil {
			n = ch.Alternatives()
		}
		search.Misuse("Push", "choice with %d alternatives", n)
	}
	p.edges = append(p.edges, newEdge(c, ch, nid))
	p.grow(w, p.edges[len(p.edges)-1].size)
	w.StackDepth(len(p.edges))
	return ch
}

// Next moves to the next alternative of the topmost edge. Edges whose
// last alternative has been explored are popped. Next returns whether
// the path still holds work.
func (p *Path) Next() bool {
	for n := len(p.edges); n > 0; n = len(p.edges) {
		top := &p.edges[n-1]
		if !top.Rightmost() {
			top.alt++
			return true
		}
		p.pop()
	}
	return false
}

func (p *Path) pop() {
	n := len(p.edges) - 1
	p.mem -= p.edges[n].size
	p.edges[n] = Edge{}
	p.edges = p.edges[:n]
}

func (p *Path) grow(w *worker.Worker, delta int) {
	p.mem += delta
	if p.mem > w.Memory {
		w.Memory = p.mem
	}
}

// Top returns the topmost edge. It must not be called on an empty path.
func (p *Path) Top() *Edge {
	return &p.edges[len(p.edges)-1]
}

// Edge returns the edge at position i, the root being at 0.
func (p *Path) Edge(i int) *Edge {
	return &p.edges[i]
}

func (p *Path) Empty() bool {
	return len(p.edges) == 0
}

// Entries returns the number of edges.
func (p *Path) Entries() int {
	return len(p.edges)
}

// Memory returns the bytes held by stored clones.
func (p *Path) Memory() int {
	return p.mem
}

// Commit replays the alternative of edge i on s.
func (p *Path) Commit(s search.Space, i int) {
	e := &p.edges[i]
	s.Commit(e.choice, e.alt)
}

// LC returns the position of the topmost edge holding a clone.
func (p *Path) LC() int {
	l := len(p.edges) - 1
	for l > 0 && p.edges[l].space == nil {
		l--
	}
	return l
}

// Unwind pops all edges from position l upwards.
func (p *Path) Unwind(l int, w *worker.Worker) {
	for len(p.edges) > l {
		top := p.Top()
		w.Trace(search.TraceEvent{Kind: search.TraceFailed, Node: top.nid, Depth: len(p.edges)})
		p.pop()
	}
}

// Reset drops all edges and sets the nogood depth limit.
func (p *Path) Reset(ngdl int) {
	for i := range p.edges {
		p.edges[i] = Edge{}
	}
	p.edges = p.edges[:0]
	p.mem = 0
	p.ngdl = ngdl
}

// reuse implements last alternative optimization: when the topmost edge
// holds a clone and its last alternative is due, the clone is handed
// out instead of being copied.
func (p *Path) reuse(w *worker.Worker) search.Space {
	top := p.Top()
	if top.space == nil || !top.Rightmost() {
		return nil
	}
	s := top.space
	s.Commit(top.choice, top.alt)
	p.grow(w, top.setSpace(nil))
	// within the nogood depth the edge is kept for extraction
	if len(p.edges) > p.ngdl {
		top.alt++
	}
	return s
}

// Recompute returns the space denoted by the path. It clones the nearest
// stored space and replays the alternatives above it. When the distance
// reaches ad an intermediate clone is stored halfway. Recompute returns
// nil when that intermediate space fails; the failed edges have been
// unwound then and the caller must call Next. d is set to the distance
// from the current space to the nearest clone.
func (p *Path) Recompute(d *int, ad int, w *worker.Worker) search.Space {
	if s := p.reuse(w); s != nil {
		*d = 0
		return s
	}
	l := p.LC()
	n := len(p.edges)
	*d = n - l

	s := p.edges[l].space.Clone()
	return p.replay(s, l, n, d, ad, w)
}

// RecomputeBest is Recompute for branch and bound. Spaces taken from
// edges below mark have not seen best yet and are constrained by it
// before use.
func (p *Path) RecomputeBest(d *int, ad int, w *worker.Worker, best search.Space, mark *int) search.Space {
	if s := p.reuse(w); s != nil {
		if *mark > len(p.edges)-1 {
			*mark = len(p.edges) - 1
			s.(search.Constrainer).Constrain(best)
		}
		*d = 0
		return s
	}
	l := p.LC()
	n := len(p.edges)
	*d = n - l

	s := p.edges[l].space
	if l < *mark {
		*mark = l
		s.(search.Constrainer).Constrain(best)
		if s.Status() == search.StatusFailed {
			w.Fail++
			p.Unwind(l, w)
			return nil
		}
		// the stored space is replaced by a fresh clone of the
		// constrained one
		p.grow(w, p.edges[l].setSpace(s.Clone()))
	} else {
		s = s.Clone()
	}
	return p.replay(s, l, n, d, ad, w)
}

func (p *Path) replay(s search.Space, l, n int, d *int, ad int, w *worker.Worker) search.Space {
	if *d < ad {
		for i := l; i < n; i++ {
			p.Commit(s, i)
		}
		return s
	}
	m := l + *d/2
	i := l
	for ; i < m; i++ {
		p.Commit(s, i)
	}
	for ; i < n && p.edges[i].Rightmost(); i++ {
		p.Commit(s, i)
	}
	if i < n-1 {
		if s.Status() == search.StatusFailed {
			w.Fail++
			p.Unwind(i, w)
			return nil
		}
		p.grow(w, p.edges[i].setSpace(s.Clone()))
		*d = n - i
	}
	for ; i < n; i++ {
		p.Commit(s, i)
	}
	return s
}
