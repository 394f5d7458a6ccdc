package path

import (
	"github.com/operator-framework/searchkit/internal/worker"
	"github.com/operator-framework/searchkit/pkg/search"
)

// Stealable returns whether some edge still owns untried alternatives.
func (p *Path) Stealable() bool {
	for i := range p.edges {
		if p.edges[i].Work() {
			return true
		}
	}
	return false
}

// Steal hands the last owned alternative of the root-most edge with work
// to another worker. The returned space is rebuilt from the nearest
// clone below that edge, with the stolen alternative committed. The
// caller must hold the lock protecting p; w is the thief.
func (p *Path) Steal(w *worker.Worker) search.Space {
	for n := range p.edges {
		if !p.edges[n].Work() {
			continue
		}
		l := n
		for l > 0 && p.edges[l].space == nil {
			l--
		}
		if p.edges[l].space == nil {
			return nil
		}
		c := p.edges[l].space.Clone()
		for i := l; i < n; i++ {
			p.Commit(c, i)
		}
		e := &p.edges[n]
		c.Commit(e.choice, e.steal())
		w.Trace(search.TraceEvent{Kind: search.TraceSteal, Node: e.nid, Depth: n + 1})
		return c
	}
	return nil
}
