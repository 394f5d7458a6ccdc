package path

import (
	"github.com/operator-framework/searchkit/pkg/search"
)

// Edge is one level of a Path. It owns at most one clone of the space in
// which its choice was taken.
type Edge struct {
	space  search.Space
	choice search.Choice
	// alt is the alternative currently explored.
	alt int
	// altMax is the last alternative still owned by this path. It is
	// lowered when alternatives are stolen.
	altMax int
	nid    uint64
	size   int
}

func newEdge(c search.Space, ch search.Choice, nid uint64) Edge {
	return Edge{
		space:  c,
		choice: ch,
		altMax: ch.Alternatives() - 1,
		nid:    nid,
		size:   sizeOf(c),
	}
}

// Space returns the stored clone, or nil.
func (e *Edge) Space() search.Space {
	return e.space
}

func (e *Edge) setSpace(s search.Space) int {
	old := e.size
	e.space = s
	e.size = sizeOf(s)
	return e.size - old
}

func (e *Edge) Choice() search.Choice {
	return e.choice
}

// Alt returns the alternative currently explored.
func (e *Edge) Alt() int {
	return e.alt
}

// TrueAlt is Alt clamped to the alternatives of the choice. It differs
// from Alt for edges marked for last alternative reuse.
func (e *Edge) TrueAlt() int {
	if last := e.choice.Alternatives() - 1; e.alt > last {
		return last
	}
	return e.alt
}

func (e *Edge) NodeID() uint64 {
	return e.nid
}

// Leftmost returns whether the first alternative is explored.
func (e *Edge) Leftmost() bool {
	return e.alt == 0
}

// Rightmost returns whether the last owned alternative is explored.
func (e *Edge) Rightmost() bool {
	return e.alt >= e.altMax
}

// lao returns whether the edge has been consumed by last alternative
// reuse and can be dropped on the next push.
func (e *Edge) lao() bool {
	return e.alt > e.altMax
}

// Work returns whether untried alternatives are left on the edge.
func (e *Edge) Work() bool {
	return e.alt < e.altMax
}

// steal gives away the last owned alternative.
func (e *Edge) steal() int {
	a := e.altMax
	e.altMax--
	return a
}

func sizeOf(s search.Space) int {
	if sz, ok := s.(search.Sizer); ok {
		return sz.Allocated()
	}
	return 0
}
