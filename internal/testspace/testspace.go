// Package testspace provides a small, fully enumerable search space used
// by the engine tests. The tree assigns Vars variables in order, each to
// one of Values values, with one alternative per value that posted
// nogoods have not excluded.
package testspace

import (
	"context"
	"fmt"

	"github.com/operator-framework/searchkit/pkg/search"
)

var (
	_ search.Space        = &Space{}
	_ search.Constrainer  = &Space{}
	_ search.Sizer        = &Space{}
	_ search.NoGoodPoster = &Space{}
	_ search.NoGoodStore  = &Space{}
	_ search.Slave        = &Space{}
	_ search.NoGoodChoice = choice{}
)

// Unassigned marks a variable without a value in the assignments handed
// to Fail.
const Unassigned = -1

// Tree describes a search tree.
type Tree struct {
	Vars   int
	Values int
	// Fail, if set, is evaluated on every partial assignment. Variables
	// without a value are Unassigned.
	Fail func(vals []int) bool
	// Weights turn the tree into a minimization problem: the cost of a
	// space is the weighted sum of its assigned values. Weights must
	// not be negative.
	Weights []int
}

// Root returns the root space of t.
func (t *Tree) Root() *Space {
	s := &Space{
		t:        t,
		vals:     make([]int, t.Vars),
		excluded: make([]uint64, t.Vars),
		bound:    int(^uint(0) >> 1),
	}
	for i := range s.vals {
		s.vals[i] = Unassigned
	}
	return s
}

// Solutions enumerates the solutions of t by brute force, in the order
// depth-first search finds them.
func (t *Tree) Solutions() [][]int {
	var (
		out  [][]int
		vals = make([]int, t.Vars)
		rec  func(i int)
	)
	for i := range vals {
		vals[i] = Unassigned
	}
	rec = func(i int) {
		if t.Fail != nil && t.Fail(vals) {
			return
		}
		if i == t.Vars {
			out = append(out, append([]int(nil), vals...))
			return
		}
		for v := 0; v < t.Values; v++ {
			vals[i] = v
			rec(i + 1)
		}
		vals[i] = Unassigned
	}
	rec(0)
	return out
}

// Cost returns the cost of a full assignment.
func (t *Tree) Cost(vals []int) int {
	c := 0
	for i, w := range t.Weights {
		if vals[i] != Unassigned {
			c += w * vals[i]
		}
	}
	return c
}

// Literal is var == val.
type Literal struct {
	Var, Val int
}

func (l Literal) String() string {
	return fmt.Sprintf("x%d=%d", l.Var, l.Val)
}

// choice branches on x over the values not excluded when it was made.
type choice struct {
	x    int
	vals []int
}

func (c choice) Alternatives() int {
	return len(c.vals)
}

func (c choice) NoGoodLiteral(alt int) search.Literal {
	return Literal{Var: c.x, Val: c.vals[alt]}
}

// Space is a node of a Tree. Values are limited to 64.
type Space struct {
	t        *Tree
	vals     []int
	excluded []uint64
	bound    int
	nogoods  []search.NoGoods
	reverse  bool
	// Asset is set by the Slave hook.
	Asset int
}

func (s *Space) Clone() search.Space {
	c := *s
	c.vals = append([]int(nil), s.vals...)
	c.excluded = append([]uint64(nil), s.excluded...)
	c.nogoods = s.nogoods[:len(s.nogoods):len(s.nogoods)]
	return &c
}

func (s *Space) Status() search.Status {
	for _, ng := range s.nogoods {
		if !ng.Propagate(s) {
			return search.StatusFailed
		}
	}
	all := uint64(1)<<uint(s.t.Values) - 1
	for i, v := range s.vals {
		if v != Unassigned && s.excluded[i]&(1<<uint(v)) != 0 {
			return search.StatusFailed
		}
		if s.excluded[i]&all == all {
			return search.StatusFailed
		}
	}
	if s.t.Fail != nil && s.t.Fail(s.vals) {
		return search.StatusFailed
	}
	if s.t.Cost(s.vals) > s.bound {
		return search.StatusFailed
	}
	if s.next() < 0 {
		return search.StatusSolved
	}
	return search.StatusBranch
}

func (s *Space) next() int {
	for i, v := range s.vals {
		if v == Unassigned {
			return i
		}
	}
	return -1
}

func (s *Space) Choice() search.Choice {
	if s.Status() != search.StatusBranch {
		search.Misuse("Choice", "space is not branching")
	}
	x := s.next()
	vals := make([]int, 0, s.t.Values)
	for v := 0; v < s.t.Values; v++ {
		if s.excluded[x]&(1<<uint(v)) == 0 {
			vals = append(vals, v)
		}
	}
	if s.reverse {
		for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
			vals[i], vals[j] = vals[j], vals[i]
		}
	}
	return choice{x: x, vals: vals}
}

func (s *Space) Commit(c search.Choice, alt int) {
	search.CheckAlternative("Commit", c, alt)
	ch := c.(choice)
	s.vals[ch.x] = ch.vals[alt]
}

func (s *Space) Constrain(best search.Space) {
	if c := best.(*Space).Cost() - 1; c < s.bound {
		s.bound = c
	}
}

func (s *Space) PostNoGoods(ng search.NoGoods) {
	if !ng.Empty() {
		s.nogoods = append(s.nogoods, ng)
	}
}

func (s *Space) LiteralState(l search.Literal) search.LiteralState {
	lit := l.(Literal)
	switch v := s.vals[lit.Var]; {
	case v == lit.Val:
		return search.LiteralTrue
	case v != Unassigned, s.excluded[lit.Var]&(1<<uint(lit.Val)) != 0:
		return search.LiteralFalse
	}
	return search.LiteralUnknown
}

func (s *Space) Exclude(l search.Literal) bool {
	lit := l.(Literal)
	if s.vals[lit.Var] == lit.Val {
		return false
	}
	s.excluded[lit.Var] |= 1 << uint(lit.Val)
	return true
}

// Slave makes odd assets try the values in reverse order.
func (s *Space) Slave(mi search.MetaInfo) bool {
	s.Asset = mi.Asset
	if mi.Asset > 0 {
		s.reverse = mi.Asset%2 == 1
	}
	return true
}

func (s *Space) Allocated() int {
	return 16 * len(s.vals)
}

// Cost returns the cost of the assigned values.
func (s *Space) Cost() int {
	return s.t.Cost(s.vals)
}

// Values returns the assignment of s.
func (s *Space) Values() []int {
	return append([]int(nil), s.vals...)
}

func (s *Space) String() string {
	return fmt.Sprint(s.vals)
}

// Collect returns the values of up to limit solutions of e, or all of
// them if limit is not positive.
func Collect(ctx context.Context, e search.Engine, limit int) [][]int {
	var out [][]int
	for limit <= 0 || len(out) < limit {
		s := e.Next(ctx)
		if s == nil {
			break
		}
		out = append(out, s.(*Space).Values())
	}
	return out
}
