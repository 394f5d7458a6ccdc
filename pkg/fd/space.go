package fd

import (
	"fmt"
	"math"
	"strings"

	"github.com/bits-and-blooms/bitset"

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

const maxBound = math.MaxInt

// Literal is the nogood literal of this package: x == Val when Eq is
// set, x != Val otherwise.
type Literal struct {
	Var Var
	Val int
	Eq  bool
}

func (l Literal) String() string {
	if l.Eq {
		return fmt.Sprintf("x%d=%d", l.Var, l.Val)
	}
	return fmt.Sprintf("x%d!=%d", l.Var, l.Val)
}

// Space is a node of the search tree of a Model.
type Space struct {
	m       *Model
	domains []*bitset.BitSet
	bound   int
	nogoods []search.NoGoods
	// preferMax branches on the largest value first.
	preferMax bool

	valid   bool
	status  search.Status
	changes int
}

// choice is a binary decision x == val or x != val.
type choice struct {
	x   Var
	val int
}

func (c choice) Alternatives() int {
	return 2
}

func (c choice) NoGoodLiteral(alt int) search.Literal {
	return Literal{Var: c.x, Val: c.val, Eq: alt == 0}
}

func (s *Space) Clone() search.Space {
	c := *s
	c.domains = make([]*bitset.BitSet, len(s.domains))
	for i, d := range s.domains {
		c.domains[i] = d.Clone()
	}
	c.nogoods = s.nogoods[:len(s.nogoods):len(s.nogoods)]
	return &c
}

func (s *Space) Status() search.Status {
	if !s.valid {
		s.valid = true
		s.status = s.propagate()
	}
	return s.status
}

func (s *Space) propagate() search.Status {
	for _, d := range s.domains {
		if d.None() {
			return search.StatusFailed
		}
	}
	obj := objective(s.m.objective)
	for {
		before := s.changes
		for _, p := range s.m.propagators {
			if !p.propagate(s) {
				return search.StatusFailed
			}
		}
		if !obj.propagate(s) {
			return search.StatusFailed
		}
		for _, ng := range s.nogoods {
			if !ng.Propagate(s) {
				return search.StatusFailed
			}
		}
		if s.changes == before {
			break
		}
	}
	if s.branchVar() < 0 {
		return search.StatusSolved
	}
	return search.StatusBranch
}

// branchVar returns the unassigned variable with the smallest domain,
// or -1.
func (s *Space) branchVar() Var {
	best, size := Var(-1), uint(0)
	for i, d := range s.domains {
		if n := d.Count(); n > 1 && (best < 0 || n < size) {
			best, size = Var(i), n
		}
	}
	return best
}

func (s *Space) Choice() search.Choice {
	if s.Status() != search.StatusBranch {
		search.Misuse("Choice", "space has status %s", s.status)
	}
	x := s.branchVar()
	val := s.Min(x)
	if s.preferMax {
		val = s.Max(x)
	}
	return choice{x: x, val: val}
}

func (s *Space) Commit(c search.Choice, alt int) {
	search.CheckAlternative("Commit", c, alt)
	ch := c.(choice)
	if alt == 0 {
		s.assign(ch.x, ch.val)
	} else {
		s.remove(ch.x, ch.val)
	}
	s.valid = false
}

// Constrain requires the objective to be strictly smaller than the one
// of best.
func (s *Space) Constrain(best search.Space) {
	if cost := best.(*Space).Cost(); cost-1 < s.bound {
		s.bound = cost - 1
		s.valid = false
	}
}

// PostNoGoods stores ng. The chain is evaluated lazily by every
// following propagation.
func (s *Space) PostNoGoods(ng search.NoGoods) {
	if ng.Empty() {
		return
	}
	s.nogoods = append(s.nogoods, ng)
	s.valid = false
}

func (s *Space) LiteralState(l search.Literal) search.LiteralState {
	lit := l.(Literal)
	v, assigned := s.Assigned(lit.Var)
	switch {
	case !s.Contains(lit.Var, lit.Val):
		if lit.Eq {
			return search.LiteralFalse
		}
		return search.LiteralTrue
	case assigned && v == lit.Val:
		if lit.Eq {
			return search.LiteralTrue
		}
		return search.LiteralFalse
	}
	return search.LiteralUnknown
}

func (s *Space) Exclude(l search.Literal) bool {
	lit := l.(Literal)
	if lit.Eq {
		return s.remove(lit.Var, lit.Val)
	}
	return s.assign(lit.Var, lit.Val)
}

// Slave diversifies portfolio assets: odd assets try the largest value
// first.
func (s *Space) Slave(mi search.MetaInfo) bool {
	if mi.Asset > 0 {
		s.preferMax = mi.Asset%2 == 1
	}
	return true
}

func (s *Space) Allocated() int {
	n := 0
	for _, d := range s.domains {
		n += 8 * len(d.Bytes())
	}
	return n
}

func (s *Space) offset(x Var) int {
	return s.m.vars[x].min
}

// Contains returns whether val is in the domain of x.
func (s *Space) Contains(x Var, val int) bool {
	i := val - s.offset(x)
	return i >= 0 && s.domains[x].Test(uint(i))
}

// Min returns the smallest value of x. It must not be called on a
// failed space.
func (s *Space) Min(x Var) int {
	i, _ := s.domains[x].NextSet(0)
	return int(i) + s.offset(x)
}

// Max returns the largest value of x.
func (s *Space) Max(x Var) int {
	hi := 0
	for i, ok := s.domains[x].NextSet(0); ok; i, ok = s.domains[x].NextSet(i + 1) {
		hi = int(i)
	}
	return hi + s.offset(x)
}

// Assigned returns the value of x if its domain is a single value.
func (s *Space) Assigned(x Var) (int, bool) {
	if s.domains[x].Count() != 1 {
		return 0, false
	}
	return s.Min(x), true
}

// Value returns the value of x in a solved space.
func (s *Space) Value(x Var) int {
	return s.Min(x)
}

// Values returns the values of all variables of a solved space.
func (s *Space) Values() []int {
	vs := make([]int, len(s.domains))
	for i := range s.domains {
		vs[i] = s.Min(Var(i))
	}
	return vs
}

// Cost returns the objective of a solved space.
func (s *Space) Cost() int {
	c := 0
	for _, t := range s.m.objective {
		c += t.Coef * s.Value(t.Var)
	}
	return c
}

func (s *Space) termMin(t Term) int {
	if t.Coef < 0 {
		return t.Coef * s.Max(t.Var)
	}
	return t.Coef * s.Min(t.Var)
}

func (s *Space) remove(x Var, val int) bool {
	i := val - s.offset(x)
	d := s.domains[x]
	if i >= 0 && d.Test(uint(i)) {
		d.Clear(uint(i))
		s.changes++
	}
	return d.Any()
}

func (s *Space) assign(x Var, val int) bool {
	if !s.Contains(x, val) {
		s.domains[x].ClearAll()
		return false
	}
	if s.domains[x].Count() == 1 {
		return true
	}
	s.domains[x].ClearAll()
	s.domains[x].Set(uint(val - s.offset(x)))
	s.changes++
	return true
}

func (s *Space) String() string {
	if s.Status() == search.StatusFailed {
		return "failed"
	}
	var b strings.Builder
	for i := range s.domains {
		if i > 0 {
			b.WriteString(" ")
		}
		x := Var(i)
		if v, ok := s.Assigned(x); ok {
			fmt.Fprintf(&b, "%s=%d", s.m.Name(x), v)
		} else {
			fmt.Fprintf(&b, "%s=[%d..%d]", s.m.Name(x), s.Min(x), s.Max(x))
		}
	}
	return b.String()
}
