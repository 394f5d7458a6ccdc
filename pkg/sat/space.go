package sat

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/z"

	"github.com/operator-framework/searchkit/pkg/search"
)

var (
	_ search.Space        = &Space{}
	_ search.Constrainer  = &Space{}
	_ search.Sizer        = &Space{}
	_ search.NoGoodPoster = &Space{}
	_ search.Slave        = &Space{}
	_ search.NoGoodChoice = choice{}
)

const (
	unknown int8 = iota
	assignedTrue
	assignedFalse
)

// Space is a node of the search tree of a Model: the decisions taken so
// far plus the nogoods and the objective bound it has been constrained
// by. Status runs unit propagation over all of them.
type Space struct {
	m         *Model
	decisions []z.Lit
	// nogoods are clauses, shared between clones up to their length.
	nogoods [][]z.Lit
	bound   int
	// preferTrue tries selecting a variable before deselecting it.
	preferTrue bool

	valid  bool
	status search.Status
	values []int8
	next   int
}

// choice selects or deselects one variable.
type choice struct {
	lit        z.Lit
	preferTrue bool
}

func (c choice) Alternatives() int {
	return 2
}

// literal returns the literal committed by alternative alt.
func (c choice) literal(alt int) z.Lit {
	if (alt == 1) != c.preferTrue {
		return c.lit
	}
	return c.lit.Not()
}

func (c choice) NoGoodLiteral(alt int) search.Literal {
	return c.literal(alt)
}

func (s *Space) Clone() search.Space {
	c := *s
	c.decisions = append([]z.Lit(nil), s.decisions...)
	c.nogoods = s.nogoods[:len(s.nogoods):len(s.nogoods)]
	c.values = append([]int8(nil), s.values...)
	return &c
}

func (s *Space) Status() search.Status {
	if s.valid {
		return s.status
	}
	s.valid = true
	s.status = s.propagate()
	return s.status
}

func (s *Space) propagate() search.Status {
	g := s.m.solver(s.nogoods)
	g.Assume(s.m.bound(s.bound))
	g.Assume(s.decisions...)
	res, out := g.Test(make([]z.Lit, 0, len(s.m.inorder)+len(s.decisions)))
	if res == unsatisfiable {
		return search.StatusFailed
	}
	s.values = make([]int8, len(s.m.inorder))
	for _, m := range append(out, s.decisions...) {
		i, ok := s.m.index[m.Var()]
		if !ok {
			continue
		}
		if m.IsPos() {
			s.values[i] = assignedTrue
		} else {
			s.values[i] = assignedFalse
		}
	}
	for i, v := range s.values {
		if v == unknown {
			s.next = i
			return search.StatusBranch
		}
	}
	s.next = -1
	return search.StatusSolved
}

func (s *Space) Choice() search.Choice {
	if s.Status() != search.StatusBranch {
		search.Misuse("Choice", "space has status %s", s.status)
	}
	return choice{
		lit:        s.m.lits[s.m.inorder[s.next].Identifier()],
		preferTrue: s.preferTrue,
	}
}

func (s *Space) Commit(c search.Choice, alt int) {
	search.CheckAlternative("Commit", c, alt)
	s.decisions = append(s.decisions, c.(choice).literal(alt))
	s.valid = false
}

// Constrain limits the objective to strictly less than the cost of
// best.
func (s *Space) Constrain(best search.Space) {
	b := best.(*Space)
	if cost := b.Cost(); cost-1 < s.bound {
		s.bound = cost - 1
		s.valid = false
	}
}

// PostNoGoods adds the clauses described by ng.
func (s *Space) PostNoGoods(ng search.NoGoods) {
	for _, conj := range ng.Clauses() {
		c := make([]z.Lit, len(conj))
		for i, l := range conj {
			c[i] = l.(z.Lit).Not()
		}
		s.nogoods = append(s.nogoods, c)
	}
	s.valid = false
}

// Slave diversifies portfolio assets: odd assets invert the value
// order of the model.
func (s *Space) Slave(mi search.MetaInfo) bool {
	if mi.Asset > 0 {
		s.preferTrue = (mi.Asset%2 == 1) != s.m.preferTrue
	}
	return true
}

func (s *Space) Allocated() int {
	n := 4*len(s.decisions) + len(s.values)
	for _, c := range s.nogoods {
		n += 4 * len(c)
	}
	return n
}

// Model returns the model searched by the space.
func (s *Space) Model() *Model {
	return s.m
}

// Value returns whether the variable identified by id is selected in a
// solved space.
func (s *Space) Value(id Identifier) bool {
	lit, ok := s.m.lits[id]
	if !ok || s.Status() == search.StatusFailed {
		return false
	}
	return s.values[s.m.index[lit.Var()]] == assignedTrue
}

// Selected returns the selected variables in input order.
func (s *Space) Selected() []Variable {
	if s.Status() == search.StatusFailed {
		return nil
	}
	var result []Variable
	for i, v := range s.values {
		if v == assignedTrue {
			result = append(result, s.m.inorder[i])
		}
	}
	return result
}

// Cost returns the number of selected objective variables.
func (s *Space) Cost() int {
	if s.Status() == search.StatusFailed {
		return 0
	}
	n := 0
	for _, i := range s.m.objective {
		if s.values[i] == assignedTrue {
			n++
		}
	}
	return n
}

// Conflicts returns the constraints responsible for s having failed.
func (s *Space) Conflicts() NotSatisfiable {
	if s.Status() != search.StatusFailed {
		return nil
	}
	g := s.m.solver(nil)
	g.Assume(s.decisions...)
	if g.Solve() != unsatisfiable {
		// the failure is caused by nogoods or the bound
		return nil
	}
	return s.m.conflicts(g)
}

func (s *Space) String() string {
	if s.Status() == search.StatusFailed {
		return "failed"
	}
	var b strings.Builder
	for i, v := range s.values {
		if i > 0 {
			b.WriteString(" ")
		}
		id := s.m.inorder[i].Identifier()
		switch v {
		case assignedTrue:
			b.WriteString(string(id))
		case assignedFalse:
			fmt.Fprintf(&b, "-%s", id)
		default:
			fmt.Fprintf(&b, "?%s", id)
		}
	}
	return b.String()
}
