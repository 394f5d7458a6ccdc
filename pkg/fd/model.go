// Package fd models problems over integer variables with small finite
// domains. Domains are bit sets; propagation runs the posted
// constraints to a fixpoint.
package fd

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Var is an integer variable of a Model.
type Var int

// Term is a weighted variable of a linear objective.
type Term struct {
	Coef int
	Var  Var
}

type variable struct {
	name string
	min  int
	max  int
}

// propagator narrows domains. It returns false when the space fails.
type propagator interface {
	propagate(s *Space) bool
}

// Model declares variables and constraints. A Model must not be changed
// once Root has been called.
type Model struct {
	vars        []variable
	propagators []propagator
	objective   []Term
	err         error
}

func NewModel() *Model {
	return &Model{}
}

// IntVar declares a variable ranging over [lo, hi].
func (m *Model) IntVar(name string, lo, hi int) Var {
	if hi < lo && m.err == nil {
		m.err = fmt.Errorf("variable %q has an empty domain [%d,%d]", name, lo, hi)
	}
	m.vars = append(m.vars, variable{name: name, min: lo, max: hi})
	return Var(len(m.vars) - 1)
}

// BoolVar declares a 0/1 variable.
func (m *Model) BoolVar(name string) Var {
	return m.IntVar(name, 0, 1)
}

// Name returns the name of v.
func (m *Model) Name(v Var) string {
	return m.vars[v].name
}

func (m *Model) check(vs ...Var) {
	for _, v := range vs {
		if (v < 0 || int(v) >= len(m.vars)) && m.err == nil {
			m.err = fmt.Errorf("unknown variable %d", v)
		}
	}
}

// NotEqual posts x != y + offset.
func (m *Model) NotEqual(x, y Var, offset int) {
	m.check(x, y)
	m.propagators = append(m.propagators, notEqual{x: x, y: y, offset: offset})
}

// AllDifferent posts that all variables take different values.
func (m *Model) AllDifferent(vs ...Var) {
	m.check(vs...)
	m.propagators = append(m.propagators, allDifferent(vs))
}

// Equal posts x == val.
func (m *Model) Equal(x Var, val int) {
	m.check(x)
	m.propagators = append(m.propagators, equal{x: x, val: val})
}

// Minimize sets the objective to the sum of terms. Spaces of the model
// can then be used for branch and bound.
func (m *Model) Minimize(terms ...Term) {
	for _, t := range terms {
		m.check(t.Var)
	}
	m.objective = terms
}

// Root returns the space of the model before any decision.
func (m *Model) Root() (*Space, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := &Space{
		m:       m,
		domains: make([]*bitset.BitSet, len(m.vars)),
		bound:   maxBound,
	}
	for i, v := range m.vars {
		d := bitset.New(uint(v.max - v.min + 1))
		for j := 0; j <= v.max-v.min; j++ {
			d.Set(uint(j))
		}
		s.domains[i] = d
	}
	return s, nil
}
