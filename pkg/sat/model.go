package sat

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

type DuplicateIdentifier Identifier

func (e DuplicateIdentifier) Error() string {
	return fmt.Sprintf("duplicate identifier %q in input", Identifier(e))
}

const unsatisfiable = -1

// Model is a compiled set of Variables. A Model is immutable once
// created and is shared by all spaces searching it.
type Model struct {
	inorder     []Variable
	lits        map[Identifier]z.Lit
	index       map[z.Var]int
	constraints map[z.Lit]AppliedConstraint
	roots       []z.Lit
	c           *logic.C

	objective  []int
	cs         *logic.CardSort
	preferTrue bool
	errs       []error
}

// ModelOption configures a Model.
type ModelOption func(m *Model) error

// WithMinimize makes the number of selected Variables among ids the
// objective of the model. Spaces of the model can then be used for
// branch and bound.
func WithMinimize(ids ...Identifier) ModelOption {
	return func(m *Model) error {
		for _, id := range ids {
			i, ok := m.index[m.LitOf(id).Var()]
			if !ok {
				return fmt.Errorf("objective variable %q not provided", id)
			}
			m.objective = append(m.objective, i)
		}
		return nil
	}
}

// WithSelectFirst makes spaces try selecting a variable before
// deselecting it.
func WithSelectFirst() ModelOption {
	return func(m *Model) error {
		m.preferTrue = true
		return nil
	}
}

// WithMinimizeAll minimizes the number of selected Variables.
func WithMinimizeAll() ModelOption {
	return func(m *Model) error {
		m.objective = m.objective[:0]
		for i := range m.inorder {
			m.objective = append(m.objective, i)
		}
		return nil
	}
}

// NewModel compiles variables and their constraints into a circuit.
func NewModel(variables []Variable, options ...ModelOption) (*Model, error) {
	m := &Model{
		inorder:     variables,
		lits:        make(map[Identifier]z.Lit, len(variables)),
		index:       make(map[z.Var]int, len(variables)),
		constraints: make(map[z.Lit]AppliedConstraint),
		c:           logic.NewCCap(len(variables)),
	}

	// First pass to assign lits:
	for i, variable := range variables {
		if _, ok := m.lits[variable.Identifier()]; ok {
			return nil, DuplicateIdentifier(variable.Identifier())
		}
		im := m.c.Lit()
		m.lits[variable.Identifier()] = im
		m.index[im.Var()] = i
	}

	for _, variable := range variables {
		for _, constraint := range variable.Constraints() {
			lit := constraint.Apply(m, variable.Identifier())
			if lit == z.LitNull {
				// This constraint doesn't have a
				// useful representation in the SAT
				// inputs.
				continue
			}
			if _, ok := m.constraints[lit]; !ok {
				m.roots = append(m.roots, lit)
			}
			m.constraints[lit] = AppliedConstraint{
				Variable:   variable,
				Constraint: constraint,
			}
		}
	}

	for _, option := range options {
		if err := option(m); err != nil {
			return nil, err
		}
	}
	ms := make([]z.Lit, len(m.objective))
	for i, v := range m.objective {
		ms[i] = m.lits[m.inorder[v].Identifier()]
	}
	m.cs = m.c.CardSort(ms)

	if err := m.Error(); err != nil {
		return nil, err
	}
	return m, nil
}

// LitOf returns the positive literal corresponding to the Variable
// with the given Identifier.
func (m *Model) LitOf(id Identifier) z.Lit {
	lit, ok := m.lits[id]
	if ok {
		return lit
	}
	m.errs = append(m.errs, fmt.Errorf("variable %q referenced but not provided", id))
	return z.LitNull
}

func (m *Model) LogicCircuit() *logic.C {
	return m.c
}

// VariableOf returns the Variable corresponding to the provided
// literal, or a zeroVariable if no such Variable exists.
func (m *Model) VariableOf(lit z.Lit) Variable {
	if i, ok := m.index[lit.Var()]; ok {
		return m.inorder[i]
	}
	return zeroVariable{}
}

// Error returns a single error value that is an aggregation of all
// errors encountered while compiling the model.
func (m *Model) Error() error {
	if len(m.errs) == 0 {
		return nil
	}
	s := make([]string, len(m.errs))
	for i, err := range m.errs {
		s[i] = err.Error()
	}
	return fmt.Errorf("%d errors encountered: %s", len(s), strings.Join(s, ", "))
}

// Variables returns the variables of the model in input order.
func (m *Model) Variables() []Variable {
	return m.inorder
}

// Optimizing returns whether the model has an objective.
func (m *Model) Optimizing() bool {
	return len(m.objective) > 0
}

// solver returns a fresh solver that knows the circuit and the given
// clauses, and assumes all constraints hold.
func (m *Model) solver(clauses [][]z.Lit) *gini.Gini {
	g := gini.NewV(m.c.Len())
	m.c.ToCnf(g)
	for _, c := range clauses {
		for _, lit := range c {
			g.Add(lit)
		}
		g.Add(z.LitNull)
	}
	g.Assume(m.roots...)
	return g
}

// bound returns the literal limiting the objective to at most n.
func (m *Model) bound(n int) z.Lit {
	return m.cs.Leq(n)
}

// Conflicts returns the constraints responsible for the model having no
// solution at all, or nil if the model is satisfiable.
func (m *Model) Conflicts() NotSatisfiable {
	g := m.solver(nil)
	if g.Solve() != unsatisfiable {
		return nil
	}
	return m.conflicts(g)
}

func (m *Model) conflicts(g inter.Assumable) NotSatisfiable {
	whys := g.Why(nil)
	as := make(NotSatisfiable, 0, len(whys))
	for _, why := range whys {
		if a, ok := m.constraints[why]; ok {
			as = append(as, a)
		}
	}
	return as
}

// Root returns a space for searching the model.
func (m *Model) Root() *Space {
	return &Space{
		m:          m,
		bound:      math.MaxInt32,
		next:       -1,
		preferTrue: m.preferTrue,
	}
}
