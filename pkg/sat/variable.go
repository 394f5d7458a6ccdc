// Package sat models boolean problems as search spaces. Variables carry
// constraints that are compiled into a gini circuit; the resulting
// Space is explored by the engines of package search.
package sat

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// NotSatisfiable is an error composed of a set of applied constraints
// that is sufficient to make a solution impossible.
type NotSatisfiable []AppliedConstraint

func (e NotSatisfiable) Error() string {
	const msg = "constraints not satisfiable"
	if len(e) == 0 {
		return msg
	}
	s := make([]string, len(e))
	for i, a := range e {
		s[i] = a.String()
	}
	return fmt.Sprintf("%s:\n%s", msg, strings.Join(s, "\n"))
}

// Identifier values uniquely identify particular Variables within a
// Model.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Variable values are the basic unit of problems and solutions
// understood by this package.
type Variable interface {
	// Identifier returns the Identifier that uniquely identifies
	// this Variable among all other Variables in a given
	// problem.
	Identifier() Identifier
	// Constraints returns the set of constraints that apply to
	// this Variable.
	Constraints() []Constraint
}

// LitMapping translates Identifiers into the literals of the circuit
// a Model is compiled to.
type LitMapping interface {
	LitOf(subject Identifier) z.Lit
	LogicCircuit() *logic.C
}

// Constraint implementations limit the circumstances under which a
// particular Variable can appear in a solution.
type Constraint interface {
	String(subject Identifier) string
	Apply(lm LitMapping, subject Identifier) z.Lit
}

// AppliedConstraint values compose a single Constraint with the
// Variable it applies to.
type AppliedConstraint struct {
	Variable   Variable
	Constraint Constraint
}

// String implements fmt.Stringer and returns a human-readable message
// representing the receiver.
func (a AppliedConstraint) String() string {
	return a.Constraint.String(a.Variable.Identifier())
}

var _ Variable = &SimpleVariable{}

type SimpleVariable struct {
	id          Identifier
	constraints []Constraint
}

func (s *SimpleVariable) Identifier() Identifier {
	return s.id
}

func (s *SimpleVariable) Constraints() []Constraint {
	return s.constraints
}

func (s *SimpleVariable) AddConstraint(constraint Constraint) {
	s.constraints = append(s.constraints, constraint)
}

func NewVariable(id Identifier, constraints ...Constraint) *SimpleVariable {
	return &SimpleVariable{
		id:          id,
		constraints: constraints,
	}
}

// zeroVariable is returned by VariableOf in error cases.
type zeroVariable struct{}

var _ Variable = zeroVariable{}

func (zeroVariable) Identifier() Identifier {
	return ""
}

func (zeroVariable) Constraints() []Constraint {
	return nil
}
