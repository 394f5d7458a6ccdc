package sat

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/z"
)

type mandatory struct{}

func (constraint mandatory) String(subject Identifier) string {
	return fmt.Sprintf("%s is mandatory", subject)
}

func (constraint mandatory) Apply(lm LitMapping, subject Identifier) z.Lit {
	return lm.LitOf(subject)
}

// Mandatory returns a Constraint that will permit only solutions that
// contain a particular Variable.
func Mandatory() Constraint {
	return mandatory{}
}

type prohibited struct{}

func (constraint prohibited) String(subject Identifier) string {
	return fmt.Sprintf("%s is prohibited", subject)
}

func (constraint prohibited) Apply(lm LitMapping, subject Identifier) z.Lit {
	return lm.LitOf(subject).Not()
}

// Prohibited returns a Constraint that will reject any solution that
// contains a particular Variable.
func Prohibited() Constraint {
	return prohibited{}
}

type dependency []Identifier

func (constraint dependency) String(subject Identifier) string {
	if len(constraint) == 0 {
		return fmt.Sprintf("%s has a dependency without any candidates to satisfy it", subject)
	}
	return fmt.Sprintf("%s requires at least one of %s", subject, join(constraint))
}

func (constraint dependency) Apply(lm LitMapping, subject Identifier) z.Lit {
	c := lm.LogicCircuit()
	m := lm.LitOf(subject).Not()
	for _, each := range constraint {
		m = c.Or(m, lm.LitOf(each))
	}
	return m
}

// Dependency returns a Constraint that will only permit solutions
// containing a given Variable on the condition that at least one
// of the Variables identified by the given Identifiers also
// appears in the solution.
func Dependency(ids ...Identifier) Constraint {
	return dependency(ids)
}

type conflict Identifier

func (constraint conflict) String(subject Identifier) string {
	return fmt.Sprintf("%s conflicts with %s", subject, Identifier(constraint))
}

func (constraint conflict) Apply(lm LitMapping, subject Identifier) z.Lit {
	return lm.LogicCircuit().Or(lm.LitOf(subject).Not(), lm.LitOf(Identifier(constraint)).Not())
}

// Conflict returns a Constraint that will permit solutions containing
// either the constrained Variable, the Variable identified by
// the given Identifier, or neither, but not both.
func Conflict(id Identifier) Constraint {
	return conflict(id)
}

type leq struct {
	ids []Identifier
	n   int
}

func (constraint leq) String(subject Identifier) string {
	return fmt.Sprintf("%s permits at most %d of %s", subject, constraint.n, join(constraint.ids))
}

func (constraint leq) Apply(lm LitMapping, subject Identifier) z.Lit {
	ms := make([]z.Lit, len(constraint.ids))
	for i, each := range constraint.ids {
		ms[i] = lm.LitOf(each)
	}
	return lm.LogicCircuit().CardSort(ms).Leq(constraint.n)
}

// AtMost returns a Constraint that forbids solutions that contain
// more than n of the Variables identified by the given
// Identifiers.
func AtMost(n int, ids ...Identifier) Constraint {
	return leq{
		ids: ids,
		n:   n,
	}
}

// Literal is a possibly negated reference to a Variable, used to write
// clauses.
type Literal struct {
	ID      Identifier
	Negated bool
}

func (l Literal) String() string {
	if l.Negated {
		return "-" + string(l.ID)
	}
	return string(l.ID)
}

// Pos and Neg build literals.
func Pos(id Identifier) Literal { return Literal{ID: id} }
func Neg(id Identifier) Literal { return Literal{ID: id, Negated: true} }

type clause []Literal

func (constraint clause) String(subject Identifier) string {
	s := make([]string, len(constraint))
	for i, each := range constraint {
		s[i] = each.String()
	}
	return fmt.Sprintf("%s requires one of %s", subject, strings.Join(s, ", "))
}

func (constraint clause) Apply(lm LitMapping, _ Identifier) z.Lit {
	c := lm.LogicCircuit()
	m := c.F
	for _, each := range constraint {
		l := lm.LitOf(each.ID)
		if each.Negated {
			l = l.Not()
		}
		m = c.Or(m, l)
	}
	return m
}

// Clause returns a Constraint that permits only solutions in which at
// least one of the given literals holds. The constrained Variable only
// names the clause.
func Clause(lits ...Literal) Constraint {
	return clause(lits)
}

func join(ids []Identifier) string {
	s := make([]string, len(ids))
	for i, each := range ids {
		s[i] = string(each)
	}
	return strings.Join(s, ", ")
}
