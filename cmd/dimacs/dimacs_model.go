package dimacs

import (
	"github.com/operator-framework/searchkit/pkg/sat"
)

// GenerateVariables returns one variable per DIMACS variable. Every
// clause is attached, as a sat.Clause constraint, to the variable of its
// first literal.
func GenerateVariables(dimacs *Dimacs) []sat.Variable {
	ids := dimacs.Variables()
	byID := make(map[sat.Identifier]*sat.SimpleVariable, len(ids))
	variables := make([]sat.Variable, 0, len(ids))
	for _, id := range ids {
		v := sat.NewVariable(id)
		variables = append(variables, v)
		byID[id] = v
	}
	for _, clause := range dimacs.Clauses() {
		byID[clause[0].ID].AddConstraint(sat.Clause(clause...))
	}
	return variables
}

// NewModel compiles a DIMACS problem. With minimize set the number of
// true variables is minimized.
func NewModel(dimacs *Dimacs, minimize bool) (*sat.Model, error) {
	var opts []sat.ModelOption
	if minimize {
		opts = append(opts, sat.WithMinimizeAll())
	}
	return sat.NewModel(GenerateVariables(dimacs), opts...)
}
