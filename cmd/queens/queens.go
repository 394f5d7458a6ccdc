package queens

import (
	"fmt"

	"github.com/operator-framework/searchkit/pkg/fd"
)

// NewModel places n queens on an n×n board, one per column. The value of
// queen i is its row. With minimize set the row of the first queen is
// minimized.
func NewModel(n int, minimize bool) (*fd.Model, []fd.Var) {
	m := fd.NewModel()
	qs := make([]fd.Var, n)
	for i := range qs {
		qs[i] = m.IntVar(fmt.Sprintf("q%d", i), 0, n-1)
	}
	m.AllDifferent(qs...)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.NotEqual(qs[i], qs[j], j-i)
			m.NotEqual(qs[i], qs[j], i-j)
		}
	}
	if minimize && n > 0 {
		m.Minimize(fd.Term{Coef: 1, Var: qs[0]})
	}
	return m, qs
}
