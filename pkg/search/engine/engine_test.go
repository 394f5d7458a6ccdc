package engine_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/searchkit/pkg/fd"
	"github.com/operator-framework/searchkit/pkg/search"
	"github.com/operator-framework/searchkit/pkg/search/engine"
)

// twoBools is x, y in {0, 1}, minimizing x+y.
func twoBools(t *testing.T) *fd.Space {
	m := fd.NewModel()
	x := m.BoolVar("x")
	y := m.BoolVar("y")
	m.Minimize(fd.Term{Coef: 1, Var: x}, fd.Term{Coef: 1, Var: y})
	root, err := m.Root()
	require.NoError(t, err)
	return root
}

func collect(t *testing.T, e search.Engine) [][]int {
	t.Helper()
	defer e.Close()
	var out [][]int
	for s := e.Next(context.Background()); s != nil; s = e.Next(context.Background()) {
		out = append(out, s.(*fd.Space).Values())
	}
	return out
}

func TestEngines(t *testing.T) {
	type tc struct {
		Name     string
		Kind     engine.Kind
		Optimize bool
		Options  []search.Option
		Expected [][]int
	}
	for _, tt := range []tc{
		{
			Name:     "dfs enumerates in order",
			Kind:     engine.KindDFS,
			Expected: [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		},
		{
			Name:     "bab stops at the optimum",
			Kind:     engine.KindBAB,
			Expected: [][]int{{0, 0}},
		},
		{
			Name:     "greedy lds",
			Kind:     engine.KindLDS,
			Options:  []search.Option{search.WithDiscrepancyLimit(0)},
			Expected: [][]int{{0, 0}},
		},
		{
			Name:     "unbounded lds",
			Kind:     engine.KindLDS,
			Options:  []search.Option{search.WithDiscrepancyLimit(-1)},
			Expected: [][]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		},
		{
			Name:     "restart",
			Kind:     engine.KindRestart,
			Options:  []search.Option{search.WithCutoff(search.Geometric(1, 2))},
			Expected: [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		},
		{
			Name:     "restarted bab",
			Kind:     engine.KindRestart,
			Optimize: true,
			Options:  []search.Option{search.WithCutoff(search.Geometric(1, 2))},
			Expected: [][]int{{0, 0}},
		},
		{
			Name:     "single asset portfolio",
			Kind:     engine.KindPortfolio,
			Optimize: true,
			Options:  []search.Option{search.WithAssets(1)},
			Expected: [][]int{{0, 0}},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			e, err := engine.New(tt.Kind, twoBools(t), tt.Optimize, tt.Options...)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.Expected, collect(t, e)); diff != "" {
				t.Errorf("unexpected solutions (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParallelEngine(t *testing.T) {
	e, err := engine.New(engine.KindParallel, twoBools(t), false, search.WithThreads(3))
	require.NoError(t, err)
	got := collect(t, e)
	assert.ElementsMatch(t, [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, got)
}

func TestParallelBranchAndBoundThroughPortfolio(t *testing.T) {
	e, err := engine.Parallel(twoBools(t), search.WithThreads(2))
	require.NoError(t, err)
	assert.ErrorIs(t, e.Constrain(twoBools(t)), search.ErrNotOptimizing)
	e.Close()

	p, err := engine.Portfolio(twoBools(t), engine.KindBAB, search.WithAssets(2), search.WithThreads(2))
	require.NoError(t, err)
	got := collect(t, p)
	require.NotEmpty(t, got)
	assert.Equal(t, []int{0, 0}, got[len(got)-1])
}

func TestPortfolioEngine(t *testing.T) {
	for _, kind := range []engine.Kind{engine.KindDFS, engine.KindLDS, engine.KindRestart, engine.KindParallel} {
		e, err := engine.Portfolio(twoBools(t), kind, search.WithAssets(2), search.WithThreads(2), search.WithDiscrepancyLimit(-1))
		require.NoError(t, err, kind)
		got := collect(t, e)
		assert.NotEmpty(t, got, kind)
		for _, s := range got {
			assert.Contains(t, [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, s, kind)
		}
	}

	_, err := engine.Portfolio(twoBools(t), engine.KindPortfolio)
	assert.ErrorIs(t, err, search.ErrInvalidOption)
}

func TestEngineErrors(t *testing.T) {
	_, err := engine.New(engine.Kind("bfs"), twoBools(t), false)
	assert.ErrorIs(t, err, search.ErrInvalidOption)

	_, err = engine.New(engine.KindDFS, twoBools(t), false, search.WithCloneDistance(-1))
	assert.ErrorIs(t, err, search.ErrInvalidOption)

	_, err = engine.Restart(twoBools(t), engine.KindRestart)
	assert.ErrorIs(t, err, search.ErrInvalidOption)

	e, err := engine.DFS(twoBools(t))
	require.NoError(t, err)
	assert.ErrorIs(t, e.Constrain(twoBools(t)), search.ErrNotOptimizing)
	e.Close()
}

func TestParseKind(t *testing.T) {
	for _, k := range engine.Kinds {
		parsed, err := engine.ParseKind(" " + string(k) + " ")
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	k, err := engine.ParseKind("BAB")
	require.NoError(t, err)
	assert.Equal(t, engine.KindBAB, k)

	_, err = engine.ParseKind("astar")
	assert.ErrorIs(t, err, search.ErrInvalidOption)
}
