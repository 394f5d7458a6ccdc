package sudoku_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/searchkit/cmd/sudoku"
	"github.com/operator-framework/searchkit/pkg/sat"
	"github.com/operator-framework/searchkit/pkg/search/engine"
)

const solved = `
534678912
672195348
198342567
859761423
426853791
713924856
961537284
287419635
345286179`

func TestParseBoard(t *testing.T) {
	b, err := sudoku.ParseBoard(solved)
	require.NoError(t, err)
	assert.True(t, b.Solved())
	assert.Equal(t, "5 3 4 6 7 8 9 1 2", strings.Split(b.String(), "\n")[0])

	b[0][0] = 3
	assert.False(t, b.Solved())

	_, err = sudoku.ParseBoard("123")
	assert.Error(t, err)
	_, err = sudoku.ParseBoard(strings.Repeat("x", 81))
	assert.Error(t, err)
	_, err = sudoku.ParseBoard(strings.Repeat(".", 82))
	assert.Error(t, err)
}

func TestSolvePuzzle(t *testing.T) {
	want, err := sudoku.ParseBoard(solved)
	require.NoError(t, err)
	puzzle := want
	for _, cell := range [][2]int{{0, 0}, {1, 4}, {2, 8}, {4, 4}, {6, 2}, {8, 8}} {
		puzzle[cell[0]][cell[1]] = 0
	}

	m, err := sudoku.NewModel(puzzle, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	e, err := engine.DFS(m.Root())
	require.NoError(t, err)
	defer e.Close()

	s := e.Next(context.Background())
	require.NotNil(t, s)
	got := sudoku.BoardOf(s.(*sat.Space))
	assert.True(t, got.Solved())
	assert.Equal(t, want, got)
}

func TestContradictingGivens(t *testing.T) {
	var givens sudoku.Board
	givens[0][0] = 5
	givens[0][8] = 5
	m, err := sudoku.NewModel(givens, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.NotEmpty(t, m.Conflicts())
}
