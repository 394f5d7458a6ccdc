package sudoku

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/operator-framework/searchkit/pkg/sat"
)

// Board holds the digits of a sudoku, 0 for an empty cell.
type Board [9][9]int

// ParseBoard reads 81 cells row by row. Digits are givens, '.' and '0'
// are empty; whitespace is ignored.
func ParseBoard(s string) (Board, error) {
	var b Board
	i := 0
	for _, r := range s {
		switch {
		case r == ' ' || r == '\n' || r == '\t' || r == '\r':
			continue
		case i == 81:
			return b, fmt.Errorf("board has more than 81 cells")
		case r == '.' || r == '0':
		case r >= '1' && r <= '9':
			b[i/9][i%9] = int(r - '0')
		default:
			return b, fmt.Errorf("invalid cell %q at position %d", r, i)
		}
		i++
	}
	if i != 81 {
		return b, fmt.Errorf("board has %d cells, expected 81", i)
	}
	return b, nil
}

func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			if b[row][col] == 0 {
				sb.WriteByte('.')
			} else {
				sb.WriteByte(byte('0' + b[row][col]))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Solved returns whether b is completely filled in without repeating a
// digit in any row, column or box.
func (b Board) Solved() bool {
	var rows, cols, boxes [9][10]bool
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			n := b[row][col]
			box := row/3*3 + col/3
			if n == 0 || rows[row][n] || cols[col][n] || boxes[box][n] {
				return false
			}
			rows[row][n], cols[col][n], boxes[box][n] = true, true, true
		}
	}
	return true
}

// GetID names the variable placing digit num+1 at row, col.
func GetID(row int, col int, num int) sat.Identifier {
	n := num
	n += col * 9
	n += row * 81
	return sat.Identifier(fmt.Sprintf("%03d", n))
}

// BoardOf reads the board placed by a solved space.
func BoardOf(s *sat.Space) Board {
	var b Board
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			for n := 0; n < 9; n++ {
				if s.Value(GetID(row, col, n)) {
					b[row][col] = n + 1
					break
				}
			}
		}
	}
	return b
}

// NewModel returns the sudoku with the given digits as a sat model. The
// cells are branched on in an order shuffled by rng, so that different
// seeds lead to different boards.
func NewModel(givens Board, rng *rand.Rand) (*sat.Model, error) {
	// adapted from: https://github.com/go-air/gini/blob/871d828a26852598db2b88f436549634ba9533ff/sudoku_test.go#L10
	cells := make(map[sat.Identifier]*sat.SimpleVariable, 729)
	inorder := make([]sat.Variable, 0, 729+81)
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			for n := 0; n < 9; n++ {
				v := sat.NewVariable(GetID(row, col, n))
				if givens[row][col] == n+1 {
					v.AddConstraint(sat.Mandatory())
				}
				cells[v.Identifier()] = v
				inorder = append(inorder, v)
			}
		}
	}
	rng.Shuffle(len(inorder), func(i, j int) { inorder[i], inorder[j] = inorder[j], inorder[i] })

	// every position holds a digit
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			ids := make([]sat.Identifier, 9)
			for n := range ids {
				ids[n] = GetID(row, col, n)
			}
			id := sat.Identifier(fmt.Sprintf("%d-%d has a number", row, col))
			inorder = append(inorder, sat.NewVariable(id, sat.Mandatory(), sat.Dependency(ids...)))
		}
	}

	// a group holds every digit at most once
	group := func(pos [9][2]int) {
		for n := 0; n < 9; n++ {
			for i, a := range pos {
				v := cells[GetID(a[0], a[1], n)]
				for _, b := range pos[i+1:] {
					v.AddConstraint(sat.Conflict(GetID(b[0], b[1], n)))
				}
			}
		}
	}
	for i := 0; i < 9; i++ {
		var row, col, box [9][2]int
		for j := 0; j < 9; j++ {
			row[j] = [2]int{i, j}
			col[j] = [2]int{j, i}
			box[j] = [2]int{i/3*3 + j/3, i%3*3 + j%3}
		}
		group(row)
		group(col)
		group(box)
	}

	return sat.NewModel(inorder, sat.WithSelectFirst())
}
