package sudoku

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/operator-framework/searchkit/cmd/run"
	"github.com/operator-framework/searchkit/pkg/sat"
	"github.com/operator-framework/searchkit/pkg/search"
)

func NewSudokuCommand() *cobra.Command {
	var (
		flags  run.Flags
		seed   int64
		puzzle string
	)
	cmd := &cobra.Command{
		Use:   "sudoku",
		Short: "Returns a solved sudoku board",
		Long: `Returns a solved sudoku board. With --puzzle the board is completed
from the given digits, written row by row with '.' for empty cells.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			var givens Board
			if puzzle != "" {
				var err error
				if givens, err = ParseBoard(puzzle); err != nil {
					return fmt.Errorf("error parsing puzzle: %w", err)
				}
			}
			model, err := NewModel(givens, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}
			return flags.Search(cmd, model.Root(), false, printBoard)
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for the order cells are filled in, random if unset")
	cmd.Flags().StringVar(&puzzle, "puzzle", "", "digits to complete, 81 cells with '.' for empty ones")
	return cmd
}

func printBoard(w io.Writer, s search.Space) {
	fmt.Fprint(w, BoardOf(s.(*sat.Space)))
}
