package root

import (
	"github.com/spf13/cobra"

	"github.com/operator-framework/searchkit/cmd/dimacs"
	"github.com/operator-framework/searchkit/cmd/queens"
	"github.com/operator-framework/searchkit/cmd/sudoku"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "searchkit",
		Short: "Searchkit explores the search trees of constraint problems",
		Long: `Searchkit explores the search trees of constraint problems with
depth-first search, branch and bound, limited discrepancy search,
parallel search, restarts and portfolios.`,
		SilenceUsage: true,
	}

	// add sub-commands
	rootCmd.AddCommand(dimacs.NewDimacsCommand())
	rootCmd.AddCommand(sudoku.NewSudokuCommand())
	rootCmd.AddCommand(queens.NewQueensCommand())

	return rootCmd
}
