package queens

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/operator-framework/searchkit/cmd/run"
	"github.com/operator-framework/searchkit/pkg/fd"
	"github.com/operator-framework/searchkit/pkg/search"
)

func NewQueensCommand() *cobra.Command {
	var (
		flags    run.Flags
		n        int
		minimize bool
	)
	cmd := &cobra.Command{
		Use:   "queens",
		Short: "Places n queens on a chess board without any two attacking each other",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 1 {
				return fmt.Errorf("invalid board size %d", n)
			}
			model, qs := NewModel(n, minimize)
			root, err := model.Root()
			if err != nil {
				return err
			}
			return flags.Search(cmd, root, minimize, func(w io.Writer, s search.Space) {
				printBoard(w, s.(*fd.Space), qs)
			})
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().IntVarP(&n, "size", "n", 8, "size of the board")
	cmd.Flags().BoolVar(&minimize, "minimize", false, "minimize the row of the queen in the first column")
	return cmd
}

func printBoard(w io.Writer, s *fd.Space, qs []fd.Var) {
	for row := range qs {
		cells := make([]string, len(qs))
		for col, q := range qs {
			cells[col] = "."
			if s.Value(q) == row {
				cells[col] = "Q"
			}
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}
}
