package dimacs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/operator-framework/searchkit/cmd/run"
	"github.com/operator-framework/searchkit/pkg/sat"
	"github.com/operator-framework/searchkit/pkg/search"
)

func NewDimacsCommand() *cobra.Command {
	var (
		flags    run.Flags
		minimize bool
	)
	cmd := &cobra.Command{
		Use:   "solve <path>",
		Short: "Solves a sat problem given in dimacs format",
		Long: `Solves a sat problem given in dimacs format. For instance:
c
c this is a comment
c header: p cnf <number of variable> <number of clauses> 
p cnf 2 2
c clauses end in zero, negative means 'not'
c 0 (zero) is not a valid literal
1 2 0
1 -2 0
c cnf: (1 or 2) and (1 and not 2)
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return solve(cmd, &flags, args[0], minimize)
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().BoolVar(&minimize, "minimize", false, "minimize the number of true variables")
	return cmd
}

func solve(cmd *cobra.Command, flags *run.Flags, path string, minimize bool) error {
	// open dimacs file
	dimacsFile, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening dimacs file (%s): %w", path, err)
	}
	defer dimacsFile.Close()

	dimacs, err := NewDimacs(dimacsFile)
	if err != nil {
		return fmt.Errorf("error parsing dimacs file (%s): %w", path, err)
	}

	model, err := NewModel(dimacs, minimize)
	if err != nil {
		return err
	}
	root := model.Root()
	if root.Status() == search.StatusFailed {
		fmt.Fprintf(cmd.OutOrStdout(), "no solution found: %s\n", model.Conflicts())
		return nil
	}
	return flags.Search(cmd, root, minimize, printSolution)
}

func printSolution(w io.Writer, s search.Space) {
	sol := s.(*sat.Space)
	for _, v := range sol.Model().Variables() {
		fmt.Fprintf(w, "%s = %t\n", v.Identifier(), sol.Value(v.Identifier()))
	}
}
