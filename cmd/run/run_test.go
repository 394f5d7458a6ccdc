package run_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/searchkit/cmd/run"
	"github.com/operator-framework/searchkit/internal/testspace"
	"github.com/operator-framework/searchkit/pkg/search"
)

func execute(t *testing.T, tree *testspace.Tree, args ...string) string {
	t.Helper()
	var flags run.Flags
	cmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.Search(cmd, tree.Root(), false, func(w io.Writer, s search.Space) {
				fmt.Fprintln(w, s)
			})
		},
	}
	flags.AddFlags(cmd.Flags())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestSearchReportsStop(t *testing.T) {
	type tc struct {
		Name      string
		Tree      *testspace.Tree
		Args      []string
		Solutions int
		Notice    string
	}
	for _, tt := range []tc{
		{
			Name:      "all solutions",
			Tree:      &testspace.Tree{Vars: 2, Values: 2},
			Args:      []string{"--solutions", "0"},
			Solutions: 4,
		},
		{
			Name:      "requested solutions",
			Tree:      &testspace.Tree{Vars: 10, Values: 2},
			Args:      []string{"--solutions", "3"},
			Solutions: 3,
		},
		{
			Name:   "stopped after some solutions",
			Tree:   &testspace.Tree{Vars: 10, Values: 2},
			Args:   []string{"--solutions", "0", "--node-limit", "15"},
			Notice: "more may exist",
		},
		{
			Name:   "stopped before a solution",
			Tree:   &testspace.Tree{Vars: 10, Values: 2},
			Args:   []string{"--node-limit", "3"},
			Notice: "search stopped before a solution was found",
		},
		{
			Name:   "no solution",
			Tree:   &testspace.Tree{Vars: 2, Values: 2, Fail: func([]int) bool { return true }},
			Notice: "no solution found",
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			out := execute(t, tt.Tree, tt.Args...)
			if tt.Solutions > 0 {
				assert.Equal(t, tt.Solutions, strings.Count(out, "solution "), out)
			}
			if tt.Notice == "" {
				assert.NotContains(t, out, "stopped", out)
				assert.NotContains(t, out, "no solution", out)
			} else {
				assert.Contains(t, out, tt.Notice)
			}
		})
	}
}
