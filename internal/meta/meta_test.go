package meta_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/operator-framework/searchkit/internal/meta"
	"github.com/operator-framework/searchkit/internal/seq"
	"github.com/operator-framework/searchkit/internal/testspace"
	"github.com/operator-framework/searchkit/pkg/search"
)

func sorted(sols [][]int) [][]int {
	out := append([][]int(nil), sols...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}

func options(t *testing.T, opts ...search.Option) *search.Options {
	o, err := search.NewOptions(opts...)
	require.NoError(t, err)
	return o
}

func dfs(root search.Space, o *search.Options) (meta.Inner, error) {
	c := *o
	c.Clone = false
	return seq.NewDFS(root, &c), nil
}

func bab(root search.Space, o *search.Options) (meta.Inner, error) {
	c := *o
	c.Clone = false
	return seq.NewBAB(root, &c)
}

func minCost(tree *testspace.Tree) int {
	sols := tree.Solutions()
	best := tree.Cost(sols[0])
	for _, s := range sols[1:] {
		if c := tree.Cost(s); c < best {
			best = c
		}
	}
	return best
}

// hard fails most partial assignments so that rounds hit their cutoff.
func hard(seed int64) *testspace.Tree {
	return &testspace.Tree{
		Vars:    6,
		Values:  3,
		Fail:    testspace.RandomFail(seed, 3),
		Weights: []int{3, 1, 4, 1, 5, 2},
	}
}
