package meta_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/searchkit/internal/meta"
	"github.com/operator-framework/searchkit/internal/testspace"
	"github.com/operator-framework/searchkit/pkg/search"
)

func TestRestartFindsEverySolutionOnce(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		tree := hard(seed)
		r, err := meta.NewRestart(tree.Root(), options(t, search.WithCutoff(search.Constant(1))), dfs, false)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		got := testspace.Collect(ctx, r, 0)
		cancel()
		if diff := cmp.Diff(sorted(tree.Solutions()), sorted(got)); diff != "" {
			t.Errorf("seed %d: unexpected solutions (-want +got):\n%s", seed, diff)
		}
		assert.False(t, r.Stopped())
		st := r.Statistics()
		if st.Fail > 2 {
			assert.NotZero(t, st.Restart, "seed %d", seed)
			assert.NotZero(t, st.NoGood, "seed %d", seed)
		}
		r.Close()
	}
}

// nodes returns the number of nodes of the full tree below the root.
func nodes(tree *testspace.Tree) uint64 {
	n, level := uint64(0), uint64(1)
	for i := 0; i < tree.Vars; i++ {
		level *= uint64(tree.Values)
		n += level
	}
	return n
}

func TestRestartConstantCutoffMakesProgress(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		for scale := uint64(1); scale <= 3; scale++ {
			tree := hard(seed)
			r, err := meta.NewRestart(tree.Root(), options(t, search.WithCutoff(search.Constant(scale))), dfs, false)
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			got := testspace.Collect(ctx, r, 0)
			cancel()

			require.False(t, r.Stopped(), "seed %d scale %d: search did not finish", seed, scale)
			assert.Len(t, got, len(tree.Solutions()), "seed %d scale %d", seed, scale)
			// every round learns at least one failed alternative
			assert.LessOrEqual(t, r.Statistics().Restart, nodes(tree), "seed %d scale %d", seed, scale)
			r.Close()
		}
	}
}

func TestRestartWithoutNoGoods(t *testing.T) {
	// without nogoods the rounds repeat themselves, growing cutoffs
	// still complete the search
	tree := hard(3)
	o := options(t, search.WithCutoff(search.Geometric(1, 2)), search.WithNoGoodsLimit(0))
	r, err := meta.NewRestart(tree.Root(), o, dfs, false)
	require.NoError(t, err)

	got := testspace.Collect(context.Background(), r, 0)
	expected := tree.Solutions()
	assert.Subset(t, got, expected)
	assert.Subset(t, expected, got)
	assert.Zero(t, r.Statistics().NoGood)
}

func TestRestartBranchAndBound(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		tree := hard(seed)
		if len(tree.Solutions()) == 0 {
			continue
		}
		r, err := meta.NewRestart(tree.Root(), options(t, search.WithCutoff(search.Luby(2))), bab, true)
		require.NoError(t, err)

		var cs []int
		for s := r.Next(context.Background()); s != nil; s = r.Next(context.Background()) {
			cs = append(cs, s.(*testspace.Space).Cost())
		}
		require.NotEmpty(t, cs, "seed %d", seed)
		for i := 1; i < len(cs); i++ {
			assert.Less(t, cs[i], cs[i-1], "seed %d: costs %v", seed, cs)
		}
		assert.Equal(t, minCost(tree), cs[len(cs)-1], "seed %d", seed)
		r.Close()
	}
}

func TestRestartStop(t *testing.T) {
	tree := &testspace.Tree{Vars: 20, Values: 2, Fail: func(vals []int) bool {
		return vals[len(vals)-1] != testspace.Unassigned
	}}
	o := options(t, search.WithCutoff(search.Constant(4)), search.WithFailLimit(100))
	r, err := meta.NewRestart(tree.Root(), o, dfs, false)
	require.NoError(t, err)
	assert.Nil(t, r.Next(context.Background()))
	assert.True(t, r.Stopped())
	assert.NotZero(t, r.Statistics().Restart)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err = meta.NewRestart(tree.Root(), options(t), dfs, false)
	require.NoError(t, err)
	assert.Nil(t, r.Next(ctx))
	assert.True(t, r.Stopped())
}

func TestRestartFailedRoot(t *testing.T) {
	tree := &testspace.Tree{Vars: 2, Values: 2, Fail: func([]int) bool { return true }}
	r, err := meta.NewRestart(tree.Root(), options(t), dfs, false)
	require.NoError(t, err)
	assert.Nil(t, r.Next(context.Background()))
	assert.False(t, r.Stopped())
	assert.Equal(t, uint64(1), r.Statistics().Fail)
	r.Close()
}

func TestRestartStopLimit(t *testing.T) {
	st := meta.NewRestartStop(search.NodeStop{Limit: 10})
	st.Limit(search.Statistics{Fail: 5}, 3)
	assert.False(t, st.Stop(search.Statistics{Fail: 8}))
	assert.True(t, st.Stop(search.Statistics{Fail: 9}))
	assert.False(t, st.EngineStopped())

	assert.True(t, st.Stop(search.Statistics{Node: 11}))
	assert.True(t, st.EngineStopped())

	st.Limit(search.Statistics{Fail: 1}, ^uint64(0))
	assert.False(t, st.EngineStopped())
	assert.False(t, st.Stop(search.Statistics{Fail: 1 << 62}))
}
