package testspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/searchkit/internal/testspace"
	"github.com/operator-framework/searchkit/pkg/search"
)

func TestChoiceSkipsExcludedValues(t *testing.T) {
	tree := &testspace.Tree{Vars: 2, Values: 3}
	s := tree.Root()
	s.PostNoGoods(search.NoGoods{Levels: []search.NoGoodLevel{
		{Excluded: []search.Literal{testspace.Literal{Var: 0, Val: 0}}},
	}})
	require.Equal(t, search.StatusBranch, s.Status())

	c := s.Choice()
	require.Equal(t, 2, c.Alternatives())
	ng := c.(search.NoGoodChoice)
	assert.Equal(t, testspace.Literal{Var: 0, Val: 1}, ng.NoGoodLiteral(0))
	assert.Equal(t, testspace.Literal{Var: 0, Val: 2}, ng.NoGoodLiteral(1))

	s.Commit(c, 1)
	assert.Equal(t, []int{2, testspace.Unassigned}, s.Values())
}

func TestChoiceReversed(t *testing.T) {
	tree := &testspace.Tree{Vars: 1, Values: 3}
	s := tree.Root()
	s.Slave(search.MetaInfo{Asset: 1})
	s.Exclude(testspace.Literal{Var: 0, Val: 2})

	c := s.Choice()
	require.Equal(t, 2, c.Alternatives())
	s.Commit(c, 0)
	assert.Equal(t, []int{1}, s.Values())
	assert.Equal(t, search.StatusSolved, s.Status())
}
