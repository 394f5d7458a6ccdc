package search_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/operator-framework/searchkit/pkg/search"
)

// store evaluates string literals against a fixed set of true literals.
type store struct {
	holds    map[string]bool
	fails    map[string]bool
	excluded []string
}

func (s *store) LiteralState(l search.Literal) search.LiteralState {
	if s.holds[l.(string)] {
		return search.LiteralTrue
	}
	return search.LiteralUnknown
}

func (s *store) Exclude(l search.Literal) bool {
	s.excluded = append(s.excluded, l.(string))
	return !s.fails[l.(string)]
}

var chain = search.NoGoods{Levels: []search.NoGoodLevel{
	{Excluded: []search.Literal{"a"}, Guard: "b"},
	{Excluded: []search.Literal{"c", "d"}, Guard: "e"},
	{Excluded: []search.Literal{"f"}},
}}

func TestNoGoodsClauses(t *testing.T) {
	assert.Equal(t, 4, chain.Len())
	assert.False(t, chain.Empty())
	assert.True(t, search.NoGoods{Levels: []search.NoGoodLevel{{Guard: "x"}}}.Empty())

	expected := [][]search.Literal{
		{"a"},
		{"b", "c"},
		{"b", "d"},
		{"b", "e", "f"},
	}
	if diff := cmp.Diff(expected, chain.Clauses()); diff != "" {
		t.Errorf("unexpected clauses (-want +got):\n%s", diff)
	}
}

func TestNoGoodsPropagate(t *testing.T) {
	type tc struct {
		Name     string
		Holds    []string
		Fails    []string
		Result   bool
		Excluded []string
	}
	for _, tt := range []tc{
		{
			Name:     "first guard unknown",
			Result:   true,
			Excluded: []string{"a"},
		},
		{
			Name:     "first guard holds",
			Holds:    []string{"b"},
			Result:   true,
			Excluded: []string{"a", "c", "d"},
		},
		{
			Name:     "all guards hold",
			Holds:    []string{"b", "e"},
			Result:   true,
			Excluded: []string{"a", "c", "d", "f"},
		},
		{
			Name:     "exclusion fails",
			Holds:    []string{"b"},
			Fails:    []string{"c"},
			Result:   false,
			Excluded: []string{"a", "c"},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			s := &store{holds: map[string]bool{}, fails: map[string]bool{}}
			for _, l := range tt.Holds {
				s.holds[l] = true
			}
			for _, l := range tt.Fails {
				s.fails[l] = true
			}
			assert.Equal(t, tt.Result, chain.Propagate(s))
			assert.Equal(t, tt.Excluded, s.excluded)
		})
	}
}
