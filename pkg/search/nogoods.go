package search

import (
	"fmt"
	"strings"
)

// NoGoodLevel is one level of a nogood chain. Every literal in Excluded
// must not hold once all guards of the previous levels hold. A nil Guard
// lets the chain continue unconditionally.
type NoGoodLevel struct {
	Excluded []Literal
	Guard    Literal
}

// NoGoods summarizes the part of a search tree an engine has already
// exhausted. The chain is read from the root: level i applies only
// when the guards of levels 0..i-1 hold.
type NoGoods struct {
	Levels []NoGoodLevel
}

// Len returns the number of nogoods in the chain.
func (ng NoGoods) Len() int {
	n := 0
	for _, l := range ng.Levels {
		n += len(l.Excluded)
	}
	return n
}

// Empty returns whether the chain excludes nothing.
func (ng NoGoods) Empty() bool {
	return ng.Len() == 0
}

// Clauses flattens the chain. Each returned conjunction must not hold.
func (ng NoGoods) Clauses() [][]Literal {
	var (
		out    [][]Literal
		guards []Literal
	)
	for _, l := range ng.Levels {
		for _, x := range l.Excluded {
			c := make([]Literal, 0, len(guards)+1)
			c = append(c, guards...)
			out = append(out, append(c, x))
		}
		if l.Guard != nil {
			guards = append(guards, l.Guard)
		}
	}
	return out
}

// LiteralState is the truth value of a literal in a store.
type LiteralState int

const (
	LiteralUnknown LiteralState = iota
	LiteralTrue
	LiteralFalse
)

// NoGoodStore is implemented by spaces that evaluate nogood chains
// lazily.
type NoGoodStore interface {
	// LiteralState returns the current truth value of l.
	LiteralState(l Literal) LiteralState
	// Exclude forces l to be false. It returns false when the store
	// fails as a consequence.
	Exclude(l Literal) bool
}

// Propagate applies the chain to store as far as its guards allow. It
// stops at the first guard that does not hold yet and returns false if
// the store failed. Spaces call Propagate again after each commit.
func (ng NoGoods) Propagate(store NoGoodStore) bool {
	for _, l := range ng.Levels {
		for _, x := range l.Excluded {
			if !store.Exclude(x) {
				return false
			}
		}
		if l.Guard == nil {
			continue
		}
		if store.LiteralState(l.Guard) != LiteralTrue {
			return true
		}
	}
	return true
}

func (ng NoGoods) String() string {
	var b strings.Builder
	for i, l := range ng.Levels {
		fmt.Fprintf(&b, "%d: not %v", i, l.Excluded)
		if l.Guard != nil {
			fmt.Fprintf(&b, " if %v", l.Guard)
		}
		b.WriteString("\n")
	}
	return b.String()
}
