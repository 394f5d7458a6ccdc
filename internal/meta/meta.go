// Package meta implements engines that drive other engines: restart
// based search and portfolio search.
package meta

import (
	"github.com/operator-framework/searchkit/pkg/search"
)

// Inner is an engine that can be driven by a meta engine.
type Inner interface {
	search.Engine
	// Reset restarts the engine from root, which it takes ownership
	// of. Statistics are kept.
	Reset(root search.Space)
	// NoGoods describes the part of the tree explored since the last
	// reset.
	NoGoods() search.NoGoods
	// SetStop replaces the stop condition of the engine.
	SetStop(st search.Stop)
}

// Builder creates the inner engine of a restart engine for root. The
// root is owned by the engine.
type Builder func(root search.Space, opts *search.Options) (Inner, error)

// AssetBuilder creates a portfolio asset for root.
type AssetBuilder func(root search.Space, opts *search.Options) (search.Engine, error)

// slave prepares s as the root of a run and returns whether the search
// below it is complete.
func slave(s search.Space, mi search.MetaInfo) bool {
	if sl, ok := s.(search.Slave); ok {
		return sl.Slave(mi)
	}
	return true
}
