// Package engine creates search engines from a root space and a list of
// options.
package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/searchkit/internal/meta"
	"github.com/operator-framework/searchkit/internal/par"
	"github.com/operator-framework/searchkit/internal/seq"
	"github.com/operator-framework/searchkit/pkg/search"
)

// Kind names an engine.
type Kind string

const (
	KindDFS       Kind = "dfs"
	KindBAB       Kind = "bab"
	KindLDS       Kind = "lds"
	KindParallel  Kind = "parallel"
	KindRestart   Kind = "restart"
	KindPortfolio Kind = "portfolio"
)

// Kinds lists all engine kinds.
var Kinds = []Kind{KindDFS, KindBAB, KindLDS, KindParallel, KindRestart, KindPortfolio}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown engine %q", search.ErrInvalidOption, s)
}

func newOptions(kind Kind, opts []search.Option) (*search.Options, error) {
	o, err := search.NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	o.Logger = o.Logger.WithFields(logrus.Fields{
		"engine": string(kind),
		"search": uuid.New().String(),
	})
	return o, nil
}

// DFS returns a depth-first engine.
func DFS(root search.Space, opts ...search.Option) (search.Engine, error) {
	o, err := newOptions(KindDFS, opts)
	if err != nil {
		return nil, err
	}
	return seq.NewDFS(root, o), nil
}

// BAB returns a branch and bound engine. root must implement
// search.Constrainer.
func BAB(root search.Space, opts ...search.Option) (search.Engine, error) {
	o, err := newOptions(KindBAB, opts)
	if err != nil {
		return nil, err
	}
	e, err := seq.NewBAB(root, o)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// LDS returns a limited discrepancy engine.
func LDS(root search.Space, opts ...search.Option) (search.Engine, error) {
	o, err := newOptions(KindLDS, opts)
	if err != nil {
		return nil, err
	}
	return seq.NewLDS(root, o), nil
}

// Parallel returns a depth-first engine running search.WithThreads
// workers. The engine must be closed. It does not optimize; use
// Portfolio(root, KindBAB, ...) to run branch and bound on several
// goroutines.
func Parallel(root search.Space, opts ...search.Option) (search.Engine, error) {
	o, err := newOptions(KindParallel, opts)
	if err != nil {
		return nil, err
	}
	return par.New(root, o), nil
}

// Restart returns a restart engine whose rounds are run by an engine of
// the given kind, which must be dfs, bab, lds or parallel. Rounds are
// limited by the cutoff sequence set with search.WithCutoff.
func Restart(root search.Space, inner Kind, opts ...search.Option) (search.Engine, error) {
	o, err := newOptions(KindRestart, opts)
	if err != nil {
		return nil, err
	}
	build, err := innerBuilder(inner)
	if err != nil {
		return nil, err
	}
	if inner == KindBAB && root != nil {
		if _, ok := root.(search.Constrainer); !ok {
			return nil, search.ErrNotConstrainable
		}
	}
	return meta.NewRestart(root, o, build, inner == KindBAB)
}

// Portfolio returns a portfolio of search.WithAssets engines of the
// given kind. Assets are diversified by the search.Slave hook of the
// root.
func Portfolio(root search.Space, asset Kind, opts ...search.Option) (search.Engine, error) {
	o, err := newOptions(KindPortfolio, opts)
	if err != nil {
		return nil, err
	}
	optimize := asset == KindBAB
	if optimize && root != nil {
		if _, ok := root.(search.Constrainer); !ok {
			return nil, search.ErrNotConstrainable
		}
	}
	build, err := assetBuilder(asset)
	if err != nil {
		return nil, err
	}
	return meta.NewPortfolio(root, o, build, optimize)
}

// New returns an engine of the given kind. Restart and portfolio
// engines run depth-first search, or branch and bound when optimize is
// set.
func New(kind Kind, root search.Space, optimize bool, opts ...search.Option) (search.Engine, error) {
	inner := KindDFS
	if optimize {
		inner = KindBAB
	}
	switch kind {
	case KindDFS:
		return DFS(root, opts...)
	case KindBAB:
		return BAB(root, opts...)
	case KindLDS:
		return LDS(root, opts...)
	case KindParallel:
		return Parallel(root, opts...)
	case KindRestart:
		return Restart(root, inner, opts...)
	case KindPortfolio:
		return Portfolio(root, inner, opts...)
	}
	return nil, fmt.Errorf("%w: unknown engine %q", search.ErrInvalidOption, kind)
}

func innerBuilder(kind Kind) (meta.Builder, error) {
	switch kind {
	case KindDFS:
		return func(root search.Space, o *search.Options) (meta.Inner, error) {
			return seq.NewDFS(root, withoutClone(o)), nil
		}, nil
	case KindBAB:
		return func(root search.Space, o *search.Options) (meta.Inner, error) {
			return seq.NewBAB(root, withoutClone(o))
		}, nil
	case KindLDS:
		return func(root search.Space, o *search.Options) (meta.Inner, error) {
			return seq.NewLDS(root, withoutClone(o)), nil
		}, nil
	case KindParallel:
		return func(root search.Space, o *search.Options) (meta.Inner, error) {
			return par.New(root, withoutClone(o)), nil
		}, nil
	}
	return nil, fmt.Errorf("%w: %q cannot be restarted", search.ErrInvalidOption, kind)
}

func assetBuilder(kind Kind) (meta.AssetBuilder, error) {
	switch kind {
	case KindRestart:
		return func(root search.Space, o *search.Options) (search.Engine, error) {
			// cutoff sequences are stateful, every asset gets its own
			ro, err := o.Copy(search.WithCutoff(search.Geometric(search.DefaultCutoffScale, search.DefaultCutoffBase)))
			if err != nil {
				return nil, err
			}
			return meta.NewRestart(root, ro, func(root search.Space, o *search.Options) (meta.Inner, error) {
				return seq.NewDFS(root, o), nil
			}, false)
		}, nil
	case KindPortfolio:
		return nil, fmt.Errorf("%w: portfolios cannot be nested", search.ErrInvalidOption)
	}
	build, err := innerBuilder(kind)
	if err != nil {
		return nil, err
	}
	return func(root search.Space, o *search.Options) (search.Engine, error) {
		return build(root, o)
	}, nil
}

func withoutClone(o *search.Options) *search.Options {
	c := *o
	c.Clone = false
	return &c
}
