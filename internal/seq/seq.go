// Package seq implements the sequential search engines. They run on the
// goroutine calling Next.
package seq

import (
	"github.com/operator-framework/searchkit/internal/worker"
	"github.com/operator-framework/searchkit/pkg/search"
)

// base holds what all sequential engines share.
type base struct {
	w    *worker.Worker
	opts *search.Options
	stop search.Stop
}

func newBase(opts *search.Options) base {
	return base{
		w:    worker.New(0, opts.Logger, opts.Tracer),
		opts: opts,
		stop: opts.StopCondition(),
	}
}

func (b *base) Stopped() bool {
	return b.w.Stopped()
}

func (b *base) Statistics() search.Statistics {
	return b.w.Statistics
}

// SetStop replaces the stop condition. Restart engines install their
// own stop this way.
func (b *base) SetStop(st search.Stop) {
	b.stop = st
}

// snapshot returns the space an engine starts from.
func snapshot(s search.Space, opts *search.Options) search.Space {
	if opts.Clone {
		return s.Clone()
	}
	return s
}

// failedRoot reports whether the search below s is empty.
func failedRoot(s search.Space) bool {
	return s == nil || s.Status() == search.StatusFailed
}
