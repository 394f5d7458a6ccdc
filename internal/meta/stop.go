package meta

import (
	"sync/atomic"

	"github.com/operator-framework/searchkit/pkg/search"
)

// RestartStop is the stop condition installed into the inner engine of
// a restart engine. It stops a round once the failure limit of the
// round is exceeded, and the whole search when the user stop fires.
// It may be polled by several workers at once.
type RestartStop struct {
	user search.Stop

	limit         atomic.Uint64
	engineStopped atomic.Bool
}

// NewRestartStop wraps the user stop, which may be nil.
func NewRestartStop(user search.Stop) *RestartStop {
	return &RestartStop{user: user}
}

// Limit allows l more failures on top of those in s.
func (r *RestartStop) Limit(s search.Statistics, l uint64) {
	if s.Fail > ^uint64(0)-l {
		r.limit.Store(^uint64(0))
	} else {
		r.limit.Store(s.Fail + l)
	}
	r.engineStopped.Store(false)
}

func (r *RestartStop) Stop(s search.Statistics) bool {
	if r.user != nil && r.user.Stop(s) {
		r.engineStopped.Store(true)
		return true
	}
	return s.Fail > r.limit.Load()
}

// EngineStopped returns whether the user stop fired, as opposed to the
// failure limit of the round.
func (r *RestartStop) EngineStopped() bool {
	return r.engineStopped.Load()
}
