package search

import (
	"sync"
	"time"
)

// Stop decides whether a search must stop. Stop is polled after every
// node with the statistics of the polling worker, possibly from several
// goroutines at once.
type Stop interface {
	Stop(s Statistics) bool
}

// StopFunc adapts a function to the Stop interface.
type StopFunc func(s Statistics) bool

func (f StopFunc) Stop(s Statistics) bool {
	return f(s)
}

// NodeStop stops once more than Limit nodes have been explored.
type NodeStop struct {
	Limit uint64
}

func (n NodeStop) Stop(s Statistics) bool {
	return s.Node > n.Limit
}

// FailStop stops once more than Limit failures have been encountered.
type FailStop struct {
	Limit uint64
}

func (f FailStop) Stop(s Statistics) bool {
	return s.Fail > f.Limit
}

// MemoryStop stops once stored clones use more than Limit bytes.
type MemoryStop struct {
	Limit int
}

func (m MemoryStop) Stop(s Statistics) bool {
	return s.Memory > m.Limit
}

// TimeStop stops once Limit has elapsed since the first poll or the
// last Reset.
type TimeStop struct {
	limit time.Duration
	now   func() time.Time

	mu    sync.Mutex
	start time.Time
}

// NewTimeStop returns a TimeStop for limit.
func NewTimeStop(limit time.Duration) *TimeStop {
	return &TimeStop{limit: limit, now: time.Now}
}

func (t *TimeStop) Stop(_ Statistics) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if t.start.IsZero() {
		t.start = now
	}
	return now.Sub(t.start) > t.limit
}

// Reset restarts the clock.
func (t *TimeStop) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = time.Time{}
}

// AnyStop stops as soon as one of its members stops.
type AnyStop []Stop

func (a AnyStop) Stop(s Statistics) bool {
	for _, st := range a {
		if st != nil && st.Stop(s) {
			return true
		}
	}
	return false
}
