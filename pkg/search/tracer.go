package search

import (
	"fmt"
	"io"
	"sync"
)

// TraceKind tells what happened at a node.
type TraceKind int

const (
	TraceBranch TraceKind = iota
	TraceFailed
	TraceSolved
	TraceSteal
	TraceRestart
)

func (k TraceKind) String() string {
	switch k {
	case TraceBranch:
		return "branch"
	case TraceFailed:
		return "failed"
	case TraceSolved:
		return "solved"
	case TraceSteal:
		return "steal"
	case TraceRestart:
		return "restart"
	}
	return "unknown"
}

// TraceEvent describes one step of a search.
type TraceEvent struct {
	Kind   TraceKind
	Worker int
	Node   uint64
	// Alternatives is set for branch events.
	Alternatives int
	Depth        int
}

type Tracer interface {
	Trace(e TraceEvent)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ TraceEvent) {
}

// LoggingTracer writes one line per event to Writer. It may be shared
// by the workers of a parallel engine.
type LoggingTracer struct {
	Writer io.Writer

	mu sync.Mutex
}

func (t *LoggingTracer) Trace(e TraceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch e.Kind {
	case TraceBranch:
		fmt.Fprintf(t.Writer, "[%d] %s node=%d depth=%d alternatives=%d\n", e.Worker, e.Kind, e.Node, e.Depth, e.Alternatives)
	default:
		fmt.Fprintf(t.Writer, "[%d] %s node=%d depth=%d\n", e.Worker, e.Kind, e.Node, e.Depth)
	}
}
