// Package worker holds the per-goroutine bookkeeping shared by all
// search engines.
package worker

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/searchkit/pkg/search"
)

type resetter interface {
	Reset()
}

// Worker tracks the statistics of one search goroutine and evaluates
// its stop condition. A Worker is not safe for concurrent use.
type Worker struct {
	search.Statistics

	id      int
	stopped bool
	nid     uint64
	log     logrus.FieldLogger
	tracer  search.Tracer
}

// New returns a worker with the given id. The logger carries a worker
// field.
func New(id int, log logrus.FieldLogger, tracer search.Tracer) *Worker {
	if tracer == nil {
		tracer = search.DefaultTracer{}
	}
	return &Worker{
		id:     id,
		log:    log.WithField("worker", id),
		tracer: tracer,
	}
}

func (w *Worker) ID() int {
	return w.id
}

func (w *Worker) Logger() logrus.FieldLogger {
	return w.log
}

// Start clears the stopped flag and resets time based stop objects.
func (w *Worker) Start(st search.Stop) {
	w.stopped = false
	ResetStop(st)
}

// ResetStop resets st and, for an AnyStop, all of its members that
// measure time since their last reset.
func ResetStop(st search.Stop) {
	if r, ok := st.(resetter); ok {
		r.Reset()
	}
	if stops, ok := st.(search.AnyStop); ok {
		for _, s := range stops {
			ResetStop(s)
		}
	}
}

// Stop polls ctx and st against the worker's own statistics. Once it
// returns true the worker is marked stopped.
func (w *Worker) Stop(ctx context.Context, st search.Stop) bool {
	return w.StopWith(ctx, st, w.Statistics)
}

// StopWith is like Stop but evaluates st against s. Parallel engines use
// it to apply limits to the statistics of the whole engine.
func (w *Worker) StopWith(ctx context.Context, st search.Stop, s search.Statistics) bool {
	if ctx != nil && ctx.Err() != nil {
		w.stopped = true
		return true
	}
	if st != nil && st.Stop(s) {
		w.stopped = true
		return true
	}
	return false
}

// Stopped returns whether the last exploration was stopped.
func (w *Worker) Stopped() bool {
	return w.stopped
}

// StackDepth records the depth of the path after a push.
func (w *Worker) StackDepth(d int) {
	if uint64(d) > w.Depth {
		w.Depth = uint64(d)
	}
}

// NextID returns a fresh node id.
func (w *Worker) NextID() uint64 {
	id := w.nid
	w.nid++
	return id
}

// Trace reports e with the worker id filled in.
func (w *Worker) Trace(e search.TraceEvent) {
	e.Worker = w.id
	w.tracer.Trace(e)
}

// Reset clears the stopped flag. Statistics are kept.
func (w *Worker) Reset() {
	w.stopped = false
}
