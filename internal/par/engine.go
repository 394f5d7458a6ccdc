// Package par implements parallel depth-first search. Every worker runs
// on its own goroutine and explores its own path; idle workers steal
// work from the paths of the others.
package par

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/searchkit/internal/worker"
	"github.com/operator-framework/searchkit/pkg/search"
)

type commandKind int

const (
	cmdWork commandKind = iota
	cmdWait
	cmdReset
	cmdTerminate
)

func (k commandKind) String() string {
	switch k {
	case cmdWork:
		return "work"
	case cmdWait:
		return "wait"
	case cmdReset:
		return "reset"
	case cmdTerminate:
		return "terminate"
	}
	return "unknown"
}

// command is sent to a worker. Reset and terminate are acknowledged on
// ack; the worker then blocks until release is closed.
type command struct {
	kind    commandKind
	ack     *sync.WaitGroup
	release <-chan struct{}
}

// Engine is a parallel depth-first engine.
type Engine struct {
	opts    *search.Options
	stop    search.Stop
	log     logrus.FieldLogger
	workers []*searchWorker
	wg      sync.WaitGroup

	// nodes and fails are published by the workers after every step so
	// that limits apply to the engine as a whole.
	nodes uint64
	fails uint64

	mu         sync.Mutex
	solutions  []search.Space
	busy       int
	hasStopped bool
	signal     chan struct{}

	closed bool
}

// New starts opts.Threads workers. Worker 0 owns root; the others start
// by stealing from it. Close must be called to stop the goroutines.
func New(root search.Space, opts *search.Options) *Engine {
	e := &Engine{
		opts:   opts,
		stop:   opts.StopCondition(),
		log:    opts.Logger,
		signal: make(chan struct{}, 1),
	}
	for i := 0; i < opts.Threads; i++ {
		e.workers = append(e.workers, newSearchWorker(e, i))
	}
	w := e.workers[0]
	w.path.SetNoGoodsLimit(opts.NoGoodsLimit)
	if root == nil || root.Status() == search.StatusFailed {
		w.Fail++
	} else if opts.Clone {
		w.cur = root.Clone()
	} else {
		w.cur = root
	}
	e.busy = len(e.workers)

	e.wg.Add(len(e.workers))
	for _, w := range e.workers {
		go w.run()
	}
	e.log.WithField("threads", len(e.workers)).Debug("created engine")
	return e
}

func (e *Engine) notify() {
	select {
	case e.signal <- struct{}{}:
	default:
	}
}

func (e *Engine) broadcast(c command) {
	for _, w := range e.workers {
		w.cmds <- c
	}
}

// solution queues s and wakes up the engine.
func (e *Engine) solution(s search.Space) {
	e.mu.Lock()
	e.solutions = append(e.solutions, s)
	e.mu.Unlock()
	e.notify()
}

// idle is reported by a worker that ran out of work.
func (e *Engine) idle() {
	e.mu.Lock()
	e.busy--
	if e.busy == 0 {
		e.notify()
	}
	e.mu.Unlock()
}

// busyOne is reported while holding the mutex of the worker being robbed,
// which cannot become idle meanwhile. The counter thus never drops to
// zero while stolen work is in flight.
func (e *Engine) busyOne() {
	e.mu.Lock()
	e.busy++
	e.mu.Unlock()
}

func (e *Engine) stopped() {
	e.mu.Lock()
	e.hasStopped = true
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) totals(s search.Statistics) search.Statistics {
	s.Node = atomic.LoadUint64(&e.nodes)
	s.Fail = atomic.LoadUint64(&e.fails)
	return s
}

func (e *Engine) pop() (search.Space, bool) {
	if len(e.solutions) == 0 {
		return nil, false
	}
	s := e.solutions[0]
	e.solutions[0] = nil
	e.solutions = e.solutions[1:]
	return s, true
}

// Next returns the next solution found by any worker, or nil when the
// search is exhausted or stopped. Solutions are not ordered.
func (e *Engine) Next(ctx context.Context) search.Space {
	if e.closed {
		return nil
	}
	e.mu.Lock()
	if s, ok := e.pop(); ok {
		e.mu.Unlock()
		return s
	}
	e.hasStopped = false
	if e.busy == 0 {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	worker.ResetStop(e.stop)
	e.broadcast(command{kind: cmdWork})
	defer e.broadcast(command{kind: cmdWait})
	for {
		select {
		case <-e.signal:
		case <-ctx.Done():
			e.mu.Lock()
			e.hasStopped = true
			e.mu.Unlock()
			return nil
		}
		e.mu.Lock()
		if s, ok := e.pop(); ok {
			e.mu.Unlock()
			return s
		}
		if e.busy == 0 || e.hasStopped {
			e.mu.Unlock()
			return nil
		}
		e.mu.Unlock()
	}
}

// Stopped returns whether the last call to Next was stopped.
func (e *Engine) Stopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasStopped
}

// Statistics sums the statistics of all workers.
func (e *Engine) Statistics() search.Statistics {
	var s search.Statistics
	for _, w := range e.workers {
		w.mu.Lock()
		s.Add(w.Statistics)
		w.mu.Unlock()
	}
	return s
}

// Constrain is not supported by parallel depth-first search.
func (e *Engine) Constrain(_ search.Space) error {
	return search.ErrNotOptimizing
}

// SetStop replaces the stop condition. It must only be called between
// calls to Next.
func (e *Engine) SetStop(st search.Stop) {
	e.stop = st
}

// NoGoods returns the nogoods of the path of the first worker. Stolen
// subtrees are explored without nogoods.
func (e *Engine) NoGoods() search.NoGoods {
	w := e.workers[0]
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path.NoGoods()
}

// Reset restarts the search from root. All workers acknowledge the
// reset and stay parked until the new root is installed in worker 0.
func (e *Engine) Reset(root search.Space) {
	if e.closed {
		return
	}
	var ack sync.WaitGroup
	release := make(chan struct{})
	ack.Add(len(e.workers))
	e.broadcast(command{kind: cmdReset, ack: &ack, release: release})
	ack.Wait()

	for i, w := range e.workers {
		if i == 0 {
			w.reset(root, e.opts.NoGoodsLimit)
		} else {
			w.reset(nil, 0)
		}
	}
	e.mu.Lock()
	e.solutions = nil
	e.hasStopped = false
	e.busy = len(e.workers)
	e.mu.Unlock()
	select {
	case <-e.signal:
	default:
	}

	ack.Add(len(e.workers))
	close(release)
	ack.Wait()
	e.log.Debug("reset engine")
}

// Close terminates all workers. Every worker acknowledges the request
// and waits for the release before it exits; Close returns once all of
// them have exited.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	var ack sync.WaitGroup
	release := make(chan struct{})
	ack.Add(len(e.workers))
	e.broadcast(command{kind: cmdTerminate, ack: &ack, release: release})
	ack.Wait()

	e.mu.Lock()
	e.solutions = nil
	e.mu.Unlock()
	close(release)
	e.wg.Wait()
	e.log.Debug("terminated engine")
}
