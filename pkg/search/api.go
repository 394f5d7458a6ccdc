package search

import (
	"context"
)

// Status is the outcome of running a Space to its propagation fixpoint.
type Status int

const (
	// StatusFailed means the space has no solution.
	StatusFailed Status = iota
	// StatusSolved means the space is a solution.
	StatusSolved
	// StatusBranch means the space must be branched on.
	StatusBranch
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusSolved:
		return "solved"
	case StatusBranch:
		return "branch"
	}
	return "unknown"
}

// Choice describes one branching decision. Choices are immutable and
// may be shared between goroutines once created.
type Choice interface {
	// Alternatives returns the number of alternatives of the
	// decision. It is always at least one.
	Alternatives() int
}

// Space is the constraint store being searched. A Space is owned by
// exactly one engine slot at a time and is never accessed
// concurrently.
type Space interface {
	// Clone returns an independent copy of the space.
	Clone() Space
	// Status propagates to a fixpoint and reports the result.
	Status() Status
	// Choice returns the pending decision of a space whose status
	// is StatusBranch. It must be called at most once per node.
	Choice() Choice
	// Commit applies alternative alt of c to the space. The
	// commit may cause the space to fail, which is reported by the
	// next call to Status.
	Commit(c Choice, alt int)
}

// Constrainer is implemented by spaces used for optimization. Constrain
// adds the constraint that the receiver must be better than best.
type Constrainer interface {
	Constrain(best Space)
}

// Sizer is implemented by spaces that can report their memory use.
type Sizer interface {
	Allocated() int
}

// Literal is an opaque nogood literal produced by a NoGoodChoice and
// understood by the NoGoodPoster of the same model.
type Literal interface{}

// NoGoodChoice is implemented by choices that can describe their
// alternatives as literals.
type NoGoodChoice interface {
	Choice
	// NoGoodLiteral returns the literal that holds after alternative
	// alt has been committed, or nil when there is none.
	NoGoodLiteral(alt int) Literal
}

// NoGoodPoster is implemented by spaces that accept nogoods.
type NoGoodPoster interface {
	PostNoGoods(ng NoGoods)
}

// MetaInfo is handed to the Master and Slave hooks of a space.
type MetaInfo struct {
	// Restart is the number of restarts performed so far.
	Restart uint64
	// Solution is the number of solutions since the last restart.
	Solution uint64
	// Fail is the number of failures since the last restart.
	Fail uint64
	// Last is the last solution found, if any.
	Last Space
	// NoGoods are the nogoods collected by the engine being
	// restarted.
	NoGoods NoGoods
	// Asset is the index of a portfolio asset, -1 for restarts.
	Asset int
}

// Master is implemented by spaces that configure how they are updated
// as the master of a restart engine. Master returns whether a restart
// is necessary.
type Master interface {
	Master(mi MetaInfo) bool
}

// Slave is implemented by spaces that configure themselves when used
// as the root of a restarted run or a portfolio asset. Slave returns
// whether the search below the space is complete.
type Slave interface {
	Slave(mi MetaInfo) bool
}

// Engine explores the search tree of a space.
type Engine interface {
	// Next returns the next solution, or nil when the search is
	// exhausted or has been stopped. Stopped tells the two apart.
	Next(ctx context.Context) Space
	// Stopped returns whether the last call to Next was stopped by
	// a limit or by cancellation.
	Stopped() bool
	// Statistics returns the statistics of the engine.
	Statistics() Statistics
	// Constrain forces all further solutions to be better than
	// best. Engines that do not optimize return ErrNotOptimizing.
	Constrain(best Space) error
	// Close releases resources held by the engine.
	Close()
}
