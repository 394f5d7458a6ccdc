package search

import "fmt"

// Statistics collects the counters of a search.
type Statistics struct {
	// Node is the number of explored nodes.
	Node uint64
	// Fail is the number of failed nodes.
	Fail uint64
	// Depth is the maximum depth of the search path.
	Depth uint64
	// Restart is the number of restarts.
	Restart uint64
	// NoGood is the number of nogoods posted.
	NoGood uint64
	// Memory is the number of bytes held by stored clones.
	Memory int
}

// Add merges o into s. Counters are summed, depth and memory take the
// maximum.
func (s *Statistics) Add(o Statistics) {
	s.Node += o.Node
	s.Fail += o.Fail
	s.Restart += o.Restart
	s.NoGood += o.NoGood
	if o.Depth > s.Depth {
		s.Depth = o.Depth
	}
	if o.Memory > s.Memory {
		s.Memory = o.Memory
	}
}

func (s Statistics) String() string {
	return fmt.Sprintf("nodes=%d fails=%d depth=%d restarts=%d nogoods=%d memory=%d",
		s.Node, s.Fail, s.Depth, s.Restart, s.NoGood, s.Memory)
}
