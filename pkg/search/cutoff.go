package search

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
)

// Cutoff generates the per-round failure limits of a restart engine.
// Every call to Next advances the sequence.
type Cutoff interface {
	Next() uint64
	fmt.Stringer
}

type constantCutoff struct {
	scale uint64
}

// Constant returns the cutoff sequence scale, scale, scale, ...
func Constant(scale uint64) Cutoff {
	return &constantCutoff{scale: scale}
}

func (c *constantCutoff) Next() uint64 {
	return c.scale
}

func (c *constantCutoff) String() string {
	return fmt.Sprintf("constant(%d)", c.scale)
}

type linearCutoff struct {
	scale, n uint64
}

// Linear returns the cutoff sequence scale, 2*scale, 3*scale, ...
func Linear(scale uint64) Cutoff {
	return &linearCutoff{scale: scale}
}

func (c *linearCutoff) Next() uint64 {
	c.n += c.scale
	return c.n
}

func (c *linearCutoff) String() string {
	return fmt.Sprintf("linear(%d)", c.scale)
}

type geometricCutoff struct {
	base float64
	n    float64
}

// Geometric returns the cutoff sequence scale, scale*base,
// scale*base^2, ... Values are rounded up and saturate at the maximum
// uint64.
func Geometric(scale uint64, base float64) Cutoff {
	if base < 1 {
		base = 1
	}
	return &geometricCutoff{base: base, n: float64(scale)}
}

func (c *geometricCutoff) Next() uint64 {
	cur := c.n
	c.n *= c.base
	if cur >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(math.Ceil(cur))
}

func (c *geometricCutoff) String() string {
	return fmt.Sprintf("geometric(%g)", c.base)
}

type lubyCutoff struct {
	scale, i uint64
}

// Luby returns the Luby sequence 1, 1, 2, 1, 1, 2, 4, ... multiplied
// by scale.
func Luby(scale uint64) Cutoff {
	return &lubyCutoff{scale: scale}
}

func (c *lubyCutoff) Next() uint64 {
	c.i++
	return c.scale * luby(c.i)
}

func (c *lubyCutoff) String() string {
	return fmt.Sprintf("luby(%d)", c.scale)
}

// luby returns the i-th element (starting at 1) of the Luby sequence.
func luby(i uint64) uint64 {
	for {
		k := uint64(1)
		for (uint64(1)<<k)-1 < i {
			k++
		}
		if i == (uint64(1)<<k)-1 {
			return uint64(1) << (k - 1)
		}
		i = i - (uint64(1) << (k - 1)) + 1
	}
}

type randomCutoff struct {
	min, delta uint64
	steps      int64

	mu  sync.Mutex
	rnd *rand.Rand
}

// Random returns a sequence of pseudo-random values between lo and hi
// drawn from n+1 evenly spaced steps.
func Random(seed int64, lo, hi uint64, n int64) Cutoff {
	if hi < lo {
		lo, hi = hi, lo
	}
	if n < 1 {
		n = 1
	}
	return &randomCutoff{
		min:   lo,
		delta: (hi - lo) / uint64(n),
		steps: n,
		rnd:   rand.New(rand.NewSource(seed)),
	}
}

func (c *randomCutoff) Next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.min + uint64(c.rnd.Int63n(c.steps+1))*c.delta
}

func (c *randomCutoff) String() string {
	return fmt.Sprintf("random(%d..%d)", c.min, c.min+uint64(c.steps)*c.delta)
}

type appendCutoff struct {
	first, second Cutoff
	n             uint64
}

// Append returns the first n values of c1 followed by c2.
func Append(c1 Cutoff, n uint64, c2 Cutoff) Cutoff {
	return &appendCutoff{first: c1, second: c2, n: n}
}

func (c *appendCutoff) Next() uint64 {
	if c.n > 0 {
		c.n--
		return c.first.Next()
	}
	return c.second.Next()
}

func (c *appendCutoff) String() string {
	return fmt.Sprintf("append(%s,%d,%s)", c.first, c.n, c.second)
}

type mergeCutoff struct {
	first, second Cutoff
	turn          bool
}

// Merge alternates between the values of c1 and c2, starting with c1.
func Merge(c1, c2 Cutoff) Cutoff {
	return &mergeCutoff{first: c1, second: c2}
}

func (c *mergeCutoff) Next() uint64 {
	c.turn = !c.turn
	if c.turn {
		return c.first.Next()
	}
	return c.second.Next()
}

func (c *mergeCutoff) String() string {
	return fmt.Sprintf("merge(%s,%s)", c.first, c.second)
}

type repeatCutoff struct {
	c         Cutoff
	n, i      uint64
	cur       uint64
	requested bool
}

// Repeat returns every value of c n times.
func Repeat(c Cutoff, n uint64) Cutoff {
	if n < 1 {
		n = 1
	}
	return &repeatCutoff{c: c, n: n}
}

func (c *repeatCutoff) Next() uint64 {
	if !c.requested || c.i == c.n {
		c.cur = c.c.Next()
		c.i = 0
		c.requested = true
	}
	c.i++
	return c.cur
}

func (c *repeatCutoff) String() string {
	return fmt.Sprintf("repeat(%s,%d)", c.c, c.n)
}

// ParseCutoff builds a cutoff from a kind name as used in configuration
// files: constant, linear, geometric, luby or random.
func ParseCutoff(kind string, scale uint64, base float64) (Cutoff, error) {
	switch strings.ToLower(kind) {
	case "constant":
		return Constant(scale), nil
	case "linear":
		return Linear(scale), nil
	case "", "geometric":
		return Geometric(scale, base), nil
	case "luby":
		return Luby(scale), nil
	case "random":
		return Random(int64(scale), scale, uint64(float64(scale)*base), 8), nil
	}
	return nil, fmt.Errorf("%w: unknown cutoff %q", ErrInvalidOption, kind)
}
