package search

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultCloneDistance is the default commit distance between two
	// clones stored on the path.
	DefaultCloneDistance = 8
	// DefaultAdaptiveDistance is the default recomputation distance
	// after which an intermediate clone is stored.
	DefaultAdaptiveDistance = 2
	// DefaultNoGoodsLimit is the default depth limit for nogood
	// extraction.
	DefaultNoGoodsLimit = 128
	// DefaultDiscrepancyLimit is the default discrepancy limit of LDS.
	DefaultDiscrepancyLimit = 3
	// DefaultCutoffScale and DefaultCutoffBase describe the default
	// geometric cutoff sequence of restart engines.
	DefaultCutoffScale = 128
	DefaultCutoffBase  = 1.5
)

// Options configures an engine. Options are built with NewOptions from
// a list of Option values.
type Options struct {
	// Threads is the number of workers of parallel engines.
	Threads int
	// CloneDistance is the clone-at-depth c_d.
	CloneDistance int
	// AdaptiveDistance is the adaptive recomputation distance a_d.
	AdaptiveDistance int
	// NoGoodsLimit is the depth up to which nogoods are extracted.
	NoGoodsLimit int
	// DiscrepancyLimit bounds the rounds of LDS. A negative limit
	// means unbounded.
	DiscrepancyLimit int
	// Assets is the number of portfolio assets.
	Assets int

	NodeLimit   uint64
	FailLimit   uint64
	TimeLimit   time.Duration
	MemoryLimit int

	// Stop is an additional user stop object.
	Stop Stop
	// Cutoff drives restart engines.
	Cutoff Cutoff
	// Clone tells engines to copy the root space instead of taking
	// ownership of it.
	Clone bool

	Logger logrus.FieldLogger
	Tracer Tracer

	noGoodsSet     bool
	discrepancySet bool
}

type Option func(o *Options) error

// NewOptions applies opts followed by the defaults and validates the
// result.
func NewOptions(opts ...Option) (*Options, error) {
	o := Options{Clone: true}
	for _, option := range append(opts, defaults...) {
		if err := option(&o); err != nil {
			return nil, err
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (o *Options) validate() error {
	switch {
	case o.Threads < 1:
		return fmt.Errorf("%w: threads must be positive, got %d", ErrInvalidOption, o.Threads)
	case o.CloneDistance < 1:
		return fmt.Errorf("%w: clone distance must be positive, got %d", ErrInvalidOption, o.CloneDistance)
	case o.AdaptiveDistance < 1:
		return fmt.Errorf("%w: adaptive distance must be positive, got %d", ErrInvalidOption, o.AdaptiveDistance)
	case o.NoGoodsLimit < 0:
		return fmt.Errorf("%w: nogoods limit must not be negative, got %d", ErrInvalidOption, o.NoGoodsLimit)
	case o.Assets < 1:
		return fmt.Errorf("%w: assets must be positive, got %d", ErrInvalidOption, o.Assets)
	case o.MemoryLimit < 0:
		return fmt.Errorf("%w: memory limit must not be negative, got %d", ErrInvalidOption, o.MemoryLimit)
	case o.TimeLimit < 0:
		return fmt.Errorf("%w: time limit must not be negative, got %s", ErrInvalidOption, o.TimeLimit)
	}
	return nil
}

// StopCondition combines the configured limits and the user stop into a
// single Stop, or returns nil when nothing limits the search.
func (o *Options) StopCondition() Stop {
	var stops AnyStop
	if o.Stop != nil {
		stops = append(stops, o.Stop)
	}
	if o.NodeLimit > 0 {
		stops = append(stops, NodeStop{Limit: o.NodeLimit})
	}
	if o.FailLimit > 0 {
		stops = append(stops, FailStop{Limit: o.FailLimit})
	}
	if o.TimeLimit > 0 {
		stops = append(stops, NewTimeStop(o.TimeLimit))
	}
	if o.MemoryLimit > 0 {
		stops = append(stops, MemoryStop{Limit: o.MemoryLimit})
	}
	switch len(stops) {
	case 0:
		return nil
	case 1:
		return stops[0]
	}
	return stops
}

// Copy returns a shallow copy of o with the given options applied on
// top. It is used by meta engines to derive the options of their inner
// engines.
func (o *Options) Copy(opts ...Option) (*Options, error) {
	c := *o
	for _, option := range opts {
		if err := option(&c); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func WithThreads(n int) Option {
	return func(o *Options) error {
		if n <= 0 {
			// non-positive values count down from the number of CPUs
			n = runtime.NumCPU() + n
			if n < 1 {
				n = 1
			}
		}
		o.Threads = n
		return nil
	}
}

func WithCloneDistance(cd int) Option {
	return func(o *Options) error {
		o.CloneDistance = cd
		return nil
	}
}

func WithAdaptiveDistance(ad int) Option {
	return func(o *Options) error {
		o.AdaptiveDistance = ad
		return nil
	}
}

// WithNoGoodsLimit sets the nogood depth limit. A limit of zero
// disables nogood extraction.
func WithNoGoodsLimit(n int) Option {
	return func(o *Options) error {
		o.NoGoodsLimit = n
		o.noGoodsSet = true
		return nil
	}
}

func WithDiscrepancyLimit(d int) Option {
	return func(o *Options) error {
		o.DiscrepancyLimit = d
		o.discrepancySet = true
		return nil
	}
}

func WithAssets(n int) Option {
	return func(o *Options) error {
		o.Assets = n
		return nil
	}
}

func WithNodeLimit(n uint64) Option {
	return func(o *Options) error {
		o.NodeLimit = n
		return nil
	}
}

func WithFailLimit(n uint64) Option {
	return func(o *Options) error {
		o.FailLimit = n
		return nil
	}
}

func WithTimeLimit(d time.Duration) Option {
	return func(o *Options) error {
		o.TimeLimit = d
		return nil
	}
}

func WithMemoryLimit(bytes int) Option {
	return func(o *Options) error {
		o.MemoryLimit = bytes
		return nil
	}
}

func WithStop(s Stop) Option {
	return func(o *Options) error {
		o.Stop = s
		return nil
	}
}

func WithCutoff(c Cutoff) Option {
	return func(o *Options) error {
		o.Cutoff = c
		return nil
	}
}

// WithoutClone makes the engine take ownership of the root space
// instead of copying it.
func WithoutClone() Option {
	return func(o *Options) error {
		o.Clone = false
		return nil
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) error {
		o.Logger = l
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(o *Options) error {
		o.Tracer = t
		return nil
	}
}

var defaults = []Option{
	func(o *Options) error {
		if o.Threads == 0 {
			o.Threads = 1
		}
		return nil
	},
	func(o *Options) error {
		if o.CloneDistance == 0 {
			o.CloneDistance = DefaultCloneDistance
		}
		if o.AdaptiveDistance == 0 {
			o.AdaptiveDistance = DefaultAdaptiveDistance
		}
		return nil
	},
	func(o *Options) error {
		if !o.noGoodsSet {
			o.NoGoodsLimit = DefaultNoGoodsLimit
		}
		if !o.discrepancySet {
			o.DiscrepancyLimit = DefaultDiscrepancyLimit
		}
		return nil
	},
	func(o *Options) error {
		if o.Assets == 0 {
			o.Assets = o.Threads
		}
		return nil
	},
	func(o *Options) error {
		if o.Cutoff == nil {
			o.Cutoff = Geometric(DefaultCutoffScale, DefaultCutoffBase)
		}
		return nil
	},
	func(o *Options) error {
		if o.Logger == nil {
			l := logrus.New()
			l.SetLevel(logrus.WarnLevel)
			o.Logger = logrus.NewEntry(l)
		}
		return nil
	},
	func(o *Options) error {
		if o.Tracer == nil {
			o.Tracer = DefaultTracer{}
		}
		return nil
	},
}
