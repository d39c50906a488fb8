package sdfcanvas

// Defaults for canvas and compiler configuration.
const (
	// DefaultFeather is the anti-aliasing feather in physical pixels.
	DefaultFeather = 1

	// DefaultMaxPrimitives is the per-frame primitive ceiling.
	DefaultMaxPrimitives = 1 << 16

	// DefaultParallelThreshold is the command count at which quad
	// computation is spread over the worker pool.
	DefaultParallelThreshold = 2048

	// MinWidth is the width given to lines and strokes recorded with a
	// non-positive or NaN width.
	MinWidth = 1e-3
)

// Option configures a Canvas or Compiler during creation.
//
// Example:
//
//	c, err := sdfcanvas.New(bounds, 2,
//	    sdfcanvas.WithImageProvider(images),
//	    sdfcanvas.WithMaxPrimitives(4096))
type Option func(*options)

type options struct {
	feather           float32
	maxPrimitives     int
	workers           int
	parallelThreshold int
	images            ImageProvider
	compiler          *Compiler
}

func defaultOptions() options {
	return options{
		feather:           DefaultFeather,
		maxPrimitives:     DefaultMaxPrimitives,
		parallelThreshold: DefaultParallelThreshold,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFeather sets the anti-aliasing feather radius in physical pixels.
// Negative values are treated as zero.
func WithFeather(px float32) Option {
	return func(o *options) {
		o.feather = max(px, 0)
	}
}

// WithMaxPrimitives sets the per-frame primitive ceiling. Primitives past
// the ceiling are truncated with an ErrCapacityExceeded diagnostic.
// Values <= 0 select DefaultMaxPrimitives.
func WithMaxPrimitives(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultMaxPrimitives
		}
		o.maxPrimitives = n
	}
}

// WithWorkers sets the number of goroutines used for parallel quad
// computation. Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithParallelThreshold sets the minimum command count for parallel quad
// computation. Values <= 0 disable parallelism.
func WithParallelThreshold(n int) Option {
	return func(o *options) {
		o.parallelThreshold = n
	}
}

// WithImageProvider sets the collaborator used to resolve image references.
func WithImageProvider(p ImageProvider) Option {
	return func(o *options) {
		o.images = p
	}
}

// WithCompiler makes a canvas use an existing compiler instead of creating
// its own. Useful to share one worker pool among many canvases compiled on
// the same goroutine.
func WithCompiler(c *Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}
