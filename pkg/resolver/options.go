package resolver

import (
	"github.com/matzehuels/cdnlock/pkg/version"
)

const (
	DefaultConcurrency = 16   // Default registry calls in flight per round
	DefaultMaxRounds   = 1000 // Default guard against runaway dependency chains
)

// Options configures a [Resolver].
type Options struct {
	Concurrency int                  // Parallel registry calls per round (default: 16)
	MaxRounds   int                  // Abort after this many rounds (default: 1000)
	Selector    *version.Selector    // Version selection policy (default: version.NewSelector())
	Logger      func(string, ...any) // Progress callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.Selector == nil {
		opts.Selector = version.NewSelector()
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}
