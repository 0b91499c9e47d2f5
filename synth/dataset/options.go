package dataset

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-ramix/synth/baseline"
	"github.com/cwbudde/algo-ramix/synth/core"
	"github.com/cwbudde/algo-ramix/synth/mixture"
	"github.com/cwbudde/algo-ramix/synth/noise"
	"github.com/cwbudde/algo-ramix/synth/peak"
)

const (
	defaultWorkers = 1
	defaultRetries = 3
)

// Option configures a Builder.
type Option func(*config)

type config struct {
	axis          core.Axis
	shape         peak.Shape
	concentration mixture.Concentration
	baselineOpts  []baseline.Option
	noiseOpts     []noise.Option
	seed          uint64
	seeded        bool
	workers       int
	retries       int
	logger        *zap.Logger
}

func defaultConfig() config {
	return config{
		axis:          core.DefaultAxis(),
		shape:         peak.ShapeLorentzian,
		concentration: mixture.DefaultConcentration(),
		workers:       defaultWorkers,
		retries:       defaultRetries,
		logger:        zap.NewNop(),
	}
}

// WithAxis sets the wavenumber axis. Default: 200..2000 step 1.
func WithAxis(axis core.Axis) Option {
	return func(c *config) {
		c.axis = axis
	}
}

// WithShape sets the peak line shape. Default: Lorentzian.
func WithShape(s peak.Shape) Option {
	return func(c *config) {
		c.shape = s
	}
}

// WithConcentration sets the concentration sampling strategy.
// Default: uniform on [0, 1).
func WithConcentration(conc mixture.Concentration) Option {
	return func(c *config) {
		c.concentration = conc
	}
}

// WithBaselineOptions configures the baseline generator of every
// configuration.
func WithBaselineOptions(opts ...baseline.Option) Option {
	return func(c *config) {
		c.baselineOpts = append(c.baselineOpts, opts...)
	}
}

// WithNoiseOptions sets the sampling strategy of every configuration's
// noise model, for example noise.WithLogLocation.
func WithNoiseOptions(opts ...noise.Option) Option {
	return func(c *config) {
		c.noiseOpts = append(c.noiseOpts, opts...)
	}
}

// WithSeed fixes the run seed. Configuration i draws from a PCG stream
// seeded with (seed, i), so a seeded build is reproducible regardless of
// worker count. Without a seed every Builder picks a fresh one.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
		c.seeded = true
	}
}

// WithWorkers sets how many configurations RunAll builds concurrently.
// Default: 1.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithRetries sets how many attempts a sample gets when its baseline solve
// degenerates. Default: 3.
func WithRetries(n int) Option {
	return func(c *config) {
		c.retries = n
	}
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func (c config) validate() error {
	if err := c.axis.Validate(); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if err := c.concentration.Validate(); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if _, err := baseline.New(nil, c.baselineOpts...); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if c.workers < 1 {
		return fmt.Errorf("dataset: workers must be >= 1: %d", c.workers)
	}
	if c.retries < 1 {
		return fmt.Errorf("dataset: retries must be >= 1: %d", c.retries)
	}
	return nil
}
