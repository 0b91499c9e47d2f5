package baseline

import (
	"fmt"

	"github.com/cwbudde/algo-ramix/synth/core"
)

type config struct {
	lambda     float64
	asymmetry  float64
	iterations int
	scale      float64
	noiseStd   float64
}

func defaultConfig() config {
	return config{
		lambda:     100,
		asymmetry:  1,
		iterations: 10,
		scale:      25,
		noiseStd:   1,
	}
}

// Option configures a Generator.
type Option func(*config)

// WithLambda sets the second-difference smoothness penalty.
func WithLambda(lambda float64) Option {
	return func(c *config) {
		c.lambda = lambda
	}
}

// WithAsymmetry sets the weight p given to points above the current fit;
// points at or below it get 1-p. The default p = 1 discards every point below
// the fit after the first pass.
func WithAsymmetry(p float64) Option {
	return func(c *config) {
		c.asymmetry = p
	}
}

// WithIterations sets the number of reweighting passes.
func WithIterations(n int) Option {
	return func(c *config) {
		c.iterations = n
	}
}

// WithScale sets the divisor applied to the peak-normalized fit.
func WithScale(scale float64) Option {
	return func(c *config) {
		c.scale = scale
	}
}

// WithNoiseStd sets the standard deviation of the additive texture noise.
func WithNoiseStd(std float64) Option {
	return func(c *config) {
		c.noiseStd = std
	}
}

func (c config) validate() error {
	if !(c.lambda > 0) || !core.IsFinite(c.lambda) {
		return fmt.Errorf("baseline lambda must be finite and > 0: %f", c.lambda)
	}
	if !(c.asymmetry >= 0 && c.asymmetry <= 1) {
		return fmt.Errorf("baseline asymmetry must be in [0,1]: %f", c.asymmetry)
	}
	if c.iterations < 1 {
		return fmt.Errorf("baseline iterations must be >= 1: %d", c.iterations)
	}
	if !(c.scale > 0) || !core.IsFinite(c.scale) {
		return fmt.Errorf("baseline scale must be finite and > 0: %f", c.scale)
	}
	if !(c.noiseStd >= 0) || !core.IsFinite(c.noiseStd) {
		return fmt.Errorf("baseline noise std must be finite and >= 0: %f", c.noiseStd)
	}
	return nil
}
