// Package mixture evaluates component spectra over a wavenumber axis and
// composes labeled mixture spectra from independently noised components.
package mixture

import (
	"fmt"
	"math/rand/v2"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ramix/synth/baseline"
	"github.com/cwbudde/algo-ramix/synth/component"
	"github.com/cwbudde/algo-ramix/synth/core"
	"github.com/cwbudde/algo-ramix/synth/noise"
	"github.com/cwbudde/algo-ramix/synth/peak"
)

// Option configures a Compositor.
type Option func(*config)

type config struct {
	shape         peak.Shape
	concentration Concentration
	baseline      *baseline.Generator
}

// WithShape sets the peak line shape. Default: Lorentzian.
func WithShape(s peak.Shape) Option {
	return func(c *config) {
		c.shape = s
	}
}

// WithConcentration sets the concentration sampling strategy.
func WithConcentration(conc Concentration) Option {
	return func(c *config) {
		c.concentration = conc
	}
}

// WithBaseline sets the generator used when a noise model requests a
// baseline. By default one with default options is built on the
// compositor's source.
func WithBaseline(g *baseline.Generator) Option {
	return func(c *config) {
		c.baseline = g
	}
}

// Mixture is one synthesized spectrum with the concentration drawn for each
// component.
type Mixture struct {
	Values         []float64
	Concentrations map[string]float64
}

// Concentration returns the weight recorded for name, or 0 when the
// component took no part in the mixture.
func (m Mixture) Concentration(name string) float64 {
	return m.Concentrations[name]
}

// Compositor evaluates spectra over a fixed axis. It draws from a single
// random source and is not safe for concurrent use.
type Compositor struct {
	axis    core.Axis
	x       []float64
	cfg     config
	sampler concentrationSampler
	scratch []float64
}

// NewCompositor returns a Compositor sampling axis and drawing from src.
func NewCompositor(axis core.Axis, src rand.Source, opts ...Option) (*Compositor, error) {
	if err := axis.Validate(); err != nil {
		return nil, fmt.Errorf("mixture: %w", err)
	}
	cfg := config{
		shape:         peak.ShapeLorentzian,
		concentration: DefaultConcentration(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.concentration.Validate(); err != nil {
		return nil, fmt.Errorf("mixture: %w", err)
	}
	if cfg.baseline == nil {
		g, err := baseline.New(src)
		if err != nil {
			return nil, fmt.Errorf("mixture: %w", err)
		}
		cfg.baseline = g
	}
	x := axis.Values()
	return &Compositor{
		axis:    axis,
		x:       x,
		cfg:     cfg,
		sampler: newConcentrationSampler(cfg.concentration, src),
		scratch: make([]float64, len(x)),
	}, nil
}

// Axis returns the wavenumber axis.
func (c *Compositor) Axis() core.Axis { return c.axis }

// Wavenumbers returns a copy of the sampled axis locations.
func (c *Compositor) Wavenumbers() []float64 {
	return append([]float64(nil), c.x...)
}

// EvaluateComponent returns the sum of all peak shapes of s.
func (c *Compositor) EvaluateComponent(s component.Spectrum) ([]float64, error) {
	out := make([]float64, len(c.x))
	if err := c.evaluateInto(out, s); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Compositor) evaluateInto(dst []float64, s component.Spectrum) error {
	core.Zero(dst)
	for i := range s.Len() {
		if err := peak.Accumulate(c.cfg.shape, dst, c.x, s.Peak(i)); err != nil {
			return fmt.Errorf("mixture: component %q peak %d: %w", s.Name(), i, err)
		}
	}
	return nil
}

// ComponentSpectra returns the noiseless spectrum of every component, keyed
// by name.
func (c *Compositor) ComponentSpectra(specs []component.Spectrum) (map[string][]float64, error) {
	out := make(map[string][]float64, len(specs))
	for _, s := range specs {
		v, err := c.EvaluateComponent(s)
		if err != nil {
			return nil, err
		}
		out[s.Name()] = v
	}
	return out, nil
}

// SynthesizeMixture draws a noisy copy and a concentration for every
// component and returns their weighted sum. When the model's configuration
// asks for a baseline, one baseline draw is added to the result.
func (c *Compositor) SynthesizeMixture(specs []component.Spectrum, model *noise.Model) (Mixture, error) {
	out := make([]float64, len(c.x))
	conc := make(map[string]float64, len(specs))

	for _, s := range specs {
		noisy := model.Perturb(s)
		w := c.sampler.draw()
		conc[s.Name()] = w

		if err := c.evaluateInto(c.scratch, noisy); err != nil {
			return Mixture{}, err
		}
		vecmath.ScaleBlock(c.scratch, c.scratch, w)
		vecmath.AddBlockInPlace(out, c.scratch)
	}

	if model.Config().AddBaseline {
		b, err := c.cfg.baseline.Generate(len(out))
		if err != nil {
			return Mixture{}, fmt.Errorf("mixture: %w", err)
		}
		vecmath.AddBlockInPlace(out, b)
	}

	return Mixture{Values: out, Concentrations: conc}, nil
}
