// Package noise perturbs component spectra with independent per-peak draws
// of location, amplitude and width noise.
package noise

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/algo-ramix/synth/component"
	"github.com/cwbudde/algo-ramix/synth/core"
	"github.com/cwbudde/algo-ramix/synth/peak"
)

// ErrInvalidNoiseParameter reports a negative or non-finite noise scale or a
// negative sample count.
var ErrInvalidNoiseParameter = errors.New("noise: invalid noise parameter")

// Config is one point of a noise sweep.
type Config struct {
	SampleCount   int     `json:"size"`
	WavenumberStd float64 `json:"wavenumber_std"`
	AmplitudeStd  float64 `json:"amplitude_std"`
	WidthStd      float64 `json:"width_std"`
	// AddBaseline is consumed by the mixture compositor, not by Model.
	AddBaseline bool `json:"add_baseline"`
}

// Validate checks every field of c.
func (c Config) Validate() error {
	if c.SampleCount < 0 {
		return fmt.Errorf("%w: sample count must be >= 0: %d", ErrInvalidNoiseParameter, c.SampleCount)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"wavenumber std", c.WavenumberStd},
		{"amplitude std", c.AmplitudeStd},
		{"width std", c.WidthStd},
	} {
		if f.v < 0 || !core.IsFinite(f.v) {
			return fmt.Errorf("%w: %s must be finite and >= 0: %f", ErrInvalidNoiseParameter, f.name, f.v)
		}
	}
	return nil
}

// DefaultLogLocation is the location (mu) of the log-normal amplitude and
// width multipliers, whose median is exp(mu). A zero std still skips the
// draw, so the multiplier is exactly 1 at std 0 and has median e for any
// positive std.
const DefaultLogLocation = 1.0

// Option adjusts the sampling strategy of a Model.
type Option func(*Model)

// WithLogLocation sets the location (mu) of the log-normal multipliers.
// Zero gives multipliers with median 1. Non-finite values are ignored.
func WithLogLocation(mu float64) Option {
	return func(m *Model) {
		if core.IsFinite(mu) {
			m.logLocation = mu
		}
	}
}

// Model draws noisy copies of component spectra. A Model is bound to one
// random source and must not be shared between goroutines unless that
// source is safe for concurrent use.
type Model struct {
	cfg         Config
	logLocation float64
	shift       distuv.Normal
	amp         distuv.LogNormal
	width       distuv.LogNormal
}

// New returns a Model for cfg drawing from src. A nil src uses the global
// math/rand/v2 generator.
//
// Amplitude and width are scaled by exp(N(mu, std)) with mu set by
// WithLogLocation (DefaultLogLocation otherwise). A zero std leaves the
// parameter untouched.
func New(cfg Config, src rand.Source, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{cfg: cfg, logLocation: DefaultLogLocation}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.shift = distuv.Normal{Mu: 0, Sigma: cfg.WavenumberStd, Src: src}
	m.amp = distuv.LogNormal{Mu: m.logLocation, Sigma: cfg.AmplitudeStd, Src: src}
	m.width = distuv.LogNormal{Mu: m.logLocation, Sigma: cfg.WidthStd, Src: src}
	return m, nil
}

// Config returns the configuration the model was built from.
func (m *Model) Config() Config { return m.cfg }

// LogLocation returns the location (mu) of the log-normal multipliers.
func (m *Model) LogLocation() float64 { return m.logLocation }

// Perturb returns a new spectrum whose peaks are independently redrawn.
// s itself is never modified.
func (m *Model) Perturb(s component.Spectrum) component.Spectrum {
	peaks := s.Peaks()
	for i := range peaks {
		peaks[i] = m.perturbPeak(peaks[i])
	}
	return s.WithPeaks(peaks)
}

func (m *Model) perturbPeak(p peak.Peak) peak.Peak {
	// Zero scales skip the draw so the parameter is copied bit for bit.
	if m.cfg.WavenumberStd != 0 {
		p.Location += m.shift.Rand()
	}
	if m.cfg.AmplitudeStd != 0 {
		p.Amplitude *= m.amp.Rand()
	}
	if m.cfg.WidthStd != 0 {
		p.Width *= m.width.Rand()
	}
	return p
}
