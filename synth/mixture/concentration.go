package mixture

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/algo-ramix/synth/core"
)

// ConcentrationKind selects the distribution concentrations are drawn from.
type ConcentrationKind int

const (
	// ConcentrationUniform draws from [Low, High).
	ConcentrationUniform ConcentrationKind = iota
	// ConcentrationFixed always yields Value.
	ConcentrationFixed
)

// Concentration describes how mixture weights are sampled.
type Concentration struct {
	Kind  ConcentrationKind
	Low   float64
	High  float64
	Value float64
}

// UniformConcentration draws weights uniformly from [low, high).
func UniformConcentration(low, high float64) Concentration {
	return Concentration{Kind: ConcentrationUniform, Low: low, High: high}
}

// FixedConcentration assigns every component the same weight.
func FixedConcentration(v float64) Concentration {
	return Concentration{Kind: ConcentrationFixed, Value: v}
}

// DefaultConcentration is uniform on [0, 1).
func DefaultConcentration() Concentration {
	return UniformConcentration(0, 1)
}

// Validate checks the distribution parameters.
func (c Concentration) Validate() error {
	switch c.Kind {
	case ConcentrationUniform:
		if !finite(c.Low) || !finite(c.High) || c.High <= c.Low {
			return fmt.Errorf("uniform concentration needs finite low < high: [%f, %f)", c.Low, c.High)
		}
	case ConcentrationFixed:
		if !finite(c.Value) {
			return fmt.Errorf("fixed concentration must be finite: %f", c.Value)
		}
	default:
		return fmt.Errorf("unknown concentration kind %d", int(c.Kind))
	}
	return nil
}

type concentrationSampler struct {
	c       Concentration
	uniform distuv.Uniform
}

func newConcentrationSampler(c Concentration, src rand.Source) concentrationSampler {
	return concentrationSampler{
		c:       c,
		uniform: distuv.Uniform{Min: c.Low, Max: c.High, Src: src},
	}
}

func (s concentrationSampler) draw() float64 {
	if s.c.Kind == ConcentrationFixed {
		return s.c.Value
	}
	return s.uniform.Rand()
}

func finite(v float64) bool {
	return core.IsFinite(v)
}
