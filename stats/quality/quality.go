// Package quality summarizes synthesized datasets: value distributions of
// the feature and label matrices and the white-noise floor of the spectra.
package quality

import (
	"fmt"

	"github.com/cwbudde/algo-ramix/synth/core"
)

// Summary describes one exported dataset.
type Summary struct {
	Samples    int       `json:"samples"`
	Bins       int       `json:"bins"`
	Components int       `json:"components"`
	Features   Moments   `json:"features"`
	Labels     []Moments `json:"labels"`
	// NoiseFloor is the mean per-sample noise estimate, 0 when the spectra
	// are shorter than MinNoiseFloorLength.
	NoiseFloor float64 `json:"noise_floor"`
}

// Summarize computes the summary of a feature matrix [samples x bins] and
// its label matrix [samples x components].
func Summarize(features, labels core.Matrix) (Summary, error) {
	if features.Rows() != labels.Rows() {
		return Summary{}, fmt.Errorf("quality: %d feature rows vs %d label rows", features.Rows(), labels.Rows())
	}

	s := Summary{
		Samples:    features.Rows(),
		Bins:       features.Cols(),
		Components: labels.Cols(),
		Labels:     make([]Moments, labels.Cols()),
	}

	var acc Accumulator
	acc.Update(features.Data())
	s.Features = acc.Result()

	column := make([]float64, labels.Rows())
	for j := range s.Labels {
		for i := range column {
			column[i] = labels.At(i, j)
		}
		s.Labels[j] = Calculate(column)
	}

	if s.Samples == 0 || s.Bins < MinNoiseFloorLength {
		return s, nil
	}
	var floor float64
	for i := range s.Samples {
		f, err := NoiseFloor(features.Row(i))
		if err != nil {
			return Summary{}, err
		}
		floor += f
	}
	s.NoiseFloor = floor / float64(s.Samples)
	return s, nil
}
