package quality

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// MinNoiseFloorLength is the shortest spectrum NoiseFloor accepts.
const MinNoiseFloorLength = 16

var errShortSignal = errors.New("quality: signal too short for a noise floor estimate")

// NoiseFloor estimates the standard deviation of the white noise riding on
// a spectrum.
//
// Peaks and baselines vary slowly along the wavenumber axis, so their energy
// sits in the low Fourier bins. White noise spreads evenly over all bins with
// E|X[k]|² = n·σ², which makes the mean power of the upper quarter of the
// one-sided transform a direct estimate of σ². The signal is mean-removed and
// zero-padded to a power of two.
func NoiseFloor(signal []float64) (float64, error) {
	n := len(signal)
	if n < MinNoiseFloorLength {
		return 0, fmt.Errorf("%w: %d < %d", errShortSignal, n, MinNoiseFloorLength)
	}

	size := nextPowerOf2(n)
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return 0, fmt.Errorf("quality: fft plan: %w", err)
	}

	mean := floats.Sum(signal) / float64(n)

	in := make([]complex128, size)
	for i, x := range signal {
		in[i] = complex(x-mean, 0)
	}
	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return 0, fmt.Errorf("quality: fft: %w", err)
	}

	lo, hi := 3*size/8, size/2
	re := make([]float64, hi-lo)
	im := make([]float64, hi-lo)
	for k := lo; k < hi; k++ {
		re[k-lo] = real(out[k])
		im[k-lo] = imag(out[k])
	}
	power := make([]float64, hi-lo)
	vecmath.Power(power, re, im)

	return math.Sqrt(floats.Sum(power) / float64(len(power)) / float64(n)), nil
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
