// Package baseline generates smooth stochastic background curves by
// asymmetric least squares (ALS) smoothing of a random vector.
//
// Each pass solves the pentadiagonal system
//
//	(W + λ DᵀD) z = W y
//
// where D is the second-difference operator and W the diagonal weight
// matrix, then reweights every point by whether it lies above the fit.
package baseline

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/algo-ramix/synth/core"
)

// bandwidth of DᵀD: rows of D span three columns.
const bandwidth = 2

const minLength = bandwidth + 1

var (
	// ErrBaselineDegenerate reports a smoothing solve that collapsed, either to
	// a singular system or to a zero-magnitude fit that cannot be normalized.
	ErrBaselineDegenerate = errors.New("baseline: degenerate smoothing result")
	// ErrInvalidLength reports a baseline shorter than the difference stencil.
	ErrInvalidLength = errors.New("baseline: length too short")
)

// Generator draws random baselines. It is bound to one random source and is
// not safe for concurrent use unless that source is.
type Generator struct {
	cfg     config
	uniform distuv.Uniform
	normal  distuv.Normal
}

// New returns a Generator drawing from src. A nil src uses the global
// math/rand/v2 generator.
func New(src rand.Source, opts ...Option) (*Generator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:     cfg,
		uniform: distuv.Uniform{Min: 0, Max: 1, Src: src},
		normal:  distuv.Normal{Mu: 0, Sigma: cfg.noiseStd, Src: src},
	}, nil
}

// Generate returns N(0, σ²) texture plus an ALS fit of uniform noise scaled to
// a peak of 1/scale.
func (g *Generator) Generate(length int) ([]float64, error) {
	if length < minLength {
		return nil, fmt.Errorf("%w: %d < %d", ErrInvalidLength, length, minLength)
	}

	y := make([]float64, length)
	for i := range y {
		y[i] = g.uniform.Rand()
	}

	z, err := g.Smooth(y)
	if err != nil {
		return nil, err
	}

	peak := floats.Max(z)
	if peak == 0 || !core.IsFinite(peak) {
		return nil, fmt.Errorf("%w: fit maximum is %v", ErrBaselineDegenerate, peak)
	}

	out := make([]float64, length)
	norm := 1 / (peak * g.cfg.scale)
	for i, v := range z {
		out[i] = v * norm
		if g.cfg.noiseStd != 0 {
			out[i] += g.normal.Rand()
		}
	}
	return out, nil
}

// Smooth returns the ALS fit of y. It allocates its own system on every call.
func (g *Generator) Smooth(y []float64) ([]float64, error) {
	n := len(y)
	if n < minLength {
		return nil, fmt.Errorf("%w: %d < %d", ErrInvalidLength, n, minLength)
	}

	penalty := secondDifferenceGram(n)
	floats.Scale(g.cfg.lambda, penalty)

	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	wy := make([]float64, n)
	band := make([]float64, n*(bandwidth+1))
	z := mat.NewVecDense(n, nil)

	var chol mat.BandCholesky
	for range g.cfg.iterations {
		copy(band, penalty)
		for i := range n {
			band[i*(bandwidth+1)] += w[i]
		}
		floats.MulTo(wy, w, y)

		if !chol.Factorize(mat.NewSymBandDense(n, bandwidth, band)) {
			return nil, fmt.Errorf("%w: smoothing system is not positive definite", ErrBaselineDegenerate)
		}
		if err := chol.SolveVecTo(z, mat.NewVecDense(n, wy)); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return nil, fmt.Errorf("%w: %v", ErrBaselineDegenerate, err)
			}
		}

		for i := range n {
			if y[i] > z.AtVec(i) {
				w[i] = g.cfg.asymmetry
			} else {
				w[i] = 1 - g.cfg.asymmetry
			}
		}
	}

	out := make([]float64, n)
	copy(out, z.RawVector().Data)
	for _, v := range out {
		if !core.IsFinite(v) {
			return nil, fmt.Errorf("%w: non-finite fit", ErrBaselineDegenerate)
		}
	}
	return out, nil
}

// secondDifferenceGram returns DᵀD for the (n-2)×n second-difference
// operator in upper symmetric band storage: element (i, i+k) lives at
// index i*(bandwidth+1)+k.
func secondDifferenceGram(n int) []float64 {
	stencil := [bandwidth + 1]float64{1, -2, 1}
	band := make([]float64, n*(bandwidth+1))
	for r := 0; r+bandwidth < n; r++ {
		for a := 0; a <= bandwidth; a++ {
			for b := a; b <= bandwidth; b++ {
				band[(r+a)*(bandwidth+1)+(b-a)] += stencil[a] * stencil[b]
			}
		}
	}
	return band
}
