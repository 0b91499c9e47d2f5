package quality

import "math"

// Moments holds distribution statistics of a set of values.
type Moments struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess
}

// Accumulator collects [Moments] incrementally across blocks of values using
// Welford's online algorithm for numerical stability on higher-order moments.
type Accumulator struct {
	n       int
	mean    float64
	m2      float64
	m3      float64
	m4      float64
	minVal  float64
	maxVal  float64
	hasData bool
}

// Update adds a block of values.
func (a *Accumulator) Update(values []float64) {
	for _, x := range values {
		a.n++
		ni := float64(a.n)

		delta := x - a.mean
		deltaN := delta / ni
		deltaN2 := deltaN * deltaN
		term1 := delta * deltaN * float64(a.n-1)

		// M4 must be updated before M3, and M3 before M2.
		a.m4 += term1*deltaN2*(ni*ni-3*ni+3) + 6*deltaN2*a.m2 - 4*deltaN*a.m3
		a.m3 += term1*deltaN*(float64(a.n-1)-1) - 3*deltaN*a.m2
		a.m2 += term1
		a.mean += deltaN

		if !a.hasData {
			a.minVal, a.maxVal = x, x
			a.hasData = true
			continue
		}
		if x > a.maxVal {
			a.maxVal = x
		}
		if x < a.minVal {
			a.minVal = x
		}
	}
}

// Result returns the statistics of everything added so far. An empty
// accumulator yields the zero Moments.
func (a *Accumulator) Result() Moments {
	if a.n == 0 {
		return Moments{}
	}

	nf := float64(a.n)
	variance := a.m2 / nf

	var skewness, kurtosis float64
	if variance > 0 {
		skewness = (a.m3 / nf) / (variance * math.Sqrt(variance))
		kurtosis = (a.m4/nf)/(variance*variance) - 3
	}

	return Moments{
		Count:    a.n,
		Mean:     a.mean,
		Std:      math.Sqrt(variance),
		Min:      a.minVal,
		Max:      a.maxVal,
		Skewness: skewness,
		Kurtosis: kurtosis,
	}
}

// Reset clears the accumulator for reuse.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Calculate returns the moments of values.
func Calculate(values []float64) Moments {
	var a Accumulator
	a.Update(values)
	return a.Result()
}
