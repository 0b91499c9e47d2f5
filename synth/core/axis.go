package core

import (
	"fmt"
	"math"
)

// Axis describes an evenly spaced ascending wavenumber grid covering
// [Start, End) with a fixed Step.
type Axis struct {
	Start float64
	End   float64
	Step  float64
}

// AxisOption mutates an Axis.
type AxisOption func(*Axis)

// DefaultAxis returns the 200..2000 cm^-1 grid with unit spacing.
func DefaultAxis() Axis {
	return Axis{
		Start: 200,
		End:   2000,
		Step:  1,
	}
}

// WithRange sets the half-open wavenumber range.
func WithRange(start, end float64) AxisOption {
	return func(a *Axis) {
		if end > start {
			a.Start = start
			a.End = end
		}
	}
}

// WithStep sets the grid spacing.
func WithStep(step float64) AxisOption {
	return func(a *Axis) {
		if step > 0 {
			a.Step = step
		}
	}
}

// ApplyAxisOptions applies zero or more options to the default axis.
func ApplyAxisOptions(opts ...AxisOption) Axis {
	a := DefaultAxis()
	for _, opt := range opts {
		if opt != nil {
			opt(&a)
		}
	}
	return a
}

// Validate reports whether the axis describes at least one bin.
func (a Axis) Validate() error {
	if !IsFinite(a.Start) || !IsFinite(a.End) {
		return fmt.Errorf("axis bounds must be finite: [%f, %f)", a.Start, a.End)
	}
	if !(a.Step > 0) || !IsFinite(a.Step) {
		return fmt.Errorf("axis step must be > 0: %f", a.Step)
	}
	if a.End <= a.Start {
		return fmt.Errorf("axis end must be > start: [%f, %f)", a.Start, a.End)
	}
	return nil
}

// Len returns the number of bins, ceil((End-Start)/Step).
func (a Axis) Len() int {
	if a.Validate() != nil {
		return 0
	}
	return int(math.Ceil((a.End - a.Start) / a.Step))
}

// Values returns a freshly allocated slice holding every bin location.
func (a Axis) Values() []float64 {
	n := a.Len()
	out := make([]float64, n)
	for i := range out {
		out[i] = a.Start + float64(i)*a.Step
	}
	return out
}

// Max returns the location of the last bin. It returns NaN for an empty axis.
func (a Axis) Max() float64 {
	n := a.Len()
	if n == 0 {
		return math.NaN()
	}
	return a.Start + float64(n-1)*a.Step
}
