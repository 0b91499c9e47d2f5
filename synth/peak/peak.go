package peak

import (
	"fmt"
	"math"
	"strings"
)

// Peak is a single spectral feature. It is a plain value: copies never
// share state.
type Peak struct {
	Location  float64
	Amplitude float64
	Width     float64
	Identity  string
}

// Shape identifies a peak line-shape family.
type Shape int

const (
	ShapeLorentzian Shape = iota
	ShapeGaussian
)

var shapeNames = map[Shape]string{
	ShapeLorentzian: "lorentzian",
	ShapeGaussian:   "gaussian",
}

// String returns the lower-case shape name.
func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape resolves a shape by name, case-insensitively.
func ParseShape(name string) (Shape, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for s, n := range shapeNames {
		if n == want {
			return s, nil
		}
	}
	return 0, fmt.Errorf("peak: unknown shape %q", name)
}

// value evaluates the shape at a single point.
func (s Shape) value(x, location, amplitude, halfWidth float64) float64 {
	u := (x - location) / halfWidth
	switch s {
	case ShapeGaussian:
		return amplitude * math.Exp(-math.Ln2*u*u)
	default:
		return amplitude / (1 + u*u)
	}
}

// Evaluate returns the shape of a peak sampled at every point of x.
//
// Lorentzian:  a / (1 + u²)
// Gaussian:    a * exp(-ln2 * u²)
//
// with u = (x - location) / (width/2). The location must lie below max(x).
func Evaluate(s Shape, x []float64, location, amplitude, width float64) ([]float64, error) {
	out := make([]float64, len(x))
	if err := EvaluateInto(s, out, x, location, amplitude, width); err != nil {
		return nil, err
	}
	return out, nil
}

// EvaluateInto writes the peak shape into dst, which must match x in length.
func EvaluateInto(s Shape, dst, x []float64, location, amplitude, width float64) error {
	if len(dst) != len(x) {
		return errMismatchedLength
	}
	maxX, err := axisMax(x)
	if err != nil {
		return err
	}
	if err := validate(maxX, location, width); err != nil {
		return err
	}
	hw := width / 2
	for i, xi := range x {
		dst[i] = s.value(xi, location, amplitude, hw)
	}
	return nil
}

// Accumulate adds the shape of p to dst.
func Accumulate(s Shape, dst, x []float64, p Peak) error {
	if len(dst) != len(x) {
		return errMismatchedLength
	}
	maxX, err := axisMax(x)
	if err != nil {
		return err
	}
	if err := validate(maxX, p.Location, p.Width); err != nil {
		return err
	}
	hw := p.Width / 2
	for i, xi := range x {
		dst[i] += s.value(xi, p.Location, p.Amplitude, hw)
	}
	return nil
}

// Evaluate samples the peak over x with the given shape.
func (p Peak) Evaluate(s Shape, x []float64) ([]float64, error) {
	return Evaluate(s, x, p.Location, p.Amplitude, p.Width)
}
