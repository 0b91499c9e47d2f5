package peak

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ramix/internal/testutil"
)

func axis(start, end float64) []float64 {
	out := make([]float64, 0, int(end-start))
	for x := start; x < end; x++ {
		out = append(out, x)
	}
	return out
}

func TestLorentzianHalfMaximum(t *testing.T) {
	x := axis(0, 100)
	y, err := Evaluate(ShapeLorentzian, x, 50, 2, 10)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if y[50] != 2 {
		t.Fatalf("peak value = %v, want 2", y[50])
	}
	// width is the full width at half maximum
	if math.Abs(y[45]-1) > 1e-12 || math.Abs(y[55]-1) > 1e-12 {
		t.Fatalf("half-width values = %v, %v, want 1", y[45], y[55])
	}
}

func TestGaussianHalfMaximum(t *testing.T) {
	x := axis(0, 100)
	y, err := Evaluate(ShapeGaussian, x, 50, 3, 10)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if y[50] != 3 {
		t.Fatalf("peak value = %v, want 3", y[50])
	}
	if math.Abs(y[45]-1.5) > 1e-12 || math.Abs(y[55]-1.5) > 1e-12 {
		t.Fatalf("half-width values = %v, %v, want 1.5", y[45], y[55])
	}
}

func TestEvaluateMatchesFormula(t *testing.T) {
	x := []float64{-3, 0.25, 7}
	loc, amp, width := 1.5, 0.8, 3.0
	got, err := Evaluate(ShapeLorentzian, x, loc, amp, width)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	want := make([]float64, len(x))
	for i, xi := range x {
		u := (xi - loc) / (width / 2)
		want[i] = amp / (1 + u*u)
	}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-15)
}

func TestInvalidPlacement(t *testing.T) {
	x := axis(200, 2000)
	for _, loc := range []float64{1999, 2500, math.NaN()} {
		if _, err := Evaluate(ShapeGaussian, x, loc, 1, 5); !errors.Is(err, ErrInvalidPeakPlacement) {
			t.Fatalf("location %v: err = %v, want ErrInvalidPeakPlacement", loc, err)
		}
	}
}

func TestLowPlacementNotRejected(t *testing.T) {
	x := axis(200, 2000)
	y, err := Evaluate(ShapeLorentzian, x, 100, 1, 5)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	testutil.RequireFinite(t, y)
}

func TestInvalidWidth(t *testing.T) {
	x := axis(0, 10)
	for _, w := range []float64{0, math.Inf(1), math.NaN()} {
		if _, err := Evaluate(ShapeLorentzian, x, 5, 1, w); !errors.Is(err, ErrInvalidPeakWidth) {
			t.Fatalf("width %v: err = %v, want ErrInvalidPeakWidth", w, err)
		}
	}
}

func TestEmptyAxis(t *testing.T) {
	if _, err := Evaluate(ShapeLorentzian, nil, 0, 1, 1); err == nil {
		t.Fatal("expected error for empty axis")
	}
}

func TestAccumulateAdds(t *testing.T) {
	x := axis(0, 50)
	dst := make([]float64, len(x))
	p := Peak{Location: 20, Amplitude: 1, Width: 4}
	if err := Accumulate(ShapeLorentzian, dst, x, p); err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}
	if err := Accumulate(ShapeLorentzian, dst, x, p); err != nil {
		t.Fatalf("Accumulate() error = %v", err)
	}
	single, _ := p.Evaluate(ShapeLorentzian, x)
	for i := range dst {
		if dst[i] != 2*single[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], 2*single[i])
		}
	}
}

func TestAccumulateLengthMismatch(t *testing.T) {
	if err := Accumulate(ShapeGaussian, make([]float64, 2), axis(0, 3), Peak{Location: 1, Width: 1}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestParseShape(t *testing.T) {
	s, err := ParseShape(" Gaussian ")
	if err != nil || s != ShapeGaussian {
		t.Fatalf("ParseShape() = %v, %v", s, err)
	}
	if _, err := ParseShape("voigt"); err == nil {
		t.Fatal("expected error for unknown shape")
	}
	if ShapeLorentzian.String() != "lorentzian" || Shape(9).String() != "Shape(9)" {
		t.Fatal("String() mismatch")
	}
}
