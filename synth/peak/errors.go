package peak

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-ramix/synth/core"
)

var (
	// ErrInvalidPeakPlacement reports a peak located at or above the axis maximum.
	ErrInvalidPeakPlacement = errors.New("peak: location must be below the axis maximum")
	// ErrInvalidPeakWidth reports a zero or non-finite peak width.
	ErrInvalidPeakWidth = errors.New("peak: width must be finite and non-zero")

	errEmptyAxis        = errors.New("peak: axis must not be empty")
	errMismatchedLength = errors.New("peak: destination and axis must have same length")
)

// validate checks the evaluation preconditions. Only the upper bound of the
// axis is enforced; peaks below the axis minimum evaluate to their tails.
func validate(axisMax, location, width float64) error {
	if !(location < axisMax) {
		return fmt.Errorf("%w: location %g >= axis max %g", ErrInvalidPeakPlacement, location, axisMax)
	}
	if width == 0 || !core.IsFinite(width) {
		return fmt.Errorf("%w: %g", ErrInvalidPeakWidth, width)
	}
	return nil
}

func axisMax(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, errEmptyAxis
	}
	m := x[0]
	for _, v := range x[1:] {
		if v > m {
			m = v
		}
	}
	return m, nil
}
