package quality_test

import (
	"fmt"

	"github.com/cwbudde/algo-ramix/stats/quality"
)

func ExampleCalculate() {
	m := quality.Calculate([]float64{1, 2, 3, 4})
	fmt.Printf("mean=%.2f min=%.0f max=%.0f\n", m.Mean, m.Min, m.Max)

	// Output:
	// mean=2.50 min=1 max=4
}
