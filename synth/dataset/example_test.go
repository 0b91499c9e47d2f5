package dataset_test

import (
	"fmt"

	"github.com/cwbudde/algo-ramix/synth/dataset"
)

func ExampleLabelIndex_Vector() {
	li, err := dataset.NewLabelIndex([]string{"ethanol", "glucose", "water"})
	if err != nil {
		panic(err)
	}
	y, _ := li.Vector(map[string]float64{"water": 9, "ethanol": 5, "glucose": 7})
	fmt.Println(y)

	// Output:
	// [5 7 9]
}
