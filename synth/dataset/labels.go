package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrLabelIndexMismatch reports a concentration for a name the index does
// not know, or a label vector of the wrong length.
var ErrLabelIndexMismatch = errors.New("dataset: label index mismatch")

// LabelIndex maps component names to label columns. It is built once from
// the ordered component names and is read-only afterwards, so a single
// index can be shared by every configuration of a run.
type LabelIndex struct {
	names []string
	index map[string]int
}

// NewLabelIndex assigns columns to names in order.
func NewLabelIndex(names []string) (*LabelIndex, error) {
	li := &LabelIndex{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if j, ok := li.index[name]; ok {
			return nil, fmt.Errorf("dataset: duplicate label %q at columns %d and %d", name, j, i)
		}
		li.index[name] = i
	}
	return li, nil
}

// Len returns the number of columns.
func (li *LabelIndex) Len() int { return len(li.names) }

// Names returns the column names in order.
func (li *LabelIndex) Names() []string {
	return append([]string(nil), li.names...)
}

// Index returns the column of name.
func (li *LabelIndex) Index(name string) (int, bool) {
	i, ok := li.index[name]
	return i, ok
}

// Vector orders concentrations by column. Names missing from conc get 0.
func (li *LabelIndex) Vector(conc map[string]float64) ([]float64, error) {
	out := make([]float64, len(li.names))
	if err := li.VectorInto(out, conc); err != nil {
		return nil, err
	}
	return out, nil
}

// VectorInto is Vector writing into dst, which must have Len elements.
func (li *LabelIndex) VectorInto(dst []float64, conc map[string]float64) error {
	if len(dst) != len(li.names) {
		return fmt.Errorf("%w: vector length %d, want %d", ErrLabelIndexMismatch, len(dst), len(li.names))
	}
	for name := range conc {
		if _, ok := li.index[name]; !ok {
			return fmt.Errorf("%w: unknown component %q", ErrLabelIndexMismatch, name)
		}
	}
	for i, name := range li.names {
		dst[i] = conc[name]
	}
	return nil
}

// Map returns a name → column copy, the content of species_indices.json.
func (li *LabelIndex) Map() map[string]int {
	out := make(map[string]int, len(li.index))
	for k, v := range li.index {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the index as a name → column object.
func (li *LabelIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(li.Map())
}
