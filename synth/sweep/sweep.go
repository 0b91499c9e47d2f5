// Package sweep expands a noise sweep specification into an ordered grid of
// named noise configurations.
package sweep

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-ramix/synth/noise"
)

var (
	// ErrSweepKeyCollision reports two grid points rendering to the same key.
	ErrSweepKeyCollision = errors.New("sweep: configuration key collision")
	// ErrInvalidSpec reports a malformed sweep specification.
	ErrInvalidSpec = errors.New("sweep: invalid specification")
)

// Spec lists the values to explore. The three noise lists are traversed in
// lockstep, not crossed; sizes and baseline flags are crossed with them.
type Spec struct {
	Size            []int     `json:"size"`
	WavenumberNoise []float64 `json:"wavenumber_noise"`
	AmplitudeNoise  []float64 `json:"amplitude_noise"`
	WidthNoise      []float64 `json:"width_noise"`
	AddBaseline     []bool    `json:"add_baseline"`
}

// DefaultSpec returns the reference sweep: four dataset sizes, six noise
// levels and both baseline settings, 48 configurations in total.
func DefaultSpec() Spec {
	levels := []float64{0, 0.1, 0.5, 1.0, 1.5, 2.0}
	return Spec{
		Size:            []int{10, 100, 1000, 10_000},
		WavenumberNoise: append([]float64(nil), levels...),
		AmplitudeNoise:  append([]float64(nil), levels...),
		WidthNoise:      append([]float64(nil), levels...),
		AddBaseline:     []bool{false, true},
	}
}

// Validate checks list lengths. Individual values are validated during
// expansion.
func (s Spec) Validate() error {
	if len(s.WavenumberNoise) != len(s.AmplitudeNoise) || len(s.WavenumberNoise) != len(s.WidthNoise) {
		return fmt.Errorf("%w: noise lists must have equal length: wavenumber=%d amplitude=%d width=%d",
			ErrInvalidSpec, len(s.WavenumberNoise), len(s.AmplitudeNoise), len(s.WidthNoise))
	}
	return nil
}

// Entry is one named grid point.
type Entry struct {
	Key    string
	Config noise.Config
}

// Grid is an ordered, read-only set of configurations addressable by key.
type Grid struct {
	entries []Entry
	index   map[string]int
}

// Len returns the number of configurations.
func (g Grid) Len() int { return len(g.entries) }

// Keys returns the configuration keys in expansion order.
func (g Grid) Keys() []string {
	out := make([]string, len(g.entries))
	for i, e := range g.entries {
		out[i] = e.Key
	}
	return out
}

// Entries returns a copy of the grid points in expansion order.
func (g Grid) Entries() []Entry {
	return append([]Entry(nil), g.entries...)
}

// Get returns the configuration stored under key.
func (g Grid) Get(key string) (noise.Config, bool) {
	i, ok := g.index[key]
	if !ok {
		return noise.Config{}, false
	}
	return g.entries[i].Config, true
}

// Index returns the expansion position of key.
func (g Grid) Index(key string) (int, bool) {
	i, ok := g.index[key]
	return i, ok
}

// Map returns the grid as a key → configuration map.
func (g Grid) Map() map[string]noise.Config {
	out := make(map[string]noise.Config, len(g.entries))
	for _, e := range g.entries {
		out[e.Key] = e.Config
	}
	return out
}

// NewGrid builds a grid from explicit entries, validating every
// configuration and rejecting repeated keys.
func NewGrid(entries ...Entry) (Grid, error) {
	g := Grid{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if err := e.Config.Validate(); err != nil {
			return Grid{}, fmt.Errorf("sweep: %s: %w", e.Key, err)
		}
		if i, ok := g.index[e.Key]; ok {
			return Grid{}, &CollisionError{Key: e.Key, First: g.entries[i].Config, Second: e.Config}
		}
		g.index[e.Key] = len(g.entries)
		g.entries = append(g.entries, e)
	}
	return g, nil
}

// Expand returns the cross product size × zip(noise lists) × add_baseline.
func Expand(spec Spec) (Grid, error) {
	if err := spec.Validate(); err != nil {
		return Grid{}, err
	}
	var entries []Entry
	for _, size := range spec.Size {
		for j := range spec.WavenumberNoise {
			for _, base := range spec.AddBaseline {
				cfg := noise.Config{
					SampleCount:   size,
					WavenumberStd: spec.WavenumberNoise[j],
					AmplitudeStd:  spec.AmplitudeNoise[j],
					WidthStd:      spec.WidthNoise[j],
					AddBaseline:   base,
				}
				entries = append(entries, Entry{Key: Key(cfg), Config: cfg})
			}
		}
	}
	return NewGrid(entries...)
}

// Key renders cfg as
//
//	size_<n>_wn_std_<a>_amp_std_<b>_width_std_<c>_add_baseline_<True|False>
//
// Numbers use the shortest representation that round-trips, so distinct
// values never share a rendering and no value contains the '_' separator.
func Key(cfg noise.Config) string {
	var b strings.Builder
	b.WriteString("size_")
	b.WriteString(strconv.Itoa(cfg.SampleCount))
	b.WriteString("_wn_std_")
	b.WriteString(formatFloat(cfg.WavenumberStd))
	b.WriteString("_amp_std_")
	b.WriteString(formatFloat(cfg.AmplitudeStd))
	b.WriteString("_width_std_")
	b.WriteString(formatFloat(cfg.WidthStd))
	b.WriteString("_add_baseline_")
	if cfg.AddBaseline {
		b.WriteString("True")
	} else {
		b.WriteString("False")
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// CollisionError reports the two configurations that rendered to Key.
type CollisionError struct {
	Key    string
	First  noise.Config
	Second noise.Config
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("sweep: key %q produced by both %+v and %+v", e.Key, e.First, e.Second)
}

// Unwrap makes the error match ErrSweepKeyCollision.
func (e *CollisionError) Unwrap() error { return ErrSweepKeyCollision }

// Decode reads a sweep specification document.
func Decode(r io.Reader) (Spec, error) {
	var spec Spec
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return Spec{}, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return spec, nil
}

// Load reads a sweep specification file.
func Load(path string) (Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return Spec{}, fmt.Errorf("sweep: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
