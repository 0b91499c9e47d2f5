// Package component holds the noiseless definitions of pure chemical species
// and loads them from their JSON library files.
package component

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-ramix/synth/peak"
)

var errEmptyName = errors.New("component: name must not be empty")

// Spectrum is the noiseless signature of one species: a named, ordered list
// of peaks. Its peaks are unexported so a Spectrum can only be replaced,
// never edited in place.
type Spectrum struct {
	name  string
	peaks []peak.Peak
}

// New returns a Spectrum holding a private copy of peaks.
func New(name string, peaks []peak.Peak) (Spectrum, error) {
	if name == "" {
		return Spectrum{}, errEmptyName
	}
	return Spectrum{name: name, peaks: append([]peak.Peak(nil), peaks...)}, nil
}

// Name returns the species name.
func (s Spectrum) Name() string { return s.name }

// Len returns the number of peaks.
func (s Spectrum) Len() int { return len(s.peaks) }

// Peak returns peak i.
func (s Spectrum) Peak(i int) peak.Peak { return s.peaks[i] }

// Peaks returns a copy of the peak list.
func (s Spectrum) Peaks() []peak.Peak {
	return append([]peak.Peak(nil), s.peaks...)
}

// Clone returns a deep copy of s.
func (s Spectrum) Clone() Spectrum {
	return s.WithPeaks(s.peaks)
}

// WithPeaks returns a new Spectrum with the same name and a copy of peaks.
func (s Spectrum) WithPeaks(peaks []peak.Peak) Spectrum {
	return Spectrum{name: s.name, peaks: append([]peak.Peak(nil), peaks...)}
}

// Names returns the species names in order.
func Names(specs []Spectrum) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.name
	}
	return out
}

// CheckUnique fails when two spectra share a name.
func CheckUnique(specs []Spectrum) error {
	seen := make(map[string]int, len(specs))
	for i, s := range specs {
		if j, ok := seen[s.name]; ok {
			return fmt.Errorf("component: duplicate species %q at positions %d and %d", s.name, j, i)
		}
		seen[s.name] = i
	}
	return nil
}
