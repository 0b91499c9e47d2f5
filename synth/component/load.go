package component

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-ramix/synth/peak"
)

const speciesKey = "Species"

var errNoSpecies = errors.New(`component: missing "Species" object`)

type peakRecord struct {
	Wavenumber *float64 `json:"wavenumber"`
	Amplitude  *float64 `json:"amplitude"`
	Width      *float64 `json:"width"`
	Identity   string   `json:"identity"`
	// Older library files spell the key this way.
	LegacyIdentity string `json:"idenity"`
}

func (r peakRecord) toPeak() (peak.Peak, error) {
	if r.Wavenumber == nil || r.Amplitude == nil || r.Width == nil {
		return peak.Peak{}, errors.New("peak requires wavenumber, amplitude and width")
	}
	id := r.Identity
	if id == "" {
		id = r.LegacyIdentity
	}
	return peak.Peak{
		Location:  *r.Wavenumber,
		Amplitude: *r.Amplitude,
		Width:     *r.Width,
		Identity:  id,
	}, nil
}

// Decode reads one library document. Species keep the order in which they
// appear in the document.
func Decode(r io.Reader) ([]Spectrum, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var (
		specs []Spectrum
		found bool
	)
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if key != speciesKey {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("component: %w", err)
			}
			continue
		}
		found = true
		specs, err = decodeSpecies(dec)
		if err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, errNoSpecies
	}
	if err := CheckUnique(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

func decodeSpecies(dec *json.Decoder) ([]Spectrum, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var specs []Spectrum
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		var records []peakRecord
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("component: species %q: %w", name, err)
		}
		peaks := make([]peak.Peak, len(records))
		for i, rec := range records {
			p, err := rec.toPeak()
			if err != nil {
				return nil, fmt.Errorf("component: species %q peak %d: %w", name, i, err)
			}
			peaks[i] = p
		}
		s, err := New(name, peaks)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return specs, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("component: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("component: expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("component: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("component: expected object key, got %v", tok)
	}
	return key, nil
}

// Load reads a single library file.
func Load(path string) ([]Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("component: %w", err)
	}
	defer f.Close()

	specs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// LoadFiles reads every file in order and concatenates their species.
// Names must be unique across the whole batch.
func LoadFiles(paths ...string) ([]Spectrum, error) {
	var all []Spectrum
	for _, p := range paths {
		specs, err := Load(p)
		if err != nil {
			return nil, err
		}
		all = append(all, specs...)
	}
	if err := CheckUnique(all); err != nil {
		return nil, err
	}
	return all, nil
}
