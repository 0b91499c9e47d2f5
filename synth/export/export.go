// Package export writes synthesized datasets, one unit per sweep
// configuration, as feature/label arrays plus the label index map.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-ramix/synth/core"
)

// File names inside each configuration folder.
const (
	FeaturesName       = "X"
	LabelsName         = "y"
	SpeciesIndicesFile = "species_indices.json"
	SummaryFile        = "summary.json"
)

var errEmptyKey = errors.New("export: unit key must not be empty")

// Format selects the array encoding.
type Format int

const (
	FormatNPY Format = iota
	FormatParquet
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatNPY:
		return "npy"
	case FormatParquet:
		return "parquet"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the file extension, with the leading dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat resolves a format by name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "npy":
		return FormatNPY, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return 0, fmt.Errorf("export: unknown format %q", name)
	}
}

// Unit is everything exported for one configuration.
type Unit struct {
	Key            string
	Features       core.Matrix
	Labels         core.Matrix
	SpeciesIndices map[string]int
	// Summary is written as summary.json when non-nil.
	Summary any
}

// Sink stores export units.
type Sink interface {
	Write(ctx context.Context, u Unit) error
}

// Option configures the encoding shared by all sinks.
type Option func(*config)

type config struct {
	format      Format
	compression string
}

// WithFormat selects the array encoding. Default: npy.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithCompression selects the Parquet codec: snappy (default), zstd or gzip.
func WithCompression(name string) Option {
	return func(c *config) {
		c.compression = name
	}
}

func applyOptions(opts []Option) (config, error) {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.format != FormatNPY && cfg.format != FormatParquet {
		return config{}, fmt.Errorf("export: unknown format %v", cfg.format)
	}
	if _, err := parquetCompression(cfg.compression); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// file is one encoded object of a unit.
type file struct {
	name        string
	contentType string
	data        []byte
}

func (c config) encode(u Unit) ([]file, error) {
	if u.Key == "" {
		return nil, errEmptyKey
	}

	var files []file
	switch c.format {
	case FormatParquet:
		comp, err := parquetCompression(c.compression)
		if err != nil {
			return nil, err
		}
		x, err := EncodeParquet(u.Features, comp)
		if err != nil {
			return nil, err
		}
		y, err := EncodeParquet(u.Labels, comp)
		if err != nil {
			return nil, err
		}
		files = append(files,
			file{name: FeaturesName + ".parquet", contentType: "application/vnd.apache.parquet", data: x},
			file{name: LabelsName + ".parquet", contentType: "application/vnd.apache.parquet", data: y},
		)
	default:
		files = append(files,
			file{name: FeaturesName + ".npy", contentType: "application/octet-stream", data: EncodeNPY(u.Features)},
			file{name: LabelsName + ".npy", contentType: "application/octet-stream", data: EncodeNPY(u.Labels)},
		)
	}

	indices, err := json.Marshal(u.SpeciesIndices)
	if err != nil {
		return nil, fmt.Errorf("export: species indices: %w", err)
	}
	files = append(files, file{name: SpeciesIndicesFile, contentType: "application/json", data: indices})

	if u.Summary != nil {
		summary, err := json.MarshalIndent(u.Summary, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("export: summary: %w", err)
		}
		files = append(files, file{name: SummaryFile, contentType: "application/json", data: summary})
	}
	return files, nil
}
