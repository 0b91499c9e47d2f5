// Package dataset assembles labeled mixture datasets: for every
// configuration of a noise sweep it synthesizes a feature matrix of
// spectra and the matching concentration label matrix, and exports them.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/cwbudde/algo-ramix/synth/baseline"
	"github.com/cwbudde/algo-ramix/synth/component"
	"github.com/cwbudde/algo-ramix/synth/core"
	"github.com/cwbudde/algo-ramix/synth/export"
	"github.com/cwbudde/algo-ramix/synth/mixture"
	"github.com/cwbudde/algo-ramix/synth/noise"
	"github.com/cwbudde/algo-ramix/synth/sweep"
)

// ErrUnknownConfiguration reports a key missing from the sweep grid.
var ErrUnknownConfiguration = errors.New("dataset: unknown configuration")

// Dataset is the synthesized data of one configuration.
type Dataset struct {
	Key    string
	Config noise.Config
	// Features holds one spectrum per row: [samples x bins].
	Features core.Matrix
	// Labels holds one concentration vector per row: [samples x components],
	// columns ordered by Index.
	Labels core.Matrix
	Index  *LabelIndex
}

// Unit returns the export unit of d with the given summary.
func (d *Dataset) Unit(summary any) export.Unit {
	return export.Unit{
		Key:            d.Key,
		Features:       d.Features,
		Labels:         d.Labels,
		SpeciesIndices: d.Index.Map(),
		Summary:        summary,
	}
}

// Builder synthesizes datasets for every configuration of a grid. All of
// its state is read-only after NewBuilder, so configurations can be built
// concurrently.
type Builder struct {
	components []component.Spectrum
	grid       sweep.Grid
	labels     *LabelIndex
	reference  map[string][]float64
	wavenumber []float64
	cfg        config
}

// NewBuilder validates the components against the axis and prepares the
// shared label index.
func NewBuilder(components []component.Spectrum, grid sweep.Grid, opts ...Option) (*Builder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if !cfg.seeded {
		cfg.seed = rand.Uint64()
	}

	labels, err := NewLabelIndex(component.Names(components))
	if err != nil {
		return nil, err
	}

	comp, err := mixture.NewCompositor(cfg.axis, nil, mixture.WithShape(cfg.shape))
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	reference, err := comp.ComponentSpectra(components)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}

	specs := make([]component.Spectrum, len(components))
	for i, s := range components {
		specs[i] = s.Clone()
	}
	return &Builder{
		components: specs,
		grid:       grid,
		labels:     labels,
		reference:  reference,
		wavenumber: comp.Wavenumbers(),
		cfg:        cfg,
	}, nil
}

// Axis returns the wavenumber axis.
func (b *Builder) Axis() core.Axis { return b.cfg.axis }

// Wavenumbers returns a copy of the sampled axis locations.
func (b *Builder) Wavenumbers() []float64 {
	return append([]float64(nil), b.wavenumber...)
}

// ComponentSpectra returns a copy of the noiseless spectrum of every
// component, keyed by name.
func (b *Builder) ComponentSpectra() map[string][]float64 {
	out := make(map[string][]float64, len(b.reference))
	for k, v := range b.reference {
		out[k] = append([]float64(nil), v...)
	}
	return out
}

// Names returns the component names in label column order.
func (b *Builder) Names() []string { return b.labels.Names() }

// Labels returns the shared label index.
func (b *Builder) Labels() *LabelIndex { return b.labels }

// Configurations returns the sweep grid.
func (b *Builder) Configurations() sweep.Grid { return b.grid }

// Seed returns the run seed, the one drawn at construction when no seed
// was configured.
func (b *Builder) Seed() uint64 { return b.cfg.seed }

// source returns the random stream of configuration i.
func (b *Builder) source(i int) rand.Source {
	return rand.NewPCG(b.cfg.seed, uint64(i))
}

// Build synthesizes the configuration stored under key.
func (b *Builder) Build(key string) (*Dataset, error) {
	return b.build(context.Background(), key)
}

func (b *Builder) build(ctx context.Context, key string) (*Dataset, error) {
	i, ok := b.grid.Index(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConfiguration, key)
	}
	cfg, _ := b.grid.Get(key)
	return b.buildConfig(ctx, key, cfg, b.source(i))
}

// BuildConfig synthesizes cfg with draws from src. It serves configurations
// outside the grid and callers that manage their own random streams.
func (b *Builder) BuildConfig(key string, cfg noise.Config, src rand.Source) (*Dataset, error) {
	return b.buildConfig(context.Background(), key, cfg, src)
}

func (b *Builder) buildConfig(ctx context.Context, key string, cfg noise.Config, src rand.Source) (*Dataset, error) {
	model, err := noise.New(cfg, src, b.cfg.noiseOpts...)
	if err != nil {
		return nil, err
	}
	gen, err := baseline.New(src, b.cfg.baselineOpts...)
	if err != nil {
		return nil, err
	}
	comp, err := mixture.NewCompositor(b.cfg.axis, src,
		mixture.WithShape(b.cfg.shape),
		mixture.WithConcentration(b.cfg.concentration),
		mixture.WithBaseline(gen),
	)
	if err != nil {
		return nil, err
	}

	features, err := core.NewMatrix(cfg.SampleCount, b.cfg.axis.Len())
	if err != nil {
		return nil, err
	}
	labels, err := core.NewMatrix(cfg.SampleCount, b.labels.Len())
	if err != nil {
		return nil, err
	}

	for i := range cfg.SampleCount {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mix, err := b.sample(comp, model)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		copy(features.Row(i), mix.Values)
		if err := b.labels.VectorInto(labels.Row(i), mix.Concentrations); err != nil {
			return nil, err
		}
	}

	return &Dataset{
		Key:      key,
		Config:   cfg,
		Features: features,
		Labels:   labels,
		Index:    b.labels,
	}, nil
}

// sample draws one mixture, redrawing it when the baseline solve
// degenerates.
func (b *Builder) sample(comp *mixture.Compositor, model *noise.Model) (mixture.Mixture, error) {
	var err error
	for attempt := 1; attempt <= b.cfg.retries; attempt++ {
		var mix mixture.Mixture
		mix, err = comp.SynthesizeMixture(b.components, model)
		if err == nil {
			return mix, nil
		}
		if !errors.Is(err, baseline.ErrBaselineDegenerate) {
			return mixture.Mixture{}, err
		}
	}
	return mixture.Mixture{}, fmt.Errorf("after %d attempts: %w", b.cfg.retries, err)
}
