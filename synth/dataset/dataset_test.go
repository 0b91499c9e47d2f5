package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cwbudde/algo-ramix/internal/testutil"
	"github.com/cwbudde/algo-ramix/synth/baseline"
	"github.com/cwbudde/algo-ramix/synth/component"
	"github.com/cwbudde/algo-ramix/synth/core"
	"github.com/cwbudde/algo-ramix/synth/export"
	"github.com/cwbudde/algo-ramix/synth/noise"
	"github.com/cwbudde/algo-ramix/synth/peak"
	"github.com/cwbudde/algo-ramix/synth/sweep"
)

func loadComponents(t *testing.T) []component.Spectrum {
	t.Helper()
	specs, err := component.Load(filepath.Join("..", "component", "testdata", "mix_data.json"))
	require.NoError(t, err)
	require.Len(t, specs, 5)
	return specs
}

func expand(t *testing.T, spec sweep.Spec) sweep.Grid {
	t.Helper()
	grid, err := sweep.Expand(spec)
	require.NoError(t, err)
	return grid
}

func singleGrid(t *testing.T, size int, addBaseline bool) sweep.Grid {
	return expand(t, sweep.Spec{
		Size:            []int{size},
		WavenumberNoise: []float64{2},
		AmplitudeNoise:  []float64{0.1},
		WidthNoise:      []float64{0.1},
		AddBaseline:     []bool{addBaseline},
	})
}

type memorySink struct {
	mu    sync.Mutex
	units map[string]export.Unit
	fail  map[string]error
}

func (s *memorySink) Write(_ context.Context, u export.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[u.Key]; err != nil {
		return err
	}
	if s.units == nil {
		s.units = map[string]export.Unit{}
	}
	s.units[u.Key] = u
	return nil
}

func TestBuildShapes(t *testing.T) {
	grid := singleGrid(t, 10, true)
	b, err := NewBuilder(loadComponents(t), grid, WithSeed(1))
	require.NoError(t, err)

	ds, err := b.Build(grid.Keys()[0])
	require.NoError(t, err)

	rows, cols := ds.Features.Dims()
	require.Equal(t, 10, rows)
	require.Equal(t, 1800, cols)
	rows, cols = ds.Labels.Dims()
	require.Equal(t, 10, rows)
	require.Equal(t, 5, cols)
	testutil.RequireFinite(t, ds.Features.Data())
	testutil.RequireInRange(t, ds.Labels.Data(), 0, 1)
	require.Equal(t, []string{"ethanol", "glucose", "water", "gylcerol", "lactic acid"}, ds.Index.Names())
}

func TestBuildSingleComponentNoiseless(t *testing.T) {
	spec, err := component.New("solo", []peak.Peak{{Location: 1000, Amplitude: 1, Width: 10}})
	require.NoError(t, err)
	grid := expand(t, sweep.Spec{
		Size:            []int{3},
		WavenumberNoise: []float64{0},
		AmplitudeNoise:  []float64{0},
		WidthNoise:      []float64{0},
		AddBaseline:     []bool{false},
	})
	b, err := NewBuilder([]component.Spectrum{spec}, grid, WithSeed(3))
	require.NoError(t, err)

	ds, err := b.Build(grid.Keys()[0])
	require.NoError(t, err)

	ref := b.ComponentSpectra()["solo"]
	for i := range 3 {
		c := ds.Labels.At(i, 0)
		want := make([]float64, len(ref))
		for j, v := range ref {
			want[j] = c * v
		}
		testutil.RequireSliceNearlyEqual(t, ds.Features.Row(i), want, 1e-12)
	}
}

func TestBuildSeededIsReproducible(t *testing.T) {
	grid := singleGrid(t, 4, true)
	key := grid.Keys()[0]

	a, err := NewBuilder(loadComponents(t), grid, WithSeed(42))
	require.NoError(t, err)
	b, err := NewBuilder(loadComponents(t), grid, WithSeed(42))
	require.NoError(t, err)

	da, err := a.Build(key)
	require.NoError(t, err)
	db, err := b.Build(key)
	require.NoError(t, err)
	require.Equal(t, da.Features.Data(), db.Features.Data())
	require.Equal(t, da.Labels.Data(), db.Labels.Data())
}

func TestBuildNoiseOptionsReachModel(t *testing.T) {
	grid := singleGrid(t, 4, false)
	key := grid.Keys()[0]

	def, err := NewBuilder(loadComponents(t), grid, WithSeed(42))
	require.NoError(t, err)
	centered, err := NewBuilder(loadComponents(t), grid, WithSeed(42),
		WithNoiseOptions(noise.WithLogLocation(0)))
	require.NoError(t, err)

	dd, err := def.Build(key)
	require.NoError(t, err)
	dc, err := centered.Build(key)
	require.NoError(t, err)
	// The location shifts the multipliers without changing how many draws
	// a sample consumes, so the concentrations line up.
	require.Equal(t, dd.Labels.Data(), dc.Labels.Data())
	require.NotEqual(t, dd.Features.Data(), dc.Features.Data())
}

func TestBuildUnseededRunsDiffer(t *testing.T) {
	grid := singleGrid(t, 4, false)
	key := grid.Keys()[0]

	a, err := NewBuilder(loadComponents(t), grid)
	require.NoError(t, err)
	b, err := NewBuilder(loadComponents(t), grid)
	require.NoError(t, err)

	da, err := a.Build(key)
	require.NoError(t, err)
	db, err := b.Build(key)
	require.NoError(t, err)
	require.NotEqual(t, da.Features.Data(), db.Features.Data())
	require.NotEqual(t, da.Labels.Data(), db.Labels.Data())
}

func TestBuildSizeZero(t *testing.T) {
	grid := singleGrid(t, 0, true)
	b, err := NewBuilder(loadComponents(t), grid)
	require.NoError(t, err)

	ds, err := b.Build(grid.Keys()[0])
	require.NoError(t, err)
	require.Equal(t, 0, ds.Features.Rows())
	require.Equal(t, 1800, ds.Features.Cols())
	require.Equal(t, 0, ds.Labels.Rows())
	require.Equal(t, 5, ds.Labels.Cols())
}

func TestBuildUnknownKey(t *testing.T) {
	b, err := NewBuilder(loadComponents(t), singleGrid(t, 1, false))
	require.NoError(t, err)
	_, err = b.Build("size_1")
	require.ErrorIs(t, err, ErrUnknownConfiguration)
}

// zeroSource makes every uniform draw 0, which collapses the baseline fit.
type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }

func TestBuildConfigDegenerateBaseline(t *testing.T) {
	b, err := NewBuilder(loadComponents(t), sweep.Grid{}, WithRetries(2))
	require.NoError(t, err)

	cfg := noise.Config{SampleCount: 2, AddBaseline: true}
	_, err = b.BuildConfig("degenerate", cfg, zeroSource{})
	require.ErrorIs(t, err, baseline.ErrBaselineDegenerate)
	require.ErrorContains(t, err, "after 2 attempts")

	cfg.AddBaseline = false
	ds, err := b.BuildConfig("flat", cfg, zeroSource{})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Features.Rows())
}

func TestNewBuilderRejects(t *testing.T) {
	specs := loadComponents(t)
	grid := singleGrid(t, 1, false)

	_, err := NewBuilder(append(specs, specs[0]), grid)
	require.Error(t, err)

	_, err = NewBuilder(specs, grid, WithWorkers(0))
	require.Error(t, err)

	_, err = NewBuilder(specs, grid, WithRetries(0))
	require.Error(t, err)

	_, err = NewBuilder(specs, grid, WithBaselineOptions(baseline.WithAsymmetry(2)))
	require.Error(t, err)

	// Peaks at 1600 cannot be placed on an axis ending at 1000.
	_, err = NewBuilder(specs, grid, WithAxis(core.ApplyAxisOptions(core.WithRange(200, 1000))))
	require.ErrorIs(t, err, peak.ErrInvalidPeakPlacement)
}

func TestQuerySurface(t *testing.T) {
	grid := expand(t, sweep.Spec{
		Size:            []int{1, 2},
		WavenumberNoise: []float64{0, 1},
		AmplitudeNoise:  []float64{0, 0.1},
		WidthNoise:      []float64{0, 0.1},
		AddBaseline:     []bool{true, false},
	})
	b, err := NewBuilder(loadComponents(t), grid, WithSeed(9))
	require.NoError(t, err)

	require.Equal(t, 8, b.Configurations().Len())
	require.Equal(t, 1800, b.Axis().Len())
	require.Len(t, b.Wavenumbers(), 1800)
	require.Equal(t, uint64(9), b.Seed())
	require.Equal(t, b.Labels().Names(), b.Names())

	spectra := b.ComponentSpectra()
	require.Len(t, spectra, 5)
	spectra["water"][0] = 1e9
	require.NotEqual(t, 1e9, b.ComponentSpectra()["water"][0])
}

func TestRunAllExportsEveryConfiguration(t *testing.T) {
	grid := expand(t, sweep.Spec{
		Size:            []int{2, 3},
		WavenumberNoise: []float64{0, 1},
		AmplitudeNoise:  []float64{0, 0.1},
		WidthNoise:      []float64{0, 0.1},
		AddBaseline:     []bool{true, false},
	})
	obs, logs := observer.New(zapcore.InfoLevel)
	b, err := NewBuilder(loadComponents(t), grid, WithSeed(5), WithWorkers(3), WithLogger(zap.New(obs)))
	require.NoError(t, err)

	root := t.TempDir()
	sink, err := export.NewDirSink(root)
	require.NoError(t, err)

	report, err := b.RunAll(context.Background(), sink)
	require.NoError(t, err)
	require.Empty(t, report.Failed)
	require.Len(t, report.Completed, 8)
	for i, res := range report.Completed {
		require.Equal(t, grid.Keys()[i], res.Key)
		for _, name := range []string{"X.npy", "y.npy", export.SpeciesIndicesFile, export.SummaryFile} {
			_, err := os.Stat(filepath.Join(root, res.Key, name))
			require.NoError(t, err, "%s/%s", res.Key, name)
		}
	}
	require.Equal(t, 8, logs.FilterMessage("completed").Len())
	require.Equal(t, 8, logs.FilterMessage("making").Len())
}

func TestRunAllWorkerCountDoesNotChangeData(t *testing.T) {
	grid := expand(t, sweep.Spec{
		Size:            []int{3},
		WavenumberNoise: []float64{0.5, 1, 2},
		AmplitudeNoise:  []float64{0.1, 0.1, 0.2},
		WidthNoise:      []float64{0.1, 0.2, 0.2},
		AddBaseline:     []bool{true},
	})

	run := func(workers int) *memorySink {
		b, err := NewBuilder(loadComponents(t), grid, WithSeed(77), WithWorkers(workers))
		require.NoError(t, err)
		sink := &memorySink{}
		_, err = b.RunAll(context.Background(), sink)
		require.NoError(t, err)
		return sink
	}

	serial, parallel := run(1), run(4)
	require.Len(t, serial.units, 3)
	for key, u := range serial.units {
		require.Equal(t, u.Features.Data(), parallel.units[key].Features.Data(), key)
		require.Equal(t, u.Labels.Data(), parallel.units[key].Labels.Data(), key)
	}
}

func TestRunAllIsolatesFailures(t *testing.T) {
	grid := expand(t, sweep.Spec{
		Size:            []int{2},
		WavenumberNoise: []float64{0, 1},
		AmplitudeNoise:  []float64{0, 0},
		WidthNoise:      []float64{0, 0},
		AddBaseline:     []bool{false},
	})
	keys := grid.Keys()
	sink := &memorySink{fail: map[string]error{keys[1]: errors.New("disk full")}}

	b, err := NewBuilder(loadComponents(t), grid, WithWorkers(2))
	require.NoError(t, err)
	report, err := b.RunAll(context.Background(), sink)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 1)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, keys[1], ce.Key)
	require.ErrorContains(t, ce, "disk full")

	require.Len(t, report.Completed, 1)
	require.Equal(t, keys[0], report.Completed[0].Key)
	require.Len(t, report.Failed, 1)
	require.Contains(t, sink.units, keys[0])
}

func TestRunAllBaselineTooShort(t *testing.T) {
	spec, err := component.New("solo", []peak.Peak{{Location: 0.5, Amplitude: 1, Width: 1}})
	require.NoError(t, err)
	grid := singleGrid(t, 1, true)
	axis := core.ApplyAxisOptions(core.WithRange(0, 2))

	b, err := NewBuilder([]component.Spectrum{spec}, grid, WithAxis(axis))
	require.NoError(t, err)
	report, err := b.RunAll(context.Background(), nil)
	require.ErrorIs(t, err, baseline.ErrInvalidLength)
	require.Len(t, report.Failed, 1)
}

func TestRunAllCancelled(t *testing.T) {
	grid := expand(t, sweep.Spec{
		Size:            []int{1, 2, 3},
		WavenumberNoise: []float64{0},
		AmplitudeNoise:  []float64{0},
		WidthNoise:      []float64{0},
		AddBaseline:     []bool{false},
	})
	b, err := NewBuilder(loadComponents(t), grid)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := b.RunAll(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, report.Completed)
	require.Len(t, report.Failed, 3)
}

func TestRunAllEmptyGrid(t *testing.T) {
	b, err := NewBuilder(loadComponents(t), sweep.Grid{})
	require.NoError(t, err)
	report, err := b.RunAll(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, report.Completed)
}
