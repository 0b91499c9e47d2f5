package dataset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-ramix/stats/quality"
	"github.com/cwbudde/algo-ramix/synth/export"
)

// ConfigError is the failure of one configuration.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dataset: configuration %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Result describes one exported configuration.
type Result struct {
	Key      string
	Samples  int
	Duration time.Duration
	Summary  quality.Summary
}

// Report lists the outcome of every configuration in grid order.
type Report struct {
	Completed []Result
	Failed    []*ConfigError
}

type outcome struct {
	result Result
	err    error
}

// RunAll builds every configuration of the grid and writes it to sink. A
// nil sink builds and summarizes without exporting.
//
// Configurations fail independently: the report lists each failure with
// its key and the returned error combines them. Cancelling ctx stops
// configurations that have not finished; they are reported with the
// context error.
func (b *Builder) RunAll(ctx context.Context, sink export.Sink) (Report, error) {
	entries := b.grid.Entries()
	outcomes := make([]outcome, len(entries))
	log := b.cfg.logger.With(zap.Uint64("seed", b.cfg.seed))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := min(b.cfg.workers, len(entries))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = b.runOne(ctx, log, sink, entries[i].Key)
			}
		}()
	}

	next := 0
feed:
	for ; next < len(entries); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()
	for i := next; i < len(entries); i++ {
		outcomes[i] = outcome{err: ctx.Err()}
	}

	var (
		report Report
		errs   error
	)
	for i, o := range outcomes {
		if o.err != nil {
			ce := &ConfigError{Key: entries[i].Key, Err: o.err}
			report.Failed = append(report.Failed, ce)
			errs = multierr.Append(errs, ce)
			continue
		}
		report.Completed = append(report.Completed, o.result)
	}
	return report, errs
}

func (b *Builder) runOne(ctx context.Context, log *zap.Logger, sink export.Sink, key string) outcome {
	start := time.Now()
	cfg, _ := b.grid.Get(key)
	log.Info("making", zap.String("key", key), zap.Int("samples", cfg.SampleCount))

	res, err := b.runConfig(ctx, sink, key)
	if err != nil {
		log.Error("failed", zap.String("key", key), zap.Error(err))
		return outcome{err: err}
	}
	res.Duration = time.Since(start)
	log.Info("completed",
		zap.String("key", key),
		zap.Int("samples", res.Samples),
		zap.Duration("duration", res.Duration),
		zap.Float64("noise_floor", res.Summary.NoiseFloor),
	)
	return outcome{result: res}
}

func (b *Builder) runConfig(ctx context.Context, sink export.Sink, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	ds, err := b.build(ctx, key)
	if err != nil {
		return Result{}, err
	}
	summary, err := quality.Summarize(ds.Features, ds.Labels)
	if err != nil {
		return Result{}, err
	}
	if sink != nil {
		if err := sink.Write(ctx, ds.Unit(summary)); err != nil {
			return Result{}, err
		}
	}
	return Result{Key: key, Samples: ds.Features.Rows(), Summary: summary}, nil
}
