package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-ramix/internal/logging"
	"github.com/cwbudde/algo-ramix/synth/baseline"
	"github.com/cwbudde/algo-ramix/synth/dataset"
	"github.com/cwbudde/algo-ramix/synth/export"
	"github.com/cwbudde/algo-ramix/synth/noise"
	"github.com/cwbudde/algo-ramix/synth/peak"
)

func runGenerate(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("generate", stderr)
	species := fs.String("species", "", "comma-separated component JSON files (required)")
	sweepPath := fs.String("sweep", "", "sweep JSON file (default: the reference 48-configuration sweep)")
	out := fs.String("out", "", "output directory (default: current directory)")
	format := fs.String("format", "npy", "array format: npy or parquet")
	compression := fs.String("compression", "snappy", "parquet codec: snappy, zstd or gzip")
	shape := fs.String("shape", "lorentzian", "peak shape: lorentzian or gaussian")
	seed := fs.Uint64("seed", 0, "run seed (default: random)")
	workers := fs.Int("workers", 1, "configurations built concurrently")
	retries := fs.Int("retries", 3, "attempts per sample when the baseline fit degenerates")
	lambda := fs.Float64("lambda", 100, "baseline smoothness")
	asym := fs.Float64("p", 1, "baseline asymmetry in [0,1]")
	iterations := fs.Int("iterations", 10, "baseline reweighting passes")
	scale := fs.Float64("baseline-scale", 25, "baseline divisor after normalization")
	logLocation := fs.Float64("log-location", noise.DefaultLogLocation, "location (mu) of the log-normal amplitude and width multipliers")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn or error")
	logDev := fs.Bool("log-dev", false, "human-readable development logging")
	bucket := fs.String("s3-bucket", "", "upload to this S3 bucket instead of -out")
	prefix := fs.String("s3-prefix", "", "S3 key prefix")
	region := fs.String("s3-region", "", "S3 region (default: from the AWS environment)")
	endpoint := fs.String("s3-endpoint", "", "S3-compatible endpoint URL, path-style")
	ax := addAxisFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	seedSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger, err := logging.New(logging.WithLevel(level), logging.WithDevelopment(*logDev))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	fail := func(err error) int {
		logger.Error("generate failed", zap.Error(err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	specs, err := loadSpecies(*species)
	if err != nil {
		return fail(err)
	}
	grid, err := loadSweep(*sweepPath)
	if err != nil {
		return fail(err)
	}
	axis, err := ax.axis()
	if err != nil {
		return fail(err)
	}
	s, err := peak.ParseShape(*shape)
	if err != nil {
		return fail(err)
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return fail(err)
	}

	opts := []dataset.Option{
		dataset.WithAxis(axis),
		dataset.WithShape(s),
		dataset.WithWorkers(*workers),
		dataset.WithRetries(*retries),
		dataset.WithLogger(logger),
		dataset.WithNoiseOptions(noise.WithLogLocation(*logLocation)),
		dataset.WithBaselineOptions(
			baseline.WithLambda(*lambda),
			baseline.WithAsymmetry(*asym),
			baseline.WithIterations(*iterations),
			baseline.WithScale(*scale),
		),
	}
	if seedSet {
		opts = append(opts, dataset.WithSeed(*seed))
	}
	b, err := dataset.NewBuilder(specs, grid, opts...)
	if err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sinkOpts := []export.Option{export.WithFormat(f), export.WithCompression(*compression)}
	var sink export.Sink
	if *bucket != "" {
		client, err := export.NewS3Client(ctx, *region, *endpoint)
		if err != nil {
			return fail(err)
		}
		if sink, err = export.NewS3Sink(client, *bucket, *prefix, sinkOpts...); err != nil {
			return fail(err)
		}
	} else {
		if sink, err = export.NewDirSink(*out, sinkOpts...); err != nil {
			return fail(err)
		}
	}

	logger.Info("generating",
		zap.Int("configurations", grid.Len()),
		zap.Strings("species", b.Names()),
		zap.Uint64("seed", b.Seed()),
	)
	report, err := b.RunAll(ctx, sink)
	printReport(stdout, report)

	if err != nil {
		var ce *dataset.ConfigError
		if errors.As(err, &ce) {
			fmt.Fprintf(stderr, "error: %d of %d configurations failed\n", len(report.Failed), grid.Len())
		}
		return 1
	}
	return 0
}

func printReport(w io.Writer, report dataset.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Key\tSamples\tNoise floor\tDuration\tStatus\n")
	fmt.Fprintf(tw, "---\t-------\t-----------\t--------\t------\n")
	for _, r := range report.Completed {
		fmt.Fprintf(tw, "%s\t%d\t%.4g\t%s\tok\n", r.Key, r.Samples, r.Summary.NoiseFloor, r.Duration.Round(time.Millisecond))
	}
	for _, f := range report.Failed {
		fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\n", f.Key, f.Err)
	}
	_ = tw.Flush()
}
