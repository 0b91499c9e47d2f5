// Command ramix synthesizes labeled mixture spectra datasets.
//
// Usage:
//
//	ramix <command> [flags]
//
// Commands:
//
//	generate  build and export every configuration of a noise sweep
//	preview   plot the noiseless component spectra to a PNG file
//	keys      list the configurations of a noise sweep
//
// Examples:
//
//	ramix generate -species default_spectra.json -out gen_data
//	ramix generate -species a.json,b.json -sweep sweep.json -seed 7 -workers 4
//	ramix generate -species a.json -format parquet -s3-bucket spectra -s3-prefix runs/1
//	ramix preview -species default_spectra.json -out components.png
//	ramix keys -sweep sweep.json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cwbudde/algo-ramix/synth/component"
	"github.com/cwbudde/algo-ramix/synth/core"
	"github.com/cwbudde/algo-ramix/synth/sweep"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "generate":
		return runGenerate(args[1:], stdout, stderr)
	case "preview":
		return runPreview(args[1:], stdout, stderr)
	case "keys":
		return runKeys(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "error: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: ramix <command> [flags]\n\n")
	fmt.Fprintf(w, "Synthesizes labeled, noisy mixture spectra from pure component peak lists.\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  generate  build and export every configuration of a noise sweep\n")
	fmt.Fprintf(w, "  preview   plot the noiseless component spectra to a PNG file\n")
	fmt.Fprintf(w, "  keys      list the configurations of a noise sweep\n\n")
	fmt.Fprintf(w, "Run 'ramix <command> -h' for the flags of a command.\n")
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// axisFlags registers the wavenumber axis flags on fs.
type axisFlags struct {
	start, end, step *float64
}

func addAxisFlags(fs *flag.FlagSet) axisFlags {
	def := core.DefaultAxis()
	return axisFlags{
		start: fs.Float64("start", def.Start, "first wavenumber of the axis (1/cm)"),
		end:   fs.Float64("end", def.End, "end of the axis, exclusive (1/cm)"),
		step:  fs.Float64("step", def.Step, "axis spacing (1/cm)"),
	}
}

func (a axisFlags) axis() (core.Axis, error) {
	// Flags bypass the tolerant axis options so bad values are reported.
	axis := core.Axis{Start: *a.start, End: *a.end, Step: *a.step}
	if err := axis.Validate(); err != nil {
		return core.Axis{}, err
	}
	return axis, nil
}

func loadSpecies(list string) ([]component.Spectrum, error) {
	var paths []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no species file given (use -species)")
	}
	return component.LoadFiles(paths...)
}

func loadSweep(path string) (sweep.Grid, error) {
	spec := sweep.DefaultSpec()
	if path != "" {
		var err error
		if spec, err = sweep.Load(path); err != nil {
			return sweep.Grid{}, err
		}
	}
	return sweep.Expand(spec)
}
