package main

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-ramix/internal/preview"
	"github.com/cwbudde/algo-ramix/synth/mixture"
	"github.com/cwbudde/algo-ramix/synth/peak"
)

func runPreview(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("preview", stderr)
	species := fs.String("species", "", "comma-separated component JSON files (required)")
	out := fs.String("out", "components.png", "output PNG file")
	shape := fs.String("shape", "lorentzian", "peak shape: lorentzian or gaussian")
	width := fs.Float64("width", 5, "image width in inches")
	height := fs.Float64("panel-height", 3, "height of each component panel in inches")
	ax := addAxisFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := writePreview(*species, *out, *shape, ax, *width, *height); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", *out)
	return 0
}

func writePreview(species, out, shape string, ax axisFlags, width, height float64) error {
	specs, err := loadSpecies(species)
	if err != nil {
		return err
	}
	axis, err := ax.axis()
	if err != nil {
		return err
	}
	s, err := peak.ParseShape(shape)
	if err != nil {
		return err
	}
	comp, err := mixture.NewCompositor(axis, nil, mixture.WithShape(s))
	if err != nil {
		return err
	}
	spectra, err := comp.ComponentSpectra(specs)
	if err != nil {
		return err
	}

	names := make([]string, len(specs))
	for i, sp := range specs {
		names[i] = sp.Name()
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	opts := preview.Options{Width: vg.Length(width) * vg.Inch, PanelHeight: vg.Length(height) * vg.Inch}
	if err := preview.WritePNG(f, comp.Wavenumbers(), names, spectra, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
