// Package preview renders noiseless component spectra as stacked line plots.
package preview

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var errNoSpectra = errors.New("preview: no spectra to plot")

// Options sizes the rendered image.
type Options struct {
	Width       vg.Length
	PanelHeight vg.Length
}

// DefaultOptions returns a 5 x 3 inch panel per component.
func DefaultOptions() Options {
	return Options{Width: 5 * vg.Inch, PanelHeight: 3 * vg.Inch}
}

// WritePNG plots spectra[name] against wavenumbers for every name, one
// panel per name from top to bottom, and writes the image to w as PNG.
func WritePNG(w io.Writer, wavenumbers []float64, names []string, spectra map[string][]float64, opts Options) error {
	if len(names) == 0 {
		return errNoSpectra
	}
	if opts.Width <= 0 || opts.PanelHeight <= 0 {
		opts = DefaultOptions()
	}

	plots := make([][]*plot.Plot, len(names))
	for i, name := range names {
		values, ok := spectra[name]
		if !ok {
			return fmt.Errorf("preview: no spectrum for %q", name)
		}
		p, err := panel(name, wavenumbers, values)
		if err != nil {
			return err
		}
		plots[i] = []*plot.Plot{p}
	}

	img := vgimg.New(opts.Width, opts.PanelHeight*vg.Length(len(names)))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(names),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      2 * vg.Millimeter,
		PadTop:    vg.Millimeter,
		PadBottom: vg.Millimeter,
		PadLeft:   vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

func panel(name string, x, y []float64) (*plot.Plot, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("preview: %q has %d values for %d wavenumbers", name, len(y), len(x))
	}
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}

	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "wavenumber (1/cm)"
	p.Y.Label.Text = "intensity"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("preview: %q: %w", name, err)
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(line)
	return p, nil
}
