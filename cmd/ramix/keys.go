package main

import (
	"fmt"
	"io"
	"text/tabwriter"
)

func runKeys(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("keys", stderr)
	sweepPath := fs.String("sweep", "", "sweep JSON file (default: the reference 48-configuration sweep)")
	list := fs.Bool("list", false, "print keys only")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	grid, err := loadSweep(*sweepPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if *list {
		for _, key := range grid.Keys() {
			fmt.Fprintln(stdout, key)
		}
		return 0
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Key\tSize\tWN std\tAmp std\tWidth std\tBaseline\n")
	fmt.Fprintf(tw, "---\t----\t------\t-------\t---------\t--------\n")
	for _, e := range grid.Entries() {
		c := e.Config
		fmt.Fprintf(tw, "%s\t%d\t%g\t%g\t%g\t%t\n", e.Key, c.SampleCount, c.WavenumberStd, c.AmplitudeStd, c.WidthStd, c.AddBaseline)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "error: failed to flush output: %v\n", err)
		return 1
	}
	return 0
}
