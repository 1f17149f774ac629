// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// SUMMARIES
// =============================================================================

// WriteCurveSummary prints the span and cadence of each input curve.
func WriteCurveSummary(w io.Writer, rec *Record) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Light curves:")
	fmt.Fprintf(w, "  %-6s %7s %10s %10s %10s %9s %8s\n",
		"Curve", "Points", "Start", "End", "Midpoint", "Length", "Cadence")
	for i, c := range rec.Curves {
		fmt.Fprintf(w, "  %-6d %7d %10.2f %10.2f %10.2f %9.2f %8.3f\n",
			i, c.Points, c.Start, c.End, c.Midpoint(), c.Length(), c.Cadence())
	}
}

// WriteDelaysSummary prints the selected methods and both search grids.
func WriteDelaysSummary(w io.Writer, rec *Record) {
	m := rec.Methods
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Delay estimation:")

	chosen := m.Selected()
	if len(chosen) == 0 {
		chosen = []string{"none"}
	}
	fmt.Fprintf(w, "  Methods:          %s\n", strings.Join(chosen, ", "))

	if m.Disp.IsYes() {
		fmt.Fprintf(w, "  Dispersion:       %s", rec.Dispersion.Variant)
		if rec.Dispersion.Variant.NeedsDelta() {
			fmt.Fprintf(w, " (delta = %.2f days)", rec.Dispersion.Delta)
		}
		fmt.Fprintln(w)
	}
	if m.Chi.IsYes() {
		fmt.Fprintf(w, "  Chisq output:     %s\n", rec.ChiLog)
	}
	if m.XCorr.IsYes() {
		fmt.Fprintf(w, "  Xcorr output:     %s\n", rec.XCorrLog)
	}
	if rec.OutFile != "" {
		fmt.Fprintf(w, "  Output file:      %s\n", rec.OutFile)
	}

	fmt.Fprintf(w, "  Delay grid:       step %.2f days, %d steps each side\n", rec.Tau.Step, rec.Tau.HalfWidth)
	for i := 0; i < rec.CurveCount; i++ {
		lo, hi, n := rec.Tau.SearchRange(i)
		fmt.Fprintf(w, "    curve %d: guess %8.2f  search %8.2f to %8.2f (%d trials)\n",
			i, rec.Tau.Seeds[i], lo, hi, n)
	}

	fmt.Fprintf(w, "  Flux ratio grid:  step %g, %d steps each side\n", rec.Mu.Step, rec.Mu.HalfWidth)
	for i := 0; i < rec.CurveCount; i++ {
		lo, hi, n := rec.Mu.SearchRange(i)
		fmt.Fprintf(w, "    curve %d: guess %8.4f  search %8.4f to %8.4f (%d trials)\n",
			i, rec.Mu.Seeds[i], lo, hi, n)
	}
}

// WriteInterpSummary prints the smoothing and interpolation settings.
func WriteInterpSummary(w io.Writer, rec *Record) {
	s := rec.Smoothing
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Smoothing and interpolation:")
	if s.Mode <= NoSmoothing {
		fmt.Fprintln(w, "  No smoothing or interpolation")
		return
	}

	fmt.Fprintf(w, "  Mode:             %s\n", s.Mode)
	if s.Smooths() {
		if s.Kind.Variable() {
			fmt.Fprintf(w, "  Kernel:           %s, %d points\n", s.Kind, s.Points)
		} else {
			fmt.Fprintf(w, "  Kernel:           %s, width %.2f days\n", s.Kind, s.Width)
		}
	}
	if s.Mode != SmoothInPlace {
		fmt.Fprintf(w, "  Step:             %.2f days\n", rec.Interp.Step)
	}
	fmt.Fprintf(w, "  Start:            day %.2f\n", rec.Interp.Start)
	fmt.Fprintf(w, "  Points:           %d\n", rec.Interp.Points)
}
