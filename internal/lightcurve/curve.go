// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lightcurve provides the light-curve data used by the setup
// resolver: sampled points, day-span summaries and windowed mean fluxes.
package lightcurve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyCurve is returned when a curve has no samples.
	ErrEmptyCurve = errors.New("light curve has no points")

	// ErrEmptyWindow is returned when an averaging window selects no samples.
	ErrEmptyWindow = errors.New("no points inside averaging window")
)

// =============================================================================
// CURVE
// =============================================================================

// Point is a single flux measurement.
type Point struct {
	Day  float64
	Flux float64
	Err  float64
}

// Curve is a time-ordered series of flux measurements.
type Curve []Point

// Sort orders the curve by day in place.
func (c Curve) Sort() {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Day < c[j].Day })
}

// Len returns the number of points.
func (c Curve) Len() int {
	return len(c)
}

// First returns the day of the first sample, or 0 for an empty curve.
func (c Curve) First() float64 {
	if len(c) == 0 {
		return 0
	}
	return c[0].Day
}

// Last returns the day of the last sample, or 0 for an empty curve.
func (c Curve) Last() float64 {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].Day
}

// Span returns last day minus first day.
func (c Curve) Span() float64 {
	return c.Last() - c.First()
}

// Summary describes a curve for reporting.
type Summary struct {
	Points int     `json:"points"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

// Summarize returns the curve's point count and day range.
func (c Curve) Summarize() Summary {
	return Summary{Points: len(c), Start: c.First(), End: c.Last()}
}

// Length returns the day-span covered.
func (s Summary) Length() float64 {
	return s.End - s.Start
}

// Midpoint returns the middle day of the curve.
func (s Summary) Midpoint() float64 {
	return (s.Start + s.End) / 2.0
}

// Cadence returns the mean sampling interval (span / points).
func (s Summary) Cadence() float64 {
	if s.Points == 0 {
		return 0
	}
	return s.Length() / float64(s.Points)
}

// =============================================================================
// STATISTICS
// =============================================================================

// Mean returns the mean and rms flux of the curve's points.
func (c Curve) Mean() (mean, rms float64, err error) {
	if len(c) == 0 {
		return 0, 0, ErrEmptyCurve
	}

	var sum, sumsq float64
	for _, p := range c {
		sum += p.Flux
		sumsq += p.Flux * p.Flux
	}
	n := float64(len(c))
	mean = sum / n
	if len(c) > 1 {
		variance := (sumsq - n*mean*mean) / (n - 1)
		if variance > 0 {
			rms = math.Sqrt(variance)
		}
	}
	return mean, rms, nil
}

// InnerWindow returns the 1-based sample positions [floor(N/4), floor(3N/4)]
// bounding the inner half of the curve. ok is false when the window cannot
// be formed (fewer than four points).
func (c Curve) InnerWindow() (first, last int, ok bool) {
	n := len(c)
	first = n / 4
	last = (3 * n) / 4
	if first < 1 || last < first {
		return first, last, false
	}
	return first, last, true
}

// InnerMean returns the mean flux over the inner 50% of the samples,
// counted by position rather than by day.
func (c Curve) InnerMean() (float64, error) {
	if len(c) == 0 {
		return 0, ErrEmptyCurve
	}
	first, last, ok := c.InnerWindow()
	if !ok {
		return 0, fmt.Errorf("%w: %d points", ErrEmptyWindow, len(c))
	}

	mean, _, err := c[first-1 : last].Mean()
	return mean, err
}
