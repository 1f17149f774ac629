// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"context"
	"fmt"
	"math"

	"github.com/jeranaias/tdelays/internal/lightcurve"
)

// =============================================================================
// DELAY GRID
// =============================================================================

// DeriveTauGrid completes the delay search grid. Seeds are asked for per
// curve unless the setup file supplied them; the step and half-width are
// asked for when zero. The half-width default spans a quarter of curve 0's
// length in each direction.
func DeriveTauGrid(ctx context.Context, rec *Record, curves []lightcurve.Curve, opts Options) error {
	if err := checkCurves(rec, curves); err != nil {
		return err
	}
	a := newAsker(ctx, opts)
	tau := &rec.Tau

	if !tau.Set {
		for i := 0; i < rec.CurveCount; i++ {
			v, err := a.askFloat(fmt.Sprintf("Enter initial guess for delay of curve %d", i), tau.Seeds[i], 2, nil)
			if err != nil {
				return err
			}
			tau.Seeds[i] = v
		}
	}

	if tau.Step <= 0 {
		v, err := a.askFloat("Enter step size for delay grid in days", DefaultTauStep, 2, positive)
		if err != nil {
			return err
		}
		tau.Step = v
	}

	if tau.HalfWidth <= 0 {
		def := DefaultTauHalfWidth(curves[0].Span(), tau.Step)
		n, err := a.askInt("Enter number of delay steps on each side of the guess", def, 1, math.MaxInt32)
		if err != nil {
			return err
		}
		tau.HalfWidth = n
	}

	opts.logger().Printf("GRID_TAU | run=%s set=%t step=%g half_width=%d seeds=%v",
		rec.ShortID(), tau.Set, tau.Step, tau.HalfWidth, tau.Seeds[:rec.CurveCount])
	return nil
}

// DefaultTauHalfWidth is floor(span / (4 * step)), or 0 when step is not
// positive.
func DefaultTauHalfWidth(span, step float64) int {
	if step <= 0 || span <= 0 {
		return 0
	}
	return int(math.Floor(span / (4 * step)))
}

// =============================================================================
// FLUX-RATIO GRID
// =============================================================================

// DeriveMuGrid seeds the flux-ratio grid from the inner-half mean of each
// curve relative to curve 0, so curve 0 always seeds to 1. Seeds supplied
// by the setup file are left alone; only a missing half-width is filled.
func DeriveMuGrid(rec *Record, curves []lightcurve.Curve, opts Options) error {
	mu := &rec.Mu
	if mu.HalfWidth <= 0 {
		mu.HalfWidth = opts.fluxSteps()
	}
	if mu.Set {
		return nil
	}
	if err := checkCurves(rec, curves); err != nil {
		return err
	}

	ref, err := curves[0].InnerMean()
	if err != nil {
		return fmt.Errorf("%w: curve 0: %v", ErrDegenerateWindow, err)
	}
	if ref == 0 {
		return fmt.Errorf("%w: curve 0 has zero mean flux", ErrDegenerateWindow)
	}

	var seeds [MaxCurves]float64
	seeds[0] = 1
	for i := 1; i < rec.CurveCount; i++ {
		mean, err := curves[i].InnerMean()
		if err != nil {
			return fmt.Errorf("%w: curve %d: %v", ErrDegenerateWindow, i, err)
		}
		seeds[i] = mean / ref
	}
	mu.Seeds = seeds

	opts.logger().Printf("GRID_MU | run=%s step=%g half_width=%d seeds=%v",
		rec.ShortID(), mu.Step, mu.HalfWidth, mu.Seeds[:rec.CurveCount])
	return nil
}

// =============================================================================
// INTERPOLATION GRID
// =============================================================================

// DeriveInterpGrid fixes the interpolation start and point count when the
// curves are smoothed or interpolated. The start defaults to curve 0's
// first observation.
func DeriveInterpGrid(ctx context.Context, rec *Record, curves []lightcurve.Curve, opts Options) error {
	s := rec.Smoothing
	if s.Mode <= NoSmoothing {
		return nil
	}
	if err := checkCurves(rec, curves); err != nil {
		return err
	}
	in := &rec.Interp
	ref := curves[0]

	if in.Start < 0 {
		in.Start = ref.First()
		if in.AskStart && s.Mode != SmoothInPlace {
			a := newAsker(ctx, opts)
			v, err := a.askFloat("Enter starting day for interpolation", in.Start, 2, nonNegative)
			if err != nil {
				return err
			}
			in.Start = v
		}
	}

	if s.Mode == SmoothInPlace {
		in.Points = ref.Len()
	} else {
		if in.Step <= 0 {
			return fmt.Errorf("interpolation step %g is not positive", in.Step)
		}
		if in.Start > ref.Last() {
			return fmt.Errorf("interpolation start %.2f is after the last observation %.2f", in.Start, ref.Last())
		}
		in.Points = 1 + int((ref.Last()-in.Start)/in.Step)
	}

	opts.logger().Printf("GRID_INTERP | run=%s start=%g step=%g points=%d",
		rec.ShortID(), in.Start, in.Step, in.Points)
	return nil
}

func checkCurves(rec *Record, curves []lightcurve.Curve) error {
	if len(curves) < rec.CurveCount {
		return fmt.Errorf("need %d light curves, got %d", rec.CurveCount, len(curves))
	}
	for i := 0; i < rec.CurveCount; i++ {
		if curves[i].Len() == 0 {
			return fmt.Errorf("curve %d: %w", i, lightcurve.ErrEmptyCurve)
		}
	}
	return nil
}
