// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"context"
)

// =============================================================================
// METHOD SELECTION
// =============================================================================

var dispersionMenu = []string{
	D21.String(),
	D21Multi.String(),
	D22.String(),
	Lovell.String(),
}

// ResolveMethods asks for every method flag still Unset, then for the
// dispersion variant, delta and log destinations the chosen methods need.
// Fields the file already decided are never asked about.
func ResolveMethods(ctx context.Context, rec *Record, opts Options) error {
	a := newAsker(ctx, opts)
	m := &rec.Methods

	for _, f := range m.fields() {
		if f.flag.IsSet() {
			continue
		}
		yes, err := a.askYesNo(f.question, false)
		if err != nil {
			return err
		}
		*f.flag = TriFromBool(yes)
	}

	if !m.Interpolating() {
		rec.Smoothing.Disable()
	}

	if m.Disp.IsYes() {
		if !rec.Dispersion.Variant.Valid() {
			n, err := a.askMenu("Choose the dispersion method:", dispersionMenu, int(D21), int(D21))
			if err != nil {
				return err
			}
			rec.Dispersion.Variant = DispersionVariant(n)
		}
		if rec.Dispersion.Variant.NeedsDelta() && rec.Dispersion.Delta <= 0 {
			v, err := a.askFloat("Enter value for delta", DefaultDelta, 1, positive)
			if err != nil {
				return err
			}
			rec.Dispersion.Delta = v
		}
	}

	if m.Chi.IsYes() && rec.ChiLog == StdoutLog {
		name, err := a.askToken("Filename for chisq output", StdoutLog)
		if err != nil {
			return err
		}
		rec.ChiLog = name
	}
	if m.XCorr.IsYes() && rec.XCorrLog == StdoutLog {
		name, err := a.askToken("Filename for cross-correlation output", StdoutLog)
		if err != nil {
			return err
		}
		rec.XCorrLog = name
	}

	opts.logger().Printf("SETUP_METHODS | run=%s chi=%s xcorr=%s acorr=%s disp=%s dcf=%s curvefit=%s variant=%d",
		rec.ShortID(), m.Chi, m.XCorr, m.ACorr, m.Disp, m.DCF, m.CurveFit, rec.Dispersion.Variant)
	return nil
}

// =============================================================================
// SMOOTHING AND INTERPOLATION
// =============================================================================

var smoothModeMenu = []string{
	"Linear interpolation only",
	"Smoothing and interpolation",
	"Smoothing in place (no interpolation)",
}

var smoothKindMenu = []string{
	Boxcar.String(),
	Median.String(),
	Triangle.String(),
	Gaussian.String(),
	VariableBoxcar.String(),
	VariableTriangle.String(),
}

// ResolveInterp settles the smoothing mode, interpolation step and
// smoothing kernel. Without an interpolating method it only forces
// NoSmoothing.
func ResolveInterp(ctx context.Context, rec *Record, opts Options) error {
	if !rec.Methods.Interpolating() {
		rec.Smoothing.Disable()
		return nil
	}

	a := newAsker(ctx, opts)
	s := &rec.Smoothing

	if !s.Mode.Valid() {
		n, err := a.askMenu("Choose the smoothing/interpolation method:", smoothModeMenu,
			int(InterpolateOnly), int(SmoothAndInterpolate))
		if err != nil {
			return err
		}
		s.Mode = SmoothMode(n)
	}

	if s.Mode != SmoothInPlace && rec.Interp.Step <= 0 {
		v, err := a.askFloat("Enter interpolation step in days", DefaultInterpStep, 2,
			within(0, MaxInterpStep, true))
		if err != nil {
			return err
		}
		rec.Interp.Step = v
	}

	if s.Smooths() {
		if !s.Kind.Valid() {
			n, err := a.askMenu("Choose the smoothing function:", smoothKindMenu, int(Boxcar), int(Boxcar))
			if err != nil {
				return err
			}
			s.SetKind(SmoothKind(n))
		}

		if s.Kind.Variable() {
			if s.Points <= 0 {
				n, err := a.askInt("Enter number of points for variable-width smoothing",
					DefaultSmoothPoints, 1, MaxSmoothPoints)
				if err != nil {
					return err
				}
				s.SetPoints(s.Kind, n)
			}
		} else if s.Width <= 0 {
			v, err := a.askFloat("Enter smoothing width in days", DefaultSmoothWidth, 1,
				within(MinSmoothWidth, MaxSmoothWidth, false))
			if err != nil {
				return err
			}
			s.SetWidth(s.Kind, v)
		}
	}

	opts.logger().Printf("SETUP_INTERP | run=%s mode=%d kind=%d width=%g points=%d step=%g",
		rec.ShortID(), s.Mode, s.Kind, s.Width, s.Points, rec.Interp.Step)
	return nil
}
