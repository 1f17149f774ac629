// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/tdelays/internal/lightcurve"
	"github.com/jeranaias/tdelays/internal/prompt"
)

// =============================================================================
// DELAY GRID TESTS
// =============================================================================

func TestDefaultTauHalfWidth(t *testing.T) {
	tests := []struct {
		span, step float64
		want       int
	}{
		{100, 2, 12},
		{100, 1, 25},
		{49.75, 1, 12},
		{3, 1, 0},
		{0, 1, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultTauHalfWidth(tt.span, tt.step), "span=%g step=%g", tt.span, tt.step)
	}
}

func TestDeriveTauGrid_FileSeeds(t *testing.T) {
	rec, _, err := resolveString(t, "tau0 0 10 0 0\ndtau 2.0\n")
	require.NoError(t, err)
	curves := []lightcurve.Curve{flat(101, 1, 1), flat(101, 1, 1)}

	p := prompt.NewScripted("")
	require.NoError(t, DeriveTauGrid(context.Background(), rec, curves, Options{Prompter: p}))

	assert.True(t, rec.Tau.Set)
	assert.Equal(t, 2.0, rec.Tau.Step)
	assert.Equal(t, 12, rec.Tau.HalfWidth)
	assert.Len(t, p.Prompts, 1, "only the half-width is asked for")

	lo, hi, n := rec.Tau.SearchRange(1)
	assert.Equal(t, -14.0, lo)
	assert.Equal(t, 34.0, hi)
	assert.Equal(t, 25, n)
}

func TestDeriveTauGrid_AsksSeedsWhenNotSet(t *testing.T) {
	rec := NewRecord()
	curves := []lightcurve.Curve{flat(41, 1, 1), flat(41, 1, 1)}

	p := prompt.NewScripted("", "-7.5", "", "")
	require.NoError(t, DeriveTauGrid(context.Background(), rec, curves, Options{Prompter: p}))

	assert.False(t, rec.Tau.Set, "prompted seeds do not mark the grid as file-set")
	assert.Equal(t, -7.5, rec.Tau.Seeds[1])
	assert.Equal(t, DefaultTauStep, rec.Tau.Step)
	assert.Equal(t, 10, rec.Tau.HalfWidth)
}

func TestDeriveTauGrid_ZeroSpanReprompts(t *testing.T) {
	rec, _, err := resolveString(t, "tau0 0 0 0 0\ndtau 1\n")
	require.NoError(t, err)
	curves := []lightcurve.Curve{flat(1, 1, 1), flat(1, 1, 1)}

	p := prompt.NewScripted("", "3")
	require.NoError(t, DeriveTauGrid(context.Background(), rec, curves, Options{Prompter: p}))
	assert.Equal(t, 3, rec.Tau.HalfWidth)
	assert.Len(t, p.Prompts, 2)

	rec.Tau.HalfWidth = 0
	err = DeriveTauGrid(context.Background(), rec, curves, Options{})
	require.ErrorIs(t, err, ErrNoValidDefault)
}

func TestDeriveTauGrid_NeedsTwoCurves(t *testing.T) {
	err := DeriveTauGrid(context.Background(), NewRecord(), []lightcurve.Curve{flat(10, 1, 1)}, Options{})
	require.Error(t, err)

	err = DeriveTauGrid(context.Background(), NewRecord(), []lightcurve.Curve{flat(10, 1, 1), nil}, Options{})
	require.ErrorIs(t, err, lightcurve.ErrEmptyCurve)
}

// =============================================================================
// FLUX-RATIO GRID TESTS
// =============================================================================

func TestDeriveMuGrid_InnerMeanRatio(t *testing.T) {
	rec := NewRecord()
	a := flat(200, 0.25, 2)
	b := flat(200, 0.25, 3)
	// Edge samples outside the inner half do not affect the seed.
	a[0].Flux, a[199].Flux = 1000, -1000

	require.NoError(t, DeriveMuGrid(rec, []lightcurve.Curve{a, b}, Options{}))
	assert.Equal(t, 1.0, rec.Mu.Seeds[0])
	assert.InDelta(t, 1.5, rec.Mu.Seeds[1], 1e-12)
	assert.Equal(t, DefaultFluxSteps, rec.Mu.HalfWidth)
	assert.False(t, rec.Mu.Set)
}

func TestDeriveMuGrid_FluxStepsOption(t *testing.T) {
	rec := NewRecord()
	curves := []lightcurve.Curve{flat(8, 1, 1), flat(8, 1, 1)}
	require.NoError(t, DeriveMuGrid(rec, curves, Options{FluxSteps: 20}))
	assert.Equal(t, 20, rec.Mu.HalfWidth)

	rec = NewRecord()
	rec.Mu.HalfWidth = 5
	require.NoError(t, DeriveMuGrid(rec, curves, Options{FluxSteps: 20}))
	assert.Equal(t, 5, rec.Mu.HalfWidth, "a file-supplied half-width wins")
}

func TestDeriveMuGrid_SetIsNoOp(t *testing.T) {
	rec, _, err := resolveString(t, "mu0 1 0.8 0 0\n")
	require.NoError(t, err)
	seeds := rec.Mu.Seeds

	require.NoError(t, DeriveMuGrid(rec, nil, Options{}))
	after := rec.Mu
	require.NoError(t, DeriveMuGrid(rec, nil, Options{}))
	assert.Equal(t, after, rec.Mu)
	assert.Equal(t, seeds, rec.Mu.Seeds)
	assert.True(t, rec.Mu.Set)
	assert.Equal(t, DefaultFluxSteps, rec.Mu.HalfWidth, "missing nmu still gets the default")
}

func TestDeriveMuGrid_SetKeepsFileHalfWidth(t *testing.T) {
	rec, _, err := resolveString(t, "mu0 1 0.8 0 0\nnmu 20\n")
	require.NoError(t, err)

	require.NoError(t, DeriveMuGrid(rec, nil, Options{FluxSteps: 80}))
	assert.Equal(t, 20, rec.Mu.HalfWidth)
	assert.Equal(t, 0.8, rec.Mu.Seeds[1])
}

func TestDeriveMuGrid_Idempotent(t *testing.T) {
	rec := NewRecord()
	curves := []lightcurve.Curve{flat(40, 1, 4), flat(40, 1, 1)}

	require.NoError(t, DeriveMuGrid(rec, curves, Options{}))
	first := rec.Mu
	require.NoError(t, DeriveMuGrid(rec, curves, Options{}))
	assert.Equal(t, first, rec.Mu)
	assert.Equal(t, 0.25, rec.Mu.Seeds[1])
}

func TestDeriveMuGrid_Degenerate(t *testing.T) {
	short := []lightcurve.Curve{flat(3, 1, 1), flat(40, 1, 1)}
	require.ErrorIs(t, DeriveMuGrid(NewRecord(), short, Options{}), ErrDegenerateWindow)

	shortSecond := []lightcurve.Curve{flat(40, 1, 1), flat(2, 1, 1)}
	require.ErrorIs(t, DeriveMuGrid(NewRecord(), shortSecond, Options{}), ErrDegenerateWindow)

	zero := []lightcurve.Curve{flat(40, 1, 0), flat(40, 1, 1)}
	require.ErrorIs(t, DeriveMuGrid(NewRecord(), zero, Options{}), ErrDegenerateWindow)
}

// =============================================================================
// INTERPOLATION GRID TESTS
// =============================================================================

func TestDeriveInterpGrid(t *testing.T) {
	curves := []lightcurve.Curve{flat(50, 1, 1), flat(50, 1, 1)}

	t.Run("no smoothing leaves the grid alone", func(t *testing.T) {
		rec := NewRecord()
		rec.Smoothing.Mode = NoSmoothing
		require.NoError(t, DeriveInterpGrid(context.Background(), rec, curves, Options{}))
		assert.Equal(t, -1.0, rec.Interp.Start)
		assert.Zero(t, rec.Interp.Points)
	})

	t.Run("start defaults to first observation", func(t *testing.T) {
		rec := NewRecord()
		rec.Smoothing.Mode = InterpolateOnly
		rec.Interp.Step = 1
		rec.Interp.AskStart = false
		require.NoError(t, DeriveInterpGrid(context.Background(), rec, curves, Options{}))
		assert.Equal(t, 0.0, rec.Interp.Start)
		assert.Equal(t, 50, rec.Interp.Points)
	})

	t.Run("asked start", func(t *testing.T) {
		rec := NewRecord()
		rec.Smoothing.Mode = SmoothAndInterpolate
		rec.Interp.Step = 1
		p := prompt.NewScripted("-1", "5")
		require.NoError(t, DeriveInterpGrid(context.Background(), rec, curves, Options{Prompter: p}))
		assert.Equal(t, 5.0, rec.Interp.Start)
		assert.Equal(t, 45, rec.Interp.Points)
	})

	t.Run("accepted start keeps the exact first day", func(t *testing.T) {
		shifted := make(lightcurve.Curve, 10)
		for i := range shifted {
			shifted[i] = lightcurve.Point{Day: 50412.345 + float64(i), Flux: 1}
		}
		rec := NewRecord()
		rec.Smoothing.Mode = InterpolateOnly
		rec.Interp.Step = 1
		p := prompt.NewScripted("")
		require.NoError(t, DeriveInterpGrid(context.Background(), rec, []lightcurve.Curve{shifted, shifted}, Options{Prompter: p}))
		require.Len(t, p.Prompts, 1)
		assert.Contains(t, p.Prompts[0], "[50412.35]")
		assert.Equal(t, 50412.345, rec.Interp.Start)
		assert.Equal(t, 10, rec.Interp.Points)
	})

	t.Run("in place keeps raw sampling", func(t *testing.T) {
		rec := NewRecord()
		rec.Smoothing.Mode = SmoothInPlace
		p := prompt.NewScripted()
		require.NoError(t, DeriveInterpGrid(context.Background(), rec, curves, Options{Prompter: p}))
		assert.Empty(t, p.Prompts)
		assert.Equal(t, 50, rec.Interp.Points)
	})

	t.Run("start after last observation", func(t *testing.T) {
		rec := NewRecord()
		rec.Smoothing.Mode = InterpolateOnly
		rec.Interp.Step = 1
		rec.Interp.Start = 80
		require.Error(t, DeriveInterpGrid(context.Background(), rec, curves, Options{}))
	})
}
