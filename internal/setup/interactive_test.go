// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/tdelays/internal/prompt"
)

// =============================================================================
// METHOD SELECTION TESTS
// =============================================================================

func TestResolveMethods_SkipsFileDecidedFlags(t *testing.T) {
	rec := NewRecord()
	rec.Methods.Chi = No
	rec.Methods.Disp = No

	p := prompt.NewScripted("n", "n", "n", "n")
	require.NoError(t, ResolveMethods(context.Background(), rec, Options{Prompter: p}))

	assert.Len(t, p.Prompts, 4)
	assert.False(t, p.Asked("chisq"))
	assert.False(t, p.Asked("Do dispersion"))
	assert.True(t, rec.Methods.Resolved())
}

func TestResolveMethods_RepromptsOnGarbage(t *testing.T) {
	var out bytes.Buffer
	rec := NewRecord()
	rec.Methods = StandardMethods()
	rec.Methods.ACorr = Unset
	rec.Dispersion.Variant = D21

	p := prompt.NewScripted("maybe", "y")
	require.NoError(t, ResolveMethods(context.Background(), rec, Options{Prompter: p, Out: &out}))

	assert.Equal(t, Yes, rec.Methods.ACorr)
	assert.Len(t, p.Prompts, 2)
	assert.Contains(t, out.String(), "Invalid input")
}

func TestResolveMethods_DispersionMenuAndDelta(t *testing.T) {
	rec := NewRecord()
	rec.Methods = StandardMethods()

	// Out-of-range choice, then D^2_2, then the default delta.
	p := prompt.NewScripted("9", "3", "")
	require.NoError(t, ResolveMethods(context.Background(), rec, Options{Prompter: p}))

	assert.Equal(t, D22, rec.Dispersion.Variant)
	assert.Equal(t, DefaultDelta, rec.Dispersion.Delta)
	assert.Len(t, p.Prompts, 3)
}

func TestResolveMethods_DispersionDefaultsToD21(t *testing.T) {
	rec := NewRecord()
	rec.Methods = StandardMethods()

	require.NoError(t, ResolveMethods(context.Background(), rec, Options{}))
	assert.Equal(t, D21, rec.Dispersion.Variant)
	assert.Equal(t, -1.0, rec.Dispersion.Delta, "D^2_1 takes no delta")
}

func TestResolveMethods_LogDestinations(t *testing.T) {
	rec := NewRecord()
	rec.Methods = StandardMethods()
	rec.Methods.Chi = Yes
	rec.Methods.XCorr = Yes
	rec.Methods.Disp = No
	rec.XCorrLog = "xc.log"

	p := prompt.NewScripted("chi.log extra")
	require.NoError(t, ResolveMethods(context.Background(), rec, Options{Prompter: p}))

	assert.Equal(t, "chi.log", rec.ChiLog)
	assert.Equal(t, "xc.log", rec.XCorrLog, "a file-supplied log is not asked for")
	assert.Len(t, p.Prompts, 1)
}

func TestResolveMethods_NoInterpolationForcesNoSmoothing(t *testing.T) {
	rec, _, err := resolveString(t, "dosmooth 2\nboxcar 5\n")
	require.NoError(t, err)
	rec.Methods = StandardMethods()
	rec.Dispersion.Variant = D21

	require.NoError(t, ResolveMethods(context.Background(), rec, Options{}))
	require.NoError(t, ResolveInterp(context.Background(), rec, Options{}))
	assert.Equal(t, NoSmoothing, rec.Smoothing.Mode)
}

func TestResolveMethods_InputErrors(t *testing.T) {
	rec := NewRecord()
	err := ResolveMethods(context.Background(), rec, Options{Prompter: prompt.NewScripted()})
	require.ErrorIs(t, err, prompt.ErrInputClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = ResolveMethods(ctx, NewRecord(), Options{Prompter: prompt.NewScripted("y")})
	require.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// SMOOTHING TESTS
// =============================================================================

func TestResolveInterp_Defaults(t *testing.T) {
	rec := NewRecord()
	rec.Methods = StandardMethods()
	rec.Methods.Chi = Yes

	require.NoError(t, ResolveInterp(context.Background(), rec, Options{}))
	assert.Equal(t, SmoothAndInterpolate, rec.Smoothing.Mode)
	assert.Equal(t, DefaultInterpStep, rec.Interp.Step)
	assert.Equal(t, Boxcar, rec.Smoothing.Kind)
	assert.Equal(t, DefaultSmoothWidth, rec.Smoothing.Width)
}

func TestResolveInterp_VariableKernel(t *testing.T) {
	rec := NewRecord()
	rec.Methods = StandardMethods()
	rec.Methods.XCorr = Yes

	// Default mode, step 0.5, variable boxcar, a rejected count, then 7.
	p := prompt.NewScripted("", "0.5", "4", "0", "7")
	require.NoError(t, ResolveInterp(context.Background(), rec, Options{Prompter: p}))

	assert.Equal(t, 0.5, rec.Interp.Step)
	assert.Equal(t, VariableBoxcar, rec.Smoothing.Kind)
	assert.Equal(t, 7, rec.Smoothing.Points)
	assert.Zero(t, rec.Smoothing.Width)
	assert.Len(t, p.Prompts, 5)
}

func TestResolveInterp_RederivesRejectedFileValues(t *testing.T) {
	rec, _, err := resolveString(t, "dochi 1\ndosmooth 3\ntriangle 900\n")
	require.NoError(t, err)

	p := prompt.NewScripted("25")
	require.NoError(t, ResolveInterp(context.Background(), rec, Options{Prompter: p}))

	assert.Equal(t, SmoothInPlace, rec.Smoothing.Mode)
	assert.Equal(t, Triangle, rec.Smoothing.Kind, "the kernel named in the file is kept")
	assert.Equal(t, 25.0, rec.Smoothing.Width)
	assert.False(t, p.Asked("interpolation step"), "smoothing in place has no step")
}

func TestResolveInterp_InterpolateOnlyAsksNoKernel(t *testing.T) {
	rec, _, err := resolveString(t, "doacorr 1\ndosmooth 1\nintstep 2\n")
	require.NoError(t, err)

	p := prompt.NewScripted()
	require.NoError(t, ResolveInterp(context.Background(), rec, Options{Prompter: p}))
	assert.Empty(t, p.Prompts)
	assert.Equal(t, KindUnset, rec.Smoothing.Kind)
}
