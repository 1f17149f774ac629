// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/tdelays/internal/lightcurve"
)

// ramp builds n points starting at day 0 with the given cadence and flux(i).
func ramp(n int, cadence float64, flux func(i int) float64) lightcurve.Curve {
	c := make(lightcurve.Curve, n)
	for i := range c {
		c[i] = lightcurve.Point{Day: float64(i) * cadence, Flux: flux(i)}
	}
	return c
}

func flat(n int, cadence, flux float64) lightcurve.Curve {
	return ramp(n, cadence, func(int) float64 { return flux })
}

// =============================================================================
// RECORD TESTS
// =============================================================================

func TestNewRecord_Defaults(t *testing.T) {
	rec := NewRecord()

	assert.NotEmpty(t, rec.RunID)
	assert.Equal(t, PairedCurves, rec.CurveCount)
	assert.False(t, rec.Methods.Chi.IsSet())
	assert.False(t, rec.Methods.Disp.IsSet())
	assert.False(t, rec.Methods.Resolved())
	assert.Equal(t, VariantUnset, rec.Dispersion.Variant)
	assert.Equal(t, -1.0, rec.Dispersion.Delta)
	assert.Equal(t, SmoothUnset, rec.Smoothing.Mode)
	assert.Equal(t, KindUnset, rec.Smoothing.Kind)
	assert.Equal(t, -1.0, rec.Interp.Start)
	assert.True(t, rec.Interp.AskStart)
	assert.Equal(t, DefaultFluxStep, rec.Mu.Step)
	assert.False(t, rec.Tau.Set)
	assert.False(t, rec.Mu.Set)
	assert.Equal(t, "chiba.dat", rec.AChiFile)
	assert.Equal(t, "chibc.dat", rec.CChiFile)
	assert.Equal(t, "chibd.dat", rec.DChiFile)
	assert.Equal(t, StdoutLog, rec.ChiLog)
	assert.Equal(t, StdoutLog, rec.XCorrLog)
	assert.Equal(t, "mc_g", rec.Root)
	assert.Equal(t, MeanUnset, rec.MeanChoice)

	assert.NotEqual(t, rec.RunID, NewRecord().RunID)
	assert.Len(t, rec.ShortID(), 8)
}

func TestStandardMethods(t *testing.T) {
	m := StandardMethods()
	assert.True(t, m.Resolved())
	assert.True(t, m.Disp.IsYes())
	assert.False(t, m.Interpolating())
	assert.Equal(t, No, m.Chi)
	assert.Equal(t, No, m.CurveFit)
}

func TestTriState_Text(t *testing.T) {
	data, err := json.Marshal(struct {
		A TriState `json:"a"`
		B TriState `json:"b"`
		C TriState `json:"c"`
	}{Yes, No, Unset})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"yes","b":"no","c":"unset"}`, string(data))

	var back TriState
	require.NoError(t, back.UnmarshalText([]byte("YES")))
	assert.Equal(t, Yes, back)
	assert.Error(t, back.UnmarshalText([]byte("perhaps")))

	assert.Equal(t, Yes, TriFromInt(3))
	assert.Equal(t, No, TriFromInt(0))
}

func TestDecodeRecord(t *testing.T) {
	rec := NewRecord()
	rec.Methods = StandardMethods()
	rec.Methods.Chi = Yes
	rec.Dispersion.Variant = D22
	rec.Tau = Grid{Set: true, Step: 2, HalfWidth: 12, Seeds: [MaxCurves]float64{0, 10}}
	rec.Curves = []lightcurve.Summary{{Points: 101, Start: 0, End: 100}}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chi":"yes"`)

	back, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec, back)
	assert.True(t, back.Methods.Resolved())

	_, err = DecodeRecord([]byte(`{"methods":{"chi":"perhaps"}}`))
	require.Error(t, err)

	partial, err := DecodeRecord([]byte(`{"run_id":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", partial.RunID)
	assert.Equal(t, DefaultRoot, partial.Root)
}

func TestSmoothing_WidthAndPointsExclusive(t *testing.T) {
	var s Smoothing
	s.SetWidth(Triangle, 12)
	assert.Equal(t, 12.0, s.Width)
	assert.Zero(t, s.Points)

	s.SetPoints(VariableTriangle, 7)
	assert.Equal(t, VariableTriangle, s.Kind)
	assert.Equal(t, 7, s.Points)
	assert.Zero(t, s.Width)

	s.SetKind(Gaussian)
	assert.Zero(t, s.Points)
	assert.False(t, s.Kind.Variable())
}

func TestGrid_SearchRange(t *testing.T) {
	g := Grid{Step: 2, HalfWidth: 12}
	g.SetSeeds([MaxCurves]float64{0, 10, 0, 0})
	assert.True(t, g.Set)

	lo, hi, n := g.SearchRange(1)
	assert.Equal(t, -14.0, lo)
	assert.Equal(t, 34.0, hi)
	assert.Equal(t, 25, n)

	lo, hi, _ = g.SearchRange(0)
	assert.Equal(t, -24.0, lo)
	assert.Equal(t, 24.0, hi)

	// Seeds off the step lattice snap toward zero.
	g.Seeds[2] = 5.9
	lo, hi, _ = g.SearchRange(2)
	assert.Equal(t, -20.0, lo)
	assert.Equal(t, 28.0, hi)

	_, _, n = g.SearchRange(MaxCurves)
	assert.Zero(t, n)

	g.ClearSeeds()
	assert.False(t, g.Set)
	assert.Zero(t, g.Seeds[1])
}

// =============================================================================
// KEYWORD TABLE TESTS
// =============================================================================

func TestLookupKeyword_IgnoresCase(t *testing.T) {
	for _, word := range []string{"dochi", "DoChi", "DOCHI"} {
		kw, ok := LookupKeyword(word)
		require.True(t, ok, word)
		assert.Equal(t, "dochi", kw.Name)
	}

	_, ok := LookupKeyword("dofourier")
	assert.False(t, ok)
}

func TestKeywordNames(t *testing.T) {
	names := KeywordNames()
	assert.Len(t, names, 34)
	assert.Contains(t, names, "gauss")
	assert.Contains(t, names, "meanchoice")
	assert.IsIncreasing(t, names)
}
