// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/tdelays/internal/lightcurve"
)

func TestWriteSetup_ReplaysResolvedRecord(t *testing.T) {
	path := writeSetup(t, "dochi 1\ndodisp 1\ndispchoice 4\nd2delta 3.5\nvartri 9\noutfile run.out\n")
	rec, err := FromArgs([]string{"-2", "a.dat", "b.dat", path})
	require.NoError(t, err)
	curves := []lightcurve.Curve{flat(80, 0.5, 3), flat(80, 0.5, 2)}
	require.NoError(t, GetSetupParams(context.Background(), rec, curves, Options{}))

	var buf bytes.Buffer
	require.NoError(t, rec.WriteSetup(&buf))
	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "# tdelays setup, run "+rec.RunID))
	assert.Contains(t, text, "vartri 9\n")
	assert.Contains(t, text, "d2delta 3.5\n")

	replay := NewRecord()
	report, err := ResolveFile(context.Background(), replay, strings.NewReader(text), Options{})
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)

	assert.Equal(t, rec.Methods, replay.Methods)
	assert.Equal(t, rec.Dispersion, replay.Dispersion)
	assert.Equal(t, rec.Smoothing, replay.Smoothing)
	assert.Equal(t, rec.Interp, replay.Interp)
	assert.Equal(t, rec.Tau.Seeds, replay.Tau.Seeds)
	assert.Equal(t, rec.Tau.Step, replay.Tau.Step)
	assert.Equal(t, rec.Tau.HalfWidth, replay.Tau.HalfWidth)
	assert.Equal(t, rec.Mu.Seeds, replay.Mu.Seeds)
	assert.Equal(t, rec.Mu.HalfWidth, replay.Mu.HalfWidth)
	assert.True(t, replay.Tau.Set)
	assert.True(t, replay.Mu.Set)
	assert.Equal(t, rec.OutFile, replay.OutFile)
	assert.Equal(t, rec.Root, replay.Root)
}

func TestWriteSetup_OmitsUndecidedFields(t *testing.T) {
	text := NewRecord().SetupText()
	assert.NotContains(t, text, "dochi")
	assert.NotContains(t, text, "dispchoice")
	assert.NotContains(t, text, "dosmooth")
	assert.NotContains(t, text, "flagbad")
	assert.NotContains(t, text, "meanchoice")
	assert.Contains(t, text, "root mc_g\n")
}

func TestSummaries(t *testing.T) {
	path := writeSetup(t, "dochi 1\ntau0 0 10 0 0\ndtau 2\n")
	rec, err := FromArgs([]string{"-2", "a.dat", "b.dat", path})
	require.NoError(t, err)
	curves := []lightcurve.Curve{flat(101, 1, 2), flat(101, 1, 1)}
	require.NoError(t, GetSetupParams(context.Background(), rec, curves, Options{}))

	var buf bytes.Buffer
	WriteDelaysSummary(&buf, rec)
	WriteInterpSummary(&buf, rec)
	out := buf.String()

	assert.Contains(t, out, "Methods:          chi, disp")
	assert.Contains(t, out, "Pelt D^2_1")
	assert.Contains(t, out, "-14.00 to    34.00 (25 trials)")
	assert.Contains(t, out, "smooth and interpolate")
	assert.Contains(t, out, "Boxcar, width 10.00 days")

	rec.Smoothing.Mode = NoSmoothing
	buf.Reset()
	WriteInterpSummary(&buf, rec)
	assert.Contains(t, buf.String(), "No smoothing or interpolation")
}
