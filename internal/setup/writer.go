// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/tdelays/internal/util"
)

// =============================================================================
// SETUP REPLAY
// =============================================================================

var kindKeywords = map[SmoothKind]string{
	Boxcar:           "boxcar",
	Median:           "median",
	Triangle:         "triangle",
	Gaussian:         "gauss",
	VariableBoxcar:   "varbox",
	VariableTriangle: "vartri",
}

// SetupText renders the record in setup-file format. Reading the text back
// with ResolveFile reproduces every decided field, so a resolved run can be
// repeated without prompts.
func (r *Record) SetupText() string {
	var b strings.Builder
	line := func(keyword string, values ...string) {
		b.WriteString(keyword)
		for _, v := range values {
			b.WriteByte(' ')
			b.WriteString(v)
		}
		b.WriteByte('\n')
	}
	num := util.FormatFloat

	fmt.Fprintf(&b, "# tdelays setup, run %s\n", r.RunID)

	m := r.Methods
	for _, f := range m.fields() {
		if f.flag.IsSet() {
			line(f.keyword, fmt.Sprint(f.flag.Int()))
		}
	}
	if r.Dispersion.Variant.Valid() {
		line("dispchoice", fmt.Sprint(int(r.Dispersion.Variant)))
	}
	if r.Dispersion.Delta > 0 {
		line("d2delta", num(r.Dispersion.Delta))
	}
	line("dooverlap", fmt.Sprint(TriFromBool(r.Overlap).Int()))

	if r.OutFile != "" {
		line("outfile", r.OutFile)
	}
	line("achifile", r.AChiFile)
	line("cchifile", r.CChiFile)
	line("dchifile", r.DChiFile)

	line("tau0", seedText(r.Tau.Seeds)...)
	line("dtau", num(r.Tau.Step))
	line("ntau", fmt.Sprint(r.Tau.HalfWidth))
	line("mu0", seedText(r.Mu.Seeds)...)
	line("nmu", fmt.Sprint(r.Mu.HalfWidth))

	s := r.Smoothing
	if s.Mode.Valid() {
		line("dosmooth", fmt.Sprint(int(s.Mode)))
	}
	if kw, ok := kindKeywords[s.Kind]; ok {
		if s.Kind.Variable() && s.Points > 0 {
			line(kw, fmt.Sprint(s.Points))
		} else if !s.Kind.Variable() && s.Width > 0 {
			line(kw, num(s.Width))
		}
	}
	if r.Interp.Step > 0 {
		line("intstep", num(r.Interp.Step))
	}
	if r.Interp.Start >= 0 {
		line("intstart", num(r.Interp.Start))
	}
	line("askstart", fmt.Sprint(TriFromBool(r.Interp.AskStart).Int()))
	if r.Interp.Points > 0 {
		line("ninterp", fmt.Sprint(r.Interp.Points))
	}

	line("chilog", r.ChiLog)
	line("xclog", r.XCorrLog)
	if r.FlagBad.IsSet() {
		line("flagbad", fmt.Sprint(r.FlagBad.Int()))
	}
	if r.MeanChoice.Valid() {
		line("meanchoice", fmt.Sprint(int(r.MeanChoice)))
	}
	line("root", r.Root)

	return b.String()
}

// WriteSetup writes SetupText to w.
func (r *Record) WriteSetup(w io.Writer) error {
	_, err := io.WriteString(w, r.SetupText())
	return err
}

func seedText(seeds [MaxCurves]float64) []string {
	out := make([]string, len(seeds))
	for i, v := range seeds {
		out[i] = util.FormatFloat(v)
	}
	return out
}
