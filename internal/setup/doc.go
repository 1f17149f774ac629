// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package setup resolves the configuration of a light-curve time-delay run.
//
// A Record starts from defaults (NewRecord or FromArgs) and is completed in
// a fixed order by GetSetupParams:
//
//  1. Method intent: the standard dispersion-only selection unless the
//     caller asks for interactive method choice.
//  2. The setup file, one "keyword value..." per line. Rejected values are
//     warned about and replaced with a documented fallback; only an
//     unreadable file or a line without a keyword stops the run.
//  3. Questions for every field still undecided, asked through a
//     prompt.Prompter. Empty answers take the default.
//  4. The delay grid, the flux-ratio grid and the interpolation grid,
//     derived from the light curves.
//
// # Setup File
//
//	# methods
//	dochi     1
//	dodisp    0
//	tau0      0 10 0 0
//	dtau      2.0
//
// Keywords are case-insensitive and may be indented. Empty lines,
// tab-only lines and lines whose first non-blank character is '#' are
// ignored.
//
// # Usage
//
//	rec, err := setup.FromArgs(os.Args[1:])
//	curves, err := lightcurve.Load(rec.Inputs)
//	err = setup.GetSetupParams(ctx, rec, curves, setup.Options{
//	    Out:      os.Stdout,
//	    Warn:     os.Stderr,
//	    Prompter: prompt.NewReader(os.Stdin, os.Stdout),
//	})
package setup
