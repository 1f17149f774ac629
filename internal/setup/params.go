// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/jeranaias/tdelays/internal/lightcurve"
	"github.com/jeranaias/tdelays/internal/prompt"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options carries the collaborators of one resolution run. The zero value
// is usable: output is discarded and every prompt takes its default.
type Options struct {
	// Out receives menus, prompts echoes and the curve summary.
	Out io.Writer
	// Warn receives "Warning: ..." lines for rejected setup-file values.
	Warn io.Writer
	// Prompter answers questions; nil means accept every default.
	Prompter prompt.Prompter
	// Logger receives EVENT | key=value lines; nil discards them.
	Logger *log.Logger
	// AskMethods leaves method flags unset so they are asked for instead
	// of taking the standard dispersion-only selection.
	AskMethods bool
	// FluxSteps is the flux-ratio half-width used when the file gives
	// none; zero means DefaultFluxSteps.
	FluxSteps int
}

var discardLogger = log.New(io.Discard, "", 0)

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return discardLogger
	}
	return o.Logger
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

func (o Options) warnWriter() io.Writer {
	return o.Warn
}

func (o Options) prompter() prompt.Prompter {
	if o.Prompter == nil {
		return prompt.Unattended{}
	}
	return o.Prompter
}

func (o Options) fluxSteps() int {
	if o.FluxSteps > 0 {
		return o.FluxSteps
	}
	return DefaultFluxSteps
}

// =============================================================================
// COMMAND LINE INTENT
// =============================================================================

// FromArgs builds a record from the mode flag and paths:
//
//	-1 <curves-file> [setup-file]
//	-2 <curve-a> <curve-b> [setup-file]
func FromArgs(args []string) (*Record, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no mode flag given", ErrBadMode)
	}

	var count int
	switch args[0] {
	case "-1":
		count = 1
	case "-2":
		count = 2
	default:
		return nil, fmt.Errorf("%w: got %q", ErrBadMode, args[0])
	}

	paths := args[1:]
	if len(paths) < count || len(paths) > count+1 {
		return nil, fmt.Errorf("%w %s: want %d curve file(s) and an optional setup file, got %d path(s)",
			ErrBadArgCount, args[0], count, len(paths))
	}

	rec := NewRecord()
	rec.FileCount = count
	rec.Inputs = append([]string(nil), paths[:count]...)
	if len(paths) > count {
		rec.SetupPath = paths[count]
	}
	return rec, nil
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// GetSetupParams resolves rec completely: standard method intent, the
// setup file, interactive questions, then the delay, flux-ratio and
// interpolation grids. Any error leaves rec unusable.
func GetSetupParams(ctx context.Context, rec *Record, curves []lightcurve.Curve, opts Options) error {
	logger := opts.logger()
	logger.Printf("SETUP_START | run=%s files=%d setup=%s", rec.ShortID(), rec.FileCount, displayPath(rec.SetupPath))

	if !opts.AskMethods {
		rec.Methods = StandardMethods()
	}

	if rec.SetupPath != "" {
		if _, err := ResolveFilePath(ctx, rec, rec.SetupPath, opts); err != nil {
			return err
		}
	}

	if err := ResolveMethods(ctx, rec, opts); err != nil {
		return fmt.Errorf("method selection: %w", err)
	}
	if err := ResolveInterp(ctx, rec, opts); err != nil {
		return fmt.Errorf("smoothing setup: %w", err)
	}

	if err := checkCurves(rec, curves); err != nil {
		return err
	}
	rec.Curves = make([]lightcurve.Summary, rec.CurveCount)
	for i := range rec.Curves {
		rec.Curves[i] = curves[i].Summarize()
	}
	WriteCurveSummary(opts.out(), rec)

	if err := DeriveTauGrid(ctx, rec, curves, opts); err != nil {
		return fmt.Errorf("delay grid: %w", err)
	}
	if err := DeriveMuGrid(rec, curves, opts); err != nil {
		return fmt.Errorf("flux ratio grid: %w", err)
	}
	if err := DeriveInterpGrid(ctx, rec, curves, opts); err != nil {
		return fmt.Errorf("interpolation grid: %w", err)
	}

	logger.Printf("SETUP_DONE | run=%s", rec.ShortID())
	return nil
}
