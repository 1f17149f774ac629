// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// run.go - The analysis setup command.
//
// Command: tdelays [flags] -1|-2 <curves...> [setup-file]
//
// Loads the light curves, resolves the setup record (file, questions,
// derived grids), prints the summary, optionally writes a replay setup
// file and records the run in the history database.

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jeranaias/tdelays/internal/config"
	"github.com/jeranaias/tdelays/internal/lightcurve"
	"github.com/jeranaias/tdelays/internal/prompt"
	"github.com/jeranaias/tdelays/internal/setup"
	"github.com/jeranaias/tdelays/internal/storage"
	"github.com/jeranaias/tdelays/internal/util"
)

// HandleRun resolves one analysis setup.
func HandleRun(ctx context.Context, args Args, streams Streams) error {
	cfg, err := loadPreferences(args, streams)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, streams)
	if err != nil {
		return NewCommandError("run", "open log", cfg.Log.File, err)
	}
	defer closeLog()

	rec, err := setup.FromArgs(args.Raw)
	if err != nil {
		return err
	}

	curves, err := lightcurve.Load(rec.Inputs)
	if err != nil {
		return NewCommandError("run", "load", "could not read light curves", err)
	}

	p, closePrompter := newPrompter(cfg, streams)
	defer closePrompter()

	warnings := &lineCounter{w: warningWriter{streams.Err}}
	opts := setup.Options{
		Out:        streams.Out,
		Warn:       warnings,
		Prompter:   p,
		Logger:     logger,
		AskMethods: cfg.Prompt.AskMethods,
		FluxSteps:  cfg.Grid.FluxSteps,
	}

	if err := setup.GetSetupParams(ctx, rec, curves, opts); err != nil {
		return NewCommandError("run", "setup", "could not resolve setup", err)
	}

	fmt.Fprintln(streams.Out)
	fmt.Fprintln(streams.Out, TitleStyle.Render("Time-delay setup")+" "+DimStyle.Render("run "+rec.ShortID()))
	fmt.Fprintln(streams.Out, RenderSeparator(60))
	setup.WriteDelaysSummary(streams.Out, rec)
	setup.WriteInterpSummary(streams.Out, rec)

	if args.SaveSetup != "" {
		// RELIABILITY: Atomic write so a replay file is never half-written
		if err := util.AtomicWriteFile(args.SaveSetup, []byte(rec.SetupText()), 0644); err != nil {
			return NewCommandError("run", "save setup", args.SaveSetup, err)
		}
		fmt.Fprintf(streams.Out, "%s setup written to %s\n", RenderStatus("ok"), args.SaveSetup)
	}

	if cfg.History.Enabled {
		// History is a convenience; a broken ledger never fails the run
		if err := recordRun(ctx, cfg, rec, warnings.lines); err != nil {
			logger.Printf("HISTORY_ERROR | run=%s err=%v", rec.ShortID(), err)
			fmt.Fprintf(streams.Err, "%s run not recorded: %v\n", RenderStatus("warn"), err)
		}
	}

	return nil
}

// =============================================================================
// PREFERENCES
// =============================================================================

// loadPreferences loads the preference file and applies command-line
// overrides. A broken default preference file is reported and ignored;
// an explicit --config file must load.
func loadPreferences(args Args, streams Streams) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, NewCommandError("config", "load", args.ConfigPath, err)
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, NewCommandError("config", "load", "preferences", err)
		}
		if err != nil {
			fmt.Fprintf(streams.Err, "%s %v (using defaults)\n", RenderStatus("warn"), err)
		}
	}

	if args.Defaults {
		cfg.Prompt.AcceptDefaults = true
	}
	if args.AskMethods {
		cfg.Prompt.AskMethods = true
	}
	if args.NoHistory {
		cfg.History.Enabled = false
	}
	if args.NoColor {
		cfg.UI.Color = "never"
	}
	if args.Verbose {
		cfg.Log.Verbose = true
	}

	ConfigureColor(cfg.UI.Color)
	return cfg, nil
}

// newLogger returns the event logger: stderr when verbose, the preference
// log file when set, both, or a discard logger.
func newLogger(cfg *config.Config, streams Streams) (*log.Logger, func(), error) {
	var writers []io.Writer
	closeFn := func() {}

	if cfg.Log.Verbose {
		writers = append(writers, streams.Err)
	}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, closeFn, err
		}
		writers = append(writers, f)
		closeFn = func() { f.Close() }
	}

	if len(writers) == 0 {
		return log.New(io.Discard, "", 0), closeFn, nil
	}
	return log.New(io.MultiWriter(writers...), "", log.LstdFlags), closeFn, nil
}

// newPrompter chooses the answer source: every default, a liner terminal
// prompt, or plain line reading from piped stdin.
func newPrompter(cfg *config.Config, streams Streams) (prompt.Prompter, func()) {
	if cfg.Prompt.AcceptDefaults {
		return prompt.Unattended{Out: streams.Out}, func() {}
	}

	if streams.Interactive {
		historyFile := ""
		if cfg.Prompt.History {
			historyFile = cfg.HistoryFilePath()
		}
		l := prompt.NewLiner(historyFile)
		return l, func() { l.Close() }
	}

	return prompt.NewReader(streams.In, streams.Out), func() {}
}

func keywordList() []string {
	return setup.KeywordNames()
}

// =============================================================================
// HISTORY RECORDING
// =============================================================================

// recordRun appends the resolved record to the run ledger.
func recordRun(ctx context.Context, cfg *config.Config, rec *setup.Record, warnings int) error {
	store, err := storage.Open(cfg.HistoryDBPath())
	if err != nil {
		return err
	}
	defer store.Close()
	store.MaxRuns = cfg.History.Keep

	return store.Save(ctx, runFromRecord(rec, warnings))
}

// runFromRecord flattens a resolved record into a ledger row.
func runFromRecord(rec *setup.Record, warnings int) *storage.Run {
	body, err := json.Marshal(rec)
	if err != nil {
		body = []byte("{}")
	}

	return &storage.Run{
		ID:           rec.RunID,
		Inputs:       append([]string(nil), rec.Inputs...),
		SetupPath:    rec.SetupPath,
		Methods:      methodList(rec.Methods),
		TauStep:      rec.Tau.Step,
		TauHalfWidth: rec.Tau.HalfWidth,
		MuSeed:       rec.Mu.Seeds[1],
		Warnings:     warnings,
		Record:       body,
	}
}

// methodList names the selected methods, e.g. "chi, disp".
func methodList(m setup.Methods) string {
	names := m.Selected()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// lineCounter counts the lines written through it.
type lineCounter struct {
	w     io.Writer
	lines int
}

func (c *lineCounter) Write(p []byte) (int, error) {
	c.lines += bytes.Count(p, []byte("\n"))
	return c.w.Write(p)
}

// warningWriter colours "Warning:" lines for the terminal.
type warningWriter struct {
	w io.Writer
}

func (ww warningWriter) Write(p []byte) (int, error) {
	text := strings.TrimSuffix(string(p), "\n")
	if _, err := fmt.Fprintln(ww.w, WarningStyle.Render(text)); err != nil {
		return 0, err
	}
	return len(p), nil
}
