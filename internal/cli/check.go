// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// check.go - Setup file linting.
//
// Command: check [--watch] [--json] <setup-file>
//
// Runs only the file stage of setup resolution against a fresh record and
// reports every keyword applied and every warning. With --watch the file
// is checked again each time it is saved, until Ctrl+C.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/tdelays/internal/setup"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// HandleCheck lints one setup file.
func HandleCheck(ctx context.Context, args Args, streams Streams) error {
	if len(args.Raw) != 1 {
		return ErrMissingArgument("setup file", "tdelays check [--watch] run.setup")
	}
	path := args.Raw[0]

	cfg, err := loadPreferences(args, streams)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, streams)
	if err != nil {
		return NewCommandError("check", "open log", cfg.Log.File, err)
	}
	defer closeLog()

	err = checkOnce(ctx, path, args.JSON, logger, streams)
	if !args.Watch {
		return err
	}

	fmt.Fprintln(streams.Err, DimStyle.Render("Watching "+path+" (Ctrl+C to stop)"))
	werr := WatchFile(ctx, path, watchDebounce, func() {
		fmt.Fprintln(streams.Out, RenderSeparator(40))
		if err := checkOnce(ctx, path, args.JSON, logger, streams); err != nil {
			DisplayError(streams.Err, err, false)
		}
	})
	if errors.Is(werr, context.Canceled) {
		return nil
	}
	return werr
}

// checkOnce resolves path into a fresh record and prints the report.
func checkOnce(ctx context.Context, path string, jsonMode bool, logger *log.Logger, streams Streams) error {
	rec := setup.NewRecord()
	report, err := setup.ResolveFilePath(ctx, rec, path, setup.Options{Logger: logger})
	if err != nil {
		if jsonMode {
			NewJSONErrorResponse("check", err).Write(streams.Out)
		} else {
			fmt.Fprintf(streams.Out, "%s %s\n", RenderStatus("fail"), path)
		}
		return NewCommandError("check", "lint", path, err)
	}

	if jsonMode {
		if err := NewJSONResponse("check", report).Write(streams.Out); err != nil {
			return err
		}
	} else {
		status := "ok"
		if !report.OK() {
			status = "warn"
		}
		fmt.Fprintf(streams.Out, "%s %s: %d line(s), %d keyword(s) applied, %d warning(s)\n",
			RenderStatus(status), path, report.Lines, len(report.Applied), len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Fprintf(streams.Out, "  %s\n", WarningStyle.Render(w))
		}
	}

	if !report.OK() {
		return NewCommandError("check", "lint", fmt.Sprintf("%d warning(s)", len(report.Warnings)), nil)
	}
	return nil
}

// =============================================================================
// FILE WATCHER
// =============================================================================

// WatchFile calls onChange after path is written, created or replaced,
// once per burst of events within debounce. It watches the parent
// directory so editors that save by rename are followed. WatchFile blocks
// until ctx is done and returns ctx.Err().
func WatchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher failed: %w", err)
		}
	}
}
