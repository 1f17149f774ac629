// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Run history command.
//
// Command: history [list|show <id>] [--limit N] [--json]
//
// Examples:
//   tdelays history                 Ten most recent runs
//   tdelays history --limit 50      Fifty most recent runs
//   tdelays history show 4f1c2d3e   Full resolved record of one run
//   tdelays history --json          Listing for scripts

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jeranaias/tdelays/internal/setup"
	"github.com/jeranaias/tdelays/internal/storage"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 10

// HandleHistory lists or shows recorded runs.
func HandleHistory(ctx context.Context, args Args, streams Streams) error {
	cfg, err := loadPreferences(args, streams)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.HistoryDBPath())
	if err != nil {
		return NewCommandError("history", "open", cfg.HistoryDBPath(), err)
	}
	defer store.Close()

	switch args.Subcommand {
	case "", "list":
		return historyList(ctx, store, args, streams)
	case "show":
		if len(args.Raw) == 0 {
			return ErrMissingArgument("run id", "tdelays history show 4f1c2d3e")
		}
		return historyShow(ctx, store, args.Raw[0], args.JSON, streams)
	default:
		return NewValidationErrorWithExample("history subcommand", args.Subcommand,
			"expected list or show", "tdelays history show 4f1c2d3e")
	}
}

func historyList(ctx context.Context, store *storage.RunStore, args Args, streams Streams) error {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	runs, err := store.List(ctx, limit)
	if err != nil {
		return NewCommandError("history", "list", "could not read runs", err)
	}
	total, err := store.Count(ctx)
	if err != nil {
		return NewCommandError("history", "list", "could not count runs", err)
	}

	if args.JSON {
		data := HistoryData{Database: store.Path(), Total: total, Runs: make([]HistoryItem, 0, len(runs))}
		for _, r := range runs {
			data.Runs = append(data.Runs, historyItem(r))
		}
		return NewJSONResponse("history", data).Write(streams.Out)
	}

	fmt.Fprintln(streams.Out, TitleStyle.Render("Run history")+" "+
		DimStyle.Render(fmt.Sprintf("(%d of %d)", len(runs), total)))
	fmt.Fprint(streams.Out, storage.FormatRunList(runs))
	if len(runs) == 0 {
		fmt.Fprintln(streams.Out)
	}
	return nil
}

func historyShow(ctx context.Context, store *storage.RunStore, id string, jsonMode bool, streams Streams) error {
	run, err := store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			return NewNotFoundError("run", id)
		}
		if errors.Is(err, storage.ErrAmbiguousID) {
			return NewValidationError("run id", id, "prefix matches more than one run; give more characters")
		}
		return NewCommandError("history", "show", id, err)
	}

	if jsonMode {
		return NewJSONResponse("history", run).Write(streams.Out)
	}

	fmt.Fprintln(streams.Out, TitleStyle.Render("Run "+run.ID))
	fmt.Fprintf(streams.Out, "%s%s\n", RenderLabel("Created"), run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(streams.Out, "%s%v\n", RenderLabel("Inputs"), run.Inputs)
	if run.SetupPath != "" {
		fmt.Fprintf(streams.Out, "%s%s\n", RenderLabel("Setup file"), run.SetupPath)
	}
	fmt.Fprintf(streams.Out, "%s%s\n", RenderLabel("Methods"), run.Methods)
	fmt.Fprintf(streams.Out, "%s%d\n", RenderLabel("Warnings"), run.Warnings)

	rec, err := setup.DecodeRecord(run.Record)
	if err != nil {
		log.Printf("HISTORY | decode failed id=%s err=%v", run.ID, err)
		fmt.Fprintln(streams.Out, WarningStyle.Render("Stored record could not be decoded; showing it raw"))
	} else {
		setup.WriteCurveSummary(streams.Out, rec)
		setup.WriteDelaysSummary(streams.Out, rec)
		setup.WriteInterpSummary(streams.Out, rec)
		fmt.Fprintln(streams.Out)
	}

	fmt.Fprintln(streams.Out, SectionStyle.Render("Resolved record"))

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, run.Record, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(run.Record)
	}
	fmt.Fprintln(streams.Out, pretty.String())
	return nil
}

func historyItem(r storage.Run) HistoryItem {
	return HistoryItem{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		Inputs:       r.Inputs,
		SetupPath:    r.SetupPath,
		Methods:      r.Methods,
		TauStep:      r.TauStep,
		TauHalfWidth: r.TauHalfWidth,
		MuSeed:       r.MuSeed,
		Warnings:     r.Warnings,
	}
}
