// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Preference command implementation for tdelays.
//
// Command: config [subcommand]
// Short:   View and modify tool preferences
//
// Subcommands:
//   show (default)      Display current preferences (after env overrides)
//   path                Show preference file path
//   init                Write a default preference file if none exists
//   get <key>           Print one preference
//   set <key> <value>   Change one preference and save the file
//
// Examples:
//   tdelays config show --json
//   tdelays config set grid.flux_steps 80
//   tdelays config set prompt.accept_defaults true
//   tdelays config get history.path
//
// Keys use dot notation matching the TOML sections: prompt.*, grid.*,
// history.*, ui.*, log.*.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/tdelays/internal/config"
)

// HandleConfig handles the config command.
func HandleConfig(args Args, streams Streams) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(args, streams)
	case "path":
		return configPath(args, streams)
	case "init":
		return configInit(args, streams)
	case "get":
		if len(args.Raw) < 1 {
			return ErrMissingArgument("key", "tdelays config get grid.flux_steps")
		}
		return configGet(args, args.Raw[0], streams)
	case "set":
		if len(args.Raw) < 2 {
			return ErrMissingArgument("key and value", "tdelays config set grid.flux_steps 80")
		}
		return configSet(args, args.Raw[0], strings.Join(args.Raw[1:], " "), streams)
	default:
		return NewValidationErrorWithExample("config subcommand", args.Subcommand,
			"expected show, path, init, get or set", "tdelays config show")
	}
}

// preferencePath is the file config commands read and write.
func preferencePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func configShow(args Args, streams Streams) error {
	cfg, err := loadPreferences(args, streams)
	if err != nil {
		return err
	}
	path, _ := preferencePath(args)

	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{
			"path":        path,
			"preferences": cfg,
		}).Write(streams.Out)
	}

	fmt.Fprintln(streams.Out, TitleStyle.Render("tdelays preferences"))
	fmt.Fprintln(streams.Out, RenderSeparator(41))
	fmt.Fprint(streams.Out, cfg.String())
	fmt.Fprintln(streams.Out, RenderSeparator(41))
	fmt.Fprintf(streams.Out, "Preference file: %s\n", DimStyle.Render(path))
	fmt.Fprintf(streams.Out, "History database: %s\n", DimStyle.Render(cfg.HistoryDBPath()))
	return nil
}

func configPath(args Args, streams Streams) error {
	path, err := preferencePath(args)
	if err != nil {
		return NewCommandError("config", "path", "could not locate home directory", err)
	}
	if args.JSON {
		_, statErr := os.Stat(path)
		return NewJSONResponse("config", map[string]interface{}{
			"path":   path,
			"exists": statErr == nil,
		}).Write(streams.Out)
	}
	fmt.Fprintln(streams.Out, path)
	return nil
}

func configInit(args Args, streams Streams) error {
	path, err := preferencePath(args)
	if err != nil {
		return NewCommandError("config", "init", "could not locate home directory", err)
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(streams.Out, "%s %s already exists\n", RenderStatus("ok"), path)
		return nil
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return NewCommandError("config", "init", path, err)
	}
	fmt.Fprintf(streams.Out, "%s wrote %s\n", RenderStatus("ok"), path)
	return nil
}

func configGet(args Args, key string, streams Streams) error {
	cfg, err := loadPreferences(args, streams)
	if err != nil {
		return err
	}
	value, err := cfg.Get(key)
	if err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return NewNotFoundError("preference", key)
		}
		return NewValidationError("preference key", key, err.Error())
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{"key": key, "value": value}).Write(streams.Out)
	}
	fmt.Fprintln(streams.Out, value)
	return nil
}

// configSet edits the preference file itself. Environment overrides are
// not applied, so they never leak into the saved file.
func configSet(args Args, key, value string, streams Streams) error {
	path, err := preferencePath(args)
	if err != nil {
		return NewCommandError("config", "set", "could not locate home directory", err)
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return NewCommandError("config", "set", path, err)
		}
	}

	if err := cfg.Set(key, value); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return NewNotFoundError("preference", key)
		}
		return NewValidationError(key, value, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return NewValidationError(key, value, err.Error())
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "set", path, err)
	}

	fmt.Fprintf(streams.Out, "%s %s = %s\n", RenderStatus("ok"), key, value)
	return nil
}
