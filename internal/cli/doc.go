// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the command handlers for
// tdelays.
//
// # Key Types
//
//   - Command: Enumeration of the CLI commands
//   - Args: Parsed global and command-specific flags
//   - Streams: The stdin/stdout/stderr a command uses
//   - CommandError, ValidationError, NotFoundError: errors mapped to exit codes
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err == nil {
//	    err = cli.Execute(ctx, cmd, args, cli.StdStreams())
//	}
//	if err != nil {
//	    cli.DisplayError(os.Stderr, err, args.JSON)
//	    os.Exit(cli.GetExitCode(err))
//	}
//
// # Commands Overview
//
//   - -1/-2: resolve a time-delay analysis setup and record the run
//   - check: lint a setup file, optionally on every save
//   - history: list and show recorded runs
//   - config: view and edit tool preferences
//   - version: build information
package cli
