// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides preference loading for the tdelays tool itself.
//
// Supports both TOML and JSON formats, with sensible defaults, environment
// variable overrides, and validation. Analysis settings are not kept here;
// they live in setup files read by the setup package.
//
// # Key Types
//
//   - Config: Main preference structure
//   - PromptConfig: How undecided setup fields are asked for
//   - HistoryConfig: Run ledger location and retention
//
// # Configuration Precedence
//
// Preferences are loaded from (in order of precedence):
//   - Command-line flags (applied by the cli package)
//   - Environment variables (TDELAYS_*)
//   - ~/.tdelays/config.toml
//   - ~/.tdelays/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	steps := cfg.Grid.FluxSteps
package config
