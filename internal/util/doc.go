// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the tdelays packages.
//
// # Key Functions
//
// Parsing and Formatting:
//   - ParseBool: operator-friendly yes/no parsing (y, yes, on, 1, ...)
//   - FormatFloat: shortest round-trip float text for setup files
//
// Display:
//   - TruncateWidth, PadWidth: column-aware truncation for tables
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Write a replay setup file atomically
//	err := util.AtomicWriteFile(path, data, 0644)
package util
