// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the run ledger for tdelays.
//
// Every successfully resolved run is recorded in a SQLite database with its
// inputs, the chosen methods, the grid parameters and the full resolved
// record as JSON, so an earlier configuration can be looked up and replayed.
//
// # Key Types
//
//   - RunStore: SQLite-backed ledger
//   - Run: One resolved run
//
// # Usage
//
//	store, err := storage.Open(path)
//	defer store.Close()
//	err = store.Save(ctx, &run)
//	runs, err := store.List(ctx, 20)
//
// # Storage Location
//
// The ledger defaults to ~/.tdelays/runs.db.
package storage
