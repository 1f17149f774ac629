// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// Schema is the run ledger schema.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	created_at     INTEGER NOT NULL,
	inputs         TEXT NOT NULL,
	setup_path     TEXT NOT NULL DEFAULT '',
	methods        TEXT NOT NULL DEFAULT '',
	tau_step       REAL NOT NULL DEFAULT 0,
	tau_half_width INTEGER NOT NULL DEFAULT 0,
	mu_seed        REAL NOT NULL DEFAULT 0,
	warnings       INTEGER NOT NULL DEFAULT 0,
	record         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// InitMetadata seeds the metadata table.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
`
