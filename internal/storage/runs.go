// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/tdelays/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrRunNotFound   = errors.New("run not found")
	ErrAmbiguousID   = errors.New("run id prefix matches more than one run")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// RUN TYPE
// =============================================================================

// Run is one resolved analysis run.
type Run struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Inputs       []string        `json:"inputs"`
	SetupPath    string          `json:"setup_path,omitempty"`
	Methods      string          `json:"methods"`
	TauStep      float64         `json:"tau_step"`
	TauHalfWidth int             `json:"tau_half_width"`
	MuSeed       float64         `json:"mu_seed"`
	Warnings     int             `json:"warnings"`
	Record       json.RawMessage `json:"record"`
}

// =============================================================================
// RUN STORE
// =============================================================================

// RunStore is the SQLite run ledger.
type RunStore struct {
	db   *sql.DB
	path string

	// MaxRuns limits stored runs, oldest removed first (0 = unlimited)
	MaxRuns int
}

// Open opens or creates the ledger at path.
func Open(path string) (*RunStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty database path", ErrDatabaseError)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &RunStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *RunStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save records a run. CreatedAt is set when zero.
func (s *RunStore) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run has no id", ErrDatabaseError)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if len(run.Record) == 0 {
		run.Record = json.RawMessage("{}")
	}

	inputs, err := json.Marshal(run.Inputs)
	if err != nil {
		return fmt.Errorf("failed to encode inputs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, created_at, inputs, setup_path, methods, tau_step, tau_half_width, mu_seed, warnings, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), string(inputs), run.SetupPath, run.Methods,
		run.TauStep, run.TauHalfWidth, run.MuSeed, run.Warnings, string(run.Record))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return s.enforceLimit(ctx)
}

// enforceLimit removes the oldest runs beyond MaxRuns.
func (s *RunStore) enforceLimit(ctx context.Context) error {
	if s.MaxRuns <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC LIMIT ?
		)`, s.MaxRuns)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

const runColumns = `id, created_at, inputs, setup_path, methods, tau_step, tau_half_width, mu_seed, warnings, record`

// List returns up to limit runs, most recent first (limit <= 0 = all).
func (s *RunStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return runs, nil
}

// Load returns the run whose id starts with prefix.
func (s *RunStore) Load(ctx context.Context, prefix string) (*Run, error) {
	if prefix == "" {
		return nil, ErrRunNotFound
	}
	pattern := strings.NewReplacer("%", `\%`, "_", `\_`, `\`, `\\`).Replace(prefix) + "%"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	switch len(found) {
	case 0:
		return nil, ErrRunNotFound
	case 1:
		return found[0], nil
	default:
		return nil, ErrAmbiguousID
	}
}

// Count returns the number of stored runs.
func (s *RunStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		run     Run
		created int64
		inputs  string
		record  string
	)
	err := rows.Scan(&run.ID, &created, &inputs, &run.SetupPath, &run.Methods,
		&run.TauStep, &run.TauHalfWidth, &run.MuSeed, &run.Warnings, &record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	run.CreatedAt = time.Unix(0, created)
	if err := json.Unmarshal([]byte(inputs), &run.Inputs); err != nil {
		return nil, fmt.Errorf("%w: bad inputs for run %s: %v", ErrDatabaseError, run.ID, err)
	}
	run.Record = json.RawMessage(record)
	return &run, nil
}

// =============================================================================
// RUN LIST FORMATTING
// =============================================================================

// FormatRunList formats runs as a table: short id, time, methods, inputs.
func FormatRunList(runs []Run) string {
	if len(runs) == 0 {
		return "No runs recorded."
	}

	var sb strings.Builder
	sb.WriteString(util.PadWidth("ID", 9) + " " + util.PadWidth("Created", 16) + " " +
		util.PadWidth("Methods", 18) + " " + util.PadWidth("Warn", 4) + " Inputs\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		inputs := util.TruncateWidth(strings.Join(r.Inputs, " "), 30)

		sb.WriteString(util.PadWidth(id, 9) + " " +
			util.PadWidth(r.CreatedAt.Format("2006-01-02 15:04"), 16) + " " +
			util.PadWidth(util.TruncateWidth(r.Methods, 18), 18) + " " +
			util.PadWidth(fmt.Sprint(r.Warnings), 4) + " " +
			inputs + "\n")
	}
	return sb.String()
}
