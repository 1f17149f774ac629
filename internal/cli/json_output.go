// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripting.
//
// Commands that take --json write one JSONResponse to stdout so batch
// pipelines can consume check reports, run history and preferences.
package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the response format for every --json command.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w with indentation.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// HistoryData is the data returned by the history command.
type HistoryData struct {
	Database string        `json:"database"`
	Total    int           `json:"total"`
	Runs     []HistoryItem `json:"runs"`
}

// HistoryItem is one run in the history listing. The full record is only
// included by "history show".
type HistoryItem struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Inputs       []string  `json:"inputs"`
	SetupPath    string    `json:"setup_path,omitempty"`
	Methods      string    `json:"methods"`
	TauStep      float64   `json:"tau_step"`
	TauHalfWidth int       `json:"tau_half_width"`
	MuSeed       float64   `json:"mu_seed"`
	Warnings     int       `json:"warnings"`
}

// VersionData is the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}
