// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSetupFileOpen is returned when the setup file cannot be opened or read.
	ErrSetupFileOpen = errors.New("cannot open setup file")

	// ErrMissingKeyword is returned for a non-comment setup line with no keyword.
	ErrMissingKeyword = errors.New("setup line has no keyword")

	// ErrDegenerateWindow is returned when a flux-ratio seed cannot be formed
	// because a curve is too short or its reference mean is zero.
	ErrDegenerateWindow = errors.New("cannot derive flux ratio from light curve")

	// ErrNoValidDefault is returned when an unattended run reaches a prompt
	// whose default does not validate.
	ErrNoValidDefault = errors.New("no valid default for unattended prompt")

	// ErrBadMode is returned for a mode flag other than -1 or -2.
	ErrBadMode = errors.New("mode flag must be -1 or -2")

	// ErrBadArgCount is returned when the paths do not match the mode flag.
	ErrBadArgCount = errors.New("wrong number of input files for mode")
)

// LineError ties a structural setup-file error to its line number.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}
