// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for tdelays commands.
//
// STANDARDIZED PATTERN:
//   - Handlers ALWAYS return errors (never just print and return nil)
//   - main displays the error once and exits with GetExitCode
//   - Setup and input failures keep their sentinel so the exit code can
//     be chosen with errors.Is

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/jeranaias/tdelays/internal/config"
	"github.com/jeranaias/tdelays/internal/lightcurve"
	"github.com/jeranaias/tdelays/internal/prompt"
	"github.com/jeranaias/tdelays/internal/setup"
	"github.com/jeranaias/tdelays/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a setup file, light curve or preference error
	ExitConfigError = 3
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitInterrupted indicates the operator interrupted the run
	ExitInterrupted = 130
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "run", "history")
	Action  string // Action being performed (e.g., "resolve", "open")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "run", "key")
	ID       string // Identifier that was not found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Reason:  reason,
		Example: example,
	}
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError writes err to w in a consistent format. In JSON mode the
// error is written as a JSON response instead.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		DisplayErrorJSON(w, err)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// DisplayErrorJSON writes err as a JSON object.
func DisplayErrorJSON(w io.Writer, err error) {
	output := map[string]interface{}{
		"error":     err.Error(),
		"success":   false,
		"exit_code": GetExitCode(err),
	}

	var (
		cmdErr   *CommandError
		valErr   *ValidationError
		foundErr *NotFoundError
		lineErr  *setup.LineError
	)
	switch {
	case errors.As(err, &valErr):
		output["error_type"] = "validation_error"
		output["field"] = valErr.Field
		output["value"] = valErr.Value
		output["reason"] = valErr.Reason
		if valErr.Example != "" {
			output["example"] = valErr.Example
		}
	case errors.As(err, &foundErr):
		output["error_type"] = "not_found_error"
		output["resource"] = foundErr.Resource
		output["id"] = foundErr.ID
	case errors.As(err, &lineErr):
		output["error_type"] = "setup_file_error"
		output["path"] = lineErr.Path
		output["line"] = lineErr.Line
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
		output["reason"] = cmdErr.Reason
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error:
//   - ExitUsageError (2): bad command lines and flag values
//   - ExitConfigError (3): setup file, light curve and preference failures
//   - ExitNotFoundError (7): unknown run ids and config keys
//   - ExitInterrupted (130): Ctrl+C at a prompt or on the process
//   - ExitGeneralError (1): everything else
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) ||
		errors.Is(err, setup.ErrBadMode) ||
		errors.Is(err, setup.ErrBadArgCount) {
		return ExitUsageError
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, prompt.ErrAborted) {
		return ExitInterrupted
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) ||
		errors.Is(err, storage.ErrRunNotFound) {
		return ExitNotFoundError
	}

	var prefErrs config.ValidateErrors
	if errors.Is(err, setup.ErrSetupFileOpen) ||
		errors.Is(err, setup.ErrMissingKeyword) ||
		errors.Is(err, setup.ErrDegenerateWindow) ||
		errors.Is(err, setup.ErrNoValidDefault) ||
		errors.Is(err, prompt.ErrInputClosed) ||
		errors.Is(err, lightcurve.ErrEmptyCurve) ||
		errors.Is(err, lightcurve.ErrBadRecord) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.As(err, &prefErrs) {
		return ExitConfigError
	}

	return ExitGeneralError
}
