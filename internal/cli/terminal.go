// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for tdelays.
//
// USABILITY: TTY detection for proper terminal handling
//
// The answer source for setup questions depends on what stdin is:
// - Interactive terminal: liner prompts with history and line editing
// - Piped input: answers read line by line
// - --defaults: no input read at all
//
// Colour follows the ui.color preference, NO_COLOR and FORCE_COLOR.

package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width used for separators
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width, or
// DefaultTerminalWidth when it cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// STREAMS
// =============================================================================

// Streams are the standard streams a command reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Interactive is true when In is a terminal an operator types into.
	Interactive bool
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: IsTTY(),
	}
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// ColorsEnabled decides colour output for a ui.color mode ("auto",
// "always", "never"). NO_COLOR beats everything; FORCE_COLOR beats TTY
// detection in auto mode. See https://no-color.org/.
func ColorsEnabled(mode string) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	switch strings.ToLower(mode) {
	case "never":
		return false
	case "always":
		return true
	}

	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return IsStdoutTTY()
}

// ColorProfile returns the termenv profile for a ui.color mode.
func ColorProfile(mode string) termenv.Profile {
	if !ColorsEnabled(mode) {
		return termenv.Ascii
	}
	if strings.EqualFold(mode, "always") && !IsStdoutTTY() {
		return termenv.ANSI256
	}
	// Let termenv auto-detect the best profile for this terminal
	return termenv.ColorProfile()
}

// ConfigureColor applies the colour decision to every lipgloss style.
func ConfigureColor(mode string) {
	lipgloss.SetColorProfile(ColorProfile(mode))
}
