// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt provides the line sources used to ask the operator for
// setup values: a liner-backed terminal prompter with history, a plain
// line reader for piped input, an unattended source that accepts every
// default, and a scripted source for tests.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInputClosed is returned when the input stream ends before an answer.
	ErrInputClosed = errors.New("operator input closed")

	// ErrAborted is returned when the operator presses Ctrl+C at a prompt.
	ErrAborted = errors.New("prompt aborted by operator")
)

// =============================================================================
// PROMPTER
// =============================================================================

// Prompter reads one answer line for a prompt. The returned line has its
// trailing newline removed; an empty line means "accept the default".
type Prompter interface {
	ReadLine(prompt string) (string, error)
}

// UnattendedPrompter is implemented by sources that never consult an
// operator. Retry loops use it to fail instead of asking again.
type UnattendedPrompter interface {
	Unattended() bool
}

// IsUnattended reports whether p never consults an operator.
func IsUnattended(p Prompter) bool {
	u, ok := p.(UnattendedPrompter)
	return ok && u.Unattended()
}

// =============================================================================
// LINER PROMPTER
// =============================================================================

// Liner prompts on an interactive terminal with line editing and history.
// USABILITY: Supports arrow keys for history navigation and line editing.
type Liner struct {
	line        *liner.State
	historyFile string
}

// NewLiner creates a terminal prompter. If historyFile is non-empty, answers
// are loaded from and saved to it.
func NewLiner(historyFile string) *Liner {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	l := &Liner{line: line, historyFile: historyFile}
	l.loadHistory()
	return l
}

func (l *Liner) loadHistory() {
	if l.historyFile == "" {
		return
	}
	if f, err := os.Open(l.historyFile); err == nil {
		l.line.ReadHistory(f)
		f.Close()
	}
}

// ReadLine shows prompt and returns the operator's answer.
func (l *Liner) ReadLine(prompt string) (string, error) {
	input, err := l.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrAborted
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}

	if strings.TrimSpace(input) != "" {
		l.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (l *Liner) Close() error {
	if l.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(l.historyFile), 0700); err == nil {
			// SECURITY: history may contain file paths, keep it owner-only
			if f, err := os.OpenFile(l.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
				l.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return l.line.Close()
}

// =============================================================================
// LINE READER PROMPTER
// =============================================================================

// Reader prompts by writing to out and reading lines from in. It is used when
// stdin is not a terminal (piped answers, here-documents).
type Reader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewReader creates a line-reader prompter.
func NewReader(in io.Reader, out io.Writer) *Reader {
	return &Reader{in: bufio.NewReader(in), out: out}
}

// ReadLine writes prompt and reads up to the next newline.
func (r *Reader) ReadLine(prompt string) (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, prompt)
	}

	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// =============================================================================
// UNATTENDED PROMPTER
// =============================================================================

// Unattended accepts the default for every prompt. The prompt text is still
// echoed to Out (when set) so a batch log shows what was decided.
type Unattended struct {
	Out io.Writer
}

// ReadLine returns an empty answer.
func (u Unattended) ReadLine(prompt string) (string, error) {
	if u.Out != nil {
		fmt.Fprintln(u.Out, prompt)
	}
	return "", nil
}

// Unattended always reports true.
func (Unattended) Unattended() bool {
	return true
}

// =============================================================================
// SCRIPTED PROMPTER
// =============================================================================

// Scripted replays a fixed list of answers and records every prompt it was
// shown. Once the answers run out it returns ErrInputClosed.
type Scripted struct {
	Answers []string
	Prompts []string
}

// NewScripted creates a scripted prompter.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{Answers: answers}
}

// ReadLine returns the next scripted answer.
func (s *Scripted) ReadLine(prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Answers) == 0 {
		return "", ErrInputClosed
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

// Asked reports whether any recorded prompt contains substr.
func (s *Scripted) Asked(substr string) bool {
	for _, p := range s.Prompts {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}
