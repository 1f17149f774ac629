// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// =============================================================================
// FILE RESOLVER
// =============================================================================

// FileReport summarizes one pass over a setup file.
type FileReport struct {
	Path     string   `json:"path"`
	Lines    int      `json:"lines"`
	Applied  []string `json:"applied"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the file produced no warnings.
func (r *FileReport) OK() bool {
	return len(r.Warnings) == 0
}

// ResolveFilePath opens path and applies it to rec.
func ResolveFilePath(ctx context.Context, rec *Record, path string, opts Options) (*FileReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrSetupFileOpen, path, err)
	}
	defer f.Close()

	return resolveFile(ctx, rec, f, path, opts)
}

// ResolveFile applies every keyword line read from r to rec. Rejected
// values and unknown keywords are warned about and never stop the pass; a
// line without a keyword or a read failure does.
func ResolveFile(ctx context.Context, rec *Record, r io.Reader, opts Options) (*FileReport, error) {
	return resolveFile(ctx, rec, r, "", opts)
}

func resolveFile(ctx context.Context, rec *Record, r io.Reader, path string, opts Options) (*FileReport, error) {
	logger := opts.logger()
	report := &FileReport{Path: path}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Lines++
		line := scanner.Text()

		if isComment(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			return report, &LineError{Path: path, Line: report.Lines, Err: ErrMissingKeyword}
		}

		word, args := fields[0], fields[1:]
		kw, ok := LookupKeyword(word)
		if !ok {
			report.warn(opts, "line %d: unknown keyword %q, ignored", report.Lines, word)
			continue
		}

		if err := kw.Apply(rec, args); err != nil {
			kw.Fallback(rec)
			report.warn(opts, "line %d: bad input for %s (%v), %s", report.Lines, kw.Name, err, kw.FallbackText)
			continue
		}
		report.Applied = append(report.Applied, kw.Name)
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("%w: %v", ErrSetupFileOpen, err)
	}

	logger.Printf("SETUP_FILE | run=%s path=%s lines=%d applied=%d warnings=%d",
		rec.ShortID(), displayPath(path), report.Lines, len(report.Applied), len(report.Warnings))
	return report, nil
}

// isComment reports whether a setup line is skipped without a warning:
// empty, '#' after any indentation, or whitespace led by a tab or carriage
// return. A line of spaces alone is a data line with no keyword.
func isComment(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	if strings.HasPrefix(trimmed, "#") {
		return true
	}
	if trimmed != "" {
		return false
	}
	return line == "" || line[0] != ' '
}

func (r *FileReport) warn(opts Options, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if r.Path != "" {
		msg = r.Path + ": " + msg
	}
	r.Warnings = append(r.Warnings, msg)
	opts.logger().Printf("SETUP_WARN | %s", msg)
	if w := opts.warnWriter(); w != nil {
		fmt.Fprintf(w, "Warning: %s\n", msg)
	}
}

func displayPath(path string) string {
	if path == "" {
		return "-"
	}
	return path
}
