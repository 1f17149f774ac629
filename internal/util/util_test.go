// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_CreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "replay.setup")

	if err := AtomicWriteFile(path, []byte("dochi 1\n"), 0644); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("dodisp 1\n"), 0644); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(content) != "dodisp 1\n" {
		t.Errorf("content mismatch: got %q", content)
	}
}

func TestAtomicWriteFile_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	if err := AtomicWriteFile(filepath.Join(dir, "a.setup"), []byte("x"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, got %d entries", len(entries))
	}
}

// =============================================================================
// PARSING TESTS
// =============================================================================

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"y", true, false},
		{" YES ", true, false},
		{"on", true, false},
		{"1", true, false},
		{"n", false, false},
		{"No", false, false},
		{"off", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		got, err := ParseBool(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBool(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatFloat_RoundTrips(t *testing.T) {
	for _, f := range []float64{0, 1, 0.0005, -12.25, 1e-9} {
		s := FormatFloat(f)
		back, err := strconv.ParseFloat(s, 64)
		if err != nil || back != f {
			t.Errorf("FormatFloat(%v) = %q does not round-trip", f, s)
		}
	}
	if got := FormatFloat(2); got != "2" {
		t.Errorf("FormatFloat(2) = %q, want %q", got, "2")
	}
}

// =============================================================================
// DISPLAY TESTS
// =============================================================================

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"curves/lens-a.dat", 10, "curves/..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, ""},
		{"日本語テキスト", 7, "日本..."},
	}

	for _, tt := range tests {
		got := TruncateWidth(tt.in, tt.width)
		if got != tt.want {
			t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
		if StringWidth(got) > tt.width {
			t.Errorf("TruncateWidth(%q, %d) is %d columns wide", tt.in, tt.width, StringWidth(got))
		}
	}
}

func TestPadWidth(t *testing.T) {
	if got := PadWidth("ab", 4); got != "ab  " {
		t.Errorf("PadWidth = %q", got)
	}
	if got := PadWidth("abcdef", 4); got != "abcdef" {
		t.Errorf("PadWidth should not cut, got %q", got)
	}
}
