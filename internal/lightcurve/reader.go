// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lightcurve

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrBadRecord is returned for a data line that cannot be parsed.
var ErrBadRecord = errors.New("malformed light-curve record")

// =============================================================================
// READERS
// =============================================================================

// ReadSingle reads one curve from whitespace-separated "day flux [err]"
// records. Blank lines and lines starting with '#' are skipped.
func ReadSingle(r io.Reader) (Curve, error) {
	var curve Curve
	err := scanRecords(r, 2, func(vals []float64) {
		p := Point{Day: vals[0], Flux: vals[1]}
		if len(vals) > 2 {
			p.Err = vals[2]
		}
		curve = append(curve, p)
	})
	if err != nil {
		return nil, err
	}
	curve.Sort()
	return curve, nil
}

// ReadPair reads two curves sharing one day column from
// "day fluxA errA fluxB errB" records.
func ReadPair(r io.Reader) (Curve, Curve, error) {
	var a, b Curve
	err := scanRecords(r, 5, func(vals []float64) {
		a = append(a, Point{Day: vals[0], Flux: vals[1], Err: vals[2]})
		b = append(b, Point{Day: vals[0], Flux: vals[3], Err: vals[4]})
	})
	if err != nil {
		return nil, nil, err
	}
	a.Sort()
	b.Sort()
	return a, b, nil
}

// Load reads the two curves analysed by a run. With one path the file must
// hold both curves; with two paths each file holds one.
func Load(paths []string) ([]Curve, error) {
	switch len(paths) {
	case 1:
		f, err := os.Open(paths[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open light curve file: %w", err)
		}
		defer f.Close()

		a, b, err := ReadPair(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", paths[0], err)
		}
		return []Curve{a, b}, nil

	case 2:
		curves := make([]Curve, 0, 2)
		for _, path := range paths {
			c, err := loadSingle(path)
			if err != nil {
				return nil, err
			}
			curves = append(curves, c)
		}
		return curves, nil

	default:
		return nil, fmt.Errorf("expected 1 or 2 light curve files, got %d", len(paths))
	}
}

func loadSingle(path string) (Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open light curve file: %w", err)
	}
	defer f.Close()

	c, err := ReadSingle(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// scanRecords parses every data line into floats and hands them to fn.
// Lines with fewer than minFields columns are rejected.
func scanRecords(r io.Reader, minFields int, fn func([]float64)) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < minFields {
			return fmt.Errorf("%w: line %d: want %d columns, got %d",
				ErrBadRecord, lineNo, minFields, len(fields))
		}

		vals := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("%w: line %d: %q", ErrBadRecord, lineNo, f)
			}
			vals[i] = v
		}
		fn(vals)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read light curve: %w", err)
	}
	return nil
}
