// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jeranaias/tdelays/internal/prompt"
	"github.com/jeranaias/tdelays/internal/util"
)

// =============================================================================
// PROMPT LOOP
// =============================================================================

// asker runs the prompt -> validate -> accept/reprompt loop for one field
// at a time. An empty answer selects the default, which must itself pass
// validation.
type asker struct {
	ctx context.Context
	p   prompt.Prompter
	out io.Writer
}

func newAsker(ctx context.Context, opts Options) *asker {
	return &asker{ctx: ctx, p: opts.prompter(), out: opts.out()}
}

// ask repeats question until accept returns nil. def is the answer used
// for an empty reply.
func (a *asker) ask(question, def string, accept func(answer string) error) error {
	for {
		if err := a.ctx.Err(); err != nil {
			return err
		}

		line, err := a.p.ReadLine(question)
		if err != nil {
			return err
		}

		answer := strings.TrimSpace(line)
		if answer == "" {
			answer = def
		}

		err = accept(answer)
		if err == nil {
			return nil
		}
		if prompt.IsUnattended(a.p) {
			return fmt.Errorf("%w: %s (default %q: %v)", ErrNoValidDefault, strings.TrimSpace(question), def, err)
		}
		fmt.Fprintf(a.out, "  ** Invalid input: %v. Try again.\n", err)
	}
}

func (a *asker) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

// askYesNo asks a yes/no question.
func (a *asker) askYesNo(question string, def bool) (bool, error) {
	suffix, defText := "[y/N]", "n"
	if def {
		suffix, defText = "[Y/n]", "y"
	}

	var answer bool
	err := a.ask(fmt.Sprintf("%s %s: ", question, suffix), defText, func(s string) error {
		v, err := util.ParseBool(s)
		if err != nil {
			return errors.New("answer y or n")
		}
		answer = v
		return nil
	})
	return answer, err
}

// askInt asks for an integer in [lo, hi].
func (a *asker) askInt(question string, def, lo, hi int) (int, error) {
	var answer int
	err := a.ask(fmt.Sprintf("%s [%d]: ", question, def), strconv.Itoa(def), func(s string) error {
		n, err := strconv.Atoi(firstToken(s))
		if err != nil {
			return errors.New("not an integer")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		answer = n
		return nil
	})
	return answer, err
}

// askFloat asks for a float accepted by valid. The default is shown with
// the given precision but an empty reply keeps it exactly.
func (a *asker) askFloat(question string, def float64, prec int, valid func(float64) error) (float64, error) {
	shown := util.FloatToStringPrec(def, prec)
	var answer float64
	err := a.ask(fmt.Sprintf("%s [%s]: ", question, shown), util.FormatFloat(def), func(s string) error {
		v, err := strconv.ParseFloat(firstToken(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("not a number")
		}
		if valid != nil {
			if err := valid(v); err != nil {
				return err
			}
		}
		answer = v
		return nil
	})
	return answer, err
}

// askToken asks for a single whitespace-free word such as a file name.
func (a *asker) askToken(question, def string) (string, error) {
	var answer string
	err := a.ask(fmt.Sprintf("%s [%s]: ", question, def), def, func(s string) error {
		tok := firstToken(s)
		if tok == "" {
			return errors.New("a name is required")
		}
		answer = tok
		return nil
	})
	return answer, err
}

// askMenu prints options numbered from first and returns the chosen number.
func (a *asker) askMenu(title string, options []string, first, def int) (int, error) {
	a.printf("\n%s\n", title)
	for i, opt := range options {
		a.printf("  %d. %s\n", first+i, opt)
	}
	return a.askInt("Enter choice", def, first, first+len(options)-1)
}

// =============================================================================
// VALIDATORS
// =============================================================================

func positive(v float64) error {
	if v <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func nonNegative(v float64) error {
	if v < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func within(lo, hi float64, loOpen bool) func(float64) error {
	return func(v float64) error {
		if (loOpen && v <= lo) || (!loOpen && v < lo) || v > hi {
			open := "["
			if loOpen {
				open = "("
			}
			return fmt.Errorf("must be in %s%g, %g]", open, lo, hi)
		}
		return nil
	}
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
