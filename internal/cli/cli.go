// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command line parsing for tdelays.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdRun Command = iota
	CmdCheck
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name used in logs and JSON output.
func (c Command) String() string {
	switch c {
	case CmdRun:
		return "run"
	case CmdCheck:
		return "check"
	case CmdHistory:
		return "history"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Defaults   bool   // Accept every default, never read answers
	AskMethods bool   // Ask for method flags instead of the standard selection
	SaveSetup  string // Write the resolved record as a setup file
	NoHistory  bool   // Do not record the run
	NoColor    bool
	Verbose    bool
	ConfigPath string // Preferences file overriding ~/.tdelays/config.toml

	// Command-specific
	Subcommand string
	JSON       bool
	Watch      bool
	Limit      int

	// Raw args (remaining after the command word)
	Raw []string
}

const usageText = `tdelays - set up a gravitational-lens time-delay analysis

Resolves the full parameter set for one run from a keyword setup file and,
for anything the file leaves undecided, interactive questions. Delay and
flux-ratio search grids are derived from the light curves themselves.

Usage:
  tdelays [flags] -1 <curves-file> [setup-file]
                                    Both curves in one file
                                    (day fluxA errA fluxB errB)
  tdelays [flags] -2 <curve-a> <curve-b> [setup-file]
                                    One curve per file (day flux [err])
  tdelays check [--watch] <setup-file>
                                    Lint a setup file without running
  tdelays history [--limit N] [--json]
                                    List resolved runs, most recent first
  tdelays history show <id>         Show the resolved record of one run
  tdelays config [show|path|init|get <key>|set <key> <value>]
                                    Tool preferences
  tdelays version                   Show version information

Global Flags:
  --defaults          Accept every default; never wait for an answer
  --ask-methods       Ask which analyses to run instead of dispersion only
  --save-setup FILE   Write the resolved setup so the run can be replayed
  --no-history        Do not record this run in the history database
  --no-color          Disable coloured output
  -v, --verbose       Log setup events to stderr
  --config FILE       Read preferences from FILE

Setup File Keywords:
  %s

Examples:
  tdelays -2 imageA.dat imageB.dat run.setup
  tdelays --defaults -1 pair.dat
  tdelays --save-setup replay.setup -2 a.dat b.dat
  tdelays check --watch run.setup
  tdelays history --limit 5

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer, keywords []string) {
	fmt.Fprintf(w, usageText, wrapWords(keywords, 66, "\n  "), Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "tdelays version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s\n", runtime.Version())
}

func wrapWords(words []string, width int, sep string) string {
	var sb strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+2+len(word) > width {
				sb.WriteString("," + sep)
				lineLen = 0
			} else {
				sb.WriteString(", ")
				lineLen += 2
			}
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args, error) {
	remaining, parsed, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, parsed, err
	}

	if len(remaining) == 0 {
		return CmdHelp, parsed, nil
	}

	word := remaining[0]
	rest := remaining[1:]
	parsed.Raw = rest

	// Mode flags start an analysis run
	if strings.HasPrefix(word, "-") {
		switch word {
		case "-1", "-2":
			parsed.Raw = remaining
			return CmdRun, parsed, nil
		case "-h", "--help":
			return CmdHelp, parsed, nil
		case "--version":
			return CmdVersion, parsed, nil
		}
		return CmdHelp, parsed, NewValidationErrorWithExample("mode flag", word,
			"expected -1 (one file, two curves) or -2 (two files)",
			"tdelays -2 imageA.dat imageB.dat run.setup")
	}

	switch strings.ToLower(word) {
	case "run":
		return CmdRun, parsed, nil

	case "check", "lint":
		p := NewArgParser(rest, "watch", "json")
		if flag := p.UnknownFlag("watch", "json"); flag != "" {
			return CmdCheck, parsed, NewValidationError("check flag", flag, "unknown flag")
		}
		parsed.Watch = p.BoolFlag("watch")
		parsed.JSON = p.BoolFlag("json")
		parsed.Raw = p.PositionalFrom(0)
		if len(parsed.Raw) != 1 {
			return CmdCheck, parsed, ErrMissingArgument("setup file", "tdelays check [--watch] run.setup")
		}
		return CmdCheck, parsed, nil

	case "history", "runs":
		p := NewArgParser(rest, "json")
		if flag := p.UnknownFlag("limit", "json"); flag != "" {
			return CmdHistory, parsed, NewValidationError("history flag", flag, "unknown flag")
		}
		parsed.JSON = p.BoolFlag("json")
		if p.HasFlag("limit") {
			n, err := ParseIntWithValidation(p.Flag("limit"), "limit")
			if err != nil {
				return CmdHistory, parsed, err
			}
			parsed.Limit = n
		}
		parsed.Subcommand = p.Subcommand()
		parsed.Raw = p.PositionalFrom(1)
		return CmdHistory, parsed, nil

	case "config", "prefs":
		p := NewArgParser(rest, "json")
		parsed.JSON = p.BoolFlag("json")
		parsed.Subcommand = p.Subcommand()
		parsed.Raw = p.PositionalFrom(1)
		return CmdConfig, parsed, nil

	case "version":
		parsed.JSON = NewArgParser(rest, "json").BoolFlag("json")
		return CmdVersion, parsed, nil

	case "help":
		return CmdHelp, parsed, nil

	default:
		return CmdHelp, parsed, NewValidationErrorWithExample("command", word,
			"unknown command", "tdelays help")
	}
}

// parseGlobalFlags extracts global flags that appear before the command
// word or mode flag and returns the remaining args.
func parseGlobalFlags(args []string) ([]string, Args, error) {
	var parsed Args

	i := 0
	for i < len(args) {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")

		switch name {
		case "--defaults", "--yes", "-y":
			parsed.Defaults = true
		case "--ask-methods":
			parsed.AskMethods = true
		case "--no-history":
			parsed.NoHistory = true
		case "--no-color", "--no-colour":
			parsed.NoColor = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--save-setup", "--config":
			if !hasValue {
				if i+1 >= len(args) {
					return nil, parsed, ErrMissingArgument(strings.TrimLeft(name, "-"), name+" FILE")
				}
				i++
				value = args[i]
			}
			if name == "--config" {
				parsed.ConfigPath = value
			} else {
				parsed.SaveSetup = value
			}
		default:
			// First non-global argument ends the global section
			return args[i:], parsed, nil
		}
		i++
	}

	return nil, parsed, nil
}

// =============================================================================
// DISPATCH
// =============================================================================

// Execute runs cmd and returns its error for main to display.
func Execute(ctx context.Context, cmd Command, args Args, streams Streams) error {
	switch cmd {
	case CmdRun:
		return HandleRun(ctx, args, streams)
	case CmdCheck:
		return HandleCheck(ctx, args, streams)
	case CmdHistory:
		return HandleHistory(ctx, args, streams)
	case CmdConfig:
		return HandleConfig(args, streams)
	case CmdVersion:
		if args.JSON {
			return NewJSONResponse("version", VersionData{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
			}).Write(streams.Out)
		}
		PrintVersion(streams.Out)
		return nil
	default:
		PrintUsage(streams.Out, keywordList())
		return nil
	}
}
