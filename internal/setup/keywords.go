// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/text/cases"
)

// =============================================================================
// KEYWORD TABLE
// =============================================================================

var (
	errNoValue    = errors.New("missing value")
	errBadValue   = errors.New("not a number")
	errOutOfRange = errors.New("out of range")
	errArity      = errors.New("expected 4 values")
)

// Keyword describes one setup-file keyword: how many value tokens it
// takes, how a value is applied to the record, and what the record gets
// instead when the value is rejected.
type Keyword struct {
	Name string
	// Args is 1 for scalars and MaxCurves for per-curve arrays.
	Args int
	// Apply validates args and stores them. It must not touch the record
	// when it returns an error.
	Apply func(rec *Record, args []string) error
	// Fallback stores the documented replacement value.
	Fallback func(rec *Record)
	// FallbackText describes the replacement for the operator.
	FallbackText string
}

var keywordIndex map[string]*Keyword

func init() {
	keywordIndex = make(map[string]*Keyword, len(keywordTable))
	for i := range keywordTable {
		k := &keywordTable[i]
		keywordIndex[foldKeyword(k.Name)] = k
	}
}

func foldKeyword(word string) string {
	return cases.Fold().String(word)
}

// LookupKeyword finds a keyword, ignoring case.
func LookupKeyword(word string) (*Keyword, bool) {
	k, ok := keywordIndex[foldKeyword(word)]
	return k, ok
}

// KeywordNames returns every known keyword, sorted.
func KeywordNames() []string {
	names := make([]string, 0, len(keywordTable))
	for _, k := range keywordTable {
		names = append(names, k.Name)
	}
	sort.Strings(names)
	return names
}

var keywordTable = []Keyword{
	methodKeyword("dochi", func(r *Record) *TriState { return &r.Methods.Chi }),
	methodKeyword("doxcorr", func(r *Record) *TriState { return &r.Methods.XCorr }),
	methodKeyword("doacorr", func(r *Record) *TriState { return &r.Methods.ACorr }),
	methodKeyword("dodisp", func(r *Record) *TriState { return &r.Methods.Disp }),
	methodKeyword("dodcf", func(r *Record) *TriState { return &r.Methods.DCF }),
	methodKeyword("docurvefit", func(r *Record) *TriState { return &r.Methods.CurveFit }),
	{
		Name: "dispchoice",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			n, err := intArg(args, 1, 4)
			if err != nil {
				return err
			}
			r.Dispersion.Variant = DispersionVariant(n)
			return nil
		},
		Fallback:     func(r *Record) { r.Dispersion.Variant = D21 },
		FallbackText: "using Pelt et al. D^2_1",
	},
	{
		Name: "d2delta",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			v, err := floatArg(args)
			if err != nil {
				return err
			}
			if v <= 0 {
				return errOutOfRange
			}
			r.Dispersion.Delta = v
			return nil
		},
		Fallback:     func(r *Record) { r.Dispersion.Delta = DefaultDelta },
		FallbackText: fmt.Sprintf("setting delta = %.1f", DefaultDelta),
	},
	{
		Name: "dooverlap",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			n, err := intArg(args, 0, -1)
			if err != nil {
				return err
			}
			r.Overlap = n > 0
			return nil
		},
		Fallback:     func(r *Record) { r.Overlap = false },
		FallbackText: "setting dooverlap = 0",
	},
	{
		Name:         "outfile",
		Args:         1,
		Apply:        tokenApply(func(r *Record) *string { return &r.OutFile }),
		Fallback:     func(r *Record) { r.OutFile = "" },
		FallbackText: "no output file will be written",
	},
	fileKeyword("achifile", DefaultAChiFile, func(r *Record) *string { return &r.AChiFile }),
	fileKeyword("cchifile", DefaultCChiFile, func(r *Record) *string { return &r.CChiFile }),
	fileKeyword("dchifile", DefaultDChiFile, func(r *Record) *string { return &r.DChiFile }),
	seedKeyword("mu0", func(r *Record) *Grid { return &r.Mu }),
	stepsKeyword("nmu", func(r *Record) *Grid { return &r.Mu }),
	seedKeyword("tau0", func(r *Record) *Grid { return &r.Tau }),
	{
		Name: "dtau",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			v, err := floatArg(args)
			if err != nil {
				return err
			}
			if v < 0 {
				return errOutOfRange
			}
			r.Tau.Step = v
			return nil
		},
		Fallback:     func(r *Record) { r.Tau.Step = 0 },
		FallbackText: "setting dtau = 0",
	},
	stepsKeyword("ntau", func(r *Record) *Grid { return &r.Tau }),
	{
		Name: "dosmooth",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			n, err := intArg(args, int(NoSmoothing), int(SmoothInPlace))
			if err != nil {
				return err
			}
			r.Smoothing.Mode = SmoothMode(n)
			return nil
		},
		Fallback:     func(r *Record) { r.Smoothing.Mode = SmoothUnset },
		FallbackText: "smoothing mode will be asked",
	},
	widthKeyword("boxcar", Boxcar),
	widthKeyword("median", Median),
	pointsKeyword("varbox", VariableBoxcar),
	pointsKeyword("vartri", VariableTriangle),
	widthKeyword("triangle", Triangle),
	widthKeyword("gauss", Gaussian),
	{
		Name: "ninterp",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			n, err := intArg(args, 0, -1)
			if err != nil {
				return err
			}
			r.Interp.Points = n
			return nil
		},
		Fallback:     func(r *Record) { r.Interp.Points = 0 },
		FallbackText: "setting ninterp = 0",
	},
	{
		Name: "intstep",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			v, err := floatArg(args)
			if err != nil {
				return err
			}
			if v <= 0 || v > MaxInterpStep {
				return errOutOfRange
			}
			r.Interp.Step = v
			return nil
		},
		Fallback:     func(r *Record) { r.Interp.Step = Rederive },
		FallbackText: "interpolation step will be asked",
	},
	{
		Name: "intstart",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			v, err := floatArg(args)
			if err != nil {
				return err
			}
			if v < 0 {
				return errOutOfRange
			}
			r.Interp.Start = v
			return nil
		},
		Fallback:     func(r *Record) { r.Interp.Start = -1 },
		FallbackText: "interpolation starts at the first observation",
	},
	{
		Name: "askstart",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			if len(args) == 0 {
				return errNoValue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errBadValue
			}
			r.Interp.AskStart = n != 0
			return nil
		},
		Fallback:     func(r *Record) { r.Interp.AskStart = true },
		FallbackText: "setting askstart = 1",
	},
	logKeyword("chilog", func(r *Record) *string { return &r.ChiLog }),
	logKeyword("xclog", func(r *Record) *string { return &r.XCorrLog }),
	{
		Name: "flagbad",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			if len(args) == 0 {
				return errNoValue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errBadValue
			}
			r.FlagBad = TriFromInt(n)
			return nil
		},
		Fallback:     func(r *Record) { r.FlagBad = Unset },
		FallbackText: "bad-point flagging left undecided",
	},
	{
		Name: "meanchoice",
		Args: 1,
		Apply: func(r *Record, args []string) error {
			n, err := intArg(args, int(TotalFluxModel), int(PerArrayConfigMean))
			if err != nil {
				return err
			}
			r.MeanChoice = MeanChoice(n)
			return nil
		},
		Fallback:     func(r *Record) { r.MeanChoice = MeanUnset },
		FallbackText: "normalization left undecided",
	},
	{
		Name:         "root",
		Args:         1,
		Apply:        tokenApply(func(r *Record) *string { return &r.Root }),
		Fallback:     func(r *Record) { r.Root = DefaultRoot },
		FallbackText: "setting root = " + DefaultRoot,
	},
}

// =============================================================================
// KEYWORD BUILDERS
// =============================================================================

func methodKeyword(name string, flag func(*Record) *TriState) Keyword {
	return Keyword{
		Name: name,
		Args: 1,
		Apply: func(r *Record, args []string) error {
			n, err := intArg(args, 0, -1)
			if err != nil {
				return err
			}
			*flag(r) = TriFromInt(n)
			return nil
		},
		Fallback:     func(r *Record) { *flag(r) = No },
		FallbackText: "setting " + name + " = 0",
	}
}

func fileKeyword(name, def string, field func(*Record) *string) Keyword {
	return Keyword{
		Name:         name,
		Args:         1,
		Apply:        tokenApply(field),
		Fallback:     func(r *Record) { *field(r) = def },
		FallbackText: "setting " + name + " = " + def,
	}
}

func logKeyword(name string, field func(*Record) *string) Keyword {
	return Keyword{
		Name:         name,
		Args:         1,
		Apply:        tokenApply(field),
		Fallback:     func(r *Record) { *field(r) = StdoutLog },
		FallbackText: "output will go to " + StdoutLog,
	}
}

func seedKeyword(name string, grid func(*Record) *Grid) Keyword {
	return Keyword{
		Name: name,
		Args: MaxCurves,
		Apply: func(r *Record, args []string) error {
			if len(args) != MaxCurves {
				return errArity
			}
			var seeds [MaxCurves]float64
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return errBadValue
				}
				seeds[i] = v
			}
			grid(r).SetSeeds(seeds)
			return nil
		},
		Fallback:     func(r *Record) { grid(r).ClearSeeds() },
		FallbackText: "setting all " + name + " values to 0.0",
	}
}

func stepsKeyword(name string, grid func(*Record) *Grid) Keyword {
	return Keyword{
		Name: name,
		Args: 1,
		Apply: func(r *Record, args []string) error {
			n, err := intArg(args, 0, -1)
			if err != nil {
				return err
			}
			grid(r).HalfWidth = n
			return nil
		},
		Fallback:     func(r *Record) { grid(r).HalfWidth = 0 },
		FallbackText: "setting " + name + " = 0",
	}
}

// widthKeyword selects a fixed-width kernel. The kind is kept even when the
// width is rejected; the width is then asked for interactively.
func widthKeyword(name string, kind SmoothKind) Keyword {
	return Keyword{
		Name: name,
		Args: 1,
		Apply: func(r *Record, args []string) error {
			v, err := floatArg(args)
			if err != nil {
				return err
			}
			if v <= 0 || v > MaxSmoothWidth {
				return errOutOfRange
			}
			r.Smoothing.SetWidth(kind, v)
			return nil
		},
		Fallback:     func(r *Record) { r.Smoothing.SetWidth(kind, Rederive) },
		FallbackText: "smoothing width will be asked",
	}
}

// pointsKeyword selects a variable-width kernel, mirroring widthKeyword.
func pointsKeyword(name string, kind SmoothKind) Keyword {
	return Keyword{
		Name: name,
		Args: 1,
		Apply: func(r *Record, args []string) error {
			n, err := intArg(args, 1, MaxSmoothPoints)
			if err != nil {
				return err
			}
			r.Smoothing.SetPoints(kind, n)
			return nil
		},
		Fallback:     func(r *Record) { r.Smoothing.SetPoints(kind, Rederive) },
		FallbackText: "number of smoothing points will be asked",
	}
}

func tokenApply(field func(*Record) *string) func(*Record, []string) error {
	return func(r *Record, args []string) error {
		if len(args) == 0 {
			return errNoValue
		}
		*field(r) = args[0]
		return nil
	}
}

// =============================================================================
// VALUE PARSING
// =============================================================================

// intArg parses the first token as an integer in [lo, hi]. A negative hi
// means no upper bound.
func intArg(args []string, lo, hi int) (int, error) {
	if len(args) == 0 {
		return 0, errNoValue
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, errBadValue
	}
	if n < lo || (hi >= 0 && n > hi) {
		return 0, errOutOfRange
	}
	return n, nil
}

func floatArg(args []string) (float64, error) {
	if len(args) == 0 {
		return 0, errNoValue
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errBadValue
	}
	return v, nil
}
