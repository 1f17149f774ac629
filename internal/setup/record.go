// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/tdelays/internal/lightcurve"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// MaxCurves is the number of per-curve slots reserved in the grids.
	MaxCurves = 4

	// PairedCurves is the number of curves every run analyses.
	PairedCurves = 2

	// StdoutLog is the log-path sentinel meaning "not redirected".
	StdoutLog = "stdout"

	DefaultRoot     = "mc_g"
	DefaultAChiFile = "chiba.dat"
	DefaultCChiFile = "chibc.dat"
	DefaultDChiFile = "chibd.dat"

	DefaultDelta        = 5.0
	DefaultTauStep      = 1.0
	DefaultFluxStep     = 0.0005
	DefaultFluxSteps    = 50
	DefaultInterpStep   = 1.0
	DefaultSmoothWidth  = 10.0
	DefaultSmoothPoints = 5

	MinSmoothWidth  = 1.0
	MaxSmoothWidth  = 100.0
	MaxSmoothPoints = 30
	MaxInterpStep   = 30.0

	// Rederive marks a numeric field whose file value was rejected; the
	// interactive stage asks for it again.
	Rederive = -1
)

// =============================================================================
// TRI-STATE FLAGS
// =============================================================================

// TriState is a yes/no flag that also remembers whether it was decided.
type TriState int8

const (
	Unset TriState = iota
	No
	Yes
)

// TriFromInt maps a file integer to a flag: 0 is No, positive is Yes.
func TriFromInt(n int) TriState {
	if n > 0 {
		return Yes
	}
	return No
}

// TriFromBool maps a bool to No/Yes.
func TriFromBool(b bool) TriState {
	if b {
		return Yes
	}
	return No
}

// IsSet reports whether the flag has been decided.
func (t TriState) IsSet() bool { return t != Unset }

// IsYes reports whether the flag is Yes.
func (t TriState) IsYes() bool { return t == Yes }

// Int returns the file representation (1 for Yes, 0 otherwise).
func (t TriState) Int() int {
	if t == Yes {
		return 1
	}
	return 0
}

func (t TriState) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unset"
	}
}

// MarshalText encodes the flag as yes/no/unset.
func (t TriState) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes yes/no/unset.
func (t *TriState) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "yes":
		*t = Yes
	case "no":
		*t = No
	case "unset", "":
		*t = Unset
	default:
		return fmt.Errorf("invalid flag value %q", text)
	}
	return nil
}

// =============================================================================
// METHOD SELECTION
// =============================================================================

// Methods holds the six delay-estimation method flags.
type Methods struct {
	Chi      TriState `json:"chi"`
	XCorr    TriState `json:"xcorr"`
	ACorr    TriState `json:"acorr"`
	Disp     TriState `json:"disp"`
	DCF      TriState `json:"dcf"`
	CurveFit TriState `json:"curvefit"`
}

// StandardMethods is the selection used when the command line does not ask
// for interactive method choice: dispersion analysis only.
func StandardMethods() Methods {
	return Methods{Chi: No, XCorr: No, ACorr: No, Disp: Yes, DCF: No, CurveFit: No}
}

// Interpolating reports whether any method that works on smoothed,
// interpolated curves is selected.
func (m Methods) Interpolating() bool {
	return m.Chi.IsYes() || m.XCorr.IsYes() || m.ACorr.IsYes()
}

// Resolved reports whether no flag is left Unset.
func (m Methods) Resolved() bool {
	for _, f := range m.fields() {
		if !f.flag.IsSet() {
			return false
		}
	}
	return true
}

// Selected returns the short names of the selected methods in prompt
// order, e.g. ["chi", "disp"].
func (m Methods) Selected() []string {
	var names []string
	for _, f := range m.fields() {
		if f.flag.IsYes() {
			names = append(names, strings.TrimPrefix(f.keyword, "do"))
		}
	}
	return names
}

type methodField struct {
	keyword  string
	question string
	flag     *TriState
}

// fields lists the flags in prompt order.
func (m *Methods) fields() []methodField {
	return []methodField{
		{"dochi", "Do chisq analysis?", &m.Chi},
		{"doxcorr", "Do cross-correlation analysis?", &m.XCorr},
		{"doacorr", "Do auto-correlation analysis?", &m.ACorr},
		{"dodisp", "Do dispersion analysis?", &m.Disp},
		{"dodcf", "Do discrete correlation analysis?", &m.DCF},
		{"docurvefit", "Do simultaneous curve fitting and chisq minimization?", &m.CurveFit},
	}
}

// =============================================================================
// DISPERSION
// =============================================================================

// DispersionVariant selects the dispersion statistic.
type DispersionVariant int

const (
	VariantUnset DispersionVariant = iota
	D21
	D21Multi
	D22
	Lovell
)

// Valid reports whether v is one of the four variants.
func (v DispersionVariant) Valid() bool {
	return v >= D21 && v <= Lovell
}

// NeedsDelta reports whether the variant takes a delta parameter.
func (v DispersionVariant) NeedsDelta() bool {
	return v == D22 || v == Lovell
}

func (v DispersionVariant) String() string {
	switch v {
	case D21:
		return "Pelt D^2_1"
	case D21Multi:
		return "Pelt D^2_1 (>2 curves)"
	case D22:
		return "Pelt D^2_2"
	case Lovell:
		return "Lovell D^2_2"
	default:
		return "unset"
	}
}

// Dispersion holds the dispersion-method parameters.
type Dispersion struct {
	Variant DispersionVariant `json:"variant"`
	// Delta is the D^2_2 decorrelation length in days; negative means unset.
	Delta float64 `json:"delta"`
}

// =============================================================================
// SMOOTHING
// =============================================================================

// SmoothMode selects what happens to the raw curves before interpolative
// methods run. The numeric values are the setup-file codes.
type SmoothMode int

const (
	SmoothUnset SmoothMode = iota - 1
	NoSmoothing
	InterpolateOnly
	SmoothAndInterpolate
	SmoothInPlace
)

// Valid reports whether m is a decided mode.
func (m SmoothMode) Valid() bool {
	return m >= NoSmoothing && m <= SmoothInPlace
}

func (m SmoothMode) String() string {
	switch m {
	case NoSmoothing:
		return "none"
	case InterpolateOnly:
		return "linear interpolation"
	case SmoothAndInterpolate:
		return "smooth and interpolate"
	case SmoothInPlace:
		return "smooth in place"
	default:
		return "unset"
	}
}

// SmoothKind is the shape of the smoothing window. Kinds before
// VariableBoxcar have a width in days; the variable kinds use a point count.
type SmoothKind int

const (
	KindUnset SmoothKind = iota - 1
	Boxcar
	Median
	Triangle
	Gaussian
	VariableBoxcar
	VariableTriangle
)

// Valid reports whether k is a decided kind.
func (k SmoothKind) Valid() bool {
	return k >= Boxcar && k <= VariableTriangle
}

// Variable reports whether the kind is sized by point count.
func (k SmoothKind) Variable() bool {
	return k == VariableBoxcar || k == VariableTriangle
}

func (k SmoothKind) String() string {
	switch k {
	case Boxcar:
		return "Boxcar"
	case Median:
		return "Median"
	case Triangle:
		return "Triangle"
	case Gaussian:
		return "Gaussian"
	case VariableBoxcar:
		return "Variable-width boxcar"
	case VariableTriangle:
		return "Variable-width triangle"
	default:
		return "unset"
	}
}

// Smoothing describes the smoothing stage. Exactly one of Width (fixed
// kinds) and Points (variable kinds) is in use; the setters keep the other
// at zero.
type Smoothing struct {
	Mode   SmoothMode `json:"mode"`
	Kind   SmoothKind `json:"kind"`
	Width  float64    `json:"width,omitempty"`
	Points int        `json:"points,omitempty"`
}

// SetWidth selects a fixed-width kind.
func (s *Smoothing) SetWidth(kind SmoothKind, width float64) {
	s.Kind = kind
	s.Width = width
	s.Points = 0
}

// SetPoints selects a variable-width kind.
func (s *Smoothing) SetPoints(kind SmoothKind, points int) {
	s.Kind = kind
	s.Points = points
	s.Width = 0
}

// SetKind selects a kind and clears whichever size does not apply to it.
func (s *Smoothing) SetKind(kind SmoothKind) {
	s.Kind = kind
	if kind.Variable() {
		s.Width = 0
	} else {
		s.Points = 0
	}
}

// Disable forces NoSmoothing.
func (s *Smoothing) Disable() {
	s.Mode = NoSmoothing
}

// Smooths reports whether a smoothing kernel is applied.
func (s Smoothing) Smooths() bool {
	return s.Mode > InterpolateOnly
}

// =============================================================================
// INTERPOLATION
// =============================================================================

// Interpolation describes the regular grid the curves are resampled onto.
type Interpolation struct {
	Step     float64 `json:"step"`
	Start    float64 `json:"start"`
	AskStart bool    `json:"ask_start"`
	Points   int     `json:"points"`
}

// =============================================================================
// SEARCH GRIDS
// =============================================================================

// Grid is a per-curve search grid: seed values, a step and the number of
// steps taken on either side of each seed.
type Grid struct {
	Seeds [MaxCurves]float64 `json:"seeds"`
	// Set is true only when the seeds were read from the setup file.
	Set       bool    `json:"set"`
	Step      float64 `json:"step"`
	HalfWidth int     `json:"half_width"`
}

// SetSeeds stores file-supplied seeds and marks the grid as set.
func (g *Grid) SetSeeds(seeds [MaxCurves]float64) {
	g.Seeds = seeds
	g.Set = true
}

// ClearSeeds zeroes the seeds and clears the set flag.
func (g *Grid) ClearSeeds() {
	g.Seeds = [MaxCurves]float64{}
	g.Set = false
}

// SearchRange returns the first and last trial value searched for curve i
// and the number of trials. Trials sit on whole multiples of Step.
func (g Grid) SearchRange(i int) (lo, hi float64, n int) {
	if i < 0 || i >= MaxCurves || g.Step <= 0 {
		return 0, 0, 0
	}
	center := int(math.Trunc(g.Seeds[i] / g.Step))
	lo = float64(center-g.HalfWidth) * g.Step
	hi = float64(center+g.HalfWidth) * g.Step
	return lo, hi, 2*g.HalfWidth + 1
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// MeanChoice selects how secondary flux-calibrator curves are normalized.
type MeanChoice int

const (
	MeanUnset MeanChoice = iota - 1
	TotalFluxModel
	GlobalMean
	PerArrayConfigMean
)

// Valid reports whether c is a decided choice.
func (c MeanChoice) Valid() bool {
	return c >= TotalFluxModel && c <= PerArrayConfigMean
}

func (c MeanChoice) String() string {
	switch c {
	case TotalFluxModel:
		return "Division by total flux from modscal model"
	case GlobalMean:
		return "Division by mean over total length of observations"
	case PerArrayConfigMean:
		return "Separate normalization for different array configs"
	default:
		return "unset"
	}
}

// =============================================================================
// RECORD
// =============================================================================

// Record is the resolved configuration of one analysis run. It is created
// by NewRecord, filled by the file, interactive and grid stages in that
// order, and read-only afterwards.
type Record struct {
	RunID      string   `json:"run_id"`
	FileCount  int      `json:"file_count"`
	Inputs     []string `json:"inputs"`
	SetupPath  string   `json:"setup_path,omitempty"`
	CurveCount int      `json:"curve_count"`

	Methods    Methods       `json:"methods"`
	Dispersion Dispersion    `json:"dispersion"`
	Overlap    bool          `json:"overlap"`
	Smoothing  Smoothing     `json:"smoothing"`
	Interp     Interpolation `json:"interp"`
	Tau        Grid          `json:"tau"`
	Mu         Grid          `json:"mu"`
	FlagBad    TriState      `json:"flag_bad"`
	MeanChoice MeanChoice    `json:"mean_choice"`

	OutFile  string `json:"out_file,omitempty"`
	AChiFile string `json:"achi_file"`
	CChiFile string `json:"cchi_file"`
	DChiFile string `json:"dchi_file"`
	ChiLog   string `json:"chi_log"`
	XCorrLog string `json:"xcorr_log"`
	Root     string `json:"root"`

	// Curves summarizes the input curves once they are known.
	Curves []lightcurve.Summary `json:"curves,omitempty"`
}

// NewRecord returns a record with every field at its default or unset
// sentinel.
func NewRecord() *Record {
	return &Record{
		RunID:      uuid.NewString(),
		CurveCount: PairedCurves,
		Dispersion: Dispersion{Variant: VariantUnset, Delta: -1},
		Smoothing:  Smoothing{Mode: SmoothUnset, Kind: KindUnset},
		Interp:     Interpolation{Start: -1, AskStart: true},
		Mu:         Grid{Step: DefaultFluxStep},
		MeanChoice: MeanUnset,
		AChiFile:   DefaultAChiFile,
		CChiFile:   DefaultCChiFile,
		DChiFile:   DefaultDChiFile,
		ChiLog:     StdoutLog,
		XCorrLog:   StdoutLog,
		Root:       DefaultRoot,
	}
}

// DecodeRecord restores a record stored as JSON by the run history.
// Fields absent from data keep their NewRecord defaults.
func DecodeRecord(data []byte) (*Record, error) {
	rec := NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}

// ShortID returns the first block of the run ID for log lines.
func (r *Record) ShortID() string {
	if i := strings.IndexByte(r.RunID, '-'); i > 0 {
		return r.RunID[:i]
	}
	return r.RunID
}
