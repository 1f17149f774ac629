// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/tdelays/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// CurrentVersion is the preference file format version.
const CurrentVersion = "1"

// ErrUnknownKey is returned by Get and Set for a key naming no preference.
var ErrUnknownKey = errors.New("unknown preference key")

// Config holds the tool preferences. Analysis settings live in setup
// files, not here.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Prompt controls how undecided setup fields are asked for
	Prompt PromptConfig `toml:"prompt" json:"prompt"`

	// Grid holds defaults used while deriving search grids
	Grid GridConfig `toml:"grid" json:"grid"`

	// History controls the run ledger
	History HistoryConfig `toml:"history" json:"history"`

	// UI controls terminal output
	UI UIConfig `toml:"ui" json:"ui"`

	// Log controls EVENT log output
	Log LogConfig `toml:"log" json:"log"`
}

// PromptConfig contains operator prompt settings.
type PromptConfig struct {
	// History keeps answers between sessions for arrow-key recall
	History     bool   `toml:"history" json:"history"`
	HistoryFile string `toml:"history_file" json:"history_file"`

	// AcceptDefaults answers every question with its default and never
	// reads answers, whether or not stdin is a terminal
	AcceptDefaults bool `toml:"accept_defaults" json:"accept_defaults"`

	// AskMethods asks for every method flag instead of the standard
	// dispersion-only selection
	AskMethods bool `toml:"ask_methods" json:"ask_methods"`
}

// GridConfig contains grid derivation defaults.
type GridConfig struct {
	// FluxSteps is the flux-ratio half-width used when the setup file
	// gives none
	FluxSteps int `toml:"flux_steps" json:"flux_steps"`
}

// HistoryConfig contains run-ledger settings.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path" json:"path"`
	// Keep is the number of most recent runs retained; 0 keeps all
	Keep int `toml:"keep" json:"keep"`
}

// UIConfig contains terminal settings.
type UIConfig struct {
	// Color is auto, always or never
	Color string `toml:"color" json:"color"`
}

// LogConfig contains event log settings.
type LogConfig struct {
	// File receives EVENT lines; empty means stderr when verbose
	File    string `toml:"file" json:"file"`
	Verbose bool   `toml:"verbose" json:"verbose"`
}

// Default returns the default preferences.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Prompt: PromptConfig{
			History: true,
		},
		Grid: GridConfig{
			FluxSteps: 50,
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    500,
		},
		UI: UIConfig{
			Color: "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the tdelays configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tdelays"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryFilePath returns the prompt history file, resolving the default.
func (c *Config) HistoryFilePath() string {
	if c.Prompt.HistoryFile != "" {
		return c.Prompt.HistoryFile
	}
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "prompt_history")
}

// HistoryDBPath returns the run-ledger database path, resolving the default.
func (c *Config) HistoryDBPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "runs.db")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads preferences from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	// Defaults are returned alongside any load error for informational purposes
	return cfg, loadErr
}

// LoadFromPath loads preferences from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Grid.FluxSteps == 0 {
		cfg.Grid.FluxSteps = defaults.Grid.FluxSteps
	}
	if cfg.UI.Color == "" {
		cfg.UI.Color = defaults.UI.Color
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the preferences to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the preferences to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# tdelays preferences")
	fmt.Fprintln(&buf, "# Analysis settings belong in setup files, not here.")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the preferences to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the preferences and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Version != CurrentVersion {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version '%s', expected '%s'", c.Version, CurrentVersion),
		})
	}

	if c.Grid.FluxSteps < 1 || c.Grid.FluxSteps > 10000 {
		errs = append(errs, ValidationError{
			Field:   "grid.flux_steps",
			Message: fmt.Sprintf("must be between 1 and 10000, got %d", c.Grid.FluxSteps),
		})
	}

	if c.History.Keep < 0 {
		errs = append(errs, ValidationError{
			Field:   "history.keep",
			Message: "must not be negative",
		})
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[strings.ToLower(c.UI.Color)] {
		errs = append(errs, ValidationError{
			Field:   "ui.color",
			Message: fmt.Sprintf("invalid color mode '%s', must be one of: auto, always, never", c.UI.Color),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - TDELAYS_ACCEPT_DEFAULTS: overrides prompt.accept_defaults
//   - TDELAYS_ASK_METHODS: overrides prompt.ask_methods
//   - TDELAYS_FLUX_STEPS: overrides grid.flux_steps
//   - TDELAYS_HISTORY_DB: overrides history.path
//   - TDELAYS_NO_HISTORY: disables the run ledger
//   - TDELAYS_COLOR: overrides ui.color
//   - TDELAYS_LOG_FILE: overrides log.file
//   - TDELAYS_VERBOSE: overrides log.verbose
func (c *Config) ApplyEnvOverrides() {
	if v, ok := envBool("TDELAYS_ACCEPT_DEFAULTS"); ok {
		c.Prompt.AcceptDefaults = v
	}
	if v, ok := envBool("TDELAYS_ASK_METHODS"); ok {
		c.Prompt.AskMethods = v
	}
	if steps := os.Getenv("TDELAYS_FLUX_STEPS"); steps != "" {
		if n, err := strconv.Atoi(steps); err == nil {
			c.Grid.FluxSteps = n
		}
	}
	if path := os.Getenv("TDELAYS_HISTORY_DB"); path != "" {
		c.History.Path = path
	}
	if v, ok := envBool("TDELAYS_NO_HISTORY"); ok && v {
		c.History.Enabled = false
	}
	if color := os.Getenv("TDELAYS_COLOR"); color != "" {
		c.UI.Color = color
	}
	if file := os.Getenv("TDELAYS_LOG_FILE"); file != "" {
		c.Log.File = file
	}
	if v, ok := envBool("TDELAYS_VERBOSE"); ok {
		c.Log.Verbose = v
	}
}

func envBool(name string) (bool, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	v, err := util.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a preference using dot notation (e.g., "grid.flux_steps").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a preference using dot notation. String values are converted to
// the field's type.
func (c *Config) Set(key string, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, fmt.Errorf("%w: empty key", ErrUnknownKey)
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %v", err)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := util.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

// String renders the preferences as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("# failed to encode config: %v\n", err)
	}
	return buf.String()
}
