// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the home directory at a fresh temp dir and clears the
// TDELAYS_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, name := range []string{
		"TDELAYS_ACCEPT_DEFAULTS", "TDELAYS_ASK_METHODS", "TDELAYS_FLUX_STEPS",
		"TDELAYS_HISTORY_DB", "TDELAYS_NO_HISTORY", "TDELAYS_COLOR",
		"TDELAYS_LOG_FILE", "TDELAYS_VERBOSE",
	} {
		t.Setenv(name, "")
	}
	return home
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, 50, cfg.Grid.FluxSteps)
	assert.True(t, cfg.History.Enabled)
	assert.True(t, cfg.Prompt.History)
	assert.False(t, cfg.Prompt.AcceptDefaults)
	assert.Equal(t, "auto", cfg.UI.Color)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid default config", mutate: func(*Config) {}},
		{name: "zero flux steps", mutate: func(c *Config) { c.Grid.FluxSteps = 0 }, wantErr: true},
		{name: "huge flux steps", mutate: func(c *Config) { c.Grid.FluxSteps = 10001 }, wantErr: true},
		{name: "negative keep", mutate: func(c *Config) { c.History.Keep = -1 }, wantErr: true},
		{name: "invalid color", mutate: func(c *Config) { c.UI.Color = "sometimes" }, wantErr: true},
		{name: "uppercase color", mutate: func(c *Config) { c.UI.Color = "NEVER" }},
		{name: "future version", mutate: func(c *Config) { c.Version = "9" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				var verrs ValidateErrors
				assert.ErrorAs(t, err, &verrs)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad_DefaultsWithoutFiles(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, filepath.Join(home, ".tdelays", "runs.db"), cfg.HistoryDBPath())
	assert.Equal(t, filepath.Join(home, ".tdelays", "prompt_history"), cfg.HistoryFilePath())
}

func TestLoad_TOMLKeepsUnsetDefaults(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".tdelays")
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := `
[grid]
flux_steps = 80

[prompt]
accept_defaults = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Grid.FluxSteps)
	assert.True(t, cfg.Prompt.AcceptDefaults)
	assert.True(t, cfg.Prompt.History, "keys absent from the file keep their defaults")
	assert.True(t, cfg.History.Enabled)
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".tdelays")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"history": {"enabled": false}, "ui": {"color": "never"}}`), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "never", cfg.UI.Color)
}

func TestLoad_BrokenFileFallsBackToDefaults(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".tdelays")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[grid\n"), 0644))

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 50, cfg.Grid.FluxSteps)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ncolor = \"rainbow\"\n"), 0644))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui.color")
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TDELAYS_FLUX_STEPS", "25")
	t.Setenv("TDELAYS_NO_HISTORY", "yes")
	t.Setenv("TDELAYS_ACCEPT_DEFAULTS", "on")
	t.Setenv("TDELAYS_HISTORY_DB", "/tmp/runs.db")
	t.Setenv("TDELAYS_VERBOSE", "garbage")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 25, cfg.Grid.FluxSteps)
	assert.False(t, cfg.History.Enabled)
	assert.True(t, cfg.Prompt.AcceptDefaults)
	assert.Equal(t, "/tmp/runs.db", cfg.HistoryDBPath())
	assert.False(t, cfg.Log.Verbose, "unparseable values are ignored")
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("grid.flux_steps")
	require.NoError(t, err)
	assert.Equal(t, 50, v)

	require.NoError(t, cfg.Set("grid.flux_steps", "75"))
	assert.Equal(t, 75, cfg.Grid.FluxSteps)

	require.NoError(t, cfg.Set("prompt.accept-defaults", "yes"))
	assert.True(t, cfg.Prompt.AcceptDefaults)

	require.NoError(t, cfg.Set("ui.color", "never"))
	assert.Equal(t, "never", cfg.UI.Color)

	assert.Error(t, cfg.Set("grid.flux_steps", "many"))
	assert.ErrorIs(t, cfg.Set("grid.nope", "1"), ErrUnknownKey)
	_, err = cfg.Get("grid")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownKey)
	_, err = cfg.Get("")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "prefs.toml")

	cfg := Default()
	cfg.Grid.FluxSteps = 64
	cfg.Log.Verbose = true
	require.NoError(t, SaveTOML(cfg, path))

	back, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
	assert.Contains(t, cfg.String(), "flux_steps = 64")
}
