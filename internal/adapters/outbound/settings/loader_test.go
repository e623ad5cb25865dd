package settings_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/settings"
	"github.com/abdidvp/harmonizer/internal/domain"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, path, err := settings.New().Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, domain.DefaultSettings(), cfg)
}

func TestLoad_ProjectJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".harmonizer.json", `{"scan_quirks": false, "timeout": 12, "python_candidates": ["python3.12"]}`)

	cfg, path, err := settings.New().Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".harmonizer.json"), path)
	assert.False(t, cfg.ScanQuirks)
	assert.True(t, cfg.ScanOS, "unset keys keep defaults")
	assert.Equal(t, 12, cfg.Timeout)
	assert.Equal(t, []string{"python3.12"}, cfg.PythonCandidates)
}

func TestLoad_ProjectYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".harmonizer.yaml", "confirm_fixes: false\nmax_depth: 1\n")

	cfg, _, err := settings.New().Load(dir, "")
	require.NoError(t, err)
	assert.False(t, cfg.ConfirmFixes)
	assert.Equal(t, 1, cfg.MaxDepth)
}

func TestLoad_JSONWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".harmonizer.json", `{"timeout": 7}`)
	writeConfig(t, dir, ".harmonizer.yaml", "timeout: 9\n")

	cfg, _, err := settings.New().Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Timeout)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".harmonizer.json", `{"timeout": 7}`)
	explicit := writeConfig(t, t.TempDir(), "custom.yaml", "timeout: 30\n")

	cfg, path, err := settings.New().Load(dir, explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
	assert.Equal(t, 30, cfg.Timeout)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, _, err := settings.New().Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".harmonizer.json", `{"timeout": 7}`)
	t.Setenv("HARMONIZER_TIMEOUT", "10")
	t.Setenv("HARMONIZER_SCAN_VENV", "false")
	t.Setenv("HARMONIZER_PYTHON_CANDIDATES", "python3.11,python3")

	cfg, _, err := settings.New().Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Timeout)
	assert.False(t, cfg.ScanVenv)
	assert.Equal(t, []string{"python3.11", "python3"}, cfg.PythonCandidates)
}

func TestLoad_InvalidSyntax(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".harmonizer.json", `{{{invalid`)

	_, _, err := settings.New().Load(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .harmonizer.json")
}

func TestLoad_ValidationFailure(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".harmonizer.json", `{"auto_fix": true, "dry_run": true}`)

	_, _, err := settings.New().Load(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .harmonizer.json")
	assert.Contains(t, err.Error(), "cannot both be enabled")
}

func TestLoad_NegativeTimeoutFromEnvironment(t *testing.T) {
	t.Setenv("HARMONIZER_TIMEOUT", "-1")
	_, _, err := settings.New().Load(t.TempDir(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".harmonizer.json")
	require.NoError(t, settings.WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got domain.Settings
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, domain.DefaultSettings(), got)

	err = settings.WriteDefault(path)
	assert.ErrorIs(t, err, settings.ErrExists)
}

func TestWriteDefault_RoundTripsThroughLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, settings.WriteDefault(filepath.Join(dir, ".harmonizer.json")))

	cfg, _, err := settings.New().Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), cfg)
}
