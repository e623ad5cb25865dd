package cli_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requirePython skips tests whose fix plan needs an interpreter to name.
func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not on PATH")
	}
}

func TestFixCommand_DryRunChangesNothing(t *testing.T) {
	requirePython(t)
	dir := t.TempDir()

	out, _, err := run(t, "fix", dir, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "[DRY-RUN]")
	assert.Contains(t, out, "Config Fixer")
	assert.Contains(t, out, "Would create .gitignore at:")
	assert.NotContains(t, out, "Run `harmonizer scan` to verify")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFixCommand_DryRunJSON(t *testing.T) {
	requirePython(t)
	out, _, err := run(t, "fix", t.TempDir(), "--dry-run", "--json")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	fixes := result["fixes"].([]any)
	require.NotEmpty(t, fixes)
	first := fixes[0].(map[string]any)
	assert.Equal(t, "ConfigFixer", first["fixer"])
	assert.Equal(t, true, first["dry_run"])
}

func TestFixCommand_NonInteractiveDeclines(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, "fix", dir)
	require.NoError(t, err, "declined fixers are not failures")

	assert.Contains(t, out, "ConfigFixer: User cancelled")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFixCommand_DryRunFromSettings(t *testing.T) {
	requirePython(t)
	dir := project(t, map[string]string{".harmonizer.json": `{"dry_run": true}`})

	out, _, err := run(t, "fix", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "[DRY-RUN]")
	assert.NoFileExists(t, filepath.Join(dir, ".gitignore"))
}
