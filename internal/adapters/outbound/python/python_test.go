package python_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/python"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/runner"
	"github.com/abdidvp/harmonizer/internal/adapters/outbound/runner/runnertest"
	"github.com/abdidvp/harmonizer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func fixedLookPath(paths map[string]string) func(string) (string, error) {
	return func(name string) (string, error) {
		if p, ok := paths[name]; ok {
			return p, nil
		}
		return "", errors.New("not found")
	}
}

const probeJSON = `{"version": "3.11.4", "executable": "/usr/bin/python3", "prefix": "/usr", "base_prefix": "/usr", "implementation": "CPython"}`

func TestDetect_ProbesFirstAvailableCandidate(t *testing.T) {
	fake := runnertest.New().On("/usr/bin/python3 -c", domain.CommandResult{Success: true, Stdout: probeJSON + "\n"})
	d := python.New(fake, python.WithLookPath(fixedLookPath(map[string]string{"python3": "/usr/bin/python3"})))

	info := d.Detect(context.Background())
	assert.True(t, info.Found)
	assert.Equal(t, "3.11.4", info.Version)
	assert.Equal(t, "/usr/bin/python3", info.Executable)
	assert.Equal(t, "CPython", info.Implementation)
	assert.False(t, info.InVirtualEnv())
}

func TestDetect_FallsBackToNextCandidate(t *testing.T) {
	fake := runnertest.New().
		On("/usr/bin/python3 -c", domain.CommandResult{Success: false, Stderr: "broken"}).
		On("/usr/bin/python -c", domain.CommandResult{Success: true, Stdout: `{"version": "3.9.2", "executable": "/usr/bin/python", "prefix": "/p/venv", "base_prefix": "/usr"}`})
	d := python.New(fake, python.WithLookPath(fixedLookPath(map[string]string{
		"python3": "/usr/bin/python3",
		"python":  "/usr/bin/python",
	})))

	info := d.Detect(context.Background())
	assert.Equal(t, "3.9.2", info.Version)
	assert.True(t, info.InVirtualEnv())
}

func TestDetect_NoInterpreter(t *testing.T) {
	d := python.New(runnertest.New(), python.WithLookPath(fixedLookPath(nil)))
	info := d.Detect(context.Background())
	assert.False(t, info.Found)
	assert.Equal(t, python.NotFound, info.Version)
}

func TestDetect_RealInterpreterMatchesItsOwnVersion(t *testing.T) {
	path, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not on PATH")
	}
	d := python.New(runner.New(nil))
	info := d.Detect(context.Background())
	require.True(t, info.Found)

	out, err := exec.Command(path, "-c", "import platform; print(platform.python_version())").Output()
	require.NoError(t, err)
	assert.Equal(t, runner.FirstLine(string(out)), info.Version)
}

func TestRequirement_SourcePriority(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".tool-versions", "python 3.8.10\nnodejs 20.0.0\n")
	writeFile(t, dir, "runtime.txt", "python-3.10.6\n")

	d := python.New(runnertest.New())
	req, ok := d.Requirement(dir)
	require.True(t, ok)
	assert.Equal(t, "3.10.6", req.Version)
	assert.Equal(t, "runtime.txt", req.Source)

	writeFile(t, dir, ".python-version", "3.12.1\n")
	req, ok = d.Requirement(dir)
	require.True(t, ok)
	assert.Equal(t, "3.12.1", req.Version)
	assert.Equal(t, ".python-version", req.Source)
}

func TestRequirement_PyprojectPoetry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[tool.poetry]\nname = \"demo\"\n\n[tool.poetry.dependencies]\npython = \"^3.10\"\nrequests = \"^2.28\"\n")

	req, ok := python.New(runnertest.New()).Requirement(dir)
	require.True(t, ok)
	assert.Equal(t, "3.10", req.Version)
}

func TestRequirement_PyprojectPEP621(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[project]\nname = \"demo\"\nrequires-python = \">=3.9,<4\"\n")

	req, ok := python.New(runnertest.New()).Requirement(dir)
	require.True(t, ok)
	assert.Equal(t, "3.9", req.Version)
}

func TestRequirement_MalformedPyprojectFallsBackToLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[project\nrequires-python = \">=3.11\"\n")

	req, ok := python.New(runnertest.New()).Requirement(dir)
	require.True(t, ok)
	assert.Equal(t, "3.11", req.Version)
}

func TestRequirement_SetupPy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "setup.py", "from setuptools import setup\nsetup(name='x', python_requires='>=3.7')\n")

	req, ok := python.New(runnertest.New()).Requirement(dir)
	require.True(t, ok)
	assert.Equal(t, "3.7", req.Version)
	assert.Equal(t, "setup.py", req.Source)
}

func TestRequirement_None(t *testing.T) {
	_, ok := python.New(runnertest.New()).Requirement(t.TempDir())
	assert.False(t, ok)
}

func TestNormalizeRequirement(t *testing.T) {
	cases := map[string]string{
		">=3.8,<4": "3.8",
		"^3.10":    "3.10",
		"~=3.11":   "3.11",
		"==3.9.*":  "3.9",
		"3.12":     "3.12",
		"!=3.9":    "",
		"":         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, python.NormalizeRequirement(in), "input %q", in)
	}
}

func TestCheckCompatibility(t *testing.T) {
	assert.Equal(t, python.Compatible, python.CheckCompatibility("3.10.6", "3.10"))
	assert.Equal(t, python.Compatible, python.CheckCompatibility("3.11.0", "3.10.6"))
	assert.Equal(t, python.Incompatible, python.CheckCompatibility("3.9.0", "3.10"))
	assert.Equal(t, python.Unparseable, python.CheckCompatibility("3.11.0", "latest"))
}

func TestSatisfies(t *testing.T) {
	d := python.New(runnertest.New())

	ok, err := d.Satisfies("3.12.1", "3.8")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Satisfies("3.7.17", "3.8")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = d.Satisfies("3.12.1", "3.x")
	assert.ErrorIs(t, err, python.ErrUnparseable)
}
