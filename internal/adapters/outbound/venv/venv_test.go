package venv_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/venv"
	"github.com/abdidvp/harmonizer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) venv.Option {
	return venv.WithEnv(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
}

var systemPython = domain.PythonInfo{Found: true, Version: "3.11.4", Prefix: "/usr", BasePrefix: "/usr"}

func TestDetect_NoMarkers(t *testing.T) {
	d := venv.New(envOf(nil), venv.WithHome(t.TempDir()))
	assert.Equal(t, domain.NoVenv, d.Detect(t.TempDir(), systemPython))
}

func TestDetect_CondaOutranksVirtualenv(t *testing.T) {
	project := t.TempDir()
	touch(t, filepath.Join(project, "venv", "pyvenv.cfg"))

	d := venv.New(envOf(map[string]string{"CONDA_PREFIX": "/opt/conda/envs/data", "CONDA_DEFAULT_ENV": "data"}), venv.WithHome(t.TempDir()))
	info := d.Detect(project, systemPython)

	assert.Equal(t, domain.VenvConda, info.Type)
	assert.True(t, info.Active)
	assert.Equal(t, "/opt/conda/envs/data", info.Path)
	assert.Equal(t, "data", info.Name)
}

func TestDetect_CondaMetaInPrefix(t *testing.T) {
	prefix := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "conda-meta"), 0o755))

	d := venv.New(envOf(nil), venv.WithHome(t.TempDir()))
	info := d.Detect(t.TempDir(), domain.PythonInfo{Prefix: prefix, BasePrefix: prefix})
	assert.Equal(t, domain.VenvConda, info.Type)
	assert.True(t, info.Active, "running a conda interpreter uses its environment")
	assert.Equal(t, prefix, info.Path)
	assert.Equal(t, filepath.Base(prefix), info.Name)
}

func TestDetect_Pipx(t *testing.T) {
	home := t.TempDir()
	prefix := filepath.Join(home, ".local", "pipx", "venvs", "black")

	d := venv.New(envOf(nil), venv.WithHome(home))
	info := d.Detect(t.TempDir(), domain.PythonInfo{Prefix: prefix, BasePrefix: "/usr"})
	assert.Equal(t, domain.VenvPipx, info.Type)
	assert.Equal(t, "black", info.Name)
	assert.Equal(t, prefix, info.Path)
}

func TestDetect_PipxHomeEnv(t *testing.T) {
	pipxHome := t.TempDir()
	prefix := filepath.Join(pipxHome, "venvs", "ruff", "lib")

	d := venv.New(envOf(map[string]string{"PIPX_HOME": pipxHome}), venv.WithHome(t.TempDir()))
	info := d.Detect(t.TempDir(), domain.PythonInfo{Prefix: prefix, BasePrefix: "/usr"})
	assert.Equal(t, domain.VenvPipx, info.Type)
	assert.Equal(t, "ruff", info.Name)
	assert.Equal(t, filepath.Join(pipxHome, "venvs", "ruff"), info.Path)
}

func TestDetect_PoetryActiveEnv(t *testing.T) {
	d := venv.New(envOf(map[string]string{"POETRY_ACTIVE": "1", "VIRTUAL_ENV": "/x/venv"}), venv.WithHome(t.TempDir()))
	info := d.Detect(t.TempDir(), domain.PythonInfo{Prefix: "/cache/pypoetry/demo-abc-py3.11", BasePrefix: "/usr"})
	assert.Equal(t, domain.VenvPoetry, info.Type, "poetry outranks virtualenv")
	assert.Equal(t, "/cache/pypoetry/demo-abc-py3.11", info.Path)
}

func TestDetect_PoetryProjectWithMatchingPrefix(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "pyproject.toml"),
		[]byte("[tool.poetry]\nname = \"Demo-App\"\nversion = \"0.1.0\"\n"), 0o644))

	d := venv.New(envOf(nil), venv.WithHome(t.TempDir()))
	info := d.Detect(project, domain.PythonInfo{Prefix: "/cache/virtualenvs/demo-app-X1y2-py3.11", BasePrefix: "/usr"})
	assert.Equal(t, domain.VenvPoetry, info.Type)
	assert.True(t, info.Active)
}

func TestDetect_PoetryProjectWithUnrelatedVenvIsVirtualenv(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "pyproject.toml"),
		[]byte("[tool.poetry]\nname = \"demo\"\n"), 0o644))

	d := venv.New(envOf(nil), venv.WithHome(t.TempDir()))
	info := d.Detect(project, domain.PythonInfo{Prefix: "/home/u/.venvs/other", BasePrefix: "/usr"})
	assert.Equal(t, domain.VenvVirtualenv, info.Type)
}

func TestDetect_PipenvActive(t *testing.T) {
	d := venv.New(envOf(map[string]string{"PIPENV_ACTIVE": "1"}), venv.WithHome(t.TempDir()))
	info := d.Detect(t.TempDir(), domain.PythonInfo{Prefix: "/home/u/.local/share/virtualenvs/app-1", BasePrefix: "/usr"})
	assert.Equal(t, domain.VenvPipenv, info.Type)
}

func TestDetect_PipfileWithVenv(t *testing.T) {
	project := t.TempDir()
	touch(t, filepath.Join(project, "Pipfile"))

	d := venv.New(envOf(nil), venv.WithHome(t.TempDir()))
	info := d.Detect(project, domain.PythonInfo{Prefix: "/v/app", BasePrefix: "/usr"})
	assert.Equal(t, domain.VenvPipenv, info.Type)
}

func TestDetect_VirtualEnvVariable(t *testing.T) {
	d := venv.New(envOf(map[string]string{"VIRTUAL_ENV": "/p/.venv"}), venv.WithHome(t.TempDir()))
	info := d.Detect(t.TempDir(), systemPython)
	assert.Equal(t, domain.VenvVirtualenv, info.Type)
	assert.True(t, info.Active)
	assert.Equal(t, "/p/.venv", info.Path)
}

func TestDetect_InactiveProjectVenv(t *testing.T) {
	project := t.TempDir()
	touch(t, filepath.Join(project, ".venv", "pyvenv.cfg"))

	d := venv.New(envOf(nil), venv.WithHome(t.TempDir()))
	info := d.Detect(project, systemPython)
	assert.Equal(t, domain.VenvVirtualenv, info.Type)
	assert.False(t, info.Active)
	assert.Equal(t, filepath.Join(project, ".venv"), info.Path)
}

func TestFindProjectVenv_Order(t *testing.T) {
	project := t.TempDir()
	touch(t, filepath.Join(project, ".venv", "pyvenv.cfg"))
	touch(t, filepath.Join(project, "venv", "pyvenv.cfg"))

	path, ok := venv.FindProjectVenv(project)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(project, "venv"), path)
}
