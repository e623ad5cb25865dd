package bootstrap_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/harmonizer/internal/application"
	"github.com/abdidvp/harmonizer/internal/bootstrap"
	"github.com/abdidvp/harmonizer/internal/domain"
)

func requirePython(t *testing.T) string {
	t.Helper()
	py, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not on PATH")
	}
	return py
}

func interpreterVersion(t *testing.T, py string) string {
	t.Helper()
	out, err := exec.Command(py, "-c", "import platform; print(platform.python_version())").Output()
	require.NoError(t, err)
	return strings.TrimSpace(string(out))
}

func TestScan_ReportsRealInterpreter(t *testing.T) {
	py := requirePython(t)
	svc := bootstrap.New(bootstrap.Options{Settings: domain.DefaultSettings()})
	defer svc.Close()

	status, err := svc.Scan.Scan(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)

	assert.Contains(t, []domain.OSType{
		domain.OSWindowsNative, domain.OSWSL, domain.OSLinux, domain.OSMacOS, domain.OSUnknown,
	}, status.OSType)
	assert.Equal(t, interpreterVersion(t, py), status.PythonVersion)

	timings, err := svc.Metrics.Timings()
	require.NoError(t, err)
	assert.Len(t, timings, len(domain.AllPhases))
}

func TestEmptyProject_ScanFixRescan(t *testing.T) {
	requirePython(t)
	for _, key := range []string{"VIRTUAL_ENV", "CONDA_DEFAULT_ENV", "CONDA_PREFIX"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	svc := bootstrap.New(bootstrap.Options{Settings: domain.DefaultSettings()})
	defer svc.Close()
	ctx := context.Background()

	status, err := svc.Scan.Scan(ctx, dir, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, status.FixableIssues())
	if status.VenvType == domain.VenvNone {
		var venvFixes []domain.Issue
		for _, i := range status.FixableIssues() {
			if i.Category == domain.CategoryVenv {
				venvFixes = append(venvFixes, i)
			}
		}
		require.Len(t, venvFixes, 1)
		assert.Equal(t, domain.SeverityWarning, venvFixes[0].Severity)
		assert.Equal(t, "python3 -m venv venv", venvFixes[0].FixCommand)
	}

	results := svc.Fix.ApplyAll(ctx, status, domain.FixOptions{AutoYes: true})
	byFixer := map[string][]domain.FixResult{}
	for _, r := range results {
		byFixer[r.Fixer] = append(byFixer[r.Fixer], r)
	}

	require.Len(t, byFixer["ConfigFixer"], 2)
	for _, r := range byFixer["ConfigFixer"] {
		assert.True(t, r.Success, r.Message)
	}
	assert.FileExists(t, filepath.Join(dir, ".gitignore"))
	assert.FileExists(t, filepath.Join(dir, ".editorconfig"))

	if status.VenvType == domain.VenvNone {
		created := byFixer["VenvFixer"][0]
		if !created.Success && strings.Contains(created.Message, "ensurepip") {
			t.Skip("python3 cannot create virtual environments here")
		}
		require.True(t, created.Success, created.Message)
		assert.FileExists(t, filepath.Join(dir, "venv", "pyvenv.cfg"))
		assert.True(t, strings.HasPrefix(application.PythonExecutable(status), filepath.Join(dir, "venv")+string(filepath.Separator)),
			"fixers should now run the project venv interpreter, got %s", application.PythonExecutable(status))
	}
	require.Len(t, byFixer["DependencyFixer"], 1)
	assert.Equal(t, "DependencyFixer: No applicable fixes", byFixer["DependencyFixer"][0].Message)

	again, err := svc.Scan.Scan(ctx, dir, nil)
	require.NoError(t, err)
	for _, i := range again.Issues {
		assert.NotEqual(t, domain.CategoryGitignore, i.Category, i.Message)
	}
	assert.Contains(t, again.ConfigFiles, ".gitignore")
	assert.Contains(t, again.ConfigFiles, ".editorconfig")
}

func TestMetricsFileWrittenOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harmonizer.prom")
	svc := bootstrap.New(bootstrap.Options{Settings: domain.DefaultSettings(), MetricsFile: path})

	_, err := svc.Scan.Scan(context.Background(), t.TempDir(), []domain.Phase{domain.PhaseConfig})
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `harmonizer_phase_duration_seconds_count{phase="config"} 1`)
}

func TestRecommendations_ConfigThenPlatform(t *testing.T) {
	status := domain.NewEnvironmentStatus(t.TempDir())
	status.OSType = domain.OSWSL

	recs := bootstrap.Recommendations(status)

	require.NotEmpty(t, recs)
	assert.Equal(t, "Add .gitignore: Prevents committing unwanted files to version control", recs[0])
	assert.Contains(t, recs, "Configure git: core.autocrlf=input for proper line endings")
}
