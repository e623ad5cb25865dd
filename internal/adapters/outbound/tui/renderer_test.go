package tui_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/tui"
	"github.com/abdidvp/harmonizer/internal/domain"
)

var plain = tui.NewRenderer(false)

func sampleStatus() domain.EnvironmentStatus {
	s := domain.NewEnvironmentStatus("/home/user/project")
	s.OSType = domain.OSWSL
	s.OSVersion = "Ubuntu 22.04.1 LTS"
	s.PythonVersion = "3.10.6"
	s.PythonExecutable = "/usr/bin/python3"
	s.SetVenv(domain.VenvInfo{Type: domain.VenvVirtualenv, Path: "/home/user/project/venv"})
	s.ConfigFiles = []string{".gitignore", "README.md", "requirements.txt"}
	s.RequirementsFile = "/home/user/project/requirements.txt"
	s.InstalledPackages = []string{"flask"}
	s.MissingPackages = []string{"a", "b", "c", "d", "e", "f", "g"}
	s.AddIssue(domain.SeverityInfo, domain.CategoryConfig, "Consider adding .editorconfig", false, "")
	s.AddIssue(domain.SeverityWarning, domain.CategoryWSLPerformance, "Project on Windows filesystem", false, "")
	s.AddIssue(domain.SeverityError, domain.CategoryDependency, "7 required package(s) not installed", true, "pip install -r requirements.txt")
	s.AddIssue(domain.SeverityWarning, domain.CategoryVenv, "Virtual environment detected (virtualenv) but not active", true, "Activate virtual environment at /home/user/project/venv")
	return s
}

func TestStatus_Sections(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	out := plain.Status(sampleStatus(), tui.ReportOptions{ScanTime: at})

	for _, want := range []string{
		"ENVIRONMENT HARMONIZER",
		"Project Path: /home/user/project",
		"Scan Time: 2026-03-01 09:30:00",
		"[OS ENVIRONMENT]",
		"Type: wsl",
		"[PYTHON ENVIRONMENT]",
		"Executable: /usr/bin/python3",
		"[VIRTUAL ENVIRONMENT]",
		"Active: No",
		"Path: /home/user/project/venv",
		"[DEPENDENCIES]",
		"Missing Packages: 7",
		"... and 2 more",
		"[CONFIGURATION FILES]",
		"Found: 3 files",
		"[DETECTED ISSUES] (4 total)",
		"Fix: pip install -r requirements.txt",
		"[FIXABLE ISSUES] - 2 issue(s) can be automatically fixed",
		"Dependency (1 fix):",
		"Summary: 1 error(s), 2 warning(s), 1 info",
		"Run `harmonizer fix` to apply 2 automated fix(es)",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "color disabled")
}

func TestStatus_IssuesSortedBySeverityThenDetection(t *testing.T) {
	out := plain.Status(sampleStatus(), tui.ReportOptions{})

	errAt := strings.Index(out, "[ERROR] 7 required")
	warnFirst := strings.Index(out, "[WARNING] Project on Windows")
	warnSecond := strings.Index(out, "[WARNING] Virtual environment detected")
	infoAt := strings.Index(out, "[INFO] Consider adding")

	require.True(t, errAt >= 0 && warnFirst >= 0 && warnSecond >= 0 && infoAt >= 0, out)
	assert.Less(t, errAt, warnFirst)
	assert.Less(t, warnFirst, warnSecond)
	assert.Less(t, warnSecond, infoAt)
}

func TestStatus_Healthy(t *testing.T) {
	s := domain.NewEnvironmentStatus("/p")
	out := plain.Status(s, tui.ReportOptions{Recommendations: []string{"Keep projects in the Linux filesystem"}})

	assert.Contains(t, out, "[NO ISSUES DETECTED]")
	assert.Contains(t, out, "No requirements file found")
	assert.Contains(t, out, "No config files detected")
	assert.Contains(t, out, "[RECOMMENDATIONS]")
	assert.Contains(t, out, "Keep projects in the Linux filesystem")
	assert.Contains(t, out, "No issues detected - environment is healthy!")
	assert.NotContains(t, out, "[FIXABLE ISSUES]")
}

func TestStatus_Performance(t *testing.T) {
	out := plain.Status(sampleStatus(), tui.ReportOptions{Timings: []domain.PhaseTiming{
		{Phase: "os", Runs: 1, Seconds: 0.25, Issues: 1},
		{Phase: "dependencies", Runs: 1, Seconds: 1.5, Issues: 1},
	}})

	require.Contains(t, out, "[PERFORMANCE]")
	assert.Contains(t, out, "os               0.250s  1 issue(s)")
	assert.Contains(t, out, "dependencies     1.500s  1 issue(s)")
	assert.Contains(t, out, "total            1.750s")
	assert.Less(t, strings.Index(out, "[PERFORMANCE]"), strings.Index(out, "Summary:"))
}

func TestStatus_NoPerformanceWithoutTimings(t *testing.T) {
	assert.NotContains(t, plain.Status(sampleStatus(), tui.ReportOptions{}), "[PERFORMANCE]")
}

func TestFixes_GroupsByFixer(t *testing.T) {
	out := plain.Fixes([]domain.FixResult{
		{Fixer: "ConfigFixer", Success: true, Message: "Created .gitignore with Python-specific patterns"},
		{Fixer: "VenvFixer", Success: false, Message: "Failed to create venv: boom", Command: "python3 -m venv /p/venv"},
		{Fixer: "ConfigFixer", Success: true, Message: "Created .editorconfig for consistent coding style"},
	})

	configAt := strings.Index(out, "Config Fixer")
	venvAt := strings.Index(out, "Venv Fixer")
	require.True(t, configAt >= 0 && venvAt >= 0, out)
	assert.Less(t, configAt, venvAt)
	assert.Less(t, strings.Index(out, "Created .editorconfig"), venvAt, "config results stay together")
	assert.Contains(t, out, "✗ Failed to create venv: boom")
	assert.Contains(t, out, "$ python3 -m venv /p/venv")
	assert.Contains(t, out, "Summary: 2 succeeded, 1 failed")
	assert.NotContains(t, out, "[DRY-RUN]")
}

func TestFixes_DryRunAndMultiline(t *testing.T) {
	out := plain.Fixes([]domain.FixResult{{
		Fixer:   "VenvFixer",
		Success: true,
		DryRun:  true,
		Message: "IMPORTANT: Virtual environment activation instructions\nTo activate this virtual environment:\n  bash: source /p/venv/bin/activate",
	}})

	assert.Contains(t, out, "[DRY-RUN]")
	assert.Contains(t, out, "✓ IMPORTANT: Virtual environment activation instructions")
	assert.Contains(t, out, "bash: source /p/venv/bin/activate")
}

func TestFixes_Empty(t *testing.T) {
	assert.Contains(t, plain.Fixes(nil), "No fixes were attempted.")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Dependency Fixer", tui.DisplayName("DependencyFixer"))
	assert.Equal(t, "Fixer", tui.DisplayName(""))
}
