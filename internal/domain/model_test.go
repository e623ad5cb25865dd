package domain_test

import (
	"testing"

	"github.com/abdidvp/harmonizer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvironmentStatus_Defaults(t *testing.T) {
	s := domain.NewEnvironmentStatus("/tmp/project")
	assert.Equal(t, domain.OSUnknown, s.OSType)
	assert.Equal(t, "Unknown", s.OSVersion)
	assert.Equal(t, "Unknown", s.PythonVersion)
	assert.Equal(t, domain.VenvNone, s.VenvType)
	assert.Empty(t, s.VenvPath)
	assert.Empty(t, s.Issues)
	assert.False(t, s.HasErrors())
	assert.False(t, s.HasWarnings())
}

func TestEnvironmentStatus_IssueSummary(t *testing.T) {
	s := domain.NewEnvironmentStatus(".")
	s.AddIssue(domain.SeverityError, domain.CategoryDependency, "missing", true, "pip install -r requirements.txt")
	s.AddIssue(domain.SeverityWarning, domain.CategoryVenv, "inactive", true, "activate")
	s.AddIssue(domain.SeverityWarning, domain.CategoryGitignore, "no gitignore", false, "")
	s.AddIssue(domain.SeverityInfo, domain.CategoryPath, "space", false, "")

	assert.Equal(t, domain.IssueSummary{Errors: 1, Warnings: 2, Info: 1}, s.IssueSummary())
	assert.True(t, s.HasErrors())
	assert.True(t, s.HasWarnings())
	assert.Len(t, s.FixableIssues(), 2)
}

func TestEnvironmentStatus_IssuesKeepDetectionOrder(t *testing.T) {
	s := domain.NewEnvironmentStatus(".")
	s.AddIssue(domain.SeverityInfo, "a", "first", false, "")
	s.AddIssue(domain.SeverityError, "b", "second", false, "")
	s.AddIssue(domain.SeverityWarning, "a", "third", false, "")

	assert.Equal(t, "first", s.Issues[0].Message)
	assert.Equal(t, "second", s.Issues[1].Message)
	assert.Equal(t, "third", s.Issues[2].Message)

	groups := domain.GroupByCategory(s.Issues)
	require.Len(t, groups, 2)
	assert.Equal(t, "a", groups[0].Category)
	assert.Equal(t, "b", groups[1].Category)
	require.Len(t, groups[0].Issues, 2)
	assert.Equal(t, "third", groups[0].Issues[1].Message)
	assert.Empty(t, domain.GroupByCategory(nil))
}

func TestEnvironmentStatus_SetVenvNoneClearsPath(t *testing.T) {
	s := domain.NewEnvironmentStatus(".")
	s.SetVenv(domain.VenvInfo{Type: domain.VenvNone, Active: true, Path: "/x", Name: "x"})
	assert.Equal(t, domain.VenvNone, s.VenvType)
	assert.False(t, s.VenvActive)
	assert.Empty(t, s.VenvPath)
	assert.Empty(t, s.VenvName)

	s.SetVenv(domain.VenvInfo{Type: domain.VenvConda, Active: true, Path: "/opt/conda", Name: "base"})
	assert.Equal(t, "/opt/conda", s.VenvPath)
	assert.Equal(t, "base", s.VenvName)
}

func TestParseOSType(t *testing.T) {
	assert.Equal(t, domain.OSWSL, domain.ParseOSType("WSL"))
	assert.Equal(t, domain.OSMacOS, domain.ParseOSType("macos"))
	assert.Equal(t, domain.OSUnknown, domain.ParseOSType("plan9"))
	assert.Equal(t, domain.OSWindowsNative, domain.ParseOSType(" Windows_Native "))
}

func TestLowerSet(t *testing.T) {
	assert.Equal(t, []string{"flask", "numpy"}, domain.LowerSet([]string{"NumPy", "Flask", "flask", ""}))
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, domain.SeverityError.Rank(), domain.SeverityWarning.Rank())
	assert.Less(t, domain.SeverityWarning.Rank(), domain.SeverityInfo.Rank())
}

func TestPythonInfo_InVirtualEnv(t *testing.T) {
	assert.True(t, domain.PythonInfo{Prefix: "/p/venv", BasePrefix: "/usr"}.InVirtualEnv())
	assert.False(t, domain.PythonInfo{Prefix: "/usr", BasePrefix: "/usr"}.InVirtualEnv())
	assert.False(t, domain.PythonInfo{}.InVirtualEnv())
}

func TestSummarizeFixes(t *testing.T) {
	s := domain.SummarizeFixes([]domain.FixResult{{Success: true}, {Success: false}, {Success: true}})
	assert.Equal(t, domain.FixSummary{Succeeded: 2, Failed: 1}, s)
}
