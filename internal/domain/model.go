package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidProject is returned when the project path does not name a
// readable directory. It is the only error a scan returns.
var ErrInvalidProject = errors.New("invalid project path")

// OSType classifies the host platform.
type OSType string

const (
	OSWindowsNative OSType = "windows_native"
	OSWSL           OSType = "wsl"
	OSLinux         OSType = "linux"
	OSMacOS         OSType = "macos"
	OSUnknown       OSType = "unknown"
)

// ParseOSType maps a string to an OSType, returning OSUnknown for anything
// outside the closed set.
func ParseOSType(s string) OSType {
	switch t := OSType(strings.ToLower(strings.TrimSpace(s))); t {
	case OSWindowsNative, OSWSL, OSLinux, OSMacOS:
		return t
	default:
		return OSUnknown
	}
}

// DisplayName is the human-readable platform name.
func (t OSType) DisplayName() string {
	switch t {
	case OSWindowsNative:
		return "Windows (native)"
	case OSWSL:
		return "WSL"
	case OSLinux:
		return "Linux"
	case OSMacOS:
		return "macOS"
	default:
		return "Unknown"
	}
}

// VenvType classifies the virtual environment tool in use.
type VenvType string

const (
	VenvVirtualenv VenvType = "virtualenv"
	VenvConda      VenvType = "conda"
	VenvPipenv     VenvType = "pipenv"
	VenvPoetry     VenvType = "poetry"
	VenvPipx       VenvType = "pipx"
	VenvNone       VenvType = "none"
)

// EnvironmentStatus is the aggregate produced by one scan. The scanner owns
// it while phases run; afterwards callers must treat it as read-only.
type EnvironmentStatus struct {
	OSType               OSType            `json:"os_type"`
	OSVersion            string            `json:"os_version"`
	WSLVersion           string            `json:"wsl_version,omitempty"`
	PythonVersion        string            `json:"python_version"`
	PythonExecutable     string            `json:"python_executable"`
	RequiredPython       string            `json:"required_python,omitempty"`
	VenvType             VenvType          `json:"venv_type"`
	VenvActive           bool              `json:"venv_active"`
	VenvPath             string            `json:"venv_path,omitempty"`
	VenvName             string            `json:"venv_name,omitempty"`
	ProjectPath          string            `json:"project_path"`
	ConfigFiles          []string          `json:"config_files"`
	RequirementsFile     string            `json:"requirements_file,omitempty"`
	RequiredPackages     []string          `json:"required_packages"`
	InstalledPackages    []string          `json:"installed_packages"`
	MissingPackages      []string          `json:"missing_packages"`
	Issues               []Issue           `json:"issues"`
	PathVariables        map[string]string `json:"path_variables"`
	EnvironmentVariables map[string]string `json:"environment_variables"`
}

// NewEnvironmentStatus returns the empty status a scan starts from.
func NewEnvironmentStatus(projectPath string) EnvironmentStatus {
	return EnvironmentStatus{
		OSType:               OSUnknown,
		OSVersion:            "Unknown",
		PythonVersion:        "Unknown",
		VenvType:             VenvNone,
		ProjectPath:          projectPath,
		ConfigFiles:          []string{},
		RequiredPackages:     []string{},
		InstalledPackages:    []string{},
		MissingPackages:      []string{},
		Issues:               []Issue{},
		PathVariables:        map[string]string{},
		EnvironmentVariables: map[string]string{},
	}
}

// AddIssue appends an issue. Issues are never removed or reordered.
func (s *EnvironmentStatus) AddIssue(severity Severity, category, message string, fixable bool, fixCommand string) {
	s.Issues = append(s.Issues, Issue{
		Severity:   severity,
		Category:   category,
		Message:    message,
		Fixable:    fixable,
		FixCommand: fixCommand,
	})
}

// SetVenv records venv detection, keeping the path empty for VenvNone.
func (s *EnvironmentStatus) SetVenv(info VenvInfo) {
	s.VenvType = info.Type
	s.VenvActive = info.Active
	s.VenvPath = info.Path
	s.VenvName = info.Name
	if info.Type == VenvNone {
		s.VenvActive = false
		s.VenvPath = ""
		s.VenvName = ""
	}
}

func (s EnvironmentStatus) HasErrors() bool {
	return s.countSeverity(SeverityError) > 0
}

func (s EnvironmentStatus) HasWarnings() bool {
	return s.countSeverity(SeverityWarning) > 0
}

// FixableIssues returns the fixable issues in detection order.
func (s EnvironmentStatus) FixableIssues() []Issue {
	var out []Issue
	for _, i := range s.Issues {
		if i.Fixable {
			out = append(out, i)
		}
	}
	return out
}

// IssueSummary counts issues per severity.
type IssueSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

func (s EnvironmentStatus) IssueSummary() IssueSummary {
	return IssueSummary{
		Errors:   s.countSeverity(SeverityError),
		Warnings: s.countSeverity(SeverityWarning),
		Info:     s.countSeverity(SeverityInfo),
	}
}

// IssueGroup is the issues of one category.
type IssueGroup struct {
	Category string
	Issues   []Issue
}

// GroupByCategory groups issues by category. Groups appear in the order
// their first issue does, and issues keep their order within a group.
func GroupByCategory(issues []Issue) []IssueGroup {
	var groups []IssueGroup
	index := make(map[string]int)
	for _, i := range issues {
		n, ok := index[i.Category]
		if !ok {
			n = len(groups)
			index[i.Category] = n
			groups = append(groups, IssueGroup{Category: i.Category})
		}
		groups[n].Issues = append(groups[n].Issues, i)
	}
	return groups
}

func (s EnvironmentStatus) countSeverity(sev Severity) int {
	n := 0
	for _, i := range s.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// SortedSet deduplicates and sorts names, dropping empty entries.
func SortedSet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LowerSet lowercases, deduplicates and sorts package names.
func LowerSet(names []string) []string {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(n)))
	}
	return SortedSet(lowered)
}
