package domain

import "path/filepath"

// OSInfo is the raw record produced by the OS detector.
type OSInfo struct {
	Type         OSType `json:"type"`
	Version      string `json:"version"`
	WSLVersion   string `json:"wsl_version"`
	Distribution string `json:"distribution,omitempty"`
}

// PythonInfo describes the interpreter the project would run with.
type PythonInfo struct {
	Found          bool   `json:"found"`
	Version        string `json:"version"`
	Executable     string `json:"executable"`
	Prefix         string `json:"prefix"`
	BasePrefix     string `json:"base_prefix"`
	Implementation string `json:"implementation,omitempty"`
}

// InVirtualEnv reports whether the interpreter runs inside a venv.
func (p PythonInfo) InVirtualEnv() bool {
	return p.Prefix != "" && p.BasePrefix != "" && p.Prefix != p.BasePrefix
}

// PythonRequirement is a project-declared minimum interpreter version.
type PythonRequirement struct {
	Version string `json:"version"`
	Source  string `json:"source"`
}

// VenvInfo is the raw record produced by the venv detector.
type VenvInfo struct {
	Type   VenvType `json:"type"`
	Active bool     `json:"active"`
	Path   string   `json:"path,omitempty"`
	Name   string   `json:"name,omitempty"`
}

// NoVenv is the result when no marker matched.
var NoVenv = VenvInfo{Type: VenvNone}

// DependencyInfo is the raw record produced by the dependency detector.
type DependencyInfo struct {
	RequirementsFile string   `json:"requirements_file,omitempty"`
	Required         []string `json:"required_packages"`
	Installed        []string `json:"installed_packages"`
	Missing          []string `json:"missing_packages"`
}

// ConfigReport is the raw record produced by the config detector.
type ConfigReport struct {
	Found              []string            `json:"found"`
	MissingRequired    []string            `json:"missing_required"`
	MissingRecommended []string            `json:"missing_recommended"`
	ByCategory         map[string][]string `json:"by_category"`
	TotalChecked       int                 `json:"total_checked"`
	TotalFound         int                 `json:"total_found"`
	Issues             []Issue             `json:"issues"`
}

// QuirkReport is the raw record produced by the quirks detector.
type QuirkReport struct {
	Issues          []Issue  `json:"issues"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ProjectVenvDirs are the directory names searched for an in-project venv.
var ProjectVenvDirs = []string{"venv", "env", ".venv", "virtualenv", ".env"}

// VenvPythonCandidates lists the interpreter paths a venv may contain, in
// lookup order.
func VenvPythonCandidates(venvPath string) []string {
	return []string{
		filepath.Join(venvPath, "bin", "python3"),
		filepath.Join(venvPath, "bin", "python"),
		filepath.Join(venvPath, "Scripts", "python.exe"),
	}
}
