package domain

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rank orders severities for display, errors first.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Issue represents a problem found during a scan.
type Issue struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Message    string   `json:"message"`
	Fixable    bool     `json:"fixable"`
	FixCommand string   `json:"fix_command,omitempty"`
}

// Issue categories.
const (
	CategoryOS             = "os"
	CategoryPython         = "python"
	CategoryPythonVersion  = "python_version"
	CategoryVenv           = "venv"
	CategoryDependency     = "dependency"
	CategoryConfig         = "config"
	CategorySecurity       = "security"
	CategoryGitignore      = "gitignore"
	CategoryWSLPerformance = "wsl_performance"
	CategoryWSLPath        = "wsl_path"
	CategoryWSLInterop     = "wsl_interop"
	CategoryGitConfig      = "git_config"
	CategoryCrossPlatform  = "cross_platform"
	CategoryWindowsPath    = "windows_path"
	CategoryPath           = "path"
	CategoryScan           = "scan"
)
