package domain

import (
	"context"
	"time"
)

// CommandResult is the normalized outcome of a subprocess. Failures of any
// kind (missing binary, timeout, non-zero exit) set Success to false and
// never surface as a Go error.
type CommandResult struct {
	Success  bool   `json:"success"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// Subprocess timeouts shared by detectors and fixers.
const (
	InspectTimeout = 5 * time.Second
	ListTimeout    = 10 * time.Second
	VenvTimeout    = 60 * time.Second
	InstallTimeout = 300 * time.Second
)

// CommandRunner executes an argument vector with a timeout.
type CommandRunner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) CommandResult
}

// Confirmer asks the user to approve a change.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// PhaseObserver receives per-phase timings.
type PhaseObserver interface {
	ObservePhase(phase Phase, elapsed time.Duration, issues int)
}

// FixObserver receives the results of a fix run.
type FixObserver interface {
	RecordFixes(results []FixResult)
}

// OSDetector classifies the host platform.
type OSDetector interface {
	Detect(ctx context.Context) OSInfo
}

// PythonDetector probes the interpreter and the project's version requirement.
type PythonDetector interface {
	Detect(ctx context.Context) PythonInfo
	Requirement(projectPath string) (PythonRequirement, bool)
	// Satisfies reports whether current meets the minimum required
	// version. An error means one of the versions could not be parsed.
	Satisfies(current, required string) (bool, error)
}

// VenvDetector identifies the virtual environment in use.
type VenvDetector interface {
	Detect(projectPath string, py PythonInfo) VenvInfo
}

// DependencyDetector compares declared and installed packages.
type DependencyDetector interface {
	Scan(ctx context.Context, projectPath, python string) DependencyInfo
}

// ConfigDetector evaluates the project's configuration files.
type ConfigDetector interface {
	Scan(projectPath string) ConfigReport
}

// QuirksDetector reports platform-specific pitfalls.
type QuirksDetector interface {
	Detect(projectPath string, osType OSType) QuirkReport
}
