package domain

import (
	"fmt"
	"time"
)

// Settings holds user-level configuration loaded from .harmonizer.json.
type Settings struct {
	ScanOS           bool     `koanf:"scan_os"           json:"scan_os"`
	ScanPython       bool     `koanf:"scan_python"       json:"scan_python"`
	ScanVenv         bool     `koanf:"scan_venv"         json:"scan_venv"`
	ScanDependencies bool     `koanf:"scan_dependencies" json:"scan_dependencies"`
	ScanConfigFiles  bool     `koanf:"scan_config_files" json:"scan_config_files"`
	ScanQuirks       bool     `koanf:"scan_quirks"       json:"scan_quirks"`
	Verbose          bool     `koanf:"verbose"           json:"verbose"`
	JSONOutput       bool     `koanf:"json_output"       json:"json_output"`
	ColorOutput      bool     `koanf:"color_output"      json:"color_output"`
	AutoFix          bool     `koanf:"auto_fix"          json:"auto_fix"`
	DryRun           bool     `koanf:"dry_run"           json:"dry_run"`
	ConfirmFixes     bool     `koanf:"confirm_fixes"     json:"confirm_fixes"`
	Timeout          int      `koanf:"timeout"           json:"timeout"`
	FollowSymlinks   bool     `koanf:"follow_symlinks"   json:"follow_symlinks"`
	MaxDepth         int      `koanf:"max_depth"         json:"max_depth"`
	PythonCandidates []string `koanf:"python_candidates" json:"python_candidates"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		ScanOS:           true,
		ScanPython:       true,
		ScanVenv:         true,
		ScanDependencies: true,
		ScanConfigFiles:  true,
		ScanQuirks:       true,
		ColorOutput:      true,
		ConfirmFixes:     true,
		Timeout:          5,
		MaxDepth:         3,
		PythonCandidates: []string{"python3", "python"},
	}
}

// CommandTimeout is the inspection timeout as a duration.
func (s Settings) CommandTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// EnabledPhases returns the phases switched on by the scan_* flags.
func (s Settings) EnabledPhases() []Phase {
	enabled := map[Phase]bool{
		PhaseOS:           s.ScanOS,
		PhasePython:       s.ScanPython,
		PhaseVenv:         s.ScanVenv,
		PhaseDependencies: s.ScanDependencies,
		PhaseConfig:       s.ScanConfigFiles,
		PhaseQuirks:       s.ScanQuirks,
	}
	var out []Phase
	for _, p := range AllPhases {
		if enabled[p] {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings for invalid values and returns a descriptive error.
func (s Settings) Validate() error {
	// 1. subprocess timeout must be positive
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (got %d)", s.Timeout)
	}

	// 2. scan depth cannot be negative
	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0 (got %d)", s.MaxDepth)
	}

	// 3. auto_fix applies changes, dry_run forbids them
	if s.AutoFix && s.DryRun {
		return fmt.Errorf("auto_fix and dry_run cannot both be enabled")
	}

	// 4. at least one interpreter name to probe
	if len(s.PythonCandidates) == 0 {
		return fmt.Errorf("python_candidates must not be empty")
	}

	return nil
}
