// Package report builds the machine-readable scan report.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/abdidvp/harmonizer/internal/domain"
)

const (
	ReporterVersion = "1.0.0"
	FormatVersion   = "1.0"
)

type Report struct {
	Metadata    Metadata             `json:"metadata"`
	Project     Project              `json:"project"`
	OS          OS                   `json:"os"`
	Python      Python               `json:"python"`
	Venv        Venv                 `json:"virtual_environment"`
	Deps        Dependencies         `json:"dependencies"`
	ConfigFiles ConfigFiles          `json:"config_files"`
	Issues      Issues               `json:"issues"`
	Summary     Summary              `json:"summary"`
	Fixes       []domain.FixResult   `json:"fixes,omitempty"`
	Recommend   []string             `json:"recommendations,omitempty"`
	Performance []domain.PhaseTiming `json:"performance,omitempty"`
}

type Metadata struct {
	ScanID          string `json:"scan_id"`
	ScanTime        string `json:"scan_time"`
	ReporterVersion string `json:"reporter_version"`
	FormatVersion   string `json:"format_version"`
}

type Project struct {
	Path string `json:"path"`
}

type OS struct {
	Type       domain.OSType `json:"type"`
	Version    string        `json:"version"`
	WSLVersion string        `json:"wsl_version,omitempty"`
}

type Python struct {
	Version    string `json:"version"`
	Executable string `json:"executable"`
	Required   string `json:"required,omitempty"`
}

type Venv struct {
	Type   domain.VenvType `json:"type"`
	Active bool            `json:"active"`
	Path   string          `json:"path"`
	Name   string          `json:"name,omitempty"`
}

type Dependencies struct {
	RequirementsFile string   `json:"requirements_file"`
	TotalRequired    int      `json:"total_required"`
	TotalInstalled   int      `json:"total_installed"`
	TotalMissing     int      `json:"total_missing"`
	MissingPackages  []string `json:"missing_packages"`
}

type ConfigFiles struct {
	Found []string `json:"found"`
	Total int      `json:"total"`
}

type Issues struct {
	Total int            `json:"total"`
	Items []domain.Issue `json:"items"`
}

type Summary struct {
	TotalIssues   int  `json:"total_issues"`
	Errors        int  `json:"errors"`
	Warnings      int  `json:"warnings"`
	Info          int  `json:"info"`
	FixableIssues int  `json:"fixable_issues"`
	HasErrors     bool `json:"has_errors"`
	HasWarnings   bool `json:"has_warnings"`
}

// Option adjusts a report after it is built from the status.
type Option func(*Report)

// WithFixes attaches the results of a fix run.
func WithFixes(results []domain.FixResult) Option {
	return func(r *Report) { r.Fixes = results }
}

func WithRecommendations(recs []string) Option {
	return func(r *Report) { r.Recommend = recs }
}

// WithPerformance attaches per-phase scan timings.
func WithPerformance(timings []domain.PhaseTiming) Option {
	return func(r *Report) { r.Performance = timings }
}

// WithScanID pins the scan identifier instead of generating one.
func WithScanID(id string) Option {
	return func(r *Report) { r.Metadata.ScanID = id }
}

// Build converts a finished scan into a report. Package lists are sorted and
// issues keep detection order.
func Build(status domain.EnvironmentStatus, scanTime time.Time, opts ...Option) Report {
	sum := status.IssueSummary()
	missing := domain.SortedSet(status.MissingPackages)
	found := domain.SortedSet(status.ConfigFiles)
	issues := status.Issues
	if issues == nil {
		issues = []domain.Issue{}
	}

	r := Report{
		Metadata: Metadata{
			ScanID:          uuid.NewString(),
			ScanTime:        scanTime.Format(time.RFC3339),
			ReporterVersion: ReporterVersion,
			FormatVersion:   FormatVersion,
		},
		Project: Project{Path: status.ProjectPath},
		OS: OS{
			Type:       status.OSType,
			Version:    status.OSVersion,
			WSLVersion: status.WSLVersion,
		},
		Python: Python{
			Version:    status.PythonVersion,
			Executable: status.PythonExecutable,
			Required:   status.RequiredPython,
		},
		Venv: Venv{
			Type:   status.VenvType,
			Active: status.VenvActive,
			Path:   status.VenvPath,
			Name:   status.VenvName,
		},
		Deps: Dependencies{
			RequirementsFile: status.RequirementsFile,
			TotalRequired:    len(status.RequiredPackages),
			TotalInstalled:   len(status.InstalledPackages),
			TotalMissing:     len(missing),
			MissingPackages:  missing,
		},
		ConfigFiles: ConfigFiles{Found: found, Total: len(found)},
		Issues:      Issues{Total: len(issues), Items: issues},
		Summary: Summary{
			TotalIssues:   len(issues),
			Errors:        sum.Errors,
			Warnings:      sum.Warnings,
			Info:          sum.Info,
			FixableIssues: len(status.FixableIssues()),
			HasErrors:     status.HasErrors(),
			HasWarnings:   status.HasWarnings(),
		},
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

// Write encodes the report as indented JSON.
func Write(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
