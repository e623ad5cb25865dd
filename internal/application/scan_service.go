package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// Detectors bundles one detector per scan phase.
type Detectors struct {
	OS     domain.OSDetector
	Python domain.PythonDetector
	Venv   domain.VenvDetector
	Deps   domain.DependencyDetector
	Config domain.ConfigDetector
	Quirks domain.QuirksDetector
}

// TrackedVariables are the environment variables copied into a status when
// they are set.
var TrackedVariables = []string{
	"VIRTUAL_ENV",
	"CONDA_PREFIX",
	"CONDA_DEFAULT_ENV",
	"PIPENV_ACTIVE",
	"POETRY_ACTIVE",
	"WSLENV",
	"WSL_DISTRO_NAME",
	"PIPX_HOME",
	"PATH",
}

// ScanService orchestrates the scan pipeline:
// os -> python -> venv -> dependencies -> config -> quirks.
type ScanService struct {
	detectors Detectors
	rt        *Runtime
	lookupEnv func(string) (string, bool)
	lookPath  func(string) (string, error)
}

// ScanOption customizes a ScanService.
type ScanOption func(*ScanService)

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) ScanOption {
	return func(s *ScanService) { s.lookupEnv = fn }
}

// WithScanLookPath replaces the PATH lookup used to pick an interpreter.
func WithScanLookPath(fn func(string) (string, error)) ScanOption {
	return func(s *ScanService) { s.lookPath = fn }
}

func NewScanService(d Detectors, rt *Runtime, opts ...ScanOption) *ScanService {
	s := &ScanService{
		detectors: d,
		rt:        rt,
		lookupEnv: os.LookupEnv,
		lookPath:  defaultLookPath,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Scan runs the selected phases against projectPath. A nil or empty phase
// list runs every phase. Phases always execute in domain.AllPhases order
// regardless of the order given. The only error returned is
// domain.ErrInvalidProject.
func (s *ScanService) Scan(ctx context.Context, projectPath string, phases []domain.Phase) (domain.EnvironmentStatus, error) {
	// 1. Validate the project root
	root, err := resolveProject(projectPath)
	if err != nil {
		return domain.EnvironmentStatus{}, fmt.Errorf("scanning project: %w", err)
	}

	// 2. Start from an empty status
	run := &scanRun{
		svc:    s,
		log:    s.rt.logger().With(zap.String("project", root)),
		status: domain.NewEnvironmentStatus(root),
	}
	run.captureEnvironment()

	// 3. Run phases in fixed order
	selected := domain.SelectPhases(phases, nil)
	for _, phase := range selected {
		if ctx.Err() != nil {
			run.log.Debug("scan interrupted", zap.String("next_phase", string(phase)))
			break
		}
		run.runPhase(ctx, phase)
	}

	run.log.Debug("scan complete",
		zap.Int("phases", len(selected)),
		zap.Int("issues", len(run.status.Issues)),
	)
	return run.status, nil
}

func resolveProject(projectPath string) (string, error) {
	if strings.TrimSpace(projectPath) == "" {
		projectPath = "."
	}
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidProject, projectPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s does not exist", domain.ErrInvalidProject, abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidProject, abs)
	}
	return abs, nil
}

// scanRun holds the state of a single scan. Detection results that a later
// phase depends on are cached so a skipped phase can still be resolved on
// demand without being recorded in the status.
type scanRun struct {
	svc    *ScanService
	log    *zap.Logger
	status domain.EnvironmentStatus

	osInfo *domain.OSInfo
	py     *domain.PythonInfo
}

func (r *scanRun) runPhase(ctx context.Context, phase domain.Phase) {
	before := len(r.status.Issues)
	start := time.Now()

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Warn("phase panicked", zap.String("phase", string(phase)), zap.Any("panic", rec))
				r.status.AddIssue(domain.SeverityError, domain.CategoryScan,
					fmt.Sprintf("%s phase failed: %v", phase, rec), false, "")
			}
		}()
		switch phase {
		case domain.PhaseOS:
			r.scanOS(ctx)
		case domain.PhasePython:
			r.scanPython(ctx)
		case domain.PhaseVenv:
			r.scanVenv(ctx)
		case domain.PhaseDependencies:
			r.scanDependencies(ctx)
		case domain.PhaseConfig:
			r.scanConfig()
		case domain.PhaseQuirks:
			r.scanQuirks(ctx)
		}
	}()

	elapsed := time.Since(start)
	added := len(r.status.Issues) - before
	r.svc.rt.observer().ObservePhase(phase, elapsed, added)
	r.log.Debug("phase done",
		zap.String("phase", string(phase)),
		zap.Duration("elapsed", elapsed),
		zap.Int("issues", added),
	)
}

func (r *scanRun) captureEnvironment() {
	for _, name := range TrackedVariables {
		v, ok := r.svc.lookupEnv(name)
		if !ok {
			continue
		}
		r.status.EnvironmentVariables[name] = v
		if name != "PATH" {
			continue
		}
		i := 0
		for _, entry := range filepath.SplitList(v) {
			if entry == "" {
				continue
			}
			r.status.PathVariables[fmt.Sprintf("PATH_%03d", i)] = entry
			i++
		}
	}
}

func (r *scanRun) detectOS(ctx context.Context) domain.OSInfo {
	if r.osInfo == nil {
		info := r.svc.detectors.OS.Detect(ctx)
		r.osInfo = &info
	}
	return *r.osInfo
}

func (r *scanRun) detectPython(ctx context.Context) domain.PythonInfo {
	if r.py == nil {
		info := r.svc.detectors.Python.Detect(ctx)
		r.py = &info
	}
	return *r.py
}

func (r *scanRun) scanOS(ctx context.Context) {
	info := r.detectOS(ctx)
	r.status.OSType = info.Type
	r.status.OSVersion = info.Version
	r.status.WSLVersion = info.WSLVersion
	if r.status.OSVersion == "" {
		r.status.OSVersion = "Unknown"
	}
}

func (r *scanRun) scanPython(ctx context.Context) {
	py := r.detectPython(ctx)
	r.status.PythonVersion = py.Version
	r.status.PythonExecutable = py.Executable
	if !py.Found {
		r.status.AddIssue(domain.SeverityError, domain.CategoryPython,
			"No Python interpreter found on PATH", false, "")
		return
	}

	req, ok := r.svc.detectors.Python.Requirement(r.status.ProjectPath)
	if !ok {
		return
	}
	r.status.RequiredPython = req.Version
	r.log.Debug("python requirement", zap.String("version", req.Version), zap.String("source", req.Source))

	satisfied, err := r.svc.detectors.Python.Satisfies(py.Version, req.Version)
	switch {
	case err != nil:
		r.status.AddIssue(domain.SeverityWarning, domain.CategoryPythonVersion,
			fmt.Sprintf("Could not parse Python version requirement: %s", req.Version), false, "")
	case !satisfied:
		r.status.AddIssue(domain.SeverityError, domain.CategoryPythonVersion,
			fmt.Sprintf("Python version mismatch: current %s, required %s+", py.Version, req.Version), false, "")
	}
}

func (r *scanRun) scanVenv(ctx context.Context) {
	info := r.svc.detectors.Venv.Detect(r.status.ProjectPath, r.detectPython(ctx))
	r.status.SetVenv(info)

	switch {
	case r.status.VenvType == domain.VenvNone:
		r.status.AddIssue(domain.SeverityWarning, domain.CategoryVenv,
			"No virtual environment detected", true, "python3 -m venv venv")
	case !r.status.VenvActive:
		path := r.status.VenvPath
		if path == "" {
			path = "unknown"
		}
		r.status.AddIssue(domain.SeverityWarning, domain.CategoryVenv,
			fmt.Sprintf("Virtual environment detected (%s) but not active", r.status.VenvType), true,
			fmt.Sprintf("Activate virtual environment at %s", path))
	}
}

func (r *scanRun) scanDependencies(ctx context.Context) {
	fallback := r.status.PythonExecutable
	if fallback == "" {
		fallback = r.detectPython(ctx).Executable
	}
	python := resolveInterpreter(r.status, fallback, r.svc.lookPath)

	info := r.svc.detectors.Deps.Scan(ctx, r.status.ProjectPath, python)
	r.status.RequirementsFile = info.RequirementsFile
	r.status.RequiredPackages = domain.LowerSet(info.Required)
	r.status.InstalledPackages = domain.LowerSet(info.Installed)
	r.status.MissingPackages = domain.LowerSet(info.Missing)

	switch {
	case len(r.status.MissingPackages) > 0:
		fixCommand := ""
		if r.status.RequirementsFile != "" {
			fixCommand = "pip install -r " + r.status.RequirementsFile
		}
		r.status.AddIssue(domain.SeverityError, domain.CategoryDependency,
			fmt.Sprintf("%d required package(s) not installed: %s",
				len(r.status.MissingPackages), strings.Join(firstN(r.status.MissingPackages, 5), ", ")),
			true, fixCommand)
	case r.status.RequirementsFile == "":
		r.status.AddIssue(domain.SeverityInfo, domain.CategoryDependency,
			"No dependency file found (requirements.txt, pyproject.toml, etc.)", false, "")
	}
}

func (r *scanRun) scanConfig() {
	report := r.svc.detectors.Config.Scan(r.status.ProjectPath)
	r.status.ConfigFiles = domain.SortedSet(report.Found)
	r.status.Issues = append(r.status.Issues, report.Issues...)

	if len(report.MissingRequired) > 0 {
		r.status.AddIssue(domain.SeverityWarning, domain.CategoryConfig,
			fmt.Sprintf("Missing required config files: %s", strings.Join(report.MissingRequired, ", ")), false, "")
	}
}

func (r *scanRun) scanQuirks(ctx context.Context) {
	osType := r.status.OSType
	if osType == domain.OSUnknown {
		osType = r.detectOS(ctx).Type
	}
	report := r.svc.detectors.Quirks.Detect(r.status.ProjectPath, osType)
	r.status.Issues = append(r.status.Issues, report.Issues...)
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
