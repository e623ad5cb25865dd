package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// requirementsTxt is the only declaration format pip installs with -r.
const requirementsTxt = "requirements.txt"

// DependencyFixer installs missing packages into the project interpreter.
type DependencyFixer struct {
	status domain.EnvironmentStatus
	deps   fixDeps
}

func NewDependencyFixer(status domain.EnvironmentStatus, r domain.CommandRunner, log *zap.Logger) *DependencyFixer {
	return &DependencyFixer{status: status, deps: fixDeps{runner: r, log: log}}
}

func (f *DependencyFixer) Name() string { return "DependencyFixer" }

func (f *DependencyFixer) CanFix() bool {
	if len(f.status.MissingPackages) > 0 {
		return true
	}
	if f.status.RequirementsFile == "" {
		return false
	}
	info, err := os.Stat(f.status.RequirementsFile)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func (f *DependencyFixer) Describe() []string {
	var out []string
	if n := len(f.status.MissingPackages); n > 0 {
		line := fmt.Sprintf("Install %d missing package(s): %s", n, strings.Join(firstN(f.status.MissingPackages, 5), ", "))
		if n > 5 {
			line += fmt.Sprintf(" ... and %d more", n-5)
		}
		out = append(out, line)
	}
	if f.status.RequirementsFile != "" {
		out = append(out, "Install from: "+f.status.RequirementsFile)
	}
	return out
}

func (f *DependencyFixer) ApplyFixImpl(ctx context.Context, dryRun bool) ([]domain.FixResult, error) {
	fx := f.deps.effects(dryRun)
	python := PythonExecutable(f.status)
	if python == "" {
		return []domain.FixResult{{Message: "No Python interpreter available to run pip"}}, nil
	}

	file := f.status.RequirementsFile
	switch {
	case file != "" && filepath.Base(file) == requirementsTxt:
		return f.verified(ctx, fx, f.installFile(ctx, fx, python, file)), nil
	case len(f.status.MissingPackages) > 0:
		return f.verified(ctx, fx, f.installMissing(ctx, fx, python)), nil
	case file != "":
		return []domain.FixResult{{
			Success: true,
			Message: fmt.Sprintf("All packages declared in %s are installed", filepath.Base(file)),
		}}, nil
	}
	return nil, nil
}

func (f *DependencyFixer) installFile(ctx context.Context, fx effects, python, file string) domain.FixResult {
	if !exists(file) {
		return domain.FixResult{Message: fmt.Sprintf("Requirements file not found: %s", file)}
	}
	args := []string{"-m", "pip", "install", "-r", file}
	res := fx.run(ctx, domain.InstallTimeout, python, args...)
	if fx.dryRun {
		return domain.FixResult{
			Success: true,
			Message: fmt.Sprintf("Would install packages from: %s", file),
			Command: commandLine(python, args...),
		}
	}
	return installResult(res, fmt.Sprintf("Install packages from %s", filepath.Base(file)), commandLine(python, args...))
}

func (f *DependencyFixer) installMissing(ctx context.Context, fx effects, python string) domain.FixResult {
	packages := f.status.MissingPackages
	args := append([]string{"-m", "pip", "install"}, packages...)
	res := fx.run(ctx, domain.InstallTimeout, python, args...)
	if fx.dryRun {
		return domain.FixResult{
			Success: true,
			Message: fmt.Sprintf("Would install packages: %s", strings.Join(packages, ", ")),
			Command: commandLine(python, args...),
		}
	}
	return installResult(res, fmt.Sprintf("Install %d missing packages", len(packages)), commandLine(python, args...))
}

func installResult(res domain.CommandResult, description, cmd string) domain.FixResult {
	if res.Success {
		return domain.FixResult{Success: true, Message: description + ": Success", Command: cmd}
	}
	return domain.FixResult{Message: fmt.Sprintf("%s: Failed - %s", description, commandError(res)), Command: cmd}
}

// verified follows a successful install with a pip show check of every
// package the scan found missing.
func (f *DependencyFixer) verified(ctx context.Context, fx effects, installed domain.FixResult) []domain.FixResult {
	results := []domain.FixResult{installed}
	packages := f.status.MissingPackages
	if fx.dryRun || !installed.Success || len(packages) == 0 {
		return results
	}

	ok := f.VerifyInstallation(ctx, packages)
	var failed []string
	for _, pkg := range packages {
		if !ok[pkg] {
			failed = append(failed, pkg)
		}
	}
	if len(failed) > 0 {
		fx.log.Warn("packages missing after install", zap.Strings("packages", failed))
		return append(results, domain.FixResult{
			Message: "Verification failed - still not installed: " + strings.Join(failed, ", "),
		})
	}
	return append(results, domain.FixResult{
		Success: true,
		Message: fmt.Sprintf("Verified %d package(s) with pip show", len(packages)),
	})
}

// VerifyInstallation reports, per package, whether pip can show it for the
// project interpreter.
func (f *DependencyFixer) VerifyInstallation(ctx context.Context, packages []string) map[string]bool {
	out := make(map[string]bool, len(packages))
	python := PythonExecutable(f.status)
	for _, pkg := range packages {
		if python == "" {
			out[pkg] = false
			continue
		}
		out[pkg] = f.deps.runner.Run(ctx, domain.InspectTimeout, python, "-m", "pip", "show", pkg).Success
	}
	return out
}
