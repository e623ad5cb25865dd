package application

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// VenvFixer creates <project>/venv when no environment exists and prints
// activation instructions. It cannot activate anything itself: activation
// changes the parent shell.
type VenvFixer struct {
	status domain.EnvironmentStatus
	deps   fixDeps
}

func NewVenvFixer(status domain.EnvironmentStatus, r domain.CommandRunner, log *zap.Logger) *VenvFixer {
	return &VenvFixer{status: status, deps: fixDeps{runner: r, log: log}}
}

func (f *VenvFixer) Name() string { return "VenvFixer" }

func (f *VenvFixer) CanFix() bool {
	return f.status.VenvType == domain.VenvNone || !f.status.VenvActive
}

func (f *VenvFixer) Describe() []string {
	if f.status.VenvType == domain.VenvNone {
		return []string{"Create a new virtual environment (venv)"}
	}
	return []string{fmt.Sprintf("Provide activation instructions for %s", f.status.VenvType)}
}

func (f *VenvFixer) ApplyFixImpl(ctx context.Context, dryRun bool) ([]domain.FixResult, error) {
	fx := f.deps.effects(dryRun)

	if f.status.VenvType == domain.VenvNone {
		created, venvPath := f.create(ctx, fx)
		results := []domain.FixResult{created}
		if created.Success {
			results = append(results, f.activation(venvPath))
		}
		return results, nil
	}

	venvPath := f.status.VenvPath
	if venvPath == "" {
		venvPath, _ = projectVenv(f.status.ProjectPath)
	}
	if venvPath == "" {
		return []domain.FixResult{{Message: "Virtual environment detected but path not found"}}, nil
	}
	return []domain.FixResult{f.activation(venvPath)}, nil
}

func (f *VenvFixer) create(ctx context.Context, fx effects) (domain.FixResult, string) {
	venvPath := filepath.Join(f.status.ProjectPath, "venv")
	if exists(venvPath) {
		return domain.FixResult{Message: fmt.Sprintf("Directory already exists: %s", venvPath)}, venvPath
	}

	python := f.status.PythonExecutable
	if python == "" {
		python = PythonExecutable(f.status)
	}
	if python == "" {
		return domain.FixResult{Message: "Failed to create venv: no Python interpreter available"}, venvPath
	}

	args := []string{"-m", "venv", venvPath}
	cmd := commandLine(python, args...)
	res := fx.run(ctx, domain.VenvTimeout, python, args...)
	switch {
	case fx.dryRun:
		return domain.FixResult{
			Success: true,
			Message: fmt.Sprintf("Would create virtual environment at: %s", venvPath),
			Command: cmd,
		}, venvPath
	case !res.Success:
		fx.log.Warn("venv creation failed", zap.String("path", venvPath), zap.String("stderr", res.Stderr))
		return domain.FixResult{
			Message: fmt.Sprintf("Failed to create venv: %s", commandError(res)),
			Command: cmd,
		}, venvPath
	}
	return domain.FixResult{
		Success: true,
		Message: fmt.Sprintf("Created virtual environment at: %s", venvPath),
		Command: cmd,
	}, venvPath
}

func (f *VenvFixer) activation(venvPath string) domain.FixResult {
	windows := f.status.OSType == domain.OSWindowsNative
	lines := domain.ActivationInstructions(venvPath, windows)

	shell := domain.ShellBash
	if windows {
		shell = domain.ShellCmd
	}
	cmd, _ := domain.ActivationCommand(venvPath, shell)

	var b strings.Builder
	b.WriteString("IMPORTANT: Virtual environment activation instructions\n")
	b.WriteString("To activate this virtual environment:")
	for _, line := range lines {
		b.WriteString("\n  " + line)
	}
	return domain.FixResult{Success: true, Message: b.String(), Command: cmd}
}
