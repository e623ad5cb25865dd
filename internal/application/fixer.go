package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// Fixer is one remediation step. Implementations only decide what to do;
// ApplyFixes owns confirmation, dry-run stamping and error containment.
type Fixer interface {
	Name() string
	// Describe lists the planned changes shown before confirmation.
	Describe() []string
	CanFix() bool
	ApplyFixImpl(ctx context.Context, dryRun bool) ([]domain.FixResult, error)
}

// ApplyFixes runs a fixer through the shared fix procedure:
//  1. nothing to do => a single "No applicable fixes" failure
//  2. real runs without AutoYes ask the confirmer first
//  3. ApplyFixImpl errors and panics become a failure result
//  4. every result is stamped with the fixer name and the dry-run flag
func ApplyFixes(ctx context.Context, f Fixer, opts domain.FixOptions, confirm domain.Confirmer) []domain.FixResult {
	name := f.Name()

	if !f.CanFix() {
		return stamp(name, opts.DryRun, []domain.FixResult{{
			Message: fmt.Sprintf("%s: No applicable fixes", name),
		}})
	}

	if !opts.DryRun && !opts.AutoYes {
		ok, err := false, error(nil)
		if confirm != nil {
			ok, err = confirm.Confirm(ctx, confirmationPrompt(f))
		}
		if err != nil || !ok {
			return stamp(name, false, []domain.FixResult{{
				Message: fmt.Sprintf("%s: User cancelled", name),
			}})
		}
	}

	results, err := applyContained(ctx, f, opts.DryRun)
	if err != nil {
		return stamp(name, opts.DryRun, []domain.FixResult{{
			Message: fmt.Sprintf("%s: Error: %v", name, err),
		}})
	}
	return stamp(name, opts.DryRun, results)
}

// Skipped reports whether r records a fixer that did not run, either
// because nothing applied or because the user declined.
func Skipped(r domain.FixResult) bool {
	return strings.HasSuffix(r.Message, ": No applicable fixes") ||
		strings.HasSuffix(r.Message, ": User cancelled")
}

func applyContained(ctx context.Context, f Fixer, dryRun bool) (results []domain.FixResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			results = nil
			err = fmt.Errorf("%v", rec)
		}
	}()
	return f.ApplyFixImpl(ctx, dryRun)
}

func stamp(name string, dryRun bool, results []domain.FixResult) []domain.FixResult {
	for i := range results {
		results[i].Fixer = name
		results[i].DryRun = dryRun
	}
	return results
}

func confirmationPrompt(f Fixer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants to make the following changes:\n", f.Name())
	lines := f.Describe()
	if len(lines) == 0 {
		lines = []string{"Apply automated fixes for detected issues"}
	}
	for _, line := range lines {
		fmt.Fprintf(&b, "  - %s\n", line)
	}
	b.WriteString("Apply these fixes?")
	return b.String()
}

// fixDeps are the collaborators a fixer needs to build its effects.
type fixDeps struct {
	runner domain.CommandRunner
	log    *zap.Logger
}

func (d fixDeps) effects(dryRun bool) effects {
	log := d.log
	if log == nil {
		log = zap.NewNop()
	}
	return effects{dryRun: dryRun, runner: d.runner, log: log}
}

// errDryRun marks an effect that was skipped because of dry-run.
var errDryRun = errors.New("dry run")

// effects is the only path from a fixer to the filesystem or a subprocess.
// Under dry-run every primitive reports what it would have done and
// changes nothing.
type effects struct {
	dryRun bool
	runner domain.CommandRunner
	log    *zap.Logger
}

// writeFile creates path with content. It refuses to overwrite an existing
// file. Under dry-run it returns errDryRun.
func (e effects) writeFile(path string, content []byte) error {
	if e.dryRun {
		e.log.Debug("dry-run write", zap.String("path", path))
		return errDryRun
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	e.log.Info("file written", zap.String("path", path))
	return f.Close()
}

// run executes argv. Under dry-run it succeeds without executing and
// reports the command line in Stdout.
func (e effects) run(ctx context.Context, timeout time.Duration, name string, args ...string) domain.CommandResult {
	line := commandLine(name, args...)
	if e.dryRun {
		return domain.CommandResult{Success: true, Stdout: "[DRY-RUN] Would run: " + line}
	}
	e.log.Info("running", zap.String("command", line))
	return e.runner.Run(ctx, timeout, name, args...)
}

func commandLine(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

// commandError extracts a one-line failure reason from a result.
func commandError(res domain.CommandResult) string {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return msg
	}
	return "Unknown error"
}

// PythonExecutable picks the interpreter fixers run commands with: the
// active venv's interpreter, then an interpreter inside the project's venv
// directory, then the interpreter detected during the scan, then python3 or
// python from PATH. Empty when none exists.
func PythonExecutable(status domain.EnvironmentStatus) string {
	return resolveInterpreter(status, status.PythonExecutable, defaultLookPath)
}

func resolveInterpreter(status domain.EnvironmentStatus, detected string, lookPath func(string) (string, error)) string {
	if status.VenvActive && status.VenvPath != "" {
		if p, ok := venvInterpreter(status.VenvPath); ok {
			return p
		}
	}
	if status.VenvPath != "" {
		if p, ok := venvInterpreter(status.VenvPath); ok {
			return p
		}
	}
	if status.ProjectPath != "" {
		if dir, ok := projectVenv(status.ProjectPath); ok {
			if p, ok := venvInterpreter(dir); ok {
				return p
			}
		}
	}
	if detected != "" {
		return detected
	}
	for _, name := range []string{"python3", "python"} {
		if p, err := lookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func defaultLookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func venvInterpreter(venvPath string) (string, bool) {
	for _, p := range domain.VenvPythonCandidates(venvPath) {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func projectVenv(projectPath string) (string, bool) {
	for _, name := range domain.ProjectVenvDirs {
		dir := filepath.Join(projectPath, name)
		if _, err := os.Stat(filepath.Join(dir, "pyvenv.cfg")); err == nil {
			return dir, true
		}
	}
	return "", false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
