package application

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type generatedFile struct {
	name     string
	template string
	purpose  string
}

var generatedFiles = []generatedFile{
	{".gitignore", "gitignore.tmpl", "with Python-specific patterns"},
	{".editorconfig", "editorconfig.tmpl", "for consistent coding style"},
}

// ConfigFixer creates a missing .gitignore, and an .editorconfig alongside
// it when that is also absent. Existing files are never touched.
type ConfigFixer struct {
	status domain.EnvironmentStatus
	deps   fixDeps
	now    func() time.Time
}

func NewConfigFixer(status domain.EnvironmentStatus, log *zap.Logger) *ConfigFixer {
	return &ConfigFixer{status: status, deps: fixDeps{log: log}, now: time.Now}
}

func (f *ConfigFixer) Name() string { return "ConfigFixer" }

func (f *ConfigFixer) CanFix() bool {
	return !exists(f.path(".gitignore"))
}

func (f *ConfigFixer) Describe() []string {
	var out []string
	for _, g := range generatedFiles {
		if exists(f.path(g.name)) {
			continue
		}
		if g.name == ".gitignore" {
			out = append(out, "Create "+g.name)
		} else {
			out = append(out, "Create "+g.name+" (optional)")
		}
	}
	return out
}

func (f *ConfigFixer) ApplyFixImpl(_ context.Context, dryRun bool) ([]domain.FixResult, error) {
	fx := f.deps.effects(dryRun)
	var results []domain.FixResult
	for _, g := range generatedFiles {
		path := f.path(g.name)
		if exists(path) {
			continue
		}
		results = append(results, f.create(fx, g, path))
	}
	return results, nil
}

func (f *ConfigFixer) create(fx effects, g generatedFile, path string) domain.FixResult {
	content, err := Render(g.template, f.now())
	if err != nil {
		return domain.FixResult{Message: fmt.Sprintf("Failed to create %s: %v", g.name, err)}
	}

	err = fx.writeFile(path, content)
	switch {
	case errors.Is(err, errDryRun):
		return domain.FixResult{
			Success: true,
			Message: fmt.Sprintf("Would create %s at: %s", g.name, path),
			Command: path,
		}
	case err != nil:
		return domain.FixResult{Message: fmt.Sprintf("Failed to create %s: %v", g.name, err)}
	}
	return domain.FixResult{
		Success: true,
		Message: fmt.Sprintf("Created %s %s", g.name, g.purpose),
		Command: path,
	}
}

func (f *ConfigFixer) path(name string) string {
	return filepath.Join(f.status.ProjectPath, name)
}

// Render executes a generated-file template stamped with at.
func Render(name string, at time.Time) ([]byte, error) {
	var buf bytes.Buffer
	data := struct{ Timestamp string }{at.Format(domain.TimestampLayout)}
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
