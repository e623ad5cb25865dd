// Package deps compares the packages a project declares with the packages
// installed for its interpreter.
package deps

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/runner"
	"github.com/abdidvp/harmonizer/internal/domain"
)

// Source is one dependency declaration format.
type Source struct {
	File  string
	Parse func(content string) []string
}

// Sources are checked in priority order; the first existing file wins.
var Sources = []Source{
	{"requirements.txt", ParseRequirementsTxt},
	{"pyproject.toml", ParsePyproject},
	{"setup.py", ParseSetupPy},
	{"Pipfile", ParsePipfile},
}

// FindDeclaration returns the highest-priority dependency file in the project.
func FindDeclaration(projectPath string) (Source, string, bool) {
	for _, src := range Sources {
		path := filepath.Join(projectPath, src.File)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return src, path, true
		}
	}
	return Source{}, "", false
}

// Detector implements domain.DependencyDetector.
type Detector struct {
	runner domain.CommandRunner
}

func New(r domain.CommandRunner) *Detector {
	return &Detector{runner: r}
}

// Scan parses the first dependency file and diffs it against the packages
// installed for python. Unreadable files yield an empty requirement list.
func (d *Detector) Scan(ctx context.Context, projectPath, python string) domain.DependencyInfo {
	info := domain.DependencyInfo{
		Required:  []string{},
		Installed: d.InstalledPackages(ctx, python),
		Missing:   []string{},
	}

	src, path, ok := FindDeclaration(projectPath)
	if !ok {
		return info
	}
	info.RequirementsFile = path
	if data, err := os.ReadFile(path); err == nil {
		if required := src.Parse(string(data)); required != nil {
			info.Required = required
		}
	}
	info.Missing = FindMissing(info.Required, info.Installed)
	return info
}

// InstalledPackages lists installed distributions in lowercase. When pip is
// unavailable it reads package metadata directories under site-packages.
func (d *Detector) InstalledPackages(ctx context.Context, python string) []string {
	if python == "" {
		return []string{}
	}
	res := d.runner.Run(ctx, runner.ListTimeout, python, "-m", "pip", "list", "--format=freeze")
	if res.Success {
		var names []string
		for _, line := range strings.Split(res.Stdout, "\n") {
			line = strings.TrimSpace(line)
			if name, _, ok := strings.Cut(line, "=="); ok && name != "" {
				names = append(names, name)
			}
		}
		return domain.LowerSet(names)
	}
	return domain.LowerSet(metadataPackages(python))
}

// metadataPackages reads *.dist-info and *.egg-info directory names from the
// site-packages directories next to the interpreter.
func metadataPackages(python string) []string {
	root := filepath.Dir(filepath.Dir(python))
	patterns := []string{
		filepath.Join(root, "lib", "python*", "site-packages", "*.dist-info"),
		filepath.Join(root, "lib", "python*", "site-packages", "*.egg-info"),
		filepath.Join(root, "Lib", "site-packages", "*.dist-info"),
		filepath.Join(root, "Lib", "site-packages", "*.egg-info"),
	}
	var names []string
	for _, pattern := range patterns {
		matches, _ := filepath.Glob(pattern)
		for _, m := range matches {
			names = append(names, distributionName(filepath.Base(m)))
		}
	}
	return names
}

// distributionName turns "requests-2.31.0.dist-info" into "requests".
func distributionName(dir string) string {
	dir = strings.TrimSuffix(strings.TrimSuffix(dir, ".dist-info"), ".egg-info")
	if name, _, ok := strings.Cut(dir, "-"); ok {
		dir = name
	}
	return strings.ReplaceAll(dir, "_", "-")
}
