// Package quirks reports platform-specific pitfalls: WSL filesystem and
// PATH problems, Windows path limits, cross-platform file hazards.
package quirks

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/gitrepo"
	"github.com/abdidvp/harmonizer/internal/domain"
)

// pythonFileLimit bounds how many .py files content checks read.
const pythonFileLimit = 50

// Detector implements domain.QuirksDetector.
type Detector struct {
	log            *zap.Logger
	getenv         func(string) (string, bool)
	maxDepth       int
	followSymlinks bool
}

// Option customizes a Detector.
type Option func(*Detector)

func WithEnv(lookup func(string) (string, bool)) Option {
	return func(d *Detector) { d.getenv = lookup }
}

// WithWalk bounds the project walk. depth counts directory levels below
// the project root; 0 reads top-level files only.
func WithWalk(depth int, followSymlinks bool) Option {
	return func(d *Detector) {
		d.maxDepth = depth
		d.followSymlinks = followSymlinks
	}
}

func New(log *zap.Logger, opts ...Option) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Detector{log: log, getenv: os.LookupEnv, maxDepth: 3}
	for _, o := range opts {
		o(d)
	}
	return d
}

// target is the project under inspection. The file list is walked once and
// shared by every check.
type target struct {
	path      string
	getenv    func(string) (string, bool)
	repo      *gitrepo.Repo
	listFiles func() []string
}

func (t *target) env(key string) string {
	v, _ := t.getenv(key)
	return v
}

// files returns project-relative file paths in walk order.
func (t *target) files() []string { return t.listFiles() }

type check struct {
	name string
	// platforms limits the check; nil runs it everywhere.
	platforms []domain.OSType
	run       func(*target) []domain.Issue
}

func (c check) appliesTo(osType domain.OSType) bool {
	if c.platforms == nil {
		return true
	}
	for _, p := range c.platforms {
		if p == osType {
			return true
		}
	}
	return false
}

var (
	onWSL     = []domain.OSType{domain.OSWSL}
	onWindows = []domain.OSType{domain.OSWindowsNative}
	onLinux   = []domain.OSType{domain.OSLinux}
)

var checks = []check{
	{"wsl-windows-mount", onWSL, checkWindowsMount},
	{"wsl-backslash-paths", onWSL, checkBackslashPaths},
	{"wsl-autocrlf", onWSL, checkAutoCRLF},
	{"wsl-path-pollution", onWSL, checkPathPollution},
	{"wsl-interop", onWSL, checkInterop},
	{"windows-long-path", onWindows, checkLongPath},
	{"windows-unix-paths", onWindows, checkUnixPaths},
	{"linux-windows-scripts", onLinux, checkWindowsScripts},
	{"case-collisions", nil, checkCaseCollisions},
	{"path-spaces", nil, checkPathSpaces},
	{"path-non-ascii", nil, checkPathNonASCII},
}

// Detect runs the checks that apply to osType. A check that panics is
// logged and skipped; later checks still run.
func (d *Detector) Detect(projectPath string, osType domain.OSType) domain.QuirkReport {
	resolved := projectPath
	if abs, err := filepath.Abs(projectPath); err == nil {
		resolved = abs
	}
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = real
	}

	t := &target{path: resolved, getenv: d.getenv, repo: gitrepo.New(resolved)}
	t.listFiles = sync.OnceValue(func() []string { return d.walk(resolved) })

	report := domain.QuirkReport{Issues: []domain.Issue{}, Recommendations: Recommendations(osType)}
	for _, c := range checks {
		if !c.appliesTo(osType) {
			continue
		}
		report.Issues = append(report.Issues, d.runCheck(c, t)...)
	}
	return report
}

func (d *Detector) runCheck(c check, t *target) (issues []domain.Issue) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("quirk check failed", zap.String("check", c.name), zap.Any("panic", r))
			issues = nil
		}
	}()
	return c.run(t)
}

// skipDirs are never descended.
var skipDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"__pycache__":   true,
	"site-packages": true,
	".tox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
}

func (d *Detector) walk(root string) []string {
	venvDirs := make(map[string]bool, len(domain.ProjectVenvDirs))
	for _, name := range domain.ProjectVenvDirs {
		venvDirs[name] = true
	}

	var files []string
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		depth := strings.Count(filepath.ToSlash(rel), "/")
		if entry.IsDir() {
			if skipDirs[entry.Name()] || venvDirs[entry.Name()] || depth >= d.maxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			if !d.followSymlinks {
				return nil
			}
			info, statErr := os.Stat(path)
			if statErr != nil || info.IsDir() {
				return nil
			}
		}
		files = append(files, rel)
		return nil
	})
	return files
}

func (t *target) pythonFiles() []string {
	var out []string
	for _, f := range t.files() {
		if strings.HasSuffix(f, ".py") {
			out = append(out, f)
			if len(out) == pythonFileLimit {
				break
			}
		}
	}
	return out
}

// filesContaining returns the base names of .py files whose content
// satisfies match.
func (t *target) filesContaining(match func(string) bool) []string {
	var names []string
	for _, rel := range t.pythonFiles() {
		data, err := os.ReadFile(filepath.Join(t.path, rel))
		if err != nil {
			continue
		}
		if match(string(data)) {
			names = append(names, filepath.Base(rel))
		}
	}
	return names
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func issue(sev domain.Severity, category, format string, args ...any) domain.Issue {
	return domain.Issue{Severity: sev, Category: category, Message: fmt.Sprintf(format, args...)}
}
