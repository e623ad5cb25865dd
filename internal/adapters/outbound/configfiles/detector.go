// Package configfiles inventories a project's configuration files and
// reports problems with them.
package configfiles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/gitrepo"
	"github.com/abdidvp/harmonizer/internal/domain"
)

// Detector implements domain.ConfigDetector.
type Detector struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{log: log}
}

// project carries what the checks need about one directory.
type project struct {
	path   string
	ignore *gitrepo.Matcher
}

func (p project) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(p.path, rel))
	return err == nil
}

type check struct {
	name string
	run  func(project) []domain.Issue
}

var checks = []check{
	{"gitignore", checkGitignore},
	{"env-exposure", checkEnvExposure},
	{"readme", checkReadme},
	{"dependency-file", checkDependencyFile},
	{"yaml-syntax", checkYAMLSyntax},
}

// Scan inventories the catalog and runs every check. A failing check is
// logged and skipped.
func (d *Detector) Scan(projectPath string) domain.ConfigReport {
	report := inventory(projectPath)

	matcher, err := gitrepo.New(projectPath).IgnoreMatcher()
	if err != nil {
		d.log.Debug("gitignore unreadable", zap.String("project", projectPath), zap.Error(err))
		matcher = gitrepo.EmptyMatcher()
	}
	p := project{path: projectPath, ignore: matcher}

	for _, c := range checks {
		report.Issues = append(report.Issues, d.runCheck(c, p)...)
	}
	return report
}

func (d *Detector) runCheck(c check, p project) (issues []domain.Issue) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("config check failed", zap.String("check", c.name), zap.Any("panic", r))
			issues = nil
		}
	}()
	return c.run(p)
}

func inventory(projectPath string) domain.ConfigReport {
	report := domain.ConfigReport{
		Found:              []string{},
		MissingRequired:    []string{},
		MissingRecommended: []string{},
		ByCategory:         map[string][]string{},
		TotalChecked:       len(Catalog),
		Issues:             []domain.Issue{},
	}
	for _, e := range Catalog {
		info, err := os.Stat(filepath.Join(projectPath, filepath.FromSlash(e.Name)))
		present := err == nil && info.IsDir() == e.Dir
		switch {
		case present:
			report.Found = append(report.Found, e.Name)
			report.ByCategory[e.Category] = append(report.ByCategory[e.Category], e.Name)
		case e.Required:
			report.MissingRequired = append(report.MissingRequired, e.Name)
		default:
			report.MissingRecommended = append(report.MissingRecommended, e.Name)
		}
	}
	report.TotalFound = len(report.Found)
	return report
}

// importantPatterns pairs each expected ignore rule with a path it must
// exclude. Any rule that excludes the path satisfies it.
var importantPatterns = []struct {
	pattern string
	probe   string
	dir     bool
}{
	{"__pycache__", "__pycache__", true},
	{"*.pyc", "module.pyc", false},
	{".env", ".env", false},
	{"venv/", "venv", true},
	{"*.egg-info", "project.egg-info", true},
	{".pytest_cache", ".pytest_cache", true},
}

// MissingIgnorePatterns lists the expected patterns the matcher does not
// cover, in check order.
func MissingIgnorePatterns(m *gitrepo.Matcher) []string {
	var missing []string
	for _, ip := range importantPatterns {
		if !m.HasPattern(ip.pattern) && !m.Ignored(ip.probe, ip.dir) {
			missing = append(missing, ip.pattern)
		}
	}
	return missing
}

func checkGitignore(p project) []domain.Issue {
	if !p.exists(".gitignore") {
		return []domain.Issue{{
			Severity:   domain.SeverityWarning,
			Category:   domain.CategoryGitignore,
			Message:    "No .gitignore file found - unwanted files may be committed",
			Fixable:    true,
			FixCommand: "harmonizer fix",
		}}
	}
	missing := MissingIgnorePatterns(p.ignore)
	if len(missing) == 0 {
		return nil
	}
	if len(missing) > 3 {
		missing = missing[:3]
	}
	return []domain.Issue{{
		Severity: domain.SeverityInfo,
		Category: domain.CategoryGitignore,
		Message:  ".gitignore missing important patterns: " + strings.Join(missing, ", "),
	}}
}

func checkEnvExposure(p project) []domain.Issue {
	if !p.exists(".env") || p.ignore.Ignored(".env", false) {
		return nil
	}
	return []domain.Issue{{
		Severity: domain.SeverityError,
		Category: domain.CategorySecurity,
		Message:  ".env file exists but is NOT in .gitignore - SECURITY RISK!",
	}}
}

var readmeFiles = []string{"README.md", "README.rst", "README.txt", "README"}

func checkReadme(p project) []domain.Issue {
	for _, name := range readmeFiles {
		if p.exists(name) {
			return nil
		}
	}
	return []domain.Issue{{
		Severity: domain.SeverityWarning,
		Category: domain.CategoryConfig,
		Message:  "No README file found - project lacks documentation",
	}}
}

var dependencyFiles = []string{"requirements.txt", "pyproject.toml", "Pipfile", "setup.py"}

func checkDependencyFile(p project) []domain.Issue {
	for _, name := range dependencyFiles {
		if p.exists(name) {
			return nil
		}
	}
	return []domain.Issue{{
		Severity: domain.SeverityWarning,
		Category: domain.CategoryDependency,
		Message:  "No dependency file found (requirements.txt, pyproject.toml, etc.)",
	}}
}

// yamlFiles are the YAML documents whose syntax is validated. Workflow
// files are globbed.
var yamlFiles = []string{
	".pre-commit-config.yaml",
	"docker-compose.yml",
	"docker-compose.yaml",
	".github/workflows/*.yml",
	".github/workflows/*.yaml",
}

func checkYAMLSyntax(p project) []domain.Issue {
	var issues []domain.Issue
	for _, pattern := range yamlFiles {
		matches, _ := filepath.Glob(filepath.Join(p.path, filepath.FromSlash(pattern)))
		for _, path := range matches {
			if err := validateYAML(path); err != nil {
				rel, _ := filepath.Rel(p.path, path)
				issues = append(issues, domain.Issue{
					Severity: domain.SeverityWarning,
					Category: domain.CategoryConfig,
					Message:  fmt.Sprintf("Invalid YAML in %s: %v", filepath.ToSlash(rel), err),
				})
			}
		}
	}
	return issues
}

func validateYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc any
	return yaml.Unmarshal(data, &doc)
}
