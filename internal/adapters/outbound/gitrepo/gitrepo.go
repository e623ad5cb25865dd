// Package gitrepo reads git facts about a project using go-git: whether it
// is a repository, its line-ending configuration and its ignore rules.
package gitrepo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Repo answers git questions for one project directory.
type Repo struct {
	path string
}

func New(projectPath string) *Repo {
	return &Repo{path: projectPath}
}

// IsGitRepo reports whether the project sits inside a work tree, looking
// upward for the .git directory.
func (r *Repo) IsGitRepo() bool {
	_, err := r.open()
	return err == nil
}

// AutoCRLF returns the effective core.autocrlf value. Inside a repository
// the local setting overrides the global one; outside, only the global
// configuration is read. An unset option returns "".
func (r *Repo) AutoCRLF() (string, error) {
	if repo, err := r.open(); err == nil {
		local, err := repo.Config()
		if err != nil {
			return "", fmt.Errorf("reading repository config: %w", err)
		}
		if v := autocrlf(local); v != "" {
			return v, nil
		}
	}
	global, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		return "", fmt.Errorf("reading global git config: %w", err)
	}
	return autocrlf(global), nil
}

func autocrlf(cfg *config.Config) string {
	if cfg == nil || cfg.Raw == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(cfg.Raw.Section("core").Option("autocrlf")))
}

// IgnoreMatcher compiles the project's top-level .gitignore. A missing file
// yields a matcher that ignores nothing.
func (r *Repo) IgnoreMatcher() (*Matcher, error) {
	f, err := os.Open(filepath.Join(r.path, ".gitignore"))
	if os.IsNotExist(err) {
		return EmptyMatcher(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading .gitignore: %w", err)
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading .gitignore: %w", err)
	}
	return &Matcher{m: gitignore.NewMatcher(patterns), lines: lines}, nil
}

func (r *Repo) open() (*git.Repository, error) {
	return git.PlainOpenWithOptions(r.path, &git.PlainOpenOptions{DetectDotGit: true})
}

// Matcher applies gitignore rules to project-relative paths.
type Matcher struct {
	m     gitignore.Matcher
	lines []string
}

// EmptyMatcher ignores nothing.
func EmptyMatcher() *Matcher {
	return &Matcher{m: gitignore.NewMatcher(nil)}
}

// Ignored reports whether rel (slash or OS separated) is excluded.
func (m *Matcher) Ignored(rel string, isDir bool) bool {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(rel)), "/")
	return m.m.Match(parts, isDir)
}

// HasPattern reports whether the literal pattern appears in the file,
// ignoring a leading slash on either side.
func (m *Matcher) HasPattern(pattern string) bool {
	want := strings.TrimPrefix(pattern, "/")
	for _, l := range m.lines {
		if strings.TrimPrefix(strings.TrimSpace(l), "/") == want {
			return true
		}
	}
	return false
}
