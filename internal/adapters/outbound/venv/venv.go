// Package venv identifies the virtual environment a project runs in.
//
// Several markers can hold at once (a Poetry project inside a generically
// activated venv, say), so probes run in a fixed priority and the first
// definitive match wins.
package venv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// Detector implements domain.VenvDetector.
type Detector struct {
	getenv  func(string) (string, bool)
	homeDir func() (string, error)
}

// Option customizes a Detector.
type Option func(*Detector)

// WithEnv replaces the environment lookup.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(d *Detector) { d.getenv = lookup }
}

// WithHome replaces home directory resolution.
func WithHome(home string) Option {
	return func(d *Detector) { d.homeDir = func() (string, error) { return home, nil } }
}

func New(opts ...Option) *Detector {
	d := &Detector{getenv: os.LookupEnv, homeDir: os.UserHomeDir}
	for _, o := range opts {
		o(d)
	}
	return d
}

type probe struct {
	kind   domain.VenvType
	detect func(projectPath string, py domain.PythonInfo) (domain.VenvInfo, bool)
}

func (d *Detector) probes() []probe {
	return []probe{
		{domain.VenvConda, d.conda},
		{domain.VenvPipx, d.pipx},
		{domain.VenvPoetry, d.poetry},
		{domain.VenvPipenv, d.pipenv},
		{domain.VenvVirtualenv, d.virtualenv},
	}
}

// Detect returns the highest-priority environment that matches, or
// domain.NoVenv.
func (d *Detector) Detect(projectPath string, py domain.PythonInfo) domain.VenvInfo {
	for _, p := range d.probes() {
		if info, ok := p.detect(projectPath, py); ok {
			info.Type = p.kind
			return info
		}
	}
	return domain.NoVenv
}

func (d *Detector) env(key string) string {
	v, _ := d.getenv(key)
	return v
}

func (d *Detector) conda(_ string, py domain.PythonInfo) (domain.VenvInfo, bool) {
	name, prefix := d.env("CONDA_DEFAULT_ENV"), d.env("CONDA_PREFIX")
	if name != "" || prefix != "" {
		return domain.VenvInfo{Active: true, Path: prefix, Name: name}, true
	}
	if py.Prefix != "" && isDir(filepath.Join(py.Prefix, "conda-meta")) {
		return domain.VenvInfo{Active: true, Path: py.Prefix, Name: filepath.Base(py.Prefix)}, true
	}
	return domain.VenvInfo{}, false
}

func (d *Detector) pipx(_ string, py domain.PythonInfo) (domain.VenvInfo, bool) {
	if py.Prefix == "" {
		return domain.VenvInfo{}, false
	}
	for _, root := range d.pipxVenvRoots() {
		if name, ok := childOf(root, py.Prefix); ok {
			return domain.VenvInfo{Active: true, Path: filepath.Join(root, name), Name: name}, true
		}
	}
	return domain.VenvInfo{}, false
}

// pipxVenvRoots lists the directories holding pipx-managed venvs.
func (d *Detector) pipxVenvRoots() []string {
	var roots []string
	if home := d.env("PIPX_HOME"); home != "" {
		roots = append(roots, filepath.Join(home, "venvs"))
	}
	if home, err := d.homeDir(); err == nil && home != "" {
		roots = append(roots,
			filepath.Join(home, ".local", "pipx", "venvs"),
			filepath.Join(home, ".local", "share", "pipx", "venvs"),
		)
	}
	return roots
}

// childOf returns the first path element of target below root.
func childOf(root, target string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	first := strings.Split(filepath.ToSlash(rel), "/")[0]
	return first, first != ""
}

func (d *Detector) poetry(projectPath string, py domain.PythonInfo) (domain.VenvInfo, bool) {
	if d.env("POETRY_ACTIVE") == "1" {
		return domain.VenvInfo{Active: true, Path: py.Prefix}, true
	}
	name, ok := poetryProjectName(projectPath)
	if !ok || !py.InVirtualEnv() {
		return domain.VenvInfo{}, false
	}
	base := strings.ToLower(filepath.Base(py.Prefix))
	for _, candidate := range []string{name, filepath.Base(projectPath)} {
		if candidate != "" && strings.Contains(base, strings.ToLower(candidate)) {
			return domain.VenvInfo{Active: true, Path: py.Prefix}, true
		}
	}
	return domain.VenvInfo{}, false
}

// poetryProjectName reports whether pyproject.toml carries a [tool.poetry]
// table and returns its declared name.
func poetryProjectName(projectPath string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(projectPath, "pyproject.toml"))
	if err != nil {
		return "", false
	}
	var doc struct {
		Tool struct {
			Poetry *struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return "", strings.Contains(string(data), "[tool.poetry]")
	}
	if doc.Tool.Poetry == nil {
		return "", false
	}
	return doc.Tool.Poetry.Name, true
}

func (d *Detector) pipenv(projectPath string, py domain.PythonInfo) (domain.VenvInfo, bool) {
	if d.env("PIPENV_ACTIVE") == "1" {
		path := py.Prefix
		if path == "" {
			path = d.env("VIRTUAL_ENV")
		}
		return domain.VenvInfo{Active: true, Path: path}, true
	}
	if fileExists(filepath.Join(projectPath, "Pipfile")) && py.InVirtualEnv() {
		return domain.VenvInfo{Active: true, Path: py.Prefix}, true
	}
	return domain.VenvInfo{}, false
}

func (d *Detector) virtualenv(projectPath string, py domain.PythonInfo) (domain.VenvInfo, bool) {
	if v := d.env("VIRTUAL_ENV"); v != "" {
		return domain.VenvInfo{Active: true, Path: v, Name: filepath.Base(v)}, true
	}
	if py.InVirtualEnv() {
		return domain.VenvInfo{Active: true, Path: py.Prefix, Name: filepath.Base(py.Prefix)}, true
	}
	if path, ok := FindProjectVenv(projectPath); ok {
		return domain.VenvInfo{Active: false, Path: path, Name: filepath.Base(path)}, true
	}
	return domain.VenvInfo{}, false
}

// FindProjectVenv returns the first in-project directory holding pyvenv.cfg.
func FindProjectVenv(projectPath string) (string, bool) {
	for _, name := range domain.ProjectVenvDirs {
		dir := filepath.Join(projectPath, name)
		if fileExists(filepath.Join(dir, "pyvenv.cfg")) {
			return dir, true
		}
	}
	return "", false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
