// Package python probes the project's Python interpreter and reads the
// interpreter version the project declares.
package python

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/runner"
	"github.com/abdidvp/harmonizer/internal/domain"
)

// probeScript prints interpreter facts as one JSON object.
const probeScript = `import json, platform, sys
print(json.dumps({
    "version": platform.python_version(),
    "executable": sys.executable,
    "prefix": sys.prefix,
    "base_prefix": getattr(sys, "base_prefix", sys.prefix),
    "implementation": platform.python_implementation(),
}))`

// NotFound is the version reported when no interpreter answered the probe.
const NotFound = "Not found"

// Detector implements domain.PythonDetector.
type Detector struct {
	runner     domain.CommandRunner
	candidates []string
	lookPath   func(string) (string, error)
	timeout    time.Duration
}

// Option customizes a Detector.
type Option func(*Detector)

// WithCandidates sets the interpreter names tried in order.
func WithCandidates(names ...string) Option {
	return func(d *Detector) {
		if len(names) > 0 {
			d.candidates = names
		}
	}
}

// WithLookPath replaces PATH resolution.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(d *Detector) { d.lookPath = fn }
}

// WithTimeout bounds the probe subprocess.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Detector) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func New(r domain.CommandRunner, opts ...Option) *Detector {
	d := &Detector{
		runner:     r,
		candidates: []string{"python3", "python"},
		lookPath:   exec.LookPath,
		timeout:    runner.InspectTimeout,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

type probeOutput struct {
	Version        string `json:"version"`
	Executable     string `json:"executable"`
	Prefix         string `json:"prefix"`
	BasePrefix     string `json:"base_prefix"`
	Implementation string `json:"implementation"`
}

// Detect returns facts about the first candidate interpreter that answers.
func (d *Detector) Detect(ctx context.Context) domain.PythonInfo {
	for _, name := range d.candidates {
		path, err := d.lookPath(name)
		if err != nil {
			continue
		}
		if info, ok := d.Probe(ctx, path); ok {
			return info
		}
	}
	return domain.PythonInfo{Found: false, Version: NotFound}
}

// Probe runs the fact script with the given interpreter.
func (d *Detector) Probe(ctx context.Context, interpreter string) (domain.PythonInfo, bool) {
	res := d.runner.Run(ctx, d.timeout, interpreter, "-c", probeScript)
	if !res.Success {
		return domain.PythonInfo{}, false
	}
	var out probeOutput
	if err := json.Unmarshal([]byte(runner.FirstLine(res.Stdout)), &out); err != nil || out.Version == "" {
		return domain.PythonInfo{}, false
	}
	if out.Executable == "" {
		out.Executable = interpreter
	}
	return domain.PythonInfo{
		Found:          true,
		Version:        out.Version,
		Executable:     out.Executable,
		Prefix:         out.Prefix,
		BasePrefix:     out.BasePrefix,
		Implementation: out.Implementation,
	}, true
}

// requirementSource reads one kind of version declaration.
type requirementSource struct {
	file  string
	parse func(content string) string
}

var requirementSources = []requirementSource{
	{".python-version", parsePythonVersionFile},
	{"runtime.txt", parseRuntimeTxt},
	{"pyproject.toml", parsePyprojectPython},
	{"setup.py", parseSetupPythonRequires},
	{".tool-versions", parseToolVersions},
}

// Requirement returns the first declared interpreter version found in the
// project, trying sources in a fixed order.
func (d *Detector) Requirement(projectPath string) (domain.PythonRequirement, bool) {
	for _, src := range requirementSources {
		data, err := os.ReadFile(filepath.Join(projectPath, src.file))
		if err != nil {
			continue
		}
		if v := src.parse(string(data)); v != "" {
			return domain.PythonRequirement{Version: v, Source: src.file}, true
		}
	}
	return domain.PythonRequirement{}, false
}

func parsePythonVersionFile(content string) string {
	return runner.FirstLine(content)
}

func parseRuntimeTxt(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "python-") {
		return ""
	}
	return strings.TrimPrefix(content, "python-")
}

func parseToolVersions(content string) string {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "python" {
			return fields[1]
		}
	}
	return ""
}

// NormalizeRequirement reduces a specifier such as ">=3.8,<4" or "^3.10"
// to its lower bound. The result is empty unless it starts with a digit.
func NormalizeRequirement(spec string) string {
	spec = strings.TrimSpace(spec)
	spec, _, _ = strings.Cut(spec, ",")
	for _, op := range []string{"~=", ">=", "==", "^", "~", ">"} {
		spec = strings.ReplaceAll(spec, op, "")
	}
	spec = strings.TrimSuffix(strings.TrimSpace(spec), ".*")
	if spec == "" || spec[0] < '0' || spec[0] > '9' {
		return ""
	}
	return spec
}
