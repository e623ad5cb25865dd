package application_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abdidvp/harmonizer/internal/application"
	"github.com/abdidvp/harmonizer/internal/domain"
)

// fakeHost scripts every detector and records the calls it receives.
type fakeHost struct {
	calls []string

	osInfo     domain.OSInfo
	python     domain.PythonInfo
	req        *domain.PythonRequirement
	satisfied  bool
	satisfyErr error
	venv       domain.VenvInfo
	deps       domain.DependencyInfo
	config     domain.ConfigReport
	quirks     domain.QuirkReport
	panicIn    string

	depsPython  string
	quirkOSType domain.OSType
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		osInfo:    domain.OSInfo{Type: domain.OSLinux, Version: "Ubuntu 22.04"},
		python:    domain.PythonInfo{Found: true, Version: "3.11.4", Executable: "/usr/bin/python3"},
		satisfied: true,
		venv:      domain.VenvInfo{Type: domain.VenvVirtualenv, Active: true, Path: "/p/venv"},
		deps:      domain.DependencyInfo{RequirementsFile: "/p/requirements.txt"},
		config:    domain.ConfigReport{Found: []string{".gitignore", "README.md"}},
	}
}

func (h *fakeHost) record(name string) {
	h.calls = append(h.calls, name)
	if h.panicIn == name {
		panic(name + " exploded")
	}
}

func (h *fakeHost) detectors() application.Detectors {
	return application.Detectors{
		OS:     fakeOS{h},
		Python: fakePython{h},
		Venv:   fakeVenv{h},
		Deps:   fakeDeps{h},
		Config: fakeConfig{h},
		Quirks: fakeQuirks{h},
	}
}

type fakeOS struct{ h *fakeHost }

func (f fakeOS) Detect(context.Context) domain.OSInfo {
	f.h.record("os")
	return f.h.osInfo
}

type fakePython struct{ h *fakeHost }

func (f fakePython) Detect(context.Context) domain.PythonInfo {
	f.h.record("python")
	return f.h.python
}

func (f fakePython) Requirement(string) (domain.PythonRequirement, bool) {
	if f.h.req == nil {
		return domain.PythonRequirement{}, false
	}
	return *f.h.req, true
}

func (f fakePython) Satisfies(string, string) (bool, error) {
	return f.h.satisfied, f.h.satisfyErr
}

type fakeVenv struct{ h *fakeHost }

func (f fakeVenv) Detect(string, domain.PythonInfo) domain.VenvInfo {
	f.h.record("venv")
	return f.h.venv
}

type fakeDeps struct{ h *fakeHost }

func (f fakeDeps) Scan(_ context.Context, _ string, python string) domain.DependencyInfo {
	f.h.record("dependencies")
	f.h.depsPython = python
	return f.h.deps
}

type fakeConfig struct{ h *fakeHost }

func (f fakeConfig) Scan(string) domain.ConfigReport {
	f.h.record("config")
	return f.h.config
}

type fakeQuirks struct{ h *fakeHost }

func (f fakeQuirks) Detect(_ string, osType domain.OSType) domain.QuirkReport {
	f.h.record("quirks")
	f.h.quirkOSType = osType
	return f.h.quirks
}

type phaseRecord struct {
	phase  domain.Phase
	issues int
}

type recordingObserver struct {
	mu     sync.Mutex
	phases []phaseRecord
}

func (o *recordingObserver) ObservePhase(phase domain.Phase, _ time.Duration, issues int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, phaseRecord{phase, issues})
}

type fixRecorder struct {
	results []domain.FixResult
}

func (r *fixRecorder) RecordFixes(results []domain.FixResult) {
	r.results = append(r.results, results...)
}

// scriptedConfirmer answers prompts in order and remembers them.
type scriptedConfirmer struct {
	answers []bool
	err     error
	prompts []string
}

func (c *scriptedConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return false, c.err
	}
	if len(c.answers) == 0 {
		return false, nil
	}
	ok := c.answers[0]
	c.answers = c.answers[1:]
	return ok, nil
}

func noEnv(string) (string, bool) { return "", false }

func noLookPath(string) (string, error) { return "", errNotFound }

var errNotFound = errors.New("not found")
