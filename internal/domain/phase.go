package domain

import (
	"fmt"
	"strings"
)

// Phase is one detector step of a scan.
type Phase string

const (
	PhaseOS           Phase = "os"
	PhasePython       Phase = "python"
	PhaseVenv         Phase = "venv"
	PhaseDependencies Phase = "dependencies"
	PhaseConfig       Phase = "config"
	PhaseQuirks       Phase = "quirks"
)

// PhaseTiming is the accumulated cost of one phase.
type PhaseTiming struct {
	Phase   string  `json:"phase"`
	Runs    uint64  `json:"runs"`
	Seconds float64 `json:"seconds"`
	Issues  float64 `json:"issues"`
}

// AllPhases lists every phase in execution order. Later phases read what
// earlier ones stored: quirks needs the OS type, the dependency issue needs
// the requirements file.
var AllPhases = []Phase{
	PhaseOS,
	PhasePython,
	PhaseVenv,
	PhaseDependencies,
	PhaseConfig,
	PhaseQuirks,
}

var phaseAliases = map[string]Phase{
	"os":           PhaseOS,
	"python":       PhasePython,
	"venv":         PhaseVenv,
	"dependencies": PhaseDependencies,
	"deps":         PhaseDependencies,
	"config":       PhaseConfig,
	"quirks":       PhaseQuirks,
}

// ParsePhases converts names to phases. Unknown names are an error.
func ParsePhases(names []string) ([]Phase, error) {
	var out []Phase
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			p, ok := phaseAliases[name]
			if !ok {
				return nil, fmt.Errorf("unknown check %q (valid: os, python, venv, dependencies, config, quirks)", name)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// SelectPhases resolves the phases to run. An empty check list means all
// phases; skip removes phases. The result is always in execution order.
func SelectPhases(check, skip []Phase) []Phase {
	want := make(map[Phase]bool, len(AllPhases))
	if len(check) == 0 {
		for _, p := range AllPhases {
			want[p] = true
		}
	} else {
		for _, p := range check {
			want[p] = true
		}
	}
	for _, p := range skip {
		delete(want, p)
	}

	out := make([]Phase, 0, len(want))
	for _, p := range AllPhases {
		if want[p] {
			out = append(out, p)
		}
	}
	return out
}
