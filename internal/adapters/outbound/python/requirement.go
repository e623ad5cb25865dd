package python

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	goversion "github.com/hashicorp/go-version"
)

type pyprojectPython struct {
	Project struct {
		RequiresPython string `toml:"requires-python"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// parsePyprojectPython reads the Poetry python dependency, then PEP 621
// requires-python. Files that fail to decode are scanned line by line.
func parsePyprojectPython(content string) string {
	var doc pyprojectPython
	if _, err := toml.Decode(content, &doc); err != nil {
		return scanPyprojectLines(content)
	}

	if raw, ok := doc.Tool.Poetry.Dependencies["python"]; ok {
		switch v := raw.(type) {
		case string:
			if req := NormalizeRequirement(v); req != "" {
				return req
			}
		case map[string]any:
			if s, ok := v["version"].(string); ok {
				if req := NormalizeRequirement(s); req != "" {
					return req
				}
			}
		}
	}
	return NormalizeRequirement(doc.Project.RequiresPython)
}

var quotedValue = regexp.MustCompile(`["']([^"']+)["']`)

func scanPyprojectLines(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "=") {
			continue
		}
		if !strings.HasPrefix(line, "python") && !strings.HasPrefix(line, "requires-python") {
			continue
		}
		m := quotedValue.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if req := NormalizeRequirement(m[1]); req != "" {
			return req
		}
	}
	return ""
}

var pythonRequires = regexp.MustCompile(`python_requires\s*=\s*["']([^"']+)["']`)

// parseSetupPythonRequires extracts python_requires by pattern. setup.py is
// never executed.
func parseSetupPythonRequires(content string) string {
	m := pythonRequires.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return NormalizeRequirement(m[1])
}

// Compatibility is the outcome of comparing interpreter and requirement.
type Compatibility int

const (
	Compatible Compatibility = iota
	Incompatible
	Unparseable
)

// CheckCompatibility reports whether current satisfies the minimum
// required version. Missing trailing components compare as zero.
func CheckCompatibility(current, required string) Compatibility {
	req, err := goversion.NewVersion(required)
	if err != nil {
		return Unparseable
	}
	cur, err := goversion.NewVersion(current)
	if err != nil {
		return Unparseable
	}
	if cur.LessThan(req) {
		return Incompatible
	}
	return Compatible
}

// ErrUnparseable is returned by Satisfies when either version cannot be read.
var ErrUnparseable = errors.New("unparseable version")

// Satisfies adapts CheckCompatibility to the detector port.
func (d *Detector) Satisfies(current, required string) (bool, error) {
	switch CheckCompatibility(current, required) {
	case Compatible:
		return true, nil
	case Incompatible:
		return false, nil
	default:
		return false, fmt.Errorf("comparing %q with %q: %w", current, required, ErrUnparseable)
	}
}
