package deps

import (
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

var versionOperator = regexp.MustCompile(`[=<>!~]`)

// ParseRequirementsTxt extracts package names from requirements.txt content.
// Include files, editable installs, pip options and VCS or URL references
// carry no plain name and are skipped.
func ParseRequirementsTxt(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "-") {
			continue
		}
		if isReference(line) {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, ";"); i >= 0 {
			line = line[:i]
		}
		if name := packageName(line); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func isReference(line string) bool {
	for _, prefix := range []string{"git+", "hg+", "svn+", "bzr+", "http://", "https://", "file:", "./", "../", "/"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return strings.Contains(line, " @ ")
}

// packageName cuts a requirement specifier down to its distribution name.
func packageName(spec string) string {
	name := versionOperator.Split(spec, 2)[0]
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if f := strings.Fields(name); len(f) > 0 {
		name = f[0]
	}
	return name
}

// metadataKeys are Poetry table keys that are not packages.
var metadataKeys = map[string]bool{
	"python":        true,
	"version":       true,
	"description":   true,
	"authors":       true,
	"readme":        true,
	"homepage":      true,
	"repository":    true,
	"documentation": true,
	"keywords":      true,
	"classifiers":   true,
	"license":       true,
}

type pyprojectDeps struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ParsePyproject extracts dependencies from pyproject.toml content. A PEP 621
// dependencies list takes precedence over a Poetry dependency table.
func ParsePyproject(content string) []string {
	var doc pyprojectDeps
	if _, err := toml.Decode(content, &doc); err != nil {
		return scanPyproject(content)
	}
	var out []string
	if len(doc.Project.Dependencies) > 0 {
		for _, spec := range doc.Project.Dependencies {
			if i := strings.Index(spec, ";"); i >= 0 {
				spec = spec[:i]
			}
			if name := packageName(spec); name != "" {
				out = append(out, name)
			}
		}
		return unique(out)
	}
	for name := range doc.Tool.Poetry.Dependencies {
		if !metadataKeys[strings.ToLower(name)] {
			out = append(out, name)
		}
	}
	return unique(out)
}

var (
	pep621List   = regexp.MustCompile(`(?s)dependencies\s*=\s*\[(.*?)\]`)
	quotedName   = regexp.MustCompile(`["']([a-zA-Z0-9_.-]+)`)
	assignedName = regexp.MustCompile(`(?m)^\s*([a-zA-Z0-9_-]+)\s*=\s*["'{]`)
)

// scanPyproject is the pattern fallback for files toml cannot decode.
func scanPyproject(content string) []string {
	var out []string
	if m := pep621List.FindStringSubmatch(content); m != nil {
		for _, q := range quotedName.FindAllStringSubmatch(m[1], -1) {
			out = append(out, q[1])
		}
		return unique(out)
	}
	for _, m := range assignedName.FindAllStringSubmatch(content, -1) {
		if !metadataKeys[strings.ToLower(m[1])] {
			out = append(out, m[1])
		}
	}
	return unique(out)
}

var installRequires = regexp.MustCompile(`(?s)install_requires\s*=\s*\[(.*?)\]`)

// ParseSetupPy extracts the literal install_requires list by pattern. The
// file is never executed.
func ParseSetupPy(content string) []string {
	m := installRequires.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	var out []string
	for _, q := range quotedName.FindAllStringSubmatch(m[1], -1) {
		if name := packageName(q[1]); name != "" {
			out = append(out, name)
		}
	}
	return out
}

var (
	pipfilePackages = regexp.MustCompile(`(?s)\[packages\](.*?)(?:\n\[|$)`)
	pipfileKey      = regexp.MustCompile(`(?m)^([a-zA-Z0-9_-]+)\s*=`)
)

// ParsePipfile extracts the [packages] table. [dev-packages] is excluded.
func ParsePipfile(content string) []string {
	var doc struct {
		Packages map[string]any `toml:"packages"`
	}
	if _, err := toml.Decode(content, &doc); err == nil {
		out := make([]string, 0, len(doc.Packages))
		for name := range doc.Packages {
			out = append(out, name)
		}
		sort.Strings(out)
		return out
	}

	m := pipfilePackages.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	var out []string
	for _, a := range pipfileKey.FindAllStringSubmatch(m[1], -1) {
		out = append(out, a[1])
	}
	return out
}

// FindMissing returns the lowercase names in required that are absent from
// installed, sorted.
func FindMissing(required, installed []string) []string {
	have := make(map[string]bool, len(installed))
	for _, p := range installed {
		have[strings.ToLower(strings.TrimSpace(p))] = true
	}
	missing := []string{}
	seen := make(map[string]bool)
	for _, p := range required {
		name := strings.ToLower(strings.TrimSpace(p))
		if name == "" || have[name] || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing
}

func unique(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
