// Package osinfo classifies the host platform and resolves its version
// strings. WSL is told apart from native Linux by kernel signatures.
package osinfo

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/runner"
	"github.com/abdidvp/harmonizer/internal/domain"
)

// WSL version labels.
const (
	WSL2       = "WSL 2"
	WSL1       = "WSL 1"
	WSLUnknown = "Unknown WSL version"
	NotWSL     = "Not WSL"
)

// Detector implements domain.OSDetector.
type Detector struct {
	root   string
	getenv func(string) (string, bool)
	goos   string
	runner domain.CommandRunner
}

// Option customizes a Detector.
type Option func(*Detector)

// WithRoot reads /proc and /etc below root instead of "/".
func WithRoot(root string) Option { return func(d *Detector) { d.root = root } }

// WithEnv replaces the environment lookup.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(d *Detector) { d.getenv = lookup }
}

// WithGOOS overrides the base platform.
func WithGOOS(goos string) Option { return func(d *Detector) { d.goos = goos } }

func New(r domain.CommandRunner, opts ...Option) *Detector {
	d := &Detector{
		root:   "/",
		getenv: os.LookupEnv,
		goos:   runtime.GOOS,
		runner: r,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Detect resolves type, version, WSL version and distribution.
func (d *Detector) Detect(ctx context.Context) domain.OSInfo {
	t := d.DetectType()
	info := domain.OSInfo{
		Type:       t,
		WSLVersion: d.WSLVersion(t),
	}
	if t == domain.OSWSL || t == domain.OSLinux {
		info.Distribution = d.Distribution(ctx)
	}
	info.Version = d.version(ctx, t, info.Distribution)
	return info
}

// probe is one step of a first-match-wins cascade.
type probe struct {
	name  string
	match func() bool
}

func firstMatch(probes []probe) (string, bool) {
	for _, p := range probes {
		if p.match() {
			return p.name, true
		}
	}
	return "", false
}

// DetectType classifies the platform. Only a Linux base platform runs the
// WSL cascade.
func (d *Detector) DetectType() domain.OSType {
	switch d.goos {
	case "windows":
		return domain.OSWindowsNative
	case "darwin":
		return domain.OSMacOS
	case "linux":
		if _, ok := firstMatch(d.wslProbes()); ok {
			return domain.OSWSL
		}
		return domain.OSLinux
	default:
		return domain.OSUnknown
	}
}

func (d *Detector) wslProbes() []probe {
	return []probe{
		{"proc_version", func() bool { return hasWSLSignature(d.read("proc/version")) }},
		{"kernel_osrelease", func() bool { return hasWSLSignature(d.read("proc/sys/kernel/osrelease")) }},
		{"env", func() bool {
			_, wslenv := d.getenv("WSLENV")
			_, distro := d.getenv("WSL_DISTRO_NAME")
			return wslenv || distro
		}},
	}
}

func hasWSLSignature(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "microsoft") || strings.Contains(lower, "wsl")
}

// WSLVersion distinguishes WSL 2 from WSL 1 using /proc/version.
func (d *Detector) WSLVersion(t domain.OSType) string {
	if t != domain.OSWSL {
		return NotWSL
	}
	return classifyWSL(d.read("proc/version"))
}

func classifyWSL(procVersion string) string {
	lower := strings.ToLower(procVersion)
	switch {
	case strings.Contains(lower, "microsoft-standard"):
		return WSL2
	case strings.Contains(lower, "microsoft"):
		return WSL1
	default:
		return WSLUnknown
	}
}

// Distribution resolves the Linux distribution name. Sources are tried in
// order and the first non-empty answer wins.
func (d *Detector) Distribution(ctx context.Context) string {
	sources := []func() string{
		func() string { return parseOSRelease(d.read("etc/os-release")) },
		func() string { return parseLSBRelease(d.read("etc/lsb-release")) },
		func() string { return d.lsbReleaseCommand(ctx) },
		func() string { return d.kernelRelease(ctx) },
	}
	for _, src := range sources {
		if v := strings.TrimSpace(src()); v != "" {
			return v
		}
	}
	return ""
}

func (d *Detector) lsbReleaseCommand(ctx context.Context) string {
	if d.runner == nil {
		return ""
	}
	res := d.runner.Run(ctx, runner.ReleaseTimeout, "lsb_release", "-d")
	if !res.Success {
		return ""
	}
	out := strings.TrimSpace(res.Stdout)
	if _, after, ok := strings.Cut(out, ":"); ok {
		return strings.TrimSpace(after)
	}
	return out
}

func (d *Detector) kernelRelease(ctx context.Context) string {
	release := strings.TrimSpace(d.read("proc/sys/kernel/osrelease"))
	if release == "" && d.runner != nil {
		if res := d.runner.Run(ctx, runner.ReleaseTimeout, "uname", "-r"); res.Success {
			release = strings.TrimSpace(res.Stdout)
		}
	}
	if release == "" {
		return ""
	}
	return "Linux " + release
}

func (d *Detector) version(ctx context.Context, t domain.OSType, distribution string) string {
	switch t {
	case domain.OSWindowsNative:
		return d.windowsVersion(ctx)
	case domain.OSMacOS:
		return d.macVersion(ctx)
	case domain.OSWSL, domain.OSLinux:
		if distribution != "" {
			return distribution
		}
		return "Linux"
	default:
		return "Unknown"
	}
}

var windowsVerPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)(?:\.(\d+))?`)

func (d *Detector) windowsVersion(ctx context.Context) string {
	if d.runner == nil {
		return "Windows"
	}
	res := d.runner.Run(ctx, runner.InspectTimeout, "cmd", "/c", "ver")
	if !res.Success {
		return "Windows"
	}
	return formatWindowsVersion(res.Stdout)
}

// formatWindowsVersion turns `ver` output into "Windows <release> (Build <build>)".
func formatWindowsVersion(out string) string {
	m := windowsVerPattern.FindStringSubmatch(out)
	if m == nil {
		return "Windows"
	}
	release := m[1]
	if build, err := strconv.Atoi(m[3]); err == nil && m[1] == "10" && build >= 22000 {
		release = "11"
	}
	return "Windows " + release + " (Build " + m[0] + ")"
}

func (d *Detector) macVersion(ctx context.Context) string {
	if d.runner == nil {
		return "macOS"
	}
	res := d.runner.Run(ctx, runner.InspectTimeout, "sw_vers", "-productVersion")
	if v := strings.TrimSpace(res.Stdout); res.Success && v != "" {
		return "macOS " + v
	}
	return "macOS"
}

// read returns file content below the root, or "" when unreadable.
func (d *Detector) read(rel string) string {
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(rel)))
	if err != nil {
		return ""
	}
	return string(data)
}

// parseOSRelease reads PRETTY_NAME, else NAME with VERSION.
func parseOSRelease(content string) string {
	kv := parseKeyValues(content)
	if v := kv["PRETTY_NAME"]; v != "" {
		return v
	}
	name := kv["NAME"]
	if name == "" {
		return ""
	}
	if version := kv["VERSION"]; version != "" {
		return name + " " + version
	}
	return name
}

func parseLSBRelease(content string) string {
	return parseKeyValues(content)["DISTRIB_DESCRIPTION"]
}

func parseKeyValues(content string) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return out
}
