package quirks

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// AutoCRLFFix is the command that resolves the autocrlf warning under WSL.
const AutoCRLFFix = "git config --global core.autocrlf input"

const (
	longPathLimit     = 200
	windowsPathLimit  = 5
	windowsMountRoot  = "/mnt/"
	windowsScriptHead = 5
)

func checkWindowsMount(t *target) []domain.Issue {
	rest, ok := strings.CutPrefix(filepath.ToSlash(t.path), windowsMountRoot)
	if !ok {
		return nil
	}
	drive, _, _ := strings.Cut(rest, "/")
	return []domain.Issue{
		issue(domain.SeverityWarning, domain.CategoryWSLPerformance,
			"Project is on Windows filesystem (/mnt/%s/) - Consider moving to Linux filesystem for better performance", drive),
		issue(domain.SeverityInfo, domain.CategoryWSLPerformance,
			"File I/O operations are significantly slower on Windows filesystem from WSL. Git operations, pip installs and file watches may be slow."),
	}
}

var driveLetterPath = regexp.MustCompile(`[A-Za-z]:\\`)

func checkBackslashPaths(t *target) []domain.Issue {
	names := t.filesContaining(func(content string) bool {
		return strings.Contains(content, `\\`) || driveLetterPath.MatchString(content)
	})
	if len(names) == 0 {
		return nil
	}
	return []domain.Issue{issue(domain.SeverityWarning, domain.CategoryCrossPlatform,
		"Found Windows path separators (backslashes) in Python files: %s. Use pathlib.Path or forward slashes for cross-platform compatibility.",
		strings.Join(firstN(names, 3), ", "))}
}

func checkAutoCRLF(t *target) []domain.Issue {
	value, err := t.repo.AutoCRLF()
	if err != nil || value != "true" {
		return nil
	}
	i := issue(domain.SeverityWarning, domain.CategoryGitConfig,
		"git core.autocrlf is set to 'true' in WSL - this can cause line ending issues. Recommended: 'input' or 'false' for WSL.")
	i.Fixable = true
	i.FixCommand = AutoCRLFFix
	return []domain.Issue{i}
}

// PathAnalysis splits PATH into Windows-mounted and Linux entries.
type PathAnalysis struct {
	Entries      []string
	WindowsPaths []string
	LinuxPaths   []string
	Duplicates   []string
	// WindowsFirst is set when a /mnt/ entry precedes every Linux entry.
	WindowsFirst bool
}

// AnalyzePath classifies the entries of a PATH value.
func AnalyzePath(path string) PathAnalysis {
	var a PathAnalysis
	seen := make(map[string]bool)
	firstWindows, firstLinux := -1, -1
	for i, entry := range strings.Split(path, ":") {
		if entry == "" {
			continue
		}
		a.Entries = append(a.Entries, entry)
		if seen[entry] {
			a.Duplicates = append(a.Duplicates, entry)
		}
		seen[entry] = true
		if strings.HasPrefix(entry, windowsMountRoot) {
			a.WindowsPaths = append(a.WindowsPaths, entry)
			if firstWindows < 0 {
				firstWindows = i
			}
		} else {
			a.LinuxPaths = append(a.LinuxPaths, entry)
			if firstLinux < 0 {
				firstLinux = i
			}
		}
	}
	a.WindowsFirst = firstWindows >= 0 && firstLinux >= 0 && firstWindows < firstLinux
	return a
}

func checkPathPollution(t *target) []domain.Issue {
	a := AnalyzePath(t.env("PATH"))
	if len(a.WindowsPaths) <= windowsPathLimit {
		return nil
	}
	pct := float64(len(a.WindowsPaths)) / float64(len(a.Entries)) * 100
	issues := []domain.Issue{issue(domain.SeverityInfo, domain.CategoryWSLPath,
		"WSL PATH contains %d Windows paths (%.1f%% of %d total entries). Consider disabling Windows PATH in /etc/wsl.conf for cleaner environment",
		len(a.WindowsPaths), pct, len(a.Entries))}
	if a.WindowsFirst {
		issues = append(issues, issue(domain.SeverityWarning, domain.CategoryWSLPath,
			"Windows paths appear BEFORE Linux paths in PATH - Windows executables may be used instead of Linux ones"))
	}
	return issues
}

func checkInterop(t *target) []domain.Issue {
	if t.env("WSLENV") == "" {
		return nil
	}
	return []domain.Issue{issue(domain.SeverityInfo, domain.CategoryWSLInterop,
		"WSL interop is enabled - Windows programs can be called from Linux. Be aware of which environment your commands run in.")}
}

func checkLongPath(t *target) []domain.Issue {
	if n := len(t.path); n > longPathLimit {
		return []domain.Issue{issue(domain.SeverityWarning, domain.CategoryWindowsPath,
			"Project path is long (%d characters) - Windows has a 260 character limit. Enable long path support in registry.", n)}
	}
	return nil
}

func checkUnixPaths(t *target) []domain.Issue {
	names := t.filesContaining(func(content string) bool {
		for _, p := range []string{`"/home/`, `"/usr/`, `"/var/`} {
			if strings.Contains(content, p) {
				return true
			}
		}
		return false
	})
	if len(names) == 0 {
		return nil
	}
	return []domain.Issue{issue(domain.SeverityInfo, domain.CategoryCrossPlatform,
		"Found Unix-style paths in Python files: %s. Use pathlib.Path for cross-platform compatibility.",
		strings.Join(firstN(names, 3), ", "))}
}

var windowsScriptExts = []string{".bat", ".cmd", ".ps1"}

func checkWindowsScripts(t *target) []domain.Issue {
	var found []string
	for _, ext := range windowsScriptExts {
		for _, f := range t.files() {
			if strings.EqualFold(filepath.Ext(f), ext) {
				found = append(found, filepath.Base(f))
			}
		}
	}
	if len(found) == 0 {
		return nil
	}
	return []domain.Issue{issue(domain.SeverityInfo, domain.CategoryCrossPlatform,
		"Found Windows-specific files: %s. These won't execute on Linux.",
		strings.Join(firstN(found, windowsScriptHead), ", "))}
}

// CaseCollisions returns "a vs b" pairs of files in the same directory
// whose names differ only in case.
func CaseCollisions(files []string) []string {
	byKey := make(map[string]string)
	var conflicts []string
	for _, f := range files {
		key := strings.ToLower(filepath.ToSlash(f))
		if prev, ok := byKey[key]; ok {
			if prev != f {
				conflicts = append(conflicts, filepath.Base(prev)+" vs "+filepath.Base(f))
			}
			continue
		}
		byKey[key] = f
	}
	sort.Strings(conflicts)
	return conflicts
}

func checkCaseCollisions(t *target) []domain.Issue {
	conflicts := CaseCollisions(t.files())
	if len(conflicts) == 0 {
		return nil
	}
	return []domain.Issue{issue(domain.SeverityWarning, domain.CategoryCrossPlatform,
		"Found files that differ only in case: %s. This will cause issues on case-insensitive filesystems (Windows/macOS).",
		strings.Join(firstN(conflicts, 3), ", "))}
}

func checkPathSpaces(t *target) []domain.Issue {
	if !strings.Contains(t.path, " ") {
		return nil
	}
	return []domain.Issue{issue(domain.SeverityInfo, domain.CategoryPath,
		"Project path contains spaces - some tools may have issues. Consider using underscores or hyphens instead.")}
}

func checkPathNonASCII(t *target) []domain.Issue {
	for _, r := range t.path {
		if r > unicode.MaxASCII {
			return []domain.Issue{issue(domain.SeverityWarning, domain.CategoryPath,
				"Project path contains non-ASCII characters - may cause issues with some tools.")}
		}
	}
	return nil
}

// Recommendations returns platform tips followed by general ones.
func Recommendations(osType domain.OSType) []string {
	var out []string
	switch osType {
	case domain.OSWSL:
		out = append(out,
			"Keep project files on Linux filesystem (~/projects) not Windows (/mnt/c/)",
			"Use Linux versions of tools (node, python) not Windows versions",
			"Configure git: core.autocrlf=input for proper line endings",
			"Consider disabling Windows PATH in /etc/wsl.conf for cleaner environment",
		)
	case domain.OSWindowsNative:
		out = append(out,
			"Use pathlib.Path for cross-platform file paths",
			"Enable long path support in Windows registry or Group Policy",
			"Use forward slashes (/) even on Windows for compatibility",
			"Configure git: core.autocrlf=true for Windows line endings",
		)
	case domain.OSLinux:
		out = append(out,
			"Be aware of case sensitivity - File.py != file.py",
			"Use .gitattributes to enforce line endings for cross-platform projects",
			"Make shell scripts executable with chmod +x",
		)
	case domain.OSMacOS, domain.OSUnknown:
	}
	return append(out,
		"Use .editorconfig to enforce consistent code style",
		"Add .gitattributes for line ending consistency",
		"Test on multiple platforms if project is cross-platform",
	)
}
