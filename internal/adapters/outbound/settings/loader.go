// Package settings loads harmonizer settings from a project file and the
// environment.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// EnvPrefix marks environment overrides: HARMONIZER_TIMEOUT=10 sets timeout.
const EnvPrefix = "HARMONIZER_"

// FileNames are looked up in the project directory in order. JSON is read
// with the YAML parser, which accepts it.
var FileNames = []string{".harmonizer.json", ".harmonizer.yaml", ".harmonizer.yml"}

// Loader reads settings. The zero value is ready to use.
type Loader struct{}

func New() *Loader { return &Loader{} }

// Load resolves settings for projectPath. An explicit file must exist;
// otherwise the first project file found is used, and with none present
// the defaults apply. Environment overrides are applied last.
func (l *Loader) Load(projectPath, explicit string) (domain.Settings, string, error) {
	k := koanf.New(".")

	path, err := resolveFile(projectPath, explicit)
	if err != nil {
		return domain.Settings{}, "", err
	}
	name := filepath.Base(path)
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return domain.Settings{}, "", fmt.Errorf("reading %s: %w", name, err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return domain.Settings{}, "", fmt.Errorf("parsing %s: %w", name, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return domain.Settings{}, "", fmt.Errorf("loading environment: %w", err)
	}

	cfg := domain.DefaultSettings()
	if k.Exists("python_candidates") {
		cfg.PythonCandidates = nil
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return domain.Settings{}, "", fmt.Errorf("parsing %s: %w", sourceName(name), err)
	}
	cfg.PythonCandidates = splitList(cfg.PythonCandidates)

	if err := cfg.Validate(); err != nil {
		return domain.Settings{}, "", fmt.Errorf("invalid %s: %w", sourceName(name), err)
	}
	return cfg, path, nil
}

func resolveFile(projectPath, explicit string) (string, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("config file %s is a directory", explicit)
		}
		return explicit, nil
	}
	for _, n := range FileNames {
		p := filepath.Join(projectPath, n)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

func sourceName(fileName string) string {
	if fileName == "" || fileName == "." {
		return "settings"
	}
	return fileName
}

// splitList expands comma-separated entries, as set through the
// environment.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ErrExists is returned by WriteDefault when the target file is present.
var ErrExists = errors.New("settings file already exists")

// WriteDefault writes the default settings as JSON to path. An existing
// file is never overwritten.
func WriteDefault(path string) error {
	data, err := json.MarshalIndent(domain.DefaultSettings(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
