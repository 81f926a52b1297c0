package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file looked up from the working directory upwards.
const ManifestName = "syntaxlab.yml"

// ErrManifestNotFound is returned by FindManifest when no manifest exists.
var ErrManifestNotFound = errors.New(ManifestName + " not found")

// ColorMode controls styling of verify output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsValid reports whether the colour mode is recognised.
func (c ColorMode) IsValid() bool {
	switch c {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// Manifest represents the parsed contents of syntaxlab.yml.
type Manifest struct {
	Path    string
	Name    string
	Lessons []string
	Check   CheckConfig
	Color   ColorMode
	// LogLevel is empty unless the manifest sets one.
	LogLevel string
}

// CheckConfig selects the Go sources scanned by the check command.
type CheckConfig struct {
	Include []string
	Exclude []string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type manifestFile struct {
	Name    string   `yaml:"name"`
	Lessons []string `yaml:"lessons"`
	Check   struct {
		Include []string `yaml:"include"`
		Exclude []string `yaml:"exclude"`
	} `yaml:"check"`
	Output struct {
		Color string `yaml:"color"`
	} `yaml:"output"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func (raw manifestFile) toManifest(absPath string) *Manifest {
	color := ColorMode(strings.ToLower(strings.TrimSpace(raw.Output.Color)))
	if color == "" {
		color = ColorAuto
	}
	return &Manifest{
		Path:     absPath,
		Name:     strings.TrimSpace(raw.Name),
		Lessons:  raw.Lessons,
		Check:    CheckConfig{Include: raw.Check.Include, Exclude: raw.Check.Exclude},
		Color:    color,
		LogLevel: strings.TrimSpace(raw.Log.Level),
	}
}

// Default returns the configuration used when no manifest exists.
func Default() *Manifest {
	return &Manifest{Color: ColorAuto}
}

// LoadManifest parses syntaxlab.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	seen := make(map[string]struct{}, len(m.Lessons))
	for i, lesson := range m.Lessons {
		lesson = strings.TrimSpace(lesson)
		if lesson == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("lessons[%d] must be a non-empty string", i))
			continue
		}
		if _, dup := seen[lesson]; dup {
			errs.Issues = append(errs.Issues, fmt.Sprintf("lessons[%d] repeats %q", i, lesson))
		}
		seen[lesson] = struct{}{}
	}
	for _, group := range []struct {
		name     string
		patterns []string
	}{
		{"check.include", m.Check.Include},
		{"check.exclude", m.Check.Exclude},
	} {
		for i, pattern := range group.patterns {
			if _, err := path.Match(pattern, ""); err != nil {
				errs.Issues = append(errs.Issues, fmt.Sprintf("%s[%d]: invalid pattern %q", group.name, i, pattern))
			}
		}
	}
	if !m.Color.IsValid() {
		errs.Issues = append(errs.Issues, fmt.Sprintf("output.color must be auto, always or never, got %q", m.Color))
	}
	if m.LogLevel != "" {
		if _, err := zapcore.ParseLevel(m.LogLevel); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("log.level: %v", err))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// SelectLessons returns the manifest's lesson list, or every known lesson
// when the manifest names none. Unknown names are reported together.
func (m *Manifest) SelectLessons(known []string) ([]string, error) {
	if len(m.Lessons) == 0 {
		return known, nil
	}
	index := make(map[string]struct{}, len(known))
	for _, name := range known {
		index[name] = struct{}{}
	}
	var errs ValidationError
	out := make([]string, 0, len(m.Lessons))
	for _, name := range m.Lessons {
		name = strings.TrimSpace(name)
		if _, ok := index[name]; !ok {
			errs.Issues = append(errs.Issues, fmt.Sprintf("unknown lesson %q", name))
			continue
		}
		out = append(out, name)
	}
	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return out, nil
}

// Level returns the configured log level, or fallback when none is set.
func (m *Manifest) Level(fallback zapcore.Level) zapcore.Level {
	if m.LogLevel == "" {
		return fallback
	}
	level, err := zapcore.ParseLevel(m.LogLevel)
	if err != nil {
		return fallback
	}
	return level
}

// Root is the directory holding the manifest, or "" for the default one.
func (m *Manifest) Root() string {
	if m.Path == "" {
		return ""
	}
	return filepath.Dir(m.Path)
}

// FindManifest walks from start towards the filesystem root looking for
// syntaxlab.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ManifestName, origin, ErrManifestNotFound)
		}
		dir = parent
	}
}

// LoadManifestFrom finds and loads the nearest manifest. When none exists it
// returns Default() and an error wrapping ErrManifestNotFound.
func LoadManifestFrom(start string) (*Manifest, error) {
	manifestPath, err := FindManifest(start)
	if err != nil {
		return Default(), err
	}
	return LoadManifest(manifestPath)
}
