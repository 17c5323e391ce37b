// internal/config/config.go
//
// This package handles configuration and the .stratum directory structure.
// Every project that uses stratum gets a .stratum/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/validate"
)

const (
	// StratumDir is the name of the directory we create in each project
	StratumDir = ".stratum"
)

const defaultProjectConfigYAML = `# stratum project configuration
version: 1

# Layers that must be present in every plans directory. A missing mandatory
# layer aborts the run; other layers are optional.
mandatory_layers:
  - schema
  - logic

validation:
  # Similarity cutoff for matching field names across layers (0..1].
  naming_threshold: 0.85
  # Extra type synonyms merged into the built-in compatibility table.
  # type_synonyms:
  #   money: [decimal, numeric]

# Custom layer graph definition, relative to .stratum/. Leave empty for the
# built-in schema -> interface -> logic -> presentation graph.
graph_file: ""

parse:
  parallel: false

logs:
  level: info
  max_size_mb: 10
  max_backups: 3
`

// ValidationConfig tunes the consistency validator.
type ValidationConfig struct {
	NamingThreshold float64             `yaml:"naming_threshold"`
	TypeSynonyms    map[string][]string `yaml:"type_synonyms,omitempty"`
}

// ParseConfig tunes plan loading.
type ParseConfig struct {
	Parallel bool `yaml:"parallel"`
}

// LogConfig carries the rotating-file logger settings.
type LogConfig struct {
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// ProjectConfig models .stratum/config.yaml.
type ProjectConfig struct {
	Version         int              `yaml:"version"`
	MandatoryLayers []string         `yaml:"mandatory_layers"`
	Validation      ValidationConfig `yaml:"validation"`
	GraphFile       string           `yaml:"graph_file,omitempty"`
	Parse           ParseConfig      `yaml:"parse"`
	Logs            LogConfig        `yaml:"logs"`
}

// Config holds the runtime configuration for stratum.
type Config struct {
	// ProjectDir is the directory where the user ran `stratum` from
	ProjectDir string

	// StratumProjectDir is ProjectDir/.stratum
	StratumProjectDir string

	Project ProjectConfig
}

// InitStratumDir creates the .stratum directory structure in the given
// project directory.
//
// Structure created:
// .stratum/
// ├── logs/    <- Rotating run logs
// ├── rules/   <- Rule packs (*.yaml, *.go)
// └── out/     <- Generated reports and unified plans
func InitStratumDir(projectDir string) error {
	stratumDir := filepath.Join(projectDir, StratumDir)

	dirs := []string{
		filepath.Join(stratumDir, "logs"),
		filepath.Join(stratumDir, "rules"),
		filepath.Join(stratumDir, "out"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}

	return ensureProjectConfig(filepath.Join(stratumDir, "config.yaml"))
}

// NewConfig loads the project configuration, falling back to defaults when
// no .stratum/config.yaml exists yet.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:        projectDir,
		StratumProjectDir: filepath.Join(projectDir, StratumDir),
		Project:           defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.StratumProjectDir, "logs")
}

// RulesDir returns the directory scanned for rule packs.
func (c *Config) RulesDir() string {
	return filepath.Join(c.StratumProjectDir, "rules")
}

// OutDir returns the directory for generated artifacts.
func (c *Config) OutDir() string {
	return filepath.Join(c.StratumProjectDir, "out")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StratumProjectDir, "config.yaml")
}

// MandatoryLayers resolves the configured mandatory layer names to kinds.
func (c *Config) MandatoryLayers() ([]layer.Kind, error) {
	kinds := make([]layer.Kind, 0, len(c.Project.MandatoryLayers))
	for _, name := range c.Project.MandatoryLayers {
		kind, err := layer.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("config: mandatory_layers: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// NamingThreshold returns the configured similarity cutoff.
func (c *Config) NamingThreshold() float64 {
	return c.Project.Validation.NamingThreshold
}

// TypeSynonyms returns the configured type-table extensions.
func (c *Config) TypeSynonyms() map[string][]string {
	return c.Project.Validation.TypeSynonyms
}

// ParallelParse reports whether plan files should be parsed concurrently.
func (c *Config) ParallelParse() bool {
	return c.Project.Parse.Parallel
}

// LoadGraph loads the custom layer graph when one is configured. It returns
// the graph, per-kind checkpoint overrides, or (nil, nil, nil) when the
// project uses the built-in graph.
func (c *Config) LoadGraph() (*layer.Graph, map[layer.Kind]string, error) {
	if strings.TrimSpace(c.Project.GraphFile) == "" {
		return nil, nil, nil
	}
	path := c.Project.GraphFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.StratumProjectDir, path)
	}
	graph, checkpoints, err := layer.LoadDefinitionFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config: graph_file: %w", err)
	}
	return graph, checkpoints, nil
}

// SetNamingThreshold updates the similarity cutoff and persists the value
// back to .stratum/config.yaml.
func (c *Config) SetNamingThreshold(threshold float64) error {
	c.Project.Validation.NamingThreshold = threshold
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:         1,
		MandatoryLayers: []string{string(layer.KindSchema), string(layer.KindLogic)},
		Validation: ValidationConfig{
			NamingThreshold: validate.DefaultNamingThreshold,
		},
		Logs: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Validation.NamingThreshold == 0 {
		pc.Validation.NamingThreshold = validate.DefaultNamingThreshold
	}
	if pc.Logs.Level == "" {
		pc.Logs.Level = "info"
	}
	if pc.Logs.MaxSizeMB == 0 {
		pc.Logs.MaxSizeMB = 10
	}
	if pc.Logs.MaxBackups == 0 {
		pc.Logs.MaxBackups = 3
	}
}

func (pc *ProjectConfig) normalize() {
	for i, name := range pc.MandatoryLayers {
		pc.MandatoryLayers[i] = strings.ToLower(strings.TrimSpace(name))
	}
	pc.GraphFile = strings.TrimSpace(pc.GraphFile)
	pc.Logs.Level = strings.ToLower(strings.TrimSpace(pc.Logs.Level))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	for i, name := range pc.MandatoryLayers {
		if _, err := layer.ParseKind(name); err != nil {
			return fmt.Errorf("mandatory_layers[%d]: %w", i, err)
		}
	}
	if t := pc.Validation.NamingThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("validation.naming_threshold must be in (0, 1], got %v", t)
	}
	switch pc.Logs.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logs.level must be debug, info, warn or error")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.StratumProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure stratum dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
