// Package config loads the optional .lintel.yaml file at a project root.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up at the project root.
const FileName = ".lintel.yaml"

const (
	defaultDatabase = ".lintel/lintel.db"
	defaultKeepRuns = 20
)

// Config is the parsed .lintel.yaml.
type Config struct {
	// Database is the results database path, relative to the project root.
	Database string `yaml:"database"`

	// KeepRuns is how many recorded runs per project survive pruning.
	KeepRuns int `yaml:"keep-runs"`

	// Parallelism bounds concurrent extraction; 0 means one worker per CPU.
	Parallelism int `yaml:"parallelism"`

	// Debounce is the watch command's quiet period.
	Debounce time.Duration `yaml:"debounce"`

	// Reviews selects built-in reviews. Absent means all of them; an empty
	// list means none.
	Reviews []Review `yaml:"reviews"`

	// ScriptsDir resolves relative script paths and script imports.
	ScriptsDir string `yaml:"scripts-dir"`

	// Scripts declares Risor-scripted reviews.
	Scripts []Script `yaml:"scripts"`
}

// Review enables one built-in review.
type Review struct {
	Name   string   `yaml:"name"`
	Ignore []string `yaml:"ignore"`
}

// Script declares one scripted review.
type Script struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Script string   `yaml:"script"`
	Ignore []string `yaml:"ignore"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{Database: defaultDatabase, KeepRuns: defaultKeepRuns}
}

// Load reads root/.lintel.yaml, falling back to Default when it is missing.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration data, filling defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if cfg.Database == "" {
		cfg.Database = defaultDatabase
	}
	if cfg.KeepRuns <= 0 {
		cfg.KeepRuns = defaultKeepRuns
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DatabasePath resolves the database path against root.
func (c *Config) DatabasePath(root string) string {
	if filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(root, c.Database)
}

// ScriptsPath resolves the scripts directory against root.
func (c *Config) ScriptsPath(root string) string {
	if c.ScriptsDir == "" || filepath.IsAbs(c.ScriptsDir) {
		return c.ScriptsDir
	}
	return filepath.Join(root, c.ScriptsDir)
}

var validKinds = map[string]bool{"module": true, "extra_file": true, "manifest": true}

func (c *Config) validate() error {
	seen := make(map[string]bool)
	for i, r := range c.Reviews {
		if r.Name == "" {
			return fmt.Errorf("config: reviews[%d]: missing name", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("config: duplicate review %q", r.Name)
		}
		seen[r.Name] = true
	}
	for i, s := range c.Scripts {
		switch {
		case s.Name == "":
			return fmt.Errorf("config: scripts[%d]: missing name", i)
		case s.Script == "":
			return fmt.Errorf("config: script %q: missing script path", s.Name)
		case !validKinds[s.Kind]:
			return fmt.Errorf("config: script %q: kind must be module, extra_file or manifest, got %q", s.Name, s.Kind)
		case seen[s.Name]:
			return fmt.Errorf("config: duplicate review %q", s.Name)
		}
		seen[s.Name] = true
	}
	if c.Debounce < 0 {
		return fmt.Errorf("config: debounce must not be negative")
	}
	return nil
}
