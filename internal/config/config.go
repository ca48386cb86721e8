package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigFileNames are searched, in order, in every directory from the script
// directory up to the filesystem root.
var ConfigFileNames = []string{"jitzu.yaml", "jitzu.yml", "jitzu.toml"}

// Config represents a jitzu.yaml / jitzu.toml project configuration.
type Config struct {
	// Manifests lists host manifest files (relative to the config file)
	// whose modules are added to the host registry before compilation.
	Manifests []string `yaml:"manifests,omitempty" toml:"manifests"`

	// Preload names host modules that are in scope without a `use`.
	Preload []string `yaml:"preload,omitempty" toml:"preload"`

	// Cache is the path of the SQLite bytecode cache. Empty disables caching.
	Cache string `yaml:"cache,omitempty" toml:"cache"`

	// Verbosity is the log verbosity (0 = errors only, 1 = info, 2 = debug).
	Verbosity int `yaml:"verbosity,omitempty" toml:"verbosity"`

	// Disasm dumps the disassembly of every compiled chunk to stderr.
	Disasm bool `yaml:"disasm,omitempty" toml:"disasm"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `yaml:"-" toml:"-"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{Preload: []string{"System"}}
}

// LoadConfig reads and parses a config file; the format follows the extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}
	return cfg, nil
}

// ParseConfig parses config content from bytes.
// The path argument selects the format and is used in error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if strings.HasSuffix(path, ".toml") {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for a config file starting from dir and walking up
// to parent directories. Returns "" and nil error if none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// FindAndLoad returns the nearest config above dir, or Default() if none.
func FindAndLoad(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

// ManifestPaths returns the manifest paths resolved against the config directory.
func (c *Config) ManifestPaths() []string {
	paths := make([]string, 0, len(c.Manifests))
	for _, m := range c.Manifests {
		if filepath.IsAbs(m) || c.Dir == "" {
			paths = append(paths, m)
			continue
		}
		paths = append(paths, filepath.Join(c.Dir, m))
	}
	return paths
}

// CachePath returns the cache path resolved against the config directory.
func (c *Config) CachePath() string {
	if c.Cache == "" || filepath.IsAbs(c.Cache) || c.Dir == "" {
		return c.Cache
	}
	return filepath.Join(c.Dir, c.Cache)
}

func (c *Config) validate(path string) error {
	if c.Verbosity < 0 || c.Verbosity > 2 {
		return fmt.Errorf("%s: verbosity must be 0, 1 or 2, got %d", path, c.Verbosity)
	}
	seen := make(map[string]bool)
	for i, m := range c.Preload {
		if m == "" {
			return fmt.Errorf("%s: preload[%d]: module name is empty", path, i)
		}
		if seen[m] {
			return fmt.Errorf("%s: preload[%d]: duplicate module %q", path, i, m)
		}
		seen[m] = true
	}
	for i, m := range c.Manifests {
		if m == "" {
			return fmt.Errorf("%s: manifests[%d]: path is empty", path, i)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Preload == nil {
		c.Preload = []string{"System"}
	}
}
