// Package config loads the optional per-project configuration file at
// .mnemo/config.yml. Every field has a default; a missing file is not an
// error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config controls where the database lives and which files analysis visits.
type Config struct {
	// Database is the path to the SQLite file, relative to the project root
	// unless absolute.
	Database string `yaml:"database"`

	// Include lists doublestar globs of files to analyze. Empty means every
	// file with a supported extension.
	Include []string `yaml:"include"`

	// Exclude lists doublestar globs of files to skip. Exclusion wins over
	// inclusion.
	Exclude []string `yaml:"exclude"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Database: filepath.Join(".mnemo", "memory.db"),
		Exclude:  []string{"**/node_modules/**", "**/target/**", "**/.git/**"},
	}
}

// Load reads .mnemo/config.yml under projectRoot, filling unset fields with
// defaults. A missing file yields the defaults.
func Load(projectRoot string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(projectRoot, ".mnemo", "config.yml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if fileCfg.Database != "" {
		cfg.Database = fileCfg.Database
	}
	if len(fileCfg.Include) > 0 {
		cfg.Include = fileCfg.Include
	}
	if len(fileCfg.Exclude) > 0 {
		cfg.Exclude = fileCfg.Exclude
	}
	return cfg, nil
}

// DatabasePath resolves the configured database path against projectRoot.
func (c *Config) DatabasePath(projectRoot string) string {
	if filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(projectRoot, c.Database)
}
