// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// DefaultRoot is the system data directory used when no configuration
// overrides it.
const DefaultRoot = "/var/ncc"

// Config is the system configuration.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Paths configures directory and file locations.
	Paths PathsConfig `yaml:"paths"`

	// Compiler configures artifact output defaults.
	Compiler CompilerConfig `yaml:"compiler"`

	// Per-environment overrides, applied after the base config loads.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths    *PathsConfig    `yaml:"paths,omitempty"`
	Compiler *CompilerConfig `yaml:"compiler,omitempty"`
}

// PathsConfig configures locations on disk.
type PathsConfig struct {
	// Root is the system data directory.
	Root string `yaml:"root"`

	// Packages is the packages root. An installed package lives at
	// {Packages}/{extension}/{package-id}.
	Packages string `yaml:"packages"`

	// Lock is the package lock store file.
	Lock string `yaml:"lock"`

	// Cache holds downloaded or staged artifacts.
	Cache string `yaml:"cache"`
}

// CompilerConfig configures artifact output.
type CompilerConfig struct {
	// Compression is "zstd", "lz4", or "none".
	Compression string `yaml:"compression"`

	// CompactKeys writes artifacts with bytecode keys.
	CompactKeys bool `yaml:"compact_keys"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:     DefaultRoot,
			Packages: filepath.Join(DefaultRoot, "packages"),
			Lock:     filepath.Join(DefaultRoot, "package.lck"),
			Cache:    filepath.Join(DefaultRoot, "cache"),
		},
		Compiler: CompilerConfig{
			Compression: "zstd",
			CompactKeys: true,
		},
	}
}

// WithRoot returns the default configuration rooted at root instead of
// DefaultRoot. Tests and user-scope installs use it.
func WithRoot(root string) *Config {
	cfg := Default()
	cfg.Paths = PathsConfig{
		Root:     root,
		Packages: filepath.Join(root, "packages"),
		Lock:     filepath.Join(root, "package.lck"),
		Cache:    filepath.Join(root, "cache"),
	}
	return cfg
}

// Load loads configuration from the file named by NCC_CONFIG, or
// returns the defaults when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv("NCC_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values; the only expansion performed is
// ${HOME}, ${NCC_ROOT}, and similar path variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current
// config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the section for c.Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Packages != "" {
			c.Paths.Packages = overrides.Paths.Packages
		}
		if overrides.Paths.Lock != "" {
			c.Paths.Lock = overrides.Paths.Lock
		}
		if overrides.Paths.Cache != "" {
			c.Paths.Cache = overrides.Paths.Cache
		}
	}

	if overrides.Compiler != nil {
		if overrides.Compiler.Compression != "" {
			c.Compiler.Compression = overrides.Compiler.Compression
		}
		// CompactKeys is a bool, so it is always applied from overrides.
		c.Compiler.CompactKeys = overrides.Compiler.CompactKeys
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"NCC_ROOT": c.Paths.Root,
		"HOME":     os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["NCC_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Packages = expandVars(c.Paths.Packages, vars)
	c.Paths.Lock = expandVars(c.Paths.Lock, vars)
	c.Paths.Cache = expandVars(c.Paths.Cache, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}
	if c.Paths.Packages == "" {
		errs = append(errs, fmt.Errorf("paths.packages is required"))
	}
	if c.Paths.Lock == "" {
		errs = append(errs, fmt.Errorf("paths.lock is required"))
	}
	switch c.Compiler.Compression {
	case "zstd", "lz4", "none":
	default:
		errs = append(errs, fmt.Errorf("compiler.compression must be one of: zstd, lz4, none"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.Packages, c.Paths.Cache, filepath.Dir(c.Paths.Lock)} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

// InstallationPaths resolves the layout for a package compiled by
// extension.
func (c *Config) InstallationPaths(extension, packageID string) InstallationPaths {
	return NewInstallationPaths(filepath.Join(c.Paths.Packages, extension, packageID))
}
