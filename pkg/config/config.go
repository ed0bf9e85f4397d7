// Botwbuild is an incremental mod build pipeline for The Legend of Zelda: Breath of the Wild.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config loads and layers botwbuild's configuration: built-in
// defaults, an optional config.yml document, environment variables, then
// CLI flags, each overlay taking precedence over the last.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Known flag names recognized in a config.yml's Flags list.
const (
	FlagBigEndian      = "be"
	FlagHardWarnings   = "hard_warnings"
	FlagIgnoreWarnings = "ignore_warnings"
	FlagVerbose        = "verbose"
	FlagVerifyHash     = "verify_hash"
)

// Document is the on-disk config.yml shape: free-form mod metadata, a set
// of boolean feature flags, and arbitrary string options.
type Document struct {
	Meta    map[string]string `yaml:"meta"`
	Flags   []string          `yaml:"flags"`
	Options map[string]string `yaml:"options"`
}

// Config is the fully resolved, in-memory configuration for a build.
type Config struct {
	BigEndian      bool
	HardWarnings   bool
	IgnoreWarnings bool
	Verbose        bool
	VerifyHash     bool

	Meta map[string]string

	Source string
	Output string
}

// Default returns the built-in baseline configuration.
func Default() Config {
	return Config{
		BigEndian: true,
		Meta:      map[string]string{},
		Source:    ".",
		Output:    "build",
	}
}

// LoadFromEnv overlays BOTWBUILD_-prefixed environment variables onto cfg.
func LoadFromEnv(cfg Config) (Config, error) {
	if v := os.Getenv("BOTWBUILD_BE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: invalid BOTWBUILD_BE: %w", err)
		}
		cfg.BigEndian = b
	}
	if v := os.Getenv("BOTWBUILD_HARD_WARNINGS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: invalid BOTWBUILD_HARD_WARNINGS: %w", err)
		}
		cfg.HardWarnings = b
	}
	if v := os.Getenv("BOTWBUILD_IGNORE_WARNINGS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: invalid BOTWBUILD_IGNORE_WARNINGS: %w", err)
		}
		cfg.IgnoreWarnings = b
	}
	if v := os.Getenv("BOTWBUILD_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: invalid BOTWBUILD_VERBOSE: %w", err)
		}
		cfg.Verbose = b
	}
	if v := os.Getenv("BOTWBUILD_VERIFY_HASH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: invalid BOTWBUILD_VERIFY_HASH: %w", err)
		}
		cfg.VerifyHash = b
	}
	if v := os.Getenv("BOTWBUILD_SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("BOTWBUILD_OUTPUT"); v != "" {
		cfg.Output = v
	}
	return cfg, nil
}

// LoadFile reads a config.yml document at path and applies it onto cfg.
// A missing file is not an error: config.yml is optional.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	for k, v := range doc.Meta {
		cfg.Meta[k] = v
	}
	for _, flag := range doc.Flags {
		switch flag {
		case FlagBigEndian:
			cfg.BigEndian = true
		case FlagHardWarnings:
			cfg.HardWarnings = true
		case FlagIgnoreWarnings:
			cfg.IgnoreWarnings = true
		case FlagVerbose:
			cfg.Verbose = true
		case FlagVerifyHash:
			cfg.VerifyHash = true
		}
	}
	if v, ok := doc.Options["source"]; ok {
		cfg.Source = v
	}
	if v, ok := doc.Options["output"]; ok {
		cfg.Output = v
	}
	return cfg, nil
}

// Validate checks that the resolved configuration makes sense.
func (c Config) Validate() error {
	if c.HardWarnings && c.IgnoreWarnings {
		return fmt.Errorf("config: hard_warnings and ignore_warnings are mutually exclusive")
	}
	if c.Source == "" {
		return fmt.Errorf("config: source directory must not be empty")
	}
	return nil
}
