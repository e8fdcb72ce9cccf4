// Package config holds the installer's typed configuration, parsed from the
// YAML payload embedded into the binary at build time.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	General  GeneralConfig   `yaml:"general"`
	Packages []PackageConfig `yaml:"packages"`
}

// GeneralConfig carries application-wide attributes. Name is the
// human-readable application name shown in the window title and UI.
type GeneralConfig struct {
	Name      string `yaml:"name"`
	Publisher string `yaml:"publisher"`
	Homepage  string `yaml:"homepage"`
}

// PackageConfig describes one installable package. Resolution and download
// of package sources belong to the task pipeline, not this layer.
type PackageConfig struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Default     bool         `yaml:"default"`
	Source      SourceConfig `yaml:"source"`
}

// SourceConfig points a package at its release feed.
type SourceConfig struct {
	Name   string `yaml:"name"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
}

// Parse decodes and validates an embedded configuration payload.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.General.Name == "" {
		return nil, fmt.Errorf("config: general.name is required")
	}
	return &cfg, nil
}
