// Package config handles configuration loading and validation for revtui.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/revtui/revtui/internal/core/vcs"
)

// Config holds the application configuration.
type Config struct {
	// VCSOrder is the backend detection order. Valid entries: git, jj, hg.
	VCSOrder []vcs.Kind `yaml:"vcs_order"`

	Scroll    ScrollConfig    `yaml:"scroll"`
	Highlight HighlightConfig `yaml:"highlight"`
	Log       LogConfig       `yaml:"log"`

	// SideBySide starts the viewer in the two-column layout.
	SideBySide bool `yaml:"side_by_side"`

	// ContextStep is how many surrounding lines one expand keypress adds.
	ContextStep int `yaml:"context_step"`

	// SessionFile is the session path relative to the repository root.
	SessionFile string `yaml:"session_file"`
}

// ScrollConfig sets the paging distances in rows.
type ScrollConfig struct {
	Page     int `yaml:"page"`
	HalfPage int `yaml:"half_page"`
}

// HighlightConfig controls syntax highlighting.
type HighlightConfig struct {
	Enabled bool   `yaml:"enabled"`
	Style   string `yaml:"style"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		VCSOrder:    vcs.DefaultDetectOrder,
		Scroll:      ScrollConfig{Page: 20, HalfPage: 10},
		Highlight:   HighlightConfig{Enabled: true, Style: "monokai"},
		Log:         LogConfig{Level: "info"},
		ContextStep: 10,
		SessionFile: filepath.Join(".revtui", "session.yaml"),
	}
}

// Load reads configuration from the given path. An empty or missing path
// returns defaults; a present but unreadable or invalid file is an error.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if len(c.VCSOrder) == 0 {
		c.VCSOrder = defaults.VCSOrder
	}
	if c.Scroll.Page == 0 {
		c.Scroll.Page = defaults.Scroll.Page
	}
	if c.Scroll.HalfPage == 0 {
		c.Scroll.HalfPage = defaults.Scroll.HalfPage
	}
	if c.Highlight.Style == "" {
		c.Highlight.Style = defaults.Highlight.Style
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.ContextStep == 0 {
		c.ContextStep = defaults.ContextStep
	}
	if c.SessionFile == "" {
		c.SessionFile = defaults.SessionFile
	}
}

// Validate checks the configuration for values that would misbehave later.
func (c *Config) Validate() error {
	for _, kind := range c.VCSOrder {
		switch kind {
		case vcs.KindGit, vcs.KindHg, vcs.KindJJ:
		default:
			return fmt.Errorf("unknown vcs kind %q", kind)
		}
	}
	if c.Scroll.Page < 1 {
		return fmt.Errorf("scroll.page must be positive, got %d", c.Scroll.Page)
	}
	if c.Scroll.HalfPage < 1 {
		return fmt.Errorf("scroll.half_page must be positive, got %d", c.Scroll.HalfPage)
	}
	if c.ContextStep < 1 {
		return fmt.Errorf("context_step must be positive, got %d", c.ContextStep)
	}
	return nil
}
