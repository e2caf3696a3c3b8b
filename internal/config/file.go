// Package config handles annotator configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"annotator/internal/state"

	"gopkg.in/yaml.v3"
)

// Config is the top-level annotator configuration.
type Config struct {
	Image                 string       `yaml:"image"`
	Drawable              bool         `yaml:"drawable"`
	Mode                  string       `yaml:"mode"` // view | pen | eraser
	TransparentToolbar    bool         `yaml:"transparent_toolbar"`
	BackgroundAnnotations []string     `yaml:"background_annotations"`
	ForegroundAnnotation  string       `yaml:"foreground_annotation"`
	Feed                  FeedConfig   `yaml:"feed"`
	Window                WindowConfig `yaml:"window"`
	ExportDir             string       `yaml:"export_dir"`
}

// FeedConfig controls the websocket annotation feed.
type FeedConfig struct {
	Listen    string `yaml:"listen"` // empty disables the feed
	Advertise bool   `yaml:"advertise"`
}

// WindowConfig sizes the main window.
type WindowConfig struct {
	Title  string  `yaml:"title"`
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadFile reads a YAML configuration file. Relative file paths are
// resolved against the file's directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if _, err := cfg.CanvasMode(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) resolve(dir string) {
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i, p := range c.BackgroundAnnotations {
		c.BackgroundAnnotations[i] = rel(p)
	}
	c.ForegroundAnnotation = rel(c.ForegroundAnnotation)
	if !strings.Contains(c.Image, "://") {
		c.Image = rel(c.Image)
	}
	c.ExportDir = rel(c.ExportDir)
}

// CanvasMode returns the configured start mode. An empty mode is view.
func (c *Config) CanvasMode() (state.CanvasMode, error) {
	if c.Mode == "" {
		return state.ModeView, nil
	}
	return state.ParseCanvasMode(c.Mode)
}

func (c *Config) applyDefaults() {
	if c.Window.Title == "" {
		c.Window.Title = "Annotator"
	}
	if c.Window.Width <= 0 {
		c.Window.Width = 1024
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 768
	}
}
