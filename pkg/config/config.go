// Package config handles loading and saving arbor settings.
//
// Settings follow the XDG Base Directory specification and live in
// $XDG_CONFIG_HOME/arbor/settings.yaml (~/.config/arbor/settings.yaml).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"gopkg.in/yaml.v3"
)

// Settings are the persisted user preferences.
type Settings struct {
	LastLoadDirectory string `yaml:"last_load_directory,omitempty"`
	LastSaveDirectory string `yaml:"last_save_directory,omitempty"`

	Layout   domain.Layout `yaml:"layout,omitempty"`
	Mode     domain.Mode   `yaml:"mode,omitempty"`
	LogLevel string        `yaml:"log_level,omitempty"` // debug, info, warn, error

	// Models are preloaded into the registry at startup.
	Models []registry.Model `yaml:"models,omitempty"`

	path string
}

// DefaultSettings returns settings with the editor defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Layout:   domain.LayoutHorizontal,
		Mode:     domain.ModeEditor,
		LogLevel: "info",
	}
}

// Dir returns the XDG config directory for arbor.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "arbor")
}

// Path returns the full path to settings.yaml.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "settings.yaml")
}

// Load reads the settings from the XDG config directory.
// Returns DefaultSettings if the file doesn't exist.
func Load() (*Settings, error) {
	path := Path()
	if path == "" {
		return DefaultSettings(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads settings from a specific path. A missing file yields the
// defaults, bound to path so that Save creates it.
func LoadFrom(path string) (*Settings, error) {
	s := DefaultSettings()
	s.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return s, fmt.Errorf("parsing settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks enumerated fields.
func (s *Settings) Validate() error {
	if s.Layout != "" {
		if _, err := domain.ParseLayout(string(s.Layout)); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}
	if s.Mode != "" {
		if _, err := domain.ParseMode(string(s.Mode)); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}

// Location returns the file the settings are bound to, if any.
func (s *Settings) Location() string {
	return s.path
}

// Save writes the settings back to the file they were loaded from.
// Settings not bound to a file are not persisted.
func (s *Settings) Save() error {
	if s.path == "" {
		return nil
	}
	return s.SaveTo(s.path)
}

// SaveTo writes the settings to a specific path and binds them to it.
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	s.path = path
	return nil
}

// Registry builds a registry with the built-ins plus the configured models.
func (s *Settings) Registry() (*registry.Registry, error) {
	reg := registry.New()
	for _, m := range s.Models {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("settings models: %w", err)
		}
	}
	return reg, nil
}

// Level returns the configured log level, defaulting to info.
func (s *Settings) Level() slog.Level {
	lvl, _ := ParseLevel(s.LogLevel)
	return lvl
}

// ParseLevel maps a level name to a slog.Level. The empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}
