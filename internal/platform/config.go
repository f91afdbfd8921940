package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the optional per-directory configuration file.
const ConfigFileName = "swiftnote.yaml"

// FileConfig mirrors swiftnote.yaml. Zero values mean "not set"; flags and
// explicit options take precedence.
type FileConfig struct {
	Adapter    string `yaml:"adapter,omitempty"`
	Data       string `yaml:"data,omitempty"`
	ReadOnly   *bool  `yaml:"read_only,omitempty"`
	Versioning *bool  `yaml:"versioning,omitempty"`
	SystemDir  string `yaml:"system_dir,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`
}

// LoadConfig reads a config file. A missing file yields an empty config.
// Relative data paths are resolved against the file's directory.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if cfg.Data != "" && !filepath.IsAbs(cfg.Data) {
		cfg.Data = filepath.Join(filepath.Dir(path), cfg.Data)
	}
	switch cfg.Adapter {
	case "", AdapterSQLite, AdapterFS, AdapterMemory:
	default:
		return cfg, fmt.Errorf("invalid config %s: unknown adapter %q", path, cfg.Adapter)
	}
	return cfg, nil
}

// Options converts the file settings into functional options.
func (c FileConfig) Options() []Option {
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.ReadOnly != nil {
		opts = append(opts, WithReadOnly(*c.ReadOnly))
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	if c.SystemDir != "" {
		opts = append(opts, WithSystemDir(c.SystemDir))
	}
	return opts
}

// Level parses LogLevel, defaulting to info.
func (c FileConfig) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
