// Package config loads YAML configuration from ~/.hactl/config.yaml
// (overridable via HACTL_CONFIG). A missing file is not an error: the
// default configuration is written out so users have something to edit.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"hactl/internal/domain"
	"hactl/internal/ports"
)

// FileLoader implements ports.ConfigProvider against the local filesystem.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path defers resolution to the
// HACTL_CONFIG environment variable and the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

var _ ports.ConfigProvider = (*FileLoader)(nil)

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return applyEnvOverrides(cfg), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return applyEnvOverrides(hydrateDefaults(cfg)), nil
}

// Path returns the config file location that Load would use.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv("HACTL_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".hactl", "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func defaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Hub: domain.HubSettings{
			Server:         "http://homeassistant.local:8123",
			TokenEnvVar:    "HASS_TOKEN",
			TimeoutSeconds: 10,
		},
		Cache: domain.CacheSettings{
			EntitiesTTL: "5m",
			RegistryTTL: "1h",
		},
		Matcher: domain.MatcherSettings{
			Threshold:      0.6,
			MaxSuggestions: 3,
		},
		Context: domain.ContextSettings{
			TTL: "5m",
		},
		Output: domain.OutputSettings{
			Format: "table",
			Color:  "auto",
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	def := defaultConfig()
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = def.ConfigFormatVersion
	}
	if cfg.Hub.TokenEnvVar == "" {
		cfg.Hub.TokenEnvVar = def.Hub.TokenEnvVar
	}
	if cfg.Hub.TimeoutSeconds == 0 {
		cfg.Hub.TimeoutSeconds = def.Hub.TimeoutSeconds
	}
	if cfg.Cache.EntitiesTTL == "" {
		cfg.Cache.EntitiesTTL = def.Cache.EntitiesTTL
	}
	if cfg.Cache.RegistryTTL == "" {
		cfg.Cache.RegistryTTL = def.Cache.RegistryTTL
	}
	if cfg.Matcher.Threshold == 0 {
		cfg.Matcher.Threshold = def.Matcher.Threshold
	}
	if cfg.Matcher.MaxSuggestions == 0 {
		cfg.Matcher.MaxSuggestions = def.Matcher.MaxSuggestions
	}
	if cfg.Context.TTL == "" {
		cfg.Context.TTL = def.Context.TTL
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = def.Output.Format
	}
	if cfg.Output.Color == "" {
		cfg.Output.Color = def.Output.Color
	}
	return cfg
}

// applyEnvOverrides lets HACTL_SERVER point a single invocation at a
// different hub without editing the config file.
func applyEnvOverrides(cfg domain.Config) domain.Config {
	if server := os.Getenv("HACTL_SERVER"); server != "" {
		cfg.Hub.Server = server
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
