// Package config loads docdelta settings from YAML and acts as the
// composition root that wires backend constructors into the llm factory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/jatin2507/docdelta/llm"
)

// DatabaseConfig holds settings for the local usage database.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"` // SQLite database path (default: ~/.docdelta/docdelta.db)
}

// Settings is the top-level configuration for docdelta.
type Settings struct {
	// Providers lists the configured LLM backends in declaration order.
	Providers []*llm.Config `yaml:"providers,omitempty"`

	// PrimaryProvider selects the backend tried first. Empty means the
	// first configured backend.
	PrimaryProvider string `yaml:"primary_provider,omitempty"`

	// FallbackProviders is the ordered list of backends tried when the
	// primary fails.
	FallbackProviders []string `yaml:"fallback_providers,omitempty"`

	// EnableFallback toggles automatic failover. Defaults to true.
	EnableFallback *bool `yaml:"enable_fallback,omitempty"`

	// MaxRetries and RetryDelayMS are module-wide retry defaults applied to
	// every provider that does not set its own.
	MaxRetries   int `yaml:"max_retries,omitempty"`
	RetryDelayMS int `yaml:"retry_delay_ms,omitempty"`

	Database DatabaseConfig `yaml:"database,omitempty"`
}

// applyRetryDefaults pushes the module-wide retry settings onto providers
// that left theirs unset.
func (s *Settings) applyRetryDefaults() {
	for _, cfg := range s.Providers {
		if cfg.MaxRetries == 0 {
			cfg.MaxRetries = s.MaxRetries
		}
		if cfg.RetryDelayMS == 0 {
			cfg.RetryDelayMS = s.RetryDelayMS
		}
	}
}

// FallbackEnabled reports whether failover is on, defaulting to true when
// the field is omitted from the file.
func (s *Settings) FallbackEnabled() bool {
	if s.EnableFallback == nil {
		return true
	}
	return *s.EnableFallback
}

// DatabasePath returns the configured database path with defaults applied.
func (s *Settings) DatabasePath() string {
	if s.Database.Path != "" {
		return expandPath(s.Database.Path)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.docdelta/docdelta.db"
	}
	return filepath.Join(homeDir, ".docdelta", "docdelta.db")
}

// GetConfigPath returns the default config file path.
// Can be overridden via DOCDELTA_CONFIG_PATH environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("DOCDELTA_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.docdelta/config.yaml"
	}
	return filepath.Join(homeDir, ".docdelta", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Load loads settings from the given path, merging the file's contents on
// top of the defaults. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	defaults := Settings{
		Providers: []*llm.Config{
			{Provider: llm.ProviderAnthropic},
		},
	}

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); err != nil {
		// File doesn't exist, return defaults
		defaults.applyRetryDefaults()
		return &defaults, nil
	}

	configYAML, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(configYAML, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Merge loaded settings onto defaults
	if err := mergo.Merge(&defaults, settings, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	defaults.applyRetryDefaults()
	return &defaults, nil
}

// Save writes the settings to the specified path.
func Save(settings *Settings, path string) error {
	expandedPath := expandPath(path)

	// Ensure directory exists
	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
