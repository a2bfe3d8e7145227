// Package config handles configuration loading and management for architect.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/architect/internal/commentary"
	"github.com/ShayCichocki/architect/internal/vector"
	"github.com/ShayCichocki/architect/internal/workspace"
)

const (
	appName           = "architect"
	projectConfigName = ".architect.yaml"
	envPrefix         = "ARCHITECT"
)

// Config holds all configuration for architect.
type Config struct {
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Commands  CommandsConfig  `mapstructure:"commands"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// RetrievalConfig holds ranking limits and the fingerprint cache size.
type RetrievalConfig struct {
	ContextTopK     int     `mapstructure:"context_top_k"`
	ContextMinScore float64 `mapstructure:"context_min_score"`
	TopK            int     `mapstructure:"top_k"`
	MinScore        float64 `mapstructure:"min_score"`
	CacheSize       int     `mapstructure:"cache_size"`
}

// WorkspaceConfig holds the limits for collecting files from disk.
type WorkspaceConfig struct {
	MaxFiles    int      `mapstructure:"max_files"`
	MaxFileSize int64    `mapstructure:"max_file_size"`
	Ignore      []string `mapstructure:"ignore"`
	// SecretPatterns and SecretExtensions extend the built-in credential
	// file rules.
	SecretPatterns   []string `mapstructure:"secret_patterns"`
	SecretExtensions []string `mapstructure:"secret_extensions"`
}

// CommandsConfig holds the fallback verification commands.
type CommandsConfig struct {
	Build string `mapstructure:"build"`
	Test  string `mapstructure:"test"`
	Lint  string `mapstructure:"lint"`
	// DefaultTest is passed as the test list when the caller names none.
	DefaultTest string `mapstructure:"default_test"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ARCHITECT_RETRIEVAL_TOP_K and so on)
// 2. Project config (.architect.yaml in current directory or parent)
// 3. User config (~/.config/architect/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file, still honoring
// environment overrides.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

// Save writes cfg to the user config file.
func Save(cfg *Config) error {
	path := GetUserConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg to path as YAML.
func SaveTo(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	for _, key := range Keys() {
		value, err := rawValue(cfg, key)
		if err != nil {
			return err
		}
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// Default returns a Config with default values.
func Default() *Config {
	commands := commentary.DefaultCommands()
	return &Config{
		Retrieval: RetrievalConfig{
			ContextTopK:     vector.ContextTopK,
			ContextMinScore: vector.ContextMinScore,
			TopK:            vector.DefaultTopK,
			MinScore:        vector.DefaultMinScore,
			CacheSize:       1024,
		},
		Workspace: WorkspaceConfig{
			MaxFiles:    workspace.DefaultMaxFiles,
			MaxFileSize: workspace.DefaultMaxFileSize,
			Ignore:      append([]string(nil), workspace.DefaultIgnore...),

			SecretPatterns:   []string{},
			SecretExtensions: []string{},
		},
		Commands: CommandsConfig{
			Build: commands.Build,
			Test:  commands.Test,
			Lint:  commands.Lint,
		},
		Server: ServerConfig{
			Addr: ":8787",
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// setDefaults mirrors Default so every key is known to viper, which
// AutomaticEnv needs before it will unmarshal an environment override.
func setDefaults(v *viper.Viper) {
	d := Default()
	for _, key := range Keys() {
		value, _ := rawValue(d, key)
		v.SetDefault(key, value)
	}
}

// getUserConfigDir returns the XDG config directory for architect.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// findProjectConfig searches for .architect.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, projectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
