// Package config handles configuration loading and management for cadre.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for cadre.
type Config struct {
	Registry  RegistryConfig  `mapstructure:"registry"`
	Hierarchy HierarchyConfig `mapstructure:"hierarchy"`
	State     StateConfig     `mapstructure:"state"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Log       LogConfig       `mapstructure:"log"`
}

// RegistryConfig holds registry document settings.
type RegistryConfig struct {
	// Path is the registry JSON document.
	Path string `mapstructure:"path"`
	// ResultsPath is where evaluation cycles write their results artifact.
	ResultsPath string `mapstructure:"results_path"`
	// LockTimeout is how long an evaluation waits for the registry lock.
	// Zero fails immediately when another evaluation holds it.
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// HierarchyConfig holds hierarchy definition settings.
type HierarchyConfig struct {
	// Path is the hierarchy YAML definition.
	Path string `mapstructure:"path"`
}

// StateConfig holds delegation state settings.
type StateConfig struct {
	// Path is the SQLite database tracking chains and the delegation log.
	Path string `mapstructure:"path"`
}

// ScoringConfig holds performance scoring settings.
type ScoringConfig struct {
	// TargetIssuesResolved is the issue count scoring as a full 1.0.
	TargetIssuesResolved int `mapstructure:"target_issues_resolved"`
}

// LogConfig holds debug log settings.
type LogConfig struct {
	// Path is the debug log file, written only when --debug is set.
	Path string `mapstructure:"path"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (CADRE_REGISTRY_PATH, CADRE_STATE_PATH, ...)
// 2. Project config (.cadre.yaml in current directory or parent)
// 3. User config (~/.config/cadre/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.BindEnv("registry.path", "CADRE_REGISTRY_PATH")
	v.BindEnv("registry.results_path", "CADRE_RESULTS_PATH")
	v.BindEnv("hierarchy.path", "CADRE_HIERARCHY_PATH")
	v.BindEnv("state.path", "CADRE_STATE_PATH")
	v.BindEnv("log.path", "CADRE_LOG_PATH")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(cfg)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(cfg)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("registry.path", cfg.Registry.Path)
	v.Set("registry.results_path", cfg.Registry.ResultsPath)
	v.Set("registry.lock_timeout", cfg.Registry.LockTimeout.String())
	v.Set("hierarchy.path", cfg.Hierarchy.Path)
	v.Set("state.path", cfg.State.Path)
	v.Set("scoring.target_issues_resolved", cfg.Scoring.TargetIssuesResolved)
	v.Set("log.path", cfg.Log.Path)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	// Registry defaults
	v.SetDefault("registry.path", "registry.json")
	v.SetDefault("registry.results_path", filepath.Join(".cadre", "evaluation_results.json"))
	v.SetDefault("registry.lock_timeout", "0s")

	// Hierarchy defaults
	v.SetDefault("hierarchy.path", "hierarchy.yaml")

	// State defaults
	v.SetDefault("state.path", filepath.Join(".cadre", "state.db"))

	// Scoring defaults
	v.SetDefault("scoring.target_issues_resolved", 20)

	// Log defaults
	v.SetDefault("log.path", filepath.Join(".cadre", "logs", "cadre.log"))
}

// getUserConfigDir returns the XDG config directory for cadre.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "cadre")
	}

	// Fall back to ~/.config/cadre
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "cadre")
	}
	return filepath.Join(home, ".config", "cadre")
}

// findProjectConfig searches for .cadre.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".cadre.yaml")
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

// expandPaths expands ${VAR} references in every configured path.
func expandPaths(cfg *Config) {
	cfg.Registry.Path = os.ExpandEnv(cfg.Registry.Path)
	cfg.Registry.ResultsPath = os.ExpandEnv(cfg.Registry.ResultsPath)
	cfg.Hierarchy.Path = os.ExpandEnv(cfg.Hierarchy.Path)
	cfg.State.Path = os.ExpandEnv(cfg.State.Path)
	cfg.Log.Path = os.ExpandEnv(cfg.Log.Path)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			Path:        "registry.json",
			ResultsPath: filepath.Join(".cadre", "evaluation_results.json"),
			LockTimeout: 0,
		},
		Hierarchy: HierarchyConfig{
			Path: "hierarchy.yaml",
		},
		State: StateConfig{
			Path: filepath.Join(".cadre", "state.db"),
		},
		Scoring: ScoringConfig{
			TargetIssuesResolved: 20,
		},
		Log: LogConfig{
			Path: filepath.Join(".cadre", "logs", "cadre.log"),
		},
	}
}
