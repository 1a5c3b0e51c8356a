package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify cadre configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/cadre/config.yaml
Project-specific overrides can be placed in .cadre.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("registry.path: %s\n", cfg.Registry.Path)
	fmt.Printf("registry.results_path: %s\n", cfg.Registry.ResultsPath)
	fmt.Printf("registry.lock_timeout: %s\n", cfg.Registry.LockTimeout)
	fmt.Printf("hierarchy.path: %s\n", cfg.Hierarchy.Path)
	fmt.Printf("state.path: %s\n", cfg.State.Path)
	fmt.Printf("scoring.target_issues_resolved: %d\n", cfg.Scoring.TargetIssuesResolved)
	fmt.Printf("log.path: %s\n", cfg.Log.Path)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "registry.path":
		return cfg.Registry.Path, nil
	case "registry.results_path":
		return cfg.Registry.ResultsPath, nil
	case "registry.lock_timeout":
		return cfg.Registry.LockTimeout.String(), nil
	case "hierarchy.path":
		return cfg.Hierarchy.Path, nil
	case "state.path":
		return cfg.State.Path, nil
	case "scoring.target_issues_resolved":
		return strconv.Itoa(cfg.Scoring.TargetIssuesResolved), nil
	case "log.path":
		return cfg.Log.Path, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "registry.path":
		cfg.Registry.Path = value
	case "registry.results_path":
		cfg.Registry.ResultsPath = value
	case "registry.lock_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for lock_timeout: %w", err)
		}
		cfg.Registry.LockTimeout = d
	case "hierarchy.path":
		cfg.Hierarchy.Path = value
	case "state.path":
		cfg.State.Path = value
	case "scoring.target_issues_resolved":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for target_issues_resolved: %w", err)
		}
		cfg.Scoring.TargetIssuesResolved = n
	case "log.path":
		cfg.Log.Path = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
