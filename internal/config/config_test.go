package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Registry.Path != "registry.json" {
		t.Errorf("expected registry path 'registry.json', got %q", cfg.Registry.Path)
	}

	if cfg.Registry.ResultsPath != filepath.Join(".cadre", "evaluation_results.json") {
		t.Errorf("unexpected results path %q", cfg.Registry.ResultsPath)
	}

	if cfg.Registry.LockTimeout != 0 {
		t.Errorf("expected lock timeout 0, got %v", cfg.Registry.LockTimeout)
	}

	if cfg.Hierarchy.Path != "hierarchy.yaml" {
		t.Errorf("expected hierarchy path 'hierarchy.yaml', got %q", cfg.Hierarchy.Path)
	}

	if cfg.State.Path != filepath.Join(".cadre", "state.db") {
		t.Errorf("unexpected state path %q", cfg.State.Path)
	}

	if cfg.Scoring.TargetIssuesResolved != 20 {
		t.Errorf("expected target issues 20, got %d", cfg.Scoring.TargetIssuesResolved)
	}

	if cfg.Log.Path != filepath.Join(".cadre", "logs", "cadre.log") {
		t.Errorf("unexpected log path %q", cfg.Log.Path)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
registry:
  path: custom/registry.json
  lock_timeout: 30s
scoring:
  target_issues_resolved: 40
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Registry.Path != "custom/registry.json" {
		t.Errorf("expected registry path 'custom/registry.json', got %q", cfg.Registry.Path)
	}

	if cfg.Registry.LockTimeout != 30*time.Second {
		t.Errorf("expected lock timeout 30s, got %v", cfg.Registry.LockTimeout)
	}

	if cfg.Scoring.TargetIssuesResolved != 40 {
		t.Errorf("expected target issues 40, got %d", cfg.Scoring.TargetIssuesResolved)
	}

	// Unset keys keep their defaults.
	if cfg.Hierarchy.Path != "hierarchy.yaml" {
		t.Errorf("expected default hierarchy path, got %q", cfg.Hierarchy.Path)
	}

	if cfg.State.Path != filepath.Join(".cadre", "state.db") {
		t.Errorf("expected default state path, got %q", cfg.State.Path)
	}
}

func TestLoadFromPath_ExpandsEnv(t *testing.T) {
	os.Setenv("CADRE_TEST_DATA", "/data/cadre")
	defer os.Unsetenv("CADRE_TEST_DATA")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
registry:
  path: ${CADRE_TEST_DATA}/registry.json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Registry.Path != "/data/cadre/registry.json" {
		t.Errorf("expected expanded path, got %q", cfg.Registry.Path)
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestGetUserConfigDir(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := getUserConfigDir()
	expected := "/custom/config/cadre"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", t.TempDir())
	defer os.Unsetenv("XDG_CONFIG_HOME")

	cfg := Default()
	cfg.Registry.Path = "team/registry.json"
	cfg.Registry.LockTimeout = 45 * time.Second
	cfg.Scoring.TargetIssuesResolved = 25

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if loaded.Registry.Path != "team/registry.json" {
		t.Errorf("expected saved registry path, got %q", loaded.Registry.Path)
	}

	if loaded.Registry.LockTimeout != 45*time.Second {
		t.Errorf("expected saved lock timeout, got %v", loaded.Registry.LockTimeout)
	}

	if loaded.Scoring.TargetIssuesResolved != 25 {
		t.Errorf("expected saved target issues, got %d", loaded.Scoring.TargetIssuesResolved)
	}
}
