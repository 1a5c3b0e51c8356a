package config

import (
	"path/filepath"
	"testing"
)

func TestResolvePaths(t *testing.T) {
	cfg := Default()
	cfg.State.Path = "/var/lib/cadre/state.db"

	ResolvePaths(cfg, "/work/project")

	if cfg.Registry.Path != filepath.Join("/work/project", "registry.json") {
		t.Errorf("registry path = %q", cfg.Registry.Path)
	}

	if cfg.Registry.ResultsPath != filepath.Join("/work/project", ".cadre", "evaluation_results.json") {
		t.Errorf("results path = %q", cfg.Registry.ResultsPath)
	}

	if cfg.Hierarchy.Path != filepath.Join("/work/project", "hierarchy.yaml") {
		t.Errorf("hierarchy path = %q", cfg.Hierarchy.Path)
	}

	// Absolute paths are left alone.
	if cfg.State.Path != "/var/lib/cadre/state.db" {
		t.Errorf("state path = %q", cfg.State.Path)
	}
}

func TestResolvePaths_EmptyStaysEmpty(t *testing.T) {
	cfg := Default()
	cfg.Log.Path = ""

	ResolvePaths(cfg, "/work/project")

	if cfg.Log.Path != "" {
		t.Errorf("empty log path resolved to %q", cfg.Log.Path)
	}
}
