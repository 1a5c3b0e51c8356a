package config

import (
	"os"
	"path/filepath"
)

// ProjectRoot returns the directory holding the project config, or the
// current directory when there is none. Relative paths in the
// configuration resolve against it, so cadre behaves the same from any
// subdirectory of the project.
func ProjectRoot() string {
	if projectConfig := findProjectConfig(); projectConfig != "" {
		return filepath.Dir(projectConfig)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// ResolvePaths anchors every relative path in the configuration to the
// given root. Absolute paths are left alone.
func ResolvePaths(cfg *Config, root string) {
	cfg.Registry.Path = resolvePath(cfg.Registry.Path, root)
	cfg.Registry.ResultsPath = resolvePath(cfg.Registry.ResultsPath, root)
	cfg.Hierarchy.Path = resolvePath(cfg.Hierarchy.Path, root)
	cfg.State.Path = resolvePath(cfg.State.Path, root)
	cfg.Log.Path = resolvePath(cfg.Log.Path, root)
}

func resolvePath(path, root string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
