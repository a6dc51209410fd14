package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// SearchPaths returns the files Discover tries, in order, after the explicit
// path and EnvConfig.
func SearchPaths() []string {
	paths := []string{"wdocx.toml", "wdocx.yaml", "wdocx.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wdocx", "config.toml"))
	}
	return paths
}

// Discover loads the first config found. An explicit path wins, then the
// file named by EnvConfig, then SearchPaths. Both explicit sources must
// exist. With nothing found the defaults apply.
func Discover(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if env := os.Getenv(EnvConfig); env != "" {
		cfg, err := Load(env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvConfig, err)
		}
		return cfg, nil
	}

	for _, path := range SearchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return Load(path)
		}
	}
	return Default(), nil
}
