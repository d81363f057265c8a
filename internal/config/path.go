// Package config loads kantoor settings from the config file, .env and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR style environment variables in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// Dir is the directory holding config.yaml and local state such as the sqlite cache.
// KANTOOR_CONFIG_DIR overrides the default of ~/.config/kantoor.
func Dir() string {
	if dir := os.Getenv("KANTOOR_CONFIG_DIR"); dir != "" {
		return ExpandPath(dir)
	}
	return ExpandPath("~/.config/kantoor")
}
