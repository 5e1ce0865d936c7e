package config

import (
	"os"
	"os/user"
	"path/filepath"
)

func resolveHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.HomeDir
}

// ExpandPath expands a leading ~ in path to the user's home directory.
// Only "~" alone or "~/..." are expanded; "~user" is left untouched.
func ExpandPath(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) > 1 && path[1] != '/' {
		return path
	}
	home := resolveHomeDir()
	if home == "" {
		return path
	}
	if len(path) == 1 {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ConfigDir returns the default config directory path.
func ConfigDir() string {
	home := resolveHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "blockfile")
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// EnsureConfigDir creates the config directory with 0700 permissions.
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0o700)
}

// ConfigExistsAt returns true if a config file exists at the given path.
func ConfigExistsAt(path string) bool {
	path = expandHome(path)
	_, err := os.Stat(path)
	return err == nil
}
