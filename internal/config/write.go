package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Write serializes cfg as YAML to path, creating the parent directory
// with 0700 permissions if needed and writing the file with 0600.
func Write(cfg *Config, path string) error {
	path = expandHome(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory %q; %w", dir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config; %w", err)
	}

	header := []byte("# blockfile configuration\n\n")
	content := append(header, data...)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write config file %q; %w", path, err)
	}
	return nil
}

// WriteDefault writes a default configuration to the default config
// path.
func WriteDefault() error {
	cfg := NewDefaultConfig()
	return Write(&cfg, DefaultConfigPath())
}
