package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var configMu sync.RWMutex
var configFilePath string
var currentConfig *Config

// Init initializes the configuration subsystem. It searches for a
// config file in priority order:
//  1. The directory named by BLOCKFILE_CONFIG_DIR
//  2. ~/.config/blockfile/
//  3. The current working directory
//
// If no config file is found, defaults plus env var overrides apply.
// If a config file exists but cannot be parsed, Init returns an error.
func Init() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("BLOCKFILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if envPath := os.Getenv("BLOCKFILE_CONFIG_DIR"); envPath != "" {
		viper.AddConfigPath(envPath)
	}
	if home := resolveHomeDir(); home != "" {
		viper.AddConfigPath(filepath.Join(home, ".config", "blockfile"))
	}
	viper.AddConfigPath(".")

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := &Config{}
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("unmarshal config; %w", err)
			}
			configMu.Lock()
			configFilePath = ""
			currentConfig = cfg
			configMu.Unlock()
			return nil
		}
		return fmt.Errorf("read config; %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config; %w", err)
	}
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed; %w", err)
	}

	configMu.Lock()
	configFilePath = viper.ConfigFileUsed()
	currentConfig = cfg
	configMu.Unlock()

	slog.Debug("config initialized", "file", configFilePath)
	return nil
}

// InitWithDefaults initializes the configuration subsystem with
// defaults and env var overrides only, skipping config file discovery.
func InitWithDefaults() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("BLOCKFILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	cfg := NewDefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshal config; %w", err)
	}

	configMu.Lock()
	configFilePath = ""
	currentConfig = &cfg
	configMu.Unlock()
	return nil
}

// ConfigFilePath returns the path of the loaded config file, or empty
// if defaults-only.
func ConfigFilePath() string {
	configMu.RLock()
	defer configMu.RUnlock()
	return configFilePath
}

// Reset clears configuration state. Intended for tests.
func Reset() {
	viper.Reset()
	configMu.Lock()
	configFilePath = ""
	currentConfig = nil
	configMu.Unlock()
}

// Get returns the typed configuration, or nil if uninitialized.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return currentConfig
}

// MustGet returns the typed configuration, panicking if uninitialized.
func MustGet() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	if currentConfig == nil {
		panic("config: not initialized; call Init() first")
	}
	return currentConfig
}
