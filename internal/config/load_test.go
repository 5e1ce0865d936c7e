package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitNoConfigFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("BLOCKFILE_CONFIG_DIR", tmpDir)
	t.Setenv("HOME", tmpDir)

	origDir, _ := os.Getwd()
	os.Chdir(tmpDir)
	t.Cleanup(func() { os.Chdir(origDir) })

	Reset()
	if err := Init(); err != nil {
		t.Fatalf("Init() returned error when no config file exists: %v", err)
	}
	if path := ConfigFilePath(); path != "" {
		t.Errorf("ConfigFilePath() = %q, want empty string", path)
	}
	if got := Get().Search.DefaultLimit; got != DefaultSearchLimit {
		t.Errorf("Search.DefaultLimit = %d, want default %d", got, DefaultSearchLimit)
	}
}

func TestInitConfigInEnvDirLoadsFromEnvDir(t *testing.T) {
	envDir := t.TempDir()
	configPath := filepath.Join(envDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("search:\n  default_limit: 77\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("BLOCKFILE_CONFIG_DIR", envDir)
	Reset()

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}
	if loaded := ConfigFilePath(); loaded != configPath {
		t.Errorf("ConfigFilePath() = %q, want %q", loaded, configPath)
	}
	if got := Get().Search.DefaultLimit; got != 77 {
		t.Errorf("Search.DefaultLimit = %d, want 77", got)
	}
}

func TestInitInvalidYAMLReturnsError(t *testing.T) {
	envDir := t.TempDir()
	configPath := filepath.Join(envDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("not: [valid yaml"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("BLOCKFILE_CONFIG_DIR", envDir)
	Reset()

	if err := Init(); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestInitEnvVarOverridesConfigFile(t *testing.T) {
	envDir := t.TempDir()
	configPath := filepath.Join(envDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("BLOCKFILE_CONFIG_DIR", envDir)
	t.Setenv("BLOCKFILE_LOG_LEVEL", "debug")
	Reset()

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}
	if got := Get().LogLevel; got != "debug" {
		t.Errorf("LogLevel = %q, want env override %q", got, "debug")
	}
}

func TestInitInvalidConfigFailsValidation(t *testing.T) {
	envDir := t.TempDir()
	configPath := filepath.Join(envDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("log_level: nonsense\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("BLOCKFILE_CONFIG_DIR", envDir)
	Reset()

	if err := Init(); err == nil {
		t.Error("expected validation error for invalid log_level")
	}
}

func TestMustGetPanicsWhenUninitialized(t *testing.T) {
	Reset()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustGet to panic before Init")
		}
	}()
	MustGet()
}

func TestExpandPathExpandsTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := ExpandPath("~/config.yaml")
	want := filepath.Join(home, "config.yaml")
	if got != want {
		t.Errorf("ExpandPath() = %q, want %q", got, want)
	}
}

func TestExpandPathLeavesNonTildePathUnchanged(t *testing.T) {
	got := ExpandPath("/absolute/path.yaml")
	if got != "/absolute/path.yaml" {
		t.Errorf("ExpandPath() = %q, want unchanged", got)
	}
}
