package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevelRecognizesAllFourLevels(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for input, want := range cases {
		got, ok := ParseLevel(input)
		if !ok {
			t.Errorf("ParseLevel(%q) ok = false, want true", input)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseLevelUnrecognizedReturnsFalse(t *testing.T) {
	_, ok := ParseLevel("verbose")
	if ok {
		t.Error("ParseLevel(\"verbose\") ok = true, want false")
	}
}

func TestParseLevelOrDefaultFallsBackToDefault(t *testing.T) {
	if got := ParseLevelOrDefault("nonsense"); got != DefaultLevel {
		t.Errorf("ParseLevelOrDefault(\"nonsense\") = %v, want %v", got, DefaultLevel)
	}
}
