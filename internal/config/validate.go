package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for errors.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if cfg.LogLevel == "" {
		errs = append(errs, ValidationError{Field: "log_level", Message: "must not be empty"})
	} else if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error; got %q", cfg.LogLevel),
		})
	}

	if cfg.Storage.DatabasePath == "" {
		errs = append(errs, ValidationError{Field: "storage.database_path", Message: "must not be empty"})
	}

	if cfg.Indexer.ChunkSize < 0 {
		errs = append(errs, ValidationError{
			Field:   "indexer.chunk_size",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Indexer.ChunkSize),
		})
	}

	if cfg.Indexer.ProgressIntervalMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "indexer.progress_interval_ms",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Indexer.ProgressIntervalMs),
		})
	}

	if cfg.Search.DefaultLimit < 1 {
		errs = append(errs, ValidationError{
			Field:   "search.default_limit",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Search.DefaultLimit),
		})
	}

	if cfg.Capture.DefaultTarget == "" {
		errs = append(errs, ValidationError{Field: "capture.default_target", Message: "must not be empty"})
	} else if !strings.HasSuffix(strings.ToLower(cfg.Capture.DefaultTarget), ".docx") {
		errs = append(errs, ValidationError{
			Field:   "capture.default_target",
			Message: fmt.Sprintf("must end in .docx, got %q", cfg.Capture.DefaultTarget),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
