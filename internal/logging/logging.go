package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager handles logger lifecycle including the bootstrap-to-full mode
// transition. Components obtain a logger via Logger() and keep using it
// across Upgrade calls.
type Manager struct {
	handler *SwappableHandler
	logger  *slog.Logger
	rotator *lumberjack.Logger
	level   *slog.LevelVar
	mu      sync.Mutex
}

// NewManager creates a logging manager in bootstrap mode: text to
// stderr only. Call Upgrade once config is available.
func NewManager() *Manager {
	level := new(slog.LevelVar)
	level.Set(DefaultLevel)

	opts := &slog.HandlerOptions{Level: level}
	bootstrap := slog.NewTextHandler(os.Stderr, opts)

	handler := NewSwappableHandler(bootstrap)
	logger := slog.New(handler)

	return &Manager{
		handler: handler,
		logger:  logger,
		level:   level,
	}
}

// Logger returns the current logger. The returned *slog.Logger is
// stable across Upgrade calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade transitions from bootstrap mode to full mode: stderr text
// plus size-rotated JSON to logFilePath. Call after config is loaded.
func (m *Manager) Upgrade(logFilePath string, level slog.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory %q; %w", dir, err)
	}

	if m.rotator != nil {
		_ = m.rotator.Close()
	}
	m.rotator = &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}

	m.level.Set(level)
	opts := &slog.HandlerOptions{Level: m.level}

	fullHandler := slogmulti.Fanout(
		slog.NewTextHandler(os.Stderr, opts),
		slog.NewJSONHandler(m.rotator, opts),
	)

	m.handler.Swap(fullHandler)
	return nil
}

// SetLevel changes the log level at runtime.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Close shuts down the logger, closing the rotating file writer if open.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rotator != nil {
		err := m.rotator.Close()
		m.rotator = nil
		return err
	}
	return nil
}
