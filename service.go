package blockfile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/not-ani/blockfile/internal/store"
)

// Service wires the index store to the indexer, search engine, preview
// renderer, and capture writer, exposing the full command surface of
// §6 behind one constructor.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// Clock returns the current wall-clock time in milliseconds. It is a
// var so tests can stub it, matching the indexer package's Clock.
var Clock = func() int64 { return time.Now().UnixMilli() }

// New opens the index database at dbPath and returns a ready Service.
// logger may be nil, in which case slog.Default() is used.
func New(ctx context.Context, dbPath string, logger *slog.Logger) (*Service, error) {
	s, err := store.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open service store %q; %w", dbPath, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, logger: logger}, nil
}

// Close releases the underlying database connection.
func (s *Service) Close() error {
	return s.store.Close()
}
