package blockfile

import (
	"context"
	"time"

	"github.com/not-ani/blockfile/internal/metrics"
	"github.com/not-ani/blockfile/internal/search"
)

// SearchIndex implements search_index. rootPath, when non-empty,
// scopes the search to that root's files.
func (s *Service) SearchIndex(ctx context.Context, query, rootPath string, limit int) ([]SearchHit, error) {
	var rootID *int64
	if rootPath != "" {
		abs, err := canonicalizeRootPath(rootPath)
		if err != nil {
			return nil, err
		}
		root, err := s.store.GetRootByPath(ctx, abs)
		if err != nil {
			return nil, err
		}
		rootID = &root.ID
	}

	started := time.Now()
	hits, err := search.Index(ctx, s.store, query, rootID, limit)
	metrics.RecordSearch(len(hits), time.Since(started), err)
	if err != nil {
		s.logger.Error("search_index failed", "query", query, "error", err)
		return nil, err
	}
	return hits, nil
}
