package blockfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/not-ani/blockfile/internal/metrics"
)

// canonicalizeRootPath mirrors the indexer's own canonicalization so
// add_root, remove_root, and index_root agree on a root's identity.
func canonicalizeRootPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve root path %q; %w", path, err)
	}
	return abs, nil
}

// AddRoot implements add_root: canonicalize path and ensure a roots
// row exists for it, without indexing.
func (s *Service) AddRoot(ctx context.Context, path string) (string, error) {
	abs, err := canonicalizeRootPath(path)
	if err != nil {
		return "", err
	}
	root, err := s.store.AddRoot(ctx, abs, Clock())
	if err != nil {
		return "", fmt.Errorf("add root %q; %w", abs, err)
	}
	s.updateRootsGauge(ctx)
	return root.Path, nil
}

// RemoveRoot implements remove_root.
func (s *Service) RemoveRoot(ctx context.Context, path string) error {
	abs, err := canonicalizeRootPath(path)
	if err != nil {
		return err
	}
	root, err := s.store.GetRootByPath(ctx, abs)
	if err != nil {
		return fmt.Errorf("remove root %q; %w", abs, err)
	}
	if err := s.store.RemoveRoot(ctx, root.ID); err != nil {
		return err
	}
	s.updateRootsGauge(ctx)
	return nil
}

// ListRoots implements list_roots.
func (s *Service) ListRoots(ctx context.Context) ([]RootInfo, error) {
	summaries, err := s.store.ListRootSummaries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RootInfo, 0, len(summaries))
	for _, rs := range summaries {
		out = append(out, RootInfo{
			Path:          rs.Path,
			AddedAtMs:     rs.AddedAtMs,
			LastIndexedMs: rs.LastIndexedMs,
			FileCount:     rs.FileCount,
			HeadingCount:  rs.HeadingCount,
		})
	}
	return out, nil
}

func (s *Service) updateRootsGauge(ctx context.Context) {
	roots, err := s.store.ListRoots(ctx)
	if err != nil {
		return
	}
	metrics.UpdateRootsTotal(len(roots))
}
