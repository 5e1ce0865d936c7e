package store

import (
	"context"
	"fmt"
)

// RootSummary is a Root annotated with aggregate file and heading
// counts, for list_roots.
type RootSummary struct {
	Root
	FileCount    int
	HeadingCount int
}

// ListRootSummaries returns every root with its file count and the
// sum of files.heading_count beneath it.
func (s *Store) ListRootSummaries(ctx context.Context) ([]RootSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.path, r.added_at_ms, r.last_indexed_ms,
		       COUNT(f.id) AS file_count,
		       COALESCE(SUM(f.heading_count), 0) AS heading_count
		FROM roots r
		LEFT JOIN files f ON f.root_id = r.id
		GROUP BY r.id
		ORDER BY r.path`,
	)
	if err != nil {
		return nil, fmt.Errorf("list root summaries; %w", err)
	}
	defer rows.Close()

	var out []RootSummary
	for rows.Next() {
		var rs RootSummary
		if err := rows.Scan(&rs.ID, &rs.Path, &rs.AddedAtMs, &rs.LastIndexedMs, &rs.FileCount, &rs.HeadingCount); err != nil {
			return nil, fmt.Errorf("scan root summary row; %w", err)
		}
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate root summary rows; %w", err)
	}
	return out, nil
}

// CountCapturesByTarget returns the number of capture rows recorded
// under rootID for a given target_relative_path.
func (s *Store) CountCapturesByTarget(ctx context.Context, rootID int64, target string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM captures WHERE root_id = ? AND target_relative_path = ?`,
		rootID, target,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count captures for target %q under root %d; %w", target, rootID, err)
	}
	return n, nil
}

// ListFilesByRoot returns every file row under a root, ordered by
// relative path, for get_index_snapshot.
func (s *Store) ListFilesByRoot(ctx context.Context, rootID int64) ([]File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root_id, relative_path, absolute_path, modified_ms, size, heading_count
		 FROM files WHERE root_id = ? ORDER BY relative_path`, rootID,
	)
	if err != nil {
		return nil, fmt.Errorf("list files for root %d; %w", rootID, err)
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.RootID, &f.RelativePath, &f.AbsolutePath, &f.ModifiedMs, &f.Size, &f.HeadingCount); err != nil {
			return nil, fmt.Errorf("scan file row for root %d; %w", rootID, err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file rows for root %d; %w", rootID, err)
	}
	return out, nil
}
