package store

import (
	"context"
	"fmt"
)

// InsertCapture appends a capture record. Captures are append-only:
// the system never updates or deletes one once recorded.
func (s *Store) InsertCapture(ctx context.Context, c Capture) (Capture, error) {
	target := c.TargetRelativePath
	if target == "" {
		target = defaultCaptureTarget
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO captures (root_id, source_path, section_title, target_relative_path, heading_level, content, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.RootID, c.SourcePath, c.SectionTitle, target, c.HeadingLevel, c.Content, c.CreatedAtMs,
	)
	if err != nil {
		return Capture{}, fmt.Errorf("insert capture for %q; %w", c.SourcePath, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Capture{}, fmt.Errorf("read inserted capture id for %q; %w", c.SourcePath, err)
	}
	c.ID = id
	c.TargetRelativePath = target
	return c, nil
}

// ListCapturesByRoot returns every capture recorded under a root, most
// recent first.
func (s *Store) ListCapturesByRoot(ctx context.Context, rootID int64) ([]Capture, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root_id, source_path, section_title, target_relative_path, heading_level, content, created_at_ms
		 FROM captures WHERE root_id = ? ORDER BY created_at_ms DESC`, rootID,
	)
	if err != nil {
		return nil, fmt.Errorf("list captures for root %d; %w", rootID, err)
	}
	defer rows.Close()

	var out []Capture
	for rows.Next() {
		var c Capture
		if err := rows.Scan(&c.ID, &c.RootID, &c.SourcePath, &c.SectionTitle, &c.TargetRelativePath, &c.HeadingLevel, &c.Content, &c.CreatedAtMs); err != nil {
			return nil, fmt.Errorf("scan capture row for root %d; %w", rootID, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capture rows for root %d; %w", rootID, err)
	}
	return out, nil
}

// ListCaptureTargets returns the distinct target_relative_path values
// recorded for a root, for the façade's list-capture-targets command.
func (s *Store) ListCaptureTargets(ctx context.Context, rootID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT target_relative_path FROM captures WHERE root_id = ? ORDER BY target_relative_path`,
		rootID,
	)
	if err != nil {
		return nil, fmt.Errorf("list capture targets for root %d; %w", rootID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan capture target row for root %d; %w", rootID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capture target rows for root %d; %w", rootID, err)
	}
	return out, nil
}
