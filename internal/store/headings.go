package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReplaceHeadingsTx deletes every existing heading row for fileID and
// inserts the given set, propagating to search_fts via triggers.
func ReplaceHeadingsTx(ctx context.Context, tx *sql.Tx, fileID int64, headings []Heading) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM headings WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("clear headings for file %d; %w", fileID, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO headings (file_id, heading_order, level, text, normalized, file_name, relative_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare heading insert for file %d; %w", fileID, err)
	}
	defer stmt.Close()

	for _, h := range headings {
		if _, err := stmt.ExecContext(ctx, fileID, h.Order, h.Level, h.Text, h.Normalized, h.FileName, h.RelativePath); err != nil {
			return fmt.Errorf("insert heading %q for file %d; %w", h.Text, fileID, err)
		}
	}
	return nil
}

// ReplaceAuthorsTx is ReplaceHeadingsTx's counterpart for authors.
func ReplaceAuthorsTx(ctx context.Context, tx *sql.Tx, fileID int64, authors []Author) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("clear authors for file %d; %w", fileID, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO authors (file_id, author_order, text, normalized, file_name, relative_path)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare author insert for file %d; %w", fileID, err)
	}
	defer stmt.Close()

	for _, a := range authors {
		if _, err := stmt.ExecContext(ctx, fileID, a.Order, a.Text, a.Normalized, a.FileName, a.RelativePath); err != nil {
			return fmt.Errorf("insert author %q for file %d; %w", a.Text, fileID, err)
		}
	}
	return nil
}

// ListHeadings returns every heading for a file in paragraph order.
func (s *Store) ListHeadings(ctx context.Context, fileID int64) ([]Heading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_id, heading_order, level, text, normalized, file_name, relative_path
		 FROM headings WHERE file_id = ? ORDER BY heading_order`, fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list headings for file %d; %w", fileID, err)
	}
	defer rows.Close()

	var out []Heading
	for rows.Next() {
		var h Heading
		if err := rows.Scan(&h.ID, &h.FileID, &h.Order, &h.Level, &h.Text, &h.Normalized, &h.FileName, &h.RelativePath); err != nil {
			return nil, fmt.Errorf("scan heading row for file %d; %w", fileID, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate heading rows for file %d; %w", fileID, err)
	}
	return out, nil
}
