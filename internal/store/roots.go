package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup by id or path finds no row.
var ErrNotFound = errors.New("not found")

// AddRoot inserts a new root, or returns the existing row if the path
// is already registered.
func (s *Store) AddRoot(ctx context.Context, path string, addedAtMs int64) (Root, error) {
	existing, err := s.GetRootByPath(ctx, path)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Root{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO roots (path, added_at_ms, last_indexed_ms) VALUES (?, ?, 0)`,
		path, addedAtMs,
	)
	if err != nil {
		return Root{}, fmt.Errorf("insert root %q; %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Root{}, fmt.Errorf("read inserted root id for %q; %w", path, err)
	}
	return Root{ID: id, Path: path, AddedAtMs: addedAtMs}, nil
}

// RemoveRoot deletes a root; files, headings, authors, and captures
// referencing it cascade via foreign keys.
func (s *Store) RemoveRoot(ctx context.Context, rootID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roots WHERE id = ?`, rootID)
	if err != nil {
		return fmt.Errorf("delete root %d; %w", rootID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected deleting root %d; %w", rootID, err)
	}
	if n == 0 {
		return fmt.Errorf("delete root %d; %w", rootID, ErrNotFound)
	}
	return nil
}

// ListRoots returns every registered root.
func (s *Store) ListRoots(ctx context.Context) ([]Root, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, added_at_ms, last_indexed_ms FROM roots ORDER BY path`,
	)
	if err != nil {
		return nil, fmt.Errorf("list roots; %w", err)
	}
	defer rows.Close()

	var out []Root
	for rows.Next() {
		var r Root
		if err := rows.Scan(&r.ID, &r.Path, &r.AddedAtMs, &r.LastIndexedMs); err != nil {
			return nil, fmt.Errorf("scan root row; %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate root rows; %w", err)
	}
	return out, nil
}

// GetRootByPath looks up a root by its canonical path.
func (s *Store) GetRootByPath(ctx context.Context, path string) (Root, error) {
	var r Root
	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, added_at_ms, last_indexed_ms FROM roots WHERE path = ?`,
		path,
	).Scan(&r.ID, &r.Path, &r.AddedAtMs, &r.LastIndexedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return Root{}, fmt.Errorf("root %q; %w", path, ErrNotFound)
	}
	if err != nil {
		return Root{}, fmt.Errorf("query root %q; %w", path, err)
	}
	return r, nil
}

// GetRoot looks up a root by id.
func (s *Store) GetRoot(ctx context.Context, rootID int64) (Root, error) {
	var r Root
	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, added_at_ms, last_indexed_ms FROM roots WHERE id = ?`,
		rootID,
	).Scan(&r.ID, &r.Path, &r.AddedAtMs, &r.LastIndexedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return Root{}, fmt.Errorf("root %d; %w", rootID, ErrNotFound)
	}
	if err != nil {
		return Root{}, fmt.Errorf("query root %d; %w", rootID, err)
	}
	return r, nil
}

// SetLastIndexedMs updates a root's last-indexed timestamp.
func (s *Store) SetLastIndexedMs(ctx context.Context, rootID, whenMs int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE roots SET last_indexed_ms = ? WHERE id = ?`, whenMs, rootID,
	)
	if err != nil {
		return fmt.Errorf("update last_indexed_ms for root %d; %w", rootID, err)
	}
	return nil
}

// SetLastIndexedMsTx is the transactional form used by the indexer's
// commit phase.
func SetLastIndexedMsTx(ctx context.Context, tx *sql.Tx, rootID, whenMs int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE roots SET last_indexed_ms = ? WHERE id = ?`, whenMs, rootID,
	)
	if err != nil {
		return fmt.Errorf("update last_indexed_ms for root %d; %w", rootID, err)
	}
	return nil
}
