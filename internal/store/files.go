package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ExistingFile is the subset of a files row the indexer's diff phase
// needs to decide skip vs. reparse.
type ExistingFile struct {
	ID         int64
	ModifiedMs int64
	Size       int64
}

// ListExistingFiles returns every file row for a root, keyed by
// relative path, for the indexer's mtime+size diff.
func (s *Store) ListExistingFiles(ctx context.Context, rootID int64) (map[string]ExistingFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT relative_path, id, modified_ms, size FROM files WHERE root_id = ?`,
		rootID,
	)
	if err != nil {
		return nil, fmt.Errorf("list existing files for root %d; %w", rootID, err)
	}
	defer rows.Close()

	out := make(map[string]ExistingFile)
	for rows.Next() {
		var relPath string
		var f ExistingFile
		if err := rows.Scan(&relPath, &f.ID, &f.ModifiedMs, &f.Size); err != nil {
			return nil, fmt.Errorf("scan existing file row for root %d; %w", rootID, err)
		}
		out[relPath] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing file rows for root %d; %w", rootID, err)
	}
	return out, nil
}

// UpsertFileTx inserts or updates a file row within an indexer commit
// transaction and returns its id.
func UpsertFileTx(ctx context.Context, tx *sql.Tx, f File) (int64, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO files (root_id, relative_path, absolute_path, modified_ms, size, heading_count)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(root_id, relative_path) DO UPDATE SET
		   absolute_path = excluded.absolute_path,
		   modified_ms = excluded.modified_ms,
		   size = excluded.size,
		   heading_count = excluded.heading_count`,
		f.RootID, f.RelativePath, f.AbsolutePath, f.ModifiedMs, f.Size, f.HeadingCount,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert file %q; %w", f.RelativePath, err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM files WHERE root_id = ? AND relative_path = ?`,
		f.RootID, f.RelativePath,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("read upserted file id for %q; %w", f.RelativePath, err)
	}
	return id, nil
}

// SetHeadingCountTx updates files.heading_count to keep it equal to
// COUNT(*) FROM headings WHERE file_id = ?, per the schema invariant.
func SetHeadingCountTx(ctx context.Context, tx *sql.Tx, fileID int64, count int) error {
	_, err := tx.ExecContext(ctx, `UPDATE files SET heading_count = ? WHERE id = ?`, count, fileID)
	if err != nil {
		return fmt.Errorf("set heading_count for file %d; %w", fileID, err)
	}
	return nil
}

// DeleteFilesNotInTx removes file rows under rootID whose relative
// path is absent from the seen set; cascade removes their headings,
// authors, and FTS rows.
func DeleteFilesNotInTx(ctx context.Context, tx *sql.Tx, rootID int64, seen map[string]bool) (int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, relative_path FROM files WHERE root_id = ?`, rootID)
	if err != nil {
		return 0, fmt.Errorf("list files for cleanup under root %d; %w", rootID, err)
	}

	type idPath struct {
		id   int64
		path string
	}
	var toDelete []idPath
	for rows.Next() {
		var ip idPath
		if err := rows.Scan(&ip.id, &ip.path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan file row for cleanup under root %d; %w", rootID, err)
		}
		if !seen[ip.path] {
			toDelete = append(toDelete, ip)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate file rows for cleanup under root %d; %w", rootID, err)
	}
	rows.Close()

	for _, ip := range toDelete {
		if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, ip.id); err != nil {
			return 0, fmt.Errorf("delete stale file %q; %w", ip.path, err)
		}
	}
	return len(toDelete), nil
}

// GetFile looks up a single file by id.
func (s *Store) GetFile(ctx context.Context, fileID int64) (File, error) {
	var f File
	err := s.db.QueryRowContext(ctx,
		`SELECT id, root_id, relative_path, absolute_path, modified_ms, size, heading_count
		 FROM files WHERE id = ?`, fileID,
	).Scan(&f.ID, &f.RootID, &f.RelativePath, &f.AbsolutePath, &f.ModifiedMs, &f.Size, &f.HeadingCount)
	if err == sql.ErrNoRows {
		return File{}, fmt.Errorf("file %d; %w", fileID, ErrNotFound)
	}
	if err != nil {
		return File{}, fmt.Errorf("query file %d; %w", fileID, err)
	}
	return f, nil
}
