package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one forward schema step, applied at most once and
// recorded in schema_migrations.
type Migration struct {
	Version     int
	Description string
	Up          string
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "create roots and files tables",
		Up: `
			CREATE TABLE IF NOT EXISTS roots (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				path TEXT UNIQUE NOT NULL,
				added_at_ms INTEGER NOT NULL,
				last_indexed_ms INTEGER
			);

			CREATE TABLE IF NOT EXISTS files (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				root_id INTEGER NOT NULL REFERENCES roots(id) ON DELETE CASCADE,
				relative_path TEXT NOT NULL,
				absolute_path TEXT NOT NULL,
				modified_ms INTEGER NOT NULL,
				size INTEGER NOT NULL,
				heading_count INTEGER NOT NULL DEFAULT 0,
				UNIQUE(root_id, relative_path)
			);

			CREATE INDEX IF NOT EXISTS idx_files_root_id ON files(root_id);
		`,
	},
	{
		Version:     2,
		Description: "create headings and authors tables with FTS5 mirrors",
		Up: `
			CREATE TABLE IF NOT EXISTS headings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
				heading_order INTEGER NOT NULL,
				level INTEGER NOT NULL,
				text TEXT NOT NULL,
				normalized TEXT NOT NULL,
				file_name TEXT NOT NULL,
				relative_path TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_headings_file_id ON headings(file_id);
			CREATE INDEX IF NOT EXISTS idx_headings_normalized ON headings(normalized);

			CREATE TABLE IF NOT EXISTS authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
				author_order INTEGER NOT NULL,
				text TEXT NOT NULL,
				normalized TEXT NOT NULL,
				file_name TEXT NOT NULL,
				relative_path TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_authors_file_id ON authors(file_id);
			CREATE INDEX IF NOT EXISTS idx_authors_normalized ON authors(normalized);

			CREATE VIRTUAL TABLE IF NOT EXISTS search_fts USING fts5(
				heading_text, normalized, file_name, relative_path,
				content='headings', content_rowid='id',
				tokenize='unicode61 remove_diacritics 2'
			);

			CREATE VIRTUAL TABLE IF NOT EXISTS author_fts USING fts5(
				author_text, normalized, file_name, relative_path,
				content='authors', content_rowid='id',
				tokenize='unicode61 remove_diacritics 2'
			);

			CREATE TRIGGER IF NOT EXISTS headings_ai AFTER INSERT ON headings BEGIN
				INSERT INTO search_fts(rowid, heading_text, normalized, file_name, relative_path)
				VALUES (new.id, new.text, new.normalized, new.file_name, new.relative_path);
			END;

			CREATE TRIGGER IF NOT EXISTS headings_ad AFTER DELETE ON headings BEGIN
				INSERT INTO search_fts(search_fts, rowid, heading_text, normalized, file_name, relative_path)
				VALUES ('delete', old.id, old.text, old.normalized, old.file_name, old.relative_path);
			END;

			CREATE TRIGGER IF NOT EXISTS headings_au AFTER UPDATE ON headings BEGIN
				INSERT INTO search_fts(search_fts, rowid, heading_text, normalized, file_name, relative_path)
				VALUES ('delete', old.id, old.text, old.normalized, old.file_name, old.relative_path);
				INSERT INTO search_fts(rowid, heading_text, normalized, file_name, relative_path)
				VALUES (new.id, new.text, new.normalized, new.file_name, new.relative_path);
			END;

			CREATE TRIGGER IF NOT EXISTS authors_ai AFTER INSERT ON authors BEGIN
				INSERT INTO author_fts(rowid, author_text, normalized, file_name, relative_path)
				VALUES (new.id, new.text, new.normalized, new.file_name, new.relative_path);
			END;

			CREATE TRIGGER IF NOT EXISTS authors_ad AFTER DELETE ON authors BEGIN
				INSERT INTO author_fts(author_fts, rowid, author_text, normalized, file_name, relative_path)
				VALUES ('delete', old.id, old.text, old.normalized, old.file_name, old.relative_path);
			END;

			CREATE TRIGGER IF NOT EXISTS authors_au AFTER UPDATE ON authors BEGIN
				INSERT INTO author_fts(author_fts, rowid, author_text, normalized, file_name, relative_path)
				VALUES ('delete', old.id, old.text, old.normalized, old.file_name, old.relative_path);
				INSERT INTO author_fts(rowid, author_text, normalized, file_name, relative_path)
				VALUES (new.id, new.text, new.normalized, new.file_name, new.relative_path);
			END;
		`,
	},
	{
		Version:     3,
		Description: "create captures table",
		Up: `
			CREATE TABLE IF NOT EXISTS captures (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				root_id INTEGER NOT NULL REFERENCES roots(id) ON DELETE CASCADE,
				source_path TEXT NOT NULL,
				section_title TEXT NOT NULL,
				target_relative_path TEXT NOT NULL DEFAULT 'BlockFile-Captures.docx',
				heading_level INTEGER NOT NULL,
				content TEXT NOT NULL,
				created_at_ms INTEGER NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_captures_root_id ON captures(root_id);
		`,
	},
	{
		Version:     4,
		Description: "create schema_migrations table",
		Up: `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				description TEXT NOT NULL,
				applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
}

// Migrate applies every pending migration, then runs the idempotent
// legacy-column backfill described in spec §4.D.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table; %w", err)
	}

	currentVersion, err := getCurrentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read current schema version; %w", err)
	}

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}
		if err := runMigration(ctx, db, m); err != nil {
			return fmt.Errorf("run migration %d (%s); %w", m.Version, m.Description, err)
		}
	}

	return backfillCaptureTargets(ctx, db)
}

func getCurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func runMigration(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction; %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return fmt.Errorf("execute migration; %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
		m.Version, m.Description,
	); err != nil {
		return fmt.Errorf("record migration; %w", err)
	}

	return tx.Commit()
}

// backfillCaptureTargets inspects PRAGMA table_info(captures) and
// normalizes any legacy NULL/empty target_relative_path to the default
// target name, per the idempotent-migration invariant in spec §4.D.
func backfillCaptureTargets(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info(captures)")
	if err != nil {
		return fmt.Errorf("inspect captures columns; %w", err)
	}
	hasColumn := false
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scan table_info(captures) row; %w", err)
		}
		if name == "target_relative_path" {
			hasColumn = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table_info(captures); %w", err)
	}
	rows.Close()

	if !hasColumn {
		if _, err := db.ExecContext(ctx,
			`ALTER TABLE captures ADD COLUMN target_relative_path TEXT NOT NULL DEFAULT 'BlockFile-Captures.docx'`,
		); err != nil {
			return fmt.Errorf("add target_relative_path column; %w", err)
		}
	}

	_, err = db.ExecContext(ctx,
		`UPDATE captures SET target_relative_path = 'BlockFile-Captures.docx'
		 WHERE target_relative_path IS NULL OR target_relative_path = ''`,
	)
	if err != nil {
		return fmt.Errorf("backfill legacy target_relative_path; %w", err)
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	return getCurrentVersion(ctx, db)
}
