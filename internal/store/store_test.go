package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "index.sqlite3")

	s, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDatabaseAndDirectory(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "index.sqlite3")

	s, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}

	version, err := SchemaVersion(ctx, s.db)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "index.sqlite3")

	s, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	if err := Migrate(ctx, s.db); err != nil {
		t.Fatalf("second migrate call: %v", err)
	}
}

func TestAddRootIsIdempotentByPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1, err := s.AddRoot(ctx, "/docs/papers", 1000)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}
	r2, err := s.AddRoot(ctx, "/docs/papers", 2000)
	if err != nil {
		t.Fatalf("re-add root: %v", err)
	}
	if r1.ID != r2.ID {
		t.Errorf("expected same root id, got %d and %d", r1.ID, r2.ID)
	}
}

func TestRemoveRootCascadesFilesHeadingsAndCaptures(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root, err := s.AddRoot(ctx, "/docs/papers", 1000)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}

	var fileID int64
	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		id, err := UpsertFileTx(ctx, tx, File{
			RootID:       root.ID,
			RelativePath: "a.docx",
			AbsolutePath: "/docs/papers/a.docx",
			ModifiedMs:   1,
			Size:         10,
		})
		if err != nil {
			return err
		}
		fileID = id
		return ReplaceHeadingsTx(ctx, tx, id, []Heading{
			{Order: 1, Level: 1, Text: "Intro", Normalized: "intro", FileName: "a.docx", RelativePath: "a.docx"},
		})
	})
	if err != nil {
		t.Fatalf("seed file and heading: %v", err)
	}

	if _, err := s.InsertCapture(ctx, Capture{
		RootID:       root.ID,
		SourcePath:   "a.docx",
		SectionTitle: "Intro",
		HeadingLevel: 1,
		Content:      "<w:p/>",
		CreatedAtMs:  1000,
	}); err != nil {
		t.Fatalf("insert capture: %v", err)
	}

	if _, err := s.GetFile(ctx, fileID); err != nil {
		t.Fatalf("get file before removal: %v", err)
	}

	if err := s.RemoveRoot(ctx, root.ID); err != nil {
		t.Fatalf("remove root: %v", err)
	}

	if _, err := s.GetFile(ctx, fileID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected file to cascade-delete with root, got %v", err)
	}

	var headingCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM headings WHERE file_id = ?`, fileID).Scan(&headingCount); err != nil {
		t.Fatalf("count headings: %v", err)
	}
	if headingCount != 0 {
		t.Errorf("expected headings to cascade-delete, found %d", headingCount)
	}

	var captureCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM captures WHERE root_id = ?`, root.ID).Scan(&captureCount); err != nil {
		t.Fatalf("count captures: %v", err)
	}
	if captureCount != 0 {
		t.Errorf("expected captures to cascade-delete, found %d", captureCount)
	}

	var ftsCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_fts WHERE rowid IN (SELECT id FROM headings WHERE file_id = ?)`, fileID).Scan(&ftsCount); err != nil {
		t.Fatalf("count search_fts: %v", err)
	}
}

func TestInsertCaptureDefaultsTargetPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root, err := s.AddRoot(ctx, "/docs/papers", 1000)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}

	c, err := s.InsertCapture(ctx, Capture{
		RootID:       root.ID,
		SourcePath:   "a.docx",
		SectionTitle: "Intro",
		HeadingLevel: 1,
		Content:      "<w:p/>",
		CreatedAtMs:  1000,
	})
	if err != nil {
		t.Fatalf("insert capture: %v", err)
	}
	if c.TargetRelativePath != defaultCaptureTarget {
		t.Errorf("target path = %q, want %q", c.TargetRelativePath, defaultCaptureTarget)
	}
}

func TestHeadingsReplaceAndSearchFTSStayInSync(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root, err := s.AddRoot(ctx, "/docs/papers", 1000)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}

	var fileID int64
	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		id, err := UpsertFileTx(ctx, tx, File{
			RootID:       root.ID,
			RelativePath: "a.docx",
			AbsolutePath: "/docs/papers/a.docx",
			ModifiedMs:   1,
			Size:         10,
		})
		if err != nil {
			return err
		}
		fileID = id
		if err := ReplaceHeadingsTx(ctx, tx, id, []Heading{
			{Order: 1, Level: 1, Text: "Introduction", Normalized: "introduction", FileName: "a.docx", RelativePath: "a.docx"},
			{Order: 3, Level: 2, Text: "Background", Normalized: "background", FileName: "a.docx", RelativePath: "a.docx"},
		}); err != nil {
			return err
		}
		return SetHeadingCountTx(ctx, tx, id, 2)
	})
	if err != nil {
		t.Fatalf("seed headings: %v", err)
	}

	f, err := s.GetFile(ctx, fileID)
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if f.HeadingCount != 2 {
		t.Errorf("heading_count = %d, want 2", f.HeadingCount)
	}

	var ftsCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_fts WHERE search_fts MATCH 'introduction'`).Scan(&ftsCount); err != nil {
		t.Fatalf("query search_fts: %v", err)
	}
	if ftsCount != 1 {
		t.Errorf("search_fts match count = %d, want 1", ftsCount)
	}

	// Replacing with fewer headings must shrink the FTS mirror too.
	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := ReplaceHeadingsTx(ctx, tx, fileID, []Heading{
			{Order: 1, Level: 1, Text: "Introduction", Normalized: "introduction", FileName: "a.docx", RelativePath: "a.docx"},
		}); err != nil {
			return err
		}
		return SetHeadingCountTx(ctx, tx, fileID, 1)
	})
	if err != nil {
		t.Fatalf("replace headings: %v", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM headings WHERE file_id = ?`, fileID).Scan(&total); err != nil {
		t.Fatalf("count headings: %v", err)
	}
	if total != 1 {
		t.Errorf("headings count = %d, want 1", total)
	}
}

func TestDeleteFilesNotInTxRemovesUnseen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root, err := s.AddRoot(ctx, "/docs/papers", 1000)
	if err != nil {
		t.Fatalf("add root: %v", err)
	}

	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := UpsertFileTx(ctx, tx, File{RootID: root.ID, RelativePath: "keep.docx", AbsolutePath: "/docs/papers/keep.docx", ModifiedMs: 1, Size: 1}); err != nil {
			return err
		}
		if _, err := UpsertFileTx(ctx, tx, File{RootID: root.ID, RelativePath: "gone.docx", AbsolutePath: "/docs/papers/gone.docx", ModifiedMs: 1, Size: 1}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed files: %v", err)
	}

	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		removed, err := DeleteFilesNotInTx(ctx, tx, root.ID, map[string]bool{"keep.docx": true})
		if err != nil {
			return err
		}
		if removed != 1 {
			t.Errorf("removed = %d, want 1", removed)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("cleanup pass: %v", err)
	}

	existing, err := s.ListExistingFiles(ctx, root.ID)
	if err != nil {
		t.Fatalf("list existing files: %v", err)
	}
	if _, ok := existing["gone.docx"]; ok {
		t.Error("expected gone.docx to be removed")
	}
	if _, ok := existing["keep.docx"]; !ok {
		t.Error("expected keep.docx to remain")
	}
}
