// Package indexer implements the incremental DOCX indexer: it walks a
// root, diffs against the index store by mtime and size, parses
// changed files in parallel, and commits the result in one
// transaction.
package indexer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/not-ani/blockfile/internal/docxfile"
	"github.com/not-ani/blockfile/internal/heuristics"
	"github.com/not-ani/blockfile/internal/progress"
	"github.com/not-ani/blockfile/internal/store"
)

const maxAuthorsPerFile = 120

// Result is the summary returned by index_root.
type Result struct {
	Scanned           int
	Updated           int
	Skipped           int
	Removed           int
	HeadingsExtracted int
	ElapsedMs         int64
}

// Clock returns the current wall-clock time in milliseconds. It is a
// var so tests can stub it.
var Clock = func() int64 { return time.Now().UnixMilli() }

// IndexRoot runs a full index_root pass against rootPath, reporting
// progress through sink (which may be nil).
func IndexRoot(ctx context.Context, db *store.Store, rootPath string, sink progress.Sink) (Result, error) {
	start := time.Now()
	emitter := progress.NewEmitter(sink)

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return Result{}, fmt.Errorf("resolve root path %q; %w", rootPath, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return Result{}, fmt.Errorf("stat root %q; %w", absRoot, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("index root %q; not a directory", absRoot)
	}

	root, err := db.AddRoot(ctx, absRoot, Clock())
	if err != nil {
		return Result{}, fmt.Errorf("ensure root row for %q; %w", absRoot, err)
	}

	existing, err := db.ListExistingFiles(ctx, root.ID)
	if err != nil {
		return Result{}, fmt.Errorf("load existing files for root %q; %w", absRoot, err)
	}

	emitter.Emit(progress.Snapshot{Phase: progress.PhaseDiscovering, Elapsed: time.Since(start)})

	candidates, skipped, seen, err := discover(ctx, absRoot, existing, emitter, start)
	if err != nil {
		return Result{}, fmt.Errorf("discover files under %q; %w", absRoot, err)
	}

	emitter.Emit(progress.Snapshot{
		Phase:      progress.PhaseIndexing,
		Discovered: len(seen),
		Changed:    len(candidates),
		Skipped:    skipped,
		Elapsed:    time.Since(start),
	})

	parsed, err := parseAll(ctx, candidates, emitter, start, len(seen), skipped)
	if err != nil {
		return Result{}, fmt.Errorf("parse changed files under %q; %w", absRoot, err)
	}

	headingsExtracted := 0
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, p := range parsed {
			fileID, err := store.UpsertFileTx(ctx, tx, store.File{
				RootID:       root.ID,
				RelativePath: p.candidate.relPath,
				AbsolutePath: p.candidate.absPath,
				ModifiedMs:   p.candidate.modifiedMs,
				Size:         p.candidate.size,
				HeadingCount: len(p.headings),
			})
			if err != nil {
				return err
			}
			if err := store.ReplaceHeadingsTx(ctx, tx, fileID, p.headings); err != nil {
				return err
			}
			if err := store.ReplaceAuthorsTx(ctx, tx, fileID, p.authors); err != nil {
				return err
			}
			if err := store.SetHeadingCountTx(ctx, tx, fileID, len(p.headings)); err != nil {
				return err
			}
			headingsExtracted += len(p.headings)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("commit index for root %q; %w", absRoot, err)
	}

	emitter.Emit(progress.Snapshot{
		Phase:     progress.PhaseCleaning,
		Processed: len(parsed),
		Updated:   len(parsed),
		Skipped:   skipped,
		Elapsed:   time.Since(start),
	})

	var removed int
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := store.DeleteFilesNotInTx(ctx, tx, root.ID, seen)
		if err != nil {
			return err
		}
		removed = n
		return store.SetLastIndexedMsTx(ctx, tx, root.ID, Clock())
	})
	if err != nil {
		return Result{}, fmt.Errorf("clean up stale files under %q; %w", absRoot, err)
	}

	if err := writeMarker(absRoot, Clock()); err != nil {
		return Result{}, fmt.Errorf("write index marker for %q; %w", absRoot, err)
	}

	result := Result{
		Scanned:           len(seen),
		Updated:           len(parsed),
		Skipped:           skipped,
		Removed:           removed,
		HeadingsExtracted: headingsExtracted,
		ElapsedMs:         time.Since(start).Milliseconds(),
	}

	emitter.Force(progress.Snapshot{
		Phase:     progress.PhaseComplete,
		Processed: result.Updated,
		Updated:   result.Updated,
		Skipped:   result.Skipped,
		Removed:   result.Removed,
		Elapsed:   time.Since(start),
	})

	return result, nil
}

type candidate struct {
	relPath    string
	absPath    string
	modifiedMs int64
	size       int64
}

func discover(ctx context.Context, absRoot string, existing map[string]store.ExistingFile, emitter *progress.Emitter, start time.Time) ([]candidate, int, map[string]bool, error) {
	seen := make(map[string]bool)
	var candidates []candidate
	skipped := 0

	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if path != absRoot && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !strings.EqualFold(filepath.Ext(name), ".docx") {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("compute relative path for %q; %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)
		seen[relPath] = true

		info, err := d.Info()
		if err != nil {
			return nil
		}
		modMs := info.ModTime().UnixMilli()
		size := info.Size()

		if ex, ok := existing[relPath]; ok && ex.ModifiedMs == modMs && ex.Size == size {
			skipped++
			return nil
		}

		candidates = append(candidates, candidate{
			relPath:    relPath,
			absPath:    path,
			modifiedMs: modMs,
			size:       size,
		})

		emitter.Emit(progress.Snapshot{
			Phase:       progress.PhaseDiscovering,
			Discovered:  len(seen),
			CurrentFile: relPath,
			Elapsed:     time.Since(start),
		})

		return nil
	})
	if err != nil {
		return nil, 0, nil, err
	}

	return candidates, skipped, seen, nil
}

type parseResult struct {
	candidate candidate
	headings  []store.Heading
	authors   []store.Author
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// parseAll parses every candidate in parallel, bounded to
// clamp(2*NumCPU, 8, 64) concurrent parses, per spec §4.E. A single
// file's parse failure never aborts the run: it is recorded with zero
// headings and zero authors.
func parseAll(ctx context.Context, candidates []candidate, emitter *progress.Emitter, start time.Time, discovered, skipped int) ([]parseResult, error) {
	k := clamp(2*runtime.NumCPU(), 8, 64)

	results := make([]parseResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(k)

	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			headings, authors := parseOne(c)
			results[i] = parseResult{candidate: c, headings: headings, authors: authors}
			emitter.Emit(progress.Snapshot{
				Phase:       progress.PhaseIndexing,
				Discovered:  discovered,
				Processed:   i + 1,
				Skipped:     skipped,
				CurrentFile: c.relPath,
				Elapsed:     time.Since(start),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// parseOne parses a single DOCX into heading and author rows. Parse
// errors are swallowed here per spec §7: a corrupt file simply yields
// no headings and no authors.
func parseOne(c candidate) ([]store.Heading, []store.Author) {
	doc, err := docxfile.ParseFile(c.absPath)
	if err != nil {
		return nil, nil
	}

	fileName := filepath.Base(c.relPath)

	var headings []store.Heading
	var authors []store.Author
	seenAuthors := make(map[string]bool)
	for _, p := range doc.Paragraphs {
		if p.Level > 0 {
			headings = append(headings, store.Heading{
				Order:        p.Order,
				Level:        p.Level,
				Text:         p.Text,
				Normalized:   heuristics.NormalizeForSearch(p.Text),
				FileName:     fileName,
				RelativePath: c.relPath,
			})
			continue
		}
		if len(authors) >= maxAuthorsPerFile {
			continue
		}
		if !heuristics.IsProbableAuthorLine(p.Text) {
			continue
		}
		normalized := heuristics.NormalizeForSearch(p.Text)
		if seenAuthors[normalized] {
			continue
		}
		seenAuthors[normalized] = true
		authors = append(authors, store.Author{
			Order:        p.Order,
			Text:         p.Text,
			Normalized:   normalized,
			FileName:     fileName,
			RelativePath: c.relPath,
		})
	}
	return headings, authors
}

type marker struct {
	Version       int    `json:"version"`
	RootPath      string `json:"rootPath"`
	LastIndexedMs int64  `json:"lastIndexedMs"`
}

func writeMarker(absRoot string, whenMs int64) error {
	m := marker{Version: 1, RootPath: absRoot, LastIndexedMs: whenMs}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index marker; %w", err)
	}
	path := filepath.Join(absRoot, ".blockfile-index.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %q; %w", path, err)
	}
	return nil
}
