package blockfile

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/not-ani/blockfile/internal/indexer"
	"github.com/not-ani/blockfile/internal/metrics"
	"github.com/not-ani/blockfile/internal/progress"
)

// IndexRoot implements index_root, reporting through sink (which may
// be nil) and recording the indexer metrics.
func (s *Service) IndexRoot(ctx context.Context, path string, sink progress.Sink) (indexer.Result, error) {
	started := time.Now()
	result, err := indexer.IndexRoot(ctx, s.store, path, sink)
	metrics.RecordIndexRun(result.Scanned, result.Updated, result.Removed, result.HeadingsExtracted, time.Since(started))
	if err != nil {
		s.logger.Error("index_root failed", "path", path, "error", err)
		return indexer.Result{}, err
	}
	s.updateRootsGauge(ctx)
	s.logger.Info("index_root complete", "path", path, "scanned", result.Scanned,
		"updated", result.Updated, "removed", result.Removed, "headings", result.HeadingsExtracted)
	return result, nil
}

// GetIndexSnapshot implements get_index_snapshot: the folder tree
// (depth, parent, descendant-inclusive file count) and flat file list
// beneath a root, sorted by (depth, path).
func (s *Service) GetIndexSnapshot(ctx context.Context, path string) (IndexSnapshot, error) {
	abs, err := canonicalizeRootPath(path)
	if err != nil {
		return IndexSnapshot{}, err
	}
	root, err := s.store.GetRootByPath(ctx, abs)
	if err != nil {
		return IndexSnapshot{}, fmt.Errorf("get index snapshot for %q; %w", abs, err)
	}
	files, err := s.store.ListFilesByRoot(ctx, root.ID)
	if err != nil {
		return IndexSnapshot{}, err
	}

	folderCounts := make(map[string]int)
	var ensureFolder func(relDir string)
	ensureFolder = func(relDir string) {
		if relDir == "" {
			return
		}
		if _, ok := folderCounts[relDir]; !ok {
			folderCounts[relDir] = 0
			ensureFolder(parentOf(relDir))
		}
	}

	fileInfos := make([]FileInfo, 0, len(files))
	for _, f := range files {
		fileInfos = append(fileInfos, FileInfo{
			FileID:       f.ID,
			RelativePath: f.RelativePath,
			AbsolutePath: f.AbsolutePath,
			ModifiedMs:   f.ModifiedMs,
			Size:         f.Size,
			HeadingCount: f.HeadingCount,
		})

		dir := parentOf(f.RelativePath)
		for dir != "" {
			ensureFolder(dir)
			folderCounts[dir]++
			dir = parentOf(dir)
		}
	}

	folders := make([]FolderInfo, 0, len(folderCounts))
	for relDir, count := range folderCounts {
		folders = append(folders, FolderInfo{
			RelativePath: relDir,
			Depth:        strings.Count(relDir, "/") + 1,
			ParentPath:   parentOf(relDir),
			FileCount:    count,
		})
	}
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Depth != folders[j].Depth {
			return folders[i].Depth < folders[j].Depth
		}
		return folders[i].RelativePath < folders[j].RelativePath
	})

	return IndexSnapshot{
		RootPath:    root.Path,
		IndexedAtMs: root.LastIndexedMs,
		Folders:     folders,
		Files:       fileInfos,
	}, nil
}

// parentOf returns the forward-slash-normalized parent directory of a
// forward-slash relative path, or "" at the root.
func parentOf(relPath string) string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
