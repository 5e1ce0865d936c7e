package blockfile

import (
	"github.com/not-ani/blockfile/internal/capture"
	"github.com/not-ani/blockfile/internal/preview"
	"github.com/not-ani/blockfile/internal/search"
)

// RootInfo is one entry of list_roots.
type RootInfo struct {
	Path          string
	AddedAtMs     int64
	LastIndexedMs int64
	FileCount     int
	HeadingCount  int
}

// FolderInfo is one folder entry of get_index_snapshot, carrying depth,
// parent relative path, and a file count that includes descendants.
type FolderInfo struct {
	RelativePath string
	Depth        int
	ParentPath   string
	FileCount    int
}

// FileInfo is one file entry of get_index_snapshot.
type FileInfo struct {
	FileID       int64
	RelativePath string
	AbsolutePath string
	ModifiedMs   int64
	Size         int64
	HeadingCount int
}

// IndexSnapshot is the result of get_index_snapshot.
type IndexSnapshot struct {
	RootPath    string
	IndexedAtMs int64
	Folders     []FolderInfo
	Files       []FileInfo
}

// FilePreview re-exports the preview package's result type so callers
// only need to import this package.
type FilePreview = preview.FilePreview

// SearchHit re-exports the search package's hit type.
type SearchHit = search.Hit

// InsertCaptureParams mirrors insert_capture's parameters.
type InsertCaptureParams struct {
	RootPath                   string
	SourcePath                 string
	Title                      string
	Content                    string
	TargetPath                 string
	HeadingLevel               *int
	HeadingOrder               *int
	SelectedTargetHeadingOrder *int
}

// InsertCaptureResult mirrors insert_capture's return value.
type InsertCaptureResult = capture.InsertResult

// CaptureTargetInfo is one entry of list_capture_targets.
type CaptureTargetInfo struct {
	RelativePath string
	AbsolutePath string
	Exists       bool
	EntryCount   int
}

// CaptureTargetPreview is the result of get_capture_target_preview,
// delete_capture_heading, and move_capture_heading.
type CaptureTargetPreview struct {
	RelativePath string
	AbsolutePath string
	Exists       bool
	HeadingCount int
	Headings     []preview.HeadingSummary
}
