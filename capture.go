package blockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/not-ani/blockfile/internal/capture"
	"github.com/not-ani/blockfile/internal/docxfile"
	"github.com/not-ani/blockfile/internal/metrics"
	"github.com/not-ani/blockfile/internal/preview"
	"github.com/not-ani/blockfile/internal/section"
	"github.com/not-ani/blockfile/internal/store"
)

// resolveTargetAbsPath mirrors capture.resolveDestPath: an absolute
// target is used as-is, a relative one is joined under the root.
func resolveTargetAbsPath(rootAbs, targetRel string) string {
	if filepath.IsAbs(targetRel) {
		return targetRel
	}
	return filepath.Join(rootAbs, filepath.FromSlash(targetRel))
}

// InsertCapture implements insert_capture: it allocates the captures
// row first (so the marker BF-{id:06} is known), then drives the
// capture writer with the resulting id.
func (s *Service) InsertCapture(ctx context.Context, p InsertCaptureParams) (InsertCaptureResult, error) {
	abs, err := canonicalizeRootPath(p.RootPath)
	if err != nil {
		return InsertCaptureResult{}, err
	}
	root, err := s.store.GetRootByPath(ctx, abs)
	if err != nil {
		return InsertCaptureResult{}, fmt.Errorf("insert capture under %q; %w", abs, err)
	}

	targetRel, err := capture.NormalizeTargetPath(p.TargetPath)
	if err != nil {
		return InsertCaptureResult{}, err
	}

	headingLevel := 0
	if p.HeadingLevel != nil {
		headingLevel = *p.HeadingLevel
	}

	row, err := s.store.InsertCapture(ctx, store.Capture{
		RootID:             root.ID,
		SourcePath:         p.SourcePath,
		SectionTitle:       p.Title,
		TargetRelativePath: targetRel,
		HeadingLevel:       headingLevel,
		Content:            p.Content,
		CreatedAtMs:        Clock(),
	})
	if err != nil {
		return InsertCaptureResult{}, fmt.Errorf("record capture row for %q; %w", p.SourcePath, err)
	}

	started := time.Now()
	result, err := capture.InsertCapture(capture.InsertRequest{
		RootPath:                   root.Path,
		SourcePath:                 p.SourcePath,
		Title:                      p.Title,
		Content:                    p.Content,
		TargetPath:                 p.TargetPath,
		HeadingLevel:               p.HeadingLevel,
		HeadingOrder:               p.HeadingOrder,
		SelectedTargetHeadingOrder: p.SelectedTargetHeadingOrder,
		CaptureID:                  row.ID,
	})
	metrics.RecordCaptureWrite("insert", time.Since(started), err)
	if err != nil {
		s.logger.Error("insert_capture failed", "source", p.SourcePath, "error", err)
		return InsertCaptureResult{}, err
	}
	s.logger.Info("insert_capture complete", "source", p.SourcePath, "target", result.TargetRelativePath, "marker", result.Marker)
	return result, nil
}

// ListCaptureTargets implements list_capture_targets: the recorded
// targets for a root, always including the default.
func (s *Service) ListCaptureTargets(ctx context.Context, rootPath string) ([]CaptureTargetInfo, error) {
	abs, err := canonicalizeRootPath(rootPath)
	if err != nil {
		return nil, err
	}
	root, err := s.store.GetRootByPath(ctx, abs)
	if err != nil {
		return nil, err
	}

	targets, err := s.store.ListCaptureTargets(ctx, root.ID)
	if err != nil {
		return nil, err
	}

	const defaultTarget = "BlockFile-Captures.docx"
	hasDefault := false
	for _, t := range targets {
		if t == defaultTarget {
			hasDefault = true
			break
		}
	}
	if !hasDefault {
		targets = append([]string{defaultTarget}, targets...)
	}

	out := make([]CaptureTargetInfo, 0, len(targets))
	for _, rel := range targets {
		absTarget := resolveTargetAbsPath(root.Path, rel)
		exists := false
		if _, statErr := os.Stat(absTarget); statErr == nil {
			exists = true
		}
		count, err := s.store.CountCapturesByTarget(ctx, root.ID, rel)
		if err != nil {
			return nil, err
		}
		out = append(out, CaptureTargetInfo{
			RelativePath: rel,
			AbsolutePath: absTarget,
			Exists:       exists,
			EntryCount:   count,
		})
	}
	return out, nil
}

// GetCaptureTargetPreview implements get_capture_target_preview.
func (s *Service) GetCaptureTargetPreview(ctx context.Context, rootPath, target string) (CaptureTargetPreview, error) {
	abs, err := canonicalizeRootPath(rootPath)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	root, err := s.store.GetRootByPath(ctx, abs)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	targetRel, err := capture.NormalizeTargetPath(target)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	return buildCaptureTargetPreview(root.Path, targetRel)
}

// DeleteCaptureHeading implements delete_capture_heading, returning
// the target's post-mutation preview.
func (s *Service) DeleteCaptureHeading(ctx context.Context, rootPath, target string, headingOrder int) (CaptureTargetPreview, error) {
	abs, err := canonicalizeRootPath(rootPath)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	root, err := s.store.GetRootByPath(ctx, abs)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	targetRel, err := capture.NormalizeTargetPath(target)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	absTarget := resolveTargetAbsPath(root.Path, targetRel)

	started := time.Now()
	err = capture.DeleteCaptureHeading(absTarget, headingOrder)
	metrics.RecordCaptureWrite("delete", time.Since(started), err)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	return buildCaptureTargetPreview(root.Path, targetRel)
}

// MoveCaptureHeading implements move_capture_heading, returning the
// target's post-mutation preview.
func (s *Service) MoveCaptureHeading(ctx context.Context, rootPath, target string, sourceOrder, targetOrder int) (CaptureTargetPreview, error) {
	abs, err := canonicalizeRootPath(rootPath)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	root, err := s.store.GetRootByPath(ctx, abs)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	targetRel, err := capture.NormalizeTargetPath(target)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	absTarget := resolveTargetAbsPath(root.Path, targetRel)

	started := time.Now()
	err = capture.MoveCaptureHeading(absTarget, sourceOrder, targetOrder)
	metrics.RecordCaptureWrite("move", time.Since(started), err)
	if err != nil {
		return CaptureTargetPreview{}, err
	}
	return buildCaptureTargetPreview(root.Path, targetRel)
}

// buildCaptureTargetPreview parses a destination capture DOCX (if it
// exists) into the heading outline shape shared by
// get_capture_target_preview, delete_capture_heading, and
// move_capture_heading.
func buildCaptureTargetPreview(rootAbs, targetRel string) (CaptureTargetPreview, error) {
	absTarget := resolveTargetAbsPath(rootAbs, targetRel)

	if _, err := os.Stat(absTarget); err != nil {
		return CaptureTargetPreview{
			RelativePath: targetRel,
			AbsolutePath: absTarget,
			Exists:       false,
		}, nil
	}

	doc, err := docxfile.ParseFile(absTarget)
	if err != nil {
		return CaptureTargetPreview{}, fmt.Errorf("parse capture target %q; %w", absTarget, err)
	}

	ranges := section.BuildHeadingRanges(doc.Paragraphs)
	headings := make([]preview.HeadingSummary, 0, len(ranges))
	for _, r := range ranges {
		text := ""
		for _, p := range doc.Paragraphs {
			if p.Order == r.Order {
				text = p.Text
				break
			}
		}
		headings = append(headings, preview.HeadingSummary{
			Order:    r.Order,
			Level:    r.Level,
			Text:     text,
			CopyText: section.CopyText(doc.Paragraphs, r),
		})
	}

	return CaptureTargetPreview{
		RelativePath: targetRel,
		AbsolutePath: absTarget,
		Exists:       true,
		HeadingCount: len(ranges),
		Headings:     headings,
	}, nil
}
