package blockfile

import (
	"context"
	"fmt"

	"github.com/not-ani/blockfile/internal/preview"
)

// GetFilePreview implements get_file_preview.
func (s *Service) GetFilePreview(ctx context.Context, fileID int64) (FilePreview, error) {
	f, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return FilePreview{}, fmt.Errorf("get file preview for file %d; %w", fileID, err)
	}
	return preview.BuildFilePreview(f.ID, f.RelativePath, f.AbsolutePath)
}

// GetHeadingPreviewHTML implements get_heading_preview_html.
func (s *Service) GetHeadingPreviewHTML(ctx context.Context, fileID int64, headingOrder int) (string, error) {
	f, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("get heading preview for file %d; %w", fileID, err)
	}
	return preview.HeadingSectionHTML(f.AbsolutePath, headingOrder)
}
