// Package preview renders a single file's heading outline and F8-cite
// blocks, and converts one heading's section into sanitized preview
// HTML.
package preview

import (
	"fmt"
	"path/filepath"

	"github.com/not-ani/blockfile/internal/docxfile"
	"github.com/not-ani/blockfile/internal/section"
)

// HeadingSummary is one entry in a file preview's heading outline.
type HeadingSummary struct {
	Order    int
	Level    int
	Text     string
	CopyText string
}

// F8CiteBlock is a maximal run of contiguous F8-styled paragraphs.
type F8CiteBlock struct {
	StartOrder int
	EndOrder   int
	Text       string
}

// FilePreview is the result of get_file_preview.
type FilePreview struct {
	FileID       int64
	FileName     string
	RelativePath string
	AbsolutePath string
	HeadingCount int
	Headings     []HeadingSummary
	F8Cites      []F8CiteBlock
}

// BuildFilePreview parses absPath and assembles the heading outline
// and F8-cite blocks described in spec §4.G.
func BuildFilePreview(fileID int64, relativePath, absPath string) (FilePreview, error) {
	doc, err := docxfile.ParseFile(absPath)
	if err != nil {
		return FilePreview{}, fmt.Errorf("parse %q for preview; %w", absPath, err)
	}

	ranges := section.BuildHeadingRanges(doc.Paragraphs)
	headings := make([]HeadingSummary, 0, len(ranges))
	for _, r := range ranges {
		headings = append(headings, HeadingSummary{
			Order:    r.Order,
			Level:    r.Level,
			Text:     headingText(doc.Paragraphs, r),
			CopyText: section.CopyText(doc.Paragraphs, r),
		})
	}

	return FilePreview{
		FileID:       fileID,
		FileName:     filepath.Base(relativePath),
		RelativePath: relativePath,
		AbsolutePath: absPath,
		HeadingCount: len(ranges),
		Headings:     headings,
		F8Cites:      buildF8CiteBlocks(doc.Paragraphs),
	}, nil
}

func headingText(paragraphs []docxfile.Paragraph, r section.HeadingRange) string {
	if r.StartIndex < 0 || r.StartIndex >= len(paragraphs) {
		return ""
	}
	return paragraphs[r.StartIndex].Text
}

// buildF8CiteBlocks groups contiguous IsF8Cite paragraphs into blocks,
// joining their text with "\n".
func buildF8CiteBlocks(paragraphs []docxfile.Paragraph) []F8CiteBlock {
	var blocks []F8CiteBlock
	var current *F8CiteBlock
	var texts []string

	flush := func() {
		if current != nil {
			current.Text = joinLines(texts)
			blocks = append(blocks, *current)
			current = nil
			texts = nil
		}
	}

	for _, p := range paragraphs {
		if !p.IsF8Cite {
			flush()
			continue
		}
		if current == nil {
			current = &F8CiteBlock{StartOrder: p.Order}
		}
		current.EndOrder = p.Order
		texts = append(texts, p.Text)
	}
	flush()

	return blocks
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
