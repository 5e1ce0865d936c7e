// Package section computes heading ranges over a parsed paragraph
// stream and resolves where a new section should be spliced in
// relative to an existing heading.
package section

import "github.com/not-ani/blockfile/internal/docxfile"

// HeadingRange is the contiguous set of paragraphs owned by a heading:
// the heading itself plus every subordinate paragraph up to (but not
// including) the next same-or-higher-level heading.
type HeadingRange struct {
	// Order is the 1-based paragraph order of the heading.
	Order int
	Level int
	// StartIndex/EndIndex are 0-based indices into the paragraph slice;
	// EndIndex is exclusive.
	StartIndex, EndIndex int
}

// BuildHeadingRanges computes the heading ranges for a paragraph
// stream. Paragraphs with Level == 0, or that look like bibliographic
// author lines, are never treated as range boundaries.
func BuildHeadingRanges(paragraphs []docxfile.Paragraph) []HeadingRange {
	type headingPos struct {
		idx int
		p   docxfile.Paragraph
	}

	var headings []headingPos
	for i, p := range paragraphs {
		if p.Level > 0 {
			headings = append(headings, headingPos{idx: i, p: p})
		}
	}

	ranges := make([]HeadingRange, 0, len(headings))
	for i, h := range headings {
		end := len(paragraphs)
		for j := i + 1; j < len(headings); j++ {
			if headings[j].p.Level <= h.p.Level {
				end = headings[j].idx
				break
			}
		}
		ranges = append(ranges, HeadingRange{
			Order:      h.p.Order,
			Level:      h.p.Level,
			StartIndex: h.idx,
			EndIndex:   end,
		})
	}

	return ranges
}

// CopyText joins the paragraph texts within a heading range with "\n".
func CopyText(paragraphs []docxfile.Paragraph, r HeadingRange) string {
	var out []byte
	for i := r.StartIndex; i < r.EndIndex && i < len(paragraphs); i++ {
		if i > r.StartIndex {
			out = append(out, '\n')
		}
		out = append(out, paragraphs[i].Text...)
	}
	return string(out)
}

// FindByOrder returns the heading range whose heading paragraph has
// the given order, if any.
func FindByOrder(ranges []HeadingRange, order int) (HeadingRange, bool) {
	for _, r := range ranges {
		if r.Order == order {
			return r, true
		}
	}
	return HeadingRange{}, false
}

// endOrder returns the paragraph order of the last paragraph in r's range.
func endOrder(paragraphs []docxfile.Paragraph, r HeadingRange) int {
	idx := r.EndIndex - 1
	if idx < r.StartIndex {
		idx = r.StartIndex
	}
	if idx < 0 || idx >= len(paragraphs) {
		return r.Order
	}
	return paragraphs[idx].Order
}

// ResolveInsertAfterOrder picks the paragraph order after which a new
// section should be spliced, given an optional selected target heading
// and an optional incoming heading level. It returns (0, false) when
// the document has no headings at all.
func ResolveInsertAfterOrder(paragraphs []docxfile.Paragraph, ranges []HeadingRange, selectedTargetOrder *int, incomingLevel *int) (int, bool) {
	if len(ranges) == 0 {
		return 0, false
	}

	if selectedTargetOrder != nil {
		if t, ok := FindByOrder(ranges, *selectedTargetOrder); ok {
			if order, ok := resolveAgainstSelection(paragraphs, ranges, t, incomingLevel); ok {
				return order, true
			}
			// fall through to the unselected policy below
		}
	}

	if incomingLevel != nil {
		if order, ok := lastHeadingEndAtLevel(paragraphs, ranges, *incomingLevel); ok {
			return order, true
		}
	} else {
		if order, ok := lastHeadingEndAtShallowestLevel(paragraphs, ranges); ok {
			return order, true
		}
	}

	// Final fallback: insert after the last heading in the document.
	last := ranges[len(ranges)-1]
	return endOrder(paragraphs, last), true
}

// resolveAgainstSelection implements step 1 of the policy: splicing
// relative to an explicitly selected target heading range.
func resolveAgainstSelection(paragraphs []docxfile.Paragraph, ranges []HeadingRange, t HeadingRange, incomingLevel *int) (int, bool) {
	if incomingLevel == nil || *incomingLevel >= t.Level {
		return endOrder(paragraphs, t), true
	}

	// incoming level is higher (numerically smaller) than T: must not
	// nest under T. Find the deepest ancestor heading strictly before T
	// whose level is shallower than the incoming level and whose range
	// encloses T's start.
	level := *incomingLevel
	bestIdx := -1
	var best HeadingRange
	for _, r := range ranges {
		if r.StartIndex >= t.StartIndex {
			continue
		}
		if r.Level >= level {
			continue
		}
		if r.EndIndex <= t.StartIndex {
			continue // does not enclose T
		}
		if r.StartIndex > bestIdx {
			bestIdx = r.StartIndex
			best = r
		}
	}
	if bestIdx >= 0 {
		return endOrder(paragraphs, best), true
	}

	// No strictly-shallower ancestor exists (e.g. the incoming section is
	// as shallow as an enclosing heading already). Fall back to the last
	// heading before T at or shallower than the incoming level.
	bestIdx = -1
	for _, r := range ranges {
		if r.StartIndex >= t.StartIndex {
			continue
		}
		if r.Level > level {
			continue
		}
		if r.StartIndex > bestIdx {
			bestIdx = r.StartIndex
			best = r
		}
	}
	if bestIdx >= 0 {
		return endOrder(paragraphs, best), true
	}

	return 0, false
}

func lastHeadingEndAtLevel(paragraphs []docxfile.Paragraph, ranges []HeadingRange, level int) (int, bool) {
	for i := len(ranges) - 1; i >= 0; i-- {
		if ranges[i].Level == level {
			return endOrder(paragraphs, ranges[i]), true
		}
	}
	return 0, false
}

func lastHeadingEndAtShallowestLevel(paragraphs []docxfile.Paragraph, ranges []HeadingRange) (int, bool) {
	shallowest := ranges[0].Level
	for _, r := range ranges {
		if r.Level < shallowest {
			shallowest = r.Level
		}
	}
	return lastHeadingEndAtLevel(paragraphs, ranges, shallowest)
}
