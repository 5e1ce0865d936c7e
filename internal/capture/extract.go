package capture

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/not-ani/blockfile/internal/docxfile"
	"github.com/not-ani/blockfile/internal/section"
)

var (
	styleRefRe = regexp.MustCompile(`(?:w:pStyle|w:rStyle)\s+w:val="([^"]+)"`)
	relRefRe   = regexp.MustCompile(`(?:r:id|r:embed|r:link)="([^"]+)"`)
)

// ExtractStyledSection implements spec §4.H step 4. When headingOrder
// is nil, content is split into plain paragraphs. Otherwise it slices
// the source document's raw XML at the paragraph byte ranges that make
// up the heading's section, falling back to plain paragraphs if
// anything about the source can't be parsed.
func ExtractStyledSection(sourcePath string, headingOrder *int, content string) StyledSection {
	if headingOrder == nil {
		return plainParagraphSection(content)
	}

	doc, err := docxfile.ParseFile(sourcePath)
	if err != nil {
		return plainParagraphSection(content)
	}

	ranges := section.BuildHeadingRanges(doc.Paragraphs)
	r, ok := section.FindByOrder(ranges, *headingOrder)
	if !ok {
		return plainParagraphSection(content)
	}

	start, end, ok := paragraphByteRange(doc.Paragraphs, r)
	if !ok {
		return plainParagraphSection(content)
	}

	fragment := string(doc.DocumentXML[start:end])
	return StyledSection{
		ParagraphsXML:   fragment,
		StyleIDs:        uniqueMatches(styleRefRe, fragment),
		RelationshipIDs: uniqueMatches(relRefRe, fragment),
		FromSource:      true,
	}
}

func paragraphByteRange(paragraphs []docxfile.Paragraph, r section.HeadingRange) (int, int, bool) {
	if r.StartIndex < 0 || r.StartIndex >= len(paragraphs) {
		return 0, 0, false
	}
	endIdx := r.EndIndex - 1
	if endIdx < r.StartIndex {
		endIdx = r.StartIndex
	}
	if endIdx >= len(paragraphs) {
		return 0, 0, false
	}
	return paragraphs[r.StartIndex].Start, paragraphs[endIdx].End, true
}

// plainParagraphSection implements the no-heading-order fallback: each
// line of content becomes a plain paragraph, an empty line a <w:p/>.
func plainParagraphSection(content string) StyledSection {
	lines := strings.Split(content, "\n")
	var sb strings.Builder
	for _, line := range lines {
		if line == "" {
			sb.WriteString("<w:p/>")
			continue
		}
		sb.WriteString(fmt.Sprintf(`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, escapeXMLText(line)))
	}
	return StyledSection{ParagraphsXML: sb.String(), FromSource: false}
}

func escapeXMLText(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(s)
}

func uniqueMatches(re *regexp.Regexp, s string) []string {
	matches := re.FindAllStringSubmatch(s, -1)
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
