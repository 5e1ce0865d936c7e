package preview

import (
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/not-ani/blockfile/internal/docxfile"
	"github.com/not-ani/blockfile/internal/section"
)

// HeadingSectionHTML renders get_heading_preview_html: every paragraph
// in the heading's range becomes one `<p class="bf-preview-*">`
// element, with runs and hyperlinks walked from the original XML.
func HeadingSectionHTML(absPath string, headingOrder int) (string, error) {
	doc, err := docxfile.ParseFile(absPath)
	if err != nil {
		return "", fmt.Errorf("parse %q for heading preview; %w", absPath, err)
	}

	ranges := section.BuildHeadingRanges(doc.Paragraphs)
	r, ok := section.FindByOrder(ranges, headingOrder)
	if !ok {
		return "", fmt.Errorf("heading preview; heading order %d not found in %q", headingOrder, absPath)
	}

	var sb strings.Builder
	for i := r.StartIndex; i < r.EndIndex && i < len(doc.Paragraphs); i++ {
		p := doc.Paragraphs[i]
		fragment := doc.DocumentXML[p.Start:p.End]
		inner, err := renderParagraphRuns(fragment)
		if err != nil {
			// Degrade to escaped plain text rather than fail the whole preview.
			inner = html.EscapeString(p.Text)
		}
		sb.WriteString(`<p class="`)
		sb.WriteString(paragraphClass(p.Level))
		sb.WriteString(`">`)
		if inner == "" {
			sb.WriteString("&nbsp;")
		} else {
			sb.WriteString(inner)
		}
		sb.WriteString("</p>")
	}

	return sb.String(), nil
}

func paragraphClass(level int) string {
	switch level {
	case 1, 2, 3, 4:
		return fmt.Sprintf("bf-preview-h%d", level)
	default:
		return "bf-preview-p"
	}
}

var highlightColors = map[string]bool{
	"yellow": true, "green": true, "cyan": true, "magenta": true, "blue": true, "gray": true,
}

type runStyle struct {
	bold       bool
	italic     bool
	underline  bool
	smallCaps  bool
	highlight  string
	hasHilite  bool
}

// renderParagraphRuns walks one <w:p>...</w:p> fragment and emits its
// sanitized inline HTML per spec §4.G.
func renderParagraphRuns(fragment []byte) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(string(fragment)))

	var sb strings.Builder
	inHyperlink := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch localName(t.Name.Local) {
			case "hyperlink":
				sb.WriteString(`<a class="bf-preview-link">`)
				inHyperlink = true
			case "r":
				runHTML, err := renderRun(dec, t)
				if err != nil {
					return "", err
				}
				sb.WriteString(runHTML)
			}
		case xml.EndElement:
			if localName(t.Name.Local) == "hyperlink" && inHyperlink {
				sb.WriteString("</a>")
				inHyperlink = false
			}
		}
	}

	return sb.String(), nil
}

// renderRun consumes one <w:r>...</w:r> element (the StartElement has
// already been read) and returns its rendered <span>.
func renderRun(dec *xml.Decoder, start xml.StartElement) (string, error) {
	depth := 1
	var style runStyle
	var text strings.Builder
	captureText := false

	for depth > 0 {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch localName(t.Name.Local) {
			case "b":
				style.bold = !isExplicitlyOff(t)
			case "i":
				style.italic = !isExplicitlyOff(t)
			case "u":
				val := attrVal(t, "val")
				style.underline = val != "none" && val != "false" && val != "0"
			case "smallCaps", "caps":
				style.smallCaps = !isExplicitlyOff(t)
			case "highlight":
				color := strings.ToLower(attrVal(t, "val"))
				if highlightColors[color] {
					style.highlight = color
					style.hasHilite = true
				}
			case "t":
				captureText = true
			case "tab":
				text.WriteByte('\t')
			case "br", "cr":
				text.WriteByte('\n')
			}
		case xml.EndElement:
			depth--
			if localName(t.Name.Local) == "t" {
				captureText = false
			}
		case xml.CharData:
			if captureText {
				text.Write(t)
			}
		}
	}

	return buildRunSpan(style, text.String()), nil
}

func buildRunSpan(style runStyle, text string) string {
	classes := []string{"bf-run"}
	if style.bold {
		classes = append(classes, "bf-run-bold")
	}
	if style.italic {
		classes = append(classes, "bf-run-italic")
	}
	if style.underline {
		classes = append(classes, "bf-run-underline")
	}
	if style.smallCaps {
		classes = append(classes, "bf-run-smallcaps")
	}
	if style.hasHilite {
		classes = append(classes, "bf-run-highlight", "bf-hl-"+style.highlight)
	}

	escaped := html.EscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\n", "<br/>")

	return fmt.Sprintf(`<span class="%s">%s</span>`, strings.Join(classes, " "), escaped)
}

func isExplicitlyOff(t xml.StartElement) bool {
	val := attrVal(t, "val")
	return val == "false" || val == "0" || val == "none"
}

func attrVal(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func localName(name string) string {
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
