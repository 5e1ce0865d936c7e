package docxfile

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/not-ani/blockfile/internal/heuristics"
)

// ParseFile opens a .docx file and parses its paragraph structure.
func ParseFile(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx %q; %w", path, err)
	}
	defer r.Close()

	var docXML, stylesXML []byte
	for _, f := range r.File {
		switch f.Name {
		case "word/document.xml":
			docXML, err = readZipFile(f)
			if err != nil {
				return nil, fmt.Errorf("read word/document.xml in %q; %w", path, err)
			}
		case "word/styles.xml":
			stylesXML, err = readZipFile(f)
			if err != nil {
				return nil, fmt.Errorf("read word/styles.xml in %q; %w", path, err)
			}
		}
	}

	if docXML == nil {
		return nil, fmt.Errorf("docx %q has no word/document.xml", path)
	}

	return Parse(docXML, stylesXML)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Parse builds a Document from raw document.xml and (optional) raw
// styles.xml bytes.
func Parse(docXML, stylesXML []byte) (*Document, error) {
	styleNames, _, err := ParseStyles(stylesXML)
	if err != nil {
		// styles.xml is optional; a malformed one degrades to no style names.
		styleNames = map[string]string{}
	}

	doc := &Document{
		DocumentXML: docXML,
		StylesXML:   stylesXML,
		SectPrStart: -1,
	}

	dec := xml.NewDecoder(bytes.NewReader(docXML))
	order := 0
	depth := 0
	bodyDepth := -1

	for {
		offsetBefore := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("malformed document.xml; %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "body":
				if bodyDepth == -1 {
					bodyDepth = depth
					doc.BodyStart = int(offsetBefore)
				}
			case "sectPr":
				if doc.SectPrStart == -1 && bodyDepth != -1 && depth == bodyDepth+1 {
					doc.SectPrStart = int(offsetBefore)
				}
			case "p":
				order++
				para, newDepth, err := parseParagraph(dec, depth, int(offsetBefore), order, styleNames)
				if err != nil {
					return nil, fmt.Errorf("malformed paragraph %d; %w", order, err)
				}
				doc.Paragraphs = append(doc.Paragraphs, para)
				depth = newDepth
			}
		case xml.EndElement:
			if t.Name.Local == "body" && depth == bodyDepth {
				doc.BodyEnd = int(dec.InputOffset())
			}
			depth--
		}
	}

	return doc, nil
}

// parseParagraph consumes tokens for a single <w:p> element (whose
// StartElement has already been read, at depth startDepth) and returns
// the built Paragraph plus the decoder depth after the matching
// EndElement has been consumed.
func parseParagraph(dec *xml.Decoder, startDepth, start, order int, styleNames map[string]string) (Paragraph, int, error) {
	depth := startDepth
	var text strings.Builder
	var outlineLvl = -1
	var pStyleID string
	captureText := false

	for {
		tok, err := dec.Token()
		if err != nil {
			return Paragraph{}, depth, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "outlineLvl":
				for _, a := range t.Attr {
					if a.Name.Local == "val" {
						outlineLvl = atoiSafe(a.Value)
					}
				}
			case "pStyle":
				for _, a := range t.Attr {
					if a.Name.Local == "val" {
						pStyleID = a.Value
					}
				}
			case "t":
				captureText = true
			case "tab":
				text.WriteByte('\t')
			case "br", "cr":
				text.WriteByte('\n')
			}
		case xml.CharData:
			if captureText {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				captureText = false
			}
			depth--
			if t.Name.Local == "p" && depth == startDepth-1 {
				end := int(dec.InputOffset())
				para := buildParagraph(order, text.String(), start, end, outlineLvl, pStyleID, styleNames)
				return para, depth, nil
			}
		}
	}
}

func buildParagraph(order int, text string, start, end, outlineLvl int, pStyleID string, styleNames map[string]string) Paragraph {
	p := Paragraph{
		Order: order,
		Text:  text,
		Start: start,
		End:   end,
	}

	if pStyleID != "" {
		display := styleNames[pStyleID]
		if display == "" {
			display = pStyleID
		}
		p.StyleLabel = fmt.Sprintf("%s (%s)", display, pStyleID)
		normalized := heuristics.NormalizeForSearch(p.StyleLabel)
		p.IsF8Cite = strings.Contains(normalized, "f8 cite") || strings.Contains(normalized, "f8cite")
	}

	switch {
	case outlineLvl >= 0 && outlineLvl <= 8:
		p.Level = outlineLvl + 1
	case pStyleID != "":
		if lvl, ok := ParseTrailingLevel(pStyleID); ok {
			p.Level = lvl
		} else if lvl, ok := ParseTrailingLevel(styleNames[pStyleID]); ok {
			p.Level = lvl
		}
	}

	if p.Level > 0 && (p.IsF8Cite || heuristics.IsProbableAuthorLine(p.Text)) {
		p.Level = 0
	}

	return p
}

func atoiSafe(s string) int {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return -n
	}
	return n
}
