package docxfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// StyleDef is a single <w:style> definition from styles.xml, along with
// its raw XML slice so the capture writer can splice it verbatim.
type StyleDef struct {
	ID      string
	Name    string
	BasedOn string
	Next    string
	Link    string
	Start   int
	End     int
}

// hTrailingRe matches "H1".."H9" or "h1".."h9".
var hTrailingRe = regexp.MustCompile(`^[Hh]([1-9])$`)

// headingDigitRe finds "heading" followed (possibly after other chars)
// by a run of digits, e.g. "Heading 3", "heading3".
var headingDigitRe = regexp.MustCompile(`(?i)heading\D*([1-9])\d*`)

// ParseTrailingLevel attempts to read a heading level 1-9 from a style
// id or display name such as "H2", "Heading2", or "Heading 3".
func ParseTrailingLevel(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if m := hTrailingRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= 9 {
			return n, true
		}
	}
	if m := headingDigitRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= 9 {
			return n, true
		}
	}
	return 0, false
}

// ParseStyles reads word/styles.xml and returns the styleId -> display
// name map plus the full style definitions (with byte ranges) keyed by
// styleId, used by the capture writer for transitive style merging.
func ParseStyles(raw []byte) (map[string]string, map[string]StyleDef, error) {
	names := make(map[string]string)
	defs := make(map[string]StyleDef)
	if len(raw) == 0 {
		return names, defs, nil
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	var (
		cur        *StyleDef
		curName    string
		depth      int
		styleDepth = -1
	)

	for {
		offsetBefore := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return names, defs, fmt.Errorf("parse styles.xml; %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "style":
				if cur == nil {
					styleDepth = depth
					cur = &StyleDef{Start: int(offsetBefore)}
					curName = ""
					for _, a := range t.Attr {
						if a.Name.Local == "styleId" {
							cur.ID = a.Value
						}
					}
				}
			case "name":
				if cur != nil {
					for _, a := range t.Attr {
						if a.Name.Local == "val" {
							curName = a.Value
						}
					}
				}
			case "basedOn":
				if cur != nil {
					for _, a := range t.Attr {
						if a.Name.Local == "val" {
							cur.BasedOn = a.Value
						}
					}
				}
			case "next":
				if cur != nil {
					for _, a := range t.Attr {
						if a.Name.Local == "val" {
							cur.Next = a.Value
						}
					}
				}
			case "link":
				if cur != nil {
					for _, a := range t.Attr {
						if a.Name.Local == "val" {
							cur.Link = a.Value
						}
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "style" && cur != nil && depth == styleDepth {
				cur.Name = curName
				cur.End = int(dec.InputOffset())
				if cur.ID != "" {
					defs[cur.ID] = *cur
					if curName != "" {
						names[cur.ID] = curName
					}
				}
				cur = nil
				styleDepth = -1
			}
			depth--
		}
	}

	return names, defs, nil
}
