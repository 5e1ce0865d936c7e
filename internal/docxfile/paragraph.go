// Package docxfile parses the Office Open XML wordprocessing parts of
// a .docx file into an ordered paragraph stream, tracking heading
// levels, style labels, and the exact byte range of each paragraph
// within the raw document.xml so later stages can splice verbatim XML.
package docxfile

// Paragraph is one <w:p> element in document order.
type Paragraph struct {
	// Order is the 1-based position of this paragraph in the document.
	Order int
	// Text is the concatenated, tab/break-expanded text content.
	Text string
	// Level is 1-9 for a heading paragraph, 0 otherwise.
	Level int
	// StyleLabel is "<display name> (<styleId>)" when a paragraph style
	// is present, empty otherwise.
	StyleLabel string
	// IsF8Cite is true when StyleLabel names an "f8 cite" style.
	IsF8Cite bool
	// Start and End are the byte offsets of the <w:p>...</w:p> element
	// (inclusive start, exclusive end) within the raw document.xml body.
	Start, End int
}

// Document is the parsed result of a single .docx file.
type Document struct {
	Paragraphs []Paragraph
	// DocumentXML is the raw bytes of word/document.xml.
	DocumentXML []byte
	// StylesXML is the raw bytes of word/styles.xml, nil if absent.
	StylesXML []byte
	// BodyStart/BodyEnd bound the <w:body>...</w:body> element within
	// DocumentXML, used by the capture writer to locate splice points.
	BodyStart, BodyEnd int
	// SectPrStart is the byte offset of a body-level <w:sectPr> element,
	// or -1 if none exists.
	SectPrStart int
}
