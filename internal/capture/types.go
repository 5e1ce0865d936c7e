// Package capture implements the DOCX capture writer: it extracts a
// heading's original paragraph XML from a source document, merges any
// referenced styles and relationships into a destination DOCX, and
// splices the fragment in with an atomic zip rewrite.
package capture

import "fmt"

// StyledSection is the extracted, ready-to-splice fragment produced by
// extract_styled_section.
type StyledSection struct {
	// ParagraphsXML is the concatenation of the extracted paragraph
	// elements, verbatim from the source document when available.
	ParagraphsXML string
	// StyleIDs referenced by the fragment's w:pStyle/w:rStyle attributes.
	StyleIDs []string
	// RelationshipIDs referenced by the fragment's r:id/r:embed/r:link
	// attributes.
	RelationshipIDs []string
	// FromSource is false when extraction fell back to plain paragraphs.
	FromSource bool
}

// InsertRequest mirrors insert_capture's parameters. CaptureID is the
// already-inserted captures row id, supplied by the caller so this
// package never touches the store; the marker BF-{id:06} is derived
// from it.
type InsertRequest struct {
	RootPath                   string
	SourcePath                 string
	Title                      string
	Content                    string
	TargetPath                 string
	HeadingLevel               *int
	HeadingOrder               *int
	SelectedTargetHeadingOrder *int
	CaptureID                  int64
}

// InsertResult mirrors insert_capture's return value.
type InsertResult struct {
	CapturePath        string
	Marker             string
	TargetRelativePath string
}

// ValidationError reports a rejected capture request, named per spec §7.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

const defaultCaptureTargetName = "BlockFile-Captures.docx"
const captureTitle = "Block File Captures"
