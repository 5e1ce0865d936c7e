package capture

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/not-ani/blockfile/internal/docxfile"
	"github.com/not-ani/blockfile/internal/section"
)

const (
	titleParagraphXML = `<w:p><w:pPr><w:rPr><w:b/></w:rPr></w:pPr>` +
		`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + captureTitle + `</w:t></w:r></w:p>`
	spacerParagraphXML = `<w:p/>`
)

// InsertCapture implements spec §4.H steps 1, 2, 4-10. Step 3 (inserting
// the captures row and allocating the id) happens in the caller; the id
// arrives as req.CaptureID.
func InsertCapture(req InsertRequest) (InsertResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return InsertResult{}, &ValidationError{Op: "insert_capture", Reason: "content must not be empty"}
	}

	targetRel, err := NormalizeTargetPath(req.TargetPath)
	if err != nil {
		return InsertResult{}, err
	}
	destPath := resolveDestPath(req.RootPath, targetRel)

	sect := ExtractStyledSection(req.SourcePath, req.HeadingOrder, req.Content)

	if err := EnsureDestination(destPath); err != nil {
		return InsertResult{}, err
	}

	destDocXML, err := readZipEntryBytes(destPath, "word/document.xml")
	if err != nil {
		return InsertResult{}, fmt.Errorf("read destination document.xml; %w", err)
	}
	destStylesXML, err := readZipEntryBytes(destPath, "word/styles.xml")
	if err != nil {
		return InsertResult{}, fmt.Errorf("read destination styles.xml; %w", err)
	}
	destRelsXML, err := readZipEntryBytes(destPath, "word/_rels/document.xml.rels")
	if err != nil {
		return InsertResult{}, fmt.Errorf("read destination relationships; %w", err)
	}

	destDoc, err := docxfile.Parse(destDocXML, destStylesXML)
	if err != nil {
		return InsertResult{}, fmt.Errorf("parse destination document; %w", err)
	}

	fragment := sect.ParagraphsXML
	stylesChanged := false
	relsChanged := false

	if sect.FromSource {
		sourceStylesXML, _ := readZipEntryBytes(req.SourcePath, "word/styles.xml")
		sourceRelsRaw, _ := readZipEntryBytes(req.SourcePath, "word/_rels/document.xml.rels")

		if len(sect.StyleIDs) > 0 && len(sourceStylesXML) > 0 {
			merged, err := MergeStyles(destStylesXML, sourceStylesXML, sect.StyleIDs)
			if err == nil && !bytesEqual(merged, destStylesXML) {
				destStylesXML = merged
				stylesChanged = true
			}
		}

		if len(sect.RelationshipIDs) > 0 && len(sourceRelsRaw) > 0 {
			sourceRels, err := ParseRelationships(sourceRelsRaw)
			if err == nil {
				result, err := MergeRelationships(destRelsXML, sourceRels, sect.RelationshipIDs)
				if err == nil {
					if !bytesEqual(result.UpdatedRelsXML, destRelsXML) {
						destRelsXML = result.UpdatedRelsXML
						relsChanged = true
					}
					fragment = ApplyRemaps(fragment, result.Remaps)
				}
			}
		}
	}

	var sb strings.Builder
	if len(destDoc.Paragraphs) == 0 {
		sb.WriteString(titleParagraphXML)
	}
	sb.WriteString(fragment)
	sb.WriteString(spacerParagraphXML)
	toSplice := []byte(sb.String())

	spliceOffset := resolveSpliceOffset(destDoc, req.SelectedTargetHeadingOrder, req.HeadingLevel)

	newDocXML := make([]byte, 0, len(destDoc.DocumentXML)+len(toSplice))
	newDocXML = append(newDocXML, destDoc.DocumentXML[:spliceOffset]...)
	newDocXML = append(newDocXML, toSplice...)
	newDocXML = append(newDocXML, destDoc.DocumentXML[spliceOffset:]...)

	replacements := map[string][]byte{"word/document.xml": newDocXML}
	if stylesChanged {
		replacements["word/styles.xml"] = destStylesXML
	}
	if relsChanged {
		replacements["word/_rels/document.xml.rels"] = destRelsXML
	}

	if err := RewriteParts(destPath, replacements); err != nil {
		return InsertResult{}, err
	}

	return InsertResult{
		CapturePath:        destPath,
		Marker:             fmt.Sprintf("BF-%06d", req.CaptureID),
		TargetRelativePath: targetRel,
	}, nil
}

func resolveDestPath(rootPath, targetRel string) string {
	if filepath.IsAbs(targetRel) {
		return targetRel
	}
	return filepath.Join(rootPath, filepath.FromSlash(targetRel))
}

// resolveSpliceOffset implements step 9: splice after the resolved
// anchor paragraph's end, or before <w:sectPr>/</w:body> when no
// heading exists to anchor against.
func resolveSpliceOffset(doc *docxfile.Document, selectedTargetOrder, incomingLevel *int) int {
	ranges := section.BuildHeadingRanges(doc.Paragraphs)
	if order, ok := section.ResolveInsertAfterOrder(doc.Paragraphs, ranges, selectedTargetOrder, incomingLevel); ok {
		for _, p := range doc.Paragraphs {
			if p.Order == order {
				return p.End
			}
		}
	}

	if doc.SectPrStart >= 0 {
		return doc.SectPrStart
	}
	// BodyEnd is the offset just past </w:body>; step back to the start
	// of that closing tag so the splice lands inside the body.
	if i := bytes.LastIndex(doc.DocumentXML[:doc.BodyEnd], []byte("</")); i >= 0 {
		return i
	}
	return doc.BodyEnd
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DeleteCaptureHeading excises a heading's entire range from the
// destination DOCX in place.
func DeleteCaptureHeading(targetPath string, headingOrder int) error {
	docXML, err := readZipEntryBytes(targetPath, "word/document.xml")
	if err != nil {
		return fmt.Errorf("read %q document.xml; %w", targetPath, err)
	}
	stylesXML, _ := readZipEntryBytes(targetPath, "word/styles.xml")

	doc, err := docxfile.Parse(docXML, stylesXML)
	if err != nil {
		return fmt.Errorf("parse %q; %w", targetPath, err)
	}

	ranges := section.BuildHeadingRanges(doc.Paragraphs)
	r, ok := section.FindByOrder(ranges, headingOrder)
	if !ok {
		return &ValidationError{Op: "delete_capture_heading", Reason: "heading not found"}
	}

	start, end, ok := paragraphByteRange(doc.Paragraphs, r)
	if !ok {
		return &ValidationError{Op: "delete_capture_heading", Reason: "heading range could not be located"}
	}

	newDocXML := make([]byte, 0, len(doc.DocumentXML)-(end-start))
	newDocXML = append(newDocXML, doc.DocumentXML[:start]...)
	newDocXML = append(newDocXML, doc.DocumentXML[end:]...)

	return RewriteParts(targetPath, map[string][]byte{"word/document.xml": newDocXML})
}

// MoveCaptureHeading excises sourceOrder's range and re-splices it
// immediately after targetOrder's range. Moving a heading to itself is
// a no-op; moving into its own subtree is rejected.
func MoveCaptureHeading(targetPath string, sourceOrder, targetOrder int) error {
	docXML, err := readZipEntryBytes(targetPath, "word/document.xml")
	if err != nil {
		return fmt.Errorf("read %q document.xml; %w", targetPath, err)
	}
	stylesXML, _ := readZipEntryBytes(targetPath, "word/styles.xml")

	doc, err := docxfile.Parse(docXML, stylesXML)
	if err != nil {
		return fmt.Errorf("parse %q; %w", targetPath, err)
	}

	ranges := section.BuildHeadingRanges(doc.Paragraphs)
	srcRange, ok := section.FindByOrder(ranges, sourceOrder)
	if !ok {
		return &ValidationError{Op: "move_capture_heading", Reason: "source heading not found"}
	}
	tgtRange, ok := section.FindByOrder(ranges, targetOrder)
	if !ok {
		return &ValidationError{Op: "move_capture_heading", Reason: "target heading not found"}
	}

	if sourceOrder == targetOrder {
		return nil
	}

	if tgtRange.StartIndex >= srcRange.StartIndex && tgtRange.StartIndex < srcRange.EndIndex {
		return &ValidationError{Op: "move_capture_heading", Reason: "cannot move a heading into its own subtree"}
	}

	srcStart, srcEnd, ok := paragraphByteRange(doc.Paragraphs, srcRange)
	if !ok {
		return &ValidationError{Op: "move_capture_heading", Reason: "source range could not be located"}
	}
	_, tgtEnd, ok := paragraphByteRange(doc.Paragraphs, tgtRange)
	if !ok {
		return &ValidationError{Op: "move_capture_heading", Reason: "target range could not be located"}
	}

	fragment := append([]byte(nil), doc.DocumentXML[srcStart:srcEnd]...)

	removed := make([]byte, 0, len(doc.DocumentXML)-len(fragment))
	removed = append(removed, doc.DocumentXML[:srcStart]...)
	removed = append(removed, doc.DocumentXML[srcEnd:]...)

	insertAt := tgtEnd
	if tgtRange.StartIndex > srcRange.StartIndex {
		// target followed source in the original document; its byte
		// offset shifted left by the excised fragment's length.
		insertAt -= len(fragment)
	}

	newDocXML := make([]byte, 0, len(removed)+len(fragment))
	newDocXML = append(newDocXML, removed[:insertAt]...)
	newDocXML = append(newDocXML, fragment...)
	newDocXML = append(newDocXML, removed[insertAt:]...)

	return RewriteParts(targetPath, map[string][]byte{"word/document.xml": newDocXML})
}
