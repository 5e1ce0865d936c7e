package capture

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeZip(t *testing.T, path string, parts map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %q: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %q: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

func readZipText(t *testing.T, path, name string) string {
	t.Helper()
	b, err := readZipEntryBytes(path, name)
	if err != nil {
		t.Fatalf("read zip entry %q from %q: %v", name, path, err)
	}
	return string(b)
}

func TestNormalizeTargetPathDefaults(t *testing.T) {
	got, err := NormalizeTargetPath("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != defaultCaptureTargetName {
		t.Errorf("got %q, want default", got)
	}
}

func TestNormalizeTargetPathRejectsEscape(t *testing.T) {
	if _, err := NormalizeTargetPath("../outside.docx"); err == nil {
		t.Error("expected an error for a path escaping the root")
	}
	if _, err := NormalizeTargetPath("sub/../../outside.docx"); err == nil {
		t.Error("expected an error for a path that climbs out through a subdirectory")
	}
}

func TestNormalizeTargetPathCoercesExtension(t *testing.T) {
	got, err := NormalizeTargetPath("notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "notes.docx" {
		t.Errorf("got %q, want notes.docx", got)
	}

	got, err = NormalizeTargetPath("notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "notes.docx" {
		t.Errorf("got %q, want notes.docx", got)
	}
}

func TestNormalizeTargetPathAcceptsNestedRelative(t *testing.T) {
	got, err := NormalizeTargetPath("subdir/My Captures.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "subdir/My Captures.docx" {
		t.Errorf("got %q", got)
	}
}

func TestEnsureDestinationCreatesBlankDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.docx")

	if err := EnsureDestination(path); err != nil {
		t.Fatalf("ensure destination: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	doc := readZipText(t, path, "word/document.xml")
	if !strings.Contains(doc, "<w:body>") {
		t.Errorf("blank docx missing body: %q", doc)
	}
}

func TestEnsureDestinationBacksUpCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.docx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if err := EnsureDestination(path); err != nil {
		t.Fatalf("ensure destination: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	doc := readZipText(t, path, "word/document.xml")
	if !strings.Contains(doc, "<w:body>") {
		t.Errorf("recreated docx missing body: %q", doc)
	}
}

func TestInsertCaptureIntoBlankTargetUsesPlainParagraphs(t *testing.T) {
	root := t.TempDir()

	res, err := InsertCapture(InsertRequest{
		RootPath:   root,
		SourcePath: filepath.Join(root, "missing-source.docx"),
		Content:    "first line\n\nthird line",
		CaptureID:  7,
	})
	if err != nil {
		t.Fatalf("insert capture: %v", err)
	}
	if res.Marker != "BF-000007" {
		t.Errorf("marker = %q, want BF-000007", res.Marker)
	}
	if res.TargetRelativePath != defaultCaptureTargetName {
		t.Errorf("target path = %q", res.TargetRelativePath)
	}

	doc := readZipText(t, res.CapturePath, "word/document.xml")
	if !strings.Contains(doc, "first line") || !strings.Contains(doc, "third line") {
		t.Errorf("capture document missing inserted text: %q", doc)
	}
	if !strings.Contains(doc, captureTitle) {
		t.Errorf("expected title paragraph on first insert into empty body: %q", doc)
	}
	if !strings.Contains(doc, "<w:p/>") {
		t.Errorf("expected an empty-line paragraph or spacer: %q", doc)
	}
}

func TestInsertCaptureFromSourceHeadingMergesStylesAndRelationships(t *testing.T) {
	root := t.TempDir()
	sourcePath := filepath.Join(root, "source.docx")

	sourceDoc := `<?xml version="1.0"?><w:document xmlns:w="http://x"><w:body>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="CustomBody"/></w:pPr>` +
		`<w:hyperlink r:id="rId5"><w:r><w:t>a link</w:t></w:r></w:hyperlink></w:p>` +
		`</w:body></w:document>`

	sourceStyles := `<?xml version="1.0"?><w:styles xmlns:w="http://x">` +
		`<w:style w:type="paragraph" w:styleId="CustomBody"><w:name w:val="Custom Body"/><w:basedOn w:val="Normal"/></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
		`</w:styles>`

	sourceRels := `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com" TargetMode="External"/>` +
		`</Relationships>`

	writeZip(t, sourcePath, map[string]string{
		"word/document.xml":            sourceDoc,
		"word/styles.xml":              sourceStyles,
		"word/_rels/document.xml.rels": sourceRels,
	})

	destPath := filepath.Join(root, "BlockFile-Captures.docx")
	destRels := `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`
	writeZip(t, destPath, map[string]string{
		"[Content_Types].xml": blankContentTypesXML,
		"_rels/.rels":         blankPackageRelsXML,
		"word/document.xml":   blankDocumentXML,
		"word/styles.xml":     blankStylesXML,
		"word/_rels/document.xml.rels": destRels,
	})

	headingOrder := 1
	res, err := InsertCapture(InsertRequest{
		RootPath:     root,
		SourcePath:   sourcePath,
		Content:      "Intro\na link",
		HeadingOrder: &headingOrder,
		CaptureID:    42,
	})
	if err != nil {
		t.Fatalf("insert capture: %v", err)
	}

	newStyles := readZipText(t, res.CapturePath, "word/styles.xml")
	if !strings.Contains(newStyles, `w:styleId="CustomBody"`) {
		t.Errorf("expected CustomBody style merged in: %q", newStyles)
	}
	if !strings.Contains(newStyles, `w:styleId="Normal"`) {
		t.Errorf("expected transitive basedOn Normal style merged in: %q", newStyles)
	}

	newRels := readZipText(t, res.CapturePath, "word/_rels/document.xml.rels")
	if !strings.Contains(newRels, "https://example.com") {
		t.Errorf("expected hyperlink relationship copied into destination: %q", newRels)
	}

	newDoc := readZipText(t, res.CapturePath, "word/document.xml")
	if !strings.Contains(newDoc, `r:id="rId5"`) {
		t.Errorf("expected rId5 copied verbatim since destination had no conflicting id: %q", newDoc)
	}
	if !strings.Contains(newDoc, "a link") {
		t.Errorf("expected source paragraph text spliced in: %q", newDoc)
	}
}

func TestDeleteCaptureHeadingRemovesRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captures.docx")
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://x"><w:body>` +
		`<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>First</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>under first</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>Second</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	writeZip(t, path, map[string]string{"word/document.xml": doc})

	if err := DeleteCaptureHeading(path, 1); err != nil {
		t.Fatalf("delete capture heading: %v", err)
	}

	out := readZipText(t, path, "word/document.xml")
	if strings.Contains(out, "First") || strings.Contains(out, "under first") {
		t.Errorf("expected first heading's range removed: %q", out)
	}
	if !strings.Contains(out, "Second") {
		t.Errorf("expected second heading to survive: %q", out)
	}
}

func TestMoveCaptureHeadingForbidsOwnSubtree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captures.docx")
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://x"><w:body>` +
		`<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>Parent</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:outlineLvl w:val="1"/></w:pPr><w:r><w:t>Child</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	writeZip(t, path, map[string]string{"word/document.xml": doc})

	if err := MoveCaptureHeading(path, 1, 2); err == nil {
		t.Error("expected an error moving a heading into its own subtree")
	}
}

func TestMoveCaptureHeadingToItselfIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captures.docx")
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://x"><w:body>` +
		`<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>First</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>Second</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	writeZip(t, path, map[string]string{"word/document.xml": doc})

	before := readZipText(t, path, "word/document.xml")
	if err := MoveCaptureHeading(path, 1, 1); err != nil {
		t.Fatalf("move capture heading to itself: %v", err)
	}
	after := readZipText(t, path, "word/document.xml")
	if before != after {
		t.Errorf("expected no-op move to leave document unchanged, before=%q after=%q", before, after)
	}
}

func TestMoveCaptureHeadingReordersRanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captures.docx")
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://x"><w:body>` +
		`<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>First</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>Second</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	writeZip(t, path, map[string]string{"word/document.xml": doc})

	if err := MoveCaptureHeading(path, 1, 2); err != nil {
		t.Fatalf("move capture heading: %v", err)
	}

	out := readZipText(t, path, "word/document.xml")
	firstIdx := strings.Index(out, "First")
	secondIdx := strings.Index(out, "Second")
	if firstIdx < secondIdx {
		t.Errorf("expected First to be spliced after Second, got %q", out)
	}
}
