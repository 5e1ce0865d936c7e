package preview

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDocx(t *testing.T, path, bodyXML string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %q: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml entry: %v", err)
	}
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://x"><w:body>` + bodyXML + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

func TestBuildFilePreviewHeadingsAndF8Cites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.docx")
	writeDocx(t, path,
		`<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>body</w:t></w:r></w:p>`+
			`<w:p><w:pPr><w:pStyle w:val="F8CiteStyle"/></w:pPr><w:r><w:t>cite one</w:t></w:r></w:p>`+
			`<w:p><w:pPr><w:pStyle w:val="F8CiteStyle"/></w:pPr><w:r><w:t>cite two</w:t></w:r></w:p>`)

	fp, err := BuildFilePreview(1, "a.docx", path)
	if err != nil {
		t.Fatalf("build file preview: %v", err)
	}
	if fp.HeadingCount != 1 {
		t.Errorf("heading count = %d, want 1", fp.HeadingCount)
	}
	if len(fp.F8Cites) != 1 {
		t.Fatalf("f8 cite blocks = %d, want 1", len(fp.F8Cites))
	}
	if fp.F8Cites[0].Text != "cite one\ncite two" {
		t.Errorf("f8 cite text = %q", fp.F8Cites[0].Text)
	}
}

func TestHeadingSectionHTMLEscapesAndStylesRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.docx")
	writeDocx(t, path,
		`<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr>`+
			`<w:r><w:rPr><w:b/></w:rPr><w:t>Bold &amp; &lt;tricky&gt;</w:t></w:r>`+
			`</w:p>`)

	out, err := HeadingSectionHTML(path, 1)
	if err != nil {
		t.Fatalf("heading section html: %v", err)
	}
	if !strings.Contains(out, `bf-preview-h1`) {
		t.Errorf("missing heading paragraph class: %q", out)
	}
	if !strings.Contains(out, `bf-run-bold`) {
		t.Errorf("missing bold run class: %q", out)
	}
	if strings.Contains(out, "<tricky>") {
		t.Errorf("expected HTML-escaped output, got %q", out)
	}
}

func TestHeadingSectionHTMLEmptyParagraphRendersNbsp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.docx")
	writeDocx(t, path, `<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr></w:p>`)

	out, err := HeadingSectionHTML(path, 1)
	if err != nil {
		t.Fatalf("heading section html: %v", err)
	}
	if !strings.Contains(out, "&nbsp;") {
		t.Errorf("expected empty paragraph to render &nbsp;, got %q", out)
	}
}

func TestHeadingSectionHTMLUnknownHeadingErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.docx")
	writeDocx(t, path, `<w:p><w:r><w:t>plain</w:t></w:r></w:p>`)

	if _, err := HeadingSectionHTML(path, 99); err == nil {
		t.Error("expected an error for an unknown heading order")
	}
}
