package capture

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
)

const (
	blankContentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
		`</Types>`

	blankPackageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`

	blankDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:sectPr/></w:body></w:document>`

	blankStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"></w:styles>`

	blankDocumentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
)

// EnsureDestination implements spec §4.H step 5: create a blank DOCX
// at path if absent, or if present but missing word/document.xml, back
// it up with a ".docx.bak" suffix and recreate it blank.
func EnsureDestination(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return writeBlankDocx(path)
	} else if err != nil {
		return fmt.Errorf("stat destination %q; %w", path, err)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return backupAndRecreate(path)
	}
	_, hasDoc := findZipEntry(r, "word/document.xml")
	r.Close()
	if !hasDoc {
		return backupAndRecreate(path)
	}
	return nil
}

func backupAndRecreate(path string) error {
	bakPath := path + ".bak"
	if err := copyFile(path, bakPath); err != nil {
		return fmt.Errorf("back up invalid destination %q; %w", path, err)
	}
	return writeBlankDocx(path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

func writeBlankDocx(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create blank docx %q; %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := map[string]string{
		"[Content_Types].xml":          blankContentTypesXML,
		"_rels/.rels":                  blankPackageRelsXML,
		"word/document.xml":            blankDocumentXML,
		"word/styles.xml":              blankStylesXML,
		"word/_rels/document.xml.rels": blankDocumentRelsXML,
	}
	for name, content := range entries {
		if err := writeZipEntry(zw, name, []byte(content)); err != nil {
			return err
		}
	}
	return zw.Close()
}

func findZipEntry(r *zip.ReadCloser, name string) (*zip.File, bool) {
	for _, f := range r.File {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func readZipEntryBytes(path, name string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %q; %w", path, err)
	}
	defer r.Close()

	f, ok := findZipEntry(r, name)
	if !ok {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q in %q; %w", name, path, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
