package capture

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// RewriteParts streams every entry of the zip at path into a sibling
// uniquely-named temp file, substituting any entry named in
// replacements and appending replacements whose name was not already
// present, then atomically renames the temp file over the original.
// The temp name carries a random suffix rather than a fixed ".tmp" so
// that concurrent writers to the same target (spec §9 open question
// (a): no lock guards capture writes) don't clobber each other's
// in-flight file. Implements spec §4.H step 10.
func RewriteParts(path string, replacements map[string][]byte) error {
	src, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open %q for rewrite; %w", path, err)
	}
	defer src.Close()

	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create %q; %w", tmpPath, err)
	}

	zw := zip.NewWriter(tmpFile)
	written := make(map[string]bool)

	for _, f := range src.File {
		data, ok := replacements[f.Name]
		if ok {
			written[f.Name] = true
			if err := writeZipEntry(zw, f.Name, data); err != nil {
				zw.Close()
				tmpFile.Close()
				os.Remove(tmpPath)
				return err
			}
			continue
		}

		if err := copyZipEntry(zw, f); err != nil {
			zw.Close()
			tmpFile.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	for name, data := range replacements {
		if written[name] {
			continue
		}
		if err := writeZipEntry(zw, name, data); err != nil {
			zw.Close()
			tmpFile.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	if err := zw.Close(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("finish zip %q; %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %q; %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Some platforms refuse cross-device or in-use renames; fall
		// back to delete-then-rename.
		if rmErr := os.Remove(path); rmErr != nil {
			return fmt.Errorf("rename %q over %q; %w", tmpPath, path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return fmt.Errorf("rename %q over %q after delete; %w", tmpPath, path, err)
		}
	}

	return nil
}

func copyZipEntry(zw *zip.Writer, f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %q; %w", f.Name, err)
	}
	defer rc.Close()

	w, err := zw.CreateHeader(&f.FileHeader)
	if err != nil {
		return fmt.Errorf("create zip entry %q; %w", f.Name, err)
	}
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("copy zip entry %q; %w", f.Name, err)
	}
	return nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q; %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write zip entry %q; %w", name, err)
	}
	return nil
}
