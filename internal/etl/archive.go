package etl

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractZip extracts the files matched by keep from a downloaded archive
// into destDir, flattening any directory structure inside the archive.
// Returns the paths of the extracted files keyed by their base name.
func ExtractZip(archivePath, destDir string, keep func(name string) bool) (map[string]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	extracted := make(map[string]string)
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		base := filepath.Base(f.Name)
		if strings.HasPrefix(base, ".") || (keep != nil && !keep(base)) {
			continue
		}

		if err := extractOne(f, filepath.Join(destDir, base)); err != nil {
			return nil, err
		}
		extracted[base] = filepath.Join(destDir, base)
	}

	if len(extracted) == 0 {
		return nil, fmt.Errorf("archive %s contained no matching files", archivePath)
	}
	return extracted, nil
}

func extractOne(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return nil
}
