package export

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// zipTree compresses the directory at root into a zip at outputPath. Entries
// are written in sorted path order with zeroed timestamps so the same staged
// tree always produces the same archive.
func zipTree(root, outputPath string) error {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk staged tree: %w", err)
	}
	sort.Strings(paths)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		header := &zip.FileHeader{
			Name:   filepath.ToSlash(rel),
			Method: zip.Deflate,
		}
		entry, err := writer.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("add %s: %w", rel, err)
		}
		src, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		_, copyErr := io.Copy(entry, src)
		src.Close()
		if copyErr != nil {
			return fmt.Errorf("compress %s: %w", rel, copyErr)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}
