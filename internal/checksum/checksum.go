// Package checksum computes streaming SHA-256 digests for audio part files
// and manages their delimiter-joined persistence format.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Delimiter separates per-part digests in the article checksum column.
// Changing it invalidates every stored checksum string.
const Delimiter = ","

// blockSize is the read block used while hashing. Files are never loaded
// into memory whole.
const blockSize = 64 * 1024

// ErrEmptyFile signals a zero-length input. Callers record an empty
// placeholder digest instead of treating this as fatal.
var ErrEmptyFile = errors.New("checksum: empty file")

// File streams the file at path through SHA-256 and returns the hex digest.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	buf := make([]byte, blockSize)
	var total int64
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			total += int64(n)
			hasher.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("read %s: %w", path, readErr)
		}
	}
	if total == 0 {
		return "", ErrEmptyFile
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Join concatenates per-part digests into the single stored column value.
// A failed part contributes an empty slot so positions stay aligned with
// part indexes.
func Join(digests []string) string {
	return strings.Join(digests, Delimiter)
}

// Split breaks a stored checksum string back into per-part digests. An empty
// string yields no digests.
func Split(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, Delimiter)
}

// Validate confirms the stored checksum string splits into exactly numParts
// digests. A mismatch is a data-integrity bug surfaced to the caller, never
// repaired by truncation.
func Validate(joined string, numParts int) error {
	digests := Split(joined)
	if len(digests) != numParts {
		return fmt.Errorf("checksum count %d does not match part count %d", len(digests), numParts)
	}
	return nil
}
