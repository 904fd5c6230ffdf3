package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.mp3")
	content := []byte("not really audio but good enough to hash")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := File(path)
	if err != nil {
		t.Fatal(err)
	}
	want := sha256.Sum256(content)
	if got != hex.EncodeToString(want[:]) {
		t.Fatalf("digest mismatch: got %s", got)
	}
}

func TestFileLargerThanBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	content := make([]byte, blockSize*3+17)
	for i := range content {
		content[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := File(path)
	if err != nil {
		t.Fatal(err)
	}
	want := sha256.Sum256(content)
	if got != hex.EncodeToString(want[:]) {
		t.Fatalf("digest mismatch for multi-block file")
	}
}

func TestFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := File(path)
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestFileMissing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrEmptyFile) {
		t.Fatal("missing file should not report ErrEmptyFile")
	}
}

func TestJoinSplitValidate(t *testing.T) {
	digests := []string{"aaa", "", "ccc"}
	joined := Join(digests)

	split := Split(joined)
	if len(split) != 3 {
		t.Fatalf("expected 3 digests, got %d", len(split))
	}
	if split[1] != "" {
		t.Fatalf("expected empty placeholder preserved, got %q", split[1])
	}

	if err := Validate(joined, 3); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := Validate(joined, 2); err == nil {
		t.Fatal("expected mismatch error")
	}
	if split := Split(""); split != nil {
		t.Fatalf("expected nil for empty string, got %v", split)
	}
}
