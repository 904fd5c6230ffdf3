package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// mp3FrameHeader is the sync word plus header bytes of an MPEG-1 Layer III
// frame. Repeating it makes fixture audio look like a real stream to
// size-based code without needing actual encoded content.
var mp3FrameHeader = []byte{0xFF, 0xFB, 0x90, 0x00}

// WriteFile fills the target path with the requested number of bytes of
// fake MP3 frame data. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = mp3FrameHeader[i%len(mp3FrameHeader)]
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}
