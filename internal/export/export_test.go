package export_test

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"readalong/internal/export"
	"readalong/internal/services"
	"readalong/internal/store"
	"readalong/internal/testsupport"
)

func readManifest(t *testing.T, archivePath string) (export.Manifest, []string) {
	t.Helper()

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()

	var names []string
	var manifest export.Manifest
	found := false
	for _, file := range reader.File {
		names = append(names, file.Name)
		if file.Name != "manifest.json" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open manifest entry: %v", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read manifest entry: %v", err)
		}
		if err := json.Unmarshal(data, &manifest); err != nil {
			t.Fatalf("decode manifest: %v", err)
		}
		found = true
	}
	if !found {
		t.Fatalf("manifest.json missing from archive, entries: %v", names)
	}
	return manifest, names
}

func TestExportBookWithAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	book, err := st.CreateBook(ctx, "Stoner")
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	article, err := st.CreateArticle(ctx, book.ID, "Chapter One")
	if err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}
	sentences := testsupport.SeedSentences(t, st, article.ID, [][2]string{
		{"Hi.", "你好。"},
	})
	if err := st.ApplyTimestamps(ctx, []store.TimedSegment{
		{SentenceID: sentences[0].ID, StartMS: 0, EndMS: 500},
	}); err != nil {
		t.Fatalf("ApplyTimestamps failed: %v", err)
	}

	audioPath := filepath.Join(testsupport.BaseDir(cfg), "chapter1.mp3")
	testsupport.WriteFile(t, audioPath, 2048)
	if err := st.SetArticleAudio(ctx, article.ID, audioPath); err != nil {
		t.Fatalf("SetArticleAudio failed: %v", err)
	}

	staging := t.TempDir()
	output := filepath.Join(t.TempDir(), "stoner.zip")
	packager := export.New(st, nil)

	result, err := packager.ExportBook(ctx, book.ID, staging, output)
	if err != nil {
		t.Fatalf("ExportBook failed: %v", err)
	}
	if result.ArticlesTotal != 1 || result.ArticlesWithAudio != 1 || result.Degraded() {
		t.Fatalf("unexpected result: %#v", result)
	}

	manifest, names := readManifest(t, output)
	if manifest.BookTitle != "Stoner" {
		t.Fatalf("unexpected book title: %q", manifest.BookTitle)
	}
	if len(manifest.Articles) != 1 {
		t.Fatalf("expected 1 manifest article, got %d", len(manifest.Articles))
	}
	entry := manifest.Articles[0]
	if entry.Audio == nil || !strings.HasPrefix(*entry.Audio, "articles/") {
		t.Fatalf("unexpected audio reference: %v", entry.Audio)
	}
	if len(entry.Sentences) != 1 || entry.Sentences[0].StartMS == nil || *entry.Sentences[0].EndMS != 500 {
		t.Fatalf("unexpected manifest sentences: %#v", entry.Sentences)
	}

	foundAudio := false
	for _, name := range names {
		if name == *entry.Audio {
			foundAudio = true
		}
	}
	if !foundAudio {
		t.Fatalf("audio entry %q not in archive: %v", *entry.Audio, names)
	}

	// The staged tree must be gone regardless of outcome.
	entries, err := os.ReadDir(staging)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging dir not cleaned: %v", entries)
	}
}

func TestExportBookSkipsMissingAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	book, err := st.CreateBook(ctx, "Stoner")
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	// One article with no audio path, one whose audio path points nowhere.
	if _, err := st.CreateArticle(ctx, book.ID, "No Audio"); err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}
	broken, err := st.CreateArticle(ctx, book.ID, "Broken Audio")
	if err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}
	if err := st.SetArticleAudio(ctx, broken.ID, filepath.Join(testsupport.BaseDir(cfg), "gone.mp3")); err != nil {
		t.Fatalf("SetArticleAudio failed: %v", err)
	}

	output := filepath.Join(t.TempDir(), "stoner.zip")
	packager := export.New(st, nil)

	result, err := packager.ExportBook(ctx, book.ID, t.TempDir(), output)
	if err != nil {
		t.Fatalf("ExportBook failed: %v", err)
	}
	if !result.Degraded() || len(result.Skipped) != 2 || result.ArticlesWithAudio != 0 {
		t.Fatalf("expected both articles skipped, got %#v", result)
	}

	manifest, names := readManifest(t, output)
	for _, entry := range manifest.Articles {
		if entry.Audio != nil {
			t.Fatalf("expected null audio reference for %q", entry.Title)
		}
	}
	for _, name := range names {
		if strings.HasPrefix(name, "articles/") {
			t.Fatalf("no audio files should be staged, found %s", name)
		}
	}
}

func TestExportBookDisambiguatesDuplicateTitles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	book, err := st.CreateBook(ctx, "Stoner")
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		article, err := st.CreateArticle(ctx, book.ID, "Chapter")
		if err != nil {
			t.Fatalf("CreateArticle failed: %v", err)
		}
		audioPath := filepath.Join(testsupport.BaseDir(cfg), "audio", article.Title+string(rune('a'+i))+".mp3")
		testsupport.WriteFile(t, audioPath, 128)
		if err := st.SetArticleAudio(ctx, article.ID, audioPath); err != nil {
			t.Fatalf("SetArticleAudio failed: %v", err)
		}
	}

	output := filepath.Join(t.TempDir(), "stoner.zip")
	result, err := export.New(st, nil).ExportBook(ctx, book.ID, t.TempDir(), output)
	if err != nil {
		t.Fatalf("ExportBook failed: %v", err)
	}
	if result.ArticlesWithAudio != 2 {
		t.Fatalf("expected both articles staged, got %#v", result)
	}

	manifest, _ := readManifest(t, output)
	if *manifest.Articles[0].Audio == *manifest.Articles[1].Audio {
		t.Fatalf("duplicate titles collided on %q", *manifest.Articles[0].Audio)
	}
}

func TestExportBookUnknownBook(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := export.New(st, nil).ExportBook(context.Background(), 404, t.TempDir(), filepath.Join(t.TempDir(), "out.zip"))
	if err == nil {
		t.Fatal("expected error for unknown book")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
