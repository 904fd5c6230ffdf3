package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"readalong/internal/align"
	"readalong/internal/config"
	"readalong/internal/media/ffprobe"
	"readalong/internal/pipeline"
	"readalong/internal/services"
	"readalong/internal/store"
	"readalong/internal/testsupport"
)

type fakeNormalizer struct {
	input  string
	output string
	err    error
}

func (f *fakeNormalizer) Normalize(ctx context.Context, inputPath, outputPath string) error {
	f.input = inputPath
	f.output = outputPath
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, make([]byte, 2048), 0o644)
}

type fakeAligner struct {
	srt string
}

func (f *fakeAligner) Align(ctx context.Context, audioPath, textPath, outputPath string) error {
	return os.WriteFile(outputPath, []byte(f.srt), 0o644)
}

type fakeMedia struct{}

func (f *fakeMedia) Concat(ctx context.Context, clipPaths []string, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, make([]byte, 2048), 0o644)
}

func (f *fakeMedia) ExtractSlice(ctx context.Context, inputPath, outputPath string, startMS, endMS int64) error {
	return os.WriteFile(outputPath, []byte(fmt.Sprintf("slice %d-%d", startMS, endMS)), 0o644)
}

func fixedProbe(durationMS int64) align.ProbeFunc {
	return func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{Format: ffprobe.Format{
			Duration: fmt.Sprintf("%d.%03d", durationMS/1000, durationMS%1000),
		}}, nil
	}
}

func testOrchestrator(cfg *config.Config, st *store.Store, srt string) *align.Orchestrator {
	return align.New(st, cfg, nil,
		align.WithAligner(&fakeAligner{srt: srt}),
		align.WithMedia(&fakeMedia{}),
		align.WithProbe(fixedProbe(1200)),
	)
}

const sampleTranscript = `<paragraph>
Hi.
你好。
Bye.
再见。
</paragraph>
<paragraph>
Morning.
早上好。
</paragraph>
`

func TestIngestArticle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	p := pipeline.New(cfg, st, nil)

	path := filepath.Join(testsupport.BaseDir(cfg), "chapter1.txt")
	if err := os.WriteFile(path, []byte(sampleTranscript), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	ctx := context.Background()
	article, count, err := p.IngestArticle(ctx, "Stoner", "Chapter One", path)
	if err != nil {
		t.Fatalf("IngestArticle failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 sentence pairs, got %d", count)
	}

	sentences, err := st.SentencesForArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("SentencesForArticle failed: %v", err)
	}
	if len(sentences) != 3 {
		t.Fatalf("expected 3 stored sentences, got %d", len(sentences))
	}
	if sentences[2].ParagraphIndex != 1 || sentences[2].SentenceIndex != 0 {
		t.Fatalf("second paragraph ordering wrong: %#v", sentences[2])
	}
	if sentences[0].SourceText != "Hi." || sentences[0].TargetText != "你好。" {
		t.Fatalf("sentence 0 text wrong: %#v", sentences[0])
	}
}

func TestIngestArticleReusesBook(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	p := pipeline.New(cfg, st, nil)

	path := filepath.Join(testsupport.BaseDir(cfg), "chapter.txt")
	if err := os.WriteFile(path, []byte(sampleTranscript), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	ctx := context.Background()
	first, _, err := p.IngestArticle(ctx, "Stoner", "Chapter One", path)
	if err != nil {
		t.Fatalf("first IngestArticle failed: %v", err)
	}
	second, _, err := p.IngestArticle(ctx, "Stoner", "Chapter Two", path)
	if err != nil {
		t.Fatalf("second IngestArticle failed: %v", err)
	}
	if first.BookID != second.BookID {
		t.Fatalf("articles landed in different books: %d vs %d", first.BookID, second.BookID)
	}

	books, err := st.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected one book, got %d", len(books))
	}
}

func TestIngestArticleRejectsEmptyTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	p := pipeline.New(cfg, st, nil)

	path := filepath.Join(testsupport.BaseDir(cfg), "empty.txt")
	if err := os.WriteFile(path, []byte("<paragraph>\n</paragraph>\n"), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	_, _, err := p.IngestArticle(context.Background(), "Stoner", "Empty", path)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestIngestArticleMissingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	p := pipeline.New(cfg, st, nil)

	_, _, err := p.IngestArticle(context.Background(), "Stoner", "Missing", filepath.Join(testsupport.BaseDir(cfg), "nope.txt"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAlignForcedNormalizesInputAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	article := testsupport.NewArticle(t, st, "Stoner", "Chapter One")
	testsupport.SeedSentences(t, st, article.ID, [][2]string{
		{"Hi.", "你好。"},
		{"Bye.", "再见。"},
	})

	normalizer := &fakeNormalizer{}
	srt := "1\n00:00:00,000 --> 00:00:00,500\nHi.\n\n2\n00:00:00,600 --> 00:00:01,200\nBye.\n\n"
	p := pipeline.New(cfg, st, nil,
		pipeline.WithOrchestrator(testOrchestrator(cfg, st, srt)),
		pipeline.WithNormalizer(normalizer),
	)

	raw := filepath.Join(testsupport.BaseDir(cfg), "raw.m4a")
	testsupport.WriteFile(t, raw, 4096)

	ctx := context.Background()
	result, err := p.AlignForced(ctx, article.ID, raw)
	if err != nil {
		t.Fatalf("AlignForced failed: %v", err)
	}
	if !result.Complete || result.TimestampCount != 2 {
		t.Fatalf("unexpected result: %#v", result)
	}

	if normalizer.input != raw {
		t.Fatalf("normalizer saw wrong input: %q", normalizer.input)
	}
	wantOutput := filepath.Join(cfg.AudioDir(), fmt.Sprintf("article_%d.mp3", article.ID))
	if normalizer.output != wantOutput {
		t.Fatalf("normalizer output = %q, want %q", normalizer.output, wantOutput)
	}

	updated, err := st.GetArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}
	if updated.AudioPath != wantOutput {
		t.Fatalf("audio path = %q, want %q", updated.AudioPath, wantOutput)
	}
}

func TestAlignForcedNormalizeFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	article := testsupport.NewArticle(t, st, "Stoner", "Chapter One")
	testsupport.SeedSentences(t, st, article.ID, [][2]string{{"Hi.", "你好。"}})

	p := pipeline.New(cfg, st, nil,
		pipeline.WithOrchestrator(testOrchestrator(cfg, st, "")),
		pipeline.WithNormalizer(&fakeNormalizer{err: errors.New("unsupported codec")}),
	)

	raw := filepath.Join(testsupport.BaseDir(cfg), "raw.m4a")
	testsupport.WriteFile(t, raw, 4096)

	_, err := p.AlignForced(context.Background(), article.ID, raw)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestAlignFailsFastWhenArticleLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	article := testsupport.NewArticle(t, st, "Stoner", "Chapter One")
	testsupport.SeedSentences(t, st, article.ID, [][2]string{{"Hi.", "你好。"}})

	if err := os.MkdirAll(cfg.LockDir(), 0o755); err != nil {
		t.Fatalf("mkdir lock dir: %v", err)
	}
	held := flock.New(filepath.Join(cfg.LockDir(), fmt.Sprintf("article_%d.lock", article.ID)))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take test lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	p := pipeline.New(cfg, st, nil,
		pipeline.WithOrchestrator(testOrchestrator(cfg, st, "")),
	)

	_, err = p.AlignSynthesized(context.Background(), article.ID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for held lock, got %v", err)
	}
	if !strings.Contains(err.Error(), "already being processed") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestAlignReleasesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	article := testsupport.NewArticle(t, st, "Stoner", "Chapter One")
	testsupport.SeedSentences(t, st, article.ID, [][2]string{{"Hi.", "你好。"}})
	audioPath := filepath.Join(testsupport.BaseDir(cfg), "input.mp3")
	testsupport.WriteFile(t, audioPath, 2048)
	if err := st.SetArticleAudio(context.Background(), article.ID, audioPath); err != nil {
		t.Fatalf("SetArticleAudio failed: %v", err)
	}

	srt := "1\n00:00:00,000 --> 00:00:00,500\nHi.\n\n"
	p := pipeline.New(cfg, st, nil,
		pipeline.WithOrchestrator(testOrchestrator(cfg, st, srt)),
	)

	ctx := context.Background()
	if _, err := p.AlignForced(ctx, article.ID, ""); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := p.AlignForced(ctx, article.ID, ""); err != nil {
		t.Fatalf("lock not released after first run: %v", err)
	}
}

func TestExportBookWritesArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	article := testsupport.NewArticle(t, st, "Stoner", "Chapter One")
	testsupport.SeedSentences(t, st, article.ID, [][2]string{{"Hi.", "你好。"}})
	audioPath := filepath.Join(testsupport.BaseDir(cfg), "audio.mp3")
	testsupport.WriteFile(t, audioPath, 2048)
	ctx := context.Background()
	if err := st.SetArticleAudio(ctx, article.ID, audioPath); err != nil {
		t.Fatalf("SetArticleAudio failed: %v", err)
	}

	p := pipeline.New(cfg, st, nil)
	result, err := p.ExportBook(ctx, article.BookID)
	if err != nil {
		t.Fatalf("ExportBook failed: %v", err)
	}
	if result.ArticlesTotal != 1 || result.ArticlesWithAudio != 1 {
		t.Fatalf("unexpected result: %#v", result)
	}

	wantPath := filepath.Join(cfg.ExportDir(), "Stoner.zip")
	if result.OutputPath != wantPath {
		t.Fatalf("output path = %q, want %q", result.OutputPath, wantPath)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("archive missing: %v", err)
	}
}

func TestExportBookUnknownBook(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	p := pipeline.New(cfg, st, nil)
	_, err := p.ExportBook(context.Background(), 404)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
