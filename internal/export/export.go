// Package export assembles a book's articles, audio, and timing data into a
// portable zip archive.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"readalong/internal/fileutil"
	"readalong/internal/logging"
	"readalong/internal/services"
	"readalong/internal/store"
)

// Result reports what an export produced. Skipped lists articles whose audio
// was missing or unreadable; those appear in the manifest with a null audio
// reference, and their absence never fails the export.
type Result struct {
	OutputPath        string
	ArticlesTotal     int
	ArticlesWithAudio int
	Skipped           []string
}

// Degraded reports whether any article shipped without audio.
func (r Result) Degraded() bool {
	return len(r.Skipped) > 0
}

// Packager builds book archives from store state.
type Packager struct {
	store  *store.Store
	logger *slog.Logger
}

// New constructs a packager. A nil logger is replaced with a no-op logger.
func New(st *store.Store, logger *slog.Logger) *Packager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Packager{store: st, logger: logging.WithComponent(logger, "export")}
}

// ExportBook stages manifest plus per-article audio under stagingDir, zips
// the staged tree to outputPath, and always removes the staged tree.
func (p *Packager) ExportBook(ctx context.Context, bookID int64, stagingDir, outputPath string) (Result, error) {
	book, err := p.store.GetBook(ctx, bookID)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "export", "load book", "reading book record", err)
	}
	if book == nil {
		return Result{}, services.Wrap(services.ErrNotFound, "export", "load book", fmt.Sprintf("book %d does not exist", bookID), nil)
	}

	articles, err := p.store.ListArticles(ctx, bookID)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "export", "list articles", "reading article records", err)
	}

	stageRoot, err := os.MkdirTemp(stagingDir, "export-")
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "export", "stage", "creating staging directory", err)
	}
	defer os.RemoveAll(stageRoot)

	result := Result{OutputPath: outputPath, ArticlesTotal: len(articles)}
	manifest := Manifest{BookTitle: book.Title}

	usedDirs := make(map[string]int)
	for _, article := range articles {
		entry, copied, err := p.stageArticle(ctx, stageRoot, article, usedDirs)
		if err != nil {
			return Result{}, err
		}
		if copied {
			result.ArticlesWithAudio++
		} else {
			result.Skipped = append(result.Skipped, article.Title)
		}
		manifest.Articles = append(manifest.Articles, entry)
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "export", "manifest", "encoding manifest", err)
	}
	if err := os.WriteFile(filepath.Join(stageRoot, "manifest.json"), manifestJSON, 0o644); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "export", "manifest", "writing manifest", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "export", "archive", "creating output directory", err)
	}
	if err := zipTree(stageRoot, outputPath); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "export", "archive", "compressing staged tree", err)
	}

	p.logger.Info("book exported",
		logging.Int64(logging.FieldBook, bookID),
		logging.String("book_title", book.Title),
		logging.Int("articles", result.ArticlesTotal),
		logging.Int("with_audio", result.ArticlesWithAudio),
		logging.String("output", outputPath))
	return result, nil
}

// stageArticle builds one manifest entry and copies the article audio into
// the staged tree when present, verifying the copy against the source hash.
// A missing, unreadable, or corrupted audio file yields a null audio
// reference, not an error.
func (p *Packager) stageArticle(ctx context.Context, stageRoot string, article *store.Article, usedDirs map[string]int) (ManifestArticle, bool, error) {
	entry := ManifestArticle{Title: article.Title}

	sentences, err := p.store.SentencesForArticle(ctx, article.ID)
	if err != nil {
		return entry, false, services.Wrap(services.ErrTransient, "export", "load sentences", "reading sentence records", err)
	}
	for _, sentence := range sentences {
		entry.Sentences = append(entry.Sentences, ManifestSentence{
			ParagraphIndex: sentence.ParagraphIndex,
			SentenceIndex:  sentence.SentenceIndex,
			SourceText:     sentence.SourceText,
			TargetText:     sentence.TargetText,
			StartMS:        sentence.StartMS,
			EndMS:          sentence.EndMS,
		})
	}

	if article.AudioPath == "" {
		p.logger.Warn("article has no audio, skipping copy",
			logging.Int64(logging.FieldArticle, article.ID),
			logging.String("article_title", article.Title))
		return entry, false, nil
	}

	safe := fileutil.SafeTitle(article.Title)
	if n := usedDirs[safe]; n > 0 {
		safe = fmt.Sprintf("%s_%d", safe, n+1)
	}
	usedDirs[fileutil.SafeTitle(article.Title)]++

	relAudio := filepath.ToSlash(filepath.Join("articles", safe, "audio"+audioExt(article.AudioPath)))
	target := filepath.Join(stageRoot, filepath.FromSlash(relAudio))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return entry, false, services.Wrap(services.ErrConfiguration, "export", "stage", "creating article directory", err)
	}
	if err := fileutil.CopyFileVerified(article.AudioPath, target); err != nil {
		p.logger.Warn("article audio unreadable, skipping copy",
			logging.Int64(logging.FieldArticle, article.ID),
			logging.String("article_title", article.Title),
			logging.Error(err))
		return entry, false, nil
	}

	entry.Audio = &relAudio
	return entry, true, nil
}

func audioExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mp3"
}
