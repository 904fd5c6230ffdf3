// Package pipeline coordinates the end-to-end article workflow: transcript
// ingest, alignment (forced or synthesized), and book export. Each alignment
// run holds a per-article file lock so two runs never race on the same
// article's audio and timing state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"readalong/internal/align"
	"readalong/internal/config"
	"readalong/internal/export"
	"readalong/internal/fileutil"
	"readalong/internal/logging"
	"readalong/internal/media/ffmpeg"
	"readalong/internal/services"
	"readalong/internal/store"
	"readalong/internal/textparse"
)

// Normalizer transcodes arbitrary input audio to the pipeline codec.
// *ffmpeg.Runner satisfies it.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath, outputPath string) error
}

// Pipeline wires the store, orchestrator, and packager behind per-article
// locking.
type Pipeline struct {
	cfg          *config.Config
	store        *store.Store
	logger       *slog.Logger
	orchestrator *align.Orchestrator
	normalizer   Normalizer
}

// Option customizes a pipeline, mainly for tests.
type Option func(*Pipeline)

// WithOrchestrator overrides the alignment orchestrator.
func WithOrchestrator(orchestrator *align.Orchestrator) Option {
	return func(p *Pipeline) {
		if orchestrator != nil {
			p.orchestrator = orchestrator
		}
	}
}

// WithNormalizer overrides the audio normalizer.
func WithNormalizer(normalizer Normalizer) Option {
	return func(p *Pipeline) {
		if normalizer != nil {
			p.normalizer = normalizer
		}
	}
}

// New constructs a pipeline. A nil logger is replaced with a no-op logger.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:          cfg,
		store:        st,
		logger:       logging.WithComponent(logger, "pipeline"),
		orchestrator: align.New(st, cfg, logger),
		normalizer:   ffmpeg.New(ffmpeg.WithBinary(cfg.Tools.FFmpeg)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// lockArticle takes the article's processing lock. A held lock fails fast
// rather than queueing behind the other run.
func (p *Pipeline) lockArticle(articleID int64) (func(), error) {
	if err := os.MkdirAll(p.cfg.LockDir(), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "lock", "creating lock directory", err)
	}
	lock := flock.New(filepath.Join(p.cfg.LockDir(), fmt.Sprintf("article_%d.lock", articleID)))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "lock", "acquiring article lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "lock",
			fmt.Sprintf("article %d is already being processed", articleID), nil)
	}
	return func() { _ = lock.Unlock() }, nil
}

// runLogger tags a run with a fresh identifier for log correlation.
func (p *Pipeline) runLogger(articleID int64) *slog.Logger {
	return p.logger.With(
		logging.String(logging.FieldRun, uuid.NewString()),
		logging.Int64(logging.FieldArticle, articleID))
}

// AlignForced normalizes inputAudio (when given), records it as the
// article's combined audio, and runs forced alignment.
func (p *Pipeline) AlignForced(ctx context.Context, articleID int64, inputAudio string) (align.Result, error) {
	unlock, err := p.lockArticle(articleID)
	if err != nil {
		return align.Result{}, err
	}
	defer unlock()

	logger := p.runLogger(articleID)
	if inputAudio != "" {
		if err := p.cfg.EnsureDirectories(); err != nil {
			return align.Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "normalize", "ensuring directories", err)
		}
		normalized := filepath.Join(p.cfg.AudioDir(), fmt.Sprintf("article_%d.mp3", articleID))
		logger.Info("normalizing input audio",
			logging.String("input", inputAudio),
			logging.String("output", normalized))
		if err := p.normalizer.Normalize(ctx, inputAudio, normalized); err != nil {
			return align.Result{}, services.Wrap(services.ErrExternalTool, "pipeline", "normalize", "transcoding input audio", err)
		}
		if err := p.store.SetArticleAudio(ctx, articleID, normalized); err != nil {
			return align.Result{}, services.Wrap(services.ErrTransient, "pipeline", "normalize", "recording audio path", err)
		}
	}

	logger.Info("starting forced alignment")
	return p.orchestrator.AlignForced(ctx, articleID)
}

// AlignSynthesized runs the synthesized-speech alignment path.
func (p *Pipeline) AlignSynthesized(ctx context.Context, articleID int64) (align.Result, error) {
	unlock, err := p.lockArticle(articleID)
	if err != nil {
		return align.Result{}, err
	}
	defer unlock()

	p.runLogger(articleID).Info("starting synthesized alignment")
	return p.orchestrator.AlignSynthesized(ctx, articleID)
}

// Resegment re-runs audio splitting for an already aligned article.
func (p *Pipeline) Resegment(ctx context.Context, articleID int64) (align.Result, error) {
	unlock, err := p.lockArticle(articleID)
	if err != nil {
		return align.Result{}, err
	}
	defer unlock()

	p.runLogger(articleID).Info("resegmenting article audio")
	return p.orchestrator.Resegment(ctx, articleID)
}

// IngestArticle parses a bilingual transcript and stores its sentences under
// a new article, creating the book on first use.
func (p *Pipeline) IngestArticle(ctx context.Context, bookTitle, articleTitle, transcriptPath string) (*store.Article, int, error) {
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrValidation, "pipeline", "ingest", "reading transcript", err)
	}
	pairs := textparse.Parse(string(data))
	if len(pairs) == 0 {
		return nil, 0, services.Wrap(services.ErrValidation, "pipeline", "ingest", "transcript contains no sentence pairs", nil)
	}

	book, err := p.store.FindBookByTitle(ctx, bookTitle)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrTransient, "pipeline", "ingest", "looking up book", err)
	}
	if book == nil {
		book, err = p.store.CreateBook(ctx, bookTitle)
		if err != nil {
			return nil, 0, services.Wrap(services.ErrTransient, "pipeline", "ingest", "creating book", err)
		}
	}

	article, err := p.store.CreateArticle(ctx, book.ID, articleTitle)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrTransient, "pipeline", "ingest", "creating article", err)
	}

	rows := make([]store.NewSentence, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, store.NewSentence{
			ParagraphIndex: pair.ParagraphIndex,
			SentenceIndex:  pair.SentenceIndex,
			SourceText:     pair.SourceText,
			TargetText:     pair.TargetText,
		})
	}
	if err := p.store.InsertSentences(ctx, article.ID, rows); err != nil {
		return nil, 0, services.Wrap(services.ErrTransient, "pipeline", "ingest", "storing sentences", err)
	}

	p.logger.Info("article ingested",
		logging.String("book_title", bookTitle),
		logging.String("article_title", articleTitle),
		logging.Int64(logging.FieldArticle, article.ID),
		logging.Int("sentences", len(rows)))
	return article, len(rows), nil
}

// ExportBook packages a book into the export directory and returns the
// result.
func (p *Pipeline) ExportBook(ctx context.Context, bookID int64) (export.Result, error) {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return export.Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "export", "ensuring directories", err)
	}
	book, err := p.store.GetBook(ctx, bookID)
	if err != nil {
		return export.Result{}, services.Wrap(services.ErrTransient, "pipeline", "export", "looking up book", err)
	}
	if book == nil {
		return export.Result{}, services.Wrap(services.ErrNotFound, "pipeline", "export", fmt.Sprintf("book %d does not exist", bookID), nil)
	}

	outputPath := filepath.Join(p.cfg.ExportDir(), fileutil.SafeTitle(book.Title)+".zip")
	packager := export.New(p.store, p.logger)
	return packager.ExportBook(ctx, bookID, p.cfg.Paths.StagingDir, outputPath)
}
