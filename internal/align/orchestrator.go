// Package align produces per-sentence timestamps for an article, either by
// forced alignment against existing audio or by synthesizing speech and
// measuring it, then renders the bilingual subtitle and splits oversized
// audio into parts.
package align

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"readalong/internal/config"
	"readalong/internal/logging"
	"readalong/internal/media/ffmpeg"
	"readalong/internal/media/ffprobe"
	"readalong/internal/services"
	"readalong/internal/services/aeneas"
	"readalong/internal/services/tts"
	"readalong/internal/store"
)

// Media is the slice of ffmpeg behaviour the orchestrator needs.
// *ffmpeg.Runner satisfies it.
type Media interface {
	Concat(ctx context.Context, clipPaths []string, outputPath string) error
	ExtractSlice(ctx context.Context, inputPath, outputPath string, startMS, endMS int64) error
}

// ProbeFunc inspects an audio file. ffprobe.Inspect satisfies it.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Result reports one alignment run. Complete is false when the aligner
// produced fewer cues than there are sentences; the run still succeeds over
// the common minimum.
type Result struct {
	SentenceCount  int
	TimestampCount int
	Complete       bool
	AudioPath      string
	SubtitlePath   string
	SubtitleCues   int
	NumParts       int
	Warnings       []string
}

// Orchestrator drives both alignment strategies for one configured pipeline.
type Orchestrator struct {
	store   *store.Store
	cfg     *config.Config
	logger  *slog.Logger
	aligner aeneas.Client
	synth   tts.Client
	media   Media
	probe   ProbeFunc
}

// Option customizes an orchestrator, mainly for tests.
type Option func(*Orchestrator)

// WithAligner overrides the forced-alignment client.
func WithAligner(client aeneas.Client) Option {
	return func(o *Orchestrator) {
		if client != nil {
			o.aligner = client
		}
	}
}

// WithSynthesizer overrides the speech synthesis client.
func WithSynthesizer(client tts.Client) Option {
	return func(o *Orchestrator) {
		if client != nil {
			o.synth = client
		}
	}
}

// WithMedia overrides the ffmpeg runner.
func WithMedia(media Media) Option {
	return func(o *Orchestrator) {
		if media != nil {
			o.media = media
		}
	}
}

// WithProbe overrides the audio inspector.
func WithProbe(probe ProbeFunc) Option {
	return func(o *Orchestrator) {
		if probe != nil {
			o.probe = probe
		}
	}
}

// New constructs an orchestrator wired to the configured external tools. A
// nil logger is replaced with a no-op logger.
func New(st *store.Store, cfg *config.Config, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		store:  st,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "align"),
		aligner: aeneas.NewCLI(
			aeneas.WithPython(cfg.Tools.AlignerPython),
			aeneas.WithModule(cfg.Tools.AlignerModule),
		),
		synth: tts.NewCLI(
			tts.WithBinary(cfg.Tools.TTS),
			tts.WithSampleRate(cfg.Alignment.SampleRate),
		),
		media: ffmpeg.New(ffmpeg.WithBinary(cfg.Tools.FFmpeg)),
		probe: ffprobe.Inspect,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// prepare resets prior timing state and loads the article with its ordered
// sentences. Articles with no sentences cannot be aligned.
func (o *Orchestrator) prepare(ctx context.Context, articleID int64) (*store.Article, []*store.Sentence, error) {
	article, err := o.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrTransient, "align", "load article", "reading article record", err)
	}
	if article == nil {
		return nil, nil, services.Wrap(services.ErrNotFound, "align", "load article", fmt.Sprintf("article %d does not exist", articleID), nil)
	}

	if err := o.store.ResetAlignment(ctx, articleID); err != nil {
		return nil, nil, services.Wrap(services.ErrTransient, "align", "reset", "clearing prior timing state", err)
	}

	sentences, err := o.store.SentencesForArticle(ctx, articleID)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrTransient, "align", "load sentences", "reading sentence records", err)
	}
	if len(sentences) == 0 {
		return nil, nil, services.Wrap(services.ErrValidation, "align", "load sentences", "article has no sentences", store.ErrNoSentences)
	}
	return article, sentences, nil
}

// workDir creates the run's private temp directory under the staging root.
func (o *Orchestrator) workDir(prefix string) (string, func(), error) {
	if err := o.cfg.EnsureDirectories(); err != nil {
		return "", nil, services.Wrap(services.ErrConfiguration, "align", "staging", "ensuring directories", err)
	}
	dir, err := os.MkdirTemp(o.cfg.Paths.StagingDir, prefix)
	if err != nil {
		return "", nil, services.Wrap(services.ErrConfiguration, "align", "staging", "creating work directory", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func (o *Orchestrator) subtitlePath(articleID int64) string {
	return filepath.Join(o.cfg.SubtitleDir(), fmt.Sprintf("article_%d.srt", articleID))
}

func (o *Orchestrator) audioPath(articleID int64) string {
	return filepath.Join(o.cfg.AudioDir(), fmt.Sprintf("article_%d.mp3", articleID))
}

func (o *Orchestrator) partsDir(articleID int64) string {
	return filepath.Join(o.cfg.PartsDir(), fmt.Sprintf("article_%d", articleID))
}
