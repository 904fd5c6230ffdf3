package align

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"readalong/internal/logging"
	"readalong/internal/services"
	"readalong/internal/store"
	"readalong/internal/subtitle"
)

// AlignForced derives timestamps by running the forced aligner against the
// article's existing audio. The article must already have a normalized audio
// asset recorded.
func (o *Orchestrator) AlignForced(ctx context.Context, articleID int64) (Result, error) {
	article, sentences, err := o.prepare(ctx, articleID)
	if err != nil {
		return Result{}, err
	}
	if article.AudioPath == "" {
		return Result{}, services.Wrap(services.ErrValidation, "align", "forced", "article has no audio asset", nil)
	}
	if _, err := os.Stat(article.AudioPath); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "align", "forced", "article audio is unreadable", err)
	}

	workDir, cleanup, err := o.workDir(fmt.Sprintf("align-%d-", articleID))
	if err != nil {
		return Result{}, err
	}
	defer cleanup()

	// One source-language line per sentence, in canonical order.
	var lines []string
	for _, sentence := range sentences {
		lines = append(lines, sentence.SourceText)
	}
	textPath := filepath.Join(workDir, "sentences.txt")
	if err := os.WriteFile(textPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "align", "forced", "writing sentence side-file", err)
	}

	draftPath := filepath.Join(workDir, "aligned.srt")
	if err := o.aligner.Align(ctx, article.AudioPath, textPath, draftPath); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "align", "forced", "forced aligner failed", err)
	}

	spans, err := subtitle.ParseRanges(draftPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "align", "forced", "aligner output unreadable", err)
	}
	if len(spans) == 0 {
		return Result{}, services.Wrap(services.ErrExternalTool, "align", "forced", "aligner produced no cues", nil)
	}

	result := Result{SentenceCount: len(sentences), AudioPath: article.AudioPath}
	count := len(sentences)
	if len(spans) != count {
		o.logger.Warn("sentence and timestamp counts differ",
			logging.Int64(logging.FieldArticle, articleID),
			logging.Int("sentences", len(sentences)),
			logging.Int("timestamps", len(spans)))
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("aligner produced %d timestamps for %d sentences", len(spans), len(sentences)))
		if len(spans) < count {
			count = len(spans)
		}
	}
	result.TimestampCount = count
	result.Complete = count == len(sentences) && len(spans) == len(sentences)

	segments := make([]store.TimedSegment, 0, count)
	for i := 0; i < count; i++ {
		segments = append(segments, store.TimedSegment{
			SentenceID: sentences[i].ID,
			StartMS:    spans[i].StartMS,
			EndMS:      spans[i].EndMS,
		})
	}
	if err := o.store.ApplyTimestamps(ctx, segments); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "align", "forced", "persisting timestamps", err)
	}

	o.logger.Info("forced alignment complete",
		logging.Int64(logging.FieldArticle, articleID),
		logging.Int("timestamps", count),
		logging.Bool("complete", result.Complete))

	if err := o.finish(ctx, article, sentences[:count], spans[:count], &result); err != nil {
		return Result{}, err
	}
	return result, nil
}
