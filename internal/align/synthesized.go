package align

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"readalong/internal/logging"
	"readalong/internal/services"
	"readalong/internal/services/tts"
	"readalong/internal/store"
	"readalong/internal/subtitle"
)

// AlignSynthesized derives timestamps by synthesizing each sentence in order
// and measuring the rendered clips. Sentences are placed back to back with a
// fixed silence gap between them: a sentence's span covers only its own clip,
// while the gap advances the cursor for the next sentence. The concatenated
// clips become the article's combined audio.
func (o *Orchestrator) AlignSynthesized(ctx context.Context, articleID int64) (Result, error) {
	article, sentences, err := o.prepare(ctx, articleID)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(o.cfg.Alignment.VoiceSource) == "" || strings.TrimSpace(o.cfg.Alignment.VoiceTarget) == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "align", "synthesize", "synthesis voices are not configured", nil)
	}

	workDir, cleanup, err := o.workDir(fmt.Sprintf("synth-%d-", articleID))
	if err != nil {
		return Result{}, err
	}
	defer cleanup()

	gapMS := int64(o.cfg.Alignment.SilenceGapMS)
	sampleRate := o.cfg.Alignment.SampleRate

	gapPath := filepath.Join(workDir, "gap.wav")
	if err := tts.WriteSilence(gapPath, gapMS, sampleRate); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "align", "synthesize", "writing silence gap clip", err)
	}

	result := Result{SentenceCount: len(sentences)}
	segments := make([]store.TimedSegment, 0, len(sentences))
	spans := make([]subtitle.Span, 0, len(sentences))
	clips := make([]string, 0, len(sentences)*2)

	var cursor int64
	for i, sentence := range sentences {
		clipPath := filepath.Join(workDir, fmt.Sprintf("clip_%d.wav", i))
		if synthErr := o.synth.Synthesize(ctx, sentence.SourceText, o.cfg.Alignment.VoiceSource, clipPath); synthErr != nil {
			// A misconfigured synthesizer fails every sentence the same way;
			// abort rather than render an all-silence article.
			if services.Fatal(synthErr) {
				return Result{}, fmt.Errorf("align: synthesize: sentence %d: %w", i, synthErr)
			}
			// One bad sentence must not sink the article: substitute a
			// gap-length silent placeholder and keep going.
			o.logger.Warn("sentence synthesis failed, using silent placeholder",
				logging.Int64(logging.FieldArticle, articleID),
				logging.Int("sentence", i),
				logging.Error(synthErr))
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("sentence %d synthesis failed: %v", i, synthErr))
			if err := tts.WriteSilence(clipPath, gapMS, sampleRate); err != nil {
				return Result{}, services.Wrap(services.ErrTransient, "align", "synthesize", "writing placeholder clip", err)
			}
		}

		durationMS, err := tts.DurationMillis(clipPath)
		if err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "align", "synthesize", fmt.Sprintf("measuring clip %d", i), err)
		}

		start := cursor
		end := start + durationMS
		segments = append(segments, store.TimedSegment{SentenceID: sentence.ID, StartMS: start, EndMS: end})
		spans = append(spans, subtitle.Span{StartMS: start, EndMS: end})
		cursor = end + gapMS

		clips = append(clips, clipPath, gapPath)
	}

	audioPath := o.audioPath(articleID)
	if err := o.media.Concat(ctx, clips, audioPath); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "align", "synthesize", "concatenating clips", err)
	}
	if err := o.store.SetArticleAudio(ctx, articleID, audioPath); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "align", "synthesize", "recording audio path", err)
	}
	result.AudioPath = audioPath

	if err := o.store.ApplyTimestamps(ctx, segments); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "align", "synthesize", "persisting timestamps", err)
	}
	result.TimestampCount = len(segments)
	result.Complete = true

	o.logger.Info("synthesized alignment complete",
		logging.Int64(logging.FieldArticle, articleID),
		logging.Int("timestamps", len(segments)),
		logging.Int64("total_ms", cursor))

	if err := o.finish(ctx, article, sentences, spans, &result); err != nil {
		return Result{}, err
	}
	return result, nil
}
