package align

import (
	"context"
	"errors"
	"fmt"
	"os"

	"readalong/internal/checksum"
	"readalong/internal/logging"
	"readalong/internal/segment"
	"readalong/internal/services"
	"readalong/internal/store"
	"readalong/internal/subtitle"
)

// finish runs the shared tail of both strategies: render the bilingual
// subtitle, then split the audio when it exceeds the byte budget.
func (o *Orchestrator) finish(ctx context.Context, article *store.Article, sentences []*store.Sentence, spans []subtitle.Span, result *Result) error {
	pairs := make([]subtitle.TextPair, 0, len(sentences))
	for _, sentence := range sentences {
		pairs = append(pairs, subtitle.TextPair{Source: sentence.SourceText, Target: sentence.TargetText})
	}

	subtitlePath := o.subtitlePath(article.ID)
	cues, err := subtitle.WriteFile(subtitlePath, pairs, spans)
	if err != nil {
		if errors.Is(err, subtitle.ErrNoCues) {
			return services.Wrap(services.ErrValidation, "align", "subtitle", "nothing to render", err)
		}
		return services.Wrap(services.ErrTransient, "align", "subtitle", "writing subtitle", err)
	}
	if err := o.store.SetArticleSubtitle(ctx, article.ID, subtitlePath); err != nil {
		return services.Wrap(services.ErrTransient, "align", "subtitle", "recording subtitle path", err)
	}
	result.SubtitlePath = subtitlePath
	result.SubtitleCues = cues

	return o.maybeSegment(ctx, article, result)
}

// maybeSegment splits audio exceeding the byte budget. Audio at or under the
// budget leaves part metadata cleared, which prepare already guaranteed.
func (o *Orchestrator) maybeSegment(ctx context.Context, article *store.Article, result *Result) error {
	info, err := os.Stat(result.AudioPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "segment", "inspect", "audio is unreadable", err)
	}
	totalBytes := info.Size()
	maxPartBytes := o.cfg.MaxPartBytes()
	if totalBytes <= maxPartBytes {
		o.logger.Info("audio under part budget, no split",
			logging.Int64(logging.FieldArticle, article.ID),
			logging.Int64("bytes", totalBytes))
		return nil
	}

	probed, err := o.probe(ctx, o.cfg.Tools.FFprobe, result.AudioPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "segment", "inspect", "probing audio duration", err)
	}

	// Reload so the plan sees the timestamps just written.
	fresh, err := o.store.SentencesForArticle(ctx, article.ID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "segment", "plan", "reloading sentences", err)
	}
	planSentences := make([]segment.Sentence, 0, len(fresh))
	for _, sentence := range fresh {
		if sentence.StartMS == nil || sentence.EndMS == nil {
			continue
		}
		planSentences = append(planSentences, segment.Sentence{
			ID:      sentence.ID,
			StartMS: *sentence.StartMS,
			EndMS:   *sentence.EndMS,
		})
	}

	plan, err := segment.BuildPlan(planSentences, totalBytes, probed.DurationMillis(), maxPartBytes, int64(o.cfg.Alignment.MinSentenceMS))
	if err != nil {
		if errors.Is(err, segment.ErrZeroDuration) {
			return services.Wrap(services.ErrExternalTool, "segment", "plan", "audio duration unavailable", err)
		}
		return services.Wrap(services.ErrValidation, "segment", "plan", "building split plan", err)
	}
	if !plan.Split {
		return nil
	}

	partsDir := o.partsDir(article.ID)
	segResult, err := segment.Execute(ctx, o.media, result.AudioPath, partsDir, plan, o.cfg.Segmenter.ExtractWorkers)
	if err != nil {
		return services.Wrap(services.ErrTransient, "segment", "extract", "executing split plan", err)
	}

	for _, failure := range segResult.Failures {
		o.logger.Warn("part extraction failed",
			logging.Int64(logging.FieldArticle, article.ID),
			logging.Int("plan_part", failure.PlanIndex),
			logging.Error(failure.Err))
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("part %d extraction failed: %v", failure.PlanIndex, failure.Err))
	}
	result.Warnings = append(result.Warnings, segResult.Warnings...)

	if segResult.NumParts == 0 {
		return services.Wrap(services.ErrExternalTool, "segment", "extract", "every part extraction failed", nil)
	}

	if err := checksum.Validate(segResult.Checksums, segResult.NumParts); err != nil {
		// An unverifiable split is reported and rolled back rather than
		// stored half-true.
		result.Warnings = append(result.Warnings, fmt.Sprintf("split not recorded: %v", err))
		if clearErr := o.store.ClearPartsInfo(ctx, article.ID); clearErr != nil {
			return services.Wrap(services.ErrTransient, "segment", "record", "clearing invalid split", clearErr)
		}
		return nil
	}

	assignments := make([]store.PartAssignment, 0, len(segResult.Assignments))
	for _, assignment := range segResult.Assignments {
		assignments = append(assignments, store.PartAssignment{
			SentenceID:  assignment.SentenceID,
			PartIndex:   assignment.PartIndex,
			PartStartMS: assignment.PartStartMS,
			PartEndMS:   assignment.PartEndMS,
		})
	}
	if err := o.store.ApplyPartAssignments(ctx, assignments); err != nil {
		return services.Wrap(services.ErrTransient, "segment", "record", "persisting part assignments", err)
	}
	if err := o.store.SetPartsInfo(ctx, article.ID, partsDir, segResult.NumParts, segResult.Checksums); err != nil {
		return services.Wrap(services.ErrTransient, "segment", "record", "persisting part metadata", err)
	}

	result.NumParts = segResult.NumParts
	o.logger.Info("audio split into parts",
		logging.Int64(logging.FieldArticle, article.ID),
		logging.Int("parts", segResult.NumParts),
		logging.Bool("degraded", segResult.Degraded()))
	return nil
}
