package align

import (
	"context"
	"fmt"
	"os"

	"readalong/internal/services"
)

// Resegment re-runs only the splitting stage against an article's existing
// audio and timestamps. Prior part metadata is cleared first so a changed
// part budget takes effect without a full realignment.
func (o *Orchestrator) Resegment(ctx context.Context, articleID int64) (Result, error) {
	article, err := o.store.GetArticle(ctx, articleID)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "segment", "load article", "reading article record", err)
	}
	if article == nil {
		return Result{}, services.Wrap(services.ErrNotFound, "segment", "load article", fmt.Sprintf("article %d does not exist", articleID), nil)
	}
	if article.AudioPath == "" {
		return Result{}, services.Wrap(services.ErrValidation, "segment", "load article", "article has no audio; run align first", nil)
	}
	if _, err := os.Stat(article.AudioPath); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "segment", "load article", "article audio is unreadable", err)
	}

	sentences, err := o.store.SentencesForArticle(ctx, articleID)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "segment", "load sentences", "reading sentence records", err)
	}
	timed := 0
	for _, sentence := range sentences {
		if sentence.StartMS != nil && sentence.EndMS != nil {
			timed++
		}
	}
	if timed == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "segment", "load sentences", "article has no timestamps; run align first", nil)
	}

	if err := o.store.ClearPartAssignments(ctx, articleID); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "segment", "reset", "clearing part assignments", err)
	}
	if err := o.store.ClearPartsInfo(ctx, articleID); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "segment", "reset", "clearing part metadata", err)
	}

	result := Result{
		SentenceCount:  len(sentences),
		TimestampCount: timed,
		Complete:       timed == len(sentences),
		AudioPath:      article.AudioPath,
		SubtitlePath:   article.SubtitlePath,
	}
	if err := o.maybeSegment(ctx, article, &result); err != nil {
		return result, err
	}
	return result, nil
}
