// Package segment splits an article's combined audio into size-bounded parts
// along sentence boundaries. Planning is pure; extraction shells out to
// ffmpeg and checksums each produced part.
package segment

import (
	"errors"
	"fmt"
)

// Sentence is the slice of sentence state the segmenter needs: identity and
// global timestamps.
type Sentence struct {
	ID      int64
	StartMS int64
	EndMS   int64
}

// PartPlan is one planned output part: a contiguous run of whole sentences
// and the global range to cut.
type PartPlan struct {
	Index          int
	Sentences      []Sentence
	StartMS        int64
	EndMS          int64
	EstimatedBytes int64
}

// Plan is the full split decision for one article.
type Plan struct {
	Split bool
	Parts []PartPlan
}

// ErrZeroDuration reports audio whose duration could not be established;
// proportional estimation is impossible without it.
var ErrZeroDuration = errors.New("audio has zero duration")

// BuildPlan decides whether and where to split. Audio at or under the byte
// budget yields a no-split plan. Otherwise sentences are greedily packed into
// parts by their estimated byte footprint, proportional to duration, with at
// least one sentence per part regardless of budget.
func BuildPlan(sentences []Sentence, totalBytes, totalDurationMS, maxPartBytes, minSentenceMS int64) (Plan, error) {
	if maxPartBytes <= 0 {
		return Plan{}, fmt.Errorf("invalid max part bytes %d", maxPartBytes)
	}
	if totalBytes <= maxPartBytes {
		return Plan{Split: false}, nil
	}
	if totalDurationMS <= 0 {
		return Plan{}, ErrZeroDuration
	}
	if len(sentences) == 0 {
		return Plan{}, errors.New("no sentences to segment")
	}
	if minSentenceMS <= 0 {
		minSentenceMS = 1
	}

	estimates := make([]float64, len(sentences))
	for i, sentence := range sentences {
		duration := sentence.EndMS - sentence.StartMS
		if duration <= 0 {
			// Degenerate timing still gets a nominal footprint so the
			// packer keeps moving.
			duration = minSentenceMS
		}
		estimates[i] = float64(duration) / float64(totalDurationMS) * float64(totalBytes)
	}

	var (
		parts       []PartPlan
		current     []Sentence
		accumulated float64
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		parts = append(parts, PartPlan{
			Index:          len(parts),
			Sentences:      current,
			StartMS:        current[0].StartMS,
			EndMS:          current[len(current)-1].EndMS,
			EstimatedBytes: int64(accumulated),
		})
		current = nil
		accumulated = 0
	}

	for i, sentence := range sentences {
		if len(current) > 0 && accumulated+estimates[i] > float64(maxPartBytes) {
			flush()
		}
		current = append(current, sentence)
		accumulated += estimates[i]
	}
	flush()

	return Plan{Split: true, Parts: parts}, nil
}
