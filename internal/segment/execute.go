package segment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"readalong/internal/checksum"
)

// Extractor cuts one [startMS, endMS] slice of the input into its own file.
// *ffmpeg.Runner satisfies it.
type Extractor interface {
	ExtractSlice(ctx context.Context, inputPath, outputPath string, startMS, endMS int64) error
}

// Assignment maps one sentence into its final part with part-relative
// offsets.
type Assignment struct {
	SentenceID  int64
	PartIndex   int
	PartStartMS int64
	PartEndMS   int64
}

// Failure records a planned part that produced no output file.
type Failure struct {
	PlanIndex int
	Err       error
}

// Result is the outcome of executing a split plan. NumParts counts only
// successfully extracted parts; failed parts are listed separately and their
// sentences receive no assignment.
type Result struct {
	NumParts    int
	PartPaths   []string
	Checksums   string
	Assignments []Assignment
	Failures    []Failure
	Warnings    []string
}

// Degraded reports whether any planned part failed to extract.
func (r Result) Degraded() bool {
	return len(r.Failures) > 0
}

// Execute cuts every planned part into partsDir, checksums the output files,
// and computes part-relative sentence offsets. Parts are numbered by
// successful extraction order, so a failed part leaves no gap in filenames or
// checksums. workers bounds concurrent extractions; values below 2 run
// sequentially.
func Execute(ctx context.Context, extractor Extractor, audioPath, partsDir string, plan Plan, workers int) (Result, error) {
	if !plan.Split || len(plan.Parts) == 0 {
		return Result{}, nil
	}
	if err := os.MkdirAll(partsDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create parts dir: %w", err)
	}

	// Extraction goes to plan-indexed staging names first; final numbering
	// is only known once every attempt has finished.
	staged := make([]string, len(plan.Parts))
	errs := make([]error, len(plan.Parts))
	for i, part := range plan.Parts {
		staged[i] = filepath.Join(partsDir, fmt.Sprintf(".staged_part_%d.mp3", part.Index))
	}

	extract := func(i int) {
		part := plan.Parts[i]
		if part.EndMS <= part.StartMS {
			errs[i] = fmt.Errorf("empty slice [%d, %d]", part.StartMS, part.EndMS)
			return
		}
		errs[i] = extractor.ExtractSlice(ctx, audioPath, staged[i], part.StartMS, part.EndMS)
	}

	if workers > 1 {
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for i := range plan.Parts {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				extract(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range plan.Parts {
			extract(i)
		}
	}

	var result Result
	var digests []string
	for i, part := range plan.Parts {
		if errs[i] != nil {
			_ = os.Remove(staged[i])
			result.Failures = append(result.Failures, Failure{PlanIndex: part.Index, Err: errs[i]})
			continue
		}

		finalIndex := result.NumParts
		finalPath := filepath.Join(partsDir, fmt.Sprintf("part_%d.mp3", finalIndex))
		if err := os.Rename(staged[i], finalPath); err != nil {
			result.Failures = append(result.Failures, Failure{PlanIndex: part.Index, Err: fmt.Errorf("finalize part: %w", err)})
			continue
		}

		digest, err := checksum.File(finalPath)
		if err != nil {
			// A part we cannot read back still counts; the gap in the
			// checksum string is recorded rather than hidden.
			digest = ""
			result.Warnings = append(result.Warnings, fmt.Sprintf("part %d: checksum unavailable: %v", finalIndex, err))
		}
		digests = append(digests, digest)
		result.PartPaths = append(result.PartPaths, finalPath)

		for _, sentence := range part.Sentences {
			relStart := sentence.StartMS - part.StartMS
			relEnd := sentence.EndMS - part.StartMS
			if relStart < 0 || relEnd <= relStart {
				result.Warnings = append(result.Warnings, fmt.Sprintf("sentence %d: degenerate range in part %d, skipped", sentence.ID, finalIndex))
				continue
			}
			result.Assignments = append(result.Assignments, Assignment{
				SentenceID:  sentence.ID,
				PartIndex:   finalIndex,
				PartStartMS: relStart,
				PartEndMS:   relEnd,
			})
		}
		result.NumParts++
	}

	result.Checksums = checksum.Join(digests)
	return result, nil
}
