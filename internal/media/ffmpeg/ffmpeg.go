// Package ffmpeg wraps the ffmpeg CLI for the audio operations the pipeline
// needs: normalizing input audio to MP3, stream-copying part slices, and
// concatenating synthesized clips.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Option configures the runner.
type Option func(*Runner)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(r *Runner) {
		if strings.TrimSpace(binary) != "" {
			r.binary = binary
		}
	}
}

// Runner invokes ffmpeg.
type Runner struct {
	binary string
}

// New constructs a runner using defaults.
func New(opts ...Option) *Runner {
	runner := &Runner{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

func (r *Runner) run(ctx context.Context, args ...string) error {
	cmd := commandContext(ctx, r.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", r.binary, strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Normalize transcodes arbitrary input audio to MP3 so the rest of the
// pipeline works against a single codec.
func (r *Runner) Normalize(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == "" || outputPath == "" {
		return errors.New("normalize: input and output paths required")
	}
	return r.run(ctx,
		"-y", "-v", "error",
		"-i", inputPath,
		"-codec:a", "libmp3lame", "-q:a", "2",
		outputPath,
	)
}

// ExtractSlice stream-copies the [startMS, endMS] range of the input into its
// own file. No re-encode happens, so cuts land on frame boundaries.
func (r *Runner) ExtractSlice(ctx context.Context, inputPath, outputPath string, startMS, endMS int64) error {
	if inputPath == "" || outputPath == "" {
		return errors.New("extract: input and output paths required")
	}
	if endMS <= startMS {
		return fmt.Errorf("extract: empty slice [%d, %d]", startMS, endMS)
	}
	return r.run(ctx,
		"-y", "-v", "error",
		"-i", inputPath,
		"-ss", formatSeconds(startMS),
		"-to", formatSeconds(endMS),
		"-c", "copy",
		outputPath,
	)
}

// Concat joins the clips in order into one MP3 via the concat demuxer. The
// clip list file is staged next to the output and removed afterward.
func (r *Runner) Concat(ctx context.Context, clipPaths []string, outputPath string) error {
	if len(clipPaths) == 0 {
		return errors.New("concat: no clips")
	}
	if outputPath == "" {
		return errors.New("concat: output path required")
	}

	listPath := filepath.Join(filepath.Dir(outputPath), ".concat-"+filepath.Base(outputPath)+".txt")
	var list strings.Builder
	for _, clip := range clipPaths {
		escaped := strings.ReplaceAll(clip, "'", `'\''`)
		fmt.Fprintf(&list, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("concat: write clip list: %w", err)
	}
	defer os.Remove(listPath)

	return r.run(ctx,
		"-y", "-v", "error",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-codec:a", "libmp3lame", "-q:a", "2",
		outputPath,
	)
}

func formatSeconds(ms int64) string {
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}
