// Package tts wraps the speech synthesizer CLI used on the synthesized-speech
// alignment path, plus small WAV helpers for measuring and fabricating clips.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"readalong/internal/services"
)

var commandContext = exec.CommandContext

// emptyTextSilenceMS is the length of the placeholder clip synthesized for
// empty or whitespace-only input.
const emptyTextSilenceMS = 50

// Client defines per-sentence speech synthesis behaviour.
type Client interface {
	Synthesize(ctx context.Context, text, voice, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default synthesizer binary.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// WithSampleRate overrides the sample rate used for fabricated silent clips.
func WithSampleRate(rate int) Option {
	return func(c *CLI) {
		if rate > 0 {
			c.sampleRate = rate
		}
	}
}

// CLI wraps a command-line speech synthesizer that reads text on stdin and
// writes a WAV file.
type CLI struct {
	binary     string
	sampleRate int
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "kokoro-tts", sampleRate: 24000}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// SampleRate returns the configured sample rate.
func (c *CLI) SampleRate() int {
	return c.sampleRate
}

// Synthesize renders one sentence of speech to outputPath. Empty or
// whitespace-only text produces a minimal silent clip without invoking the
// synthesizer.
func (c *CLI) Synthesize(ctx context.Context, text, voice, outputPath string) error {
	if outputPath == "" {
		return errors.New("output path required")
	}
	if strings.TrimSpace(text) == "" {
		return WriteSilence(outputPath, emptyTextSilenceMS, c.sampleRate)
	}

	args := []string{"--voice", voice, "--output", outputPath, "-"}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(text)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return services.Wrap(services.ErrConfiguration, "tts", "synthesize", "synthesizer binary not found", err)
		}
		return fmt.Errorf("synthesize failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	if _, statErr := os.Stat(outputPath); statErr != nil {
		return fmt.Errorf("synthesizer produced no output: %w", statErr)
	}
	return nil
}

var _ Client = (*CLI)(nil)
