// Package aeneas wraps the aeneas forced-alignment tool, invoked as a Python
// module against an audio file and a plain-text sentence file.
package aeneas

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

const defaultTaskConfig = "task_language=eng|is_text_type=plain|os_task_file_format=srt"

// Client defines forced-alignment behaviour.
type Client interface {
	Align(ctx context.Context, audioPath, textPath, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithPython overrides the default Python interpreter.
func WithPython(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.python = binary
		}
	}
}

// WithModule overrides the aligner module name.
func WithModule(module string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(module) != "" {
			c.module = module
		}
	}
}

// WithTaskConfig overrides the task configuration string passed to the tool.
func WithTaskConfig(taskConfig string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(taskConfig) != "" {
			c.taskConfig = taskConfig
		}
	}
}

// CLI wraps the aeneas command-line task runner.
type CLI struct {
	python     string
	module     string
	taskConfig string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		python:     "python3",
		module:     "aeneas.tools.execute_task",
		taskConfig: defaultTaskConfig,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Align runs the forced aligner and leaves an SRT file at outputPath. A
// non-zero exit is returned with the tool's combined output attached.
func (c *CLI) Align(ctx context.Context, audioPath, textPath, outputPath string) error {
	if audioPath == "" {
		return errors.New("audio path required")
	}
	if textPath == "" {
		return errors.New("text path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	args := []string{"-m", c.module, audioPath, textPath, c.taskConfig, outputPath}
	cmd := commandContext(ctx, c.python, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("forced alignment failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

var _ Client = (*CLI)(nil)
