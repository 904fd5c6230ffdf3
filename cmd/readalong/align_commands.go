package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"readalong/internal/align"
	"readalong/internal/config"
	"readalong/internal/pipeline"
	"readalong/internal/store"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	alignCmd := &cobra.Command{
		Use:   "align",
		Short: "Produce per-sentence timestamps for an article",
	}

	alignCmd.AddCommand(newAlignForcedCommand(ctx))
	alignCmd.AddCommand(newAlignSynthCommand(ctx))

	return alignCmd
}

func newAlignForcedCommand(ctx *commandContext) *cobra.Command {
	var audioPath string

	cmd := &cobra.Command{
		Use:   "forced <article-id>",
		Short: "Align sentences against recorded audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			articleID, err := parseArticleID(args[0])
			if err != nil {
				return err
			}
			audio := strings.TrimSpace(audioPath)
			if audio != "" {
				audio, err = config.ExpandPath(audio)
				if err != nil {
					return err
				}
			}

			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline, st *store.Store) error {
				result, err := p.AlignForced(cmd.Context(), articleID, audio)
				if err != nil {
					return err
				}
				printAlignResult(cmd, result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "Audio file to normalize and record before aligning")
	return cmd
}

func newAlignSynthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "synth <article-id>",
		Short: "Synthesize speech per sentence and derive timing from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			articleID, err := parseArticleID(args[0])
			if err != nil {
				return err
			}
			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline, st *store.Store) error {
				result, err := p.AlignSynthesized(cmd.Context(), articleID)
				if err != nil {
					return err
				}
				printAlignResult(cmd, result)
				return nil
			})
		},
	}
}

func newSplitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "split <article-id>",
		Short: "Re-run audio splitting for an aligned article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			articleID, err := parseArticleID(args[0])
			if err != nil {
				return err
			}
			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline, st *store.Store) error {
				result, err := p.Resegment(cmd.Context(), articleID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.NumParts == 0 {
					fmt.Fprintln(out, "Audio fits within the part budget; no split")
				} else {
					fmt.Fprintf(out, "Audio split into %d parts\n", result.NumParts)
				}
				printWarnings(cmd, result.Warnings)
				return nil
			})
		},
	}
}

func printAlignResult(cmd *cobra.Command, result align.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Aligned %d of %d sentences (complete: %s)\n",
		result.TimestampCount, result.SentenceCount, yesNo(result.Complete))
	fmt.Fprintf(out, "Subtitle: %s (%d cues)\n", result.SubtitlePath, result.SubtitleCues)
	if result.NumParts > 0 {
		fmt.Fprintf(out, "Audio split into %d parts\n", result.NumParts)
	}
	printWarnings(cmd, result.Warnings)
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}
}

func parseArticleID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid article id %q", arg)
	}
	return id, nil
}
