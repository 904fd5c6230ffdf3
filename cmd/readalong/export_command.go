package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"readalong/internal/config"
	"readalong/internal/pipeline"
	"readalong/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <book-id>",
		Short: "Package a book's articles, audio, and timing into a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || bookID < 1 {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline, st *store.Store) error {
				result, err := p.ExportBook(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Exported %d articles (%d with audio) to %s\n",
					result.ArticlesTotal, result.ArticlesWithAudio, result.OutputPath)
				for _, title := range result.Skipped {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: article %q exported without audio\n", title)
				}
				return nil
			})
		},
	}
}
