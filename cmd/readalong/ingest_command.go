package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"readalong/internal/config"
	"readalong/internal/fileutil"
	"readalong/internal/pipeline"
	"readalong/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var bookTitle string
	var articleTitle string

	cmd := &cobra.Command{
		Use:   "ingest <transcript-file>",
		Short: "Parse a bilingual transcript into a new article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book := strings.TrimSpace(bookTitle)
			if book == "" {
				return errors.New("--book is required")
			}
			transcript, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			article := strings.TrimSpace(articleTitle)
			if article == "" {
				article = fileutil.DisplayTitle(transcript)
			}

			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline, st *store.Store) error {
				created, count, err := p.IngestArticle(cmd.Context(), book, article, transcript)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ingested article %d (%q) with %d sentence pairs\n",
					created.ID, created.Title, count)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&bookTitle, "book", "b", "", "Book the article belongs to (created on first use)")
	cmd.Flags().StringVarP(&articleTitle, "article", "a", "", "Article title (defaults to the transcript file name)")
	return cmd
}
