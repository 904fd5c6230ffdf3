package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"readalong/internal/config"
	"readalong/internal/store"
)

func newBooksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List books in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				books, err := st.ListBooks(cmd.Context())
				if err != nil {
					return err
				}
				if len(books) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No books yet; run `readalong ingest` first")
					return nil
				}

				rows := make([][]string, 0, len(books))
				for _, book := range books {
					articles, err := st.ListArticles(cmd.Context(), book.ID)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						strconv.FormatInt(book.ID, 10),
						book.Title,
						strconv.Itoa(len(articles)),
					})
				}
				tableText := renderTable(
					[]string{"ID", "Title", "Articles"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), tableText)
				return nil
			})
		},
	}
}

func newArticlesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "articles <book-id>",
		Short: "List a book's articles and their alignment state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || bookID < 1 {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				book, err := st.GetBook(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				if book == nil {
					return fmt.Errorf("book %d does not exist", bookID)
				}

				articles, err := st.ListArticles(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				if len(articles) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Book %q has no articles\n", book.Title)
					return nil
				}

				rows := make([][]string, 0, len(articles))
				for _, article := range articles {
					count, err := st.CountSentences(cmd.Context(), article.ID)
					if err != nil {
						return err
					}
					parts := "-"
					if article.Split() {
						parts = strconv.Itoa(*article.NumParts)
					}
					rows = append(rows, []string{
						strconv.FormatInt(article.ID, 10),
						article.Title,
						strconv.Itoa(count),
						yesNo(article.AudioPath != ""),
						yesNo(article.SubtitlePath != ""),
						parts,
					})
				}
				tableText := renderTable(
					[]string{"ID", "Title", "Sentences", "Audio", "Subtitle", "Parts"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), tableText)
				return nil
			})
		},
	}
}
