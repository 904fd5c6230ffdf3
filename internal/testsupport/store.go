package testsupport

import (
	"context"
	"testing"

	"readalong/internal/config"
	"readalong/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewArticle creates a book and an article under it for tests.
func NewArticle(t testing.TB, st *store.Store, bookTitle, articleTitle string) *store.Article {
	t.Helper()

	ctx := context.Background()
	book, err := st.CreateBook(ctx, bookTitle)
	if err != nil {
		t.Fatalf("store.CreateBook: %v", err)
	}
	article, err := st.CreateArticle(ctx, book.ID, articleTitle)
	if err != nil {
		t.Fatalf("store.CreateArticle: %v", err)
	}
	return article
}

// SeedSentences inserts numbered sentences into an article and returns them
// in canonical order.
func SeedSentences(t testing.TB, st *store.Store, articleID int64, pairs [][2]string) []*store.Sentence {
	t.Helper()

	ctx := context.Background()
	rows := make([]store.NewSentence, 0, len(pairs))
	for i, pair := range pairs {
		rows = append(rows, store.NewSentence{
			ParagraphIndex: 0,
			SentenceIndex:  i,
			SourceText:     pair[0],
			TargetText:     pair[1],
		})
	}
	if err := st.InsertSentences(ctx, articleID, rows); err != nil {
		t.Fatalf("store.InsertSentences: %v", err)
	}
	sentences, err := st.SentencesForArticle(ctx, articleID)
	if err != nil {
		t.Fatalf("store.SentencesForArticle: %v", err)
	}
	return sentences
}
