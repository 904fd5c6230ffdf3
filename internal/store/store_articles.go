package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"readalong/internal/checksum"
)

// CreateArticle inserts a new article under a book and returns it.
func (s *Store) CreateArticle(ctx context.Context, bookID int64, title string) (*Article, error) {
	if title == "" {
		return nil, errors.New("article title is required")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO articles (book_id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		bookID,
		title,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetArticle(ctx, id)
}

// GetArticle fetches an article by identifier. Returns nil when not found.
func (s *Store) GetArticle(ctx context.Context, id int64) (*Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// ListArticles returns a book's articles ordered by creation time.
func (s *Store) ListArticles(ctx context.Context, bookID int64) ([]*Article, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE book_id = ? ORDER BY created_at, id`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// SetArticleAudio records the article's combined audio path.
func (s *Store) SetArticleAudio(ctx context.Context, id int64, audioPath string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE articles SET audio_path = ?, updated_at = ? WHERE id = ?`,
		nullableString(audioPath),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("set article audio: %w", err)
	}
	return nil
}

// SetArticleSubtitle records the article's rendered subtitle path.
func (s *Store) SetArticleSubtitle(ctx context.Context, id int64, subtitlePath string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE articles SET subtitle_path = ?, updated_at = ? WHERE id = ?`,
		nullableString(subtitlePath),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("set article subtitle: %w", err)
	}
	return nil
}

// SetPartsInfo records the article's split result. The checksum string must
// hold exactly numParts digests.
func (s *Store) SetPartsInfo(ctx context.Context, id int64, partsDir string, numParts int, checksums string) error {
	if numParts <= 0 {
		return errors.New("num parts must be positive")
	}
	if partsDir == "" {
		return errors.New("parts dir is required")
	}
	if err := checksum.Validate(checksums, numParts); err != nil {
		return err
	}
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE articles SET parts_dir = ?, num_parts = ?, part_checksums = ?, updated_at = ? WHERE id = ?`,
		partsDir,
		numParts,
		checksums,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("set parts info: %w", err)
	}
	return nil
}

// ClearPartsInfo removes the article's split metadata.
func (s *Store) ClearPartsInfo(ctx context.Context, id int64) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE articles SET parts_dir = NULL, num_parts = NULL, part_checksums = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("clear parts info: %w", err)
	}
	return nil
}
