package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// InsertSentences bulk-inserts an article's sentences in one transaction.
func (s *Store) InsertSentences(ctx context.Context, articleID int64, sentences []NewSentence) error {
	if len(sentences) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sentences (article_id, paragraph_index, sentence_index, source_text, target_text)
         VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sentence := range sentences {
		if _, err := stmt.ExecContext(ctx,
			articleID,
			sentence.ParagraphIndex,
			sentence.SentenceIndex,
			sentence.SourceText,
			sentence.TargetText,
		); err != nil {
			return fmt.Errorf("insert sentence (%d, %d): %w", sentence.ParagraphIndex, sentence.SentenceIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sentences: %w", err)
	}
	return nil
}

// SentencesForArticle returns an article's sentences in canonical order.
func (s *Store) SentencesForArticle(ctx context.Context, articleID int64) ([]*Sentence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sentenceColumns+` FROM sentences WHERE article_id = ? ORDER BY paragraph_index, sentence_index`,
		articleID)
	if err != nil {
		return nil, fmt.Errorf("query sentences: %w", err)
	}
	defer rows.Close()

	var sentences []*Sentence
	for rows.Next() {
		sentence, err := scanSentence(rows)
		if err != nil {
			return nil, err
		}
		sentences = append(sentences, sentence)
	}
	return sentences, rows.Err()
}

// ApplyTimestamps writes global timestamps for a batch of sentences
// atomically. A failed write rolls the whole batch back.
func (s *Store) ApplyTimestamps(ctx context.Context, segments []TimedSegment) error {
	if len(segments) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timestamp tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE sentences SET start_ms = ?, end_ms = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare timestamp update: %w", err)
	}
	defer stmt.Close()

	for _, segment := range segments {
		res, err := stmt.ExecContext(ctx, segment.StartMS, segment.EndMS, segment.SentenceID)
		if err != nil {
			return fmt.Errorf("update sentence %d timestamps: %w", segment.SentenceID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("sentence %d not found", segment.SentenceID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit timestamps: %w", err)
	}
	return nil
}

// ApplyPartAssignments writes part indices and part-relative offsets for a
// batch of sentences atomically.
func (s *Store) ApplyPartAssignments(ctx context.Context, assignments []PartAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)

	for _, assignment := range assignments {
		if assignment.PartStartMS < 0 || assignment.PartStartMS >= assignment.PartEndMS {
			return fmt.Errorf("sentence %d: invalid part-relative range [%d, %d)",
				assignment.SentenceID, assignment.PartStartMS, assignment.PartEndMS)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE sentences SET audio_part_index = ?, start_time_in_part_ms = ?, end_time_in_part_ms = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare assignment update: %w", err)
	}
	defer stmt.Close()

	for _, assignment := range assignments {
		res, err := stmt.ExecContext(ctx,
			assignment.PartIndex,
			assignment.PartStartMS,
			assignment.PartEndMS,
			assignment.SentenceID,
		)
		if err != nil {
			return fmt.Errorf("update sentence %d part fields: %w", assignment.SentenceID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("sentence %d not found", assignment.SentenceID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit part assignments: %w", err)
	}
	return nil
}

// ClearPartAssignments nulls the part fields of every sentence in an article.
func (s *Store) ClearPartAssignments(ctx context.Context, articleID int64) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE sentences SET audio_part_index = NULL, start_time_in_part_ms = NULL, end_time_in_part_ms = NULL
         WHERE article_id = ?`,
		articleID,
	); err != nil {
		return fmt.Errorf("clear part assignments: %w", err)
	}
	return nil
}

// ResetAlignment clears all timing state for an article: sentence timestamps,
// part assignments, the subtitle path, and the article's part metadata. Runs
// before every alignment so reprocessing starts from a clean slate.
func (s *Store) ResetAlignment(ctx context.Context, articleID int64) error {
	ctx = ensureContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE sentences SET start_ms = NULL, end_ms = NULL,
             audio_part_index = NULL, start_time_in_part_ms = NULL, end_time_in_part_ms = NULL
         WHERE article_id = ?`,
		articleID,
	); err != nil {
		return fmt.Errorf("reset sentence timing: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE articles SET subtitle_path = NULL, parts_dir = NULL, num_parts = NULL, part_checksums = NULL,
             updated_at = ?
         WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		articleID,
	); err != nil {
		return fmt.Errorf("reset article metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// CountSentences returns the number of sentences in an article.
func (s *Store) CountSentences(ctx context.Context, articleID int64) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sentences WHERE article_id = ?`, articleID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sentences: %w", err)
	}
	return count, nil
}

// ErrNoSentences reports an article with nothing to align.
var ErrNoSentences = errors.New("article has no sentences")
