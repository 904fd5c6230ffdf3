package store

import (
	"database/sql"
	"errors"
	"time"
)

const articleColumns = "id, book_id, title, audio_path, subtitle_path, parts_dir, num_parts, part_checksums, created_at, updated_at"

const sentenceColumns = "id, article_id, paragraph_index, sentence_index, source_text, target_text, start_ms, end_ms, audio_part_index, start_time_in_part_ms, end_time_in_part_ms"

func scanArticle(scanner interface{ Scan(dest ...any) error }) (*Article, error) {
	var (
		id            int64
		bookID        int64
		title         string
		audioPath     sql.NullString
		subtitlePath  sql.NullString
		partsDir      sql.NullString
		numParts      sql.NullInt64
		partChecksums sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&bookID,
		&title,
		&audioPath,
		&subtitlePath,
		&partsDir,
		&numParts,
		&partChecksums,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	article := &Article{
		ID:            id,
		BookID:        bookID,
		Title:         title,
		AudioPath:     audioPath.String,
		SubtitlePath:  subtitlePath.String,
		PartsDir:      partsDir.String,
		PartChecksums: partChecksums.String,
	}
	if numParts.Valid {
		n := int(numParts.Int64)
		article.NumParts = &n
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		article.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		article.UpdatedAt = updated
	}
	return article, nil
}

func scanSentence(scanner interface{ Scan(dest ...any) error }) (*Sentence, error) {
	var (
		id             int64
		articleID      int64
		paragraphIndex int64
		sentenceIndex  int64
		sourceText     string
		targetText     string
		startMS        sql.NullInt64
		endMS          sql.NullInt64
		partIndex      sql.NullInt64
		partStartMS    sql.NullInt64
		partEndMS      sql.NullInt64
	)

	if err := scanner.Scan(
		&id,
		&articleID,
		&paragraphIndex,
		&sentenceIndex,
		&sourceText,
		&targetText,
		&startMS,
		&endMS,
		&partIndex,
		&partStartMS,
		&partEndMS,
	); err != nil {
		return nil, err
	}

	sentence := &Sentence{
		ID:             id,
		ArticleID:      articleID,
		ParagraphIndex: int(paragraphIndex),
		SentenceIndex:  int(sentenceIndex),
		SourceText:     sourceText,
		TargetText:     targetText,
	}
	if startMS.Valid {
		sentence.StartMS = &startMS.Int64
	}
	if endMS.Valid {
		sentence.EndMS = &endMS.Int64
	}
	if partIndex.Valid {
		idx := int(partIndex.Int64)
		sentence.PartIndex = &idx
	}
	if partStartMS.Valid {
		sentence.PartStartMS = &partStartMS.Int64
	}
	if partEndMS.Valid {
		sentence.PartEndMS = &partEndMS.Int64
	}
	return sentence, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
