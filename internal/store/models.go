package store

import "time"

// Book groups articles under a single exportable title.
type Book struct {
	ID        int64
	Title     string
	CreatedAt time.Time
}

// Article is one bilingual transcript unit with its own audio and timing
// state. NumParts is nil until the article's audio has been split; zero parts
// are never stored, the fields are cleared instead.
type Article struct {
	ID            int64
	BookID        int64
	Title         string
	AudioPath     string
	SubtitlePath  string
	PartsDir      string
	NumParts      *int
	PartChecksums string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Split reports whether the article's audio has been segmented into parts.
func (a *Article) Split() bool {
	return a != nil && a.NumParts != nil && *a.NumParts > 0
}

// Sentence is one source/target text pair with optional timing. Global
// timestamps are nil until alignment runs; part fields are nil unless the
// article's audio was split.
type Sentence struct {
	ID             int64
	ArticleID      int64
	ParagraphIndex int
	SentenceIndex  int
	SourceText     string
	TargetText     string
	StartMS        *int64
	EndMS          *int64
	PartIndex      *int
	PartStartMS    *int64
	PartEndMS      *int64
}

// NewSentence carries the fields needed to insert a sentence during ingest.
type NewSentence struct {
	ParagraphIndex int
	SentenceIndex  int
	SourceText     string
	TargetText     string
}

// TimedSegment is one alignment result destined for a sentence row.
type TimedSegment struct {
	SentenceID int64
	StartMS    int64
	EndMS      int64
}

// PartAssignment maps a sentence into a part with part-relative offsets.
type PartAssignment struct {
	SentenceID  int64
	PartIndex   int
	PartStartMS int64
	PartEndMS   int64
}
