package export

// Manifest is the structured description of a book bundled into an export
// archive. Audio paths are relative to the archive root and null when the
// article had no readable audio at package time.
type Manifest struct {
	BookTitle string            `json:"book_title"`
	Articles  []ManifestArticle `json:"articles"`
}

// ManifestArticle is one article entry in the manifest.
type ManifestArticle struct {
	Title     string             `json:"title"`
	Audio     *string            `json:"audio"`
	Sentences []ManifestSentence `json:"sentences"`
}

// ManifestSentence carries bilingual text with global timestamps. Timestamps
// are null when the article was never aligned.
type ManifestSentence struct {
	ParagraphIndex int    `json:"paragraph_index"`
	SentenceIndex  int    `json:"sentence_index"`
	SourceText     string `json:"source_text"`
	TargetText     string `json:"target_text"`
	StartMS        *int64 `json:"start_ms"`
	EndMS          *int64 `json:"end_ms"`
}
