// Package textparse parses bilingual transcript files into ordered sentence
// pairs.
//
// A transcript is a sequence of <paragraph>...</paragraph> blocks whose
// non-empty lines alternate between source-language and target-language
// text. Fullwidth punctuation that leaks into the source line is converted
// to its ASCII counterpart so the forced aligner sees clean input.
package textparse

import (
	"strings"
)

const (
	paragraphOpen  = "<paragraph>"
	paragraphClose = "</paragraph>"
)

// Pair is one parsed bilingual sentence with its stable ordering key.
type Pair struct {
	ParagraphIndex int
	SentenceIndex  int
	SourceText     string
	TargetText     string
}

var punctuationReplacer = strings.NewReplacer(
	"，", ",", // fullwidth comma
	"。", ".", // ideographic full stop
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"：", ":",
	"；", ";",
	"？", "?",
	"！", "!",
	"（", "(",
	"）", ")",
	"、", ",", // ideographic comma
)

// NormalizePunctuation converts fullwidth punctuation marks in source text to
// their ASCII equivalents.
func NormalizePunctuation(text string) string {
	if text == "" {
		return text
	}
	return punctuationReplacer.Replace(text)
}

// Parse walks the transcript content and returns sentence pairs in document
// order. Blocks with no complete pair are skipped; a trailing unpaired line
// within a block is dropped.
func Parse(content string) []Pair {
	var pairs []Pair

	paragraphIndex := 0
	for _, block := range strings.Split(strings.TrimSpace(content), paragraphOpen) {
		block = strings.ReplaceAll(block, paragraphClose, "")
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}

		sentenceIndex := 0
		for i := 0; i+1 < len(lines); i += 2 {
			source := NormalizePunctuation(lines[i])
			target := lines[i+1]
			if source == "" || target == "" {
				continue
			}
			pairs = append(pairs, Pair{
				ParagraphIndex: paragraphIndex,
				SentenceIndex:  sentenceIndex,
				SourceText:     source,
				TargetText:     target,
			})
			sentenceIndex++
		}
		if sentenceIndex > 0 {
			paragraphIndex++
		}
	}
	return pairs
}
