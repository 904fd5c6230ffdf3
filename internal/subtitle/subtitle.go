// Package subtitle renders bilingual SRT documents and parses time ranges
// back out of aligner-produced SRT files.
package subtitle

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"readalong/internal/timecode"
)

// ErrNoCues reports a render or parse that produced zero usable entries.
var ErrNoCues = errors.New("no usable subtitle entries")

// TextPair is one bilingual cue text.
type TextPair struct {
	Source string
	Target string
}

// Span is one cue's time range in global milliseconds.
type Span struct {
	StartMS int64
	EndMS   int64
}

// CueText formats the displayed line for one bilingual pair.
func CueText(pair TextPair) string {
	return pair.Source + " | " + pair.Target
}

// Render builds an SRT document from parallel text and timing sequences.
// When the sequences differ in length only min(len) cues are emitted; the
// returned count lets the caller report the partial result. Zero usable
// entries returns ErrNoCues.
func Render(pairs []TextPair, spans []Span) (string, int, error) {
	count := len(pairs)
	if len(spans) < count {
		count = len(spans)
	}
	if count == 0 {
		return "", 0, ErrNoCues
	}

	var b strings.Builder
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", timecode.FormatMillis(spans[i].StartMS), timecode.FormatMillis(spans[i].EndMS))
		b.WriteString(CueText(pairs[i]))
		b.WriteString("\n\n")
	}
	return b.String(), count, nil
}

// WriteFile renders the document and writes it to path, returning the cue
// count.
func WriteFile(path string, pairs []TextPair, spans []Span) (int, error) {
	content, count, err := Render(pairs, spans)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return 0, fmt.Errorf("write subtitle: %w", err)
	}
	return count, nil
}

// ParseRanges reads an SRT file and returns its time ranges in cue order.
// Lines that are not range lines are skipped; a file with no parsable range
// lines yields an empty slice.
func ParseRanges(path string) ([]Span, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}

	var spans []Span
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.Contains(line, "-->") {
			continue
		}
		start, end, err := timecode.ParseRange(line)
		if err != nil {
			continue
		}
		spans = append(spans, Span{StartMS: start, EndMS: end})
	}
	return spans, nil
}
