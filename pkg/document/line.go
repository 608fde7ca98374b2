package document

import (
	"slices"
	"strings"

	"github.com/gardar/ocrtrain/pkg/geometry"
)

// TextLine is one line of a document: its words in reading order and the
// polygon that covers it on the page image.
type TextLine struct {
	ID       string
	Words    []string
	Shape    geometry.Shape
	Valid    bool
	Reorder  bool // reverse word order on output
	Vertical bool // words run top to bottom
}

// Transcription joins the words with single spaces, reversed when the line
// is reordered.
func (l TextLine) Transcription() string {
	words := l.Words
	if l.Reorder {
		words = slices.Clone(words)
		slices.Reverse(words)
	}
	return strings.Join(words, " ")
}

// invisible directional and zero-width marks that OCR tools leave behind
var marks = strings.NewReplacer(
	"\u200f", "",
	"\u200e", "",
	"\ufeff", "",
	"\u200c", "",
	"\u202c", "",
)

// cleanToken removes invisible marks and surrounding whitespace.
func cleanToken(s string) string {
	return strings.TrimSpace(marks.Replace(s))
}

// tokens cleans every word and drops the ones left empty.
func tokens(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = cleanToken(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}
