// Package prompt splits a cell value into paragraphs and selects the
// instruction template prepended to each one before it is sent to the model.
// Paragraph order and blank-line positions are preserved exactly, so
// segmenting, translating each piece, and rejoining reproduces the original
// layout.
package prompt

import "strings"

const (
	sentenceTemplate = "Translate the following English sentence to French. Reply with the French translation only, nothing else.\n\n"
	phraseTemplate   = "Translate the following short English phrase to French. Reply with the French translation only, nothing else.\n\n"

	// Paragraphs with more words than this get the sentence template.
	sentenceWordThreshold = 5
)

// Piece is one paragraph of a cell value. A blank paragraph has empty Text
// and Prompt and is never sent to the model; it only holds its position in
// the sequence.
type Piece struct {
	Text   string
	Prompt string
}

// Segment splits text on newline characters into paragraphs, in order. Each
// non-empty paragraph carries the full prompt for the model: the sentence
// template when its space-separated word count exceeds the threshold, the
// short-phrase template otherwise.
func Segment(text string) []Piece {
	paragraphs := strings.Split(text, "\n")
	pieces := make([]Piece, len(paragraphs))
	for i, p := range paragraphs {
		if p == "" {
			continue
		}
		pieces[i] = Piece{Text: p, Prompt: templateFor(p) + p}
	}
	return pieces
}

// Join reassembles per-paragraph outputs with newline separators. The slice
// must be position-aligned with the pieces returned by Segment; blank
// paragraphs contribute their empty entry, which restores blank lines.
func Join(outputs []string) string {
	return strings.Join(outputs, "\n")
}

func templateFor(paragraph string) string {
	if len(strings.Split(paragraph, " ")) > sentenceWordThreshold {
		return sentenceTemplate
	}
	return phraseTemplate
}
