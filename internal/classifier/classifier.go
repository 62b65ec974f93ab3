// Package classifier decides whether a spreadsheet cell value needs model
// translation at all. The rules form an ordered list evaluated
// first-match-wins; the numeric, symbolic, and vowel-less short-circuits are
// cheap and must run before any model call.
package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind tags a classification decision.
type Kind int

const (
	// Skip marks an empty cell; the caller writes nothing to the destination.
	Skip Kind = iota
	// PassThrough marks a value copied to the destination without translation.
	PassThrough
	// Translate marks a value that must go through the model.
	Translate
)

// Decision is the outcome of classifying one cell value. Text carries the
// value coerced to text: the pass-through form for PassThrough, the
// normalized source text for Translate, empty for Skip.
type Decision struct {
	Kind Kind
	Text string
}

var (
	// Only digits, whitespace, and non-word symbols: no alphabetic content.
	symbolicRe = regexp.MustCompile(`^[\d\s\W]*$`)

	// y counts as a vowel; a token without any of these is likely an
	// acronym or code, not prose.
	vowelRe = regexp.MustCompile(`(?i)[aeiouy]`)
)

// Classify applies the decision rules to one raw cell value, in order:
//
//  1. Empty value: Skip.
//  2. Parses fully as a number: PassThrough with the number's text form.
//  3. No alphabetic word characters: PassThrough unchanged.
//  4. No vowel characters: PassThrough unchanged.
//  5. Otherwise: Translate.
func Classify(value string) Decision {
	text := norm.NFC.String(strings.TrimSpace(value))
	if text == "" {
		return Decision{Kind: Skip}
	}

	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return Decision{Kind: PassThrough, Text: strconv.FormatFloat(n, 'f', -1, 64)}
	}

	if symbolicRe.MatchString(text) {
		return Decision{Kind: PassThrough, Text: text}
	}

	if !vowelRe.MatchString(text) {
		return Decision{Kind: PassThrough, Text: text}
	}

	return Decision{Kind: Translate, Text: text}
}
