package postprocess

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// runawayFactor is the output/input length ratio beyond which a translation
// is discarded as a failure. Empirically tuned; kept as-is for behavior
// parity, even though it can misfire on legitimately long translations.
const runawayFactor = 3

// spuriousPunctuation lists the characters stripped when the model
// introduces punctuation absent from the source.
const spuriousPunctuation = ".,!?"

// Normalize applies the cell-level corrections to a fully reassembled
// translation, in order:
//
//  1. Runaway guard: output longer than runawayFactor times the input is
//     replaced by the input unchanged.
//  2. Case matching: all-uppercase input uppercases the output,
//     all-lowercase input lowercases it, mixed case leaves it untouched.
//  3. Spurious punctuation: when the output contains any of ".,!?" but the
//     input contains none, those characters are stripped from the output.
//
// Misfires of these heuristics are not errors; they are reported in the
// returned warnings and the corrected text is used.
func Normalize(input, output string) (string, []string) {
	var warnings []string

	inLen := utf8.RuneCountInString(input)
	outLen := utf8.RuneCountInString(output)
	if outLen > runawayFactor*inLen {
		warnings = append(warnings,
			fmt.Sprintf("translation of %d runes came back with %d, keeping original text", inLen, outLen))
		return input, warnings
	}

	output = matchCase(input, output)

	if strings.ContainsAny(output, spuriousPunctuation) && !strings.ContainsAny(input, spuriousPunctuation) {
		warnings = append(warnings, "stripped punctuation not present in source")
		output = strings.Map(func(r rune) rune {
			if strings.ContainsRune(spuriousPunctuation, r) {
				return -1
			}
			return r
		}, output)
	}

	return output, warnings
}

// matchCase folds the output to the input's casing when the input is
// uniformly cased. French casing rules apply to the output side.
func matchCase(input, output string) string {
	switch {
	case input == strings.ToUpper(input):
		return cases.Upper(language.French).String(output)
	case input == strings.ToLower(input):
		return cases.Lower(language.French).String(output)
	}
	return output
}
