// Package validator checks that a translation result looks like French.
// A mismatch is advisory: the driver logs it as a warning and keeps the
// text, since short or ambiguous cells routinely defeat language detection.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/tablotran/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// targetISO is the ISO 639-1 code the translated output is expected to be in.
const targetISO = "FR"

// Validator checks translated cells against the expected output language.
// The underlying language detector is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// IsValid returns true when translatedText appears to be written in French.
//
// Short texts (fewer than minValidationLength runes) and texts whose language
// cannot be determined pass without error. When the detected language differs
// the returned error names it.
func (v *Validator) IsValid(translatedText string) (bool, error) {
	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		// Ambiguous language — cannot validate, pass through.
		return true, nil
	}

	if !strings.EqualFold(detected, targetISO) {
		return false, fmt.Errorf("expected French output but detected %s", detected)
	}

	return true, nil
}
