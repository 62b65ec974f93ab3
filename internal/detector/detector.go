// Package detector wraps the lingua-go language detector.
package detector

import (
	lingua "github.com/pemistahl/lingua-go"
)

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to the source language, the target
// language, and the target's close Romance neighbours. The restricted set
// keeps the model build fast and is enough to tell French output apart from
// English that leaked through untranslated.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.French,
			lingua.Spanish,
			lingua.Italian,
			lingua.Portuguese,
		).
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}
