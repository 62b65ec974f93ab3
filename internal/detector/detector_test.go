package detector

import (
	"testing"
)

func TestDetector_Detect(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantLang: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantLang: "English",
			wantOK:   true,
		},
		{
			name:     "french text",
			text:     "Bonjour, ceci est un test en français.",
			wantLang: "French",
			wantOK:   true,
		},
		{
			name:     "spanish text",
			text:     "Hola, esto es una prueba en español.",
			wantLang: "Spanish",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := d.Detect(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Detect(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && lang.String() != tt.wantLang {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantCode: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantCode: "EN",
			wantOK:   true,
		},
		{
			name:     "french text",
			text:     "Bonjour, ceci est un test en français.",
			wantCode: "FR",
			wantOK:   true,
		},
		{
			name:     "italian text",
			text:     "Ciao, questo è un test in italiano.",
			wantCode: "IT",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_ShortText(t *testing.T) {
	d := New()

	code, ok := d.DetectISO("Hi")
	// Short text may or may not be detected, just check it doesn't panic
	_ = code
	_ = ok
}
