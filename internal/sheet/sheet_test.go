package sheet

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, cells map[string]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for cell, value := range cells {
		if err := f.SetCellValue("Sheet1", cell, value); err != nil {
			t.Fatalf("failed to set %s: %v", cell, err)
		}
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDocument_GetSet(t *testing.T) {
	path := writeWorkbook(t, map[string]string{
		"A1": "ID",
		"B1": "Source",
		"B2": "Hello",
		"B3": "World",
	})

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer doc.Close()

	if doc.RowCount() != 3 {
		t.Errorf("expected 3 rows, got %d", doc.RowCount())
	}

	got, err := doc.Get(2, "B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", got)
	}

	// Cell outside the populated range reads as empty, not an error.
	got, err = doc.Get(3, "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty cell, got %q", got)
	}

	if err := doc.Set(2, "C", "Bonjour"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = doc.Get(2, "C")
	if got != "Bonjour" {
		t.Errorf("expected %q, got %q", "Bonjour", got)
	}
}

func TestDocument_SaveAsRoundTrip(t *testing.T) {
	path := writeWorkbook(t, map[string]string{
		"B1": "Source",
		"B2": "Hello",
	})

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := doc.Set(2, "C", "Bonjour"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "translated.xlsx")
	if err := doc.SaveAs(out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc.Close()

	reopened, err := Open(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reopened.Close()

	got, _ := reopened.Get(2, "C")
	if got != "Bonjour" {
		t.Errorf("expected %q after round trip, got %q", "Bonjour", got)
	}
	// Header untouched.
	got, _ = reopened.Get(1, "B")
	if got != "Source" {
		t.Errorf("expected header preserved, got %q", got)
	}
}

func TestDocument_InvalidColumn(t *testing.T) {
	path := writeWorkbook(t, map[string]string{"A1": "x"})

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer doc.Close()

	if _, err := doc.Get(1, "7"); err == nil {
		t.Error("expected error for invalid column letter")
	}
	if err := doc.Set(1, "", "v"); err == nil {
		t.Error("expected error for empty column letter")
	}
}

func TestValidateColumn(t *testing.T) {
	for _, col := range []string{"A", "B", "AA"} {
		if err := ValidateColumn(col); err != nil {
			t.Errorf("ValidateColumn(%q) = %v, want nil", col, err)
		}
	}
	for _, col := range []string{"", "7", "B2"} {
		if err := ValidateColumn(col); err == nil {
			t.Errorf("ValidateColumn(%q) = nil, want error", col)
		}
	}
}
