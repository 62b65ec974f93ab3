// Package sheet adapts xlsx workbooks to the row/column grid the driver
// consumes. Only the first sheet is used, as both source and destination.
package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DefaultOutputName is the fixed name of the translated workbook.
const DefaultOutputName = "translated.xlsx"

// Document wraps the first sheet of an open workbook. Rows are 1-indexed and
// columns addressed by letter; the header row is whatever the caller chooses
// not to touch via the start row.
type Document struct {
	file  *excelize.File
	sheet string
	rows  int
}

// Open reads the workbook at path and binds to its first sheet.
func Open(path string) (*Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet := f.GetSheetName(0)
	if sheet == "" {
		f.Close()
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return &Document{file: f, sheet: sheet, rows: len(rows)}, nil
}

func (d *Document) Sheet() string {
	return d.sheet
}

func (d *Document) RowCount() int {
	return d.rows
}

func (d *Document) Get(row int, col string) (string, error) {
	cell, err := cellName(col, row)
	if err != nil {
		return "", err
	}
	value, err := d.file.GetCellValue(d.sheet, cell)
	if err != nil {
		return "", fmt.Errorf("failed to read cell %s: %w", cell, err)
	}
	return value, nil
}

func (d *Document) Set(row int, col string, value string) error {
	cell, err := cellName(col, row)
	if err != nil {
		return err
	}
	if err := d.file.SetCellValue(d.sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", cell, err)
	}
	return nil
}

// SaveAs serializes the workbook, with all destination cells written so far,
// to path.
func (d *Document) SaveAs(path string) error {
	if err := d.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (d *Document) Close() error {
	return d.file.Close()
}

// ValidateColumn reports an error when col is not a spreadsheet column
// letter. Used to reject bad flags before a run starts.
func ValidateColumn(col string) error {
	if _, err := excelize.ColumnNameToNumber(col); err != nil {
		return fmt.Errorf("invalid column %q: %w", col, err)
	}
	return nil
}

func cellName(col string, row int) (string, error) {
	n, err := excelize.ColumnNameToNumber(col)
	if err != nil {
		return "", fmt.Errorf("invalid column %q: %w", col, err)
	}
	cell, err := excelize.CoordinatesToCellName(n, row)
	if err != nil {
		return "", fmt.Errorf("invalid cell %s%d: %w", col, row, err)
	}
	return cell, nil
}
