// Package spreadsheet encodes tables as XLSX workbooks.
package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheet    = "Sheet1"
	maxSheetName    = 31
)

var _ port.SheetEncoder = ExcelEncoder{}

// ExcelEncoder writes the table into the first and only sheet of a new
// workbook: the header on row 1, one row per table row below it.
type ExcelEncoder struct{}

func NewExcelEncoder() ExcelEncoder { return ExcelEncoder{} }

func (ExcelEncoder) ContentType() string { return ContentTypeXLSX }

func (ExcelEncoder) Extension() string { return ".xlsx" }

func (ExcelEncoder) Encode(table domain.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(table.Sheet)
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("name sheet %q: %w", sheet, err)
		}
	}

	header := make([]any, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		cells := row.Cells()
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims the name to what Excel accepts.
func sheetName(name string) string {
	if name == "" {
		return defaultSheet
	}
	r := []rune(name)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	out := make([]rune, 0, len(r))
	for _, c := range r {
		switch c {
		case ':', '\\', '/', '?', '*', '[', ']':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
