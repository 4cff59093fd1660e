package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var columns = []string{
	"Filename",
	"OCR Text",
	"Extracted Name",
	"Extracted Brand",
	"Extracted Price",
	"Extracted Weight",
	"Confidence",
	"Processing Time (ms)",
	"Error",
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// confidencePercent renders 0.75 as "75.0"; a missing score renders as "0.0".
func confidencePercent(c *float64) string {
	var v float64
	if c != nil {
		v = *c
	}
	return strconv.FormatFloat(v*100, 'f', 1, 64)
}

func (r ItemResult) record() []string {
	return []string{
		r.Filename,
		r.OCRText,
		r.Name,
		r.Brand,
		formatNumber(r.Price),
		formatNumber(r.Weight),
		confidencePercent(r.Confidence),
		strconv.FormatInt(r.ProcessingTime.Milliseconds(), 10),
		r.Error,
	}
}

// WriteCSV writes a header row and one row per result.
func WriteCSV(w io.Writer, results []ItemResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportXLSX returns the results as a workbook with a single "Scans" sheet.
func ExportXLSX(results []ItemResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Scans"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for n, r := range results {
		row := n + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.Filename)
		write(2, r.OCRText)
		write(3, r.Name)
		write(4, r.Brand)
		write(5, r.Price)
		write(6, r.Weight)
		if r.Confidence != nil {
			write(7, *r.Confidence*100)
		} else {
			write(7, 0)
		}
		write(8, r.ProcessingTime.Milliseconds())
		write(9, r.Error)
	}

	_ = f.SetColWidth(sheet, "A", "A", 24) // filename
	_ = f.SetColWidth(sheet, "B", "B", 60) // ocr text
	_ = f.SetColWidth(sheet, "C", "D", 28) // name, brand
	_ = f.SetColWidth(sheet, "E", "H", 14) // numbers
	_ = f.SetColWidth(sheet, "I", "I", 48) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
