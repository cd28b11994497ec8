package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "creditrisk/internal/errors"
)

// Sheet is one worksheet of a workbook
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// WriteWorkbook writes sheets, in order, to an XLSX file at path.
// Header rows are bold.
func WriteWorkbook(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return apperrors.NewAppValidationError("workbook needs at least one sheet")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewStorageError("failed to create header style", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return apperrors.NewStorageError("failed to name sheet", err).WithContext("sheet", sheet.Name)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return apperrors.NewStorageError("failed to add sheet", err).WithContext("sheet", sheet.Name)
		}
		if err := writeSheet(f, sheet, bold); err != nil {
			return apperrors.NewStorageError("failed to write sheet", err).WithContext("sheet", sheet.Name)
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	row := 1
	if len(sheet.Headers) > 0 {
		header := make([]interface{}, len(sheet.Headers))
		for i, h := range sheet.Headers {
			header[i] = h
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet.Name, 1, 1, headerStyle); err != nil {
			return err
		}
		last, err := excelize.ColumnNumberToName(len(sheet.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, "A", last, 18); err != nil {
			return err
		}
		row++
	}

	for _, values := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := values
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		row++
	}
	return nil
}
