// Package excel exports sensitivity tables to .xlsx workbooks.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	apperrors "gammafit/internal/errors"
	"gammafit/internal/sensitivity"
)

var sensitivityHeader = []string{
	"e_ref [TeV]", "e_min [TeV]", "e_max [TeV]",
	"e2dnde [TeV/cm2/s]", "excess", "background", "criterion",
}

// SensitivityWriter exports sensitivity tables, one sheet per table.
type SensitivityWriter struct{}

// NewSensitivityWriter creates a new xlsx writer
func NewSensitivityWriter() *SensitivityWriter {
	return &SensitivityWriter{}
}

// Write stores all tables into one workbook at path.
func (w *SensitivityWriter) Write(path string, tables []*sensitivity.Table) error {
	if len(tables) == 0 {
		return apperrors.InvalidInput("no sensitivity tables to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		sheet := sheetName(table, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return apperrors.Wrap(err, "failed to rename sheet")
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return apperrors.Wrap(err, "failed to create sheet")
			}
		}
		if err := w.writeSheet(f, sheet, table); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.Wrap(err, "failed to save workbook")
	}
	return nil
}

func (w *SensitivityWriter) writeSheet(f *excelize.File, sheet string, table *sensitivity.Table) error {
	for col, title := range sensitivityHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return apperrors.Wrap(err, "failed to address header cell")
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return apperrors.Wrap(err, "failed to write header")
		}
	}

	for i, row := range table.Rows {
		values := []interface{}{
			row.ERef, row.EMin, row.EMax,
			row.E2DNDE, row.Excess, row.Background, string(row.Criterion),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return apperrors.Wrap(err, "failed to address cell")
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return apperrors.Wrap(err, "failed to write row")
			}
		}
	}
	return nil
}

// sheetName builds a valid, unique sheet title from the dataset name.
func sheetName(table *sensitivity.Table, i int) string {
	name := table.Dataset
	if name == "" {
		name = fmt.Sprintf("estimate-%d", i+1)
	}
	if len(name) > 28 {
		name = name[:28]
	}
	return fmt.Sprintf("%s-%d", name, i+1)
}
