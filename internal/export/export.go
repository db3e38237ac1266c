// Package export renders committed store tables into downloadable archives.
package export

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/amoghv/rollscan/internal/core/domain"
)

// WriteWorkbook streams an xlsx workbook with one sheet per table.
func WriteWorkbook(w io.Writer, dumps []domain.TableDump) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, dump := range dumps {
		sheet := dump.Name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("new sheet %s: %w", sheet, err)
			}
		}

		header := make([]any, len(dump.Columns))
		for j, col := range dump.Columns {
			header[j] = col
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header %s: %w", sheet, err)
		}

		for r, row := range dump.Rows {
			cells := make([]any, len(row))
			for j, v := range row {
				cells[j] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
				return fmt.Errorf("write row %s: %w", sheet, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSVArchive streams a zip with one CSV file per table.
func WriteCSVArchive(w io.Writer, dumps []domain.TableDump) error {
	zw := zip.NewWriter(w)

	for _, dump := range dumps {
		entry, err := zw.Create(dump.Name + ".csv")
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", dump.Name, err)
		}
		cw := csv.NewWriter(entry)
		if err := cw.Write(dump.Columns); err != nil {
			return fmt.Errorf("write header %s: %w", dump.Name, err)
		}
		for _, row := range dump.Rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row %s: %w", dump.Name, err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("flush %s: %w", dump.Name, err)
		}
	}

	return zw.Close()
}
