package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"irdbclean/internal"
)

// ExportRowsToXLSX writes batch report rows to a spreadsheet, one file pair
// per row.
func ExportRowsToXLSX(rows []internal.ReportExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"file", "difference_ratio", "lost_comments", "duplicates_removed", "buttons_renamed",
		"added", "removed", "changed",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.File)
		set(2, row.DifferenceRatio)
		set(3, row.LostComments)
		set(4, row.DuplicatesRemoved)
		set(5, row.ButtonsRenamed)
		set(6, row.Added)
		set(7, row.Removed)
		set(8, row.Changed)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
