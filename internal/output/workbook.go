package output

import (
	"fmt"
	"os"
	"path/filepath"

	"fes-bids/internal/model"

	"github.com/xuri/excelize/v2"
)

// OneDecimal is the number format used on every MW cell.
const OneDecimal = "0.0"

// ChartSize is the default chart dimension in pixels.
var ChartSize = excelize.ChartDimension{Width: 960, Height: 420}

// WriteSheet writes a header row and data rows starting at A1, creating the
// sheet when it does not exist yet.
func WriteSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil {
		return err
	} else if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// StyleHeader paints the first row white-on-blue across n columns.
func StyleHeader(f *excelize.File, sheet string, n int) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(n, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// FormatOneDecimal applies the 0.0 format to a rectangular block.
func FormatOneDecimal(f *excelize.File, sheet string, fromCol, fromRow, toCol, toRow int) error {
	numFmt := OneDecimal
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

// SeriesRange is an absolute single-column reference such as 'Sheet1'!$B$2:$B$49.
func SeriesRange(sheet string, col, fromRow, toRow int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sheet, name, fromRow, name, toRow)
}

// SeriesName references a header cell to label a chart series.
func SeriesName(sheet string, col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return fmt.Sprintf("'%s'!$%s$1", sheet, name)
}

// SnapshotRows renders a snapshot in schema column order.
func SnapshotRows(snap *model.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		row := make([]interface{}, 0, len(model.GenerationSources)+1)
		row = append(row, r.Key())
		for _, s := range model.GenerationSources {
			row = append(row, r.Values[s])
		}
		rows = append(rows, row)
	}
	return rows
}

// SaveWorkbook writes f to path through a temporary file so a reader on the
// share never sees a half-written workbook.
func SaveWorkbook(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
