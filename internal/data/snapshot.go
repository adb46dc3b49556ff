package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fes-bids/internal/model"

	"github.com/xuri/excelize/v2"
)

const snapshotSheet = "Sheet1"

// WriteSnapshot saves a generation snapshot as a workbook with the schema
// column order. The file is written to a temp name and renamed into place.
func WriteSnapshot(path string, snap *model.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	header := model.GenerationColumns()
	if err := f.SetSheetRow(snapshotSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range snap.Rows {
		row := make([]interface{}, 0, len(header))
		row = append(row, r.Key())
		for _, s := range model.GenerationSources {
			row = append(row, r.Values[s])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(snapshotSheet, cell, &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(snapshotSheet, "A", "A", 18)

	tmp := path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

// ReadSnapshot loads a generation snapshot workbook. Unknown columns are
// ignored and schema columns missing from the file read as zero.
func ReadSnapshot(path string, day model.TradingDay, lag model.Lag) (*model.Snapshot, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: generation file %s", model.ErrNotFound, path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	timeCol := -1
	cols := map[int]model.Source{}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == model.DateTimeColumn {
			timeCol = i
			continue
		}
		if s, ok := model.LookupSource(h); ok {
			cols[i] = s
		}
	}
	if timeCol < 0 {
		return nil, fmt.Errorf("%s has no %s column", path, model.DateTimeColumn)
	}

	snap := &model.Snapshot{Day: day, Lag: lag}
	for n, rec := range rows[1:] {
		if timeCol >= len(rec) || strings.TrimSpace(rec[timeCol]) == "" {
			continue
		}
		ts, err := parseCellTime(rec[timeCol])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, n+2, err)
		}
		row := model.NewForecastRow(ts)
		for i, s := range cols {
			if i >= len(rec) {
				continue
			}
			v, err := parseNumber(rec[i])
			if err != nil {
				return nil, fmt.Errorf("%s row %d %s: %w", path, n+2, s, err)
			}
			row.Values[s] = v
		}
		snap.Rows = append(snap.Rows, row)
	}
	return snap, nil
}

// parseCellTime accepts the dd/mm/YYYY HH:MM text form or an Excel serial date.
func parseCellTime(raw string) (time.Time, error) {
	if t, err := model.ParseKey(raw); err == nil {
		return t, nil
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid DateTime %q", raw)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	// Serial dates carry float noise; snap to the minute.
	return t.Round(time.Minute).UTC(), nil
}
