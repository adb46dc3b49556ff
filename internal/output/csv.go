package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"fes-bids/internal/bids"
	"fes-bids/internal/model"
)

// WriteCSV writes a header and records, creating parent folders.
func WriteCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Sync()
}

// WriteSubmission writes the ETS file: unused points are empty cells.
func WriteSubmission(path string, unit model.Unit, curves []bids.Curve) error {
	return WriteCSV(path, bids.SubmissionHeader(unit.Prices), bids.SubmissionRecords(unit.Kind, curves))
}

// WriteReconciliation writes the DAM auction file: unused points are zero.
func WriteReconciliation(path string, unit model.Unit, curves []bids.Curve) error {
	return WriteCSV(path, bids.ReconciliationHeader(), bids.ReconciliationRecords(unit.Kind, curves))
}
