package compile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fes-bids/internal/adjust"
	"fes-bids/internal/aggregate"
	"fes-bids/internal/analysis"
	"fes-bids/internal/bids"
	"fes-bids/internal/model"
)

// Step is one row of the run ledger: what was attempted and where it landed.
type Step struct {
	Index int       `json:"index"`
	At    time.Time `json:"at"`
	Step  string    `json:"step"`
	Unit  string    `json:"unit,omitempty"`
	// Target is a file path or warehouse table.
	Target string `json:"target,omitempty"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// UnitResult is the outcome for one trading unit.
type UnitResult struct {
	Unit    model.Unit       `json:"unit"`
	Table   *aggregate.Table `json:"-"`
	Curves  []bids.Curve     `json:"-"`
	Summary analysis.Summary `json:"summary"`

	SubmissionPath     string `json:"submission_path"`
	TradersTablePath   string `json:"traders_table_path"`
	ReconciliationPath string `json:"reconciliation_path"`

	Uploaded    bool   `json:"uploaded"`
	UploadTable string `json:"upload_table,omitempty"`
}

// Result is the record of one run. The core outputs are complete whenever
// Run* returned without error; upload and briefing outcomes are flags.
type Result struct {
	RunID string           `json:"run_id"`
	Kind  string           `json:"kind"`
	Day   model.TradingDay `json:"-"`
	Lag   model.Lag        `json:"lag"`

	SnapshotPath       string `json:"snapshot_path,omitempty"`
	GenerationUploaded bool   `json:"generation_uploaded"`

	Units []UnitResult `json:"units,omitempty"`

	Adjustment  *adjust.Result `json:"-"`
	IDABids     []bids.IDABid  `json:"-"`
	IDAWorkbook string         `json:"ida_workbook,omitempty"`
	IDAUploaded bool           `json:"ida_uploaded"`

	BriefingPath string `json:"briefing_path,omitempty"`
	Emailed      bool   `json:"emailed"`

	Warnings []string `json:"warnings,omitempty"`
	Steps    []Step   `json:"steps"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Unit returns the result for a unit id.
func (r *Result) Unit(id string) (*UnitResult, bool) {
	for i := range r.Units {
		if r.Units[i].Unit.ID == id {
			return &r.Units[i], true
		}
	}
	return nil, false
}

func (r *Result) record(step, unit, target string, err error) {
	s := Step{Index: len(r.Steps), At: time.Now(), Step: step, Unit: unit, Target: target, OK: err == nil}
	if err != nil {
		s.Error = err.Error()
	}
	r.Steps = append(r.Steps, s)
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// WriteLedgerCSV writes the run's steps for the operator's records.
func WriteLedgerCSV(path string, r *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"index", "at", "run_id", "trading_date", "lag", "step", "unit", "target", "ok", "error"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, s := range r.Steps {
		row := []string{
			strconv.Itoa(s.Index),
			fmtTime(s.At),
			r.RunID,
			r.Day.String(),
			r.Lag.String(),
			s.Step,
			s.Unit,
			s.Target,
			strconv.FormatBool(s.OK),
			s.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
