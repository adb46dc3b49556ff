package models

import "time"

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// RunResponse represents one compilation run
type RunResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Kind        string     `json:"kind"`
	TradingDate string     `json:"trading_date"`
	Lag         string     `json:"lag"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`

	SnapshotPath       string `json:"snapshot_path,omitempty"`
	GenerationUploaded bool   `json:"generation_uploaded"`

	Units      []UnitRun          `json:"units,omitempty"`
	Adjustment *AdjustmentSummary `json:"adjustment,omitempty"`
	Briefing   string             `json:"briefing_path,omitempty"`
	Emailed    bool               `json:"emailed"`

	Warnings []string     `json:"warnings,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// UnitRun is one unit's part of a run
type UnitRun struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Kind               string      `json:"kind"`
	Summary            UnitSummary `json:"summary"`
	SubmissionPath     string      `json:"submission_path"`
	TradersTablePath   string      `json:"traders_table_path"`
	ReconciliationPath string      `json:"reconciliation_path"`
	Uploaded           bool        `json:"uploaded"`
	UploadTable        string      `json:"upload_table,omitempty"`
}

// UnitSummary holds the bid quantity statistics in MW
type UnitSummary struct {
	Total     float64 `json:"total"`
	Mean      float64 `json:"mean"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	EnergyMWh float64 `json:"energy_mwh"`
}

// AdjustmentSummary is the intraday D-1 minus IDA-1 outcome
type AdjustmentSummary struct {
	Total        float64 `json:"total"`
	WorkbookPath string  `json:"workbook_path,omitempty"`
	Uploaded     bool    `json:"uploaded"`
}

// CurvesResponse lists one unit's bid curves for a run
type CurvesResponse struct {
	RunID  string     `json:"run_id"`
	Unit   string     `json:"unit"`
	Curves []CurveRow `json:"curves"`
}

// CurveRow is one period's curve. Unused points have a null qty.
type CurveRow struct {
	Period    int          `json:"period"`
	Start     string       `json:"start"`
	Direction string       `json:"direction"`
	Points    []CurvePoint `json:"points"`
}

type CurvePoint struct {
	Price float64  `json:"price"`
	Qty   *float64 `json:"qty"`
}

// UnitInfo represents a configured bidding unit
type UnitInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	TablePrefix string    `json:"table_prefix"`
	Source      string    `json:"source,omitempty"`
	Prices      []float64 `json:"prices"`
}

// FacilityInfo represents one vendor facility mapping
type FacilityInfo struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
