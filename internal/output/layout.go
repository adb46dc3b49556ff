// Package output writes the desk's bid, traders' table and IDA files under
// the share folder conventions.
package output

import (
	"fmt"
	"path/filepath"

	"fes-bids/internal/config"
	"fes-bids/internal/model"
)

// Layout derives every output path from the trading day, lag and unit.
type Layout struct {
	Paths config.PathsConfig
}

func NewLayout(paths config.PathsConfig) Layout {
	return Layout{Paths: paths}
}

func yearMonth(root string, day model.TradingDay) string {
	return filepath.Join(root, fmt.Sprintf("%d", day.Date.Year()), day.Date.Month().String())
}

// GenerationSnapshot is the saved generation forecast for a day and lag.
func (l Layout) GenerationSnapshot(day model.TradingDay, lag model.Lag) string {
	return filepath.Join(yearMonth(l.Paths.Generation, day),
		fmt.Sprintf("Generation Forecast %s %s.xlsx", day.DotString(), lag))
}

// Submission is the ETS upload file for a unit.
func (l Layout) Submission(day model.TradingDay, lag model.Lag, unitID string) string {
	return filepath.Join(yearMonth(l.Paths.ETSBids, day), "DAM Bids "+day.DotString(),
		fmt.Sprintf("DAM %s--ALL %s.csv", unitID, lag))
}

func (l Layout) TradersTable(day model.TradingDay, lag model.Lag, unitID string) string {
	return filepath.Join(yearMonth(l.Paths.TradersTables, day),
		fmt.Sprintf("DAM Traders' Table %s %s %s.xlsx", day.DotString(), lag, unitID))
}

// Reconciliation is the DAM auction reconciliation file for a unit.
func (l Layout) Reconciliation(day model.TradingDay, lag model.Lag, unitID string) string {
	return filepath.Join(yearMonth(l.Paths.Auction, day), day.DotString(),
		fmt.Sprintf("DAM %s--ALL %s %s.csv", unitID, lag, unitID))
}

func (l Layout) IDAWorkbook(day model.TradingDay) string {
	return filepath.Join(l.Paths.IDA, fmt.Sprintf("%d", day.Date.Year()),
		fmt.Sprintf("IDA ETS %s.xlsx", day.DotString()))
}

func (l Layout) Briefing(day model.TradingDay) string {
	return filepath.Join(l.Paths.Output, fmt.Sprintf("Forecast Briefing %s.xlsx", day.DotString()))
}

// VendorDump is where a raw vendor response is archived for offline re-runs.
func (l Layout) VendorDump(day model.TradingDay, lag model.Lag) string {
	return filepath.Join(l.Paths.Output, "vendor", fmt.Sprintf("%s %s.json", day.ISOString(), lag))
}
