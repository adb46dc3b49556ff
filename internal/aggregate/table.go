// Package aggregate builds each unit's 48-row trading-day table from a
// generation snapshot and, for the supply unit, the demand forecast.
package aggregate

import (
	"fmt"

	"fes-bids/internal/model"
)

// Supply table column names.
const (
	ColDemand         = "Adj. QH (MW)"
	ColNonQuarterHour = "Adj. NQH (MW)"
	ColUnmetered      = "Unmetered (MW)"
	ColTradingQty     = "Trading Qty (MW)"
	NetDemandLabel    = "Net Demand"
)

// supplyLabels names the negated generation columns on the supply table.
var supplyLabels = map[model.Source]string{
	model.SourceROI:          "Adj. ROI Wind (MW)",
	model.SourceNI:           "Adj. NI Wind (MW)",
	model.SourceTB:           "Adj. Tullabrack (MW)",
	model.SourceCK:           "Adj. Cloghaneleskirt (MW)",
	model.SourceLD:           "Adj. Lisdowney (MW)",
	model.SourceCD:           "Adj. Curraghderrig (MW)",
	model.SourceNonwind:      "Adj. Nonwind (MW)",
	model.SourceSelfForecast: "Self-forecast (MW)",
	model.SourceDT:           "Adj. Davidstown (MW)",
	model.SourceMUR:          "Adj. Murley (MW)",
	model.SourceS1:           "S1",
	model.SourceS2:           "S2",
}

// SupplyLabel is the supply-table header for a generation source.
func SupplyLabel(s model.Source) string {
	if l, ok := supplyLabels[s]; ok {
		return l
	}
	return string(s)
}

// Column is one numeric column of a unit table.
type Column struct {
	Name   string
	Values []float64
}

// Table is a unit's trading-day table. Rows are exactly the 48 periods;
// totals are computed on demand and never stored as rows.
type Table struct {
	Unit    model.Unit
	Day     model.TradingDay
	Lag     model.Lag
	Periods []model.Period
	Columns []Column
}

func (t *Table) Column(name string) ([]float64, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// Quantities is the unit's signed net bid quantity per period.
func (t *Table) Quantities() []float64 {
	q, _ := t.Column(t.Unit.ID)
	return q
}

// Totals is the column-wise sum, aligned with Columns.
func (t *Table) Totals() []float64 {
	out := make([]float64, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = model.Sum(c.Values)
	}
	return out
}

// NetDemand is the total of the supply unit's trading quantity. It is only
// defined for supply tables.
func (t *Table) NetDemand() (float64, bool) {
	if t.Unit.Kind != model.UnitSupply {
		return 0, false
	}
	q, ok := t.Column(ColTradingQty)
	if !ok {
		return 0, false
	}
	return model.Sum(q), true
}

func (t *Table) validate() error {
	if len(t.Periods) != model.PeriodsPerDay {
		return fmt.Errorf("%w: table %s has %d periods", model.ErrMisaligned, t.Unit.ID, len(t.Periods))
	}
	for _, c := range t.Columns {
		if len(c.Values) != len(t.Periods) {
			return fmt.Errorf("%w: column %s has %d values for %d periods", model.ErrMisaligned, c.Name, len(c.Values), len(t.Periods))
		}
	}
	return nil
}

// joinSnapshot left-joins snapshot rows onto the period grid by formatted
// timestamp. Grid periods without a snapshot row come back empty.
func joinSnapshot(periods []model.Period, snap *model.Snapshot) []map[model.Source]float64 {
	byKey := make(map[string]map[model.Source]float64, len(snap.Rows))
	for _, r := range snap.Rows {
		if _, dup := byKey[r.Key()]; dup {
			continue
		}
		byKey[r.Key()] = r.Values
	}
	out := make([]map[model.Source]float64, len(periods))
	for i, p := range periods {
		out[i] = byKey[p.Key()]
	}
	return out
}
