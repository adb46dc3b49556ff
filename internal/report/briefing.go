// Package report builds the morning forecast briefing workbook and the
// trading-desk email that goes with it.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fes-bids/internal/aggregate"
	"fes-bids/internal/analysis"
	"fes-bids/internal/data"
	"fes-bids/internal/model"
	"fes-bids/internal/output"
	"fes-bids/internal/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// Briefing sheet names.
const (
	SheetSummary    = "Summary"
	SheetD1         = "D-1 Forecast"
	SheetComparison = "D-1 vs D-2"
	SheetWeekend    = "Weekend"
)

// Briefing is everything the morning workbook and email report on.
type Briefing struct {
	Day model.TradingDay
	D1  *model.Snapshot
	// D2 is the previous day's forecast for the same trading day, nil when
	// it was never produced.
	D2 *model.Snapshot
	// Weekend holds the Saturday, Sunday and Monday forecasts in Friday mode.
	Weekend []*model.Snapshot
	Friday  bool
	Tables  []*aggregate.Table
}

// LoadBriefing reads the D-1 snapshot (required) plus the optional D-2 and,
// on Fridays or when forced, the weekend snapshots labelled D-3..D-5.
func LoadBriefing(ctx context.Context, layout output.Layout, day model.TradingDay, forceFriday bool) (*Briefing, error) {
	d1, err := data.ReadSnapshot(layout.GenerationSnapshot(day, model.LagD1), day, model.LagD1)
	if err != nil {
		return nil, err
	}
	b := &Briefing{Day: day, D1: d1, Friday: forceFriday || day.Weekday() == time.Friday}

	if b.D2, err = optionalSnapshot(ctx, layout, day, model.DayAheadLag(2)); err != nil {
		return nil, err
	}
	if b.Friday {
		for i := 1; i <= 3; i++ {
			snap, err := optionalSnapshot(ctx, layout, day.AddDays(i), model.DayAheadLag(i+2))
			if err != nil {
				return nil, err
			}
			if snap != nil {
				b.Weekend = append(b.Weekend, snap)
			}
		}
	}
	return b, nil
}

func optionalSnapshot(ctx context.Context, layout output.Layout, day model.TradingDay, lag model.Lag) (*model.Snapshot, error) {
	snap, err := data.ReadSnapshot(layout.GenerationSnapshot(day, lag), day, lag)
	if errors.Is(err, model.ErrNotFound) {
		logger.Infof(ctx, "%s forecast for %s not found, skipping", lag, day)
		return nil, nil
	}
	return snap, err
}

// EnergyMWh totals the wind and conventional sources of a snapshot over the
// day. Solar slots are left out, as on the desk's email.
func EnergyMWh(snap *model.Snapshot) float64 {
	vals := make([]float64, 0, len(snap.Rows)*len(model.GenerationSources))
	for _, r := range snap.Rows {
		for _, s := range model.GenerationSources {
			if isSolarSlot(s) {
				continue
			}
			vals = append(vals, r.Values[s])
		}
	}
	return model.Sum(vals) / 2
}

func isSolarSlot(s model.Source) bool {
	for _, slot := range model.SolarSlotSources {
		if s == slot {
			return true
		}
	}
	return false
}

// WriteBriefing saves the workbook: a summary, the D-1 stack, the D-2
// comparison and the weekend view when available, then one sheet per unit.
func WriteBriefing(path string, b *Briefing) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	if err := writeSummary(f, b); err != nil {
		return err
	}
	if err := writeD1(f, b.D1); err != nil {
		return err
	}
	if b.D2 != nil {
		if err := writeComparison(f, b.D1, b.D2); err != nil {
			return err
		}
	}
	if len(b.Weekend) > 0 {
		if err := writeWeekend(f, b.Weekend); err != nil {
			return err
		}
	}
	for _, t := range b.Tables {
		if err := writeUnit(f, t); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	return output.SaveWorkbook(f, path)
}

func writeSummary(f *excelize.File, b *Briefing) error {
	rows := [][]interface{}{
		{"Trading date", b.Day.String()},
		{"Updated Forecast D-1 (MWh)", model.Round1(EnergyMWh(b.D1))},
	}
	if b.D2 != nil {
		d1, d2 := EnergyMWh(b.D1), EnergyMWh(b.D2)
		rows = append(rows,
			[]interface{}{"Previous Forecast D-2 (MWh)", model.Round1(d2)},
			[]interface{}{"Diff (MWh)", model.Round1(d1 - d2)},
		)
	}
	rows = append(rows, []interface{}{}, []interface{}{"Source", "Total (MW)", "Mean", "Min", "Max", "Std dev", "Energy (MWh)"})
	for _, s := range analysis.RankSources(b.D1) {
		rows = append(rows, summaryRow(s))
	}
	if len(b.Tables) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Unit", "Total (MW)", "Mean", "Min", "Max", "Std dev", "Energy (MWh)"})
		for _, t := range b.Tables {
			rows = append(rows, summaryRow(analysis.Summarize(t.Unit.ID, t.Quantities())))
		}
	}
	if err := output.WriteSheet(f, SheetSummary, []string{"Forecast briefing", b.Day.Weekday().String()}, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 30)
	return output.FormatOneDecimal(f, SheetSummary, 2, 2, 7, len(rows)+1)
}

func summaryRow(s analysis.Summary) []interface{} {
	return []interface{}{s.Name, s.Total, s.Mean, s.Min, s.Max, s.StdDev, s.EnergyMWh}
}

func writeD1(f *excelize.File, snap *model.Snapshot) error {
	header := append(model.GenerationColumns(), "Total")
	rows := output.SnapshotRows(snap)
	for i, r := range snap.Rows {
		rows[i] = append(rows[i], r.Total())
	}
	if err := output.WriteSheet(f, SheetD1, header, rows); err != nil {
		return err
	}
	if err := output.StyleHeader(f, SheetD1, len(header)); err != nil {
		return err
	}

	last := len(rows) + 1
	cats := output.SeriesRange(SheetD1, 1, 2, last)
	var series []excelize.ChartSeries
	for i, src := range model.GenerationSources {
		col := i + 2
		if isZero(snap.Column(src)) {
			continue
		}
		series = append(series, excelize.ChartSeries{
			Name:       output.SeriesName(SheetD1, col),
			Categories: cats,
			Values:     output.SeriesRange(SheetD1, col, 2, last),
		})
	}
	if len(series) == 0 {
		return nil
	}
	return f.AddChart(SheetD1, chartAnchor(len(header)), &excelize.Chart{
		Type:      excelize.AreaStacked,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("D-1 generation forecast %s: %.1f MWh", snap.Day, EnergyMWh(snap))}},
		Dimension: output.ChartSize,
		Legend:    excelize.ChartLegend{Position: "right"},
		XAxis:     excelize.ChartAxis{TickLabelSkip: 4},
		YAxis:     excelize.ChartAxis{MajorGridLines: true, Title: []excelize.RichTextRun{{Text: "MW"}}},
	})
}

func writeComparison(f *excelize.File, d1, d2 *model.Snapshot) error {
	header := []string{model.DateTimeColumn, "D-1 Total", "D-2 Total", "Diff"}
	d2ByKey := make(map[string]float64, len(d2.Rows))
	for _, r := range d2.Rows {
		d2ByKey[r.Key()] = r.Total()
	}
	rows := make([][]interface{}, 0, len(d1.Rows))
	for _, r := range d1.Rows {
		a, b := r.Total(), d2ByKey[r.Key()]
		rows = append(rows, []interface{}{r.Key(), model.Round1(a), model.Round1(b), model.Round1(a - b)})
	}
	if err := output.WriteSheet(f, SheetComparison, header, rows); err != nil {
		return err
	}
	if err := output.StyleHeader(f, SheetComparison, len(header)); err != nil {
		return err
	}

	e1, e2 := EnergyMWh(d1), EnergyMWh(d2)
	last := len(rows) + 1
	cats := output.SeriesRange(SheetComparison, 1, 2, last)
	return f.AddChart(SheetComparison, chartAnchor(len(header)), &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{Name: output.SeriesName(SheetComparison, 2), Categories: cats, Values: output.SeriesRange(SheetComparison, 2, 2, last)},
			{Name: output.SeriesName(SheetComparison, 3), Categories: cats, Values: output.SeriesRange(SheetComparison, 3, 2, last)},
		},
		Title: []excelize.RichTextRun{{
			Text: fmt.Sprintf("D-1: %.1f MWh  D-2: %.1f MWh  Diff: %+.1f MWh", e1, e2, e1-e2),
		}},
		Dimension: output.ChartSize,
		Legend:    excelize.ChartLegend{Position: "bottom"},
		XAxis:     excelize.ChartAxis{TickLabelSkip: 4},
		YAxis:     excelize.ChartAxis{MajorGridLines: true, Title: []excelize.RichTextRun{{Text: "MW"}}},
	})
}

// writeWeekend lines the weekend totals up by period number.
func writeWeekend(f *excelize.File, snaps []*model.Snapshot) error {
	header := []string{"Period"}
	for _, s := range snaps {
		header = append(header, fmt.Sprintf("%s %s (%s)", s.Day.Weekday(), s.Day, s.Lag))
	}
	rows := make([][]interface{}, model.PeriodsPerDay)
	for p := range rows {
		rows[p] = []interface{}{p + 1}
		for _, s := range snaps {
			var v interface{} = ""
			if p < len(s.Rows) {
				v = model.Round1(s.Rows[p].Total())
			}
			rows[p] = append(rows[p], v)
		}
	}
	if err := output.WriteSheet(f, SheetWeekend, header, rows); err != nil {
		return err
	}
	if err := output.StyleHeader(f, SheetWeekend, len(header)); err != nil {
		return err
	}

	last := len(rows) + 1
	cats := output.SeriesRange(SheetWeekend, 1, 2, last)
	series := make([]excelize.ChartSeries, 0, len(snaps))
	for i := range snaps {
		series = append(series, excelize.ChartSeries{
			Name:       output.SeriesName(SheetWeekend, i+2),
			Categories: cats,
			Values:     output.SeriesRange(SheetWeekend, i+2, 2, last),
		})
	}
	return f.AddChart(SheetWeekend, chartAnchor(len(header)), &excelize.Chart{
		Type:      excelize.Line,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: "Weekend generation forecasts"}},
		Dimension: output.ChartSize,
		Legend:    excelize.ChartLegend{Position: "bottom"},
		YAxis:     excelize.ChartAxis{MajorGridLines: true, Title: []excelize.RichTextRun{{Text: "MW"}}},
	})
}

func writeUnit(f *excelize.File, t *aggregate.Table) error {
	q := t.Quantities()
	if q == nil {
		return fmt.Errorf("unit %s: table has no quantity column", t.Unit.ID)
	}
	header := []string{model.DateTimeColumn, t.Unit.ID}
	rows := make([][]interface{}, 0, len(t.Periods))
	for i, p := range t.Periods {
		rows = append(rows, []interface{}{p.Key(), q[i]})
	}
	if err := output.WriteSheet(f, t.Unit.ID, header, rows); err != nil {
		return err
	}
	if err := output.StyleHeader(f, t.Unit.ID, len(header)); err != nil {
		return err
	}

	s := analysis.Summarize(t.Unit.ID, q)
	last := len(rows) + 1
	return f.AddChart(t.Unit.ID, chartAnchor(len(header)), &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       output.SeriesName(t.Unit.ID, 2),
			Categories: output.SeriesRange(t.Unit.ID, 1, 2, last),
			Values:     output.SeriesRange(t.Unit.ID, 2, 2, last),
		}},
		Title: []excelize.RichTextRun{{
			Text: fmt.Sprintf("%s %s bids  total %.1f MW  avg %.1f  min %.1f  max %.1f", t.Unit.Name, t.Lag, s.Total, s.Mean, s.Min, s.Max),
		}},
		Dimension: output.ChartSize,
		Legend:    excelize.ChartLegend{Position: "none"},
		XAxis:     excelize.ChartAxis{TickLabelSkip: 4},
		YAxis:     excelize.ChartAxis{MajorGridLines: true, Title: []excelize.RichTextRun{{Text: "MW"}}},
	})
}

// chartAnchor places a chart two columns right of a table n columns wide.
func chartAnchor(n int) string {
	cell, _ := excelize.CoordinatesToCellName(n+2, 2)
	return cell
}

func isZero(xs []float64) bool {
	for _, x := range xs {
		if x != 0 {
			return false
		}
	}
	return true
}
