package output

import (
	"fmt"

	"fes-bids/internal/aggregate"
	"fes-bids/internal/analysis"
	"fes-bids/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	tradersSheet = "Sheet1"
	chartSheet   = "Chart"
)

// TradersHeader is the traders' table header for a unit: the period start,
// the aggregation columns and the trailing label columns the desk fills in.
func TradersHeader(t *aggregate.Table) []string {
	h := []string{model.DateTimeColumn}
	for _, c := range t.Columns {
		h = append(h, c.Name)
	}
	return append(h, labelColumns(t.Unit.Kind)...)
}

func labelColumns(kind model.UnitKind) []string {
	if kind == model.UnitGeneration {
		return []string{"Price", "Time"}
	}
	return []string{"Price"}
}

// TradersRows renders the 48 period rows followed by the totals row and, for
// the supply unit, the Net Demand row.
func TradersRows(t *aggregate.Table) [][]interface{} {
	labels := labelColumns(t.Unit.Kind)
	rows := make([][]interface{}, 0, len(t.Periods)+2)
	for i, p := range t.Periods {
		row := []interface{}{p.Key()}
		for _, c := range t.Columns {
			row = append(row, c.Values[i])
		}
		row = append(row, "")
		if len(labels) == 2 {
			row = append(row, p.Clock())
		}
		rows = append(rows, row)
	}

	totals := []interface{}{""}
	for _, v := range t.Totals() {
		totals = append(totals, v)
	}
	for range labels {
		totals = append(totals, "")
	}
	rows = append(rows, totals)

	if net, ok := t.NetDemand(); ok {
		row := []interface{}{aggregate.NetDemandLabel}
		for _, c := range t.Columns {
			if c.Name == aggregate.ColTradingQty {
				row = append(row, net)
				continue
			}
			row = append(row, "")
		}
		for range labels {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteTradersTable saves the unit's table on Sheet1 with a line chart of the
// bid quantity on a second sheet.
func WriteTradersTable(path string, t *aggregate.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := TradersHeader(t)
	rows := TradersRows(t)
	if err := WriteSheet(f, tradersSheet, header, rows); err != nil {
		return err
	}
	if err := FormatOneDecimal(f, tradersSheet, 2, 2, len(t.Columns)+1, len(rows)+1); err != nil {
		return err
	}
	_ = f.SetColWidth(tradersSheet, "A", "A", 18)

	qCol := -1
	for i, c := range t.Columns {
		if c.Name == t.Unit.ID {
			qCol = i + 2
		}
	}
	if qCol < 0 {
		return fmt.Errorf("unit %s: table has no quantity column", t.Unit.ID)
	}

	if _, err := f.NewSheet(chartSheet); err != nil {
		return err
	}
	s := analysis.Summarize(t.Unit.ID, t.Quantities())
	last := len(t.Periods) + 1
	err := f.AddChart(chartSheet, "A1", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       SeriesName(tradersSheet, qCol),
			Categories: SeriesRange(tradersSheet, 1, 2, last),
			Values:     SeriesRange(tradersSheet, qCol, 2, last),
		}},
		Title: []excelize.RichTextRun{{
			Text: fmt.Sprintf("%s %s %s  total %.1f MW  avg %.1f  min %.1f  max %.1f",
				t.Unit.ID, t.Day, t.Lag, s.Total, s.Mean, s.Min, s.Max),
		}},
		Dimension: ChartSize,
		Legend:    excelize.ChartLegend{Position: "bottom"},
		XAxis:     excelize.ChartAxis{TickLabelSkip: 4},
		YAxis:     excelize.ChartAxis{MajorGridLines: true, Title: []excelize.RichTextRun{{Text: "MW"}}},
	})
	if err != nil {
		return err
	}
	return SaveWorkbook(f, path)
}
