package output

import (
	"fes-bids/internal/adjust"
	"fes-bids/internal/bids"
	"fes-bids/internal/model"

	"github.com/xuri/excelize/v2"
)

// IDA workbook sheet names.
const (
	SheetD1Forecast  = "D-1 Forecast"
	SheetIDAForecast = "IDA-1 Forecast"
	SheetAdjustment  = "Adjustment"
	SheetIDABids     = "IDA1 Bids"
	SheetCharts      = "Charts"
)

// AdjustmentHeader is the Adjustment sheet header.
var AdjustmentHeader = []string{model.DateTimeColumn, "D1_Total", "IDA1_Total", "Adjustment"}

// WriteIDAWorkbook saves both snapshots, the adjustment, the bids and two
// charts in one workbook.
func WriteIDAWorkbook(path string, d1, ida *model.Snapshot, res *adjust.Result, idaBids []bids.IDABid) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetD1Forecast); err != nil {
		return err
	}

	genHeader := model.GenerationColumns()
	if err := WriteSheet(f, SheetD1Forecast, genHeader, SnapshotRows(d1)); err != nil {
		return err
	}
	if err := WriteSheet(f, SheetIDAForecast, genHeader, SnapshotRows(ida)); err != nil {
		return err
	}

	adjRows := make([][]interface{}, 0, len(res.Rows))
	for _, r := range res.Rows {
		adjRows = append(adjRows, []interface{}{
			model.Key(r.Time), model.Round1(r.Earlier), model.Round1(r.Later), r.Adjustment,
		})
	}
	if err := WriteSheet(f, SheetAdjustment, AdjustmentHeader, adjRows); err != nil {
		return err
	}

	bidRows := make([][]interface{}, 0, len(idaBids)+1)
	for _, b := range idaBids {
		bidRows = append(bidRows, []interface{}{b.Period.Number, b.Qty, b.Qty})
	}
	bidRows = append(bidRows, []interface{}{"", res.Total, res.Total})
	if err := WriteSheet(f, SheetIDABids, bids.IDAHeader, bidRows); err != nil {
		return err
	}

	widths := map[string]int{
		SheetD1Forecast:  len(genHeader),
		SheetIDAForecast: len(genHeader),
		SheetAdjustment:  len(AdjustmentHeader),
		SheetIDABids:     len(bids.IDAHeader),
	}
	for sheet, n := range widths {
		if err := StyleHeader(f, sheet, n); err != nil {
			return err
		}
		_ = f.SetColWidth(sheet, "A", "A", 18)
	}

	if _, err := f.NewSheet(SheetCharts); err != nil {
		return err
	}
	last := len(res.Rows) + 1
	cats := SeriesRange(SheetAdjustment, 1, 2, last)
	err := f.AddChart(SheetCharts, "A1", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{Name: SeriesName(SheetAdjustment, 2), Categories: cats, Values: SeriesRange(SheetAdjustment, 2, 2, last)},
			{Name: SeriesName(SheetAdjustment, 3), Categories: cats, Values: SeriesRange(SheetAdjustment, 3, 2, last)},
		},
		Title:     []excelize.RichTextRun{{Text: "D-1 vs IDA-1 total generation " + res.Day.String()}},
		Dimension: ChartSize,
		Legend:    excelize.ChartLegend{Position: "bottom"},
		XAxis:     excelize.ChartAxis{TickLabelSkip: 4},
		YAxis:     excelize.ChartAxis{MajorGridLines: true, Title: []excelize.RichTextRun{{Text: "MW"}}},
	})
	if err != nil {
		return err
	}
	err = f.AddChart(SheetCharts, "A35", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{Name: SeriesName(SheetAdjustment, 4), Categories: cats, Values: SeriesRange(SheetAdjustment, 4, 2, last)},
		},
		Title:     []excelize.RichTextRun{{Text: "IDA-1 adjustment (negative sells more)"}},
		Dimension: ChartSize,
		Legend:    excelize.ChartLegend{Position: "none"},
		XAxis:     excelize.ChartAxis{TickLabelSkip: 4},
		YAxis:     excelize.ChartAxis{MajorGridLines: true},
	})
	if err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return SaveWorkbook(f, path)
}
