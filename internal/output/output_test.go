package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fes-bids/internal/adjust"
	"fes-bids/internal/aggregate"
	"fes-bids/internal/bids"
	"fes-bids/internal/config"
	"fes-bids/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var day = model.NewTradingDay(2025, time.February, 7)

func flat(v float64) []float64 {
	out := make([]float64, model.PeriodsPerDay)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestLayoutPaths(t *testing.T) {
	t.Parallel()

	l := NewLayout(config.PathsConfig{
		Generation:    "/gen",
		ETSBids:       "/ets",
		TradersTables: "/traders",
		Auction:       "/auction",
		IDA:           "/ida",
		Output:        "/out",
	})

	assert.Equal(t, filepath.FromSlash("/gen/2025/February/Generation Forecast 07.02.2025 D-1.xlsx"),
		l.GenerationSnapshot(day, model.LagD1))
	assert.Equal(t, filepath.FromSlash("/ets/2025/February/DAM Bids 07.02.2025/DAM GU_504260--ALL D-2.csv"),
		l.Submission(day, model.DayAheadLag(2), "GU_504260"))
	assert.Equal(t, filepath.FromSlash("/traders/2025/February/DAM Traders' Table 07.02.2025 D-1 SU_400130.xlsx"),
		l.TradersTable(day, model.LagD1, "SU_400130"))
	assert.Equal(t, filepath.FromSlash("/auction/2025/February/07.02.2025/DAM SU_400130--ALL D-1 SU_400130.csv"),
		l.Reconciliation(day, model.LagD1, "SU_400130"))
	assert.Equal(t, filepath.FromSlash("/ida/2025/IDA ETS 07.02.2025.xlsx"), l.IDAWorkbook(day))
	assert.Equal(t, filepath.FromSlash("/out/Forecast Briefing 07.02.2025.xlsx"), l.Briefing(day))
}

func TestWriteSubmissionKeepsEmptyPoints(t *testing.T) {
	t.Parallel()

	curves, err := bids.Curves(model.GenerationUnit, day.Periods(), flat(-10))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "ets.csv")
	require.NoError(t, WriteSubmission(path, model.GenerationUnit, curves))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, recs, model.PeriodsPerDay+1)
	assert.Equal(t, []string{"", "Period", "-1500", "-41.7", "-41.7", "9000"}, recs[0])
	assert.Equal(t, []string{"23:00", "1", "", "", "-10.0", "-10.0"}, recs[1])
}

func TestWriteReconciliation(t *testing.T) {
	t.Parallel()

	curves, err := bids.Curves(model.SupplyUnit, day.Periods(), flat(-3))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dam.csv")
	require.NoError(t, WriteReconciliation(path, model.SupplyUnit, curves))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "1,2025-02-06 23:00:00,SELL,-500,0.0,500,0.0,500,3.0,4000,3.0\n")
}

func supplyTable() *aggregate.Table {
	return &aggregate.Table{
		Unit:    model.SupplyUnit,
		Day:     day,
		Lag:     model.LagD1,
		Periods: day.Periods(),
		Columns: []aggregate.Column{
			{Name: aggregate.ColDemand, Values: flat(1)},
			{Name: aggregate.ColUnmetered, Values: flat(0.5)},
			{Name: aggregate.ColTradingQty, Values: flat(1.5)},
			{Name: model.SupplyUnit.ID, Values: flat(1.5)},
		},
	}
}

func TestTradersRowsSupply(t *testing.T) {
	t.Parallel()

	tbl := supplyTable()
	assert.Equal(t, []string{
		"DateTime", aggregate.ColDemand, aggregate.ColUnmetered, aggregate.ColTradingQty, "SU_400130", "Price",
	}, TradersHeader(tbl))

	rows := TradersRows(tbl)
	require.Len(t, rows, model.PeriodsPerDay+2)
	assert.Equal(t, []interface{}{"06/02/2025 23:00", 1.0, 0.5, 1.5, 1.5, ""}, rows[0])
	assert.Equal(t, []interface{}{"", 48.0, 24.0, 72.0, 72.0, ""}, rows[48])
	assert.Equal(t, []interface{}{aggregate.NetDemandLabel, "", "", 72.0, "", ""}, rows[49])
}

func TestWriteTradersTableGeneration(t *testing.T) {
	t.Parallel()

	tbl := &aggregate.Table{
		Unit:    model.GenerationUnit,
		Day:     day,
		Lag:     model.LagD1,
		Periods: day.Periods(),
		Columns: []aggregate.Column{{Name: model.GenerationUnit.ID, Values: flat(-10)}},
	}
	path := filepath.Join(t.TempDir(), "traders.xlsx")
	require.NoError(t, WriteTradersTable(path, tbl))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sheet1", "Chart"}, f.GetSheetList())
	rows, err := f.GetRows("Sheet1", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, model.PeriodsPerDay+2)
	assert.Equal(t, []string{"DateTime", "GU_504260", "Price", "Time"}, rows[0])
	assert.Equal(t, []string{"06/02/2025 23:00", "-10", "", "23:00"}, rows[1])
	assert.Equal(t, []string{"", "-480"}, rows[49])

	shown, err := f.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "-10.0", shown)
}

func snapshot(lag model.Lag, v float64) *model.Snapshot {
	s := &model.Snapshot{Day: day, Lag: lag}
	for _, p := range day.Periods() {
		r := model.NewForecastRow(p.Start)
		r.Values[model.SourceROI] = v
		s.Rows = append(s.Rows, r)
	}
	return s
}

func TestWriteIDAWorkbook(t *testing.T) {
	t.Parallel()

	d1, ida := snapshot(model.LagD1, 20), snapshot(model.LagIDA1, 21)
	res, err := adjust.Compute(d1, ida)
	require.NoError(t, err)
	idaBids, err := bids.IDABids(day.Periods(), res.Adjustments())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "IDA ETS.xlsx")
	require.NoError(t, WriteIDAWorkbook(path, d1, ida, res, idaBids))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetD1Forecast, SheetIDAForecast, SheetAdjustment, SheetIDABids, SheetCharts}, f.GetSheetList())

	rows, err := f.GetRows(SheetIDABids, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, model.PeriodsPerDay+2)
	assert.Equal(t, []string{"period", "-150", "3000.00"}, rows[0])
	assert.Equal(t, []string{"1", "-1", "-1"}, rows[1])
	assert.Equal(t, []string{"", "-48", "-48"}, rows[49])

	adj, err := f.GetRows(SheetAdjustment, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, AdjustmentHeader, adj[0])
	assert.Equal(t, []string{"06/02/2025 23:00", "20", "21", "-1"}, adj[1])
}
