package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fes-bids/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var friday = model.NewTradingDay(2025, time.February, 7)

func TestParseDemand(t *testing.T) {
	in := "\ufeffDateTime, Demand,Site\n06/02/2025 23:00,500,x\n06/02/2025 23:30, 1250 ,x\n"
	got, err := ParseDemand(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2025, time.February, 6, 23, 0, 0, 0, time.UTC), got[0].Time)
	assert.Equal(t, 500.0, got[0].KWh)
	assert.Equal(t, 1250.0, got[1].KWh)

	_, err = ParseDemand(strings.NewReader("Time,Load\n"))
	assert.Error(t, err)

	_, err = ParseDemand(strings.NewReader("DateTime,Demand\n2025-02-06 23:00,1\n"))
	assert.Error(t, err)
}

func TestReadDemandMissingFile(t *testing.T) {
	_, err := ReadDemand(DemandPath(t.TempDir(), friday))
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, filepath.Join("root", "2025-02-07.csv"), DemandPath("root", friday))
}

func writeSelfForecastFile(t *testing.T, dir, name string, hourly []float64) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f := excelize.NewFile()
	defer f.Close()
	for i, v := range hourly {
		cell, err := excelize.CoordinatesToCellName(3, 17+i)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestSelfForecastLocator(t *testing.T) {
	root := t.TempDir()
	loc := SelfForecastLocator{Root: root, Lookback: 5}

	_, err := loc.Find(friday)
	require.ErrorIs(t, err, model.ErrNotFound)

	older := friday.AddDays(-3)
	olderDir := filepath.Join(root, "2025", "2) February", older.DotString())
	olderPath := writeSelfForecastFile(t, olderDir, selfForecastPrefix+older.DotString()+".xlsx", []float64{1})

	got, err := loc.Find(friday)
	require.NoError(t, err)
	assert.Equal(t, olderPath, got)

	// A renamed file in a newer folder is still found.
	newer := friday.AddDays(-1)
	newerDir := filepath.Join(root, "2025", "2) February", newer.DotString())
	newerPath := writeSelfForecastFile(t, newerDir, selfForecastPrefix+newer.DotString()+" v2.xlsx", []float64{1})

	got, err = loc.Find(friday)
	require.NoError(t, err)
	assert.Equal(t, newerPath, got)

	_, err = SelfForecastLocator{Root: root, Lookback: 0}.Find(friday.AddDays(30))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSelfForecastLocatorLookbackBoundary(t *testing.T) {
	folder := func(root string, d model.TradingDay) string {
		return filepath.Join(root, "2025", fmt.Sprintf("%d) %s", int(d.Date.Month()), d.Date.Month()), d.DotString())
	}

	// 07/02 back 14 days is 24/01: still searched.
	root := t.TempDir()
	edge := friday.AddDays(-DefaultSelfForecastLookback)
	edgePath := writeSelfForecastFile(t, folder(root, edge), selfForecastPrefix+edge.DotString()+".xlsx", []float64{1})

	got, err := SelfForecastLocator{Root: root, Lookback: DefaultSelfForecastLookback}.Find(friday)
	require.NoError(t, err)
	assert.Equal(t, edgePath, got)

	// 15 days back is out of range.
	root = t.TempDir()
	past := friday.AddDays(-DefaultSelfForecastLookback - 1)
	writeSelfForecastFile(t, folder(root, past), selfForecastPrefix+past.DotString()+".xlsx", []float64{1})

	_, err = SelfForecastLocator{Root: root, Lookback: DefaultSelfForecastLookback}.Find(friday)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReadSelfForecast(t *testing.T) {
	hourly := make([]float64, 20)
	for i := range hourly {
		hourly[i] = float64(i) + 0.25
	}
	path := writeSelfForecastFile(t, t.TempDir(), "self.xlsx", hourly)

	got, err := ReadSelfForecast(path)
	require.NoError(t, err)
	require.Len(t, got, 24)
	assert.Equal(t, 0.25, got[0])
	assert.Equal(t, 19.25, got[19])
	assert.Zero(t, got[23], "blank cells read as zero")
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := &model.Snapshot{Day: friday, Lag: model.LagD1}
	for i, p := range friday.Periods() {
		r := model.NewForecastRow(p.Start)
		r.Values[model.SourceROI] = float64(i) / 10
		r.Values[model.SourceMUR] = 12.3
		r.Values[model.SourceNonwind] = model.NonwindMW
		snap.Rows = append(snap.Rows, r)
	}
	path := filepath.Join(t.TempDir(), "gen", "Generation Forecast.xlsx")
	require.NoError(t, WriteSnapshot(path, snap))
	assert.NoFileExists(t, path+".tmp.xlsx")

	got, err := ReadSnapshot(path, friday, model.LagD1)
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	assert.Equal(t, snap.Column(model.SourceROI), got.Column(model.SourceROI))
	assert.Equal(t, snap.Column(model.SourceMUR), got.Column(model.SourceMUR))
	assert.Equal(t, 0.7, got.Rows[47].Value(model.SourceNonwind))
	assert.Zero(t, got.Rows[0].Value(model.SourceS2))

	_, err = ReadSnapshot(filepath.Join(t.TempDir(), "none.xlsx"), friday, model.LagD1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestParseCellTimeSerial(t *testing.T) {
	got, err := parseCellTime("45694.958333333336")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.February, 6, 23, 0, 0, 0, time.UTC), got)

	got, err = parseCellTime("06/02/2025 23:30")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Minute())

	_, err = parseCellTime("yesterday")
	assert.Error(t, err)
}

func TestResponseCache(t *testing.T) {
	assert.Nil(t, NewResponseCache(0))
	var disabled *ResponseCache
	disabled.Set("k", &model.VendorForecast{})
	_, ok := disabled.Get("k")
	assert.False(t, ok)
	assert.Zero(t, disabled.Len())

	now := time.Date(2025, time.February, 6, 9, 0, 0, 0, time.UTC)
	c := NewResponseCache(10 * time.Minute)
	c.now = func() time.Time { return now }

	resp := &model.VendorForecast{RequestedAt: now}
	c.Set("a", resp)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, resp, got)

	now = now.Add(11 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Set("b", resp)
	assert.Equal(t, 1, c.Len(), "expired entries are dropped on Set")
	c.Clear()
	assert.Zero(t, c.Len())
}

func TestGenerateCacheKey(t *testing.T) {
	a := testRequest()
	b := testRequest()
	assert.Equal(t, GenerateCacheKey(a), GenerateCacheKey(b))

	b.Percentile = 90
	assert.NotEqual(t, GenerateCacheKey(a), GenerateCacheKey(b))
}

func TestFacilityCatalog(t *testing.T) {
	resp := &model.VendorForecast{Facilities: []model.FacilityForecast{
		{FacilityID: "Vayu_GEN_504260", Points: make([]model.ForecastPoint, 3)},
		{FacilityID: "Vayu_New_1", Points: make([]model.ForecastPoint, 2)},
	}}
	mapping := []model.Facility{
		{ID: "Vayu_GEN_504260", Source: model.SourceMUR},
		{ID: "Vayu_Cluster1", Source: model.SourceROI},
	}

	catalog := &FacilityCatalog{UpdatedAt: "2025-02-06T09:00:00Z", Facilities: BuildCatalog(resp, mapping)}
	require.Len(t, catalog.Facilities, 3)
	assert.Equal(t, FacilityStatus{ID: "Vayu_Cluster1", Source: model.SourceROI}, catalog.Facilities[0])
	assert.Equal(t, FacilityStatus{ID: "Vayu_GEN_504260", Source: model.SourceMUR, Points: 3}, catalog.Facilities[1])
	assert.Equal(t, []string{"Vayu_New_1"}, catalog.Unmapped())

	path := filepath.Join(t.TempDir(), "data", "facilities.json")
	require.NoError(t, SaveFacilityCatalog(catalog, path))
	loaded, err := LoadFacilityCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, catalog, loaded)
}

func TestForecastJSONRoundTrip(t *testing.T) {
	resp := &model.VendorForecast{
		RequestedAt: time.Date(2025, time.February, 6, 9, 0, 0, 0, time.UTC),
		Facilities: []model.FacilityForecast{
			{FacilityID: "a", Points: []model.ForecastPoint{{Time: time.Unix(1738882800, 0).UTC(), ValueKW: 1}}},
			{FacilityID: "a", Points: []model.ForecastPoint{{Time: time.Unix(1738884600, 0).UTC(), ValueKW: 2}}},
		},
	}
	path := filepath.Join(t.TempDir(), "vendor", "dump.json")
	require.NoError(t, SaveForecastJSON(path, resp))
	loaded, err := LoadForecastJSON(path)
	require.NoError(t, err)
	assert.Equal(t, resp, loaded)

	grouped := GroupByFacility(loaded)
	assert.Len(t, grouped["a"], 2)
}
