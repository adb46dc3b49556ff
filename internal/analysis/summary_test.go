package analysis

import (
	"testing"
	"time"

	"fes-bids/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize("GU_504260", []float64{-2, -4, -4, -4, -5, -5, -7, -9})
	assert.Equal(t, 8, s.Count)
	assert.Equal(t, -40.0, s.Total)
	assert.Equal(t, -5.0, s.Mean)
	assert.Equal(t, -9.0, s.Min)
	assert.Equal(t, -2.0, s.Max)
	assert.Equal(t, -20.0, s.EnergyMWh)
	assert.InDelta(t, 2.138, s.StdDev, 1e-3)
}

func TestSummarizeEdgeCases(t *testing.T) {
	t.Parallel()

	empty := Summarize("x", nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Mean)

	one := Summarize("x", []float64{3.5})
	assert.Equal(t, 3.5, one.P05)
	assert.Equal(t, 3.5, one.P95)
	assert.Zero(t, one.StdDev)
}

func TestRankSources(t *testing.T) {
	t.Parallel()

	day := model.NewTradingDay(2025, time.June, 2)
	snap := &model.Snapshot{Day: day, Lag: model.LagD1}
	for _, p := range day.Periods() {
		r := model.NewForecastRow(p.Start)
		r.Values[model.SourceROI] = 100
		r.Values[model.SourceMUR] = 10
		r.Values[model.SourceNonwind] = model.NonwindMW
		snap.Rows = append(snap.Rows, r)
	}

	ranked := RankSources(snap)
	require.Len(t, ranked, 3)
	assert.Equal(t, string(model.SourceROI), ranked[0].Name)
	assert.Equal(t, string(model.SourceMUR), ranked[1].Name)
	assert.Equal(t, string(model.SourceNonwind), ranked[2].Name)
	assert.Equal(t, 4800.0, ranked[0].Total)
}
