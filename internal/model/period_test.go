package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradingDayPeriods(t *testing.T) {
	t.Parallel()

	day := NewTradingDay(2025, time.January, 15)
	periods := day.Periods()

	require.Len(t, periods, PeriodsPerDay)
	assert.Equal(t, "14/01/2025 23:00", periods[0].Key())
	assert.Equal(t, "15/01/2025 22:30", periods[47].Key())
	assert.Equal(t, 1, periods[0].Number)
	assert.Equal(t, 48, periods[47].Number)
	assert.Equal(t, day.End(), periods[47].Start)

	for i := 1; i < len(periods); i++ {
		assert.Equal(t, PeriodLength, periods[i].Start.Sub(periods[i-1].Start))
	}
}

func TestTradingDayPeriodsAcrossClockChange(t *testing.T) {
	t.Parallel()

	// Last Sunday of March: the grid stays 48 wall-clock half hours.
	day := NewTradingDay(2025, time.March, 30)
	periods := day.Periods()

	require.Len(t, periods, PeriodsPerDay)
	assert.Equal(t, "29/03/2025 23:00", periods[0].Key())
	assert.Equal(t, "30/03/2025 01:00", periods[4].Key())
	assert.Equal(t, "30/03/2025 22:30", periods[47].Key())
}

func TestParseTradingDay(t *testing.T) {
	t.Parallel()

	day, err := ParseTradingDay(" 05/02/2025 ")
	require.NoError(t, err)
	assert.Equal(t, NewTradingDay(2025, time.February, 5), day)
	assert.Equal(t, "05.02.2025", day.DotString())
	assert.Equal(t, "2025-02-05", day.ISOString())

	_, err = ParseTradingDay("2025-02-05")
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	ts, err := ParseKey("14/01/2025 23:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 14, 23, 30, 0, 0, time.UTC), ts)
	assert.Equal(t, "14/01/2025 23:30", Key(ts))
}
