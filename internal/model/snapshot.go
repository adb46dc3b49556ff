package model

import (
	"fmt"
	"time"
)

// ForecastRow is one period of a generation snapshot. Missing sources read as zero.
type ForecastRow struct {
	Time   time.Time
	Values map[Source]float64
}

func NewForecastRow(t time.Time) ForecastRow {
	return ForecastRow{Time: t, Values: make(map[Source]float64, len(GenerationSources))}
}

func (r ForecastRow) Value(s Source) float64 {
	return r.Values[s]
}

func (r ForecastRow) Key() string { return Key(r.Time) }

// Total sums every generation source of the row.
func (r ForecastRow) Total() float64 {
	vals := make([]float64, 0, len(GenerationSources))
	for _, s := range GenerationSources {
		vals = append(vals, r.Values[s])
	}
	return Sum(vals)
}

// Snapshot is the aggregated generation forecast for one trading date and lag.
type Snapshot struct {
	Day  TradingDay
	Lag  Lag
	Rows []ForecastRow
}

// Validate checks that the rows sit exactly on the day's 48-period grid.
func (s *Snapshot) Validate() error {
	if len(s.Rows) != PeriodsPerDay {
		return fmt.Errorf("%w: snapshot %s %s has %d rows, want %d", ErrMisaligned, s.Day, s.Lag, len(s.Rows), PeriodsPerDay)
	}
	for i, p := range s.Day.Periods() {
		if !s.Rows[i].Time.Equal(p.Start) {
			return fmt.Errorf("%w: snapshot %s %s row %d is %s, want %s", ErrMisaligned, s.Day, s.Lag, i+1, Key(s.Rows[i].Time), p.Key())
		}
	}
	return nil
}

func (s *Snapshot) Column(src Source) []float64 {
	out := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Values[src]
	}
	return out
}

func (s *Snapshot) Totals() []float64 {
	out := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Total()
	}
	return out
}

// TotalMWh is the energy over the day: each half-hour MW value counts 0.5 MWh.
func (s *Snapshot) TotalMWh() float64 {
	return Sum(s.Totals()) / 2
}
