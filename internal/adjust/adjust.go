// Package adjust computes the intraday adjustment between two generation
// snapshots of the same trading day.
package adjust

import (
	"fmt"
	"time"

	"fes-bids/internal/model"
)

// Row is one period of the adjustment table.
type Row struct {
	Time       time.Time
	Earlier    float64
	Later      float64
	Adjustment float64
}

// Result holds the per-period adjustment and the day total. A positive
// value means the later forecast came in lower and the desk buys back.
type Result struct {
	Day   model.TradingDay
	Rows  []Row
	Total float64
}

// Adjustments returns the per-period values in period order.
func (r *Result) Adjustments() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Adjustment
	}
	return out
}

// Compute subtracts the later snapshot's row totals from the earlier one's.
// Both snapshots must cover the same day on the same timestamps; they are
// never realigned by position.
func Compute(earlier, later *model.Snapshot) (*Result, error) {
	if earlier == nil || later == nil {
		return nil, fmt.Errorf("%w: adjustment needs two snapshots", model.ErrNotFound)
	}
	if !earlier.Day.Date.Equal(later.Day.Date) {
		return nil, fmt.Errorf("%w: snapshots are for %s and %s", model.ErrMisaligned, earlier.Day, later.Day)
	}
	if len(earlier.Rows) != len(later.Rows) {
		return nil, fmt.Errorf("%w: %s has %d rows, %s has %d", model.ErrMisaligned,
			earlier.Lag, len(earlier.Rows), later.Lag, len(later.Rows))
	}
	if err := earlier.Validate(); err != nil {
		return nil, err
	}
	if err := later.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Day: earlier.Day, Rows: make([]Row, len(earlier.Rows))}
	for i := range earlier.Rows {
		e, l := earlier.Rows[i], later.Rows[i]
		if !e.Time.Equal(l.Time) {
			return nil, fmt.Errorf("%w: row %d is %s in %s but %s in %s", model.ErrMisaligned,
				i+1, e.Key(), earlier.Lag, l.Key(), later.Lag)
		}
		et, lt := e.Total(), l.Total()
		res.Rows[i] = Row{
			Time:       e.Time,
			Earlier:    et,
			Later:      lt,
			Adjustment: model.Round1(model.Sum([]float64{et, -lt})),
		}
	}
	res.Total = model.Round1(model.Sum(res.Adjustments()))
	return res, nil
}
