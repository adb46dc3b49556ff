// Package forecast turns raw vendor series and the hourly self-forecast into
// a generation snapshot on the trading-day grid.
package forecast

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"fes-bids/internal/model"
)

// Normalizer maps vendor facilities onto snapshot columns.
type Normalizer struct {
	// Facilities maps vendor facility ids to snapshot columns. Several
	// facilities feeding one column are summed.
	Facilities map[string]model.Source
	// Shift is added to vendor UTC instants to obtain local period starts.
	Shift time.Duration
}

// Input is everything one normalization needs.
type Input struct {
	Day          model.TradingDay
	Lag          model.Lag
	Vendor       *model.VendorForecast
	SelfForecast []float64 // hourly MW, first value is hour 0 of the trading date
}

// Normalize builds the 48-row snapshot. Vendor values are kW and come out
// as MW rounded to one decimal.
func (n Normalizer) Normalize(in Input) (*model.Snapshot, error) {
	if len(in.SelfForecast) == 0 {
		return nil, errors.New("self-forecast series is empty")
	}

	series := n.resample(in.Vendor)
	self := ExpandHourly(in.SelfForecast, model.PeriodsPerDay)

	snap := &model.Snapshot{Day: in.Day, Lag: in.Lag}
	for i, p := range in.Day.Periods() {
		row := model.NewForecastRow(p.Start)
		vals := series[p.Key()]
		for _, s := range model.GenerationSources {
			if c, ok := s.Constant(); ok {
				row.Values[s] = c
				continue
			}
			row.Values[s] = model.Round1(vals[s])
		}
		row.Values[model.SourceSelfForecast] = model.Round1(self[i])
		snap.Rows = append(snap.Rows, row)
	}
	return snap, nil
}

// resample places every mapped vendor value on a contiguous half-hour grid
// spanning the union of vendor timestamps. A facility silent at a timestamp
// another facility reports counts as zero there; grid slots with no vendor
// timestamp carry the previous slot forward. The result is keyed by the
// formatted local time.
func (n Normalizer) resample(resp *model.VendorForecast) map[string]map[model.Source]float64 {
	byTime := map[time.Time]map[model.Source]float64{}
	if resp != nil {
		for _, f := range resp.Facilities {
			src, ok := n.Facilities[f.FacilityID]
			if !ok {
				continue
			}
			for _, p := range f.Points {
				t := localTime(p.Time, n.Shift)
				vals, ok := byTime[t]
				if !ok {
					vals = map[model.Source]float64{}
					byTime[t] = vals
				}
				vals[src] += p.ValueKW / 1000
			}
		}
	}

	out := map[string]map[model.Source]float64{}
	if len(byTime) == 0 {
		return out
	}
	times := make([]time.Time, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	last := times[len(times)-1]
	next := 0
	var current map[model.Source]float64
	for t := times[0]; !t.After(last); t = t.Add(model.PeriodLength) {
		for next < len(times) && !times[next].After(t) {
			current = byTime[times[next]]
			next++
		}
		out[model.Key(t)] = current
	}
	return out
}

// localTime converts a vendor UTC instant to a wall-clock time in the UTC
// location, which is how every period start is represented.
func localTime(t time.Time, shift time.Duration) time.Time {
	return t.UTC().Add(shift)
}

// ExpandHourly repeats each hourly value into two half hours, then truncates
// or pads with the last value to exactly n entries.
func ExpandHourly(hourly []float64, n int) []float64 {
	out := make([]float64, 0, n)
	for _, v := range hourly {
		if len(out) >= n {
			break
		}
		out = append(out, v, v)
	}
	if len(out) > n {
		out = out[:n]
	}
	if len(hourly) == 0 {
		return append(out, make([]float64, n-len(out))...)
	}
	lastVal := hourly[len(hourly)-1]
	if len(out) > 0 {
		lastVal = out[len(out)-1]
	}
	for len(out) < n {
		out = append(out, lastVal)
	}
	return out
}

// CheckCoverage reports periods of the day the vendor response did not reach.
func (n Normalizer) CheckCoverage(day model.TradingDay, resp *model.VendorForecast) error {
	series := n.resample(resp)
	var missing int
	for _, p := range day.Periods() {
		if _, ok := series[p.Key()]; !ok {
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("vendor forecast misses %d of %d periods for %s (filled with zero)", missing, model.PeriodsPerDay, day)
	}
	return nil
}
