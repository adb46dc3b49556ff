// Package analysis summarises bid and forecast columns for operators.
package analysis

import (
	"math"
	"sort"

	"fes-bids/internal/model"
)

// Summary describes one series of half-hourly MW values.
type Summary struct {
	Name string `json:"name"`

	Count int `json:"count"`

	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"` // sample standard deviation
	P05    float64 `json:"p05"`
	P95    float64 `json:"p95"`

	// EnergyMWh counts each half-hour value as 0.5 MWh.
	EnergyMWh float64 `json:"energy_mwh"`
}

func Summarize(name string, values []float64) Summary {
	s := Summary{Name: name}
	if len(values) == 0 {
		return s
	}
	s.Count = len(values)

	minv := math.Inf(1)
	maxv := math.Inf(-1)
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		sorted = append(sorted, v)
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	sort.Float64s(sorted)

	s.Total = model.Sum(values)
	s.Mean = s.Total / float64(s.Count)
	s.Min = minv
	s.Max = maxv
	s.P05 = percentileSorted(sorted, 0.05)
	s.P95 = percentileSorted(sorted, 0.95)
	s.EnergyMWh = s.Total / 2

	if s.Count > 1 {
		ss := 0.0
		for _, v := range values {
			d := v - s.Mean
			ss += d * d
		}
		s.StdDev = math.Sqrt(ss / float64(s.Count-1))
	}
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
