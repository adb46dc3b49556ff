package model

import (
	"fmt"
	"strings"
	"time"
)

// PeriodsPerDay is fixed. Clock-change days still trade 48 half hours.
const PeriodsPerDay = 48

const PeriodLength = 30 * time.Minute

// KeyLayout is the dd/mm/YYYY HH:MM form used in every table and as the merge key.
const KeyLayout = "02/01/2006 15:04"

// DateLayout is how operators type trading dates.
const DateLayout = "02/01/2006"

// TradingDay is a delivery date. All times derived from it are wall-clock
// times carried in the UTC location so that no DST arithmetic sneaks in.
type TradingDay struct {
	Date time.Time
}

// Period is one half-hour trading slot, numbered 1..48.
type Period struct {
	Number int
	Start  time.Time
}

func NewTradingDay(year int, month time.Month, day int) TradingDay {
	return TradingDay{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// TradingDayOf drops the clock part of t, keeping its wall-clock date.
func TradingDayOf(t time.Time) TradingDay {
	return NewTradingDay(t.Year(), t.Month(), t.Day())
}

// ParseTradingDay parses "dd/mm/YYYY".
func ParseTradingDay(s string) (TradingDay, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return TradingDay{}, fmt.Errorf("invalid trading date %q (expected dd/mm/YYYY): %w", s, err)
	}
	return TradingDayOf(t), nil
}

func (d TradingDay) String() string { return d.Date.Format(DateLayout) }

// DotString is the dd.mm.YYYY form used in file and folder names.
func (d TradingDay) DotString() string { return d.Date.Format("02.01.2006") }

// ISOString is the YYYY-MM-DD form used by the demand forecast files.
func (d TradingDay) ISOString() string { return d.Date.Format("2006-01-02") }

func (d TradingDay) IsZero() bool { return d.Date.IsZero() }

func (d TradingDay) AddDays(n int) TradingDay {
	return TradingDayOf(d.Date.AddDate(0, 0, n))
}

func (d TradingDay) Weekday() time.Weekday { return d.Date.Weekday() }

// Start is 23:00 on the calendar day before the trading date.
func (d TradingDay) Start() time.Time {
	return d.Date.Add(-time.Hour)
}

// End is the start of the last period (22:30 on the trading date).
func (d TradingDay) End() time.Time {
	return d.Start().Add(time.Duration(PeriodsPerDay-1) * PeriodLength)
}

// Periods returns the 48 contiguous half hours from 23:00 D-1 to 22:30 D.
func (d TradingDay) Periods() []Period {
	out := make([]Period, PeriodsPerDay)
	start := d.Start()
	for i := range out {
		out[i] = Period{
			Number: i + 1,
			Start:  start.Add(time.Duration(i) * PeriodLength),
		}
	}
	return out
}

func (p Period) Key() string { return Key(p.Start) }

// Clock is the HH:MM label traders read next to each period.
func (p Period) Clock() string { return p.Start.Format("15:04") }

func Key(t time.Time) string { return t.Format(KeyLayout) }

func ParseKey(s string) (time.Time, error) {
	t, err := time.Parse(KeyLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q (expected dd/mm/YYYY HH:MM): %w", s, err)
	}
	return t, nil
}
