package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lag labels a forecast snapshot by how far ahead of delivery it was taken.
type Lag string

const (
	LagD1   Lag = "D-1"
	LagIDA1 Lag = "IDA-1"
)

// DayAheadLag returns "D-n".
func DayAheadLag(n int) Lag { return Lag(fmt.Sprintf("D-%d", n)) }

func ParseLag(s string) (Lag, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(LagIDA1)) {
		return LagIDA1, nil
	}
	rest, ok := strings.CutPrefix(strings.ToUpper(s), "D-")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLag, s)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidLag, s)
	}
	return DayAheadLag(n), nil
}

// LagFromDates counts whole days between today and the trading date.
// Only future trading dates have a day-ahead lag.
func LagFromDates(day TradingDay, today time.Time) (Lag, error) {
	t := TradingDayOf(today)
	days := int(day.Date.Sub(t.Date).Hours() / 24)
	if days < 1 {
		return "", fmt.Errorf("%w: trading date %s is not after %s", ErrInvalidLag, day, t)
	}
	return DayAheadLag(days), nil
}

func (l Lag) String() string { return string(l) }

// IsDayAheadOne is true only for the morning D-1 snapshot.
func (l Lag) IsDayAheadOne() bool { return l == LagD1 }

// TableSuffix routes warehouse rows: exactly D-1 has its own table,
// every other lag (D-2, D-3, IDA-1, ...) shares the D_Minus_X table.
func (l Lag) TableSuffix() string {
	if l.IsDayAheadOne() {
		return "_D_Minus_1"
	}
	return "_D_Minus_X"
}
