package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"fes-bids/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	selfForecastPrefix = "1) Aggregated Naturgy_Self_Forecast_Template_v1_"

	// DefaultSelfForecastLookback is how many days before the trading date
	// are searched (day 0 included).
	DefaultSelfForecastLookback = 14

	selfForecastColumn   = "C"
	selfForecastFirstRow = 17
	selfForecastHours    = 24
)

// SelfForecastLocator finds the newest self-forecast workbook at or before a
// trading date under {Root}/{YYYY}/{M}) {Month}/{DD.MM.YYYY}/.
type SelfForecastLocator struct {
	Root     string
	Lookback int
}

func (l SelfForecastLocator) Find(day model.TradingDay) (string, error) {
	lookback := l.Lookback
	if lookback <= 0 {
		lookback = DefaultSelfForecastLookback
	}
	for delta := 0; delta <= lookback; delta++ {
		d := day.AddDays(-delta)
		dir := filepath.Join(l.Root,
			strconv.Itoa(d.Date.Year()),
			fmt.Sprintf("%d) %s", int(d.Date.Month()), d.Date.Month()),
			d.DotString())
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			continue
		}

		expected := filepath.Join(dir, selfForecastPrefix+d.DotString()+".xlsx")
		if _, err := os.Stat(expected); err == nil {
			return expected, nil
		}
		matches, err := filepath.Glob(filepath.Join(dir, globEscape(selfForecastPrefix)+"*.xlsx"))
		if err != nil {
			return "", err
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[len(matches)-1], nil
		}
	}
	return "", fmt.Errorf("%w: no self-forecast file within %d days back from %s", model.ErrNotFound, lookback, day)
}

// ReadSelfForecast returns the 24 hourly MW values from the first sheet.
// Blank cells read as zero.
func ReadSelfForecast(path string) ([]float64, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open self-forecast %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("self-forecast %s has no sheets", path)
	}
	out := make([]float64, selfForecastHours)
	for i := range out {
		cell := selfForecastColumn + strconv.Itoa(selfForecastFirstRow+i)
		raw, err := f.GetCellValue(sheets[0], cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("self-forecast %s %s: %w", path, cell, err)
		}
		v, err := parseNumber(raw)
		if err != nil {
			return nil, fmt.Errorf("self-forecast %s %s: %w", path, cell, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// globEscape quotes glob metacharacters in a literal file name prefix.
func globEscape(s string) string {
	r := strings.NewReplacer(`[`, `\[`, `]`, `\]`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}
