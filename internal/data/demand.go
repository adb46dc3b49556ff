package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fes-bids/internal/model"
)

// DemandPoint is one half hour of forecast supply-customer demand in kWh.
type DemandPoint struct {
	Time time.Time
	KWh  float64
}

// DemandPath is {root}/{YYYY-MM-DD}.csv for the trading date.
func DemandPath(root string, day model.TradingDay) string {
	return filepath.Join(root, day.ISOString()+".csv")
}

// ReadDemand loads a demand forecast CSV with DateTime and Demand columns.
func ReadDemand(path string) ([]DemandPoint, error) {
	fh, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: demand file %s", model.ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return ParseDemand(fh)
}

func ParseDemand(r io.Reader) ([]DemandPoint, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read demand header: %w", err)
	}
	timeCol, demandCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case model.DateTimeColumn:
			timeCol = i
		case "Demand":
			demandCol = i
		}
	}
	if timeCol < 0 || demandCol < 0 {
		return nil, fmt.Errorf("demand file needs DateTime and Demand columns, got %v", header)
	}

	var out []DemandPoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("demand line %d: %w", line, err)
		}
		ts, err := model.ParseKey(rec[timeCol])
		if err != nil {
			return nil, fmt.Errorf("demand line %d: %w", line, err)
		}
		kwh, err := parseNumber(rec[demandCol])
		if err != nil {
			return nil, fmt.Errorf("demand line %d: bad Demand %q: %w", line, rec[demandCol], err)
		}
		out = append(out, DemandPoint{Time: ts, KWh: kwh})
	}
	return out, nil
}
