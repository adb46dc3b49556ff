package bids

import (
	"math"
	"strconv"

	"fes-bids/internal/model"
)

// DAMDateTimeLayout is how reconciliation files print period starts.
const DAMDateTimeLayout = "2006-01-02 15:04:05"

// FormatPrice prints a ladder price in its shortest form (-1500, -41.7).
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// FormatQty prints a MW quantity with one decimal.
func FormatQty(q float64) string {
	if q == 0 {
		q = 0 // drop negative zero
	}
	return strconv.FormatFloat(q, 'f', 1, 64)
}

// SubmissionHeader is the ETS header: a blank time column, Period, then the
// four ladder prices.
func SubmissionHeader(prices model.CurvePrices) []string {
	out := []string{"", "Period"}
	for _, p := range prices {
		out = append(out, FormatPrice(p))
	}
	return out
}

// SubmissionRecords encodes curves for exchange upload. Unused points are
// written empty, never as zero, and quantities keep their sign.
func SubmissionRecords(kind model.UnitKind, curves []Curve) [][]string {
	out := make([][]string, 0, len(curves))
	for _, c := range curves {
		rec := []string{submissionClock(kind, c.Period), strconv.Itoa(c.Period.Number)}
		for i := range c.Points {
			if !c.Used(i) {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, FormatQty(c.Quantity(i)))
		}
		out = append(out, rec)
	}
	return out
}

func submissionClock(kind model.UnitKind, p model.Period) string {
	if kind == model.UnitSupply {
		return p.Start.Format("15:04:05")
	}
	return p.Clock()
}

// ReconciliationHeader is the DAM auction reconciliation header.
func ReconciliationHeader() []string {
	return []string{
		"Period", "DateTime", "BuySell",
		"Curve-Price 1", "Curve-Qty 1",
		"Curve-Price 2", "Curve-Qty 2",
		"Curve-Price 3", "Curve-Qty 3",
		"Curve-Price 4", "Curve-Qty 4",
	}
}

// ReconciliationRecords encodes curves for the auction reconciliation file.
// Unused points are numeric zero. Supply quantities are magnitudes read
// together with BuySell; generation quantities keep their sign.
func ReconciliationRecords(kind model.UnitKind, curves []Curve) [][]string {
	out := make([][]string, 0, len(curves))
	for _, c := range curves {
		rec := []string{
			strconv.Itoa(c.Period.Number),
			c.Period.Start.Format(DAMDateTimeLayout),
			string(c.Direction),
		}
		for i, p := range c.Points {
			q := c.Quantity(i)
			if kind == model.UnitSupply {
				q = math.Abs(q)
			}
			rec = append(rec, FormatPrice(p.Price), FormatQty(q))
		}
		out = append(out, rec)
	}
	return out
}
