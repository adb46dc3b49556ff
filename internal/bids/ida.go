package bids

import (
	"strconv"

	"fes-bids/internal/model"
)

// IDAHeader is the intraday auction bid header. Both price columns carry
// the same adjustment quantity.
var IDAHeader = []string{"period", "-150", "3000.00"}

// IDABid is one period of the intraday adjustment bid.
type IDABid struct {
	Period model.Period
	Qty    float64
}

// IDABids pairs each period with its adjustment. The value is used as is on
// both ladder points: no sign split and no magnitude.
func IDABids(periods []model.Period, adjustment []float64) ([]IDABid, error) {
	if len(periods) != len(adjustment) {
		return nil, model.ErrMisaligned
	}
	out := make([]IDABid, len(periods))
	for i, p := range periods {
		out[i] = IDABid{Period: p, Qty: adjustment[i]}
	}
	return out, nil
}

// IDARecords renders the bids followed by a total row with an empty period.
func IDARecords(bids []IDABid) [][]string {
	out := make([][]string, 0, len(bids)+1)
	vals := make([]float64, 0, len(bids))
	for _, b := range bids {
		q := FormatQty(b.Qty)
		out = append(out, []string{strconv.Itoa(b.Period.Number), q, q})
		vals = append(vals, b.Qty)
	}
	total := FormatQty(model.Round1(model.Sum(vals)))
	return append(out, []string{"", total, total})
}
