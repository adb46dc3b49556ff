package model

// Direction is the trade side of a bid period.
// Keep these values stable; they are written to reconciliation CSVs.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// DirectionFromQuantity follows the sign convention: negative quantity
// is energy offered to the market. Zero counts as BUY.
func DirectionFromQuantity(q float64) Direction {
	if q < 0 {
		return DirectionSell
	}
	return DirectionBuy
}
