// Package bids derives the four-point bid curves for each unit and encodes
// them for exchange submission and for auction reconciliation.
package bids

import (
	"fmt"
	"math"

	"fes-bids/internal/model"
)

// Point is one price/quantity pair. A nil Qty marks a point the unit does not use.
type Point struct {
	Price float64
	Qty   *float64
}

// Curve is the canonical bid for one period. Quantities keep the sign of the
// net bid quantity; encoders decide how unused points and signs are written.
type Curve struct {
	Period    model.Period
	Direction model.Direction
	Points    [4]Point
}

// Quantity returns point i's quantity, zero when unused.
func (c Curve) Quantity(i int) float64 {
	if q := c.Points[i].Qty; q != nil {
		return *q
	}
	return 0
}

// Used reports whether point i carries a quantity.
func (c Curve) Used(i int) bool {
	return c.Points[i].Qty != nil
}

// GenerationCurve places q on points 3 and 4. The generation unit only
// sells, so a positive q is rejected.
func GenerationCurve(p model.Period, prices model.CurvePrices, q float64) (Curve, error) {
	if q > 0 || math.IsNaN(q) {
		return Curve{}, fmt.Errorf("%w: generation quantity %.1f in period %d must be <= 0", model.ErrInvalidQuantity, q, p.Number)
	}
	c := Curve{Period: p, Direction: model.DirectionSell}
	for i := range c.Points {
		c.Points[i].Price = prices[i]
	}
	c.Points[2].Qty = ptr(q)
	c.Points[3].Qty = ptr(q)
	return c, nil
}

// SupplyCurve places a sell quantity on points 3 and 4 and a buy quantity
// (zero included) on points 1 and 2.
func SupplyCurve(p model.Period, prices model.CurvePrices, q float64) (Curve, error) {
	if math.IsNaN(q) {
		return Curve{}, fmt.Errorf("%w: supply quantity is NaN in period %d", model.ErrInvalidQuantity, p.Number)
	}
	c := Curve{Period: p, Direction: model.DirectionFromQuantity(q)}
	for i := range c.Points {
		c.Points[i].Price = prices[i]
	}
	if c.Direction == model.DirectionSell {
		c.Points[2].Qty = ptr(q)
		c.Points[3].Qty = ptr(q)
	} else {
		c.Points[0].Qty = ptr(q)
		c.Points[1].Qty = ptr(q)
	}
	return c, nil
}

// Curves builds one curve per period for the unit. Only the 48 period rows
// are used; totals never reach here.
func Curves(unit model.Unit, periods []model.Period, q []float64) ([]Curve, error) {
	if len(periods) != len(q) {
		return nil, fmt.Errorf("%w: %d periods but %d quantities", model.ErrMisaligned, len(periods), len(q))
	}
	build := SupplyCurve
	switch unit.Kind {
	case model.UnitGeneration:
		build = GenerationCurve
	case model.UnitSupply:
	default:
		return nil, fmt.Errorf("unit %s: unknown kind %q", unit.ID, unit.Kind)
	}

	out := make([]Curve, len(q))
	for i, v := range q {
		c, err := build(periods[i], unit.Prices, v)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func ptr(v float64) *float64 { return &v }
