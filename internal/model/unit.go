package model

import (
	"errors"
	"fmt"
)

// UnitKind separates the single-source generator from the netted supplier.
type UnitKind string

const (
	UnitGeneration UnitKind = "generation"
	UnitSupply     UnitKind = "supply"
)

// Unit describes one bidding unit.
// Units:
// - UnmeteredMW, NonQuarterHourMW: MW, added to demand every period
// - Prices: €/MWh for the four curve points
type Unit struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Kind        UnitKind `json:"kind" yaml:"kind"`
	TablePrefix string   `json:"table_prefix" yaml:"table_prefix"`

	// Generation units trade exactly one source column.
	Source Source `json:"source,omitempty" yaml:"source,omitempty"`

	// Supply units net demand against every generation source except these.
	Exclude          []Source `json:"exclude,omitempty" yaml:"exclude_sources,omitempty"`
	UnmeteredMW      float64  `json:"unmetered_mw,omitempty" yaml:"unmetered_mw"`
	NonQuarterHourMW float64  `json:"non_quarter_hour_mw,omitempty" yaml:"non_quarter_hour_mw"`

	Prices CurvePrices `json:"prices" yaml:"prices"`
}

// CurvePrices are the four fixed price points of a unit's bid curve.
type CurvePrices [4]float64

// Default unit set traded by the desk.
var (
	GenerationUnit = Unit{
		ID:          "GU_504260",
		Name:        "Murley",
		Kind:        UnitGeneration,
		TablePrefix: "Bids_Murley",
		Source:      SourceMUR,
		Prices:      CurvePrices{-1500, -41.7, -41.7, 9000},
	}
	SupplyUnit = Unit{
		ID:          "SU_400130",
		Name:        "Supply",
		Kind:        UnitSupply,
		TablePrefix: "Bids_SU",
		Exclude:     []Source{SourceMUR},
		UnmeteredMW: 0.5,
		Prices:      CurvePrices{-500, 500, 500, 4000},
	}
)

func DefaultUnits() []Unit {
	return []Unit{GenerationUnit, SupplyUnit}
}

func (u Unit) Validate() error {
	if u.ID == "" {
		return errors.New("unit id must be set")
	}
	if u.TablePrefix == "" {
		return fmt.Errorf("unit %s: table_prefix must be set", u.ID)
	}
	switch u.Kind {
	case UnitGeneration:
		if _, ok := LookupSource(string(u.Source)); !ok {
			return fmt.Errorf("unit %s: unknown source %q", u.ID, u.Source)
		}
	case UnitSupply:
		for _, s := range u.Exclude {
			if _, ok := LookupSource(string(s)); !ok {
				return fmt.Errorf("unit %s: unknown excluded source %q", u.ID, s)
			}
		}
		if u.UnmeteredMW < 0 || u.NonQuarterHourMW < 0 {
			return fmt.Errorf("unit %s: unmetered/NQH load must be >= 0", u.ID)
		}
	default:
		return fmt.Errorf("unit %s: kind must be %q or %q", u.ID, UnitGeneration, UnitSupply)
	}
	return nil
}

// Excludes reports whether the supply unit leaves s out of its netting.
func (u Unit) Excludes(s Source) bool {
	for _, e := range u.Exclude {
		if e == s {
			return true
		}
	}
	return false
}
