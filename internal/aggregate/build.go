package aggregate

import (
	"fmt"

	"fes-bids/internal/data"
	"fes-bids/internal/model"
)

// BuildGeneration negates the unit's source column so that expected output
// becomes a sell quantity.
func BuildGeneration(unit model.Unit, snap *model.Snapshot) (*Table, error) {
	if unit.Kind != model.UnitGeneration {
		return nil, fmt.Errorf("unit %s is not a generation unit", unit.ID)
	}
	if snap == nil {
		return nil, fmt.Errorf("unit %s: snapshot is nil", unit.ID)
	}
	periods := snap.Day.Periods()
	joined := joinSnapshot(periods, snap)

	q := make([]float64, len(periods))
	for i, vals := range joined {
		q[i] = model.Round1(-vals[unit.Source])
	}

	t := &Table{
		Unit:    unit,
		Day:     snap.Day,
		Lag:     snap.Lag,
		Periods: periods,
		Columns: []Column{{Name: unit.ID, Values: q}},
	}
	return t, t.validate()
}

// BuildSupply nets the demand forecast against every generation source the
// unit does not exclude. Each component is rounded before the sum, and the
// sum is rounded again.
func BuildSupply(unit model.Unit, snap *model.Snapshot, demand []data.DemandPoint) (*Table, error) {
	if unit.Kind != model.UnitSupply {
		return nil, fmt.Errorf("unit %s is not a supply unit", unit.ID)
	}
	if snap == nil {
		return nil, fmt.Errorf("unit %s: snapshot is nil", unit.ID)
	}
	periods := snap.Day.Periods()
	joined := joinSnapshot(periods, snap)

	demandByKey := make(map[string]float64, len(demand))
	for _, d := range demand {
		k := model.Key(d.Time)
		if _, dup := demandByKey[k]; dup {
			continue
		}
		demandByKey[k] = d.KWh
	}

	n := len(periods)
	cols := []Column{
		{Name: ColDemand, Values: make([]float64, n)},
		{Name: ColNonQuarterHour, Values: make([]float64, n)},
		{Name: ColUnmetered, Values: make([]float64, n)},
	}
	for i, p := range periods {
		cols[0].Values[i] = model.Round1(demandByKey[p.Key()] * 2 / 1000)
		cols[1].Values[i] = unit.NonQuarterHourMW
		cols[2].Values[i] = unit.UnmeteredMW
	}

	// Non-slot sources in schema order, then the numbered S slots.
	slot := map[model.Source]bool{}
	for _, s := range model.SolarSlotSources {
		slot[s] = true
	}
	for _, s := range model.GenerationSources {
		if slot[s] || unit.Excludes(s) {
			continue
		}
		cols = append(cols, negated(SupplyLabel(s), s, joined))
	}
	for i := 1; i <= model.SupplySlots; i++ {
		name := fmt.Sprintf("S%d", i)
		if i <= len(model.SolarSlotSources) {
			s := model.SolarSlotSources[i-1]
			if !unit.Excludes(s) {
				cols = append(cols, negated(name, s, joined))
				continue
			}
		}
		cols = append(cols, Column{Name: name, Values: make([]float64, n)})
	}

	q := make([]float64, n)
	parts := make([]float64, len(cols))
	for i := range q {
		for j, c := range cols {
			parts[j] = c.Values[i]
		}
		q[i] = model.Round1(model.Sum(parts))
	}
	cols = append(cols,
		Column{Name: ColTradingQty, Values: q},
		Column{Name: unit.ID, Values: append([]float64(nil), q...)},
	)

	t := &Table{
		Unit:    unit,
		Day:     snap.Day,
		Lag:     snap.Lag,
		Periods: periods,
		Columns: cols,
	}
	return t, t.validate()
}

func negated(name string, s model.Source, joined []map[model.Source]float64) Column {
	vals := make([]float64, len(joined))
	for i, v := range joined {
		vals[i] = model.Round1(-v[s])
	}
	return Column{Name: name, Values: vals}
}
