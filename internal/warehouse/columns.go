package warehouse

import (
	"fmt"
	"strings"

	"fes-bids/internal/aggregate"
	"fes-bids/internal/model"
)

// Warehouse table bases; the lag suffix or the test prefix is added by TableName.
const (
	TableGeneration = "Generation"
	TableIDABids    = "ida1_bids"
)

const ColIDABid = "IDA1_Bid_MW"

// RenameColumn applies the warehouse convention: "X (MW)" becomes "X _MW_".
func RenameColumn(name string) string {
	return strings.ReplaceAll(name, "(MW)", "_MW_")
}

// GenerationColumnMap maps every generation column the warehouse knows,
// including solar slots S3..S25 that no facility feeds yet.
func GenerationColumnMap() map[string]string {
	m := map[string]string{model.DateTimeColumn: model.DateTimeColumn}
	for _, s := range model.GenerationSources {
		m[string(s)] = RenameColumn(string(s))
	}
	for i := 3; i <= model.SupplySlots; i++ {
		src := fmt.Sprintf("Meteo S%d (MW)", i)
		m[src] = RenameColumn(src)
	}
	return m
}

// supplyUploadColumns is the fixed warehouse column order for the supply
// table, before the S1..S25 slots.
var supplyUploadColumns = []string{
	aggregate.ColDemand,
	aggregate.ColNonQuarterHour,
	aggregate.ColUnmetered,
	aggregate.SupplyLabel(model.SourceROI),
	aggregate.SupplyLabel(model.SourceNI),
	aggregate.SupplyLabel(model.SourceTB),
	aggregate.SupplyLabel(model.SourceCK),
	aggregate.SupplyLabel(model.SourceLD),
	aggregate.SupplyLabel(model.SourceCD),
	aggregate.SupplyLabel(model.SourceNonwind),
	aggregate.SupplyLabel(model.SourceSelfForecast),
	aggregate.SupplyLabel(model.SourceDT),
	aggregate.ColTradingQty,
}

// TableName routes by lag: D-1 goes to the _D_Minus_1 table and every other
// lag to _D_Minus_X. Test mode writes to test_<base> instead.
func (s *Store) TableName(base string, lag model.Lag) string {
	if s.testMode {
		return "test_" + base
	}
	if base == TableIDABids {
		return base
	}
	return base + lag.TableSuffix()
}
