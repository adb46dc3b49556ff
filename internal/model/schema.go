package model

// SchemaVersion identifies the generation snapshot column set below.
// Bump it when a source is added so older files can be told apart.
const SchemaVersion = 1

const DateTimeColumn = "DateTime"

// Source is a named generation column in a forecast snapshot, in MW.
type Source string

const (
	SourceROI          Source = "Meteo ROI (MW)"
	SourceNI           Source = "Meteo NI (MW)"
	SourceTB           Source = "Meteo TB (MW)"
	SourceCK           Source = "Meteo CK (MW)"
	SourceLD           Source = "Meteo LD (MW)"
	SourceCD           Source = "Meteo CD (MW)"
	SourceNonwind      Source = "Naïve Nonwind (MW)"
	SourceSelfForecast Source = "Self-forecast (MW)"
	SourceDT           Source = "Meteo DT (MW)"
	SourceMUR          Source = "Meteo MUR (MW)"
	SourceS1           Source = "Meteo S1 (MW)"
	SourceS2           Source = "Meteo S2 (MW)"
)

// NonwindMW is the flat naive estimate for small non-wind sites.
const NonwindMW = 0.7

// GenerationSources is the fixed, ordered column set of a snapshot.
// Any source absent from an input is zero for every period.
var GenerationSources = []Source{
	SourceROI,
	SourceNI,
	SourceTB,
	SourceCK,
	SourceLD,
	SourceCD,
	SourceNonwind,
	SourceSelfForecast,
	SourceDT,
	SourceMUR,
	SourceS1,
	SourceS2,
}

// VendorSources are the columns fed from vendor facilities.
var VendorSources = []Source{
	SourceROI,
	SourceNI,
	SourceTB,
	SourceCK,
	SourceLD,
	SourceCD,
	SourceDT,
	SourceMUR,
	SourceS1,
	SourceS2,
}

// SupplySlots is the number of numbered small-site slots (S1..S25) on the
// supply unit table. Only the first len(SolarSlotSources) are populated.
const SupplySlots = 25

var SolarSlotSources = []Source{SourceS1, SourceS2}

// GenerationColumns is the header row of a generation snapshot file.
func GenerationColumns() []string {
	cols := make([]string, 0, len(GenerationSources)+1)
	cols = append(cols, DateTimeColumn)
	for _, s := range GenerationSources {
		cols = append(cols, string(s))
	}
	return cols
}

func LookupSource(header string) (Source, bool) {
	for _, s := range GenerationSources {
		if string(s) == header {
			return s, true
		}
	}
	return "", false
}

// Constant reports whether the source is filled with a fixed value
// rather than forecast data.
func (s Source) Constant() (float64, bool) {
	if s == SourceNonwind {
		return NonwindMW, true
	}
	return 0, false
}
