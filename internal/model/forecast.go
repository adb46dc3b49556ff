package model

import "time"

// VendorForecast matches the JSON shape of a saved vendor dump.
//
// Example:
//
//	{
//	  "requested_at": "2025-01-14T06:05:00Z",
//	  "facilities": [ ... ]
//	}
type VendorForecast struct {
	RequestedAt time.Time          `json:"requested_at"`
	Facilities  []FacilityForecast `json:"facilities"`
}

// FacilityForecast is one facility's raw series as returned by the vendor.
type FacilityForecast struct {
	FacilityID string          `json:"facility_id"`
	Points     []ForecastPoint `json:"points"`
}

// ForecastPoint is one raw vendor sample. Time is the vendor's UTC
// instant. ValueKW is in kW.
type ForecastPoint struct {
	Time    time.Time `json:"time"`
	ValueKW float64   `json:"value_kw"`
}

// Facility maps a vendor facility id onto a snapshot column.
type Facility struct {
	ID     string `json:"id" yaml:"id"`
	Source Source `json:"source" yaml:"source"`
}

// DefaultFacilities is the production facility table.
var DefaultFacilities = []Facility{
	{ID: "Vayu_Cluster1", Source: SourceROI},
	{ID: "Vayu_Cluster2", Source: SourceNI},
	{ID: "Vayu_402050", Source: SourceTB},
	{ID: "Vayu_GU_402280", Source: SourceCK},
	{ID: "Flogas-solar_0587", Source: SourceLD},
	{ID: "Vayu_0275", Source: SourceCD},
	{ID: "Flogas-solar_0378__", Source: SourceDT},
	{ID: "Vayu_GEN_504260", Source: SourceMUR},
	{ID: "Flogas-solar_0670", Source: SourceS1},
	{ID: "Flogas-solar_0684", Source: SourceS2},
}
