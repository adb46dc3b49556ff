package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fes-bids/internal/model"
)

// FacilityStatus is one vendor facility as last seen by update-facilities.
type FacilityStatus struct {
	ID     string       `json:"id"`
	Source model.Source `json:"source,omitempty"` // empty when not mapped to a column
	Points int          `json:"points"`
}

// FacilityCatalog records which facilities the vendor currently returns.
type FacilityCatalog struct {
	UpdatedAt  string           `json:"updated_at"` // ISO 8601 timestamp
	Facilities []FacilityStatus `json:"facilities"`
}

// Unmapped lists vendor facilities that no snapshot column consumes.
func (c *FacilityCatalog) Unmapped() []string {
	var out []string
	for _, f := range c.Facilities {
		if f.Source == "" {
			out = append(out, f.ID)
		}
	}
	return out
}

// BuildCatalog pairs the facilities present in a vendor response with the
// configured mapping. Mapped facilities the vendor did not return are kept
// with zero points so they stand out.
func BuildCatalog(resp *model.VendorForecast, mapping []model.Facility) []FacilityStatus {
	grouped := GroupByFacility(resp)
	known := make(map[string]model.Source, len(mapping))
	for _, f := range mapping {
		known[f.ID] = f.Source
	}

	out := make([]FacilityStatus, 0, len(grouped)+len(mapping))
	for id, pts := range grouped {
		out = append(out, FacilityStatus{ID: id, Source: known[id], Points: len(pts)})
	}
	for _, f := range mapping {
		if _, ok := grouped[f.ID]; !ok {
			out = append(out, FacilityStatus{ID: f.ID, Source: f.Source})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadFacilityCatalog loads the catalog from a JSON file
func LoadFacilityCatalog(filePath string) (*FacilityCatalog, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read facility catalog: %w", err)
	}

	var list FacilityCatalog
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse facility catalog: %w", err)
	}
	return &list, nil
}

// SaveFacilityCatalog saves the catalog to a JSON file
func SaveFacilityCatalog(list *FacilityCatalog, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal facility catalog: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write facility catalog: %w", err)
	}
	return nil
}

// DefaultCatalogPath returns the default path for the facility catalog
func DefaultCatalogPath() string {
	if path := os.Getenv("FACILITY_CATALOG"); path != "" {
		return path
	}
	return "./data/facilities.json"
}
