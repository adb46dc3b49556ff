package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fes-bids/internal/model"
)

// LoadForecastJSON reads a vendor response archived with SaveForecastJSON,
// so a day can be recompiled without calling the vendor.
func LoadForecastJSON(path string) (*model.VendorForecast, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var resp model.VendorForecast
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &resp, nil
}

func SaveForecastJSON(path string, resp *model.VendorForecast) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// GroupByFacility indexes a response by facility id. A facility listed
// twice has its points concatenated.
func GroupByFacility(resp *model.VendorForecast) map[string][]model.ForecastPoint {
	out := map[string][]model.ForecastPoint{}
	if resp == nil {
		return out
	}
	for _, f := range resp.Facilities {
		out[f.FacilityID] = append(out[f.FacilityID], f.Points...)
	}
	return out
}
