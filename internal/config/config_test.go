package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fes-bids/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basePaths = `
paths:
  generation: /shares/generation
  self_forecast: /shares/self
  demand: /shares/demand
  ets_bids: /shares/ets
  traders_tables: /shares/traders
  auction: /shares/auction
  ida: /shares/ida
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", basePaths)
	t.Setenv("WAREHOUSE_DSN", "sqlserver://fabric")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", c.Vendor.VariableID)
	assert.Equal(t, 30, c.Vendor.Granularity)
	assert.Equal(t, time.Hour, c.Vendor.Shift())
	assert.Len(t, c.Facilities, len(model.DefaultFacilities))
	assert.Equal(t, "GU_504260", c.GenerationUnit().ID)
	assert.Equal(t, "SU_400130", c.SupplyUnit().ID)
	assert.Equal(t, "sqlserver://fabric", c.Warehouse.DSN)
	assert.Equal(t, model.SourceMUR, c.FacilityMap()["Vayu_GEN_504260"])
}

func TestLoadMergesFacilityFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "facilities.yaml", `
facilities:
  - id: Vayu_Cluster1
    source: Meteo ROI (MW)
  - id: Vayu_GEN_504260
    source: Meteo MUR (MW)
`)
	path := writeFile(t, dir, "config.yaml", basePaths+`
facility_file: facilities.yaml
facilities:
  - id: Vayu_Cluster1
    source: Meteo NI (MW)
  - id: Flogas-solar_0670
    source: Meteo S1 (MW)
vendor:
  timestamp_shift: 0s
`)

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Facilities, 3)
	assert.Equal(t, model.Facility{ID: "Vayu_Cluster1", Source: model.SourceNI}, c.Facilities[0])
	assert.Equal(t, "Vayu_GEN_504260", c.Facilities[1].ID)
	assert.Equal(t, "Flogas-solar_0670", c.Facilities[2].ID)
	assert.Equal(t, time.Duration(0), c.Vendor.Shift())
}

func TestValidateNamesOffendingKey(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing path",
			body: "paths:\n  generation: /g\n",
			want: "paths.self_forecast is required",
		},
		{
			name: "unknown facility column",
			body: basePaths + "facilities:\n  - id: X\n    source: Meteo XX (MW)\n",
			want: `facilities: X maps to unknown column "Meteo XX (MW)"`,
		},
		{
			name: "bad driver",
			body: basePaths + "warehouse:\n  driver: oracle\n",
			want: `warehouse.driver "oracle" is not supported`,
		},
		{
			name: "bad granularity",
			body: basePaths + "vendor:\n  granularity_minutes: 15\n",
			want: "vendor.granularity_minutes must be 30, got 15",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.body)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveFacilityFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "facilities.yaml")
	require.NoError(t, SaveFacilityFile(path, model.DefaultFacilities))

	got, err := LoadFacilityFile(path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFacilities, got)
}

func TestLoadSecretsFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "VENDOR_USERNAME=desk\nVENDOR_PASSWORD=s3cret\n")
	t.Setenv("VENDOR_USERNAME", "")
	t.Setenv("VENDOR_PASSWORD", "")
	os.Unsetenv("VENDOR_USERNAME")
	os.Unsetenv("VENDOR_PASSWORD")

	require.NoError(t, LoadDotEnv(envPath, filepath.Join(dir, "missing.env")))
	s := LoadSecrets()
	assert.Equal(t, "desk", s.VendorUsername)
	assert.Equal(t, "s3cret", s.VendorPassword)
	assert.Equal(t, "8080", s.APIPort)
}
