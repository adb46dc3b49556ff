package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fes-bids/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load the vendor facility table from a separate YAML (see cmd/update-facilities).
	// Entries under facilities override entries with the same id from the file.
	FacilityFile string           `yaml:"facility_file"`
	Facilities   []model.Facility `yaml:"facilities"`

	Paths     PathsConfig     `yaml:"paths"`
	Vendor    VendorConfig    `yaml:"vendor"`
	Units     []model.Unit    `yaml:"units"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Email     EmailConfig     `yaml:"email"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Secrets never live in YAML.
	Secrets Secrets `yaml:"-"`
}

// PathsConfig holds the share roots every input and output path is derived from.
type PathsConfig struct {
	Generation    string `yaml:"generation"`
	SelfForecast  string `yaml:"self_forecast"`
	Demand        string `yaml:"demand"`
	ETSBids       string `yaml:"ets_bids"`
	TradersTables string `yaml:"traders_tables"`
	Auction       string `yaml:"auction"`
	IDA           string `yaml:"ida"`
	Output        string `yaml:"output"`
}

type VendorConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
	RetryWait   time.Duration `yaml:"retry_wait"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	VariableID  string        `yaml:"variable_id"`
	PredictorID string        `yaml:"predictor_id"`
	Granularity int           `yaml:"granularity_minutes"`
	Percentile  int           `yaml:"percentile"`
	// TimestampShift is added to vendor UTC instants to get local wall-clock
	// period starts. Unset means one hour.
	TimestampShift *time.Duration `yaml:"timestamp_shift"`
}

type WarehouseConfig struct {
	Driver         string        `yaml:"driver"`
	DSN            string        `yaml:"dsn"`
	TestMode       bool          `yaml:"test_mode"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type EmailConfig struct {
	Host string   `yaml:"host"`
	Port int      `yaml:"port"`
	From string   `yaml:"from"`
	To   []string `yaml:"to"`
	Cc   []string `yaml:"cc"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

const DefaultTimestampShift = time.Hour

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	c.Secrets = LoadSecrets()
	if c.Secrets.WarehouseDSN != "" {
		c.Warehouse.DSN = c.Secrets.WarehouseDSN
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.FacilityFile != "" {
		facilityPath := c.FacilityFile
		if !filepath.IsAbs(facilityPath) {
			// Prefer paths relative to the config file, then cwd.
			cand := filepath.Join(filepath.Dir(path), facilityPath)
			if _, err := os.Stat(cand); err == nil {
				facilityPath = cand
			}
		}
		loaded, err := LoadFacilityFile(facilityPath)
		if err != nil {
			return nil, err
		}
		c.Facilities = MergeFacilities(loaded, c.Facilities)
	}
	return &c, nil
}

// ApplyDefaults fills everything an operator would not normally set.
func (c *Config) ApplyDefaults() {
	if len(c.Facilities) == 0 {
		c.Facilities = append([]model.Facility(nil), model.DefaultFacilities...)
	}
	if len(c.Units) == 0 {
		c.Units = model.DefaultUnits()
	}
	v := &c.Vendor
	if v.Endpoint == "" {
		v.Endpoint = "https://api.meteologica.com/api/MeteologicaDataExchangeService.php"
	}
	if v.Timeout == 0 {
		v.Timeout = 60 * time.Second
	}
	if v.Retries == 0 {
		v.Retries = 3
	}
	if v.RetryWait == 0 {
		v.RetryWait = 5 * time.Second
	}
	if v.VariableID == "" {
		v.VariableID = "prod"
	}
	if v.PredictorID == "" {
		v.PredictorID = "aggregated"
	}
	if v.Granularity == 0 {
		v.Granularity = 30
	}
	if v.Percentile == 0 {
		v.Percentile = 50
	}
	if v.TimestampShift == nil {
		shift := DefaultTimestampShift
		v.TimestampShift = &shift
	}
	if c.Warehouse.Driver == "" {
		c.Warehouse.Driver = "sqlserver"
	}
	if c.Warehouse.ConnectTimeout == 0 {
		c.Warehouse.ConnectTimeout = 30 * time.Second
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	required := []struct {
		key, val string
	}{
		{"paths.generation", c.Paths.Generation},
		{"paths.self_forecast", c.Paths.SelfForecast},
		{"paths.demand", c.Paths.Demand},
		{"paths.ets_bids", c.Paths.ETSBids},
		{"paths.traders_tables", c.Paths.TradersTables},
		{"paths.auction", c.Paths.Auction},
		{"paths.ida", c.Paths.IDA},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	if c.Vendor.Timeout < 0 || c.Vendor.Retries < 0 {
		return errors.New("vendor.timeout and vendor.retries must be >= 0")
	}
	if c.Vendor.Granularity != 30 {
		return fmt.Errorf("vendor.granularity_minutes must be 30, got %d", c.Vendor.Granularity)
	}
	seen := map[string]bool{}
	for _, f := range c.Facilities {
		if f.ID == "" {
			return errors.New("facilities: id is required")
		}
		if _, ok := model.LookupSource(string(f.Source)); !ok {
			return fmt.Errorf("facilities: %s maps to unknown column %q", f.ID, f.Source)
		}
		if seen[f.ID] {
			return fmt.Errorf("facilities: duplicate id %s", f.ID)
		}
		seen[f.ID] = true
	}
	var gen, sup int
	for _, u := range c.Units {
		if err := u.Validate(); err != nil {
			return fmt.Errorf("units: %w", err)
		}
		switch u.Kind {
		case model.UnitGeneration:
			gen++
		case model.UnitSupply:
			sup++
		}
	}
	if gen != 1 || sup != 1 {
		return fmt.Errorf("units: need exactly one generation and one supply unit, got %d and %d", gen, sup)
	}
	switch strings.ToLower(c.Warehouse.Driver) {
	case "sqlserver", "mssql", "postgres", "postgresql", "mysql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("warehouse.driver %q is not supported", c.Warehouse.Driver)
	}
	return nil
}

// Shift returns the configured vendor timestamp shift.
func (v VendorConfig) Shift() time.Duration {
	if v.TimestampShift == nil {
		return DefaultTimestampShift
	}
	return *v.TimestampShift
}

func (c *Config) GenerationUnit() model.Unit {
	return c.unitOfKind(model.UnitGeneration)
}

func (c *Config) SupplyUnit() model.Unit {
	return c.unitOfKind(model.UnitSupply)
}

func (c *Config) unitOfKind(kind model.UnitKind) model.Unit {
	for _, u := range c.Units {
		if u.Kind == kind {
			return u
		}
	}
	return model.Unit{}
}

// FacilityMap maps vendor facility ids onto snapshot columns.
func (c *Config) FacilityMap() map[string]model.Source {
	out := make(map[string]model.Source, len(c.Facilities))
	for _, f := range c.Facilities {
		out[f.ID] = f.Source
	}
	return out
}

type facilityFileWrapper struct {
	Facilities []model.Facility `yaml:"facilities"`
}

func LoadFacilityFile(path string) ([]model.Facility, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w facilityFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Facilities, nil
}

func SaveFacilityFile(path string, facilities []model.Facility) error {
	raw, err := yaml.Marshal(facilityFileWrapper{Facilities: facilities})
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0o644)
}

// MergeFacilities overlays override onto base by facility id, keeping base order
// and appending ids that only appear in override.
func MergeFacilities(base, override []model.Facility) []model.Facility {
	out := append([]model.Facility(nil), base...)
	index := make(map[string]int, len(out))
	for i, f := range out {
		index[f.ID] = i
	}
	for _, f := range override {
		if i, ok := index[f.ID]; ok {
			if f.Source != "" {
				out[i].Source = f.Source
			}
			continue
		}
		index[f.ID] = len(out)
		out = append(out, f)
	}
	return out
}
