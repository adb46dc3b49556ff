package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"fes-bids/internal/config"
	"fes-bids/internal/data"
	"fes-bids/internal/model"
	"fes-bids/internal/pkg/logger"
)

func main() {
	var (
		cfgPath     = flag.String("config", "config.yaml", "Path to YAML config")
		outputPath  = flag.String("output", "", "Catalog output path (default: ./data/facilities.json)")
		mappingPath = flag.String("mapping", "", "Optional: write the mapped facilities as a facility_file YAML")
		dumpPath    = flag.String("vendor-dump", "", "Read facilities from a saved vendor response instead of calling the vendor")
		days        = flag.Int("days", 1, "Trading days ahead of today to query")
	)
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Development); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	if *outputPath == "" {
		*outputPath = data.DefaultCatalogPath()
	}

	day := model.TradingDayOf(time.Now().AddDate(0, 0, *days))
	resp, err := vendorResponse(context.Background(), cfg, day, *dumpPath)
	if err != nil {
		log.Fatalf("Failed to fetch facilities: %v", err)
	}

	var previous map[string]bool
	if old, err := data.LoadFacilityCatalog(*outputPath); err == nil {
		previous = make(map[string]bool, len(old.Facilities))
		for _, f := range old.Facilities {
			previous[f.ID] = true
		}
	}

	catalog := &data.FacilityCatalog{
		UpdatedAt:  time.Now().Format(time.RFC3339),
		Facilities: data.BuildCatalog(resp, cfg.Facilities),
	}
	if err := data.SaveFacilityCatalog(catalog, *outputPath); err != nil {
		log.Fatalf("Failed to save catalog: %v", err)
	}
	fmt.Printf("Saved %d facilities to %s\n", len(catalog.Facilities), *outputPath)

	for _, f := range catalog.Facilities {
		if previous != nil && !previous[f.ID] {
			fmt.Printf("  new:      %s\n", f.ID)
		}
		if f.Source != "" && f.Points == 0 {
			fmt.Printf("  missing:  %s -> %s (vendor returned no data)\n", f.ID, f.Source)
		}
	}
	if unmapped := catalog.Unmapped(); len(unmapped) > 0 {
		fmt.Printf("%d facilities are not mapped to a column: %s\n", len(unmapped), strings.Join(unmapped, ", "))
	}

	if *mappingPath != "" {
		if err := config.SaveFacilityFile(*mappingPath, cfg.Facilities); err != nil {
			log.Fatalf("Failed to save mapping: %v", err)
		}
		fmt.Printf("Saved %d mapped facilities to %s\n", len(cfg.Facilities), *mappingPath)
	}
}

// vendorResponse asks for every facility on the account: no facility filter.
func vendorResponse(ctx context.Context, cfg *config.Config, day model.TradingDay, dump string) (*model.VendorForecast, error) {
	if dump != "" {
		return data.LoadForecastJSON(dump)
	}
	if cfg.Secrets.VendorUsername == "" {
		fmt.Fprintln(os.Stderr, "VENDOR_USERNAME and VENDOR_PASSWORD are required")
		os.Exit(2)
	}
	client := data.NewClient(data.ClientConfig{
		Endpoint:  cfg.Vendor.Endpoint,
		Username:  cfg.Secrets.VendorUsername,
		Password:  cfg.Secrets.VendorPassword,
		Timeout:   cfg.Vendor.Timeout,
		Retries:   cfg.Vendor.Retries,
		RetryWait: cfg.Vendor.RetryWait,
	})
	v := cfg.Vendor
	return client.Fetch(ctx, data.DayAheadRequest(day, v.Shift(), v.VariableID, v.PredictorID, v.Percentile))
}
