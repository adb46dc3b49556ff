package compile

import (
	"context"

	"fes-bids/internal/config"
	"fes-bids/internal/data"
	"fes-bids/internal/pkg/logger"
	"fes-bids/internal/report"
	"fes-bids/internal/warehouse"
)

// Wire builds an engine backed by the vendor client, the warehouse named by
// cfg and the SMTP mailer. A missing DSN or SMTP host leaves that part off.
func Wire(cfg *config.Config) *Engine {
	e := New(cfg)
	e.Vendor = data.NewClient(data.ClientConfig{
		Endpoint:  cfg.Vendor.Endpoint,
		Username:  cfg.Secrets.VendorUsername,
		Password:  cfg.Secrets.VendorPassword,
		Timeout:   cfg.Vendor.Timeout,
		Retries:   cfg.Vendor.Retries,
		RetryWait: cfg.Vendor.RetryWait,
		Cache:     data.NewResponseCache(cfg.Vendor.CacheTTL),
	})

	if cfg.Warehouse.DSN != "" {
		wcfg := cfg.Warehouse
		e.OpenWarehouse = func(ctx context.Context) (Uploader, error) {
			st, err := warehouse.Open(ctx, wcfg)
			if err != nil {
				return nil, err
			}
			if st.TestMode() {
				logger.Warnf(ctx, "warehouse test mode: rows go to test_ tables")
			}
			return st, nil
		}
	}

	// Keep Mailer a nil interface when SMTP is not configured.
	if m := report.NewMailer(cfg.Email, cfg.Secrets); m != nil {
		e.Mailer = m
	}
	return e
}
