package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"fes-bids/internal/compile"
	"fes-bids/internal/config"
	"fes-bids/internal/model"
	"fes-bids/internal/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "forecast":
		cmdForecast(os.Args[2:])
	case "compile":
		cmdCompile(os.Args[2:])
	case "ida1":
		cmdIntraday(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli forecast --date 07/02/2025 [--lag D-1] [--upload] [--vendor-dump raw.json]")
	fmt.Println("  cli compile  --date 07/02/2025 [--lag D-1] [--upload]")
	fmt.Println("  cli ida1     --date 07/02/2025 [--upload]")
	fmt.Println("  cli run      --date 07/02/2025 [--lag D-1] [--upload] [--briefing] [--email] [--friday]")
	fmt.Println("")
	fmt.Println("common flags: --config config.yaml --ledger run.csv")
	fmt.Println("notes:")
	fmt.Println("  - --date defaults to tomorrow (today for ida1); --lag defaults to D-N from today")
	fmt.Println("  - --vendor-dump replays a saved vendor response when the file exists, else archives to it")
}

// flags shared by every subcommand.
type common struct {
	date   *string
	cfg    *string
	ledger *string
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		date:   fs.String("date", "", "Trading date dd/mm/YYYY"),
		cfg:    fs.String("config", envOr("FES_CONFIG", "config.yaml"), "Path to YAML config"),
		ledger: fs.String("ledger", "", "Optional: write the run ledger CSV here"),
	}
}

func cmdForecast(args []string) {
	fs := flag.NewFlagSet("forecast", flag.ExitOnError)
	c := commonFlags(fs)
	lag := fs.String("lag", "", "Lag label (D-1, D-2, ...)")
	upload := fs.Bool("upload", false, "Append the snapshot to the warehouse")
	dump := fs.String("vendor-dump", "", "Vendor response JSON to replay or archive")
	_ = fs.Parse(args)

	ctx, engine := setup(*c.cfg)
	res, err := engine.Forecast(ctx, compile.ForecastRequest{
		Day:        tradingDay(ctx, *c.date, 1),
		Lag:        parseLag(ctx, *lag),
		Upload:     *upload,
		VendorDump: *dump,
	})
	report(ctx, res, err, *c.ledger)
}

func cmdCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	c := commonFlags(fs)
	lag := fs.String("lag", "", "Lag of the saved snapshot to compile")
	upload := fs.Bool("upload", false, "Append both units' bids to the warehouse")
	_ = fs.Parse(args)

	ctx, engine := setup(*c.cfg)
	res, err := engine.Compile(ctx, compile.CompileRequest{
		Day:    tradingDay(ctx, *c.date, 1),
		Lag:    parseLag(ctx, *lag),
		Upload: *upload,
	})
	report(ctx, res, err, *c.ledger)
}

func cmdIntraday(args []string) {
	fs := flag.NewFlagSet("ida1", flag.ExitOnError)
	c := commonFlags(fs)
	upload := fs.Bool("upload", false, "Append the snapshot and IDA1 bids to the warehouse")
	dump := fs.String("vendor-dump", "", "Vendor response JSON to replay or archive")
	_ = fs.Parse(args)

	ctx, engine := setup(*c.cfg)
	res, err := engine.RunIntraday(ctx, compile.IntradayRequest{
		Day:        tradingDay(ctx, *c.date, 0),
		Upload:     *upload,
		VendorDump: *dump,
	})
	report(ctx, res, err, *c.ledger)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	c := commonFlags(fs)
	lag := fs.String("lag", "", "Lag label (D-1, D-2, ...)")
	upload := fs.Bool("upload", false, "Append snapshot and bids to the warehouse")
	briefing := fs.Bool("briefing", false, "Write the forecast briefing workbook")
	email := fs.Bool("email", false, "Mail the briefing (implies --briefing)")
	friday := fs.Bool("friday", false, "Add the weekend forecasts to the briefing")
	dump := fs.String("vendor-dump", "", "Vendor response JSON to replay or archive")
	_ = fs.Parse(args)

	ctx, engine := setup(*c.cfg)
	res, err := engine.RunDayAhead(ctx, compile.DayAheadRequest{
		Day:        tradingDay(ctx, *c.date, 1),
		Lag:        parseLag(ctx, *lag),
		Upload:     *upload,
		Briefing:   *briefing || *email,
		Email:      *email,
		Friday:     *friday,
		VendorDump: *dump,
	})
	report(ctx, res, err, *c.ledger)
}

func setup(cfgPath string) (context.Context, *compile.Engine) {
	ctx := context.Background()
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Development); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	return ctx, compile.Wire(cfg)
}

func tradingDay(ctx context.Context, s string, offsetDays int) model.TradingDay {
	if s == "" {
		return model.TradingDayOf(time.Now().AddDate(0, 0, offsetDays))
	}
	day, err := model.ParseTradingDay(s)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	return day
}

// parseLag leaves an empty flag empty so the engine derives it.
func parseLag(ctx context.Context, s string) model.Lag {
	if s == "" {
		return ""
	}
	lag, err := model.ParseLag(s)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	return lag
}

func report(ctx context.Context, res *compile.Result, err error, ledgerPath string) {
	defer logger.Sync()
	if res != nil && ledgerPath != "" {
		if lerr := compile.WriteLedgerCSV(ledgerPath, res); lerr != nil {
			logger.Errorf(ctx, "write ledger: %v", lerr)
		}
	}
	if err != nil {
		logger.Errorf(ctx, "run failed: %v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("run %s (%s) %s %s\n", res.RunID, res.Kind, res.Day, res.Lag)
	if res.SnapshotPath != "" {
		fmt.Printf("  snapshot       %s\n", res.SnapshotPath)
	}
	for _, u := range res.Units {
		fmt.Printf("  %-14s total %.1f MW  min %.1f  max %.1f  uploaded=%t\n",
			u.Unit.ID, u.Summary.Total, u.Summary.Min, u.Summary.Max, u.Uploaded)
		fmt.Printf("    %s\n    %s\n    %s\n", u.SubmissionPath, u.TradersTablePath, u.ReconciliationPath)
	}
	if res.Adjustment != nil {
		fmt.Printf("  adjustment     total %.1f MW  uploaded=%t\n", res.Adjustment.Total, res.IDAUploaded)
		fmt.Printf("    %s\n", res.IDAWorkbook)
	}
	if res.BriefingPath != "" {
		fmt.Printf("  briefing       %s emailed=%t\n", res.BriefingPath, res.Emailed)
	}
	for _, w := range res.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
