// Package compile runs the desk's day-ahead and intraday bid workflows from
// forecast download to written files.
package compile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"fes-bids/internal/adjust"
	"fes-bids/internal/aggregate"
	"fes-bids/internal/analysis"
	"fes-bids/internal/bids"
	"fes-bids/internal/config"
	"fes-bids/internal/data"
	"fes-bids/internal/forecast"
	"fes-bids/internal/model"
	"fes-bids/internal/output"
	"fes-bids/internal/pkg/logger"
	"fes-bids/internal/report"

	"github.com/google/uuid"
)

// Run kinds.
const (
	KindDayAhead = "day-ahead"
	KindIntraday = "intraday"
)

// VendorSource fetches a raw forecast. *data.Client satisfies it.
type VendorSource interface {
	Fetch(ctx context.Context, fr data.ForecastRequest) (*model.VendorForecast, error)
}

// Uploader appends to the warehouse. *warehouse.Store satisfies it.
type Uploader interface {
	UploadGeneration(ctx context.Context, snap *model.Snapshot, runID string) (string, error)
	UploadBids(ctx context.Context, t *aggregate.Table, runID string) (string, error)
	UploadIDA(ctx context.Context, ida *model.Snapshot, res *adjust.Result, runID string) (string, error)
	Close() error
}

// Notifier mails the morning briefing. *report.Mailer satisfies it.
type Notifier interface {
	Send(ctx context.Context, b *report.Briefing, attachments ...string) error
}

type Engine struct {
	Config *config.Config
	Layout output.Layout
	Vendor VendorSource
	// OpenWarehouse is called once per run that asks for uploads. Nil
	// disables uploads.
	OpenWarehouse func(ctx context.Context) (Uploader, error)
	Mailer        Notifier

	now func() time.Time
}

func New(cfg *config.Config) *Engine {
	return &Engine{Config: cfg, Layout: output.NewLayout(cfg.Paths), now: time.Now}
}

// DayAheadRequest asks for a forecast and both units' bids for one day.
type DayAheadRequest struct {
	Day model.TradingDay
	// Lag defaults to D-N from today's date.
	Lag      model.Lag
	Upload   bool
	Briefing bool
	Email    bool
	Friday   bool
	// VendorDump, when it exists, replaces the vendor call. Otherwise the
	// fetched response is archived there.
	VendorDump string
	RunID      string
}

type IntradayRequest struct {
	Day        model.TradingDay
	Upload     bool
	VendorDump string
	RunID      string
}

// ForecastRequest builds and saves one generation snapshot.
type ForecastRequest struct {
	Day        model.TradingDay
	Lag        model.Lag
	Upload     bool
	VendorDump string
	RunID      string
}

// CompileRequest builds both units' bids from a saved snapshot.
type CompileRequest struct {
	Day    model.TradingDay
	Lag    model.Lag
	Upload bool
	RunID  string
}

func (e *Engine) newResult(kind, runID string, day model.TradingDay, lag model.Lag) *Result {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Result{RunID: runID, Kind: kind, Day: day, Lag: lag, StartedAt: e.now()}
}

func (e *Engine) resolveLag(day model.TradingDay, lag model.Lag) (model.Lag, error) {
	if lag != "" {
		return lag, nil
	}
	return model.LagFromDates(day, e.now())
}

// RunDayAhead runs the morning workflow: forecast, generation unit, supply
// unit, then the optional briefing. A unit failure stops the run; uploads,
// the briefing and the email never do.
func (e *Engine) RunDayAhead(ctx context.Context, req DayAheadRequest) (*Result, error) {
	lag, err := e.resolveLag(req.Day, req.Lag)
	if err != nil {
		return nil, model.WrapRun("lag", "", req.Day, req.Lag, err)
	}
	res := e.newResult(KindDayAhead, req.RunID, req.Day, lag)
	ctx = logger.WithFields(ctx, "run_id", res.RunID, "trading_date", req.Day.String(), "lag", lag.String())
	logger.Infof(ctx, "day-ahead run started")

	wh := e.openWarehouse(ctx, req.Upload, res)
	if wh != nil {
		defer wh.Close()
	}

	snap, err := e.forecast(ctx, res, wh, req.Day, lag, req.VendorDump)
	if err != nil {
		return res, err
	}
	if err := e.compileUnits(ctx, res, wh, snap); err != nil {
		return res, err
	}

	if req.Briefing {
		e.brief(ctx, res, req)
	}
	e.finish(ctx, res)
	return res, nil
}

// Forecast builds, saves and optionally uploads one snapshot.
func (e *Engine) Forecast(ctx context.Context, req ForecastRequest) (*Result, error) {
	lag, err := e.resolveLag(req.Day, req.Lag)
	if err != nil {
		return nil, model.WrapRun("lag", "", req.Day, req.Lag, err)
	}
	res := e.newResult(KindDayAhead, req.RunID, req.Day, lag)
	ctx = logger.WithFields(ctx, "run_id", res.RunID, "trading_date", req.Day.String(), "lag", lag.String())

	wh := e.openWarehouse(ctx, req.Upload, res)
	if wh != nil {
		defer wh.Close()
	}
	if _, err := e.forecast(ctx, res, wh, req.Day, lag, req.VendorDump); err != nil {
		return res, err
	}
	e.finish(ctx, res)
	return res, nil
}

// Compile builds both units from the snapshot already saved for the lag.
func (e *Engine) Compile(ctx context.Context, req CompileRequest) (*Result, error) {
	lag, err := e.resolveLag(req.Day, req.Lag)
	if err != nil {
		return nil, model.WrapRun("lag", "", req.Day, req.Lag, err)
	}
	res := e.newResult(KindDayAhead, req.RunID, req.Day, lag)
	ctx = logger.WithFields(ctx, "run_id", res.RunID, "trading_date", req.Day.String(), "lag", lag.String())

	path := e.Layout.GenerationSnapshot(req.Day, lag)
	snap, err := data.ReadSnapshot(path, req.Day, lag)
	res.record("load-snapshot", "", path, err)
	if err != nil {
		return res, model.WrapRun("load-snapshot", "", req.Day, lag, err)
	}
	res.SnapshotPath = path

	wh := e.openWarehouse(ctx, req.Upload, res)
	if wh != nil {
		defer wh.Close()
	}
	if err := e.compileUnits(ctx, res, wh, snap); err != nil {
		return res, err
	}
	e.finish(ctx, res)
	return res, nil
}

// RunIntraday compares a fresh IDA-1 forecast with the saved D-1 snapshot
// and writes the adjustment bid.
func (e *Engine) RunIntraday(ctx context.Context, req IntradayRequest) (*Result, error) {
	day, lag := req.Day, model.LagIDA1
	res := e.newResult(KindIntraday, req.RunID, day, lag)
	ctx = logger.WithFields(ctx, "run_id", res.RunID, "trading_date", day.String(), "lag", lag.String())
	logger.Infof(ctx, "intraday run started")

	wh := e.openWarehouse(ctx, req.Upload, res)
	if wh != nil {
		defer wh.Close()
	}

	ida, err := e.forecast(ctx, res, wh, day, lag, req.VendorDump)
	if err != nil {
		return res, err
	}

	d1Path := e.Layout.GenerationSnapshot(day, model.LagD1)
	d1, err := data.ReadSnapshot(d1Path, day, model.LagD1)
	res.record("load-d1", "", d1Path, err)
	if err != nil {
		return res, model.WrapRun("load-d1", "", day, lag, err)
	}

	adj, err := adjust.Compute(d1, ida)
	res.record("adjust", "", "", err)
	if err != nil {
		return res, model.WrapRun("adjust", "", day, lag, err)
	}
	res.Adjustment = adj
	logger.Infof(ctx, "total adjustment (D-1 - IDA-1): %.1f", adj.Total)

	idaBids, err := bids.IDABids(day.Periods(), adj.Adjustments())
	if err != nil {
		return res, model.WrapRun("ida-bids", "", day, lag, err)
	}
	res.IDABids = idaBids

	if wh != nil {
		table, err := wh.UploadIDA(ctx, ida, adj, res.RunID)
		res.record("upload", "", table, err)
		if err != nil {
			logger.Errorf(ctx, "ida1 bid upload failed: %v", err)
			res.warn("ida1 bid upload failed: %v", err)
		} else {
			res.IDAUploaded = true
		}
	}

	path := e.Layout.IDAWorkbook(day)
	err = output.WriteIDAWorkbook(path, d1, ida, adj, idaBids)
	res.record("ida-workbook", "", path, err)
	if err != nil {
		return res, model.WrapRun("ida-workbook", "", day, lag, err)
	}
	res.IDAWorkbook = path

	e.finish(ctx, res)
	return res, nil
}

func (e *Engine) openWarehouse(ctx context.Context, upload bool, res *Result) Uploader {
	if !upload {
		return nil
	}
	if e.OpenWarehouse == nil {
		res.warn("upload requested but no warehouse is configured")
		return nil
	}
	wh, err := e.OpenWarehouse(ctx)
	res.record("warehouse-connect", "", e.Config.Warehouse.Driver, err)
	if err != nil {
		logger.Errorf(ctx, "warehouse connect failed, uploads skipped: %v", err)
		res.warn("warehouse connect failed: %v", err)
		return nil
	}
	return wh
}

// forecast normalizes vendor data and the self-forecast into a snapshot,
// saves it and uploads it when a warehouse is open.
func (e *Engine) forecast(ctx context.Context, res *Result, wh Uploader, day model.TradingDay, lag model.Lag, dump string) (*model.Snapshot, error) {
	selfPath, err := data.SelfForecastLocator{
		Root:     e.Config.Paths.SelfForecast,
		Lookback: data.DefaultSelfForecastLookback,
	}.Find(day)
	res.record("self-forecast", "", selfPath, err)
	if err != nil {
		return nil, model.WrapRun("self-forecast", "", day, lag, err)
	}
	self, err := data.ReadSelfForecast(selfPath)
	if err != nil {
		return nil, model.WrapRun("self-forecast", "", day, lag, err)
	}

	raw, err := e.vendorForecast(ctx, res, day, lag, dump)
	if err != nil {
		return nil, model.WrapRun("vendor", "", day, lag, err)
	}

	n := forecast.Normalizer{Facilities: e.Config.FacilityMap(), Shift: e.Config.Vendor.Shift()}
	if err := n.CheckCoverage(day, raw); err != nil {
		logger.Warnf(ctx, "%v", err)
		res.warn("%v", err)
	}
	snap, err := n.Normalize(forecast.Input{Day: day, Lag: lag, Vendor: raw, SelfForecast: self})
	if err == nil {
		err = snap.Validate()
	}
	if err != nil {
		return nil, model.WrapRun("normalize", "", day, lag, err)
	}

	path := e.Layout.GenerationSnapshot(day, lag)
	err = data.WriteSnapshot(path, snap)
	res.record("snapshot", "", path, err)
	if err != nil {
		return nil, model.WrapRun("snapshot", "", day, lag, err)
	}
	res.SnapshotPath = path
	logger.Infof(ctx, "generation forecast saved: %s (%.1f MWh)", path, snap.TotalMWh())

	if wh != nil {
		table, err := wh.UploadGeneration(ctx, snap, res.RunID)
		res.record("upload", "", table, err)
		if err != nil {
			logger.Errorf(ctx, "generation upload failed: %v", err)
			res.warn("generation upload failed: %v", err)
		} else {
			res.GenerationUploaded = true
		}
	}
	return snap, nil
}

func (e *Engine) vendorForecast(ctx context.Context, res *Result, day model.TradingDay, lag model.Lag, dump string) (*model.VendorForecast, error) {
	if dump != "" {
		if _, err := os.Stat(dump); err == nil {
			raw, err := data.LoadForecastJSON(dump)
			res.record("vendor-dump", "", dump, err)
			return raw, err
		}
	}
	if e.Vendor == nil {
		return nil, errors.New("no vendor client configured and no vendor dump to read")
	}

	v := e.Config.Vendor
	fr := data.DayAheadRequest(day, v.Shift(), v.VariableID, v.PredictorID, v.Percentile)
	fr.FacilityIDs = facilityIDs(e.Config.FacilityMap())
	raw, err := e.Vendor.Fetch(ctx, fr)
	res.record("vendor", "", v.Endpoint, err)
	if err != nil {
		return nil, err
	}

	archive := dump
	if archive == "" {
		archive = e.Layout.VendorDump(day, lag)
	}
	if err := data.SaveForecastJSON(archive, raw); err != nil {
		logger.Warnf(ctx, "vendor response not archived: %v", err)
	}
	return raw, nil
}

func facilityIDs(m map[string]model.Source) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// compileUnits runs the generation unit then the supply unit. The first
// failing unit stops the run.
func (e *Engine) compileUnits(ctx context.Context, res *Result, wh Uploader, snap *model.Snapshot) error {
	for _, unit := range []model.Unit{e.Config.GenerationUnit(), e.Config.SupplyUnit()} {
		ur, err := e.compileUnit(logger.WithFields(ctx, "unit", unit.ID), res, wh, unit, snap)
		if err != nil {
			return err
		}
		res.Units = append(res.Units, *ur)
	}
	return nil
}

func (e *Engine) compileUnit(ctx context.Context, res *Result, wh Uploader, unit model.Unit, snap *model.Snapshot) (*UnitResult, error) {
	day, lag := snap.Day, snap.Lag
	fail := func(step string, err error) (*UnitResult, error) {
		res.record(step, unit.ID, "", err)
		return nil, model.WrapRun(step, unit.ID, day, lag, err)
	}

	var (
		table *aggregate.Table
		err   error
	)
	switch unit.Kind {
	case model.UnitGeneration:
		table, err = aggregate.BuildGeneration(unit, snap)
	case model.UnitSupply:
		demandPath := data.DemandPath(e.Config.Paths.Demand, day)
		demand, derr := data.ReadDemand(demandPath)
		if derr != nil {
			res.record("demand", unit.ID, demandPath, derr)
			return nil, model.WrapRun("demand", unit.ID, day, lag, derr)
		}
		table, err = aggregate.BuildSupply(unit, snap, demand)
	default:
		err = fmt.Errorf("unknown unit kind %q", unit.Kind)
	}
	if err != nil {
		return fail("aggregate", err)
	}

	curves, err := bids.Curves(unit, table.Periods, table.Quantities())
	if err != nil {
		return fail("curves", err)
	}

	ur := &UnitResult{
		Unit:               unit,
		Table:              table,
		Curves:             curves,
		Summary:            analysis.Summarize(unit.ID, table.Quantities()),
		SubmissionPath:     e.Layout.Submission(day, lag, unit.ID),
		TradersTablePath:   e.Layout.TradersTable(day, lag, unit.ID),
		ReconciliationPath: e.Layout.Reconciliation(day, lag, unit.ID),
	}

	writes := []struct {
		step string
		path string
		fn   func(string) error
	}{
		{"submission", ur.SubmissionPath, func(p string) error { return output.WriteSubmission(p, unit, curves) }},
		{"traders-table", ur.TradersTablePath, func(p string) error { return output.WriteTradersTable(p, table) }},
		{"reconciliation", ur.ReconciliationPath, func(p string) error { return output.WriteReconciliation(p, unit, curves) }},
	}
	for _, w := range writes {
		err := w.fn(w.path)
		res.record(w.step, unit.ID, w.path, err)
		if err != nil {
			return nil, model.WrapRun(w.step, unit.ID, day, lag, err)
		}
	}
	logger.Infof(ctx, "%s bids written: total %.1f MW, min %.1f, max %.1f",
		unit.ID, ur.Summary.Total, ur.Summary.Min, ur.Summary.Max)

	if wh != nil {
		tbl, err := wh.UploadBids(ctx, table, res.RunID)
		res.record("upload", unit.ID, tbl, err)
		ur.UploadTable = tbl
		if err != nil {
			logger.Errorf(ctx, "%s upload failed: %v", unit.ID, err)
			res.warn("%s upload failed: %v", unit.ID, err)
		} else {
			ur.Uploaded = true
		}
	}
	return ur, nil
}

// brief writes the briefing workbook and sends the email. Failures are
// logged and recorded, never returned.
func (e *Engine) brief(ctx context.Context, res *Result, req DayAheadRequest) {
	b, err := report.LoadBriefing(ctx, e.Layout, req.Day, req.Friday)
	if err != nil {
		res.record("briefing", "", "", err)
		logger.Errorf(ctx, "briefing skipped: %v", err)
		res.warn("briefing skipped: %v", err)
		return
	}
	for _, u := range res.Units {
		b.Tables = append(b.Tables, u.Table)
	}

	path := e.Layout.Briefing(req.Day)
	err = report.WriteBriefing(path, b)
	res.record("briefing", "", path, err)
	if err != nil {
		logger.Errorf(ctx, "briefing failed: %v", err)
		res.warn("briefing failed: %v", err)
		return
	}
	res.BriefingPath = path

	if !req.Email {
		return
	}
	if e.Mailer == nil {
		res.warn("email requested but no SMTP host is configured")
		return
	}
	err = e.Mailer.Send(ctx, b, e.Layout.GenerationSnapshot(req.Day, model.LagD1), path)
	res.record("email", "", "", err)
	if err != nil {
		logger.Errorf(ctx, "email failed: %v", err)
		res.warn("email failed: %v", err)
		return
	}
	res.Emailed = true
}

func (e *Engine) finish(ctx context.Context, res *Result) {
	res.FinishedAt = e.now()
	logger.Infof(ctx, "%s run finished in %s with %d warnings", res.Kind, res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond), len(res.Warnings))
}
