package warehouse

import (
	"context"
	"fmt"

	"fes-bids/internal/adjust"
	"fes-bids/internal/aggregate"
	"fes-bids/internal/model"
	"fes-bids/internal/pkg/logger"
)

// withMeta appends the upload timestamp and, when set, the run id.
func (s *Store) withMeta(cols []string, rows [][]interface{}, runID string) ([]string, [][]interface{}) {
	ts := s.now()
	cols = append(cols, ColUploadTimestamp)
	if runID != "" {
		cols = append(cols, ColRunID)
	}
	for i := range rows {
		rows[i] = append(rows[i], ts)
		if runID != "" {
			rows[i] = append(rows[i], runID)
		}
	}
	return cols, rows
}

// GenerationBatch renders a snapshot with renamed generation columns.
func (s *Store) GenerationBatch(snap *model.Snapshot, runID string) Batch {
	renames := GenerationColumnMap()
	cols := []string{model.DateTimeColumn}
	for _, src := range model.GenerationSources {
		cols = append(cols, renames[string(src)])
	}
	rows := make([][]interface{}, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		row := []interface{}{r.Time}
		for _, src := range model.GenerationSources {
			row = append(row, r.Values[src])
		}
		rows = append(rows, row)
	}
	cols, rows = s.withMeta(cols, rows, runID)
	return Batch{Table: s.TableName(TableGeneration, snap.Lag), Columns: cols, Rows: rows}
}

// BidBatch renders a unit table. The generation unit uploads only its
// quantity; the supply unit uploads every component in warehouse order, with
// columns the table does not carry (an excluded source) sent as NULL.
func (s *Store) BidBatch(t *aggregate.Table, runID string) (Batch, error) {
	var src []string
	switch t.Unit.Kind {
	case model.UnitGeneration:
		src = []string{t.Unit.ID}
	case model.UnitSupply:
		src = append(src, supplyUploadColumns...)
		src = append(src, t.Unit.ID)
		for i := 1; i <= model.SupplySlots; i++ {
			src = append(src, fmt.Sprintf("S%d", i))
		}
	default:
		return Batch{}, fmt.Errorf("unit %s: unknown kind %q", t.Unit.ID, t.Unit.Kind)
	}

	cols := []string{model.DateTimeColumn}
	values := make([][]float64, len(src))
	for i, name := range src {
		cols = append(cols, RenameColumn(name))
		values[i], _ = t.Column(name)
	}

	rows := make([][]interface{}, 0, len(t.Periods))
	for p, period := range t.Periods {
		row := []interface{}{period.Start}
		for _, v := range values {
			if v == nil {
				row = append(row, nil)
				continue
			}
			row = append(row, v[p])
		}
		rows = append(rows, row)
	}
	cols, rows = s.withMeta(cols, rows, runID)
	return Batch{Table: s.TableName(t.Unit.TablePrefix, t.Lag), Columns: cols, Rows: rows}, nil
}

// IDABatch renders the intraday bid with the IDA-1 generation components.
// These columns keep their "(MW)" names in the warehouse.
func (s *Store) IDABatch(ida *model.Snapshot, res *adjust.Result, runID string) (Batch, error) {
	if len(ida.Rows) != len(res.Rows) {
		return Batch{}, fmt.Errorf("%w: %d forecast rows for %d adjustments", model.ErrMisaligned, len(ida.Rows), len(res.Rows))
	}
	cols := []string{model.DateTimeColumn, ColIDABid}
	for _, src := range model.GenerationSources {
		cols = append(cols, string(src))
	}
	rows := make([][]interface{}, 0, len(ida.Rows))
	for i, r := range ida.Rows {
		row := []interface{}{r.Time, res.Rows[i].Adjustment}
		for _, src := range model.GenerationSources {
			row = append(row, r.Values[src])
		}
		rows = append(rows, row)
	}
	cols, rows = s.withMeta(cols, rows, runID)
	return Batch{Table: s.TableName(TableIDABids, model.LagIDA1), Columns: cols, Rows: rows}, nil
}

// UploadGeneration appends a snapshot and returns the table it went to.
func (s *Store) UploadGeneration(ctx context.Context, snap *model.Snapshot, runID string) (string, error) {
	b := s.GenerationBatch(snap, runID)
	return b.Table, s.append(ctx, b)
}

func (s *Store) UploadBids(ctx context.Context, t *aggregate.Table, runID string) (string, error) {
	b, err := s.BidBatch(t, runID)
	if err != nil {
		return "", err
	}
	return b.Table, s.append(ctx, b)
}

func (s *Store) UploadIDA(ctx context.Context, ida *model.Snapshot, res *adjust.Result, runID string) (string, error) {
	b, err := s.IDABatch(ida, res, runID)
	if err != nil {
		return "", err
	}
	return b.Table, s.append(ctx, b)
}

func (s *Store) append(ctx context.Context, b Batch) error {
	if err := s.Append(ctx, b); err != nil {
		return err
	}
	logger.Infof(ctx, "uploaded %d rows to %s", len(b.Rows), b.Table)
	return nil
}
