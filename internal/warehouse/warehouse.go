// Package warehouse appends generation snapshots and bid tables to the
// trading data warehouse.
package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fes-bids/internal/config"
	"fes-bids/internal/pkg/logger"

	sq "github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Upload metadata columns appended to every row.
const (
	ColUploadTimestamp = "Upload_Timestamp"
	ColRunID           = "Run_ID"
)

// maxParams keeps a single INSERT under the SQL Server parameter limit.
const maxParams = 2000

// Store appends rows to warehouse tables. Tables are never created or
// altered here; they belong to the warehouse.
type Store struct {
	db       *gorm.DB
	dialect  string
	testMode bool
	now      func() time.Time
}

// Dialector picks the gorm driver for a configured driver name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "sqlserver", "mssql":
		return sqlserver.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported warehouse driver %q", driver)
	}
}

// Open connects and pings the warehouse, retrying with exponential backoff
// until cfg.ConnectTimeout has elapsed.
func Open(ctx context.Context, cfg config.WarehouseConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("warehouse.dsn is required (or set WAREHOUSE_DSN)")
	}
	dialector, err := Dialector(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.ConnectTimeout

	var db *gorm.DB
	op := func() error {
		db, err = gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		if err != nil {
			logger.Warnf(ctx, "warehouse connect failed, retrying: %v", err)
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			logger.Warnf(ctx, "warehouse ping failed, retrying: %v", err)
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("warehouse connect: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// One connection, or each ":memory:" handle is a separate database.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	return New(db, cfg.TestMode), nil
}

// New wraps an open connection.
func New(db *gorm.DB, testMode bool) *Store {
	return &Store{db: db, dialect: db.Dialector.Name(), testMode: testMode, now: time.Now}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) TestMode() bool { return s.testMode }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Batch is a set of rows bound for one table.
type Batch struct {
	Table   string
	Columns []string
	Rows    [][]interface{}
}

// Append inserts every row of b in a single transaction. Column names carry
// dots and spaces, so identifiers are quoted here rather than by gorm.
func (s *Store) Append(ctx context.Context, b Batch) error {
	if len(b.Rows) == 0 {
		return nil
	}
	cols := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = s.quote(c)
	}
	chunk := maxParams / len(cols)
	if chunk < 1 {
		chunk = 1
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(b.Rows); start += chunk {
			end := start + chunk
			if end > len(b.Rows) {
				end = len(b.Rows)
			}
			ins := sq.Insert(s.quote(b.Table)).Columns(cols...)
			for _, r := range b.Rows[start:end] {
				if len(r) != len(cols) {
					return fmt.Errorf("table %s: row has %d values for %d columns", b.Table, len(r), len(cols))
				}
				ins = ins.Values(r...)
			}
			query, args, err := ins.ToSql()
			if err != nil {
				return err
			}
			if err := tx.Exec(query, args...).Error; err != nil {
				return fmt.Errorf("insert into %s: %w", b.Table, err)
			}
		}
		return nil
	})
}

func (s *Store) quote(ident string) string {
	switch s.dialect {
	case "sqlserver":
		return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
	case "mysql":
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
}
