package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"precio-luz/internal/model"
)

// SQLiteRecorder persists price history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logrus.Entry
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logrus.Entry) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so reporting tools can read while the poller writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &SQLiteRecorder{db: db, log: log.WithField("component", "recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS hourly_prices (
			date          TEXT NOT NULL,
			hour_index    INTEGER NOT NULL,
			datetime_utc  TEXT,
			price_eur_kwh REAL NOT NULL,
			zone          TEXT,
			source        TEXT,
			recorded_at   INTEGER NOT NULL,
			PRIMARY KEY (date, hour_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hourly_date ON hourly_prices(date)`,

		`CREATE TABLE IF NOT EXISTS daily_meta (
			date               TEXT PRIMARY KEY,
			count              INTEGER,
			incomplete         INTEGER,
			min_eur_kwh        REAL,
			max_eur_kwh        REAL,
			mean_eur_kwh       REAL,
			best2h_start       INTEGER,
			best2h_total       REAL,
			best_window_start  INTEGER,
			best_window_hours  INTEGER,
			best_window_mean   REAL,
			recorded_at        INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordDay upserts the day's hours and its derived metrics in one
// transaction.
func (r *SQLiteRecorder) RecordDay(resp *model.PricesResponse, meta model.PricesMeta) error {
	if resp == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, it := range resp.Data {
		if _, err := tx.Exec(
			`INSERT INTO hourly_prices (date, hour_index, datetime_utc, price_eur_kwh, zone, source, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(date, hour_index) DO UPDATE SET
			   datetime_utc = excluded.datetime_utc,
			   price_eur_kwh = excluded.price_eur_kwh,
			   zone = excluded.zone,
			   source = excluded.source,
			   recorded_at = excluded.recorded_at`,
			resp.Date, it.HourIndex, it.DatetimeUTC, it.PriceEurKwh, it.Zone, it.Source, now,
		); err != nil {
			return fmt.Errorf("upsert hour %d: %w", it.HourIndex, err)
		}
	}

	var best2hStart, bestWindowStart, bestWindowHours any
	var best2hTotal, bestWindowMean any
	if meta.Best2h != nil {
		best2hStart, best2hTotal = meta.Best2h.StartIndex, meta.Best2h.Total
	}
	if meta.BestWindow != nil {
		bestWindowStart = meta.BestWindow.StartIndex
		bestWindowHours = meta.BestWindow.Duration
		bestWindowMean = meta.BestWindow.Mean
	}
	if _, err := tx.Exec(
		`INSERT INTO daily_meta (date, count, incomplete, min_eur_kwh, max_eur_kwh, mean_eur_kwh,
		   best2h_start, best2h_total, best_window_start, best_window_hours, best_window_mean, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   count = excluded.count,
		   incomplete = excluded.incomplete,
		   min_eur_kwh = excluded.min_eur_kwh,
		   max_eur_kwh = excluded.max_eur_kwh,
		   mean_eur_kwh = excluded.mean_eur_kwh,
		   best2h_start = excluded.best2h_start,
		   best2h_total = excluded.best2h_total,
		   best_window_start = excluded.best_window_start,
		   best_window_hours = excluded.best_window_hours,
		   best_window_mean = excluded.best_window_mean,
		   recorded_at = excluded.recorded_at`,
		resp.Date, meta.Count, boolToInt(meta.Incomplete),
		deref(meta.Min), deref(meta.Max), deref(meta.Mean),
		best2hStart, best2hTotal, bestWindowStart, bestWindowHours, bestWindowMean, now,
	); err != nil {
		return fmt.Errorf("upsert meta: %w", err)
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
