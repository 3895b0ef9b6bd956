package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockChartViewer/internal/model"
)

const dateLayout = time.DateOnly

// SQLiteRecorder persists bars and chart history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_bars (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume INTEGER,
			PRIMARY KEY (symbol, date)
		)`,

		`CREATE TABLE IF NOT EXISTS fetched_ranges (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date   TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ranges_symbol ON fetched_ranges(symbol)`,

		`CREATE TABLE IF NOT EXISTS chart_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			start_date  TEXT,
			end_date    TEXT,
			interval    TEXT,
			bars        INTEGER,
			source      TEXT,
			output_path TEXT,
			last_close  REAL,
			last_macd   REAL,
			last_signal REAL,
			last_rsi    REAL,
			bias        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chart_ts ON chart_history(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// CoversRange reports whether [start, end] was fully fetched before.
func (r *SQLiteRecorder) CoversRange(symbol string, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM fetched_ranges
		WHERE symbol = ? AND start_date <= ? AND end_date >= ?`,
		symbol, start.Format(dateLayout), end.Format(dateLayout),
	).Scan(&n)
	return n > 0, err
}

func (r *SQLiteRecorder) LoadBars(symbol string, start, end time.Time) ([]model.PriceBar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT date, open, high, low, close, volume FROM price_bars
		WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date`,
		symbol, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		var b model.PriceBar
		var date string
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		if b.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func (r *SQLiteRecorder) SaveBars(symbol string, start, end time.Time, bars []model.PriceBar) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO price_bars (symbol, date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(symbol, b.Date.Format(dateLayout), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("upsert bar %s: %w", b.Date.Format(dateLayout), err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO fetched_ranges (symbol, start_date, end_date, fetched_at) VALUES (?,?,?,?)`,
		symbol, start.Format(dateLayout), end.Format(dateLayout), time.Now().Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordChart(evt *ChartEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO chart_history
		(timestamp, symbol, start_date, end_date, interval, bars, source, output_path,
		 last_close, last_macd, last_signal, last_rsi, bias)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), evt.Symbol, evt.Start.Format(dateLayout), evt.End.Format(dateLayout),
		evt.Interval, evt.Bars, evt.Source, evt.OutputPath,
		evt.LastClose, nullable(evt.LastMACD), nullable(evt.LastSignal), nullable(evt.LastRSI), evt.Bias,
	)
	return err
}

// RecentCharts returns the newest chart events first.
func (r *SQLiteRecorder) RecentCharts(limit int) ([]ChartEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, symbol, start_date, end_date, interval, bars, source,
			output_path, last_close, last_macd, last_signal, last_rsi, bias
		FROM chart_history ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ChartEvent
	for rows.Next() {
		var (
			evt               ChartEvent
			ts                int64
			start, end        string
			macd, signal, rsi sql.NullFloat64
		)
		if err := rows.Scan(&ts, &evt.Symbol, &start, &end, &evt.Interval, &evt.Bars, &evt.Source,
			&evt.OutputPath, &evt.LastClose, &macd, &signal, &rsi, &evt.Bias); err != nil {
			return nil, err
		}
		evt.CreatedAt = time.Unix(ts, 0)
		if evt.Start, err = time.Parse(dateLayout, start); err != nil {
			return nil, fmt.Errorf("parse start date %q: %w", start, err)
		}
		if evt.End, err = time.Parse(dateLayout, end); err != nil {
			return nil, fmt.Errorf("parse end date %q: %w", end, err)
		}
		evt.LastMACD = fromNullable(macd)
		evt.LastSignal = fromNullable(signal)
		evt.LastRSI = fromNullable(rsi)
		events = append(events, evt)
	}
	return events, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullable(v model.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.Float64, Valid: v.Valid}
}

func fromNullable(v sql.NullFloat64) model.Value {
	return model.Value{Float64: v.Float64, Valid: v.Valid}
}
