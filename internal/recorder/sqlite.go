package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"marketbrief/internal/briefing"
	"marketbrief/internal/model"
)

// SQLiteRecorder writes runs, per-instrument snapshots, spreads and macro
// observations to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logrus.Entry
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode keeps external readers (Grafana etc.) off the writer's back.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logrus.WithField("component", "recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			succeeded   INTEGER,
			failed      INTEGER,
			fx_rate     REAL,
			fx_source   TEXT,
			fx_fallback INTEGER,
			sentiment   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			symbol          TEXT NOT NULL,
			source          TEXT,
			error           TEXT,
			last_close      REAL,
			rsi             REAL,
			ma20            REAL,
			ma50            REAL,
			ma200           REAL,
			alignment       TEXT,
			cross_kind      TEXT,
			boll_position   REAL,
			boll_state      TEXT,
			macd_line       REAL,
			macd_signal     REAL,
			macd_histogram  REAL,
			disparity       REAL,
			volatility      REAL,
			support         REAL,
			resistance      REAL,
			signal_action   TEXT,
			signal_strength INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id)`,

		`CREATE TABLE IF NOT EXISTS spreads (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			asset        TEXT NOT NULL,
			domestic_krw REAL,
			foreign_usd  REAL,
			foreign_krw  REAL,
			fx_rate      REAL,
			fx_fallback  INTEGER,
			spread_pct   REAL,
			state        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_spreads_run ON spreads(run_id)`,

		`CREATE TABLE IF NOT EXISTS macro (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			name       TEXT NOT NULL,
			series_id  TEXT,
			value      REAL,
			date       TEXT,
			change     REAL,
			change_pct REAL,
			source     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_macro_run ON macro(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun persists the whole report in one transaction. Unavailable
// indicator fields are stored as NULL, never as sentinel numbers.
func (r *SQLiteRecorder) RecordRun(rep *briefing.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	succeeded := rep.Succeeded()
	_, err = tx.Exec(`INSERT INTO runs
		(run_id, started_at, finished_at, succeeded, failed, fx_rate, fx_source, fx_fallback, sentiment)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		rep.RunID, rep.StartedAt.Unix(), rep.FinishedAt.Unix(),
		succeeded, len(rep.Instruments)-succeeded,
		rep.FXRate, rep.FXSource, boolInt(rep.FXFallback), rep.Sentiment,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, ir := range rep.Instruments {
		if err := insertSnapshot(tx, rep.RunID, ir); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", ir.Request.Symbol, err)
		}
	}
	for _, s := range rep.Spreads {
		_, err := tx.Exec(`INSERT INTO spreads
			(run_id, asset, domestic_krw, foreign_usd, foreign_krw, fx_rate, fx_fallback, spread_pct, state)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			rep.RunID, s.Asset, s.DomesticKRW, s.ForeignUSD, s.ForeignKRW,
			s.FXRate, boolInt(s.FXFallback), s.SpreadPct, string(s.State),
		)
		if err != nil {
			return fmt.Errorf("insert spread %s: %w", s.Asset, err)
		}
	}
	for _, m := range rep.Macro {
		_, err := tx.Exec(`INSERT INTO macro
			(run_id, name, series_id, value, date, change, change_pct, source)
			VALUES (?,?,?,?,?,?,?,?)`,
			rep.RunID, m.Name, m.SeriesID, m.Value, m.Date, m.Change, m.ChangePct, m.Source,
		)
		if err != nil {
			return fmt.Errorf("insert macro %s: %w", m.Name, err)
		}
	}

	return tx.Commit()
}

func insertSnapshot(tx *sql.Tx, runID string, ir briefing.InstrumentResult) error {
	if ir.Failed() {
		_, err := tx.Exec(`INSERT INTO snapshots (run_id, symbol, error) VALUES (?,?,?)`,
			runID, ir.Request.Symbol, ir.Err.Error())
		return err
	}

	snap := ir.Snapshot
	_, err := tx.Exec(`INSERT INTO snapshots
		(run_id, symbol, source, last_close, rsi, ma20, ma50, ma200, alignment,
		 cross_kind, boll_position, boll_state, macd_line, macd_signal, macd_histogram,
		 disparity, volatility, support, resistance, signal_action, signal_strength)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, ir.Request.Symbol, ir.Source, snap.LastClose,
		nullIf(snap.RSI.Valid, snap.RSI.Value),
		maValue(snap, 20), maValue(snap, 50), maValue(snap, 200),
		string(snap.Alignment),
		crossKind(snap),
		nullIf(snap.Bollinger.Valid, snap.Bollinger.PositionPct),
		bollState(snap),
		nullIf(snap.MACD.Valid, snap.MACD.Line),
		nullIf(snap.MACD.Valid && snap.MACD.HasSignal, snap.MACD.Signal),
		nullIf(snap.MACD.Valid && snap.MACD.HasSignal, snap.MACD.Histogram),
		nullIf(snap.Disparity.Valid, snap.Disparity.Value),
		nullIf(snap.Volatility.Valid, snap.Volatility.Value),
		nullIf(snap.Range.Valid, snap.Range.Support),
		nullIf(snap.Range.Valid, snap.Range.Resistance),
		string(ir.Signal.Action), ir.Signal.Strength,
	)
	return err
}

func nullIf(valid bool, v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: valid}
}

func maValue(snap *model.IndicatorSnapshot, window int) sql.NullFloat64 {
	if ma, ok := snap.MA(window); ok && ma.Valid {
		return sql.NullFloat64{Float64: ma.Value, Valid: true}
	}
	return sql.NullFloat64{}
}

func crossKind(snap *model.IndicatorSnapshot) sql.NullString {
	if snap.Cross.Valid && snap.Cross.Detected {
		return sql.NullString{String: string(snap.Cross.Kind), Valid: true}
	}
	return sql.NullString{}
}

func bollState(snap *model.IndicatorSnapshot) sql.NullString {
	if snap.Bollinger.Valid {
		return sql.NullString{String: string(snap.Bollinger.State), Valid: true}
	}
	return sql.NullString{}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
