package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"reentry-engine/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Per-combination performance records, updated continuously
	CREATE TABLE IF NOT EXISTS performance (
		symbol TEXT NOT NULL,
		combination_key TEXT NOT NULL,
		executions INTEGER NOT NULL,
		wins INTEGER NOT NULL,
		cumulative_pnl REAL NOT NULL,
		mean_pnl REAL NOT NULL,
		m2 REAL NOT NULL,
		peak_balance REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (symbol, combination_key)
	);

	-- Decision audit trail
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		combination_key TEXT NOT NULL,
		verdict TEXT NOT NULL,
		action TEXT NOT NULL,
		confidence_multiplier REAL NOT NULL,
		risk_multiplier REAL NOT NULL,
		delay_minutes INTEGER NOT NULL,
		chain_id TEXT,
		chain_status TEXT,
		rejected INTEGER DEFAULT 0,
		reject_reason TEXT,
		sequence_id INTEGER NOT NULL,
		latency_micros INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_symbol ON decisions(symbol, timestamp);

	-- Chain lifecycles
	CREATE TABLE IF NOT EXISTS chains (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		original_trade_id TEXT NOT NULL,
		generation INTEGER NOT NULL,
		trade_count INTEGER NOT NULL,
		cumulative_pnl REAL NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chains_symbol ON chains(symbol, status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SavePerformance upserts a batch of performance records.
func (s *SQLiteStore) SavePerformance(ctx context.Context, records []models.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO performance
			(symbol, combination_key, executions, wins, cumulative_pnl, mean_pnl, m2, peak_balance, max_drawdown, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, combination_key) DO UPDATE SET
			executions = excluded.executions,
			wins = excluded.wins,
			cumulative_pnl = excluded.cumulative_pnl,
			mean_pnl = excluded.mean_pnl,
			m2 = excluded.m2,
			peak_balance = excluded.peak_balance,
			max_drawdown = excluded.max_drawdown,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Symbol, r.CombinationKey, r.Executions, r.Wins, r.CumulativePnL,
			r.MeanPnL, r.M2, r.PeakBalance, r.MaxDrawdown, r.UpdatedAt,
		); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", r.Symbol, r.CombinationKey, err)
		}
	}

	return tx.Commit()
}

// GetPerformance returns performance records, optionally filtered by symbol.
func (s *SQLiteStore) GetPerformance(ctx context.Context, symbol string) ([]models.PerformanceRecord, error) {
	query := `SELECT symbol, combination_key, executions, wins, cumulative_pnl, mean_pnl, m2, peak_balance, max_drawdown, updated_at
		FROM performance`
	var args []interface{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY symbol, combination_key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query performance: %w", err)
	}
	defer rows.Close()

	var out []models.PerformanceRecord
	for rows.Next() {
		var r models.PerformanceRecord
		if err := rows.Scan(&r.Symbol, &r.CombinationKey, &r.Executions, &r.Wins,
			&r.CumulativePnL, &r.MeanPnL, &r.M2, &r.PeakBalance, &r.MaxDrawdown, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetPerformanceByKey returns one combination's record, or nil if absent.
func (s *SQLiteStore) GetPerformanceByKey(ctx context.Context, symbol, key string) (*models.PerformanceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT symbol, combination_key, executions, wins, cumulative_pnl, mean_pnl, m2, peak_balance, max_drawdown, updated_at
		FROM performance WHERE symbol = ? AND combination_key = ?`, symbol, key)

	var r models.PerformanceRecord
	err := row.Scan(&r.Symbol, &r.CombinationKey, &r.Executions, &r.Wins,
		&r.CumulativePnL, &r.MeanPnL, &r.M2, &r.PeakBalance, &r.MaxDrawdown, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LogDecision appends one emitted decision to the audit trail.
func (s *SQLiteStore) LogDecision(ctx context.Context, msg *models.DecisionMessage, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions
			(timestamp, symbol, combination_key, verdict, action, confidence_multiplier,
			 risk_multiplier, delay_minutes, chain_id, chain_status, rejected, reject_reason,
			 sequence_id, latency_micros)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		at, msg.Symbol, msg.CombinationKey, string(msg.Verdict), string(msg.Action),
		msg.ConfidenceMultiplier, msg.RiskMultiplier, msg.DelayMinutes,
		msg.ChainID, string(msg.ChainStatus), boolToInt(msg.Rejected), msg.RejectReason,
		msg.SequenceID, msg.LatencyMicros)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// GetDecisions returns audit trail entries matching the filter.
func (s *SQLiteStore) GetDecisions(ctx context.Context, filter DecisionFilter) ([]models.DecisionMessage, error) {
	query := `SELECT symbol, combination_key, verdict, action, confidence_multiplier,
		risk_multiplier, delay_minutes, chain_id, chain_status, rejected, reject_reason,
		sequence_id, latency_micros FROM decisions`

	var conds []string
	var args []interface{}
	if filter.Symbol != "" {
		conds = append(conds, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if filter.Verdict != "" {
		conds = append(conds, "verdict = ?")
		args = append(args, filter.Verdict)
	}
	if filter.Rejected != nil {
		conds = append(conds, "rejected = ?")
		args = append(args, boolToInt(*filter.Rejected))
	}
	if !filter.StartDate.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, filter.EndDate)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []models.DecisionMessage
	for rows.Next() {
		var m models.DecisionMessage
		var rejected int
		if err := rows.Scan(&m.Symbol, &m.CombinationKey, &m.Verdict, &m.Action,
			&m.ConfidenceMultiplier, &m.RiskMultiplier, &m.DelayMinutes,
			&m.ChainID, &m.ChainStatus, &rejected, &m.RejectReason,
			&m.SequenceID, &m.LatencyMicros); err != nil {
			return nil, err
		}
		m.Rejected = rejected != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveChain upserts a chain lifecycle row.
func (s *SQLiteStore) SaveChain(ctx context.Context, chain *models.ReentryChain) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chains
			(id, symbol, original_trade_id, generation, trade_count, cumulative_pnl, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generation = excluded.generation,
			trade_count = excluded.trade_count,
			cumulative_pnl = excluded.cumulative_pnl,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		chain.ID, chain.Symbol, chain.OriginalTradeID, int(chain.Generation),
		chain.TradeCount, chain.CumulativePnL, string(chain.Status),
		chain.CreatedAt, chain.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert chain %s: %w", chain.ID, err)
	}
	return nil
}

// GetChains returns chains matching the filter.
func (s *SQLiteStore) GetChains(ctx context.Context, filter ChainFilter) ([]models.ReentryChain, error) {
	query := `SELECT id, symbol, original_trade_id, generation, trade_count, cumulative_pnl, status, created_at, updated_at
		FROM chains`

	var conds []string
	var args []interface{}
	if filter.Symbol != "" {
		conds = append(conds, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chains: %w", err)
	}
	defer rows.Close()

	var out []models.ReentryChain
	for rows.Next() {
		var c models.ReentryChain
		var gen int
		if err := rows.Scan(&c.ID, &c.Symbol, &c.OriginalTradeID, &gen,
			&c.TradeCount, &c.CumulativePnL, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Generation = models.Generation(gen)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
