package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

// SQLiteStore implements HistoryStore using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ HistoryStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-based history store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:  db,
		now: time.Now,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Saved strategy analyses
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		strategy TEXT NOT NULL,
		underlying_price REAL NOT NULL,
		risk_free_rate REAL NOT NULL,
		volatility REAL NOT NULL,
		days_to_expiry INTEGER NOT NULL,
		max_profit REAL NOT NULL,
		max_loss REAL NOT NULL,
		probability_of_profit REAL NOT NULL,
		strategy_json TEXT NOT NULL,
		analysis_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON analyses(symbol, created_at);
	CREATE INDEX IF NOT EXISTS idx_analyses_strategy ON analyses(strategy, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveAnalysis stores a record. Missing ID and CreatedAt are filled in.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, record *AnalysisRecord) error {
	if record == nil || record.Strategy == nil || record.Analysis == nil {
		return apperrors.NewValidationError("record", record, "strategy and analysis are required")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	record.CreatedAt = record.CreatedAt.UTC()

	strategyJSON, err := json.Marshal(record.Strategy)
	if err != nil {
		return fmt.Errorf("failed to encode strategy: %w", err)
	}
	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	st, a := record.Strategy, record.Analysis
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, created_at, symbol, strategy, underlying_price, risk_free_rate, volatility, days_to_expiry, max_profit, max_loss, probability_of_profit, strategy_json, analysis_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.CreatedAt, st.Symbol, st.Name, st.Context.UnderlyingPrice, st.Context.RiskFreeRate, st.Context.Volatility, st.Context.DaysToExpiry, a.MaxProfit, a.MaxLoss, a.ProbabilityOfProfit, string(strategyJSON), string(analysisJSON))
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w: %v", apperrors.ErrDatabaseError, err)
	}
	return nil
}

// GetAnalysis retrieves one record by ID.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error) {
	var (
		record                     AnalysisRecord
		strategyJSON, analysisJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, strategy_json, analysis_json FROM analyses WHERE id = ?
	`, id).Scan(&record.ID, &record.CreatedAt, &strategyJSON, &analysisJSON)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "analysis %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	record.Strategy = &models.Strategy{}
	if err := json.Unmarshal([]byte(strategyJSON), record.Strategy); err != nil {
		return nil, fmt.Errorf("failed to decode strategy: %w", err)
	}
	record.Analysis = &models.StrategyAnalysis{}
	if err := json.Unmarshal([]byte(analysisJSON), record.Analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &record, nil
}

// ListAnalyses returns summaries, newest first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]AnalysisSummary, error) {
	query := "SELECT id, created_at, symbol, strategy, underlying_price, max_profit, max_loss, probability_of_profit FROM analyses WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Strategy != "" {
		query += " AND strategy = ?"
		args = append(args, filter.Strategy)
	}
	if !filter.Since.IsZero() {
		// created_at is stored in UTC; the bound string must carry the same offset.
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	summaries := []AnalysisSummary{}
	for rows.Next() {
		var a AnalysisSummary
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.Symbol, &a.Strategy, &a.UnderlyingPrice, &a.MaxProfit, &a.MaxLoss, &a.ProbabilityOfProfit); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		summaries = append(summaries, a)
	}

	return summaries, rows.Err()
}

// DeleteAnalysis removes a record by ID.
func (s *SQLiteStore) DeleteAnalysis(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	if n == 0 {
		return apperrors.Wrapf(apperrors.ErrDataNotFound, "analysis %s", id)
	}
	return nil
}
