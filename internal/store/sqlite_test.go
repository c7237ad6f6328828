package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-lab/internal/analyzer"
	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
	"options-lab/internal/strategy"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newRecord(t *testing.T, name, symbol string, spot float64) *AnalysisRecord {
	t.Helper()
	st, err := strategy.BuildByName(name, symbol, models.DefaultStrategyContext(spot), nil)
	require.NoError(t, err)
	a, err := analyzer.Analyze(st)
	require.NoError(t, err)
	return &AnalysisRecord{Strategy: st, Analysis: a}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	record := newRecord(t, "Iron Condor", "SPY", 450)
	require.NoError(t, s.SaveAnalysis(ctx, record))
	require.NotEmpty(t, record.ID)
	require.False(t, record.CreatedAt.IsZero())

	got, err := s.GetAnalysis(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.WithinDuration(t, record.CreatedAt, got.CreatedAt, time.Millisecond)
	assert.Equal(t, record.Strategy, got.Strategy)
	assert.Equal(t, record.Analysis, got.Analysis)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	_, err := newTestStore(t).GetAnalysis(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrDataNotFound))
}

func TestSQLiteStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	records := []*AnalysisRecord{
		newRecord(t, "Long Call", "AAPL", 190),
		newRecord(t, "Long Put", "AAPL", 190),
		newRecord(t, "Long Call", "MSFT", 410),
	}
	for i, r := range records {
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.SaveAnalysis(ctx, r))
	}

	all, err := s.ListAnalyses(ctx, AnalysisFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, records[2].ID, all[0].ID, "newest first")
	assert.Equal(t, "MSFT", all[0].Symbol)
	assert.Equal(t, 410.0, all[0].UnderlyingPrice)
	assert.Equal(t, records[2].Analysis.MaxLoss, all[0].MaxLoss)

	aapl, err := s.ListAnalyses(ctx, AnalysisFilter{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Len(t, aapl, 2)

	calls, err := s.ListAnalyses(ctx, AnalysisFilter{Strategy: "Long Call"})
	require.NoError(t, err)
	assert.Len(t, calls, 2)

	limited, err := s.ListAnalyses(ctx, AnalysisFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	recent, err := s.ListAnalyses(ctx, AnalysisFilter{Since: base.Add(90 * time.Second)})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, records[2].ID, recent[0].ID)
}

func TestSQLiteStore_ListSinceNonUTC(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	record := newRecord(t, "Long Call", "AAPL", 190)
	require.NoError(t, s.SaveAnalysis(ctx, record))

	since := record.CreatedAt.Add(-time.Hour)
	for _, loc := range []*time.Location{
		time.UTC,
		time.FixedZone("JST", 9*60*60),
		time.FixedZone("EST", -5*60*60),
	} {
		got, err := s.ListAnalyses(ctx, AnalysisFilter{Since: since.In(loc)})
		require.NoError(t, err, loc.String())
		assert.Len(t, got, 1, loc.String())

		got, err = s.ListAnalyses(ctx, AnalysisFilter{Since: record.CreatedAt.Add(time.Hour).In(loc)})
		require.NoError(t, err, loc.String())
		assert.Empty(t, got, loc.String())
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	record := newRecord(t, "Long Straddle", "TSLA", 250)
	require.NoError(t, s.SaveAnalysis(ctx, record))
	require.NoError(t, s.DeleteAnalysis(ctx, record.ID))

	_, err := s.GetAnalysis(ctx, record.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrDataNotFound))
	assert.True(t, apperrors.Is(s.DeleteAnalysis(ctx, record.ID), apperrors.ErrDataNotFound))
}

func TestSQLiteStore_RejectsIncompleteRecord(t *testing.T) {
	err := newTestStore(t).SaveAnalysis(context.Background(), &AnalysisRecord{})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestSQLiteStore_Ping(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, s.Close())
	assert.True(t, apperrors.Is(s.Ping(context.Background()), apperrors.ErrDatabaseError))
}
