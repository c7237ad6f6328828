package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-lab/internal/config"
	"options-lab/internal/models"
)

func TestNewLoggerWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "options-lab.log")
	logger := NewLoggerWithConfig(LogConfig{
		Level:    "debug",
		File:     true,
		FilePath: path,
		MaxSize:  1,
	})

	s := &models.Strategy{Name: "Long Call", Symbol: "AAPL", Legs: []models.Leg{{Kind: models.Call, Action: models.Buy, Strike: 190, Quantity: 1}}}
	a := &models.StrategyAnalysis{MaxProfit: 500, MaxLoss: -120, BreakevenPoints: []float64{191.2}, ProbabilityOfProfit: 0.4}
	LogAnalysis(logger, s, a, 3*time.Millisecond)
	LogPricing(logger, models.Put, 100, 95, 30, 1.23)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"analysis"`)
	assert.Contains(t, string(data), `"strategy":"Long Call"`)
	assert.Contains(t, string(data), `"event":"pricing"`)
	assert.Contains(t, string(data), `"kind":"PUT"`)
}

func TestNewLoggerWithConfig_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithConfig(LogConfig{Level: "warn", Console: true, Out: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerWithConfig_NoWriters(t *testing.T) {
	logger := NewLoggerWithConfig(LogConfig{Level: "info"})
	assert.NotPanics(t, func() { logger.Info().Msg("discarded") })
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default().Logging
	lc := FromConfig(cfg)
	assert.Equal(t, cfg.Level, lc.Level)
	assert.Equal(t, cfg.FilePath, lc.FilePath)
	assert.Equal(t, cfg.MaxBackups, lc.MaxBackups)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), WithStrategy(WithSymbol(logger, "SPY"), "Iron Condor"))
	ctxLogger := FromContext(ctx, zerolog.Nop())
	ctxLogger.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"symbol":"SPY"`)
	assert.Contains(t, buf.String(), `"strategy":"Iron Condor"`)

	nopLogger := FromContext(context.Background(), zerolog.Nop())
	nopLogger.Info().Msg("dropped")
	assert.NotContains(t, buf.String(), "dropped")

	fallbackLogger := FromContext(context.Background(), logger)
	fallbackLogger.Info().Msg("fallback")
	assert.Contains(t, buf.String(), "fallback")
}

func TestLogRequest_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.WarnLevel)

	LogRequest(logger, "GET", "/health", 200, time.Millisecond)
	assert.Empty(t, buf.String())

	LogRequest(logger, "POST", "/api/v1/strategies/analyze", 422, time.Millisecond)
	assert.Contains(t, buf.String(), `"status":422`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.True(t, cfg.Console)
	assert.False(t, cfg.File)
	assert.Equal(t, "options-lab.log", filepath.Base(cfg.FilePath))
}
