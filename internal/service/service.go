// Package service wires the pricing core to configuration, history and the
// batch runner. The CLI and the HTTP API both go through it.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"options-lab/internal/analyzer"
	"options-lab/internal/batch"
	"options-lab/internal/config"
	apperrors "options-lab/internal/errors"
	"options-lab/internal/health"
	"options-lab/internal/logging"
	"options-lab/internal/models"
	"options-lab/internal/pricing"
	"options-lab/internal/store"
	"options-lab/internal/strategy"
)

// OptionsService handles pricing, analysis, comparison and history.
type OptionsService struct {
	cfg     *config.Config
	history store.HistoryStore
	runner  *batch.Runner
	pricer  pricing.Pricer
	logger  zerolog.Logger
}

// NewOptionsService creates the service. history may be nil when the store
// is disabled.
func NewOptionsService(cfg *config.Config, history store.HistoryStore, logger zerolog.Logger) *OptionsService {
	return &OptionsService{
		cfg:     cfg,
		history: history,
		runner:  batch.NewRunner(cfg.Batch.Workers, logger),
		pricer:  pricing.Kernel{},
		logger:  logger.With().Str("component", "service").Logger(),
	}
}

// Close stops the batch workers. The history store is owned by the caller.
func (s *OptionsService) Close() {
	s.runner.Close()
}

// HistoryEnabled reports whether analyses can be saved and listed.
func (s *OptionsService) HistoryEnabled() bool {
	return s.history != nil
}

// Price values one contract, filling unset inputs from the pricing defaults.
func (s *OptionsService) Price(ctx context.Context, req *models.PriceRequest) (*models.PriceQuote, error) {
	kind, err := models.ParseOptionKind(req.Type)
	if err != nil {
		return nil, err
	}

	quote := &models.PriceQuote{
		Type:         kind,
		Spot:         req.Spot,
		Strike:       req.Strike,
		DaysToExpiry: s.cfg.Pricing.DaysToExpiry,
		RiskFreeRate: s.cfg.Pricing.RiskFreeRate,
		Volatility:   s.cfg.Pricing.Volatility,
	}
	if req.DaysToExpiry != nil {
		quote.DaysToExpiry = *req.DaysToExpiry
	}
	if req.RiskFreeRate != nil {
		quote.RiskFreeRate = *req.RiskFreeRate
	}
	if req.Volatility != nil {
		quote.Volatility = *req.Volatility
	}
	if quote.DaysToExpiry < 0 {
		return nil, apperrors.NewValidationError("days_to_expiry", quote.DaysToExpiry, "must be non-negative")
	}

	t := float64(quote.DaysToExpiry) / models.DaysPerYear
	quote.Price, err = s.pricer.Price(quote.Spot, quote.Strike, t, quote.RiskFreeRate, quote.Volatility, kind)
	if err != nil {
		return nil, err
	}
	quote.Greeks, err = s.pricer.Greeks(quote.Spot, quote.Strike, t, quote.RiskFreeRate, quote.Volatility, kind)
	if err != nil {
		return nil, err
	}

	logging.LogPricing(s.logger, kind, quote.Spot, quote.Strike, quote.DaysToExpiry, quote.Price)
	return quote, nil
}

// Build resolves a request into a priced strategy.
func (s *OptionsService) Build(req *models.AnalysisRequest) (*models.Strategy, error) {
	if strings.TrimSpace(req.StrategyName) == "" {
		return nil, apperrors.NewValidationError("strategy_name", req.StrategyName, "is required")
	}
	sctx := req.Context(s.cfg.DefaultContext(req.UnderlyingPrice))
	return strategy.BuildByName(req.StrategyName, req.UnderlyingSymbol, sctx, strategy.Params(req.Parameters))
}

// Analyze builds and analyzes the requested strategy. When save is set and
// history is enabled the result is recorded and its ID returned.
func (s *OptionsService) Analyze(ctx context.Context, req *models.AnalysisRequest, save bool) (*models.AnalysisResult, error) {
	return s.run(ctx, req, save, analyzer.Analyze)
}

// Payoff analyzes the requested strategy as of expiration.
func (s *OptionsService) Payoff(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error) {
	return s.run(ctx, req, false, analyzer.AnalyzeAtExpiration)
}

func (s *OptionsService) run(ctx context.Context, req *models.AnalysisRequest, save bool, analyze func(*models.Strategy) (*models.StrategyAnalysis, error)) (*models.AnalysisResult, error) {
	start := time.Now()
	st, err := s.Build(req)
	if err != nil {
		return nil, err
	}
	a, err := analyze(st)
	if err != nil {
		return nil, err
	}
	logging.LogAnalysis(s.logger, st, a, time.Since(start))

	result := &models.AnalysisResult{Strategy: st, Analysis: a}
	if save && s.history != nil {
		record := &store.AnalysisRecord{Strategy: st, Analysis: a}
		if err := s.history.SaveAnalysis(ctx, record); err != nil {
			return nil, err
		}
		result.ID = record.ID
		s.logger.Debug().Str("id", record.ID).Msg("Analysis saved")
	}
	return result, nil
}

// Compare analyzes several strategies concurrently against one context.
// Results follow the order of req.Strategies.
func (s *OptionsService) Compare(ctx context.Context, req *models.CompareRequest) ([]batch.Result, error) {
	names := req.Strategies
	if len(names) == 0 {
		names = strategy.SupportedNames()
	}
	if len(names) > s.cfg.Server.MaxCompare {
		return nil, apperrors.NewValidationError("strategies", len(names), "too many strategies to compare")
	}

	sctx := req.Context(s.cfg.DefaultContext(req.UnderlyingPrice))
	if err := sctx.Validate(); err != nil {
		return nil, err
	}

	return s.runner.Run(ctx, batch.Jobs(names, req.UnderlyingSymbol, sctx, strategy.Params(req.Parameters)))
}

// History lists saved analyses.
func (s *OptionsService) History(ctx context.Context, filter store.AnalysisFilter) ([]store.AnalysisSummary, error) {
	if s.history == nil {
		return nil, errHistoryDisabled
	}
	return s.history.ListAnalyses(ctx, filter)
}

// GetAnalysis loads one saved analysis.
func (s *OptionsService) GetAnalysis(ctx context.Context, id string) (*store.AnalysisRecord, error) {
	if s.history == nil {
		return nil, errHistoryDisabled
	}
	return s.history.GetAnalysis(ctx, id)
}

// DeleteAnalysis removes one saved analysis.
func (s *OptionsService) DeleteAnalysis(ctx context.Context, id string) error {
	if s.history == nil {
		return errHistoryDisabled
	}
	return s.history.DeleteAnalysis(ctx, id)
}

// RegisterHealthChecks adds the history store and batch pool checks.
func (s *OptionsService) RegisterHealthChecks(m *health.Monitor) {
	m.Register("history", func(ctx context.Context) health.ComponentHealth {
		if s.history == nil {
			return health.ComponentHealth{Status: health.StatusHealthy, Message: "History disabled"}
		}
		if err := s.history.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusUnhealthy, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusHealthy, Message: "History store reachable"}
	})

	m.Register("batch", func(ctx context.Context) health.ComponentHealth {
		stats := s.runner.Stats()
		h := health.ComponentHealth{
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("%d workers", stats.Workers),
			Details: map[string]interface{}{
				"workers":     stats.Workers,
				"tasks_total": stats.TasksTotal,
				"tasks_done":  stats.TasksDone,
				"queue_len":   stats.QueueLen,
			},
		}
		if !stats.Running {
			h.Status = health.StatusUnhealthy
			h.Message = "Worker pool stopped"
		}
		return h
	})
}

var errHistoryDisabled = apperrors.Wrap(apperrors.ErrDataNotFound, "analysis history is disabled")
