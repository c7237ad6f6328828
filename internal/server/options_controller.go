package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/health"
	"options-lab/internal/models"
	"options-lab/internal/service"
	"options-lab/internal/store"
	"options-lab/internal/strategy"
)

// OptionsController handles pricing, analysis and history requests.
type OptionsController struct {
	svc     *service.OptionsService
	monitor *health.Monitor
}

// NewOptionsController creates a new options controller.
func NewOptionsController(svc *service.OptionsService, monitor *health.Monitor) *OptionsController {
	return &OptionsController{svc: svc, monitor: monitor}
}

// HandleHealth runs the component health checks. Degraded still answers 200.
// GET /health
func (oc *OptionsController) HandleHealth(c *gin.Context) {
	h := oc.monitor.Run(c.Request.Context())

	status := http.StatusOK
	if h.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":  h.Status,
		"history": oc.svc.HistoryEnabled(),
		"health":  h,
	})
}

// HandleListStrategies returns the strategy catalog grouped by tier.
// GET /api/v1/strategies
func (oc *OptionsController) HandleListStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"supported": strategy.SupportedNames(),
		"tiers":     strategy.Catalog(),
	})
}

// HandlePrice values a single contract.
// POST /api/v1/options/price
func (oc *OptionsController) HandlePrice(c *gin.Context) {
	var req models.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	quote, err := oc.svc.Price(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to price option", err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// HandleAnalyze builds and analyzes one strategy. Pass ?save=false to skip
// recording it in history.
// POST /api/v1/strategies/analyze
func (oc *OptionsController) HandleAnalyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	save := c.DefaultQuery("save", "true") != "false"
	result, err := oc.svc.Analyze(c.Request.Context(), &req, save)
	if err != nil {
		respondError(c, "Failed to analyze strategy", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleCompare analyzes several strategies against one context.
// POST /api/v1/strategies/compare
func (oc *OptionsController) HandleCompare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := oc.svc.Compare(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to compare strategies", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

// HandleListAnalyses lists saved analyses.
// GET /api/v1/analyses?symbol=SPY&strategy=Iron%20Condor&since=2026-01-02T00:00:00Z&limit=20
func (oc *OptionsController) HandleListAnalyses(c *gin.Context) {
	filter := store.AnalysisFilter{
		Symbol:   c.Query("symbol"),
		Strategy: c.Query("strategy"),
		Limit:    50,
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			badRequest(c, apperrors.NewValidationError("limit", v, "must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, apperrors.NewValidationError("since", v, "must be an RFC3339 timestamp"))
			return
		}
		filter.Since = since
	}

	analyses, err := oc.svc.History(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to list analyses", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(analyses),
		"analyses": analyses,
	})
}

// HandleGetAnalysis returns one saved analysis.
// GET /api/v1/analyses/:id
func (oc *OptionsController) HandleGetAnalysis(c *gin.Context) {
	record, err := oc.svc.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Analysis not found", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// HandleDeleteAnalysis removes one saved analysis.
// DELETE /api/v1/analyses/:id
func (oc *OptionsController) HandleDeleteAnalysis(c *gin.Context) {
	if err := oc.svc.DeleteAnalysis(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Failed to delete analysis", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Analysis deleted",
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"details": err.Error(),
	})
}

func respondError(c *gin.Context, message string, err error) {
	c.JSON(statusFor(err), gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInput), apperrors.Is(err, apperrors.ErrDegenerateInput):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrStrategyNotImplemented):
		return http.StatusUnprocessableEntity
	case apperrors.Is(err, apperrors.ErrDataNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
