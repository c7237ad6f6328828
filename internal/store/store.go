// Package store provides persistence for analysis history. It belongs to the
// embedding application; the pricing and analysis packages never use it.
package store

import (
	"context"
	"time"

	"options-lab/internal/models"
)

// HistoryStore defines the interface for recording analyses.
type HistoryStore interface {
	SaveAnalysis(ctx context.Context, record *AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]AnalysisSummary, error)
	DeleteAnalysis(ctx context.Context, id string) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// AnalysisRecord is a saved strategy analysis.
type AnalysisRecord struct {
	ID        string                   `json:"id" yaml:"id"`
	CreatedAt time.Time                `json:"created_at" yaml:"created_at"`
	Strategy  *models.Strategy         `json:"strategy" yaml:"strategy"`
	Analysis  *models.StrategyAnalysis `json:"analysis" yaml:"analysis"`
}

// AnalysisSummary is the list view of a saved analysis.
type AnalysisSummary struct {
	ID                  string    `json:"id" yaml:"id"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
	Symbol              string    `json:"symbol" yaml:"symbol"`
	Strategy            string    `json:"strategy" yaml:"strategy"`
	UnderlyingPrice     float64   `json:"underlying_price" yaml:"underlying_price"`
	MaxProfit           float64   `json:"max_profit" yaml:"max_profit"`
	MaxLoss             float64   `json:"max_loss" yaml:"max_loss"`
	ProbabilityOfProfit float64   `json:"probability_of_profit" yaml:"probability_of_profit"`
}

// AnalysisFilter represents filters for listing analyses.
type AnalysisFilter struct {
	Symbol   string
	Strategy string
	Since    time.Time
	Limit    int
}
