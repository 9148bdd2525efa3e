// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"reentry-engine/internal/models"
)

// DataStore defines the interface for engine persistence.
type DataStore interface {
	// Performance records
	SavePerformance(ctx context.Context, records []models.PerformanceRecord) error
	GetPerformance(ctx context.Context, symbol string) ([]models.PerformanceRecord, error)
	GetPerformanceByKey(ctx context.Context, symbol, key string) (*models.PerformanceRecord, error)

	// Decision audit trail
	LogDecision(ctx context.Context, msg *models.DecisionMessage, at time.Time) error
	GetDecisions(ctx context.Context, filter DecisionFilter) ([]models.DecisionMessage, error)

	// Chains
	SaveChain(ctx context.Context, chain *models.ReentryChain) error
	GetChains(ctx context.Context, filter ChainFilter) ([]models.ReentryChain, error)

	// Lifecycle
	Close() error
}

// DecisionFilter represents filters for querying the decision audit log.
type DecisionFilter struct {
	Symbol    string
	Verdict   string
	Rejected  *bool
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// ChainFilter represents filters for querying chains.
type ChainFilter struct {
	Symbol string
	Status models.ChainStatus
	Limit  int
}
