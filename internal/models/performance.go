package models

import (
	"math"
	"time"
)

// PerformanceRecord accumulates running statistics for one
// (symbol, combination key) pair. It is mutated only by the performance
// accumulator, strictly after a trade tied to that combination closes.
type PerformanceRecord struct {
	Symbol         string `json:"symbol"`
	CombinationKey string `json:"combination_key"`

	Executions    int     `json:"executions"`
	Wins          int     `json:"wins"`
	CumulativePnL float64 `json:"cumulative_pnl"`

	// Welford online variance state over per-trade P/L.
	MeanPnL float64 `json:"mean_pnl"`
	M2      float64 `json:"m2"`

	// Drawdown state over the running balance of this combination.
	PeakBalance float64 `json:"peak_balance"`
	MaxDrawdown float64 `json:"max_drawdown"`

	UpdatedAt time.Time `json:"updated_at"`
}

// WinRate returns the fraction of executions that closed positive.
func (r *PerformanceRecord) WinRate() float64 {
	if r.Executions == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Executions)
}

// Variance returns the sample variance of per-trade P/L.
func (r *PerformanceRecord) Variance() float64 {
	if r.Executions < 2 {
		return 0
	}
	return r.M2 / float64(r.Executions-1)
}

// SharpeRatio returns the Sharpe-style ratio mean/stddev of per-trade
// P/L. Zero when fewer than two trades or zero variance.
func (r *PerformanceRecord) SharpeRatio() float64 {
	v := r.Variance()
	if v == 0 {
		return 0
	}
	return r.MeanPnL / math.Sqrt(v)
}
