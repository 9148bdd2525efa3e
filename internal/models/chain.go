package models

import "time"

// ChainStatus is the lifecycle state of a reentry chain.
type ChainStatus string

const (
	ChainActive    ChainStatus = "ACTIVE"
	ChainCompleted ChainStatus = "COMPLETED"
	ChainStopped   ChainStatus = "STOPPED"
	ChainError     ChainStatus = "ERROR"
)

// Terminal reports whether the chain can accept no further trades.
func (s ChainStatus) Terminal() bool {
	return s == ChainCompleted || s == ChainStopped || s == ChainError
}

// ReentryChain tracks one logical sequence of trades started from an
// original signal: the original trade plus up to MaxGeneration re-entries.
type ReentryChain struct {
	ID              string      `json:"id"`
	Symbol          string      `json:"symbol"`
	OriginalTradeID string      `json:"original_trade_id"`
	Generation      Generation  `json:"generation"`
	TradeCount      int         `json:"trade_count"`
	CumulativePnL   float64     `json:"cumulative_pnl"`
	Status          ChainStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
