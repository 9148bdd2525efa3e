package models

import "time"

// ActionType is the configured reentry action for a matrix cell.
type ActionType string

const (
	ActionNoReentry    ActionType = "NO_REENTRY"
	ActionSameTrade    ActionType = "SAME_TRADE"
	ActionReverse      ActionType = "REVERSE"
	ActionIncreaseSize ActionType = "INCREASE_SIZE"
)

// Valid reports whether a is a member of the closed action set.
func (a ActionType) Valid() bool {
	switch a {
	case ActionNoReentry, ActionSameTrade, ActionReverse, ActionIncreaseSize:
		return true
	}
	return false
}

// Verdict is the resolver's decision on whether a chain continues.
type Verdict string

const (
	VerdictReenter  Verdict = "REENTER"
	VerdictEndChain Verdict = "END_CHAIN"
)

// DecisionCell holds the configured action and parameters for one
// combination key. Cells are owned by the matrix store and mutated only
// through an administrative reload, never by the hot decision path.
type DecisionCell struct {
	Action               ActionType `csv:"action" json:"action"`
	ConfidenceMultiplier float64    `csv:"confidence_multiplier" json:"confidence_multiplier"`
	RiskMultiplier       float64    `csv:"risk_multiplier" json:"risk_multiplier"`
	DelayMinutes         int        `csv:"delay_minutes" json:"delay_minutes"`
	Enabled              bool       `csv:"enabled" json:"enabled"`

	// Optional stop/target distances. Zero means the action does not
	// carry explicit pip distances.
	StopLossPips   float64 `csv:"stop_loss_pips" json:"stop_loss_pips"`
	TakeProfitPips float64 `csv:"take_profit_pips" json:"take_profit_pips"`
}

// InertCell returns the default parameter set used when a lookup misses
// or the configured cell is disabled.
func InertCell() DecisionCell {
	return DecisionCell{
		Action:               ActionNoReentry,
		ConfidenceMultiplier: 0,
		RiskMultiplier:       0,
		DelayMinutes:         0,
		Enabled:              false,
	}
}

// TradeContext bundles the classified inputs describing one closed trade.
// It is supplied by the external classification pipeline.
type TradeContext struct {
	Signal     SignalType       `json:"signal"`
	Duration   DurationCategory `json:"duration,omitempty"`
	Proximity  Proximity        `json:"proximity"`
	Outcome    Outcome          `json:"outcome"`
	Generation Generation       `json:"generation"`
}

// ClosureEvent is the inbound message from the closure pipeline.
type ClosureEvent struct {
	Symbol     string           `json:"symbol"`
	Signal     SignalType       `json:"signal"`
	Duration   DurationCategory `json:"duration,omitempty"`
	Proximity  Proximity        `json:"proximity"`
	Outcome    Outcome          `json:"outcome"`
	Generation Generation       `json:"generation"`
	ChainID    string           `json:"chain_id,omitempty"`
	TradeID    string           `json:"trade_id"`
	PnL        float64          `json:"pnl"`
	Timestamp  time.Time        `json:"timestamp"`
	SequenceID uint64           `json:"sequence_id"`
}

// Context returns the classification portion of the event.
func (e ClosureEvent) Context() TradeContext {
	return TradeContext{
		Signal:     e.Signal,
		Duration:   e.Duration,
		Proximity:  e.Proximity,
		Outcome:    e.Outcome,
		Generation: e.Generation,
	}
}

// ResolvedDecision is the resolver's output. It is a value type with no
// shared ownership; the cell parameters are copied out of the store.
type ResolvedDecision struct {
	Symbol         string       `json:"symbol"`
	CombinationKey string       `json:"combination_key"`
	Verdict        Verdict      `json:"verdict"`
	Cell           DecisionCell `json:"cell"`
	Generation     Generation   `json:"generation"`
}

// DecisionMessage is the outbound message handed to the execution layer.
// SequenceID mirrors the inbound event for correlation.
type DecisionMessage struct {
	Symbol               string      `json:"symbol"`
	CombinationKey       string      `json:"combination_key"`
	Verdict              Verdict     `json:"verdict"`
	Action               ActionType  `json:"action"`
	ConfidenceMultiplier float64     `json:"confidence_multiplier"`
	RiskMultiplier       float64     `json:"risk_multiplier"`
	DelayMinutes         int         `json:"delay_minutes"`
	ChainID              string      `json:"chain_id"`
	ChainStatus          ChainStatus `json:"chain_status"`
	Rejected             bool        `json:"rejected"`
	RejectReason         string      `json:"reject_reason,omitempty"`
	SequenceID           uint64      `json:"sequence_id"`
	LatencyMicros        int64       `json:"latency_micros"`
}
