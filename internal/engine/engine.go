// Package engine wires the resolver, validator, generation guard and
// performance accumulator into the closure-to-decision pipeline.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"reentry-engine/internal/chain"
	"reentry-engine/internal/config"
	"reentry-engine/internal/errors"
	"reentry-engine/internal/logging"
	"reentry-engine/internal/matrix"
	"reentry-engine/internal/metrics"
	"reentry-engine/internal/models"
	"reentry-engine/internal/performance"
	"reentry-engine/internal/risk"
	"reentry-engine/internal/stream"
)

// Auditor persists emitted decisions and chain transitions. Audit writes
// are fire-and-forget; they never gate the decision's return.
type Auditor interface {
	LogDecision(ctx context.Context, msg *models.DecisionMessage, at time.Time) error
	SaveChain(ctx context.Context, chain *models.ReentryChain) error
}

// Engine evaluates trade closures and emits reentry decisions. All
// processing for one symbol must be serialized by the caller (see
// Dispatcher); distinct symbols may be processed in parallel.
type Engine struct {
	resolver  *matrix.Resolver
	validator *risk.Validator
	chains    *chain.Tracker
	perf      *performance.Accumulator
	hub       *stream.Hub
	auditor   Auditor
	logger    zerolog.Logger

	latencyBudget time.Duration
}

// New creates an engine. hub and auditor may be nil when the embedding
// process does not stream or persist decisions.
func New(cfg config.EngineConfig, resolver *matrix.Resolver, validator *risk.Validator,
	chains *chain.Tracker, perf *performance.Accumulator,
	hub *stream.Hub, auditor Auditor, logger zerolog.Logger) *Engine {

	return &Engine{
		resolver:      resolver,
		validator:     validator,
		chains:        chains,
		perf:          perf,
		hub:           hub,
		auditor:       auditor,
		logger:        logger,
		latencyBudget: cfg.LatencyBudget(),
	}
}

// Chains exposes the chain tracker for administrative queries.
func (e *Engine) Chains() *chain.Tracker { return e.chains }

// Performance exposes the accumulator for administrative queries.
func (e *Engine) Performance() *performance.Accumulator { return e.perf }

// ProcessClosure evaluates one trade closure and returns the decision
// message handed to the execution layer. Errors are typed: a malformed
// context or generation overflow rejects this single closure and leaves
// the engine healthy.
func (e *Engine) ProcessClosure(ctx context.Context, ev models.ClosureEvent) (models.DecisionMessage, error) {
	started := time.Now()
	log := logging.WithSymbol(e.logger, ev.Symbol)

	// Attach the closure to its chain, opening one for an original trade.
	chainID := ev.ChainID
	if chainID == "" {
		if ev.Generation != models.GenerationOriginal {
			return models.DecisionMessage{}, errors.ErrChainNotFound
		}
		chainID = e.chains.Open(ev.Symbol, ev.TradeID).ID
	}

	// Generation guard gate. Overflow is a contract breach in the
	// caller's bookkeeping: logged, counted, rejected, never clamped.
	if err := e.chains.Gate(chainID, ev.Generation); err != nil {
		var overflow *errors.GenerationOverflowError
		if errors.As(err, &overflow) {
			metrics.IncOverflow()
			logging.LogOverflow(log, chainID, overflow.Generation)
		}
		return models.DecisionMessage{}, err
	}

	resolved, err := e.resolver.Resolve(ev.Symbol, ev.Context())
	if err != nil {
		// Malformed context: this single decision is rejected, the
		// chain and the engine carry on.
		log.Warn().Err(err).Uint64("sequence_id", ev.SequenceID).Msg("Closure rejected")
		return models.DecisionMessage{}, err
	}

	// The closed trade's realized outcome feeds the combination's
	// running statistics exactly once.
	e.perf.Record(ev.Symbol, resolved.CombinationKey, ev.PnL)

	msg := models.DecisionMessage{
		Symbol:         ev.Symbol,
		CombinationKey: resolved.CombinationKey,
		ChainID:        chainID,
		SequenceID:     ev.SequenceID,
	}

	if verr := e.validator.Validate(resolved); verr != nil {
		status, _ := e.chains.ApplyRejected(chainID, ev.Generation, ev.PnL)

		var reject *errors.RejectError
		reason := verr.Error()
		if errors.As(verr, &reject) {
			reason = string(reject.Reason)
		}
		metrics.IncRejection(reason)
		logging.LogRejection(log, ev.Symbol, resolved.CombinationKey, reason)

		msg.Verdict = models.VerdictEndChain
		msg.Action = models.ActionNoReentry
		msg.ChainStatus = status
		msg.Rejected = true
		msg.RejectReason = reason
		e.finish(&msg, started, log)
		return msg, nil
	}

	status, err := e.chains.Apply(chainID, ev.Generation, resolved.Verdict, ev.PnL)
	if err != nil {
		return models.DecisionMessage{}, err
	}

	msg.Verdict = resolved.Verdict
	msg.Action = resolved.Cell.Action
	msg.ConfidenceMultiplier = resolved.Cell.ConfidenceMultiplier
	msg.RiskMultiplier = resolved.Cell.RiskMultiplier
	msg.DelayMinutes = resolved.Cell.DelayMinutes
	msg.ChainStatus = status

	// A terminal chain never carries a re-enter verdict outward: at the
	// generation cap the guard forces the chain closed whatever the
	// matrix said.
	if status.Terminal() && msg.Verdict == models.VerdictReenter {
		msg.Verdict = models.VerdictEndChain
		msg.Action = models.ActionNoReentry
	}

	e.finish(&msg, started, log)
	return msg, nil
}

// finish stamps latency, reports monitoring signals, and hands the
// message to the fire-and-forget sinks.
func (e *Engine) finish(msg *models.DecisionMessage, started time.Time, log zerolog.Logger) {
	latency := time.Since(started)
	msg.LatencyMicros = latency.Microseconds()

	metrics.ObserveLatency(latency.Seconds())
	metrics.IncDecision(string(msg.Verdict))
	metrics.SetActiveChains(e.chains.ActiveCount())

	if e.latencyBudget > 0 && latency > e.latencyBudget {
		metrics.IncBudgetBreach()
		logging.LogLatencyBreach(log, msg.Symbol, msg.CombinationKey, latency, e.latencyBudget)
	}

	logging.LogDecision(log, msg.Symbol, msg.CombinationKey, string(msg.Verdict), string(msg.Action), latency)

	if e.hub != nil {
		e.hub.Publish(*msg)
	}
	if e.auditor != nil {
		// Persisting the audit row must not gate the decision's return.
		m := *msg
		var ch *models.ReentryChain
		if c, err := e.chains.Get(msg.ChainID); err == nil {
			copied := *c
			ch = &copied
		}
		go func() {
			actx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.auditor.LogDecision(actx, &m, started); err != nil {
				e.logger.Error().Err(err).Msg("Decision audit write failed")
			}
			if ch != nil {
				if err := e.auditor.SaveChain(actx, ch); err != nil {
					e.logger.Error().Err(err).Msg("Chain persist failed")
				}
			}
		}()
	}
}
