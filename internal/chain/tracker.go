// Package chain tracks reentry chain lifecycles and enforces the hard
// generation cap.
package chain

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"reentry-engine/internal/errors"
	"reentry-engine/internal/models"
)

// Tracker owns the set of live and terminated chains. The engine
// serializes all calls for one symbol, so per-chain transitions are
// order-sensitive but never contended; the mutex covers cross-symbol
// administrative reads (CLI, stats).
type Tracker struct {
	mu     sync.RWMutex
	chains map[string]*models.ReentryChain
}

// NewTracker creates an empty chain tracker.
func NewTracker() *Tracker {
	return &Tracker{chains: make(map[string]*models.ReentryChain)}
}

// Open creates a new ACTIVE chain for an original trade and returns it.
func (t *Tracker) Open(symbol, originalTradeID string) *models.ReentryChain {
	c := &models.ReentryChain{
		ID:              uuid.NewString(),
		Symbol:          symbol,
		OriginalTradeID: originalTradeID,
		Generation:      models.GenerationOriginal,
		Status:          models.ChainActive,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	t.mu.Lock()
	t.chains[c.ID] = c
	t.mu.Unlock()
	return c
}

// Get returns the chain with the given ID.
func (t *Tracker) Get(chainID string) (*models.ReentryChain, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.chains[chainID]
	if !ok {
		return nil, errors.ErrChainNotFound
	}
	return c, nil
}

// List returns a copy of all tracked chains, optionally filtered by symbol.
func (t *Tracker) List(symbol string) []models.ReentryChain {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.ReentryChain, 0, len(t.chains))
	for _, c := range t.chains {
		if symbol != "" && c.Symbol != symbol {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// Gate checks that a closure at the given generation may be evaluated
// against this chain. Requesting a generation beyond the hard cap is a
// programming-contract breach surfaced as GenerationOverflowError, never
// silently clamped. A closure for a terminal chain or at a generation
// the chain has already moved past is rejected.
func (t *Tracker) Gate(chainID string, gen models.Generation) error {
	if gen > models.MaxGeneration {
		return errors.NewGenerationOverflowError(chainID, int(gen))
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.chains[chainID]
	if !ok {
		return errors.ErrChainNotFound
	}
	if c.Status.Terminal() {
		return errors.ErrChainTerminal
	}
	if gen < c.Generation {
		return errors.ErrDuplicateClosure
	}
	return nil
}

// Apply records a closure outcome against the chain and transitions it:
//
//	ORIGINAL  -> REENTRY_1 on a re-enter verdict after generation-0 closure
//	REENTRY_1 -> REENTRY_2 on a re-enter verdict after generation-1 closure
//	REENTRY_2 -> terminal (COMPLETED) unconditionally after its closure
//
// An end-chain verdict at any generation stops the chain immediately;
// reaching the generation cap completes it. Apply returns the chain's
// resulting status.
func (t *Tracker) Apply(chainID string, gen models.Generation, verdict models.Verdict, pnl float64) (models.ChainStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.chains[chainID]
	if !ok {
		return "", errors.ErrChainNotFound
	}
	if c.Status.Terminal() {
		return c.Status, errors.ErrChainTerminal
	}

	c.TradeCount++
	c.CumulativePnL += pnl
	c.UpdatedAt = time.Now()

	switch {
	case gen >= models.MaxGeneration:
		// No further re-entry is representable, whatever the verdict.
		c.Status = models.ChainCompleted
	case verdict == models.VerdictEndChain:
		c.Status = models.ChainStopped
	default:
		c.Generation = gen + 1
	}

	return c.Status, nil
}

// ApplyRejected records a closure whose decision the validator refused.
// The realized P/L still counts against the chain; the chain is STOPPED
// when the rejection hit an original evaluation and ERROR when it hit
// what would have been a re-entry.
func (t *Tracker) ApplyRejected(chainID string, gen models.Generation, pnl float64) (models.ChainStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.chains[chainID]
	if !ok {
		return "", errors.ErrChainNotFound
	}

	c.TradeCount++
	c.CumulativePnL += pnl
	c.UpdatedAt = time.Now()
	if gen == models.GenerationOriginal {
		c.Status = models.ChainStopped
	} else {
		c.Status = models.ChainError
	}
	return c.Status, nil
}

// ActiveCount returns the number of chains currently ACTIVE.
func (t *Tracker) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, c := range t.chains {
		if c.Status == models.ChainActive {
			n++
		}
	}
	return n
}

// MarkStopped terminates a chain after a rejection on an original
// evaluation.
func (t *Tracker) MarkStopped(chainID string) error {
	return t.terminate(chainID, models.ChainStopped)
}

// MarkError terminates a chain after a rejection on what would have been
// a re-entry.
func (t *Tracker) MarkError(chainID string) error {
	return t.terminate(chainID, models.ChainError)
}

func (t *Tracker) terminate(chainID string, status models.ChainStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.chains[chainID]
	if !ok {
		return errors.ErrChainNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

// Remove drops a chain from the tracker, typically after it has been
// persisted. Terminal chains only.
func (t *Tracker) Remove(chainID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.chains[chainID]; ok && c.Status.Terminal() {
		delete(t.chains, chainID)
	}
}
