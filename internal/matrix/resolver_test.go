package matrix

import (
	"testing"

	"reentry-engine/internal/errors"
	"reentry-engine/internal/models"
)

func newTestResolver() *Resolver {
	store := NewStore()

	disabled := enabledCell(models.ActionReverse, 1.0)
	disabled.Enabled = false

	store.Swap(NewSnapshot(1, map[string]map[string]models.DecisionCell{
		"EURUSD": {
			"R1:ECO_HIGH:FLASH:IMMEDIATE:LOSS": {
				Action:               models.ActionSameTrade,
				ConfidenceMultiplier: 1.2,
				RiskMultiplier:       2.5,
				DelayMinutes:         15,
				Enabled:              true,
			},
			"O:ALL_INDICATORS:LONG:WIN": disabled,
		},
	}))
	return NewResolver(store)
}

func TestResolve(t *testing.T) {
	resolver := newTestResolver()

	t.Run("configured enabled cell re-enters", func(t *testing.T) {
		d, err := resolver.Resolve("EURUSD", models.TradeContext{
			Signal:     models.SignalEcoHigh,
			Duration:   models.DurationFlash,
			Proximity:  models.ProximityImmediate,
			Outcome:    models.OutcomeLoss,
			Generation: models.GenerationFirst,
		})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if d.Verdict != models.VerdictReenter {
			t.Errorf("Verdict = %s, want REENTER", d.Verdict)
		}
		if d.CombinationKey != "R1:ECO_HIGH:FLASH:IMMEDIATE:LOSS" {
			t.Errorf("CombinationKey = %q", d.CombinationKey)
		}
		if d.Cell.Action != models.ActionSameTrade || d.Cell.RiskMultiplier != 2.5 {
			t.Errorf("Cell = %+v, want SAME_TRADE with risk 2.5", d.Cell)
		}
	})

	t.Run("missing cell ends the chain", func(t *testing.T) {
		d, err := resolver.Resolve("EURUSD", models.TradeContext{
			Signal:     models.SignalAllIndicators,
			Proximity:  models.ProximityShort,
			Outcome:    models.OutcomeSkip,
			Generation: models.GenerationOriginal,
		})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if d.Verdict != models.VerdictEndChain {
			t.Errorf("Verdict = %s, want END_CHAIN", d.Verdict)
		}
		if d.Cell.Action != models.ActionNoReentry || d.Cell.Enabled {
			t.Errorf("Cell = %+v, want inert parameters", d.Cell)
		}
	})

	t.Run("disabled cell ends the chain", func(t *testing.T) {
		d, err := resolver.Resolve("EURUSD", models.TradeContext{
			Signal:     models.SignalAllIndicators,
			Proximity:  models.ProximityLong,
			Outcome:    models.OutcomeWin,
			Generation: models.GenerationOriginal,
		})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if d.Verdict != models.VerdictEndChain {
			t.Errorf("Verdict = %s for a disabled cell, want END_CHAIN", d.Verdict)
		}
		if d.Cell.Action != models.ActionNoReentry {
			t.Errorf("Cell.Action = %s, want NO_REENTRY", d.Cell.Action)
		}
	})

	t.Run("unconfigured symbol ends the chain", func(t *testing.T) {
		d, err := resolver.Resolve("GBPJPY", models.TradeContext{
			Signal:     models.SignalEcoHigh,
			Duration:   models.DurationFlash,
			Proximity:  models.ProximityImmediate,
			Outcome:    models.OutcomeLoss,
			Generation: models.GenerationFirst,
		})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if d.Verdict != models.VerdictEndChain {
			t.Errorf("Verdict = %s, want END_CHAIN", d.Verdict)
		}
	})

	t.Run("malformed context is rejected", func(t *testing.T) {
		_, err := resolver.Resolve("EURUSD", models.TradeContext{
			Signal:     models.SignalAllIndicators,
			Duration:   models.DurationFlash, // duration on a non-duration signal
			Proximity:  models.ProximityImmediate,
			Outcome:    models.OutcomeLoss,
			Generation: models.GenerationOriginal,
		})
		var malformed *errors.MalformedContextError
		if !errors.As(err, &malformed) {
			t.Fatalf("Resolve() error = %v, want MalformedContextError", err)
		}
	})
}

// The resolver's cell is a copy: mutating the resolved decision must not
// reach the store.
func TestResolveReturnsCopy(t *testing.T) {
	resolver := newTestResolver()
	ctx := models.TradeContext{
		Signal:     models.SignalEcoHigh,
		Duration:   models.DurationFlash,
		Proximity:  models.ProximityImmediate,
		Outcome:    models.OutcomeLoss,
		Generation: models.GenerationFirst,
	}

	first, err := resolver.Resolve("EURUSD", ctx)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	first.Cell.RiskMultiplier = 99

	second, err := resolver.Resolve("EURUSD", ctx)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if second.Cell.RiskMultiplier != 2.5 {
		t.Errorf("store cell mutated through a resolved decision: risk = %.1f", second.Cell.RiskMultiplier)
	}
}
