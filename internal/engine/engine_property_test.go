package engine

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"reentry-engine/internal/models"
)

// Property: no re-enter verdict ever leaves the engine for a closure at
// the generation cap, whatever the matrix says for that combination.
func TestProperty_NoReenterAtGenerationCap(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("generation-2 closures always end the chain", prop.ForAll(
		func(riskMult, confMult float64, enabled bool, pnl float64) bool {
			cells := map[string]map[string]models.DecisionCell{
				"EURUSD": {
					"O:ECO_HIGH:FLASH:IMMEDIATE:LOSS": {
						Action: models.ActionSameTrade, RiskMultiplier: 1.0, Enabled: true,
					},
					"R1:ECO_HIGH:FLASH:IMMEDIATE:LOSS": {
						Action: models.ActionSameTrade, RiskMultiplier: 1.0, Enabled: true,
					},
					"R2:ECO_HIGH:FLASH:IMMEDIATE:LOSS": {
						Action:               models.ActionIncreaseSize,
						ConfidenceMultiplier: confMult,
						RiskMultiplier:       riskMult,
						Enabled:              enabled,
					},
				},
			}
			e := testEngine(t, cells, nil)
			ctx := context.Background()

			first, err := e.ProcessClosure(ctx, ecoHighEvent(models.GenerationOriginal, "", "T-1", pnl, 1))
			if err != nil {
				return false
			}
			if _, err := e.ProcessClosure(ctx, ecoHighEvent(models.GenerationFirst, first.ChainID, "T-2", pnl, 2)); err != nil {
				return false
			}

			msg, err := e.ProcessClosure(ctx, ecoHighEvent(models.GenerationSecond, first.ChainID, "T-3", pnl, 3))
			if err != nil {
				return false
			}
			if msg.Verdict == models.VerdictReenter {
				return false
			}

			// And the chain is terminal afterwards.
			c, err := e.Chains().Get(first.ChainID)
			if err != nil {
				return false
			}
			return c.Status.Terminal()
		},
		gen.Float64Range(0, 3),
		gen.Float64Range(0, 2),
		gen.Bool(),
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t)
}

// Property: chain P/L accounting is exact. Over any sequence of closure
// P/Ls the chain's cumulative P/L equals their sum and the trade count
// equals the number of applied closures.
func TestProperty_ChainAccountingIsExact(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("cumulative P/L is the sum of applied closures", prop.ForAll(
		func(pnl0, pnl1, pnl2 int) bool {
			e := testEngine(t, ecoHighCells(models.DecisionCell{
				Action: models.ActionSameTrade, RiskMultiplier: 1.0, Enabled: true,
			}), nil)
			ctx := context.Background()
			pnls := []float64{float64(pnl0), float64(pnl1), float64(pnl2)}

			first, err := e.ProcessClosure(ctx, ecoHighEvent(models.GenerationOriginal, "", "T-1", pnls[0], 1))
			if err != nil {
				return false
			}
			for i, g := range []models.Generation{models.GenerationFirst, models.GenerationSecond} {
				if _, err := e.ProcessClosure(ctx, ecoHighEvent(g, first.ChainID, "T", pnls[i+1], uint64(i+2))); err != nil {
					return false
				}
			}

			c, err := e.Chains().Get(first.ChainID)
			if err != nil {
				return false
			}
			return c.TradeCount == 3 && c.CumulativePnL == pnls[0]+pnls[1]+pnls[2]
		},
		gen.IntRange(-1000, 1000),
		gen.IntRange(-1000, 1000),
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t)
}
