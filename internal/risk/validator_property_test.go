package risk

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"reentry-engine/internal/config"
	"reentry-engine/internal/models"
)

// Property: the validator never clamps. For any decision it either
// accepts as-is or rejects outright; an accepted decision's effective
// risk is always within the ceiling and a rejected one is never within
// all limits simultaneously.
func TestProperty_ValidatorAcceptsOrRejectsNeverClamps(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	v := NewValidator(config.RiskConfig{
		BaseRiskPercent:         1.0,
		MaxEffectiveRiskPercent: 3.50,
		MinStopLossPips:         5.0,
	})

	properties.Property("accept iff all hard rules hold", prop.ForAll(
		func(riskMult, sl, tp float64, genVal int) bool {
			cell := models.DecisionCell{
				Action:         models.ActionSameTrade,
				RiskMultiplier: riskMult,
				StopLossPips:   sl,
				TakeProfitPips: tp,
				Enabled:        true,
			}
			d := models.ResolvedDecision{
				Symbol:         "EURUSD",
				CombinationKey: "R1:ECO_HIGH:FLASH:IMMEDIATE:LOSS",
				Verdict:        models.VerdictReenter,
				Cell:           cell,
				Generation:     models.Generation(genVal),
			}

			withinRisk := riskMult*1.0 <= 3.50
			pipsApply := sl > 0 || tp > 0
			withinPips := !pipsApply || (tp > sl && sl >= 5.0)
			withinGen := genVal <= models.MaxGeneration
			wantAccept := withinRisk && withinPips && withinGen

			err := v.Validate(d)
			if wantAccept {
				return err == nil
			}
			// The decision carried back is untouched; a reject never
			// rewrites the offending cell.
			return err != nil && d.Cell == cell
		},
		gen.Float64Range(0, 6),
		gen.Float64Range(0, 30),
		gen.Float64Range(0, 60),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}
