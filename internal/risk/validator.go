// Package risk implements the hard validation gate applied to every
// resolved decision before it becomes effective.
package risk

import (
	"reentry-engine/internal/config"
	"reentry-engine/internal/errors"
	"reentry-engine/internal/models"
)

// Validator enforces the hard numeric and structural limits. A reject is
// terminal for that decision: values are never clamped or downgraded,
// the caller receives the rejection and must not place the trade.
type Validator struct {
	baseRiskPercent float64
	maxRiskPercent  float64
	minStopLossPips float64
}

// NewValidator creates a validator from risk configuration.
func NewValidator(cfg config.RiskConfig) *Validator {
	return &Validator{
		baseRiskPercent: cfg.BaseRiskPercent,
		maxRiskPercent:  cfg.MaxEffectiveRiskPercent,
		minStopLossPips: cfg.MinStopLossPips,
	}
}

// EffectiveRisk returns the base risk scaled by the cell's risk
// multiplier, in percent.
func (v *Validator) EffectiveRisk(d models.ResolvedDecision) float64 {
	return d.Cell.RiskMultiplier * v.baseRiskPercent
}

// Validate checks all hard rules. It returns nil when the decision may
// become effective, or a *errors.RejectError naming the violated rule.
// All rules must hold simultaneously; the first violation is reported.
func (v *Validator) Validate(d models.ResolvedDecision) error {
	if eff := v.EffectiveRisk(d); eff > v.maxRiskPercent {
		return errors.NewRejectError(errors.ReasonRiskLimitExceeded, d.CombinationKey,
			eff, v.maxRiskPercent, "effective risk exceeds hard ceiling")
	}

	// Pip distance checks apply only when the action carries explicit
	// stop/target distances.
	if d.Cell.StopLossPips > 0 || d.Cell.TakeProfitPips > 0 {
		if d.Cell.TakeProfitPips <= d.Cell.StopLossPips {
			return errors.NewRejectError(errors.ReasonInvalidStopTakeProfit, d.CombinationKey,
				d.Cell.TakeProfitPips, d.Cell.StopLossPips, "take profit must exceed stop loss")
		}
		if d.Cell.StopLossPips < v.minStopLossPips {
			return errors.NewRejectError(errors.ReasonStopLossTooTight, d.CombinationKey,
				d.Cell.StopLossPips, v.minStopLossPips, "stop loss below minimum distance")
		}
	}

	// The generation guard enforces this earlier; the validator re-checks
	// as a defense-in-depth invariant.
	if d.Generation > models.MaxGeneration {
		return errors.NewRejectError(errors.ReasonGenerationLimitExceeded, d.CombinationKey,
			float64(d.Generation), float64(models.MaxGeneration), "generation beyond hard cap")
	}

	return nil
}
