package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"reentry-engine/internal/models"
)

// newResolveCmd evaluates a single classified closure against the
// configured matrix without touching chain or performance state. Useful
// for operators checking what a given combination would decide.
func newResolveCmd(app *App) *cobra.Command {
	var (
		symbol     string
		signal     string
		duration   string
		proximity  string
		outcome    string
		generation int
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one classified closure against the matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if _, err := app.loadMatrix(); err != nil {
				return fmt.Errorf("loading matrix: %w", err)
			}

			ctx := models.TradeContext{
				Signal:     models.SignalType(signal),
				Duration:   models.DurationCategory(duration),
				Proximity:  models.Proximity(proximity),
				Outcome:    models.Outcome(outcome),
				Generation: models.Generation(generation),
			}

			resolved, err := app.Resolver.Resolve(symbol, ctx)
			if err != nil {
				output.Error("Resolution failed: %v", err)
				return err
			}

			verr := app.Validator.Validate(resolved)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"resolved":  resolved,
					"validated": verr == nil,
					"rejection": errString(verr),
				})
			}

			output.Bold("Combination: %s", resolved.CombinationKey)
			output.Printf("  Verdict:     %s\n", resolved.Verdict)
			output.Printf("  Action:      %s\n", resolved.Cell.Action)
			output.Printf("  Confidence:  %.2fx\n", resolved.Cell.ConfidenceMultiplier)
			output.Printf("  Risk:        %.2fx (effective %.2f%%)\n",
				resolved.Cell.RiskMultiplier, app.Validator.EffectiveRisk(resolved))
			output.Printf("  Delay:       %d min\n", resolved.Cell.DelayMinutes)
			if verr != nil {
				output.Error("Rejected: %v", verr)
			} else {
				output.Success("Validation passed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "trading symbol (required)")
	cmd.Flags().StringVar(&signal, "signal", "", "signal type, e.g. ECO_HIGH (required)")
	cmd.Flags().StringVar(&duration, "duration", "", "duration category for ECO_HIGH/ECO_MED")
	cmd.Flags().StringVar(&proximity, "proximity", "", "proximity bucket, e.g. IMMEDIATE (required)")
	cmd.Flags().StringVar(&outcome, "outcome", "", "trade outcome, e.g. LOSS (required)")
	cmd.Flags().IntVar(&generation, "generation", 0, "re-entry generation [0,2]")
	cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagRequired("signal")
	cmd.MarkFlagRequired("proximity")
	cmd.MarkFlagRequired("outcome")

	return cmd
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
