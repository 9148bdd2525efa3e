package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"reentry-engine/internal/models"
	"reentry-engine/internal/store"
)

// newStatsCmd reports per-combination performance from the store.
func newStatsCmd(app *App) *cobra.Command {
	var symbol string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-combination performance statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			dataStore, err := store.NewSQLiteStore(app.Config.Store.DBPath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer dataStore.Close()

			records, err := dataStore.GetPerformance(cmd.Context(), symbol)
			if err != nil {
				return fmt.Errorf("querying performance: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(records)
			}

			if len(records) == 0 {
				output.Warning("No performance records")
				return nil
			}

			sort.Slice(records, func(i, j int) bool {
				if records[i].Symbol != records[j].Symbol {
					return records[i].Symbol < records[j].Symbol
				}
				return records[i].CombinationKey < records[j].CombinationKey
			})

			currentSymbol := ""
			for i := range records {
				r := &records[i]
				if r.Symbol != currentSymbol {
					currentSymbol = r.Symbol
					output.Bold("%s", r.Symbol)
				}
				output.Printf("  %-55s n=%-4d win=%5.1f%% pnl=%9.2f sharpe=%6.2f maxdd=%8.2f\n",
					r.CombinationKey, r.Executions, r.WinRate()*100,
					r.CumulativePnL, r.SharpeRatio(), r.MaxDrawdown)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "limit to one symbol")
	return cmd
}

// newChainsCmd reports chain lifecycles from the store.
func newChainsCmd(app *App) *cobra.Command {
	var (
		symbol string
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "chains",
		Short: "Show reentry chain lifecycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			dataStore, err := store.NewSQLiteStore(app.Config.Store.DBPath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer dataStore.Close()

			chains, err := dataStore.GetChains(cmd.Context(), store.ChainFilter{
				Symbol: symbol,
				Status: models.ChainStatus(status),
				Limit:  limit,
			})
			if err != nil {
				return fmt.Errorf("querying chains: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(chains)
			}

			if len(chains) == 0 {
				output.Warning("No chains found")
				return nil
			}

			for _, c := range chains {
				output.Printf("%s  %-8s gen=%d trades=%d pnl=%9.2f %-9s %s\n",
					c.ID, c.Symbol, c.Generation, c.TradeCount, c.CumulativePnL,
					c.Status, c.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "limit to one symbol")
	cmd.Flags().StringVar(&status, "status", "", "limit to one status (ACTIVE, COMPLETED, STOPPED, ERROR)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	return cmd
}
