package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"reentry-engine/internal/matrix"
)

func newMatrixCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Combination matrix management",
		Long:  "Inspect, validate and export the per-symbol combination matrix.",
	}

	cmd.AddCommand(newMatrixShowCmd(app))
	cmd.AddCommand(newMatrixValidateCmd(app))
	cmd.AddCommand(newMatrixExportCmd(app))

	return cmd
}

func newMatrixShowCmd(app *App) *cobra.Command {
	var symbol string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show configured matrix cells",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			snap, err := app.loadMatrix()
			if err != nil {
				return fmt.Errorf("loading matrix: %w", err)
			}

			symbols := snap.Symbols()
			sort.Strings(symbols)

			if symbol != "" {
				symbols = []string{symbol}
			}

			if output.IsJSON() {
				out := make(map[string]interface{}, len(symbols))
				for _, s := range symbols {
					out[s] = snap.Cells(s)
				}
				return output.JSON(out)
			}

			for _, s := range symbols {
				cells := snap.Cells(s)
				if cells == nil {
					output.Warning("No cells configured for %s", s)
					continue
				}
				output.Bold("%s (%d cells)", s, len(cells))
				keys := make([]string, 0, len(cells))
				for k := range cells {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					cell := cells[k]
					state := "enabled"
					if !cell.Enabled {
						state = "disabled"
					}
					output.Printf("  %-55s %-14s conf=%.2f risk=%.2f delay=%dm %s\n",
						k, cell.Action, cell.ConfidenceMultiplier, cell.RiskMultiplier,
						cell.DelayMinutes, state)
				}
				output.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "limit to one symbol")
	return cmd
}

func newMatrixValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the matrix configuration directory",
		Long: `Validate that every configured key parses under the five-field
grammar, that multipliers and delays are in range, and that no symbol
carries duplicate keys. A four-field key for a duration-bearing signal
is a data-entry error, not inferred around.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			snap, err := matrix.LoadDir(app.Config.Matrix.Dir, 0)
			if err != nil {
				output.Error("Matrix validation failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"valid":   true,
					"symbols": len(snap.Symbols()),
					"cells":   snap.CellCount(),
				})
			}
			output.Success("Matrix is valid: %d symbols, %d cells", len(snap.Symbols()), snap.CellCount())
			return nil
		},
	}
}

func newMatrixExportCmd(app *App) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the loaded matrix back to CSV for audit",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			snap, err := app.loadMatrix()
			if err != nil {
				return fmt.Errorf("loading matrix: %w", err)
			}

			for _, s := range snap.Symbols() {
				path := filepath.Join(outDir, s+".csv")
				if err := matrix.ExportFile(path, snap.Cells(s)); err != nil {
					return fmt.Errorf("exporting %s: %w", s, err)
				}
				output.Info("Wrote %s", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	return cmd
}
