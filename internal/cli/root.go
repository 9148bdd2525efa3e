package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"reentry-engine/internal/chain"
	"reentry-engine/internal/config"
	"reentry-engine/internal/logging"
	"reentry-engine/internal/matrix"
	"reentry-engine/internal/performance"
	"reentry-engine/internal/risk"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Matrix    *matrix.Store
	Resolver  *matrix.Resolver
	Validator *risk.Validator
	Chains    *chain.Tracker
	Perf      *performance.Accumulator

	matrixVersion uint64
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	store := matrix.NewStore()
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Matrix:    store,
		Resolver:  matrix.NewResolver(store),
		Validator: risk.NewValidator(cfg.Risk),
		Chains:    chain.NewTracker(),
		Perf:      performance.NewAccumulator(),
	}

	rootCmd := &cobra.Command{
		Use:   "reentryd",
		Short: "Reentry decision engine for post-closure trade evaluation",
		Long: `reentryd decides, after each trade closes, whether and how to
re-enter a position. It maps the trade's classification (signal type,
duration, outcome, event proximity, re-entry generation) onto a
risk-checked decision cell from a per-symbol combination matrix, while
enforcing a hard cap on chain depth.

Use 'reentryd help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/reentry-engine)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newResolveCmd(app))
	rootCmd.AddCommand(newMatrixCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newChainsCmd(app))

	return rootCmd
}

// loadMatrix reads the configured matrix directory and publishes a fresh
// snapshot. Safe to call while resolutions are in flight.
func (a *App) loadMatrix() (*matrix.Snapshot, error) {
	a.matrixVersion++
	snap, err := matrix.LoadDir(a.Config.Matrix.Dir, a.matrixVersion)
	if err != nil {
		return nil, err
	}
	a.Matrix.Swap(snap)
	logging.LogMatrixReload(a.Logger, len(snap.Symbols()), snap.CellCount())
	return snap, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("reentryd v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Engine Configuration")
	output.Printf("  Latency Budget:  %dms\n", cfg.Engine.LatencyBudgetMs)
	output.Printf("  Queue Size:      %d\n", cfg.Engine.SymbolQueueSize)
	output.Printf("  Flush Interval:  %s\n", cfg.Engine.FlushInterval)
	output.Println()

	output.Bold("Risk Configuration")
	output.Printf("  Base Risk:       %.2f%%\n", cfg.Risk.BaseRiskPercent)
	output.Printf("  Max Eff. Risk:   %.2f%%\n", cfg.Risk.MaxEffectiveRiskPercent)
	output.Printf("  Min Stop Loss:   %.1f pips\n", cfg.Risk.MinStopLossPips)
	output.Println()

	output.Bold("Matrix")
	output.Printf("  Directory:       %s\n", cfg.Matrix.Dir)
	output.Println()

	output.Bold("Store")
	output.Printf("  Database:        %s\n", cfg.Store.DBPath)
	output.Println()

	output.Bold("Metrics")
	output.Printf("  Enabled:         %v\n", cfg.Metrics.Enabled)
	output.Printf("  Listen Address:  %s\n", cfg.Metrics.ListenAddr)

	return nil
}
