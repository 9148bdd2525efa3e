package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reentry-engine/internal/engine"
	"reentry-engine/internal/metrics"
	"reentry-engine/internal/models"
	"reentry-engine/internal/store"
	"reentry-engine/internal/stream"
)

// newServeCmd runs the engine as a long-lived service: closure events in
// as NDJSON on stdin (or a file), decision messages out as NDJSON on
// stdout, Prometheus metrics on the configured listen address.
func newServeCmd(app *App) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reentry decision service",
		Long: `Run the engine as a service. Trade-closure events are read as
newline-delimited JSON from stdin (or --input), evaluated in per-symbol
order, and the resulting decision messages are written as
newline-delimited JSON to stdout. Performance records are flushed to the
store on the configured interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(app, inputPath)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "read closure events from file instead of stdin")
	return cmd
}

func runServe(app *App, inputPath string) error {
	snap, err := app.loadMatrix()
	if err != nil {
		return fmt.Errorf("loading matrix: %w", err)
	}
	metrics.SetMatrixCells(snap.CellCount())

	dataStore, err := store.NewSQLiteStore(app.Config.Store.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer dataStore.Close()

	// Restore persisted performance records so statistics continue
	// across restarts.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// SIGHUP swaps in a freshly loaded matrix snapshot; in-flight
	// resolutions finish on the snapshot they started with.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-reload:
				snap, err := app.loadMatrix()
				if err != nil {
					app.Logger.Error().Err(err).Msg("Matrix reload failed, keeping current snapshot")
					continue
				}
				metrics.SetMatrixCells(snap.CellCount())
			}
		}
	}()
	records, err := dataStore.GetPerformance(ctx, "")
	if err != nil {
		return fmt.Errorf("restoring performance records: %w", err)
	}
	for _, r := range records {
		app.Perf.Seed(r)
	}
	app.Logger.Info().Int("records", len(records)).Msg("Performance records restored")

	hub := stream.NewHub()
	defer hub.Close()

	eng := engine.New(app.Config.Engine, app.Resolver, app.Validator,
		app.Chains, app.Perf, hub, dataStore, app.Logger)

	flusher, err := store.NewFlusher(dataStore, app.Perf, app.Config.Engine.FlushInterval, app.Logger)
	if err != nil {
		return fmt.Errorf("creating flusher: %w", err)
	}
	flusher.Start()
	defer flusher.Stop()

	if app.Config.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(app.Config.Metrics.ListenAddr, mux); err != nil {
				app.Logger.Error().Err(err).Msg("Metrics listener failed")
			}
		}()
		app.Logger.Info().Str("addr", app.Config.Metrics.ListenAddr).Msg("Metrics listening")
	}

	// Decisions stream to stdout in per-symbol order.
	encoder := json.NewEncoder(os.Stdout)
	dispatcher := engine.NewDispatcher(eng, app.Config.Engine.SymbolQueueSize, func(msg models.DecisionMessage) {
		if err := encoder.Encode(msg); err != nil {
			app.Logger.Error().Err(err).Msg("Decision encode failed")
		}
	})
	defer dispatcher.Stop()

	input := os.Stdin
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		input = f
	}

	app.Logger.Info().Int("symbols", len(snap.Symbols())).Int("cells", snap.CellCount()).Msg("Engine serving")

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			app.Logger.Info().Msg("Shutdown requested")
			return nil
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev models.ClosureEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			app.Logger.Warn().Err(err).Msg("Malformed closure event skipped")
			continue
		}
		if !dispatcher.Submit(ev) {
			app.Logger.Warn().Str("symbol", ev.Symbol).Uint64("sequence_id", ev.SequenceID).
				Msg("Closure event dropped: queue full")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	app.Logger.Info().Msg("Input drained, shutting down")
	return nil
}
