package store

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"reentry-engine/internal/performance"
)

// Flusher periodically persists dirty performance records to the store.
// Flushing runs off the decision hot path; a failed flush is retried on
// the next tick since records stay dirty until drained successfully.
type Flusher struct {
	store  DataStore
	acc    *performance.Accumulator
	logger zerolog.Logger
	cron   *cron.Cron
}

// NewFlusher creates a flusher on the given cron spec (e.g. "@every 1m").
func NewFlusher(store DataStore, acc *performance.Accumulator, spec string, logger zerolog.Logger) (*Flusher, error) {
	f := &Flusher{
		store:  store,
		acc:    acc,
		logger: logger,
		cron:   cron.New(),
	}
	if _, err := f.cron.AddFunc(spec, f.flush); err != nil {
		return nil, err
	}
	return f, nil
}

// Start begins the flush schedule.
func (f *Flusher) Start() {
	f.cron.Start()
}

// Stop halts the schedule and performs a final flush.
func (f *Flusher) Stop() {
	ctx := f.cron.Stop()
	<-ctx.Done()
	f.flush()
}

func (f *Flusher) flush() {
	records := f.acc.DrainDirty()
	if len(records) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := f.store.SavePerformance(ctx, records); err != nil {
		f.logger.Error().Err(err).Int("records", len(records)).Msg("Performance flush failed")
		// Mark the records dirty again so the next tick retries.
		for _, r := range records {
			f.acc.MarkDirty(r.Symbol, r.CombinationKey)
		}
		return
	}
	f.logger.Debug().Int("records", len(records)).Msg("Performance records flushed")
}
