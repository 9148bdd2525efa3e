// Package performance accumulates per-combination trade statistics.
package performance

import (
	"sync"
	"time"

	"reentry-engine/internal/models"
)

type recordKey struct {
	symbol string
	key    string
}

// Accumulator updates running statistics for each (symbol, combination
// key) pair. Updates are strictly incremental; nothing is recomputed
// from history. Record must be called exactly once per realized trade
// closure — a duplicate call corrupts the statistics and cannot be
// detected here (documented caller precondition).
type Accumulator struct {
	mu      sync.RWMutex
	records map[recordKey]*models.PerformanceRecord
	dirty   map[recordKey]struct{}
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		records: make(map[recordKey]*models.PerformanceRecord),
		dirty:   make(map[recordKey]struct{}),
	}
}

// Seed pre-loads a record, typically restored from the store at startup.
func (a *Accumulator) Seed(rec models.PerformanceRecord) {
	k := recordKey{symbol: rec.Symbol, key: rec.CombinationKey}
	a.mu.Lock()
	copied := rec
	a.records[k] = &copied
	a.mu.Unlock()
}

// Record applies one realized trade outcome to the combination's record
// and returns the updated copy.
func (a *Accumulator) Record(symbol, combinationKey string, pnl float64) models.PerformanceRecord {
	k := recordKey{symbol: symbol, key: combinationKey}

	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.records[k]
	if !ok {
		rec = &models.PerformanceRecord{
			Symbol:         symbol,
			CombinationKey: combinationKey,
		}
		a.records[k] = rec
	}

	rec.Executions++
	if pnl > 0 {
		rec.Wins++
	}
	rec.CumulativePnL += pnl

	// Welford single-pass variance update.
	delta := pnl - rec.MeanPnL
	rec.MeanPnL += delta / float64(rec.Executions)
	rec.M2 += delta * (pnl - rec.MeanPnL)

	// Drawdown against the running balance of this combination.
	if rec.CumulativePnL > rec.PeakBalance {
		rec.PeakBalance = rec.CumulativePnL
	}
	if dd := rec.PeakBalance - rec.CumulativePnL; dd > rec.MaxDrawdown {
		rec.MaxDrawdown = dd
	}

	rec.UpdatedAt = time.Now()
	a.dirty[k] = struct{}{}
	return *rec
}

// Get returns the record for (symbol, key), if present.
func (a *Accumulator) Get(symbol, combinationKey string) (models.PerformanceRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.records[recordKey{symbol: symbol, key: combinationKey}]
	if !ok {
		return models.PerformanceRecord{}, false
	}
	return *rec, true
}

// List returns copies of all records, optionally filtered by symbol.
func (a *Accumulator) List(symbol string) []models.PerformanceRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.PerformanceRecord, 0, len(a.records))
	for k, rec := range a.records {
		if symbol != "" && k.symbol != symbol {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

// MarkDirty flags a record for the next persistence drain. Used when a
// flush fails and its records must be retried.
func (a *Accumulator) MarkDirty(symbol, combinationKey string) {
	k := recordKey{symbol: symbol, key: combinationKey}
	a.mu.Lock()
	if _, ok := a.records[k]; ok {
		a.dirty[k] = struct{}{}
	}
	a.mu.Unlock()
}

// DrainDirty returns copies of the records updated since the last drain
// and clears the dirty set. Used by the periodic persistence flush.
func (a *Accumulator) DrainDirty() []models.PerformanceRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.PerformanceRecord, 0, len(a.dirty))
	for k := range a.dirty {
		out = append(out, *a.records[k])
	}
	a.dirty = make(map[recordKey]struct{})
	return out
}
