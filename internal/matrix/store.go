package matrix

import (
	"sync/atomic"
	"time"

	"reentry-engine/internal/models"
)

// Snapshot is an immutable view of the full matrix configuration. Once
// published it is never mutated; administrative reloads build a fresh
// snapshot and swap it in whole.
type Snapshot struct {
	cells    map[string]map[string]models.DecisionCell
	version  uint64
	loadedAt time.Time
}

// NewSnapshot builds a snapshot from per-symbol cell maps. The input
// maps are copied so later mutation by the caller cannot reach readers.
func NewSnapshot(version uint64, cells map[string]map[string]models.DecisionCell) *Snapshot {
	copied := make(map[string]map[string]models.DecisionCell, len(cells))
	for symbol, bySymbol := range cells {
		m := make(map[string]models.DecisionCell, len(bySymbol))
		for key, cell := range bySymbol {
			m[key] = cell
		}
		copied[symbol] = m
	}
	return &Snapshot{
		cells:    copied,
		version:  version,
		loadedAt: time.Now(),
	}
}

// Version returns the snapshot's version counter.
func (s *Snapshot) Version() uint64 { return s.version }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Symbols returns the configured symbols.
func (s *Snapshot) Symbols() []string {
	out := make([]string, 0, len(s.cells))
	for symbol := range s.cells {
		out = append(out, symbol)
	}
	return out
}

// CellCount returns the total number of configured cells.
func (s *Snapshot) CellCount() int {
	n := 0
	for _, bySymbol := range s.cells {
		n += len(bySymbol)
	}
	return n
}

// Cells returns the cells configured for a symbol. The returned map is
// part of the immutable snapshot; callers must not mutate it.
func (s *Snapshot) Cells(symbol string) map[string]models.DecisionCell {
	return s.cells[symbol]
}

// Store holds the currently published matrix snapshot. Reads on the hot
// decision path are a single atomic pointer load plus two hash lookups;
// an administrative reload publishes a whole new snapshot, so no reader
// ever observes cells from two different snapshots in one resolution.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

// NewStore creates a store with an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.snap.Store(NewSnapshot(0, nil))
	return s
}

// Current returns the currently published snapshot.
func (s *Store) Current() *Snapshot {
	return s.snap.Load()
}

// Swap publishes a new snapshot atomically.
func (s *Store) Swap(snap *Snapshot) {
	s.snap.Store(snap)
}

// GetCell looks up the cell configured for (symbol, key). The second
// return distinguishes "not configured" from "configured but disabled":
// a disabled cell is still returned with found=true.
func (s *Store) GetCell(symbol, key string) (models.DecisionCell, bool) {
	snap := s.snap.Load()
	bySymbol, ok := snap.cells[symbol]
	if !ok {
		return models.DecisionCell{}, false
	}
	cell, ok := bySymbol[key]
	return cell, ok
}
