package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"reentry-engine/internal/models"
	"reentry-engine/internal/performance"
)

func TestFlusherStopFlushes(t *testing.T) {
	s := newTestStore(t)
	acc := performance.NewAccumulator()
	acc.Record("EURUSD", "R1:ECO_HIGH:FLASH:IMMEDIATE:LOSS", -15)
	acc.Record("GBPUSD", "O:ALL_INDICATORS:LONG:WIN", 25)

	f, err := NewFlusher(s, acc, "@every 1h", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFlusher() error = %v", err)
	}
	f.Start()
	f.Stop()

	got, err := s.GetPerformance(context.Background(), "")
	if err != nil {
		t.Fatalf("GetPerformance() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("flushed %d records, want 2", len(got))
	}
}

func TestFlusherBadSpec(t *testing.T) {
	if _, err := NewFlusher(newTestStore(t), performance.NewAccumulator(), "not a spec", zerolog.Nop()); err == nil {
		t.Error("NewFlusher() accepted an invalid cron spec")
	}
}

// failingStore counts save attempts and fails the first one.
type failingStore struct {
	DataStore
	mu       sync.Mutex
	attempts int
	saved    []models.PerformanceRecord
}

func (f *failingStore) SavePerformance(ctx context.Context, records []models.PerformanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts == 1 {
		return errors.New("disk full")
	}
	f.saved = append(f.saved, records...)
	return nil
}

func (f *failingStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func TestFlusherRetriesFailedFlush(t *testing.T) {
	acc := performance.NewAccumulator()
	acc.Record("EURUSD", "R1:ECO_HIGH:FLASH:IMMEDIATE:LOSS", -15)

	fs := &failingStore{}
	f, err := NewFlusher(fs, acc, "@every 50ms", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFlusher() error = %v", err)
	}
	f.Start()

	deadline := time.After(5 * time.Second)
	for fs.savedCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("failed flush never retried")
		case <-time.After(20 * time.Millisecond):
		}
	}
	f.Stop()

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.attempts < 2 {
		t.Errorf("attempts = %d, want at least one retry", fs.attempts)
	}
	if fs.saved[0].Symbol != "EURUSD" {
		t.Errorf("retried record = %+v", fs.saved[0])
	}
}
