package performance

import (
	"math"
	"testing"

	"reentry-engine/internal/models"
)

const testKey = "R1:ECO_HIGH:FLASH:IMMEDIATE:LOSS"

func TestRecord(t *testing.T) {
	acc := NewAccumulator()

	trades := []float64{25, -10, 40, -10, 5}
	var rec models.PerformanceRecord
	for _, pnl := range trades {
		rec = acc.Record("EURUSD", testKey, pnl)
	}

	if rec.Executions != 5 {
		t.Errorf("Executions = %d, want 5", rec.Executions)
	}
	if rec.Wins != 3 {
		t.Errorf("Wins = %d, want 3", rec.Wins)
	}
	if rec.CumulativePnL != 50 {
		t.Errorf("CumulativePnL = %.2f, want 50.00", rec.CumulativePnL)
	}
	if got, want := rec.WinRate(), 0.6; math.Abs(got-want) > 1e-12 {
		t.Errorf("WinRate() = %.4f, want %.4f", got, want)
	}
}

// The Welford update must agree with the direct two-pass computation.
func TestRecordVarianceMatchesDirect(t *testing.T) {
	acc := NewAccumulator()
	trades := []float64{12.5, -33.1, 7.75, 0.0, 91.2, -45.6, 3.3, 18.0}

	var rec models.PerformanceRecord
	for _, pnl := range trades {
		rec = acc.Record("EURUSD", testKey, pnl)
	}

	mean := 0.0
	for _, v := range trades {
		mean += v
	}
	mean /= float64(len(trades))

	variance := 0.0
	for _, v := range trades {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(trades) - 1)

	if math.Abs(rec.MeanPnL-mean) > 1e-9 {
		t.Errorf("MeanPnL = %.9f, want %.9f", rec.MeanPnL, mean)
	}
	if math.Abs(rec.Variance()-variance) > 1e-9 {
		t.Errorf("Variance() = %.9f, want %.9f", rec.Variance(), variance)
	}

	wantSharpe := mean / math.Sqrt(variance)
	if math.Abs(rec.SharpeRatio()-wantSharpe) > 1e-9 {
		t.Errorf("SharpeRatio() = %.9f, want %.9f", rec.SharpeRatio(), wantSharpe)
	}
}

func TestVarianceDegenerateCases(t *testing.T) {
	acc := NewAccumulator()

	rec := acc.Record("EURUSD", testKey, 10)
	if rec.Variance() != 0 {
		t.Errorf("Variance() = %.4f after one trade, want 0", rec.Variance())
	}
	if rec.SharpeRatio() != 0 {
		t.Errorf("SharpeRatio() = %.4f after one trade, want 0", rec.SharpeRatio())
	}

	// Identical outcomes have zero variance and therefore no Sharpe.
	rec = acc.Record("EURUSD", testKey, 10)
	if rec.Variance() != 0 {
		t.Errorf("Variance() = %.4f for identical trades, want 0", rec.Variance())
	}
	if rec.SharpeRatio() != 0 {
		t.Errorf("SharpeRatio() = %.4f for zero variance, want 0", rec.SharpeRatio())
	}
}

func TestDrawdown(t *testing.T) {
	acc := NewAccumulator()

	// Balance path: 100, 60, 130, 50, 80. Peak 130, trough 50.
	for _, pnl := range []float64{100, -40, 70, -80, 30} {
		acc.Record("EURUSD", testKey, pnl)
	}

	rec, ok := acc.Get("EURUSD", testKey)
	if !ok {
		t.Fatal("Get() record missing")
	}
	if rec.PeakBalance != 130 {
		t.Errorf("PeakBalance = %.2f, want 130.00", rec.PeakBalance)
	}
	if rec.MaxDrawdown != 80 {
		t.Errorf("MaxDrawdown = %.2f, want 80.00", rec.MaxDrawdown)
	}
}

func TestRecordsAreIndependent(t *testing.T) {
	acc := NewAccumulator()
	acc.Record("EURUSD", testKey, 10)
	acc.Record("EURUSD", "O:ALL_INDICATORS:LONG:WIN", -5)
	acc.Record("GBPUSD", testKey, 20)

	rec, _ := acc.Get("EURUSD", testKey)
	if rec.Executions != 1 || rec.CumulativePnL != 10 {
		t.Errorf("EURUSD record bled across combinations: %+v", rec)
	}
	if got := len(acc.List("EURUSD")); got != 2 {
		t.Errorf("List(EURUSD) = %d records, want 2", got)
	}
	if got := len(acc.List("")); got != 3 {
		t.Errorf("List() = %d records, want 3", got)
	}
}

func TestDrainDirty(t *testing.T) {
	acc := NewAccumulator()
	acc.Record("EURUSD", testKey, 10)
	acc.Record("GBPUSD", testKey, -5)

	dirty := acc.DrainDirty()
	if len(dirty) != 2 {
		t.Fatalf("DrainDirty() = %d records, want 2", len(dirty))
	}
	if len(acc.DrainDirty()) != 0 {
		t.Error("second DrainDirty() returned records without new updates")
	}

	acc.Record("EURUSD", testKey, 3)
	dirty = acc.DrainDirty()
	if len(dirty) != 1 || dirty[0].Symbol != "EURUSD" {
		t.Errorf("DrainDirty() after one update = %+v, want the EURUSD record", dirty)
	}
}

func TestMarkDirty(t *testing.T) {
	acc := NewAccumulator()
	acc.Record("EURUSD", testKey, 10)
	acc.DrainDirty()

	// A failed flush re-flags its records for the next drain.
	acc.MarkDirty("EURUSD", testKey)
	if got := len(acc.DrainDirty()); got != 1 {
		t.Errorf("DrainDirty() after MarkDirty = %d records, want 1", got)
	}

	// Marking an unknown record is a no-op.
	acc.MarkDirty("GBPUSD", testKey)
	if got := len(acc.DrainDirty()); got != 0 {
		t.Errorf("DrainDirty() after marking unknown record = %d, want 0", got)
	}
}

func TestSeed(t *testing.T) {
	acc := NewAccumulator()
	acc.Seed(models.PerformanceRecord{
		Symbol:         "EURUSD",
		CombinationKey: testKey,
		Executions:     10,
		Wins:           6,
		CumulativePnL:  150,
		MeanPnL:        15,
		M2:             900,
		PeakBalance:    200,
		MaxDrawdown:    50,
	})

	// Seeded state is already persisted; it must not appear dirty.
	if got := len(acc.DrainDirty()); got != 0 {
		t.Errorf("DrainDirty() after Seed = %d records, want 0", got)
	}

	rec := acc.Record("EURUSD", testKey, 35)
	if rec.Executions != 11 {
		t.Errorf("Executions = %d, want restore plus one", rec.Executions)
	}
	if rec.CumulativePnL != 185 {
		t.Errorf("CumulativePnL = %.2f, want 185.00", rec.CumulativePnL)
	}
	// Welford continues from the restored state.
	wantMean := 15 + (35-15.0)/11
	if math.Abs(rec.MeanPnL-wantMean) > 1e-9 {
		t.Errorf("MeanPnL = %.9f, want %.9f", rec.MeanPnL, wantMean)
	}
}
