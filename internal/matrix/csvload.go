package matrix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"reentry-engine/internal/models"
)

// csvRow is the on-disk row format of a matrix CSV file. One file per
// symbol; the symbol is the file's base name.
type csvRow struct {
	Key                  string  `csv:"key"`
	Action               string  `csv:"action"`
	ConfidenceMultiplier float64 `csv:"confidence_multiplier"`
	RiskMultiplier       float64 `csv:"risk_multiplier"`
	DelayMinutes         int     `csv:"delay_minutes"`
	Enabled              bool    `csv:"enabled"`
	StopLossPips         float64 `csv:"stop_loss_pips"`
	TakeProfitPips       float64 `csv:"take_profit_pips"`
}

// LoadDir reads every *.csv file under dir into a new snapshot. Each
// configured key must parse under the five-field grammar and each cell
// must pass structural validation; a bad row fails the whole load so a
// half-valid matrix is never published.
func LoadDir(dir string, version uint64) (*Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading matrix dir: %w", err)
	}

	cells := make(map[string]map[string]models.DecisionCell)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		symbol := strings.TrimSuffix(entry.Name(), ".csv")
		bySymbol, err := loadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		cells[symbol] = bySymbol
	}

	return NewSnapshot(version, cells), nil
}

func loadFile(path string) (map[string]models.DecisionCell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}

	out := make(map[string]models.DecisionCell, len(rows))
	for i, row := range rows {
		key, err := Parse(row.Key)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		cell := models.DecisionCell{
			Action:               models.ActionType(row.Action),
			ConfidenceMultiplier: row.ConfidenceMultiplier,
			RiskMultiplier:       row.RiskMultiplier,
			DelayMinutes:         row.DelayMinutes,
			Enabled:              row.Enabled,
			StopLossPips:         row.StopLossPips,
			TakeProfitPips:       row.TakeProfitPips,
		}
		if err := ValidateCell(cell); err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+1, row.Key, err)
		}
		canonical := key.String()
		if _, dup := out[canonical]; dup {
			return nil, fmt.Errorf("row %d: duplicate key %s", i+1, canonical)
		}
		out[canonical] = cell
	}
	return out, nil
}

// ValidateCell checks the structural ranges of a configured cell. These
// are configuration sanity bounds, separate from the runtime risk gate.
func ValidateCell(cell models.DecisionCell) error {
	if !cell.Action.Valid() {
		return fmt.Errorf("unknown action %q", cell.Action)
	}
	if cell.ConfidenceMultiplier < 0 || cell.ConfidenceMultiplier > 2.0 {
		return fmt.Errorf("confidence_multiplier %.2f out of [0, 2.0]", cell.ConfidenceMultiplier)
	}
	if cell.RiskMultiplier < 0 || cell.RiskMultiplier > 3.0 {
		return fmt.Errorf("risk_multiplier %.2f out of [0, 3.0]", cell.RiskMultiplier)
	}
	if cell.DelayMinutes < 0 || cell.DelayMinutes > 60 {
		return fmt.Errorf("delay_minutes %d out of [0, 60]", cell.DelayMinutes)
	}
	if cell.StopLossPips < 0 || cell.TakeProfitPips < 0 {
		return fmt.Errorf("pip distances must be non-negative")
	}
	return nil
}

// ExportFile writes the cells configured for one symbol back to CSV in
// the on-disk row format, for audit.
func ExportFile(path string, cells map[string]models.DecisionCell) error {
	rows := make([]*csvRow, 0, len(cells))
	for key, cell := range cells {
		rows = append(rows, &csvRow{
			Key:                  key,
			Action:               string(cell.Action),
			ConfidenceMultiplier: cell.ConfidenceMultiplier,
			RiskMultiplier:       cell.RiskMultiplier,
			DelayMinutes:         cell.DelayMinutes,
			Enabled:              cell.Enabled,
			StopLossPips:         cell.StopLossPips,
			TakeProfitPips:       cell.TakeProfitPips,
		})
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&rows, f)
}
