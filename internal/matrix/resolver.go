package matrix

import (
	"reentry-engine/internal/models"
)

// Resolver maps a classified trade context onto a resolved decision by
// building the combination key and looking up the configured cell. It
// performs no blocking I/O; the store access is an in-memory read.
type Resolver struct {
	store *Store
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve builds the combination key for ctx and returns the resolved
// decision. A missing or disabled cell yields an end-chain verdict with
// inert parameters; a found, enabled cell yields a re-enter verdict
// carrying a copy of the cell. The only error is a malformed context.
func (r *Resolver) Resolve(symbol string, ctx models.TradeContext) (models.ResolvedDecision, error) {
	key, err := BuildFromContext(ctx)
	if err != nil {
		return models.ResolvedDecision{}, err
	}
	keyStr := key.String()

	cell, found := r.store.GetCell(symbol, keyStr)
	if !found || !cell.Enabled {
		return models.ResolvedDecision{
			Symbol:         symbol,
			CombinationKey: keyStr,
			Verdict:        models.VerdictEndChain,
			Cell:           models.InertCell(),
			Generation:     ctx.Generation,
		}, nil
	}

	return models.ResolvedDecision{
		Symbol:         symbol,
		CombinationKey: keyStr,
		Verdict:        models.VerdictReenter,
		Cell:           cell,
		Generation:     ctx.Generation,
	}, nil
}
