package pipeline

import (
	"github.com/leobook/canondict/internal/domain"
)

// Aggregate folds raw extraction records into one alias group per source ID.
// Variant distinctness is judged on the normalized form; the original
// casing of the first-seen spelling survives, and insertion order is
// preserved so the first-seen variant is the display candidate. The pass is
// deterministic for a given input sequence.
func Aggregate(records []domain.RawRecord) []domain.AliasGroup {
	byID := make(map[string]*domain.AliasGroup, len(records))
	var order []string

	for _, rec := range records {
		g, ok := byID[rec.SourceID]
		if !ok {
			g = &domain.AliasGroup{
				SourceID:   rec.SourceID,
				Kind:       rec.Kind,
				RegionHint: rec.RegionHint,
			}
			byID[rec.SourceID] = g
			order = append(order, rec.SourceID)
		}
		// The first record with a region hint wins; later conflicting hints
		// for the same source are noise.
		if g.RegionHint == "" && rec.RegionHint != "" {
			g.RegionHint = rec.RegionHint
		}
		g.AddName(rec.RawName)
	}

	groups := make([]domain.AliasGroup, 0, len(order))
	for _, id := range order {
		g := byID[id]
		if len(g.Names) == 0 {
			continue
		}
		groups = append(groups, *g)
	}
	return groups
}
