package algorithms

import "sort"

// RankedBreakdown is a breakdown that survived filtering, with its
// dense 1-based rank.
type RankedBreakdown struct {
	ScoreBreakdown
	Rang int `json:"rang"`
}

// FilterAndRank reduces the scored candidate set of one besoin to the
// ordered, retained subset:
//
//  1. disqualified pairs and totals below seuil are dropped,
//  2. the rest sorts by total desc, then experience sub-score desc,
//     then candidat ID asc. The order is total, so re-runs over unchanged
//     inputs reproduce ranks bit-for-bit,
//  3. the list truncates to limit and ranks are assigned 1..K.
//
// The input slice is not modified.
func FilterAndRank(breakdowns []*ScoreBreakdown, seuil float64, limit int) []RankedBreakdown {
	retained := make([]*ScoreBreakdown, 0, len(breakdowns))
	for _, b := range breakdowns {
		if b == nil || b.Disqualifie {
			continue
		}
		if b.Total < seuil {
			continue
		}
		retained = append(retained, b)
	}

	sort.Slice(retained, func(i, j int) bool {
		a, b := retained[i], retained[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.Experience != b.Experience {
			return a.Experience > b.Experience
		}
		return a.CandidatID < b.CandidatID
	})

	if limit > 0 && len(retained) > limit {
		retained = retained[:limit]
	}

	ranked := make([]RankedBreakdown, len(retained))
	for i, b := range retained {
		ranked[i] = RankedBreakdown{ScoreBreakdown: *b, Rang: i + 1}
	}
	return ranked
}
