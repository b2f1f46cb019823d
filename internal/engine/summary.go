package engine

// BreakdownEntry is the aggregated local value of one asset type.
type BreakdownEntry struct {
	Type  AssetType `json:"type"`
	Value float64   `json:"value"`
	Color string    `json:"color"`
}

// Summary is the portfolio-wide valuation.
type Summary struct {
	Total               float64          `json:"total"`
	Breakdown           []BreakdownEntry `json:"breakdown"`
	TotalForeignInLocal float64          `json:"total_foreign_in_local"`
}

// Empty reports the "no data" state. Callers should show an empty state
// instead of an allocation chart.
func (s Summary) Empty() bool {
	return s.Total == 0
}

// ValueOf returns the breakdown value for t, or 0 when the type is absent.
func (s Summary) ValueOf(t AssetType) float64 {
	for _, e := range s.Breakdown {
		if e.Type == t {
			return e.Value
		}
	}
	return 0
}

// Summarize totals valued accounts and breaks the total down by asset type.
// Types with no value are left out of the breakdown. Assets of unknown type
// count toward the total only.
func Summarize(accounts []ValuedAccount) Summary {
	byType := make(map[AssetType]float64, len(breakdownOrder))
	var total, foreign float64

	for _, acc := range accounts {
		for _, a := range acc.Assets {
			total += a.CurrentValueTWD
			if a.Type.Valid() {
				byType[a.Type] += a.CurrentValueTWD
			}
			if a.Currency.Foreign() {
				foreign += a.CurrentValueTWD
			}
		}
	}

	breakdown := make([]BreakdownEntry, 0, len(breakdownOrder))
	for _, t := range breakdownOrder {
		if v := byType[t]; v > 0 {
			breakdown = append(breakdown, BreakdownEntry{Type: t, Value: v, Color: t.Color()})
		}
	}

	return Summary{Total: total, Breakdown: breakdown, TotalForeignInLocal: foreign}
}
