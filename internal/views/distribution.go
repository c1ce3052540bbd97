package views

import "flowmon/internal/models"

// Share is one attack label with its share of the distribution
type Share struct {
	Label   string  `json:"label"`
	Count   int64   `json:"count"`
	Display string  `json:"display"`
	Percent float64 `json:"percent"`
}

// Percentages returns every label's share in distribution order. When the
// counts sum to zero every share is 0.
func Percentages(dist models.AttackDistribution) []Share {
	entries := dist.Entries()
	total := dist.Total()
	shares := make([]Share, 0, len(entries))
	for _, e := range entries {
		var pct float64
		if total > 0 {
			pct = float64(e.Count) / float64(total) * 100
		}
		shares = append(shares, Share{
			Label:   e.Label,
			Count:   e.Count,
			Display: FormatCount(e.Count),
			Percent: pct,
		})
	}
	return shares
}
