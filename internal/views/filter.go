package views

import (
	"slices"

	"flowmon/internal/models"
)

// FlowFilter narrows the rows shown on a page. The zero value shows all rows.
type FlowFilter struct {
	AttackTypes []string `json:"attack_types,omitempty"`
	MinScore    float64  `json:"min_score"`
}

// Active reports whether the filter hides anything
func (f FlowFilter) Active() bool {
	return len(f.AttackTypes) > 0 || f.MinScore > 0
}

// Match reports whether flow passes the filter. MinScore is inclusive, so a
// flow scored exactly at the threshold is shown and a zero threshold never
// hides a flow.
func (f FlowFilter) Match(flow models.FlowRecord) bool {
	if len(f.AttackTypes) > 0 && !slices.Contains(f.AttackTypes, flow.AttackLabel) {
		return false
	}
	return flow.Confidence >= f.MinScore
}

// Apply returns the flows passing the filter in their original order
func (f FlowFilter) Apply(flows []models.FlowRecord) []models.FlowRecord {
	if !f.Active() {
		return flows
	}
	out := make([]models.FlowRecord, 0, len(flows))
	for _, flow := range flows {
		if f.Match(flow) {
			out = append(out, flow)
		}
	}
	return out
}
