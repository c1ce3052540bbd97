package models

import "time"

// StatsSnapshot holds the backend summary counters for one refresh cycle
type StatsSnapshot struct {
	PacketCount   int64   `json:"packet_count"`
	ByteCount     int64   `json:"byte_count"`
	DetectionRate float64 `json:"detection_rate"` // percentage
}

// AttackCount is one label of an attack distribution
type AttackCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AttackDistribution maps attack labels to occurrence counts, keeping the
// order in which labels appeared in the backend response.
type AttackDistribution struct {
	entries []AttackCount
	index   map[string]int
}

// NewAttackDistribution builds a distribution from entries in order.
// A repeated label keeps its first position and takes the last count.
func NewAttackDistribution(entries []AttackCount) AttackDistribution {
	d := AttackDistribution{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if i, ok := d.index[e.Label]; ok {
			d.entries[i].Count = e.Count
			continue
		}
		d.index[e.Label] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	return d
}

// Len returns the number of labels
func (d AttackDistribution) Len() int {
	return len(d.entries)
}

// Entries returns a copy of the labels and counts in response order
func (d AttackDistribution) Entries() []AttackCount {
	out := make([]AttackCount, len(d.entries))
	copy(out, d.entries)
	return out
}

// Count returns the count for label and whether the label is present
func (d AttackDistribution) Count(label string) (int64, bool) {
	i, ok := d.index[label]
	if !ok {
		return 0, false
	}
	return d.entries[i].Count, true
}

// Total returns the sum of all counts
func (d AttackDistribution) Total() int64 {
	var total int64
	for _, e := range d.entries {
		total += e.Count
	}
	return total
}

// TimeTrend holds positionally indexed rate series. All four slices have the
// same length.
type TimeTrend struct {
	Timestamps  []time.Time `json:"timestamps"`
	PacketRate  []float64   `json:"packet_rate"`
	FlowRate    []float64   `json:"flow_rate"`
	BytesPerSec []float64   `json:"bytes_per_sec"`
}

// Len returns the number of samples
func (t TimeTrend) Len() int {
	return len(t.Timestamps)
}

// Valid reports whether the parallel series have equal length
func (t TimeTrend) Valid() bool {
	n := len(t.Timestamps)
	return len(t.PacketRate) == n && len(t.FlowRate) == n && len(t.BytesPerSec) == n
}
