package models

import "testing"

func TestParseProtocol(t *testing.T) {
	tests := []struct {
		in   string
		want Protocol
	}{
		{in: "tcp", want: ProtocolTCP},
		{in: " Https ", want: ProtocolHTTPS},
		{in: "", want: ProtocolUnknown},
		{in: "sctp", want: Protocol("SCTP")},
	}
	for _, tt := range tests {
		got := ParseProtocol(tt.in)
		if got != tt.want {
			t.Errorf("ParseProtocol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAttackDistributionDuplicates(t *testing.T) {
	d := NewAttackDistribution([]AttackCount{
		{Label: "DDoS", Count: 3},
		{Label: "Normal", Count: 10},
		{Label: "DDoS", Count: 7},
	})
	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", d.Len())
	}
	if e := d.Entries(); e[0].Label != "DDoS" || e[0].Count != 7 {
		t.Errorf("first entry = %+v, want DDoS=7", e[0])
	}
	if d.Total() != 17 {
		t.Errorf("Total() = %d, want 17", d.Total())
	}
	if _, ok := d.Count("PortScan"); ok {
		t.Error("Count() found a missing label")
	}

	// Entries returns a copy
	d.Entries()[0].Count = 0
	if c, _ := d.Count("DDoS"); c != 7 {
		t.Errorf("distribution mutated through Entries(), count = %d", c)
	}
}

func TestCycleTotalItems(t *testing.T) {
	flows := make([]FlowRecord, 4)

	c := Cycle{Stats: StatsSnapshot{PacketCount: 97}, Flows: flows}
	if got := c.TotalItems(); got != 97 {
		t.Errorf("TotalItems() = %d, want backend count 97", got)
	}

	c.Degraded = []Endpoint{EndpointStats}
	if got := c.TotalItems(); got != 4 {
		t.Errorf("TotalItems() with stats degraded = %d, want 4", got)
	}

	c.Degraded = []Endpoint{EndpointPackets}
	if got := c.TotalItems(); got != 97 {
		t.Errorf("TotalItems() with packets degraded = %d, want 97", got)
	}
}

func TestTimeTrendValid(t *testing.T) {
	if !(TimeTrend{}).Valid() {
		t.Error("empty trend should be valid")
	}
	bad := TimeTrend{PacketRate: []float64{1}}
	if bad.Valid() {
		t.Error("mismatched series should be invalid")
	}
}
