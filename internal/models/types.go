package models

import (
	"context"
	"time"
)

// Endpoint names one backend telemetry source
type Endpoint string

const (
	EndpointStats        Endpoint = "stats"
	EndpointPackets      Endpoint = "packets"
	EndpointDistribution Endpoint = "attack_distribution"
	EndpointTrends       Endpoint = "time_trends"
)

// Endpoints lists every telemetry source in fetch order
var Endpoints = []Endpoint{EndpointStats, EndpointPackets, EndpointDistribution, EndpointTrends}

// Cycle is the outcome of one refresh cycle. It is only built once all four
// sources have resolved and is never modified afterwards.
type Cycle struct {
	StartedAt    time.Time
	CompletedAt  time.Time
	Stats        StatsSnapshot
	Flows        []FlowRecord
	Distribution AttackDistribution
	Trend        TimeTrend
	Degraded     []Endpoint
}

// IsDegraded reports whether endpoint soft-failed during the cycle
func (c Cycle) IsDegraded(e Endpoint) bool {
	for _, d := range c.Degraded {
		if d == e {
			return true
		}
	}
	return false
}

// TotalItems returns the authoritative flow total for pagination. The
// backend packet count is used unless the stats source failed in this cycle,
// in which case the fetched records are the only count available. This is
// the only place the number of fetched records stands in for the total.
func (c Cycle) TotalItems() int {
	if c.IsDegraded(EndpointStats) {
		return len(c.Flows)
	}
	return int(c.Stats.PacketCount)
}

// Source defines the telemetry collection used by the refresh loop
type Source interface {
	Collect(ctx context.Context, limit int) Cycle
}

// Telemetry defines the individual fail-soft fetch operations
type Telemetry interface {
	Source
	FetchStats(ctx context.Context) StatsSnapshot
	FetchFlows(ctx context.Context, limit int) []FlowRecord
	FetchDistribution(ctx context.Context) AttackDistribution
	FetchTrends(ctx context.Context) TimeTrend
}
