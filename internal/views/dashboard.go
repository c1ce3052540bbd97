// Package views derives display-ready values from telemetry snapshots.
//
// Everything here is a pure function of its input: snapshots are never
// modified and nothing is cached between refresh cycles.
package views

import (
	"fmt"
	"math"
	"time"

	"flowmon/internal/models"
	"flowmon/internal/pagination"
)

const (
	clockLayout = "15:04:05"
	trendLayout = "15:04"
)

// KPIs are the summary counters shown above the flow table
type KPIs struct {
	Packets       string  `json:"packets"`
	Bytes         string  `json:"bytes"`
	DetectionRate string  `json:"detection_rate"`
	TotalFlows    string  `json:"total_flows"`
	AnomalyIndex  float64 `json:"anomaly_index"`
	AnomalyBand   Band    `json:"anomaly_band"`
}

// FlowRow is one flow formatted for the table
type FlowRow struct {
	Timestamp    string  `json:"timestamp"`
	SourceIP     string  `json:"source_ip"`
	DestIP       string  `json:"destination_ip"`
	Protocol     string  `json:"protocol"`
	Packets      int     `json:"packets"`
	Bytes        string  `json:"bytes"`
	AttackType   string  `json:"attack_type"`
	AnomalyScore float64 `json:"anomaly_score"`
	Band         Band    `json:"band"`
}

// Page is the flow table for the current window
type Page struct {
	pagination.State
	TotalPages  int               `json:"total_pages"`
	Window      pagination.Window `json:"window"`
	Caption     string            `json:"caption"`
	HasPrevious bool              `json:"has_previous"`
	HasNext     bool              `json:"has_next"`
	Rows        []FlowRow         `json:"rows"`
	Hidden      int               `json:"hidden"`
	Message     string            `json:"message,omitempty"`
}

// Trend is the rate history prepared for charts
type Trend struct {
	Labels      []string  `json:"labels"`
	PacketRateK []float64 `json:"packet_rate_kpps"`
	FlowRate    []float64 `json:"flow_rate"`
	BytesPerSec []float64 `json:"bytes_per_sec"`
}

// Refresh describes the refresh cadence at render time
type Refresh struct {
	IntervalSeconds int       `json:"interval_seconds"`
	LastRefreshAt   time.Time `json:"last_refresh_at"`
	InFlight        bool      `json:"in_flight"`
}

// Dashboard is the complete render state handed to the shell. It is built
// once per event and never modified afterwards.
type Dashboard struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	UpdatedAt    string            `json:"updated_at"`
	KPIs         KPIs              `json:"kpis"`
	Page         Page              `json:"page"`
	Distribution []Share           `json:"distribution"`
	Trend        Trend             `json:"trend"`
	Refresh      Refresh           `json:"refresh"`
	Filter       FlowFilter        `json:"filter"`
	Degraded     []models.Endpoint `json:"degraded"`
	EmptyCycles  int               `json:"empty_cycles"`
	Banner       string            `json:"banner,omitempty"`
	Cycle        models.Cycle      `json:"-"`
}

// Input is everything Build needs for one render
type Input struct {
	Cycle       models.Cycle
	Pagination  pagination.State
	Refresh     Refresh
	Filter      FlowFilter
	EmptyCycles int
	Now         time.Time
}

// Build assembles the dashboard for the current cycle and page
func Build(in Input) Dashboard {
	c := in.Cycle
	index := AnomalyIndex(c.Flows)

	d := Dashboard{
		GeneratedAt: in.Now,
		UpdatedAt:   in.Now.Format(clockLayout),
		KPIs: KPIs{
			Packets:       FormatCount(c.Stats.PacketCount),
			Bytes:         FormatBytes(c.Stats.ByteCount),
			DetectionRate: FormatPercent(c.Stats.DetectionRate),
			TotalFlows:    FormatCount(int64(in.Pagination.TotalItems)),
			AnomalyIndex:  round2(index),
			AnomalyBand:   Classify(index),
		},
		Page:         buildPage(c.Flows, in.Pagination, in.Filter),
		Distribution: Percentages(c.Distribution),
		Trend:        buildTrend(c.Trend),
		Refresh:      in.Refresh,
		Filter:       in.Filter,
		Degraded:     append([]models.Endpoint(nil), c.Degraded...),
		EmptyCycles:  in.EmptyCycles,
		Cycle:        c,
	}
	if in.Pagination.TotalItems == 0 && in.EmptyCycles > 0 {
		d.Banner = banner(in.EmptyCycles)
	}
	return d
}

func buildPage(flows []models.FlowRecord, state pagination.State, filter FlowFilter) Page {
	w := state.Window()
	p := Page{
		State:       state,
		TotalPages:  state.TotalPages(),
		Window:      w,
		Caption:     state.Caption(),
		HasPrevious: state.HasPrevious(),
		HasNext:     state.HasNext(),
		Rows:        []FlowRow{},
	}

	start, end := w.Slice(len(flows))
	window := flows[start:end]
	visible := filter.Apply(window)
	p.Hidden = len(window) - len(visible)
	for _, f := range visible {
		p.Rows = append(p.Rows, row(f))
	}

	switch {
	case w.Empty():
	case len(window) == 0:
		p.Message = "No flow data available for this page"
	case len(visible) == 0:
		p.Message = "No flows on this page match the filter"
	}
	return p
}

func row(f models.FlowRecord) FlowRow {
	return FlowRow{
		Timestamp:    f.Timestamp.Format(clockLayout),
		SourceIP:     f.SourceIP,
		DestIP:       f.DestIP,
		Protocol:     string(f.Protocol),
		Packets:      1,
		Bytes:        formatLength(f.LengthBytes),
		AttackType:   f.AttackLabel,
		AnomalyScore: round2(f.Confidence),
		Band:         Classify(f.Confidence),
	}
}

func buildTrend(t models.TimeTrend) Trend {
	labels := make([]string, len(t.Timestamps))
	for i, ts := range t.Timestamps {
		labels[i] = ts.Format(trendLayout)
	}
	return Trend{
		Labels:      labels,
		PacketRateK: KiloRates(t.PacketRate),
		FlowRate:    ScaleRates(t.FlowRate, 1),
		BytesPerSec: ScaleRates(t.BytesPerSec, 1),
	}
}

func banner(emptyCycles int) string {
	if emptyCycles == 1 {
		return "No flows available from backend. Make sure the backend is running and returning data."
	}
	return fmt.Sprintf("No flows available from backend for %d consecutive refreshes. Make sure the backend is running and returning data.", emptyCycles)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
