package telemetry

import (
	"bytes"
	"fmt"
	"math"
	"time"

	jsoniter "github.com/json-iterator/go"

	"flowmon/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	unknownAddress = "N/A"
	unknownLabel   = "Unknown"
)

type statsPayload struct {
	PacketCount   *float64 `json:"packet_count"`
	ByteCount     *float64 `json:"byte_count"`
	DetectionRate *float64 `json:"detection_rate"`
}

type packetEnvelope struct {
	Packet     *packetPayload     `json:"packet"`
	Prediction *predictionPayload `json:"prediction"`
}

type packetPayload struct {
	Timestamp *float64 `json:"timestamp"`
	SrcIP     *string  `json:"src_ip"`
	DestIP    *string  `json:"dest_ip"`
	Protocol  *string  `json:"protocol"`
	Length    *float64 `json:"length"`
}

type predictionPayload struct {
	Label      *string  `json:"label"`
	Confidence *float64 `json:"confidence"`
}

type trendPayload struct {
	Timestamps  []float64 `json:"timestamps"`
	PacketRate  []float64 `json:"packet_rate"`
	FlowRate    []float64 `json:"flow_rate"`
	BytesPerSec []float64 `json:"bytes_per_sec"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// expect checks the first non-space byte of a payload so that a bare null
// is not mistaken for an empty object or array.
func expect(data []byte, open byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != open {
		return malformed("expected %q payload", open)
	}
	return nil
}

// counter converts a JSON number to a non-negative int64. Values that do
// not fit in int64 are malformed.
func counter(name string, v *float64) (int64, error) {
	if v == nil {
		return 0, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 || *v >= math.MaxInt64 {
		return 0, malformed("%s must be a non-negative integer below 2^63, got %v", name, *v)
	}
	return int64(*v), nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func unixSeconds(v float64) time.Time {
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9))
}

func stringOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

func decodeStats(data []byte) (models.StatsSnapshot, error) {
	if err := expect(data, '{'); err != nil {
		return models.StatsSnapshot{}, err
	}
	var p statsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return models.StatsSnapshot{}, malformed("stats: %v", err)
	}

	packets, err := counter("packet_count", p.PacketCount)
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	bytesTotal, err := counter("byte_count", p.ByteCount)
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	var rate float64
	if p.DetectionRate != nil {
		rate = clamp(*p.DetectionRate, 0, 100)
	}

	return models.StatsSnapshot{
		PacketCount:   packets,
		ByteCount:     bytesTotal,
		DetectionRate: rate,
	}, nil
}

func decodeFlows(data []byte, limit int) ([]models.FlowRecord, error) {
	if err := expect(data, '['); err != nil {
		return nil, err
	}
	var envelopes []packetEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, malformed("packets: %v", err)
	}
	if len(envelopes) > limit {
		envelopes = envelopes[:limit]
	}

	flows := make([]models.FlowRecord, 0, len(envelopes))
	for i, env := range envelopes {
		pkt := env.Packet
		if pkt == nil {
			pkt = &packetPayload{}
		}
		pred := env.Prediction
		if pred == nil {
			pred = &predictionPayload{}
		}

		length, err := counter(fmt.Sprintf("packets[%d].length", i), pkt.Length)
		if err != nil {
			return nil, err
		}
		ts := unixSeconds(0)
		if pkt.Timestamp != nil {
			ts = unixSeconds(*pkt.Timestamp)
		}
		var confidence float64
		if pred.Confidence != nil {
			confidence = clamp(*pred.Confidence, 0, 1)
		}

		flows = append(flows, models.FlowRecord{
			Timestamp:   ts,
			SourceIP:    stringOr(pkt.SrcIP, unknownAddress),
			DestIP:      stringOr(pkt.DestIP, unknownAddress),
			Protocol:    models.ParseProtocol(stringOr(pkt.Protocol, "")),
			LengthBytes: length,
			AttackLabel: stringOr(pred.Label, unknownLabel),
			Confidence:  confidence,
		})
	}
	return flows, nil
}

// decodeDistribution walks the payload with a streaming iterator because the
// label order of the response object must survive decoding.
func decodeDistribution(data []byte) (models.AttackDistribution, error) {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return models.AttackDistribution{}, malformed("expected distribution object")
	}

	var (
		entries []models.AttackCount
		found   bool
		bad     error
	)
	ok := iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		if field != "distribution" {
			it.Skip()
			return true
		}
		found = true
		if it.WhatIsNext() != jsoniter.ObjectValue {
			bad = malformed("distribution must be an object")
			return false
		}
		return it.ReadMapCB(func(it *jsoniter.Iterator, label string) bool {
			if it.WhatIsNext() != jsoniter.NumberValue {
				bad = malformed("count for %q is not a number", label)
				return false
			}
			v := it.ReadFloat64()
			count, err := counter(label, &v)
			if err != nil {
				bad = err
				return false
			}
			entries = append(entries, models.AttackCount{Label: label, Count: count})
			return true
		})
	})
	if bad != nil {
		return models.AttackDistribution{}, bad
	}
	if !ok || iter.Error != nil {
		return models.AttackDistribution{}, malformed("distribution: %v", iter.Error)
	}
	if !found {
		return models.AttackDistribution{}, malformed("distribution field missing")
	}
	return models.NewAttackDistribution(entries), nil
}

func decodeTrends(data []byte) (models.TimeTrend, error) {
	if err := expect(data, '{'); err != nil {
		return models.TimeTrend{}, err
	}
	var p trendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return models.TimeTrend{}, malformed("time trends: %v", err)
	}
	n := len(p.Timestamps)
	if len(p.PacketRate) != n || len(p.FlowRate) != n || len(p.BytesPerSec) != n {
		return models.TimeTrend{}, malformed("time trend series lengths differ: %d/%d/%d/%d",
			n, len(p.PacketRate), len(p.FlowRate), len(p.BytesPerSec))
	}
	if n == 0 {
		return models.TimeTrend{}, nil
	}

	trend := models.TimeTrend{
		Timestamps:  make([]time.Time, n),
		PacketRate:  p.PacketRate,
		FlowRate:    p.FlowRate,
		BytesPerSec: p.BytesPerSec,
	}
	for i, ts := range p.Timestamps {
		trend.Timestamps[i] = unixSeconds(ts)
	}
	return trend, nil
}
