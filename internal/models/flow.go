package models

import (
	"strings"
	"time"
)

// Protocol is the upper-case transport/application token reported for a flow
type Protocol string

const (
	ProtocolTCP     Protocol = "TCP"
	ProtocolUDP     Protocol = "UDP"
	ProtocolICMP    Protocol = "ICMP"
	ProtocolHTTP    Protocol = "HTTP"
	ProtocolHTTPS   Protocol = "HTTPS"
	ProtocolDNS     Protocol = "DNS"
	ProtocolUnknown Protocol = "N/A"
)

// ParseProtocol normalizes a backend protocol token. Unknown tokens are kept
// upper-cased; an empty token maps to ProtocolUnknown.
func ParseProtocol(s string) Protocol {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ProtocolUnknown
	}
	return Protocol(s)
}

// FlowRecord represents a single classified flow as delivered by the backend.
// Records carry no identity across refreshes.
type FlowRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	SourceIP    string    `json:"source_ip"`
	DestIP      string    `json:"dest_ip"`
	Protocol    Protocol  `json:"protocol"`
	LengthBytes int64     `json:"length_bytes"`
	AttackLabel string    `json:"attack_label"`
	Confidence  float64   `json:"confidence"` // 0..1
}
