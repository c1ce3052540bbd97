package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"flowmon/internal/models"
)

// SaveSnapshot stores a complete refresh cycle and returns its snapshot id
func (db *DB) SaveSnapshot(cycle models.Cycle, capturedAt time.Time) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	degraded := make([]string, len(cycle.Degraded))
	for i, e := range cycle.Degraded {
		degraded[i] = string(e)
	}

	res, err := tx.Exec(`
        INSERT INTO snapshots (captured_at, started_at, completed_at, packet_count, byte_count, detection_rate, total_items, degraded)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		capturedAt,
		cycle.StartedAt,
		cycle.CompletedAt,
		cycle.Stats.PacketCount,
		cycle.Stats.ByteCount,
		cycle.Stats.DetectionRate,
		cycle.TotalItems(),
		strings.Join(degraded, ","),
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := insertFlows(tx, id, cycle.Flows); err != nil {
		return 0, err
	}
	if err := insertDistribution(tx, id, cycle.Distribution); err != nil {
		return 0, err
	}
	if err := insertTrend(tx, id, cycle.Trend); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}
	return id, nil
}

func insertFlows(tx *sql.Tx, id int64, flows []models.FlowRecord) error {
	stmt, err := tx.Prepare(`
        INSERT INTO flows (snapshot_id, position, timestamp, source_ip, destination_ip, protocol, length_bytes, attack_type, confidence)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("prepare flows: %w", err)
	}
	defer stmt.Close()

	for i, f := range flows {
		if _, err := stmt.Exec(id, i, f.Timestamp, f.SourceIP, f.DestIP, string(f.Protocol), f.LengthBytes, f.AttackLabel, f.Confidence); err != nil {
			return fmt.Errorf("insert flow %d: %w", i, err)
		}
	}
	return nil
}

func insertDistribution(tx *sql.Tx, id int64, dist models.AttackDistribution) error {
	for i, e := range dist.Entries() {
		if _, err := tx.Exec(`INSERT INTO attack_distribution (snapshot_id, position, label, count) VALUES (?, ?, ?, ?)`,
			id, i, e.Label, e.Count); err != nil {
			return fmt.Errorf("insert distribution %q: %w", e.Label, err)
		}
	}
	return nil
}

func insertTrend(tx *sql.Tx, id int64, trend models.TimeTrend) error {
	if !trend.Valid() {
		return nil
	}
	for i, ts := range trend.Timestamps {
		if _, err := tx.Exec(`
            INSERT INTO time_trends (snapshot_id, position, timestamp, packet_rate, flow_rate, bytes_per_sec)
            VALUES (?, ?, ?, ?, ?, ?)
        `, id, i, ts, trend.PacketRate[i], trend.FlowRate[i], trend.BytesPerSec[i]); err != nil {
			return fmt.Errorf("insert trend point: %w", err)
		}
	}
	return nil
}

// GetFlows retrieves the flows of a snapshot in their original order
func (db *DB) GetFlows(snapshotID int64) ([]models.FlowRecord, error) {
	rows, err := db.Query(`
        SELECT timestamp, source_ip, destination_ip, protocol, length_bytes, attack_type, confidence
        FROM flows
        WHERE snapshot_id = ?
        ORDER BY position
    `, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flows []models.FlowRecord
	for rows.Next() {
		var f models.FlowRecord
		var protocol string
		if err := rows.Scan(&f.Timestamp, &f.SourceIP, &f.DestIP, &protocol, &f.LengthBytes, &f.AttackLabel, &f.Confidence); err != nil {
			return nil, err
		}
		f.Protocol = models.Protocol(protocol)
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// GetDistribution retrieves the attack distribution of a snapshot
func (db *DB) GetDistribution(snapshotID int64) (models.AttackDistribution, error) {
	rows, err := db.Query(`
        SELECT label, count
        FROM attack_distribution
        WHERE snapshot_id = ?
        ORDER BY position
    `, snapshotID)
	if err != nil {
		return models.AttackDistribution{}, err
	}
	defer rows.Close()

	var entries []models.AttackCount
	for rows.Next() {
		var e models.AttackCount
		if err := rows.Scan(&e.Label, &e.Count); err != nil {
			return models.AttackDistribution{}, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return models.AttackDistribution{}, err
	}
	return models.NewAttackDistribution(entries), nil
}

// AttackStats is the per-label aggregate of a snapshot's flows
type AttackStats struct {
	AttackType    string
	Flows         int
	Bytes         int64
	AvgConfidence float64
	MaxConfidence float64
}

// GetAttackStats aggregates a snapshot's flows by attack type, busiest first
func (db *DB) GetAttackStats(snapshotID int64) ([]AttackStats, error) {
	rows, err := db.Query(`
        SELECT
            attack_type,
            COUNT(*) as flows,
            SUM(length_bytes) as bytes,
            AVG(confidence) as avg_confidence,
            MAX(confidence) as max_confidence
        FROM flows
        WHERE snapshot_id = ?
        GROUP BY attack_type
        ORDER BY flows DESC, attack_type
    `, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []AttackStats
	for rows.Next() {
		var s AttackStats
		if err := rows.Scan(&s.AttackType, &s.Flows, &s.Bytes, &s.AvgConfidence, &s.MaxConfidence); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
