package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"flowmon/internal/models"
)

var csvHeader = []string{
	"timestamp",
	"source_ip",
	"destination_ip",
	"protocol",
	"length_bytes",
	"attack_type",
	"confidence",
}

// WriteCSV writes flows to w with a header row
func WriteCSV(w io.Writer, flows []models.FlowRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, f := range flows {
		record := []string{
			f.Timestamp.UTC().Format(time.RFC3339),
			f.SourceIP,
			f.DestIP,
			string(f.Protocol),
			strconv.FormatInt(f.LengthBytes, 10),
			f.AttackLabel,
			strconv.FormatFloat(f.Confidence, 'f', 4, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
