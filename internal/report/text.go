package report

import (
	"fmt"
	"io"
	"strings"

	"flowmon/internal/database"
	"flowmon/internal/views"
)

// WriteSummary writes a plain-text summary of a dashboard snapshot with the
// given distribution shares and per-attack aggregates
func WriteSummary(w io.Writer, d views.Dashboard, shares []views.Share, attacks []database.AttackStats) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Network Flow Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", d.GeneratedAt.Format("2006-01-02 15:04:05"))
	if !d.Cycle.CompletedAt.IsZero() {
		fmt.Fprintf(&b, "Snapshot: %s\n", d.Cycle.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, strings.Repeat("=", 60))

	fmt.Fprintln(&b, "\nOVERVIEW")
	fmt.Fprintf(&b, "  Packets: %s\n", d.KPIs.Packets)
	fmt.Fprintf(&b, "  Bytes: %s\n", d.KPIs.Bytes)
	fmt.Fprintf(&b, "  Detection Rate: %s\n", d.KPIs.DetectionRate)
	fmt.Fprintf(&b, "  Total Flows: %s\n", d.KPIs.TotalFlows)
	fmt.Fprintf(&b, "  Anomaly Index: %.2f (%s)\n", d.KPIs.AnomalyIndex, d.KPIs.AnomalyBand)
	if len(d.Degraded) > 0 {
		names := make([]string, len(d.Degraded))
		for i, e := range d.Degraded {
			names[i] = string(e)
		}
		fmt.Fprintf(&b, "  Unavailable Sources: %s\n", strings.Join(names, ", "))
	}
	if d.Banner != "" {
		fmt.Fprintf(&b, "\n  %s\n", d.Banner)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, strings.Repeat("=", 60))

	fmt.Fprintln(&b, "\nATTACK DISTRIBUTION")
	if len(shares) == 0 {
		fmt.Fprintln(&b, "No distribution data.")
	}
	for _, s := range shares {
		fmt.Fprintf(&b, "  %-20s %12s  %6.2f%%\n", s.Label, s.Display, s.Percent)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, strings.Repeat("=", 60))

	fmt.Fprintf(&b, "\nFETCHED FLOWS BY ATTACK TYPE (%d flows)\n", len(d.Cycle.Flows))
	if len(attacks) == 0 {
		fmt.Fprintln(&b, "No flows fetched.")
	}
	for _, a := range attacks {
		fmt.Fprintf(&b, "Attack Type: %s\n", a.AttackType)
		fmt.Fprintf(&b, "  Flows: %s\n", views.FormatCount(int64(a.Flows)))
		fmt.Fprintf(&b, "  Bytes: %s\n", views.FormatBytes(a.Bytes))
		fmt.Fprintf(&b, "  Average Score: %.2f\n", a.AvgConfidence)
		fmt.Fprintf(&b, "  Max Score: %.2f (%s)\n", a.MaxConfidence, views.Classify(a.MaxConfidence))
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, strings.Repeat("=", 60))
	fmt.Fprintln(&b, "\nFlow records and the raw snapshot are available in the accompanying files.")

	_, err := io.WriteString(w, b.String())
	return err
}
