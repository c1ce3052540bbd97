package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flowmon/internal/models"
	"flowmon/internal/pagination"
	"flowmon/internal/views"
)

var pngMagic = []byte("\x89PNG")

func testDashboard(t *testing.T) views.Dashboard {
	t.Helper()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	trend := models.TimeTrend{}
	for i := range 8 {
		trend.Timestamps = append(trend.Timestamps, t0.Add(time.Duration(i)*time.Minute))
		trend.PacketRate = append(trend.PacketRate, float64(1000+i*150))
		trend.FlowRate = append(trend.FlowRate, float64(10+i))
		trend.BytesPerSec = append(trend.BytesPerSec, float64(50000+i*1000))
	}

	cycle := models.Cycle{
		StartedAt:   t0,
		CompletedAt: t0.Add(time.Second),
		Stats:       models.StatsSnapshot{PacketCount: 3, ByteCount: 4096, DetectionRate: 33.3},
		Flows: []models.FlowRecord{
			{Timestamp: t0, SourceIP: "10.0.0.1", DestIP: "10.0.0.2", Protocol: models.ProtocolTCP, LengthBytes: 60, AttackLabel: "DDoS", Confidence: 0.92},
			{Timestamp: t0, SourceIP: "10.0.0.3", DestIP: "10.0.0.2", Protocol: models.ProtocolUDP, LengthBytes: 1400, AttackLabel: "Normal", Confidence: 0.05},
			{Timestamp: t0, SourceIP: "10.0.0.4", DestIP: "10.0.0.2", Protocol: models.ProtocolDNS, LengthBytes: 90, AttackLabel: "Normal", Confidence: 0.1},
		},
		Distribution: models.NewAttackDistribution([]models.AttackCount{
			{Label: "Normal", Count: 2},
			{Label: "DDoS", Count: 1},
		}),
		Trend: trend,
	}

	return views.Build(views.Input{
		Cycle:      cycle,
		Pagination: pagination.New(10).Reconcile(cycle.TotalItems()),
		Now:        t0.Add(2 * time.Second),
	})
}

func TestRenderCharts(t *testing.T) {
	d := testDashboard(t)

	tests := []struct {
		name   string
		render func(io.Writer, views.Dashboard) error
	}{
		{name: "trend", render: RenderTrendChart},
		{name: "distribution", render: RenderDistributionChart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.render(&buf, d); err != nil {
				t.Fatalf("render error = %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Error("output is not a PNG")
			}
		})
	}
}

func TestRenderChartsWithoutData(t *testing.T) {
	d := views.Build(views.Input{Pagination: pagination.New(10)})

	if err := RenderTrendChart(io.Discard, d); !errors.Is(err, ErrNoData) {
		t.Errorf("RenderTrendChart() error = %v, want ErrNoData", err)
	}
	if err := RenderDistributionChart(io.Discard, d); !errors.Is(err, ErrNoData) {
		t.Errorf("RenderDistributionChart() error = %v, want ErrNoData", err)
	}
}

func TestWriteCSV(t *testing.T) {
	d := testDashboard(t)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, d.Cycle.Flows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d rows, want header plus 3", len(records))
	}
	if strings.Join(records[0], ",") != "timestamp,source_ip,destination_ip,protocol,length_bytes,attack_type,confidence" {
		t.Errorf("header = %v", records[0])
	}
	want := []string{"2024-05-01T12:00:00Z", "10.0.0.1", "10.0.0.2", "TCP", "60", "DDoS", "0.9200"}
	if strings.Join(records[1], ",") != strings.Join(want, ",") {
		t.Errorf("first row = %v, want %v", records[1], want)
	}
}

func TestWriteSummary(t *testing.T) {
	d := testDashboard(t)
	d.Degraded = []models.Endpoint{models.EndpointTrends}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, d, d.Distribution, nil); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Network Flow Report",
		"Detection Rate: 33.3%",
		"Unavailable Sources: time_trends",
		"Normal",
		"66.67%",
		"No flows fetched.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestGenerateReport(t *testing.T) {
	g := NewGenerator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	g.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	out := t.TempDir()
	dir, err := g.GenerateReport(out, testDashboard(t))
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}
	if filepath.Base(dir) != "flow_report_2024-05-01_12-30-00" {
		t.Errorf("report dir = %s", dir)
	}

	for _, name := range []string{"flows.db", "flows.csv", "summary.txt", "traffic_trend.png", "attack_distribution.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	summary, err := os.ReadFile(filepath.Join(dir, "summary.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(summary), "Attack Type: Normal") {
		t.Error("summary missing per-attack breakdown")
	}
	if !strings.Contains(string(summary), "66.67%") {
		t.Error("summary missing distribution read back from flows.db")
	}

	f, err := os.Open(filepath.Join(dir, "flows.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 || records[1][5] != "DDoS" {
		t.Errorf("flows.csv rows = %v, want header plus 3 stored flows in order", records)
	}
}

func TestGenerateReportWithoutCharts(t *testing.T) {
	g := NewGenerator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	dir, err := g.GenerateReport(t.TempDir(), views.Build(views.Input{Pagination: pagination.New(10)}))
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "traffic_trend.png")); !os.IsNotExist(err) {
		t.Errorf("expected no trend chart, stat error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "summary.txt")); err != nil {
		t.Errorf("missing summary: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"flow_report_2024-05-01_12-30-00": "flow_report_2024-05-01_12-30-00",
		"10.0.0.1:80":                     "10_0_0_1_80",
		"a/b\\c d":                        "a_b_c_d",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
