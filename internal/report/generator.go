package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"flowmon/internal/database"
	"flowmon/internal/models"
	"flowmon/internal/views"
)

// Generator writes report bundles for a dashboard snapshot
type Generator struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(logger *slog.Logger) *Generator {
	return &Generator{logger: logger, now: time.Now}
}

// GenerateReport creates a report directory under outputDir holding charts,
// a text summary, a CSV of every fetched flow and a SQLite copy of the
// snapshot. It returns the directory path.
func (g *Generator) GenerateReport(outputDir string, d views.Dashboard) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	reportDir := filepath.Join(outputDir, bundleName(g.now()))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	stored, err := g.exportDatabase(reportDir, d)
	if err != nil {
		return "", err
	}

	// The CSV and summary are read back from flows.db so the bundle agrees with itself
	if err := writeFile(filepath.Join(reportDir, "flows.csv"), func(w io.Writer) error {
		return WriteCSV(w, stored.flows)
	}); err != nil {
		return "", err
	}

	// Charts are optional; a cycle without data still gets a report
	g.chart(reportDir, "traffic_trend.png", d, RenderTrendChart)
	g.chart(reportDir, "attack_distribution.png", d, RenderDistributionChart)

	if err := writeFile(filepath.Join(reportDir, "summary.txt"), func(w io.Writer) error {
		return WriteSummary(w, d, views.Percentages(stored.distribution), stored.attacks)
	}); err != nil {
		return "", err
	}

	g.logger.Info("Report generated", "dir", reportDir, "flows", len(d.Cycle.Flows))
	return reportDir, nil
}

// storedSnapshot is a cycle as read back from a report database
type storedSnapshot struct {
	flows        []models.FlowRecord
	distribution models.AttackDistribution
	attacks      []database.AttackStats
}

func (g *Generator) exportDatabase(reportDir string, d views.Dashboard) (storedSnapshot, error) {
	var out storedSnapshot

	db, err := database.New(filepath.Join(reportDir, "flows.db"))
	if err != nil {
		return out, err
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		return out, err
	}
	id, err := db.SaveSnapshot(d.Cycle, d.GeneratedAt)
	if err != nil {
		return out, err
	}

	if out.flows, err = db.GetFlows(id); err != nil {
		return out, fmt.Errorf("read back flows: %w", err)
	}
	if out.distribution, err = db.GetDistribution(id); err != nil {
		return out, fmt.Errorf("read back distribution: %w", err)
	}
	if out.attacks, err = db.GetAttackStats(id); err != nil {
		return out, fmt.Errorf("read back attack stats: %w", err)
	}
	return out, nil
}

func (g *Generator) chart(reportDir, name string, d views.Dashboard, render func(io.Writer, views.Dashboard) error) {
	err := writeFile(filepath.Join(reportDir, name), func(w io.Writer) error {
		return render(w, d)
	})
	switch {
	case errors.Is(err, ErrNoData):
		os.Remove(filepath.Join(reportDir, name))
		g.logger.Debug("Skipping chart without data", "chart", name)
	case err != nil:
		g.logger.Warn("Failed to generate chart", "chart", name, "error", err)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
