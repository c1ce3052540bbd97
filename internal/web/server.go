package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flowmon/internal/views"
)

// Controller is the dashboard state the shell drives
type Controller interface {
	Dashboard() views.Dashboard
	Refresh() bool
	GoToPage(n int) views.Dashboard
	Next() views.Dashboard
	Previous() views.Dashboard
	ChangePageSize(size int) views.Dashboard
	SetInterval(seconds int) views.Dashboard
	SetFilter(filter views.FlowFilter) views.Dashboard
}

// Reporter writes report bundles
type Reporter interface {
	GenerateReport(outputDir string, d views.Dashboard) (string, error)
}

// Server handles web requests
type Server struct {
	ctrl        Controller
	reports     Reporter
	reportDir   string
	port        int
	staticFiles fs.FS
	logger      *slog.Logger
	httpServer  *http.Server
}

// New creates a new web server. staticFS must contain a static/ directory.
func New(ctrl Controller, reports Reporter, reportDir string, port int, staticFS fs.FS, logger *slog.Logger) *Server {
	s := &Server{
		ctrl:        ctrl,
		reports:     reports,
		reportDir:   reportDir,
		port:        port,
		staticFiles: staticFS,
		logger:      logger,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/page", s.handlePage)
	mux.HandleFunc("POST /api/page/next", s.handleNext)
	mux.HandleFunc("POST /api/page/prev", s.handlePrevious)
	mux.HandleFunc("POST /api/page-size", s.handlePageSize)
	mux.HandleFunc("POST /api/interval", s.handleInterval)
	mux.HandleFunc("POST /api/filter", s.handleFilter)
	mux.HandleFunc("GET /api/export.csv", s.handleExport)
	mux.HandleFunc("POST /api/report", s.handleReport)

	// Charts
	mux.HandleFunc("GET /charts/trend.png", s.handleTrendChart)
	mux.HandleFunc("GET /charts/distribution.png", s.handleDistributionChart)

	mux.Handle("GET /metrics", promhttp.Handler())

	// Static files - serve embedded static/ directory as webroot
	staticFS, err := fs.Sub(s.staticFiles, "static")
	if err != nil {
		s.logger.Error("Static files unavailable", "error", err)
	} else {
		mux.Handle("/", http.FileServer(http.FS(staticFS)))
	}

	return mux
}

// Start starts the web server and blocks until it is shut down. It returns
// immediately if Shutdown was already called.
func (s *Server) Start() error {
	s.logger.Info("Web server starting", "port", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the web server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
