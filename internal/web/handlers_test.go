package web

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"flowmon/internal/models"
	"flowmon/internal/pagination"
	"flowmon/internal/views"
)

// fakeController records the last command it received
type fakeController struct {
	state     pagination.State
	cycle     models.Cycle
	filter    views.FlowFilter
	interval  int
	inFlight  bool
	refreshes int
}

func newFakeController() *fakeController {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	flows := make([]models.FlowRecord, 97)
	for i := range flows {
		flows[i] = models.FlowRecord{Timestamp: t0, SourceIP: "10.0.0.1", DestIP: "10.0.0.2", Protocol: models.ProtocolTCP, LengthBytes: 64, AttackLabel: "Normal", Confidence: 0.1}
	}
	flows[0].AttackLabel = "DDoS"

	return &fakeController{
		state:    pagination.New(10).Reconcile(97),
		interval: 5,
		cycle: models.Cycle{
			Stats: models.StatsSnapshot{PacketCount: 97},
			Flows: flows,
			Distribution: models.NewAttackDistribution([]models.AttackCount{
				{Label: "Normal", Count: 96},
				{Label: "DDoS", Count: 1},
			}),
		},
	}
}

func (f *fakeController) Dashboard() views.Dashboard {
	return views.Build(views.Input{
		Cycle:      f.cycle,
		Pagination: f.state,
		Refresh:    views.Refresh{IntervalSeconds: f.interval, InFlight: f.inFlight},
		Filter:     f.filter,
	})
}

func (f *fakeController) Refresh() bool {
	if f.inFlight {
		return false
	}
	f.refreshes++
	f.inFlight = true
	return true
}

func (f *fakeController) GoToPage(n int) views.Dashboard {
	f.state = f.state.GoToPage(n)
	return f.Dashboard()
}

func (f *fakeController) Next() views.Dashboard {
	f.state = f.state.Next()
	return f.Dashboard()
}

func (f *fakeController) Previous() views.Dashboard {
	f.state = f.state.Previous()
	return f.Dashboard()
}

func (f *fakeController) ChangePageSize(size int) views.Dashboard {
	f.state = f.state.ChangePageSize(size)
	return f.Dashboard()
}

func (f *fakeController) SetInterval(seconds int) views.Dashboard {
	f.interval = seconds
	return f.Dashboard()
}

func (f *fakeController) SetFilter(filter views.FlowFilter) views.Dashboard {
	f.filter = filter
	return f.Dashboard()
}

type fakeReporter struct {
	dir string
	err error
}

func (r fakeReporter) GenerateReport(outputDir string, d views.Dashboard) (string, error) {
	return r.dir, r.err
}

func newTestServer(ctrl Controller, rep Reporter) *Server {
	static := fstest.MapFS{
		"static/index.html": {Data: []byte("<html>flowmon</html>")},
	}
	return New(ctrl, rep, "reports", 0, static, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeDashboard(t *testing.T, rec *httptest.ResponseRecorder) views.Dashboard {
	t.Helper()
	var d views.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode dashboard: %v\n%s", err, rec.Body.String())
	}
	return d
}

func TestNavigationRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		wantPage int
		wantSize int
	}{
		{name: "dashboard", method: http.MethodGet, target: "/api/dashboard", wantCode: http.StatusOK, wantPage: 1, wantSize: 10},
		{name: "go to page", method: http.MethodPost, target: "/api/page?n=4", wantCode: http.StatusOK, wantPage: 4, wantSize: 10},
		{name: "page clamped", method: http.MethodPost, target: "/api/page?n=999", wantCode: http.StatusOK, wantPage: 10, wantSize: 10},
		{name: "next", method: http.MethodPost, target: "/api/page/next", wantCode: http.StatusOK, wantPage: 2, wantSize: 10},
		{name: "previous at first", method: http.MethodPost, target: "/api/page/prev", wantCode: http.StatusOK, wantPage: 1, wantSize: 10},
		{name: "page size", method: http.MethodPost, target: "/api/page-size?size=20", wantCode: http.StatusOK, wantPage: 1, wantSize: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(newFakeController(), fakeReporter{}).Handler()
			rec := do(t, h, tt.method, tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			d := decodeDashboard(t, rec)
			if d.Page.CurrentPage != tt.wantPage || d.Page.PageSize != tt.wantSize {
				t.Errorf("page %d size %d, want %d size %d", d.Page.CurrentPage, d.Page.PageSize, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestBadParameters(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "missing page", target: "/api/page"},
		{name: "non-numeric page", target: "/api/page?n=two"},
		{name: "unsupported page size", target: "/api/page-size?size=7"},
		{name: "missing interval", target: "/api/interval"},
		{name: "unsupported interval", target: "/api/interval?seconds=4"},
		{name: "score out of range", target: "/api/filter?min_score=1.5"},
		{name: "non-numeric score", target: "/api/filter?min_score=high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(newFakeController(), fakeReporter{}).Handler()
			if rec := do(t, h, http.MethodPost, tt.target); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRefreshCoalesced(t *testing.T) {
	ctrl := newFakeController()
	h := newTestServer(ctrl, fakeReporter{}).Handler()

	if rec := do(t, h, http.MethodPost, "/api/refresh"); rec.Code != http.StatusAccepted {
		t.Errorf("first refresh status = %d, want 202", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/api/refresh")
	if rec.Code != http.StatusConflict {
		t.Errorf("second refresh status = %d, want 409", rec.Code)
	}
	if !decodeDashboard(t, rec).Refresh.InFlight {
		t.Error("dashboard should report the cycle in flight")
	}
	if ctrl.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", ctrl.refreshes)
	}
}

func TestIntervalAndFilter(t *testing.T) {
	ctrl := newFakeController()
	h := newTestServer(ctrl, fakeReporter{}).Handler()

	d := decodeDashboard(t, do(t, h, http.MethodPost, "/api/interval?seconds=15"))
	if d.Refresh.IntervalSeconds != 15 {
		t.Errorf("IntervalSeconds = %d, want 15", d.Refresh.IntervalSeconds)
	}

	d = decodeDashboard(t, do(t, h, http.MethodPost, "/api/filter?attack=DDoS&attack=DDoS&min_score=0.05"))
	if len(ctrl.filter.AttackTypes) != 1 || ctrl.filter.AttackTypes[0] != "DDoS" || ctrl.filter.MinScore != 0.05 {
		t.Errorf("filter = %+v", ctrl.filter)
	}
	if len(d.Page.Rows) != 1 || d.Page.Hidden != 9 {
		t.Errorf("rows = %d hidden = %d, want 1 and 9", len(d.Page.Rows), d.Page.Hidden)
	}
	if d.Page.TotalItems != 97 {
		t.Errorf("TotalItems = %d, want 97", d.Page.TotalItems)
	}

	decodeDashboard(t, do(t, h, http.MethodPost, "/api/filter"))
	if ctrl.filter.Active() {
		t.Errorf("empty query should clear the filter, got %+v", ctrl.filter)
	}
}

func TestExportCSV(t *testing.T) {
	h := newTestServer(newFakeController(), fakeReporter{}).Handler()

	rec := do(t, h, http.MethodGet, "/api/export.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 98 {
		t.Errorf("rows = %d, want header plus 97", len(records))
	}
}

func TestReport(t *testing.T) {
	h := newTestServer(newFakeController(), fakeReporter{dir: "reports/flow_report_x"}).Handler()
	rec := do(t, h, http.MethodPost, "/api/report")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "reports/flow_report_x") {
		t.Errorf("body = %s", rec.Body.String())
	}

	h = newTestServer(newFakeController(), fakeReporter{err: errors.New("disk full")}).Handler()
	if rec := do(t, h, http.MethodPost, "/api/report"); rec.Code != http.StatusInternalServerError {
		t.Errorf("failing report status = %d, want 500", rec.Code)
	}
}

func TestCharts(t *testing.T) {
	h := newTestServer(newFakeController(), fakeReporter{}).Handler()

	rec := do(t, h, http.MethodGet, "/charts/distribution.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("distribution status = %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("distribution chart is not a PNG")
	}

	// No trend points in the fake cycle
	if rec := do(t, h, http.MethodGet, "/charts/trend.png"); rec.Code != http.StatusNoContent {
		t.Errorf("trend status = %d, want 204", rec.Code)
	}
}

func TestStaticAndMetrics(t *testing.T) {
	h := newTestServer(newFakeController(), fakeReporter{}).Handler()

	rec := do(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "flowmon") {
		t.Errorf("index status = %d body = %q", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing default collectors")
	}
}

func TestMethodMismatch(t *testing.T) {
	h := newTestServer(newFakeController(), fakeReporter{}).Handler()
	if rec := do(t, h, http.MethodGet, "/api/refresh"); rec.Code == http.StatusAccepted {
		t.Error("GET should not trigger a refresh")
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	srv := newTestServer(newFakeController(), fakeReporter{})

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() after Shutdown error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		srv.Shutdown(context.Background())
		t.Fatal("Start() kept serving after Shutdown")
	}
}
