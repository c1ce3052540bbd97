package web

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"flowmon/internal/config"
	"flowmon/internal/report"
	"flowmon/internal/views"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", "error", err)
	}
}

// intParam parses a required integer query parameter
func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, errors.New(name + " parameter required")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

// handleDashboard handles /api/dashboard requests
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.Dashboard())
}

// handleRefresh handles manual refresh requests
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	status := http.StatusAccepted
	if !s.ctrl.Refresh() {
		status = http.StatusConflict
	}
	s.writeJSON(w, status, s.ctrl.Dashboard())
}

// handlePage handles /api/page?n= requests
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.ctrl.GoToPage(n))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.Next())
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.Previous())
}

// handlePageSize handles /api/page-size?size= requests
func (s *Server) handlePageSize(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !slices.Contains(config.PageSizes, size) {
		http.Error(w, "unsupported page size", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.ctrl.ChangePageSize(size))
}

// handleInterval handles /api/interval?seconds= requests
func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	seconds, err := intParam(r, "seconds")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !slices.Contains(config.RefreshIntervals, seconds) {
		http.Error(w, "unsupported refresh interval", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.ctrl.SetInterval(seconds))
}

// handleFilter handles /api/filter?attack=&min_score= requests. An empty
// query clears the filter.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter views.FlowFilter
	for _, a := range q["attack"] {
		if a = strings.TrimSpace(a); a != "" && !slices.Contains(filter.AttackTypes, a) {
			filter.AttackTypes = append(filter.AttackTypes, a)
		}
	}
	if v := q.Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil || score < 0 || score > 1 {
			http.Error(w, "min_score must be a number between 0 and 1", http.StatusBadRequest)
			return
		}
		filter.MinScore = score
	}

	s.writeJSON(w, http.StatusOK, s.ctrl.SetFilter(filter))
}

// handleExport streams every flow of the latest cycle as CSV
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	d := s.ctrl.Dashboard()

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, d.Cycle.Flows); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="flows.csv"`)
	w.Write(buf.Bytes())
}

// handleReport writes a report bundle for the current dashboard
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	dir, err := s.reports.GenerateReport(s.reportDir, s.ctrl.Dashboard())
	if err != nil {
		s.logger.Error("Failed to generate report", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"dir": dir})
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	s.servePNG(w, report.RenderTrendChart)
}

func (s *Server) handleDistributionChart(w http.ResponseWriter, r *http.Request) {
	s.servePNG(w, report.RenderDistributionChart)
}

func (s *Server) servePNG(w http.ResponseWriter, render func(io.Writer, views.Dashboard) error) {
	var buf bytes.Buffer
	err := render(&buf, s.ctrl.Dashboard())
	switch {
	case errors.Is(err, report.ErrNoData):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		s.logger.Warn("Failed to render chart", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
