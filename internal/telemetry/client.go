// Package telemetry fetches flow telemetry from the monitoring backend.
//
// Every fetch fails soft: a timeout, transport error, non-200 status or
// malformed payload yields the documented empty value for that endpoint and
// is only reported through logs and metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"flowmon/internal/metrics"
	"flowmon/internal/models"
)

const maxBodyBytes = 8 << 20

var (
	// ErrStatus marks a response with a status other than 200.
	ErrStatus = errors.New("unexpected status")
	// ErrMalformed marks a payload with missing or invalid fields.
	ErrMalformed = errors.New("malformed payload")
)

// Client implements models.Telemetry over HTTP
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	flowTimeout time.Duration
	logger      *slog.Logger
}

var _ models.Telemetry = (*Client)(nil)

// New creates a Client. timeout bounds every call except /api/packets, which
// is bounded by flowTimeout.
func New(baseURL string, timeout, flowTimeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{},
		timeout:     timeout,
		flowTimeout: flowTimeout,
		logger:      logger,
	}
}

// FetchStats returns the summary counters, or a zero snapshot on failure
func (c *Client) FetchStats(ctx context.Context) models.StatsSnapshot {
	s, _ := c.stats(ctx)
	return s
}

// FetchFlows returns at most limit flow records, or an empty slice on failure
func (c *Client) FetchFlows(ctx context.Context, limit int) []models.FlowRecord {
	f, _ := c.flows(ctx, limit)
	return f
}

// FetchDistribution returns the attack distribution, or an empty one on failure
func (c *Client) FetchDistribution(ctx context.Context) models.AttackDistribution {
	d, _ := c.distribution(ctx)
	return d
}

// FetchTrends returns the rate trends, or an empty trend on failure
func (c *Client) FetchTrends(ctx context.Context) models.TimeTrend {
	t, _ := c.trends(ctx)
	return t
}

// Collect fetches all four sources concurrently and returns once every one
// of them has resolved. Failed sources are listed in Cycle.Degraded.
func (c *Client) Collect(ctx context.Context, limit int) models.Cycle {
	cycle := models.Cycle{StartedAt: time.Now()}
	var statsErr, flowsErr, distErr, trendErr error

	var g errgroup.Group
	g.Go(func() error {
		cycle.Stats, statsErr = c.stats(ctx)
		return nil
	})
	g.Go(func() error {
		cycle.Flows, flowsErr = c.flows(ctx, limit)
		return nil
	})
	g.Go(func() error {
		cycle.Distribution, distErr = c.distribution(ctx)
		return nil
	})
	g.Go(func() error {
		cycle.Trend, trendErr = c.trends(ctx)
		return nil
	})
	g.Wait()

	for i, err := range []error{statsErr, flowsErr, distErr, trendErr} {
		if err != nil {
			cycle.Degraded = append(cycle.Degraded, models.Endpoints[i])
		}
	}
	cycle.CompletedAt = time.Now()
	return cycle
}

func (c *Client) stats(ctx context.Context) (models.StatsSnapshot, error) {
	s, err := fetch(ctx, c, models.EndpointStats, "/api/stats", c.timeout, decodeStats)
	if err != nil {
		return models.StatsSnapshot{}, err
	}
	return s, nil
}

func (c *Client) flows(ctx context.Context, limit int) ([]models.FlowRecord, error) {
	if limit < 1 {
		limit = 1
	}
	path := fmt.Sprintf("/api/packets?count=%d", limit)
	f, err := fetch(ctx, c, models.EndpointPackets, path, c.flowTimeout, func(b []byte) ([]models.FlowRecord, error) {
		return decodeFlows(b, limit)
	})
	if err != nil {
		return []models.FlowRecord{}, err
	}
	return f, nil
}

func (c *Client) distribution(ctx context.Context) (models.AttackDistribution, error) {
	d, err := fetch(ctx, c, models.EndpointDistribution, "/api/analytics/attack_distribution", c.timeout, decodeDistribution)
	if err != nil {
		return models.NewAttackDistribution(nil), err
	}
	return d, nil
}

func (c *Client) trends(ctx context.Context) (models.TimeTrend, error) {
	t, err := fetch(ctx, c, models.EndpointTrends, "/api/analytics/time_trends", c.timeout, decodeTrends)
	if err != nil {
		return models.TimeTrend{}, err
	}
	return t, nil
}

func fetch[T any](ctx context.Context, c *Client, endpoint models.Endpoint, path string, timeout time.Duration, decode func([]byte) (T, error)) (T, error) {
	start := time.Now()
	var v T
	body, err := c.get(ctx, path, timeout)
	if err == nil {
		v, err = decode(body)
	}

	result := outcome(err)
	metrics.TelemetryRequestDuration.WithLabelValues(string(endpoint)).Observe(time.Since(start).Seconds())
	metrics.TelemetryRequestsTotal.WithLabelValues(string(endpoint), result).Inc()
	if err != nil {
		c.logger.Warn("telemetry source unavailable", "endpoint", endpoint, "outcome", result, "err", err)
		return v, err
	}
	c.logger.Debug("telemetry fetched", "endpoint", endpoint, "duration", time.Since(start))
	return v, nil
}

func (c *Client) get(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: %s body exceeds %d bytes", ErrMalformed, path, maxBodyBytes)
	}
	return body, nil
}

// outcome maps a fetch error to its metrics label
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "transport"
	}
}
