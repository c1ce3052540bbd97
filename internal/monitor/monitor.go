package monitor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"flowmon/internal/config"
	"flowmon/internal/models"
	"flowmon/internal/pagination"
	"flowmon/internal/views"
)

// Monitor runs the refresh loop and owns all mutable dashboard state
type Monitor struct {
	config   config.Config
	source   models.Source
	logger   *slog.Logger
	now      func() time.Time
	onRender func(views.Dashboard)

	commands chan func()
	results  chan result
	current  atomic.Pointer[views.Dashboard]
	done     chan struct{}

	// Owned by the loop goroutine.
	sched       *Scheduler
	pages       pagination.State
	cycle       models.Cycle
	filter      views.FlowFilter
	emptyCycles int
	seq         uint64

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type result struct {
	seq   uint64
	cycle models.Cycle
}

// Option configures a Monitor
type Option func(*Monitor)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithRenderHook registers fn to be called with every published dashboard
func WithRenderHook(fn func(views.Dashboard)) Option {
	return func(m *Monitor) { m.onRender = fn }
}

// New creates a new Monitor
func New(cfg config.Config, source models.Source, logger *slog.Logger, opts ...Option) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		config:   cfg,
		source:   source,
		logger:   logger,
		now:      time.Now,
		commands: make(chan func()),
		results:  make(chan result),
		done:     make(chan struct{}),
		sched:    NewScheduler(cfg.IntervalSeconds()),
		pages:    pagination.New(cfg.PageSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	initial := views.Build(m.input())
	m.current.Store(&initial)
	return m
}

// Start begins the refresh loop with an immediate startup cycle
func (m *Monitor) Start() error {
	m.logger.Info("Starting monitor",
		"api", m.config.APIURL,
		"interval", m.config.RefreshInterval,
		"page_size", m.pages.PageSize)

	m.wg.Add(1)
	go m.run()
	return nil
}

// Stop gracefully stops the monitor. An in-flight cycle is abandoned.
func (m *Monitor) Stop() {
	m.logger.Info("Stopping monitor...")
	m.cancel()
}

// Wait blocks until all goroutines finish
func (m *Monitor) Wait() {
	m.wg.Wait()
	m.logger.Info("Monitor stopped")
}

// Dashboard returns the last published dashboard
func (m *Monitor) Dashboard() views.Dashboard {
	return *m.current.Load()
}

// Refresh requests a manual cycle. It returns false when a cycle is
// already in flight and the request was coalesced into it.
func (m *Monitor) Refresh() bool {
	var started bool
	m.do(func() { started = m.trigger(TriggerManual) })
	return started
}

// GoToPage navigates to page n, clamped to the available pages
func (m *Monitor) GoToPage(n int) views.Dashboard {
	return m.do(func() { m.pages = m.pages.GoToPage(n) })
}

// Next navigates to the following page if there is one
func (m *Monitor) Next() views.Dashboard {
	return m.do(func() { m.pages = m.pages.Next() })
}

// Previous navigates to the preceding page if there is one
func (m *Monitor) Previous() views.Dashboard {
	return m.do(func() { m.pages = m.pages.Previous() })
}

// ChangePageSize sets the page size and returns to the first page
func (m *Monitor) ChangePageSize(size int) views.Dashboard {
	return m.do(func() { m.pages = m.pages.ChangePageSize(size) })
}

// SetInterval changes the auto-refresh interval in seconds
func (m *Monitor) SetInterval(seconds int) views.Dashboard {
	return m.do(func() {
		m.sched.SetInterval(seconds)
		m.logger.Info("Refresh interval changed", "seconds", m.sched.State().IntervalSeconds)
	})
}

// SetFilter replaces the flow table filter
func (m *Monitor) SetFilter(filter views.FlowFilter) views.Dashboard {
	return m.do(func() { m.filter = filter })
}

// do runs fn on the loop goroutine, re-renders and returns the result.
// Once the loop has exited the last published dashboard is returned.
func (m *Monitor) do(fn func()) views.Dashboard {
	reply := make(chan views.Dashboard, 1)
	cmd := func() {
		fn()
		reply <- m.render()
	}

	select {
	case m.commands <- cmd:
	case <-m.ctx.Done():
		return m.Dashboard()
	case <-m.done:
		return m.Dashboard()
	}

	select {
	case d := <-reply:
		return d
	case <-m.done:
		return m.Dashboard()
	}
}
