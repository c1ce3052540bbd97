package monitor

import (
	"time"

	"flowmon/internal/metrics"
	"flowmon/internal/views"
)

// run is the event loop. It is the only goroutine that touches the
// scheduler, pagination, the last cycle and the filter.
func (m *Monitor) run() {
	defer m.wg.Done()
	defer close(m.done)

	ticker := time.NewTicker(m.config.TickResolution)
	defer ticker.Stop()

	// Immediate first cycle
	m.trigger(TriggerStartup)
	m.render()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if m.sched.Due(m.now()) && m.trigger(TriggerScheduled) {
				m.render()
			}
		case cmd := <-m.commands:
			cmd()
		case res := <-m.results:
			m.complete(res)
		}
	}
}

// trigger starts a cycle if the scheduler allows it
func (m *Monitor) trigger(trigger Trigger) bool {
	if !m.sched.Begin(m.now(), trigger) {
		if m.sched.Phase() == Refreshing {
			metrics.RefreshCoalescedTotal.Inc()
			m.logger.Debug("Refresh already in flight, trigger coalesced", "trigger", trigger)
		}
		return false
	}

	m.seq++
	metrics.RefreshCyclesTotal.WithLabelValues(string(trigger)).Inc()
	m.logger.Debug("Refresh cycle started", "trigger", trigger, "seq", m.seq)

	m.wg.Add(1)
	go m.collect(m.seq)
	return true
}

// collect performs one cycle off the loop and posts the result back
func (m *Monitor) collect(seq uint64) {
	defer m.wg.Done()

	cycle := m.source.Collect(m.ctx, m.config.FlowLimit)

	select {
	case m.results <- result{seq: seq, cycle: cycle}:
	case <-m.ctx.Done():
	}
}

// complete applies a finished cycle
func (m *Monitor) complete(res result) {
	if res.seq != m.seq {
		metrics.RefreshStaleTotal.Inc()
		m.logger.Debug("Discarding stale cycle result", "seq", res.seq, "current", m.seq)
		return
	}

	m.cycle = res.cycle
	total := res.cycle.TotalItems()
	m.pages = m.pages.Reconcile(total)
	if total == 0 {
		m.emptyCycles++
	} else {
		m.emptyCycles = 0
	}

	for _, e := range res.cycle.Degraded {
		metrics.RefreshDegradedTotal.WithLabelValues(string(e)).Inc()
	}
	if !res.cycle.CompletedAt.IsZero() {
		metrics.RefreshCycleDuration.Observe(res.cycle.CompletedAt.Sub(res.cycle.StartedAt).Seconds())
	}
	if len(res.cycle.Degraded) > 0 {
		m.logger.Warn("Refresh cycle degraded", "sources", res.cycle.Degraded)
	}
	if m.emptyCycles > 0 {
		m.logger.Warn("No flows available from backend", "consecutive", m.emptyCycles)
	}

	m.sched.Finish()
	m.render()
}

// render builds and publishes the dashboard for the current state
func (m *Monitor) render() views.Dashboard {
	d := views.Build(m.input())

	metrics.PaginationTotalItems.Set(float64(m.pages.TotalItems))
	metrics.PaginationCurrentPage.Set(float64(m.pages.CurrentPage))

	m.current.Store(&d)
	if m.onRender != nil {
		m.onRender(d)
	}
	return d
}

func (m *Monitor) input() views.Input {
	rs := m.sched.State()
	return views.Input{
		Cycle:      m.cycle,
		Pagination: m.pages,
		Refresh: views.Refresh{
			IntervalSeconds: rs.IntervalSeconds,
			LastRefreshAt:   rs.LastRefreshAt,
			InFlight:        rs.InFlight,
		},
		Filter:      m.filter,
		EmptyCycles: m.emptyCycles,
		Now:         m.now(),
	}
}
