package monitor

import "time"

// Trigger identifies what asked for a refresh cycle
type Trigger string

const (
	TriggerStartup   Trigger = "startup"
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Phase is the refresh state machine position
type Phase int

const (
	Idle Phase = iota
	Refreshing
)

func (p Phase) String() string {
	if p == Refreshing {
		return "refreshing"
	}
	return "idle"
}

// RefreshState is the scheduler's view of the refresh cadence
type RefreshState struct {
	LastRefreshAt   time.Time
	IntervalSeconds int
	InFlight        bool
}

// Scheduler decides when refresh cycles start. It is not safe for
// concurrent use; the monitor loop is its only caller.
type Scheduler struct {
	state RefreshState
}

// NewScheduler returns an idle scheduler that is due immediately
func NewScheduler(intervalSeconds int) *Scheduler {
	return &Scheduler{state: RefreshState{IntervalSeconds: max(intervalSeconds, 1)}}
}

// Phase returns Refreshing while a cycle is in flight
func (s *Scheduler) Phase() Phase {
	if s.state.InFlight {
		return Refreshing
	}
	return Idle
}

// Elapsed returns the time since the last cycle started
func (s *Scheduler) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.state.LastRefreshAt)
}

// Due reports whether a scheduled cycle should start at now
func (s *Scheduler) Due(now time.Time) bool {
	if s.state.InFlight {
		return false
	}
	return s.Elapsed(now) >= time.Duration(s.state.IntervalSeconds)*time.Second
}

// Begin moves the scheduler to Refreshing and reports whether a cycle
// should start. Triggers arriving while a cycle is in flight are dropped.
func (s *Scheduler) Begin(now time.Time, trigger Trigger) bool {
	if s.state.InFlight {
		return false
	}
	if trigger == TriggerScheduled && !s.Due(now) {
		return false
	}
	s.state.InFlight = true
	s.state.LastRefreshAt = now
	return true
}

// Finish returns the scheduler to Idle
func (s *Scheduler) Finish() {
	s.state.InFlight = false
}

// SetInterval changes the auto-refresh interval, clamped to at least one
// second. An in-flight cycle is not affected.
func (s *Scheduler) SetInterval(seconds int) {
	s.state.IntervalSeconds = max(seconds, 1)
}

// State returns a copy of the current refresh state
func (s *Scheduler) State() RefreshState {
	return s.state
}
