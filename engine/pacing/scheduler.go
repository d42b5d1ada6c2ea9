package pacing

import (
	"errors"
	"time"

	"github.com/mastermindon/cadence/common"
)

// State is the scheduler lifecycle state.
type State int

const (
	// StateUninitialized means no timer is attached.
	StateUninitialized State = iota

	// StateCreated means the timer is attached and ticking.
	StateCreated

	// StateFiring means one repaint+present cycle is in progress. Timer
	// fires arriving in this state are suppressed, not queued.
	StateFiring
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateFiring:
		return "firing"
	default:
		return "uninitialized"
	}
}

// ErrNotCreated is returned for operations that require an attached timer.
var ErrNotCreated = errors.New("pacing: scheduler has no attached timer")

// FrameFunc is the external per-frame hook. It delivers accumulated input
// and UI events to the engine, steps the engine, and triggers presentation.
type FrameFunc func(common.Cycle)

// EventPass runs one pass of the platform's event-processing primitive.
// A deadline already in the past bounds the pass to a single non-blocking
// drain.
type EventPass func(deadline time.Time)

// SnapshotFunc produces the read-only collaborator-state snapshot for one
// cycle.
type SnapshotFunc func() common.Cycle

// Scheduler owns the vsync-driven timer and runs the repaint cycle on each
// tick. It is single-threaded by construction: ticks, Create, Destroy, and
// rate changes all happen on the pacing thread, and the explicit timer
// pause around the callback body is what keeps a slow present from causing
// a re-fire mid-frame.
type Scheduler struct {
	state State
	timer Timer

	clock    func() time.Time
	frame    FrameFunc
	events   EventPass
	snapshot SnapshotFunc

	auxiliaryInputPacing bool
}

// SchedulerOption is a functional option for configuring a Scheduler.
// Use the With* functions to create options.
type SchedulerOption func(*Scheduler)

// WithTimer sets the timer driving the scheduler. Defaults to a ticker
// timer at 60 fps.
func WithTimer(t Timer) SchedulerOption {
	return func(s *Scheduler) {
		s.timer = t
	}
}

// WithClock sets the timestamp source for cycle snapshots. Defaults to
// time.Now.
func WithClock(clock func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithFrameFunc sets the external per-frame hook.
func WithFrameFunc(fn FrameFunc) SchedulerOption {
	return func(s *Scheduler) {
		s.frame = fn
	}
}

// WithEventPass sets the platform event-processing primitive used by the
// auxiliary input pass.
func WithEventPass(fn EventPass) SchedulerOption {
	return func(s *Scheduler) {
		s.events = fn
	}
}

// WithSnapshot sets the per-cycle collaborator-state snapshot source.
func WithSnapshot(fn SnapshotFunc) SchedulerOption {
	return func(s *Scheduler) {
		s.snapshot = fn
	}
}

// NewScheduler creates a Scheduler in the Uninitialized state with the
// provided options applied over defaults.
func NewScheduler(options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		state:    StateUninitialized,
		timer:    NewTickerTimer(60),
		clock:    time.Now,
		frame:    func(common.Cycle) {},
		events:   func(time.Time) {},
		snapshot: func() common.Cycle { return common.Cycle{} },
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Create attaches the timer and transitions Uninitialized -> Created.
// Calling Create on an already-created scheduler is a no-op.
func (s *Scheduler) Create() {
	if s.state != StateUninitialized {
		return
	}
	s.state = StateCreated
	s.timer.Start(s.Tick)
}

// Destroy detaches the timer and transitions back to Uninitialized. The
// timer's Stop waits out any in-flight tick, so once Destroy returns no
// cycle is running and none will start.
func (s *Scheduler) Destroy() {
	if s.state == StateUninitialized {
		return
	}
	s.timer.Stop()
	s.state = StateUninitialized
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return s.state
}

// SetAuxiliaryInputPacing enables or disables the auxiliary input pass.
// Set by the frame-rate controller when the target reaches the platform
// maximum on multi-core hardware.
func (s *Scheduler) SetAuxiliaryInputPacing(on bool) {
	s.auxiliaryInputPacing = on
}

// AuxiliaryInputPacing reports whether the auxiliary input pass is enabled.
func (s *Scheduler) AuxiliaryInputPacing() bool {
	return s.auxiliaryInputPacing
}

// SetRate forwards a rate change to the attached timer.
func (s *Scheduler) SetRate(r common.RateRange) error {
	if s.state == StateUninitialized {
		return ErrNotCreated
	}
	s.timer.SetRate(r)
	common.Logger().Debug("pacing timer reconfigured",
		"preferred", r.Preferred, "min", r.Min, "max", r.Max)
	return nil
}

// Tick runs one repaint cycle. Fires arriving while a cycle is already in
// progress are suppressed silently; that is the non-reentrancy contract,
// not an error.
//
// The timer is paused on entry and resumed on exit, exactly once per tick,
// even when the repaint body is skipped because the application is
// resigning. Pausing trades frame-rate smoothness on GPU-bound frames for
// input-latency stability: a present that overruns the frame budget cannot
// cause the timer to re-fire mid-frame.
func (s *Scheduler) Tick() {
	if s.state != StateCreated {
		return
	}
	s.state = StateFiring
	s.timer.Pause()

	cycle := s.snapshot()
	cycle.Timestamp = s.clock()

	if !cycle.ApplicationResigning {
		s.frame(cycle)

		// The auxiliary pass drains one iteration of pending input-delivery
		// work. Requesting it with a timestamp already in the past bounds
		// the pass to fire at most once. It compensates for event-delivery
		// starvation on multi-core hardware running at the platform's
		// maximum rate.
		if s.auxiliaryInputPacing && !cycle.IgnoringInput {
			s.events(cycle.Timestamp.Add(-time.Millisecond))
		}
	}

	s.timer.Resume()
	s.state = StateCreated
}
