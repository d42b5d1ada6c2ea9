// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "time"

// FrameStats holds completion statistics for a single presented frame.
// The renderer fills this in at end of frame and hands it to the engine
// through the present hook; the profiler accumulates it.
type FrameStats struct {
	// FrameIndex is the monotonically increasing frame counter.
	FrameIndex uint64

	// CPUTime is the time spent producing the frame on the pacing thread.
	CPUTime time.Duration

	// Latency is the time from frame submission to present completion.
	Latency time.Duration

	// Timestamp is when the frame finished presenting.
	Timestamp time.Time
}

// Cycle is a read-only snapshot of collaborator state taken at the top of
// each repaint cycle. It is built once per tick and passed down through the
// scheduler, repaint hook, and presentation coordinator so that no component
// reads ambient mutable flags mid-cycle.
type Cycle struct {
	// Timestamp is the tick time reported by the pacing timer's clock.
	Timestamp time.Time

	// ApplicationResigning is true while the application is resigning active
	// state. Both repaint and present are skipped while set.
	ApplicationResigning bool

	// PresentationSuppressed is true while presents must be skipped but
	// repaint may still occur (mid-transition states).
	PresentationSuppressed bool

	// IgnoringInput is true while interaction events are globally ignored.
	// The auxiliary input pass is skipped while set.
	IgnoringInput bool

	// Paused is true while the engine reports a global pause state. Event
	// delivery and simulation stepping are skipped while set.
	Paused bool
}

// RateRange expresses a frame-rate request to the pacing timer.
// Platforms with ranged-rate APIs receive the full min/max/preferred triple;
// others use Preferred alone. Preferred is always populated.
type RateRange struct {
	Min       int
	Max       int
	Preferred int
}
