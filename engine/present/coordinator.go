// Package present dispatches the backend-appropriate present sequence
// across all registered displays after each repaint.
package present

import (
	"github.com/mastermindon/cadence/common"
	"github.com/mastermindon/cadence/engine/backend"
	"github.com/mastermindon/cadence/engine/display"
)

// BackendSource reports the committed rendering backend. Satisfied by
// *backend.Selector.
type BackendSource interface {
	Current() backend.RenderingBackend
}

// StatsRecorder receives frame-completion statistics after each
// non-suppressed present.
type StatsRecorder interface {
	Record(stats common.FrameStats)
}

// Coordinator presents all displays using the committed backend. It runs
// on the pacing thread; the registry snapshot taken at call time makes it
// tolerant of displays added or removed between cycles without any
// locking.
type Coordinator struct {
	backends BackendSource
	registry *display.Registry
	stats    StatsRecorder
}

// NewCoordinator creates a Coordinator.
//
// Parameters:
//   - backends: source of the committed rendering backend
//   - registry: the display registry presented each cycle
//   - stats: sink for frame-completion statistics (may be nil)
func NewCoordinator(backends BackendSource, registry *display.Registry, stats StatsRecorder) *Coordinator {
	return &Coordinator{
		backends: backends,
		registry: registry,
		stats:    stats,
	}
}

// Present dispatches the present sequence for one completed frame.
//
// A cycle with presentation suppressed or the application resigning is a
// complete no-op: no backend calls, no statistics. Present failures on
// individual displays are logged and do not abort the pass; the next tick
// is the retry mechanism.
//
// On backends with per-display command-buffer submission semantics the
// primary display presents first through its own path, then every
// auxiliary display gets its prepare step in registration order. Other
// backends present through a single registry-wide fan-out.
func (c *Coordinator) Present(stats common.FrameStats, cycle common.Cycle) {
	if cycle.PresentationSuppressed || cycle.ApplicationResigning {
		return
	}

	primary, auxiliaries := c.registry.Snapshot()

	if c.backends.Current().RequiresCommandBuffers() {
		if primary != nil {
			if err := primary.Surface().Present(); err != nil {
				common.Logger().Warn("primary present failed",
					"display", primary.Name(), "error", err)
			}
		}
		for _, d := range auxiliaries {
			if err := d.Surface().PrepareAuxiliary(); err != nil {
				common.Logger().Warn("auxiliary present prepare failed",
					"display", d.Name(), "error", err)
			}
		}
	} else {
		if err := c.registry.PresentAll(); err != nil {
			common.Logger().Warn("present fan-out failed", "error", err)
		}
	}

	if c.stats != nil {
		c.stats.Record(stats)
	}
}
