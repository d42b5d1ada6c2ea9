package engine

import (
	"time"

	"github.com/mastermindon/cadence/engine/backend"
	"github.com/mastermindon/cadence/engine/display"
	"github.com/mastermindon/cadence/engine/pacing"
	"github.com/mastermindon/cadence/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithRenderer sets the renderer invoked each frame pass.
//
// Parameters:
//   - r: the renderer to step each frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithWindow sets a pre-configured window for the engine to pump and
// present into rather than running windowless.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithPlatform overrides the platform capability source used by the frame
// rate controller. Defaults to the monitor-backed platform.
//
// Parameters:
//   - p: the platform capability source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPlatform(p pacing.Platform) EngineBuilderOption {
	return func(e *engine) {
		e.platform = p
	}
}

// WithTimer overrides the vsync timer driving the scheduler. Defaults to
// a ticker timer at the desired frame rate.
//
// Parameters:
//   - t: the timer to drive frame ticks
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTimer(t pacing.Timer) EngineBuilderOption {
	return func(e *engine) {
		e.timer = t
	}
}

// WithClock overrides the engine's time source.
//
// Parameters:
//   - clock: the function returning the current time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(clock func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.clock = clock
	}
}

// WithEventPass overrides the auxiliary input pass run at frame
// boundaries. Defaults to delivering the window's buffered key events.
//
// Parameters:
//   - fn: the event pass to run
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithEventPass(fn pacing.EventPass) EngineBuilderOption {
	return func(e *engine) {
		e.eventPass = fn
	}
}

// WithDesiredFrameRate sets the engine's preferred frame rate, used when
// a rate change request carries no explicit value. Values <= 0 are
// treated as the default (60).
//
// Parameters:
//   - fps: preferred frames per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDesiredFrameRate(fps int) EngineBuilderOption {
	return func(e *engine) {
		if fps > 0 {
			e.desiredRate = fps
		}
	}
}

// WithProfiling enables or disables frame report output.
//
// Parameters:
//   - enabled: if true, enables frame reports
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfileInterval sets the frame report window. Values <= 0 keep the
// profiler's default.
//
// Parameters:
//   - d: the report window duration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfileInterval(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profileInterval = d
	}
}

// WithBackendPreference sets the preferred rendering backend for the
// one-time selection.
//
// Parameters:
//   - b: the backend to prefer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackendPreference(b backend.RenderingBackend) EngineBuilderOption {
	return func(e *engine) {
		e.selectorOptions = append(e.selectorOptions, backend.WithPreferred(b))
	}
}

// WithFallbackSanctioned allows selection to fall back to the null
// backend when the preferred backend's probe fails.
//
// Parameters:
//   - ok: if true, fallback is sanctioned
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFallbackSanctioned(ok bool) EngineBuilderOption {
	return func(e *engine) {
		e.selectorOptions = append(e.selectorOptions, backend.WithFallbackSanctioned(ok))
	}
}

// WithProbe overrides the capability probe used during backend selection.
//
// Parameters:
//   - p: the probe to run against the preferred backend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProbe(p backend.Probe) EngineBuilderOption {
	return func(e *engine) {
		e.selectorOptions = append(e.selectorOptions, backend.WithProbe(p))
	}
}

// WithDisplay registers a display during engine construction. Displays
// are presented in registration order, primary first.
//
// Parameters:
//   - d: the display to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDisplay(d *display.Display) EngineBuilderOption {
	return func(e *engine) {
		if e.registry == nil {
			e.registry = display.NewRegistry()
		}
		e.registry.Register(d)
	}
}

// WithSurfaceObserver registers a callback notified once rendering is
// initialized, before display surfaces are recreated.
//
// Parameters:
//   - fn: the callback to notify
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSurfaceObserver(fn func()) EngineBuilderOption {
	return func(e *engine) {
		e.surfaceObserver = fn
	}
}
