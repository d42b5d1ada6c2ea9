// Package display tracks the physical outputs the engine presents to: one
// primary display and zero or more auxiliary displays, each owning an
// independent presentable surface.
package display

import (
	"errors"
	"image"

	"github.com/google/uuid"
)

// ErrNoPixels is returned by surfaces that cannot read back pixel data
// (the null surface, or surfaces whose backend offers no readback path).
var ErrNoPixels = errors.New("display: surface has no readable pixels")

// Surface is one display's presentable target. It owns the color/depth
// attachments and the backend-specific presentation queue for that display.
//
// Surfaces are driven only from the pacing thread; implementations need no
// internal locking for Present/PrepareAuxiliary/Recreate.
type Surface interface {
	// Present submits the completed frame's buffer to the display.
	Present() error

	// PrepareAuxiliary runs the non-primary present step for this surface.
	// On command-buffer backends an auxiliary display acquires its drawable
	// independently of the primary's frame timing, so this submits its own
	// command buffer.
	PrepareAuxiliary() error

	// Recreate rebuilds the surface's buffers, e.g. after the graphics
	// context is (re)initialized or the output is resized.
	Recreate() error

	// AllowsScreenshots reports whether pixel capture from this surface is
	// permitted.
	AllowsScreenshots() bool

	// ReadPixels returns the most recently presented color buffer contents.
	// Returns ErrNoPixels when the surface has no readback path.
	ReadPixels() (*image.RGBA, error)

	// Release frees the surface's resources. The surface must not be used
	// afterwards.
	Release()
}

// Display identifies a physical output and owns its Surface. Displays are
// registered with a Registry, which keeps exclusive ownership; other
// components receive non-owning references for the duration of one cycle.
type Display struct {
	id      uuid.UUID
	name    string
	primary bool
	refresh int

	surface      Surface
	surfaceStale bool

	// keyboard delivers this display's pending keyboard input to the
	// engine. Set by the windowing layer; nil for headless displays.
	keyboard func()
}

// DisplayOption is a functional option for configuring a Display.
// Use the With* functions to create options.
type DisplayOption func(*Display)

// AsPrimary marks the display as the primary output. The primary display's
// surface is the one the renderer targets by default.
func AsPrimary() DisplayOption {
	return func(d *Display) {
		d.primary = true
	}
}

// WithRefreshRate sets the display's reported refresh rate in Hz.
func WithRefreshRate(hz int) DisplayOption {
	return func(d *Display) {
		d.refresh = hz
	}
}

// WithKeyboardHandler sets the hook that delivers this display's pending
// keyboard input each cycle.
func WithKeyboardHandler(fn func()) DisplayOption {
	return func(d *Display) {
		d.keyboard = fn
	}
}

// NewDisplay creates a Display owning the given surface.
//
// Parameters:
//   - name: human-readable output name (monitor name or "headless")
//   - surface: the display's presentable surface (must not be nil)
//   - options: functional options to configure the display
//
// Returns:
//   - *Display: the configured display
func NewDisplay(name string, surface Surface, options ...DisplayOption) *Display {
	d := &Display{
		id:      uuid.New(),
		name:    name,
		refresh: 60,
		surface: surface,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// ID returns the display's unique identifier.
func (d *Display) ID() uuid.UUID { return d.id }

// Name returns the display's output name.
func (d *Display) Name() string { return d.name }

// Primary reports whether this is the primary display.
func (d *Display) Primary() bool { return d.primary }

// RefreshRate returns the display's reported refresh rate in Hz.
func (d *Display) RefreshRate() int { return d.refresh }

// Surface returns the display's surface. The caller must not retain the
// reference beyond the current cycle.
func (d *Display) Surface() Surface { return d.surface }

// MarkSurfaceStale flags the surface for recreation on the next upkeep
// pass.
func (d *Display) MarkSurfaceStale() { d.surfaceStale = true }

// SurfaceStale reports whether the surface is flagged for recreation.
func (d *Display) SurfaceStale() bool { return d.surfaceStale }

// ProcessKeyboard delivers the display's pending keyboard input to the
// engine. No-op when the display has no keyboard hook.
func (d *Display) ProcessKeyboard() {
	if d.keyboard != nil {
		d.keyboard()
	}
}
