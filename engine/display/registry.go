package display

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mastermindon/cadence/common"
)

// Registry owns the process's displays: the primary plus zero or more
// auxiliary displays in registration order. All mutation happens
// synchronously on the pacing thread, so the registry carries no lock.
type Registry struct {
	primary     *Display
	auxiliaries []*Display
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a display. A display marked primary replaces the current
// primary (the previous primary's surface is released); all others are
// appended to the auxiliary list in registration order.
func (r *Registry) Register(d *Display) {
	if d == nil {
		return
	}
	if d.Primary() {
		if r.primary != nil {
			r.primary.Surface().Release()
		}
		r.primary = d
	} else {
		r.auxiliaries = append(r.auxiliaries, d)
	}
	common.Logger().Info("display registered",
		"id", d.ID().String(), "name", d.Name(), "primary", d.Primary())
}

// Unregister removes the display with the given id and releases its
// surface. Removing an auxiliary display does not disturb the relative
// order of the remaining auxiliaries.
func (r *Registry) Unregister(id uuid.UUID) error {
	if r.primary != nil && r.primary.ID() == id {
		r.primary.Surface().Release()
		r.primary = nil
		return nil
	}
	for i, d := range r.auxiliaries {
		if d.ID() == id {
			d.Surface().Release()
			r.auxiliaries = append(r.auxiliaries[:i], r.auxiliaries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("display: no registered display with id %s", id)
}

// Primary returns the primary display, or nil when none is registered.
func (r *Registry) Primary() *Display {
	return r.primary
}

// Auxiliaries returns the auxiliary displays in registration order. The
// returned slice is a snapshot; displays added or removed afterwards do not
// affect it.
func (r *Registry) Auxiliaries() []*Display {
	out := make([]*Display, len(r.auxiliaries))
	copy(out, r.auxiliaries)
	return out
}

// Snapshot returns the primary display and an auxiliary snapshot taken at
// call time. The presentation coordinator works from this snapshot so
// displays may come and go between cycles.
func (r *Registry) Snapshot() (*Display, []*Display) {
	return r.primary, r.Auxiliaries()
}

// Count returns the number of registered displays including the primary.
func (r *Registry) Count() int {
	n := len(r.auxiliaries)
	if r.primary != nil {
		n++
	}
	return n
}

// PresentAll presents every registered display through its own surface.
// Used by backends without per-display command-buffer semantics, where a
// single uniform call fans out internally. The first error is returned
// after all displays have been attempted.
func (r *Registry) PresentAll() error {
	var firstErr error
	if r.primary != nil {
		if err := r.primary.Surface().Present(); err != nil {
			firstErr = err
		}
	}
	for _, d := range r.auxiliaries {
		if err := d.Surface().Present(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RecreateSurfaces rebuilds every registered display's surface. Invoked
// when the renderer's graphics context becomes ready.
func (r *Registry) RecreateSurfaces() error {
	var firstErr error
	if r.primary != nil {
		if err := r.primary.Surface().Recreate(); err != nil {
			firstErr = err
		}
	}
	for _, d := range r.auxiliaries {
		if err := d.Surface().Recreate(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Upkeep runs the per-cycle display pass: recreate any surface flagged
// stale and deliver each display's pending keyboard input.
func (r *Registry) Upkeep() {
	upkeep := func(d *Display) {
		if d.SurfaceStale() {
			if err := d.Surface().Recreate(); err != nil {
				common.Logger().Warn("surface recreation failed",
					"display", d.Name(), "error", err)
			} else {
				d.surfaceStale = false
			}
		}
		d.ProcessKeyboard()
	}
	if r.primary != nil {
		upkeep(r.primary)
	}
	for _, d := range r.auxiliaries {
		upkeep(d)
	}
}

// Release unregisters everything and releases all surfaces.
func (r *Registry) Release() {
	if r.primary != nil {
		r.primary.Surface().Release()
		r.primary = nil
	}
	for _, d := range r.auxiliaries {
		d.Surface().Release()
	}
	r.auxiliaries = nil
}
