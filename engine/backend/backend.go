// Package backend owns graphics backend selection. The backend is chosen
// exactly once per process lifetime, after a capability probe where the
// preferred backend requires one, and is immutable afterwards.
package backend

import "errors"

// RenderingBackend identifies the graphics API family used for rendering
// and presentation. Immutable once chosen by a Selector.
type RenderingBackend int

const (
	// BackendUnknown is the zero value; no backend has been committed.
	BackendUnknown RenderingBackend = iota

	// BackendWGPU renders through WebGPU. Presentation uses per-display
	// command-buffer submission semantics.
	BackendWGPU

	// BackendNull is the no-graphics backend used on platforms where the
	// preferred backend is unavailable and fallback is sanctioned.
	BackendNull
)

// String returns the backend identifier.
func (b RenderingBackend) String() string {
	switch b {
	case BackendWGPU:
		return "wgpu"
	case BackendNull:
		return "null"
	default:
		return "unknown"
	}
}

// RequiresCommandBuffers reports whether presentation must submit a
// separate command buffer per display. Auxiliary displays on such backends
// acquire their drawables independently of the primary's frame timing, so
// each one needs its own prepare step.
func (b RenderingBackend) RequiresCommandBuffers() bool {
	return b == BackendWGPU
}

// ErrProbeFailed is returned when the preferred backend's capability probe
// fails and no fallback is sanctioned on this platform.
var ErrProbeFailed = errors.New("backend: capability probe failed")

// ProbeError wraps the underlying probe failure with the backend that was
// being probed.
type ProbeError struct {
	Backend RenderingBackend
	Err     error
}

func (e *ProbeError) Error() string {
	return "backend: probe for " + e.Backend.String() + " failed: " + e.Err.Error()
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Is reports whether target matches ErrProbeFailed, so callers can test
// with errors.Is without knowing the concrete type.
func (e *ProbeError) Is(target error) bool { return target == ErrProbeFailed }
