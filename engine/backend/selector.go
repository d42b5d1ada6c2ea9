package backend

import (
	"github.com/mastermindon/cadence/common"
)

// Probe attempts to secure the resources the preferred backend needs.
// On success it returns the acquired handles; on failure it must release
// everything it acquired before returning (no partial commit).
type Probe func() (*ProbeResult, error)

// Selector performs the one-time backend choice. The zero value is not
// usable; construct with NewSelector.
//
// Select is callable exactly once; a second call is a programming error and
// panics. Current panics if called before Select. Both follow the
// precondition-violation contract: collaborator misuse is never silently
// tolerated.
type Selector struct {
	selected bool
	backend  RenderingBackend

	preferred          RenderingBackend
	probe              Probe
	fallbackSanctioned bool

	result *ProbeResult
}

// SelectorOption is a functional option for configuring a Selector.
// Use the With* functions to create options.
type SelectorOption func(*Selector)

// WithPreferred sets the platform's preferred backend. Defaults to
// BackendWGPU.
func WithPreferred(b RenderingBackend) SelectorOption {
	return func(s *Selector) {
		s.preferred = b
	}
}

// WithProbe sets the capability probe run for backends that require one.
// Defaults to the WGPU probe.
func WithProbe(p Probe) SelectorOption {
	return func(s *Selector) {
		s.probe = p
	}
}

// WithFallbackSanctioned controls whether a probe failure may fall back to
// the no-graphics backend. Sanctioned only on simulated or headless
// platforms; everywhere else probe failure is fatal.
func WithFallbackSanctioned(ok bool) SelectorOption {
	return func(s *Selector) {
		s.fallbackSanctioned = ok
	}
}

// NewSelector creates a Selector with the provided options applied over
// defaults (preferred WGPU, real WGPU probe, fallback not sanctioned).
func NewSelector(options ...SelectorOption) *Selector {
	s := &Selector{
		preferred: BackendWGPU,
		probe:     WGPUProbe(false),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Select commits the rendering backend for the process lifetime.
//
// If the preferred backend requires a capability probe, the probe runs
// exactly once. On probe success the preferred backend is committed. On
// probe failure the selector falls back to BackendNull only when fallback
// is sanctioned; otherwise the probe error is returned and the process
// cannot continue rendering.
//
// Calling Select a second time panics.
func (s *Selector) Select() (RenderingBackend, error) {
	if s.selected {
		panic("backend: Select called twice; the backend is immutable once chosen")
	}

	chosen := s.preferred
	if chosen.RequiresCommandBuffers() {
		result, err := s.probe()
		if err != nil {
			if !s.fallbackSanctioned {
				return BackendUnknown, &ProbeError{Backend: chosen, Err: err}
			}
			common.Logger().Warn("backend probe failed, falling back to null backend",
				"preferred", chosen.String(), "error", err)
			chosen = BackendNull
		} else {
			s.result = result
		}
	}

	s.backend = chosen
	s.selected = true
	common.Logger().Info("rendering backend selected", "backend", chosen.String())
	return chosen, nil
}

// Current returns the committed backend. Panics if called before Select.
func (s *Selector) Current() RenderingBackend {
	if !s.selected {
		panic("backend: Current called before Select; no backend has been chosen")
	}
	return s.backend
}

// Selected reports whether a backend has been committed. Unlike Current
// this never panics; it exists for callers that must branch on lifecycle
// state rather than assert it.
func (s *Selector) Selected() bool {
	return s.selected
}

// Result returns the probe result committed by Select, or nil when the
// committed backend required no probe (or fallback was taken).
func (s *Selector) Result() *ProbeResult {
	return s.result
}

// Release releases any probe-acquired GPU handles. Safe to call when no
// probe result is held.
func (s *Selector) Release() {
	if s.result != nil {
		s.result.Release()
		s.result = nil
	}
}
