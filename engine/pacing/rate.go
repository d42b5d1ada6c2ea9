package pacing

import (
	"github.com/mastermindon/cadence/common"
)

// Platform reports the read-only hardware facts the controller needs.
type Platform interface {
	// MaximumFramesPerSecond is the platform-reported maximum refresh rate.
	MaximumFramesPerSecond() int

	// CoreCount is the number of logical CPU cores.
	CoreCount() int

	// SupportsRateRange reports whether the platform timer API accepts a
	// min/max/preferred triple rather than a single preferred rate.
	SupportsRateRange() bool
}

// RateSource is the engine-side authoritative frame-rate setting. The
// controller reads it when a non-positive rate is requested and writes the
// clamped value back when a request exceeds the platform maximum.
type RateSource interface {
	DesiredFrameRate() int
	SetDesiredFrameRate(fps int)
}

// rateSink is the slice of the scheduler the controller drives. Narrow so
// tests can observe reconfiguration without a real timer.
type rateSink interface {
	SetAuxiliaryInputPacing(on bool)
	SetRate(r common.RateRange) error
}

// Controller computes the effective frame-rate target and keeps the
// engine-side setting and the pacing timer in sync.
type Controller struct {
	platform Platform
	source   RateSource
	sink     rateSink

	target               int
	auxiliaryInputPacing bool
}

// NewController creates a frame-rate Controller driving the given
// scheduler.
//
// Parameters:
//   - platform: hardware capability queries
//   - source: the engine-side frame-rate setting
//   - scheduler: the pacing scheduler whose timer is reconfigured
//
// Returns:
//   - *Controller: the controller
func NewController(platform Platform, source RateSource, scheduler *Scheduler) *Controller {
	return &Controller{
		platform: platform,
		source:   source,
		sink:     scheduler,
	}
}

// SetTarget applies a requested frame rate.
//
// A non-positive request substitutes the engine-reported desired rate. The
// result is clamped to the platform maximum; when clamping occurs the
// clamped value is written back to the engine-side setting and the method
// stops there — the timer is intentionally not reconfigured, because the
// next call with the corrected value is the one that configures it. This
// avoids configuring the timer twice per request and keeps the engine's
// authoritative setting and the timer in sync.
//
// When no clamp occurs, the auxiliary-input-pacing flag is recomputed
// (enabled iff the request equals the platform maximum and the hardware has
// more than one core) and the timer is reconfigured, preferring the
// min/max/preferred triple when the platform supports ranged rates.
func (c *Controller) SetTarget(requestedFPS int) {
	if requestedFPS <= 0 {
		requestedFPS = c.source.DesiredFrameRate()
	}

	max := c.platform.MaximumFramesPerSecond()
	if requestedFPS > max {
		c.target = max
		c.source.SetDesiredFrameRate(max)
		common.Logger().Debug("frame-rate request clamped",
			"requested", requestedFPS, "max", max)
		return
	}

	c.target = requestedFPS
	c.auxiliaryInputPacing = requestedFPS == max && c.platform.CoreCount() > 1
	c.sink.SetAuxiliaryInputPacing(c.auxiliaryInputPacing)

	r := common.RateRange{Preferred: requestedFPS}
	if c.platform.SupportsRateRange() {
		r.Min = requestedFPS
		r.Max = max
	}
	if err := c.sink.SetRate(r); err != nil {
		common.Logger().Warn("timer reconfiguration deferred", "error", err)
	}
}

// Target returns the effective frame-rate target after the last SetTarget.
func (c *Controller) Target() int {
	return c.target
}

// AuxiliaryInputPacingEnabled reports whether the auxiliary input pass is
// currently enabled.
func (c *Controller) AuxiliaryInputPacingEnabled() bool {
	return c.auxiliaryInputPacing
}
