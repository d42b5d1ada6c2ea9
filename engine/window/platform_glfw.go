package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// MonitorInfo describes one connected physical output.
type MonitorInfo struct {
	// Name is the human-readable monitor name.
	Name string

	// Primary is true for the system's primary monitor.
	Primary bool

	// RefreshRate is the current video mode's refresh rate in Hz.
	RefreshRate int

	// Width and Height are the current video mode's dimensions in pixels.
	Width  int
	Height int
}

// ensureInit initializes GLFW for callers that query monitors before any
// window exists. After successful initialization further calls return
// immediately, so this composes with NewWindow. Must run on the main thread,
// like every other GLFW entry point.
func ensureInit() error {
	return glfw.Init()
}

// Monitors enumerates the connected monitors, initializing GLFW if no window
// has done so yet.
func Monitors() ([]MonitorInfo, error) {
	if err := ensureInit(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %v", err)
	}
	primary := glfw.GetPrimaryMonitor()
	monitors := glfw.GetMonitors()
	out := make([]MonitorInfo, 0, len(monitors))
	for _, m := range monitors {
		info := MonitorInfo{
			Name:    m.GetName(),
			Primary: m == primary,
		}
		if mode := m.GetVideoMode(); mode != nil {
			info.RefreshRate = mode.RefreshRate
			info.Width = mode.Width
			info.Height = mode.Height
		}
		out = append(out, info)
	}
	return out, nil
}

// Platform is the GLFW-backed implementation of the pacing layer's
// platform queries.
type Platform struct{}

// MaximumFramesPerSecond returns the primary monitor's refresh rate, or 60
// when no monitor is available (headless) or GLFW cannot initialize.
func (Platform) MaximumFramesPerSecond() int {
	if err := ensureInit(); err != nil {
		return 60
	}
	if m := glfw.GetPrimaryMonitor(); m != nil {
		if mode := m.GetVideoMode(); mode != nil && mode.RefreshRate > 0 {
			return mode.RefreshRate
		}
	}
	return 60
}

// CoreCount returns the number of logical CPU cores.
func (Platform) CoreCount() int {
	return runtime.NumCPU()
}

// SupportsRateRange reports false: GLFW's vsync interface takes a single
// rate, not a min/max/preferred triple.
func (Platform) SupportsRateRange() bool {
	return false
}
