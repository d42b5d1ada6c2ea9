package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/mastermindon/cadence/common"
	"github.com/mastermindon/cadence/engine/backend"
	"github.com/mastermindon/cadence/engine/display"
	"github.com/mastermindon/cadence/engine/pacing"
	"github.com/mastermindon/cadence/engine/present"
	"github.com/mastermindon/cadence/engine/profiler"
	"github.com/mastermindon/cadence/engine/window"
)

// Renderer draws one frame. The engine invokes it from the pacing
// scheduler's frame pass; implementations draw into the primary display's
// surface.
type Renderer interface {
	// StepFrame renders one frame for the given frame cycle.
	//
	// Parameters:
	//   - cycle: the frame cycle snapshot taken at tick time
	//
	// Returns:
	//   - error: error if the frame could not be rendered
	StepFrame(cycle common.Cycle) error
}

// engine implements the Engine interface.
// Ties the backend selector, display registry, pacing scheduler, frame
// rate controller, presentation coordinator, and profiler together.
type engine struct {
	selector        *backend.Selector
	selectorOptions []backend.SelectorOption

	registry    *display.Registry
	scheduler   *pacing.Scheduler
	controller  *pacing.Controller
	coordinator *present.Coordinator

	prof             *profiler.Profiler
	profilingEnabled bool
	profileInterval  time.Duration

	window   window.Window
	platform pacing.Platform
	renderer Renderer

	// surfaceObserver is notified once rendering is initialized, before
	// surfaces are recreated.
	surfaceObserver func()

	timer     pacing.Timer
	eventPass pacing.EventPass
	clock     func() time.Time

	desiredRate int
	frameIndex  uint64

	graphicsReady bool

	applicationResigning   bool
	presentationSuppressed bool
	ignoringInput          bool
	paused                 bool

	running     bool
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
}

// Engine is the main entry point.
// It owns backend selection, display management, frame pacing, and
// presentation for the application's rendering loop.
type Engine interface {
	// SelectBackend performs the one-time rendering backend selection,
	// probing the preferred backend and falling back when sanctioned.
	// Must be called exactly once before any presentation.
	//
	// Returns:
	//   - error: error if the probe fails and fallback is not sanctioned
	SelectBackend() error

	// CurrentBackend returns the selected rendering backend.
	// Panics if called before SelectBackend.
	//
	// Returns:
	//   - backend.RenderingBackend: the committed backend
	CurrentBackend() backend.RenderingBackend

	// OnGraphicsInitialized marks the rendering stack ready, notifies the
	// surface observer, and recreates all display surfaces.
	//
	// Returns:
	//   - error: error if surfaces could not be recreated
	OnGraphicsInitialized() error

	// OnPresentRequested presents the frame described by stats to every
	// registered display. No-op until graphics are initialized, while
	// presentation is suppressed, or while the application is resigning.
	//
	// Parameters:
	//   - stats: the frame's timing statistics
	OnPresentRequested(stats common.FrameStats)

	// OnFrameRateChangeRequested routes a frame rate change through the
	// frame rate controller, which clamps and applies it.
	//
	// Parameters:
	//   - fps: the requested frame rate; <= 0 means the desired rate
	OnFrameRateChangeRequested(fps int)

	// SetApplicationResigning flags that the application is moving to the
	// background. While set, frame and presentation work is skipped.
	SetApplicationResigning(resigning bool)

	// SetPresentationSuppressed flags that presentation output should be
	// withheld without pausing the frame loop.
	SetPresentationSuppressed(suppressed bool)

	// SetIgnoringInput flags that buffered input should not be delivered
	// at frame boundaries.
	SetIgnoringInput(ignoring bool)

	// SetPaused flags that frame stepping should be skipped while the
	// loop keeps running.
	SetPaused(paused bool)

	// SetRenderer registers the renderer stepped each frame pass.
	// Use this when the renderer needs the committed backend and can only
	// be built after SelectBackend.
	//
	// Parameters:
	//   - r: the renderer to step each frame
	SetRenderer(r Renderer)

	// DesiredFrameRate returns the engine's preferred frame rate, used
	// when a rate change request carries no explicit value.
	DesiredFrameRate() int

	// SetDesiredFrameRate sets the engine's preferred frame rate.
	// Values <= 0 are ignored.
	SetDesiredFrameRate(fps int)

	// ProbeResult returns the GPU handles committed by backend selection,
	// or nil when the selected backend needed no probe.
	ProbeResult() *backend.ProbeResult

	// Registry returns the display registry.
	Registry() *display.Registry

	// Controller returns the frame rate controller.
	Controller() *pacing.Controller

	// Scheduler returns the pacing scheduler.
	Scheduler() *pacing.Scheduler

	// Window returns the underlying window, or nil when running without
	// one.
	Window() window.Window

	// EnableProfiler enables frame report output to the log.
	EnableProfiler()

	// DisableProfiler disables frame report output.
	DisableProfiler()

	// Run starts the scheduler and blocks until the window closes or
	// Quit is called.
	Run()

	// Quit signals the engine to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Release frees the registry's surfaces and any GPU handles held by
	// the backend selector. Call after Run returns.
	Release()
}

// NewEngine creates a new Engine instance with the provided options.
// Wires the selector, registry, scheduler, controller, coordinator, and
// profiler with sensible defaults; options are applied directly to the
// engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		clock:       time.Now,
		desiredRate: 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.registry == nil {
		e.registry = display.NewRegistry()
	}
	if e.selector == nil {
		e.selector = backend.NewSelector(e.selectorOptions...)
	}
	if e.platform == nil {
		e.platform = window.Platform{}
	}
	if e.timer == nil {
		e.timer = pacing.NewTickerTimer(e.desiredRate)
	}
	if e.eventPass == nil {
		e.eventPass = e.deliverInput
	}

	var profOptions []profiler.ProfilerOption
	if e.profileInterval > 0 {
		profOptions = append(profOptions, profiler.WithUpdateInterval(e.profileInterval))
	}
	e.prof = profiler.NewProfiler(profOptions...)

	e.scheduler = pacing.NewScheduler(
		pacing.WithTimer(e.timer),
		pacing.WithClock(e.clock),
		pacing.WithFrameFunc(e.repaint),
		pacing.WithEventPass(e.eventPass),
		pacing.WithSnapshot(e.snapshot),
	)
	e.controller = pacing.NewController(e.platform, e, e.scheduler)
	e.coordinator = present.NewCoordinator(e.selector, e.registry, e)

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if primary := e.registry.Primary(); primary != nil {
				primary.MarkSurfaceStale()
			}
		})
	}

	return e
}

func (e *engine) SelectBackend() error {
	_, err := e.selector.Select()
	return err
}

func (e *engine) CurrentBackend() backend.RenderingBackend {
	return e.selector.Current()
}

func (e *engine) OnGraphicsInitialized() error {
	if !e.selector.Selected() {
		return fmt.Errorf("engine: graphics initialized before backend selection")
	}
	e.graphicsReady = true

	if e.surfaceObserver != nil {
		e.surfaceObserver()
	}
	if err := e.registry.RecreateSurfaces(); err != nil {
		return fmt.Errorf("failed to recreate surfaces: %w", err)
	}
	return nil
}

func (e *engine) OnPresentRequested(stats common.FrameStats) {
	if !e.graphicsReady {
		return
	}
	cycle := e.snapshot()
	cycle.Timestamp = stats.Timestamp
	e.coordinator.Present(stats, cycle)
}

func (e *engine) OnFrameRateChangeRequested(fps int) {
	e.controller.SetTarget(fps)
}

func (e *engine) SetApplicationResigning(resigning bool) {
	e.applicationResigning = resigning
}

func (e *engine) SetPresentationSuppressed(suppressed bool) {
	e.presentationSuppressed = suppressed
}

func (e *engine) SetIgnoringInput(ignoring bool) {
	e.ignoringInput = ignoring
}

func (e *engine) SetPaused(paused bool) {
	e.paused = paused
}

// SetRenderer registers the renderer stepped each frame pass.
func (e *engine) SetRenderer(r Renderer) {
	e.renderer = r
}

func (e *engine) DesiredFrameRate() int {
	return e.desiredRate
}

func (e *engine) SetDesiredFrameRate(fps int) {
	if fps > 0 {
		e.desiredRate = fps
	}
}

func (e *engine) ProbeResult() *backend.ProbeResult {
	return e.selector.Result()
}

func (e *engine) Registry() *display.Registry {
	return e.registry
}

func (e *engine) Controller() *pacing.Controller {
	return e.controller
}

func (e *engine) Scheduler() *pacing.Scheduler {
	return e.scheduler
}

func (e *engine) Window() window.Window {
	return e.window
}

// EnableProfiler enables frame report output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables frame report output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Run() {
	e.running = true
	e.scheduler.Create()

	if e.window != nil {
		// Window teardown must happen on the thread pumping events, so the
		// quit signal is observed here rather than closing directly from
		// Quit.
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				e.teardownWindow()
			default:
			}
		})
		e.window.ProcessMessages()
		e.signalQuit()
		// Covers the user closing the window directly: the update callback
		// never saw the quit signal, so tear down here on the same thread.
		e.teardownWindow()
	} else {
		<-e.quitChannel
		e.scheduler.Destroy()
	}

	e.running = false
}

// teardownWindow stops the frame loop, then closes the window. Destroying
// the scheduler first stops the pacing timer and waits out any in-flight
// tick, so nothing can present into a destroyed surface. Must run on the
// thread pumping platform events; safe to call more than once.
func (e *engine) teardownWindow() {
	e.scheduler.Destroy()
	if err := e.window.Close(); err != nil {
		common.Logger().Warn("window close failed", "error", err)
	}
}

// Quit signals the engine to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Release() {
	e.registry.Release()
	e.selector.Release()
}

// Record feeds frame statistics into the profiler. Satisfies the
// presentation coordinator's stats sink; called only for frames that were
// actually presented.
func (e *engine) Record(stats common.FrameStats) {
	if e.profilingEnabled {
		e.prof.Record(stats)
	}
}

// signalQuit closes the quit channel.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// snapshot captures the engine's lifecycle flags for one frame cycle.
// The scheduler stamps the timestamp.
func (e *engine) snapshot() common.Cycle {
	return common.Cycle{
		ApplicationResigning:   e.applicationResigning,
		PresentationSuppressed: e.presentationSuppressed,
		IgnoringInput:          e.ignoringInput,
		Paused:                 e.paused,
	}
}

// repaint is the scheduler's frame pass: housekeep displays, step the
// renderer unless paused, then request presentation.
func (e *engine) repaint(cycle common.Cycle) {
	start := e.clock()

	e.registry.Upkeep()

	if !cycle.Paused && e.renderer != nil {
		if err := e.renderer.StepFrame(cycle); err != nil {
			common.Logger().Warn("frame step failed", "frame", e.frameIndex, "error", err)
		}
	}

	e.OnPresentRequested(common.FrameStats{
		FrameIndex: e.frameIndex,
		CPUTime:    e.clock().Sub(start),
		Latency:    e.clock().Sub(cycle.Timestamp),
		Timestamp:  cycle.Timestamp,
	})
	e.frameIndex++
}

// deliverInput is the default auxiliary input pass: drain the window's key
// buffer once more for targets at the platform maximum. Regular per-cycle
// delivery runs through the display upkeep pass. The deadline is already
// past, so nothing here blocks.
func (e *engine) deliverInput(_ time.Time) {
	if e.window != nil {
		e.window.FlushKeys()
	}
}
