// Package window provides the GLFW-backed windowing layer: one window per
// display, platform surface descriptors for WebGPU, keyboard buffering, and
// the platform queries the pacing layer needs.
package window

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// KeyEvent is one buffered keyboard event.
type KeyEvent struct {
	// KeyCode is the platform virtual key code.
	KeyCode uint32

	// Down is true for press/repeat, false for release.
	Down bool
}

// Window wraps one platform window. Keyboard input arriving from the
// platform event loop is buffered and delivered in batches from the repaint
// cycle's display upkeep pass, so the engine sees input at frame boundaries
// rather than mid-cycle.
type Window interface {
	// SetKeyDownCallback sets the callback receiving buffered key presses
	// when FlushKeys runs.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback receiving buffered key releases
	// when FlushKeys runs.
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetResizeCallback sets the function called when the framebuffer is
	// resized, receiving pixel dimensions.
	SetResizeCallback(callback func(width, height int))

	// FlushKeys delivers all buffered keyboard events to the registered
	// callbacks, in arrival order, and clears the buffer.
	FlushKeys()

	// SurfaceDescriptor returns a platform-appropriate wgpu surface
	// descriptor for this window, or nil if the window is not initialized.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true while the window is active.
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	Close() error

	// ProcessMessages runs the platform message loop on the calling
	// thread, invoking the update callback each iteration. Blocks until
	// the window closes.
	ProcessMessages()

	// SetUpdateCallback sets the function called each message loop
	// iteration.
	SetUpdateCallback(callback func())

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title  string
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// pendingKeys buffers keyboard events between FlushKeys calls. Filled
	// from the platform event loop and drained from the pacing thread, so
	// both sides go through keyMu.
	keyMu       sync.Mutex
	pendingKeys []KeyEvent

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
}

var _ Window = &engineWindow{}

// WindowBuilderOption is a functional option for configuring an
// engineWindow. Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial window dimensions in pixels.
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
		w.height = height
	}
}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:  "Cadence",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %v", err)
	}
	return w, nil
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

// bufferKey appends one keyboard event to the pending buffer. Called from
// the platform key callback.
func (w *engineWindow) bufferKey(ev KeyEvent) {
	w.keyMu.Lock()
	w.pendingKeys = append(w.pendingKeys, ev)
	w.keyMu.Unlock()
}

func (w *engineWindow) FlushKeys() {
	// Swap the buffer out under the lock, then deliver outside it so key
	// callbacks cannot deadlock against the platform event loop.
	w.keyMu.Lock()
	pending := w.pendingKeys
	w.pendingKeys = nil
	w.keyMu.Unlock()

	for _, ev := range pending {
		if ev.Down {
			if w.onKeyDown != nil {
				w.onKeyDown(ev.KeyCode)
			}
		} else if w.onKeyUp != nil {
			w.onKeyUp(ev.KeyCode)
		}
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
