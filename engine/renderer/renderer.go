// Package renderer provides the frame renderer stepped by the engine's
// pacing loop. The built-in renderer records a minimal clear pass into the
// primary display's drawable; applications with real scene content supply
// their own implementation of the engine's Renderer interface instead.
package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mastermindon/cadence/common"
	"github.com/mastermindon/cadence/engine/backend"
	"github.com/mastermindon/cadence/engine/display"
)

// frameSurface is the subset of the window's GPU surface the renderer
// draws through. Surfaces that cannot provide a drawable (the null
// surface) simply don't satisfy it and are skipped.
type frameSurface interface {
	Acquire() (*wgpu.TextureView, error)
	DepthView() *wgpu.TextureView
}

// ClearRenderer clears the primary display's drawable each frame. It is
// the smallest renderer that exercises the full frame lifecycle: acquire,
// record, submit.
type ClearRenderer struct {
	device   *wgpu.Device
	queue    *wgpu.Queue
	registry *display.Registry

	clearColor wgpu.Color
}

// ClearRendererOption is a functional option for configuring a
// ClearRenderer.
type ClearRendererOption func(*ClearRenderer)

// WithClearColor sets the color the frame is cleared to.
func WithClearColor(color wgpu.Color) ClearRendererOption {
	return func(r *ClearRenderer) {
		r.clearColor = color
	}
}

// NewClearRenderer creates a ClearRenderer drawing into the registry's
// primary display.
//
// Parameters:
//   - result: the committed probe result holding the device and queue
//   - registry: the display registry whose primary display is drawn
//   - options: functional options to configure the renderer
//
// Returns:
//   - *ClearRenderer: the configured renderer
//   - error: error if the probe result carries no device
func NewClearRenderer(result *backend.ProbeResult, registry *display.Registry, options ...ClearRendererOption) (*ClearRenderer, error) {
	if result == nil || result.Device == nil {
		return nil, fmt.Errorf("renderer: no GPU device available")
	}

	r := &ClearRenderer{
		device:     result.Device,
		queue:      result.Queue,
		registry:   registry,
		clearColor: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// StepFrame acquires the primary display's drawable and submits a clear
// pass for it. Displays without a GPU-backed surface are skipped.
func (r *ClearRenderer) StepFrame(cycle common.Cycle) error {
	primary := r.registry.Primary()
	if primary == nil {
		return nil
	}
	surf, ok := primary.Surface().(frameSurface)
	if !ok {
		return nil
	}

	view, err := surf.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire drawable: %v", err)
	}

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %v", err)
	}

	descriptor := &wgpu.RenderPassDescriptor{
		Label: "Frame Clear Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: r.clearColor,
			},
		},
	}
	if depth := surf.DepthView(); depth != nil {
		descriptor.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depth,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard, // Depth not needed after the pass
			DepthClearValue: 1.0,
		}
	}

	pass := encoder.BeginRenderPass(descriptor)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("failed to finish command buffer: %v", err)
	}
	r.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	return nil
}
