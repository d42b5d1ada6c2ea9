package window

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mastermindon/cadence/common"
	"github.com/mastermindon/cadence/engine/backend"
	"github.com/mastermindon/cadence/engine/display"
)

// wgpuSurface is the WebGPU-backed display.Surface. It owns the window's
// wgpu surface, its depth attachment, and a reference to the shared device
// and queue secured by the backend probe.
type wgpuSurface struct {
	win Window

	device  *wgpu.Device
	adapter *wgpu.Adapter
	queue   *wgpu.Queue
	surface *wgpu.Surface

	format      wgpu.TextureFormat
	presentMode wgpu.PresentMode

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	// Frame state: the acquired swapchain texture between acquire and
	// present.
	current     *wgpu.Texture
	currentView *wgpu.TextureView

	width  int
	height int

	allowScreenshots bool
}

var _ display.Surface = &wgpuSurface{}

// WGPUSurfaceOption is a functional option for configuring a wgpuSurface.
type WGPUSurfaceOption func(*wgpuSurface)

// WithPresentMode sets the wgpu present mode. Defaults to Fifo (vsync),
// since the pacing timer already controls the frame cadence.
func WithPresentMode(mode wgpu.PresentMode) WGPUSurfaceOption {
	return func(s *wgpuSurface) {
		s.presentMode = mode
	}
}

// WithScreenshotsAllowed controls whether pixel capture from this surface
// is permitted. Defaults to false.
func WithScreenshotsAllowed(ok bool) WGPUSurfaceOption {
	return func(s *wgpuSurface) {
		s.allowScreenshots = ok
	}
}

// NewWGPUSurface creates the presentable surface for one window using the
// GPU handles secured by the backend probe.
//
// Parameters:
//   - result: the committed probe result holding instance/adapter/device
//   - win: the window the surface presents into
//   - options: functional options to configure the surface
//
// Returns:
//   - display.Surface: the configured surface
//   - error: error if the wgpu surface could not be created or configured
func NewWGPUSurface(result *backend.ProbeResult, win Window, options ...WGPUSurfaceOption) (display.Surface, error) {
	desc := win.SurfaceDescriptor()
	if desc == nil {
		return nil, fmt.Errorf("window has no surface descriptor")
	}

	s := &wgpuSurface{
		win:         win,
		device:      result.Device,
		adapter:     result.Adapter,
		queue:       result.Queue,
		surface:     result.Instance.CreateSurface(desc),
		presentMode: wgpu.PresentModeFifo,
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.Recreate(); err != nil {
		s.surface.Release()
		return nil, err
	}
	return s, nil
}

// Recreate (re)configures the surface and rebuilds the depth attachment
// for the window's current framebuffer size.
func (s *wgpuSurface) Recreate() error {
	width, height := s.win.Width(), s.win.Height()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window has zero-sized framebuffer (%dx%d)", width, height)
	}

	capabilities := s.surface.GetCapabilities(s.adapter)
	if len(capabilities.Formats) == 0 {
		return fmt.Errorf("surface reports no supported formats")
	}
	s.format = capabilities.Formats[0]

	usage := wgpu.TextureUsageRenderAttachment
	if s.allowScreenshots {
		usage |= wgpu.TextureUsageCopySrc
	}
	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       usage,
		Format:      s.format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: s.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if s.depthView != nil {
		s.depthView.Release()
		s.depthView = nil
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
		s.depthTexture = nil
	}
	depth, err := s.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %v", err)
	}
	view, err := depth.CreateView(nil)
	if err != nil {
		depth.Release()
		return fmt.Errorf("failed to create depth view: %v", err)
	}
	s.depthTexture = depth
	s.depthView = view
	s.width = width
	s.height = height

	common.Logger().Debug("surface configured",
		"width", width, "height", height, "format", s.format)
	return nil
}

// Acquire returns a view of the current swapchain texture, acquiring one
// if none is held. The renderer draws into this view; Present releases it.
func (s *wgpuSurface) Acquire() (*wgpu.TextureView, error) {
	if s.current == nil {
		tex, err := s.surface.GetCurrentTexture()
		if err != nil {
			return nil, err
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return nil, err
		}
		s.current = tex
		s.currentView = view
	}
	return s.currentView, nil
}

// DepthView returns the surface's depth attachment view.
func (s *wgpuSurface) DepthView() *wgpu.TextureView {
	return s.depthView
}

// Present presents the acquired surface image and releases the local
// references. Acquires a texture first when none is held, so a present
// with no rendered frame still flips cleanly.
func (s *wgpuSurface) Present() error {
	if s.current == nil {
		if _, err := s.Acquire(); err != nil {
			return fmt.Errorf("failed to acquire surface texture: %v", err)
		}
	}

	s.surface.Present()
	s.releaseFrame()
	return nil
}

// PrepareAuxiliary runs the non-primary present step: acquire this
// surface's drawable, record and submit its own command buffer, then
// present. Auxiliary displays need the separate command buffer because
// their drawable acquisition is independent of the primary's frame timing.
func (s *wgpuSurface) PrepareAuxiliary() error {
	view, err := s.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire auxiliary drawable: %v", err)
	}

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		s.releaseFrame()
		return fmt.Errorf("failed to create auxiliary command encoder: %v", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Auxiliary Present Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		s.releaseFrame()
		return fmt.Errorf("failed to finish auxiliary command buffer: %v", err)
	}
	s.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	s.surface.Present()
	s.releaseFrame()
	return nil
}

func (s *wgpuSurface) AllowsScreenshots() bool {
	return s.allowScreenshots
}

// ReadPixels copies the acquired swapchain texture to a mappable buffer
// and returns its contents. A frame must be in flight (acquired but not
// yet presented); otherwise there is nothing to read.
func (s *wgpuSurface) ReadPixels() (*image.RGBA, error) {
	if !s.allowScreenshots {
		return nil, fmt.Errorf("display: screenshots are not allowed on this surface")
	}
	if s.current == nil {
		return nil, display.ErrNoPixels
	}

	// Buffer rows must be aligned to 256 bytes for CopyTextureToBuffer.
	const rowAlign = 256
	bytesPerRow := uint32(s.width * 4)
	paddedBytesPerRow := (bytesPerRow + rowAlign - 1) / rowAlign * rowAlign
	size := uint64(paddedBytesPerRow) * uint64(s.height)

	buf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Screenshot Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readback buffer: %v", err)
	}
	defer buf.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create readback encoder: %v", err)
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  s.current,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buf,
			Layout: wgpu.TextureDataLayout{
				BytesPerRow:  paddedBytesPerRow,
				RowsPerImage: uint32(s.height),
			},
		},
		&wgpu.Extent3D{
			Width:              uint32(s.width),
			Height:             uint32(s.height),
			DepthOrArrayLayers: 1,
		},
	)
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return nil, fmt.Errorf("failed to finish readback command buffer: %v", err)
	}
	s.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	var mapErr error
	done := false
	buf.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("readback buffer map failed: %v", status)
		}
		done = true
	})
	for !done {
		s.device.Poll(true, nil)
	}
	if mapErr != nil {
		return nil, mapErr
	}
	defer buf.Unmap()

	data := buf.GetMappedRange(0, uint(size))
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		src := data[uint32(y)*paddedBytesPerRow : uint32(y)*paddedBytesPerRow+bytesPerRow]
		dst := img.Pix[y*img.Stride : y*img.Stride+int(bytesPerRow)]
		copy(dst, src)
	}
	return img, nil
}

// Release frees the surface's resources. The shared device is owned by the
// backend selector and is not released here.
func (s *wgpuSurface) Release() {
	s.releaseFrame()
	if s.depthView != nil {
		s.depthView.Release()
		s.depthView = nil
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
		s.depthTexture = nil
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
}

func (s *wgpuSurface) releaseFrame() {
	if s.currentView != nil {
		s.currentView.Release()
		s.currentView = nil
	}
	if s.current != nil {
		s.current.Release()
		s.current = nil
	}
}
