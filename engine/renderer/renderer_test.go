package renderer

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/mastermindon/cadence/common"
	"github.com/mastermindon/cadence/engine/backend"
	"github.com/mastermindon/cadence/engine/display"
)

// erroringSurface is a GPU-shaped surface whose acquire always fails.
type erroringSurface struct {
	acquires int
}

func (s *erroringSurface) Present() error                   { return nil }
func (s *erroringSurface) PrepareAuxiliary() error          { return nil }
func (s *erroringSurface) Recreate() error                  { return nil }
func (s *erroringSurface) AllowsScreenshots() bool          { return false }
func (s *erroringSurface) ReadPixels() (*image.RGBA, error) { return nil, display.ErrNoPixels }
func (s *erroringSurface) Release()                         {}

func (s *erroringSurface) Acquire() (*wgpu.TextureView, error) {
	s.acquires++
	return nil, errors.New("surface lost")
}

func (s *erroringSurface) DepthView() *wgpu.TextureView { return nil }

func TestNewClearRenderer_RequiresDevice(t *testing.T) {
	reg := display.NewRegistry()

	if _, err := NewClearRenderer(nil, reg); err == nil {
		t.Error("NewClearRenderer(nil result) succeeded, want error")
	}
	if _, err := NewClearRenderer(&backend.ProbeResult{}, reg); err == nil {
		t.Error("NewClearRenderer with no device succeeded, want error")
	}
}

func TestClearRenderer_NoPrimaryIsNoop(t *testing.T) {
	r := &ClearRenderer{registry: display.NewRegistry()}

	if err := r.StepFrame(common.Cycle{}); err != nil {
		t.Errorf("StepFrame with no primary returned %v, want nil", err)
	}
}

func TestClearRenderer_SkipsNonGPUSurface(t *testing.T) {
	reg := display.NewRegistry()
	reg.Register(display.NewDisplay("main", display.NewNullSurface(false), display.AsPrimary()))
	r := &ClearRenderer{registry: reg}

	if err := r.StepFrame(common.Cycle{}); err != nil {
		t.Errorf("StepFrame with null surface returned %v, want nil", err)
	}
}

func TestClearRenderer_AcquireFailure(t *testing.T) {
	surface := &erroringSurface{}
	reg := display.NewRegistry()
	reg.Register(display.NewDisplay("main", surface, display.AsPrimary()))
	r := &ClearRenderer{registry: reg}

	err := r.StepFrame(common.Cycle{})
	if err == nil {
		t.Fatal("StepFrame succeeded with failing acquire, want error")
	}
	if !strings.Contains(err.Error(), "acquire") {
		t.Errorf("error = %q, want acquire failure", err)
	}
	if surface.acquires != 1 {
		t.Errorf("Acquire called %d times, want 1", surface.acquires)
	}
}
