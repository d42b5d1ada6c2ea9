package present

import (
	"errors"
	"image"
	"testing"

	"github.com/mastermindon/cadence/common"
	"github.com/mastermindon/cadence/engine/backend"
	"github.com/mastermindon/cadence/engine/display"
)

type fixedBackend backend.RenderingBackend

func (b fixedBackend) Current() backend.RenderingBackend { return backend.RenderingBackend(b) }

// orderedSurface appends a label to a shared call log on each operation.
type orderedSurface struct {
	label string
	log   *[]string
	err   error
}

func (s *orderedSurface) Present() error {
	*s.log = append(*s.log, "present:"+s.label)
	return s.err
}
func (s *orderedSurface) PrepareAuxiliary() error {
	*s.log = append(*s.log, "prepare:"+s.label)
	return s.err
}
func (s *orderedSurface) Recreate() error         { return nil }
func (s *orderedSurface) AllowsScreenshots() bool { return false }
func (s *orderedSurface) Release()                {}
func (s *orderedSurface) ReadPixels() (*image.RGBA, error) {
	return nil, display.ErrNoPixels
}

type countingRecorder struct {
	records []common.FrameStats
}

func (r *countingRecorder) Record(stats common.FrameStats) {
	r.records = append(r.records, stats)
}

func newTestRegistry(log *[]string, auxLabels ...string) *display.Registry {
	reg := display.NewRegistry()
	reg.Register(display.NewDisplay("main", &orderedSurface{label: "main", log: log}, display.AsPrimary()))
	for _, label := range auxLabels {
		reg.Register(display.NewDisplay(label, &orderedSurface{label: label, log: log}))
	}
	return reg
}

func TestPresentNoOpWhileResigning(t *testing.T) {
	var log []string
	rec := &countingRecorder{}
	c := NewCoordinator(fixedBackend(backend.BackendWGPU), newTestRegistry(&log, "aux"), rec)

	c.Present(common.FrameStats{FrameIndex: 1}, common.Cycle{ApplicationResigning: true})

	if len(log) != 0 {
		t.Errorf("backend calls while resigning = %v, want none", log)
	}
	if len(rec.records) != 0 {
		t.Errorf("statistics recorded while resigning = %d, want 0", len(rec.records))
	}
}

func TestPresentNoOpWhileSuppressed(t *testing.T) {
	var log []string
	rec := &countingRecorder{}
	c := NewCoordinator(fixedBackend(backend.BackendWGPU), newTestRegistry(&log, "aux"), rec)

	c.Present(common.FrameStats{}, common.Cycle{PresentationSuppressed: true})

	if len(log) != 0 {
		t.Errorf("backend calls while suppressed = %v, want none", log)
	}
	if len(rec.records) != 0 {
		t.Errorf("statistics recorded while suppressed = %d, want 0", len(rec.records))
	}
}

func TestCommandBufferBackendPresentsPrimaryThenPreparesAuxiliaries(t *testing.T) {
	var log []string
	rec := &countingRecorder{}
	c := NewCoordinator(fixedBackend(backend.BackendWGPU), newTestRegistry(&log, "aux-1", "aux-2"), rec)

	c.Present(common.FrameStats{FrameIndex: 7}, common.Cycle{})

	want := []string{"present:main", "prepare:aux-1", "prepare:aux-2"}
	if len(log) != len(want) {
		t.Fatalf("backend calls = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("backend calls = %v, want %v", log, want)
		}
	}
	if len(rec.records) != 1 || rec.records[0].FrameIndex != 7 {
		t.Errorf("records = %v, want one record for frame 7", rec.records)
	}
}

func TestOtherBackendUsesUniformFanOut(t *testing.T) {
	var log []string
	rec := &countingRecorder{}
	c := NewCoordinator(fixedBackend(backend.BackendNull), newTestRegistry(&log, "aux-1"), rec)

	c.Present(common.FrameStats{}, common.Cycle{})

	want := []string{"present:main", "present:aux-1"}
	if len(log) != len(want) {
		t.Fatalf("backend calls = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("backend calls = %v, want %v", log, want)
		}
	}
}

func TestPresentFailureDoesNotAbortPassOrStats(t *testing.T) {
	var log []string
	rec := &countingRecorder{}
	reg := display.NewRegistry()
	reg.Register(display.NewDisplay("main",
		&orderedSurface{label: "main", log: &log, err: errors.New("lost")}, display.AsPrimary()))
	reg.Register(display.NewDisplay("aux",
		&orderedSurface{label: "aux", log: &log}))
	c := NewCoordinator(fixedBackend(backend.BackendWGPU), reg, rec)

	c.Present(common.FrameStats{}, common.Cycle{})

	if len(log) != 2 {
		t.Errorf("backend calls = %v, want the auxiliary attempted after a primary failure", log)
	}
	if len(rec.records) != 1 {
		t.Errorf("records = %d, want statistics recorded despite the present failure", len(rec.records))
	}
}

func TestPresentWithoutPrimary(t *testing.T) {
	var log []string
	reg := display.NewRegistry()
	reg.Register(display.NewDisplay("aux", &orderedSurface{label: "aux", log: &log}))
	c := NewCoordinator(fixedBackend(backend.BackendWGPU), reg, &countingRecorder{})

	c.Present(common.FrameStats{}, common.Cycle{})

	if len(log) != 1 || log[0] != "prepare:aux" {
		t.Errorf("backend calls = %v, want only the auxiliary prepare", log)
	}
}

func TestPresentWithNilRecorder(t *testing.T) {
	var log []string
	c := NewCoordinator(fixedBackend(backend.BackendNull), newTestRegistry(&log), nil)

	// Must not panic.
	c.Present(common.FrameStats{}, common.Cycle{})
}
