package backend

import (
	"errors"
	"testing"
)

func okProbe(result *ProbeResult) Probe {
	return func() (*ProbeResult, error) {
		return result, nil
	}
}

func failProbe(err error) Probe {
	return func() (*ProbeResult, error) {
		return nil, err
	}
}

func TestSelectCommitsPreferredOnProbeSuccess(t *testing.T) {
	s := NewSelector(WithProbe(okProbe(&ProbeResult{})))

	b, err := s.Select()
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if b != BackendWGPU {
		t.Errorf("Select() = %v, want %v", b, BackendWGPU)
	}
	if s.Current() != BackendWGPU {
		t.Errorf("Current() = %v, want %v", s.Current(), BackendWGPU)
	}
	if s.Result() == nil {
		t.Error("Result() should hold the probe result after a successful probe")
	}
}

func TestSelectFailureIsFatalWhenFallbackNotSanctioned(t *testing.T) {
	probeErr := errors.New("no device")
	s := NewSelector(WithProbe(failProbe(probeErr)))

	_, err := s.Select()
	if err == nil {
		t.Fatal("Select() should fail when the probe fails and fallback is not sanctioned")
	}
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("Select() error = %v, want errors.Is(err, ErrProbeFailed)", err)
	}
	if !errors.Is(err, probeErr) {
		t.Errorf("Select() error = %v, should wrap the probe error", err)
	}
}

func TestSelectFallsBackToNullWhenSanctioned(t *testing.T) {
	s := NewSelector(
		WithProbe(failProbe(errors.New("no device"))),
		WithFallbackSanctioned(true),
	)

	b, err := s.Select()
	if err != nil {
		t.Fatalf("Select() error = %v, want fallback instead", err)
	}
	if b != BackendNull {
		t.Errorf("Select() = %v, want %v", b, BackendNull)
	}
	if s.Result() != nil {
		t.Error("Result() should be nil after falling back")
	}
}

func TestSelectTwicePanics(t *testing.T) {
	s := NewSelector(WithProbe(okProbe(&ProbeResult{})))
	if _, err := s.Select(); err != nil {
		t.Fatalf("first Select() error = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("second Select() should panic")
		}
	}()
	_, _ = s.Select()
}

func TestCurrentBeforeSelectPanics(t *testing.T) {
	s := NewSelector(WithProbe(okProbe(&ProbeResult{})))

	defer func() {
		if recover() == nil {
			t.Error("Current() before Select() should panic")
		}
	}()
	_ = s.Current()
}

func TestSelectedReportsLifecycleState(t *testing.T) {
	s := NewSelector(WithProbe(okProbe(&ProbeResult{})))
	if s.Selected() {
		t.Error("Selected() = true before Select()")
	}
	if _, err := s.Select(); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if !s.Selected() {
		t.Error("Selected() = false after Select()")
	}
}

func TestNullPreferenceSkipsProbe(t *testing.T) {
	probed := false
	s := NewSelector(
		WithPreferred(BackendNull),
		WithProbe(func() (*ProbeResult, error) {
			probed = true
			return nil, errors.New("should not run")
		}),
	)

	b, err := s.Select()
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if b != BackendNull {
		t.Errorf("Select() = %v, want %v", b, BackendNull)
	}
	if probed {
		t.Error("probe should not run when the preferred backend needs none")
	}
}

func TestProbeFailurePanicFreeSecondState(t *testing.T) {
	// A failed, non-sanctioned Select does not commit a backend; the
	// selector stays unselected so startup can surface the fatal error.
	s := NewSelector(WithProbe(failProbe(errors.New("no device"))))
	if _, err := s.Select(); err == nil {
		t.Fatal("Select() should fail")
	}
	if s.Selected() {
		t.Error("Selected() = true after a failed Select()")
	}
}

func TestRequiresCommandBuffers(t *testing.T) {
	if !BackendWGPU.RequiresCommandBuffers() {
		t.Error("BackendWGPU.RequiresCommandBuffers() = false, want true")
	}
	if BackendNull.RequiresCommandBuffers() {
		t.Error("BackendNull.RequiresCommandBuffers() = true, want false")
	}
}

func TestBackendString(t *testing.T) {
	if got := BackendWGPU.String(); got != "wgpu" {
		t.Errorf("BackendWGPU.String() = %q, want %q", got, "wgpu")
	}
	if got := BackendNull.String(); got != "null" {
		t.Errorf("BackendNull.String() = %q, want %q", got, "null")
	}
	if got := BackendUnknown.String(); got != "unknown" {
		t.Errorf("BackendUnknown.String() = %q, want %q", got, "unknown")
	}
}
