package capture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/mastermindon/cadence/engine/display"
)

type fakeSurface struct {
	allow  bool
	img    *image.RGBA
	reads  int
	pixErr error
}

func (s *fakeSurface) Present() error          { return nil }
func (s *fakeSurface) PrepareAuxiliary() error { return nil }
func (s *fakeSurface) Recreate() error         { return nil }
func (s *fakeSurface) AllowsScreenshots() bool { return s.allow }
func (s *fakeSurface) Release()                {}

func (s *fakeSurface) ReadPixels() (*image.RGBA, error) {
	s.reads++
	if s.pixErr != nil {
		return nil, s.pixErr
	}
	return s.img, nil
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestCapturer_GrabDisallowed(t *testing.T) {
	c, err := NewCapturer(t.TempDir())
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}

	surface := &fakeSurface{allow: false, img: testImage(4, 4)}
	d := display.NewDisplay("main", surface)

	if _, err := c.Grab(d); !errors.Is(err, ErrScreenshotsDisallowed) {
		t.Errorf("Grab error = %v, want ErrScreenshotsDisallowed", err)
	}
	if surface.reads != 0 {
		t.Errorf("ReadPixels called %d times on disallowed surface, want 0", surface.reads)
	}
}

func TestCapturer_GrabUnscaled(t *testing.T) {
	c, err := NewCapturer(t.TempDir())
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}

	src := testImage(8, 6)
	d := display.NewDisplay("main", &fakeSurface{allow: true, img: src})

	img, err := c.Grab(d)
	if err != nil {
		t.Fatalf("Grab failed: %v", err)
	}
	if img != src {
		t.Error("unscaled Grab should return the surface image unchanged")
	}
}

func TestCapturer_GrabScaled(t *testing.T) {
	c, err := NewCapturer(t.TempDir(), WithScale(0.5))
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}

	d := display.NewDisplay("main", &fakeSurface{allow: true, img: testImage(8, 6)})

	img, err := c.Grab(d)
	if err != nil {
		t.Fatalf("Grab failed: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 4 || got.Dy() != 3 {
		t.Errorf("scaled bounds = %dx%d, want 4x3", got.Dx(), got.Dy())
	}
}

func TestCapturer_GrabReadError(t *testing.T) {
	c, err := NewCapturer(t.TempDir())
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}

	d := display.NewDisplay("main", &fakeSurface{allow: true, pixErr: display.ErrNoPixels})

	if _, err := c.Grab(d); !errors.Is(err, display.ErrNoPixels) {
		t.Errorf("Grab error = %v, want wrapped ErrNoPixels", err)
	}
}

func TestCapturer_SaveWritesFile(t *testing.T) {
	dir := t.TempDir()
	stamp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	c, err := NewCapturer(dir, WithClock(func() time.Time { return stamp }))
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}

	d := display.NewDisplay("main", &fakeSurface{allow: true, img: testImage(8, 6)})

	path, err := c.Save(d)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The encode runs on the worker pool; poll for the file.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("screenshot %s never appeared", path)
		}
		time.Sleep(10 * time.Millisecond)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open screenshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode screenshot: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 8 || got.Dy() != 6 {
		t.Errorf("decoded bounds = %dx%d, want 8x6", got.Dx(), got.Dy())
	}
}

func TestCapturer_SaveDisallowed(t *testing.T) {
	c, err := NewCapturer(t.TempDir())
	if err != nil {
		t.Fatalf("NewCapturer failed: %v", err)
	}

	d := display.NewDisplay("main", &fakeSurface{allow: false})

	if _, err := c.Save(d); !errors.Is(err, ErrScreenshotsDisallowed) {
		t.Errorf("Save error = %v, want ErrScreenshotsDisallowed", err)
	}
}
