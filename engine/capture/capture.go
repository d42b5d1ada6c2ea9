package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/mastermindon/cadence/common"
	"github.com/mastermindon/cadence/engine/display"
	xdraw "golang.org/x/image/draw"
)

// ErrScreenshotsDisallowed is returned when a capture is requested from a
// display whose surface does not permit pixel readback.
var ErrScreenshotsDisallowed = errors.New("capture: screenshots are not allowed on this display")

// Capturer grabs frames from displays and writes them to disk as PNG.
// Encoding and file I/O run on a worker pool so a capture never stalls
// the frame loop.
type Capturer interface {
	// Grab reads the display's current pixels, scaled by the configured
	// factor.
	Grab(d *display.Display) (*image.RGBA, error)

	// Save grabs the display's pixels and writes them asynchronously to
	// the capture directory. The returned path is where the file will
	// appear once the encode completes. Idle encode workers wind down on
	// their own after the pool's idle timeout.
	Save(d *display.Display) (string, error)
}

type capturer struct {
	dir   string
	scale float64
	pool  worker.DynamicWorkerPool

	taskID int
	clock  func() time.Time
}

var _ Capturer = &capturer{}

// CapturerOption is a functional option for configuring a Capturer.
type CapturerOption func(*capturer)

// WithScale sets the output scale factor. Values at or below zero are
// ignored.
func WithScale(scale float64) CapturerOption {
	return func(c *capturer) {
		if scale > 0 {
			c.scale = scale
		}
	}
}

// WithClock overrides the time source used for file names.
func WithClock(clock func() time.Time) CapturerOption {
	return func(c *capturer) {
		c.clock = clock
	}
}

// NewCapturer creates a Capturer writing into dir.
//
// Parameters:
//   - dir: the directory screenshots are written to; created if absent
//   - options: functional options to configure the capturer
//
// Returns:
//   - Capturer: the configured capturer
//   - error: error if the capture directory could not be created
func NewCapturer(dir string, options ...CapturerOption) (Capturer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory %s: %v", dir, err)
	}

	c := &capturer{
		dir:   dir,
		scale: 1.0,
		pool:  worker.NewDynamicWorkerPool(2, 16, 5*time.Second),
		clock: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *capturer) Grab(d *display.Display) (*image.RGBA, error) {
	surface := d.Surface()
	if surface == nil || !surface.AllowsScreenshots() {
		return nil, ErrScreenshotsDisallowed
	}

	img, err := surface.ReadPixels()
	if err != nil {
		return nil, fmt.Errorf("failed to read pixels from %s: %w", d.Name(), err)
	}
	if c.scale == 1.0 {
		return img, nil
	}

	bounds := img.Bounds()
	scaled := image.NewRGBA(image.Rect(0, 0,
		int(float64(bounds.Dx())*c.scale),
		int(float64(bounds.Dy())*c.scale)))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Src, nil)
	return scaled, nil
}

func (c *capturer) Save(d *display.Display) (string, error) {
	img, err := c.Grab(d)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s.png", d.Name(), c.clock().Format("20060102-150405.000"))
	path := filepath.Join(c.dir, name)

	c.taskID++
	c.pool.SubmitTask(worker.Task{
		ID: c.taskID,
		Do: func() (any, error) {
			if err := encodePNG(path, img); err != nil {
				common.Logger().Warn("screenshot encode failed", "path", path, "error", err)
				return nil, err
			}
			common.Logger().Info("screenshot written", "path", path)
			return path, nil
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to queue screenshot encode: %v", err)
	}
	return path, nil
}

// encodePNG writes via a temp file and renames, so the target path never
// holds a partial image.
func encodePNG(path string, img *image.RGBA) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
