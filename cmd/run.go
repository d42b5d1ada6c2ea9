package cmd

import (
	"fmt"

	"github.com/mastermindon/cadence/common"
	"github.com/mastermindon/cadence/engine"
	"github.com/mastermindon/cadence/engine/backend"
	"github.com/mastermindon/cadence/engine/capture"
	"github.com/mastermindon/cadence/engine/config"
	"github.com/mastermindon/cadence/engine/display"
	"github.com/mastermindon/cadence/engine/renderer"
	"github.com/mastermindon/cadence/engine/window"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the paced presentation loop",
	Long: `Open a window, select the rendering backend, and run the frame loop
until the window closes or Escape is pressed. Space toggles pause, P
toggles frame reports, and F12 captures a screenshot of the primary
display when the surface allows it.`,
	RunE: runLoop,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("fps", 0, "Target frame rate (0 = engine's desired rate)")
	runCmd.Flags().Bool("profile", false, "Log periodic frame reports")
}

func runLoop(cmd *cobra.Command, args []string) error {
	configPath, _ := rootCmd.PersistentFlags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if fps, _ := cmd.Flags().GetInt("fps"); fps > 0 {
		cfg.TargetFPS = fps
	}
	profile, _ := cmd.Flags().GetBool("profile")

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithPlatform(window.Platform{}),
		engine.WithBackendPreference(parseBackend(cfg.Backend)),
		engine.WithFallbackSanctioned(cfg.FallbackSanctioned),
		engine.WithProfiling(profile),
		engine.WithProfileInterval(cfg.ProfileInterval.Std()),
	)
	defer eng.Release()

	if err := eng.SelectBackend(); err != nil {
		return fmt.Errorf("backend selection failed: %w", err)
	}

	primary, err := primaryDisplay(eng, win, window.Platform{}.MaximumFramesPerSecond())
	if err != nil {
		return err
	}
	eng.Registry().Register(primary)

	if err := eng.OnGraphicsInitialized(); err != nil {
		return err
	}
	if eng.CurrentBackend().RequiresCommandBuffers() {
		frameRenderer, err := renderer.NewClearRenderer(eng.ProbeResult(), eng.Registry())
		if err != nil {
			return err
		}
		eng.SetRenderer(frameRenderer)
	}
	eng.OnFrameRateChangeRequested(cfg.TargetFPS)

	capturer, err := capture.NewCapturer(cfg.CaptureDir, capture.WithScale(cfg.CaptureScale))
	if err != nil {
		return err
	}

	paused := false
	win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyEsc:
			eng.Quit()
		case common.KeySpace:
			paused = !paused
			eng.SetPaused(paused)
		case common.KeyP:
			profile = !profile
			if profile {
				eng.EnableProfiler()
			} else {
				eng.DisableProfiler()
			}
		case common.KeyF12:
			if path, err := capturer.Save(primary); err != nil {
				common.Logger().Warn("screenshot failed", "error", err)
			} else {
				common.Logger().Info("screenshot queued", "path", path)
			}
		}
	})

	eng.Run()
	return nil
}

// primaryDisplay builds the primary display for the window, backed by a
// wgpu surface on command-buffer backends and a null surface otherwise. The
// window's buffered keys are wired as the display's keyboard handler so
// input is delivered on every repaint cycle, whether or not the auxiliary
// input pass is active.
func primaryDisplay(eng engine.Engine, win window.Window, refresh int) (*display.Display, error) {
	options := []display.DisplayOption{
		display.AsPrimary(),
		display.WithRefreshRate(refresh),
		display.WithKeyboardHandler(win.FlushKeys),
	}

	if !eng.CurrentBackend().RequiresCommandBuffers() {
		return display.NewDisplay("main", display.NewNullSurface(false), options...), nil
	}

	surface, err := window.NewWGPUSurface(eng.ProbeResult(), win,
		window.WithScreenshotsAllowed(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create primary surface: %w", err)
	}
	return display.NewDisplay("main", surface, options...), nil
}

func parseBackend(name string) backend.RenderingBackend {
	switch name {
	case "null":
		return backend.BackendNull
	default:
		return backend.BackendWGPU
	}
}
