package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cadence.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}

	def := Default()
	if cfg.Backend != def.Backend {
		t.Errorf("Backend = %q, want %q", cfg.Backend, def.Backend)
	}
	if cfg.Window.Width != def.Window.Width || cfg.Window.Height != def.Window.Height {
		t.Errorf("Window = %dx%d, want %dx%d",
			cfg.Window.Width, cfg.Window.Height, def.Window.Width, def.Window.Height)
	}
	if cfg.ProfileInterval != def.ProfileInterval {
		t.Errorf("ProfileInterval = %v, want %v", cfg.ProfileInterval, def.ProfileInterval)
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
target_fps: 90
backend: "null"
fallback_sanctioned: true
window:
  title: demo
  width: 800
  height: 600
profile_interval: 2s
capture_dir: shots
capture_scale: 0.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TargetFPS != 90 {
		t.Errorf("TargetFPS = %d, want 90", cfg.TargetFPS)
	}
	if cfg.Backend != "null" {
		t.Errorf("Backend = %q, want null", cfg.Backend)
	}
	if !cfg.FallbackSanctioned {
		t.Error("FallbackSanctioned = false, want true")
	}
	if cfg.Window.Title != "demo" || cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("Window = %+v, want demo 800x600", cfg.Window)
	}
	if cfg.ProfileInterval.Std() != 2*time.Second {
		t.Errorf("ProfileInterval = %v, want 2s", cfg.ProfileInterval.Std())
	}
	if cfg.CaptureDir != "shots" {
		t.Errorf("CaptureDir = %q, want shots", cfg.CaptureDir)
	}
	if cfg.CaptureScale != 0.5 {
		t.Errorf("CaptureScale = %v, want 0.5", cfg.CaptureScale)
	}
}

func TestLoad_PartialFileFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
target_fps: 120
window:
  width: 1920
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TargetFPS != 120 {
		t.Errorf("TargetFPS = %d, want 120", cfg.TargetFPS)
	}
	if cfg.Window.Width != 1920 {
		t.Errorf("Window.Width = %d, want 1920", cfg.Window.Width)
	}

	def := Default()
	if cfg.Backend != def.Backend {
		t.Errorf("Backend = %q, want default %q", cfg.Backend, def.Backend)
	}
	if cfg.Window.Height != def.Window.Height {
		t.Errorf("Window.Height = %d, want default %d", cfg.Window.Height, def.Window.Height)
	}
	if cfg.CaptureScale != def.CaptureScale {
		t.Errorf("CaptureScale = %v, want default %v", cfg.CaptureScale, def.CaptureScale)
	}
}

func TestLoad_ZeroTargetFPSStaysZero(t *testing.T) {
	path := writeConfig(t, "target_fps: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TargetFPS != 0 {
		t.Errorf("TargetFPS = %d, want 0", cfg.TargetFPS)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "window: [not, a, map]\n")

	if _, err := Load(path); err == nil {
		t.Error("Load succeeded on invalid config, want error")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "profile_interval: banana\n")

	if _, err := Load(path); err == nil {
		t.Error("Load succeeded on invalid duration, want error")
	}
}
