package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mastermindon/cadence/common"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "5s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// WindowConfig describes the primary window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Config carries the engine's startup configuration.
type Config struct {
	// TargetFPS is the requested frame rate. Zero or negative means "use
	// the engine's desired rate".
	TargetFPS int `yaml:"target_fps"`

	// Backend names the preferred rendering backend: "wgpu" or "null".
	Backend string `yaml:"backend"`

	// FallbackSanctioned allows the engine to fall back to the null
	// backend when the wgpu probe fails, instead of treating the failure
	// as fatal.
	FallbackSanctioned bool `yaml:"fallback_sanctioned"`

	Window WindowConfig `yaml:"window"`

	// ProfileInterval is the frame-report window, e.g. "5s".
	ProfileInterval Duration `yaml:"profile_interval"`

	// CaptureDir is where screenshots are written.
	CaptureDir string `yaml:"capture_dir"`

	// CaptureScale scales captured screenshots; 1.0 keeps them as-is.
	CaptureScale float64 `yaml:"capture_scale"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		TargetFPS: 0,
		Backend:   "wgpu",
		Window: WindowConfig{
			Title:  "cadence",
			Width:  1280,
			Height: 720,
		},
		ProfileInterval: Duration(5 * time.Second),
		CaptureDir:      "captures",
		CaptureScale:    1.0,
	}
}

// Load reads a YAML configuration file and fills unset fields with
// defaults. A missing file is not an error; the defaults are returned.
//
// Parameters:
//   - path: the configuration file to read
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file exists but could not be read or parsed
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %v", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize fills zero-valued fields with defaults touched up against
// Default(). TargetFPS is deliberately left alone: zero is meaningful
// there.
func (c *Config) normalize() {
	def := Default()
	c.Backend = common.Coalesce(c.Backend, def.Backend)
	c.Window.Title = common.Coalesce(c.Window.Title, def.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, def.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, def.Window.Height)
	c.ProfileInterval = common.Coalesce(c.ProfileInterval, def.ProfileInterval)
	c.CaptureDir = common.Coalesce(c.CaptureDir, def.CaptureDir)
	c.CaptureScale = common.Coalesce(c.CaptureScale, def.CaptureScale)
}
