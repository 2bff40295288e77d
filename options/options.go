// Package options loads the effect configuration from YAML over embedded
// defaults.
package options

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/richinsley/goliquidglass/shader"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable of the effect and its host.
type Config struct {
	Variant   string          `yaml:"variant"`
	Window    WindowConfig    `yaml:"window"`
	Gate      GateConfig      `yaml:"gate"`
	Surface   SurfaceConfig   `yaml:"surface"`
	Smoothing SmoothingConfig `yaml:"smoothing"`
	Trace     TraceConfig     `yaml:"trace"`
	Record    RecordConfig    `yaml:"record"`
}

// WindowConfig describes the GLFW window standing in for the container.
type WindowConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Title       string `yaml:"title"`
	Transparent bool   `yaml:"transparent"`
	VSync       bool   `yaml:"vsync"`
	// Fallback is the background shown while no effect is running, as
	// [r, g, b] in 0..1.
	Fallback []float32 `yaml:"fallback"`
}

// GateConfig controls when the effect refuses to start.
type GateConfig struct {
	ReducedMotion    bool    `yaml:"reduced_motion"`     // host prefers reduced motion
	MinViewportWidth float64 `yaml:"min_viewport_width"` // narrower viewports get no effect
}

// SurfaceConfig controls the backing store.
type SurfaceConfig struct {
	MaxPixelRatio   float64 `yaml:"max_pixel_ratio"`
	PauseWhenHidden bool    `yaml:"pause_when_hidden"`
}

// SmoothingConfig overrides the variant's smoothing factors; zero keeps the
// variant default.
type SmoothingConfig struct {
	PositionAlpha  float32 `yaml:"position_alpha"`
	InfluenceAlpha float32 `yaml:"influence_alpha"`
}

// TraceConfig enables the per-frame CSV trace.
type TraceConfig struct {
	Path  string `yaml:"path"`  // empty disables tracing
	Flush int    `yaml:"flush"` // frames buffered between writes
}

// RecordConfig drives offline capture.
type RecordConfig struct {
	Output     string  `yaml:"output"`
	Duration   float64 `yaml:"duration"` // seconds
	FPS        int     `yaml:"fps"`
	FFMPEGPath string  `yaml:"ffmpeg_path"`
	Codec      string  `yaml:"codec"`
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path over the embedded defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and the variant name.
func (c *Config) Validate() error {
	var errs []error
	if _, err := shader.Lookup(c.Variant); err != nil {
		errs = append(errs, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if len(c.Window.Fallback) != 3 {
		errs = append(errs, fmt.Errorf("fallback must have 3 components, got %d", len(c.Window.Fallback)))
	}
	if c.Gate.MinViewportWidth < 0 {
		errs = append(errs, fmt.Errorf("min_viewport_width must not be negative"))
	}
	if c.Surface.MaxPixelRatio < 0 {
		errs = append(errs, fmt.Errorf("max_pixel_ratio must not be negative"))
	}
	for name, a := range map[string]float32{
		"position_alpha":  c.Smoothing.PositionAlpha,
		"influence_alpha": c.Smoothing.InfluenceAlpha,
	} {
		if a < 0 || a > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0, 1], got %v", name, a))
		}
	}
	if c.Record.FPS <= 0 {
		errs = append(errs, fmt.Errorf("record fps must be positive"))
	}
	if c.Record.Duration < 0 {
		errs = append(errs, fmt.Errorf("record duration must not be negative"))
	}
	return errors.Join(errs...)
}

// ResolveVariant resolves the configured variant with smoothing overrides applied.
func (c *Config) ResolveVariant() (shader.Variant, error) {
	v, err := shader.Lookup(c.Variant)
	if err != nil {
		return shader.Variant{}, err
	}
	if c.Smoothing.PositionAlpha > 0 {
		v.PositionAlpha = c.Smoothing.PositionAlpha
	}
	if c.Smoothing.InfluenceAlpha > 0 {
		v.InfluenceAlpha = c.Smoothing.InfluenceAlpha
	}
	return v, nil
}

// WriteYAML saves the configuration.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
