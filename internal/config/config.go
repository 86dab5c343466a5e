// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Gradient GradientConfig `yaml:"gradient"`
	Capture  CaptureConfig  `yaml:"capture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds window settings.
type GraphicsConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Backend    string `yaml:"backend"` // sdl or glfw
}

// GradientConfig holds the animated gradient's options.
type GradientConfig struct {
	Colors    []string  `yaml:"colors"`
	Density   []float64 `yaml:"density"` // segments per pixel, [x, y]
	Angle     float64   `yaml:"angle"`   // radians
	Amplitude float64   `yaml:"amplitude"`
	Static    bool      `yaml:"static"`
	Wireframe bool      `yaml:"wireframe"`
	Seed      float64   `yaml:"seed"`
	// Height fixes the drawn height and resizes the window to it; 0 follows
	// the window.
	Height    int       `yaml:"height"`
	DarkenTop bool      `yaml:"darken_top"`
}

// CaptureConfig holds screenshot settings.
type CaptureConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Title:      "Mesh Gradient",
			Width:      1280,
			Height:     600,
			Fullscreen: false,
			VSync:      true,
			Backend:    "sdl",
		},
		Gradient: GradientConfig{
			Colors:    []string{"#f00", "#0f0", "#00f"},
			Density:   []float64{0.06, 0.16},
			Angle:     0,
			Amplitude: 320,
			Height:    0,
		},
		Capture: CaptureConfig{
			Dir:    "screenshots",
			Prefix: "gradient",
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	fail := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		fail("graphics size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	switch c.Graphics.Backend {
	case "sdl", "glfw":
	default:
		fail("graphics.backend %q (want sdl or glfw)", c.Graphics.Backend)
	}
	if n := len(c.Gradient.Colors); n < 2 || n > 4 {
		fail("gradient.colors has %d entries (want 2 to 4)", n)
	}
	if len(c.Gradient.Density) != 2 {
		fail("gradient.density needs 2 values, got %d", len(c.Gradient.Density))
	} else if c.Gradient.Density[0] <= 0 || c.Gradient.Density[1] <= 0 {
		fail("gradient.density %v must be positive", c.Gradient.Density)
	}
	if c.Gradient.Height < 0 {
		fail("gradient.height %d", c.Gradient.Height)
	}
	return err
}
