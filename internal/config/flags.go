package config

import (
	"flag"
	"strings"
)

// Flags are the command-line overrides.
type Flags struct {
	set *flag.FlagSet

	config     *string
	debug      *bool
	windowed   *bool
	fullscreen *bool
	width      *int
	height     *int
	backend    *string
	wireframe  *bool
	static     *bool
	colors     *string
	seed       *float64
}

// NewFlags registers the overrides on fs.
func NewFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		set:        fs,
		config:     fs.String("config", "", "Path to config file"),
		debug:      fs.Bool("debug", false, "Enable debug logging"),
		windowed:   fs.Bool("windowed", false, "Run in windowed mode"),
		fullscreen: fs.Bool("fullscreen", false, "Run in fullscreen mode"),
		width:      fs.Int("width", 0, "Window width"),
		height:     fs.Int("height", 0, "Window height"),
		backend:    fs.String("backend", "", "Window library: sdl or glfw"),
		wireframe:  fs.Bool("wireframe", false, "Draw the mesh as lines"),
		static:     fs.Bool("static", false, "Render one frame and stop animating"),
		colors:     fs.String("colors", "", "Comma-separated hex colors, e.g. #ef008f,#6ec3f4"),
		seed:       fs.Float64("seed", 0, "Noise seed"),
	}
}

var cli = NewFlags(flag.CommandLine)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return cli.ConfigPath()
}

// ConfigPath returns the -config value.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// Apply overrides cfg with the flags that were set.
func (f *Flags) Apply(cfg *Config) {
	set := map[string]bool{}
	f.set.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.windowed {
		cfg.Graphics.Fullscreen = false
	}
	if *f.fullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *f.width > 0 {
		cfg.Graphics.Width = *f.width
	}
	if *f.height > 0 {
		cfg.Graphics.Height = *f.height
	}
	if *f.backend != "" {
		cfg.Graphics.Backend = strings.ToLower(*f.backend)
	}
	if set["wireframe"] {
		cfg.Gradient.Wireframe = *f.wireframe
	}
	if set["static"] {
		cfg.Gradient.Static = *f.static
	}
	if *f.colors != "" {
		var colors []string
		for _, c := range strings.Split(*f.colors, ",") {
			if c = strings.TrimSpace(c); c != "" {
				colors = append(colors, c)
			}
		}
		cfg.Gradient.Colors = colors
	}
	if set["seed"] {
		cfg.Gradient.Seed = *f.seed
	}
}
