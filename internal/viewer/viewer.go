// Package viewer runs the window loop around a Gradient: it polls input,
// applies key bindings and presents rendered frames.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshgradient/internal/config"
	"github.com/Faultbox/meshgradient/internal/engine/capture"
	"github.com/Faultbox/meshgradient/internal/engine/gpu"
	"github.com/Faultbox/meshgradient/internal/engine/gpu/glbackend"
	"github.com/Faultbox/meshgradient/internal/engine/input"
	"github.com/Faultbox/meshgradient/internal/engine/renderer"
	"github.com/Faultbox/meshgradient/internal/engine/window"
	"github.com/Faultbox/meshgradient/internal/gradient"
	"github.com/Faultbox/meshgradient/internal/logger"
)

// idleDelay is how long the loop sleeps after a skipped frame.
const idleDelay = time.Millisecond

const pausedSuffix = " (paused)"

// Backend is a GPU backend that can also read the framebuffer back.
type Backend interface {
	gpu.Backend
	capture.PixelReader
}

// Viewer owns the window, the GPU context and the gradient.
type Viewer struct {
	window   window.Window
	backend  Backend
	ctx      *renderer.Context
	gradient *gradient.Gradient
	capture  *capture.Capturer
	input    *input.Input
	log      *zap.Logger
	title    string

	start       time.Time
	now         func() time.Time
	running     bool
	captureNext bool
	frames      int
	closers     []func()
}

// New opens the window, initializes OpenGL and builds the gradient.
func New(cfg *config.Config) (*Viewer, error) {
	win, err := window.New(cfg.Graphics.Backend, window.Config{
		Title:      cfg.Graphics.Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The backend needs the window's context to be current.
	b, err := glbackend.New()
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	v, err := newViewer(win, b, cfg)
	if err != nil {
		b.Close()
		win.Close()
		return nil, err
	}
	v.closers = append(v.closers, b.Close, win.Close)
	return v, nil
}

func newViewer(win window.Window, b Backend, cfg *config.Config) (*Viewer, error) {
	ctx, err := renderer.NewContext(b, win)
	if err != nil {
		return nil, err
	}
	g, err := gradient.New(ctx, gradient.OptionsFromConfig(cfg.Gradient))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to create gradient: %w", err)
	}

	v := &Viewer{
		window:   win,
		backend:  b,
		ctx:      ctx,
		gradient: g,
		capture:  capture.New(cfg.Capture.Dir, cfg.Capture.Prefix),
		input:    input.New(),
		log:      logger.Named("viewer"),
		title:    cfg.Graphics.Title,
		now:      time.Now,
	}
	return v, nil
}

// Gradient returns the animated gradient.
func (v *Viewer) Gradient() *gradient.Gradient { return v.gradient }

// Run loops until the window is closed or Escape is pressed.
func (v *Viewer) Run() error {
	v.running = true
	v.start = v.now()
	fpsTimer := v.start

	v.log.Info("starting render loop")

	for v.running {
		if err := v.step(); err != nil {
			return err
		}
		if !v.running {
			break
		}

		if v.present() {
			v.frames++
		} else {
			time.Sleep(idleDelay)
		}

		if now := v.now(); now.Sub(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", v.frames))
			v.frames = 0
			fpsTimer = now
		}
	}
	return nil
}

// present renders at the elapsed time since Run started, takes a pending
// screenshot from the back buffer and swaps. It reports whether anything was
// presented.
func (v *Viewer) present() bool {
	ms := float64(v.now().Sub(v.start).Microseconds()) / 1000
	rendered := v.gradient.Frame(ms)

	if v.captureNext {
		v.captureNext = false
		if !rendered {
			v.gradient.Redraw()
			rendered = true
		}
		v.screenshot()
	}

	if rendered {
		v.window.SwapBuffers()
	}
	return rendered
}

func (v *Viewer) screenshot() {
	w, h := v.ctx.Size()
	if _, err := v.capture.Frame(v.backend, w, h); err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
	}
}

// step polls the window and applies every pending event. Only the last
// resize of a poll is applied.
func (v *Viewer) step() error {
	v.input.Begin()
	v.window.PollEvents(v.input)
	if v.input.QuitRequested() {
		v.running = false
		return nil
	}

	if w, h, ok := v.input.Resized(); ok {
		if err := v.resize(w, h); err != nil {
			return err
		}
	}
	for _, e := range v.input.Events() {
		if e.Type == input.EventKeyDown {
			v.key(e.Key)
		}
	}
	return nil
}

func (v *Viewer) resize(width, height int) error {
	if err := v.gradient.Resize(width, height); err != nil {
		if errors.Is(err, renderer.ErrInvalidSize) {
			// Minimized windows report a zero size.
			return nil
		}
		return fmt.Errorf("resize: %w", err)
	}
	v.gradient.Redraw()
	v.window.SwapBuffers()
	return nil
}

func (v *Viewer) key(k input.Key) {
	switch k {
	case input.KeyEscape:
		v.running = false
	case input.KeySpace:
		v.gradient.TogglePlay()
		v.updateTitle()
		v.log.Info("playback", zap.Bool("playing", v.gradient.Playing()))
	case input.Key1, input.Key2, input.Key3, input.Key4:
		if err := v.gradient.ToggleColor(k.Digit()); err != nil {
			v.log.Warn("toggle color", zap.Error(err))
		}
	case input.KeyPlus:
		v.gradient.UpdateFrequency(gradient.FrequencyStep)
	case input.KeyMinus:
		v.gradient.UpdateFrequency(-gradient.FrequencyStep)
	case input.KeyW:
		v.gradient.SetWireframe(!v.gradient.Wireframe())
	case input.KeyF12:
		// Read back after the next render, before it is swapped away.
		v.captureNext = true
	}
}

func (v *Viewer) updateTitle() {
	if v.gradient.Playing() {
		v.window.SetTitle(v.title)
	} else {
		v.window.SetTitle(v.title + pausedSuffix)
	}
}

// Close releases the gradient, the GPU context and the window.
func (v *Viewer) Close() {
	v.gradient.Close()
	v.ctx.Close()
	for _, c := range v.closers {
		c()
	}
	v.closers = nil
	v.log.Info("viewer closed")
}
