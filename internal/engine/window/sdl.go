package window

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshgradient/internal/engine/input"
	"github.com/Faultbox/meshgradient/internal/logger"
)

var sdlKeys = map[sdl.Scancode]input.Key{
	sdl.SCANCODE_ESCAPE:   input.KeyEscape,
	sdl.SCANCODE_SPACE:    input.KeySpace,
	sdl.SCANCODE_1:        input.Key1,
	sdl.SCANCODE_2:        input.Key2,
	sdl.SCANCODE_3:        input.Key3,
	sdl.SCANCODE_4:        input.Key4,
	sdl.SCANCODE_EQUALS:   input.KeyPlus,
	sdl.SCANCODE_KP_PLUS:  input.KeyPlus,
	sdl.SCANCODE_MINUS:    input.KeyMinus,
	sdl.SCANCODE_KP_MINUS: input.KeyMinus,
	sdl.SCANCODE_W:        input.KeyW,
	sdl.SCANCODE_F12:      input.KeyF12,
}

// SDL wraps an SDL2 window and its OpenGL context.
type SDL struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	log       *zap.Logger
}

// NewSDL creates an SDL2 window with an OpenGL 4.1 core context.
func NewSDL(cfg Config) (*SDL, error) {
	w := &SDL{config: cfg, log: logger.Named("window")}

	w.log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// OpenGL 4.1 Core Profile (max supported on macOS)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		w.log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	fbW, fbH := w.Size()
	w.log.Info("window created",
		zap.String("backend", BackendSDL),
		zap.String("title", cfg.Title),
		zap.Int("width", fbW),
		zap.Int("height", fbH),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

// Size returns the drawable size in pixels.
func (w *SDL) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetSize resizes the window so its drawable is width by height pixels.
func (w *SDL) SetSize(width, height int) {
	fbW, fbH := w.Size()
	if fbW == width && fbH == height {
		return
	}
	winW, winH := w.sdlWindow.GetSize()
	ww, wh := toWindowUnits(width, height, int(winW), int(winH), fbW, fbH)
	w.sdlWindow.SetSize(int32(ww), int32(wh))
}

// SwapBuffers swaps the OpenGL buffers.
func (w *SDL) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// PollEvents drains the SDL queue into in.
func (w *SDL) PollEvents(in *input.Input) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.Push(input.Event{Type: input.EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				fbW, fbH := w.Size()
				in.Push(input.Event{Type: input.EventResize, Width: fbW, Height: fbH})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			key, ok := sdlKeys[e.Keysym.Scancode]
			if !ok {
				key = input.KeyUnknown
			}
			typ := input.EventKeyDown
			if e.Type == sdl.KEYUP {
				typ = input.EventKeyUp
			}
			in.Push(input.Event{Type: typ, Key: key})
		}
	}
}

// SetTitle sets the window title.
func (w *SDL) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// Close destroys the window and cleans up SDL2.
func (w *SDL) Close() {
	w.log.Info("closing window")
	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}
