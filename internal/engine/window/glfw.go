package window

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/meshgradient/internal/engine/input"
	"github.com/Faultbox/meshgradient/internal/logger"
)

var glfwKeys = map[glfw.Key]input.Key{
	glfw.KeyEscape:     input.KeyEscape,
	glfw.KeySpace:      input.KeySpace,
	glfw.Key1:          input.Key1,
	glfw.Key2:          input.Key2,
	glfw.Key3:          input.Key3,
	glfw.Key4:          input.Key4,
	glfw.KeyEqual:      input.KeyPlus,
	glfw.KeyKPAdd:      input.KeyPlus,
	glfw.KeyMinus:      input.KeyMinus,
	glfw.KeyKPSubtract: input.KeyMinus,
	glfw.KeyW:          input.KeyW,
	glfw.KeyF12:        input.KeyF12,
}

// GLFW wraps a GLFW window. Callbacks queue events until PollEvents.
type GLFW struct {
	window  *glfw.Window
	pending []input.Event
	log     *zap.Logger
}

// NewGLFW initialises GLFW and creates a window with an OpenGL 4.1 core
// context made current on the calling thread.
func NewGLFW(cfg Config) (*GLFW, error) {
	log := logger.Named("window")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init failed: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	var monitor *glfw.Monitor
	width, height := cfg.Width, cfg.Height
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if mode := monitor.GetVideoMode(); mode != nil {
			width, height = mode.Width, mode.Height
		}
	}

	win, err := glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw create window failed: %w", err)
	}
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &GLFW{window: win, log: log}
	win.SetKeyCallback(w.onKey)
	win.SetFramebufferSizeCallback(w.onFramebufferSize)

	fbW, fbH := w.Size()
	log.Info("window created",
		zap.String("backend", BackendGLFW),
		zap.String("title", cfg.Title),
		zap.Int("width", fbW),
		zap.Int("height", fbH),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

func (w *GLFW) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	var typ input.EventType
	switch action {
	case glfw.Press:
		typ = input.EventKeyDown
	case glfw.Release:
		typ = input.EventKeyUp
	default:
		return
	}
	k, ok := glfwKeys[key]
	if !ok {
		k = input.KeyUnknown
	}
	w.pending = append(w.pending, input.Event{Type: typ, Key: k})
}

func (w *GLFW) onFramebufferSize(_ *glfw.Window, width, height int) {
	w.pending = append(w.pending, input.Event{Type: input.EventResize, Width: width, Height: height})
}

// Size returns the framebuffer size in pixels.
func (w *GLFW) Size() (int, int) {
	return w.window.GetFramebufferSize()
}

// SetSize resizes the window so its framebuffer is width by height pixels.
func (w *GLFW) SetSize(width, height int) {
	fbW, fbH := w.Size()
	if fbW == width && fbH == height {
		return
	}
	winW, winH := w.window.GetSize()
	w.window.SetSize(toWindowUnits(width, height, winW, winH, fbW, fbH))
}

// SwapBuffers swaps the OpenGL buffers.
func (w *GLFW) SwapBuffers() {
	w.window.SwapBuffers()
}

// PollEvents processes pending GLFW events and moves them into in.
func (w *GLFW) PollEvents(in *input.Input) {
	glfw.PollEvents()
	for _, e := range w.pending {
		in.Push(e)
	}
	w.pending = w.pending[:0]
	if w.window.ShouldClose() {
		in.Push(input.Event{Type: input.EventQuit})
	}
}

// SetTitle sets the window title.
func (w *GLFW) SetTitle(title string) {
	w.window.SetTitle(title)
}

// Close destroys the window and terminates GLFW.
func (w *GLFW) Close() {
	w.log.Info("closing window")
	w.window.Destroy()
	glfw.Terminate()
}
