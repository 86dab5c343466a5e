// Package window creates the OpenGL window and its context.
package window

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/Faultbox/meshgradient/internal/engine/input"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// ErrUnknownBackend is returned for a windowing library name other than
// "sdl" or "glfw".
var ErrUnknownBackend = errors.New("window: unknown backend")

// Windowing libraries.
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Window is a drawable surface with a current OpenGL 4.1 core context.
// Size and SetSize are in framebuffer pixels.
type Window interface {
	Size() (int, int)
	SetSize(width, height int)
	SwapBuffers()
	// PollEvents translates pending events into in.
	PollEvents(in *input.Input)
	SetTitle(title string)
	Close()
}

// New opens a window with the named library.
func New(backend string, cfg Config) (Window, error) {
	switch strings.ToLower(backend) {
	case "", BackendSDL:
		w, err := NewSDL(cfg)
		if err != nil {
			return nil, err
		}
		return w, nil
	case BackendGLFW:
		w, err := NewGLFW(cfg)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// toWindowUnits converts a framebuffer size to window coordinates given the
// current window and framebuffer sizes, which differ on HiDPI displays.
func toWindowUnits(w, h, winW, winH, fbW, fbH int) (int, int) {
	if fbW <= 0 || fbH <= 0 {
		return w, h
	}
	return w * winW / fbW, h * winH / fbH
}
