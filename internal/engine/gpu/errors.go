package gpu

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceCreation is returned when the backend hands out a null
	// handle for a buffer, shader or program.
	ErrResourceCreation = errors.New("gpu: resource creation failed")

	// ErrInvalidSurface is returned when no drawable surface or backend is
	// available at construction time.
	ErrInvalidSurface = errors.New("gpu: surface unavailable")
)

// CompileError carries the backend diagnostic for a failed stage.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader: %s", e.Stage, e.Log)
}

// LinkError carries the backend diagnostic for a failed link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link: %s", e.Log)
}
