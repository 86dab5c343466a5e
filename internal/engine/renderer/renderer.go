// Package renderer owns the render context: the surface size, the common
// uniforms every program shares, and the ordered list of meshes drawn each
// frame.
package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshgradient/internal/engine/geometry"
	"github.com/Faultbox/meshgradient/internal/engine/gpu"
	"github.com/Faultbox/meshgradient/internal/engine/shader"
	"github.com/Faultbox/meshgradient/internal/engine/uniform"
	"github.com/Faultbox/meshgradient/internal/logger"
	"github.com/Faultbox/meshgradient/pkg/math"
)

// ErrInvalidSize is returned for non-positive surface dimensions.
var ErrInvalidSize = errors.New("renderer: surface size must be positive")

// Common uniform names, declared in every program.
const (
	UniformProjection  = "projectionMatrix"
	UniformModelView   = "modelViewMatrix"
	UniformResolution  = "resolution"
	UniformAspectRatio = "aspectRatio"
)

// Surface is the drawable the context renders into. The embedding window
// supplies it; the context never observes resize events itself.
type Surface interface {
	Size() (int, int)
	SetSize(width, height int)
}

// CameraParams are the inputs of SetOrthographicCamera.
type CameraParams struct {
	Left, Right, Top float32
	Bottom, Far      float32
}

// DefaultCamera is the camera every context starts with.
var DefaultCamera = CameraParams{Bottom: -2000, Far: 2000}

// Context draws meshes onto a surface.
type Context struct {
	backend gpu.Backend
	surface Surface
	log     *zap.Logger

	width, height int

	projection  *uniform.Mat4
	modelView   *uniform.Mat4
	resolution  *uniform.Vec2
	aspectRatio *uniform.Float
	common      *uniform.Set

	meshes []*Mesh
}

// NewContext binds a backend to a surface. Construction fails immediately
// when either is missing. A surface that already has a positive size gets
// its viewport, resolution and aspectRatio applied right away.
func NewContext(b gpu.Backend, s Surface) (*Context, error) {
	if b == nil || s == nil {
		return nil, fmt.Errorf("renderer: %w", gpu.ErrInvalidSurface)
	}

	c := &Context{
		backend:     b,
		surface:     s,
		log:         logger.Named("renderer"),
		projection:  &uniform.Mat4{Value: math.Identity()},
		modelView:   &uniform.Mat4{Value: math.Identity()},
		resolution:  &uniform.Vec2{Value: [2]float32{1, 1}},
		aspectRatio: &uniform.Float{Value: 1},
	}
	c.common = uniform.NewSet(
		uniform.F(UniformProjection, c.projection),
		uniform.F(UniformModelView, c.modelView),
		uniform.F(UniformResolution, c.resolution),
		uniform.F(UniformAspectRatio, c.aspectRatio),
	)

	c.width, c.height = s.Size()
	if c.width > 0 && c.height > 0 {
		c.apply(c.width, c.height)
	}
	c.log.Debug("render context created",
		zap.Int("width", c.width),
		zap.Int("height", c.height),
	)
	return c, nil
}

// Backend returns the graphics backend.
func (c *Context) Backend() gpu.Backend { return c.backend }

// Common returns the uniforms shared by every program of this context.
func (c *Context) Common() *uniform.Set { return c.common }

// Size returns the last size applied with SetSize, or the surface's size at
// construction.
func (c *Context) Size() (int, int) { return c.width, c.height }

// SetSize resizes the surface and viewport and updates the resolution and
// aspectRatio uniforms.
func (c *Context) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	c.surface.SetSize(width, height)
	c.apply(width, height)

	c.log.Debug("render context resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return nil
}

func (c *Context) apply(width, height int) {
	c.width, c.height = width, height
	c.backend.Viewport(0, 0, width, height)
	c.resolution.Value = [2]float32{float32(width), float32(height)}
	c.aspectRatio.Value = float32(width) / float32(height)
}

// SetOrthographicCamera sets the projection matrix.
//
// The layout is fixed: 2/width, 2/height and 2/(bottom-far) on the diagonal,
// left, right and top in the last column's first three cells. It is not a
// symmetric orthographic projection; the plane's vertex shader expects
// exactly this matrix.
func (c *Context) SetOrthographicCamera(p CameraParams) {
	c.projection.Value = Projection(c.width, c.height, p)
}

// Projection returns the matrix SetOrthographicCamera installs for a
// surface of width by height.
func Projection(width, height int, p CameraParams) math.Mat4 {
	return math.Mat4{
		2 / float32(width), 0, 0, 0,
		0, 2 / float32(height), 0, 0,
		0, 0, 2 / (p.Bottom - p.Far), 0,
		p.Left, p.Right, p.Top, 1,
	}
}

// ProjectionMatrix returns the current projection matrix.
func (c *Context) ProjectionMatrix() math.Mat4 { return c.projection.Value }

// AspectRatio returns the aspectRatio uniform's value.
func (c *Context) AspectRatio() float32 { return c.aspectRatio.Value }

// Resolution returns the resolution uniform's value.
func (c *Context) Resolution() [2]float32 { return c.resolution.Value }

// NewProgram builds a program carrying this context's common uniforms.
// Build failures are reported through Program.Err.
func (c *Context) NewProgram(vertex, fragment string, custom *uniform.Set) *shader.Program {
	return shader.New(c.backend, shader.Source{
		Vertex:   vertex,
		Fragment: fragment,
		Common:   c.common,
		Custom:   custom,
	})
}

// Render clears the surface and draws every mesh in list order.
func (c *Context) Render() {
	c.backend.ClearColor(0, 0, 0, 0)
	c.backend.ClearDepth(1)
	c.backend.Clear(gpu.ClearColorBit | gpu.ClearDepthBit)

	// Iterate a snapshot so a mesh removed mid-frame does not shift the rest.
	meshes := c.meshes
	for _, m := range meshes {
		m.draw()
	}
}

// Meshes returns the meshes in draw order.
func (c *Context) Meshes() []*Mesh {
	return append([]*Mesh(nil), c.meshes...)
}

// NewMesh binds a plane to a program and appends it to the draw list.
func (c *Context) NewMesh(p *shader.Program, g *geometry.Plane) *Mesh {
	m := newMesh(c, p, g)
	c.meshes = append(c.meshes, m)
	return m
}

func (c *Context) remove(m *Mesh) bool {
	for i, other := range c.meshes {
		if other == m {
			next := make([]*Mesh, 0, len(c.meshes)-1)
			next = append(next, c.meshes[:i]...)
			c.meshes = append(next, c.meshes[i+1:]...)
			return true
		}
	}
	return false
}

// Close removes every mesh and releases its program and geometry.
func (c *Context) Close() {
	for _, m := range c.Meshes() {
		m.Remove()
		m.program.Release()
		m.geometry.Release()
	}
	c.log.Debug("render context closed")
}
