package renderer

import (
	"github.com/Faultbox/meshgradient/internal/engine/geometry"
	"github.com/Faultbox/meshgradient/internal/engine/gpu"
	"github.com/Faultbox/meshgradient/internal/engine/shader"
)

type boundAttribute struct {
	attr     *geometry.Attribute
	location gpu.AttribLocation
}

// Mesh is a plane drawn with a program.
type Mesh struct {
	ctx      *Context
	program  *shader.Program
	geometry *geometry.Plane
	attrs    []boundAttribute
	removed  bool

	// Wireframe draws the mesh with lines instead of triangles.
	Wireframe bool
}

func newMesh(c *Context, p *shader.Program, g *geometry.Plane) *Mesh {
	m := &Mesh{ctx: c, program: p, geometry: g}
	for _, a := range g.Attributes() {
		loc := gpu.NoAttrib
		if a.Attribute.Target() == gpu.TargetVertex {
			loc = p.AttribLocation(a.Name)
		}
		m.attrs = append(m.attrs, boundAttribute{attr: a.Attribute, location: loc})
	}
	return m
}

// Program returns the mesh's program.
func (m *Mesh) Program() *shader.Program { return m.program }

// Geometry returns the mesh's plane.
func (m *Mesh) Geometry() *geometry.Plane { return m.geometry }

// Removed reports whether Remove was called.
func (m *Mesh) Removed() bool { return m.removed }

func (m *Mesh) draw() {
	index := m.geometry.Index()
	if !index.HasData() {
		return
	}
	if !m.program.Use() {
		return
	}
	m.program.SyncUniforms()
	for _, a := range m.attrs {
		a.attr.Bind(a.location)
	}

	mode := gpu.Triangles
	if m.Wireframe {
		mode = gpu.Lines
	}
	m.ctx.backend.DrawElements(mode, index.Len(), gpu.Uint16, 0)
}

// Remove detaches the mesh from its context. Removing twice is a no-op.
func (m *Mesh) Remove() {
	if m.removed {
		return
	}
	m.removed = true
	m.ctx.remove(m)
}
