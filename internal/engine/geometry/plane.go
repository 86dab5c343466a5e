package geometry

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
)

var (
	// ErrInvalidSegments is returned for segment counts below 1.
	ErrInvalidSegments = errors.New("geometry: segment count must be at least 1")
	// ErrTooManyVertices is returned when a topology cannot be addressed by
	// 16-bit indices.
	ErrTooManyVertices = errors.New("geometry: vertex count exceeds 16-bit index range")
	// ErrInvalidOrientation is returned for axis pairs other than two
	// distinct letters from "xyz".
	ErrInvalidOrientation = errors.New("geometry: orientation must name two distinct axes")
)

// MaxVertices is the largest vertex count a 16-bit index buffer can address.
const MaxVertices = 1 << 16

// Orientation names the two world axes the plane spans, e.g. "xz". The
// plane's rows run along the negated second axis.
type Orientation string

// OrientationXZ lays the plane on the ground, rows running along -z.
const OrientationXZ Orientation = "xz"

func (o Orientation) axes() (int, int, error) {
	if len(o) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidOrientation, string(o))
	}
	a := strings.IndexByte("xyz", o[0])
	b := strings.IndexByte("xyz", o[1])
	if a < 0 || b < 0 || a == b {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidOrientation, string(o))
	}
	return a, b, nil
}

// Attribute names bound by meshes, in bind order.
const (
	AttrPosition = "position"
	AttrUV       = "uv"
	AttrUVNorm   = "uvNorm"
	AttrIndex    = "index"
)

// NamedAttribute pairs an attribute with its shader name.
type NamedAttribute struct {
	Name      string
	Attribute *Attribute
}

// Plane is a tessellated rectangle centered at the origin.
//
// Vertices are laid out row by row; vertex (row e, col t) has index
// e*(xSegs+1)+t. Each attribute is re-uploaded as soon as it changes.
type Plane struct {
	position *Attribute
	uv       *Attribute
	uvNorm   *Attribute
	index    *Attribute

	width, height float32
	orientation   Orientation
	xSegs, ySegs  int
	vertexCount   int
	quadCount     int
}

// NewPlane creates the plane's buffers and generates its topology and
// positions.
func NewPlane(b gpu.Backend, width, height float32, xSegs, ySegs int, o Orientation) (*Plane, error) {
	p := &Plane{}

	var err error
	newAttr := func(target gpu.BufferTarget, size int, typ gpu.ScalarType) *Attribute {
		a, e := NewAttribute(b, target, size, typ)
		err = multierr.Append(err, e)
		return a
	}
	p.position = newAttr(gpu.TargetVertex, 3, gpu.Float32)
	p.uv = newAttr(gpu.TargetVertex, 2, gpu.Float32)
	p.uvNorm = newAttr(gpu.TargetVertex, 2, gpu.Float32)
	p.index = newAttr(gpu.TargetIndex, 0, gpu.Uint16)
	if err != nil {
		p.Release()
		return nil, err
	}

	if err := p.SetTopology(xSegs, ySegs); err != nil {
		p.Release()
		return nil, err
	}
	if err := p.SetSize(width, height, o); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// SetTopology regenerates uv, uvNorm and the index buffer for a grid of
// xSegs by ySegs cells and uploads them. Positions are left for SetSize.
func (p *Plane) SetTopology(xSegs, ySegs int) error {
	if xSegs < 1 || ySegs < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSegments, xSegs, ySegs)
	}
	vertexCount := (xSegs + 1) * (ySegs + 1)
	if vertexCount > MaxVertices {
		return fmt.Errorf("%w: %d", ErrTooManyVertices, vertexCount)
	}

	p.xSegs = xSegs
	p.ySegs = ySegs
	p.vertexCount = vertexCount
	p.quadCount = xSegs * ySegs * 2

	uv := make([]float32, 2*p.vertexCount)
	uvNorm := make([]float32, 2*p.vertexCount)
	index := make([]uint16, 3*p.quadCount)

	for e := 0; e <= ySegs; e++ {
		for t := 0; t <= xSegs; t++ {
			i := e*(xSegs+1) + t
			u := float64(t) / float64(xSegs)
			v := float64(e) / float64(ySegs)

			uv[2*i] = float32(u)
			uv[2*i+1] = float32(1 - v)
			uvNorm[2*i] = float32(u*2 - 1)
			uvNorm[2*i+1] = float32(1 - v*2)

			if t < xSegs && e < ySegs {
				s := 6 * (e*xSegs + t)
				// A: (i, i+1+xSegs, i+1)  B: (i+1, i+1+xSegs, i+2+xSegs)
				index[s] = uint16(i)
				index[s+1] = uint16(i + 1 + xSegs)
				index[s+2] = uint16(i + 1)
				index[s+3] = uint16(i + 1)
				index[s+4] = uint16(i + 1 + xSegs)
				index[s+5] = uint16(i + 2 + xSegs)
			}
		}
	}

	p.uv.SetFloat32(uv)
	p.uvNorm.SetFloat32(uvNorm)
	p.index.SetUint16(index)
	p.uv.Upload()
	p.uvNorm.Upload()
	p.index.Upload()
	return nil
}

// SetSize places the vertices on an even grid of width by height centered
// at the origin and uploads the positions. The first axis of o carries
// columns, the negated second axis carries rows, the third axis is left
// untouched. Storage is reused while the vertex count is unchanged.
func (p *Plane) SetSize(width, height float32, o Orientation) error {
	a0, a1, err := o.axes()
	if err != nil {
		return err
	}
	if p.vertexCount == 0 {
		return fmt.Errorf("%w: topology not set", ErrInvalidSegments)
	}
	p.width = width
	p.height = height
	p.orientation = o

	pos := p.position.Float32()
	if len(pos) != 3*p.vertexCount {
		pos = make([]float32, 3*p.vertexCount)
	}

	left := float64(width) / -2
	top := float64(height) / -2
	segW := float64(width) / float64(p.xSegs)
	segH := float64(height) / float64(p.ySegs)

	for row := 0; row <= p.ySegs; row++ {
		y := top + float64(row)*segH
		for col := 0; col <= p.xSegs; col++ {
			x := left + float64(col)*segW
			i := row*(p.xSegs+1) + col
			pos[3*i+a0] = float32(x)
			pos[3*i+a1] = float32(-y)
		}
	}

	p.position.SetFloat32(pos)
	p.position.Upload()
	return nil
}

// Attributes returns the plane's buffers in bind order.
func (p *Plane) Attributes() []NamedAttribute {
	return []NamedAttribute{
		{AttrPosition, p.position},
		{AttrUV, p.uv},
		{AttrUVNorm, p.uvNorm},
		{AttrIndex, p.index},
	}
}

// Index returns the index buffer.
func (p *Plane) Index() *Attribute { return p.index }

// Position returns the position buffer.
func (p *Plane) Position() *Attribute { return p.position }

// UV returns the [0,1] texture coordinate buffer.
func (p *Plane) UV() *Attribute { return p.uv }

// UVNorm returns the [-1,1] coordinate buffer.
func (p *Plane) UVNorm() *Attribute { return p.uvNorm }

// VertexCount returns (xSegs+1)*(ySegs+1).
func (p *Plane) VertexCount() int { return p.vertexCount }

// QuadCount returns the triangle count, two per grid cell.
func (p *Plane) QuadCount() int { return p.quadCount }

// Segments returns the current segment counts.
func (p *Plane) Segments() (int, int) { return p.xSegs, p.ySegs }

// Size returns the current world size and orientation.
func (p *Plane) Size() (float32, float32, Orientation) {
	return p.width, p.height, p.orientation
}

// Release deletes every buffer owned by the plane.
func (p *Plane) Release() {
	for _, a := range []*Attribute{p.position, p.uv, p.uvNorm, p.index} {
		if a != nil {
			a.Release()
		}
	}
}
