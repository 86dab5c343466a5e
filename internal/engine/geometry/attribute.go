// Package geometry provides GPU vertex/index buffers and procedural meshes.
package geometry

import (
	"fmt"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
)

// Attribute is one GPU buffer backed by typed host storage.
//
// Storage is assigned with SetFloat32 or SetUint16 and pushed with Upload;
// replacing storage requires another Upload. An Attribute whose buffer could
// not be created ignores Upload and Bind.
type Attribute struct {
	backend gpu.Backend
	buffer  gpu.Buffer

	target     gpu.BufferTarget
	size       int
	typ        gpu.ScalarType
	normalized bool

	f32 []float32
	u16 []uint16
}

// NewAttribute creates an empty buffer. size is the per-vertex component
// count and is ignored for index targets. When the backend returns no
// handle the attribute is still returned, inert, alongside the error.
func NewAttribute(b gpu.Backend, target gpu.BufferTarget, size int, typ gpu.ScalarType) (*Attribute, error) {
	a := &Attribute{
		backend: b,
		buffer:  b.CreateBuffer(),
		target:  target,
		size:    size,
		typ:     typ,
	}
	if target == gpu.TargetIndex {
		a.size = 0
	}
	if a.buffer == 0 {
		return a, fmt.Errorf("%s buffer: %w", target, gpu.ErrResourceCreation)
	}
	return a, nil
}

// SetFloat32 assigns float storage without uploading it.
func (a *Attribute) SetFloat32(data []float32) {
	a.f32 = data
	a.u16 = nil
	a.typ = gpu.Float32
}

// SetUint16 assigns 16-bit index storage without uploading it.
func (a *Attribute) SetUint16(data []uint16) {
	a.u16 = data
	a.f32 = nil
	a.typ = gpu.Uint16
}

// Float32 returns the float storage, or nil.
func (a *Attribute) Float32() []float32 { return a.f32 }

// Uint16 returns the index storage, or nil.
func (a *Attribute) Uint16() []uint16 { return a.u16 }

// Len returns the number of scalars in storage.
func (a *Attribute) Len() int {
	if a.typ == gpu.Uint16 {
		return len(a.u16)
	}
	return len(a.f32)
}

// HasData reports whether storage has been assigned.
func (a *Attribute) HasData() bool {
	return a.f32 != nil || a.u16 != nil
}

// Target returns the buffer classification.
func (a *Attribute) Target() gpu.BufferTarget { return a.target }

// Size returns the per-vertex component count (0 for index buffers).
func (a *Attribute) Size() int { return a.size }

// Type returns the scalar element type.
func (a *Attribute) Type() gpu.ScalarType { return a.typ }

// Upload sends the whole storage to the GPU with a static usage hint.
func (a *Attribute) Upload() {
	if a.buffer == 0 || a.target == gpu.TargetNone || !a.HasData() {
		return
	}
	a.backend.BindBuffer(a.target, a.buffer)
	switch a.typ {
	case gpu.Uint16:
		a.backend.BufferUint16(a.target, a.u16, gpu.StaticDraw)
	default:
		a.backend.BufferFloat32(a.target, a.f32, gpu.StaticDraw)
	}
}

// Bind binds the buffer for a draw. Vertex buffers with a component count
// are also enabled and described at loc: tightly packed, unnormalized.
// Index buffers never touch vertex attribute state.
func (a *Attribute) Bind(loc gpu.AttribLocation) {
	if a.buffer == 0 || a.target == gpu.TargetNone {
		return
	}
	a.backend.BindBuffer(a.target, a.buffer)
	if a.target != gpu.TargetVertex || a.size <= 0 || !loc.Valid() {
		return
	}
	a.backend.EnableVertexAttribArray(loc)
	a.backend.VertexAttribPointer(loc, a.size, a.typ, a.normalized, 0, 0)
}

// Release deletes the GPU buffer. Further Upload and Bind calls do nothing.
func (a *Attribute) Release() {
	if a.buffer == 0 {
		return
	}
	a.backend.DeleteBuffer(a.buffer)
	a.buffer = 0
}
