// Package gputest provides an in-memory gpu.Backend that records every call.
package gputest

import (
	"fmt"
	"strings"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
)

// Call is one recorded backend invocation.
type Call struct {
	Op   string
	Args []any
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Op
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Op + "(" + strings.Join(parts, ", ") + ")"
}

// BufferState is the last data uploaded to a buffer.
type BufferState struct {
	Target  gpu.BufferTarget
	Float32 []float32
	Uint16  []uint16
	Deleted bool
}

// ShaderState tracks a created shader.
type ShaderState struct {
	Stage   gpu.Stage
	Source  string
	Deleted bool
}

// ProgramState tracks a created program.
type ProgramState struct {
	Shaders []gpu.Shader
	Linked  bool
	Deleted bool
}

// Backend is a recording gpu.Backend. The zero value is not usable; call New.
type Backend struct {
	Calls []Call

	Buffers  map[gpu.Buffer]*BufferState
	Shaders  map[gpu.Shader]*ShaderState
	Programs map[gpu.Program]*ProgramState

	// CompileFailures maps a stage to the diagnostic its compile reports.
	CompileFailures map[gpu.Stage]string
	// LinkFailure, when set, makes every link fail with this diagnostic.
	LinkFailure string
	// InactiveUniforms and InactiveAttribs resolve to -1.
	InactiveUniforms map[string]bool
	InactiveAttribs  map[string]bool
	// FailBuffers, FailShaders and FailPrograms make creation return 0.
	FailBuffers  bool
	FailShaders  bool
	FailPrograms bool

	// Uniforms holds the last value pushed to each uniform location name.
	Uniforms map[string]any

	Prelude map[gpu.Stage]string

	nextHandle   uint32
	uniformNames map[gpu.UniformLocation]string
	uniformLocs  map[string]gpu.UniformLocation
	attribLocs   map[string]gpu.AttribLocation
	bound        map[gpu.BufferTarget]gpu.Buffer
}

// New returns an empty recording backend.
func New() *Backend {
	return &Backend{
		Buffers:          make(map[gpu.Buffer]*BufferState),
		Shaders:          make(map[gpu.Shader]*ShaderState),
		Programs:         make(map[gpu.Program]*ProgramState),
		CompileFailures:  make(map[gpu.Stage]string),
		InactiveUniforms: make(map[string]bool),
		InactiveAttribs:  make(map[string]bool),
		Uniforms:         make(map[string]any),
		Prelude:          make(map[gpu.Stage]string),
		uniformNames:     make(map[gpu.UniformLocation]string),
		uniformLocs:      make(map[string]gpu.UniformLocation),
		attribLocs:       make(map[string]gpu.AttribLocation),
		bound:            make(map[gpu.BufferTarget]gpu.Buffer),
	}
}

func (b *Backend) record(op string, args ...any) {
	b.Calls = append(b.Calls, Call{Op: op, Args: args})
}

func (b *Backend) handle() uint32 {
	b.nextHandle++
	return b.nextHandle
}

// Reset forgets recorded calls but keeps resource state.
func (b *Backend) Reset() {
	b.Calls = nil
}

// Count returns how many calls with the given op were recorded.
func (b *Backend) Count(op string) int {
	n := 0
	for _, c := range b.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Ops returns the recorded op names in order.
func (b *Backend) Ops() []string {
	ops := make([]string, len(b.Calls))
	for i, c := range b.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Last returns the most recent call with the given op.
func (b *Backend) Last(op string) (Call, bool) {
	for i := len(b.Calls) - 1; i >= 0; i-- {
		if b.Calls[i].Op == op {
			return b.Calls[i], true
		}
	}
	return Call{}, false
}

// UniformName returns the leaf name a location was resolved for.
func (b *Backend) UniformName(loc gpu.UniformLocation) string {
	return b.uniformNames[loc]
}

func (b *Backend) CreateBuffer() gpu.Buffer {
	b.record("CreateBuffer")
	if b.FailBuffers {
		return 0
	}
	h := gpu.Buffer(b.handle())
	b.Buffers[h] = &BufferState{}
	return h
}

func (b *Backend) DeleteBuffer(h gpu.Buffer) {
	b.record("DeleteBuffer", h)
	if s, ok := b.Buffers[h]; ok {
		s.Deleted = true
	}
}

func (b *Backend) BindBuffer(target gpu.BufferTarget, h gpu.Buffer) {
	b.record("BindBuffer", target, h)
	b.bound[target] = h
}

func (b *Backend) BufferFloat32(target gpu.BufferTarget, data []float32, usage gpu.Usage) {
	b.record("BufferFloat32", target, len(data), usage)
	if s, ok := b.Buffers[b.bound[target]]; ok {
		s.Target = target
		s.Float32 = append([]float32(nil), data...)
	}
}

func (b *Backend) BufferUint16(target gpu.BufferTarget, data []uint16, usage gpu.Usage) {
	b.record("BufferUint16", target, len(data), usage)
	if s, ok := b.Buffers[b.bound[target]]; ok {
		s.Target = target
		s.Uint16 = append([]uint16(nil), data...)
	}
}

func (b *Backend) CreateShader(stage gpu.Stage) gpu.Shader {
	b.record("CreateShader", stage)
	if b.FailShaders {
		return 0
	}
	h := gpu.Shader(b.handle())
	b.Shaders[h] = &ShaderState{Stage: stage}
	return h
}

func (b *Backend) ShaderSource(h gpu.Shader, source string) {
	b.record("ShaderSource", h)
	if s, ok := b.Shaders[h]; ok {
		s.Source = source
	}
}

func (b *Backend) CompileShader(h gpu.Shader) {
	b.record("CompileShader", h)
}

func (b *Backend) ShaderInfo(h gpu.Shader) (bool, string) {
	s, ok := b.Shaders[h]
	if !ok {
		return false, "no such shader"
	}
	if msg, fail := b.CompileFailures[s.Stage]; fail {
		return false, msg
	}
	return true, ""
}

func (b *Backend) DeleteShader(h gpu.Shader) {
	b.record("DeleteShader", h)
	if s, ok := b.Shaders[h]; ok {
		s.Deleted = true
	}
}

func (b *Backend) CreateProgram() gpu.Program {
	b.record("CreateProgram")
	if b.FailPrograms {
		return 0
	}
	h := gpu.Program(b.handle())
	b.Programs[h] = &ProgramState{}
	return h
}

func (b *Backend) AttachShader(p gpu.Program, s gpu.Shader) {
	b.record("AttachShader", p, s)
	if ps, ok := b.Programs[p]; ok {
		ps.Shaders = append(ps.Shaders, s)
	}
}

func (b *Backend) LinkProgram(p gpu.Program) {
	b.record("LinkProgram", p)
	if ps, ok := b.Programs[p]; ok {
		ps.Linked = b.LinkFailure == ""
	}
}

func (b *Backend) ProgramInfo(p gpu.Program) (bool, string) {
	ps, ok := b.Programs[p]
	if !ok {
		return false, "no such program"
	}
	if !ps.Linked {
		return false, b.LinkFailure
	}
	return true, ""
}

func (b *Backend) DeleteProgram(p gpu.Program) {
	b.record("DeleteProgram", p)
	if ps, ok := b.Programs[p]; ok {
		ps.Deleted = true
	}
}

func (b *Backend) UseProgram(p gpu.Program) {
	b.record("UseProgram", p)
}

func (b *Backend) GetUniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	b.record("GetUniformLocation", p, name)
	if b.InactiveUniforms[name] {
		return gpu.NoUniform
	}
	if loc, ok := b.uniformLocs[name]; ok {
		return loc
	}
	loc := gpu.UniformLocation(len(b.uniformLocs))
	b.uniformLocs[name] = loc
	b.uniformNames[loc] = name
	return loc
}

func (b *Backend) GetAttribLocation(p gpu.Program, name string) gpu.AttribLocation {
	b.record("GetAttribLocation", p, name)
	if b.InactiveAttribs[name] {
		return gpu.NoAttrib
	}
	if loc, ok := b.attribLocs[name]; ok {
		return loc
	}
	loc := gpu.AttribLocation(len(b.attribLocs))
	b.attribLocs[name] = loc
	return loc
}

func (b *Backend) EnableVertexAttribArray(loc gpu.AttribLocation) {
	b.record("EnableVertexAttribArray", loc)
}

func (b *Backend) VertexAttribPointer(loc gpu.AttribLocation, size int, typ gpu.ScalarType, normalized bool, stride, offset int) {
	b.record("VertexAttribPointer", loc, size, typ, normalized, stride, offset)
}

func (b *Backend) setUniform(op string, loc gpu.UniformLocation, v any) {
	b.record(op, loc, v)
	b.Uniforms[b.uniformNames[loc]] = v
}

func (b *Backend) Uniform1f(loc gpu.UniformLocation, v float32) { b.setUniform("Uniform1f", loc, v) }
func (b *Backend) Uniform1i(loc gpu.UniformLocation, v int32)   { b.setUniform("Uniform1i", loc, v) }
func (b *Backend) Uniform2fv(loc gpu.UniformLocation, v [2]float32) {
	b.setUniform("Uniform2fv", loc, v)
}
func (b *Backend) Uniform3fv(loc gpu.UniformLocation, v [3]float32) {
	b.setUniform("Uniform3fv", loc, v)
}
func (b *Backend) Uniform4fv(loc gpu.UniformLocation, v [4]float32) {
	b.setUniform("Uniform4fv", loc, v)
}

func (b *Backend) UniformMatrix4fv(loc gpu.UniformLocation, transpose bool, m [16]float32) {
	b.record("UniformMatrix4fv", loc, transpose, m)
	b.Uniforms[b.uniformNames[loc]] = m
}

func (b *Backend) ClearColor(r, g, bl, a float32) { b.record("ClearColor", r, g, bl, a) }
func (b *Backend) ClearDepth(d float64)           { b.record("ClearDepth", d) }
func (b *Backend) Clear(mask gpu.ClearMask)       { b.record("Clear", mask) }

func (b *Backend) DrawElements(mode gpu.DrawMode, count int, typ gpu.ScalarType, offset int) {
	b.record("DrawElements", mode, count, typ, offset)
}

func (b *Backend) Viewport(x, y, width, height int) {
	b.record("Viewport", x, y, width, height)
}

func (b *Backend) ShaderPrelude(stage gpu.Stage) string {
	return b.Prelude[stage]
}
