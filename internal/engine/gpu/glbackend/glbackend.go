// Package glbackend implements gpu.Backend on OpenGL 4.1 core.
package glbackend

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
	"github.com/Faultbox/meshgradient/internal/logger"
)

const vertexPrelude = `#version 410 core
#define attribute in
#define varying out`

const fragmentPrelude = `#version 410 core
#define varying in
out vec4 fragColor;
#define gl_FragColor fragColor`

// Backend issues gpu.Backend calls against the current GL context.
type Backend struct {
	vao uint32
}

// New loads the GL entry points and binds the vertex array every draw uses.
// It must be called after the window has made its context current.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	b := &Backend{}
	// Core profile refuses attribute pointers without a bound VAO.
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	return b, nil
}

// Close deletes the vertex array.
func (b *Backend) Close() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
}

func target(t gpu.BufferTarget) uint32 {
	if t == gpu.TargetIndex {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

// usage maps the upload hint; StaticDraw is the only one the core issues.
func usage(gpu.Usage) uint32 { return gl.STATIC_DRAW }

func scalar(t gpu.ScalarType) uint32 {
	if t == gpu.Uint16 {
		return gl.UNSIGNED_SHORT
	}
	return gl.FLOAT
}

func (b *Backend) CreateBuffer() gpu.Buffer {
	var h uint32
	gl.GenBuffers(1, &h)
	return gpu.Buffer(h)
}

func (b *Backend) DeleteBuffer(h gpu.Buffer) {
	v := uint32(h)
	gl.DeleteBuffers(1, &v)
}

func (b *Backend) BindBuffer(t gpu.BufferTarget, h gpu.Buffer) {
	gl.BindBuffer(target(t), uint32(h))
}

func (b *Backend) BufferFloat32(t gpu.BufferTarget, data []float32, u gpu.Usage) {
	if len(data) == 0 {
		gl.BufferData(target(t), 0, nil, usage(u))
		return
	}
	gl.BufferData(target(t), len(data)*4, gl.Ptr(data), usage(u))
}

func (b *Backend) BufferUint16(t gpu.BufferTarget, data []uint16, u gpu.Usage) {
	if len(data) == 0 {
		gl.BufferData(target(t), 0, nil, usage(u))
		return
	}
	gl.BufferData(target(t), len(data)*2, gl.Ptr(data), usage(u))
}

func (b *Backend) CreateShader(stage gpu.Stage) gpu.Shader {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.StageFragment {
		kind = gl.FRAGMENT_SHADER
	}
	return gpu.Shader(gl.CreateShader(kind))
}

func (b *Backend) ShaderSource(s gpu.Shader, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(s), 1, csources, nil)
	free()
}

func (b *Backend) CompileShader(s gpu.Shader) { gl.CompileShader(uint32(s)) }

func (b *Backend) ShaderInfo(s gpu.Shader) (bool, string) {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	if status != gl.FALSE {
		return true, ""
	}
	var logLength int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(s), logLength, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (b *Backend) DeleteShader(s gpu.Shader) { gl.DeleteShader(uint32(s)) }

func (b *Backend) CreateProgram() gpu.Program { return gpu.Program(gl.CreateProgram()) }

func (b *Backend) AttachShader(p gpu.Program, s gpu.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (b *Backend) LinkProgram(p gpu.Program) { gl.LinkProgram(uint32(p)) }

func (b *Backend) ProgramInfo(p gpu.Program) (bool, string) {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	if status != gl.FALSE {
		return true, ""
	}
	var logLength int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(p), logLength, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (b *Backend) DeleteProgram(p gpu.Program) { gl.DeleteProgram(uint32(p)) }

func (b *Backend) UseProgram(p gpu.Program) { gl.UseProgram(uint32(p)) }

func (b *Backend) GetUniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (b *Backend) GetAttribLocation(p gpu.Program, name string) gpu.AttribLocation {
	return gpu.AttribLocation(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (b *Backend) EnableVertexAttribArray(loc gpu.AttribLocation) {
	gl.EnableVertexAttribArray(uint32(loc))
}

func (b *Backend) VertexAttribPointer(loc gpu.AttribLocation, size int, typ gpu.ScalarType, normalized bool, stride, offset int) {
	gl.VertexAttribPointerWithOffset(uint32(loc), int32(size), scalar(typ), normalized, int32(stride), uintptr(offset))
}

func (b *Backend) Uniform1f(loc gpu.UniformLocation, v float32) { gl.Uniform1f(int32(loc), v) }

func (b *Backend) Uniform1i(loc gpu.UniformLocation, v int32) { gl.Uniform1i(int32(loc), v) }

func (b *Backend) Uniform2fv(loc gpu.UniformLocation, v [2]float32) {
	gl.Uniform2fv(int32(loc), 1, &v[0])
}

func (b *Backend) Uniform3fv(loc gpu.UniformLocation, v [3]float32) {
	gl.Uniform3fv(int32(loc), 1, &v[0])
}

func (b *Backend) Uniform4fv(loc gpu.UniformLocation, v [4]float32) {
	gl.Uniform4fv(int32(loc), 1, &v[0])
}

func (b *Backend) UniformMatrix4fv(loc gpu.UniformLocation, transpose bool, m [16]float32) {
	gl.UniformMatrix4fv(int32(loc), 1, transpose, &m[0])
}

func (b *Backend) ClearColor(r, g, bl, a float32) { gl.ClearColor(r, g, bl, a) }

func (b *Backend) ClearDepth(d float64) { gl.ClearDepth(d) }

func (b *Backend) Clear(mask gpu.ClearMask) {
	var bits uint32
	if mask&gpu.ClearColorBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gpu.ClearDepthBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (b *Backend) DrawElements(mode gpu.DrawMode, count int, typ gpu.ScalarType, offset int) {
	glMode := uint32(gl.TRIANGLES)
	if mode == gpu.Lines {
		glMode = gl.LINES
	}
	gl.DrawElementsWithOffset(glMode, int32(count), scalar(typ), uintptr(offset))
}

func (b *Backend) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

// ShaderPrelude maps the WebGL-style attribute/varying/gl_FragColor
// vocabulary of effect bodies onto GLSL 4.10 core.
func (b *Backend) ShaderPrelude(stage gpu.Stage) string {
	if stage == gpu.StageFragment {
		return fragmentPrelude
	}
	return vertexPrelude
}

// ReadPixels returns the default framebuffer's back buffer as RGBA, bottom
// row first. Call it after rendering and before swapping: the back buffer
// is undefined once it has been presented.
func (b *Backend) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels
}

var _ gpu.Backend = (*Backend)(nil)
