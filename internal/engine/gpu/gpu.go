// Package gpu defines the graphics API surface consumed by the engine.
//
// Any backend exposing this surface (desktop OpenGL, GLES, an in-memory
// recorder for tests) can drive the uniform, shader, geometry and renderer
// packages. Handles are plain integers; 0 is the null handle and -1 marks a
// location the program does not expose.
package gpu

// Buffer is a backend buffer handle.
type Buffer uint32

// Shader is a backend shader stage handle.
type Shader uint32

// Program is a backend linked-program handle.
type Program uint32

// UniformLocation identifies a uniform leaf inside a linked program.
type UniformLocation int32

// AttribLocation identifies a vertex attribute inside a linked program.
type AttribLocation int32

// NoUniform and NoAttrib are returned for names the program does not expose.
const (
	NoUniform UniformLocation = -1
	NoAttrib  AttribLocation  = -1
)

// Valid reports whether the location resolved.
func (l UniformLocation) Valid() bool { return l >= 0 }

// Valid reports whether the location resolved.
func (l AttribLocation) Valid() bool { return l >= 0 }

// Stage is a shader stage.
type Stage string

const (
	// StageNone never matches a real stage; it is the zero exclusion tag.
	StageNone     Stage = ""
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
)

// BufferTarget classifies what a buffer is bound as.
type BufferTarget int

const (
	TargetNone BufferTarget = iota
	TargetVertex
	TargetIndex
)

func (t BufferTarget) String() string {
	switch t {
	case TargetVertex:
		return "vertex"
	case TargetIndex:
		return "index"
	default:
		return "none"
	}
}

// ScalarType is the element type of buffer storage.
type ScalarType int

const (
	Float32 ScalarType = iota
	Uint16
)

// Usage is a buffer upload hint.
type Usage int

// StaticDraw marks data uploaded once and drawn many times.
const StaticDraw Usage = 0

// DrawMode is the primitive assembly mode for indexed draws.
type DrawMode int

const (
	Triangles DrawMode = iota
	Lines
)

// ClearMask selects which surface planes Clear resets.
type ClearMask uint32

const (
	ClearColorBit ClearMask = 1 << iota
	ClearDepthBit
)

// Backend is the graphics API surface. Implementations are not required to
// be safe for concurrent use; callers drive them from a single thread.
type Backend interface {
	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	BindBuffer(target BufferTarget, b Buffer)
	BufferFloat32(target BufferTarget, data []float32, usage Usage)
	BufferUint16(target BufferTarget, data []uint16, usage Usage)

	CreateShader(stage Stage) Shader
	ShaderSource(s Shader, source string)
	CompileShader(s Shader)
	// ShaderInfo returns the compile status and the info log.
	ShaderInfo(s Shader) (bool, string)
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	// ProgramInfo returns the link status and the info log.
	ProgramInfo(p Program) (bool, string)
	DeleteProgram(p Program)
	UseProgram(p Program)

	GetUniformLocation(p Program, name string) UniformLocation
	GetAttribLocation(p Program, name string) AttribLocation
	EnableVertexAttribArray(loc AttribLocation)
	VertexAttribPointer(loc AttribLocation, size int, typ ScalarType, normalized bool, stride, offset int)

	Uniform1f(loc UniformLocation, v float32)
	Uniform1i(loc UniformLocation, v int32)
	Uniform2fv(loc UniformLocation, v [2]float32)
	Uniform3fv(loc UniformLocation, v [3]float32)
	Uniform4fv(loc UniformLocation, v [4]float32)
	UniformMatrix4fv(loc UniformLocation, transpose bool, m [16]float32)

	ClearColor(r, g, b, a float32)
	ClearDepth(d float64)
	Clear(mask ClearMask)
	DrawElements(mode DrawMode, count int, typ ScalarType, offset int)
	Viewport(x, y, width, height int)

	// ShaderPrelude returns the dialect header placed before everything else
	// in a stage's source, e.g. a #version line. It may be empty.
	ShaderPrelude(stage Stage) string
}
