// Package uniform models shader uniform values on the host side.
//
// Values form a closed set of variants: the scalar, vector and matrix leaves
// plus the Array and Struct containers. Every variant can emit its GLSL
// declaration for a stage and push its current value to the backend. The
// driver mutates values between frames; the renderer syncs them once per draw.
package uniform

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
	"github.com/Faultbox/meshgradient/pkg/math"
)

// ErrMixedArray is returned when an Array would hold more than one variant.
var ErrMixedArray = errors.New("uniform: array elements must share one kind")

// Kind identifies the variant of a Value.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindVec2
	KindVec3
	KindVec4
	KindMat4
	KindArray
	KindStruct
)

// String returns the GLSL type keyword for leaf kinds.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	case KindVec4:
		return "vec4"
	case KindMat4:
		return "mat4"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is one uniform. The set of implementations is closed to this package.
type Value interface {
	Kind() Kind
	// ExcludedFrom returns the stage this uniform is not declared in.
	ExcludedFrom() gpu.Stage
	sealed()
}

// Float is a float uniform.
type Float struct {
	Value       float32
	ExcludeFrom gpu.Stage
}

// Int is an int uniform.
type Int struct {
	Value       int32
	ExcludeFrom gpu.Stage
}

// Vec2 is a vec2 uniform.
type Vec2 struct {
	Value       [2]float32
	ExcludeFrom gpu.Stage
}

// Vec3 is a vec3 uniform.
type Vec3 struct {
	Value       [3]float32
	ExcludeFrom gpu.Stage
}

// Vec4 is a vec4 uniform.
type Vec4 struct {
	Value       [4]float32
	ExcludeFrom gpu.Stage
}

// Mat4 is a mat4 uniform. Transpose is forwarded to the backend on sync.
type Mat4 struct {
	Value       math.Mat4
	Transpose   bool
	ExcludeFrom gpu.Stage
}

func (*Float) Kind() Kind { return KindFloat }
func (*Int) Kind() Kind   { return KindInt }
func (*Vec2) Kind() Kind  { return KindVec2 }
func (*Vec3) Kind() Kind  { return KindVec3 }
func (*Vec4) Kind() Kind  { return KindVec4 }
func (*Mat4) Kind() Kind  { return KindMat4 }

func (u *Float) ExcludedFrom() gpu.Stage { return u.ExcludeFrom }
func (u *Int) ExcludedFrom() gpu.Stage   { return u.ExcludeFrom }
func (u *Vec2) ExcludedFrom() gpu.Stage  { return u.ExcludeFrom }
func (u *Vec3) ExcludedFrom() gpu.Stage  { return u.ExcludeFrom }
func (u *Vec4) ExcludedFrom() gpu.Stage  { return u.ExcludeFrom }
func (u *Mat4) ExcludedFrom() gpu.Stage  { return u.ExcludeFrom }

func (*Float) sealed() {}
func (*Int) sealed()   {}
func (*Vec2) sealed()  {}
func (*Vec3) sealed()  {}
func (*Vec4) sealed()  {}
func (*Mat4) sealed()  {}

// Array is a homogeneous list of uniforms. Shaders see it as name[len] plus
// a name_length constant.
type Array struct {
	ExcludeFrom gpu.Stage
	elems       []Value
}

// NewArray builds an array from elems, which must all share one kind.
func NewArray(exclude gpu.Stage, elems ...Value) (*Array, error) {
	a := &Array{ExcludeFrom: exclude}
	for _, e := range elems {
		if err := a.Append(e); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Append adds v to the end of the array.
func (a *Array) Append(v Value) error {
	if len(a.elems) > 0 && a.elems[0].Kind() != v.Kind() {
		return fmt.Errorf("%w: have %s, got %s", ErrMixedArray, a.elems[0].Kind(), v.Kind())
	}
	a.elems = append(a.elems, v)
	return nil
}

// Elements returns the array elements in index order.
func (a *Array) Elements() []Value { return a.elems }

// Len returns the element count.
func (a *Array) Len() int { return len(a.elems) }

// At returns element i.
func (a *Array) At(i int) Value { return a.elems[i] }

func (*Array) Kind() Kind                { return KindArray }
func (a *Array) ExcludedFrom() gpu.Stage { return a.ExcludeFrom }
func (*Array) sealed()                   {}

// Field is a named member of a Struct or Set.
type Field struct {
	Name  string
	Value Value
}

// F is shorthand for a Field literal.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// fields is an insertion-ordered name to value mapping.
type fields struct {
	list  []Field
	index map[string]int
}

func (f *fields) set(name string, v Value) {
	if f.index == nil {
		f.index = make(map[string]int)
	}
	if i, ok := f.index[name]; ok {
		f.list[i].Value = v
		return
	}
	f.index[name] = len(f.list)
	f.list = append(f.list, Field{Name: name, Value: v})
}

func (f *fields) get(name string) Value {
	if i, ok := f.index[name]; ok {
		return f.list[i].Value
	}
	return nil
}

// Struct is an ordered set of named uniforms declared as a GLSL struct.
type Struct struct {
	ExcludeFrom gpu.Stage
	fields
}

// NewStruct builds a struct with the given fields in order.
func NewStruct(exclude gpu.Stage, members ...Field) *Struct {
	s := &Struct{ExcludeFrom: exclude}
	for _, m := range members {
		s.set(m.Name, m.Value)
	}
	return s
}

// Fields returns the members in declaration order.
func (s *Struct) Fields() []Field { return s.list }

// Field returns the member called name, or nil.
func (s *Struct) Field(name string) Value { return s.get(name) }

// Set replaces or appends a member.
func (s *Struct) Set(name string, v Value) { s.set(name, v) }

func (*Struct) Kind() Kind                { return KindStruct }
func (s *Struct) ExcludedFrom() gpu.Stage { return s.ExcludeFrom }
func (*Struct) sealed()                   {}

// Set is the top-level uniform mapping handed to a shader program.
// Iteration order is insertion order.
type Set struct {
	fields
}

// NewSet builds a set from members in order.
func NewSet(members ...Field) *Set {
	s := &Set{}
	for _, m := range members {
		s.set(m.Name, m.Value)
	}
	return s
}

// Add inserts or replaces name. A replaced entry keeps its position.
func (s *Set) Add(name string, v Value) { s.set(name, v) }

// Get returns the uniform called name, or nil.
func (s *Set) Get(name string) Value { return s.get(name) }

// Fields returns the entries in order.
func (s *Set) Fields() []Field { return s.list }

// Len returns the entry count.
func (s *Set) Len() int { return len(s.list) }

// Sync pushes the current value of a leaf uniform to loc. Containers are a
// no-op: their leaves are synced individually after flattening.
func Sync(b gpu.Backend, loc gpu.UniformLocation, v Value) {
	if !loc.Valid() {
		return
	}
	switch u := v.(type) {
	case *Float:
		b.Uniform1f(loc, u.Value)
	case *Int:
		b.Uniform1i(loc, u.Value)
	case *Vec2:
		b.Uniform2fv(loc, u.Value)
	case *Vec3:
		b.Uniform3fv(loc, u.Value)
	case *Vec4:
		b.Uniform4fv(loc, u.Value)
	case *Mat4:
		b.UniformMatrix4fv(loc, u.Transpose, u.Value)
	case *Array, *Struct:
	}
}
