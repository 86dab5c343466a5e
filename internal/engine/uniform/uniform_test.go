package uniform

import (
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
	"github.com/Faultbox/meshgradient/internal/engine/gpu/gputest"
	"github.com/Faultbox/meshgradient/pkg/math"
)

func TestDeclareLeaves(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		length int
		want   string
	}{
		{"u_time", &Float{Value: 1}, 0, "uniform float u_time;"},
		{"u_count", &Int{Value: 3}, 0, "uniform int u_count;"},
		{"resolution", &Vec2{}, 0, "uniform vec2 resolution;"},
		{"u_baseColor", &Vec3{}, 0, "uniform vec3 u_baseColor;"},
		{"u_active_colors", &Vec4{}, 0, "uniform vec4 u_active_colors;"},
		{"projectionMatrix", &Mat4{Value: math.Identity()}, 0, "uniform mat4 projectionMatrix;"},
		{"u_points", &Vec2{}, 4, "uniform vec2 u_points[4];"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Declare(tt.name, tt.value, gpu.StageVertex, tt.length)
			if !ok {
				t.Fatal("declaration unexpectedly excluded")
			}
			if got != tt.want {
				t.Errorf("Declare() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeclareExcluded(t *testing.T) {
	s := NewStruct(gpu.StageFragment, F("a", &Float{}))
	a, err := NewArray(gpu.StageFragment, &Float{}, &Float{})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}

	values := map[string]Value{
		"float":  &Float{ExcludeFrom: gpu.StageFragment},
		"int":    &Int{ExcludeFrom: gpu.StageFragment},
		"vec2":   &Vec2{ExcludeFrom: gpu.StageFragment},
		"vec3":   &Vec3{ExcludeFrom: gpu.StageFragment},
		"vec4":   &Vec4{ExcludeFrom: gpu.StageFragment},
		"mat4":   &Mat4{ExcludeFrom: gpu.StageFragment},
		"array":  a,
		"struct": s,
	}

	for kind, v := range values {
		t.Run(kind, func(t *testing.T) {
			if decl, ok := Declare("u_x", v, gpu.StageFragment, 0); ok {
				t.Errorf("expected no declaration for excluded stage, got %q", decl)
			}
			decl, ok := Declare("u_x", v, gpu.StageVertex, 0)
			if !ok {
				t.Fatal("expected a declaration for the other stage")
			}
			if !strings.HasPrefix(decl, "uniform ") || !strings.HasSuffix(decl, ";") {
				t.Errorf("malformed declaration %q", decl)
			}
		})
	}
}

func TestDeclareStruct(t *testing.T) {
	global := NewStruct(gpu.StageNone,
		F("noiseFreq", &Vec2{Value: [2]float32{0.00014, 0.00029}}),
		F("noiseSpeed", &Float{Value: 0.000005}),
	)

	got, ok := Declare("u_global", global, gpu.StageFragment, 0)
	if !ok {
		t.Fatal("struct unexpectedly excluded")
	}
	want := "uniform struct Global {\n   vec2 noiseFreq; float noiseSpeed;\n} u_global;"
	if got != want {
		t.Errorf("Declare() =\n%s\nwant\n%s", got, want)
	}
}

func TestDeclareStructSkipsExcludedFields(t *testing.T) {
	s := NewStruct(gpu.StageNone,
		F("shared", &Float{}),
		F("vertexOnly", &Float{ExcludeFrom: gpu.StageFragment}),
	)
	got, _ := Declare("u_mix", s, gpu.StageFragment, 0)
	if strings.Contains(got, "vertexOnly") {
		t.Errorf("excluded field leaked into %q", got)
	}
	if !strings.Contains(got, "float shared;") {
		t.Errorf("shared field missing from %q", got)
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"u_", "u_global", "Global"},
		{"u_", "u_vertDeform", "VertDeform"},
		{"u_", "u_waveLayers", "WaveLayers"},
		{"u_", "plain", "Plain"},
		{"uni", "uniLight", "Light"},
		{"", "u_global", "U_global"},
		{"u_", "u_", ""},
	}
	for _, tt := range tests {
		d := Declarer{StructPrefix: tt.prefix}
		if got := d.TypeName(tt.name); got != tt.want {
			t.Errorf("TypeName(%q) with prefix %q = %q, want %q", tt.name, tt.prefix, got, tt.want)
		}
	}
}

func waveLayer(seed float32) *Struct {
	return NewStruct(gpu.StageNone,
		F("color", &Vec3{}),
		F("noiseFreq", &Vec2{}),
		F("noiseSeed", &Float{Value: seed}),
	)
}

func TestDeclareArrayOfStructs(t *testing.T) {
	layers, err := NewArray(gpu.StageFragment, waveLayer(10), waveLayer(20), waveLayer(30))
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}

	got, ok := Declare("u_waveLayers", layers, gpu.StageVertex, 0)
	if !ok {
		t.Fatal("array unexpectedly excluded")
	}
	if !strings.Contains(got, "u_waveLayers_length = 3") {
		t.Errorf("missing length constant in %q", got)
	}
	if n := strings.Count(got, "struct "); n != 1 {
		t.Errorf("expected exactly one struct body, got %d in %q", n, got)
	}
	if !strings.Contains(got, "} u_waveLayers[3];") {
		t.Errorf("expected array-sized struct declaration in %q", got)
	}
	if !strings.Contains(got, "struct WaveLayers {") {
		t.Errorf("expected WaveLayers type in %q", got)
	}

	if _, ok := Declare("u_waveLayers", layers, gpu.StageFragment, 0); ok {
		t.Error("array should be excluded from the fragment stage")
	}
}

func TestDeclareArrayOfLeaves(t *testing.T) {
	a, err := NewArray(gpu.StageNone, &Float{}, &Float{})
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	got, _ := Declare("u_weights", a, gpu.StageVertex, 0)
	want := "uniform float u_weights[2];\nconst int u_weights_length = 2;"
	if got != want {
		t.Errorf("Declare() = %q, want %q", got, want)
	}
}

func TestDeclareEmptyArray(t *testing.T) {
	a, _ := NewArray(gpu.StageNone)
	got, ok := Declare("u_none", a, gpu.StageVertex, 0)
	if !ok {
		t.Fatal("empty array unexpectedly excluded")
	}
	if got != "const int u_none_length = 0;" {
		t.Errorf("Declare() = %q", got)
	}
}

func TestNewArrayRejectsMixedKinds(t *testing.T) {
	_, err := NewArray(gpu.StageNone, &Float{}, &Vec2{})
	if !errors.Is(err, ErrMixedArray) {
		t.Fatalf("expected ErrMixedArray, got %v", err)
	}

	a, _ := NewArray(gpu.StageNone, &Float{})
	if err := a.Append(&Int{}); !errors.Is(err, ErrMixedArray) {
		t.Errorf("Append: expected ErrMixedArray, got %v", err)
	}
	if a.Len() != 1 {
		t.Errorf("rejected element must not be stored, len = %d", a.Len())
	}
}

func TestDeclareSet(t *testing.T) {
	set := NewSet(
		F("u_time", &Float{}),
		F("u_baseColor", &Vec3{ExcludeFrom: gpu.StageFragment}),
		F("u_darken_top", &Float{}),
	)

	vertex := DefaultDeclarer.DeclareSet(set, gpu.StageVertex)
	wantVertex := "uniform float u_time;\nuniform vec3 u_baseColor;\nuniform float u_darken_top;"
	if vertex != wantVertex {
		t.Errorf("vertex set = %q, want %q", vertex, wantVertex)
	}

	fragment := DefaultDeclarer.DeclareSet(set, gpu.StageFragment)
	wantFragment := "uniform float u_time;\nuniform float u_darken_top;"
	if fragment != wantFragment {
		t.Errorf("fragment set = %q, want %q", fragment, wantFragment)
	}
}

func TestSetKeepsInsertionOrder(t *testing.T) {
	set := NewSet(F("b", &Float{}), F("a", &Float{}))
	replacement := &Float{Value: 2}
	set.Add("b", replacement)
	set.Add("c", &Int{})

	fields := set.Fields()
	if len(fields) != 3 || fields[0].Name != "b" || fields[1].Name != "a" || fields[2].Name != "c" {
		t.Fatalf("unexpected order %v", fields)
	}
	if set.Get("b") != replacement {
		t.Error("Add should replace an existing entry in place")
	}
	if set.Get("missing") != nil {
		t.Error("Get of a missing name should be nil")
	}
}

func TestFlatten(t *testing.T) {
	layers, _ := NewArray(gpu.StageNone, waveLayer(1), waveLayer(2))
	set := NewSet(
		F("u_time", &Float{}),
		F("u_global", NewStruct(gpu.StageNone, F("noiseFreq", &Vec2{}), F("noiseSpeed", &Float{}))),
		F("u_waveLayers", layers),
	)

	var names []string
	for _, l := range Leaves(set) {
		names = append(names, l.Name)
	}

	want := []string{
		"u_time",
		"u_global.noiseFreq",
		"u_global.noiseSpeed",
		"u_waveLayers[0].color",
		"u_waveLayers[0].noiseFreq",
		"u_waveLayers[0].noiseSeed",
		"u_waveLayers[1].color",
		"u_waveLayers[1].noiseFreq",
		"u_waveLayers[1].noiseSeed",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Leaves() = %v, want %v", names, want)
	}
}

func TestSync(t *testing.T) {
	b := gputest.New()
	p := b.CreateProgram()

	m := math.Identity()
	m[12] = 5
	values := []struct {
		name string
		v    Value
		want any
	}{
		{"f", &Float{Value: 0}, float32(0)},
		{"i", &Int{Value: 7}, int32(7)},
		{"v2", &Vec2{Value: [2]float32{1, 2}}, [2]float32{1, 2}},
		{"v3", &Vec3{Value: [3]float32{1, 2, 3}}, [3]float32{1, 2, 3}},
		{"v4", &Vec4{Value: [4]float32{1, 1, 0, 1}}, [4]float32{1, 1, 0, 1}},
		{"m", &Mat4{Value: m}, [16]float32(m)},
	}

	for _, tt := range values {
		loc := b.GetUniformLocation(p, tt.name)
		Sync(b, loc, tt.v)
		if got := b.Uniforms[tt.name]; got != tt.want {
			t.Errorf("%s: synced %v, want %v", tt.name, got, tt.want)
		}
	}

	b.Reset()
	Sync(b, gpu.NoUniform, &Float{Value: 1})
	Sync(b, 0, NewStruct(gpu.StageNone))
	arr, _ := NewArray(gpu.StageNone)
	Sync(b, 0, arr)
	if len(b.Calls) != 0 {
		t.Errorf("expected no backend calls, got %v", b.Calls)
	}
}

func TestSyncMat4Transpose(t *testing.T) {
	b := gputest.New()
	loc := b.GetUniformLocation(b.CreateProgram(), "m")
	Sync(b, loc, &Mat4{Value: math.Identity(), Transpose: true})

	call, ok := b.Last("UniformMatrix4fv")
	if !ok {
		t.Fatal("UniformMatrix4fv not called")
	}
	if call.Args[1] != true {
		t.Errorf("transpose flag not forwarded: %v", call)
	}
}
