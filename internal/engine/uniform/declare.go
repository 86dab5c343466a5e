package uniform

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
)

// DefaultStructPrefix is stripped from a struct uniform's name to derive its
// GLSL type name, so u_global becomes Global.
const DefaultStructPrefix = "u_"

// Declarer generates GLSL declarations.
type Declarer struct {
	// StructPrefix is removed from the front of a struct uniform's name
	// before the type name is capitalized.
	StructPrefix string
}

// DefaultDeclarer uses DefaultStructPrefix.
var DefaultDeclarer = Declarer{StructPrefix: DefaultStructPrefix}

// Declare returns the declaration of v under name for stage using the default
// struct prefix. See Declarer.Declare.
func Declare(name string, v Value, stage gpu.Stage, arrayLength int) (string, bool) {
	return DefaultDeclarer.Declare(name, v, stage, arrayLength)
}

// Declare returns the declaration of v under name for stage. arrayLength > 0
// declares name as an array of that length. It reports false when v is
// excluded from stage.
func (d Declarer) Declare(name string, v Value, stage gpu.Stage, arrayLength int) (string, bool) {
	if excl := v.ExcludedFrom(); excl != gpu.StageNone && excl == stage {
		return "", false
	}

	switch u := v.(type) {
	case *Array:
		return d.declareArray(name, u, stage), true
	case *Struct:
		return d.declareStruct(name, u, stage, arrayLength), true
	default:
		return fmt.Sprintf("uniform %s %s%s;", v.Kind(), name, arraySuffix(arrayLength)), true
	}
}

// declareArray delegates to the first element with the array length and adds
// an int constant for bounded loops in the shader.
func (d Declarer) declareArray(name string, a *Array, stage gpu.Stage) string {
	length := fmt.Sprintf("const int %s_length = %d;", name, a.Len())
	if a.Len() == 0 {
		return length
	}
	first, ok := d.Declare(name, a.At(0), stage, a.Len())
	if !ok {
		return length
	}
	return first + "\n" + length
}

func (d Declarer) declareStruct(name string, s *Struct, stage gpu.Stage, arrayLength int) string {
	var body strings.Builder
	for _, f := range s.Fields() {
		decl, ok := d.Declare(f.Name, f.Value, stage, 0)
		if !ok {
			continue
		}
		body.WriteString(strings.TrimPrefix(decl, "uniform"))
	}
	return fmt.Sprintf("uniform struct %s {\n  %s\n} %s%s;",
		d.TypeName(name), body.String(), name, arraySuffix(arrayLength))
}

// TypeName derives a struct type name from a uniform name.
func (d Declarer) TypeName(name string) string {
	base := strings.TrimPrefix(name, d.StructPrefix)
	r, size := utf8.DecodeRuneInString(base)
	if size == 0 {
		return base
	}
	return string(unicode.ToUpper(r)) + base[size:]
}

// DeclareSet returns the declarations of every entry of s for stage, one per
// line, skipping excluded entries.
func (d Declarer) DeclareSet(s *Set, stage gpu.Stage) string {
	var lines []string
	for _, f := range s.Fields() {
		if decl, ok := d.Declare(f.Name, f.Value, stage, 0); ok {
			lines = append(lines, decl)
		}
	}
	return strings.Join(lines, "\n")
}

func arraySuffix(n int) string {
	if n > 0 {
		return fmt.Sprintf("[%d]", n)
	}
	return ""
}
