package uniform

import "strconv"

// Leaf is a scalar, vector or matrix uniform with its fully qualified GLSL
// name, e.g. u_waveLayers[1].noiseFreq.
type Leaf struct {
	Name  string
	Value Value
}

// Flatten walks v depth-first and calls visit for every leaf. Arrays recurse
// as name[i] and structs as name.field.
func Flatten(name string, v Value, visit func(Leaf)) {
	switch u := v.(type) {
	case *Array:
		for i, e := range u.Elements() {
			Flatten(name+"["+strconv.Itoa(i)+"]", e, visit)
		}
	case *Struct:
		for _, f := range u.Fields() {
			Flatten(name+"."+f.Name, f.Value, visit)
		}
	default:
		visit(Leaf{Name: name, Value: v})
	}
}

// Leaves flattens every entry of s in order.
func Leaves(s *Set) []Leaf {
	var out []Leaf
	for _, f := range s.Fields() {
		Flatten(f.Name, f.Value, func(l Leaf) {
			out = append(out, l)
		})
	}
	return out
}
