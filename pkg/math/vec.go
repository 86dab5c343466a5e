// Package math provides the small vector and matrix types the renderer needs.
package math

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// AddScalar returns v with s added to both components.
func (v Vec2) AddScalar(s float32) Vec2 {
	return Vec2{v.X + s, v.Y + s}
}

// Array returns the components in uniform order.
func (v Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}

// Vec3 is a 3D vector, also used for RGB colors.
type Vec3 struct {
	X, Y, Z float32
}

// Array returns the components in uniform order.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// RGB builds a color from 8-bit channels.
func RGB(r, g, b uint8) Vec3 {
	return Vec3{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}
