package gradient

import (
	_ "embed"
	"strings"
)

var (
	//go:embed shaders/noise.glsl
	noiseSource string
	//go:embed shaders/blend.glsl
	blendSource string
	//go:embed shaders/vertex.glsl
	vertexBody string
	//go:embed shaders/fragment.glsl
	fragmentBody string
)

// VertexSource is the vertex body: simplex noise and blend helpers followed
// by the wave displacement and color mixing.
func VertexSource() string {
	return strings.Join([]string{noiseSource, blendSource, vertexBody}, "\n\n")
}

// FragmentSource is the fragment body.
func FragmentSource() string {
	return fragmentBody
}
