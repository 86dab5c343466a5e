package gradient

import (
	stdmath "math"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
	"github.com/Faultbox/meshgradient/internal/engine/uniform"
	"github.com/Faultbox/meshgradient/pkg/math"
)

// Uniform names read by the gradient shaders.
const (
	UniformTime         = "u_time"
	UniformShadowPower  = "u_shadow_power"
	UniformDarkenTop    = "u_darken_top"
	UniformActiveColors = "u_active_colors"
	UniformGlobal       = "u_global"
	UniformVertDeform   = "u_vertDeform"
	UniformBaseColor    = "u_baseColor"
	UniformWaveLayers   = "u_waveLayers"
)

// Base noise frequencies of u_global.
var baseFrequency = math.Vec2{X: 0.00014, Y: 0.00029}

// uniforms keeps the leaves the driver writes between frames.
type uniforms struct {
	set          *uniform.Set
	time         *uniform.Float
	shadowPower  *uniform.Float
	activeColors *uniform.Vec4
	noiseFreq    *uniform.Vec2
}

func f32(v float64) *uniform.Float { return &uniform.Float{Value: float32(v)} }

func vec2(x, y float64) *uniform.Vec2 {
	return &uniform.Vec2{Value: [2]float32{float32(x), float32(y)}}
}

// newUniforms builds the gradient's uniform set; colors[0] is the base
// color, each further color becomes a wave layer.
func newUniforms(colors []math.Vec3, o Options) (*uniforms, error) {
	u := &uniforms{
		time:         f32(0),
		shadowPower:  f32(10),
		activeColors: &uniform.Vec4{Value: [4]float32{1, 1, 1, 1}},
		noiseFreq:    &uniform.Vec2{Value: baseFrequency.Array()},
	}

	darkenTop := 0.0
	if o.DarkenTop {
		darkenTop = 1
	}

	n := float64(len(colors))
	layers, err := uniform.NewArray(gpu.StageFragment)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(colors); i++ {
		e := float64(i)
		layer := uniform.NewStruct(gpu.StageNone,
			uniform.F("color", &uniform.Vec3{Value: colors[i].Array()}),
			uniform.F("noiseFreq", vec2(2+e/n, 3+e/n)),
			uniform.F("noiseSpeed", f32(11+0.3*e)),
			uniform.F("noiseFlow", f32(6.5+0.3*e)),
			uniform.F("noiseSeed", f32(o.Seed+10*e)),
			uniform.F("noiseFloor", f32(0.1)),
			uniform.F("noiseCeil", f32(0.63+0.07*e)),
		)
		if err := layers.Append(layer); err != nil {
			return nil, err
		}
	}

	u.set = uniform.NewSet(
		uniform.F(UniformTime, u.time),
		uniform.F(UniformShadowPower, u.shadowPower),
		uniform.F(UniformDarkenTop, f32(darkenTop)),
		uniform.F(UniformActiveColors, u.activeColors),
		uniform.F(UniformGlobal, uniform.NewStruct(gpu.StageNone,
			uniform.F("noiseFreq", u.noiseFreq),
			uniform.F("noiseSpeed", f32(0.000005)),
		)),
		uniform.F(UniformVertDeform, uniform.NewStruct(gpu.StageFragment,
			uniform.F("incline", f32(stdmath.Tan(o.Angle))),
			uniform.F("offsetTop", f32(-0.5)),
			uniform.F("offsetBottom", f32(-0.5)),
			uniform.F("noiseFreq", vec2(3, 4)),
			uniform.F("noiseAmp", f32(o.Amplitude)),
			uniform.F("noiseSpeed", f32(10)),
			uniform.F("noiseFlow", f32(3)),
			uniform.F("noiseSeed", f32(o.Seed)),
		)),
		uniform.F(UniformBaseColor, &uniform.Vec3{Value: colors[0].Array(), ExcludeFrom: gpu.StageFragment}),
		uniform.F(UniformWaveLayers, layers),
	)
	return u, nil
}
