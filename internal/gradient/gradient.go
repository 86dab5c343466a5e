// Package gradient drives the animated mesh gradient: it owns the plane, its
// program and uniforms, and advances time once per display refresh.
package gradient

import (
	"fmt"
	stdmath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/meshgradient/internal/engine/geometry"
	"github.com/Faultbox/meshgradient/internal/engine/renderer"
	"github.com/Faultbox/meshgradient/internal/engine/shader"
	"github.com/Faultbox/meshgradient/internal/logger"
	"github.com/Faultbox/meshgradient/pkg/math"
)

const (
	// StartTime is the animation clock's initial value in milliseconds.
	StartTime = 1253106
	// MaxStep caps the time advanced by one frame, in milliseconds.
	MaxStep = 1000.0 / 15
	// FrequencyStep is the noise frequency change of one +/- key press.
	FrequencyStep = 0.00001
	// narrowWidth is the width below which shadows are softened.
	narrowWidth = 600
)

// Gradient animates one full-surface mesh.
type Gradient struct {
	ctx      *renderer.Context
	opts     Options
	program  *shader.Program
	plane    *geometry.Plane
	mesh     *renderer.Mesh
	uniforms *uniforms
	log      *zap.Logger

	width, height int
	xSegs, ySegs  int
	colorCount    int

	time      float64
	lastFrame float64
	playing   bool
	done      bool
}

// New builds the gradient's program and plane on ctx and sizes them to the
// surface. A shader build failure is not returned: it is logged and the
// gradient draws nothing, see Program().Err().
func New(ctx *renderer.Context, opts Options) (*Gradient, error) {
	colors, err := parseColors(opts.Colors)
	if err != nil {
		return nil, err
	}
	u, err := newUniforms(colors, opts)
	if err != nil {
		return nil, err
	}

	g := &Gradient{
		ctx:        ctx,
		opts:       opts,
		uniforms:   u,
		log:        logger.Named("gradient"),
		colorCount: len(colors),
		time:       StartTime,
		playing:    true,
	}
	g.program = ctx.NewProgram(VertexSource(), FragmentSource(), u.set)
	if err := g.program.Err(); err != nil {
		g.log.Warn("gradient program unavailable, frames will be blank", zap.Error(err))
	}

	w, h := ctx.Size()
	if err := g.Resize(w, h); err != nil {
		g.program.Release()
		return nil, err
	}

	g.log.Info("gradient ready",
		zap.Int("colors", len(colors)),
		zap.Int("width", g.width),
		zap.Int("height", g.height),
		zap.Bool("static", opts.Static),
	)
	return g, nil
}

// Resize fits the gradient to a surface of width by surfaceHeight. The
// drawn height is Options.Height unless that is 0; a fixed height is also
// applied to the surface. Nothing changes when an error is returned.
func (g *Gradient) Resize(width, surfaceHeight int) error {
	height := g.opts.Height
	if height == 0 {
		height = surfaceHeight
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", renderer.ErrInvalidSize, width, height)
	}

	xSegs, ySegs := segments(width, height, g.opts.Density)

	if g.plane == nil {
		plane, err := geometry.NewPlane(g.ctx.Backend(), float32(width), float32(height), xSegs, ySegs, geometry.OrientationXZ)
		if err != nil {
			return fmt.Errorf("gradient plane: %w", err)
		}
		g.plane = plane
		g.mesh = g.ctx.NewMesh(g.program, plane)
		g.mesh.Wireframe = g.opts.Wireframe
	} else {
		if err := g.plane.SetTopology(xSegs, ySegs); err != nil {
			return fmt.Errorf("gradient plane: %w", err)
		}
		if err := g.plane.SetSize(float32(width), float32(height), geometry.OrientationXZ); err != nil {
			return fmt.Errorf("gradient plane: %w", err)
		}
	}

	if err := g.ctx.SetSize(width, height); err != nil {
		return err
	}
	g.ctx.SetOrthographicCamera(renderer.DefaultCamera)

	g.width, g.height = width, height
	g.xSegs, g.ySegs = xSegs, ySegs
	if width < narrowWidth {
		g.uniforms.shadowPower.Value = 5
	} else {
		g.uniforms.shadowPower.Value = 6
	}

	g.log.Debug("gradient resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("x_segments", xSegs),
		zap.Int("y_segments", ySegs),
	)
	return nil
}

// segments returns ceil(size*density) per axis, scaled down uniformly when
// the grid would exceed what a 16-bit index buffer addresses.
func segments(width, height int, density [2]float64) (int, int) {
	x := max(1, int(stdmath.Ceil(float64(width)*density[0])))
	y := max(1, int(stdmath.Ceil(float64(height)*density[1])))
	for (x+1)*(y+1) > geometry.MaxVertices {
		s := stdmath.Sqrt(float64(geometry.MaxVertices) / float64((x+1)*(y+1)))
		x = max(1, int(float64(x)*s))
		y = max(1, int(float64(y)*s))
	}
	return x, y
}

// Frame handles one display refresh at timestamp milliseconds and reports
// whether it rendered. Paused gradients and frames landing on an even
// millisecond are skipped. A static gradient renders once more after its
// first frame and is then done.
func (g *Gradient) Frame(timestamp float64) bool {
	if g.done {
		return false
	}

	rendered := false
	if g.playing && stdmath.Mod(timestamp, 2) != 0 {
		g.time += stdmath.Min(timestamp-g.lastFrame, MaxStep)
		g.lastFrame = timestamp
		g.uniforms.time.Value = float32(g.time)
		g.ctx.Render()
		rendered = true
	}

	if g.lastFrame != 0 && g.opts.Static {
		g.ctx.Render()
		g.done = true
		g.playing = false
		rendered = true
	}
	return rendered
}

// Redraw renders the current state without advancing time.
func (g *Gradient) Redraw() {
	g.ctx.Render()
}

// Play resumes the animation. It has no effect once a static gradient is
// done.
func (g *Gradient) Play() {
	if !g.done {
		g.playing = true
	}
}

// Pause stops advancing time.
func (g *Gradient) Pause() { g.playing = false }

// TogglePlay flips between Play and Pause.
func (g *Gradient) TogglePlay() {
	if g.playing {
		g.Pause()
	} else {
		g.Play()
	}
}

// Playing reports whether frames advance time.
func (g *Gradient) Playing() bool { return g.playing }

// Done reports whether a static gradient has finished.
func (g *Gradient) Done() bool { return g.done }

// Time returns the animation clock in milliseconds.
func (g *Gradient) Time() float64 { return g.time }

// ToggleColor switches color i (0 is the base color) on or off.
func (g *Gradient) ToggleColor(i int) error {
	active := &g.uniforms.activeColors.Value
	if i < 0 || i >= g.colorCount {
		return fmt.Errorf("%w: %d", ErrColorIndex, i)
	}
	if active[i] == 0 {
		active[i] = 1
	} else {
		active[i] = 0
	}
	g.log.Debug("color toggled", zap.Int("index", i), zap.Bool("active", active[i] == 1))
	return nil
}

// ActiveColors returns the u_active_colors gate.
func (g *Gradient) ActiveColors() [4]float32 { return g.uniforms.activeColors.Value }

// UpdateFrequency shifts both global noise frequencies by delta.
func (g *Gradient) UpdateFrequency(delta float32) {
	freq := math.Vec2{X: g.uniforms.noiseFreq.Value[0], Y: g.uniforms.noiseFreq.Value[1]}
	g.uniforms.noiseFreq.Value = freq.AddScalar(delta).Array()
}

// Frequency returns the global noise frequencies.
func (g *Gradient) Frequency() [2]float32 { return g.uniforms.noiseFreq.Value }

// SetWireframe switches line drawing.
func (g *Gradient) SetWireframe(on bool) {
	g.opts.Wireframe = on
	g.mesh.Wireframe = on
}

// Wireframe reports whether the mesh is drawn with lines.
func (g *Gradient) Wireframe() bool { return g.opts.Wireframe }

// Size returns the drawn size.
func (g *Gradient) Size() (int, int) { return g.width, g.height }

// Segments returns the plane's segment counts.
func (g *Gradient) Segments() (int, int) { return g.xSegs, g.ySegs }

// Program returns the gradient's shader program.
func (g *Gradient) Program() *shader.Program { return g.program }

// Close removes the mesh and releases its resources.
func (g *Gradient) Close() {
	if g.mesh != nil {
		g.mesh.Remove()
	}
	if g.plane != nil {
		g.plane.Release()
	}
	g.program.Release()
	g.done = true
}
