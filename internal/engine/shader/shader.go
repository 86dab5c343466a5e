// Package shader builds linked shader programs from effect bodies and
// uniform sets.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshgradient/internal/engine/gpu"
	"github.com/Faultbox/meshgradient/internal/engine/uniform"
	"github.com/Faultbox/meshgradient/internal/logger"
)

// Precision is the directive every stage starts with after the backend
// prelude.
const Precision = "precision highp float;"

// AttributeDeclarations are the vertex inputs every program receives.
const AttributeDeclarations = `attribute vec4 position;
attribute vec2 uv;
attribute vec2 uvNorm;`

// Source describes a program to build.
type Source struct {
	// Vertex and Fragment hold the effect logic only; declarations are
	// generated.
	Vertex   string
	Fragment string
	// Common uniforms are declared in both stages.
	Common *uniform.Set
	Custom *uniform.Set
	// Declarer overrides uniform.DefaultDeclarer when set.
	Declarer *uniform.Declarer
}

// Resolved is a uniform leaf bound to its location in a linked program.
type Resolved struct {
	Name     string
	Value    uniform.Value
	Location gpu.UniformLocation
}

// Program is a linked vertex+fragment pair.
//
// A build failure does not abort construction: the program keeps a null
// handle, Err reports the diagnostics and every draw with it is a no-op.
type Program struct {
	backend  gpu.Backend
	handle   gpu.Program
	vertex   string
	fragment string
	uniforms []Resolved
	err      error
}

// New assembles, compiles and links src.
func New(b gpu.Backend, src Source) *Program {
	decl := uniform.DefaultDeclarer
	if src.Declarer != nil {
		decl = *src.Declarer
	}
	common := src.Common
	if common == nil {
		common = uniform.NewSet()
	}
	custom := src.Custom
	if custom == nil {
		custom = uniform.NewSet()
	}

	p := &Program{
		backend: b,
		vertex: assemble(b.ShaderPrelude(gpu.StageVertex),
			AttributeDeclarations,
			decl.DeclareSet(common, gpu.StageVertex),
			decl.DeclareSet(custom, gpu.StageVertex),
			src.Vertex),
		fragment: assemble(b.ShaderPrelude(gpu.StageFragment),
			"",
			decl.DeclareSet(common, gpu.StageFragment),
			decl.DeclareSet(custom, gpu.StageFragment),
			src.Fragment),
	}

	log := logger.Named("shader")
	if err := p.build(); err != nil {
		p.err = err
		for _, e := range multierr.Errors(err) {
			var ce *gpu.CompileError
			if errors.As(e, &ce) {
				log.Error("shader compile failed",
					zap.String("stage", string(ce.Stage)),
					zap.String("log", ce.Log),
				)
				continue
			}
			log.Error("shader program build failed", zap.Error(e))
		}
		return p
	}

	p.attach(common, log)
	p.attach(custom, log)
	log.Debug("shader program linked",
		zap.Uint32("program", uint32(p.handle)),
		zap.Int("uniforms", len(p.uniforms)),
	)
	return p
}

func assemble(prelude, attributes, common, custom, body string) string {
	parts := make([]string, 0, 6)
	for _, s := range []string{prelude, Precision, attributes, common, custom, body} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n") + "\n"
}

// build compiles both stages, even when the first fails, so every
// diagnostic is reported, then links.
func (p *Program) build() error {
	vs, vErr := p.compile(gpu.StageVertex, p.vertex)
	fs, fErr := p.compile(gpu.StageFragment, p.fragment)
	defer func() {
		if vs != 0 {
			p.backend.DeleteShader(vs)
		}
		if fs != 0 {
			p.backend.DeleteShader(fs)
		}
	}()
	if err := multierr.Append(vErr, fErr); err != nil {
		return err
	}

	program := p.backend.CreateProgram()
	if program == 0 {
		return fmt.Errorf("program: %w", gpu.ErrResourceCreation)
	}
	p.backend.AttachShader(program, vs)
	p.backend.AttachShader(program, fs)
	p.backend.LinkProgram(program)

	if ok, info := p.backend.ProgramInfo(program); !ok {
		p.backend.DeleteProgram(program)
		return &gpu.LinkError{Log: info}
	}

	p.handle = program
	return nil
}

func (p *Program) compile(stage gpu.Stage, source string) (gpu.Shader, error) {
	s := p.backend.CreateShader(stage)
	if s == 0 {
		return 0, fmt.Errorf("%s shader: %w", stage, gpu.ErrResourceCreation)
	}
	p.backend.ShaderSource(s, source)
	p.backend.CompileShader(s)

	if ok, info := p.backend.ShaderInfo(s); !ok {
		p.backend.DeleteShader(s)
		return 0, &gpu.CompileError{Stage: stage, Log: info}
	}
	return s, nil
}

// attach resolves every leaf of set once. Leaves the linker dropped are
// skipped.
func (p *Program) attach(set *uniform.Set, log *zap.Logger) {
	for _, f := range set.Fields() {
		uniform.Flatten(f.Name, f.Value, func(l uniform.Leaf) {
			loc := p.backend.GetUniformLocation(p.handle, l.Name)
			if !loc.Valid() {
				log.Debug("uniform inactive", zap.String("name", l.Name))
				return
			}
			p.uniforms = append(p.uniforms, Resolved{Name: l.Name, Value: l.Value, Location: loc})
		})
	}
}

// Valid reports whether the program linked.
func (p *Program) Valid() bool { return p.handle != 0 }

// Handle returns the backend handle, 0 after a failed build.
func (p *Program) Handle() gpu.Program { return p.handle }

// Err returns the build diagnostics, or nil.
func (p *Program) Err() error { return p.err }

// Uniforms returns the resolved leaves in sync order.
func (p *Program) Uniforms() []Resolved { return p.uniforms }

// Sources returns the generated vertex and fragment source text.
func (p *Program) Sources() (string, string) { return p.vertex, p.fragment }

// Use activates the program. It reports false for a failed build.
func (p *Program) Use() bool {
	if p.handle == 0 {
		return false
	}
	p.backend.UseProgram(p.handle)
	return true
}

// SyncUniforms pushes every resolved leaf's current value.
func (p *Program) SyncUniforms() {
	for _, u := range p.uniforms {
		uniform.Sync(p.backend, u.Location, u.Value)
	}
}

// AttribLocation resolves a vertex attribute, -1 when the program does not
// expose it or failed to build.
func (p *Program) AttribLocation(name string) gpu.AttribLocation {
	if p.handle == 0 {
		return gpu.NoAttrib
	}
	return p.backend.GetAttribLocation(p.handle, name)
}

// Release deletes the program.
func (p *Program) Release() {
	if p.handle == 0 {
		return
	}
	p.backend.DeleteProgram(p.handle)
	p.handle = 0
	p.uniforms = nil
}
