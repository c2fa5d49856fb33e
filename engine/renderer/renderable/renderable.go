// Package renderable defines the mixin contract the render command pipeline
// draws through: anything that carries its own shading state (uniforms,
// render settings, textures) and knows how to bind and issue its own draw
// call.
package renderable

import (
	"encoding/binary"

	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/mesh"
	"github.com/kestrel3d/render-core/engine/renderer/shader"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
	"github.com/kestrel3d/render-core/engine/resources"
)

// Transparency is the bucket a renderable's material settings place it
// into for sort-key purposes.
type Transparency uint8

const (
	TransparencyOpaque Transparency = iota
	TransparencyTransparent
)

// IgnoreFlag mirrors the source's RenderableIgnoreFlag bitset.
type IgnoreFlag uint8

const (
	IgnoreSettings IgnoreFlag = 1 << iota
	IgnoreTextures
	IgnoreUniforms
	IgnoreUniformMismatch
)

// PassFlag mirrors the source's RenderablePassFlag bitset. A renderable
// flagged kDeferredGeometry has its geometry (and therefore its bounds)
// determined at draw time rather than at command-generation time.
type PassFlag uint8

const (
	PassDeferredGeometry PassFlag = 1 << iota
)

// Settings is a renderable's render-settings override, read by the pipeline
// when building a draw command's sort key and pass behavior.
type Settings struct {
	Transparency Transparency
	Ignore       IgnoreFlag
}

// Shadable is the uniform-and-render-settings mixin shared by renderables
// and post-processing effect stages.
type Shadable struct {
	RenderSettings Settings
	uniforms       map[string]shader.UniformRef
}

// AddUniform queues name to be bound to ref the next time this shadable's
// uniforms are pushed through a program.
func (s *Shadable) AddUniform(name string, ref shader.UniformRef) {
	if s.uniforms == nil {
		s.uniforms = make(map[string]shader.UniformRef)
	}
	s.uniforms[name] = ref
}

// HasUniform reports whether name has been queued via AddUniform.
func (s *Shadable) HasUniform(name string) bool {
	_, ok := s.uniforms[name]
	return ok
}

// ClearUniforms drops every queued uniform.
func (s *Shadable) ClearUniforms() {
	s.uniforms = nil
}

// Uniforms returns the queued name -> value-ref map. Callers must not
// mutate the returned map.
func (s *Shadable) Uniforms() map[string]shader.UniformRef {
	return s.uniforms
}

// Renderable is what the render command pipeline requires of anything it
// can draw.
type Renderable interface {
	Settings() Settings
	PassFlags() PassFlag
	ShaderProgram() *shader.Program
	PrepassShaderProgram() *shader.Program
	// ObjectBounds returns the renderable's object-space bounds and true,
	// or false when the bounds aren't known until draw time (deferred
	// geometry).
	ObjectBounds() (kmath.Extents3D, bool)
	BindUniforms(ctx gpu.Context, program *shader.Program, container *uniform.Container)
	BindTextures(ctx gpu.Context)
	DrawGeometry(ctx gpu.Context)
	SortID() int
}

// Base is the common renderable mixin: shading state, shader programs, and
// bound material textures. Concrete renderables embed Base and supply
// ObjectBounds, DrawGeometry, and SortID.
type Base struct {
	Shadable

	Program        *shader.Program
	PrepassProgram *shader.Program
	Pass           PassFlag
	Textures       []gpu.Texture
}

func (b *Base) Settings() Settings                    { return b.RenderSettings }
func (b *Base) PassFlags() PassFlag                   { return b.Pass }
func (b *Base) ShaderProgram() *shader.Program        { return b.Program }
func (b *Base) PrepassShaderProgram() *shader.Program { return b.PrepassProgram }

// BindUniforms pushes every queued uniform through program, resolving each
// by name. A queued uniform program has no declared location for is
// skipped rather than failing the draw.
func (b *Base) BindUniforms(ctx gpu.Context, program *shader.Program, container *uniform.Container) {
	if b.RenderSettings.Ignore&IgnoreUniforms != 0 {
		return
	}
	for name, ref := range b.Uniforms() {
		if loc, ok := program.Location(name); ok {
			program.SetUniformValue(loc, ref)
		}
	}
}

// BindTextures binds every material texture to sequential texture units
// starting at 0.
func (b *Base) BindTextures(ctx gpu.Context) {
	if b.RenderSettings.Ignore&IgnoreTextures != 0 {
		return
	}
	for unit, tex := range b.Textures {
		ctx.BindTextureUnit(unit, tex)
	}
}

// MeshRenderable is the stock renderable: a resource handle expected to
// carry a *mesh.Mesh payload, drawn as-is with the bound shader program.
type MeshRenderable struct {
	Base
	Handle *resources.Handle
}

// NewMeshRenderable returns a renderable that draws handle's mesh payload
// with program.
func NewMeshRenderable(handle *resources.Handle, program *shader.Program) *MeshRenderable {
	r := &MeshRenderable{Handle: handle}
	r.Program = program
	return r
}

func (m *MeshRenderable) mesh() *mesh.Mesh {
	if m.Handle == nil {
		return nil
	}
	payload := m.Handle.Payload()
	if payload == nil {
		return nil
	}
	mm, _ := payload.(*mesh.Mesh)
	return mm
}

// ObjectBounds returns the underlying mesh's object bounds. Deferred
// geometry renderables (geometry decided at draw time) report false.
func (m *MeshRenderable) ObjectBounds() (kmath.Extents3D, bool) {
	if m.Pass&PassDeferredGeometry != 0 {
		return kmath.Extents3D{}, false
	}
	mm := m.mesh()
	if mm == nil {
		return kmath.Extents3D{}, false
	}
	return mm.ObjectBounds, true
}

// DrawGeometry draws the underlying mesh if its handle is constructed and
// drawable; otherwise it is a silent no-op, so a renderable with a
// missing mesh skips its draw entirely.
func (m *MeshRenderable) DrawGeometry(ctx gpu.Context) {
	mm := m.mesh()
	if mm == nil || !mm.Drawable() {
		return
	}
	mm.Draw(1)
}

// SortID derives a stable per-handle bucket id from the resource handle's
// UUID, used by callers building a command's material-sort-id.
func (m *MeshRenderable) SortID() int {
	if m.Handle == nil {
		return 0
	}
	id := m.Handle.UUID()
	return int(binary.BigEndian.Uint32(id[0:4]))
}
