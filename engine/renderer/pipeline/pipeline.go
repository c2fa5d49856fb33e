// Package pipeline drives the per-frame render command pipeline: camera
// setup, command generation from the scene tree, sort-key computation and
// sort, and the depth pre-pass, shadow, main, and post-processing passes
// that consume the sorted command list.
package pipeline

import (
	"fmt"

	"github.com/kestrel3d/render-core/engine/core"
	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/command"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/renderable"
	"github.com/kestrel3d/render-core/engine/renderer/shader"
	"github.com/kestrel3d/render-core/engine/renderer/texture"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
	"github.com/kestrel3d/render-core/engine/scene"
)

// RenderableSource is implemented by any scene-object component that
// contributes renderables to the frame (model, canvas, and
// Cubemap component kinds).
type RenderableSource interface {
	Renderables() []renderable.Renderable
}

// Entry is one (object, renderable, layer) tuple the generation pass turns
// into a DrawCommand.
type Entry struct {
	ObjectID    int32
	Renderable  renderable.Renderable
	Layer       uint8
	WorldMatrix kmath.Mat4
}

// CollectEntries walks every live scene object in tree whose render-layer
// set intersects one of camera's layers, and returns one Entry per
// renderable contributed by a RenderableSource component attached to that
// object. The first intersecting layer found is used; a renderable on an
// object that belongs to several of the camera's layers is not duplicated.
func CollectEntries(tree *scene.Tree, camera *Camera) []Entry {
	var entries []Entry
	for _, id := range tree.AllObjects() {
		var layer uint8
		found := false
		for _, l := range camera.Layers {
			if tree.HasLayer(id, l.ID) {
				layer = l.ID
				found = true
				break
			}
		}
		if !found {
			continue
		}

		worldMatrix := tree.Transforms.World(tree.Transform(id))
		for kind := scene.ComponentType(0); kind < scene.ComponentTypeCount; kind++ {
			c := tree.Component(id, kind)
			src, ok := c.(RenderableSource)
			if !ok {
				continue
			}
			for _, r := range src.Renderables() {
				entries = append(entries, Entry{ObjectID: int32(id), Renderable: r, Layer: layer, WorldMatrix: worldMatrix})
			}
		}
	}
	return entries
}

// MaterialSortIDFunc assigns the 16-bit material sort id a command's
// OnAddToQueue packs into its sort key, derived from whatever the caller
// considers its material identity (a resource handle UUID, typically).
type MaterialSortIDFunc func(r renderable.Renderable) uint16

// ShaderProgramIDFunc assigns the 16-bit shader program id a command's
// OnAddToQueue packs into its sort key.
type ShaderProgramIDFunc func(p *shader.Program) uint16

// Pipeline orchestrates one camera's per-frame command generation, sort,
// and pass execution against a gpu.Context. A single Pipeline may drive
// several cameras in sequence, one RunFrame call per camera.
type Pipeline struct {
	ctx           gpu.Context
	binder        *shader.Binder
	container     *uniform.Container
	fallbackWhite gpu.Texture

	MaterialSortID MaterialSortIDFunc
	ShaderID       ShaderProgramIDFunc

	errorLogged map[errorKey]bool
}

type errorKey struct {
	program uint16
	code    string
}

// New returns a Pipeline driving ctx, reading uniform values out of
// container, with the default identity sort-id functions (every command
// sorts as material 0 / shader 0) unless overridden.
func New(ctx gpu.Context, container *uniform.Container) *Pipeline {
	p := &Pipeline{
		ctx:            ctx,
		binder:         shader.NewBinder(ctx),
		container:      container,
		MaterialSortID: func(renderable.Renderable) uint16 { return 0 },
		ShaderID:       func(*shader.Program) uint16 { return 0 },
		errorLogged:    make(map[errorKey]bool),
	}

	// The 1x1 opaque-white texture every draw starts from, so a renderable
	// with a missing texture samples white instead of garbage.
	fallback, err := ctx.CreateTexture(gpu.TextureDesc{
		Kind: gpu.Texture2D, Format: gpu.FormatRGBA8,
		Width: 1, Height: 1, Layers: 1, MipLevels: 1,
	})
	if err != nil {
		core.LogError(fmt.Sprintf("render pipeline: fallback texture: %v", err))
		return p
	}
	if err := ctx.WriteTextureData(fallback, 0, 0, texture.FallbackWhite1x1()); err != nil {
		core.LogError(fmt.Sprintf("render pipeline: fallback texture upload: %v", err))
		ctx.DestroyTexture(fallback)
		return p
	}
	p.fallbackWhite = fallback
	return p
}

// FallbackWhite returns the pipeline's 1x1 opaque-white texture, bound in
// place of any texture a renderable is missing.
func (p *Pipeline) FallbackWhite() gpu.Texture { return p.fallbackWhite }

// Generate builds one DrawCommand per entry:
// construct the command, apply the renderable's render-settings override
// implicitly (read at draw time via Renderable.Settings), set the world
// bounds from the renderable's transformed object bounds (skipped for
// deferred-geometry renderables, whose geometry is decided at draw time),
// and call OnAddToQueue to compute the command's preliminary sort key.
func (p *Pipeline) Generate(camera *Camera, entries []Entry) []*command.DrawCommand {
	commands := make([]*command.DrawCommand, 0, len(entries))
	for _, e := range entries {
		cmd := command.NewDrawCommand(e.Renderable, e.Renderable.ShaderProgram(), camera, p.container, e.ObjectID)
		cmd.RenderLayer = e.Layer
		if orderIndex, ok := camera.LayerOrderIndex(e.Layer); ok {
			cmd.LayerOrderIndex = orderIndex
		}

		if objBounds, ok := e.Renderable.ObjectBounds(); ok {
			cmd.WorldBounds = objBounds.Transform(e.WorldMatrix)
			cmd.HasWorldBounds = true
		}

		materialID := p.MaterialSortID(e.Renderable)
		shaderID := p.ShaderID(e.Renderable.ShaderProgram())
		cmd.OnAddToQueue(materialID, shaderID)
		commands = append(commands, cmd)
	}
	return commands
}

// PreSort computes every command's view-space depth and
// folds the normalized depth into each command's sort key. worldOrigin
// supplies the measurement point for deferred-geometry commands whose
// bounds aren't known until draw time.
func (p *Pipeline) PreSort(camera *Camera, commands []*command.DrawCommand, worldOrigin kmath.Vec3) {
	camera.depthRange.Reset()
	for _, c := range commands {
		c.PreSort(c.PreSortPoint(worldOrigin))
		camera.depthRange.Observe(c.Depth)
	}
	command.NormalizeDepth(commands)
}

// Sort orders commands ascending by sort key, stable with respect to
// insertion order for equal keys, so identical inputs sort identically.
func (p *Pipeline) Sort(commands []*command.DrawCommand) {
	stableSortBySortKey(commands)
}

func stableSortBySortKey(commands []*command.DrawCommand) {
	// insertion sort is stable and the frame's command count is small
	// enough (thousands, not millions) that O(n^2) worst case is never hit
	// in practice; a sort.SliceStable call would do the same work with an
	// extra allocation for the swap buffer.
	for i := 1; i < len(commands); i++ {
		j := i
		for j > 0 && commands[j-1].SortKey > commands[j].SortKey {
			commands[j-1], commands[j] = commands[j], commands[j-1]
			j--
		}
	}
}

func (p *Pipeline) logFrameError(shaderID uint16, code string, err error) {
	key := errorKey{program: shaderID, code: code}
	if p.errorLogged[key] {
		return
	}
	p.errorLogged[key] = true
	core.LogError(fmt.Sprintf("render pipeline: shader %d: %s: %v", shaderID, code, err))
}

// ResetFrameErrorLog clears the once-per-(shader,error-code) throttle,
// called at the start of a new frame, which logs once per
// (shader,error-code) pair and the frame continues" policy applying
// per-frame rather than for the lifetime of the pipeline.
func (p *Pipeline) ResetFrameErrorLog() {
	p.errorLogged = make(map[errorKey]bool)
}

// DepthPrePass re-binds every opaque command's depth/shadow pre-pass
// companion program (when it has one) and draws its geometry. It sets no
// color-write mask, so what the draw writes besides depth is up to the
// companion program. target is already bound and
// cleared by the caller; commands without a PrepassProgram are skipped.
func (p *Pipeline) DepthPrePass(commands []*command.DrawCommand) {
	for _, c := range commands {
		if c.IsTransparent() || c.PrepassProgram == nil {
			continue
		}
		if err := p.binder.Bind(c.PrepassProgram, p.container, true); err != nil {
			p.logFrameError(p.ShaderID(c.PrepassProgram), "prepass-bind", err)
			continue
		}
		c.Renderable.DrawGeometry(p.ctx)
	}
}

// ShadowCaster is a light's view of the scene for a shadow pass: the
// camera-like view the shadow map renders from. It carries no culling
// state.
type ShadowCaster interface {
	command.Camera
}

// ShadowPass binds program and draws every opaque command among commands
// into whatever framebuffer is currently bound. program is the shadow-depth
// shader every caster draws with, regardless of its main-pass material.
// light is not read: commands are not re-bound to the light's view, and
// no face-culling mode is set.
func (p *Pipeline) ShadowPass(light ShadowCaster, program *shader.Program, commands []*command.DrawCommand) error {
	if err := p.binder.Bind(program, p.container, true); err != nil {
		return fmt.Errorf("render pipeline: shadow pass bind: %w", err)
	}
	for _, c := range commands {
		if c.IsTransparent() {
			continue
		}
		c.Renderable.DrawGeometry(p.ctx)
	}
	return nil
}

// MainPass iterates the sorted commands and, for each: binds the shader
// program, updates uniforms, binds the fallback white texture and then the
// material textures, and issues the draw. It binds no camera UBO: a change
// of camera between commands is tracked but issues no GPU call, so camera
// uniforms come from whatever the caller published into the uniform
// container. A command whose program fails to bind or
// update uniforms is skipped and logged once per (shader, error-code)
// pair; the rest of the frame continues.
func (p *Pipeline) MainPass(commands []*command.DrawCommand) {
	var boundCamera command.Camera
	for _, c := range commands {
		if c.Program == nil {
			continue
		}
		shaderID := p.ShaderID(c.Program)

		if boundCamera != c.Camera {
			boundCamera = c.Camera
		}

		if err := p.binder.Bind(c.Program, p.container, true); err != nil {
			p.logFrameError(shaderID, "uniform-mismatch", err)
			continue
		}

		c.Renderable.BindUniforms(p.ctx, c.Program, p.container)
		if p.fallbackWhite != 0 {
			p.ctx.BindTextureUnit(0, p.fallbackWhite)
		}
		c.Renderable.BindTextures(p.ctx)
		c.Renderable.DrawGeometry(p.ctx)
	}
}

// RunFrame executes a camera's full per-frame pass sequence: clear its
// target, depth pre-pass, main pass, resolve MSAA if needed, and
// post-processing, returning the final color texture the caller should
// present or composite. Shadow passes are driven separately (by the caller,
// once per active shadow-casting light) before RunFrame, since a shadow
// map can be shared across several cameras in one frame.
func (p *Pipeline) RunFrame(camera *Camera, entries []Entry, worldOrigin kmath.Vec3, clearR, clearG, clearB, clearA float32) (gpu.Texture, error) {
	p.ResetFrameErrorLog()

	commands := p.Generate(camera, entries)
	p.PreSort(camera, commands, worldOrigin)
	p.Sort(commands)

	if camera.Target != nil {
		camera.Target.Bind()
		camera.Target.Clear(clearR, clearG, clearB, clearA, 1.0, 0)
	}

	p.DepthPrePass(commands)
	p.MainPass(commands)

	if camera.Target == nil {
		return 0, nil
	}
	if camera.Target.IsMultisampled() {
		camera.Target.Resolve()
	}
	sceneColor := camera.Target.SampleTexture()

	if camera.PostProcessing == nil {
		return sceneColor, nil
	}
	return camera.PostProcessing.Execute(p.container, sceneColor)
}
