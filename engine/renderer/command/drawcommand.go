package command

import (
	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/renderable"
	"github.com/kestrel3d/render-core/engine/renderer/shader"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
)

// NoSceneObject is the sentinel SceneObjectID for a command with no
// backing scene object (the source's RenderObjectId default).
const NoSceneObject int32 = -1

// DebugSceneObject tags a command pushed directly by the debug-draw
// interface rather than generated from a scene object.
const DebugSceneObject int32 = -2

// Camera is what a DrawCommand needs from whatever camera it was generated
// for: its view matrix for depth computation and a viewport bucket folded
// into the sort key.
type Camera interface {
	ViewMatrix() kmath.Mat4
	ViewportBucket() uint8
}

// DrawCommand is one renderable's contribution to a frame: a renderable
// plus the shader programs, camera, and uniform container it draws with,
// and the sort key computed across OnAddToQueue and PreSort.
type DrawCommand struct {
	Renderable     renderable.Renderable
	Program        *shader.Program
	PrepassProgram *shader.Program
	Camera         Camera
	Container      *uniform.Container

	SceneObjectID int32

	RenderLayer     uint8
	LayerOrderIndex uint8
	PassFlags       renderable.PassFlag

	WorldBounds    kmath.Extents3D
	HasWorldBounds bool

	// Depth is the command's view-space z, set by the pipeline's preSort
	// pass before normalization folds it into SortKey's depth bits.
	Depth float32

	SortKey SortKey
}

// NewDrawCommand builds a command for one renderable drawn with program
// against camera, sourcing uniforms out of container.
func NewDrawCommand(r renderable.Renderable, program *shader.Program, cam Camera, container *uniform.Container, sceneObjectID int32) *DrawCommand {
	return &DrawCommand{
		Renderable:     r,
		Program:        program,
		PrepassProgram: r.PrepassShaderProgram(),
		Camera:         cam,
		Container:      container,
		SceneObjectID:  sceneObjectID,
		PassFlags:      r.PassFlags(),
	}
}

// OnAddToQueue computes the command's preliminary sort key: its
// transparency/viewport bucket, render-layer order, material sort id, and
// shader program id. Depth is left at zero until the pipeline's preSort
// pass fills it in via NormalizeDepth.
func (c *DrawCommand) OnAddToQueue(materialSortID uint16, shaderProgramID uint16) {
	transparency := uint8(0)
	if c.Renderable.Settings().Transparency == renderable.TransparencyTransparent {
		transparency = 1
	}
	viewport := uint8(0)
	if c.Camera != nil {
		viewport = c.Camera.ViewportBucket()
	}
	bucket := (viewport << 1) | transparency
	c.SortKey = Pack(bucket, c.LayerOrderIndex, materialSortID, shaderProgramID, 0)
}

// IsTransparent reports whether this command's renderable is flagged
// transparent, the direction normalized depth runs for this command.
func (c *DrawCommand) IsTransparent() bool {
	return c.Renderable.Settings().Transparency == renderable.TransparencyTransparent
}

// PreSortPoint returns the world-space point preSort measures depth from:
// the world AABB center when known, otherwise worldOrigin (the transformed
// object origin, supplied by the caller for deferred-geometry commands
// whose bounds aren't known until draw time).
func (c *DrawCommand) PreSortPoint(worldOrigin kmath.Vec3) kmath.Vec3 {
	if c.HasWorldBounds {
		return c.WorldBounds.Center()
	}
	return worldOrigin
}

// PreSort computes the command's view-space depth: the z component of
// point transformed into the command's camera view space. This is
// dot(camera.view_matrix.row(2), point.xyz1) under the engine's row-vector
// convention, since Vec3.Transform's z output already contracts exactly
// that row.
func (c *DrawCommand) PreSort(point kmath.Vec3) {
	c.Depth = point.Transform(c.Camera.ViewMatrix()).Z
}

// DepthRange tracks the nearest/farthest depth seen across a set of
// commands during one preSort pass. It lives on the pipeline rather than
// as package state, per the redesign the static-global depth tracking in
// the source was flagged for.
type DepthRange struct {
	Nearest float32
	Farthest float32
	seen     bool
}

// Reset clears the range so the next Observe call starts fresh, called at
// the start of every preSort pass.
func (d *DepthRange) Reset() {
	*d = DepthRange{}
}

// Observe folds depth into the tracked range.
func (d *DepthRange) Observe(depth float32) {
	if !d.seen {
		d.Nearest, d.Farthest, d.seen = depth, depth, true
		return
	}
	if depth < d.Nearest {
		d.Nearest = depth
	}
	if depth > d.Farthest {
		d.Farthest = depth
	}
}

// NormalizeDepth maps every command's Depth into the [0, DepthMask] range
// observed across commands, ascending for opaque commands and inverted
// (descending) for transparent ones so that ascending sort-key order still
// yields back-to-front order within the transparent bucket.
func NormalizeDepth(commands []*DrawCommand) {
	if len(commands) == 0 {
		return
	}

	var rng DepthRange
	for _, c := range commands {
		rng.Observe(c.Depth)
	}

	span := rng.Farthest - rng.Nearest
	for _, c := range commands {
		var t float32
		if span > 1e-6 {
			t = (c.Depth - rng.Nearest) / span
		}
		norm := kmath.Clamp(uint32(t*float32(DepthMask)+0.5), 0, DepthMask)
		if c.IsTransparent() {
			norm = DepthMask - norm
		}
		c.SortKey = c.SortKey.WithDepth(norm)
	}
}
