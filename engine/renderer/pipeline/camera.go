// Package pipeline drives the per-frame render command pipeline: camera
// setup, command generation from the scene tree, sort-key computation and
// sort, and the depth pre-pass, shadow, main, and post-processing passes
// that consume the sorted command list.
package pipeline

import (
	"math"

	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/command"
	"github.com/kestrel3d/render-core/engine/renderer/postprocess"
	"github.com/kestrel3d/render-core/engine/renderer/texture"
)

// DebugLayer is the render layer every debug-draw command lands on; where it
// sorts comes from the OrderIndex each camera registers for it.
const DebugLayer uint8 = 100

// RenderLayer names one bucket of scene objects a camera draws, carrying
// the sort-order index folded into every command's sort key.
type RenderLayer struct {
	ID         uint8
	OrderIndex uint8
}

// Camera is everything one render pass needs to know about a viewpoint:
// its view and projection matrices, the viewport bucket folded into sort
// keys, the set of render layers it draws, its render target, and its
// post-processing chain.
type Camera struct {
	position   kmath.Vec3
	view       kmath.Mat4
	projection kmath.Mat4

	ViewportIndex uint8
	Layers        []RenderLayer

	Target         *texture.RenderTarget
	PostProcessing *postprocess.Chain

	depthRange command.DepthRange
}

// NewCamera builds a camera at the given view/projection matrices, drawing
// the given layers into target.
func NewCamera(position kmath.Vec3, view, projection kmath.Mat4, layers []RenderLayer, target *texture.RenderTarget) *Camera {
	return &Camera{position: position, view: view, projection: projection, Layers: layers, Target: target}
}

// ViewMatrix satisfies command.Camera.
func (c *Camera) ViewMatrix() kmath.Mat4 { return c.view }

// ViewportBucket satisfies command.Camera.
func (c *Camera) ViewportBucket() uint8 { return c.ViewportIndex }

// Position returns the camera's world position.
func (c *Camera) Position() kmath.Vec3 { return c.position }

// Projection returns the camera's projection matrix.
func (c *Camera) Projection() kmath.Mat4 { return c.projection }

// ViewProjection returns view * projection under the engine's row-vector
// convention (a point is transformed by p * view * projection).
func (c *Camera) ViewProjection() kmath.Mat4 { return c.view.Mul(c.projection) }

// SetView replaces the camera's view matrix and position, e.g. after the
// owning scene object's transform changed this frame.
func (c *Camera) SetView(position kmath.Vec3, view kmath.Mat4) {
	c.position = position
	c.view = view
}

// DepthRange returns the nearest/farthest view-space depth observed across
// this camera's commands during its last preSort pass, e.g. for fitting a
// shadow frustum to what the camera actually saw.
func (c *Camera) DepthRange() command.DepthRange {
	return c.depthRange
}

// LayerOrderIndex returns the sort-order index registered for layer, or 0
// (and false) if this camera doesn't draw that layer.
func (c *Camera) LayerOrderIndex(layer uint8) (uint8, bool) {
	for _, l := range c.Layers {
		if l.ID == layer {
			return l.OrderIndex, true
		}
	}
	return 0, false
}

// DrawsLayer reports whether this camera's layer set intersects layer.
func (c *Camera) DrawsLayer(layer uint8) bool {
	_, ok := c.LayerOrderIndex(layer)
	return ok
}

// ToRGBA8 converts a linear [0,1] clear color into 8-bit channel values
// using round-half-up, the conversion the empty-scene clear-color test
// exercises: (0.1, 0.2, 0.3, 1.0) -> (26, 51, 77, 255).
func ToRGBA8(r, g, b, a float32) (uint8, uint8, uint8, uint8) {
	return quantize(r), quantize(g), quantize(b), quantize(a)
}

func quantize(c float32) uint8 {
	if c <= 0 {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(math.Floor(float64(c)*255 + 0.5))
}

// NewPerspectiveCamera is a convenience constructor building a camera's
// projection matrix from a vertical field of view in radians.
func NewPerspectiveCamera(position, target, up kmath.Vec3, fovRadians, aspectRatio, nearClip, farClip float32, layers []RenderLayer, target2 *texture.RenderTarget) *Camera {
	view := kmath.NewMat4LookAt(position, target, up)
	proj := kmath.NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip)
	return NewCamera(position, view, proj, layers, target2)
}
