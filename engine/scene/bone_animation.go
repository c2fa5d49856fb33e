package scene

import (
	"github.com/kestrel3d/render-core/engine/anim"
	kmath "github.com/kestrel3d/render-core/engine/math"
)

// BoneAnimationComponent attaches a running anim.Process to a scene object,
// satisfying the ComponentBoneAnimation slot. It contributes no world
// bounds of its own — the model component it drives already does.
type BoneAnimationComponent struct {
	Process *anim.Process
}

// Bounds satisfies Component; bone animation never contributes bounds.
func (c *BoneAnimationComponent) Bounds() (kmath.Extents3D, bool) {
	return kmath.Extents3D{}, false
}

// Pose returns the driving process's current per-bone transform buffer, or
// nil if the component has no process attached.
func (c *BoneAnimationComponent) Pose() []kmath.Mat4 {
	if c.Process == nil {
		return nil
	}
	return c.Process.Pose()
}
