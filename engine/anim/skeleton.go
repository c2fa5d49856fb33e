package anim

import kmath "github.com/kestrel3d/render-core/engine/math"

// Skeleton is a bone hierarchy: each bone's parent index (-1 for a root) and
// its bind-pose local transform.
type Skeleton struct {
	Names      []string
	ParentIdx  []int
	BindLocal  []kmath.Mat4
}

// NewSkeleton builds a skeleton from parallel name/parent-index slices, one
// entry per bone, bind pose set to identity for every bone.
func NewSkeleton(names []string, parentIdx []int) *Skeleton {
	bind := make([]kmath.Mat4, len(names))
	for i := range bind {
		bind[i] = kmath.NewMat4Identity()
	}
	return &Skeleton{Names: names, ParentIdx: parentIdx, BindLocal: bind}
}

// BoneCount returns the number of bones in the skeleton.
func (s *Skeleton) BoneCount() int { return len(s.Names) }

// IdentityPose fills out (one kmath.Mat4 per bone) with the skeleton's bind
// pose, growing out if it's too short. Called once when a process starts,
// before any clip has been evaluated.
func (s *Skeleton) IdentityPose(out []kmath.Mat4) []kmath.Mat4 {
	if cap(out) < len(s.BindLocal) {
		out = make([]kmath.Mat4, len(s.BindLocal))
	}
	out = out[:len(s.BindLocal)]
	copy(out, s.BindLocal)
	return out
}
