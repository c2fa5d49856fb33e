package scene

import (
	kmath "github.com/kestrel3d/render-core/engine/math"
)

// InheritanceMode controls how a transform's world matrix picks up its
// parent's world matrix during ComputeWorldMatrix.
type InheritanceMode uint8

const (
	// InheritAll composes the full parent world matrix: world = local * parent.world.
	InheritAll InheritanceMode = iota
	// InheritTranslationOnly discards the parent's rotation and scale, keeping
	// only its world position.
	InheritTranslationOnly
	// PreserveOrientation keeps this transform's own rotation and scale; its
	// world position is its local translation carried through the parent's
	// full world matrix.
	PreserveOrientation
)

// TransformRef is a stable, recyclable index into a Graph's node arena.
// Refs start at 0; the invalid ref is NoTransform (all bits set), not the
// zero value.
type TransformRef uint32

// NoTransform is the sentinel ref meaning "no parent" / "invalid".
const NoTransform TransformRef = 0xFFFFFFFF

type transformNode struct {
	translation kmath.Vec3
	rotation    kmath.Quaternion
	scale       kmath.Vec3
	mode        InheritanceMode

	local kmath.Mat4
	world kmath.Mat4
	dirty bool

	parent   TransformRef
	children []TransformRef

	inUse bool
}

// Graph owns a flat arena of transform nodes, referenced by 32-bit index so
// the tree never holds raw pointers and nodes recycle through a free list.
type Graph struct {
	nodes     []transformNode
	freeList  []uint32
}

// NewGraph returns an empty transform graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Create allocates a new transform at the identity, with no parent, and
// returns its ref.
func (g *Graph) Create() TransformRef {
	n := transformNode{
		translation: kmath.NewVec3Zero(),
		rotation:    kmath.NewQuatIdentity(),
		scale:       kmath.NewVec3One(),
		mode:        InheritAll,
		local:       kmath.NewMat4Identity(),
		world:       kmath.NewMat4Identity(),
		dirty:       true,
		parent:      NoTransform,
		inUse:       true,
	}

	if len(g.freeList) > 0 {
		idx := g.freeList[len(g.freeList)-1]
		g.freeList = g.freeList[:len(g.freeList)-1]
		g.nodes[idx] = n
		return TransformRef(idx)
	}

	g.nodes = append(g.nodes, n)
	return TransformRef(len(g.nodes) - 1)
}

// Destroy detaches ref from its parent, orphans its children (they become
// root transforms), and returns the slot to the free list.
func (g *Graph) Destroy(ref TransformRef) {
	n := g.node(ref)
	if n == nil {
		return
	}
	g.SetParent(ref, NoTransform)
	for _, c := range n.children {
		g.node(c).parent = NoTransform
	}
	n.inUse = false
	n.children = nil
	g.freeList = append(g.freeList, uint32(ref))
}

func (g *Graph) node(ref TransformRef) *transformNode {
	if ref == NoTransform || int(ref) >= len(g.nodes) || !g.nodes[ref].inUse {
		return nil
	}
	return &g.nodes[ref]
}

// SetParent re-parents ref under parent (NoTransform to detach). It does not
// recompute world matrices; call ComputeWorldMatrix afterward.
func (g *Graph) SetParent(ref TransformRef, parent TransformRef) {
	n := g.node(ref)
	if n == nil {
		return
	}
	if old := g.node(n.parent); old != nil {
		for i, c := range old.children {
			if c == ref {
				old.children = append(old.children[:i], old.children[i+1:]...)
				break
			}
		}
	}
	n.parent = parent
	if p := g.node(parent); p != nil {
		p.children = append(p.children, ref)
	}
}

// SetInheritanceMode sets how ref's world matrix picks up its parent.
func (g *Graph) SetInheritanceMode(ref TransformRef, mode InheritanceMode) {
	if n := g.node(ref); n != nil {
		n.mode = mode
		n.dirty = true
	}
}

// SetTranslation updates the local translation and marks ref and its
// descendants dirty.
func (g *Graph) SetTranslation(ref TransformRef, v kmath.Vec3) {
	if n := g.node(ref); n != nil {
		n.translation = v
		g.markDirty(ref)
	}
}

// SetRotation updates the local rotation and marks ref and its descendants
// dirty.
func (g *Graph) SetRotation(ref TransformRef, q kmath.Quaternion) {
	if n := g.node(ref); n != nil {
		n.rotation = q
		g.markDirty(ref)
	}
}

// SetScale updates the local scale and marks ref and its descendants dirty.
func (g *Graph) SetScale(ref TransformRef, v kmath.Vec3) {
	if n := g.node(ref); n != nil {
		n.scale = v
		g.markDirty(ref)
	}
}

// SetWorldPosition sets the translation such that ref's world position
// equals p, accounting for the current parent chain.
func (g *Graph) SetWorldPosition(ref TransformRef, p kmath.Vec3) {
	n := g.node(ref)
	if n == nil {
		return
	}
	parent := g.node(n.parent)
	if parent == nil {
		g.SetTranslation(ref, p)
		return
	}
	local := p.Transform(parent.world.Inverse())
	g.SetTranslation(ref, local)
}

// RotateAboutAxis left-multiplies the local rotation by a rotation of
// angleRadians about axis.
func (g *Graph) RotateAboutAxis(ref TransformRef, axis kmath.Vec3, angleRadians float32) {
	n := g.node(ref)
	if n == nil {
		return
	}
	delta := kmath.NewQuatFromAxisAngle(axis, angleRadians, true)
	n.rotation = delta.Mul(n.rotation)
	g.markDirty(ref)
}

// Decompose extracts translation, rotation, and scale from matrix and
// installs them as ref's local components. The world matrix is not
// recomputed until the caller calls ComputeWorldMatrix.
func (g *Graph) Decompose(ref TransformRef, matrix kmath.Mat4) {
	n := g.node(ref)
	if n == nil {
		return
	}
	t, r, s := kmath.Decompose(matrix)
	n.translation = t
	n.rotation = r
	n.scale = s
	n.dirty = true
}

func (g *Graph) markDirty(ref TransformRef) {
	n := g.node(ref)
	if n == nil {
		return
	}
	n.dirty = true
	for _, c := range n.children {
		g.markDirty(c)
	}
}

func (g *Graph) localMatrix(n *transformNode) kmath.Mat4 {
	r := n.rotation.ToMat4()
	tr := r.Mul(kmath.NewMat4Translation(n.translation))
	s := kmath.NewMat4Scale(n.scale)
	return s.Mul(tr)
}

// ComputeWorldMatrix recomputes ref's local and world matrices and recurses
// into every descendant in depth-first order, regardless of dirty state, so
// callers get a guaranteed-fresh subtree.
func (g *Graph) ComputeWorldMatrix(ref TransformRef) {
	n := g.node(ref)
	if n == nil {
		return
	}
	n.local = g.localMatrix(n)
	n.dirty = false

	parent := g.node(n.parent)
	switch {
	case parent == nil:
		n.world = n.local
	case n.mode == InheritTranslationOnly:
		n.world = n.local.Mul(kmath.NewMat4Translation(parent.world.GetTranslation()))
	case n.mode == PreserveOrientation:
		worldPos := n.translation.Transform(parent.world)
		n.world = n.local.WithTranslation(worldPos)
	default:
		n.world = n.local.Mul(parent.world)
	}

	for _, c := range n.children {
		g.ComputeWorldMatrix(c)
	}
}

// World returns ref's last-computed world matrix.
func (g *Graph) World(ref TransformRef) kmath.Mat4 {
	if n := g.node(ref); n != nil {
		return n.world
	}
	return kmath.NewMat4Identity()
}

// Local returns ref's last-computed local matrix.
func (g *Graph) Local(ref TransformRef) kmath.Mat4 {
	if n := g.node(ref); n != nil {
		return n.local
	}
	return kmath.NewMat4Identity()
}

// Translation returns ref's local translation component.
func (g *Graph) Translation(ref TransformRef) kmath.Vec3 {
	if n := g.node(ref); n != nil {
		return n.translation
	}
	return kmath.NewVec3Zero()
}

// Rotation returns ref's local rotation component.
func (g *Graph) Rotation(ref TransformRef) kmath.Quaternion {
	if n := g.node(ref); n != nil {
		return n.rotation
	}
	return kmath.NewQuatIdentity()
}

// Scale returns ref's local scale component.
func (g *Graph) Scale(ref TransformRef) kmath.Vec3 {
	if n := g.node(ref); n != nil {
		return n.scale
	}
	return kmath.NewVec3One()
}

// Mode returns ref's inheritance mode.
func (g *Graph) Mode(ref TransformRef) InheritanceMode {
	if n := g.node(ref); n != nil {
		return n.mode
	}
	return InheritAll
}

// Parent returns ref's parent, or NoTransform if ref is a root or invalid.
func (g *Graph) Parent(ref TransformRef) TransformRef {
	if n := g.node(ref); n != nil {
		return n.parent
	}
	return NoTransform
}

// Children returns ref's children. The returned slice must not be mutated.
func (g *Graph) Children(ref TransformRef) []TransformRef {
	if n := g.node(ref); n != nil {
		return n.children
	}
	return nil
}
