package scene

import (
	"sort"

	kmath "github.com/kestrel3d/render-core/engine/math"
)

// ComponentType indexes a SceneObject's component table. Each object holds
// at most one component of a given type.
type ComponentType uint8

const (
	ComponentCamera ComponentType = iota
	ComponentLight
	ComponentModel
	ComponentCanvas
	ComponentAudioSource
	ComponentAudioListener
	ComponentCharacterController
	ComponentRigidBody
	ComponentBoneAnimation
	ComponentShaderPreset
	ComponentCubemap
	ComponentScriptBehavior
	ComponentListener
	ComponentCatchAll
	componentTypeCount
)

// Component is implemented by anything attachable to a SceneObject. Bounds
// returns false when the component contributes no world bounds (a script
// behavior, say).
type Component interface {
	Bounds() (kmath.Extents3D, bool)
}

// ObjectID is a recycled 32-bit scene-object identifier. Ids start at 0; the
// invalid id is NoObject (all bits set), not the zero value.
type ObjectID uint32

// NoObject is the sentinel meaning "no object" / invalid.
const NoObject ObjectID = 0xFFFFFFFF

// ComponentTypeCount is the number of component slots every SceneObject
// carries, one per ComponentType.
const ComponentTypeCount = componentTypeCount

type sceneObjectNode struct {
	name       string
	transform  TransformRef
	components [componentTypeCount]Component
	layers     map[uint8]struct{}
	bounds     kmath.Extents3D

	parent   ObjectID
	children []ObjectID

	inUse bool
}

// Tree owns every SceneObject in a scene: a recycled-index arena of nodes
// plus the transform Graph backing their spatial component.
type Tree struct {
	Transforms *Graph

	nodes    []sceneObjectNode
	freeList []uint32
}

// NewTree returns an empty scene-object tree with its own transform graph.
func NewTree() *Tree {
	return &Tree{Transforms: NewGraph()}
}

// Create allocates a new, parentless scene object named name and returns its
// id.
func (t *Tree) Create(name string) ObjectID {
	n := sceneObjectNode{
		name:      name,
		transform: t.Transforms.Create(),
		layers:    make(map[uint8]struct{}),
		bounds:    kmath.NewExtents3DEmpty(),
		parent:    NoObject,
		inUse:     true,
	}

	if len(t.freeList) > 0 {
		idx := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.nodes[idx] = n
		return ObjectID(idx)
	}

	t.nodes = append(t.nodes, n)
	return ObjectID(len(t.nodes) - 1)
}

// Destroy detaches id from its parent, orphans its children, destroys its
// transform, and recycles the slot.
func (t *Tree) Destroy(id ObjectID) {
	n := t.node(id)
	if n == nil {
		return
	}
	t.SetParent(id, NoObject)
	for _, c := range n.children {
		t.node(c).parent = NoObject
	}
	t.Transforms.Destroy(n.transform)
	n.inUse = false
	n.children = nil
	t.freeList = append(t.freeList, uint32(id))
}

func (t *Tree) node(id ObjectID) *sceneObjectNode {
	if id == NoObject || int(id) >= len(t.nodes) || !t.nodes[id].inUse {
		return nil
	}
	return &t.nodes[id]
}

// SetParent re-parents id under parent (NoObject to detach) and links their
// transforms in the graph.
func (t *Tree) SetParent(id ObjectID, parent ObjectID) {
	n := t.node(id)
	if n == nil {
		return
	}
	if old := t.node(n.parent); old != nil {
		for i, c := range old.children {
			if c == id {
				old.children = append(old.children[:i], old.children[i+1:]...)
				break
			}
		}
	}
	n.parent = parent
	parentTransform := NoTransform
	if p := t.node(parent); p != nil {
		p.children = append(p.children, id)
		parentTransform = p.transform
	}
	t.Transforms.SetParent(n.transform, parentTransform)
}

// Name returns id's display name.
func (t *Tree) Name(id ObjectID) string {
	if n := t.node(id); n != nil {
		return n.name
	}
	return ""
}

// Transform returns id's transform ref.
func (t *Tree) Transform(id ObjectID) TransformRef {
	if n := t.node(id); n != nil {
		return n.transform
	}
	return NoTransform
}

// Parent returns id's parent, or NoObject if id is a root or invalid.
func (t *Tree) Parent(id ObjectID) ObjectID {
	if n := t.node(id); n != nil {
		return n.parent
	}
	return NoObject
}

// Children returns id's children. The returned slice must not be mutated.
func (t *Tree) Children(id ObjectID) []ObjectID {
	if n := t.node(id); n != nil {
		return n.children
	}
	return nil
}

// SetComponent attaches component under slot kind, replacing any existing
// one, and rebuilds id's world-bounds aggregate.
func (t *Tree) SetComponent(id ObjectID, kind ComponentType, component Component) {
	n := t.node(id)
	if n == nil {
		return
	}
	n.components[kind] = component
	t.rebuildBounds(n)
}

// Component returns id's component in slot kind, or nil if unset.
func (t *Tree) Component(id ObjectID, kind ComponentType) Component {
	if n := t.node(id); n != nil {
		return n.components[kind]
	}
	return nil
}

// ClearComponent removes id's component in slot kind, if any.
func (t *Tree) ClearComponent(id ObjectID, kind ComponentType) {
	n := t.node(id)
	if n == nil {
		return
	}
	n.components[kind] = nil
	t.rebuildBounds(n)
}

func (t *Tree) rebuildBounds(n *sceneObjectNode) {
	bounds := kmath.NewExtents3DEmpty()
	for _, c := range n.components {
		if c == nil {
			continue
		}
		if b, ok := c.Bounds(); ok {
			bounds = bounds.Union(b)
		}
	}
	n.bounds = bounds
}

// Bounds returns id's cached world-bounds aggregate, one AABB unioned across
// every contributing component.
func (t *Tree) Bounds(id ObjectID) kmath.Extents3D {
	if n := t.node(id); n != nil {
		return n.bounds
	}
	return kmath.NewExtents3DEmpty()
}

// AddLayer marks id as a member of render layer.
func (t *Tree) AddLayer(id ObjectID, layer uint8) {
	if n := t.node(id); n != nil {
		n.layers[layer] = struct{}{}
	}
}

// RemoveLayer removes id from render layer.
func (t *Tree) RemoveLayer(id ObjectID, layer uint8) {
	if n := t.node(id); n != nil {
		delete(n.layers, layer)
	}
}

// Layers returns id's render-layer memberships in ascending order.
func (t *Tree) Layers(id ObjectID) []uint8 {
	n := t.node(id)
	if n == nil || len(n.layers) == 0 {
		return nil
	}
	out := make([]uint8, 0, len(n.layers))
	for l := range n.layers {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasLayer reports whether id is a member of render layer.
func (t *Tree) HasLayer(id ObjectID, layer uint8) bool {
	n := t.node(id)
	if n == nil {
		return false
	}
	_, ok := n.layers[layer]
	return ok
}

// AllObjects returns every currently live object id, in arena order. The
// render command pipeline's generation pass walks this to find every
// candidate scene object for a camera.
func (t *Tree) AllObjects() []ObjectID {
	out := make([]ObjectID, 0, len(t.nodes))
	for i := range t.nodes {
		if t.nodes[i].inUse {
			out = append(out, ObjectID(i))
		}
	}
	return out
}
