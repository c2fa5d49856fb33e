// Package resources implements the resource handle and cache:
// UUID-identified payloads shared by pointer between the loader and graphics
// threads, with behavior/status bitsets controlling lifetime and
// serialization. Handles keep no reference count.
package resources

import (
	"sync"

	"github.com/google/uuid"
	"github.com/kestrel3d/render-core/engine/core"
)

// Behavior is a bitset of resource-handle behavior flags, fixed at creation.
type Behavior uint16

const (
	BehaviorRemovable Behavior = 1 << iota
	BehaviorChild
	BehaviorParent
	BehaviorRuntimeGenerated
	BehaviorCore
	BehaviorUnsaved
	BehaviorUsesJSON
	BehaviorHidden
)

// Status is a bitset of resource-handle status flags, mutated as a handle
// moves through its load lifecycle.
type Status uint8

const (
	StatusLoading Status = 1 << iota
	StatusConstructed
)

// Kind tags the concrete payload type a Handle carries, used for dispatch
// instead of runtime type assertions.
type Kind uint8

const (
	KindMesh Kind = iota
	KindSkeleton
	KindModel
	KindAnimation
	KindMaterial
	KindTexture
	KindCubemap
	KindShaderProgram
	KindAudio
	KindPythonScript
)

// Payload is the tagged-variant contract every concrete resource payload
// satisfies. PostConstruction runs once a load's raw data is ready;
// graphics-kind payloads must be invoked from the graphics thread.
type Payload interface {
	Kind() Kind
	PostConstruction(data interface{}) error
	OnRemoval()
}

// Handle is a UUID-identified resource node, shared by pointer; it keeps
// no reference count. Payload
// installation and status transitions are guarded by a per-handle mutex, as
// required by the loader/graphics-thread sharing model.
type Handle struct {
	mu sync.Mutex

	uuid     uuid.UUID
	name     string
	kind     Kind
	behavior Behavior
	status   Status

	payload  Payload
	lastErr  error

	parent   *Handle
	children []*Handle

	generation uint64 // bumped by the cache's Touch for LRU ordering
}

// NewHandle allocates a handle with a fresh UUID and the given name, kind,
// and behavior flags. It starts with no payload and unset status.
func NewHandle(name string, kind Kind, behavior Behavior) *Handle {
	return &Handle{
		uuid:     uuid.New(),
		name:     name,
		kind:     kind,
		behavior: behavior,
	}
}

func (h *Handle) UUID() uuid.UUID { return h.uuid }
func (h *Handle) Name() string    { return h.name }
func (h *Handle) Kind() Kind      { return h.kind }

func (h *Handle) IsRemovable() bool        { return h.behavior&BehaviorRemovable != 0 && h.behavior&BehaviorCore == 0 }
func (h *Handle) IsPermanent() bool        { return h.behavior&BehaviorRemovable == 0 }
func (h *Handle) IsChild() bool            { return h.behavior&BehaviorChild != 0 }
func (h *Handle) IsParent() bool           { return h.behavior&BehaviorParent != 0 }
func (h *Handle) IsRuntimeGenerated() bool { return h.behavior&BehaviorRuntimeGenerated != 0 }
func (h *Handle) IsCore() bool             { return h.behavior&BehaviorCore != 0 }
func (h *Handle) IsHidden() bool           { return h.behavior&BehaviorHidden != 0 }
func (h *Handle) IsUnsaved() bool {
	return h.behavior&BehaviorUnsaved != 0 || h.behavior&BehaviorCore != 0
}
func (h *Handle) UsesJSON() bool {
	return h.behavior&BehaviorUsesJSON != 0 || h.IsRuntimeGenerated()
}

// IsLoading reports whether a load is in flight for this handle.
func (h *Handle) IsLoading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status&StatusLoading != 0
}

// IsConstructed reports whether the payload has completed post-construction.
func (h *Handle) IsConstructed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status&StatusConstructed != 0
}

// setLoading marks a load as started.
func (h *Handle) setLoading() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status |= StatusLoading
	h.status &^= StatusConstructed
	h.lastErr = nil
}

// setConstructed marks the payload as fully usable. It is an invariant
// violation to call this before setLoading: a handle must announce it is
// loading before it can be marked constructed.
func (h *Handle) setConstructed() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status&StatusLoading == 0 {
		return core.ErrInvariantViolation
	}
	h.status |= StatusConstructed
	h.status &^= StatusLoading
	return nil
}

// setFailed clears loading without setting constructed, and records the
// failure reason for later inspection.
func (h *Handle) setFailed(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status &^= StatusLoading
	h.lastErr = err
}

// LastError returns the reason the most recent load failed, or nil.
func (h *Handle) LastError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

// Payload returns the handle's current payload, or nil if unset/evicted.
func (h *Handle) Payload() Payload {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.payload
}

func (h *Handle) setPayload(p Payload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payload = p
}

// AddChild links child under h, flagging both sides of the DAG edge.
// Multiple parents are not supported by the present design.
func (h *Handle) AddChild(child *Handle) {
	h.mu.Lock()
	h.children = append(h.children, child)
	h.behavior |= BehaviorParent
	h.mu.Unlock()

	child.mu.Lock()
	child.parent = h
	child.behavior |= BehaviorChild
	child.mu.Unlock()
}

// Children returns h's children. The returned slice must not be mutated.
func (h *Handle) Children() []*Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.children
}

// Parent returns h's parent, or nil if h is a root handle.
func (h *Handle) Parent() *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.parent
}

// postConstructTree recursively post-constructs h's payload, then each
// child in depth-first order, per the cache's post-construction contract.
func (h *Handle) postConstructTree(data interface{}) error {
	h.mu.Lock()
	payload := h.payload
	h.mu.Unlock()

	if payload == nil {
		return core.ErrNotFound
	}
	if err := payload.PostConstruction(data); err != nil {
		h.setFailed(err)
		return err
	}
	if err := h.setConstructed(); err != nil {
		return err
	}

	for _, c := range h.Children() {
		if err := c.postConstructTree(nil); err != nil {
			return err
		}
	}
	return nil
}
