// Package uniform implements the process-wide uniform value store: a set of
// per-type arenas that producers (animation, scene step) publish into and
// the graphics thread reads from when updating shader uniforms for a frame.
package uniform

import (
	"sync"

	kmath "github.com/kestrel3d/render-core/engine/math"
)

// Mat2x2 and Mat3x3 round out the matrix kinds the math package doesn't
// otherwise need; Mat4 already exists as kmath.Mat4.
type Mat2x2 [4]float32
type Mat3x3 [9]float32

// Arena is a stable-index, never-shrinking store for one concrete value
// type. A storage index returned by Push is valid until the arena itself is
// discarded; indices are not portable across arenas of different types.
type Arena[T any] struct {
	values []T
}

// Push appends value and returns its storage index: 0 on the first call,
// then 1, 2, … in push order.
func (a *Arena[T]) Push(value T) int {
	a.values = append(a.values, value)
	return len(a.values) - 1
}

// Get returns the value at index. Panics on an out-of-range index, the same
// contract as indexing the underlying slice.
func (a *Arena[T]) Get(index int) T {
	return a.values[index]
}

// Set overwrites the value at index.
func (a *Arena[T]) Set(index int, value T) {
	a.values[index] = value
}

// Len returns the number of values currently stored.
func (a *Arena[T]) Len() int {
	return len(a.values)
}

// EnsureSize grows the arena to hold at least n zero-initialized values.
// Idempotent once Len() >= n; never shrinks.
func (a *Arena[T]) EnsureSize(n int) {
	if len(a.values) >= n {
		return
	}
	grown := make([]T, n)
	copy(grown, a.values)
	a.values = grown
}

// Container is the process-wide uniform value store: one arena per concrete
// value kind the render pipeline and shader system need to hold. Arenas are
// read and mutated by the graphics thread only; other producers must
// publish their writes before the graphics thread sorts commands for the
// frame, per the per-frame barrier.
type Container struct {
	mu sync.Mutex

	Bools    Arena[bool]
	Ints     Arena[int32]
	Uints    Arena[uint32]
	Float32s Arena[float32]
	Float64s Arena[float64]

	Vec2Ints Arena[[2]int32]
	Vec3Ints Arena[[3]int32]
	Vec4Ints Arena[[4]int32]

	Vec2s Arena[kmath.Vec2]
	Vec3s Arena[kmath.Vec3]
	Vec4s Arena[kmath.Vec4]

	Mat2s Arena[Mat2x2]
	Mat3s Arena[Mat3x3]
	Mat4s Arena[kmath.Mat4]

	Float32Lists Arena[[]float32]
	Vec3List     Arena[[]kmath.Vec3]
	Vec4List     Arena[[]kmath.Vec4]
	Mat4List     Arena[[]kmath.Mat4]
}

// NewContainer returns an empty uniform value store.
func NewContainer() *Container {
	return &Container{}
}

// Lock acquires the container's mutex. Callers that push or grow more than
// one arena as a unit should wrap the sequence in Lock/Unlock; single
// push/get/set calls on a generic Arena are not independently synchronized,
// so concurrent producers must serialize through this lock.
func (c *Container) Lock() {
	c.mu.Lock()
}

// Unlock releases the container's mutex.
func (c *Container) Unlock() {
	c.mu.Unlock()
}

// Push appends value to the container's T-typed arena, chosen by the arena
// argument (e.g. &container.Float32s), and returns its stable storage index.
func Push[T any](a *Arena[T], value T) int {
	return a.Push(value)
}

// Get reads the value at index from arena a.
func Get[T any](a *Arena[T], index int) T {
	return a.Get(index)
}

// Set overwrites the value at index in arena a.
func Set[T any](a *Arena[T], index int, value T) {
	a.Set(index, value)
}

// EnsureSize grows arena a to hold at least n zero-initialized values.
func EnsureSize[T any](a *Arena[T], n int) {
	a.EnsureSize(n)
}
