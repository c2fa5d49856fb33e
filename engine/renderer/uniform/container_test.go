package uniform

import (
	"testing"

	kmath "github.com/kestrel3d/render-core/engine/math"
)

// TestPushReturnsSequentialIndicesStartingAtZero checks the push
// boundary behavior: the first push into an empty arena returns 0, and
// each push after that returns the next index in order.
func TestPushReturnsSequentialIndicesStartingAtZero(t *testing.T) {
	var arena Arena[float32]

	if got := arena.Push(1); got != 0 {
		t.Fatalf("first Push = %d, want 0", got)
	}
	if got := arena.Push(2); got != 1 {
		t.Fatalf("second Push = %d, want 1", got)
	}
	if got := arena.Push(3); got != 2 {
		t.Fatalf("third Push = %d, want 2", got)
	}
	if arena.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", arena.Len())
	}
}

func TestGetReturnsValuePushedAtIndex(t *testing.T) {
	var arena Arena[kmath.Vec4]
	want := kmath.NewVec4Create(1, 2, 3, 4)
	idx := arena.Push(want)
	if got := arena.Get(idx); got != want {
		t.Fatalf("Get(%d) = %+v, want %+v", idx, got, want)
	}
}

func TestSetOverwritesValueAtIndex(t *testing.T) {
	var arena Arena[int32]
	idx := arena.Push(10)
	arena.Set(idx, 99)
	if got := arena.Get(idx); got != 99 {
		t.Fatalf("Get after Set = %d, want 99", got)
	}
}

func TestEnsureSizeGrowsWithoutShrinkingOrLosingData(t *testing.T) {
	var arena Arena[float32]
	arena.Push(1)
	arena.Push(2)

	arena.EnsureSize(5)
	if arena.Len() != 5 {
		t.Fatalf("Len() after EnsureSize(5) = %d, want 5", arena.Len())
	}
	if got := arena.Get(0); got != 1 {
		t.Fatalf("Get(0) after grow = %f, want 1 (original data preserved)", got)
	}
	if got := arena.Get(1); got != 2 {
		t.Fatalf("Get(1) after grow = %f, want 2 (original data preserved)", got)
	}

	arena.EnsureSize(2)
	if arena.Len() != 5 {
		t.Fatalf("Len() after a no-op EnsureSize(2) = %d, want 5 (arenas never shrink)", arena.Len())
	}
}

func TestContainerPackageLevelPushAndGet(t *testing.T) {
	c := NewContainer()
	idx := Push(&c.Mat4s, kmath.NewMat4Identity())
	got := Get(&c.Mat4s, idx)
	if got != kmath.NewMat4Identity() {
		t.Fatalf("package-level Get(%d) = %+v, want identity", idx, got)
	}
}

func TestContainerLockUnlockSerializesMultiArenaPublish(t *testing.T) {
	c := NewContainer()
	c.Lock()
	modelIdx := Push(&c.Mat4s, kmath.NewMat4Identity())
	colorIdx := Push(&c.Vec4s, kmath.NewVec4Create(1, 1, 1, 1))
	c.Unlock()

	if c.Mat4s.Get(modelIdx) != kmath.NewMat4Identity() {
		t.Fatalf("model matrix not published correctly")
	}
	if c.Vec4s.Get(colorIdx) != kmath.NewVec4Create(1, 1, 1, 1) {
		t.Fatalf("color not published correctly")
	}
}
