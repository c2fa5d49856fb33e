package scene

import (
	"math"
	"testing"

	kmath "github.com/kestrel3d/render-core/engine/math"
)

func matricesApproxEqual(a, b kmath.Mat4, tolerance float32) bool {
	for i := 0; i < 16; i++ {
		d := a.Data[i] - b.Data[i]
		if d < 0 {
			d = -d
		}
		if d > tolerance {
			return false
		}
	}
	return true
}

// TestDecomposeRoundTrip exercises the decompose round-trip law: for a
// non-degenerate scale, decomposing T*R*S and recomposing from the result
// reproduces the original matrix within tolerance.
func TestDecomposeRoundTrip(t *testing.T) {
	translation := kmath.NewVec3(3, -2, 5)
	rotation := kmath.NewQuatFromAxisAngle(kmath.NewVec3(0, 1, 0), math.Pi/4, true)
	scale := kmath.NewVec3(2, 3, 0.5)

	original := kmath.NewMat4Scale(scale).Mul(rotation.ToMat4().Mul(kmath.NewMat4Translation(translation)))

	g := NewGraph()
	ref := g.Create()
	g.Decompose(ref, original)
	g.ComputeWorldMatrix(ref)

	recomposed := g.Local(ref)
	if !matricesApproxEqual(original, recomposed, 1e-4) {
		t.Fatalf("recomposed matrix = %+v, want %+v (within tolerance)", recomposed.Data, original.Data)
	}
}

func TestRootWorldMatrixEqualsLocal(t *testing.T) {
	g := NewGraph()
	ref := g.Create()
	g.SetTranslation(ref, kmath.NewVec3(1, 2, 3))
	g.ComputeWorldMatrix(ref)

	if !matricesApproxEqual(g.World(ref), g.Local(ref), 1e-5) {
		t.Fatalf("root world matrix != local matrix")
	}
}

// TestChildWorldMatrixComposesWithParent checks the world-matrix invariant:
// child.world == child.local * parent.world under full inheritance.
func TestChildWorldMatrixComposesWithParent(t *testing.T) {
	g := NewGraph()
	parent := g.Create()
	child := g.Create()
	g.SetParent(child, parent)

	g.SetTranslation(parent, kmath.NewVec3(10, 0, 0))
	g.SetTranslation(child, kmath.NewVec3(0, 5, 0))
	g.ComputeWorldMatrix(parent)

	want := g.Local(child).Mul(g.World(parent))
	if !matricesApproxEqual(g.World(child), want, 1e-5) {
		t.Fatalf("child world = %+v, want local*parent.world = %+v", g.World(child).Data, want.Data)
	}

	gotPos := kmath.NewVec3(0, 0, 0).Transform(g.World(child))
	wantPos := kmath.NewVec3(10, 5, 0)
	if gotPos.Distance(wantPos) > 1e-4 {
		t.Fatalf("child world position = %+v, want %+v", gotPos, wantPos)
	}
}

func TestInheritTranslationOnlyDropsParentRotationAndScale(t *testing.T) {
	g := NewGraph()
	parent := g.Create()
	child := g.Create()
	g.SetParent(child, parent)
	g.SetInheritanceMode(child, InheritTranslationOnly)

	g.SetScale(parent, kmath.NewVec3(10, 10, 10))
	g.SetRotation(parent, kmath.NewQuatFromAxisAngle(kmath.NewVec3(0, 1, 0), math.Pi/2, true))
	g.SetTranslation(parent, kmath.NewVec3(1, 2, 3))
	g.SetTranslation(child, kmath.NewVec3(0, 0, 0))
	g.ComputeWorldMatrix(parent)

	gotScale := g.World(child).GetScale()
	if gotScale.Distance(kmath.NewVec3(1, 1, 1)) > 1e-4 {
		t.Fatalf("child world scale = %+v, want (1,1,1) despite parent's 10x scale", gotScale)
	}

	gotPos := g.World(child).GetTranslation()
	if gotPos.Distance(kmath.NewVec3(1, 2, 3)) > 1e-4 {
		t.Fatalf("child world position = %+v, want parent's translation (1,2,3)", gotPos)
	}
}

func TestDestroyOrphansChildrenAndRecyclesSlot(t *testing.T) {
	g := NewGraph()
	parent := g.Create()
	child := g.Create()
	g.SetParent(child, parent)

	g.Destroy(parent)
	if g.Parent(child) != NoTransform {
		t.Fatalf("expected child to be orphaned after parent destroyed, got parent=%v", g.Parent(child))
	}

	recycled := g.Create()
	if recycled != parent {
		t.Fatalf("expected Create to recycle the freed slot %v, got %v", parent, recycled)
	}
}

func TestSetWorldPositionAccountsForParentTransform(t *testing.T) {
	g := NewGraph()
	parent := g.Create()
	child := g.Create()
	g.SetParent(child, parent)
	g.SetTranslation(parent, kmath.NewVec3(5, 0, 0))
	g.ComputeWorldMatrix(parent)

	g.SetWorldPosition(child, kmath.NewVec3(5, 5, 0))
	g.ComputeWorldMatrix(parent)

	gotPos := kmath.NewVec3(0, 0, 0).Transform(g.World(child))
	if gotPos.Distance(kmath.NewVec3(5, 5, 0)) > 1e-4 {
		t.Fatalf("child world position = %+v, want (5,5,0)", gotPos)
	}
}
