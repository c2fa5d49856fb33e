package mesh

import (
	"testing"

	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
)

func cubeVertices() []kmath.Vertex3D {
	return []kmath.Vertex3D{
		{Position: kmath.NewVec3(-1, -1, -1)},
		{Position: kmath.NewVec3(1, -1, -1)},
		{Position: kmath.NewVec3(1, 1, -1)},
		{Position: kmath.NewVec3(-1, 1, 1)},
	}
}

func TestVertexArrayDataCreateIsDrawable(t *testing.T) {
	ctx := gpu.NewNullContext()
	vad, err := Create(ctx, cubeVertices(), []uint32{0, 1, 2, 0, 2, 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !vad.Drawable() {
		t.Fatal("expected vertex array to be drawable after Create")
	}
	if vad.VertexCount != 4 || vad.IndexCount != 6 {
		t.Fatalf("got vertex/index count %d/%d, want 4/6", vad.VertexCount, vad.IndexCount)
	}

	vad.Draw(1)
	if len(ctx.DrawCalls) != 1 {
		t.Fatalf("expected 1 draw call, got %d", len(ctx.DrawCalls))
	}
	if ctx.DrawCalls[0].IndexCount != 6 {
		t.Fatalf("draw call index count = %d, want 6", ctx.DrawCalls[0].IndexCount)
	}

	vad.Destroy()
	if vad.Drawable() {
		t.Fatal("expected vertex array to not be drawable after Destroy")
	}
	vad.Draw(1) // must not panic or record a new draw call
	if len(ctx.DrawCalls) != 1 {
		t.Fatal("Draw after Destroy must be a no-op")
	}
}

func TestMeshPostConstructionGeneratesBounds(t *testing.T) {
	ctx := gpu.NewNullContext()
	m := New()
	raw := &RawData{Ctx: ctx, Vertices: cubeVertices(), Indices: []uint32{0, 1, 2, 0, 2, 3}}
	if err := m.PostConstruction(raw); err != nil {
		t.Fatalf("PostConstruction: %v", err)
	}
	if !m.Drawable() {
		t.Fatal("expected mesh to be drawable after PostConstruction")
	}

	want := kmath.Extents3D{Min: kmath.NewVec3(-1, -1, -1), Max: kmath.NewVec3(1, 1, 1)}
	if !m.ObjectBounds.Min.Compare(want.Min, 1e-5) || !m.ObjectBounds.Max.Compare(want.Max, 1e-5) {
		t.Fatalf("ObjectBounds = %+v, want %+v", m.ObjectBounds, want)
	}

	m.OnRemoval()
	if m.Drawable() {
		t.Fatal("expected mesh to not be drawable after OnRemoval")
	}
}

func TestMeshPostConstructionRejectsWrongPayload(t *testing.T) {
	m := New()
	if err := m.PostConstruction("not a *mesh.RawData"); err == nil {
		t.Fatal("expected an error for a mistyped post-construction payload")
	}
}
