package renderable

import (
	"testing"

	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/mesh"
	"github.com/kestrel3d/render-core/engine/resources"
)

func TestMeshRenderableDrawsConstructedMesh(t *testing.T) {
	ctx := gpu.NewNullContext()
	h := resources.NewHandle("test-cube", resources.KindMesh, resources.BehaviorRemovable)

	r := NewMeshRenderable(h, nil)
	if _, ok := r.ObjectBounds(); ok {
		t.Fatal("expected no bounds before the handle carries a payload")
	}

	cache := resources.NewCache(nil, nil, 0)
	if err := cache.Insert(h); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := cache.Load(h, true, func() (resources.Payload, interface{}, error) {
		return mesh.New(), &mesh.RawData{
			Ctx:      ctx,
			Vertices: []kmath.Vertex3D{{Position: kmath.NewVec3(0, 0, 0)}, {Position: kmath.NewVec3(1, 0, 0)}, {Position: kmath.NewVec3(0, 1, 0)}},
			Indices:  []uint32{0, 1, 2},
		}, nil
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	r.DrawGeometry(ctx)
	if len(ctx.DrawCalls) != 1 {
		t.Fatalf("expected 1 draw call, got %d", len(ctx.DrawCalls))
	}
	if _, ok := r.ObjectBounds(); !ok {
		t.Fatal("expected bounds once the handle carries a constructed mesh payload")
	}
}

func TestMeshRenderableSkipsDrawWithoutPayload(t *testing.T) {
	h := resources.NewHandle("empty", resources.KindMesh, resources.BehaviorRemovable)
	r := NewMeshRenderable(h, nil)
	ctx := gpu.NewNullContext()
	r.DrawGeometry(ctx) // must not panic
	if len(ctx.DrawCalls) != 0 {
		t.Fatal("expected no draw call for a handle with no mesh payload")
	}
	if _, ok := r.ObjectBounds(); ok {
		t.Fatal("expected no bounds for a handle with no mesh payload")
	}
}

func TestMeshRenderableSortIDIsStablePerHandle(t *testing.T) {
	h := resources.NewHandle("stable", resources.KindMesh, resources.BehaviorRemovable)
	r := NewMeshRenderable(h, nil)
	first := r.SortID()
	second := r.SortID()
	if first != second {
		t.Fatalf("SortID changed between calls: %d != %d", first, second)
	}
}

func TestBaseBindTexturesRespectsIgnoreFlag(t *testing.T) {
	ctx := gpu.NewNullContext()
	b := &Base{Textures: []gpu.Texture{1, 2, 3}}
	b.RenderSettings.Ignore = IgnoreTextures
	b.BindTextures(ctx)
	if len(ctx.BoundTextures) != 0 {
		t.Fatalf("BindTextures with IgnoreTextures bound %v, want nothing", ctx.BoundTextures)
	}

	b.RenderSettings.Ignore = 0
	b.BindTextures(ctx)
	for unit, want := range b.Textures {
		if got := ctx.BoundTextures[unit]; got != want {
			t.Fatalf("texture unit %d bound to %d, want %d", unit, got, want)
		}
	}
	if ctx.BoundFramebuffer != 0 {
		t.Fatal("BindTextures must not touch framebuffer state")
	}
}
