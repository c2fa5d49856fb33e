package command

import (
	"sort"
	"testing"

	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/renderable"
	"github.com/kestrel3d/render-core/engine/renderer/shader"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
)

// stubCamera is a minimal command.Camera for tests that don't need a real
// view matrix.
type stubCamera struct {
	view     kmath.Mat4
	viewport uint8
}

func (c stubCamera) ViewMatrix() kmath.Mat4 { return c.view }
func (c stubCamera) ViewportBucket() uint8  { return c.viewport }

// stubRenderable satisfies renderable.Renderable with just enough behavior
// to drive sort-key construction.
type stubRenderable struct {
	settings renderable.Settings
}

func (r stubRenderable) Settings() renderable.Settings  { return r.settings }
func (r stubRenderable) PassFlags() renderable.PassFlag { return 0 }
func (r stubRenderable) ShaderProgram() *shader.Program { return nil }
func (r stubRenderable) PrepassShaderProgram() *shader.Program { return nil }
func (r stubRenderable) ObjectBounds() (kmath.Extents3D, bool) { return kmath.Extents3D{}, false }
func (r stubRenderable) BindUniforms(ctx gpu.Context, program *shader.Program, container *uniform.Container) {
}
func (r stubRenderable) BindTextures(ctx gpu.Context) {}
func (r stubRenderable) DrawGeometry(ctx gpu.Context)  {}
func (r stubRenderable) SortID() int                   { return 0 }

func rendWith(settings renderable.Settings) renderable.Renderable {
	return stubRenderable{settings: settings}
}

func TestSortKeyPackAndWithDepthRoundTrip(t *testing.T) {
	k := Pack(BucketTransparent, 5, 100, 7, 12345)
	if k.Bucket() != BucketTransparent || k.LayerOrder() != 5 || k.MaterialSortID() != 100 || k.ShaderProgramID() != 7 || k.Depth() != 12345 {
		t.Fatalf("unpacked fields don't round-trip: %+v", k)
	}

	k2 := k.WithDepth(99)
	if k2.Depth() != 99 {
		t.Fatalf("WithDepth did not update depth: got %d", k2.Depth())
	}
	if k2.Bucket() != k.Bucket() || k2.LayerOrder() != k.LayerOrder() || k2.MaterialSortID() != k.MaterialSortID() || k2.ShaderProgramID() != k.ShaderProgramID() {
		t.Fatal("WithDepth must not disturb the other fields")
	}
}

func TestIdenticalInputsProduceByteIdenticalSortKeys(t *testing.T) {
	a := Pack(BucketOpaque, 3, 10, 2, 500)
	b := Pack(BucketOpaque, 3, 10, 2, 500)
	if a != b {
		t.Fatalf("identical inputs produced different sort keys: %d != %d", a, b)
	}
}

func TestOnAddToQueueBucketsByTransparency(t *testing.T) {
	cam := stubCamera{view: kmath.NewMat4Identity()}
	opaque := &DrawCommand{Renderable: rendWith(renderable.Settings{Transparency: renderable.TransparencyOpaque}), Camera: cam}
	transparent := &DrawCommand{Renderable: rendWith(renderable.Settings{Transparency: renderable.TransparencyTransparent}), Camera: cam}

	opaque.OnAddToQueue(1, 1)
	transparent.OnAddToQueue(1, 1)

	if opaque.SortKey.Bucket() >= transparent.SortKey.Bucket() {
		t.Fatalf("expected opaque bucket < transparent bucket, got %d >= %d", opaque.SortKey.Bucket(), transparent.SortKey.Bucket())
	}
}

func TestNormalizeDepthOrdersOpaqueAscendingTransparentDescending(t *testing.T) {
	opaqueSettings := renderable.Settings{Transparency: renderable.TransparencyOpaque}
	transparentSettings := renderable.Settings{Transparency: renderable.TransparencyTransparent}

	depths := []struct {
		transparent bool
		depth       float32
	}{
		{false, 1}, {false, 5}, {false, 3}, {true, 2}, {true, 4},
	}

	cmds := make([]*DrawCommand, len(depths))
	for i, d := range depths {
		settings := opaqueSettings
		if d.transparent {
			settings = transparentSettings
		}
		c := &DrawCommand{Renderable: rendWith(settings), Depth: d.depth}
		c.OnAddToQueue(1, 1)
		cmds[i] = c
	}
	NormalizeDepth(cmds)
	sort.SliceStable(cmds, func(i, j int) bool { return cmds[i].SortKey < cmds[j].SortKey })

	lastOpaqueDepth := float32(-1)
	seenTransparent := false
	lastTransparentDepth := float32(-1)
	for _, c := range cmds {
		if c.IsTransparent() {
			seenTransparent = true
			if lastTransparentDepth >= 0 && c.Depth > lastTransparentDepth {
				t.Fatalf("transparent depth increased: %f after %f", c.Depth, lastTransparentDepth)
			}
			lastTransparentDepth = c.Depth
			continue
		}
		if seenTransparent {
			t.Fatal("an opaque command sorted after a transparent one")
		}
		if c.Depth < lastOpaqueDepth {
			t.Fatalf("opaque depth decreased: %f after %f", c.Depth, lastOpaqueDepth)
		}
		lastOpaqueDepth = c.Depth
	}
}

func TestMaterialBucketsGroupAfterSort(t *testing.T) {
	matA, matB := uint16(1), uint16(2)
	settings := renderable.Settings{Transparency: renderable.TransparencyOpaque}

	order := []uint16{matA, matB, matA, matB}
	cmds := make([]*DrawCommand, len(order))
	for i, mat := range order {
		c := &DrawCommand{Renderable: rendWith(settings), Depth: float32(i)}
		c.OnAddToQueue(mat, 1)
		cmds[i] = c
	}
	NormalizeDepth(cmds)
	sort.SliceStable(cmds, func(i, j int) bool { return cmds[i].SortKey < cmds[j].SortKey })

	seenB := false
	for i := 1; i < len(cmds); i++ {
		cur, prev := cmds[i].SortKey.MaterialSortID(), cmds[i-1].SortKey.MaterialSortID()
		if cur == matB {
			seenB = true
		}
		if seenB && cur == matA {
			t.Fatal("material A appeared after material B started: buckets did not group")
		}
		_ = prev
	}
}

func TestPreSortUsesCameraViewSpaceZ(t *testing.T) {
	cam := stubCamera{view: kmath.NewMat4LookAt(kmath.NewVec3(0, 0, 5), kmath.NewVec3(0, 0, 0), kmath.NewVec3(0, 1, 0))}
	c := &DrawCommand{Camera: cam}
	c.PreSort(kmath.NewVec3(0, 0, 0))
	if c.Depth >= 0 {
		t.Fatalf("expected a negative view-space z looking down -Z from z=5, got %f", c.Depth)
	}
}
