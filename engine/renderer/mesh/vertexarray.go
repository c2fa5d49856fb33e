// Package mesh wraps a vertex/index buffer pair and the vertex array object
// that describes their layout, and the Mesh resource payload built on top of
// it: the vertex array owns GPU buffers, the mesh owns object-space bounds
// and resource-handle lifecycle.
package mesh

import (
	"encoding/binary"
	"math"

	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
)

// vertexStrideBytes is the interleaved byte size of one math.Vertex3D:
// position(12) + normal(12) + texcoord(8) + colour(16) + tangent(12).
const vertexStrideBytes = 60

// Attributes is the fixed vertex-attribute layout every Mesh uses, bound at
// the locations the engine's shader programs declare their `in` variables
// against.
var Attributes = []gpu.AttributeSpec{
	{Location: 0, Kind: gpu.AttributeFloat, Components: 3, Stride: vertexStrideBytes, Offset: 0},
	{Location: 1, Kind: gpu.AttributeFloat, Components: 3, Stride: vertexStrideBytes, Offset: 12},
	{Location: 2, Kind: gpu.AttributeFloat, Components: 2, Stride: vertexStrideBytes, Offset: 24},
	{Location: 3, Kind: gpu.AttributeFloat, Components: 4, Stride: vertexStrideBytes, Offset: 32},
	{Location: 4, Kind: gpu.AttributeFloat, Components: 3, Stride: vertexStrideBytes, Offset: 48},
}

func putFloat32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

// encodeVertices packs vertices into the interleaved byte layout Attributes
// describes.
func encodeVertices(vertices []kmath.Vertex3D) []byte {
	buf := make([]byte, len(vertices)*vertexStrideBytes)
	for i, v := range vertices {
		o := i * vertexStrideBytes
		putFloat32(buf[o+0:o+4], v.Position.X)
		putFloat32(buf[o+4:o+8], v.Position.Y)
		putFloat32(buf[o+8:o+12], v.Position.Z)
		putFloat32(buf[o+12:o+16], v.Normal.X)
		putFloat32(buf[o+16:o+20], v.Normal.Y)
		putFloat32(buf[o+20:o+24], v.Normal.Z)
		putFloat32(buf[o+24:o+28], v.Texcoord.X)
		putFloat32(buf[o+28:o+32], v.Texcoord.Y)
		putFloat32(buf[o+32:o+36], v.Colour.X)
		putFloat32(buf[o+36:o+40], v.Colour.Y)
		putFloat32(buf[o+40:o+44], v.Colour.Z)
		putFloat32(buf[o+44:o+48], v.Colour.W)
		putFloat32(buf[o+48:o+52], v.Tangent.X)
		putFloat32(buf[o+52:o+56], v.Tangent.Y)
		putFloat32(buf[o+56:o+60], v.Tangent.Z)
	}
	return buf
}

func encodeIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], idx)
	}
	return buf
}

// VertexArrayData owns one vertex buffer, one index buffer, and the vertex
// array object binding them together under Attributes. It is exclusively
// owned by the graphics thread per the engine's concurrency model.
type VertexArrayData struct {
	ctx gpu.Context

	VertexBuffer gpu.Buffer
	IndexBuffer  gpu.Buffer
	Handle       gpu.VertexArray

	VertexCount int
	IndexCount  int

	created bool
}

// Create uploads vertices and indices to new GPU buffers and builds the
// vertex array object over them.
func Create(ctx gpu.Context, vertices []kmath.Vertex3D, indices []uint32) (*VertexArrayData, error) {
	vertexBytes := encodeVertices(vertices)
	vb, err := ctx.CreateBuffer(len(vertexBytes), vertexBytes)
	if err != nil {
		return nil, err
	}

	indexBytes := encodeIndices(indices)
	ib, err := ctx.CreateBuffer(len(indexBytes), indexBytes)
	if err != nil {
		ctx.DestroyBuffer(vb)
		return nil, err
	}

	vao, err := ctx.CreateVertexArray(Attributes, []gpu.Buffer{vb}, ib)
	if err != nil {
		ctx.DestroyBuffer(vb)
		ctx.DestroyBuffer(ib)
		return nil, err
	}

	return &VertexArrayData{
		ctx:          ctx,
		VertexBuffer: vb,
		IndexBuffer:  ib,
		Handle:       vao,
		VertexCount:  len(vertices),
		IndexCount:   len(indices),
		created:      true,
	}, nil
}

// Drawable reports whether this vertex array has live GPU storage and at
// least one index to draw.
func (d *VertexArrayData) Drawable() bool {
	return d != nil && d.created && d.IndexCount > 0
}

// Draw issues instanceCount instances of this vertex array's indexed
// geometry. Callers must check Drawable first; Draw is a no-op otherwise.
func (d *VertexArrayData) Draw(instanceCount int) {
	if !d.Drawable() {
		return
	}
	d.ctx.Draw(d.Handle, d.IndexCount, instanceCount)
}

// Destroy releases the vertex array object and both backing buffers. Safe
// to call more than once.
func (d *VertexArrayData) Destroy() {
	if !d.created {
		return
	}
	d.ctx.DestroyVertexArray(d.Handle)
	d.ctx.DestroyBuffer(d.VertexBuffer)
	d.ctx.DestroyBuffer(d.IndexBuffer)
	d.created = false
}
