package mesh

import (
	"fmt"

	"github.com/kestrel3d/render-core/engine/core"
	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/resources"
)

// RawData is the decode-time output a mesh loader hands to PostConstruction:
// interleaved vertex data plus the graphics context the vertex array must be
// built against. PostConstruction for a Mesh always runs on the graphics
// thread, per the cache's scheduling contract.
type RawData struct {
	Ctx      gpu.Context
	Vertices []kmath.Vertex3D
	Indices  []uint32
}

// Mesh is a resource payload wrapping one VertexArrayData plus its
// object-space bounds.
type Mesh struct {
	VertexData   *VertexArrayData
	ObjectBounds kmath.Extents3D
}

// New returns an empty mesh with no GPU storage yet.
func New() *Mesh {
	return &Mesh{ObjectBounds: kmath.NewExtents3DEmpty()}
}

func (m *Mesh) Kind() resources.Kind { return resources.KindMesh }

// PostConstruction builds the GPU-side vertex array from data and computes
// the mesh's object-space bounds from the raw vertex positions.
func (m *Mesh) PostConstruction(data interface{}) error {
	raw, ok := data.(*RawData)
	if !ok {
		return fmt.Errorf("mesh: post-construction data is not *mesh.RawData: %w", core.ErrInvariantViolation)
	}

	vad, err := Create(raw.Ctx, raw.Vertices, raw.Indices)
	if err != nil {
		return fmt.Errorf("mesh: %w", core.ErrGpuError)
	}
	m.VertexData = vad
	m.generateBounds(raw.Vertices)
	return nil
}

// OnRemoval releases the mesh's GPU storage.
func (m *Mesh) OnRemoval() {
	if m.VertexData != nil {
		m.VertexData.Destroy()
	}
}

func (m *Mesh) generateBounds(vertices []kmath.Vertex3D) {
	bounds := kmath.NewExtents3DEmpty()
	for _, v := range vertices {
		bounds = bounds.ExpandToInclude(v.Position)
	}
	m.ObjectBounds = bounds
}

// Drawable reports whether the mesh's vertex array is ready to draw.
func (m *Mesh) Drawable() bool {
	return m.VertexData.Drawable()
}

// Draw issues the mesh's indexed draw call with instanceCount instances.
func (m *Mesh) Draw(instanceCount int) {
	m.VertexData.Draw(instanceCount)
}
