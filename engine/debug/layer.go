// Package debug builds the immediate-mode debug-draw primitives: boxes,
// lines, coordinate axes, camera frustums, and character-controller shapes,
// all landing on the pipeline's reserved Debug render layer: a thin shader
// and a handful of procedural shapes pumped through the same command
// pipeline every other renderable uses, tagged so they always sort and
// draw last.
package debug

import (
	"sync"

	"github.com/kestrel3d/render-core/engine/core"
	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/command"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/mesh"
	"github.com/kestrel3d/render-core/engine/renderer/pipeline"
	"github.com/kestrel3d/render-core/engine/renderer/polygon"
	"github.com/kestrel3d/render-core/engine/renderer/renderable"
	"github.com/kestrel3d/render-core/engine/renderer/shader"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
)

// vertexShaderSource and fragmentShaderSource are the minimal pair every
// debug shape draws with: transform by the per-instance model matrix and
// the camera's view-projection, flat-shade with a per-instance color.
const vertexShaderSource = `#version 450
uniform mat4 u_model;
uniform mat4 u_view_projection;
in vec3 in_position;
void main() {
	gl_Position = vec4(in_position, 1.0) * u_model * u_view_projection;
}
`

const fragmentShaderSource = `#version 450
uniform vec4 u_debug_color;
out vec4 out_color;
void main() {
	out_color = u_debug_color;
}
`

// defaultThickness is the edge width draw_frustum and draw_coordinate_axes
// use, since neither signature takes a thickness argument.
const defaultThickness float32 = 0.02

var (
	colorX = kmath.NewVec4Create(1, 0, 0, 1)
	colorY = kmath.NewVec4Create(0, 1, 0, 1)
	colorZ = kmath.NewVec4Create(0, 0, 1, 1)
)

// Layer owns the shared debug shader program and the GPU-side geometry for
// every procedural shape it draws, deduplicated by the polygon cache's
// naming so repeated draw_box/draw_line calls reuse one vertex buffer.
type Layer struct {
	ctx       gpu.Context
	container *uniform.Container
	polygons  *polygon.Cache
	program   *shader.Program

	mu   sync.Mutex
	vaos map[string]*mesh.VertexArrayData
}

// NewLayer compiles and links the debug shader program against ctx and
// returns a Layer ready to draw.
func NewLayer(ctx gpu.Context, container *uniform.Container, polygons *polygon.Cache) (*Layer, error) {
	program, err := shader.Create(ctx, map[string]string{
		"vertex":   vertexShaderSource,
		"fragment": fragmentShaderSource,
	})
	if err != nil {
		return nil, err
	}
	if err := program.Link(ctx, shader.NewBindingAllocator()); err != nil {
		return nil, err
	}
	return &Layer{
		ctx:       ctx,
		container: container,
		polygons:  polygons,
		program:   program,
		vaos:      make(map[string]*mesh.VertexArrayData),
	}, nil
}

// vertexArrayFor returns the GPU vertex array backing p, building and
// caching it on first use.
func (l *Layer) vertexArrayFor(p *polygon.Polygon) *mesh.VertexArrayData {
	l.mu.Lock()
	defer l.mu.Unlock()
	if vad, ok := l.vaos[p.Name]; ok {
		return vad
	}
	vad, err := mesh.Create(l.ctx, p.Vertices, p.Indices)
	if err != nil {
		core.LogError("debug layer: building vertex array for %s: %v", p.Name, err)
		return nil
	}
	l.vaos[p.Name] = vad
	return vad
}

func localBounds(p *polygon.Polygon) kmath.Extents3D {
	bounds := kmath.NewExtents3DEmpty()
	for _, v := range p.Vertices {
		bounds = bounds.ExpandToInclude(v.Position)
	}
	return bounds
}

// shape is a debug renderable: a shared, cached vertex array drawn with a
// per-instance model matrix and color pushed into the uniform container.
type shape struct {
	renderable.Base
	vad    *mesh.VertexArrayData
	bounds kmath.Extents3D
}

func (s *shape) ObjectBounds() (kmath.Extents3D, bool) { return s.bounds, true }

func (s *shape) DrawGeometry(ctx gpu.Context) {
	if s.vad == nil || !s.vad.Drawable() {
		return
	}
	s.vad.Draw(1)
}

func (s *shape) SortID() int { return 0 }

// entryFor builds the pipeline.Entry for one debug shape: pushes model and
// color into the container, queues them on the renderable's uniform map,
// and tags the entry with the debug render layer and DebugSceneObject.
func (l *Layer) entryFor(p *polygon.Polygon, model kmath.Mat4, color kmath.Vec4) pipeline.Entry {
	s := &shape{vad: l.vertexArrayFor(p), bounds: localBounds(p)}
	s.Program = l.program

	l.container.Lock()
	modelIdx := uniform.Push(&l.container.Mat4s, model)
	colorIdx := uniform.Push(&l.container.Vec4s, color)
	l.container.Unlock()

	s.AddUniform("u_model", shader.UniformRef{Kind: shader.KindMat4, StorageIndex: modelIdx})
	s.AddUniform("u_debug_color", shader.UniformRef{Kind: shader.KindVec4, StorageIndex: colorIdx})

	return pipeline.Entry{
		ObjectID:    command.DebugSceneObject,
		Renderable:  s,
		Layer:       pipeline.DebugLayer,
		WorldMatrix: model,
	}
}
