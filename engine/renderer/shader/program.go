// Package shader parses shader source, links against a gpu.Context to
// discover the authoritative set of active uniforms and blocks, and queues
// and flushes per-frame uniform updates read out of the process-wide
// uniform value store.
package shader

import (
	"sync"

	"github.com/kestrel3d/render-core/engine/core"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
)

// ValueKind tags which of the uniform Container's arenas a UniformRef
// points into.
type ValueKind uint8

const (
	KindFloat32 ValueKind = iota
	KindVec3
	KindVec4
	KindMat4
	KindInt32
)

// UniformRef is the (kind, storage index) pair a queued uniform update
// resolves against the uniform Container, mirroring the source's
// UniformData record.
type UniformRef struct {
	Kind         ValueKind
	StorageIndex int
}

// wellKnownNames are engine uniforms whose location gets cached into a
// Program's UniformIdMappings on link, so pipeline code can address them
// without a name lookup every frame.
var wellKnownNames = []string{
	"u_model", "u_view", "u_projection", "u_camera_position", "u_view_projection",
}

// Program is a linked shader program: its discovered uniform/block info,
// cached well-known uniform locations, and a pending queue of uniform
// updates awaiting the next Bind.
type Program struct {
	Handle gpu.Program
	Parsed *Source

	uniformByName map[string]gpu.UniformInfo
	uniformInfo   []gpu.UniformInfo
	wellKnown     map[string]int

	declaredKind map[int]ValueKind // location -> expected kind, inferred from GLSL type name

	queueMu sync.Mutex
	queue   map[int]UniformRef // location -> pending value; last write wins
}

// Create compiles stageSources (stage name -> GLSL source) into a linked
// program and parses every stage's source, merging the declarations of all
// stages into Parsed.
func Create(ctx gpu.Context, stageSources map[string]string) (*Program, error) {
	handle, err := ctx.CreateProgram(stageSources)
	if err != nil {
		return nil, err
	}

	p := &Program{
		Handle: handle,
		queue:  make(map[int]UniformRef),
	}
	for _, src := range stageSources {
		parsed := Parse(src)
		if p.Parsed == nil {
			p.Parsed = parsed
			continue
		}
		p.Parsed.Defines = append(p.Parsed.Defines, parsed.Defines...)
		p.Parsed.Structs = append(p.Parsed.Structs, parsed.Structs...)
		p.Parsed.Uniforms = append(p.Parsed.Uniforms, parsed.Uniforms...)
		p.Parsed.Blocks = append(p.Parsed.Blocks, parsed.Blocks...)
		p.Parsed.InOuts = append(p.Parsed.InOuts, parsed.InOuts...)
		p.Parsed.Functions = append(p.Parsed.Functions, parsed.Functions...)
	}
	return p, nil
}

// Link queries the backend for the authoritative active-uniform set,
// reconciles it against the parsed declarations, binds every referenced
// block to a binding point from allocator, and caches well-known uniform
// locations.
func (p *Program) Link(ctx gpu.Context, allocator *BindingAllocator) error {
	infos := ctx.QueryActiveUniforms(p.Handle)

	p.uniformByName = make(map[string]gpu.UniformInfo, len(infos))
	p.uniformInfo = infos
	p.declaredKind = make(map[int]ValueKind, len(infos))
	for _, info := range infos {
		p.uniformByName[info.Name] = info
		p.declaredKind[info.Location] = inferKind(p.Parsed, info.Name)
	}

	if p.Parsed != nil {
		for _, block := range p.Parsed.Blocks {
			bp := allocator.Acquire(block.Name)
			if err := ctx.UniformBlockBindingPoint(p.Handle, block.Name, bp); err != nil {
				return err
			}
		}
	}

	p.wellKnown = make(map[string]int, len(wellKnownNames))
	for _, name := range wellKnownNames {
		if info, ok := p.uniformByName[name]; ok {
			p.wellKnown[name] = info.Location
		}
	}
	return nil
}

func inferKind(parsed *Source, name string) ValueKind {
	if parsed == nil {
		return KindFloat32
	}
	for _, u := range parsed.Uniforms {
		if u.Name != name {
			continue
		}
		switch u.TypeName {
		case "vec3":
			return KindVec3
		case "vec4":
			return KindVec4
		case "mat4":
			return KindMat4
		case "int", "uint", "bool":
			return KindInt32
		default:
			return KindFloat32
		}
	}
	return KindFloat32
}

// WellKnownLocation returns the cached location of a well-known engine
// uniform (e.g. "u_view_projection"), or false if this program doesn't
// declare it.
func (p *Program) WellKnownLocation(name string) (int, bool) {
	loc, ok := p.wellKnown[name]
	return loc, ok
}

// Location returns the active location of any uniform this program
// declares by name, or false if Link hasn't run yet or the program has no
// such uniform.
func (p *Program) Location(name string) (int, bool) {
	info, ok := p.uniformByName[name]
	if !ok {
		return 0, false
	}
	return info.Location, true
}

// SetUniformValue enqueues (location, ref) for the next update_uniforms /
// Bind. Duplicate locations in the queue are allowed; the last call wins.
func (p *Program) SetUniformValue(location int, ref UniformRef) {
	p.queueMu.Lock()
	p.queue[location] = ref
	p.queueMu.Unlock()
}

// UpdateUniforms drains the queue, reading each value out of container and
// issuing the correspondingly typed uniform call. When a queued ref's kind
// doesn't match the uniform's declared kind: if ignoreMismatch is false the
// call fails with core.ErrUniformKindMismatch (leaving the rest of the
// queue intact); otherwise the mismatched entry is skipped.
func (p *Program) UpdateUniforms(ctx gpu.Context, container *uniform.Container, ignoreMismatch bool) error {
	p.queueMu.Lock()
	batch := p.queue
	p.queue = make(map[int]UniformRef)
	p.queueMu.Unlock()

	for location, ref := range batch {
		declared, known := p.declaredKind[location]
		if known && declared != ref.Kind {
			if !ignoreMismatch {
				delete(batch, location)
				p.queueMu.Lock()
				for loc, r := range batch {
					if _, newer := p.queue[loc]; !newer {
						p.queue[loc] = r
					}
				}
				p.queueMu.Unlock()
				return core.ErrUniformKindMismatch
			}
			continue
		}

		switch ref.Kind {
		case KindFloat32:
			ctx.SetUniformFloat(p.Handle, location, container.Float32s.Get(ref.StorageIndex))
		case KindVec3:
			ctx.SetUniformVec3(p.Handle, location, container.Vec3s.Get(ref.StorageIndex))
		case KindVec4:
			ctx.SetUniformVec4(p.Handle, location, container.Vec4s.Get(ref.StorageIndex))
		case KindMat4:
			ctx.SetUniformMat4(p.Handle, location, container.Mat4s.Get(ref.StorageIndex))
		case KindInt32:
			ctx.SetUniformInt(p.Handle, location, container.Ints.Get(ref.StorageIndex))
		}
		delete(batch, location)
	}
	return nil
}

// Binder tracks which program is currently bound to a Context so Bind can
// stay idempotent for repeated binds of the same program.
type Binder struct {
	ctx     gpu.Context
	current gpu.Program
	bound   bool
}

// NewBinder returns a Binder for ctx with nothing bound yet.
func NewBinder(ctx gpu.Context) *Binder {
	return &Binder{ctx: ctx}
}

// Bind makes p the active program if it isn't already, then flushes its
// uniform queue against container.
func (b *Binder) Bind(p *Program, container *uniform.Container, ignoreMismatch bool) error {
	if !b.bound || b.current != p.Handle {
		b.ctx.BindProgram(p.Handle)
		b.current = p.Handle
		b.bound = true
	}
	return p.UpdateUniforms(b.ctx, container, ignoreMismatch)
}
