package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrel3d/render-core/engine/core"
	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
)

func TestParseExtractsUniformsBlocksAndInOuts(t *testing.T) {
	src := `#version 450
#define MAX_LIGHTS 4
struct Light {
	vec3 position;
	vec4 color;
};
uniform mat4 u_model;
uniform vec4 u_colors[MAX_LIGHTS];
uniform CameraBlock {
	mat4 view;
	mat4 projection;
};
in vec3 in_position;
out vec4 out_color;
void main() {
	out_color = u_colors[0];
}
`
	parsed := Parse(src)

	if len(parsed.Defines) != 1 || parsed.Defines[0].Name != "MAX_LIGHTS" || parsed.Defines[0].Value != 4 {
		t.Fatalf("Defines = %+v, want one MAX_LIGHTS=4", parsed.Defines)
	}
	if len(parsed.Structs) != 1 || parsed.Structs[0].Name != "Light" || len(parsed.Structs[0].Fields) != 2 {
		t.Fatalf("Structs = %+v, want one Light struct with 2 fields", parsed.Structs)
	}

	var fileScope, arrayUniform bool
	for _, u := range parsed.Uniforms {
		if u.Name == "u_model" && u.BlockName == "" {
			fileScope = true
		}
		if u.Name == "u_colors" && u.ArrayLength == 4 {
			arrayUniform = true
		}
	}
	if !fileScope {
		t.Fatalf("expected a file-scope u_model uniform, got %+v", parsed.Uniforms)
	}
	if !arrayUniform {
		t.Fatalf("expected u_colors resolved to array length 4 via #define, got %+v", parsed.Uniforms)
	}

	if len(parsed.Blocks) != 1 || parsed.Blocks[0].Name != "CameraBlock" || len(parsed.Blocks[0].Fields) != 2 {
		t.Fatalf("Blocks = %+v, want one CameraBlock with 2 fields", parsed.Blocks)
	}

	if len(parsed.InOuts) != 2 {
		t.Fatalf("InOuts = %+v, want one in and one out", parsed.InOuts)
	}

	if len(parsed.Functions) != 1 || parsed.Functions[0].Name != "main" {
		t.Fatalf("Functions = %+v, want one main()", parsed.Functions)
	}
}

func TestBindingAllocatorSharesBindingPointsByBlockName(t *testing.T) {
	a := NewBindingAllocator()
	first := a.Acquire("CameraBlock")
	second := a.Acquire("CameraBlock")
	if first != second {
		t.Fatalf("Acquire gave distinct binding points for the same block name: %d, %d", first, second)
	}

	other := a.Acquire("LightBlock")
	if other == first {
		t.Fatalf("distinct block names collided on binding point %d", first)
	}

	a.Release("CameraBlock")
	reused := a.Acquire("NewBlock")
	if reused != first {
		t.Fatalf("Acquire after Release = %d, want the freed slot %d reused", reused, first)
	}
}

func TestProgramCreateLinkAndUpdateUniforms(t *testing.T) {
	ctx := gpu.NewNullContext()
	src := map[string]string{
		"fragment": `#version 450
uniform vec4 u_debug_color;
out vec4 out_color;
void main() {
	out_color = u_debug_color;
}
`,
	}

	p, err := Create(ctx, src)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := p.Link(ctx, NewBindingAllocator()); err != nil {
		t.Fatalf("Link: %v", err)
	}

	loc, ok := p.Location("u_debug_color")
	if !ok {
		t.Fatalf("expected a queryable location for u_debug_color")
	}

	container := uniform.NewContainer()
	idx := uniform.Push(&container.Vec4s, kmath.NewVec4Create(1, 0, 0, 1))
	p.SetUniformValue(loc, UniformRef{Kind: KindVec4, StorageIndex: idx})

	if err := p.UpdateUniforms(ctx, container, false); err != nil {
		t.Fatalf("UpdateUniforms: %v", err)
	}
}

func TestUpdateUniformsRejectsKindMismatch(t *testing.T) {
	ctx := gpu.NewNullContext()
	p, err := Create(ctx, map[string]string{
		"fragment": `#version 450
uniform mat4 u_model;
void main() {}
`,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := p.Link(ctx, NewBindingAllocator()); err != nil {
		t.Fatalf("Link: %v", err)
	}

	loc, ok := p.Location("u_model")
	if !ok {
		t.Fatalf("expected a location for u_model")
	}

	container := uniform.NewContainer()
	idx := uniform.Push(&container.Float32s, float32(1))
	p.SetUniformValue(loc, UniformRef{Kind: KindFloat32, StorageIndex: idx})

	err = p.UpdateUniforms(ctx, container, false)
	if err != core.ErrUniformKindMismatch {
		t.Fatalf("UpdateUniforms error = %v, want ErrUniformKindMismatch", err)
	}
}

func TestUpdateUniformsIgnoreMismatchSkipsInsteadOfErroring(t *testing.T) {
	ctx := gpu.NewNullContext()
	p, err := Create(ctx, map[string]string{
		"fragment": `#version 450
uniform mat4 u_model;
void main() {}
`,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := p.Link(ctx, NewBindingAllocator()); err != nil {
		t.Fatalf("Link: %v", err)
	}

	loc, _ := p.Location("u_model")
	container := uniform.NewContainer()
	idx := uniform.Push(&container.Float32s, float32(1))
	p.SetUniformValue(loc, UniformRef{Kind: KindFloat32, StorageIndex: idx})

	if err := p.UpdateUniforms(ctx, container, true); err != nil {
		t.Fatalf("UpdateUniforms with ignoreMismatch: %v", err)
	}
}

func TestBinderOnlyRebindsOnProgramChange(t *testing.T) {
	ctx := gpu.NewNullContext()
	container := uniform.NewContainer()

	a, err := Create(ctx, map[string]string{"fragment": "void main() {}"})
	if err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if err := a.Link(ctx, NewBindingAllocator()); err != nil {
		t.Fatalf("Link a: %v", err)
	}
	b, err := Create(ctx, map[string]string{"fragment": "void main() {}"})
	if err != nil {
		t.Fatalf("Create b: %v", err)
	}
	if err := b.Link(ctx, NewBindingAllocator()); err != nil {
		t.Fatalf("Link b: %v", err)
	}

	binder := NewBinder(ctx)
	if err := binder.Bind(a, container, false); err != nil {
		t.Fatalf("Bind a: %v", err)
	}
	if ctx.BoundProgram != a.Handle {
		t.Fatalf("BoundProgram = %v, want %v", ctx.BoundProgram, a.Handle)
	}
	if err := binder.Bind(b, container, false); err != nil {
		t.Fatalf("Bind b: %v", err)
	}
	if ctx.BoundProgram != b.Handle {
		t.Fatalf("BoundProgram = %v, want %v", ctx.BoundProgram, b.Handle)
	}

	ctx.BoundProgram = 0
	if err := binder.Bind(b, container, false); err != nil {
		t.Fatalf("Bind b again: %v", err)
	}
	if ctx.BoundProgram != 0 {
		t.Fatalf("binding the already-bound program issued BindProgram again")
	}
}

func TestLoadConfigAndLoadStageSources(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "debug.toml")
	configBody := `name = "debug"
cull_mode = "none"
renderpass = "main"
stages = ["vertex", "fragment"]
stagefiles = ["debug.vert", "debug.frag"]
`
	if err := os.WriteFile(configPath, []byte(configBody), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "debug.vert"), []byte("void main() {}"), 0o644); err != nil {
		t.Fatalf("writing vertex stage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "debug.frag"), []byte("void main() {}"), 0o644); err != nil {
		t.Fatalf("writing fragment stage: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "debug" || len(cfg.Stages) != 2 {
		t.Fatalf("cfg = %+v, want name=debug with 2 stages", cfg)
	}

	sources, err := cfg.LoadStageSources(dir)
	if err != nil {
		t.Fatalf("LoadStageSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("len(sources) = %d, want 2", len(sources))
	}
}

func TestLoadConfigRejectsMismatchedStageCounts(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.toml")
	body := `name = "bad"
stages = ["vertex", "fragment"]
stagefiles = ["only_one.vert"]
`
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := LoadConfig(configPath); err == nil {
		t.Fatalf("expected LoadConfig to reject mismatched stage/stagefile counts")
	}
}
