package postprocess

import (
	"testing"

	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/polygon"
	"github.com/kestrel3d/render-core/engine/renderer/shader"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
)

func newTestProgram(t *testing.T, ctx gpu.Context, name string) *shader.Program {
	t.Helper()
	p, err := shader.Create(ctx, map[string]string{"fragment": "void main() {}"})
	if err != nil {
		t.Fatalf("shader.Create(%s): %v", name, err)
	}
	if err := p.Link(ctx, shader.NewBindingAllocator()); err != nil {
		t.Fatalf("Link(%s): %v", name, err)
	}
	return p
}

func TestChainWithNoEffectsReturnsSceneColorUnchanged(t *testing.T) {
	ctx := gpu.NewNullContext()
	binder := shader.NewBinder(ctx)
	chain, err := NewChain(ctx, binder, polygon.NewCache(), 4, 4)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	defer chain.Destroy()

	sceneColor := gpu.Texture(42)
	out, err := chain.Execute(uniform.NewContainer(), sceneColor)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != sceneColor {
		t.Fatalf("expected scene color %d unchanged, got %d", sceneColor, out)
	}
}

func TestChainPingPongsBetweenTwoDistinctTargets(t *testing.T) {
	ctx := gpu.NewNullContext()
	binder := shader.NewBinder(ctx)
	chain, err := NewChain(ctx, binder, polygon.NewCache(), 4, 4)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	defer chain.Destroy()

	container := uniform.NewContainer()
	chain.AddEffect(&Effect{Name: "bloom", Program: newTestProgram(t, ctx, "bloom")})
	chain.AddEffect(&Effect{Name: "tonemap", Program: newTestProgram(t, ctx, "tonemap")})

	out1, err := chain.Execute(container, gpu.Texture(1))
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	out2, err := chain.Execute(container, gpu.Texture(1))
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if out1 == 0 || out2 == 0 {
		t.Fatal("expected non-zero output textures")
	}
	if len(ctx.DrawCalls) != 4 {
		t.Fatalf("expected 4 full-screen quad draws across two frames of two effects, got %d", len(ctx.DrawCalls))
	}
	first, second := chain.pingPong[0].SampleTexture(), chain.pingPong[1].SampleTexture()
	if first == second {
		t.Fatal("expected the two ping-pong targets to own distinct color textures")
	}
	if got := ctx.BoundTextures[0]; got != first {
		t.Fatalf("second effect sampled texture %d, want the first ping-pong target's %d", got, first)
	}
	if out1 != second || out2 != second {
		t.Fatalf("outputs = %d, %d; want both to be the second ping-pong target's %d", out1, out2, second)
	}
}

func TestSetCheckPointEffectBlitsAndUseCheckPointReadsItBack(t *testing.T) {
	ctx := gpu.NewNullContext()
	binder := shader.NewBinder(ctx)
	chain, err := NewChain(ctx, binder, polygon.NewCache(), 4, 4)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	defer chain.Destroy()

	chain.AddEffect(&Effect{Name: "capture", Program: newTestProgram(t, ctx, "capture"), Flags: SetCheckPoint})
	chain.AddEffect(&Effect{Name: "combine", Program: newTestProgram(t, ctx, "combine"), Flags: UseCheckPoint})

	if _, err := chain.Execute(uniform.NewContainer(), gpu.Texture(7)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(ctx.BlitCalls) != 1 {
		t.Fatalf("expected exactly one checkpoint blit, got %d", len(ctx.BlitCalls))
	}
	if ctx.BlitCalls[0].Dst != chain.checkpoint.Framebuffer {
		t.Fatal("expected the blit to write into the checkpoint framebuffer")
	}
	if got, want := ctx.BoundTextures[0], chain.checkpoint.SampleTexture(); got != want {
		t.Fatalf("UseCheckPoint effect sampled texture %d, want the checkpoint's %d", got, want)
	}
}

func TestUseCameraTextureEffectAlwaysSamplesOriginalSceneColor(t *testing.T) {
	ctx := gpu.NewNullContext()
	binder := shader.NewBinder(ctx)
	chain, err := NewChain(ctx, binder, polygon.NewCache(), 4, 4)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	defer chain.Destroy()

	chain.AddEffect(&Effect{Name: "first", Program: newTestProgram(t, ctx, "first")})
	chain.AddEffect(&Effect{Name: "composite", Program: newTestProgram(t, ctx, "composite"), Flags: UseCameraTexture})

	if _, err := chain.Execute(uniform.NewContainer(), gpu.Texture(9)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// Both stages still issue exactly one draw each; the UseCameraTexture
	// flag changes what's bound to unit 0, not the draw count.
	if len(ctx.DrawCalls) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(ctx.DrawCalls))
	}
	if got := ctx.BoundTextures[0]; got != gpu.Texture(9) {
		t.Fatalf("UseCameraTexture effect sampled texture %d, want the scene color 9", got)
	}
}
