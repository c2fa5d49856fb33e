// Package postprocess drives a camera's post-processing chain: an ordered
// list of full-screen effect stages that ping-pong between two color
// framebuffers, with an optional checkpoint buffer effects can capture into
// and sample back out of later in the chain, using the same
// ping-pong-then-resolve idiom as the renderer's render-target handling.
package postprocess

import (
	"fmt"

	"github.com/kestrel3d/render-core/engine/core"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/renderer/mesh"
	"github.com/kestrel3d/render-core/engine/renderer/polygon"
	"github.com/kestrel3d/render-core/engine/renderer/shader"
	"github.com/kestrel3d/render-core/engine/renderer/texture"
	"github.com/kestrel3d/render-core/engine/renderer/uniform"
)

// Flag mirrors the source's PostProcessingEffect bit flags: where an effect
// reads its input from and whether it captures its output for later reuse.
type Flag uint8

const (
	// UseCheckPoint makes the effect sample the checkpoint buffer instead of
	// the previous stage's ping-pong output.
	UseCheckPoint Flag = 1 << iota
	// UseCameraTexture makes the effect sample the camera's unprocessed
	// scene color instead of the previous stage's output.
	UseCameraTexture
	// SetCheckPoint blits this effect's output into the checkpoint buffer
	// after it runs.
	SetCheckPoint
)

// Effect is one full-screen shading pass in a Chain: a shader preset plus
// the flags controlling where it reads from and whether it updates the
// checkpoint buffer.
type Effect struct {
	Name    string
	Program *shader.Program
	Flags   Flag
}

// Chain is a camera's post-processing pipeline: two ping-pong render
// targets, one checkpoint target, and an ordered list of effects. Execute
// runs every effect in order and returns the texture the final pass wrote
// to (the unprocessed scene color if the chain has no effects).
type Chain struct {
	ctx   gpu.Context
	binder *shader.Binder

	pingPong   [2]*texture.RenderTarget
	checkpoint *texture.RenderTarget

	quad *mesh.VertexArrayData

	Effects []*Effect
}

// NewChain allocates the chain's ping-pong and checkpoint render targets at
// width x height (no depth attachment: post-processing only ever reads and
// writes color) and its shared full-screen quad geometry.
func NewChain(ctx gpu.Context, binder *shader.Binder, polygons *polygon.Cache, width, height int) (*Chain, error) {
	c := &Chain{ctx: ctx, binder: binder}

	for i := range c.pingPong {
		rt, err := texture.NewRenderTarget(ctx, width, height, 1, false)
		if err != nil {
			return nil, fmt.Errorf("postprocess: ping-pong target %d: %w", i, err)
		}
		c.pingPong[i] = rt
	}

	checkpoint, err := texture.NewRenderTarget(ctx, width, height, 1, false)
	if err != nil {
		return nil, fmt.Errorf("postprocess: checkpoint target: %w", err)
	}
	c.checkpoint = checkpoint

	quadPoly := polygons.GetSquare(2, 2, 1, 1)
	quad, err := mesh.Create(ctx, quadPoly.Vertices, quadPoly.Indices)
	if err != nil {
		return nil, fmt.Errorf("postprocess: full-screen quad: %w", core.ErrGpuError)
	}
	c.quad = quad

	return c, nil
}

// AddEffect appends an effect stage to the end of the chain.
func (c *Chain) AddEffect(e *Effect) {
	c.Effects = append(c.Effects, e)
}

// Destroy releases every GPU resource the chain owns.
func (c *Chain) Destroy() {
	for _, rt := range c.pingPong {
		if rt != nil {
			rt.Destroy()
		}
	}
	if c.checkpoint != nil {
		c.checkpoint.Destroy()
	}
	if c.quad != nil {
		c.quad.Destroy()
	}
}

// Execute runs every effect in order: bind the read buffer's color texture
// to unit 0, bind the effect's shader program, draw the full-screen quad
// into the write buffer, swap read/write, and blit into the checkpoint
// buffer when the effect is flagged SetCheckPoint. sceneColor is the
// camera's unprocessed color output, sampled directly by any effect flagged
// UseCameraTexture. Returns the final written texture, or sceneColor
// unchanged if the chain has no effects.
func (c *Chain) Execute(container *uniform.Container, sceneColor gpu.Texture) (gpu.Texture, error) {
	if len(c.Effects) == 0 {
		return sceneColor, nil
	}

	read := sceneColor
	writeIdx := 0
	var lastWrite *texture.RenderTarget

	for _, eff := range c.Effects {
		src := read
		switch {
		case eff.Flags&UseCameraTexture != 0:
			src = sceneColor
		case eff.Flags&UseCheckPoint != 0:
			src = c.checkpoint.SampleTexture()
		}

		write := c.pingPong[writeIdx]
		write.Bind()
		c.ctx.BindTextureUnit(0, src)
		if err := c.binder.Bind(eff.Program, container, true); err != nil {
			return 0, fmt.Errorf("postprocess: effect %q: %w", eff.Name, err)
		}
		c.quad.Draw(1)
		if write.IsMultisampled() {
			write.Resolve()
		}

		if eff.Flags&SetCheckPoint != 0 {
			c.ctx.Blit(write.Framebuffer, c.checkpoint.Framebuffer, write.Width, write.Height, c.checkpoint.Width, c.checkpoint.Height)
		}

		read = write.SampleTexture()
		lastWrite = write
		writeIdx = 1 - writeIdx
	}

	return lastWrite.SampleTexture(), nil
}

// Resize destroys and reallocates every target the chain owns at the new
// dimensions, used when the owning camera's viewport changes.
func (c *Chain) Resize(width, height int) error {
	for i := range c.pingPong {
		c.pingPong[i].Destroy()
		rt, err := texture.NewRenderTarget(c.ctx, width, height, 1, false)
		if err != nil {
			return fmt.Errorf("postprocess: resize ping-pong target %d: %w", i, err)
		}
		c.pingPong[i] = rt
	}
	c.checkpoint.Destroy()
	rt, err := texture.NewRenderTarget(c.ctx, width, height, 1, false)
	if err != nil {
		return fmt.Errorf("postprocess: resize checkpoint target: %w", err)
	}
	c.checkpoint = rt
	return nil
}
