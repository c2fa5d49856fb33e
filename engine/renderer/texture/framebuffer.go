package texture

import (
	"fmt"

	"github.com/kestrel3d/render-core/engine/core"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
)

// RenderTarget is an owned set of GPU resources a render pass draws into:
// a color texture, an optional depth-stencil texture, and the framebuffer
// binding them together. When Samples > 1, Color and DepthStencil are
// allocated as Texture2DMultisample texture attachments and Resolve must be
// called after the pass finishes to blit the color attachment down into a
// plain Texture2D that later passes (post-processing, the swapchain present)
// can sample from. Multisampling always uses these texture attachments;
// there is no renderbuffer path, and the depth-stencil attachment is not
// resolved.
type RenderTarget struct {
	ctx gpu.Context

	Width, Height int
	Samples       int

	Color        gpu.Texture
	DepthStencil gpu.Texture
	Framebuffer  gpu.Framebuffer

	resolveColor       gpu.Texture
	resolveFramebuffer gpu.Framebuffer
}

// NewRenderTarget allocates a color (and, if withDepth, depth-stencil)
// attachment at width x height, multisampled when samples > 1, plus the
// single-sample resolve target a multisampled pass blits into.
func NewRenderTarget(ctx gpu.Context, width, height, samples int, withDepth bool) (*RenderTarget, error) {
	if samples < 1 {
		samples = 1
	}

	colorKind := gpu.Texture2D
	if samples > 1 {
		colorKind = gpu.Texture2DMultisample
	}

	color, err := ctx.CreateTexture(gpu.TextureDesc{Kind: colorKind, Format: gpu.FormatRGBA8, Width: width, Height: height, Layers: 1, Samples: samples, MipLevels: 1})
	if err != nil {
		return nil, fmt.Errorf("texture: render target color attachment: %w", core.ErrGpuError)
	}

	rt := &RenderTarget{ctx: ctx, Width: width, Height: height, Samples: samples, Color: color}

	desc := gpu.FramebufferDesc{ColorAttachments: []gpu.Texture{color}}
	if withDepth {
		depth, err := ctx.CreateTexture(gpu.TextureDesc{Kind: colorKind, Format: gpu.FormatDepth24Stencil8, Width: width, Height: height, Layers: 1, Samples: samples, MipLevels: 1})
		if err != nil {
			ctx.DestroyTexture(color)
			return nil, fmt.Errorf("texture: render target depth attachment: %w", core.ErrGpuError)
		}
		rt.DepthStencil = depth
		desc.DepthStencil = depth
	}

	fb, err := ctx.CreateFramebuffer(desc)
	if err != nil {
		rt.destroyAttachments()
		return nil, fmt.Errorf("texture: render target framebuffer: %w", core.ErrGpuError)
	}
	rt.Framebuffer = fb

	if samples > 1 {
		resolveColor, err := ctx.CreateTexture(gpu.TextureDesc{Kind: gpu.Texture2D, Format: gpu.FormatRGBA8, Width: width, Height: height, Layers: 1, Samples: 1, MipLevels: 1})
		if err != nil {
			ctx.DestroyFramebuffer(fb)
			rt.destroyAttachments()
			return nil, fmt.Errorf("texture: render target resolve texture: %w", core.ErrGpuError)
		}
		resolveFb, err := ctx.CreateFramebuffer(gpu.FramebufferDesc{ColorAttachments: []gpu.Texture{resolveColor}})
		if err != nil {
			ctx.DestroyTexture(resolveColor)
			ctx.DestroyFramebuffer(fb)
			rt.destroyAttachments()
			return nil, fmt.Errorf("texture: render target resolve framebuffer: %w", core.ErrGpuError)
		}
		rt.resolveColor = resolveColor
		rt.resolveFramebuffer = resolveFb
	}

	return rt, nil
}

func (rt *RenderTarget) destroyAttachments() {
	if rt.Color != 0 {
		rt.ctx.DestroyTexture(rt.Color)
	}
	if rt.DepthStencil != 0 {
		rt.ctx.DestroyTexture(rt.DepthStencil)
	}
}

// IsMultisampled reports whether this target needs a Resolve call before
// its color output can be sampled from.
func (rt *RenderTarget) IsMultisampled() bool { return rt.Samples > 1 }

// Resolve blits the multisampled color attachment into the single-sample
// resolve texture. A no-op on a non-multisampled target.
func (rt *RenderTarget) Resolve() {
	if !rt.IsMultisampled() {
		return
	}
	rt.ctx.Blit(rt.Framebuffer, rt.resolveFramebuffer, rt.Width, rt.Height, rt.Width, rt.Height)
}

// SampleTexture returns the texture later passes should bind: the resolve
// texture for a multisampled target, or the color attachment directly
// otherwise.
func (rt *RenderTarget) SampleTexture() gpu.Texture {
	if rt.IsMultisampled() {
		return rt.resolveColor
	}
	return rt.Color
}

// Bind makes this target the active draw framebuffer.
func (rt *RenderTarget) Bind() { rt.ctx.BindFramebuffer(rt.Framebuffer) }

// Clear clears this target's color and, if present, depth-stencil buffers.
func (rt *RenderTarget) Clear(r, g, b, a, depth float32, stencil int) {
	rt.ctx.Clear(rt.Framebuffer, r, g, b, a, depth, stencil)
}

// Destroy releases every GPU resource this target owns.
func (rt *RenderTarget) Destroy() {
	rt.destroyAttachments()
	if rt.Framebuffer != 0 {
		rt.ctx.DestroyFramebuffer(rt.Framebuffer)
	}
	if rt.resolveColor != 0 {
		rt.ctx.DestroyTexture(rt.resolveColor)
	}
	if rt.resolveFramebuffer != 0 {
		rt.ctx.DestroyFramebuffer(rt.resolveFramebuffer)
	}
}
