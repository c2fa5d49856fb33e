package gpu

import kmath "github.com/kestrel3d/render-core/engine/math"

// NullContext is an in-memory, no-op Context used to drive the render
// pipeline in tests without a real graphics backend. It hands out
// monotonically increasing handles and records draw, clear and blit calls
// and the current program, framebuffer and per-unit texture bindings for
// assertions; it performs no actual rendering.
type NullContext struct {
	nextBuffer      uint32
	nextVertexArray uint32
	nextProgram     uint32
	nextTexture     uint32
	nextFramebuffer uint32

	bufferSizes map[Buffer]int

	DrawCalls  []NullDrawCall
	ClearCalls []NullClearCall
	BlitCalls  []NullBlitCall
	BoundProgram Program
	BoundFramebuffer Framebuffer
	BoundTextures map[int]Texture
}

// NullDrawCall records one Draw invocation for test assertions.
type NullDrawCall struct {
	VertexArray   VertexArray
	IndexCount    int
	InstanceCount int
}

// NullClearCall records one Clear invocation for test assertions.
type NullClearCall struct {
	Framebuffer Framebuffer
	R, G, B, A  float32
	Depth       float32
	Stencil     int
}

// NullBlitCall records one Blit invocation for test assertions.
type NullBlitCall struct {
	Src, Dst   Framebuffer
	SrcW, SrcH int
	DstW, DstH int
}

// NewNullContext returns a ready-to-use no-op context.
func NewNullContext() *NullContext {
	return &NullContext{bufferSizes: make(map[Buffer]int)}
}

func (c *NullContext) CreateBuffer(sizeBytes int, data []byte) (Buffer, error) {
	c.nextBuffer++
	b := Buffer(c.nextBuffer)
	c.bufferSizes[b] = sizeBytes
	return b, nil
}

func (c *NullContext) WriteBufferSubRange(b Buffer, offset int, data []byte) error {
	size, ok := c.bufferSizes[b]
	if !ok {
		return ErrUnknownHandle
	}
	if offset+len(data) > size {
		return ErrOutOfRange
	}
	return nil
}

func (c *NullContext) DestroyBuffer(b Buffer) {
	delete(c.bufferSizes, b)
}

func (c *NullContext) CreateVertexArray(attributes []AttributeSpec, vertexBuffers []Buffer, indexBuffer Buffer) (VertexArray, error) {
	c.nextVertexArray++
	return VertexArray(c.nextVertexArray), nil
}

func (c *NullContext) DestroyVertexArray(v VertexArray) {}

func (c *NullContext) Draw(v VertexArray, indexCount, instanceCount int) {
	c.DrawCalls = append(c.DrawCalls, NullDrawCall{VertexArray: v, IndexCount: indexCount, InstanceCount: instanceCount})
}

func (c *NullContext) CreateProgram(stageSources map[string]string) (Program, error) {
	c.nextProgram++
	return Program(c.nextProgram), nil
}

func (c *NullContext) DestroyProgram(p Program) {}

func (c *NullContext) QueryActiveUniforms(p Program) []UniformInfo { return nil }

func (c *NullContext) UniformBlockBindingPoint(p Program, blockName string, bindingPoint int) error {
	return nil
}

func (c *NullContext) BindProgram(p Program) {
	c.BoundProgram = p
}

func (c *NullContext) SetUniformFloat(p Program, location int, v float32)    {}
func (c *NullContext) SetUniformVec3(p Program, location int, v kmath.Vec3) {}
func (c *NullContext) SetUniformVec4(p Program, location int, v kmath.Vec4) {}
func (c *NullContext) SetUniformMat4(p Program, location int, v kmath.Mat4) {}
func (c *NullContext) SetUniformInt(p Program, location int, v int32)       {}
func (c *NullContext) BindUniformBuffer(bindingPoint int, b Buffer, offset, size int) {}

func (c *NullContext) BindTextureUnit(unit int, t Texture) {
	if c.BoundTextures == nil {
		c.BoundTextures = make(map[int]Texture)
	}
	c.BoundTextures[unit] = t
}

func (c *NullContext) CreateTexture(desc TextureDesc) (Texture, error) {
	c.nextTexture++
	return Texture(c.nextTexture), nil
}

func (c *NullContext) WriteTextureData(t Texture, layer, mip int, pixels []byte) error {
	return nil
}

func (c *NullContext) DestroyTexture(t Texture) {}

func (c *NullContext) CreateFramebuffer(desc FramebufferDesc) (Framebuffer, error) {
	c.nextFramebuffer++
	return Framebuffer(c.nextFramebuffer), nil
}

func (c *NullContext) DestroyFramebuffer(f Framebuffer) {}

func (c *NullContext) BindFramebuffer(f Framebuffer) {
	c.BoundFramebuffer = f
}

func (c *NullContext) Blit(src, dst Framebuffer, srcW, srcH, dstW, dstH int) {
	c.BlitCalls = append(c.BlitCalls, NullBlitCall{Src: src, Dst: dst, SrcW: srcW, SrcH: srcH, DstW: dstW, DstH: dstH})
}

func (c *NullContext) Clear(f Framebuffer, r, g, b, a float32, depth float32, stencil int) {
	c.ClearCalls = append(c.ClearCalls, NullClearCall{Framebuffer: f, R: r, G: g, B: b, A: a, Depth: depth, Stencil: stencil})
}

func (c *NullContext) LastError() error { return nil }
