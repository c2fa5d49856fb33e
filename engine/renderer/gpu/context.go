// Package gpu defines the abstract graphics-API surface the render
// pipeline core requires of a backend, a modern programmable-pipeline
// contract: buffer objects with sub-range updates,
// vertex-array objects with typed attribute pointers, shader programs with
// link-time introspection, immutable-storage textures in several layouts,
// multi-attachment framebuffers with blit, and uniform/storage block
// binding points. Every call reports errors synchronously; there is no
// deferred error queue.
//
// Context is owned exclusively by the graphics thread per the concurrency
// model: other threads may only enqueue work that eventually calls into it.
package gpu

import kmath "github.com/kestrel3d/render-core/engine/math"

// Buffer, VertexArray, Program, Texture, and Framebuffer are opaque handles
// into backend-owned state. The zero value of each is never a valid handle.
type Buffer uint32
type VertexArray uint32
type Program uint32
type Texture uint32
type Framebuffer uint32

// AttributeKind distinguishes integer attribute pointers (bound without
// normalization or float conversion) from float ones.
type AttributeKind uint8

const (
	AttributeFloat AttributeKind = iota
	AttributeInt
)

// AttributeSpec describes one vertex attribute binding within a
// VertexArray.
type AttributeSpec struct {
	Location uint32
	Kind     AttributeKind
	Components int
	Stride   int
	Offset   int
	BufferBinding int
}

// TextureKind identifies the storage layout a Texture was allocated with.
type TextureKind uint8

const (
	Texture2D TextureKind = iota
	Texture2DArray
	Texture2DMultisample
	TextureCubemap
	TextureCubemapArray
)

// TextureFormat is a backend-agnostic pixel format tag.
type TextureFormat uint8

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGB8
	FormatRGBA16F
	FormatDepth24Stencil8
	FormatDepth32F
)

// TextureDesc describes immutable storage allocation for a Texture.
type TextureDesc struct {
	Kind    TextureKind
	Format  TextureFormat
	Width   int
	Height  int
	Layers  int // array length or cubemap face multiplier; 1 otherwise
	Samples int // > 1 only for Texture2DMultisample
	MipLevels int
}

// UniformInfo is one active uniform or block discovered at link time.
type UniformInfo struct {
	Name     string
	Location int
	IsBlock  bool
	BlockSize int
}

// FramebufferDesc describes a set of color attachments plus an optional
// depth-stencil attachment, all pre-existing textures.
type FramebufferDesc struct {
	ColorAttachments []Texture
	DepthStencil     Texture // zero value means none
}

// Context is the abstract graphics-API surface. A nil error return means
// success; every method reports failures synchronously.
type Context interface {
	// Buffers
	CreateBuffer(sizeBytes int, data []byte) (Buffer, error)
	WriteBufferSubRange(b Buffer, offset int, data []byte) error
	DestroyBuffer(b Buffer)

	// Vertex array objects
	CreateVertexArray(attributes []AttributeSpec, vertexBuffers []Buffer, indexBuffer Buffer) (VertexArray, error)
	DestroyVertexArray(v VertexArray)
	Draw(v VertexArray, indexCount, instanceCount int)

	// Shader programs
	CreateProgram(stageSources map[string]string) (Program, error)
	DestroyProgram(p Program)
	QueryActiveUniforms(p Program) []UniformInfo
	UniformBlockBindingPoint(p Program, blockName string, bindingPoint int) error
	BindProgram(p Program)
	SetUniformFloat(p Program, location int, v float32)
	SetUniformVec3(p Program, location int, v kmath.Vec3)
	SetUniformVec4(p Program, location int, v kmath.Vec4)
	SetUniformMat4(p Program, location int, v kmath.Mat4)
	SetUniformInt(p Program, location int, v int32)
	BindUniformBuffer(bindingPoint int, b Buffer, offset, size int)
	BindTextureUnit(unit int, t Texture)

	// Textures
	CreateTexture(desc TextureDesc) (Texture, error)
	WriteTextureData(t Texture, layer, mip int, pixels []byte) error
	DestroyTexture(t Texture)

	// Framebuffers
	CreateFramebuffer(desc FramebufferDesc) (Framebuffer, error)
	DestroyFramebuffer(f Framebuffer)
	BindFramebuffer(f Framebuffer)
	Blit(src, dst Framebuffer, srcW, srcH, dstW, dstH int)
	Clear(f Framebuffer, r, g, b, a float32, depth float32, stencil int)

	// Diagnostics
	LastError() error
}
