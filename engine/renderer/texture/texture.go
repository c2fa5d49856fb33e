// Package texture wraps gpu.Texture/gpu.Framebuffer lifecycle: resource-cache
// texture payloads decoded from PNG/JPEG/BMP/TIFF, bitmap-font glyph atlases, and
// render-target framebuffers whose MSAA uses multisample texture
// attachments that resolve into a plain texture by blit.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/kestrel3d/render-core/engine/core"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
	"github.com/kestrel3d/render-core/engine/resources"
)

// RawData is the decode-time output a texture loader hands to
// PostConstruction.
type RawData struct {
	Ctx    gpu.Context
	Desc   gpu.TextureDesc
	Pixels []byte
}

// Texture is a resource payload wrapping one immutable-storage gpu.Texture.
type Texture struct {
	ctx    gpu.Context
	Handle gpu.Texture
	Desc   gpu.TextureDesc
}

// New returns an unconstructed texture payload.
func New() *Texture { return &Texture{} }

func (t *Texture) Kind() resources.Kind { return resources.KindTexture }

// PostConstruction allocates GPU storage and uploads the decoded pixels.
func (t *Texture) PostConstruction(data interface{}) error {
	raw, ok := data.(*RawData)
	if !ok {
		return fmt.Errorf("texture: post-construction data is not *texture.RawData: %w", core.ErrInvariantViolation)
	}

	handle, err := raw.Ctx.CreateTexture(raw.Desc)
	if err != nil {
		return fmt.Errorf("texture: %w", core.ErrGpuError)
	}
	if len(raw.Pixels) > 0 {
		if err := raw.Ctx.WriteTextureData(handle, 0, 0, raw.Pixels); err != nil {
			raw.Ctx.DestroyTexture(handle)
			return fmt.Errorf("texture: %w", core.ErrGpuError)
		}
	}

	t.ctx = raw.Ctx
	t.Handle = handle
	t.Desc = raw.Desc
	return nil
}

func (t *Texture) OnRemoval() {
	if t.ctx != nil {
		t.ctx.DestroyTexture(t.Handle)
	}
}

// DecodeImage decodes a PNG, JPEG, BMP, or TIFF byte stream (the codecs
// registered above) into tightly packed RGBA8 pixels plus its dimensions,
// ready for a TextureDesc{Format: FormatRGBA8}.
func DecodeImage(data []byte) (pixels []byte, width, height int, err error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("texture: decode image: %w", core.ErrParseError)
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pixels = make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			o := (y*width + x) * 4
			pixels[o+0] = byte(r >> 8)
			pixels[o+1] = byte(g >> 8)
			pixels[o+2] = byte(b >> 8)
			pixels[o+3] = byte(a >> 8)
		}
	}
	return pixels, width, height, nil
}

// FallbackWhite1x1 returns the 1x1 opaque-white RGBA8 pixel payload the
// spec requires binding in place of a missing texture.
func FallbackWhite1x1() []byte { return []byte{255, 255, 255, 255} }

// FallbackGray1x1 returns the 1x1 opaque mid-gray RGBA8 pixel payload used
// as a missing-material fallback's albedo.
func FallbackGray1x1() []byte { return []byte{128, 128, 128, 255} }
