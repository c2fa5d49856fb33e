package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/kestrel3d/render-core/engine/renderer/gpu"
)

func TestTexturePostConstructionUploadsPixels(t *testing.T) {
	ctx := gpu.NewNullContext()
	tex := New()
	err := tex.PostConstruction(&RawData{
		Ctx:    ctx,
		Desc:   gpu.TextureDesc{Kind: gpu.Texture2D, Format: gpu.FormatRGBA8, Width: 1, Height: 1, Layers: 1, MipLevels: 1},
		Pixels: FallbackWhite1x1(),
	})
	if err != nil {
		t.Fatalf("PostConstruction: %v", err)
	}
	if tex.Handle == 0 {
		t.Fatal("expected a non-zero texture handle")
	}
}

func TestTexturePostConstructionRejectsWrongPayload(t *testing.T) {
	tex := New()
	if err := tex.PostConstruction("not raw data"); err == nil {
		t.Fatal("expected an error for a mistyped payload")
	}
}

func TestDecodeImageRoundTripsASolidPixel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	pixels, w, h, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if w != 2 || h != 2 {
		t.Fatalf("expected 2x2, got %dx%d", w, h)
	}
	if len(pixels) != 2*2*4 {
		t.Fatalf("expected 16 bytes, got %d", len(pixels))
	}
	if pixels[0] != 10 || pixels[1] != 20 || pixels[2] != 30 || pixels[3] != 255 {
		t.Fatalf("unexpected first pixel: %v", pixels[:4])
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, _, _, err := DecodeImage([]byte("not an image")); err == nil {
		t.Fatal("expected an error decoding non-image bytes")
	}
}

func TestRenderTargetMultisampledResolveBlitsToResolveTexture(t *testing.T) {
	ctx := gpu.NewNullContext()
	rt, err := NewRenderTarget(ctx, 64, 64, 4, true)
	if err != nil {
		t.Fatalf("NewRenderTarget: %v", err)
	}
	if !rt.IsMultisampled() {
		t.Fatal("expected a multisampled target for samples=4")
	}

	rt.Resolve()
	if len(ctx.BlitCalls) != 1 {
		t.Fatalf("expected 1 blit call, got %d", len(ctx.BlitCalls))
	}
	if ctx.BlitCalls[0].Src != rt.Framebuffer {
		t.Fatal("expected the resolve blit to read from the multisampled framebuffer")
	}
	if rt.SampleTexture() == rt.Color {
		t.Fatal("expected SampleTexture to return the resolve texture, not the multisampled attachment")
	}
}

func TestRenderTargetSingleSampleResolveIsNoop(t *testing.T) {
	ctx := gpu.NewNullContext()
	rt, err := NewRenderTarget(ctx, 64, 64, 1, false)
	if err != nil {
		t.Fatalf("NewRenderTarget: %v", err)
	}
	rt.Resolve()
	if len(ctx.BlitCalls) != 0 {
		t.Fatal("expected no blit for a single-sample target")
	}
	if rt.SampleTexture() != rt.Color {
		t.Fatal("expected SampleTexture to return the color attachment directly")
	}
}

func TestRenderTargetClearRecordsCall(t *testing.T) {
	ctx := gpu.NewNullContext()
	rt, err := NewRenderTarget(ctx, 32, 32, 1, true)
	if err != nil {
		t.Fatalf("NewRenderTarget: %v", err)
	}
	rt.Clear(0.1, 0.2, 0.3, 1.0, 1.0, 0)
	if len(ctx.ClearCalls) != 1 {
		t.Fatalf("expected 1 clear call, got %d", len(ctx.ClearCalls))
	}
	if ctx.ClearCalls[0].Framebuffer != rt.Framebuffer {
		t.Fatal("expected the clear to target this render target's framebuffer")
	}
}
