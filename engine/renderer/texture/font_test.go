package texture

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/kestrel3d/render-core/engine/core"
	"github.com/kestrel3d/render-core/engine/events"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
)

func testFace() *FontFace {
	glyphs := []Glyph{
		{Codepoint: 'A', X: 0, Y: 0, Width: 20, Height: 24, XOffset: 0, YOffset: 5, XAdvance: 22, Page: 0},
		{Codepoint: 'V', X: 20, Y: 0, Width: 20, Height: 24, XOffset: 0, YOffset: 5, XAdvance: 21, Page: 0},
		{Codepoint: '!', X: 40, Y: 0, Width: 6, Height: 24, XOffset: 1, YOffset: 5, XAdvance: 8, Page: 1},
	}
	kernings := []FontKerning{{First: 'A', Second: 'V', Amount: -3}}
	pages := []FontPage{
		{ID: 1, File: "test_1.png"},
		{ID: 0, File: "test_0.png"},
	}
	return NewFontFace(7, "Test", 32, 36, 29, 256, 256, glyphs, kernings, pages)
}

func TestFontFaceGlyphLookup(t *testing.T) {
	f := testFace()

	g, ok := f.Glyph('A')
	if !ok {
		t.Fatal("expected a glyph for 'A'")
	}
	if g.Width != 20 || g.XAdvance != 22 || g.Page != 0 {
		t.Fatalf("unexpected glyph for 'A': %+v", g)
	}
	if _, ok := f.Glyph('z'); ok {
		t.Fatal("expected no glyph for 'z'")
	}
}

func TestFontFacePagesSortedByID(t *testing.T) {
	f := testFace()
	pages := f.Pages()
	if len(pages) != 2 || pages[0].ID != 0 || pages[1].ID != 1 {
		t.Fatalf("unexpected page order: %+v", pages)
	}
	if pages[0].File != "test_0.png" {
		t.Fatalf("unexpected file for page 0: %q", pages[0].File)
	}
}

func TestFontFaceMeasureLineAppliesKerning(t *testing.T) {
	f := testFace()

	if got := f.MeasureLine("A"); got != 22 {
		t.Fatalf("MeasureLine(A) = %d, want 22", got)
	}
	// 22 + 21 - 3 kerning between the pair.
	if got := f.MeasureLine("AV"); got != 40 {
		t.Fatalf("MeasureLine(AV) = %d, want 40", got)
	}
	// Unknown codepoints contribute nothing and break the kerning pair.
	if got := f.MeasureLine("AzV"); got != 43 {
		t.Fatalf("MeasureLine(AzV) = %d, want 43", got)
	}
}

func TestFontFaceAtlasAttachAndClear(t *testing.T) {
	ctx := gpu.NewNullContext()
	bus := events.NewBus()
	f := testFace()

	tex, err := ctx.CreateTexture(gpu.TextureDesc{Kind: gpu.Texture2D, Format: gpu.FormatRGBA8, Width: 256, Height: 256, Layers: 1, MipLevels: 1})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	f.SetAtlas(0, tex)

	got, ok := f.Atlas(0)
	if !ok || got != tex {
		t.Fatalf("Atlas(0) = %v, %v; want the attached texture", got, ok)
	}
	if _, ok := f.Atlas(1); ok {
		t.Fatal("expected no texture attached for page 1")
	}

	var cleared []uint32
	bus.FontFaceCleared.Subscribe(nil, func(e events.FontFaceCleared) {
		cleared = append(cleared, e.ID)
	})

	f.Clear(ctx, bus)
	if len(cleared) != 1 || cleared[0] != 7 {
		t.Fatalf("cleared ids = %v, want [7]", cleared)
	}
	if _, ok := f.Atlas(0); ok {
		t.Fatal("expected atlases dropped after Clear")
	}
	if _, ok := f.Glyph('A'); ok {
		t.Fatal("expected glyph table dropped after Clear")
	}
}

func TestLoadFontFaceMissingFileIsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.fnt")
	if _, err := LoadFontFace(1, path); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("LoadFontFace on a missing file = %v, want NotFound", err)
	}
}
