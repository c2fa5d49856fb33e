package texture

import (
	"fmt"
	"os"
	"sort"

	"github.com/fzipp/bmfont"

	"github.com/kestrel3d/render-core/engine/core"
	"github.com/kestrel3d/render-core/engine/events"
	"github.com/kestrel3d/render-core/engine/renderer/gpu"
)

// Glyph records one codepoint's cell in a font's glyph atlas, in atlas pixel
// coordinates, plus the pen metrics for laying out a line of text.
type Glyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	Page      uint8
}

// FontPage names one glyph-atlas image by its external file path. Pixel data
// stays on disk; a backend decodes and uploads it, then attaches the
// resulting texture with SetAtlas.
type FontPage struct {
	ID   uint8
	File string
}

// FontKerning adjusts the advance between one ordered codepoint pair.
type FontKerning struct {
	First  rune
	Second rune
	Amount int16
}

// FontFace is the glyph-metrics and glyph-atlas view of one bitmap font
// face. Rasterization happens elsewhere; the render core only reads metrics
// and binds atlas pages.
type FontFace struct {
	ID         uint32
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32

	glyphs   map[rune]Glyph
	kernings map[[2]rune]int16
	pages    []FontPage
	atlases  map[uint8]gpu.Texture
}

// NewFontFace builds a face from already-parsed metrics. Pages are sorted by
// id so page order never depends on the parser.
func NewFontFace(id uint32, face string, size uint32, lineHeight, baseline, atlasW, atlasH int32,
	glyphs []Glyph, kernings []FontKerning, pages []FontPage) *FontFace {

	f := &FontFace{
		ID:         id,
		Face:       face,
		Size:       size,
		LineHeight: lineHeight,
		Baseline:   baseline,
		AtlasSizeX: atlasW,
		AtlasSizeY: atlasH,
		glyphs:     make(map[rune]Glyph, len(glyphs)),
		kernings:   make(map[[2]rune]int16, len(kernings)),
		pages:      append([]FontPage(nil), pages...),
		atlases:    make(map[uint8]gpu.Texture),
	}
	for _, g := range glyphs {
		f.glyphs[g.Codepoint] = g
	}
	for _, k := range kernings {
		f.kernings[[2]rune{k.First, k.Second}] = k.Amount
	}
	sort.Slice(f.pages, func(i, j int) bool { return f.pages[i].ID < f.pages[j].ID })
	return f
}

// LoadFontFace reads an AngelCode .fnt descriptor from path. Only the
// descriptor is read; page images are left to the caller, referenced by the
// file names in Pages.
func LoadFontFace(id uint32, path string) (*FontFace, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("font face %q: %w", path, core.ErrNotFound)
	}
	desc, err := bmfont.LoadDescriptor(path)
	if err != nil {
		return nil, fmt.Errorf("font face %q: %v: %w", path, err, core.ErrParseError)
	}

	glyphs := make([]Glyph, 0, len(desc.Chars))
	for _, g := range desc.Chars {
		glyphs = append(glyphs, Glyph{
			Codepoint: g.ID,
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			Page:      uint8(g.Page),
		})
	}

	kernings := make([]FontKerning, 0, len(desc.Kerning))
	for pair, k := range desc.Kerning {
		kernings = append(kernings, FontKerning{First: pair.First, Second: pair.Second, Amount: int16(k.Amount)})
	}

	pages := make([]FontPage, 0, len(desc.Pages))
	for _, p := range desc.Pages {
		pages = append(pages, FontPage{ID: uint8(p.ID), File: p.File})
	}

	return NewFontFace(
		id,
		desc.Info.Face,
		uint32(desc.Info.Size),
		int32(desc.Common.LineHeight),
		int32(desc.Common.Base),
		int32(desc.Common.ScaleW),
		int32(desc.Common.ScaleH),
		glyphs, kernings, pages,
	), nil
}

// Glyph returns the atlas cell for codepoint r.
func (f *FontFace) Glyph(r rune) (Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}

// Kerning returns the advance adjustment between prev and next, zero if the
// pair has none.
func (f *FontFace) Kerning(prev, next rune) int16 {
	return f.kernings[[2]rune{prev, next}]
}

// MeasureLine returns the pen advance of a single line of text in pixels,
// kerning included. Codepoints the face has no glyph for contribute nothing.
func (f *FontFace) MeasureLine(text string) int32 {
	var width int32
	prev := rune(-1)
	for _, r := range text {
		g, ok := f.glyphs[r]
		if !ok {
			prev = -1
			continue
		}
		if prev >= 0 {
			width += int32(f.Kerning(prev, r))
		}
		width += int32(g.XAdvance)
		prev = r
	}
	return width
}

// Pages returns the atlas page list, ascending by id. The returned slice
// must not be mutated.
func (f *FontFace) Pages() []FontPage { return f.pages }

// SetAtlas attaches the uploaded texture for one atlas page.
func (f *FontFace) SetAtlas(page uint8, t gpu.Texture) {
	f.atlases[page] = t
}

// Atlas returns the uploaded texture for one atlas page, if attached.
func (f *FontFace) Atlas(page uint8) (gpu.Texture, bool) {
	t, ok := f.atlases[page]
	return t, ok
}

// Clear destroys every attached atlas texture, drops the glyph table, and
// announces the release on bus so text renderables holding this face stop
// sampling it.
func (f *FontFace) Clear(ctx gpu.Context, bus *events.Bus) {
	for _, t := range f.atlases {
		ctx.DestroyTexture(t)
	}
	f.atlases = make(map[uint8]gpu.Texture)
	f.glyphs = make(map[rune]Glyph)
	f.kernings = make(map[[2]rune]int16)
	if bus != nil {
		bus.FontFaceCleared.Publish(events.FontFaceCleared{ID: f.ID})
	}
}
