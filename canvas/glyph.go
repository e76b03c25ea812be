package canvas

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// glyphKey caches glyph bitmaps by (font, size, codepoint), per spec.md
// §4.7. Face identity is the loaded *opentype.Font pointer, matching how
// the teacher's ttf.go rasterizes once per (font bytes, size) pair.
type glyphKey struct {
	face *opentype.Font
	size int
	r    rune
}

// Glyph is one rasterized glyph: its alpha mask and metrics, grounded on
// the teacher's load.Glyph fields in ttf.go/fnt.go.
type Glyph struct {
	Mask     *image.Alpha
	Width    int
	Height   int
	BearingX int
	BearingY int
	Advance  int
}

// fallbackGlyph is returned for codepoints the font has no outline for,
// per spec.md §4.7 "Unknown codepoints fall back to a zero-advance glyph."
var fallbackGlyph = Glyph{Mask: image.NewAlpha(image.Rect(0, 0, 0, 0))}

// GlyphCache parses one font, creates a face for each requested size on
// first use, and caches the glyphs rasterized at each size, the same
// one-shot-then-reuse idiom as the teacher's font atlas but lazily
// per-glyph instead of building one atlas image upfront.
type GlyphCache struct {
	mu    sync.Mutex
	faces map[int]font.Face
	bytes []byte
	typ   *opentype.Font

	glyphs map[glyphKey]Glyph
}

// NewGlyphCache parses TTF/OTF bytes once; faces at each requested size
// are created lazily and cached.
func NewGlyphCache(ttfBytes []byte) (*GlyphCache, error) {
	f, err := opentype.Parse(ttfBytes)
	if err != nil {
		return nil, fmt.Errorf("canvas: parsing font: %w", err)
	}
	return &GlyphCache{
		faces:  make(map[int]font.Face),
		typ:    f,
		bytes:  ttfBytes,
		glyphs: make(map[glyphKey]Glyph),
	}, nil
}

func (c *GlyphCache) faceAt(size int) (font.Face, error) {
	if face, ok := c.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(c.typ, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("canvas: creating face at size %d: %w", size, err)
	}
	c.faces[size] = face
	return face, nil
}

// Glyph returns the rasterized glyph for r at the given pixel size,
// rasterizing and caching on first use.
func (c *GlyphCache) Glyph(size int, r rune) (Glyph, error) {
	key := glyphKey{face: c.typ, size: size, r: r}

	c.mu.Lock()
	if g, ok := c.glyphs[key]; ok {
		c.mu.Unlock()
		return g, nil
	}
	c.mu.Unlock()

	face, err := c.faceAt(size)
	if err != nil {
		return Glyph{}, err
	}

	bounds, advance, ok := face.GlyphBounds(r)
	if !ok {
		c.mu.Lock()
		c.glyphs[key] = fallbackGlyph
		c.mu.Unlock()
		return fallbackGlyph, nil
	}

	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	maxX, maxY := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		c.mu.Lock()
		c.glyphs[key] = fallbackGlyph
		c.mu.Unlock()
		return fallbackGlyph, nil
	}

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	dot := fixed.P(-minX, -minY)
	dr, mask, maskp, _, _ := face.Glyph(dot, r)
	draw.DrawMask(dst, dr, image.Opaque, image.Point{}, mask, maskp, draw.Over)

	g := Glyph{
		Mask:     dst,
		Width:    w,
		Height:   h,
		BearingX: minX,
		BearingY: minY,
		Advance:  advance.Round(),
	}
	c.mu.Lock()
	c.glyphs[key] = g
	c.mu.Unlock()
	return g, nil
}
