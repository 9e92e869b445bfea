package text

import (
	"fmt"
	"image"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// RenderMode selects how glyph coverage is stored.
type RenderMode int

const (
	// ModeGray stores coverage in all four channels.
	ModeGray RenderMode = iota
	// ModeLCD stores horizontal subpixel coverage in R, G and B.
	ModeLCD
)

// String returns "gray" or "lcd".
func (m RenderMode) String() string {
	if m == ModeLCD {
		return "lcd"
	}
	return "gray"
}

func (m RenderMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText accepts "gray" or "lcd".
func (m *RenderMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "gray", "grey", "":
		*m = ModeGray
	case "lcd":
		*m = ModeLCD
	default:
		return fmt.Errorf("text: unknown render mode %q", b)
	}
	return nil
}

// GlyphKey identifies a cached glyph.
type GlyphKey struct {
	Codepoint rune
	Family    uint32
	Face      uint32
	Size      int
}

// Glyph is a rasterized character. Glyphs are never modified after the
// service creates them.
type Glyph struct {
	Key GlyphKey
	// Advance is the hinted (pixel-rounded) advance width.
	Advance fixed.Int26_6
	// LsbDelta and RsbDelta are the changes of the left and right side
	// bearings caused by rounding the outline edges and the advance.
	LsbDelta fixed.Int26_6
	RsbDelta fixed.Int26_6
	// Bounds is the bitmap rectangle relative to the pen on the baseline,
	// y growing downward.
	Bounds image.Rectangle
	// Bitmap is premultiplied white coverage, nil for blank glyphs.
	Bitmap *image.RGBA
	// UID identifies the bitmap for atlas placement. 0 for blank glyphs.
	UID uint64
}

// Empty reports whether the glyph has no pixels.
func (g *Glyph) Empty() bool { return g == nil || g.Bitmap == nil }

// lcdFilter is the FreeType default five-tap filter, in 1/256 units.
var lcdFilter = [5]int{8, 77, 86, 77, 8}

// rasterize builds the glyph for r. Failures yield a blank glyph with the
// key set and the error returned for logging.
func (f *face) rasterize(r rune, size int, mode RenderMode) (*Glyph, error) {
	key := GlyphKey{Codepoint: r, Family: f.family, Face: f.id, Size: size}
	g := &Glyph{Key: key}

	font, err := f.outline()
	if err != nil {
		return g, err
	}
	buf := &f.buf
	ppem := fixed.I(size)
	idx, err := font.GlyphIndex(buf, r)
	if err != nil {
		return g, err
	}
	bounds, _, err := font.GlyphBounds(buf, idx, ppem, xfont.HintingNone)
	if err != nil {
		return g, err
	}
	adv, err := font.GlyphAdvance(buf, idx, ppem, xfont.HintingFull)
	if err != nil {
		return g, err
	}
	exact, err := font.GlyphAdvance(buf, idx, ppem, xfont.HintingNone)
	if err != nil {
		return g, err
	}
	g.Advance = adv
	g.LsbDelta, g.RsbDelta = bearingDeltas(bounds.Min.X, bounds.Max.X, exact, adv)

	x0, x1 := bounds.Min.X.Floor(), bounds.Max.X.Ceil()
	y0, y1 := bounds.Min.Y.Floor(), bounds.Max.Y.Ceil()
	if x1 <= x0 || y1 <= y0 {
		return g, nil
	}

	segs, err := font.LoadGlyph(buf, idx, ppem, nil)
	if err != nil {
		return g, err
	}
	if mode == ModeLCD {
		// One pixel each side for the filter to spread into.
		x0--
		x1++
	}
	g.Bounds = image.Rect(x0, y0, x1, y1)
	w, h := x1-x0, y1-y0

	scale := float32(1)
	if mode == ModeLCD {
		scale = 3
	}
	mask := image.NewAlpha(image.Rect(0, 0, w*int(scale), h))
	z := vector.NewRasterizer(w*int(scale), h)
	origin := fixed.Point26_6{X: fixed.I(x0), Y: fixed.I(y0)}
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X-origin.X) / 64 * scale, float32(p.Y-origin.Y) / 64
	}
	started := false
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				z.ClosePath()
			}
			started = true
			z.MoveTo(pt(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			z.LineTo(pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			dx, dy := pt(s.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if started {
		z.ClosePath()
	}
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	if mode == ModeLCD {
		g.Bitmap = filterLCD(mask, w, h)
	} else {
		g.Bitmap = grayToRGBA(mask)
	}
	return g, nil
}

// bearingDeltas returns how far rounding the outline edges to whole pixels
// moves the left and right side bearings. The right bearing also absorbs
// the difference between the rounded and exact advance.
func bearingDeltas(minX, maxX, exact, rounded fixed.Int26_6) (lsb, rsb fixed.Int26_6) {
	lsb = fixed.I(minX.Round()) - minX
	rsb = (rounded - fixed.I(maxX.Round())) - (exact - maxX)
	return lsb, rsb
}

func grayToRGBA(mask *image.Alpha) *image.RGBA {
	b := mask.Bounds()
	out := image.NewRGBA(b)
	for i, a := range mask.Pix {
		o := i * 4
		out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = a, a, a, a
	}
	return out
}

// filterLCD folds a 3x wide coverage mask into RGB subpixels.
func filterLCD(mask *image.Alpha, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	sw := w * 3
	for y := range h {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+sw]
		for x := range w {
			o := y*out.Stride + x*4
			var alpha uint8
			for c := range 3 {
				s := x*3 + c
				sum := 0
				for k, weight := range lcdFilter {
					if i := s + k - 2; i >= 0 && i < sw {
						sum += weight * int(row[i])
					}
				}
				v := uint8(min(sum>>8, 255))
				out.Pix[o+c] = v
				alpha = max(alpha, v)
			}
			out.Pix[o+3] = alpha
		}
	}
	return out
}
