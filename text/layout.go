package text

import (
	"image"
	"unicode"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Metrics are the vertical metrics of a font at one size, in pixels.
type Metrics struct {
	Ascender   int
	Descender  int
	LineHeight int
}

// Size is a measured text extent in pixels.
type Size struct {
	Width, Height int
}

// TextLine is one wrapped line. Position is the top-left of the line
// relative to the text origin.
type TextLine struct {
	Text     string
	Position image.Point
}

func (f *face) metrics(size int) (Metrics, error) {
	font, err := f.outline()
	if err != nil {
		return Metrics{}, err
	}
	m, err := font.Metrics(&f.buf, fixed.I(size), xfont.HintingFull)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		Ascender:   m.Ascent.Ceil(),
		Descender:  m.Descent.Ceil(),
		LineHeight: m.Height.Ceil(),
	}, nil
}

// lineSpan is a laid out line covering runes [start, end).
type lineSpan struct {
	start, end int
	width      fixed.Int26_6
}

// layout is the result of placing runes on lines.
type layout struct {
	runes []rune
	lines []lineSpan
	// x and adv hold the pen position and advance of each rune on its line.
	x   []fixed.Int26_6
	adv []fixed.Int26_6
}

// Kern applies the rounding correction between two neighbouring hinted
// glyphs: when the rounding moved their facing edges apart or together by
// more than half a pixel, the pen moves back or forward one pixel.
func Kern(prev, cur *Glyph) fixed.Int26_6 {
	d := prev.RsbDelta - cur.LsbDelta
	switch {
	case d > 32:
		return -64
	case d < -31:
		return 64
	}
	return 0
}

// layoutText places runes greedily. maxWidth <= 0 disables wrapping.
// A line breaks when the next glyph would reach maxWidth: at the most
// recent whitespace on the line if there is one, otherwise before the
// glyph. A newline always breaks. The first glyph of a line never wraps.
func layoutText(runes []rune, glyph func(rune) *Glyph, maxWidth fixed.Int26_6) layout {
	l := layout{
		runes: runes,
		x:     make([]fixed.Int26_6, len(runes)),
		adv:   make([]fixed.Int26_6, len(runes)),
	}
	var (
		pos       fixed.Int26_6
		lineStart int
		lastSpace = -1
		prev      *Glyph
	)
	newLine := func(next int) {
		lineStart = next
		pos = 0
		lastSpace = -1
		prev = nil
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			l.lines = append(l.lines, lineSpan{lineStart, i, pos})
			newLine(i + 1)
			continue
		}
		g := glyph(r)
		if prev != nil {
			pos += Kern(prev, g)
		}
		adv := g.Advance
		if maxWidth > 0 && i > lineStart && pos+adv >= maxWidth {
			switch {
			case unicode.IsSpace(r):
				l.lines = append(l.lines, lineSpan{lineStart, i, pos})
				newLine(i + 1)
			case lastSpace > lineStart:
				l.lines = append(l.lines, lineSpan{lineStart, lastSpace, l.x[lastSpace]})
				newLine(lastSpace + 1)
				i = lastSpace
			default:
				l.lines = append(l.lines, lineSpan{lineStart, i, pos})
				newLine(i)
				i--
			}
			continue
		}
		l.x[i] = pos
		l.adv[i] = adv
		if unicode.IsSpace(r) {
			lastSpace = i
		}
		pos += adv
		prev = g
	}
	if lineStart < len(runes) {
		l.lines = append(l.lines, lineSpan{lineStart, len(runes), pos})
	}
	return l
}

// size returns the bounding size of all lines.
func (l layout) size(lineHeight int) Size {
	var w fixed.Int26_6
	for _, ln := range l.lines {
		w = max(w, ln.width)
	}
	return Size{Width: w.Ceil(), Height: len(l.lines) * lineHeight}
}

// textLines converts spans to positioned strings.
func (l layout) textLines(lineHeight int) []TextLine {
	out := make([]TextLine, len(l.lines))
	for i, ln := range l.lines {
		out[i] = TextLine{
			Text:     string(l.runes[ln.start:ln.end]),
			Position: image.Pt(0, i*lineHeight),
		}
	}
	return out
}

// cells returns the advance box of every non-newline rune.
func (l layout) cells(lineHeight int) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(l.runes))
	for li, ln := range l.lines {
		top := li * lineHeight
		for i := ln.start; i < ln.end; i++ {
			x0 := l.x[i].Round()
			out = append(out, image.Rect(x0, top, (l.x[i]+l.adv[i]).Round(), top+lineHeight))
		}
	}
	return out
}
