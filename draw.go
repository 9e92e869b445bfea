package imrender

import (
	"image"
	"math"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/imrender/gpu"
	"github.com/gogpu/imrender/text"
)

// visible reports whether device bounds b touch the clip. Shapes that do
// not are counted as culled.
func (r *Renderer) visible(b image.Rectangle) bool {
	if b.Overlaps(r.cur.clip) {
		return true
	}
	r.culled++
	return false
}

// vertex transforms p by the current matrix.
func (r *Renderer) vertex(p Point, u, v float32) Vertex {
	p = r.cur.transform.TransformPoint(p)
	return Vertex{X: float32(p.X), Y: float32(p.Y), U: gpu.UV(u), V: gpu.UV(v)}
}

func (r *Renderer) appendTriangle(a, b, c Vertex) {
	r.vertices = append(r.vertices, a, b, c)
}

// appendQuad appends rect as two triangles with the given texture
// coordinates.
func (r *Renderer) appendQuad(rect Rect, u0, v0, u1, v1 float32) {
	c := rect.Corners()
	tl := r.vertex(c[0], u0, v0)
	tr := r.vertex(c[1], u1, v0)
	br := r.vertex(c[2], u1, v1)
	bl := r.vertex(c[3], u0, v1)
	r.vertices = append(r.vertices, tl, tr, br, tl, br, bl)
}

// commit turns the vertices appended since start into a primitive.
func (r *Renderer) commit(p primitive, start int) {
	if len(r.vertices) == start {
		return
	}
	p.first = start
	p.count = len(r.vertices) - start
	p.blend = r.cur.blend
	if p.kind == kindImage && !p.image.fill && p.image.opts.Alpha == AlphaNone {
		p.blend = BlendReplace
	}
	p.scissor = r.cur.clip
	if p.texture == 0 {
		p.texture = r.white
	}
	r.prims = append(r.prims, p)
}

func (r *Renderer) solid() primitive {
	return primitive{kind: kindSolid, topology: gpu.TriangleList, color: r.cur.color.Premultiplied()}
}

// DrawRect fills rect with the current color.
func (r *Renderer) DrawRect(rect Rect) {
	if !r.recording("DrawRect") || rect.Empty() || !r.visible(r.deviceBounds(rect)) {
		return
	}
	start := len(r.vertices)
	r.appendQuad(rect, 0, 0, 1, 1)
	r.commit(r.solid(), start)
}

// DrawRects fills several rectangles as one primitive.
func (r *Renderer) DrawRects(rects []Rect) {
	if !r.recording("DrawRects") {
		return
	}
	start := len(r.vertices)
	for _, rect := range rects {
		if rect.Empty() || !r.visible(r.deviceBounds(rect)) {
			continue
		}
		r.appendQuad(rect, 0, 0, 1, 1)
	}
	r.commit(r.solid(), start)
}

// DrawPolyline strokes the open path through pts with the current line
// width. Widths <= 0 draw a one pixel line strip.
func (r *Renderer) DrawPolyline(pts []Point) {
	if !r.recording("DrawPolyline") || len(pts) < 2 {
		return
	}
	hw := r.cur.lineWidth / 2
	dev := make([]Point, len(pts))
	for i, p := range pts {
		dev[i] = r.cur.transform.TransformPoint(p)
	}
	pad := int(math.Ceil(math.Max(hw, 0)*r.cur.transform.ScaleFactor())) + 1
	if !r.visible(boundsOf(dev...).Inset(-pad)) {
		return
	}

	start := len(r.vertices)
	p := r.solid()
	if r.cur.lineWidth <= 0 {
		p.topology = gpu.LineStrip
		for _, pt := range pts {
			r.vertices = append(r.vertices, r.vertex(pt, 0, 0))
		}
		r.commit(p, start)
		return
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		d := b.Sub(a).Normalize()
		if d == (Point{}) {
			continue
		}
		n := Point{X: -d.Y * hw, Y: d.X * hw}
		v0 := r.vertex(a.Add(n), 0, 0)
		v1 := r.vertex(b.Add(n), 0, 0)
		v2 := r.vertex(b.Sub(n), 0, 0)
		v3 := r.vertex(a.Sub(n), 0, 0)
		r.vertices = append(r.vertices, v0, v1, v2, v0, v2, v3)
	}
	r.commit(p, start)
}

// arcSegments returns the number of segments for a full circle of the
// given device radius, about one per 4 pixels of circumference.
func arcSegments(radius float64) int {
	n := int(math.Ceil(2 * math.Pi * radius / 4))
	return min(max(n, 12), 256)
}

// appendFan triangulates the convex polygon outline around center.
func (r *Renderer) appendFan(center Point, outline []Point) {
	c := r.vertex(center, 0, 0)
	first := r.vertex(outline[0], 0, 0)
	prev := first
	for _, p := range outline[1:] {
		v := r.vertex(p, 0, 0)
		r.appendTriangle(c, prev, v)
		prev = v
	}
	r.appendTriangle(c, prev, first)
}

// DrawCircle fills a circle.
func (r *Renderer) DrawCircle(center Point, radius float64) {
	if !r.recording("DrawCircle") || radius <= 0 {
		return
	}
	box := Rect{X: center.X - radius, Y: center.Y - radius, W: 2 * radius, H: 2 * radius}
	if !r.visible(r.deviceBounds(box)) {
		return
	}
	n := arcSegments(radius * r.cur.transform.ScaleFactor())
	outline := make([]Point, n)
	for i := range outline {
		a := 2 * math.Pi * float64(i) / float64(n)
		outline[i] = Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	start := len(r.vertices)
	r.appendFan(center, outline)
	r.commit(r.solid(), start)
}

// DrawPill fills rect with fully rounded short ends.
func (r *Renderer) DrawPill(rect Rect) {
	if !r.recording("DrawPill") || rect.Empty() || !r.visible(r.deviceBounds(rect)) {
		return
	}
	radius := math.Min(rect.W, rect.H) / 2
	half := arcSegments(radius*r.cur.transform.ScaleFactor()) / 2

	// Cap centers, and the angle the first cap starts at.
	var c0, c1 Point
	var a0 float64
	if rect.W >= rect.H {
		c0 = Point{X: rect.X + radius, Y: rect.Y + radius}
		c1 = Point{X: rect.X + rect.W - radius, Y: rect.Y + radius}
		a0 = math.Pi / 2
	} else {
		c0 = Point{X: rect.X + radius, Y: rect.Y + radius}
		c1 = Point{X: rect.X + radius, Y: rect.Y + rect.H - radius}
		a0 = math.Pi
	}
	outline := make([]Point, 0, 2*(half+1))
	for _, arc := range []struct {
		c Point
		a float64
	}{{c0, a0}, {c1, a0 + math.Pi}} {
		for i := 0; i <= half; i++ {
			a := arc.a + math.Pi*float64(i)/float64(half)
			outline = append(outline, Point{X: arc.c.X + radius*math.Cos(a), Y: arc.c.Y + radius*math.Sin(a)})
		}
	}
	start := len(r.vertices)
	r.appendFan(Point{X: rect.X + rect.W/2, Y: rect.Y + rect.H/2}, outline)
	r.commit(r.solid(), start)
}

// DrawShadow draws a soft shadow of rect in the current color, fading
// out over radius pixels.
func (r *Renderer) DrawShadow(rect Rect, radius float64) {
	if !r.recording("DrawShadow") || rect.Empty() {
		return
	}
	radius = math.Max(radius, 0)
	outer := rect.Inset(-radius)
	if !r.visible(r.deviceBounds(outer)) {
		return
	}
	start := len(r.vertices)
	r.appendQuad(rect, 1, 1, 1, 1)
	if radius > 0 {
		in, out := rect.Corners(), outer.Corners()
		for i := range 4 {
			j := (i + 1) % 4
			i0, i1 := r.vertex(in[i], 1, 0), r.vertex(in[j], 1, 0)
			o0, o1 := r.vertex(out[i], 0, 0), r.vertex(out[j], 0, 0)
			r.vertices = append(r.vertices, i0, i1, o1, i0, o1, o0)
		}
	}
	p := primitive{kind: kindShadow, topology: gpu.TriangleList, color: r.cur.color.Premultiplied()}
	r.commit(p, start)
}

// DrawImage draws img stretched over dst, multiplied by the current color
// and processed with the current color settings, exposure, color space and
// image options.
func (r *Renderer) DrawImage(img *Image, dst Rect) {
	if !r.recording("DrawImage") {
		return
	}
	r.drawImage(img, dst, 0, 0, 1, 1, false)
}

// DrawFilledImage fills dst with the current color through the alpha of
// img, as used for icons.
func (r *Renderer) DrawFilledImage(img *Image, dst Rect) {
	if !r.recording("DrawFilledImage") {
		return
	}
	r.drawImage(img, dst, 0, 0, 1, 1, true)
}

// DrawImageCover scales img to cover dst, keeping its aspect ratio, and
// crops the overflow evenly on both sides. It is otherwise DrawImage.
func (r *Renderer) DrawImageCover(img *Image, dst Rect) {
	if !r.recording("DrawImageCover") || img.empty() || dst.Empty() {
		return
	}
	u0, v0, u1, v1 := coverUV(img.RGBA.Rect.Dx(), img.RGBA.Rect.Dy(), dst)
	r.drawImage(img, dst, u0, v0, u1, v1, false)
}

// coverUV returns the centered source window of a w x h image that fills
// dst without distortion.
func coverUV(w, h int, dst Rect) (u0, v0, u1, v1 float64) {
	scale := math.Max(dst.W/float64(w), dst.H/float64(h))
	du := dst.W / scale / float64(w)
	dv := dst.H / scale / float64(h)
	u0, v0 = (1-du)/2, (1-dv)/2
	return u0, v0, u0 + du, v0 + dv
}

func (r *Renderer) drawImage(img *Image, dst Rect, u0, v0, u1, v1 float64, fill bool) {
	if img.empty() || dst.Empty() || !r.visible(r.deviceBounds(dst)) {
		return
	}
	src, err := r.imageTexture(img, r.cur.imageOpts.Cache)
	if err != nil {
		Logger().Warn("imrender: image skipped", "uid", img.UID, "err", err)
		return
	}
	su0, sv0 := src.lerp(u0, v0)
	su1, sv1 := src.lerp(u1, v1)

	p := primitive{
		kind:     kindImage,
		topology: gpu.TriangleList,
		texture:  src.texture,
		color:    r.cur.color.Premultiplied(),
		image:    imageParams{fill: fill},
	}
	if !fill {
		p.image.matrix = r.cur.settings.Matrix()
		p.image.exposure = r.cur.exposure
		p.image.opts = r.cur.imageOpts
		p.image.space = r.spaces.Get(r.cur.spaceIn, r.cur.spaceOut)
	}
	start := len(r.vertices)
	r.appendQuad(dst, su0, sv0, su1, sv1)
	r.commit(p, start)
}

// DrawText draws s with its first line's top-left at pos, in the current
// font and color. Newlines start a new line. Glyphs are fetched from the
// glyph service, blocking until they are ready.
func (r *Renderer) DrawText(s string, pos Point) {
	if !r.recording("DrawText") || s == "" {
		return
	}
	if r.glyphs == nil {
		Logger().Debug("imrender: DrawText without glyph service")
		return
	}
	font := r.cur.font
	gf := r.glyphs.Glyphs(s, font)
	mf := r.glyphs.Metrics(font)
	glyphs, err := gf.Get()
	if err != nil {
		Logger().Warn("imrender: glyphs unavailable", "font", font.Family, "err", err)
		return
	}
	m, err := mf.Get()
	if err != nil {
		Logger().Warn("imrender: font metrics unavailable", "font", font.Family, "err", err)
		return
	}

	base := primitive{
		kind:     kindText,
		topology: gpu.TriangleList,
		color:    r.cur.color.Premultiplied(),
		lcd:      r.cur.textMode == text.ModeLCD,
	}
	var (
		penX     = fixed.Int26_6(math.Round(pos.X * 64))
		originX  = penX
		baseline = pos.Y + float64(m.Ascender) - 1
		prev     *text.Glyph
		start    = len(r.vertices)
		page     = -1
		drawn    bool
		culled   = r.culled
	)
	flush := func() {
		if page >= 0 {
			p := base
			p.texture = r.pages.pages[page]
			r.commit(p, start)
		}
		start = len(r.vertices)
	}
	for _, g := range glyphs {
		if g.Key.Codepoint == '\n' {
			penX = originX
			baseline += float64(m.LineHeight)
			prev = nil
			continue
		}
		if prev != nil {
			penX += text.Kern(prev, g)
		}
		prev = g
		x := float64(penX) / 64
		penX += g.Advance
		if g.Empty() {
			continue
		}
		dst := Rect{
			X: x + float64(g.Bounds.Min.X),
			Y: baseline + float64(g.Bounds.Min.Y),
			W: float64(g.Bitmap.Rect.Dx()),
			H: float64(g.Bitmap.Rect.Dy()),
		}
		if !r.visible(r.deviceBounds(dst)) {
			continue
		}
		item, err := r.atlas.AddItem(glyphAtlasID(g.UID), g.Bitmap)
		if err != nil {
			Logger().Debug("imrender: glyph skipped", "rune", g.Key.Codepoint, "err", err)
			continue
		}
		if item.Texture != page {
			flush()
			page = item.Texture
		}
		r.appendQuad(dst, item.U0, item.V0, item.U1, item.V1)
		drawn = true
	}
	flush()
	// A partly visible string is not a cull.
	if drawn {
		r.culled = culled
	} else if r.culled > culled {
		r.culled = culled + 1
	}
}
