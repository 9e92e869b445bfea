package imrender

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/imrender/atlas"
	"github.com/gogpu/imrender/color"
	"github.com/gogpu/imrender/gpu"
	"github.com/gogpu/imrender/text"
)

func newTestRenderer(t *testing.T, glyphs *text.Service, opts ...Option) (*Renderer, *gpu.Recorder) {
	t.Helper()
	rec := gpu.NewRecorder()
	r, err := New(rec, glyphs, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, rec
}

func newTestGlyphs(t *testing.T, mode text.RenderMode) (*text.Service, FontInfo) {
	t.Helper()
	s := text.NewService(text.Config{MaxGlyphs: 256, Mode: mode})
	t.Cleanup(func() { s.Close() })
	infos, err := s.Catalog().AddFont(goregular.TTF)
	if err != nil {
		t.Fatalf("AddFont: %v", err)
	}
	info := infos[0]
	info.Size = 16
	return s, info
}

func testImage(uid uint64, w, h int) *Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return &Image{UID: uid, RGBA: img}
}

func TestSingleRectFrame(t *testing.T) {
	r, rec := newTestRenderer(t, nil)
	if err := r.BeginFrame(800, 600); err != nil {
		t.Fatal(err)
	}
	r.SetColor(RGBA{1, 0, 0, 1})
	r.DrawRect(R(0, 0, 100, 100))
	stats, err := r.EndFrame()
	if err != nil {
		t.Fatal(err)
	}

	if stats.Vertices != 6 || len(r.Vertices()) != 6 {
		t.Fatalf("vertices = %d (%d), want 6", stats.Vertices, len(r.Vertices()))
	}
	corners := map[[2]float32]bool{}
	for _, v := range r.Vertices() {
		corners[[2]float32{v.X, v.Y}] = true
	}
	for _, c := range [][2]float32{{0, 0}, {100, 0}, {100, 100}, {0, 100}} {
		if !corners[c] {
			t.Errorf("corner %v missing from %v", c, r.Vertices())
		}
	}
	if stats.BlendChanges != 0 || stats.MaskChanges != 0 || stats.ScissorChanges != 0 {
		t.Errorf("state changes = %+v, want none", stats)
	}
	if stats.DrawCalls != 1 {
		t.Errorf("DrawCalls = %d, want 1", stats.DrawCalls)
	}
	if n := len(rec.CommandsOf(gpu.OpSetBlend)); n != 0 {
		t.Errorf("SetBlend calls = %d, want 0", n)
	}
	if got := gpu.DecodeVertices(rec.Vertices); len(got) != 6 {
		t.Errorf("uploaded vertices = %d, want 6", len(got))
	}
	u := rec.CommandsOf(gpu.OpSetUniforms)[0].Uniforms
	if u.Color != [4]float32{1, 0, 0, 1} || u.Mode != gpu.ModeSolid {
		t.Errorf("uniforms = %+v", u)
	}
	if u.Viewport != [2]float32{800, 600} {
		t.Errorf("viewport = %v", u.Viewport)
	}
}

func TestBlendChangesFollowTransitions(t *testing.T) {
	tests := []struct {
		name  string
		modes []BlendMode
		want  int
	}{
		{"all normal", []BlendMode{BlendNormal, BlendNormal, BlendNormal}, 0},
		{"alternating", []BlendMode{BlendNormal, BlendAdditive, BlendNormal, BlendAdditive}, 3},
		{"runs", []BlendMode{BlendAdditive, BlendAdditive, BlendMultiply, BlendMultiply, BlendNormal}, 3},
		{"one switch", []BlendMode{BlendNormal, BlendReplace, BlendReplace, BlendReplace}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newTestRenderer(t, nil)
			_ = r.BeginFrame(100, 100)
			for i, m := range tt.modes {
				r.SetBlendMode(m)
				r.DrawRect(R(float64(i), 0, 10, 10))
			}
			stats, err := r.EndFrame()
			if err != nil {
				t.Fatal(err)
			}
			if stats.BlendChanges != tt.want {
				t.Errorf("BlendChanges = %d, want %d", stats.BlendChanges, tt.want)
			}
			if n := len(rec.CommandsOf(gpu.OpSetBlend)); n != tt.want {
				t.Errorf("SetBlend calls = %d, want %d", n, tt.want)
			}
			if stats.DrawCalls != len(tt.modes) {
				t.Errorf("DrawCalls = %d, want %d", stats.DrawCalls, len(tt.modes))
			}
		})
	}
}

func TestShapesOutsideClipAreCulled(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	_ = r.BeginFrame(200, 200)
	r.DrawRect(R(300, 300, 10, 10))
	r.DrawCircle(Pt(-50, -50), 10)
	r.DrawRect(R(190, 190, 50, 50)) // partly visible
	r.PushClip(R(0, 0, 50, 50))
	r.DrawRect(R(60, 60, 10, 10))
	r.PopClip()
	r.DrawRects([]Rect{R(0, 0, 5, 5), R(500, 0, 5, 5)})
	stats, err := r.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Culled != 4 {
		t.Errorf("Culled = %d, want 4", stats.Culled)
	}
	if stats.Primitives != 2 || stats.Vertices != 12 {
		t.Errorf("primitives = %d, vertices = %d, want 2 and 12", stats.Primitives, stats.Vertices)
	}
}

func TestTranslatedShapeIsCulledInDeviceSpace(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	r.Translate(1000, 0)
	r.DrawRect(R(0, 0, 10, 10))
	stats, _ := r.EndFrame()
	if stats.Culled != 1 || stats.Vertices != 0 {
		t.Errorf("stats = %+v, want one cull and no vertices", stats)
	}
}

func TestScissorFollowsClip(t *testing.T) {
	r, rec := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	r.DrawRect(R(0, 0, 10, 10))
	r.SetClip(R(0, 0, 50, 50))
	r.DrawRect(R(0, 0, 10, 10))
	r.DrawRect(R(10, 10, 10, 10))
	r.ResetClip()
	r.DrawRect(R(0, 0, 10, 10))
	stats, _ := r.EndFrame()
	if stats.ScissorChanges != 2 {
		t.Errorf("ScissorChanges = %d, want 2", stats.ScissorChanges)
	}
	sc := rec.CommandsOf(gpu.OpSetScissor)
	if len(sc) != 2 || sc[0].Rect != image.Rect(0, 0, 50, 50) || sc[1].Rect != image.Rect(0, 0, 100, 100) {
		t.Errorf("scissors = %+v", sc)
	}
}

func TestDrawOutsideFrameIsIgnored(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	r.DrawRect(R(0, 0, 10, 10))
	if len(r.Vertices()) != 0 {
		t.Fatalf("vertices recorded outside a frame")
	}
	if _, err := r.EndFrame(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("EndFrame = %v, want ErrNotRecording", err)
	}
	_ = r.BeginFrame(10, 10)
	if err := r.BeginFrame(10, 10); !errors.Is(err, ErrFrameInProgress) {
		t.Fatalf("nested BeginFrame = %v, want ErrFrameInProgress", err)
	}
	if _, err := r.EndFrame(); err != nil {
		t.Fatal(err)
	}
	r.DrawRect(R(0, 0, 10, 10))
	if len(r.Vertices()) != 0 {
		t.Fatalf("vertices recorded after EndFrame")
	}
}

func TestSaveRestore(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	r.SetColor(Red)
	r.Save()
	r.SetColor(Blue)
	r.Translate(10, 10)
	r.PushClip(R(0, 0, 20, 20))
	if got := r.Clip(); got != image.Rect(10, 10, 30, 30) {
		t.Errorf("pushed clip = %v", got)
	}
	r.Restore()
	if r.Color() != Red || !r.Transform().IsIdentity() {
		t.Errorf("state not restored: color %v transform %v", r.Color(), r.Transform())
	}
	if got := r.Clip(); got != image.Rect(0, 0, 100, 100) {
		t.Errorf("clip after restore = %v", got)
	}
	r.PopClip() // stack was truncated by Restore
	if got := r.Clip(); got != image.Rect(0, 0, 100, 100) {
		t.Errorf("clip after extra PopClip = %v", got)
	}
	r.Restore() // empty stack is a no-op
	_, _ = r.EndFrame()
}

func TestPolylines(t *testing.T) {
	r, rec := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	r.SetLineWidth(0)
	r.DrawPolyline([]Point{{0, 0}, {10, 0}, {10, 10}})
	r.SetLineWidth(2)
	r.DrawPolyline([]Point{{0, 0}, {10, 0}, {10, 10}})
	stats, _ := r.EndFrame()
	draws := rec.CommandsOf(gpu.OpDraw)
	if len(draws) != 2 {
		t.Fatalf("draws = %d", len(draws))
	}
	if draws[0].Topology != gpu.LineStrip || draws[0].Count != 3 {
		t.Errorf("hairline draw = %+v", draws[0])
	}
	if draws[1].Topology != gpu.TriangleList || draws[1].Count != 12 {
		t.Errorf("wide line draw = %+v", draws[1])
	}
	if stats.Vertices != 15 {
		t.Errorf("Vertices = %d, want 15", stats.Vertices)
	}
	v := r.Vertices()[3:]
	for _, p := range v[:6] {
		if p.Y < -1 || p.Y > 1 {
			t.Errorf("first segment vertex %v outside the 2px band", p)
		}
	}
}

func TestCircleAndPillAreTriangleLists(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	_ = r.BeginFrame(400, 400)
	r.DrawCircle(Pt(50, 50), 4)
	small := len(r.Vertices())
	r.DrawCircle(Pt(200, 200), 100)
	large := len(r.Vertices()) - small
	if small%3 != 0 || large%3 != 0 {
		t.Fatalf("vertex counts %d, %d not triangle lists", small, large)
	}
	if large <= small {
		t.Errorf("large circle has %d vertices, small %d", large, small)
	}
	before := len(r.Vertices())
	r.DrawPill(R(10, 300, 100, 20))
	pill := r.Vertices()[before:]
	for _, v := range pill {
		if v.X < 9.99 || v.X > 110.01 || v.Y < 299.99 || v.Y > 320.01 {
			t.Errorf("pill vertex %v outside its rect", v)
			break
		}
	}
	_, _ = r.EndFrame()
}

func TestShadowCarriesAlphaInU(t *testing.T) {
	r, rec := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	r.DrawShadow(R(20, 20, 40, 40), 8)
	_, _ = r.EndFrame()
	vs := r.Vertices()
	if len(vs) != 30 {
		t.Fatalf("vertices = %d, want 30", len(vs))
	}
	for _, v := range vs {
		inside := v.X >= 20 && v.X <= 60 && v.Y >= 20 && v.Y <= 60
		if inside && v.U != 65535 || !inside && v.U != 0 {
			t.Errorf("vertex %+v has wrong alpha", v)
		}
	}
	if u := rec.CommandsOf(gpu.OpSetUniforms)[0].Uniforms; u.Mode != gpu.ModeShadow {
		t.Errorf("mode = %d, want shadow", u.Mode)
	}
}

func TestCoverUV(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		dst            Rect
		u0, v0, u1, v1 float64
	}{
		{"wide image in square", 200, 100, R(0, 0, 100, 100), 0.25, 0, 0.75, 1},
		{"tall image in square", 100, 200, R(0, 0, 50, 50), 0, 0.25, 1, 0.75},
		{"same aspect", 100, 50, R(0, 0, 300, 150), 0, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u0, v0, u1, v1 := coverUV(tt.w, tt.h, tt.dst)
			if u0 != tt.u0 || v0 != tt.v0 || u1 != tt.u1 || v1 != tt.v1 {
				t.Errorf("coverUV = %v %v %v %v, want %v %v %v %v", u0, v0, u1, v1, tt.u0, tt.v0, tt.u1, tt.v1)
			}
		})
	}
}

func TestSmallImagesUseAtlas(t *testing.T) {
	r, _ := newTestRenderer(t, nil, WithAtlas(atlas.Config{Count: 1, Size: 128}))
	_ = r.BeginFrame(100, 100)
	r.DrawImage(testImage(1, 16, 16), R(0, 0, 16, 16))
	r.DrawImage(testImage(2, 16, 16), R(20, 0, 16, 16))
	stats, _ := r.EndFrame()
	if r.AtlasStats().Items != 2 || r.DynamicTextures() != 0 {
		t.Errorf("atlas items = %d, dynamic = %d", r.AtlasStats().Items, r.DynamicTextures())
	}
	// Both images share the atlas page.
	if stats.TextureBinds != 1 {
		t.Errorf("TextureBinds = %d, want 1", stats.TextureBinds)
	}
}

func TestJanitorTrimsDynamicTextures(t *testing.T) {
	r, rec := newTestRenderer(t, nil, WithMaxAtlasItem(8), WithDynamicTextureCacheMax(2))
	_ = r.BeginFrame(100, 100)
	for uid := uint64(1); uid <= 4; uid++ {
		r.DrawImage(testImage(uid, 16, 16), R(0, 0, 16, 16))
	}
	stats, err := r.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TextureBinds != 4 {
		t.Errorf("TextureBinds = %d, want 4", stats.TextureBinds)
	}
	if r.DynamicTextures() != 2 {
		t.Errorf("DynamicTextures = %d, want 2", r.DynamicTextures())
	}
	if n := len(rec.CommandsOf(gpu.OpDestroyTexture)); n != 2 {
		t.Errorf("destroyed textures = %d, want 2", n)
	}

	// The oldest two were evicted and are created again.
	rec.Reset()
	_ = r.BeginFrame(100, 100)
	r.DrawImage(testImage(1, 16, 16), R(0, 0, 16, 16))
	r.DrawImage(testImage(4, 16, 16), R(0, 0, 16, 16))
	_, _ = r.EndFrame()
	if n := len(rec.CommandsOf(gpu.OpCreateTexture)); n != 1 {
		t.Errorf("textures created = %d, want 1", n)
	}
}

func TestColorSpacesRecompileAndTrim(t *testing.T) {
	r, rec := newTestRenderer(t, nil, WithColorSpaceCacheMax(1), WithLUTEdge(4))
	_ = r.BeginFrame(100, 100)
	r.DrawRect(R(0, 0, 10, 10))
	_, _ = r.EndFrame()
	if rec.Compiles != 1 {
		t.Fatalf("Compiles = %d, want 1", rec.Compiles)
	}

	_ = r.BeginFrame(100, 100)
	r.DrawRect(R(0, 0, 10, 10))
	_, _ = r.EndFrame()
	if rec.Compiles != 1 {
		t.Errorf("program recompiled without changes")
	}

	_ = r.BeginFrame(100, 100)
	r.SetColorSpace("srgb", "display-p3")
	r.DrawImage(testImage(1, 4, 4), R(0, 0, 10, 10))
	r.SetColorSpace("srgb", "rec2020")
	r.DrawImage(testImage(1, 4, 4), R(0, 0, 10, 10))
	r.SetColorSpace("srgb", "no-such-space")
	r.DrawImage(testImage(1, 4, 4), R(0, 0, 10, 10))
	stats, err := r.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Compiles != 2 {
		t.Errorf("Compiles = %d, want 2", rec.Compiles)
	}
	if stats.LUTBinds != 3 {
		t.Errorf("LUTBinds = %d, want 3", stats.LUTBinds)
	}
	ids := []uint32{}
	for _, c := range rec.CommandsOf(gpu.OpSetUniforms) {
		ids = append(ids, c.Uniforms.ColorSpace)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 0 {
		t.Errorf("color space ids = %v, want [1 2 0]", ids)
	}
	if r.ColorSpaces() != 1 {
		t.Errorf("ColorSpaces = %d after trim, want 1", r.ColorSpaces())
	}

	_ = r.BeginFrame(100, 100)
	_, _ = r.EndFrame()
	if rec.Compiles != 3 {
		t.Errorf("Compiles = %d after trim, want 3", rec.Compiles)
	}
}

func TestImageUniforms(t *testing.T) {
	r, rec := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	s := color.DefaultSettings()
	s.Brightness = [3]float32{2, 2, 2}
	r.SetColorSettings(s)
	e := color.DefaultExposure()
	e.Enabled = true
	e.Stops = 1
	r.SetExposure(e)
	r.DrawImage(testImage(9, 4, 4), R(0, 0, 10, 10))
	_, _ = r.EndFrame()
	u := rec.CommandsOf(gpu.OpSetUniforms)[0].Uniforms
	if u.Mode != gpu.ModeImage {
		t.Fatalf("mode = %d, want image", u.Mode)
	}
	if u.ColorMatrix[0] != 2 || u.Exposure != e.Uniforms() {
		t.Errorf("matrix[0] = %v, exposure = %v", u.ColorMatrix[0], u.Exposure)
	}
	if u.Flags != gpu.FlagExposure {
		t.Errorf("flags = %b, want exposure only", u.Flags)
	}
}

func TestImagesUseCurrentColor(t *testing.T) {
	r, rec := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	r.SetColor(RGBA2(1, 0, 0, 0.5))
	r.DrawImage(testImage(1, 4, 4), R(0, 0, 10, 10))
	r.DrawFilledImage(testImage(1, 4, 4), R(20, 0, 10, 10))
	_, _ = r.EndFrame()

	us := rec.CommandsOf(gpu.OpSetUniforms)
	if len(us) != 2 {
		t.Fatalf("uniform updates = %d, want 2", len(us))
	}
	want := [4]float32{0.5, 0, 0, 0.5}
	tests := []struct {
		name string
		mode uint32
	}{
		{"image", gpu.ModeImage},
		{"filled image", gpu.ModeImageFill},
	}
	for i, tt := range tests {
		u := us[i].Uniforms
		if u.Mode != tt.mode {
			t.Errorf("%s: mode = %d, want %d", tt.name, u.Mode, tt.mode)
		}
		if u.Color != want {
			t.Errorf("%s: color = %v, want %v", tt.name, u.Color, want)
		}
	}
}

func TestImageOptionsReachUniforms(t *testing.T) {
	r, rec := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	levels := color.DefaultLevels()
	levels.Enabled = true
	levels.Gamma = 2
	r.SetImageOptions(ImageOptions{
		Channel:  ChannelGreen,
		Alpha:    AlphaStraight,
		Invert:   true,
		Levels:   levels,
		SoftClip: 0.25,
	})
	r.DrawImage(testImage(3, 4, 4), R(0, 0, 10, 10))
	_, _ = r.EndFrame()

	u := rec.CommandsOf(gpu.OpSetUniforms)[0].Uniforms
	if u.ImageChannel != gpu.ChannelGreen || u.AlphaMode != gpu.AlphaStraight {
		t.Errorf("channel/alpha = %d/%d", u.ImageChannel, u.AlphaMode)
	}
	if u.Flags != gpu.FlagInvert|gpu.FlagLevels {
		t.Errorf("flags = %b, want invert|levels", u.Flags)
	}
	if u.Levels[2] != 0.5 || u.Tone[0] != 1 || u.Tone[1] != 0.25 {
		t.Errorf("levels = %v, tone = %v", u.Levels, u.Tone)
	}
}

func TestImageAlphaNoneReplaces(t *testing.T) {
	r, rec := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	r.DrawImage(testImage(1, 4, 4), R(0, 0, 10, 10))
	r.SetImageOptions(ImageOptions{Alpha: AlphaNone})
	r.DrawImage(testImage(1, 4, 4), R(20, 0, 10, 10))
	r.DrawFilledImage(testImage(1, 4, 4), R(40, 0, 10, 10))
	stats, _ := r.EndFrame()

	blends := rec.CommandsOf(gpu.OpSetBlend)
	if len(blends) != 2 || blends[0].Blend != BlendReplace || blends[1].Blend != BlendNormal {
		t.Errorf("blend changes = %+v, want replace then normal", blends)
	}
	if stats.BlendChanges != 2 {
		t.Errorf("BlendChanges = %d, want 2", stats.BlendChanges)
	}
}

func TestImageCacheOption(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	_ = r.BeginFrame(100, 100)
	r.SetImageOptions(ImageOptions{Cache: CacheDynamic})
	r.DrawImage(testImage(5, 8, 8), R(0, 0, 8, 8))
	_, _ = r.EndFrame()
	if r.AtlasStats().Items != 0 || r.DynamicTextures() != 1 {
		t.Errorf("atlas items = %d, dynamic = %d, want 0 and 1", r.AtlasStats().Items, r.DynamicTextures())
	}
}

func TestImageChannelValues(t *testing.T) {
	pairs := []struct {
		c    ImageChannel
		want uint32
	}{
		{ChannelAll, gpu.ChannelAll},
		{ChannelRed, gpu.ChannelRed},
		{ChannelGreen, gpu.ChannelGreen},
		{ChannelBlue, gpu.ChannelBlue},
		{ChannelAlpha, gpu.ChannelAlpha},
	}
	for _, p := range pairs {
		if uint32(p.c) != p.want {
			t.Errorf("channel %d maps to %d", p.c, p.want)
		}
	}
	alphas := []struct {
		a    AlphaBlend
		want uint32
	}{
		{AlphaPremultiplied, gpu.AlphaPremultiplied},
		{AlphaStraight, gpu.AlphaStraight},
		{AlphaNone, gpu.AlphaIgnore},
	}
	for _, p := range alphas {
		if uint32(p.a) != p.want {
			t.Errorf("alpha %d maps to %d", p.a, p.want)
		}
	}
}

func TestLCDTextDrawsEachChannel(t *testing.T) {
	glyphs, font := newTestGlyphs(t, text.ModeLCD)
	r, rec := newTestRenderer(t, glyphs)
	_ = r.BeginFrame(200, 100)
	r.SetFont(font)
	r.DrawText("Hi", Pt(10, 10))
	stats, err := r.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Primitives != 1 {
		t.Fatalf("Primitives = %d, want 1", stats.Primitives)
	}
	if stats.DrawCalls != 3 {
		t.Errorf("DrawCalls = %d, want 3", stats.DrawCalls)
	}
	masks := rec.CommandsOf(gpu.OpSetColorMask)
	if len(masks) != 3 || masks[0].Mask != gpu.MaskRed || masks[1].Mask != gpu.MaskGreen || masks[2].Mask != gpu.MaskBlue {
		t.Errorf("masks = %+v", masks)
	}
	for i, c := range rec.CommandsOf(gpu.OpSetUniforms) {
		if c.Uniforms.Mode != gpu.ModeTextLCD || c.Uniforms.Channel != uint32(i) {
			t.Errorf("pass %d uniforms mode %d channel %d", i, c.Uniforms.Mode, c.Uniforms.Channel)
		}
	}
	if stats.Vertices != 12 {
		t.Errorf("Vertices = %d, want 12", stats.Vertices)
	}
}

func TestGrayTextAndBaseline(t *testing.T) {
	glyphs, font := newTestGlyphs(t, text.ModeGray)
	r, _ := newTestRenderer(t, glyphs)
	m, err := glyphs.Metrics(font).Get()
	if err != nil {
		t.Fatal(err)
	}
	_ = r.BeginFrame(200, 100)
	r.SetFont(font)
	r.DrawText("x", Pt(0, 0))
	stats, _ := r.EndFrame()
	if stats.DrawCalls != 1 || stats.MaskChanges != 0 {
		t.Errorf("stats = %+v", stats)
	}
	// The x-height glyph sits on the baseline: its bottom edge is at
	// ascender - 1.
	var maxY float32
	for _, v := range r.Vertices() {
		maxY = max(maxY, v.Y)
	}
	if want := float32(m.Ascender - 1); maxY != want {
		t.Errorf("glyph bottom = %v, want %v", maxY, want)
	}
}

func TestTextWithUnknownFontDrawsNothing(t *testing.T) {
	glyphs, _ := newTestGlyphs(t, text.ModeGray)
	r, _ := newTestRenderer(t, glyphs)
	_ = r.BeginFrame(100, 100)
	r.SetFont(FontInfo{Family: "Nope", Size: 12})
	r.DrawText("abc", Pt(0, 0))
	stats, err := r.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Primitives != 0 {
		t.Errorf("Primitives = %d, want 0", stats.Primitives)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imrender.toml")
	data := `
glyph_cache_max_entries = 100
text_mode = "lcd"
housekeeping = "2s"
lut_edge = 17
dynamic_texture_cache_max = 3

[atlas]
count = 4
size = 512
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GlyphCacheMaxEntries != 100 || cfg.TextMode != text.ModeLCD || cfg.LUTEdge != 17 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Atlas.Count != 4 || cfg.Atlas.Size != 512 || cfg.Atlas.Padding != atlas.DefaultPadding {
		t.Errorf("atlas = %+v", cfg.Atlas)
	}
	if cfg.DynamicTextureCacheMax != 3 || cfg.ColorSpaceCacheMax != DefaultColorSpaceCacheMax {
		t.Errorf("cache limits = %d, %d", cfg.DynamicTextureCacheMax, cfg.ColorSpaceCacheMax)
	}
	if tc := cfg.Text(); tc.MaxGlyphs != 100 || tc.Housekeeping.Seconds() != 2 {
		t.Errorf("text config = %+v", tc)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestNewWithoutDevice(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("New(nil) = %v, want ErrNoDevice", err)
	}
}
