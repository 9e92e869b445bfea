package imrender

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/imrender/atlas"
	"github.com/gogpu/imrender/color"
	"github.com/gogpu/imrender/gpu"
	"github.com/gogpu/imrender/internal/cache"
	"github.com/gogpu/imrender/text"
)

var (
	// ErrNotRecording is returned by EndFrame without a matching BeginFrame.
	ErrNotRecording = errors.New("imrender: no frame is being recorded")

	// ErrFrameInProgress is returned by BeginFrame while a frame is open.
	ErrFrameInProgress = errors.New("imrender: frame already in progress")

	// ErrNoDevice is returned by New without a device.
	ErrNoDevice = errors.New("imrender: no device")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("imrender: renderer closed")
)

// BlendMode selects how drawn pixels combine with the target.
type BlendMode = gpu.BlendMode

// Blend modes.
const (
	BlendNormal   = gpu.BlendNormal
	BlendAdditive = gpu.BlendAdditive
	BlendMultiply = gpu.BlendMultiply
	BlendReplace  = gpu.BlendReplace
)

// Vertex is the encoded vertex layout shared by every primitive.
type Vertex = gpu.Vertex

// FontInfo selects a font family, face and pixel size.
type FontInfo = text.FontInfo

type phase uint8

const (
	phaseIdle phase = iota
	phaseRecording
	phaseFlushing
)

// state is the implicit drawing state. Save and Restore copy it whole.
type state struct {
	color     RGBA
	blend     BlendMode
	transform Matrix
	clip      image.Rectangle
	clipDepth int
	font      FontInfo
	lineWidth float64
	textMode  text.RenderMode
	settings  color.Settings
	exposure  color.Exposure
	imageOpts ImageOptions
	spaceIn   string
	spaceOut  string
}

// FrameStats summarizes one EndFrame.
type FrameStats struct {
	DrawCalls      int
	BlendChanges   int
	MaskChanges    int
	ScissorChanges int
	TextureBinds   int
	LUTBinds       int
	Vertices       int
	Primitives     int
	// Culled counts shapes dropped because they lay outside the clip.
	Culled int
}

// Renderer records one frame of draw calls and replays them on a device.
type Renderer struct {
	dev    gpu.Device
	glyphs *text.Service
	cfg    Config

	atlas   *atlas.Allocator
	pages   *atlasStorage
	dynamic *cache.Cache[uint64, gpu.TextureID]
	spaces  *color.SpaceCache
	luts    map[int]gpu.TextureID
	white   gpu.TextureID

	compiled   bool
	programGen uint64

	phase     phase
	closed    bool
	viewport  image.Point
	cur       state
	saved     []state
	clipStack []image.Rectangle

	vertices []Vertex
	encoded  []byte
	prims    []primitive
	culled   int
}

// New creates a renderer drawing on dev. glyphs may be nil, in which case
// DrawText draws nothing. The renderer does not close glyphs.
func New(dev gpu.Device, glyphs *text.Service, opts ...Option) (*Renderer, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.normalize()

	r := &Renderer{
		dev:     dev,
		glyphs:  glyphs,
		cfg:     cfg,
		pages:   &atlasStorage{dev: dev},
		dynamic: cache.New[uint64, gpu.TextureID](0, cache.InsertionOrder),
		spaces:  color.NewSpaceCache(cfg.LUTEdge),
		luts:    make(map[int]gpu.TextureID),
	}
	r.atlas = atlas.New(cfg.Atlas, r.pages)
	r.dynamic.OnEvict(func(uid uint64, id gpu.TextureID) {
		dev.DestroyTexture(id)
		Logger().Debug("imrender: dynamic texture evicted", "uid", uid)
	})
	r.spaces.OnEvict(r.releaseLUT)
	if err := r.createWhite(); err != nil {
		return nil, err
	}
	r.cur = r.defaultState()
	return r, nil
}

func (r *Renderer) defaultState() state {
	mode := r.cfg.TextMode
	if r.glyphs != nil {
		mode = r.glyphs.Mode()
	}
	return state{
		color:     White,
		blend:     BlendNormal,
		transform: Identity(),
		lineWidth: 1,
		textMode:  mode,
		settings:  color.DefaultSettings(),
		exposure:  color.DefaultExposure(),
	}
}

// Config returns the normalized configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Glyphs returns the glyph service, which may be nil.
func (r *Renderer) Glyphs() *text.Service { return r.glyphs }

// AtlasStats returns atlas occupancy.
func (r *Renderer) AtlasStats() atlas.Stats { return r.atlas.Stats() }

// ColorSpaces returns the number of cached color-space LUTs.
func (r *Renderer) ColorSpaces() int { return r.spaces.Len() }

// DynamicTextures returns the number of cached dedicated image textures.
func (r *Renderer) DynamicTextures() int { return r.dynamic.Len() }

// BeginFrame starts recording a frame of the given size. The clip is reset
// to the whole viewport; other drawing state carries over from the
// previous frame.
func (r *Renderer) BeginFrame(width, height int) error {
	switch {
	case r.closed:
		return ErrClosed
	case r.phase != phaseIdle:
		return ErrFrameInProgress
	case width <= 0 || height <= 0:
		return fmt.Errorf("imrender: invalid frame size %dx%d", width, height)
	}
	r.phase = phaseRecording
	r.viewport = image.Pt(width, height)
	r.saved = r.saved[:0]
	r.clipStack = r.clipStack[:0]
	r.cur.clip = image.Rect(0, 0, width, height)
	r.cur.clipDepth = 0
	r.vertices = r.vertices[:0]
	r.prims = r.prims[:0]
	r.culled = 0
	return nil
}

// Vertices returns the vertices recorded for the current frame. The slice
// is valid until the next BeginFrame.
func (r *Renderer) Vertices() []Vertex { return r.vertices }

// recording reports whether draws are accepted, logging the ones that
// are not.
func (r *Renderer) recording(op string) bool {
	if r.phase == phaseRecording {
		return true
	}
	Logger().Debug("imrender: draw outside frame ignored", "op", op)
	return false
}

// Close releases every texture owned by the renderer.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.dynamic.Trim(0)
	r.spaces.Trim(0)
	r.pages.destroy()
	r.dev.DestroyTexture(r.white)
	return nil
}

// SetColor sets the color of solid shapes, text and shadows.
func (r *Renderer) SetColor(c RGBA) { r.cur.color = c }

// Color returns the current color.
func (r *Renderer) Color() RGBA { return r.cur.color }

// SetBlendMode sets the blend mode of following draws.
func (r *Renderer) SetBlendMode(b BlendMode) { r.cur.blend = b }

// SetTransform replaces the current transform.
func (r *Renderer) SetTransform(m Matrix) { r.cur.transform = m }

// Transform returns the current transform.
func (r *Renderer) Transform() Matrix { return r.cur.transform }

// Translate prepends a translation to the current transform.
func (r *Renderer) Translate(x, y float64) {
	r.cur.transform = r.cur.transform.Multiply(Translate(x, y))
}

// Scale prepends a scale to the current transform.
func (r *Renderer) Scale(x, y float64) {
	r.cur.transform = r.cur.transform.Multiply(Scale(x, y))
}

// Rotate prepends a rotation to the current transform.
func (r *Renderer) Rotate(angle float64) {
	r.cur.transform = r.cur.transform.Multiply(Rotate(angle))
}

// SetClip sets the clip to the device bounds of rect under the current
// transform, limited to the viewport.
func (r *Renderer) SetClip(rect Rect) {
	r.cur.clip = r.deviceBounds(rect).Intersect(r.viewportRect())
}

// ResetClip sets the clip to the whole viewport.
func (r *Renderer) ResetClip() { r.cur.clip = r.viewportRect() }

// Clip returns the current clip in device pixels.
func (r *Renderer) Clip() image.Rectangle { return r.cur.clip }

// PushClip saves the clip and intersects it with rect.
func (r *Renderer) PushClip(rect Rect) {
	r.clipStack = append(r.clipStack, r.cur.clip)
	r.cur.clip = r.cur.clip.Intersect(r.deviceBounds(rect))
}

// PopClip restores the clip saved by the matching PushClip.
func (r *Renderer) PopClip() {
	if len(r.clipStack) == 0 {
		Logger().Debug("imrender: PopClip without PushClip")
		return
	}
	r.cur.clip = r.clipStack[len(r.clipStack)-1]
	r.clipStack = r.clipStack[:len(r.clipStack)-1]
}

// SetFont sets the font of following DrawText calls.
func (r *Renderer) SetFont(f FontInfo) { r.cur.font = f }

// Font returns the current font.
func (r *Renderer) Font() FontInfo { return r.cur.font }

// SetLineWidth sets the polyline width. Widths <= 0 draw hairlines.
func (r *Renderer) SetLineWidth(w float64) { r.cur.lineWidth = w }

// SetTextMode selects gray or LCD subpixel text.
func (r *Renderer) SetTextMode(m text.RenderMode) { r.cur.textMode = m }

// SetColorSettings sets brightness, contrast and saturation for images.
func (r *Renderer) SetColorSettings(s color.Settings) { r.cur.settings = s }

// SetExposure sets image exposure and tone mapping.
func (r *Renderer) SetExposure(e color.Exposure) { r.cur.exposure = e }

// SetImageOptions sets channel display, alpha handling, levels, soft
// clip, inversion and cache placement for following DrawImage calls.
func (r *Renderer) SetImageOptions(o ImageOptions) { r.cur.imageOpts = o }

// ImageOptions returns the current image options.
func (r *Renderer) ImageOptions() ImageOptions { return r.cur.imageOpts }

// SetColorSpace sets the conversion applied to images. Empty names or
// equal spaces disable conversion.
func (r *Renderer) SetColorSpace(in, out string) {
	r.cur.spaceIn, r.cur.spaceOut = in, out
}

// Save pushes the drawing state, including the clip stack depth.
func (r *Renderer) Save() {
	s := r.cur
	s.clipDepth = len(r.clipStack)
	r.saved = append(r.saved, s)
}

// Restore pops the state pushed by the matching Save. Clips pushed since
// then are dropped.
func (r *Renderer) Restore() {
	if len(r.saved) == 0 {
		return
	}
	s := r.saved[len(r.saved)-1]
	r.saved = r.saved[:len(r.saved)-1]
	if s.clipDepth < len(r.clipStack) {
		r.clipStack = r.clipStack[:s.clipDepth]
	}
	r.cur = s
}

func (r *Renderer) viewportRect() image.Rectangle {
	return image.Rectangle{Max: r.viewport}
}

// deviceBounds returns the pixel bounds of rect under the current
// transform.
func (r *Renderer) deviceBounds(rect Rect) image.Rectangle {
	return r.cur.transform.DeviceBounds(rect)
}
