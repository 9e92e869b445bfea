package imrender

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/imrender/atlas"
	"github.com/gogpu/imrender/color"
	"github.com/gogpu/imrender/gpu"
)

// glyphBit separates glyph bitmaps from images in the atlas id space.
const glyphBit = 1 << 63

// Image is a decoded bitmap. UID identifies its content: two images with
// the same UID must have the same pixels. UIDs use the low 63 bits.
type Image struct {
	UID  uint64
	RGBA *image.RGBA
}

func (img *Image) empty() bool {
	return img == nil || img.RGBA == nil || img.RGBA.Rect.Empty()
}

// ImageChannel selects which channels of an image are displayed.
type ImageChannel uint8

// Channel display modes. A single color channel is shown as gray.
const (
	ChannelAll ImageChannel = iota
	ChannelRed
	ChannelGreen
	ChannelBlue
	ChannelAlpha
)

// AlphaBlend says how an image stores alpha.
type AlphaBlend uint8

const (
	// AlphaPremultiplied is the image.RGBA convention.
	AlphaPremultiplied AlphaBlend = iota
	// AlphaStraight images store color not multiplied by alpha.
	AlphaStraight
	// AlphaNone ignores alpha and overwrites the target.
	AlphaNone
)

// ImageCache selects where image pixels are kept.
type ImageCache uint8

const (
	// CacheAtlas packs images up to MaxAtlasItem into the shared atlas and
	// falls back to a dedicated texture.
	CacheAtlas ImageCache = iota
	// CacheDynamic always gives the image its own texture.
	CacheDynamic
)

// ImageOptions are display settings for DrawImage. The zero value shows
// the image unchanged.
type ImageOptions struct {
	Channel ImageChannel
	Alpha   AlphaBlend
	Invert  bool
	Levels  color.Levels
	// SoftClip rolls off values above 1-SoftClip. 0 disables it.
	SoftClip float32
	Cache    ImageCache
}

func glyphAtlasID(uid uint64) uint64 { return uid | glyphBit }
func imageAtlasID(uid uint64) uint64 { return uid &^ glyphBit }

// atlasStorage backs atlas pages with device textures.
type atlasStorage struct {
	dev   gpu.Device
	pages []gpu.TextureID
}

func (s *atlasStorage) CreatePage(index, size int) error {
	id, err := s.dev.CreateTexture(gpu.TextureDesc{
		Label:  fmt.Sprintf("imrender_atlas_%d", index),
		Width:  size,
		Height: size,
		Format: gpu.FormatRGBA8,
	})
	if err != nil {
		return err
	}
	s.pages = append(s.pages, id)
	return nil
}

func (s *atlasStorage) UploadRegion(index int, r image.Rectangle, img *image.RGBA) error {
	return s.dev.WriteTexture(s.pages[index], gpu.RegionOf(r), packedPixels(img))
}

func (s *atlasStorage) destroy() {
	for _, id := range s.pages {
		s.dev.DestroyTexture(id)
	}
	s.pages = nil
}

// packedPixels returns the pixels of img without row padding.
func packedPixels(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	row := w * 4
	start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y)
	if img.Stride == row {
		return img.Pix[start : start+row*h]
	}
	out := make([]byte, 0, row*h)
	for y := range h {
		o := start + y*img.Stride
		out = append(out, img.Pix[o:o+row]...)
	}
	return out
}

// texSource is where an image's pixels live for this frame.
type texSource struct {
	texture        gpu.TextureID
	u0, v0, u1, v1 float32
}

// lerp maps a 0..1 coordinate into the source rectangle.
func (s texSource) lerp(u, v float64) (float32, float32) {
	return s.u0 + (s.u1-s.u0)*float32(u), s.v0 + (s.v1-s.v0)*float32(v)
}

// imageTexture places img in the atlas when the cache mode allows it and
// it is small enough, otherwise in the dynamic texture cache.
func (r *Renderer) imageTexture(img *Image, mode ImageCache) (texSource, error) {
	b := img.RGBA.Rect
	if mode == CacheAtlas && b.Dx() <= r.cfg.MaxAtlasItem && b.Dy() <= r.cfg.MaxAtlasItem {
		item, err := r.atlas.AddItem(imageAtlasID(img.UID), img.RGBA)
		switch {
		case err == nil:
			return texSource{r.pages.pages[item.Texture], item.U0, item.V0, item.U1, item.V1}, nil
		case !errors.Is(err, atlas.ErrAtlasFull):
			return texSource{}, err
		}
	}
	if id, ok := r.dynamic.Get(img.UID); ok {
		return texSource{id, 0, 0, 1, 1}, nil
	}
	id, err := r.dev.CreateTexture(gpu.TextureDesc{
		Label:  fmt.Sprintf("imrender_image_%d", img.UID),
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: gpu.FormatRGBA8,
	})
	if err != nil {
		return texSource{}, err
	}
	if err := r.dev.WriteTexture(id, gpu.Region{Width: b.Dx(), Height: b.Dy(), Depth: 1}, packedPixels(img.RGBA)); err != nil {
		r.dev.DestroyTexture(id)
		return texSource{}, err
	}
	r.dynamic.Set(img.UID, id)
	return texSource{id, 0, 0, 1, 1}, nil
}

// lutTexture returns the texture holding color-space LUT id, uploading it
// on first use. Id 0 and evicted ids yield 0.
func (r *Renderer) lutTexture(id int) (gpu.TextureID, error) {
	if id == 0 {
		return 0, nil
	}
	if t, ok := r.luts[id]; ok {
		return t, nil
	}
	d, ok := r.spaces.Data(id)
	if !ok {
		return 0, nil
	}
	t, err := r.dev.CreateTexture(gpu.TextureDesc{
		Label:  fmt.Sprintf("imrender_lut_%s_%s", d.In, d.Out),
		Width:  d.Edge,
		Height: d.Edge,
		Depth:  d.Edge,
		Format: gpu.FormatRGBA16,
	})
	if err != nil {
		return 0, err
	}
	if err := r.dev.WriteTexture(t, gpu.Region{Width: d.Edge, Height: d.Edge, Depth: d.Edge}, lutBytes(d)); err != nil {
		r.dev.DestroyTexture(t)
		return 0, err
	}
	r.luts[id] = t
	return t, nil
}

func (r *Renderer) releaseLUT(d *color.SpaceData) {
	if t, ok := r.luts[d.ID]; ok {
		r.dev.DestroyTexture(t)
		delete(r.luts, d.ID)
	}
}

func lutBytes(d *color.SpaceData) []byte {
	out := make([]byte, 0, len(d.LUT)*2)
	for _, v := range d.LUT {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

// createWhite creates the 1x1 texture bound for untextured primitives.
func (r *Renderer) createWhite() error {
	id, err := r.dev.CreateTexture(gpu.TextureDesc{Label: "imrender_white", Width: 1, Height: 1, Format: gpu.FormatRGBA8})
	if err != nil {
		return fmt.Errorf("imrender: create white texture: %w", err)
	}
	if err := r.dev.WriteTexture(id, gpu.Region{Width: 1, Height: 1, Depth: 1}, []byte{255, 255, 255, 255}); err != nil {
		r.dev.DestroyTexture(id)
		return fmt.Errorf("imrender: upload white texture: %w", err)
	}
	r.white = id
	return nil
}
