// Package atlas packs small bitmaps (glyphs, thumbnails) into a fixed set of
// square textures so batched drawing rarely switches textures.
//
// Items are keyed by an opaque content id. When every page is full the
// least recently queried item is evicted to make room; its id stops
// resolving but the texture space is kept for reuse.
package atlas

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/imrender/internal/cache"
	"github.com/gogpu/imrender/internal/logging"
)

var (
	// ErrAtlasFull is returned when an item is larger than a page or no
	// resident item is left to evict. Callers fall back to a dedicated
	// texture.
	ErrAtlasFull = errors.New("atlas: texture atlas is full")

	// ErrEmptyItem is returned for a zero-sized bitmap.
	ErrEmptyItem = errors.New("atlas: empty item")
)

// Default atlas settings.
const (
	DefaultCount   = 2
	DefaultSize    = 1024
	DefaultPadding = 1
	MinSize        = 64
)

var logger logging.Holder

// SetLogger sets the package logger.
func SetLogger(l *slog.Logger) { logger.Store(l) }

// Config sizes the atlas.
type Config struct {
	// Count is the maximum number of pages.
	Count int `toml:"count"`
	// Size is the page width and height in pixels.
	Size int `toml:"size"`
	// Padding is the empty border kept right and below each item.
	Padding int `toml:"padding"`
}

// DefaultConfig returns two 1024x1024 pages with 1 px padding.
func DefaultConfig() Config {
	return Config{Count: DefaultCount, Size: DefaultSize, Padding: DefaultPadding}
}

func (c Config) normalize() Config {
	if c.Count <= 0 {
		c.Count = DefaultCount
	}
	if c.Size < MinSize {
		c.Size = MinSize
	}
	if c.Padding < 0 {
		c.Padding = 0
	}
	return c
}

// Storage receives page allocations and pixel uploads.
// The renderer backs it with GPU textures.
type Storage interface {
	CreatePage(index, size int) error
	UploadRegion(index int, r image.Rectangle, img *image.RGBA) error
}

// NullStorage accepts everything and keeps nothing.
type NullStorage struct{}

func (NullStorage) CreatePage(int, int) error                            { return nil }
func (NullStorage) UploadRegion(int, image.Rectangle, *image.RGBA) error { return nil }

// Item is a resident bitmap. Its rectangle is only valid until the item
// is evicted; revalidate with GetItem each frame.
type Item struct {
	ID      uint64
	Texture int
	// Rect is the pixel rectangle without padding.
	Rect           image.Rectangle
	U0, V0, U1, V1 float32
}

type entry struct {
	item Item
	cell image.Rectangle
}

// Allocator owns the atlas pages. It is not safe for concurrent use; the
// render goroutine owns it.
type Allocator struct {
	cfg     Config
	storage Storage
	pages   []*page
	items   *cache.Cache[uint64, *entry]
}

// New creates an allocator. Pages are created on first use.
func New(cfg Config, storage Storage) *Allocator {
	if storage == nil {
		storage = NullStorage{}
	}
	a := &Allocator{
		cfg:     cfg.normalize(),
		storage: storage,
		items:   cache.New[uint64, *entry](0, cache.AccessOrder),
	}
	a.items.OnEvict(func(id uint64, e *entry) {
		a.pages[e.item.Texture].release(e.cell)
		logger.Load().Debug("atlas: evicted item", "id", id, "texture", e.item.Texture)
	})
	return a
}

// Config returns the normalized configuration.
func (a *Allocator) Config() Config { return a.cfg }

// GetItem reports whether id is resident and marks it recently used.
func (a *Allocator) GetItem(id uint64) (Item, bool) {
	e, ok := a.items.Get(id)
	if !ok {
		return Item{}, false
	}
	return e.item, true
}

// AddItem places img under id and uploads its pixels. An id that is
// already resident is returned unchanged.
func (a *Allocator) AddItem(id uint64, img *image.RGBA) (Item, error) {
	if e, ok := a.items.Get(id); ok {
		return e.item, nil
	}
	if img == nil || img.Rect.Empty() {
		return Item{}, ErrEmptyItem
	}
	w := img.Rect.Dx() + a.cfg.Padding
	h := img.Rect.Dy() + a.cfg.Padding
	if w > a.cfg.Size || heightClass(h) > a.cfg.Size {
		return Item{}, fmt.Errorf("%w: %dx%d exceeds page size %d", ErrAtlasFull, img.Rect.Dx(), img.Rect.Dy(), a.cfg.Size)
	}

	for {
		index, cell, ok, err := a.place(w, h)
		if err != nil {
			return Item{}, err
		}
		if ok {
			return a.commit(id, index, cell, img)
		}
		if _, _, evicted := a.items.RemoveOldest(); !evicted {
			return Item{}, ErrAtlasFull
		}
	}
}

// place tries every page, creating new ones up to the configured count.
func (a *Allocator) place(w, h int) (int, image.Rectangle, bool, error) {
	for i, p := range a.pages {
		if cell, ok := p.alloc(w, h); ok {
			return i, cell, true, nil
		}
	}
	if len(a.pages) >= a.cfg.Count {
		return 0, image.Rectangle{}, false, nil
	}
	index := len(a.pages)
	if err := a.storage.CreatePage(index, a.cfg.Size); err != nil {
		return 0, image.Rectangle{}, false, fmt.Errorf("atlas: create page %d: %w", index, err)
	}
	p := newPage(a.cfg.Size)
	a.pages = append(a.pages, p)
	cell, ok := p.alloc(w, h)
	return index, cell, ok, nil
}

func (a *Allocator) commit(id uint64, index int, cell image.Rectangle, img *image.RGBA) (Item, error) {
	r := image.Rect(cell.Min.X, cell.Min.Y, cell.Min.X+img.Rect.Dx(), cell.Min.Y+img.Rect.Dy())
	if err := a.storage.UploadRegion(index, r, img); err != nil {
		a.pages[index].release(cell)
		return Item{}, fmt.Errorf("atlas: upload item %d: %w", id, err)
	}
	size := float32(a.cfg.Size)
	item := Item{
		ID:      id,
		Texture: index,
		Rect:    r,
		U0:      float32(r.Min.X) / size,
		V0:      float32(r.Min.Y) / size,
		U1:      float32(r.Max.X) / size,
		V1:      float32(r.Max.Y) / size,
	}
	a.items.Set(id, &entry{item: item, cell: cell})
	return item, nil
}

// Remove drops id and frees its space.
func (a *Allocator) Remove(id uint64) bool {
	e, ok := a.items.Peek(id)
	if !ok {
		return false
	}
	a.items.Delete(id)
	a.pages[e.item.Texture].release(e.cell)
	return true
}

// Len returns the number of resident items.
func (a *Allocator) Len() int { return a.items.Len() }

// Stats describes atlas occupancy.
type Stats struct {
	Items     int
	Pages     int
	Evictions uint64
	// Used is the fraction of each page covered by items, padding included.
	Used []float64
}

// Stats returns current occupancy.
func (a *Allocator) Stats() Stats {
	cs := a.items.Stats()
	s := Stats{Items: cs.Len, Pages: len(a.pages), Evictions: cs.Evictions}
	area := float64(a.cfg.Size * a.cfg.Size)
	for _, p := range a.pages {
		s.Used = append(s.Used, float64(p.used)/area)
	}
	return s
}
