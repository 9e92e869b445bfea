package text

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/imrender/internal/cache"
)

// ErrServiceClosed resolves requests that were pending at, or submitted
// after, Close.
var ErrServiceClosed = errors.New("text: service closed")

// ErrRequestFailed resolves a request whose processing panicked.
var ErrRequestFailed = errors.New("text: request failed")

// Default service settings.
const (
	DefaultMaxGlyphs    = 4096
	DefaultHousekeeping = 5 * time.Second
)

// Config configures a Service.
type Config struct {
	// FontDir is scanned once at construction. May be empty.
	FontDir string `toml:"font_dir"`
	// MaxGlyphs bounds the glyph cache.
	MaxGlyphs int `toml:"max_glyphs"`
	// Mode selects gray or LCD subpixel bitmaps.
	Mode RenderMode `toml:"mode"`
	// Housekeeping is the idle wake interval used for cache statistics.
	Housekeeping time.Duration `toml:"housekeeping"`
}

// CacheStats reports glyph cache usage.
type CacheStats = cache.Stats

type (
	metricsRequest struct {
		font   FontInfo
		result *Future[Metrics]
	}
	measureRequest struct {
		text   string
		font   FontInfo
		result *Future[Size]
	}
	measureGlyphsRequest struct {
		text   string
		font   FontInfo
		result *Future[[]image.Rectangle]
	}
	linesRequest struct {
		text     string
		maxWidth int
		font     FontInfo
		result   *Future[[]TextLine]
	}
	glyphsRequest struct {
		text   string
		font   FontInfo
		result *Future[[]*Glyph] // nil for CacheGlyphs
	}
)

// queues holds pending requests of every kind.
type queues struct {
	metrics       []metricsRequest
	measure       []measureRequest
	measureGlyphs []measureGlyphsRequest
	lines         []linesRequest
	glyphs        []glyphsRequest
}

func (q *queues) empty() bool {
	return len(q.metrics)+len(q.measure)+len(q.measureGlyphs)+len(q.lines)+len(q.glyphs) == 0
}

// Service resolves text requests on a dedicated worker goroutine.
// All methods are safe for concurrent use.
type Service struct {
	catalog      *Catalog
	glyphs       *cache.Cache[GlyphKey, *Glyph]
	mode         RenderMode
	housekeeping time.Duration

	mu      sync.Mutex
	pending queues
	stopped bool

	wake   chan struct{}
	closed atomic.Bool
	done   chan struct{}

	// nextUID is only touched by the worker.
	nextUID uint64
}

// NewService scans the font directory and starts the worker.
func NewService(cfg Config) *Service {
	if cfg.MaxGlyphs <= 0 {
		cfg.MaxGlyphs = DefaultMaxGlyphs
	}
	if cfg.Housekeeping <= 0 {
		cfg.Housekeeping = DefaultHousekeeping
	}
	s := &Service{
		catalog:      NewCatalog(cfg.FontDir),
		glyphs:       cache.New[GlyphKey, *Glyph](cfg.MaxGlyphs, cache.AccessOrder),
		mode:         cfg.Mode,
		housekeeping: cfg.Housekeeping,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	go s.run()
	return s
}

// Catalog returns the font catalog, for registering in-memory fonts.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Mode returns the bitmap mode glyphs are rendered in.
func (s *Service) Mode() RenderMode { return s.mode }

// Stats returns glyph cache statistics.
func (s *Service) Stats() CacheStats { return s.glyphs.Stats() }

// Metrics resolves the vertical metrics of font. An unknown font yields
// zero metrics.
func (s *Service) Metrics(font FontInfo) *Future[Metrics] {
	f := newFuture[Metrics]()
	s.submit(func(q *queues) {
		q.metrics = append(q.metrics, metricsRequest{font, f})
	}, func() { f.resolve(Metrics{}, ErrServiceClosed) })
	return f
}

// Measure resolves the unwrapped size of text.
func (s *Service) Measure(text string, font FontInfo) *Future[Size] {
	f := newFuture[Size]()
	s.submit(func(q *queues) {
		q.measure = append(q.measure, measureRequest{text, font, f})
	}, func() { f.resolve(Size{}, ErrServiceClosed) })
	return f
}

// MeasureGlyphs resolves the advance box of each glyph of text, laid out
// without wrapping. Newlines produce no box.
func (s *Service) MeasureGlyphs(text string, font FontInfo) *Future[[]image.Rectangle] {
	f := newFuture[[]image.Rectangle]()
	s.submit(func(q *queues) {
		q.measureGlyphs = append(q.measureGlyphs, measureGlyphsRequest{text, font, f})
	}, func() { f.resolve(nil, ErrServiceClosed) })
	return f
}

// TextLines wraps text to maxWidth pixels.
func (s *Service) TextLines(text string, maxWidth int, font FontInfo) *Future[[]TextLine] {
	f := newFuture[[]TextLine]()
	s.submit(func(q *queues) {
		q.lines = append(q.lines, linesRequest{text, maxWidth, font, f})
	}, func() { f.resolve(nil, ErrServiceClosed) })
	return f
}

// Glyphs resolves one glyph per rune of text, in order.
func (s *Service) Glyphs(text string, font FontInfo) *Future[[]*Glyph] {
	f := newFuture[[]*Glyph]()
	s.submit(func(q *queues) {
		q.glyphs = append(q.glyphs, glyphsRequest{text, font, f})
	}, func() { f.resolve(nil, ErrServiceClosed) })
	return f
}

// CacheGlyphs rasterizes the glyphs of text in the background.
func (s *Service) CacheGlyphs(text string, font FontInfo) {
	s.submit(func(q *queues) {
		q.glyphs = append(q.glyphs, glyphsRequest{text: text, font: font})
	}, func() {})
}

// submit queues a request, or rejects it if the worker has stopped.
func (s *Service) submit(push func(*queues), reject func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		reject()
		return
	}
	push(&s.pending)
	s.mu.Unlock()
	s.signal()
}

func (s *Service) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close stops the worker. Requests still queued resolve with
// ErrServiceClosed. Close is idempotent.
func (s *Service) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.signal()
	}
	<-s.done
	return nil
}

func (s *Service) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.housekeeping)
	defer ticker.Stop()

	for {
		select {
		case <-s.wake:
		case <-ticker.C:
			s.logStats()
		}
		if s.closed.Load() {
			s.mu.Lock()
			s.stopped = true
			batch := s.pending
			s.pending = queues{}
			s.mu.Unlock()
			cancel(&batch)
			return
		}

		s.mu.Lock()
		batch := s.pending
		s.pending = queues{}
		s.mu.Unlock()
		if !batch.empty() {
			s.process(&batch)
		}
	}
}

func (s *Service) logStats() {
	st := s.glyphs.Stats()
	logger.Load().Debug("text: glyph cache",
		"len", st.Len, "capacity", st.Capacity,
		"used_percent", st.UsedPercent(), "hit_rate", st.HitRate(),
		"evictions", st.Evictions)
}

func cancel(q *queues) {
	for _, r := range q.metrics {
		r.result.resolve(Metrics{}, ErrServiceClosed)
	}
	for _, r := range q.measure {
		r.result.resolve(Size{}, ErrServiceClosed)
	}
	for _, r := range q.measureGlyphs {
		r.result.resolve(nil, ErrServiceClosed)
	}
	for _, r := range q.lines {
		r.result.resolve(nil, ErrServiceClosed)
	}
	for _, r := range q.glyphs {
		if r.result != nil {
			r.result.resolve(nil, ErrServiceClosed)
		}
	}
}

// process handles one batch in fixed order.
func (s *Service) process(q *queues) {
	for _, r := range q.metrics {
		serve(r.result, "metrics", func() (Metrics, error) {
			fc, ok := s.lookup(r.font)
			if !ok {
				return Metrics{}, nil
			}
			m, err := fc.metrics(r.font.Size)
			if err != nil {
				logger.Load().Warn("text: metrics unavailable", "font", r.font, "err", err)
				return Metrics{}, nil
			}
			return m, nil
		})
	}
	for _, r := range q.measure {
		serve(r.result, "measure", func() (Size, error) {
			l, m := s.layout(r.text, r.font, 0)
			return l.size(m.LineHeight), nil
		})
	}
	for _, r := range q.measureGlyphs {
		serve(r.result, "measureGlyphs", func() ([]image.Rectangle, error) {
			l, m := s.layout(r.text, r.font, 0)
			return l.cells(m.LineHeight), nil
		})
	}
	for _, r := range q.lines {
		serve(r.result, "textLines", func() ([]TextLine, error) {
			l, m := s.layout(r.text, r.font, fixed.I(r.maxWidth))
			return l.textLines(m.LineHeight), nil
		})
	}
	for _, r := range q.glyphs {
		if r.result == nil {
			prewarm(r.text, func() { s.resolveGlyphs(r.text, r.font) })
			continue
		}
		serve(r.result, "glyphs", func() ([]*Glyph, error) {
			return s.resolveGlyphs(r.text, r.font), nil
		})
	}
}

// serve runs fn and resolves f with its result. A panic resolves f with
// ErrRequestFailed so the caller is never left waiting.
func serve[T any](f *Future[T], kind string, fn func() (T, error)) {
	defer func() {
		if p := recover(); p != nil {
			logger.Load().Error("text: request panicked", "kind", kind, "panic", p)
			var zero T
			f.resolve(zero, fmt.Errorf("%w: %s: %v", ErrRequestFailed, kind, p))
		}
	}()
	f.resolve(fn())
}

// prewarm runs fn for a CacheGlyphs request. There is no future to fail,
// so a panic is only logged.
func prewarm(text string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			logger.Load().Error("text: prewarm panicked", "text", text, "panic", p)
		}
	}()
	fn()
}

func (s *Service) lookup(info FontInfo) (*face, bool) {
	if info.Size <= 0 {
		logger.Load().Warn("text: invalid font size", "font", info)
		return nil, false
	}
	fc, ok := s.catalog.resolve(info)
	if !ok {
		logger.Load().Warn("text: font not found", "family", info.Family, "face", info.Face)
	}
	return fc, ok
}

// glyph returns the cached glyph for r, rasterizing it on a miss.
func (s *Service) glyph(fc *face, r rune, size int) *Glyph {
	key := GlyphKey{Codepoint: r, Family: fc.family, Face: fc.id, Size: size}
	return s.glyphs.GetOrCreate(key, func() *Glyph {
		g, err := fc.rasterize(r, size, s.mode)
		if err != nil {
			logger.Load().Warn("text: glyph not renderable", "rune", string(r), "size", size, "err", err)
		}
		if g.Bitmap != nil {
			s.nextUID++
			g.UID = s.nextUID
		}
		return g
	})
}

func (s *Service) resolveGlyphs(text string, info FontInfo) []*Glyph {
	runes := []rune(sanitize(text))
	out := make([]*Glyph, len(runes))
	fc, ok := s.lookup(info)
	for i, r := range runes {
		if !ok {
			out[i] = &Glyph{Key: GlyphKey{Codepoint: r, Size: info.Size}}
			continue
		}
		out[i] = s.glyph(fc, r, info.Size)
	}
	return out
}

// layout places text for the font. Unknown fonts lay out with zero
// advances and zero line height.
func (s *Service) layout(text string, info FontInfo, maxWidth fixed.Int26_6) (layout, Metrics) {
	runes := []rune(sanitize(text))
	fc, ok := s.lookup(info)
	if !ok {
		return layoutText(runes, func(rune) *Glyph { return &Glyph{} }, maxWidth), Metrics{}
	}
	m, err := fc.metrics(info.Size)
	if err != nil {
		logger.Load().Warn("text: metrics unavailable", "font", info, "err", err)
	}
	return layoutText(runes, func(r rune) *Glyph { return s.glyph(fc, r, info.Size) }, maxWidth), m
}
