package imrender

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/imrender/atlas"
	"github.com/gogpu/imrender/color"
	"github.com/gogpu/imrender/text"
)

// Default cache limits.
const (
	DefaultDynamicTextureCacheMax = 16
	DefaultColorSpaceCacheMax     = 8
	DefaultMaxAtlasItem           = 256
)

// Config holds the tunable limits of a Renderer and its glyph service.
// The zero value of any field selects its default.
type Config struct {
	// GlyphCacheMaxEntries bounds the glyph cache of the text service.
	GlyphCacheMaxEntries int `toml:"glyph_cache_max_entries"`
	// FontDir is scanned once when the text service starts.
	FontDir string `toml:"font_dir"`
	// TextMode selects gray or LCD subpixel text.
	TextMode text.RenderMode `toml:"text_mode"`
	// Housekeeping is the idle wake interval of the text service.
	Housekeeping time.Duration `toml:"housekeeping"`

	Atlas atlas.Config `toml:"atlas"`
	// MaxAtlasItem is the largest image side placed in the atlas. Larger
	// images get a dedicated texture.
	MaxAtlasItem int `toml:"max_atlas_item"`

	// DynamicTextureCacheMax is the number of dedicated image textures
	// kept between frames.
	DynamicTextureCacheMax int `toml:"dynamic_texture_cache_max"`
	// ColorSpaceCacheMax is the number of color-space LUTs kept between
	// frames.
	ColorSpaceCacheMax int `toml:"color_space_cache_max"`
	// LUTEdge is the color-space LUT size per axis.
	LUTEdge int `toml:"lut_edge"`

	// ClearColor is the straight RGBA color the target is cleared to.
	ClearColor [4]float32 `toml:"clear_color"`
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		GlyphCacheMaxEntries:   text.DefaultMaxGlyphs,
		TextMode:               text.ModeGray,
		Housekeeping:           text.DefaultHousekeeping,
		Atlas:                  atlas.DefaultConfig(),
		MaxAtlasItem:           DefaultMaxAtlasItem,
		DynamicTextureCacheMax: DefaultDynamicTextureCacheMax,
		ColorSpaceCacheMax:     DefaultColorSpaceCacheMax,
		LUTEdge:                color.DefaultLUTEdge,
		ClearColor:             [4]float32{0, 0, 0, 1},
	}
}

func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.GlyphCacheMaxEntries <= 0 {
		c.GlyphCacheMaxEntries = d.GlyphCacheMaxEntries
	}
	if c.Housekeeping <= 0 {
		c.Housekeeping = d.Housekeeping
	}
	if c.MaxAtlasItem <= 0 {
		c.MaxAtlasItem = d.MaxAtlasItem
	}
	if c.DynamicTextureCacheMax <= 0 {
		c.DynamicTextureCacheMax = d.DynamicTextureCacheMax
	}
	if c.ColorSpaceCacheMax <= 0 {
		c.ColorSpaceCacheMax = d.ColorSpaceCacheMax
	}
	if c.LUTEdge < 2 {
		c.LUTEdge = d.LUTEdge
	}
	return c
}

// Text returns the glyph service configuration.
func (c Config) Text() text.Config {
	c = c.normalize()
	return text.Config{
		FontDir:      c.FontDir,
		MaxGlyphs:    c.GlyphCacheMaxEntries,
		Mode:         c.TextMode,
		Housekeeping: c.Housekeeping,
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Unknown keys are
// logged and ignored.
//
// Example file:
//
//	glyph_cache_max_entries = 8192
//	font_dir = "/usr/share/fonts"
//	text_mode = "lcd"
//	housekeeping = "10s"
//	lut_edge = 33
//
//	[atlas]
//	count = 4
//	size = 2048
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("imrender: load config %s: %w", path, err)
	}
	for _, k := range md.Undecoded() {
		Logger().Warn("imrender: unknown config key", "path", path, "key", k.String())
	}
	return cfg.normalize(), nil
}
