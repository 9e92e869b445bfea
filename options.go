package imrender

import "github.com/gogpu/imrender/atlas"

// Option configures a Renderer during creation.
// Use functional options to customize Renderer behavior.
//
// Example:
//
//	r, err := imrender.New(dev, glyphs,
//	    imrender.WithAtlas(atlas.Config{Count: 4, Size: 2048}),
//	    imrender.WithColorSpaceCacheMax(4),
//	)
type Option func(*Config)

// WithConfig replaces the whole configuration, typically one returned by
// LoadConfig. Options after it still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithAtlas sets the atlas page count, size and padding.
func WithAtlas(cfg atlas.Config) Option {
	return func(c *Config) {
		c.Atlas = cfg
	}
}

// WithMaxAtlasItem sets the largest image side placed in the atlas.
func WithMaxAtlasItem(n int) Option {
	return func(c *Config) {
		c.MaxAtlasItem = n
	}
}

// WithDynamicTextureCacheMax sets how many dedicated image textures
// survive the end-of-frame trim.
func WithDynamicTextureCacheMax(n int) Option {
	return func(c *Config) {
		c.DynamicTextureCacheMax = n
	}
}

// WithColorSpaceCacheMax sets how many color-space LUTs survive the
// end-of-frame trim.
func WithColorSpaceCacheMax(n int) Option {
	return func(c *Config) {
		c.ColorSpaceCacheMax = n
	}
}

// WithLUTEdge sets the color-space LUT size per axis.
func WithLUTEdge(n int) Option {
	return func(c *Config) {
		c.LUTEdge = n
	}
}

// WithClearColor sets the color the target is cleared to at BeginFrame.
func WithClearColor(col RGBA) Option {
	return func(c *Config) {
		c.ClearColor = [4]float32{col.R, col.G, col.B, col.A}
	}
}
