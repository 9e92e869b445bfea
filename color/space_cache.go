package color

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/imrender/internal/cache"
)

// SpaceData is one cached color-space conversion.
type SpaceData struct {
	// ID selects the conversion in the shader. IDs start at 1.
	ID int
	// In and Out are the canonical space names.
	In, Out string
	// Edge is the LUT size per axis.
	Edge int
	// LUT holds RGBA16 texels, see BuildLUT.
	LUT []uint16
}

type spacePair struct{ in, out string }

// SpaceCache builds color-space LUTs on demand and assigns them shader ids.
// Entries are trimmed oldest-inserted first. Every insert or eviction
// bumps Generation, since the shader source lists all cached conversions.
//
// SpaceCache is owned by the render goroutine and is not safe for
// concurrent use.
type SpaceCache struct {
	edge       int
	nextID     int
	generation uint64
	entries    *cache.Cache[spacePair, *SpaceData]
	byID       map[int]*SpaceData
	failed     map[spacePair]struct{}
	onEvict    func(*SpaceData)
}

// NewSpaceCache creates an empty cache producing LUTs with the given edge.
func NewSpaceCache(edge int) *SpaceCache {
	if edge <= 0 {
		edge = DefaultLUTEdge
	}
	c := &SpaceCache{
		edge:    edge,
		entries: cache.New[spacePair, *SpaceData](0, cache.InsertionOrder),
		byID:    make(map[int]*SpaceData),
		failed:  make(map[spacePair]struct{}),
	}
	c.entries.OnEvict(func(_ spacePair, d *SpaceData) {
		delete(c.byID, d.ID)
		c.generation++
		if c.onEvict != nil {
			c.onEvict(d)
		}
	})
	return c
}

// OnEvict registers a callback run for every trimmed entry, typically to
// release its GPU texture.
func (c *SpaceCache) OnEvict(fn func(*SpaceData)) { c.onEvict = fn }

// Get returns the shader id converting in to out, building it on first use.
// Identical spaces and empty names need no conversion and return 0.
// Unknown names are logged once and also return 0.
func (c *SpaceCache) Get(in, out string) int {
	if in == "" || out == "" {
		return 0
	}
	src, err := Lookup(in)
	if err != nil {
		c.fail(spacePair{in, out}, err)
		return 0
	}
	dst, err := Lookup(out)
	if err != nil {
		c.fail(spacePair{in, out}, err)
		return 0
	}
	if src.Name == dst.Name {
		return 0
	}
	key := spacePair{src.Name, dst.Name}
	if d, ok := c.entries.Get(key); ok {
		return d.ID
	}

	c.nextID++
	d := &SpaceData{
		ID:   c.nextID,
		In:   src.Name,
		Out:  dst.Name,
		Edge: c.edge,
		LUT:  BuildLUT(src, dst, c.edge),
	}
	c.entries.Set(key, d)
	c.byID[d.ID] = d
	c.generation++
	logger.Load().Debug("color: built LUT", "id", d.ID, "in", d.In, "out", d.Out, "edge", d.Edge)
	return d.ID
}

func (c *SpaceCache) fail(key spacePair, err error) {
	if _, seen := c.failed[key]; seen {
		return
	}
	c.failed[key] = struct{}{}
	logger.Load().Warn("color: color space unavailable, drawing without conversion",
		"in", key.in, "out", key.out, "err", err)
}

// Data returns the entry for id, if still cached.
func (c *SpaceCache) Data(id int) (*SpaceData, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Entries returns the cached entries ordered by id.
func (c *SpaceCache) Entries() []*SpaceData {
	out := make([]*SpaceData, 0, len(c.byID))
	for _, d := range c.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of cached conversions.
func (c *SpaceCache) Len() int { return c.entries.Len() }

// Generation changes whenever the set of cached conversions changes.
func (c *SpaceCache) Generation() uint64 { return c.generation }

// Trim evicts the oldest entries until at most max remain.
func (c *SpaceCache) Trim(max int) int { return c.entries.Trim(max) }

// ShaderSource returns WGSL defining one function per cached conversion
// and an apply_color_space dispatcher. The functions sample color_lut,
// which the caller binds to the LUT of the primitive being drawn.
func (c *SpaceCache) ShaderSource() string {
	var sb strings.Builder
	entries := c.Entries()
	for _, d := range entries {
		scale := float64(d.Edge-1) / float64(d.Edge)
		offset := 0.5 / float64(d.Edge)
		fmt.Fprintf(&sb, "// %s -> %s\n", d.In, d.Out)
		fmt.Fprintf(&sb, "fn cs_%d(c: vec3<f32>) -> vec3<f32> {\n", d.ID)
		fmt.Fprintf(&sb, "    let uvw = clamp(c, vec3<f32>(0.0), vec3<f32>(1.0)) * %.8f + %.8f;\n", scale, offset)
		sb.WriteString("    return textureSampleLevel(color_lut, lut_sampler, uvw, 0.0).rgb;\n")
		sb.WriteString("}\n\n")
	}
	sb.WriteString("fn apply_color_space(id: u32, c: vec3<f32>) -> vec3<f32> {\n")
	sb.WriteString("    switch id {\n")
	for _, d := range entries {
		fmt.Fprintf(&sb, "        case %du: { return cs_%d(c); }\n", d.ID, d.ID)
	}
	sb.WriteString("        default: { return c; }\n")
	sb.WriteString("    }\n}\n")
	return sb.String()
}
