package color

import (
	"errors"
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
		err  error
	}{
		{"sRGB", "srgb", nil},
		{"Display P3", "display-p3", nil},
		{"adobe_rgb", "adobe-rgb", nil},
		{"prophoto", "", ErrUnknownColorSpace},
	}
	for _, tt := range tests {
		s, err := Lookup(tt.name)
		if !errors.Is(err, tt.err) {
			t.Errorf("Lookup(%q) err = %v, want %v", tt.name, err, tt.err)
			continue
		}
		if s.Name != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.name, s.Name, tt.want)
		}
	}
}

func TestConverterSameSpaceIsIdentity(t *testing.T) {
	s, _ := Lookup("srgb")
	c := NewConverter(s, s)
	r, g, b := c.Convert(0.2, 0.5, 0.9)
	if !near(r, 0.2, 1e-6) || !near(g, 0.5, 1e-6) || !near(b, 0.9, 1e-6) {
		t.Errorf("Convert = (%v,%v,%v)", r, g, b)
	}
}

func TestConverterKeepsWhite(t *testing.T) {
	for _, out := range []string{"linear", "rec2020", "display-p3", "adobe-rgb", "acescg"} {
		in, _ := Lookup("srgb")
		dst, _ := Lookup(out)
		r, g, b := NewConverter(in, dst).Convert(1, 1, 1)
		if !near(r, 1, 1e-3) || !near(g, 1, 1e-3) || !near(b, 1, 1e-3) {
			t.Errorf("srgb->%s white = (%v,%v,%v)", out, r, g, b)
		}
	}
}

func TestBuildLUTCorners(t *testing.T) {
	s, _ := Lookup("srgb")
	lin, _ := Lookup("linear")
	const edge = 4
	lut := BuildLUT(s, lin, edge)
	if len(lut) != edge*edge*edge*4 {
		t.Fatalf("len = %d", len(lut))
	}
	if lut[0] != 0 || lut[3] != 0xFFFF {
		t.Errorf("black texel = %v", lut[:4])
	}
	last := lut[len(lut)-4:]
	for i, v := range last {
		if v != 0xFFFF {
			t.Errorf("white texel[%d] = %d", i, v)
		}
	}
}

func TestSpaceCacheIDs(t *testing.T) {
	c := NewSpaceCache(4)
	if id := c.Get("srgb", "srgb"); id != 0 {
		t.Errorf("same space id = %d, want 0", id)
	}
	if id := c.Get("srgb", "nonsense"); id != 0 {
		t.Errorf("unknown space id = %d, want 0", id)
	}
	a := c.Get("srgb", "linear")
	b := c.Get("display-p3", "srgb")
	if a != 1 || b != 2 {
		t.Errorf("ids = %d,%d, want 1,2", a, b)
	}
	if again := c.Get("sRGB", "Linear"); again != a {
		t.Errorf("repeat lookup id = %d, want %d", again, a)
	}

	// A second cache starts its own numbering.
	if id := NewSpaceCache(4).Get("rec709", "srgb"); id != 1 {
		t.Errorf("fresh cache id = %d, want 1", id)
	}
}

func TestSpaceCacheTrimOldestFirst(t *testing.T) {
	c := NewSpaceCache(2)
	var evicted []int
	c.OnEvict(func(d *SpaceData) { evicted = append(evicted, d.ID) })

	c.Get("srgb", "linear")
	c.Get("srgb", "rec2020")
	c.Get("srgb", "acescg")
	c.Get("srgb", "linear") // reads do not refresh
	gen := c.Generation()

	if n := c.Trim(1); n != 2 {
		t.Fatalf("Trim = %d, want 2", n)
	}
	if len(evicted) != 2 || evicted[0] != 1 || evicted[1] != 2 {
		t.Errorf("evicted %v, want [1 2]", evicted)
	}
	if c.Generation() == gen {
		t.Error("eviction should bump generation")
	}
	if _, ok := c.Data(1); ok {
		t.Error("id 1 should be gone")
	}
	if id := c.Get("srgb", "linear"); id != 4 {
		t.Errorf("rebuilt id = %d, want 4", id)
	}
}

func TestShaderSourceDispatch(t *testing.T) {
	c := NewSpaceCache(2)
	c.Get("srgb", "linear")
	c.Get("srgb", "rec2020")
	src := c.ShaderSource()
	for _, want := range []string{"fn cs_1(", "fn cs_2(", "case 1u: { return cs_1(c); }", "default: { return c; }"} {
		if !strings.Contains(src, want) {
			t.Errorf("shader source missing %q:\n%s", want, src)
		}
	}
	if empty := NewSpaceCache(2).ShaderSource(); strings.Contains(empty, "fn cs_") {
		t.Errorf("empty cache emitted conversions:\n%s", empty)
	}
}
