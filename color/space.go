package color

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownColorSpace is returned for a name with no registered space.
var ErrUnknownColorSpace = errors.New("color: unknown color space")

// Transfer is an RGB transfer function pair.
type Transfer int

const (
	TransferLinear Transfer = iota
	TransferSRGB
	TransferBT709
	TransferGamma22
	TransferGamma26
)

// Decode converts an encoded component to linear light.
func (t Transfer) Decode(v float64) float64 {
	switch t {
	case TransferSRGB:
		if v <= 0.04045 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	case TransferBT709:
		if v < 0.081 {
			return v / 4.5
		}
		return math.Pow((v+0.099)/1.099, 1/0.45)
	case TransferGamma22:
		return math.Pow(v, 563.0/256.0)
	case TransferGamma26:
		return math.Pow(v, 2.6)
	default:
		return v
	}
}

// Encode converts linear light to an encoded component.
func (t Transfer) Encode(v float64) float64 {
	if v <= 0 {
		return 0
	}
	switch t {
	case TransferSRGB:
		if v <= 0.0031308 {
			return v * 12.92
		}
		return 1.055*math.Pow(v, 1/2.4) - 0.055
	case TransferBT709:
		if v < 0.018 {
			return v * 4.5
		}
		return 1.099*math.Pow(v, 0.45) - 0.099
	case TransferGamma22:
		return math.Pow(v, 256.0/563.0)
	case TransferGamma26:
		return math.Pow(v, 1/2.6)
	default:
		return v
	}
}

// Chromaticity is a CIE 1931 xy coordinate.
type Chromaticity struct{ X, Y float64 }

func (c Chromaticity) xyz() vec3 {
	return vec3{c.X / c.Y, 1, (1 - c.X - c.Y) / c.Y}
}

// Space describes an RGB color space.
type Space struct {
	Name     string
	Red      Chromaticity
	Green    Chromaticity
	Blue     Chromaticity
	White    Chromaticity
	Transfer Transfer
}

var (
	whiteD65 = Chromaticity{0.3127, 0.3290}
	whiteD60 = Chromaticity{0.32168, 0.33767}
	whiteDCI = Chromaticity{0.314, 0.351}

	primaries709   = [3]Chromaticity{{0.640, 0.330}, {0.300, 0.600}, {0.150, 0.060}}
	primaries2020  = [3]Chromaticity{{0.708, 0.292}, {0.170, 0.797}, {0.131, 0.046}}
	primariesP3    = [3]Chromaticity{{0.680, 0.320}, {0.265, 0.690}, {0.150, 0.060}}
	primariesAdobe = [3]Chromaticity{{0.640, 0.330}, {0.210, 0.710}, {0.150, 0.060}}
	primariesAP1   = [3]Chromaticity{{0.713, 0.293}, {0.165, 0.830}, {0.128, 0.044}}
)

func newSpace(name string, p [3]Chromaticity, white Chromaticity, tf Transfer) Space {
	return Space{Name: name, Red: p[0], Green: p[1], Blue: p[2], White: white, Transfer: tf}
}

var spaces = map[string]Space{
	"srgb":       newSpace("srgb", primaries709, whiteD65, TransferSRGB),
	"linear":     newSpace("linear", primaries709, whiteD65, TransferLinear),
	"rec709":     newSpace("rec709", primaries709, whiteD65, TransferBT709),
	"rec2020":    newSpace("rec2020", primaries2020, whiteD65, TransferBT709),
	"display-p3": newSpace("display-p3", primariesP3, whiteD65, TransferSRGB),
	"dci-p3":     newSpace("dci-p3", primariesP3, whiteDCI, TransferGamma26),
	"adobe-rgb":  newSpace("adobe-rgb", primariesAdobe, whiteD65, TransferGamma22),
	"acescg":     newSpace("acescg", primariesAP1, whiteD60, TransferLinear),
}

// Lookup returns the space registered under name. Matching ignores case,
// spaces and underscores.
func Lookup(name string) (Space, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	if s, ok := spaces[key]; ok {
		return s, nil
	}
	return Space{}, fmt.Errorf("%w: %q", ErrUnknownColorSpace, name)
}

// Names returns the registered space names.
func Names() []string {
	out := make([]string, 0, len(spaces))
	for k := range spaces {
		out = append(out, k)
	}
	return out
}

// toXYZ returns the linear RGB to XYZ matrix of s.
func (s Space) toXYZ() mat3 {
	r, g, b := s.Red.xyz(), s.Green.xyz(), s.Blue.xyz()
	p := mat3{
		r[0], g[0], b[0],
		r[1], g[1], b[1],
		r[2], g[2], b[2],
	}
	scale := p.inverse().mulVec(s.White.xyz())
	for row := range 3 {
		for col := range 3 {
			p[row*3+col] *= scale[col]
		}
	}
	return p
}

// bradford is the cone response matrix used for white point adaptation.
var bradford = mat3{
	0.8951, 0.2664, -0.1614,
	-0.7502, 1.7135, 0.0367,
	0.0389, -0.0685, 1.0296,
}

func adaptation(from, to Chromaticity) mat3 {
	if from == to {
		return identity3()
	}
	src := bradford.mulVec(from.xyz())
	dst := bradford.mulVec(to.xyz())
	d := mat3{
		dst[0] / src[0], 0, 0,
		0, dst[1] / src[1], 0,
		0, 0, dst[2] / src[2],
	}
	return bradford.inverse().mul(d).mul(bradford)
}

// Converter maps encoded RGB in one space to encoded RGB in another.
type Converter struct {
	in, out Space
	m       mat3
}

// NewConverter builds the conversion from in to out.
func NewConverter(in, out Space) Converter {
	m := out.toXYZ().inverse().mul(adaptation(in.White, out.White)).mul(in.toXYZ())
	return Converter{in: in, out: out, m: m}
}

// Convert maps one encoded RGB triple. Output is clamped to [0, 1].
func (c Converter) Convert(r, g, b float64) (float64, float64, float64) {
	lin := vec3{c.in.Transfer.Decode(r), c.in.Transfer.Decode(g), c.in.Transfer.Decode(b)}
	o := c.m.mulVec(lin)
	return clamp01(c.out.Transfer.Encode(o[0])),
		clamp01(c.out.Transfer.Encode(o[1])),
		clamp01(c.out.Transfer.Encode(o[2]))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

type vec3 [3]float64

type mat3 [9]float64

func identity3() mat3 { return mat3{1, 0, 0, 0, 1, 0, 0, 0, 1} }

func (m mat3) mul(n mat3) mat3 {
	var r mat3
	for i := range 3 {
		for j := range 3 {
			r[i*3+j] = m[i*3]*n[j] + m[i*3+1]*n[3+j] + m[i*3+2]*n[6+j]
		}
	}
	return r
}

func (m mat3) mulVec(v vec3) vec3 {
	return vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

func (m mat3) inverse() mat3 {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]
	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 {
		return identity3()
	}
	inv := 1 / det
	return mat3{
		(e*i - f*h) * inv, (c*h - b*i) * inv, (b*f - c*e) * inv,
		(f*g - d*i) * inv, (a*i - c*g) * inv, (c*d - a*f) * inv,
		(d*h - e*g) * inv, (b*g - a*h) * inv, (a*e - b*d) * inv,
	}
}
