package color

// Luma weights used by SaturationMatrix.
const (
	LumaR = 0.3086
	LumaG = 0.6094
	LumaB = 0.0820
)

// Mat4 is a row-major 4x4 matrix.
type Mat4 [16]float32

// Identity4 returns the identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var r Mat4
	for i := range 4 {
		for j := range 4 {
			var s float32
			for k := range 4 {
				s += m[i*4+k] * n[k*4+j]
			}
			r[i*4+j] = s
		}
	}
	return r
}

// Apply transforms an RGB triple, treating it as (r, g, b, 1).
func (m Mat4) Apply(r, g, b float32) (float32, float32, float32) {
	return m[0]*r + m[1]*g + m[2]*b + m[3],
		m[4]*r + m[5]*g + m[6]*b + m[7],
		m[8]*r + m[9]*g + m[10]*b + m[11]
}

// IsIdentity reports whether m is exactly the identity.
func (m Mat4) IsIdentity() bool {
	return m == Identity4()
}

// BrightnessMatrix scales each channel.
func BrightnessMatrix(r, g, b float32) Mat4 {
	return Mat4{
		r, 0, 0, 0,
		0, g, 0, 0,
		0, 0, b, 0,
		0, 0, 0, 1,
	}
}

// ContrastMatrix scales each channel around mid-gray 0.5.
func ContrastMatrix(r, g, b float32) Mat4 {
	return Mat4{
		r, 0, 0, (1 - r) / 2,
		0, g, 0, (1 - g) / 2,
		0, 0, b, (1 - b) / 2,
		0, 0, 0, 1,
	}
}

// SaturationMatrix mixes each channel toward luma. A factor of 1 leaves
// the channel unchanged, 0 makes it gray.
func SaturationMatrix(r, g, b float32) Mat4 {
	row := func(s float32, i int) [4]float32 {
		out := [4]float32{(1 - s) * LumaR, (1 - s) * LumaG, (1 - s) * LumaB, 0}
		out[i] += s
		return out
	}
	rr, gr, br := row(r, 0), row(g, 1), row(b, 2)
	return Mat4{
		rr[0], rr[1], rr[2], rr[3],
		gr[0], gr[1], gr[2], gr[3],
		br[0], br[1], br[2], br[3],
		0, 0, 0, 1,
	}
}

// Settings are the per-image color adjustments. Each field holds one
// factor per RGB channel; 1 is neutral.
type Settings struct {
	Brightness [3]float32 `toml:"brightness"`
	Contrast   [3]float32 `toml:"contrast"`
	Saturation [3]float32 `toml:"saturation"`
}

// DefaultSettings returns neutral settings.
func DefaultSettings() Settings {
	one := [3]float32{1, 1, 1}
	return Settings{Brightness: one, Contrast: one, Saturation: one}
}

// Matrix combines the settings as brightness * contrast * saturation.
func (s Settings) Matrix() Mat4 {
	b := BrightnessMatrix(s.Brightness[0], s.Brightness[1], s.Brightness[2])
	c := ContrastMatrix(s.Contrast[0], s.Contrast[1], s.Contrast[2])
	sat := SaturationMatrix(s.Saturation[0], s.Saturation[1], s.Saturation[2])
	return b.Mul(c).Mul(sat)
}
