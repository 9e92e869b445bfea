package color

import "math"

// Levels remaps [InLow, InHigh] to [OutLow, OutHigh] with a gamma curve in
// between.
type Levels struct {
	Enabled bool    `toml:"enabled"`
	InLow   float32 `toml:"in_low"`
	InHigh  float32 `toml:"in_high"`
	Gamma   float32 `toml:"gamma"`
	OutLow  float32 `toml:"out_low"`
	OutHigh float32 `toml:"out_high"`
}

// DefaultLevels returns disabled identity levels.
func DefaultLevels() Levels {
	return Levels{InHigh: 1, Gamma: 1, OutHigh: 1}
}

// Uniforms packs the levels as in low, in range, inverse gamma, out low,
// and returns the out range separately.
func (l Levels) Uniforms() (params [4]float32, outRange float32) {
	inRange := l.InHigh - l.InLow
	if inRange == 0 {
		inRange = 1e-6
	}
	invGamma := float32(1)
	if l.Gamma > 0 {
		invGamma = 1 / l.Gamma
	}
	return [4]float32{l.InLow, inRange, invGamma, l.OutLow}, l.OutHigh - l.OutLow
}

// Apply maps one channel the way the shader does. Disabled levels return c.
func (l Levels) Apply(c float64) float64 {
	if !l.Enabled {
		return c
	}
	p, outRange := l.Uniforms()
	t := (c - float64(p[0])) / float64(p[1])
	if t <= 0 {
		t = 0
	} else {
		t = math.Pow(t, float64(p[2]))
	}
	return t*float64(outRange) + float64(p[3])
}

// SoftClip rolls off values above 1-s so they approach 1 instead of
// clipping. s <= 0 returns c.
func SoftClip(c, s float64) float64 {
	if s <= 0 {
		return c
	}
	knee := 1 - s
	if c > knee {
		c = knee + (1-math.Exp(-(c-knee)/s))*s
	}
	return c
}
