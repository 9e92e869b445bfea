package color

import "math"

// bisectSteps is fixed so results match across platforms and releases.
const bisectSteps = 30

// Knee is the highlight compression curve ln(x*f + 1) / f.
// f = 0 is the identity.
func Knee(x, f float64) float64 {
	if f == 0 {
		return x
	}
	return math.Log(x*f+1) / f
}

// Knee2 finds f such that Knee(x, f) == y.
// It doubles an upper bound from 1 until the curve drops to y, then
// bisects exactly 30 times and returns the midpoint.
func Knee2(x, y float64) float64 {
	f0, f1 := 0.0, 1.0
	for Knee(x, f1) > y {
		f0 = f1
		f1 *= 2
	}
	for range bisectSteps {
		mid := (f0 + f1) / 2
		if Knee(x, mid) > y {
			f0 = mid
		} else {
			f1 = mid
		}
	}
	return (f0 + f1) / 2
}

// Exposure constants: the offset maps 18% gray to 1 before the knee, and
// the output scale brings the knee range back toward display white.
const (
	exposureOffset = 2.47393
	exposureOutput = 0.332
	kneeTarget     = 3.5
)

// Exposure controls scene-referred tone mapping of an image. Pixels are
// defogged, scaled by 2^(Stops+2.47393), compressed above 2^KneeLow so
// that 2^KneeHigh lands on 2^3.5, then scaled by 0.332.
type Exposure struct {
	Enabled  bool    `toml:"enabled"`
	Stops    float32 `toml:"stops"`
	Defog    float32 `toml:"defog"`
	KneeLow  float32 `toml:"knee_low"`
	KneeHigh float32 `toml:"knee_high"`
	// Gamma is applied after everything else, also when Enabled is false.
	// 0 or 1 disables it.
	Gamma float32 `toml:"gamma"`
}

// DefaultExposure returns a disabled exposure with the usual knee range.
func DefaultExposure() Exposure {
	return Exposure{KneeHigh: 5, Gamma: 1}
}

// Uniforms packs the exposure as v, d, k, f: scale, defog, knee start and
// knee factor. f is 0 when the knee range is empty.
func (e Exposure) Uniforms() [4]float32 {
	v := math.Exp2(float64(e.Stops) + exposureOffset)
	k := math.Exp2(float64(e.KneeLow))
	var f float64
	if x, y := math.Exp2(float64(e.KneeHigh))-k, math.Exp2(kneeTarget)-k; x > 0 && y > 0 && x > y {
		f = Knee2(x, y)
	}
	return [4]float32{float32(v), e.Defog, float32(k), float32(f)}
}

// InvGamma returns 1/Gamma, or 1 when gamma is disabled.
func (e Exposure) InvGamma() float32 {
	if e.Gamma <= 0 {
		return 1
	}
	return 1 / e.Gamma
}

// Apply runs one channel through the exposure curve the way the shader
// does, without gamma. A disabled exposure returns c.
func (e Exposure) Apply(c float64) float64 {
	if !e.Enabled {
		return c
	}
	u := e.Uniforms()
	v, d, k, f := float64(u[0]), float64(u[1]), float64(u[2]), float64(u[3])
	c = math.Max(c-d, 0) * v
	if c > k && f > 0 {
		c = k + Knee(c-k, f)
	}
	return c * exposureOutput
}
