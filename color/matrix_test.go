package color

import (
	"math"
	"testing"
)

func TestSaturationMatrixFullIsIdentity(t *testing.T) {
	if m := SaturationMatrix(1, 1, 1); !m.IsIdentity() {
		t.Errorf("SaturationMatrix(1,1,1) = %v, want identity", m)
	}
}

func TestSaturationMatrixZeroIsGray(t *testing.T) {
	m := SaturationMatrix(0, 0, 0)
	r, g, b := m.Apply(1, 0, 0)
	if r != g || g != b {
		t.Errorf("desaturated red = (%v,%v,%v), want equal channels", r, g, b)
	}
	if !near(float64(r), LumaR, 1e-6) {
		t.Errorf("gray level = %v, want %v", r, LumaR)
	}
}

func TestContrastKeepsMidGray(t *testing.T) {
	m := ContrastMatrix(2, 0.5, 3)
	r, g, b := m.Apply(0.5, 0.5, 0.5)
	for i, v := range []float32{r, g, b} {
		if !near(float64(v), 0.5, 1e-6) {
			t.Errorf("channel %d = %v, want 0.5", i, v)
		}
	}
}

func TestSettingsMatrixOrder(t *testing.T) {
	s := Settings{
		Brightness: [3]float32{2, 2, 2},
		Contrast:   [3]float32{0.5, 0.5, 0.5},
		Saturation: [3]float32{1, 1, 1},
	}
	// Contrast runs first on the pixel, brightness last.
	r, _, _ := s.Matrix().Apply(1, 1, 1)
	if !near(float64(r), 1.5, 1e-6) {
		t.Errorf("r = %v, want 1.5", r)
	}
	if !DefaultSettings().Matrix().IsIdentity() {
		t.Error("default settings should produce identity")
	}
}

func TestKnee2Converges(t *testing.T) {
	f := Knee2(1000, 10)
	if got := Knee(1000, f); math.Abs(got-10) >= 1e-3 {
		t.Errorf("Knee(1000, %v) = %v, want 10 within 1e-3", f, got)
	}
}

func TestKnee2Deterministic(t *testing.T) {
	a := Knee2(37.5, 4)
	b := Knee2(37.5, 4)
	if a != b {
		t.Errorf("Knee2 not reproducible: %v != %v", a, b)
	}
}

func TestKneeZeroFactorIsIdentity(t *testing.T) {
	if got := Knee(3.25, 0); got != 3.25 {
		t.Errorf("Knee(x, 0) = %v, want x", got)
	}
}

func TestExposureUniforms(t *testing.T) {
	e := Exposure{Enabled: true, Stops: 1, Defog: 0.01, KneeLow: 0, KneeHigh: 5, Gamma: 2}
	u := e.Uniforms()
	if !near(float64(u[0]), math.Exp2(3.47393), 1e-4) {
		t.Errorf("v = %v, want 2^(stops+2.47393)", u[0])
	}
	if u[1] != 0.01 || u[2] != 1 {
		t.Errorf("d, k = %v, %v, want 0.01, 1", u[1], u[2])
	}
	// The knee factor maps the top of the knee range onto 2^3.5.
	if got := 1 + Knee(32-1, float64(u[3])); !near(got, math.Exp2(3.5), 1e-3) {
		t.Errorf("knee high maps to %v, want 2^3.5", got)
	}
	if e.InvGamma() != 0.5 || (Exposure{}).InvGamma() != 1 {
		t.Errorf("InvGamma = %v, %v", e.InvGamma(), (Exposure{}).InvGamma())
	}
}

func TestExposureKneeOnlyAboveKneeLow(t *testing.T) {
	e := DefaultExposure()
	e.Enabled = true
	u := e.Uniforms()
	v, k := float64(u[0]), float64(u[2])

	// Below the knee the curve is linear.
	low := 0.5 * k / v
	if got, want := e.Apply(low), low*v*0.332; !near(got, want, 1e-6) {
		t.Errorf("Apply(%v) = %v, want linear %v", low, got, want)
	}
	// Above it highlights are compressed but still increase.
	hi1, hi2 := e.Apply(4*k/v), e.Apply(8*k/v)
	if hi1 >= 4*k*0.332 || hi2 <= hi1 {
		t.Errorf("compressed highlights = %v, %v", hi1, hi2)
	}
	if got := (Exposure{Stops: 3}).Apply(0.25); got != 0.25 {
		t.Errorf("disabled exposure changed the pixel: %v", got)
	}
}

func TestExposureEmptyKneeRange(t *testing.T) {
	if u := (Exposure{Enabled: true, KneeLow: 2, KneeHigh: 1}).Uniforms(); u[3] != 0 {
		t.Errorf("f = %v for an empty knee range, want 0", u[3])
	}
}

func TestLevels(t *testing.T) {
	l := Levels{Enabled: true, InLow: 0.2, InHigh: 0.6, Gamma: 2, OutLow: 0.1, OutHigh: 0.9}
	tests := []struct {
		in, want float64
	}{
		{0, 0.1},
		{0.2, 0.1},
		{0.6, 0.9},
		{0.3, 0.1 + math.Sqrt(0.25)*0.8},
	}
	for _, tt := range tests {
		if got := l.Apply(tt.in); !near(got, tt.want, 1e-5) {
			t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	d := DefaultLevels()
	d.Enabled = true
	if got := d.Apply(0.37); !near(got, 0.37, 1e-6) {
		t.Errorf("default levels Apply(0.37) = %v", got)
	}
}

func TestSoftClip(t *testing.T) {
	if got := SoftClip(0.5, 0.2); got != 0.5 {
		t.Errorf("value below the knee changed: %v", got)
	}
	if got := SoftClip(3, 0.2); got >= 1 || got <= 0.8 {
		t.Errorf("SoftClip(3, 0.2) = %v, want in (0.8, 1)", got)
	}
	if got := SoftClip(3, 0); got != 3 {
		t.Errorf("SoftClip with s=0 = %v", got)
	}
}

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }
