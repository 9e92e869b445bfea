package color

import "math"

// DefaultLUTEdge is the default number of samples per LUT axis.
const DefaultLUTEdge = 32

// BuildLUT samples the conversion from in to out on an edge^3 grid and
// returns RGBA16 texels. Red varies fastest, then green, then blue, which
// matches a 3D texture of size edge x edge x edge.
func BuildLUT(in, out Space, edge int) []uint16 {
	if edge < 2 {
		edge = 2
	}
	conv := NewConverter(in, out)
	data := make([]uint16, edge*edge*edge*4)
	step := 1 / float64(edge-1)
	i := 0
	for b := range edge {
		for g := range edge {
			for r := range edge {
				or, og, ob := conv.Convert(float64(r)*step, float64(g)*step, float64(b)*step)
				data[i] = unorm16(or)
				data[i+1] = unorm16(og)
				data[i+2] = unorm16(ob)
				data[i+3] = math.MaxUint16
				i += 4
			}
		}
	}
	return data
}

func unorm16(v float64) uint16 {
	return uint16(math.Round(clamp01(v) * math.MaxUint16))
}
