// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"math"
)

// Shader modes selected by Uniforms.Mode.
const (
	ModeSolid uint32 = iota
	ModeTextGray
	ModeTextLCD
	ModeImage
	ModeShadow
	// ModeImageFill paints the uniform color through the texture alpha.
	ModeImageFill
)

// Image channel display values for Uniforms.ImageChannel.
const (
	ChannelAll uint32 = iota
	ChannelRed
	ChannelGreen
	ChannelBlue
	ChannelAlpha
)

// How texel alpha is read, for Uniforms.AlphaMode.
const (
	AlphaPremultiplied uint32 = iota
	AlphaStraight
	AlphaIgnore
)

// Image processing switches in Uniforms.Flags.
const (
	FlagInvert uint32 = 1 << iota
	FlagLevels
	FlagExposure
)

// UniformSize is the byte size of the WGSL Uniforms struct.
const UniformSize = 160

// Uniforms is the per-draw shader state. Layout (offsets in bytes):
//
//	viewport      vec2<f32>    0
//	mode          u32          8
//	channel       u32         12
//	color         vec4<f32>   16
//	color_matrix  mat4x4<f32> 32
//	exposure      vec4<f32>   96
//	levels        vec4<f32>  112
//	tone          vec4<f32>  128
//	color_space   u32        144
//	image_channel u32        148
//	alpha_mode    u32        152
//	flags         u32        156
type Uniforms struct {
	Viewport [2]float32
	Mode     uint32
	// Channel selects the coverage channel for LCD text passes.
	Channel uint32
	// Color is premultiplied RGBA.
	Color [4]float32
	// ColorMatrix is row-major; it is transposed on upload.
	ColorMatrix [16]float32
	// Exposure holds scale, defog, knee start and knee factor.
	Exposure [4]float32
	// Levels holds in low, in range, inverse gamma and out low.
	Levels [4]float32
	// Tone holds levels out range, soft clip and display inverse gamma.
	Tone         [4]float32
	ColorSpace   uint32
	ImageChannel uint32
	AlphaMode    uint32
	Flags        uint32
}

// DefaultUniforms returns neutral image processing state.
func DefaultUniforms() Uniforms {
	return Uniforms{
		ColorMatrix: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		Exposure:    [4]float32{1, 0, 0, 0},
		Levels:      [4]float32{0, 1, 1, 0},
		Tone:        [4]float32{1, 0, 1, 0},
	}
}

// AppendBytes appends the little-endian std140 encoding of u.
func (u *Uniforms) AppendBytes(b []byte) []byte {
	put := func(v float32) { b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v)) }
	put(u.Viewport[0])
	put(u.Viewport[1])
	b = binary.LittleEndian.AppendUint32(b, u.Mode)
	b = binary.LittleEndian.AppendUint32(b, u.Channel)
	for _, v := range u.Color {
		put(v)
	}
	for col := range 4 {
		for row := range 4 {
			put(u.ColorMatrix[row*4+col])
		}
	}
	for _, v := range u.Exposure {
		put(v)
	}
	for _, v := range u.Levels {
		put(v)
	}
	for _, v := range u.Tone {
		put(v)
	}
	for _, v := range [4]uint32{u.ColorSpace, u.ImageChannel, u.AlphaMode, u.Flags} {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return b
}

// VertexSize is the encoded size of a Vertex.
const VertexSize = 12

// Vertex is the single vertex layout used by every primitive: a pixel
// position and a normalized texture coordinate.
type Vertex struct {
	X, Y float32
	U, V uint16
}

// UV converts a float texture coordinate in [0, 1] to normalized 16 bit.
func UV(f float32) uint16 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return math.MaxUint16
	}
	return uint16(f*math.MaxUint16 + 0.5)
}

// AppendVertices appends the little-endian encoding of vs.
func AppendVertices(b []byte, vs []Vertex) []byte {
	for _, v := range vs {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.X))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.Y))
		b = binary.LittleEndian.AppendUint16(b, v.U)
		b = binary.LittleEndian.AppendUint16(b, v.V)
	}
	return b
}

// DecodeVertices is the inverse of AppendVertices.
func DecodeVertices(b []byte) []Vertex {
	out := make([]Vertex, 0, len(b)/VertexSize)
	for ; len(b) >= VertexSize; b = b[VertexSize:] {
		out = append(out, Vertex{
			X: math.Float32frombits(binary.LittleEndian.Uint32(b)),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			U: binary.LittleEndian.Uint16(b[8:]),
			V: binary.LittleEndian.Uint16(b[10:]),
		})
	}
	return out
}
