// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Device errors.
var (
	// ErrNoDevice is returned when a DeviceHandle carries no hal device.
	ErrNoDevice = errors.New("gpu: no device")

	// ErrNoProgram is returned by EndPass when no program was compiled.
	ErrNoProgram = errors.New("gpu: program not compiled")

	// ErrUnknownTexture is returned for a TextureID that does not exist.
	ErrUnknownTexture = errors.New("gpu: unknown texture")

	// ErrNotInPass is returned for draws outside BeginPass/EndPass.
	ErrNotInPass = errors.New("gpu: not in a render pass")
)

// DeviceHandle provides GPU device access from the host application.
// The host owns the device; imrender only borrows it.
type DeviceHandle = gpucontext.DeviceProvider

// TextureID names a texture created by a Device. 0 is never valid.
type TextureID uint32

// Format is a texture pixel format.
type Format int

const (
	// FormatRGBA8 is 8-bit premultiplied RGBA, used for images and atlases.
	FormatRGBA8 Format = iota
	// FormatRGBA16 is 16-bit normalized RGBA, used for color LUTs.
	FormatRGBA16
)

// BytesPerPixel returns the texel size.
func (f Format) BytesPerPixel() int {
	if f == FormatRGBA16 {
		return 8
	}
	return 4
}

func (f Format) gpuFormat() gputypes.TextureFormat {
	if f == FormatRGBA16 {
		return gputypes.TextureFormatRGBA16Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}

// TextureDesc describes a texture. Depth > 1 makes a 3D texture.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
	Depth  int
	Format Format
}

// Region is a box inside a texture. Depth 0 is treated as 1.
type Region struct {
	X, Y, Z              int
	Width, Height, Depth int
}

// RegionOf returns the 2D region covering r.
func RegionOf(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy(), Depth: 1}
}

// BlendMode selects how source pixels combine with the target.
// Colors are premultiplied.
type BlendMode int

const (
	// BlendNormal is source-over.
	BlendNormal BlendMode = iota
	// BlendAdditive adds source to destination.
	BlendAdditive
	// BlendMultiply multiplies destination by source.
	BlendMultiply
	// BlendReplace overwrites destination.
	BlendReplace
)

// String returns the blend mode name.
func (b BlendMode) String() string {
	switch b {
	case BlendAdditive:
		return "additive"
	case BlendMultiply:
		return "multiply"
	case BlendReplace:
		return "replace"
	default:
		return "normal"
	}
}

func (b BlendMode) state() gputypes.BlendState {
	switch b {
	case BlendAdditive:
		return gputypes.BlendState{
			Color: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOne, Operation: gputypes.BlendOperationAdd},
			Alpha: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOne, Operation: gputypes.BlendOperationAdd},
		}
	case BlendMultiply:
		return gputypes.BlendState{
			Color: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorDst, DstFactor: gputypes.BlendFactorOneMinusSrcAlpha, Operation: gputypes.BlendOperationAdd},
			Alpha: gputypes.BlendComponent{SrcFactor: gputypes.BlendFactorOne, DstFactor: gputypes.BlendFactorOneMinusSrcAlpha, Operation: gputypes.BlendOperationAdd},
		}
	case BlendReplace:
		return gputypes.BlendStateReplace()
	default:
		return gputypes.BlendStatePremultiplied()
	}
}

// ColorMask selects the channels a draw writes.
type ColorMask uint8

// Color mask bits.
const (
	MaskRed ColorMask = 1 << iota
	MaskGreen
	MaskBlue
	MaskAlpha
	MaskAll = MaskRed | MaskGreen | MaskBlue | MaskAlpha
)

func (m ColorMask) writeMask() gputypes.ColorWriteMask {
	var w gputypes.ColorWriteMask
	if m&MaskRed != 0 {
		w |= gputypes.ColorWriteMaskRed
	}
	if m&MaskGreen != 0 {
		w |= gputypes.ColorWriteMaskGreen
	}
	if m&MaskBlue != 0 {
		w |= gputypes.ColorWriteMaskBlue
	}
	if m&MaskAlpha != 0 {
		w |= gputypes.ColorWriteMaskAlpha
	}
	return w
}

// Topology is the primitive assembly of a draw.
type Topology int

const (
	TriangleList Topology = iota
	LineStrip
)

func (t Topology) gpuTopology() gputypes.PrimitiveTopology {
	if t == LineStrip {
		return gputypes.PrimitiveTopologyLineStrip
	}
	return gputypes.PrimitiveTopologyTriangleList
}

// Program is a complete WGSL shader with vs_main and fs_main entry points.
type Program struct {
	Label  string
	Source string
}

// Device is the rendering backend used by the frame recorder.
//
// Between BeginPass and EndPass the state set by SetBlend, SetColorMask,
// SetScissor, BindTexture, BindLUT and SetUniforms applies to every
// following Draw. BeginPass resets blend to BlendNormal and the mask to
// MaskAll.
type Device interface {
	CompileProgram(p Program) error
	CreateTexture(desc TextureDesc) (TextureID, error)
	WriteTexture(id TextureID, r Region, data []byte) error
	DestroyTexture(id TextureID)

	BeginPass(width, height int, clear [4]float32) error
	UploadVertices(data []byte) error
	SetBlend(b BlendMode)
	SetColorMask(m ColorMask)
	SetScissor(r image.Rectangle)
	BindTexture(id TextureID)
	BindLUT(id TextureID)
	SetUniforms(u *Uniforms)
	Draw(t Topology, first, count int)
	EndPass() error
}
