// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"image"
)

// Op identifies a recorded Device call.
type Op int

const (
	OpCompile Op = iota
	OpCreateTexture
	OpWriteTexture
	OpDestroyTexture
	OpBeginPass
	OpUploadVertices
	OpSetBlend
	OpSetColorMask
	OpSetScissor
	OpBindTexture
	OpBindLUT
	OpSetUniforms
	OpDraw
	OpEndPass
)

var opNames = [...]string{
	"compile", "create-texture", "write-texture", "destroy-texture",
	"begin-pass", "upload-vertices", "set-blend", "set-color-mask",
	"set-scissor", "bind-texture", "bind-lut", "set-uniforms", "draw", "end-pass",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one recorded call. Only the fields relevant to Op are set.
type Command struct {
	Op       Op
	Blend    BlendMode
	Mask     ColorMask
	Rect     image.Rectangle
	Texture  TextureID
	Uniforms Uniforms
	Topology Topology
	First    int
	Count    int
}

// Counters summarizes the calls made since the last BeginPass.
type Counters struct {
	DrawCalls      int
	BlendChanges   int
	MaskChanges    int
	ScissorChanges int
	TextureBinds   int
	LUTBinds       int
	UniformUpdates int
}

// Recorder is a Device that keeps a log of calls instead of rendering.
type Recorder struct {
	Commands []Command
	// Vertices is the last uploaded vertex data.
	Vertices []byte
	// Program is the last compiled program.
	Program  Program
	Compiles int

	counters Counters
	textures map[TextureID]TextureDesc
	nextID   TextureID
	inPass   bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{textures: make(map[TextureID]TextureDesc)}
}

var _ Device = (*Recorder)(nil)

func (r *Recorder) log(c Command) { r.Commands = append(r.Commands, c) }

// Counters returns the counts for the current or last pass.
func (r *Recorder) Counters() Counters { return r.counters }

// Textures returns the number of live textures.
func (r *Recorder) Textures() int { return len(r.textures) }

// Texture returns the descriptor of a live texture.
func (r *Recorder) Texture(id TextureID) (TextureDesc, bool) {
	d, ok := r.textures[id]
	return d, ok
}

// Reset clears the command log.
func (r *Recorder) Reset() { r.Commands = r.Commands[:0] }

// CommandsOf returns the recorded commands with the given op.
func (r *Recorder) CommandsOf(op Op) []Command {
	var out []Command
	for _, c := range r.Commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) CompileProgram(p Program) error {
	r.Program = p
	r.Compiles++
	r.log(Command{Op: OpCompile})
	return nil
}

func (r *Recorder) CreateTexture(desc TextureDesc) (TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("gpu: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	r.nextID++
	r.textures[r.nextID] = desc
	r.log(Command{Op: OpCreateTexture, Texture: r.nextID})
	return r.nextID, nil
}

func (r *Recorder) WriteTexture(id TextureID, reg Region, data []byte) error {
	d, ok := r.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	depth := max(reg.Depth, 1)
	if want := reg.Width * reg.Height * depth * d.Format.BytesPerPixel(); len(data) < want {
		return fmt.Errorf("gpu: texture data too short: %d < %d", len(data), want)
	}
	r.log(Command{Op: OpWriteTexture, Texture: id, Rect: image.Rect(reg.X, reg.Y, reg.X+reg.Width, reg.Y+reg.Height)})
	return nil
}

func (r *Recorder) DestroyTexture(id TextureID) {
	delete(r.textures, id)
	r.log(Command{Op: OpDestroyTexture, Texture: id})
}

func (r *Recorder) BeginPass(width, height int, _ [4]float32) error {
	r.counters = Counters{}
	r.inPass = true
	r.log(Command{Op: OpBeginPass, Rect: image.Rect(0, 0, width, height)})
	return nil
}

func (r *Recorder) UploadVertices(data []byte) error {
	r.Vertices = append(r.Vertices[:0], data...)
	r.log(Command{Op: OpUploadVertices, Count: len(data) / VertexSize})
	return nil
}

func (r *Recorder) SetBlend(b BlendMode) {
	r.counters.BlendChanges++
	r.log(Command{Op: OpSetBlend, Blend: b})
}

func (r *Recorder) SetColorMask(m ColorMask) {
	r.counters.MaskChanges++
	r.log(Command{Op: OpSetColorMask, Mask: m})
}

func (r *Recorder) SetScissor(rect image.Rectangle) {
	r.counters.ScissorChanges++
	r.log(Command{Op: OpSetScissor, Rect: rect})
}

func (r *Recorder) BindTexture(id TextureID) {
	r.counters.TextureBinds++
	r.log(Command{Op: OpBindTexture, Texture: id})
}

func (r *Recorder) BindLUT(id TextureID) {
	r.counters.LUTBinds++
	r.log(Command{Op: OpBindLUT, Texture: id})
}

func (r *Recorder) SetUniforms(u *Uniforms) {
	r.counters.UniformUpdates++
	r.log(Command{Op: OpSetUniforms, Uniforms: *u})
}

func (r *Recorder) Draw(t Topology, first, count int) {
	r.counters.DrawCalls++
	r.log(Command{Op: OpDraw, Topology: t, First: first, Count: count})
}

func (r *Recorder) EndPass() error {
	if !r.inPass {
		return ErrNotInPass
	}
	r.inPass = false
	r.log(Command{Op: OpEndPass})
	return nil
}
