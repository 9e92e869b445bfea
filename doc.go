// Package imrender is a 2D immediate-mode renderer for image viewers.
//
// # Overview
//
// A Renderer records draw calls for one frame and replays them on a
// gpu.Device when the frame ends. Drawing is stateful: color, transform,
// clip, font and image processing settings are set first and apply to
// every following draw, like an HTML canvas.
//
// # Quick Start
//
//	glyphs := text.NewService(text.Config{FontDir: "/usr/share/fonts"})
//	defer glyphs.Close()
//
//	r, err := imrender.New(gpu.NewRecorder(), glyphs)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	r.BeginFrame(800, 600)
//	r.SetColor(imrender.RGB(1, 0, 0))
//	r.DrawRect(imrender.R(0, 0, 100, 100))
//	stats, err := r.EndFrame()
//
// # Frames
//
// BeginFrame starts recording. Draw calls append vertices to a shared
// buffer; shapes entirely outside the clip are dropped. EndFrame uploads
// the buffer once and issues one draw per primitive in recording order,
// changing scissor, blend mode, color mask and bindings only when they
// differ from the previous primitive.
//
// # Coordinate System
//
// Origin at the top-left, X grows right, Y grows down, units are pixels.
//
// # Architecture
//
//   - text: font catalog and glyph cache served by a worker goroutine
//   - atlas: shelf packer for glyph and thumbnail bitmaps
//   - color: color matrices, exposure knee, color-space LUTs
//   - gpu: device interface, command recorder, wgpu hal backend
//
// The Renderer is not safe for concurrent use. It must be driven from the
// goroutine that owns the GPU device.
package imrender

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
