// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu is the device layer under imrender's frame recorder.
//
// The recorder talks to a Device: a small immediate-style interface with
// explicit state setters (blend, color mask, scissor, textures, uniforms)
// and draws. Two implementations are provided:
//
//   - Recorder logs every call and counts state changes. It backs tests
//     and headless runs.
//   - HALDevice encodes the frame into a single render pass on a
//     gogpu/wgpu hal device, received from the host through
//     gpucontext.DeviceProvider.
package gpu

import (
	"log/slog"

	"github.com/gogpu/imrender/internal/logging"
)

var logger logging.Holder

// SetLogger sets the package logger. imrender.SetLogger calls this.
func SetLogger(l *slog.Logger) { logger.Store(l) }
