// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func openNoop(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	open, err := (&noop.Adapter{}).Open(0, gputypes.Limits{})
	if err != nil {
		t.Fatalf("open noop device: %v", err)
	}
	return open.Device, open.Queue
}

type provider struct {
	dev   gpucontext.Device
	queue gpucontext.Queue
}

func (p provider) Device() gpucontext.Device             { return p.dev }
func (p provider) Queue() gpucontext.Queue               { return p.queue }
func (p provider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (p provider) Adapter() gpucontext.Adapter           { return nil }
func (p provider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

func TestNewHALDeviceFromProvider(t *testing.T) {
	dev, queue := openNoop(t)
	d, err := NewHALDevice(provider{dev: dev, queue: queue}, HALOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Destroy()
	if d.opts.TargetFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("target format = %v, want surface format", d.opts.TargetFormat)
	}
}

func TestNewHALDeviceRejectsForeignDevice(t *testing.T) {
	if _, err := NewHALDevice(provider{dev: "not a device"}, HALOptions{}); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("err = %v, want ErrNoDevice", err)
	}
	if _, err := NewHALDevice(nil, HALOptions{}); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("nil provider err = %v, want ErrNoDevice", err)
	}
}

func TestHALDeviceFrame(t *testing.T) {
	dev, queue := openNoop(t)
	d, err := NewHALDeviceFrom(dev, queue, HALOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Destroy()

	if err := d.BeginPass(64, 64, [4]float32{}); err != nil {
		t.Fatal(err)
	}
	if err := d.EndPass(); !errors.Is(err, ErrNoProgram) {
		t.Fatalf("EndPass without program = %v, want ErrNoProgram", err)
	}

	if err := d.CompileProgram(Program{Label: "test", Source: "@vertex fn vs_main() {}"}); err != nil {
		t.Fatal(err)
	}
	tex, err := d.CreateTexture(TextureDesc{Label: "white", Width: 1, Height: 1, Format: FormatRGBA8})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WriteTexture(tex, Region{Width: 1, Height: 1}, []byte{255, 255, 255, 255}); err != nil {
		t.Fatal(err)
	}
	lut, err := d.CreateTexture(TextureDesc{Label: "lut", Width: 2, Height: 2, Depth: 2, Format: FormatRGBA16})
	if err != nil {
		t.Fatal(err)
	}

	quad := []Vertex{{0, 0, 0, 0}, {10, 0, 0, 0}, {10, 10, 0, 0}, {0, 0, 0, 0}, {10, 10, 0, 0}, {0, 10, 0, 0}}
	if err := d.BeginPass(64, 64, [4]float32{0, 0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := d.UploadVertices(AppendVertices(nil, quad)); err != nil {
		t.Fatal(err)
	}
	u := DefaultUniforms()
	d.BindTexture(tex)
	d.BindLUT(lut)
	d.SetUniforms(&u)
	d.Draw(TriangleList, 0, 6)
	d.SetBlend(BlendAdditive)
	d.SetScissor(image.Rect(0, 0, 8, 8))
	d.SetUniforms(&u)
	d.Draw(TriangleList, 0, 6)
	d.SetScissor(image.Rect(100, 100, 120, 120))
	d.Draw(TriangleList, 0, 6)
	if err := d.EndPass(); err != nil {
		t.Fatalf("EndPass: %v", err)
	}

	if len(d.draws) != 3 {
		t.Errorf("draws = %d, want 3", len(d.draws))
	}
	if d.draws[1].uniforms != uniformAlign {
		t.Errorf("second uniform offset = %d, want %d", d.draws[1].uniforms, uniformAlign)
	}
	if len(d.pipelines) != 2 {
		t.Errorf("pipelines = %d, want 2", len(d.pipelines))
	}
	if d.Target() == nil {
		t.Error("offscreen target not created")
	}
	if err := d.EndPass(); !errors.Is(err, ErrNotInPass) {
		t.Errorf("second EndPass = %v, want ErrNotInPass", err)
	}

	d.DestroyTexture(tex)
	if err := d.WriteTexture(tex, Region{Width: 1, Height: 1}, []byte{0, 0, 0, 0}); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("write after destroy = %v", err)
	}
}

func TestHALDeviceRecompileDropsPipelines(t *testing.T) {
	dev, queue := openNoop(t)
	d, err := NewHALDeviceFrom(dev, queue, HALOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Destroy()
	_ = d.CompileProgram(Program{Source: "a"})
	if _, err := d.pipeline(pipelineKey{blend: BlendNormal, mask: MaskAll}); err != nil {
		t.Fatal(err)
	}
	_ = d.CompileProgram(Program{Source: "b"})
	if len(d.pipelines) != 0 {
		t.Errorf("pipelines after recompile = %d, want 0", len(d.pipelines))
	}
}

func TestGrowSize(t *testing.T) {
	for _, tt := range []struct{ in, want uint64 }{{0, 4096}, {4096, 4096}, {4097, 8192}, {20000, 32768}} {
		if got := growSize(tt.in); got != tt.want {
			t.Errorf("growSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSPIRVWords(t *testing.T) {
	got := spirvWords([]byte{0x03, 0x02, 0x23, 0x07, 0xff})
	if len(got) != 1 || got[0] != 0x07230203 {
		t.Errorf("spirvWords = %#x", got)
	}
}
