// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// uniformAlign is the dynamic uniform offset alignment required by WebGPU.
const uniformAlign = 256

// HALOptions configures a HALDevice.
type HALOptions struct {
	// UseSPIRV compiles programs to SPIR-V with naga instead of passing
	// WGSL to the driver.
	UseSPIRV bool
	// TargetFormat is the format of the offscreen target. Undefined
	// selects the host surface format, or RGBA8.
	TargetFormat gputypes.TextureFormat
}

type halTexture struct {
	desc  TextureDesc
	tex   hal.Texture
	view  hal.TextureView
	group hal.BindGroup
}

type pipelineKey struct {
	blend    BlendMode
	mask     ColorMask
	topology Topology
}

type drawState struct {
	blend    BlendMode
	mask     ColorMask
	scissor  image.Rectangle
	texture  TextureID
	lut      TextureID
	uniforms uint32
}

type drawCmd struct {
	drawState
	topology     Topology
	first, count uint32
}

// HALDevice renders through a gogpu/wgpu hal device. Draws issued during
// a pass are collected and encoded into one render pass at EndPass.
//
// HALDevice is not safe for concurrent use.
type HALDevice struct {
	device hal.Device
	queue  hal.Queue
	opts   HALOptions

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	lutLayout     hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	sampler       hal.Sampler
	pipelines     map[pipelineKey]hal.RenderPipeline

	textures map[TextureID]*halTexture
	nextID   TextureID
	noLUT    TextureID

	vertexBuf    hal.Buffer
	vertexCap    uint64
	uniformBuf   hal.Buffer
	uniformCap   uint64
	uniformGroup hal.BindGroup

	target       hal.Texture
	targetView   hal.TextureView
	targetW      int
	targetH      int
	externalView hal.TextureView

	inPass   bool
	width    int
	height   int
	clear    [4]float32
	vertices []byte
	uniforms []byte
	state    drawState
	draws    []drawCmd
}

var _ Device = (*HALDevice)(nil)

// NewHALDevice creates a device on the hal device shared by the host.
func NewHALDevice(h DeviceHandle, opts HALOptions) (*HALDevice, error) {
	if h == nil {
		return nil, ErrNoDevice
	}
	dev, ok := h.Device().(hal.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("%w: provider device is %T", ErrNoDevice, h.Device())
	}
	queue, ok := h.Queue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider queue is %T", ErrNoDevice, h.Queue())
	}
	if opts.TargetFormat == gputypes.TextureFormatUndefined {
		opts.TargetFormat = h.SurfaceFormat()
	}
	return NewHALDeviceFrom(dev, queue, opts)
}

// NewHALDeviceFrom creates a device from a raw hal device and queue.
func NewHALDeviceFrom(dev hal.Device, queue hal.Queue, opts HALOptions) (*HALDevice, error) {
	if dev == nil || queue == nil {
		return nil, ErrNoDevice
	}
	if opts.TargetFormat == gputypes.TextureFormatUndefined {
		opts.TargetFormat = gputypes.TextureFormatRGBA8Unorm
	}
	d := &HALDevice{
		device:    dev,
		queue:     queue,
		opts:      opts,
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
		textures:  make(map[TextureID]*halTexture),
	}
	if err := d.createLayouts(); err != nil {
		d.Destroy()
		return nil, err
	}
	id, err := d.CreateTexture(TextureDesc{Label: "imrender_no_lut", Width: 1, Height: 1, Depth: 1, Format: FormatRGBA16})
	if err != nil {
		d.Destroy()
		return nil, err
	}
	d.noLUT = id
	return d, nil
}

func (d *HALDevice) createLayouts() error {
	var err error
	d.uniformLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "imrender_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:             gputypes.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   UniformSize,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("gpu: create uniform layout: %w", err)
	}
	d.textureLayout, err = d.createSampledLayout("imrender_texture_layout", gputypes.TextureViewDimension2D)
	if err != nil {
		return err
	}
	d.lutLayout, err = d.createSampledLayout("imrender_lut_layout", gputypes.TextureViewDimension3D)
	if err != nil {
		return err
	}
	d.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "imrender_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{d.uniformLayout, d.textureLayout, d.lutLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	d.sampler, err = d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "imrender_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("gpu: create sampler: %w", err)
	}
	return nil
}

func (d *HALDevice) createSampledLayout(label string, dim gputypes.TextureViewDimension) (hal.BindGroupLayout, error) {
	l, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: dim,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	return l, nil
}

// CompileProgram replaces the shader module. Pipelines are rebuilt on
// demand.
func (d *HALDevice) CompileProgram(p Program) error {
	src := hal.ShaderSource{WGSL: p.Source}
	if d.opts.UseSPIRV {
		code, err := compileSPIRV(p.Source)
		if err != nil {
			return err
		}
		src = hal.ShaderSource{SPIRV: code}
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: p.Label, Source: src})
	if err != nil {
		return fmt.Errorf("gpu: create shader module: %w", err)
	}
	d.destroyPipelines()
	if d.shader != nil {
		d.device.DestroyShaderModule(d.shader)
	}
	d.shader = module
	logger.Load().Debug("gpu: program compiled", "label", p.Label, "spirv", d.opts.UseSPIRV, "bytes", len(p.Source))
	return nil
}

func (d *HALDevice) pipeline(key pipelineKey) (hal.RenderPipeline, error) {
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}
	blend := key.blend.state()
	p, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("imrender_%s_%x_%d", key.blend, uint8(key.mask), key.topology),
		Layout: d.pipeLayout,
		Vertex: hal.VertexState{
			Module:     d.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     d.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    d.opts.TargetFormat,
				Blend:     &blend,
				WriteMask: key.mask.writeMask(),
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: key.topology.gpuTopology(),
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create pipeline: %w", err)
	}
	d.pipelines[key] = p
	return p, nil
}

func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: VertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatUnorm16x2, Offset: 8, ShaderLocation: 1},
		},
	}}
}

// CreateTexture allocates a sampled texture and its bind group.
func (d *HALDevice) CreateTexture(desc TextureDesc) (TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("gpu: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	depth := max(desc.Depth, 1)
	dim, viewDim, layout := gputypes.TextureDimension2D, gputypes.TextureViewDimension2D, d.textureLayout
	if depth > 1 || desc.Format == FormatRGBA16 {
		dim, viewDim, layout = gputypes.TextureDimension3D, gputypes.TextureViewDimension3D, d.lutLayout
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: uint32(depth)},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     dim,
		Format:        desc.Format.gpuFormat(),
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("gpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          desc.Format.gpuFormat(),
		Dimension:       viewDim,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return 0, fmt.Errorf("gpu: create texture view %q: %w", desc.Label, err)
	}
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: d.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		d.device.DestroyTextureView(view)
		d.device.DestroyTexture(tex)
		return 0, fmt.Errorf("gpu: create texture bind group %q: %w", desc.Label, err)
	}
	d.nextID++
	d.textures[d.nextID] = &halTexture{desc: desc, tex: tex, view: view, group: group}
	return d.nextID, nil
}

// WriteTexture uploads tightly packed texels into a region.
func (d *HALDevice) WriteTexture(id TextureID, r Region, data []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	depth := max(r.Depth, 1)
	bpp := t.desc.Format.BytesPerPixel()
	return d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture: t.tex,
			Origin:  hal.Origin3D{X: uint32(r.X), Y: uint32(r.Y), Z: uint32(r.Z)},
			Aspect:  gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{BytesPerRow: uint32(r.Width * bpp), RowsPerImage: uint32(r.Height)},
		&hal.Extent3D{Width: uint32(r.Width), Height: uint32(r.Height), DepthOrArrayLayers: uint32(depth)},
	)
}

// DestroyTexture releases a texture. Unknown ids are ignored.
func (d *HALDevice) DestroyTexture(id TextureID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	delete(d.textures, id)
	d.device.DestroyBindGroup(t.group)
	d.device.DestroyTextureView(t.view)
	d.device.DestroyTexture(t.tex)
}

// SetTarget renders into view instead of the internal offscreen texture.
// Pass nil to go back to the offscreen target.
func (d *HALDevice) SetTarget(view hal.TextureView) { d.externalView = view }

// Target returns the offscreen target texture of the last pass.
func (d *HALDevice) Target() hal.Texture { return d.target }

func (d *HALDevice) BeginPass(width, height int, clear [4]float32) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: invalid viewport %dx%d", width, height)
	}
	d.inPass = true
	d.width, d.height = width, height
	d.clear = clear
	d.vertices = d.vertices[:0]
	d.uniforms = d.uniforms[:0]
	d.draws = d.draws[:0]
	d.state = drawState{
		blend:   BlendNormal,
		mask:    MaskAll,
		scissor: image.Rect(0, 0, width, height),
		lut:     d.noLUT,
	}
	return nil
}

func (d *HALDevice) UploadVertices(data []byte) error {
	if !d.inPass {
		return ErrNotInPass
	}
	d.vertices = append(d.vertices[:0], data...)
	return nil
}

func (d *HALDevice) SetBlend(b BlendMode)         { d.state.blend = b }
func (d *HALDevice) SetColorMask(m ColorMask)     { d.state.mask = m }
func (d *HALDevice) SetScissor(r image.Rectangle) { d.state.scissor = r }
func (d *HALDevice) BindTexture(id TextureID)     { d.state.texture = id }

func (d *HALDevice) BindLUT(id TextureID) {
	if id == 0 {
		id = d.noLUT
	}
	d.state.lut = id
}

func (d *HALDevice) SetUniforms(u *Uniforms) {
	for len(d.uniforms)%uniformAlign != 0 {
		d.uniforms = append(d.uniforms, 0)
	}
	d.state.uniforms = uint32(len(d.uniforms))
	d.uniforms = u.AppendBytes(d.uniforms)
}

func (d *HALDevice) Draw(t Topology, first, count int) {
	if !d.inPass || count <= 0 {
		return
	}
	d.draws = append(d.draws, drawCmd{drawState: d.state, topology: t, first: uint32(first), count: uint32(count)})
}

// EndPass encodes and submits the collected draws, then waits for the
// queue to drain.
func (d *HALDevice) EndPass() error {
	if !d.inPass {
		return ErrNotInPass
	}
	d.inPass = false
	if d.shader == nil {
		return ErrNoProgram
	}
	view, err := d.ensureTarget()
	if err != nil {
		return err
	}
	if len(d.uniforms) == 0 {
		d.uniforms = make([]byte, UniformSize)
	}
	if err := d.ensureBuffers(); err != nil {
		return err
	}
	if len(d.vertices) > 0 {
		if err := d.queue.WriteBuffer(d.vertexBuf, 0, d.vertices); err != nil {
			return fmt.Errorf("gpu: write vertices: %w", err)
		}
	}
	if err := d.queue.WriteBuffer(d.uniformBuf, 0, d.uniforms); err != nil {
		return fmt.Errorf("gpu: write uniforms: %w", err)
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "imrender_encoder"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("imrender_frame"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "imrender_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(d.clear[0]), G: float64(d.clear[1]),
				B: float64(d.clear[2]), A: float64(d.clear[3]),
			},
		}},
	})
	if err := d.encodeDraws(rp); err != nil {
		rp.End()
		encoder.DiscardEncoding()
		return err
	}
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmd)
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("gpu: wait idle: %w", err)
	}
	return nil
}

func (d *HALDevice) encodeDraws(rp hal.RenderPassEncoder) error {
	rp.SetViewport(0, 0, float32(d.width), float32(d.height), 0, 1)
	rp.SetVertexBuffer(0, d.vertexBuf, 0)
	bounds := image.Rect(0, 0, d.width, d.height)

	var current hal.RenderPipeline
	for _, dc := range d.draws {
		p, err := d.pipeline(pipelineKey{blend: dc.blend, mask: dc.mask, topology: dc.topology})
		if err != nil {
			return err
		}
		if p != current {
			rp.SetPipeline(p)
			current = p
		}
		tex, ok := d.textures[dc.texture]
		if !ok {
			logger.Load().Warn("gpu: draw without texture skipped", "texture", dc.texture)
			continue
		}
		lut, ok := d.textures[dc.lut]
		if !ok {
			lut = d.textures[d.noLUT]
		}
		sc := dc.scissor.Intersect(bounds)
		if sc.Empty() {
			continue
		}
		rp.SetBindGroup(0, d.uniformGroup, []uint32{dc.uniforms})
		rp.SetBindGroup(1, tex.group, nil)
		rp.SetBindGroup(2, lut.group, nil)
		rp.SetScissorRect(uint32(sc.Min.X), uint32(sc.Min.Y), uint32(sc.Dx()), uint32(sc.Dy()))
		rp.Draw(dc.count, 1, dc.first, 0)
	}
	return nil
}

func (d *HALDevice) ensureTarget() (hal.TextureView, error) {
	if d.externalView != nil {
		return d.externalView, nil
	}
	if d.target != nil && d.targetW == d.width && d.targetH == d.height {
		return d.targetView, nil
	}
	d.destroyTarget()
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "imrender_target",
		Size:          hal.Extent3D{Width: uint32(d.width), Height: uint32(d.height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.opts.TargetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create target: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "imrender_target_view",
		Format:          d.opts.TargetFormat,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create target view: %w", err)
	}
	d.target, d.targetView = tex, view
	d.targetW, d.targetH = d.width, d.height
	return view, nil
}

// ensureBuffers grows the vertex and uniform buffers to fit this pass.
func (d *HALDevice) ensureBuffers() error {
	need := uint64(max(len(d.vertices), VertexSize))
	if d.vertexBuf == nil || d.vertexCap < need {
		if d.vertexBuf != nil {
			d.device.DestroyBuffer(d.vertexBuf)
		}
		size := growSize(need)
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "imrender_vertices",
			Size:  size,
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			d.vertexBuf, d.vertexCap = nil, 0
			return fmt.Errorf("gpu: create vertex buffer: %w", err)
		}
		d.vertexBuf, d.vertexCap = buf, size
	}

	need = uint64(len(d.uniforms))
	if d.uniformBuf == nil || d.uniformCap < need {
		if d.uniformGroup != nil {
			d.device.DestroyBindGroup(d.uniformGroup)
			d.uniformGroup = nil
		}
		if d.uniformBuf != nil {
			d.device.DestroyBuffer(d.uniformBuf)
		}
		size := growSize(need)
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "imrender_uniforms",
			Size:  size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			d.uniformBuf, d.uniformCap = nil, 0
			return fmt.Errorf("gpu: create uniform buffer: %w", err)
		}
		d.uniformBuf, d.uniformCap = buf, size
		d.uniformGroup, err = d.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "imrender_uniform_group",
			Layout: d.uniformLayout,
			Entries: []gputypes.BindGroupEntry{{
				Binding:  0,
				Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: UniformSize},
			}},
		})
		if err != nil {
			return fmt.Errorf("gpu: create uniform bind group: %w", err)
		}
	}
	return nil
}

// growSize rounds n up to a power of two, at least 4 KiB.
func growSize(n uint64) uint64 {
	size := uint64(4096)
	for size < n {
		size *= 2
	}
	return size
}

func (d *HALDevice) destroyTarget() {
	if d.targetView != nil {
		d.device.DestroyTextureView(d.targetView)
		d.targetView = nil
	}
	if d.target != nil {
		d.device.DestroyTexture(d.target)
		d.target = nil
	}
}

func (d *HALDevice) destroyPipelines() {
	for k, p := range d.pipelines {
		d.device.DestroyRenderPipeline(p)
		delete(d.pipelines, k)
	}
}

// Destroy releases every GPU object owned by the device. The hal device
// itself belongs to the host and is left alone.
func (d *HALDevice) Destroy() {
	d.destroyPipelines()
	for id := range d.textures {
		d.DestroyTexture(id)
	}
	d.destroyTarget()
	if d.uniformGroup != nil {
		d.device.DestroyBindGroup(d.uniformGroup)
		d.uniformGroup = nil
	}
	if d.uniformBuf != nil {
		d.device.DestroyBuffer(d.uniformBuf)
		d.uniformBuf = nil
	}
	if d.vertexBuf != nil {
		d.device.DestroyBuffer(d.vertexBuf)
		d.vertexBuf = nil
	}
	if d.shader != nil {
		d.device.DestroyShaderModule(d.shader)
		d.shader = nil
	}
	if d.sampler != nil {
		d.device.DestroySampler(d.sampler)
		d.sampler = nil
	}
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	for _, l := range []hal.BindGroupLayout{d.uniformLayout, d.textureLayout, d.lutLayout} {
		if l != nil {
			d.device.DestroyBindGroupLayout(l)
		}
	}
	d.uniformLayout, d.textureLayout, d.lutLayout = nil, nil, nil
}
