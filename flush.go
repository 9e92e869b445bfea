package imrender

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/imrender/gpu"
)

// EndFrame replays the recorded primitives on the device and ends the
// frame. Primitives are drawn in recording order, one draw each (three
// for LCD text); scissor, blend mode, color mask and bindings are only
// set when they change. After the pass the dynamic-texture and
// color-space caches are trimmed to their limits.
func (r *Renderer) EndFrame() (FrameStats, error) {
	if r.phase != phaseRecording {
		return FrameStats{}, ErrNotRecording
	}
	r.phase = phaseFlushing
	defer func() { r.phase = phaseIdle }()

	stats := FrameStats{
		Vertices:   len(r.vertices),
		Primitives: len(r.prims),
		Culled:     r.culled,
	}
	if err := r.ensureProgram(); err != nil {
		return stats, err
	}
	if err := r.ensureLUTs(); err != nil {
		return stats, err
	}
	if err := r.dev.BeginPass(r.viewport.X, r.viewport.Y, r.cfg.ClearColor); err != nil {
		return stats, fmt.Errorf("imrender: begin pass: %w", err)
	}
	if len(r.vertices) > 0 {
		r.encoded = gpu.AppendVertices(r.encoded[:0], r.vertices)
		if err := r.dev.UploadVertices(r.encoded); err != nil {
			return stats, errors.Join(fmt.Errorf("imrender: upload vertices: %w", err), r.dev.EndPass())
		}
	}
	r.replay(&stats)
	if err := r.dev.EndPass(); err != nil {
		return stats, fmt.Errorf("imrender: end pass: %w", err)
	}

	r.janitor()
	r.prims = r.prims[:0]
	r.encoded = r.encoded[:0]
	Logger().Debug("imrender: frame",
		"primitives", stats.Primitives,
		"draws", stats.DrawCalls,
		"vertices", stats.Vertices,
		"culled", stats.Culled)
	return stats, nil
}

// ensureProgram compiles the shader on first use and whenever the set of
// cached color spaces has changed.
func (r *Renderer) ensureProgram() error {
	gen := r.spaces.Generation()
	if r.compiled && gen == r.programGen {
		return nil
	}
	if err := r.dev.CompileProgram(gpu.Program{Label: "imrender", Source: shaderSource(r.spaces)}); err != nil {
		return fmt.Errorf("imrender: compile program: %w", err)
	}
	r.compiled = true
	r.programGen = gen
	Logger().Info("imrender: program compiled", "color_spaces", r.spaces.Len())
	return nil
}

// ensureLUTs uploads the LUTs used this frame before the pass starts.
func (r *Renderer) ensureLUTs() error {
	for i := range r.prims {
		p := &r.prims[i]
		if p.kind != kindImage || p.image.space == 0 {
			continue
		}
		if _, err := r.lutTexture(p.image.space); err != nil {
			return fmt.Errorf("imrender: upload color space LUT: %w", err)
		}
	}
	return nil
}

// bound is the device state the replay loop has set so far.
type bound struct {
	scissor image.Rectangle
	blend   gpu.BlendMode
	mask    gpu.ColorMask
	texture gpu.TextureID
	lut     gpu.TextureID
}

func (r *Renderer) replay(stats *FrameStats) {
	cur := bound{
		scissor: r.viewportRect(),
		blend:   gpu.BlendNormal,
		mask:    gpu.MaskAll,
	}
	setMask := func(m gpu.ColorMask) {
		if m != cur.mask {
			r.dev.SetColorMask(m)
			cur.mask = m
			stats.MaskChanges++
		}
	}
	draw := func(p *primitive, u *gpu.Uniforms) {
		r.dev.SetUniforms(u)
		r.dev.Draw(p.topology, p.first, p.count)
		stats.DrawCalls++
	}

	for i := range r.prims {
		p := &r.prims[i]
		if p.scissor != cur.scissor {
			r.dev.SetScissor(p.scissor)
			cur.scissor = p.scissor
			stats.ScissorChanges++
		}
		if p.blend != cur.blend {
			r.dev.SetBlend(p.blend)
			cur.blend = p.blend
			stats.BlendChanges++
		}
		if p.texture != cur.texture {
			r.dev.BindTexture(p.texture)
			cur.texture = p.texture
			stats.TextureBinds++
		}
		var lut gpu.TextureID
		if p.kind == kindImage {
			lut = r.luts[p.image.space]
		}
		if lut != cur.lut {
			r.dev.BindLUT(lut)
			cur.lut = lut
			stats.LUTBinds++
		}

		u := p.uniforms(r.viewport)
		if p.kind == kindText && p.lcd {
			for ch, m := range lcdPasses {
				setMask(m)
				u.Channel = uint32(ch)
				draw(p, &u)
			}
			continue
		}
		setMask(gpu.MaskAll)
		draw(p, &u)
	}
}

// janitor trims the per-frame caches, oldest-inserted first.
func (r *Renderer) janitor() {
	if n := r.dynamic.Trim(r.cfg.DynamicTextureCacheMax); n > 0 {
		Logger().Debug("imrender: dynamic textures trimmed", "evicted", n)
	}
	if n := r.spaces.Trim(r.cfg.ColorSpaceCacheMax); n > 0 {
		Logger().Debug("imrender: color spaces trimmed", "evicted", n)
	}
}
