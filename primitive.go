package imrender

import (
	"image"

	"github.com/gogpu/imrender/color"
	"github.com/gogpu/imrender/gpu"
)

type primitiveKind uint8

const (
	kindSolid primitiveKind = iota
	kindText
	kindImage
	kindShadow
)

func (k primitiveKind) String() string {
	switch k {
	case kindText:
		return "text"
	case kindImage:
		return "image"
	case kindShadow:
		return "shadow"
	}
	return "solid"
}

// imageParams is the processing state captured when an image is drawn.
type imageParams struct {
	fill     bool
	matrix   color.Mat4
	exposure color.Exposure
	opts     ImageOptions
	space    int
}

func (ip *imageParams) apply(u *gpu.Uniforms) {
	if ip.fill {
		u.Mode = gpu.ModeImageFill
		return
	}
	u.Mode = gpu.ModeImage
	u.ColorMatrix = [16]float32(ip.matrix)
	u.Exposure = ip.exposure.Uniforms()
	u.Levels, u.Tone[0] = ip.opts.Levels.Uniforms()
	u.Tone[1] = ip.opts.SoftClip
	u.Tone[2] = ip.exposure.InvGamma()
	u.ColorSpace = uint32(ip.space)
	u.ImageChannel = uint32(ip.opts.Channel)
	u.AlphaMode = uint32(ip.opts.Alpha)
	if ip.opts.Invert {
		u.Flags |= gpu.FlagInvert
	}
	if ip.opts.Levels.Enabled {
		u.Flags |= gpu.FlagLevels
	}
	if ip.exposure.Enabled {
		u.Flags |= gpu.FlagExposure
	}
}

// primitive is one recorded draw. Fields other than the common ones are
// only meaningful for the matching kind.
type primitive struct {
	kind     primitiveKind
	topology gpu.Topology
	first    int
	count    int
	blend    gpu.BlendMode
	scissor  image.Rectangle
	texture  gpu.TextureID
	color    [4]float32

	lcd   bool        // kindText
	image imageParams // kindImage
}

func (p *primitive) uniforms(viewport image.Point) gpu.Uniforms {
	u := gpu.DefaultUniforms()
	u.Viewport = [2]float32{float32(viewport.X), float32(viewport.Y)}
	u.Color = p.color
	switch p.kind {
	case kindSolid:
		u.Mode = gpu.ModeSolid
	case kindText:
		u.Mode = gpu.ModeTextGray
		if p.lcd {
			u.Mode = gpu.ModeTextLCD
		}
	case kindImage:
		p.image.apply(&u)
	case kindShadow:
		u.Mode = gpu.ModeShadow
	}
	return u
}

// lcdPasses are the color masks of the three LCD text draws, indexed by
// coverage channel.
var lcdPasses = [3]gpu.ColorMask{gpu.MaskRed, gpu.MaskGreen, gpu.MaskBlue}
