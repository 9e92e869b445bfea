package imrender

import (
	_ "embed"
	"strings"

	"github.com/gogpu/imrender/color"
)

//go:embed shaders/imrender.wgsl
var shaderTemplate string

// colorSpacePlaceholder marks where the generated color-space functions
// are inserted.
const colorSpacePlaceholder = "//@color_spaces"

// shaderSource assembles the program for the cached color spaces.
func shaderSource(spaces *color.SpaceCache) string {
	return strings.Replace(shaderTemplate, colorSpacePlaceholder, spaces.ShaderSource(), 1)
}
