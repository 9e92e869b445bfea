// Package color builds the numeric color transforms applied by the image
// shader: brightness/contrast/saturation matrices, exposure with a
// logarithmic highlight knee, and 3D lookup tables converting between
// named RGB color spaces.
//
// Matrices are 4x4, row-major, and act on column vectors (r, g, b, 1).
package color

import (
	"log/slog"

	"github.com/gogpu/imrender/internal/logging"
)

var logger logging.Holder

// SetLogger sets the logger used for LUT build failures.
// imrender.SetLogger calls this for you.
func SetLogger(l *slog.Logger) { logger.Store(l) }
