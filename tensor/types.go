package tensor

import (
	"github.com/zerfoo/float16"
	"github.com/zerfoo/float8"
)

// Numeric enumerates the scalar element types a Tensor may hold. The
// reference engine is defined over f32; this module generalises to any
// field the numeric package supplies Arithmetic for.
type Numeric interface {
	float32 | float64 | float16.Float16 | float8.Float8
}
