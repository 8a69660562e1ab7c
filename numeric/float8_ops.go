package numeric

import (
	"math"

	"github.com/zerfoo/float8"
)

// Float8Ops provides the implementation of the Arithmetic interface for the float8.Float8 type.
type Float8Ops struct{}

// Add performs element-wise addition.
func (ops Float8Ops) Add(a, b float8.Float8) float8.Float8 { return float8.Add(a, b) }

// Sub performs element-wise subtraction.
func (ops Float8Ops) Sub(a, b float8.Float8) float8.Float8 { return float8.Sub(a, b) }

// Mul performs element-wise multiplication.
func (ops Float8Ops) Mul(a, b float8.Float8) float8.Float8 { return float8.Mul(a, b) }

// Div performs element-wise division.
func (ops Float8Ops) Div(a, b float8.Float8) float8.Float8 { return float8.Div(a, b) }

// Tanh computes the hyperbolic tangent of x.
func (ops Float8Ops) Tanh(x float8.Float8) float8.Float8 {
	f32 := x.ToFloat32()

	return float8.ToFloat8(float32(math.Tanh(float64(f32))))
}

// ReLU computes the Rectified Linear Unit function.
func (ops Float8Ops) ReLU(x float8.Float8) float8.Float8 {
	if x.ToFloat32() > 0 {
		return x
	}

	return float8.ToFloat8(0.0)
}

// Sgn returns the sign of x: -1, 0, or 1.
func (ops Float8Ops) Sgn(x float8.Float8) float8.Float8 {
	f := x.ToFloat32()

	switch {
	case f > 0:
		return float8.ToFloat8(1.0)
	case f < 0:
		return float8.ToFloat8(-1.0)
	default:
		return float8.ToFloat8(0.0)
	}
}

// Step returns the Heaviside step of x.
func (ops Float8Ops) Step(x float8.Float8) float8.Float8 {
	if x.ToFloat32() > 0 {
		return float8.ToFloat8(1.0)
	}

	return float8.ToFloat8(0.0)
}

// FromFloat32 converts a float32 to a float8.Float8.
func (ops Float8Ops) FromFloat32(f float32) float8.Float8 {
	return float8.ToFloat8(f)
}

// FromFloat64 converts a float64 to a float8.Float8.
func (ops Float8Ops) FromFloat64(f float64) float8.Float8 {
	return float8.FromFloat64(f)
}

// IsZero checks if the given float8.Float8 value is zero.
func (ops Float8Ops) IsZero(v float8.Float8) bool {
	return v.IsZero()
}

// Abs computes the absolute value of x.
func (ops Float8Ops) Abs(x float8.Float8) float8.Float8 {
	if x.ToFloat32() < 0 {
		return float8.ToFloat8(-x.ToFloat32())
	}

	return x
}

// Sqrt computes the square root of x.
func (ops Float8Ops) Sqrt(x float8.Float8) float8.Float8 {
	return float8.ToFloat8(float32(math.Sqrt(float64(x.ToFloat32()))))
}

// Sum computes the sum of elements in a slice.
func (ops Float8Ops) Sum(s []float8.Float8) float8.Float8 {
	var sum float8.Float8
	for _, v := range s {
		sum = float8.Add(sum, v)
	}

	return sum
}

// GreaterThan checks if a is greater than b.
func (ops Float8Ops) GreaterThan(a, b float8.Float8) bool {
	return a.ToFloat32() > b.ToFloat32()
}

// One returns a float8.Float8 with value 1.
func (ops Float8Ops) One() float8.Float8 {
	return float8.ToFloat8(1.0)
}
