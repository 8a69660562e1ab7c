package numeric

import (
	"github.com/zerfoo/float16"
)

// Float16Ops provides the implementation of the Arithmetic interface for the float16.Float16 type.
type Float16Ops struct{}

// Add performs element-wise addition.
func (ops Float16Ops) Add(a, b float16.Float16) float16.Float16 {
	res, _ := float16.AddWithMode(a, b, float16.ModeFastArithmetic, float16.RoundNearestEven)

	return res
}

// Sub performs element-wise subtraction.
func (ops Float16Ops) Sub(a, b float16.Float16) float16.Float16 {
	res, _ := float16.SubWithMode(a, b, float16.ModeFastArithmetic, float16.RoundNearestEven)

	return res
}

// Mul performs element-wise multiplication.
func (ops Float16Ops) Mul(a, b float16.Float16) float16.Float16 {
	res, _ := float16.MulWithMode(a, b, float16.ModeFastArithmetic, float16.RoundNearestEven)

	return res
}

// Div performs element-wise division.
func (ops Float16Ops) Div(a, b float16.Float16) float16.Float16 {
	res, _ := float16.DivWithMode(a, b, float16.ModeFastArithmetic, float16.RoundNearestEven)

	return res
}

// Tanh computes the hyperbolic tangent of x.
func (ops Float16Ops) Tanh(x float16.Float16) float16.Float16 {
	return float16.Tanh(x)
}

// ReLU computes the Rectified Linear Unit function.
func (ops Float16Ops) ReLU(x float16.Float16) float16.Float16 {
	if x.ToFloat32() > 0 {
		return x
	}

	return float16.FromFloat32(0)
}

// Sgn returns the sign of x: -1, 0, or 1.
func (ops Float16Ops) Sgn(x float16.Float16) float16.Float16 {
	f := x.ToFloat32()

	switch {
	case f > 0:
		return float16.FromFloat32(1)
	case f < 0:
		return float16.FromFloat32(-1)
	default:
		return float16.FromFloat32(0)
	}
}

// Step returns the Heaviside step of x.
func (ops Float16Ops) Step(x float16.Float16) float16.Float16 {
	if x.ToFloat32() > 0 {
		return float16.FromFloat32(1)
	}

	return float16.FromFloat32(0)
}

// FromFloat32 converts a float32 to a float16.Float16.
func (ops Float16Ops) FromFloat32(f float32) float16.Float16 {
	return float16.FromFloat32(f)
}

// FromFloat64 converts a float64 to a float16.Float16.
func (ops Float16Ops) FromFloat64(f float64) float16.Float16 {
	return float16.FromFloat64(f)
}

// IsZero checks if the given float16.Float16 value is zero.
func (ops Float16Ops) IsZero(v float16.Float16) bool {
	return v.IsZero()
}

// Abs computes the absolute value of x.
func (ops Float16Ops) Abs(x float16.Float16) float16.Float16 {
	return float16.Abs(x)
}

// Sqrt computes the square root of x.
func (ops Float16Ops) Sqrt(x float16.Float16) float16.Float16 {
	return float16.Sqrt(x)
}

// Sum computes the sum of elements in a slice.
func (ops Float16Ops) Sum(s []float16.Float16) float16.Float16 {
	var sum float16.Float16
	for _, v := range s {
		sum, _ = float16.AddWithMode(sum, v, float16.ModeFastArithmetic, float16.RoundNearestEven)
	}

	return sum
}

// GreaterThan checks if a is greater than b.
func (ops Float16Ops) GreaterThan(a, b float16.Float16) bool {
	return a.ToFloat32() > b.ToFloat32()
}

// One returns a float16.Float16 with value 1.
func (ops Float16Ops) One() float16.Float16 {
	return float16.FromFloat32(1)
}
