package numeric

import "math"

// Float32Ops provides the implementation of the Arithmetic interface for the float32 type.
type Float32Ops struct{}

// Add performs element-wise addition.
func (ops Float32Ops) Add(a, b float32) float32 { return a + b }

// Sub performs element-wise subtraction.
func (ops Float32Ops) Sub(a, b float32) float32 { return a - b }

// Mul performs element-wise multiplication.
func (ops Float32Ops) Mul(a, b float32) float32 { return a * b }

// Div performs element-wise division.
func (ops Float32Ops) Div(a, b float32) float32 {
	if b == 0 {
		return 0 // Avoid NaN
	}

	return a / b
}

// Tanh computes the hyperbolic tangent of x.
func (ops Float32Ops) Tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

// ReLU computes the Rectified Linear Unit function.
func (ops Float32Ops) ReLU(x float32) float32 {
	if x > 0 {
		return x
	}

	return 0
}

// Sgn returns the sign of x: -1, 0, or 1.
func (ops Float32Ops) Sgn(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Step returns the Heaviside step of x.
func (ops Float32Ops) Step(x float32) float32 {
	if x > 0 {
		return 1
	}

	return 0
}

// FromFloat32 converts a float32 to a float32.
func (ops Float32Ops) FromFloat32(f float32) float32 {
	return f
}

// FromFloat64 converts a float64 to a float32.
func (ops Float32Ops) FromFloat64(f float64) float32 {
	return float32(f)
}

// IsZero checks if the given float32 value is zero.
func (ops Float32Ops) IsZero(v float32) bool {
	return v == 0
}

// Abs computes the absolute value of x.
func (ops Float32Ops) Abs(x float32) float32 {
	if x < 0 {
		return -x
	}

	return x
}

// Sum computes the sum of elements in a slice.
func (ops Float32Ops) Sum(s []float32) float32 {
	var sum float32
	for _, v := range s {
		sum += v
	}

	return sum
}

// Sqrt computes the square root of x.
func (ops Float32Ops) Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// GreaterThan checks if a is greater than b.
func (ops Float32Ops) GreaterThan(a, b float32) bool {
	return a > b
}

// One returns a float32 with value 1.
func (ops Float32Ops) One() float32 {
	return 1.0
}

// Float64Ops provides the implementation of the Arithmetic interface for the float64 type.
type Float64Ops struct{}

// Add performs element-wise addition.
func (ops Float64Ops) Add(a, b float64) float64 { return a + b }

// Sub performs element-wise subtraction.
func (ops Float64Ops) Sub(a, b float64) float64 { return a - b }

// Mul performs element-wise multiplication.
func (ops Float64Ops) Mul(a, b float64) float64 { return a * b }

// Div performs element-wise division.
func (ops Float64Ops) Div(a, b float64) float64 {
	if b == 0 {
		return 0 // Avoid NaN
	}

	return a / b
}

// Tanh computes the hyperbolic tangent of x.
func (ops Float64Ops) Tanh(x float64) float64 {
	return math.Tanh(x)
}

// ReLU computes the Rectified Linear Unit function.
func (ops Float64Ops) ReLU(x float64) float64 {
	if x > 0 {
		return x
	}

	return 0
}

// Sgn returns the sign of x: -1, 0, or 1.
func (ops Float64Ops) Sgn(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Step returns the Heaviside step of x.
func (ops Float64Ops) Step(x float64) float64 {
	if x > 0 {
		return 1
	}

	return 0
}

// FromFloat32 converts a float32 to a float64.
func (ops Float64Ops) FromFloat32(f float32) float64 {
	return float64(f)
}

// FromFloat64 converts a float64 to a float64.
func (ops Float64Ops) FromFloat64(f float64) float64 {
	return f
}

// IsZero checks if the given float64 value is zero.
func (ops Float64Ops) IsZero(v float64) bool {
	return v == 0
}

// Abs computes the absolute value of x.
func (ops Float64Ops) Abs(x float64) float64 {
	if x < 0 {
		return -x
	}

	return x
}

// Sum computes the sum of elements in a slice.
func (ops Float64Ops) Sum(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}

	return sum
}

// Sqrt computes the square root of x.
func (ops Float64Ops) Sqrt(x float64) float64 {
	return math.Sqrt(x)
}

// GreaterThan checks if a is greater than b.
func (ops Float64Ops) GreaterThan(a, b float64) bool {
	return a > b
}

// One returns a float64 with value 1.
func (ops Float64Ops) One() float64 {
	return 1.0
}
