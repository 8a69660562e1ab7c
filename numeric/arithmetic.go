// Package numeric provides the generic arithmetic primitives the tensor and
// compute packages build on, so that kernels stay agnostic to the concrete
// element type they operate over.
package numeric

// Arithmetic defines a generic interface for all mathematical operations
// required by the compute engine. This allows the engine to be completely
// agnostic to the specific numeric type it is operating on.
type Arithmetic[T any] interface {
	// Basic binary operations
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Div(a, b T) T

	// Tanh computes the hyperbolic tangent, used directly and inside gelu.
	Tanh(x T) T
	// ReLU computes max(x, 0).
	ReLU(x T) T
	// Sgn returns the sign of x: -1, 0, or 1.
	Sgn(x T) T
	// Step returns the Heaviside step of x: 1 if x > 0, else 0.
	Step(x T) T

	// Conversion from standard types
	FromFloat32(f float32) T
	FromFloat64(f float64) T
	One() T

	// IsZero checks if a value is zero.
	IsZero(v T) bool

	// Abs returns the absolute value of x.
	Abs(x T) T
	// Sum returns the sum of all elements in the slice.
	Sum(s []T) T

	// Sqrt returns the square root of x.
	Sqrt(x T) T

	// GreaterThan returns true if a is greater than b.
	GreaterThan(a, b T) bool
}
