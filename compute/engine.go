// Package compute implements the forward kernels that evaluate a tensor's
// value from its parents'. A graph.ComputeGraph drives an Engine by
// calling Forward on each node in topological order; the engine itself
// holds no graph state.
package compute

import (
	"context"

	"github.com/wgtensor/wgtensor/numeric"
	"github.com/wgtensor/wgtensor/tensor"
)

// Engine evaluates the forward kernels of the op catalogue (§4.1) for
// element type T. Every method writes its result into dst's existing
// buffer rather than allocating one; dst has already been shaped by the
// tensor package's op constructors.
type Engine[T tensor.Numeric] interface {
	// Ops exposes the underlying arithmetic primitives, e.g. for callers
	// that need to synthesise constants (learning rates, seeds).
	Ops() numeric.Arithmetic[T]

	Add(ctx context.Context, dst, a, b *tensor.Tensor[T]) error
	Sub(ctx context.Context, dst, a, b *tensor.Tensor[T]) error
	Mul(ctx context.Context, dst, a, b *tensor.Tensor[T]) error
	Div(ctx context.Context, dst, a, b *tensor.Tensor[T]) error
	Scale(ctx context.Context, dst, a, scalar *tensor.Tensor[T]) error

	Sqr(ctx context.Context, dst, a *tensor.Tensor[T]) error
	Sqrt(ctx context.Context, dst, a *tensor.Tensor[T]) error
	Abs(ctx context.Context, dst, a *tensor.Tensor[T]) error
	Sgn(ctx context.Context, dst, a *tensor.Tensor[T]) error
	Neg(ctx context.Context, dst, a *tensor.Tensor[T]) error
	Step(ctx context.Context, dst, a *tensor.Tensor[T]) error
	ReLU(ctx context.Context, dst, a *tensor.Tensor[T]) error
	GELU(ctx context.Context, dst, a *tensor.Tensor[T]) error

	Sum(ctx context.Context, dst, a *tensor.Tensor[T]) error
	Mean(ctx context.Context, dst, a *tensor.Tensor[T]) error

	Repeat(ctx context.Context, dst, a *tensor.Tensor[T]) error
	Dup(ctx context.Context, dst, a *tensor.Tensor[T]) error
	Cpy(ctx context.Context, dst, a *tensor.Tensor[T]) error

	MatMul(ctx context.Context, dst, a, b *tensor.Tensor[T], trans0, trans1 bool) error

	// Forward dispatches on t.Op() and evaluates t's value into t.Data()
	// from its already-evaluated parents. Leaves (OpNone) and views
	// (reshape/transpose/view, which already share their producer's
	// buffer) are no-ops. Norm and any other unimplemented op panic
	// naming the op's symbol (§7, §9).
	Forward(ctx context.Context, t *tensor.Tensor[T]) error
}
