package optimizer

import (
	"context"

	"github.com/wgtensor/wgtensor/tensor"
)

// Optimizer defines the interface for optimization algorithms driving a
// compute graph's trainable parameters (those with IsParam() true, i.e.
// carrying a non-nil Grad()). Step reads each parameter's current grad
// and updates its value in place; callers are responsible for running
// graph.Compute beforehand (so grads hold this step's values) and
// graph.ResetGrads afterward.
type Optimizer[T tensor.Numeric] interface {
	Step(ctx context.Context, params []*tensor.Tensor[T]) error
	Clip(ctx context.Context, params []*tensor.Tensor[T], threshold float32)
}
