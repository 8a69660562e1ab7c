// Package optimizer provides parameter-update algorithms that run after
// a compute graph's backward pass has populated its parameters' grads.
package optimizer

import (
	"context"

	"github.com/zerfoo/float16"
	"github.com/zerfoo/float8"
	"github.com/wgtensor/wgtensor/numeric"
	"github.com/wgtensor/wgtensor/tensor"
)

// SGD implements plain (non-momentum) stochastic gradient descent:
// value -= learningRate * grad, applied per element directly on each
// parameter's buffer.
type SGD[T tensor.Numeric] struct {
	ops          numeric.Arithmetic[T]
	learningRate T
}

// NewSGD creates an SGD optimizer with the given learning rate.
func NewSGD[T tensor.Numeric](ops numeric.Arithmetic[T], learningRate float32) *SGD[T] {
	return &SGD[T]{
		ops:          ops,
		learningRate: ops.FromFloat32(learningRate),
	}
}

// Step subtracts learningRate*grad from each parameter's value in place.
// Parameters with a nil grad (never touched by a backward pass) are
// skipped.
func (s *SGD[T]) Step(_ context.Context, params []*tensor.Tensor[T]) error {
	for _, p := range params {
		g := p.Grad()
		if g == nil {
			continue
		}

		value := p.Data()
		grad := g.Data()

		for i := range value {
			value[i] = s.ops.Sub(value[i], s.ops.Mul(s.learningRate, grad[i]))
		}
	}

	return nil
}

// Clip clamps every parameter's grad to [-threshold, threshold] in
// place. float32 and float64 grads compare natively; the narrow float
// types compare via each element's float32 projection, since they have
// no native ordering.
func (s *SGD[T]) Clip(_ context.Context, params []*tensor.Tensor[T], threshold float32) {
	for _, p := range params {
		g := p.Grad()
		if g == nil {
			continue
		}

		grad := g.Data()
		for i, v := range grad {
			grad[i] = s.clipOne(v, threshold)
		}
	}
}

func (s *SGD[T]) clipOne(v T, threshold float32) T {
	switch g := any(v).(type) {
	case float32:
		if g > threshold {
			return any(threshold).(T)
		}

		if g < -threshold {
			return any(-threshold).(T)
		}
	case float64:
		if g > float64(threshold) {
			return any(float64(threshold)).(T)
		}

		if g < -float64(threshold) {
			return any(-float64(threshold)).(T)
		}
	case float16.Float16:
		f := g.ToFloat32()
		if f > threshold {
			return any(s.ops.FromFloat32(threshold)).(T)
		}

		if f < -threshold {
			return any(s.ops.FromFloat32(-threshold)).(T)
		}
	case float8.Float8:
		f := g.ToFloat32()
		if f > threshold {
			return any(s.ops.FromFloat32(threshold)).(T)
		}

		if f < -threshold {
			return any(s.ops.FromFloat32(-threshold)).(T)
		}
	}

	return v
}
