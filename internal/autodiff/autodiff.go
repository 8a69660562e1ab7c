// Package autodiff implements the backward rules of §4.4: given a tensor t
// whose grad is already seeded, it constructs the adjoint expressions for
// each of t's parents and wires them into the parents' grad slots. It
// never evaluates anything itself — like the tensor package's op
// constructors, it only builds more graph. A graph.ComputeGraph drives it
// during buildBackward and later runs the resulting nodes through compute.
package autodiff

import (
	"fmt"

	"github.com/wgtensor/wgtensor/numeric"
	"github.com/wgtensor/wgtensor/tensor"
)

// Backward dispatches on t.Op() and wires adjoint contributions into the
// grad slot of each of t.Src0()/t.Src1(). t.Grad() must be non-nil; the
// caller (graph.ComputeGraph.BuildBackward) guarantees this by only
// calling Backward on nodes reached with a non-null grad during its
// reverse walk.
//
// keep selects how a contribution merges into a parent's existing grad:
// false allocates a fresh sum each time Backward runs (ordinary one-shot
// backward pass); true builds a self-aliasing accumulator
// (Tensor.AddInPlace) so that running compute() repeatedly against the
// same built graph keeps adding the same contribution onto the
// accumulator's own buffer, realising P7's K-fold accumulation.
func Backward[T tensor.Numeric](ops numeric.Arithmetic[T], t *tensor.Tensor[T], keep bool) error {
	g := t.Grad()
	p0 := t.Src0()
	p1 := t.Src1()

	switch t.Op() {
	case tensor.OpDup:
		return contribute(p0, g, keep)

	case tensor.OpAdd:
		if err := contribute(p0, g, keep); err != nil {
			return err
		}

		return contribute(p1, g, keep)

	case tensor.OpSub:
		if err := contribute(p0, g, keep); err != nil {
			return err
		}

		negG, err := g.Neg()
		if err != nil {
			return err
		}

		return contribute(p1, negG, keep)

	case tensor.OpMul:
		c0, err := p1.Mul(g)
		if err != nil {
			return err
		}

		if err := contribute(p0, c0, keep); err != nil {
			return err
		}

		c1, err := p0.Mul(g)
		if err != nil {
			return err
		}

		return contribute(p1, c1, keep)

	case tensor.OpDiv:
		c0, err := g.Div(p1)
		if err != nil {
			return err
		}

		if err := contribute(p0, c0, keep); err != nil {
			return err
		}

		p1Sq, err := p1.Mul(p1)
		if err != nil {
			return err
		}

		num, err := p0.Mul(g)
		if err != nil {
			return err
		}

		quotient, err := num.Div(p1Sq)
		if err != nil {
			return err
		}

		c1, err := quotient.Neg()
		if err != nil {
			return err
		}

		return contribute(p1, c1, keep)

	case tensor.OpSqr:
		two, err := tensor.NewScalar[T](p0.Allocator(), ops.FromFloat64(2))
		if err != nil {
			return err
		}

		scaled, err := p0.Scale(two)
		if err != nil {
			return err
		}

		c0, err := scaled.Mul(g)
		if err != nil {
			return err
		}

		return contribute(p0, c0, keep)

	case tensor.OpSum:
		c0, err := g.RepeatTo(p0)
		if err != nil {
			return err
		}

		return contribute(p0, c0, keep)

	case tensor.OpMatMul:
		return backwardMatMul(p0, p1, g, false, false, keep)
	case tensor.OpMatMulT0:
		return backwardMatMul(p0, p1, g, true, false, keep)
	case tensor.OpMatMulT1:
		return backwardMatMul(p0, p1, g, false, true, keep)
	case tensor.OpMatMulT0T1:
		return backwardMatMul(p0, p1, g, true, true, keep)

	default:
		panic(fmt.Sprintf("autodiff: backward unimplemented for op %s", t.Op()))
	}
}

// contribute merges contribution into parent's grad slot: a first
// contribution (parent.Grad() == nil) is adopted directly; a subsequent
// one accumulates via Add or AddInPlace depending on keep. A nil parent
// (e.g. src1 of a unary op) is not a parent at all and is silently
// skipped.
func contribute[T tensor.Numeric](parent, contribution *tensor.Tensor[T], keep bool) error {
	if parent == nil {
		return nil
	}

	acc := parent.Grad()
	if acc == nil {
		parent.SetGrad(contribution)
		return nil
	}

	if keep {
		node, err := acc.AddInPlace(contribution)
		if err != nil {
			return err
		}

		parent.SetGrad(node)

		return nil
	}

	node, err := acc.Add(contribution)
	if err != nil {
		return err
	}

	parent.SetGrad(node)

	return nil
}

// backwardMatMul implements §4.4's matmul family rule for C =
// op(p0,trans0) · op(p1,trans1): dL/dp0 = op(g,trans0) derived via
// g·Bᵀ/Aᵀ·g with the appropriate transpositions threaded through so the
// contribution's shape always matches the corresponding parent's stored
// (untransposed) shape. See DESIGN.md for the per-variant derivation.
func backwardMatMul[T tensor.Numeric](p0, p1, g *tensor.Tensor[T], trans0, trans1 bool, keep bool) error {
	var c0, c1 *tensor.Tensor[T]

	var err error

	switch {
	case !trans0 && !trans1:
		c0, err = g.MatMul(p1, false, true)
		if err != nil {
			return err
		}

		c1, err = p0.MatMul(g, true, false)
		if err != nil {
			return err
		}
	case trans0 && !trans1:
		c0, err = p1.MatMul(g, false, true)
		if err != nil {
			return err
		}

		c1, err = p0.MatMul(g, false, false)
		if err != nil {
			return err
		}
	case !trans0 && trans1:
		c0, err = g.MatMul(p1, false, false)
		if err != nil {
			return err
		}

		c1, err = g.MatMul(p0, true, false)
		if err != nil {
			return err
		}
	default: // trans0 && trans1
		c0, err = p1.MatMul(g, true, true)
		if err != nil {
			return err
		}

		c1, err = g.MatMul(p0, true, true)
		if err != nil {
			return err
		}
	}

	if err := contribute(p0, c0, keep); err != nil {
		return err
	}

	return contribute(p1, c1, keep)
}
