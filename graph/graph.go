// Package graph implements ComputeGraph, the orchestration layer that
// turns a DAG of tensor.Tensor op-constructor calls into an ordered,
// evaluable plan: BuildForward linearises the reachable graph,
// BuildBackward wires adjoint expressions via internal/autodiff, and
// Compute drives a compute.Engine over the result (§4.2).
package graph

import (
	"context"
	"fmt"

	"github.com/wgtensor/wgtensor/arena"
	"github.com/wgtensor/wgtensor/compute"
	"github.com/wgtensor/wgtensor/internal/autodiff"
	"github.com/wgtensor/wgtensor/numeric"
	"github.com/wgtensor/wgtensor/tensor"
)

// ComputeGraph owns every node and leaf tensor reachable from the roots
// it has been built from and drives their evaluation. The zero value is
// not usable; construct with New.
type ComputeGraph[T tensor.Numeric] struct {
	alloc  arena.Allocator
	engine compute.Engine[T]
	ops    numeric.Arithmetic[T]

	nodes   []*tensor.Tensor[T]
	leaves  []*tensor.Tensor[T]
	grads   []*tensor.Tensor[T]
	scratch []*tensor.Tensor[T]

	seen map[*tensor.Tensor[T]]struct{}

	builtForward  bool
	builtBackward bool
}

// New creates an empty graph owning no tensors yet; both built-flags are
// false.
func New[T tensor.Numeric](alloc arena.Allocator, engine compute.Engine[T]) *ComputeGraph[T] {
	return &ComputeGraph[T]{
		alloc:  alloc,
		engine: engine,
		ops:    engine.Ops(),
		seen:   make(map[*tensor.Tensor[T]]struct{}),
	}
}

// Nodes returns the topologically ordered, non-leaf tensors built so far.
func (g *ComputeGraph[T]) Nodes() []*tensor.Tensor[T] { return g.nodes }

// Leaves returns the pure-input tensors discovered so far.
func (g *ComputeGraph[T]) Leaves() []*tensor.Tensor[T] { return g.leaves }

// BuiltForward reports whether BuildForward has run at least once.
func (g *ComputeGraph[T]) BuiltForward() bool { return g.builtForward }

// BuiltBackward reports whether BuildBackward has run.
func (g *ComputeGraph[T]) BuiltBackward() bool { return g.builtBackward }

// BuildForward performs a depth-first post-order traversal over root's
// src0, src1, and non-nil opt parents, appending each newly discovered
// tensor to leaves or nodes (§4.2). Idempotent across repeated calls with
// the same or additional roots; already-visited tensors are skipped by
// identity (P5).
func (g *ComputeGraph[T]) BuildForward(root *tensor.Tensor[T]) {
	g.visit(root)
	g.builtForward = true
}

func (g *ComputeGraph[T]) visit(t *tensor.Tensor[T]) {
	if t == nil {
		return
	}

	if _, ok := g.seen[t]; ok {
		return
	}

	g.seen[t] = struct{}{}

	g.visit(t.Src0())
	g.visit(t.Src1())

	for i := 0; i < tensor.MaxOpt; i++ {
		g.visit(t.Opt(i))
	}

	if t.Op() == tensor.OpNone && t.Grad() == nil {
		g.leaves = append(g.leaves, t)
		return
	}

	g.nodes = append(g.nodes, t)
	g.grads = append(g.grads, t.Grad())
}

// BuildBackward walks nodes in reverse, dispatching each op's backward
// rule (§4.4) for every node that both has an op (is not a bare leaf
// masquerading as a node, e.g. a parameter) and a non-nil grad — the
// adjoint seed must already be present on the root before this is
// called. It then walks nodes in reverse again and, for every parameter,
// calls BuildForward on that parameter's (possibly now re-homed) grad
// tensor so the adjoint expressions become part of the plan; a re-homed
// original accumulator is retained in scratch. Finally it calls
// ResetGrads.
func (g *ComputeGraph[T]) BuildBackward(keep bool) error {
	if len(g.nodes) == 0 {
		return fmt.Errorf("graph: BuildBackward requires a non-empty node list; call BuildForward first")
	}

	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := g.nodes[i]
		if n.Grad() == nil || n.Op() == tensor.OpNone {
			continue
		}

		if err := autodiff.Backward(g.ops, n, keep); err != nil {
			return err
		}
	}

	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := g.nodes[i]
		if !n.IsParam() {
			continue
		}

		if original := g.grads[i]; original != nil && original != n.Grad() {
			g.scratch = append(g.scratch, original)
		}

		g.BuildForward(n.Grad())
	}

	g.builtBackward = true
	g.ResetGrads()

	return nil
}

// ResetGrads zeroes every gradient tensor snapshotted in grads at
// insertion time. Idempotent (P6): reset targets the original
// accumulator buffer even if backward later re-homed the node's grad
// field to an adjoint expression.
func (g *ComputeGraph[T]) ResetGrads() {
	zero := g.ops.FromFloat64(0)

	for _, gr := range g.grads {
		if gr == nil {
			continue
		}

		gr.SetAllScalar(zero)
	}
}

// Compute evaluates every tensor in nodes, in order, by dispatching the
// engine's Forward on each. Leaves are never re-evaluated.
func (g *ComputeGraph[T]) Compute(ctx context.Context) error {
	for _, n := range g.nodes {
		if err := g.engine.Forward(ctx, n); err != nil {
			return err
		}
	}

	return nil
}

// Close releases every buffer owned by a tensor this graph has taken
// responsibility for (nodes, leaves, and retained scratch accumulators).
// Views never own their buffer and are skipped. A tensor listed more than
// once (a scratch accumulator is also a leaf) is released once.
func (g *ComputeGraph[T]) Close() error {
	all := make([]*tensor.Tensor[T], 0, len(g.nodes)+len(g.leaves)+len(g.scratch))
	all = append(all, g.nodes...)
	all = append(all, g.leaves...)
	all = append(all, g.scratch...)

	freed := make(map[*tensor.Tensor[T]]struct{}, len(all))

	for _, t := range all {
		if t == nil || !t.DataOwned() {
			continue
		}

		if _, ok := freed[t]; ok {
			continue
		}

		freed[t] = struct{}{}

		if err := arena.FreeSlice[T](g.alloc, t.Data()); err != nil {
			return err
		}
	}

	return nil
}
