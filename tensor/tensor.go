// Package tensor implements the value layer of the autodiff engine: dense
// n-dimensional buffers with shape/stride metadata that double as nodes of
// the compute graph (op tag, parent links, optional gradient). Tensor
// itself never computes — op-constructor methods only record the DAG
// edge; evaluation is the job of the compute package, driven by a
// graph.ComputeGraph.
package tensor

import (
	"fmt"

	"github.com/wgtensor/wgtensor/arena"
	"github.com/wgtensor/wgtensor/numeric"
)

// Tensor is a node in the compute graph. It owns or views a contiguous
// scalar buffer and carries shape, op-tag, parent links, an optional
// gradient twin, the is_param flag, and an optional debug name.
type Tensor[T Numeric] struct {
	Shape

	op        Op
	isParam   bool
	grad      *Tensor[T]
	src0      *Tensor[T]
	src1      *Tensor[T]
	opt       [MaxOpt]*Tensor[T]
	name      string
	data      []T
	dataOwned bool

	alloc arena.Allocator
}

// New allocates a fresh, contiguous, zero-initialised leaf tensor of the
// given extents. data_owned is true: the tensor exclusively owns its
// buffer.
func New[T Numeric](alloc arena.Allocator, ne ...int) (*Tensor[T], error) {
	shape := NewShape(ne...)

	data, err := arena.Alloc[T](alloc, shape.NElems())
	if err != nil {
		return nil, fmt.Errorf("tensor: allocate data: %w", err)
	}

	return &Tensor[T]{
		Shape:     shape,
		op:        OpNone,
		data:      data,
		dataOwned: true,
		alloc:     alloc,
	}, nil
}

// NewScalar allocates a rank-1, single-element leaf tensor holding v.
func NewScalar[T Numeric](alloc arena.Allocator, v T) (*Tensor[T], error) {
	t, err := New[T](alloc, 1)
	if err != nil {
		return nil, err
	}

	t.data[0] = v

	return t, nil
}

// NewArange allocates a leaf tensor of the given extents whose elements
// are evenly spaced between start (inclusive) and end (exclusive).
func NewArange[T Numeric](
	alloc arena.Allocator, ops numeric.Arithmetic[T], start, end T, ne ...int,
) (*Tensor[T], error) {
	t, err := New[T](alloc, ne...)
	if err != nil {
		return nil, err
	}

	n := t.NElems()
	if n == 0 {
		return t, nil
	}

	step := ops.Div(ops.Sub(end, start), ops.FromFloat64(float64(n)))
	for i := range t.data {
		t.data[i] = ops.Add(start, ops.Mul(ops.FromFloat64(float64(i)), step))
	}

	return t, nil
}

// RandSource abstracts the uniform [0,1) generator NewRand draws from, so
// callers can supply a seeded source for reproducible tests.
type RandSource interface {
	Float64() float64
}

// NewRand allocates a leaf tensor of the given extents filled with
// uniform random values in [0,1) drawn from rng.
func NewRand[T Numeric](
	alloc arena.Allocator, ops numeric.Arithmetic[T], rng RandSource, ne ...int,
) (*Tensor[T], error) {
	t, err := New[T](alloc, ne...)
	if err != nil {
		return nil, err
	}

	for i := range t.data {
		t.data[i] = ops.FromFloat64(rng.Float64())
	}

	return t, nil
}

// Op returns the tag identifying which kernel produced this tensor.
func (t *Tensor[T]) Op() Op { return t.op }

// SetOp overrides the op tag. The op-constructor methods set the tag when
// they build a tensor and do not call SetOp.
func (t *Tensor[T]) SetOp(op Op) { t.op = op }

// IsParam reports whether this tensor is a trainable parameter.
func (t *Tensor[T]) IsParam() bool { return t.isParam }

// Grad returns the gradient twin accumulating ∂loss/∂self, or nil if this
// tensor does not participate in backprop.
func (t *Tensor[T]) Grad() *Tensor[T] { return t.grad }

// SetGrad replaces the gradient twin. Backward-rule dispatch uses this to
// re-home the accumulator to a freshly constructed adjoint expression.
func (t *Tensor[T]) SetGrad(g *Tensor[T]) { t.grad = g }

// Src0 returns the first parent reference, or nil for a leaf.
func (t *Tensor[T]) Src0() *Tensor[T] { return t.src0 }

// Src1 returns the second parent reference, or nil for unary/nullary ops.
func (t *Tensor[T]) Src1() *Tensor[T] { return t.src1 }

// Opt returns the i'th reserved auxiliary parent reference.
func (t *Tensor[T]) Opt(i int) *Tensor[T] { return t.opt[i] }

// Name returns the optional debug label.
func (t *Tensor[T]) Name() string { return t.name }

// WithName sets the debug label and returns the receiver for chaining.
func (t *Tensor[T]) WithName(name string) *Tensor[T] {
	t.name = name

	return t
}

// Data returns the tensor's underlying scalar buffer. The returned slice
// aliases the tensor's storage; mutating it mutates the tensor.
func (t *Tensor[T]) Data() []T { return t.data }

// DataOwned reports whether this tensor exclusively owns its buffer, as
// opposed to viewing a producer's buffer (view, transpose, reshape, cpy
// output).
func (t *Tensor[T]) DataOwned() bool { return t.dataOwned }

// Allocator returns the allocator this tensor and its descendants draw
// buffers from.
func (t *Tensor[T]) Allocator() arena.Allocator { return t.alloc }

// SetData overwrites the tensor's buffer in place. The new data must have
// exactly NElems() elements; this is a shape-precondition failure,
// fatal per §7, on mismatch.
func (t *Tensor[T]) SetData(data []T) {
	if len(data) != t.NElems() {
		panic(fmt.Sprintf("tensor: SetData expects %d elements, got %d", t.NElems(), len(data)))
	}

	copy(t.data, data)
}

// SetAllScalar sets every element of the tensor's buffer to v.
func (t *Tensor[T]) SetAllScalar(v T) {
	for i := range t.data {
		t.data[i] = v
	}
}

// Get returns the element at the given coordinates, honoring the
// tensor's (possibly non-contiguous) strides.
func (t *Tensor[T]) Get(coords ...int) T {
	return t.data[t.Shape.Get(coords)]
}

// SetParam allocates a zero-initialised gradient twin of identical shape
// and marks the tensor as a trainable parameter (I5: is_param ⇒ grad ≠
// null after setParam).
func (t *Tensor[T]) SetParam() (*Tensor[T], error) {
	g, err := New[T](t.alloc, t.shapeSlice()...)
	if err != nil {
		return nil, fmt.Errorf("tensor: allocate grad for SetParam: %w", err)
	}

	t.isParam = true
	t.grad = g

	return g, nil
}

func (t *Tensor[T]) shapeSlice() []int {
	ne := t.Ne()

	return ne[:t.Rank()]
}

// newResult allocates a fresh owned tensor of the given shape recording
// the op tag and parent links; it never computes values — the buffer
// starts zero-valued and is filled later by the compute package.
func newResult[T Numeric](alloc arena.Allocator, shape Shape, op Op, src0, src1 *Tensor[T]) (*Tensor[T], error) {
	data, err := arena.Alloc[T](alloc, shape.NElems())
	if err != nil {
		return nil, fmt.Errorf("tensor: allocate result for op %s: %w", op, err)
	}

	return &Tensor[T]{
		Shape:     shape,
		op:        op,
		src0:      src0,
		src1:      src1,
		data:      data,
		dataOwned: true,
		alloc:     alloc,
	}, nil
}

// newView returns a tensor that aliases src's buffer with a new shape,
// recording op as its producing tag with a single parent src0=src.
func newView[T Numeric](src *Tensor[T], shape Shape, op Op) *Tensor[T] {
	return &Tensor[T]{
		Shape:     shape,
		op:        op,
		src0:      src,
		data:      src.data,
		dataOwned: false,
		alloc:     src.alloc,
	}
}
