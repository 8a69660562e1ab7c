package tensor

import "fmt"

// elementwiseShape resolves the output shape for a shape-coercing binary
// op: pointwise if both operands share a shape, otherwise broadcast the
// scalar side. Any other shape combination is a programmer error, fatal
// per §7.
func elementwiseShape(a, b Shape, op Op) Shape {
	switch {
	case a.SameShape(b):
		return a
	case b.IsScalar():
		return a
	case a.IsScalar():
		return b
	default:
		panic(fmt.Sprintf("tensor: %s shape mismatch: %v vs %v", op, a.Ne(), b.Ne()))
	}
}

func (t *Tensor[T]) elementwiseBinary(other *Tensor[T], op Op) (*Tensor[T], error) {
	shape := elementwiseShape(t.Shape, other.Shape, op)

	return newResult(t.alloc, shape, op, t, other)
}

// Add constructs an elementwise addition node. Shapes must match or one
// side must be scalar.
func (t *Tensor[T]) Add(other *Tensor[T]) (*Tensor[T], error) {
	return t.elementwiseBinary(other, OpAdd)
}

// Sub constructs an elementwise subtraction node.
func (t *Tensor[T]) Sub(other *Tensor[T]) (*Tensor[T], error) {
	return t.elementwiseBinary(other, OpSub)
}

// Mul constructs an elementwise multiplication node.
func (t *Tensor[T]) Mul(other *Tensor[T]) (*Tensor[T], error) {
	return t.elementwiseBinary(other, OpMul)
}

// Div constructs an elementwise division node.
func (t *Tensor[T]) Div(other *Tensor[T]) (*Tensor[T], error) {
	return t.elementwiseBinary(other, OpDiv)
}

// Scale constructs a scale node; scalar must be a 1-element tensor.
func (t *Tensor[T]) Scale(scalar *Tensor[T]) (*Tensor[T], error) {
	if !scalar.IsScalar() {
		panic(fmt.Sprintf("tensor: scale requires a scalar src1, got shape %v", scalar.Ne()))
	}

	return newResult(t.alloc, t.Shape, OpScale, t, scalar)
}

// AddInPlace constructs an add node that aliases t's own buffer as both
// an operand and the destination, so each evaluation of the node adds
// other's current value onto whatever t's buffer already holds. Gradient
// accumulation uses this when buildBackward's keep flag is true, so that
// repeated compute() calls keep growing the accumulator (§4.4, §8 P7)
// instead of recomputing the same value every time.
func (t *Tensor[T]) AddInPlace(other *Tensor[T]) (*Tensor[T], error) {
	shape := elementwiseShape(t.Shape, other.Shape, OpAdd)
	if !shape.SameShape(t.Shape) {
		panic(fmt.Sprintf("tensor: AddInPlace requires the accumulator to take the output shape, got %v vs %v",
			t.Ne(), shape.Ne()))
	}

	return &Tensor[T]{
		Shape:     t.Shape,
		op:        OpAdd,
		src0:      t,
		src1:      other,
		data:      t.data,
		dataOwned: false,
		alloc:     t.alloc,
	}, nil
}

func (t *Tensor[T]) unary(op Op) (*Tensor[T], error) {
	return newResult(t.alloc, t.Shape, op, t, nil)
}

// Sqr constructs a pointwise square node.
func (t *Tensor[T]) Sqr() (*Tensor[T], error) { return t.unary(OpSqr) }

// Sqrt constructs a pointwise square-root node.
func (t *Tensor[T]) Sqrt() (*Tensor[T], error) { return t.unary(OpSqrt) }

// Abs constructs a pointwise absolute-value node.
func (t *Tensor[T]) Abs() (*Tensor[T], error) { return t.unary(OpAbs) }

// Sgn constructs a pointwise sign node.
func (t *Tensor[T]) Sgn() (*Tensor[T], error) { return t.unary(OpSgn) }

// Neg constructs a pointwise negation node.
func (t *Tensor[T]) Neg() (*Tensor[T], error) { return t.unary(OpNeg) }

// Step constructs a pointwise Heaviside step node.
func (t *Tensor[T]) Step() (*Tensor[T], error) { return t.unary(OpStep) }

// ReLU constructs a pointwise rectified-linear node.
func (t *Tensor[T]) ReLU() (*Tensor[T], error) { return t.unary(OpReLU) }

// GELU constructs a pointwise Gaussian-error-linear-unit node.
func (t *Tensor[T]) GELU() (*Tensor[T], error) { return t.unary(OpGELU) }

// Norm constructs a row-L2-normalise node. Reserved: neither forward
// dispatch nor backward implements it, and both panic on it.
func (t *Tensor[T]) Norm() (*Tensor[T], error) { return t.unary(OpNorm) }

// Sum constructs a full reduction to a rank-1 scalar.
func (t *Tensor[T]) Sum() (*Tensor[T], error) {
	shape := NewShape(1)

	return newResult(t.alloc, shape, OpSum, t, nil)
}

// Mean constructs a reduction collapsing axis 0 to extent 1.
func (t *Tensor[T]) Mean() (*Tensor[T], error) {
	ne := t.Ne()
	ne[0] = 1

	shape := NewShape(ne[:t.Rank()]...)

	return newResult(t.alloc, shape, OpMean, t, nil)
}

// RepeatTo constructs a broadcast of t to other's shape. Every extent of
// other must be an integer multiple of the corresponding extent of t.
func (t *Tensor[T]) RepeatTo(other *Tensor[T]) (*Tensor[T], error) {
	if !t.CanRepeatTo(other.Shape) {
		panic(fmt.Sprintf("tensor: cannot repeat shape %v to %v", t.Ne(), other.Ne()))
	}

	return newResult(t.alloc, other.Shape, OpRepeat, t, other)
}

// Reshape returns a view of t with the given extents. t must be
// contiguous and the element count must be preserved.
func (t *Tensor[T]) Reshape(ne ...int) (*Tensor[T], error) {
	if !t.IsContiguous() {
		panic("tensor: reshape requires a contiguous source")
	}

	shape := NewShape(ne...)
	if shape.NElems() != t.NElems() {
		panic(fmt.Sprintf("tensor: reshape element count mismatch: %d vs %d", t.NElems(), shape.NElems()))
	}

	return newView(t, shape, OpReshape), nil
}

// ReshapeLike returns a view of t with other's shape.
func (t *Tensor[T]) ReshapeLike(other *Tensor[T]) (*Tensor[T], error) {
	ne := other.Ne()

	return t.Reshape(ne[:other.Rank()]...)
}

// Transpose returns a view of t with axes 0 and 1 swapped by stride
// rewrite only; no data is moved.
func (t *Tensor[T]) Transpose() (*Tensor[T], error) {
	ne := t.Ne()
	ne[0], ne[1] = ne[1], ne[0]

	strides := t.Strides()
	strides[0], strides[1] = strides[1], strides[0]

	shape := Shape{rank: t.Rank(), ne: ne}
	shape = shape.withStrides(strides)

	return newView(t, shape, OpTranspose), nil
}

// View returns a pure alias of t: same shape, same buffer.
func (t *Tensor[T]) View() (*Tensor[T], error) {
	return newView(t, t.Shape, OpView), nil
}

// Dup constructs a node that deep-copies t's values into a freshly
// allocated, owned, contiguous buffer. t must be contiguous; a
// non-contiguous source is unimplemented and fails deterministically at
// forward dispatch (§4.3).
func (t *Tensor[T]) Dup() (*Tensor[T], error) {
	return newResult(t.alloc, t.Shape, OpDup, t, nil)
}

// CpyTo constructs a node that writes t's values into dst's buffer; the
// result aliases dst and does not own its data.
func (t *Tensor[T]) CpyTo(dst *Tensor[T]) (*Tensor[T], error) {
	if t.NElems() != dst.NElems() {
		panic(fmt.Sprintf("tensor: cpy element count mismatch: %d vs %d", t.NElems(), dst.NElems()))
	}

	return &Tensor[T]{
		Shape:     dst.Shape,
		op:        OpCpy,
		src0:      t,
		src1:      dst,
		data:      dst.data,
		dataOwned: false,
		alloc:     dst.alloc,
	}, nil
}

// MatMul constructs a matrix-multiplication node for C = A·B (with
// trans0/trans1 selecting which of t/other are read transposed),
// dispatching to the appropriate op tag from the four-member family.
func (t *Tensor[T]) MatMul(other *Tensor[T], trans0, trans1 bool) (*Tensor[T], error) {
	if !t.CanMatMul(trans0, other.Shape, trans1) {
		panic(fmt.Sprintf("tensor: matmul precondition failed for shapes %v, %v (trans0=%v trans1=%v)",
			t.Ne(), other.Ne(), trans0, trans1))
	}

	op := matMulOp(trans0, trans1)
	shape := t.MatMulShape(trans0, other.Shape, trans1)

	return newResult(t.alloc, shape, op, t, other)
}

func matMulOp(trans0, trans1 bool) Op {
	switch {
	case trans0 && trans1:
		return OpMatMulT0T1
	case trans0:
		return OpMatMulT0
	case trans1:
		return OpMatMulT1
	default:
		return OpMatMul
	}
}
