package compute

import (
	"context"
	"fmt"
	"math"

	"github.com/wgtensor/wgtensor/internal/xblas"
	"github.com/wgtensor/wgtensor/numeric"
	"github.com/wgtensor/wgtensor/tensor"
)

// blasMinDim is the minimum extent (per contracted/output dimension) below
// which the BLAS dispatch gate does not pay for itself and the naive loop
// runs instead.
const blasMinDim = 32

// CPUEngine is the reference Engine implementation: every kernel runs as a
// plain Go loop over a coordinate space of at most tensor.MaxDims axes,
// except non-transposed matmul on contiguous float32 operands whose
// dimensions are all at least blasMinDim, which dispatches to gonum's SGEMM
// via internal/xblas.
type CPUEngine[T tensor.Numeric] struct {
	ops numeric.Arithmetic[T]
}

// NewCPUEngine builds a CPUEngine driven by the given arithmetic.
func NewCPUEngine[T tensor.Numeric](ops numeric.Arithmetic[T]) *CPUEngine[T] {
	return &CPUEngine[T]{ops: ops}
}

// Ops returns the underlying arithmetic primitives.
func (e *CPUEngine[T]) Ops() numeric.Arithmetic[T] { return e.ops }

// forEach4 walks every coordinate of a rank-4 extent array with axis 0
// fastest-varying, matching the contiguous layout a freshly allocated
// destination tensor always has.
func forEach4(ne [4]int, fn func(coords [4]int, flat int)) {
	var c [4]int
	flat := 0

	for c[3] = 0; c[3] < ne[3]; c[3]++ {
		for c[2] = 0; c[2] < ne[2]; c[2]++ {
			for c[1] = 0; c[1] < ne[1]; c[1]++ {
				for c[0] = 0; c[0] < ne[0]; c[0]++ {
					fn(c, flat)
					flat++
				}
			}
		}
	}
}

// elemAt reads t at coords, wrapping each axis modulo t's own extent so
// that scalars and repeat-eligible smaller shapes broadcast transparently.
func elemAt[T tensor.Numeric](t *tensor.Tensor[T], coords [4]int) T {
	ne := t.Ne()
	strides := t.Strides()

	offset := 0
	for i := range 4 {
		offset += (coords[i] % ne[i]) * strides[i]
	}

	return t.Data()[offset]
}

// setAt writes v into t at coords, the write-side counterpart of elemAt.
func setAt[T tensor.Numeric](t *tensor.Tensor[T], coords [4]int, v T) {
	ne := t.Ne()
	strides := t.Strides()

	offset := 0
	for i := range 4 {
		offset += (coords[i] % ne[i]) * strides[i]
	}

	t.Data()[offset] = v
}

func (e *CPUEngine[T]) binaryElementwise(dst, a, b *tensor.Tensor[T], op func(x, y T) T) {
	forEach4(dst.Ne(), func(c [4]int, _ int) {
		setAt(dst, c, op(elemAt(a, c), elemAt(b, c)))
	})
}

func (e *CPUEngine[T]) unaryElementwise(dst, a *tensor.Tensor[T], op func(x T) T) {
	forEach4(dst.Ne(), func(c [4]int, _ int) {
		setAt(dst, c, op(elemAt(a, c)))
	})
}

// Add computes dst = a + b, broadcasting a scalar operand if present.
func (e *CPUEngine[T]) Add(_ context.Context, dst, a, b *tensor.Tensor[T]) error {
	e.binaryElementwise(dst, a, b, e.ops.Add)
	return nil
}

// Sub computes dst = a - b.
func (e *CPUEngine[T]) Sub(_ context.Context, dst, a, b *tensor.Tensor[T]) error {
	e.binaryElementwise(dst, a, b, e.ops.Sub)
	return nil
}

// Mul computes dst = a * b.
func (e *CPUEngine[T]) Mul(_ context.Context, dst, a, b *tensor.Tensor[T]) error {
	e.binaryElementwise(dst, a, b, e.ops.Mul)
	return nil
}

// Div computes dst = a / b. A zero divisor anywhere in b is a recoverable
// error, not a fatal precondition, since it depends on runtime data rather
// than shapes known at graph-build time.
func (e *CPUEngine[T]) Div(_ context.Context, dst, a, b *tensor.Tensor[T]) error {
	var divErr error

	forEach4(dst.Ne(), func(c [4]int, _ int) {
		if divErr != nil {
			return
		}

		divisor := elemAt(b, c)
		if e.ops.IsZero(divisor) {
			divErr = fmt.Errorf("compute: division by zero")
			return
		}

		setAt(dst, c, e.ops.Div(elemAt(a, c), divisor))
	})

	return divErr
}

// Scale computes dst = a * scalar.
func (e *CPUEngine[T]) Scale(_ context.Context, dst, a, scalar *tensor.Tensor[T]) error {
	e.binaryElementwise(dst, a, scalar, e.ops.Mul)
	return nil
}

// Sqr computes dst = a * a.
func (e *CPUEngine[T]) Sqr(_ context.Context, dst, a *tensor.Tensor[T]) error {
	e.unaryElementwise(dst, a, func(x T) T { return e.ops.Mul(x, x) })
	return nil
}

// Sqrt computes dst = sqrt(a) elementwise.
func (e *CPUEngine[T]) Sqrt(_ context.Context, dst, a *tensor.Tensor[T]) error {
	e.unaryElementwise(dst, a, e.ops.Sqrt)
	return nil
}

// Abs computes dst = |a|.
func (e *CPUEngine[T]) Abs(_ context.Context, dst, a *tensor.Tensor[T]) error {
	e.unaryElementwise(dst, a, e.ops.Abs)
	return nil
}

// Sgn computes dst = sign(a).
func (e *CPUEngine[T]) Sgn(_ context.Context, dst, a *tensor.Tensor[T]) error {
	e.unaryElementwise(dst, a, e.ops.Sgn)
	return nil
}

// Neg computes dst = -a.
func (e *CPUEngine[T]) Neg(_ context.Context, dst, a *tensor.Tensor[T]) error {
	zero := e.ops.FromFloat64(0)
	e.unaryElementwise(dst, a, func(x T) T { return e.ops.Sub(zero, x) })

	return nil
}

// Step computes dst = heaviside(a).
func (e *CPUEngine[T]) Step(_ context.Context, dst, a *tensor.Tensor[T]) error {
	e.unaryElementwise(dst, a, e.ops.Step)
	return nil
}

// ReLU computes dst = max(a, 0).
func (e *CPUEngine[T]) ReLU(_ context.Context, dst, a *tensor.Tensor[T]) error {
	e.unaryElementwise(dst, a, e.ops.ReLU)
	return nil
}

// sqrt2OverPi is the tanh-approximation GELU constant, computed in float64
// and converted through the element type's FromFloat64 by GELU.
var sqrt2OverPi = math.Sqrt(2.0 / math.Pi)

// GELU computes dst = gelu(a) using the tanh approximation
// 0.5*x*(1+tanh(sqrt(2/pi)*(x+0.044715*x^3))).
func (e *CPUEngine[T]) GELU(_ context.Context, dst, a *tensor.Tensor[T]) error {
	half := e.ops.FromFloat64(0.5)
	one := e.ops.One()
	coeff := e.ops.FromFloat64(0.044715)
	k := e.ops.FromFloat64(sqrt2OverPi)

	e.unaryElementwise(dst, a, func(x T) T {
		x3 := e.ops.Mul(e.ops.Mul(x, x), x)
		inner := e.ops.Mul(k, e.ops.Add(x, e.ops.Mul(coeff, x3)))
		t := e.ops.Tanh(inner)

		return e.ops.Mul(half, e.ops.Mul(x, e.ops.Add(one, t)))
	})

	return nil
}

// Sum reduces a to a single scalar, accumulating strictly left-to-right in
// a's own coordinate order.
func (e *CPUEngine[T]) Sum(_ context.Context, dst, a *tensor.Tensor[T]) error {
	sum := e.ops.FromFloat64(0)

	forEach4(a.Ne(), func(c [4]int, _ int) {
		sum = e.ops.Add(sum, elemAt(a, c))
	})

	dst.Data()[0] = sum

	return nil
}

// Mean reduces axis 0 of a to extent 1 by averaging, preserving the other
// axes.
func (e *CPUEngine[T]) Mean(_ context.Context, dst, a *tensor.Tensor[T]) error {
	count := a.Ne()[0]
	countT := e.ops.FromFloat64(float64(count))

	forEach4(dst.Ne(), func(c [4]int, _ int) {
		sum := e.ops.FromFloat64(0)

		for i := 0; i < count; i++ {
			cc := c
			cc[0] = i
			sum = e.ops.Add(sum, elemAt(a, cc))
		}

		setAt(dst, c, e.ops.Div(sum, countT))
	})

	return nil
}

// Repeat broadcasts a's values across dst's (larger) shape; elemAt's
// modulo indexing does the broadcasting.
func (e *CPUEngine[T]) Repeat(_ context.Context, dst, a *tensor.Tensor[T]) error {
	forEach4(dst.Ne(), func(c [4]int, _ int) {
		setAt(dst, c, elemAt(a, c))
	})

	return nil
}

// Dup deep-copies a's contiguous buffer into dst's. A non-contiguous
// source is unimplemented (§4.3) and fails loudly rather than silently
// copying a logically wrong layout.
func (e *CPUEngine[T]) Dup(_ context.Context, dst, a *tensor.Tensor[T]) error {
	if !a.IsContiguous() {
		panic("compute: dup of a non-contiguous tensor is unimplemented")
	}

	copy(dst.Data(), a.Data())

	return nil
}

// Cpy writes a's values into dst's buffer (dst already aliases the cpy
// target allocated by tensor.CpyTo).
func (e *CPUEngine[T]) Cpy(_ context.Context, dst, a *tensor.Tensor[T]) error {
	forEach4(dst.Ne(), func(c [4]int, _ int) {
		setAt(dst, c, elemAt(a, c))
	})

	return nil
}

func matRowCol[T tensor.Numeric](data []T, strides [4]int, batchOff, row, col int) T {
	return data[batchOff+row*strides[1]+col*strides[0]]
}

// MatMul computes dst = op(a, trans0) · op(b, trans1), batched over axes
// 2 and 3. When T is float32, all three operands are contiguous, neither
// side is transposed, and every relevant dimension meets blasMinDim, the
// product is computed by gonum's SGEMM instead of the naive loop (§9).
func (e *CPUEngine[T]) MatMul(_ context.Context, dst, a, b *tensor.Tensor[T], trans0, trans1 bool) error {
	if blasEligible(dst, a, b, trans0, trans1) {
		matMulBLAS(dst, a, b)
		return nil
	}

	e.matMulNaive(dst, a, b, trans0, trans1)

	return nil
}

func blasEligible[T tensor.Numeric](dst, a, b *tensor.Tensor[T], trans0, trans1 bool) bool {
	if trans0 || trans1 {
		return false
	}

	if !(a.IsContiguous() && b.IsContiguous() && dst.IsContiguous()) {
		return false
	}

	var zero T
	if _, ok := any(zero).(float32); !ok {
		return false
	}

	aNe := a.Ne()
	bNe := b.Ne()
	m, k, n := aNe[1], aNe[0], bNe[0]

	return m >= blasMinDim && k >= blasMinDim && n >= blasMinDim
}

// matMulBLAS requires T == float32; callers gate on blasEligible first.
func matMulBLAS[T tensor.Numeric](dst, a, b *tensor.Tensor[T]) {
	af := any(a).(*tensor.Tensor[float32])
	bf := any(b).(*tensor.Tensor[float32])
	df := any(dst).(*tensor.Tensor[float32])

	aNe := af.Ne()
	bNe := bf.Ne()
	m, k, n := aNe[1], aNe[0], bNe[0]

	aStrides := af.Strides()
	bStrides := bf.Strides()
	dStrides := df.Strides()

	adata := af.Data()
	bdata := bf.Data()
	ddata := df.Data()

	batch, ch := aNe[2], aNe[3]

	for c := 0; c < ch; c++ {
		for bi := 0; bi < batch; bi++ {
			aOff := bi*aStrides[2] + c*aStrides[3]
			bOff := bi*bStrides[2] + c*bStrides[3]
			dOff := bi*dStrides[2] + c*dStrides[3]

			xblas.GemmF32(m, n, k,
				adata[aOff:aOff+m*k],
				bdata[bOff:bOff+k*n],
				ddata[dOff:dOff+m*n])
		}
	}
}

// matMulNaive implements the generic 4-nested loop over (channel, batch,
// row, col) with an innermost contraction; the four transposition
// variants only change which index of each operand plays the role of row
// vs. contracted axis (§4.1).
func (e *CPUEngine[T]) matMulNaive(dst, a, b *tensor.Tensor[T], trans0, trans1 bool) {
	aNe := a.Ne()
	bNe := b.Ne()
	aStrides := a.Strides()
	bStrides := b.Strides()
	dStrides := dst.Strides()

	adata := a.Data()
	bdata := b.Data()
	ddata := dst.Data()

	batch, ch := aNe[2], aNe[3]

	var outRows, outCols, kDim int

	switch {
	case trans0 && trans1:
		outRows, outCols, kDim = aNe[0], bNe[1], aNe[1]
	case trans0:
		outRows, outCols, kDim = aNe[0], bNe[0], aNe[1]
	case trans1:
		outRows, outCols, kDim = aNe[1], bNe[1], aNe[0]
	default:
		outRows, outCols, kDim = aNe[1], bNe[0], aNe[0]
	}

	for c := 0; c < ch; c++ {
		for bi := 0; bi < batch; bi++ {
			aOff := bi*aStrides[2] + c*aStrides[3]
			bOff := bi*bStrides[2] + c*bStrides[3]
			dOff := bi*dStrides[2] + c*dStrides[3]

			for i := 0; i < outRows; i++ {
				for j := 0; j < outCols; j++ {
					sum := e.ops.FromFloat64(0)

					for k := 0; k < kDim; k++ {
						var av, bv T

						switch {
						case trans0 && trans1:
							av = matRowCol(adata, aStrides, aOff, k, i)
							bv = matRowCol(bdata, bStrides, bOff, j, k)
						case trans0:
							av = matRowCol(adata, aStrides, aOff, k, i)
							bv = matRowCol(bdata, bStrides, bOff, k, j)
						case trans1:
							av = matRowCol(adata, aStrides, aOff, i, k)
							bv = matRowCol(bdata, bStrides, bOff, j, k)
						default:
							av = matRowCol(adata, aStrides, aOff, i, k)
							bv = matRowCol(bdata, bStrides, bOff, k, j)
						}

						sum = e.ops.Add(sum, e.ops.Mul(av, bv))
					}

					ddata[dOff+i*dStrides[1]+j*dStrides[0]] = sum
				}
			}
		}
	}
}

// Forward dispatches on t.Op() and evaluates t from its already-evaluated
// parents. Views (reshape/transpose/view) already alias their producer's
// buffer and need no compute step.
func (e *CPUEngine[T]) Forward(ctx context.Context, t *tensor.Tensor[T]) error {
	switch t.Op() {
	case tensor.OpNone, tensor.OpReshape, tensor.OpTranspose, tensor.OpView:
		return nil
	case tensor.OpDup:
		return e.Dup(ctx, t, t.Src0())
	case tensor.OpAdd:
		return e.Add(ctx, t, t.Src0(), t.Src1())
	case tensor.OpSub:
		return e.Sub(ctx, t, t.Src0(), t.Src1())
	case tensor.OpMul:
		return e.Mul(ctx, t, t.Src0(), t.Src1())
	case tensor.OpDiv:
		return e.Div(ctx, t, t.Src0(), t.Src1())
	case tensor.OpScale:
		return e.Scale(ctx, t, t.Src0(), t.Src1())
	case tensor.OpSqr:
		return e.Sqr(ctx, t, t.Src0())
	case tensor.OpSqrt:
		return e.Sqrt(ctx, t, t.Src0())
	case tensor.OpAbs:
		return e.Abs(ctx, t, t.Src0())
	case tensor.OpSgn:
		return e.Sgn(ctx, t, t.Src0())
	case tensor.OpNeg:
		return e.Neg(ctx, t, t.Src0())
	case tensor.OpStep:
		return e.Step(ctx, t, t.Src0())
	case tensor.OpReLU:
		return e.ReLU(ctx, t, t.Src0())
	case tensor.OpGELU:
		return e.GELU(ctx, t, t.Src0())
	case tensor.OpSum:
		return e.Sum(ctx, t, t.Src0())
	case tensor.OpMean:
		return e.Mean(ctx, t, t.Src0())
	case tensor.OpRepeat:
		return e.Repeat(ctx, t, t.Src0())
	case tensor.OpCpy:
		return e.Cpy(ctx, t, t.Src0())
	case tensor.OpMatMul:
		return e.MatMul(ctx, t, t.Src0(), t.Src1(), false, false)
	case tensor.OpMatMulT0:
		return e.MatMul(ctx, t, t.Src0(), t.Src1(), true, false)
	case tensor.OpMatMulT1:
		return e.MatMul(ctx, t, t.Src0(), t.Src1(), false, true)
	case tensor.OpMatMulT0T1:
		return e.MatMul(ctx, t, t.Src0(), t.Src1(), true, true)
	default:
		panic(fmt.Sprintf("compute: forward dispatch unimplemented for op %s", t.Op()))
	}
}
