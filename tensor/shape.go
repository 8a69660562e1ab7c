package tensor

import "fmt"

// MaxDims is the fixed rank ceiling every tensor shape is described within.
const MaxDims = 4

// MaxOpt is the number of reserved auxiliary parent slots on a Tensor.
const MaxOpt = 2

// Shape is the fixed-rank shape/stride descriptor shared by every Tensor.
// Extents are ordered (cols, rows, batch, channel); trailing unused axes
// carry extent 1, matching a freshly initialised contiguous tensor.
type Shape struct {
	rank    int
	ne      [MaxDims]int
	strides [MaxDims]int
}

// NewShape builds a contiguous row-major shape from the given extents,
// padding unused trailing axes with extent 1.
func NewShape(ne ...int) Shape {
	if len(ne) == 0 || len(ne) > MaxDims {
		panic(fmt.Sprintf("tensor: shape rank must be in 1..%d, got %d", MaxDims, len(ne)))
	}

	var s Shape

	s.rank = len(ne)
	for i := range MaxDims {
		if i < len(ne) {
			if ne[i] <= 0 {
				panic(fmt.Sprintf("tensor: extent %d at axis %d must be positive", ne[i], i))
			}

			s.ne[i] = ne[i]
		} else {
			s.ne[i] = 1
		}
	}

	s.strides = contiguousStrides(s.ne)

	return s
}

func contiguousStrides(ne [MaxDims]int) [MaxDims]int {
	var strides [MaxDims]int

	strides[0] = 1
	for i := 1; i < MaxDims; i++ {
		strides[i] = strides[i-1] * ne[i-1]
	}

	return strides
}

// Rank reports the number of axes that carry semantic meaning; trailing
// axes up to MaxDims are always extent 1.
func (s Shape) Rank() int { return s.rank }

// Ne returns the per-axis extents (cols, rows, batch, channel).
func (s Shape) Ne() [MaxDims]int { return s.ne }

// Strides returns the per-axis element strides.
func (s Shape) Strides() [MaxDims]int { return s.strides }

// NElems returns the total element count, the product of all extents.
func (s Shape) NElems() int {
	n := 1
	for _, e := range s.ne {
		n *= e
	}

	return n
}

// IsScalar reports whether the shape holds exactly one element.
func (s Shape) IsScalar() bool {
	return s.NElems() == 1
}

// IsVector reports whether only axis 0 carries more than one element.
func (s Shape) IsVector() bool {
	return s.ne[1] == 1 && s.ne[2] == 1 && s.ne[3] == 1
}

// IsMatrix reports whether only axes 0 and 1 carry more than one element.
func (s Shape) IsMatrix() bool {
	return s.ne[2] == 1 && s.ne[3] == 1
}

// IsContiguous reports whether strides follow the row-major identity for
// this shape's extents.
func (s Shape) IsContiguous() bool {
	return s.strides == contiguousStrides(s.ne)
}

// SameShape reports whether two shapes carry identical extents.
func (s Shape) SameShape(other Shape) bool {
	return s.ne == other.ne
}

// CanRepeatTo reports whether self can be broadcast to other's shape, i.e.
// every target extent is an integer multiple of the source extent on the
// same axis.
func (s Shape) CanRepeatTo(other Shape) bool {
	for i := range MaxDims {
		if s.ne[i] <= 0 || other.ne[i]%s.ne[i] != 0 {
			return false
		}
	}

	return true
}

// effectiveRowsCols reports the (rows, cols) of a matrix-shaped operand
// after applying an optional transposition; axes 2 and 3 (batch, channel)
// are unaffected by transposition.
func (s Shape) effectiveRowsCols(transposed bool) (rows, cols int) {
	if transposed {
		return s.ne[0], s.ne[1]
	}

	return s.ne[1], s.ne[0]
}

// CanMatMul reports whether self (optionally transposed) and other
// (optionally transposed) satisfy the matmul precondition: equal batch and
// channel extents, and the contracted extents match.
func (s Shape) CanMatMul(transSelf bool, other Shape, transOther bool) bool {
	if s.ne[2] != other.ne[2] || s.ne[3] != other.ne[3] {
		return false
	}

	_, selfCols := s.effectiveRowsCols(transSelf)
	otherRows, _ := other.effectiveRowsCols(transOther)

	return selfCols == otherRows
}

// MatMulShape computes the output shape of a (optionally transposed)
// matmul between self and other, per §4.1's output-shape table. The
// caller must have already validated CanMatMul.
func (s Shape) MatMulShape(transSelf bool, other Shape, transOther bool) Shape {
	selfRows, _ := s.effectiveRowsCols(transSelf)
	_, otherCols := other.effectiveRowsCols(transOther)

	return NewShape(otherCols, selfRows, s.ne[2], s.ne[3])
}

// Get computes the flat element offset Σ coord[i]·stride[i]; coords must
// have exactly Rank() entries.
func (s Shape) Get(coords []int) int {
	if len(coords) != s.rank {
		panic(fmt.Sprintf("tensor: Get expects %d coordinates, got %d", s.rank, len(coords)))
	}

	offset := 0
	for i, c := range coords {
		offset += c * s.strides[i]
	}

	return offset
}

// withStrides returns a copy of s with its strides replaced; used by view,
// transpose and reshape to describe a non-owning reinterpretation of an
// existing buffer.
func (s Shape) withStrides(strides [MaxDims]int) Shape {
	s.strides = strides

	return s
}
