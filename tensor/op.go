package tensor

// Op identifies the operation that produced a tensor. OpNone marks a leaf:
// pure data with no parents.
type Op int

// The closed op catalogue. Every tensor carries exactly one of these tags;
// forward and backward dispatch switch on it.
const (
	OpNone Op = iota
	OpDup
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpScale
	OpSqr
	OpSqrt
	OpAbs
	OpSgn
	OpNeg
	OpStep
	OpReLU
	OpGELU
	OpNorm
	OpSum
	OpMean
	OpRepeat
	OpReshape
	OpTranspose
	OpView
	OpCpy
	OpMatMul
	OpMatMulT0
	OpMatMulT1
	OpMatMulT0T1
)

// Arity is the number of meaningful parent references an op's kernel reads.
type Arity int

// Op arities. A kernel must never read a parent slot beyond its declared
// arity (I6).
const (
	ArityNullary Arity = iota
	ArityUnary
	ArityBinary
)

type opDescriptor struct {
	symbol string
	arity  Arity
}

var opTable = map[Op]opDescriptor{
	OpNone:       {"none", ArityNullary},
	OpDup:        {"dup", ArityUnary},
	OpAdd:        {"add", ArityBinary},
	OpSub:        {"sub", ArityBinary},
	OpMul:        {"mul", ArityBinary},
	OpDiv:        {"div", ArityBinary},
	OpScale:      {"scale", ArityBinary},
	OpSqr:        {"sqr", ArityUnary},
	OpSqrt:       {"sqrt", ArityUnary},
	OpAbs:        {"abs", ArityUnary},
	OpSgn:        {"sgn", ArityUnary},
	OpNeg:        {"neg", ArityUnary},
	OpStep:       {"step", ArityUnary},
	OpReLU:       {"relu", ArityUnary},
	OpGELU:       {"gelu", ArityUnary},
	OpNorm:       {"norm", ArityUnary},
	OpSum:        {"sum", ArityUnary},
	OpMean:       {"mean", ArityUnary},
	OpRepeat:     {"repeat", ArityBinary},
	OpReshape:    {"reshape", ArityUnary},
	OpTranspose:  {"transpose", ArityUnary},
	OpView:       {"view", ArityUnary},
	OpCpy:        {"cpy", ArityBinary},
	OpMatMul:     {"matmul", ArityBinary},
	OpMatMulT0:   {"matmul_t0", ArityBinary},
	OpMatMulT1:   {"matmul_t1", ArityBinary},
	OpMatMulT0T1: {"matmul_t0t1", ArityBinary},
}

// String returns the op's symbolic name, used in debug output and in
// fatal-error messages for unimplemented dispatch.
func (op Op) String() string {
	if d, ok := opTable[op]; ok {
		return d.symbol
	}

	return "unknown"
}

// Arity reports how many of src0/src1 the op's kernel reads.
func (op Op) Arity() Arity {
	if d, ok := opTable[op]; ok {
		return d.arity
	}

	return ArityNullary
}

// IsMatMul reports whether op is one of the four matmul transposition
// variants.
func (op Op) IsMatMul() bool {
	switch op {
	case OpMatMul, OpMatMulT0, OpMatMulT1, OpMatMulT0T1:
		return true
	default:
		return false
	}
}

// MatMulTranspositions reports which of src0/src1 the matmul variant
// reads transposed.
func (op Op) MatMulTranspositions() (trans0, trans1 bool) {
	switch op {
	case OpMatMulT0:
		return true, false
	case OpMatMulT1:
		return false, true
	case OpMatMulT0T1:
		return true, true
	default:
		return false, false
	}
}
