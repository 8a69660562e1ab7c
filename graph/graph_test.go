package graph_test

import (
	"context"
	"testing"

	"github.com/wgtensor/wgtensor/arena"
	"github.com/wgtensor/wgtensor/compute"
	"github.com/wgtensor/wgtensor/graph"
	"github.com/wgtensor/wgtensor/numeric"
	"github.com/wgtensor/wgtensor/tensor"
	"github.com/wgtensor/wgtensor/testing/testutils"
)

func newEngine() compute.Engine[float32] {
	return compute.NewCPUEngine[float32](numeric.Float32Ops{})
}

// scenario 1: forward mul/add.
func TestComputeForwardMulAdd(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	eng := newEngine()

	a, _ := tensor.NewScalar[float32](alloc, 2)
	b, _ := tensor.NewScalar[float32](alloc, 3)
	c, _ := tensor.NewScalar[float32](alloc, 5)

	ab, _ := a.Mul(b)
	root, _ := ab.Add(c)

	g := graph.New[float32](alloc, eng)
	g.BuildForward(root)

	testutils.AssertNoError(t, g.Compute(context.Background()), "compute")
	testutils.AssertEqual(t, float32(11), root.Data()[0], "2*3+5 = 11")
}

// scenario 2: backward linear y = w*x + b.
func TestBackwardLinearGradients(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	eng := newEngine()

	w, _ := tensor.NewScalar[float32](alloc, 2)
	_, err := w.SetParam()
	testutils.AssertNoError(t, err, "SetParam w")

	x, _ := tensor.NewScalar[float32](alloc, 3)

	b, _ := tensor.NewScalar[float32](alloc, 1)
	_, err = b.SetParam()
	testutils.AssertNoError(t, err, "SetParam b")

	wx, _ := w.Mul(x)
	y, _ := wx.Add(b)

	g := graph.New[float32](alloc, eng)
	g.BuildForward(y)
	testutils.AssertNoError(t, g.Compute(context.Background()), "forward compute")

	one, _ := tensor.NewScalar[float32](alloc, 1)
	y.SetGrad(one)

	testutils.AssertNoError(t, g.BuildBackward(false), "build backward")
	testutils.AssertNoError(t, g.Compute(context.Background()), "backward compute")

	testutils.AssertEqual(t, float32(3), w.Grad().Data()[0], "dL/dw = x = 3")
	testutils.AssertEqual(t, float32(1), b.Grad().Data()[0], "dL/db = 1")
}

// scenario 3: sqr accumulation reaching x.grad = 66 after 11 computes with
// keep=true (P7).
func TestKeepTrueAccumulatesAcrossElevenComputes(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	eng := newEngine()

	x, _ := tensor.NewScalar[float32](alloc, 3)
	_, err := x.SetParam()
	testutils.AssertNoError(t, err, "SetParam x")

	sq, _ := x.Sqr()

	g := graph.New[float32](alloc, eng)
	g.BuildForward(sq)
	testutils.AssertNoError(t, g.Compute(context.Background()), "initial forward compute")

	one, _ := tensor.NewScalar[float32](alloc, 1)
	sq.SetGrad(one)

	testutils.AssertNoError(t, g.BuildBackward(true), "build backward keep=true")

	for i := 0; i < 11; i++ {
		testutils.AssertNoError(t, g.Compute(context.Background()), "accumulation compute")
	}

	// each compute() adds 2*x*g = 2*3*1 = 6 onto x.grad's own buffer.
	testutils.AssertEqual(t, float32(66), x.Grad().Data()[0], "x.grad = 66 after 11 accumulating computes")
}

// scenario 4: sum-of-squares backward, x.grad = [6, 8, 20].
func TestBackwardSumOfSquares(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	eng := newEngine()

	x, _ := tensor.New[float32](alloc, 3)
	_, err := x.SetParam()
	testutils.AssertNoError(t, err, "SetParam x")

	x.SetData([]float32{3, 4, 10})

	sq, _ := x.Sqr()
	loss, _ := sq.Sum()

	g := graph.New[float32](alloc, eng)
	g.BuildForward(loss)
	testutils.AssertNoError(t, g.Compute(context.Background()), "forward compute")

	one, _ := tensor.NewScalar[float32](alloc, 1)
	loss.SetGrad(one)

	testutils.AssertNoError(t, g.BuildBackward(false), "build backward")
	testutils.AssertNoError(t, g.Compute(context.Background()), "backward compute")

	want := []float32{6, 8, 20}
	got := x.Grad().Data()

	for i, w := range want {
		testutils.AssertEqual(t, w, got[i], "x.grad element")
	}
}

// scenario 5: matmul backward with concrete values.
func TestBackwardMatMulValues(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	eng := newEngine()

	a, _ := tensor.New[float32](alloc, 2, 3) // 3x2
	_, err := a.SetParam()
	testutils.AssertNoError(t, err, "SetParam a")
	a.SetData([]float32{1, 2, 3, 4, 5, 6})

	b, _ := tensor.New[float32](alloc, 3, 2) // 2x3
	_, err = b.SetParam()
	testutils.AssertNoError(t, err, "SetParam b")
	b.SetData([]float32{1, 2, 3, 4, 5, 6})

	c, _ := a.MatMul(b, false, false) // 3x3

	g := graph.New[float32](alloc, eng)
	g.BuildForward(c)
	testutils.AssertNoError(t, g.Compute(context.Background()), "forward compute")

	grad, _ := tensor.New[float32](alloc, 3, 3)
	grad.SetAllScalar(1)
	c.SetGrad(grad)

	testutils.AssertNoError(t, g.BuildBackward(false), "build backward")
	testutils.AssertNoError(t, g.Compute(context.Background()), "backward compute")

	want := []float32{6, 15, 6, 15, 6, 15}
	got := a.Grad().Data()

	for i, w := range want {
		testutils.AssertEqual(t, w, got[i], "dL/dA element")
	}
}

// P3: leaf classification.
func TestLeafClassification(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	eng := newEngine()

	a, _ := tensor.NewScalar[float32](alloc, 1)
	b, _ := tensor.NewScalar[float32](alloc, 2)
	sum, _ := a.Add(b)

	g := graph.New[float32](alloc, eng)
	g.BuildForward(sum)

	testutils.AssertEqual(t, 2, len(g.Leaves()), "a and b are leaves")
	testutils.AssertEqual(t, 1, len(g.Nodes()), "sum is the only node")
}

// P4: topological order -- every parent precedes its dependent.
func TestTopologicalOrder(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	eng := newEngine()

	a, _ := tensor.NewScalar[float32](alloc, 1)
	b, _ := tensor.NewScalar[float32](alloc, 2)
	ab, _ := a.Mul(b)
	c, _ := tensor.NewScalar[float32](alloc, 3)
	root, _ := ab.Add(c)

	g := graph.New[float32](alloc, eng)
	g.BuildForward(root)

	nodes := g.Nodes()
	indexOf := func(target *tensor.Tensor[float32]) int {
		for i, n := range nodes {
			if n == target {
				return i
			}
		}

		return -1
	}

	testutils.AssertTrue(t, indexOf(ab) < indexOf(root), "ab must precede root")
}

// P5: dedup -- a tensor shared by two consumers appears exactly once.
func TestDedupSharedSubgraph(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	eng := newEngine()

	x, _ := tensor.NewScalar[float32](alloc, 2)
	left, _ := x.Mul(x)
	right, _ := x.Add(x)
	root, _ := left.Add(right)

	g := graph.New[float32](alloc, eng)
	g.BuildForward(root)

	count := 0

	for _, l := range g.Leaves() {
		if l == x {
			count++
		}
	}

	testutils.AssertEqual(t, 1, count, "x appears exactly once across leaves")
}

// P6: ResetGrads is idempotent.
func TestResetGradsIdempotent(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	eng := newEngine()

	x, _ := tensor.NewScalar[float32](alloc, 3)
	_, err := x.SetParam()
	testutils.AssertNoError(t, err, "SetParam")

	sq, _ := x.Sqr()

	g := graph.New[float32](alloc, eng)
	g.BuildForward(sq)
	testutils.AssertNoError(t, g.Compute(context.Background()), "forward compute")

	one, _ := tensor.NewScalar[float32](alloc, 1)
	sq.SetGrad(one)
	testutils.AssertNoError(t, g.BuildBackward(false), "build backward")

	g.ResetGrads()
	g.ResetGrads()

	testutils.AssertEqual(t, float32(0), x.Grad().Data()[0], "x.grad stays zero across repeated resets")
}
