package optimizer_test

import (
	"context"
	"testing"

	"github.com/zerfoo/float16"
	"github.com/zerfoo/float8"
	"github.com/wgtensor/wgtensor/arena"
	"github.com/wgtensor/wgtensor/numeric"
	"github.com/wgtensor/wgtensor/tensor"
	"github.com/wgtensor/wgtensor/testing/testutils"
	"github.com/wgtensor/wgtensor/training/optimizer"
)

func TestSGDStepUpdatesValueInPlace(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	ops := numeric.Float32Ops{}

	value, _ := tensor.New[float32](alloc, 2, 2)
	value.SetData([]float32{1, 2, 3, 4})
	_, err := value.SetParam()
	testutils.AssertNoError(t, err, "SetParam")

	grad := value.Grad()
	grad.SetData([]float32{1, 1, 1, 1})

	sgd := optimizer.NewSGD[float32](ops, 1.0)
	testutils.AssertNoError(t, sgd.Step(context.Background(), []*tensor.Tensor[float32]{value}), "step")

	want := []float32{0, 1, 2, 3}
	got := value.Data()

	for i, w := range want {
		testutils.AssertEqual(t, w, got[i], "value element after step")
	}
}

func TestSGDStepSkipsParamsWithoutGrad(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	ops := numeric.Float32Ops{}

	value, _ := tensor.New[float32](alloc, 2)
	value.SetData([]float32{5, 6})

	sgd := optimizer.NewSGD[float32](ops, 1.0)
	testutils.AssertNoError(t, sgd.Step(context.Background(), []*tensor.Tensor[float32]{value}), "step")

	want := []float32{5, 6}
	got := value.Data()

	for i, w := range want {
		testutils.AssertEqual(t, w, got[i], "untouched value stays unchanged")
	}
}

func TestSGDClipFloat32(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	ops := numeric.Float32Ops{}

	value, _ := tensor.New[float32](alloc, 4)
	_, err := value.SetParam()
	testutils.AssertNoError(t, err, "SetParam")

	value.Grad().SetData([]float32{-10, 0.5, 10, -0.5})

	sgd := optimizer.NewSGD[float32](ops, 0.1)
	sgd.Clip(context.Background(), []*tensor.Tensor[float32]{value}, 1.0)

	want := []float32{-1.0, 0.5, 1.0, -0.5}
	got := value.Grad().Data()

	for i, w := range want {
		testutils.AssertEqual(t, w, got[i], "clipped grad element (float32)")
	}
}

func TestSGDClipFloat16(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	ops := numeric.Float16Ops{}

	value, _ := tensor.New[float16.Float16](alloc, 4)
	_, err := value.SetParam()
	testutils.AssertNoError(t, err, "SetParam")

	value.Grad().SetData([]float16.Float16{
		ops.FromFloat32(-10), ops.FromFloat32(0.5), ops.FromFloat32(10), ops.FromFloat32(-0.5),
	})

	sgd := optimizer.NewSGD[float16.Float16](ops, 0.1)
	sgd.Clip(context.Background(), []*tensor.Tensor[float16.Float16]{value}, 1.0)

	want := []float32{-1.0, 0.5, 1.0, -0.5}
	got := value.Grad().Data()

	for i, w := range want {
		testutils.AssertEqual(t, w, got[i].ToFloat32(), "clipped grad element (float16)")
	}
}

func TestSGDClipFloat8(t *testing.T) {
	alloc := arena.NewCPUAllocator()
	ops := numeric.Float8Ops{}

	value, _ := tensor.New[float8.Float8](alloc, 4)
	_, err := value.SetParam()
	testutils.AssertNoError(t, err, "SetParam")

	value.Grad().SetData([]float8.Float8{
		ops.FromFloat32(-10), ops.FromFloat32(0.5), ops.FromFloat32(10), ops.FromFloat32(-0.5),
	})

	sgd := optimizer.NewSGD[float8.Float8](ops, 0.1)
	sgd.Clip(context.Background(), []*tensor.Tensor[float8.Float8]{value}, 1.0)

	want := []float32{-1.0, 0.5, 1.0, -0.5}
	got := value.Grad().Data()

	for i, w := range want {
		testutils.AssertEqual(t, w, got[i].ToFloat32(), "clipped grad element (float8)")
	}
}
