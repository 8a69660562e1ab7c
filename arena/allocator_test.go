package arena

import "testing"

func TestCPUAllocator(t *testing.T) {
	allocator := NewCPUAllocator()

	t.Run("Allocate Valid Size", func(t *testing.T) {
		mem, err := allocator.Allocate(1024)
		if err != nil {
			t.Fatalf("Allocate failed with error: %v", err)
		}

		slice, ok := mem.([]byte)
		if !ok {
			t.Fatalf("allocated memory is not a []byte slice")
		}

		if len(slice) != 1024 {
			t.Errorf("expected allocated size to be 1024, got %d", len(slice))
		}
	})

	t.Run("Allocate Zero Size", func(t *testing.T) {
		mem, err := allocator.Allocate(0)
		if err != nil {
			t.Fatalf("Allocate(0) failed with error: %v", err)
		}

		slice, ok := mem.([]byte)
		if !ok {
			t.Fatalf("allocated memory is not a []byte slice")
		}

		if len(slice) != 0 {
			t.Errorf("expected allocated size to be 0, got %d", len(slice))
		}
	})

	t.Run("Allocate Negative Size", func(t *testing.T) {
		_, err := allocator.Allocate(-1)
		if err == nil {
			t.Fatal("expected an error for negative allocation size, but got nil")
		}
	})

	t.Run("Free", func(t *testing.T) {
		mem, _ := allocator.Allocate(16)

		err := allocator.Free(mem)
		if err != nil {
			t.Errorf("Free() should not return an error for cpuAllocator, but got: %v", err)
		}
	})
}

func TestAllocGenericHelpers(t *testing.T) {
	allocator := NewCPUAllocator()

	t.Run("Alloc float32 slice", func(t *testing.T) {
		s, err := Alloc[float32](allocator, 16)
		if err != nil {
			t.Fatalf("Alloc failed: %v", err)
		}

		if len(s) != 16 {
			t.Errorf("expected len 16, got %d", len(s))
		}

		if err := FreeSlice(allocator, s); err != nil {
			t.Errorf("FreeSlice failed: %v", err)
		}
	})

	t.Run("Alloc negative count", func(t *testing.T) {
		if _, err := Alloc[float32](allocator, -1); err == nil {
			t.Fatal("expected an error for negative element count, but got nil")
		}
	})

	t.Run("Create and Destroy scalar", func(t *testing.T) {
		p, err := Create[float64](allocator)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if p == nil {
			t.Fatal("expected non-nil pointer from Create")
		}

		if err := Destroy(allocator, p); err != nil {
			t.Errorf("Destroy failed: %v", err)
		}
	})
}
