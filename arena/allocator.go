// Package arena provides the memory allocation collaborator used by the
// compute graph to materialize tensor storage. It mirrors a device
// allocator's shape (allocate/free by byte size) while exposing generic
// helpers typed over the element T so callers never juggle raw []byte.
package arena

import (
	"fmt"
	"unsafe"
)

// Allocator defines the interface for a memory allocator. It is responsible
// for allocating and freeing byte-addressed memory.
type Allocator interface {
	// Allocate allocates a block of memory of the given size in bytes.
	Allocate(size int) (any, error)
	// Free releases previously allocated memory. For the CPU allocator this
	// is a no-op; Go's garbage collector owns the backing array.
	Free(ptr any) error
}

// cpuAllocator is the memory allocator backed by the Go heap.
type cpuAllocator struct{}

// NewCPUAllocator creates a new CPU memory allocator.
func NewCPUAllocator() Allocator {
	return &cpuAllocator{}
}

// Allocate creates a new byte slice of the given size.
func (a *cpuAllocator) Allocate(size int) (any, error) {
	if size < 0 {
		return nil, fmt.Errorf("allocation size cannot be negative: %d", size)
	}

	return make([]byte, size), nil
}

// Free is a no-op for the CPU allocator because the Go garbage collector
// automatically manages memory for slices.
func (a *cpuAllocator) Free(_ any) error {
	return nil
}

// Alloc allocates a slice of n elements of type T through the allocator.
func Alloc[T any](a Allocator, n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("element count cannot be negative: %d", n)
	}

	var zero T

	mem, err := a.Allocate(n * sizeOf(zero))
	if err != nil {
		return nil, err
	}

	_, ok := mem.([]byte)
	if !ok {
		return nil, fmt.Errorf("allocator returned unexpected memory type %T", mem)
	}

	return make([]T, n), nil
}

// Create allocates storage for a single value of type T and returns a
// pointer to it.
func Create[T any](a Allocator) (*T, error) {
	if _, err := a.Allocate(sizeOf(*new(T))); err != nil {
		return nil, err
	}

	return new(T), nil
}

// FreeSlice releases a slice previously obtained from Alloc.
func FreeSlice[T any](a Allocator, s []T) error {
	return a.Free(s)
}

// Destroy releases a value previously obtained from Create.
func Destroy[T any](a Allocator, p *T) error {
	return a.Free(p)
}

// sizeOf reports the size in bytes of one element of type T.
func sizeOf[T any](v T) int {
	return int(unsafe.Sizeof(v))
}
