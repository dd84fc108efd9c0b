package zonealloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestZeroSizeAllocate verifies that allocate(0) always returns null.
func TestZeroSizeAllocate(t *testing.T) {
	var a Allocator
	assert.Nil(t, a.Allocate(0))
}

// TestReleaseNilIsNoop verifies that release(null) never panics
// regardless of allocator state.
func TestReleaseNilIsNoop(t *testing.T) {
	var a Allocator
	assert.NotPanics(t, func() { a.Release(nil) })

	p := a.Allocate(16)
	require.NotNil(t, p)
	assert.NotPanics(t, func() { a.Release(nil) })
	a.Release(p)
}

// TestDoubleFreeIsNoop verifies that freeing a pointer whose block is
// already free does not crash and does not corrupt other allocations.
func TestDoubleFreeIsNoop(t *testing.T) {
	var a Allocator

	p := a.Allocate(32)
	other := a.Allocate(32)
	require.NotNil(t, p)
	require.NotNil(t, other)

	writeByte(other, 0, 0xAB)

	a.Release(p)
	assert.NotPanics(t, func() { a.Release(p) })

	assert.Equal(t, byte(0xAB), readByte(other, 0))
}

// TestUnknownPointerIsNoop verifies that releasing an unknown or
// mid-block pointer is a silent no-op.
func TestUnknownPointerIsNoop(t *testing.T) {
	var a Allocator

	var stackVar int
	assert.NotPanics(t, func() { a.Release(unsafe.Pointer(&stackVar)) })

	p := a.Allocate(64)
	require.NotNil(t, p)
	midBlock := unsafe.Add(p, 8)
	assert.NotPanics(t, func() { a.Release(midBlock) })

	// p itself must still be a valid, untouched allocation.
	writeByte(p, 0, 0x11)
	assert.Equal(t, byte(0x11), readByte(p, 0))
	a.Release(p)
}

// TestReallocateFromNil covers the "reallocate(nil, n) behaves as
// allocate(n)" contract.
func TestReallocateFromNil(t *testing.T) {
	var a Allocator
	p := a.Reallocate(nil, 32)
	require.NotNil(t, p)
	assert.Zero(t, uintptr(p)%Alignment)
	a.Release(p)
}

// TestReallocateToZeroFrees covers the "reallocate(p, 0) behaves as
// release(p) and returns nil" contract.
func TestReallocateToZeroFrees(t *testing.T) {
	var a Allocator
	p := a.Allocate(32)
	require.NotNil(t, p)

	got := a.Reallocate(p, 0)
	assert.Nil(t, got)

	// p's block is now free; a fresh allocation may reuse the address.
	q := a.Allocate(32)
	require.NotNil(t, q)
}

// TestS4ReallocateGrowInPlace verifies that growing a block into its
// free right neighbor's space preserves the original pointer and bytes.
func TestS4ReallocateGrowInPlace(t *testing.T) {
	var a Allocator

	p := a.Allocate(64)
	b := a.Allocate(64)
	require.NotNil(t, p)
	require.NotNil(t, b)

	writeByte(p, 0, 0x42)
	writeByte(p, 63, 0x24)

	a.Release(b)

	p2 := a.Reallocate(p, 200)
	require.NotNil(t, p2)
	assert.Equal(t, p, p2)
	assert.Equal(t, byte(0x42), readByte(p2, 0))
	assert.Equal(t, byte(0x24), readByte(p2, 63))
}

// TestS5ReallocateCopyPath verifies that growing a block past what its
// neighbor can absorb falls back to a fresh allocation with the
// original bytes copied over.
func TestS5ReallocateCopyPath(t *testing.T) {
	var a Allocator

	p := a.Allocate(64)
	require.NotNil(t, p)
	buf := unsafe.Slice((*byte)(p), 64)
	for i := range buf {
		buf[i] = 0x42
	}

	b := a.Allocate(64)
	require.NotNil(t, b)

	p2 := a.Reallocate(p, 4096)
	require.NotNil(t, p2)
	assert.NotEqual(t, p, p2)

	got := unsafe.Slice((*byte)(p2), 64)
	for i, v := range got {
		assert.Equal(t, byte(0x42), v, "byte %d", i)
	}
}

// TestReallocateRoundTripLaw verifies that reallocate(allocate(n), m)
// either preserves the first min(n, m) bytes or returns nil; it never
// returns an altered prefix.
func TestReallocateRoundTripLaw(t *testing.T) {
	var a Allocator

	sizes := []struct{ n, m uintptr }{
		{16, 16}, {16, 200}, {200, 16}, {64, 4096}, {4096, 64}, {1000, 1000},
	}
	for _, s := range sizes {
		p := a.Allocate(s.n)
		require.NotNil(t, p)
		buf := unsafe.Slice((*byte)(p), s.n)
		for i := range buf {
			buf[i] = byte(i)
		}

		p2 := a.Reallocate(p, s.m)
		if p2 == nil {
			continue
		}

		minLen := s.n
		if s.m < minLen {
			minLen = s.m
		}
		got := unsafe.Slice((*byte)(p2), minLen)
		for i := uintptr(0); i < minLen; i++ {
			assert.Equal(t, byte(i), got[i], "size n=%d m=%d byte %d", s.n, s.m, i)
		}
		a.Release(p2)
	}
}
