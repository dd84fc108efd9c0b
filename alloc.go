package zonealloc

import (
	"sync"
	"unsafe"

	"github.com/sirupsen/logrus"
)

// Allocator is the zone-based block allocator. Its zero value is ready
// for use: no explicit init path is needed beyond Go's normal static
// zero-initialization.
type Allocator struct {
	mu     sync.Mutex
	roots  [numClasses]*zoneHeader
	config Config
}

// NewAllocator constructs an Allocator with the given options. Plain
// callers can just use &Allocator{} (or the package-level functions
// against the built-in default instance); NewAllocator exists for the
// CLI harness, which wants to scale zone sizes for experiments.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{}
	for _, opt := range opts {
		opt(&a.config)
	}
	return a
}

// defaultAllocator is the process-wide instance the package-level
// Allocate/Release/Reallocate/Dump functions delegate to: a single
// global lock guarding a single global set of zone-list heads.
var defaultAllocator Allocator

// Calloc is like Allocate except the returned memory is zeroed first.
// Freshly mapped pages already read as zero, but a split-off remainder
// handed out later in a zone's life may carry a previous tenant's bytes.
func (a *Allocator) Calloc(n uintptr) unsafe.Pointer {
	p := a.Allocate(n)
	if p == nil {
		return nil
	}

	b := unsafe.Slice((*byte)(p), align(n))
	for i := range b {
		b[i] = 0
	}
	return p
}

// Allocate returns a pointer to at least n bytes of uninitialized
// memory, aligned to Alignment. It returns nil for a zero-size request
// or if the OS refuses to map the memory a new zone would need.
func (a *Allocator) Allocate(n uintptr) unsafe.Pointer {
	if n == 0 {
		return nil
	}

	size := align(n)
	class := classify(size)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, block := searchClass(a.roots[class], size); block != nil {
		split(block, size)
		return markBusy(block)
	}

	zone, err := a.createZone(class, size)
	if err != nil {
		logrus.WithError(err).Debug("zonealloc: allocate failed")
		return nil
	}
	a.pushZone(class, zone)

	block := zone.blocks
	split(block, size)
	return markBusy(block)
}

// Release frees the block backing p. A nil pointer, an unknown pointer,
// and a pointer to a block that is already free are all silent no-ops.
func (a *Allocator) Release(p unsafe.Pointer) {
	if p == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	block, zone, class := a.resolve(p)
	if block == nil {
		return
	}
	if block.free {
		// Double free of a block that's already free is indistinguishable
		// from an unknown pointer. Logged only for debugging, never acted on.
		logrus.WithField("ptr", p).Debug("zonealloc: release of already-free block")
		return
	}

	block.free = true
	coalesceRight(block)
	a.collapseIfEmpty(class, zone)
}

// Reallocate resizes the block backing p to n bytes, preserving its
// contents up to the smaller of the old and new sizes. Shrinking never
// splits the block to release the tail. Growing past what the block
// and its free right neighbor can absorb falls back to allocating a
// fresh block, copying, and releasing the old one; that fallback drops
// the allocator's lock before calling Allocate and Release.
func (a *Allocator) Reallocate(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	if p == nil {
		return a.Allocate(n)
	}
	if n == 0 {
		a.Release(p)
		return nil
	}

	a.mu.Lock()

	block, _, _ := a.resolve(p)
	if block == nil {
		a.mu.Unlock()
		return nil
	}

	size := align(n)
	if block.size >= size {
		a.mu.Unlock()
		return p
	}

	if block.next != nil && block.next.free && block.size+blockHeaderSize+block.next.size >= size {
		coalesceRight(block)
		a.mu.Unlock()
		return p
	}

	oldSize := block.size
	a.mu.Unlock()

	newPtr := a.Allocate(n)
	if newPtr == nil {
		return nil
	}

	copySize := oldSize
	if size < copySize {
		copySize = size
	}
	if copySize > 0 {
		src := unsafe.Slice((*byte)(p), copySize)
		dst := unsafe.Slice((*byte)(newPtr), copySize)
		copy(dst, src)
	}

	a.Release(p)
	return newPtr
}

// Allocate delegates to the package-wide default Allocator.
func Allocate(n uintptr) unsafe.Pointer { return defaultAllocator.Allocate(n) }

// Calloc delegates to the package-wide default Allocator.
func Calloc(n uintptr) unsafe.Pointer { return defaultAllocator.Calloc(n) }

// Release delegates to the package-wide default Allocator.
func Release(p unsafe.Pointer) { defaultAllocator.Release(p) }

// Reallocate delegates to the package-wide default Allocator.
func Reallocate(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	return defaultAllocator.Reallocate(p, n)
}
