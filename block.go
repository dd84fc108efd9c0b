package zonealloc

import (
	"unsafe"
)

// blockHeader sits immediately before a block's payload, in-band in the
// zone's mapped memory. prev/next chain blocks of the same zone in
// address order; the first block's prev and the last block's next are
// nil.
type blockHeader struct {
	size uintptr
	free bool
	prev *blockHeader
	next *blockHeader
}

var blockHeaderSize = unsafe.Sizeof(blockHeader{})

// payload returns the address the caller of Allocate receives: the first
// byte past the header.
func (b *blockHeader) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), blockHeaderSize)
}

// searchZone performs a first-fit scan of a single zone's block chain,
// in address order.
func searchZone(zone *zoneHeader, size uintptr) *blockHeader {
	for b := zone.blocks; b != nil; b = b.next {
		if b.free && b.size >= size {
			return b
		}
	}
	return nil
}

// searchClass performs first-fit across every zone of a class, zone list
// order first (i.e. most-recently-created zone first, since zones are
// pushed LIFO), then block order within each zone.
func searchClass(root *zoneHeader, size uintptr) (*zoneHeader, *blockHeader) {
	for z := root; z != nil; z = z.next {
		if b := searchZone(z, size); b != nil {
			return z, b
		}
	}
	return nil, nil
}

// split carves a busy prefix of exactly `size` bytes off block, pushing
// a new free block into the chain for the remainder. It does nothing if
// the remainder could not host a usable block (header + minRemainder
// payload).
func split(block *blockHeader, size uintptr) {
	if block.size <= size+blockHeaderSize+minRemainder {
		return
	}

	remaining := block.size - size - blockHeaderSize
	newBlock := (*blockHeader)(unsafe.Add(unsafe.Pointer(block), blockHeaderSize+size))
	newBlock.size = remaining
	newBlock.free = true
	newBlock.next = block.next
	newBlock.prev = block
	if block.next != nil {
		block.next.prev = newBlock
	}
	block.next = newBlock
	block.size = size
}

// markBusy finalizes a block chosen by search+split for handing out.
func markBusy(block *blockHeader) unsafe.Pointer {
	block.free = false
	return block.payload()
}

// coalesceRight merges block with its immediate right neighbor if that
// neighbor is free. The allocator never merges left; this asymmetry is
// deliberate, not a bug to silently fix.
func coalesceRight(block *blockHeader) {
	if block.next == nil || !block.next.free {
		return
	}

	block.size += blockHeaderSize + block.next.size
	block.next = block.next.next
	if block.next != nil {
		block.next.prev = block
	}
}

// soleBlock reports whether zone currently consists of exactly one block.
func soleBlock(zone *zoneHeader) bool {
	return zone.blocks != nil && zone.blocks.next == nil
}
