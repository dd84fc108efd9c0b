package zonealloc

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// zoneHeader sits at the base of every mapped zone. blocks points at the
// first block header, which sits immediately after the zone header.
// class records the request class that created the zone. Empty-zone
// collapse uses the class of the root list the zone was found on, which
// is always this creation class, never the current size of whatever
// block happens to live in the zone.
type zoneHeader struct {
	size   uintptr
	class  Class
	next   *zoneHeader
	blocks *blockHeader
}

var zoneHeaderSize = unsafe.Sizeof(zoneHeader{})

// osPageSize is resolved once at package init; mmap_unix.go / mmap_windows.go
// provide the platform-specific lookup.
var osPageSize = platformPageSize()

// zoneSizeFor computes the zone size for a class: TINY and SMALL zones
// are fixed multiples of the OS page size, LARGE zones are sized to fit
// exactly one request. tinyPages/smallPages let a harness scale the
// TINY/SMALL zone sizes for experiments; a zero value means "use the
// default" (4 / 16 pages).
func zoneSizeFor(class Class, requestSize, tinyPages, smallPages uintptr) uintptr {
	switch class {
	case ClassTiny:
		if tinyPages == 0 {
			tinyPages = 4
		}
		return tinyPages * osPageSize
	case ClassSmall:
		if smallPages == 0 {
			smallPages = 16
		}
		return smallPages * osPageSize
	default:
		return requestSize + zoneHeaderSize + blockHeaderSize
	}
}

// createZone maps a fresh zone sized for class/requestSize, writes the
// zone header and its sole free block, and returns it. The zone is not
// yet linked into any class root; the caller splices it in.
func (a *Allocator) createZone(class Class, requestSize uintptr) (*zoneHeader, error) {
	size := zoneSizeFor(class, requestSize, a.config.TinyZonePages, a.config.SmallZonePages)

	mem, err := mmapPages(size)
	if err != nil {
		return nil, errors.Wrapf(ErrOutOfMemory, "map %d bytes for %s zone: %v", size, class, err)
	}

	zone := (*zoneHeader)(unsafe.Pointer(&mem[0]))
	zone.size = size
	zone.class = class
	zone.next = nil

	block := (*blockHeader)(unsafe.Add(unsafe.Pointer(zone), zoneHeaderSize))
	block.size = size - zoneHeaderSize - blockHeaderSize
	block.free = true
	block.prev = nil
	block.next = nil
	zone.blocks = block

	logrus.WithFields(logrus.Fields{
		"class": class,
		"size":  size,
	}).Debug("zonealloc: mapped zone")

	return zone, nil
}

// destroyZone unmaps a zone's backing memory. The caller is responsible
// for having already unlinked it from its class root.
func destroyZone(zone *zoneHeader) error {
	size := zone.size
	class := zone.class
	if err := munmapPages(unsafe.Pointer(zone), size); err != nil {
		return errors.Wrapf(err, "unmap %d bytes of %s zone", size, class)
	}

	logrus.WithFields(logrus.Fields{
		"class": class,
		"size":  size,
	}).Debug("zonealloc: unmapped empty zone")

	return nil
}

// collapseIfEmpty unmaps zone if it holds exactly one block, that block
// is free, and the zone is currently the head of its class's root list.
// A free zone sitting deeper in the list is left mapped; this is
// deliberate, not a full-sweep collapse that was never implemented.
func (a *Allocator) collapseIfEmpty(class Class, zone *zoneHeader) {
	root := a.roots[class]
	if root != zone {
		return
	}
	if !soleBlock(zone) || !zone.blocks.free {
		return
	}

	a.roots[class] = zone.next
	if err := destroyZone(zone); err != nil {
		logrus.WithError(err).Warn("zonealloc: failed to unmap empty zone")
	}
}

// pushZone installs zone at the head of its class's root list: newly
// created zones are always pushed at the head (LIFO).
func (a *Allocator) pushZone(class Class, zone *zoneHeader) {
	zone.next = a.roots[class]
	a.roots[class] = zone
}
