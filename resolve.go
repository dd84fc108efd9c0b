package zonealloc

import "unsafe"

// resolve walks every zone of every class looking for the block whose
// payload base equals p. Returns a nil block if no block matches; an
// unknown or mid-block pointer is treated identically.
func (a *Allocator) resolve(p unsafe.Pointer) (*blockHeader, *zoneHeader, Class) {
	for class := Class(0); int(class) < numClasses; class++ {
		for zone := a.roots[class]; zone != nil; zone = zone.next {
			for b := zone.blocks; b != nil; b = b.next {
				if b.payload() == p {
					return b, zone, class
				}
			}
		}
	}
	return nil, nil, 0
}
