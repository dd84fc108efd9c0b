// Package zonealloc implements a zone-based block allocator: a
// general-purpose dynamic memory manager that maps memory from the OS in
// large zones (TINY, SMALL, LARGE), subdivides each zone into variable-
// sized blocks on demand via first-fit search and splitting, coalesces a
// freed block with its right neighbor, and unmaps a zone once it
// collapses back to a single free block at the head of its class list.
//
// The package is multi-thread safe through a single mutex per Allocator;
// Allocate, Release, Reallocate, and Dump each acquire it for their
// duration, with the documented exception of Reallocate's copy-fallback
// path, which drops the lock before recursing into Allocate and Release.
package zonealloc
