// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd

// Modifications (c) 2017 The Memory Authors.
// Adapted for zonealloc: page-granular mmap/munmap over golang.org/x/sys/unix.

package zonealloc

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

func platformPageSize() uintptr {
	return uintptr(os.Getpagesize())
}

// mmapPages maps size bytes of anonymous, private, read+write memory.
// TINY and SMALL zone sizes are always page multiples; LARGE zone sizes
// are not rounded by the caller, and the kernel maps whole pages for them.
func mmapPages(size uintptr) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}

	if uintptr(unsafe.Pointer(&b[0]))%osPageSize != 0 {
		panic("zonealloc: mmap returned a non-page-aligned address")
	}

	return b, nil
}

// munmapPages releases exactly the region previously returned by
// mmapPages for the same size.
func munmapPages(addr unsafe.Pointer, size uintptr) error {
	b := unsafe.Slice((*byte)(addr), size)
	return unix.Munmap(b)
}
