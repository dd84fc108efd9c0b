// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Memory Authors.
// Adapted for zonealloc: page-granular mmap/munmap over golang.org/x/sys/windows.

package zonealloc

import (
	"errors"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

func platformPageSize() uintptr {
	return uintptr(os.Getpagesize())
}

// mmap on Windows is a two-step process: CreateFileMapping gets a handle,
// then MapViewOfFile gets an actual pointer into memory. handleMap lets
// munmapPages recover the handle CloseHandle needs from the address alone.
var (
	handleMu  sync.Mutex
	handleMap = map[uintptr]windows.Handle{}
)

func mmapPages(size uintptr) ([]byte, error) {
	maxSizeHigh := uint32(uint64(size) >> 32)
	maxSizeLow := uint32(uint64(size) & 0xFFFFFFFF)

	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		return nil, os.NewSyscallError("CreateFileMapping", err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, size)
	if addr == 0 {
		return nil, os.NewSyscallError("MapViewOfFile", err)
	}

	if addr%uintptr(osPageSize) != 0 {
		panic("zonealloc: mmap returned a non-page-aligned address")
	}

	handleMu.Lock()
	handleMap[addr] = h
	handleMu.Unlock()

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func munmapPages(addr unsafe.Pointer, size uintptr) error {
	base := uintptr(addr)
	if err := windows.UnmapViewOfFile(base); err != nil {
		return err
	}

	handleMu.Lock()
	handle, ok := handleMap[base]
	if ok {
		delete(handleMap, base)
	}
	handleMu.Unlock()

	if !ok {
		return errors.New("zonealloc: unknown base address")
	}

	return windows.CloseHandle(handle)
}
