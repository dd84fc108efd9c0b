package zonealloc

import "github.com/pkg/errors"

// ErrOutOfMemory is returned internally when the OS refuses to map the
// memory a zone needs. It never crosses the public Allocate / Reallocate
// boundary: callers only ever see a null pointer, per the allocator's
// minimal error taxonomy.
var ErrOutOfMemory = errors.New("zonealloc: platform refused to map memory")
