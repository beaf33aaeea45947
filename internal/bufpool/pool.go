// Package bufpool provides pooled byte slices for the webserver's file
// cache, avoiding a hot-path allocation per served file. Adapted from
// go-ublk's internal/queue.BufferPool: the same size-bucketed sync.Pool
// layout (here 64KB/256KB/1MB/4MB, chosen for whole small-to-medium files
// rather than io_uring fixed-size I/O buffers), using the *[]byte pattern
// to avoid sync.Pool's interface-boxing allocation.
package bufpool

import "sync"

const (
	size64k  = 64 * 1024
	size256k = 256 * 1024
	size1m   = 1024 * 1024
	size4m   = 4 * 1024 * 1024
)

var global = struct {
	p64k  sync.Pool
	p256k sync.Pool
	p1m   sync.Pool
	p4m   sync.Pool
}{
	p64k:  sync.Pool{New: func() any { b := make([]byte, size64k); return &b }},
	p256k: sync.Pool{New: func() any { b := make([]byte, size256k); return &b }},
	p1m:   sync.Pool{New: func() any { b := make([]byte, size1m); return &b }},
	p4m:   sync.Pool{New: func() any { b := make([]byte, size4m); return &b }},
}

// Get returns a pooled buffer of at least size bytes. Files larger than the
// largest bucket get a plain, unpooled allocation. Callers must call Put
// when done with the buffer.
func Get(size int) []byte {
	switch {
	case size <= size64k:
		return (*global.p64k.Get().(*[]byte))[:size]
	case size <= size256k:
		return (*global.p256k.Get().(*[]byte))[:size]
	case size <= size1m:
		return (*global.p1m.Get().(*[]byte))[:size]
	case size <= size4m:
		return (*global.p4m.Get().(*[]byte))[:size]
	default:
		return make([]byte, size)
	}
}

// Put returns buf to its pool, if its capacity matches a bucket exactly.
func Put(buf []byte) {
	c := cap(buf)
	buf = buf[:c]
	switch c {
	case size64k:
		global.p64k.Put(&buf)
	case size256k:
		global.p256k.Put(&buf)
	case size1m:
		global.p1m.Put(&buf)
	case size4m:
		global.p4m.Put(&buf)
	}
}
