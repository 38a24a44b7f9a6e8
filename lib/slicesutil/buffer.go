package slicesutil

import "sync"

// Buffer is a reusable T slice.
type Buffer[T any] struct {
	// B is the underlying T slice.
	B []T
}

// Reset resets b.
//
// Items are cleared, so the buffer doesn't hold references to values from the previous use.
func (b *Buffer[T]) Reset() {
	clear(b.B)
	b.B = b.B[:0]
}

// Resize sets len(b.B) to n while preserving the first min(n, len(b.B)) items.
func (b *Buffer[T]) Resize(n int) {
	b.B = SetLength(b.B, n)
}

// BufferPool is a pool of T Buffers.
type BufferPool[T any] struct {
	p sync.Pool
}

// Get obtains an empty Buffer from bp.
func (bp *BufferPool[T]) Get() *Buffer[T] {
	v := bp.p.Get()
	if v == nil {
		return &Buffer[T]{}
	}
	return v.(*Buffer[T])
}

// Put resets b and returns it to bp.
//
// b mustn't be used after returning it to the pool.
func (bp *BufferPool[T]) Put(b *Buffer[T]) {
	b.Reset()
	bp.p.Put(b)
}
