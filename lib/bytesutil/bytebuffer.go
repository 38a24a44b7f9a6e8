package bytesutil

import (
	"io"
	"sync"
)

// ByteBuffer holds encoded documents.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// Len returns the number of bytes in bb.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Grow makes room for n more bytes in bb without reallocation.
func (bb *ByteBuffer) Grow(n int) {
	bb.B = GrowCapacity(bb.B, n)
}

// minReadSize is the minimum free space ReadFrom passes to Read.
const minReadSize = 4 * 1024

// ReadFrom appends the data from r to bb until io.EOF.
func (bb *ByteBuffer) ReadFrom(r io.Reader) (int64, error) {
	start := len(bb.B)
	for {
		if cap(bb.B)-len(bb.B) < minReadSize {
			bb.Grow(minReadSize)
		}
		n, err := r.Read(bb.B[len(bb.B):cap(bb.B)])
		bb.B = bb.B[:len(bb.B)+n]
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return int64(len(bb.B) - start), err
		}
	}
}

// ByteBufferPool is a pool of ByteBuffers.
type ByteBufferPool struct {
	p sync.Pool
}

// Get obtains an empty ByteBuffer from bbp.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	if bb, ok := bbp.p.Get().(*ByteBuffer); ok {
		return bb
	}
	return &ByteBuffer{}
}

// Put returns bb to bbp.
//
// Buffers bigger than maxPooledBufferSize are dropped, so a single huge document
// doesn't pin the memory forever.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if cap(bb.B) > maxPooledBufferSize {
		return
	}
	bb.B = bb.B[:0]
	bbp.p.Put(bb)
}

const maxPooledBufferSize = 32 * 1024 * 1024
