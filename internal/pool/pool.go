// Package pool provides sync.Pool-backed helpers for allocation-heavy hot
// paths: line-text assembly on the editor thread and scratch slices on the
// render thread.
package pool

import (
	"strings"
	"sync"
)

var stringBuilderPool = sync.Pool{
	New: func() any {
		return &strings.Builder{}
	},
}

// GetStringBuilder returns a reset string builder from the pool.
func GetStringBuilder() *strings.Builder {
	return stringBuilderPool.Get().(*strings.Builder)
}

// PutStringBuilder resets the builder and returns it to the pool.
func PutStringBuilder(sb *strings.Builder) {
	sb.Reset()
	stringBuilderPool.Put(sb)
}

// byteSliceMinCap keeps small requests from churning tiny allocations.
const byteSliceMinCap = 32 * 1024

var byteSlicePool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, byteSliceMinCap)
		return &buf
	},
}

// GetByteSlice returns a scratch buffer of length size from the pool,
// growing the pooled allocation when needed. The contents are unspecified.
func GetByteSlice(size int) *[]byte {
	buf := byteSlicePool.Get().(*[]byte)
	if cap(*buf) < size {
		*buf = make([]byte, size)
	}
	*buf = (*buf)[:size]
	return buf
}

// PutByteSlice returns a scratch buffer to the pool.
func PutByteSlice(buf *[]byte) {
	byteSlicePool.Put(buf)
}

// Slice is a typed pool of reusable slices. Callers instantiate one per
// element type; Get hands out a zero-length slice with pre-grown capacity.
type Slice[T any] struct {
	pool     sync.Pool
	capacity int
}

// NewSlice returns a slice pool whose fresh slices have the given capacity.
func NewSlice[T any](capacity int) *Slice[T] {
	s := &Slice[T]{capacity: capacity}
	s.pool.New = func() any {
		buf := make([]T, 0, capacity)
		return &buf
	}
	return s
}

// Get returns a zero-length slice from the pool.
func (s *Slice[T]) Get() *[]T {
	return s.pool.Get().(*[]T)
}

// Put truncates the slice and returns it to the pool.
func (s *Slice[T]) Put(buf *[]T) {
	*buf = (*buf)[:0]
	s.pool.Put(buf)
}
