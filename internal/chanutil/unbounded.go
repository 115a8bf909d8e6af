// Package chanutil provides an unbounded FIFO queue with channel-like
// blocking semantics, used to decouple the editor thread from the renderer
// without ever blocking the producer.
package chanutil

import "sync"

// Unbounded is an unbounded single-producer/single-consumer queue. Send
// never blocks; Recv blocks until an item arrives or the queue is closed.
// Items are delivered strictly in send order.
type Unbounded[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// NewUnbounded returns an empty open queue.
func NewUnbounded[T any]() *Unbounded[T] {
	u := &Unbounded[T]{}
	u.cond = sync.NewCond(&u.mu)
	return u
}

// Send enqueues an item. Sending on a closed queue drops the item.
func (u *Unbounded[T]) Send(item T) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	u.items = append(u.items, item)
	u.cond.Signal()
}

// Recv dequeues the next item, blocking while the queue is empty. It
// reports false once the queue is closed and drained.
func (u *Unbounded[T]) Recv() (T, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for len(u.items) == 0 && !u.closed {
		u.cond.Wait()
	}
	if len(u.items) == 0 {
		var zero T
		return zero, false
	}
	item := u.items[0]
	u.items = u.items[1:]
	return item, true
}

// TryRecv dequeues the next item without blocking. It reports false when
// the queue is currently empty.
func (u *Unbounded[T]) TryRecv() (T, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.items) == 0 {
		var zero T
		return zero, false
	}
	item := u.items[0]
	u.items = u.items[1:]
	return item, true
}

// Drain dequeues everything currently pending without blocking.
func (u *Unbounded[T]) Drain() []T {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.items) == 0 {
		return nil
	}
	items := u.items
	u.items = nil
	return items
}

// Done reports whether the queue is closed and fully drained.
func (u *Unbounded[T]) Done() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.closed && len(u.items) == 0
}

// Len reports the number of pending items.
func (u *Unbounded[T]) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.items)
}

// Close marks the queue closed and wakes any blocked receiver. Pending
// items remain receivable.
func (u *Unbounded[T]) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	u.cond.Broadcast()
}
