package blockqueue

import (
	"github.com/breutil/go-common/pkg/utils"
)

// minRingCap is the smallest backing array allocated for a non-empty ring.
const minRingCap = 16

// ring is a growable circular deque backing a BlockQueue.
// The backing array length is always a power of two so index wrapping
// is a single mask. Not safe for concurrent use; the owning queue
// serializes access.
type ring[T any] struct {
	buf  []T
	head int
	size int
}

func (r *ring[T]) len() int {
	return r.size
}

// pushBack appends an item at the tail, growing the backing array if full.
func (r *ring[T]) pushBack(item T) {
	if r.size == len(r.buf) {
		r.grow(r.size + 1)
	}
	r.buf[(r.head+r.size)&(len(r.buf)-1)] = item
	r.size++
}

// popFront removes and returns the head item.
// The vacated slot is zeroed so the ring does not pin references.
func (r *ring[T]) popFront() T {
	var zero T
	item := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) & (len(r.buf) - 1)
	r.size--
	return item
}

// front returns the head item without removing it.
func (r *ring[T]) front() T {
	return r.buf[r.head]
}

// back returns the tail item without removing it.
func (r *ring[T]) back() T {
	return r.buf[(r.head+r.size-1)&(len(r.buf)-1)]
}

// reset drops all items and zeroes the backing array.
// The allocation is retained for reuse.
func (r *ring[T]) reset() {
	clear(r.buf)
	r.head = 0
	r.size = 0
}

// grow reallocates the backing array to hold at least minCap items,
// unwrapping the ring so head returns to index zero.
func (r *ring[T]) grow(minCap int) {
	newCap := minRingCap
	if minCap > newCap {
		newCap = utils.CeilToPowerOfTwo(minCap)
	}

	newBuf := make([]T, newCap)
	for i := 0; i < r.size; i++ {
		newBuf[i] = r.buf[(r.head+i)&(len(r.buf)-1)]
	}
	r.buf = newBuf
	r.head = 0
}
