package blockqueue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 1024

var (
	// ErrClosed is returned by blocking and timed operations once the queue
	// has been closed (for pops, only after remaining items are drained).
	ErrClosed = errors.New("blockqueue: queue is closed")

	// ErrEmpty is returned by Front and Back when the queue holds no items.
	ErrEmpty = errors.New("blockqueue: queue is empty")
)

// BlockQueue is a bounded, closable FIFO queue safe for any number of
// concurrent producers and consumers. Producers block while the queue is
// full, consumers block while it is empty, and Close releases everyone:
// pushes fail immediately afterwards while pops keep succeeding until the
// remaining items are drained.
//
// Waiting is implemented with two generation channels standing in for
// condition variables. A waiter captures (lazily allocating) the channel
// under the mutex, releases the mutex, blocks on the channel (optionally
// racing a deadline or a context), then reacquires the mutex and re-checks
// the predicate. A wake closes the channel and nils it out, so uncontended
// operations never allocate. Every wake is a broadcast; correctness never
// depends on waking exactly one waiter.
//
// The zero value is not usable; construct with New.
type BlockQueue[T any] struct {
	mu       sync.Mutex
	items    ring[T]
	capacity int
	closed   bool

	// Nil while nobody is waiting on the respective condition.
	spaceWake chan struct{} // producers wait for room here
	itemWake  chan struct{} // consumers wait for items here
}

// New creates an open, empty queue holding at most capacity items.
// A non-positive capacity falls back to DefaultCapacity.
func New[T any](capacity int) *BlockQueue[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &BlockQueue[T]{capacity: capacity}
}

// wakeProducers must be called with mu held.
func (q *BlockQueue[T]) wakeProducers() {
	if q.spaceWake != nil {
		close(q.spaceWake)
		q.spaceWake = nil
	}
}

// wakeConsumers must be called with mu held.
func (q *BlockQueue[T]) wakeConsumers() {
	if q.itemWake != nil {
		close(q.itemWake)
		q.itemWake = nil
	}
}

// spaceWaker returns the channel producers block on, allocating it on first
// use within a wake cycle. Must be called with mu held.
func (q *BlockQueue[T]) spaceWaker() chan struct{} {
	if q.spaceWake == nil {
		q.spaceWake = make(chan struct{})
	}
	return q.spaceWake
}

// itemWaker is spaceWaker for the consumer side. Must be called with mu held.
func (q *BlockQueue[T]) itemWaker() chan struct{} {
	if q.itemWake == nil {
		q.itemWake = make(chan struct{})
	}
	return q.itemWake
}

// pushWait enqueues item once the queue has room, waiting on the producer
// wake channel between predicate checks. A firing deadline or done channel
// aborts the wait with (false, nil); a closed queue yields (false, ErrClosed).
func (q *BlockQueue[T]) pushWait(item T, deadline <-chan time.Time, done <-chan struct{}) (bool, error) {
	q.mu.Lock()
	for {
		if q.closed {
			q.mu.Unlock()
			return false, ErrClosed
		}
		if q.items.len() < q.capacity {
			q.items.pushBack(item)
			q.wakeConsumers()
			q.mu.Unlock()
			return true, nil
		}

		wake := q.spaceWaker()
		q.mu.Unlock()
		select {
		case <-wake:
		case <-deadline:
			return false, nil
		case <-done:
			return false, nil
		}
		q.mu.Lock()
	}
}

// popWait removes (or, when remove is false, copies) the head item once one
// is available. Outcomes mirror pushWait: (zero, false, nil) on an expired
// deadline or fired done channel, (zero, false, ErrClosed) when the queue is
// closed and empty.
func (q *BlockQueue[T]) popWait(deadline <-chan time.Time, done <-chan struct{}, remove bool) (T, bool, error) {
	var zero T
	q.mu.Lock()
	for {
		if q.items.len() > 0 {
			if !remove {
				item := q.items.front()
				q.mu.Unlock()
				return item, true, nil
			}
			item := q.items.popFront()
			q.wakeProducers()
			q.mu.Unlock()
			return item, true, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, false, ErrClosed
		}

		wake := q.itemWaker()
		q.mu.Unlock()
		select {
		case <-wake:
		case <-deadline:
			return zero, false, nil
		case <-done:
			return zero, false, nil
		}
		q.mu.Lock()
	}
}

// Push appends item, blocking while the queue is full.
// It returns ErrClosed if the queue is closed before room frees up; the item
// is not enqueued in that case.
func (q *BlockQueue[T]) Push(item T) error {
	_, err := q.pushWait(item, nil, nil)
	return err
}

// PushTimeout is Push bounded by a deadline. It returns (true, nil) when the
// item was enqueued, (false, nil) when the wait expired, and (false,
// ErrClosed) when the queue is closed. A timeout has no side effects.
func (q *BlockQueue[T]) PushTimeout(item T, timeout time.Duration) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return q.pushWait(item, timer.C, nil)
}

// PushContext is Push bounded by ctx. Cancellation and deadline expiry
// surface as ctx.Err(). An already-done context never enqueues.
func (q *BlockQueue[T]) PushContext(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ok, err := q.pushWait(item, nil, ctx.Done())
	if err != nil {
		return err
	}
	if !ok {
		return ctx.Err()
	}
	return nil
}

// TryPush appends item without blocking.
// It returns false when the queue is closed or full.
func (q *BlockQueue[T]) TryPush(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.items.len() >= q.capacity {
		return false
	}
	q.items.pushBack(item)
	q.wakeConsumers()
	return true
}

// Pop removes and returns the head item, blocking while the queue is empty.
// Once the queue is closed and drained, every call returns ErrClosed.
func (q *BlockQueue[T]) Pop() (T, error) {
	item, _, err := q.popWait(nil, nil, true)
	return item, err
}

// PopTimeout is Pop bounded by a deadline. It returns (item, true, nil) on
// success, (zero, false, nil) when the wait expired with nothing removed,
// and (zero, false, ErrClosed) when the queue is closed and empty.
func (q *BlockQueue[T]) PopTimeout(timeout time.Duration) (T, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return q.popWait(timer.C, nil, true)
}

// PopContext is Pop bounded by ctx. Cancellation and deadline expiry surface
// as ctx.Err(). An already-done context never removes an item.
func (q *BlockQueue[T]) PopContext(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	item, ok, err := q.popWait(nil, ctx.Done(), true)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ctx.Err()
	}
	return item, nil
}

// TryPop removes and returns the head item without blocking.
// It returns false when no item is available; emptiness and closed-and-empty
// are not distinguished. Items remaining after Close still pop normally.
func (q *BlockQueue[T]) TryPop() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.len() == 0 {
		return zero, false
	}
	item := q.items.popFront()
	q.wakeProducers()
	return item, true
}

// Peek waits like PopTimeout but returns a copy of the head item without
// removing it. It returns false on timeout and when the queue is closed and
// empty.
func (q *BlockQueue[T]) Peek(timeout time.Duration) (T, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	item, ok, _ := q.popWait(timer.C, nil, false)
	return item, ok
}

// Front returns the current head item without waiting or removing it.
// It returns ErrEmpty when the queue holds no items. Under concurrent access
// the result may be stale by the time the caller uses it.
func (q *BlockQueue[T]) Front() (T, error) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.len() == 0 {
		return zero, ErrEmpty
	}
	return q.items.front(), nil
}

// Back returns the current tail item without waiting or removing it.
// It returns ErrEmpty when the queue holds no items.
func (q *BlockQueue[T]) Back() (T, error) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.len() == 0 {
		return zero, ErrEmpty
	}
	return q.items.back(), nil
}

// Clear atomically removes all items and wakes waiting producers.
// The closed state is unaffected.
func (q *BlockQueue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items.reset()
	q.wakeProducers()
}

// Close permanently disables pushes and wakes every waiting producer and
// consumer. Remaining items stay poppable until drained. Close is
// idempotent.
//
// A BlockQueue holds no resources beyond memory, but goroutines blocked on
// it are only released by Close; owners must call it when discarding a queue
// that may still have waiters.
func (q *BlockQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.wakeProducers()
	q.wakeConsumers()
}

// IsClosed reports whether Close has been called.
func (q *BlockQueue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// SetCapacity changes the push bound at runtime. Growing the bound wakes
// waiting producers. Shrinking it below the current size never evicts items;
// pushes simply stay blocked until consumers drain below the new bound.
// Non-positive values are ignored.
func (q *BlockQueue[T]) SetCapacity(n int) {
	if n <= 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	old := q.capacity
	q.capacity = n
	if n > old && q.items.len() < n {
		q.wakeProducers()
	}
}

// Size returns the current number of items.
func (q *BlockQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len()
}

// Capacity returns the current push bound.
func (q *BlockQueue[T]) Capacity() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}

// Empty reports whether the queue holds no items.
func (q *BlockQueue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len() == 0
}

// Full reports whether the queue is at or above its capacity.
// After a shrink the size may exceed the bound, so >= rather than ==.
func (q *BlockQueue[T]) Full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len() >= q.capacity
}

// PushBatch enqueues items, preferring a single atomic step: when the whole
// slice fits within remaining capacity of an open queue it is appended under
// one lock hold and all waiting consumers are woken. Otherwise it falls back
// to a blocking Push per item; that path is best-effort, may interleave with
// other producers, and stops at the first failure. The return value is the
// number of items enqueued, with ErrClosed when a fallback push failed.
func (q *BlockQueue[T]) PushBatch(items []T) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	q.mu.Lock()
	if !q.closed && q.items.len()+len(items) <= q.capacity {
		for _, item := range items {
			q.items.pushBack(item)
		}
		q.wakeConsumers()
		q.mu.Unlock()
		return len(items), nil
	}
	q.mu.Unlock()

	for i, item := range items {
		if err := q.Push(item); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// PopBatch blocks until at least one item is available or the queue is
// closed, then greedily moves up to len(out) already-buffered items into out
// under one lock hold. It does not wait for more items to arrive once the
// first is seen. The return value is the number of items moved; 0 means the
// queue was closed with nothing buffered. Callers needing an exact count
// must loop.
func (q *BlockQueue[T]) PopBatch(out []T) int {
	if len(out) == 0 {
		return 0
	}

	q.mu.Lock()
	for q.items.len() == 0 && !q.closed {
		wake := q.itemWaker()
		q.mu.Unlock()
		<-wake
		q.mu.Lock()
	}

	n := 0
	for n < len(out) && q.items.len() > 0 {
		out[n] = q.items.popFront()
		n++
	}
	if n > 0 {
		q.wakeProducers()
	}
	q.mu.Unlock()
	return n
}

// Flush wakes waiting consumers without changing any state, letting them
// re-evaluate an external condition.
func (q *BlockQueue[T]) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.wakeConsumers()
}

// NotifyAll wakes every waiting producer and consumer without changing any
// state.
func (q *BlockQueue[T]) NotifyAll() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.wakeConsumers()
	q.wakeProducers()
}
