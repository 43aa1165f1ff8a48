package singleton

import "sync"

// Lazy holds a lazily-initialized shared instance of T. The initializer runs
// at most once, on the first Instance call, no matter how many goroutines
// race for it.
//
//	var db = singleton.NewLazy(func() *Client { return dial() })
//	...
//	db.Instance().Query(...)
type Lazy[T any] struct {
	once sync.Once
	init func() *T
	inst *T
}

// NewLazy creates a Lazy with the given initializer.
// A nil initializer yields a zero-valued instance.
func NewLazy[T any](init func() *T) *Lazy[T] {
	return &Lazy[T]{init: init}
}

// Instance returns the shared instance, creating it on first use.
func (l *Lazy[T]) Instance() *T {
	l.once.Do(func() {
		if l.init != nil {
			l.inst = l.init()
		}
		if l.inst == nil {
			l.inst = new(T)
		}
		l.init = nil
	})
	return l.inst
}
