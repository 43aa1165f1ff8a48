package cleanup

import "errors"

// Guard accumulates teardown functions and runs them in reverse order of
// registration, mirroring the stacking behavior of the defer statement.
// Not safe for concurrent use.
//
// Typical usage:
//
//	g := cleanup.New()
//	defer g.Run()
//	g.AddErr(conn.Close)
//	g.Add(cancel)
type Guard struct {
	fns  []func() error
	done bool
}

// New creates a Guard, optionally seeded with initial functions.
func New(fns ...func()) *Guard {
	g := &Guard{}
	for _, fn := range fns {
		g.Add(fn)
	}
	return g
}

// Add registers a teardown function.
func (g *Guard) Add(fn func()) {
	g.AddErr(func() error {
		fn()
		return nil
	})
}

// AddErr registers a teardown function whose error is collected by Run.
func (g *Guard) AddErr(fn func() error) {
	g.fns = append(g.fns, fn)
}

// Run executes the registered functions in LIFO order and joins their
// errors. Every function runs even when earlier ones fail. Run is a no-op
// after the first call.
func (g *Guard) Run() error {
	if g.done {
		return nil
	}
	g.done = true

	var errs []error
	for i := len(g.fns) - 1; i >= 0; i-- {
		if err := g.fns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	g.fns = nil
	return errors.Join(errs...)
}
