package core

import (
	"slices"
	"sync"

	"go.uber.org/multierr"
)

// Unmock returns a scope that, while entered, removes id's patch and masks
// any substitutes swapped in over it, so the real implementation is live. On
// exit id is patched again with a fresh substitute from its factory; a
// substitute swapped in earlier is not restored over it.
func (r *Registry) Unmock(id string) *Unmock {
	return &Unmock{registry: r, id: id}
}

// Unmock is the scope built by Registry.Unmock.
type Unmock struct {
	registry *Registry
	id       string

	mu     sync.Mutex
	frames []*MultipleScope
}

// Decorate wraps fn so that it runs unmocked, with the real implementation
// appended to its arguments.
func (u *Unmock) Decorate(fn Func) Func {
	return func(args ...any) (any, error) {
		var result any

		err := With(u, func(live any) error {
			var callErr error

			result, callErr = fn(append(slices.Clone(args), live)...)

			return callErr
		})

		return result, err
	}
}

// Enter stops id's patch, layers the real implementation over whatever is
// still installed at its location, and yields the real implementation.
// It fails with ErrNotPatched if id is not patched.
func (u *Unmock) Enter() (any, error) {
	err := u.registry.StopOne(u.id)
	if err != nil {
		return nil, err
	}

	target, err := u.registry.locator.Lookup(u.id)
	if err != nil {
		return nil, err
	}

	impl := target.Unpatched()

	frame := Multiple(
		&layerScope{registry: u.registry, id: u.id, sub: impl},
		&entryScope{registry: u.registry, id: u.id, sub: impl, hidden: true},
	)

	_, err = frame.enter()
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	u.frames = append(u.frames, frame)
	u.mu.Unlock()

	return impl, nil
}

// Exit unmasks id's location and patches id again.
func (u *Unmock) Exit() error {
	u.mu.Lock()

	var frame *MultipleScope
	if n := len(u.frames); n > 0 {
		frame = u.frames[n-1]
		u.frames = u.frames[:n-1]
	}

	u.mu.Unlock()

	var err error
	if frame != nil {
		err = frame.Exit()
	}

	return multierr.Append(err, u.registry.StartOne(u.id))
}

// ID returns the unmocked identifier.
func (u *Unmock) ID() string {
	return u.id
}
