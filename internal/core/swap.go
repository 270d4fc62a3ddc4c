package core

import "sync"

// Swap returns a scope that, while entered, replaces id's substitute with a
// fresh one built by id's factory from args. Swaps over the same identifier
// nest and unwind last in, first out. The same Swap may be entered again
// before it is exited; each Exit undoes the latest Enter.
func (r *Registry) Swap(id string, args ...any) *Swap {
	return &Swap{registry: r, id: id, args: args}
}

// Swap is the scope built by Registry.Swap.
type Swap struct {
	registry *Registry
	id       string
	args     []any

	mu     sync.Mutex
	frames []*MultipleScope
}

// Enter builds the new substitute, layers it over id's location, makes it
// id's active table entry, and yields it.
func (s *Swap) Enter() (any, error) {
	factory, err := s.registry.Factory(s.id)
	if err != nil {
		return nil, err
	}

	sub, err := factory(s.args...)
	if err != nil {
		return nil, err
	}

	frame := Multiple(
		&layerScope{registry: s.registry, id: s.id, sub: sub},
		&entryScope{registry: s.registry, id: s.id, sub: sub},
	)

	values, err := frame.enter()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.frames = append(s.frames, frame)
	s.mu.Unlock()

	return values.At(0), nil
}

// Exit removes the latest entered substitute from id's location and from the
// active table.
func (s *Swap) Exit() error {
	s.mu.Lock()

	n := len(s.frames)
	if n == 0 {
		s.mu.Unlock()

		return nil
	}

	frame := s.frames[n-1]
	s.frames = s.frames[:n-1]
	s.mu.Unlock()

	return frame.Exit()
}

// ID returns the swapped identifier.
func (s *Swap) ID() string {
	return s.id
}

// entryScope stacks an active-table entry for sub while entered. Exit removes
// only that entry, so entries pushed or removed by others in between are left
// alone.
type entryScope struct {
	registry *Registry
	id       string
	sub      any
	hidden   bool

	entry *activeEntry
}

func (e *entryScope) Enter() (any, error) {
	e.entry = &activeEntry{sub: e.sub, hidden: e.hidden}
	e.registry.pushActive(e.id, e.entry)

	return e.sub, nil
}

func (e *entryScope) Exit() error {
	if e.entry != nil {
		e.registry.popActive(e.id, e.entry)
	}

	return nil
}

// layerScope installs sub at an identifier's location while entered.
type layerScope struct {
	registry *Registry
	id       string
	sub      any

	release func()
}

func (l *layerScope) Enter() (any, error) {
	target, err := l.registry.locator.Lookup(l.id)
	if err != nil {
		return nil, err
	}

	l.release, err = target.Install(l.sub)
	if err != nil {
		return nil, err
	}

	return l.sub, nil
}

func (l *layerScope) Exit() error {
	if l.release != nil {
		l.release()
	}

	return nil
}
