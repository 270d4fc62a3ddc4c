package core

import "fmt"

// DefaultFactory builds a fresh Mock whose default results are args.
func DefaultFactory(args ...any) (any, error) {
	return NewMock(args...), nil
}

// Factory builds a substitute from caller-supplied arguments.
type Factory func(args ...any) (any, error)

// FactoryEntry is one identifier's registered factory.
type FactoryEntry struct {
	ID      string
	Factory Factory
}

// Registration is returned by Register. Its Use method replaces the
// registered factory, so a factory can be declared and registered at once:
//
//	var greeterFactory = reg.Register("greet.Hello", nil).Use(func(args ...any) (any, error) {
//	    return core.NewMock("hi"), nil
//	})
type Registration struct {
	registry *Registry
	id       string
}

// ID returns the registered identifier.
func (reg *Registration) ID() string {
	return reg.id
}

// Use makes factory the identifier's factory and returns it unchanged.
func (reg *Registration) Use(factory Factory) Factory {
	reg.registry.setFactory(reg.id, factory)

	return factory
}

// Defer attaches a registration hook to an import path. The hook runs once,
// before patching starts, if path is listed in the registry's registration
// imports.
func (r *Registry) Defer(path string, hook func(*Registry)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks[path] = hook
}

// Factories returns a snapshot of the registered factories in registration order.
func (r *Registry) Factories() []FactoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]FactoryEntry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, FactoryEntry{ID: id, Factory: r.factories[id]})
	}

	return entries
}

// Factory returns the factory registered for id.
func (r *Registry) Factory(id string) (Factory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnregistered, id)
	}

	return factory, nil
}

// Register associates id with factory; a nil factory means DefaultFactory.
// Registering an identifier again replaces its factory but keeps its original
// position in registration order. The identifier does not need to be bound
// to a slot yet.
func (r *Registry) Register(id string, factory Factory) *Registration {
	r.setFactory(id, factory)

	return &Registration{registry: r, id: id}
}

// preImport loads the registry's settings and runs the hooks of the
// configured registration imports that have not run yet.
func (r *Registry) preImport() error {
	settings, err := r.settings()
	if err != nil {
		return fmt.Errorf("automock: loading settings: %w", err)
	}

	r.mu.Lock()
	r.lastStrict = settings.Strict
	r.mu.Unlock()

	for _, path := range settings.RegistrationImports {
		r.mu.Lock()
		hook, known := r.hooks[path]
		done := r.imported[path]

		if known {
			r.imported[path] = true
		}
		r.mu.Unlock()

		if !known {
			return fmt.Errorf("%w: %q", ErrUnknownImport, path)
		}

		if done {
			continue
		}

		r.logger.Debug("automock: running registration import", "import", path)
		hook(r)
	}

	return nil
}

func (r *Registry) setFactory(id string, factory Factory) {
	if factory == nil {
		factory = DefaultFactory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[id]; !exists {
		r.order = append(r.order, id)
	}

	r.factories[id] = factory
}
