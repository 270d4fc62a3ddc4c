package core

import (
	"fmt"
	"slices"
	"sync"
)

// DefaultLocator is the locator NewSlot binds to.
//
//nolint:gochecknoglobals // Package-level locator is intentional: slots are declared as package variables
var DefaultLocator = NewLocator()

// Locator resolves identifiers to the slots bound under them.
type Locator struct {
	mu      sync.RWMutex
	targets map[string]Target
}

// NewLocator creates an empty locator.
func NewLocator() *Locator {
	return &Locator{targets: make(map[string]Target)}
}

// Bind binds target under its identifier.
func (l *Locator) Bind(target Target) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.targets[target.ID()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTarget, target.ID())
	}

	l.targets[target.ID()] = target

	return nil
}

// IDs returns the bound identifiers, sorted.
func (l *Locator) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.targets))
	for id := range l.targets {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// Lookup returns the target bound under id.
func (l *Locator) Lookup(id string) (Target, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	target, ok := l.targets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, id)
	}

	return target, nil
}

// MustBind is Bind, panicking on error.
func (l *Locator) MustBind(target Target) {
	err := l.Bind(target)
	if err != nil {
		panic(err)
	}
}
