package core

import (
	"errors"
	"slices"

	"go.uber.org/multierr"
)

// Activate returns a scope that starts every registered patch on entry and
// stops them all on exit.
func (r *Registry) Activate() *Activation {
	return &Activation{registry: r}
}

// Activation is the scope built by Registry.Activate.
type Activation struct {
	registry *Registry
}

// Enter starts patching and yields the registry. When a strict registry
// reports ErrDoubleStart, the patches this call added are stopped again
// before the error is returned.
func (a *Activation) Enter() (any, error) {
	started, err := a.registry.startAll()
	if err != nil {
		if errors.Is(err, ErrDoubleStart) {
			return nil, multierr.Append(err, a.stopStarted(started))
		}

		return nil, err
	}

	return a.registry, nil
}

// Exit stops patching.
func (a *Activation) Exit() error {
	return a.registry.StopAll()
}

func (a *Activation) stopStarted(ids []string) error {
	var err error

	for _, id := range slices.Backward(ids) {
		err = multierr.Append(err, a.registry.stop(id))
	}

	return err
}
