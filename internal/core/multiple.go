package core

import "go.uber.org/multierr"

// Multiple composes scopes into one.
//
// Enter enters each scope in order and yields their values as Values. If one
// fails, the scopes already entered are exited and the error returned.
// Exit exits each scope in the same order they were entered, not reversed,
// and keeps going past failures. As a decorator, each scope wraps the result
// of the previous one, so the last scope is the outermost.
func Multiple(scopes ...Scope) *MultipleScope {
	return &MultipleScope{scopes: scopes}
}

// MultipleScope is the scope built by Multiple.
type MultipleScope struct {
	scopes []Scope
}

// Decorate applies each scope's decorator in sequence.
func (m *MultipleScope) Decorate(fn Func) Func {
	decorated := fn
	for _, scope := range m.scopes {
		decorated = Decorate(scope, decorated)
	}

	return decorated
}

// Enter enters every scope in order. The yielded value is a Values.
func (m *MultipleScope) Enter() (any, error) {
	return m.enter()
}

// Exit exits every scope in entry order, combining their errors.
func (m *MultipleScope) Exit() error {
	return exitAll(m.scopes)
}

// Scopes returns the composed scopes.
func (m *MultipleScope) Scopes() []Scope {
	return m.scopes
}

func (m *MultipleScope) enter() (Values, error) {
	values := make(Values, 0, len(m.scopes))

	for i, scope := range m.scopes {
		value, err := scope.Enter()
		if err != nil {
			return nil, multierr.Append(err, exitAll(m.scopes[:i]))
		}

		values = append(values, value)
	}

	return values, nil
}

// Values holds what each scope of a Multiple yielded, by position.
type Values []any

// At returns the value yielded by the i'th scope.
func (v Values) At(i int) any {
	return v[i]
}

// Len returns the number of values.
func (v Values) Len() int {
	return len(v)
}

func exitAll(scopes []Scope) error {
	var err error
	for _, scope := range scopes {
		err = multierr.Append(err, scope.Exit())
	}

	return err
}
