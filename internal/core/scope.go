package core

import (
	"sync"

	"go.uber.org/multierr"
)

// Acquire enters scope and returns a guard that exits it on Release.
func Acquire(scope Scope) (*Guard, error) {
	value, err := scope.Enter()
	if err != nil {
		return nil, err
	}

	return &Guard{scope: scope, value: value}, nil
}

// Decorate returns a Func that runs fn inside scope on every call. Scopes
// implementing Decorator control their own wrapping.
func Decorate(scope Scope, fn Func) Func {
	if decorator, ok := scope.(Decorator); ok {
		return decorator.Decorate(fn)
	}

	return around(scope, fn)
}

// With enters scope, runs body with the value the scope yields, and exits the
// scope on every path out of body, including a panic. An exit error is
// combined with body's error.
func With(scope Scope, body func(value any) error) (err error) {
	guard, err := Acquire(scope)
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, guard.Release())
	}()

	return body(guard.Value())
}

// Decorator is implemented by scopes that wrap functions differently from
// a plain enter, call, exit.
type Decorator interface {
	Decorate(fn Func) Func
}

// Func is the shape of a function a scope can decorate.
type Func func(args ...any) (any, error)

// Guard holds an entered scope until Release.
type Guard struct {
	scope Scope
	value any

	once sync.Once
	err  error
}

// Release exits the guarded scope. Only the first call exits; later calls
// return the first call's result.
func (g *Guard) Release() error {
	g.once.Do(func() {
		g.err = g.scope.Exit()
	})

	return g.err
}

// Value returns what the scope yielded on entry.
func (g *Guard) Value() any {
	return g.value
}

// Scope is a reversible change to registry state. Every successful Enter
// must be paired with one Exit.
type Scope interface {
	Enter() (any, error)
	Exit() error
}

// around is the plain decorator: enter, call, exit.
func around(scope Scope, fn Func) Func {
	return func(args ...any) (any, error) {
		var result any

		err := With(scope, func(any) error {
			var callErr error

			result, callErr = fn(args...)

			return callErr
		})

		return result, err
	}
}
