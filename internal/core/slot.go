package core

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Invoker is implemented by substitutes that can answer a call of any
// signature. A Slot holding a function type adapts an Invoker into a function
// of that type.
type Invoker interface {
	Invoke(args ...any) []any
}

// Slot is a patchable location. Production code reads the current
// implementation through Get; the registry installs substitutes as layers on
// top of the real implementation.
type Slot[T any] struct {
	id   string
	impl T

	mu     sync.RWMutex
	layers []*layer[T]
}

// NewSlot creates a slot for impl and binds it to the default locator under id.
// It panics if id is already bound.
func NewSlot[T any](id string, impl T) *Slot[T] {
	return NewSlotIn(DefaultLocator, id, impl)
}

// NewSlotIn creates a slot for impl and binds it to loc under id.
// It panics if id is already bound in loc.
func NewSlotIn[T any](loc *Locator, id string, impl T) *Slot[T] {
	slot := &Slot[T]{id: id, impl: impl}
	loc.MustBind(slot)

	return slot
}

// Depth returns the number of substitutes currently layered over the real value.
func (s *Slot[T]) Depth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.layers)
}

// Get returns the innermost installed substitute, or the real implementation
// if nothing is installed.
func (s *Slot[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n := len(s.layers); n > 0 {
		return s.layers[n-1].value
	}

	return s.impl
}

// ID returns the identifier the slot is bound under.
func (s *Slot[T]) ID() string {
	return s.id
}

// Install layers sub over the slot's current value. The returned release
// function removes exactly that layer, wherever it sits in the stack, and is
// safe to call more than once.
func (s *Slot[T]) Install(sub any) (func(), error) {
	value, err := s.adapt(sub)
	if err != nil {
		return nil, err
	}

	installed := &layer[T]{value: value}

	s.mu.Lock()
	s.layers = append(s.layers, installed)
	s.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() { s.remove(installed) })
	}, nil
}

// Real returns the real implementation regardless of installed substitutes.
func (s *Slot[T]) Real() T {
	return s.impl
}

// Resolve returns the live value at the slot, as Get does, untyped.
func (s *Slot[T]) Resolve() any {
	return s.Get()
}

// Unpatched returns the real implementation, untyped.
func (s *Slot[T]) Unpatched() any {
	return s.impl
}

func (s *Slot[T]) adapt(sub any) (T, error) {
	var zero T

	if value, ok := sub.(T); ok {
		return value, nil
	}

	want := reflect.TypeFor[T]()

	invoker, ok := sub.(Invoker)
	if !ok || want.Kind() != reflect.Func {
		return zero, fmt.Errorf("%w: %T cannot stand in for %s at %q", ErrIncompatibleSubstitute, sub, want, s.id)
	}

	fn, ok := invokerFunc(want, invoker).Interface().(T)
	if !ok {
		return zero, fmt.Errorf("%w: adapted %T is not %s at %q", ErrIncompatibleSubstitute, sub, want, s.id)
	}

	return fn, nil
}

func (s *Slot[T]) remove(target *layer[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, installed := range s.layers {
		if installed == target {
			s.layers = slices.Delete(s.layers, i, i+1)

			return
		}
	}
}

// Target is the untyped view of a patchable location used by the registry.
type Target interface {
	ID() string
	Install(sub any) (release func(), err error)
	Resolve() any
	Unpatched() any
}

type layer[T any] struct {
	value T
}

// invokerFunc builds a function of type fnType that forwards its arguments to
// invoker and converts whatever it returns into fnType's results.
func invokerFunc(fnType reflect.Type, invoker Invoker) reflect.Value {
	return reflect.MakeFunc(fnType, func(in []reflect.Value) []reflect.Value {
		args := make([]any, len(in))
		for i, arg := range in {
			args[i] = arg.Interface()
		}

		return resultValues(fnType, invoker.Invoke(args...))
	})
}

// resultValues converts results into fnType's result values. Missing or nil
// results become zero values.
func resultValues(fnType reflect.Type, results []any) []reflect.Value {
	out := make([]reflect.Value, fnType.NumOut())

	for i := range out {
		want := fnType.Out(i)
		out[i] = reflect.New(want).Elem()

		if i >= len(results) || results[i] == nil {
			continue
		}

		got := reflect.ValueOf(results[i])

		switch {
		case got.Type().AssignableTo(want):
			out[i].Set(got)
		case got.Type().ConvertibleTo(want):
			out[i].Set(got.Convert(want))
		default:
			panic(fmt.Sprintf("automock: result %d of type %s cannot be returned as %s", i, got.Type(), want))
		}
	}

	return out
}
