package core

import (
	"slices"
	"sync"

	"github.com/stretchr/testify/mock"
)

// CallMethod is the method name under which a Mock records invocations.
// Use it with testify's expectation and assertion helpers:
//
//	m.On(core.CallMethod, "bob").Return("hi bob")
//	m.AssertCalled(t, core.CallMethod, "bob")
const CallMethod = "Call"

// Mock is the default substitute. It answers calls of any signature, records
// them through testify's mock.Mock, and returns its default results unless an
// explicit expectation matches first.
//
// Expectations registered with On take precedence over the defaults only when
// they are registered before the first call with the same number of arguments.
type Mock struct {
	mock.Mock

	mu       sync.Mutex
	defaults []any
	primed   map[int]bool
	calls    int
}

// NewMock creates a Mock that returns returns from every call.
func NewMock(returns ...any) *Mock {
	return &Mock{defaults: returns}
}

// CallCount returns how many times the mock has been invoked.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// Invoke records a call with args and returns the results for it.
func (m *Mock) Invoke(args ...any) []any {
	m.mu.Lock()
	m.calls++
	m.prime(len(args))
	defaults := slices.Clone(m.defaults)
	m.mu.Unlock()

	results := m.MethodCalled(CallMethod, args...)
	if len(results) == 1 {
		if _, ok := results[0].(useDefaults); ok {
			return defaults
		}
	}

	return results
}

// Returns replaces the default results and returns m for chaining.
func (m *Mock) Returns(values ...any) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.defaults = values

	return m
}

// WasCalled reports whether the mock has been invoked at least once.
func (m *Mock) WasCalled() bool {
	return m.CallCount() > 0
}

// prime registers a catch-all expectation for calls with arity arguments.
// Callers must hold m.mu.
func (m *Mock) prime(arity int) {
	if m.primed[arity] {
		return
	}

	if m.primed == nil {
		m.primed = make(map[int]bool)
	}

	anything := make([]any, arity)
	for i := range anything {
		anything[i] = mock.Anything
	}

	m.On(CallMethod, anything...).Return(useDefaults{}).Maybe()
	m.primed[arity] = true
}

// Recorder is implemented by substitutes that know whether they were invoked.
type Recorder interface {
	WasCalled() bool
}

// useDefaults marks results from the catch-all expectation.
type useDefaults struct{}
