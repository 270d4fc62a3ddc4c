// Package automocktest ties automock scopes to the lifetime of a test.
//
//	func TestCheckout(t *testing.T) {
//	    reg := automocktest.Activate(t) // patches stop when the test ends
//	    ...
//	    charge := automocktest.MockOf(t, reg, "billing.Charge")
//	    charge.AssertNumberOfCalls(t, automock.CallMethod, 1)
//	}
//
// Each helper reports failures through t.Fatalf and undoes its change with
// t.Cleanup, so helpers called in sequence unwind in reverse order.
package automocktest

import (
	"github.com/toejough/automock"
)

// Activate starts all patches of automock.Default for the rest of the test.
func Activate(t TestReporter) *automock.Registry {
	t.Helper()

	return ActivateRegistry(t, automock.Default)
}

// ActivateRegistry starts all patches of registry for the rest of the test.
func ActivateRegistry(t TestReporter, registry *automock.Registry) *automock.Registry {
	t.Helper()

	hold(t, registry.Activate(), "activating patches")

	return registry
}

// MockOf returns the *automock.Mock installed for id.
func MockOf(t TestReporter, registry *automock.Registry, id string) *automock.Mock {
	t.Helper()

	mocked, err := automock.MockOf[*automock.Mock](registry, id)
	if err != nil {
		t.Fatalf("automock: %v", err)
	}

	return mocked
}

// Swap swaps in a substitute for id built from args, for the rest of the test,
// and returns it.
func Swap(t TestReporter, registry *automock.Registry, id string, args ...any) any {
	t.Helper()

	return hold(t, registry.Swap(id, args...), "swapping "+id)
}

// Unmock makes id's real implementation live for the rest of the test and
// returns it.
func Unmock(t TestReporter, registry *automock.Registry, id string) any {
	t.Helper()

	return hold(t, registry.Unmock(id), "unmocking "+id)
}

// TestReporter is the subset of testing.TB automocktest needs.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
	Cleanup(cleanupFunc func())
}

// hold enters scope and exits it when the test finishes.
func hold(t TestReporter, scope automock.Scope, action string) any {
	t.Helper()

	guard, err := automock.Acquire(scope)
	if err != nil {
		t.Fatalf("automock: %s: %v", action, err)

		return nil
	}

	t.Cleanup(func() {
		err := guard.Release()
		if err != nil {
			t.Fatalf("automock: undoing %s: %v", action, err)
		}
	})

	return guard.Value()
}
