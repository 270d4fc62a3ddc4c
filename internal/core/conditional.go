package core

import "sync"

// Always returns a Condition that always reports value.
func Always(value bool) Condition {
	return func() bool { return value }
}

// Conditional wraps inner so that it is only entered when cond holds. The
// condition is evaluated at each use, never ahead of time.
func Conditional(cond Condition, inner Scope) *ConditionalScope {
	return &ConditionalScope{cond: cond, inner: inner}
}

// Condition decides whether a conditional scope applies.
type Condition func() bool

// ConditionalScope is the scope built by Conditional.
type ConditionalScope struct {
	cond  Condition
	inner Scope

	mu      sync.Mutex
	entered []bool
}

// Decorate wraps fn so that each call checks the condition: when it holds,
// fn runs decorated by inner; otherwise fn runs directly and inner is not
// touched.
func (c *ConditionalScope) Decorate(fn Func) Func {
	return func(args ...any) (any, error) {
		if !c.cond() {
			return fn(args...)
		}

		return Decorate(c.inner, fn)(args...)
	}
}

// Enter enters inner if the condition holds and yields its value; otherwise
// it yields nil.
func (c *ConditionalScope) Enter() (any, error) {
	if !c.cond() {
		c.push(false)

		return nil, nil
	}

	value, err := c.inner.Enter()
	if err != nil {
		return nil, err
	}

	c.push(true)

	return value, nil
}

// Exit exits inner if the matching Enter entered it.
func (c *ConditionalScope) Exit() error {
	if !c.pop() {
		return nil
	}

	return c.inner.Exit()
}

// Inner returns the wrapped scope.
func (c *ConditionalScope) Inner() Scope {
	return c.inner
}

func (c *ConditionalScope) pop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entered)
	if n == 0 {
		return false
	}

	entered := c.entered[n-1]
	c.entered = c.entered[:n-1]

	return entered
}

func (c *ConditionalScope) push(entered bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entered = append(c.entered, entered)
}
