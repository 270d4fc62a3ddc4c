// Package automock lets a codebase declare default substitutes for named call
// sites, so that tests run against safe stand-ins unless a test opts out.
//
// Call sites go through a Slot:
//
//	var Charge = automock.NewSlot("billing.Charge", charge)
//
//	func Checkout(cart Cart) error {
//	    return Charge.Get()(cart.Total())
//	}
//
// and the default substitute is registered once:
//
//	func init() {
//	    automock.Register("billing.Charge", nil) // a *Mock returning zero values
//	}
//
// Tests then activate patching (see package automocktest), swap in
// differently configured substitutes with SwapMock, or reach the real
// implementation with UnmockSlot.
//
// This is the public API entry point. Implementation lives in internal/core.
package automock

import (
	"fmt"
	"log/slog"

	"github.com/toejough/automock/internal/config"
	"github.com/toejough/automock/internal/core"
)

// Activation is the scope returned by Activate.
type Activation = core.Activation

// Condition decides whether a Conditional scope applies.
type Condition = core.Condition

// Decorator is implemented by scopes that wrap functions themselves.
type Decorator = core.Decorator

// Factory builds a substitute from caller-supplied arguments.
type Factory = core.Factory

// FactoryEntry is one identifier's registered factory.
type FactoryEntry = core.FactoryEntry

// Func is the shape of a function a scope can decorate.
type Func = core.Func

// Guard holds an entered scope until Release.
type Guard = core.Guard

// Invoker is implemented by substitutes that answer calls of any signature.
type Invoker = core.Invoker

// Locator resolves identifiers to slots.
type Locator = core.Locator

// Mock is the default substitute.
type Mock = core.Mock

// Option configures a Registry.
type Option = core.Option

// Recorder is implemented by substitutes that know whether they were invoked.
type Recorder = core.Recorder

// Registration is returned by Register.
type Registration = core.Registration

// Registry maps identifiers to factories and tracks installed substitutes.
type Registry = core.Registry

// Scope is a reversible change to registry state.
type Scope = core.Scope

// Settings is the configuration a registry consults before each start.
type Settings = core.Settings

// Slot is a patchable location.
type Slot[T any] = core.Slot[T]

// Swap is the scope returned by SwapMock.
type Swap = core.Swap

// Target is the untyped view of a patchable location.
type Target = core.Target

// Unmock is the scope returned by UnmockSlot.
type Unmock = core.Unmock

// Values holds what each scope of a Multiple yielded.
type Values = core.Values

// CallMethod is the method name Mock records invocations under.
const CallMethod = core.CallMethod

// Errors re-exported from internal/core.
var (
	ErrDoubleStart            = core.ErrDoubleStart
	ErrDoubleStop             = core.ErrDoubleStop
	ErrDuplicateTarget        = core.ErrDuplicateTarget
	ErrIncompatibleSubstitute = core.ErrIncompatibleSubstitute
	ErrNotPatched             = core.ErrNotPatched
	ErrUnknownImport          = core.ErrUnknownImport
	ErrUnknownTarget          = core.ErrUnknownTarget
	ErrUnregistered           = core.ErrUnregistered
)

// Default is the process-wide registry behind the package-level helpers. It
// reads its settings from the environment before every start.
//
//nolint:gochecknoglobals // Process-wide registry is intentional: registrations happen in init functions
var Default = core.New(core.WithSettings(EnvironmentSettings))

// Acquire enters scope and returns a guard that exits it on Release.
func Acquire(scope Scope) (*Guard, error) {
	return core.Acquire(scope)
}

// Activate returns a scope that starts all of Default's patches on entry and
// stops them on exit.
func Activate() *Activation {
	return Default.Activate()
}

// Always returns a Condition that always reports value.
func Always(value bool) Condition {
	return core.Always(value)
}

// Conditional wraps inner so that it is only entered when cond holds.
func Conditional(cond Condition, inner Scope) *core.ConditionalScope {
	return core.Conditional(cond, inner)
}

// Decorate returns a Func that runs fn inside scope on every call.
func Decorate(scope Scope, fn Func) Func {
	return core.Decorate(scope, fn)
}

// DefaultFactory builds a fresh Mock whose default results are args.
func DefaultFactory(args ...any) (any, error) {
	return core.DefaultFactory(args...)
}

// Defer attaches a registration hook to an import path on Default.
func Defer(path string, hook func(*Registry)) {
	Default.Defer(path, hook)
}

// EnvironmentSettings loads registry settings from the process environment.
func EnvironmentSettings() (Settings, error) {
	cfg, err := config.FromEnvironment()
	if err != nil {
		return Settings{}, err
	}

	return Settings{RegistrationImports: cfg.RegistrationImports, Strict: cfg.Strict}, nil
}

// GetCalledMocks returns Default's installed substitutes that recorded a call.
func GetCalledMocks() map[string]any {
	return Default.Called()
}

// GetMock returns the substitute Default has installed for id.
func GetMock(id string) (any, error) {
	return Default.Get(id)
}

// MockOf returns the substitute installed for id in registry as a T.
func MockOf[T any](registry *Registry, id string) (T, error) {
	var zero T

	sub, err := registry.Get(id)
	if err != nil {
		return zero, err
	}

	typed, ok := sub.(T)
	if !ok {
		return zero, fmt.Errorf("%w: substitute for %q is %T, not %T", ErrIncompatibleSubstitute, id, sub, zero)
	}

	return typed, nil
}

// Multiple composes scopes into one.
func Multiple(scopes ...Scope) *core.MultipleScope {
	return core.Multiple(scopes...)
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	return core.New(opts...)
}

// NewLocator creates an empty locator.
func NewLocator() *Locator {
	return core.NewLocator()
}

// NewMock creates a Mock that returns returns from every call.
func NewMock(returns ...any) *Mock {
	return core.NewMock(returns...)
}

// NewSlot creates a slot for impl bound to the default locator under id.
func NewSlot[T any](id string, impl T) *Slot[T] {
	return core.NewSlot(id, impl)
}

// NewSlotIn creates a slot for impl bound to loc under id.
func NewSlotIn[T any](loc *Locator, id string, impl T) *Slot[T] {
	return core.NewSlotIn(loc, id, impl)
}

// Register associates id with factory on Default; nil means DefaultFactory.
func Register(id string, factory Factory) *Registration {
	return Default.Register(id, factory)
}

// StartPatching starts Default's patches: every registered identifier when
// names is empty, otherwise each named identifier in turn.
func StartPatching(names ...string) error {
	if len(names) == 0 {
		return Default.StartAll()
	}

	for _, name := range names {
		err := Default.StartOne(name)
		if err != nil {
			return err
		}
	}

	return nil
}

// StopPatching stops Default's patches: all of them when names is empty,
// otherwise each named identifier in turn.
func StopPatching(names ...string) error {
	if len(names) == 0 {
		return Default.StopAll()
	}

	for _, name := range names {
		err := Default.StopOne(name)
		if err != nil {
			return err
		}
	}

	return nil
}

// SwapMock returns a scope that swaps in a substitute built from args for id
// on Default.
func SwapMock(id string, args ...any) *Swap {
	return Default.Swap(id, args...)
}

// UnmockSlot returns a scope that makes id's real implementation live on
// Default.
func UnmockSlot(id string) *Unmock {
	return Default.Unmock(id)
}

// With enters scope, runs body, and exits scope on every path out of body.
func With(scope Scope, body func(value any) error) error {
	return core.With(scope, body)
}

// WithLocator makes a registry resolve identifiers through loc.
func WithLocator(loc *Locator) Option {
	return core.WithLocator(loc)
}

// WithLogger sets the logger a registry writes misuse advisories to.
func WithLogger(logger *slog.Logger) Option {
	return core.WithLogger(logger)
}

// WithRegistrationImports fixes the registration imports run before each start.
func WithRegistrationImports(paths ...string) Option {
	return core.WithRegistrationImports(paths...)
}

// WithSettings sets the function a registry loads its settings from.
func WithSettings(load func() (Settings, error)) Option {
	return core.WithSettings(load)
}

// WithStrict turns double-start and double-stop advisories into errors.
func WithStrict(strict bool) Option {
	return core.WithStrict(strict)
}
