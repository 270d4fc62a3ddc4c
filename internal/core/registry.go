package core

import (
	"log/slog"
	"sync"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLocator makes the registry resolve identifiers through loc instead of
// DefaultLocator.
func WithLocator(loc *Locator) Option {
	return func(r *Registry) {
		r.locator = loc
	}
}

// WithLogger sets the logger misuse advisories are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithRegistrationImports fixes the registration imports run before each start.
func WithRegistrationImports(paths ...string) Option {
	return WithSettings(func() (Settings, error) {
		return Settings{RegistrationImports: paths}, nil
	})
}

// WithSettings sets the function the registry loads its settings from. It is
// called before every start, so changes between uses are respected.
func WithSettings(load func() (Settings, error)) Option {
	return func(r *Registry) {
		r.settings = load
	}
}

// WithStrict turns double-start and double-stop advisories into errors.
func WithStrict(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// Registry maps identifiers to substitute factories and tracks which
// substitutes are installed. All state is owned by the registry; tests that
// run in parallel should each construct their own.
type Registry struct {
	locator  *Locator
	logger   *slog.Logger
	strict   bool
	settings func() (Settings, error)

	mu          sync.Mutex
	factories   map[string]Factory
	order       []string
	hooks       map[string]func(*Registry)
	imported    map[string]bool
	lastStrict  bool
	handles     map[string]*handle
	handleOrder []string
	active      map[string][]*activeEntry
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	registry := &Registry{
		locator:   DefaultLocator,
		logger:    slog.Default(),
		settings:  func() (Settings, error) { return Settings{}, nil },
		factories: make(map[string]Factory),
		hooks:     make(map[string]func(*Registry)),
		imported:  make(map[string]bool),
		handles:   make(map[string]*handle),
		active:    make(map[string][]*activeEntry),
	}

	for _, opt := range opts {
		opt(registry)
	}

	return registry
}

// Locator returns the locator the registry resolves identifiers through.
func (r *Registry) Locator() *Locator {
	return r.locator
}

// Settings is the configuration a registry consults before each start.
type Settings struct {
	// RegistrationImports lists, in order, the deferred registration hooks to
	// run before patching starts.
	RegistrationImports []string
	// Strict turns double-start and double-stop advisories into errors.
	Strict bool
}
