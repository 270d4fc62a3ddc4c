package core

import "errors"

// Exported variables.
var (
	// ErrDoubleStart is the advisory raised when patching is started while
	// patches are already live.
	ErrDoubleStart = errors.New("automock: start called again, already patched")
	// ErrDoubleStop is the advisory raised when patching is stopped while no
	// patches are live.
	ErrDoubleStop = errors.New("automock: stop called again, already stopped")
	// ErrDuplicateTarget is returned when two slots claim the same identifier.
	ErrDuplicateTarget = errors.New("automock: duplicate target identifier")
	// ErrIncompatibleSubstitute is returned when a substitute cannot stand in
	// for the value held by a slot.
	ErrIncompatibleSubstitute = errors.New("automock: incompatible substitute")
	// ErrNotPatched is returned when an identifier has no live patch.
	ErrNotPatched = errors.New("automock: not patched")
	// ErrUnknownImport is returned when a configured registration import has
	// no deferred registration hook.
	ErrUnknownImport = errors.New("automock: unknown registration import")
	// ErrUnknownTarget is returned when no slot is bound to an identifier.
	ErrUnknownTarget = errors.New("automock: unknown target")
	// ErrUnregistered is returned when an identifier has no registered factory.
	ErrUnregistered = errors.New("automock: unregistered identifier")
)
