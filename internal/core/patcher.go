package core

import (
	"fmt"
	"slices"
)

// Active returns a snapshot of every installed substitute by identifier.
func (r *Registry) Active() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]any, len(r.active))

	for id := range r.active {
		if sub, ok := r.activeSub(id); ok {
			snapshot[id] = sub
		}
	}

	return snapshot
}

// Called returns the installed substitutes that record at least one call
// since they were installed. Substitutes that do not implement Recorder are
// never included.
func (r *Registry) Called() map[string]any {
	called := make(map[string]any)

	for id, sub := range r.Active() {
		if recorder, ok := sub.(Recorder); ok && recorder.WasCalled() {
			called[id] = sub
		}
	}

	return called
}

// Get returns the substitute installed for id.
func (r *Registry) Get(id string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.activeSub(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotPatched, id)
	}

	return sub, nil
}

// Patched reports whether id has a live patch from StartAll or StartOne.
func (r *Registry) Patched(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.handles[id]

	return ok
}

// Resolve returns the live value at id's location, looked up afresh.
func (r *Registry) Resolve(id string) (any, error) {
	target, err := r.locator.Lookup(id)
	if err != nil {
		return nil, err
	}

	return target.Resolve(), nil
}

// StartAll patches every registered identifier, in registration order, with a
// substitute built by its factory from no arguments. Identifiers that are
// already patched are left as they are, and calling StartAll while anything
// is patched raises ErrDoubleStart as an advisory.
//
// A failing factory aborts the start: identifiers processed before it stay
// patched and the rest stay unpatched.
func (r *Registry) StartAll() error {
	_, err := r.startAll()

	return err
}

// StartOne patches a single identifier with a substitute built by its factory
// from no arguments. Starting an identifier that is already patched raises
// ErrDoubleStart as an advisory and leaves the existing patch in place.
func (r *Registry) StartOne(id string) error {
	err := r.preImport()
	if err != nil {
		return err
	}

	_, err = r.Factory(id)
	if err != nil {
		return err
	}

	if r.Patched(id) {
		return r.advise(ErrDoubleStart, id)
	}

	return r.start(id)
}

// StopAll releases every live patch, restoring the real implementations.
// Calling it while nothing is patched raises ErrDoubleStop as an advisory.
func (r *Registry) StopAll() error {
	r.mu.Lock()
	ids := slices.Clone(r.handleOrder)
	r.mu.Unlock()

	if len(ids) == 0 {
		return r.advise(ErrDoubleStop, "")
	}

	slices.Reverse(ids)

	for _, id := range ids {
		err := r.stop(id)
		if err != nil {
			return err
		}
	}

	return nil
}

// StopOne releases id's live patch.
func (r *Registry) StopOne(id string) error {
	return r.stop(id)
}

// advise logs a misuse advisory, or returns it when the registry is strict.
// id is empty for advisories about the whole registry.
func (r *Registry) advise(advisory error, id string) error {
	r.mu.Lock()
	strict := r.strict || r.lastStrict
	r.mu.Unlock()

	if id != "" {
		advisory = fmt.Errorf("%w: %q", advisory, id)
	}

	if strict {
		return advisory
	}

	r.logger.Warn("automock: misuse advisory", "id", id, "error", advisory)

	return nil
}

// activeSub returns the substitute of id's innermost active entry. A hidden
// innermost entry reports nothing. The caller holds r.mu.
func (r *Registry) activeSub(id string) (any, bool) {
	entries := r.active[id]
	if len(entries) == 0 {
		return nil, false
	}

	top := entries[len(entries)-1]
	if top.hidden {
		return nil, false
	}

	return top.sub, true
}

// popActive removes entry from id's active stack, wherever it sits.
func (r *Registry) popActive(id string, entry *activeEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeActive(id, entry)
}

// pushActive makes entry id's innermost active entry.
func (r *Registry) pushActive(id string, entry *activeEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active[id] = append(r.active[id], entry)
}

// removeActive drops entry from id's active stack. The caller holds r.mu.
func (r *Registry) removeActive(id string, entry *activeEntry) {
	entries := slices.DeleteFunc(r.active[id], func(other *activeEntry) bool { return other == entry })
	if len(entries) == 0 {
		delete(r.active, id)

		return
	}

	r.active[id] = entries
}

func (r *Registry) start(id string) error {
	factory, err := r.Factory(id)
	if err != nil {
		return err
	}

	sub, err := factory()
	if err != nil {
		return err
	}

	target, err := r.locator.Lookup(id)
	if err != nil {
		return err
	}

	release, err := target.Install(sub)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &activeEntry{sub: sub}

	r.handles[id] = &handle{id: id, entry: entry, release: release}
	r.handleOrder = append(r.handleOrder, id)
	r.active[id] = append(r.active[id], entry)

	return nil
}

// startAll does the work of StartAll and also reports the identifiers it
// patched, in start order.
func (r *Registry) startAll() ([]string, error) {
	err := r.preImport()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	live := len(r.handles) > 0
	ids := slices.Clone(r.order)
	r.mu.Unlock()

	var advisory error
	if live {
		advisory = r.advise(ErrDoubleStart, "")
	}

	var started []string

	for _, id := range ids {
		if r.Patched(id) {
			continue
		}

		err = r.start(id)
		if err != nil {
			return started, err
		}

		started = append(started, id)
	}

	return started, advisory
}

func (r *Registry) stop(id string) error {
	r.mu.Lock()

	live, ok := r.handles[id]
	if !ok {
		r.mu.Unlock()

		return fmt.Errorf("%w: %q", ErrNotPatched, id)
	}

	delete(r.handles, id)
	r.removeActive(id, live.entry)
	r.handleOrder = slices.DeleteFunc(r.handleOrder, func(other string) bool { return other == id })
	r.mu.Unlock()

	live.release()

	return nil
}

// activeEntry is one layer of an identifier's active table entry. Entries
// stack in the order their layers were installed on the slot; the innermost
// one is what Get reports. A hidden entry masks everything beneath it.
type activeEntry struct {
	sub    any
	hidden bool
}

// handle is a live patch: id's location redirected to entry's substitute
// until release runs.
type handle struct {
	id      string
	entry   *activeEntry
	release func()
}
