package resource

import (
	"sync"
)

// Table maps handles to values with kind information and observer support.
type Table struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new table.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
	}
}

// Insert adds a value and returns its handle, or 0 if the table is closed.
func (t *Table) Insert(kind Kind, value any) Handle {
	t.closeMu.RLock()
	if t.closed {
		t.closeMu.RUnlock()
		return 0
	}
	t.closeMu.RUnlock()

	handle, err := t.backend.Create(kind, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})

	return handle
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// GetTyped retrieves a value only if it has the expected kind.
func (t *Table) GetTyped(handle Handle, kind Kind) (any, bool) {
	e, ok := t.backend.lookup(handle)
	if !ok || e.kind != kind {
		return nil, false
	}
	return e.value, true
}

// Remove drops a value and returns (value, true) if found.
// Concurrent Removes of the same handle succeed at most once.
func (t *Table) Remove(handle Handle) (any, bool) {
	value, kind, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})

	return value, true
}

// RemoveIf drops every value for which match returns true and reports how many were removed.
func (t *Table) RemoveIf(match func(Handle, Kind, any) bool) int {
	// Collect handles first to avoid holding the lock during Remove
	var handles []Handle
	t.backend.Each(func(h Handle, kind Kind, value any) bool {
		if match(h, kind, value) {
			handles = append(handles, h)
		}
		return true
	})
	n := 0
	for _, h := range handles {
		if _, ok := t.Remove(h); ok {
			n++
		}
	}
	return n
}

// Each iterates over all live values.
func (t *Table) Each(fn func(Handle, Kind, any) bool) {
	t.backend.Each(fn)
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live values.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Clear drops all values.
func (t *Table) Clear() {
	t.RemoveIf(func(Handle, Kind, any) bool { return true })
}

// Close releases all values and stops accepting inserts.
func (t *Table) Close() error {
	t.closeMu.Lock()
	t.closed = true
	t.closeMu.Unlock()

	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
