// Package resource provides a thread-safe handle table for values that are
// referenced from outside the Go heap.
//
// Native code cannot hold Go pointers, so values that must be reachable from a
// foreign callback are stored in a Table and addressed by an integer Handle.
// The handle is what crosses the boundary; the value stays in Go memory.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	handle := table.Insert(kind, myValue)
//
//	// Retrieve value by handle
//	value, ok := table.Get(handle)
//
//	// Remove and get value (one-shot consumers)
//	value, ok := table.Remove(handle)
//
// Handle 0 is reserved and never returned by a successful Insert, so it can
// stand for "no context" on the native side. Freed handles are reused.
//
// # Kinds
//
// Every entry carries a Kind chosen by the caller:
//
//	const KindOneShot resource.Kind = 1
//	const KindPersistent resource.Kind = 2
//
//	value, ok := table.GetTyped(handle, KindOneShot) // !ok for persistent entries
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(observerFunc(func(e resource.Event) {
//	    log.Printf("%v %d", e.Type, e.Handle)
//	}))
//
// # Memory Management
//
// Entries are not garbage collected while they are in the table. The owner must
// call Remove, RemoveIf or Close once the foreign side can no longer use a handle.
// Values implementing Dropper are notified when they leave the table.
package resource
