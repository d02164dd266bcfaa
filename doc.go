// Package webview is a memory-safe Go wrapper around an opaque native webview
// engine.
//
// The engine itself (rendering, JavaScript, window chrome) sits behind the
// native.Engine function table. This package owns the boundary: who may
// destroy the native instance and when, how Go closures survive a trip
// through C callbacks, and which strings can cross at all.
//
// # Architecture Overview
//
//	webview/             Owning and weak handles, dispatch and bind marshaling
//	├── native/          Native function table and the purego libwebview loader
//	│   └── nativetest/  Recording engine for tests
//	├── headless/        Window-less engine backed by QuickJS
//	├── cstring/         NUL-terminated string codec
//	├── resource/        Handle table used for callback contexts
//	├── config/          TOML window configuration
//	├── errors/          Structured error types
//	└── cmd/webview/     Command-line host
//
// # Quick Start
//
//	func init() { runtime.LockOSThread() }
//
//	func main() {
//	    lib, err := native.LoadDefault()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    w, err := webview.New(lib, webview.WithDebug(true))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer w.Close()
//
//	    w.SetTitle("Hello")
//	    w.SetSize(800, 600, webview.HintNone)
//	    w.Navigate("https://example.com")
//	    w.Run()
//	}
//
// # Ownership
//
// A *Webview is one strong reference to a shared control block. Clone adds a
// reference, Close drops one. Closing the last reference terminates and then
// destroys the native instance, exactly once. If the event loop is still
// running at that point, destruction waits until Run returns.
//
// Weak (from Downgrade) observes the engine without keeping it alive. Its
// operations upgrade, run, and release, failing with errors.ErrHandleExpired
// once the engine is gone. Weak is the form to capture in goroutines and
// callbacks.
//
// # Callbacks
//
// Dispatch runs a closure once on the event-loop thread. Bind registers a
// handler for a JavaScript-callable function; the handler receives a sequence
// id and the JSON argument list and answers later with Return, from any
// goroutine. BindFunc does the JSON plumbing for ordinary Go functions.
//
// # Threading
//
// Run must be called on the thread that owns the native event loop (the main
// thread on macOS). Dispatch, Terminate, Return, Clone, Close and the whole
// Weak surface are safe from any goroutine. SetTitle, SetSize, Navigate while
// running, Init and Eval belong on the event-loop thread; from elsewhere wrap
// them in Dispatch. This is a documented contract, not something the wrapper
// can check.
//
// # Errors
//
// Text containing a NUL byte and operations on a released reference fail
// before any native call is made, on both the owning and the weak surface.
package webview
