// Package native defines the function table of the native webview engine and
// provides a loader for the real libwebview shared library.
//
// The engine is an external collaborator: rendering, script execution and
// window-system integration all live behind the thirteen entry points of
// Engine. This package does not make those calls safe; it only describes
// them. Ownership, string encoding and callback marshaling are layered on top
// by the webview package.
//
// # Calling convention
//
// All text parameters are NUL-terminated byte sequences passed as *byte (see
// package cstring). The engine copies what it needs before returning, so the
// caller only has to keep a buffer alive for the duration of the call.
//
// Callbacks use a fixed shape per operation kind:
//
//	dispatch: func(h Handle, arg uintptr)
//	bind:     func(seq, req *byte, arg uintptr)
//
// arg is an opaque context address chosen by the caller and handed back
// unchanged.
//
// # Loading libwebview
//
//	lib, err := native.LoadDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h := lib.Create(false, 0)
//
// LoadDefault searches $WEBVIEW_PATH and the executable's directory before
// falling back to the system loader. Loading uses purego, so no C toolchain is
// needed at build time.
package native
