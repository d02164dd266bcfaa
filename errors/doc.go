// Package errors provides structured error types for the webview wrapper.
//
// Errors are categorized by Phase (which operation failed) and Kind (error category).
// The Error type carries the native operation, the offending argument path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindEncoding).
//		Op("webview_set_title").
//		Path("title").
//		Detail("embedded NUL at byte %d", 3).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.EmbeddedNUL(errors.PhaseEncode, "title", 3)
//	err := errors.HandleExpired(errors.PhaseDispatch, "dispatch")
//
// All errors implement the standard error interface and support errors.Is/As.
// The sentinels ErrHandleExpired, ErrEncoding and ErrNative match an error of
// their kind regardless of phase:
//
//	if errors.Is(err, errors.ErrHandleExpired) {
//	    // engine already gone
//	}
package errors
