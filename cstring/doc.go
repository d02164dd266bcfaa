// Package cstring converts between Go strings and the NUL-terminated byte
// buffers expected by the native webview engine.
//
// Encoding is checked: text containing a NUL byte cannot be represented in
// the native ABI and is rejected with an errors.KindEncoding error before any
// native call is made.
//
//	buf, err := cstring.Encode("title", "Hello")
//	if err != nil {
//	    return err
//	}
//	engine.SetTitle(h, buf.Ptr())
//	runtime.KeepAlive(buf)
//
// Decoding is for arguments supplied by the native engine itself, which are
// guaranteed to be terminated and well-formed. A malformed buffer is a broken
// native contract and Decode panics.
package cstring
