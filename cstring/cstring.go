package cstring

import (
	"strings"
	"unicode/utf8"
	"unsafe"

	"github.com/wippyai/webview/errors"
)

// Buffer is a NUL-terminated byte sequence. The terminator is always the last byte.
type Buffer []byte

// Encode copies text into a new Buffer.
// field names the argument in the returned error.
func Encode(field, text string) (Buffer, error) {
	if i := strings.IndexByte(text, 0); i >= 0 {
		return nil, errors.EmbeddedNUL(errors.PhaseEncode, field, i)
	}
	buf := make(Buffer, len(text)+1)
	copy(buf, text)
	return buf, nil
}

// FromBytes is Encode for payloads already held as bytes.
func FromBytes(field string, b []byte) (Buffer, error) {
	for i, c := range b {
		if c == 0 {
			return nil, errors.EmbeddedNUL(errors.PhaseEncode, field, i)
		}
	}
	buf := make(Buffer, len(b)+1)
	copy(buf, b)
	return buf, nil
}

// Ptr returns the address of the first byte, suitable for a const char* parameter.
// The caller must keep the Buffer reachable until the native call returns.
func (b Buffer) Ptr() *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}

// Len returns the text length, excluding the terminator.
func (b Buffer) Len() int {
	if len(b) == 0 {
		return 0
	}
	return len(b) - 1
}

// String returns the text without the terminator.
func (b Buffer) String() string {
	if len(b) == 0 {
		return ""
	}
	return string(b[:len(b)-1])
}

// Decode reads a NUL-terminated string owned by the native side.
// A nil pointer decodes to "". Invalid UTF-8 panics.
func Decode(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	raw := unsafe.Slice(p, n)
	if !utf8.Valid(raw) {
		panic(errors.InvalidUTF8(errors.PhaseDecode, nil, raw))
	}
	return string(raw)
}
