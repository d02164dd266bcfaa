package cstring

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/webview/errors"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		bytes []byte
	}{
		{name: "empty", text: "", bytes: []byte{0}},
		{name: "ascii", text: "hi", bytes: []byte{'h', 'i', 0}},
		{name: "utf8", text: "é", bytes: []byte{0xc3, 0xa9, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Encode("title", tt.text)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if string(buf) != string(tt.bytes) {
				t.Errorf("Encode(%q) = %v, want %v", tt.text, []byte(buf), tt.bytes)
			}
			if buf.String() != tt.text {
				t.Errorf("String() = %q, want %q", buf.String(), tt.text)
			}
			if buf.Len() != len(tt.text) {
				t.Errorf("Len() = %d, want %d", buf.Len(), len(tt.text))
			}
		})
	}
}

func TestEncode_EmbeddedNUL(t *testing.T) {
	for _, field := range []string{"url", "title", "js", "name", "seq", "result"} {
		t.Run(field, func(t *testing.T) {
			buf, err := Encode(field, "ab\x00cd")
			if err == nil {
				t.Fatal("expected error for embedded NUL")
			}
			if buf != nil {
				t.Error("no buffer should be returned on error")
			}
			if !stderrors.Is(err, errors.ErrEncoding) {
				t.Errorf("err = %v, want encoding error", err)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("err is %T, want *errors.Error", err)
			}
			if e.Value != 2 {
				t.Errorf("Value = %v, want 2", e.Value)
			}
			if len(e.Path) != 1 || e.Path[0] != field {
				t.Errorf("Path = %v, want [%s]", e.Path, field)
			}
		})
	}
}

func TestFromBytes(t *testing.T) {
	buf, err := FromBytes("result", []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if buf.String() != `{"ok":true}` {
		t.Errorf("String() = %q", buf.String())
	}

	if _, err := FromBytes("result", []byte{'a', 0}); !stderrors.Is(err, errors.ErrEncoding) {
		t.Errorf("err = %v, want encoding error", err)
	}
}

func TestDecode(t *testing.T) {
	buf, err := Encode("seq", "42")
	if err != nil {
		t.Fatal(err)
	}
	if got := Decode(buf.Ptr()); got != "42" {
		t.Errorf("Decode = %q, want %q", got, "42")
	}

	if got := Decode(nil); got != "" {
		t.Errorf("Decode(nil) = %q, want empty", got)
	}

	var empty Buffer
	if empty.Ptr() != nil {
		t.Error("Ptr of empty buffer should be nil")
	}
}

func TestDecode_InvalidUTF8Panics(t *testing.T) {
	raw := []byte{0xff, 0xfe, 0}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on invalid UTF-8")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value is %T, want error", r)
		}
		if !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidUTF8}) {
			t.Errorf("panic = %v, want invalid_utf8", err)
		}
	}()
	Decode(&raw[0])
}
