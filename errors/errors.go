package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation the error occurred in
type Phase string

const (
	PhaseEncode   Phase = "encode"   // host text to native buffer
	PhaseDecode   Phase = "decode"   // native buffer to host text
	PhaseHandle   Phase = "handle"   // reference counting and upgrade
	PhaseDispatch Phase = "dispatch" // scheduling onto the event loop
	PhaseBind     Phase = "bind"     // named binding registration and calls
	PhaseReturn   Phase = "return"   // result delivery for a bound call
	PhaseRun      Phase = "run"      // event loop
	PhaseNative   Phase = "native"   // native engine calls
	PhaseLoad     Phase = "load"     // native library loading
	PhaseConfig   Phase = "config"   // configuration parsing and validation
)

// Kind categorizes the error
type Kind string

const (
	KindHandleExpired Kind = "handle_expired"
	KindEncoding      Kind = "encoding"
	KindInvalidUTF8   Kind = "invalid_utf8"
	KindInvalidEnum   Kind = "invalid_enum"
	KindInvalidInput  Kind = "invalid_input"
	KindNotFound      Kind = "not_found"
	KindNative        Kind = "native"
)

// Sentinels for errors.Is checks that do not care about the phase.
var (
	ErrHandleExpired = &Error{Kind: KindHandleExpired}
	ErrEncoding      = &Error{Kind: KindEncoding}
	ErrNative        = &Error{Kind: KindNative}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// An empty Phase on the target matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the native operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Path sets the argument path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// HandleExpired reports an operation attempted after the engine was torn down
func HandleExpired(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHandleExpired,
		Op:     op,
		Detail: "engine already destroyed",
	}
}

// EmbeddedNUL reports text that cannot cross the native boundary
func EmbeddedNUL(phase Phase, field string, index int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindEncoding,
		Path:   []string{field},
		Detail: fmt.Sprintf("embedded NUL at byte %d", index),
		Value:  index,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, path []string, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Path:   path,
		Detail: fmt.Sprintf("invalid enum value %v for %s", value, enumType),
		Value:  value,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Native reports a failure surfaced by the native engine.
// The code is opaque to this layer.
func Native(op string, code int) *Error {
	return &Error{
		Phase:  PhaseNative,
		Kind:   KindNative,
		Op:     op,
		Detail: fmt.Sprintf("native error code %d", code),
		Value:  code,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a native library loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindNative,
		Detail: detail,
		Cause:  cause,
	}
}
