package webview

import (
	"encoding/json"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/webview/errors"
)

// Return statuses understood by the script side.
const (
	StatusResolve int32 = 0
	StatusReject  int32 = 1
)

var errorType = reflect.TypeFor[error]()

// binder adapts a typed Go function to the (seq, req) bind protocol.
type binder struct {
	name     string
	fn       reflect.Value
	in       []reflect.Type
	variadic bool
	value    bool // first result is a value
	fails    bool // last result is an error
}

func newBinder(name string, fn any) (*binder, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Op("bind_func").
			Path(name).
			Value(fmt.Sprintf("%T", fn)).
			Detail("expected a function").
			Build()
	}

	t := v.Type()
	b := &binder{name: name, fn: v, variadic: t.IsVariadic()}
	for i := range t.NumIn() {
		b.in = append(b.in, t.In(i))
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			b.fails = true
		} else {
			b.value = true
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Op("bind_func").
				Path(name).
				Detail("second result must be error, got %s", t.Out(1)).
				Build()
		}
		b.value, b.fails = true, true
	default:
		return nil, errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Op("bind_func").
			Path(name).
			Detail("too many results: %d", t.NumOut()).
			Build()
	}
	return b, nil
}

// args decodes the JSON argument array into call arguments.
func (b *binder) args(req string) ([]reflect.Value, error) {
	var raw []json.RawMessage
	if req != "" {
		if err := json.Unmarshal([]byte(req), &raw); err != nil {
			return nil, errors.Wrap(errors.PhaseBind, errors.KindInvalidInput, err, "arguments are not a JSON array")
		}
	}

	fixed := len(b.in)
	if b.variadic {
		fixed--
		if len(raw) < fixed {
			return nil, errors.InvalidInput(errors.PhaseBind,
				fmt.Sprintf("%s expects at least %d arguments, got %d", b.name, fixed, len(raw)))
		}
	} else if len(raw) != fixed {
		return nil, errors.InvalidInput(errors.PhaseBind,
			fmt.Sprintf("%s expects %d arguments, got %d", b.name, fixed, len(raw)))
	}

	out := make([]reflect.Value, len(raw))
	for i, msg := range raw {
		var t reflect.Type
		if i < fixed {
			t = b.in[i]
		} else {
			t = b.in[fixed].Elem()
		}
		p := reflect.New(t)
		if err := json.Unmarshal(msg, p.Interface()); err != nil {
			return nil, errors.Wrap(errors.PhaseBind, errors.KindInvalidInput, err,
				fmt.Sprintf("argument %d of %s", i, b.name))
		}
		out[i] = p.Elem()
	}
	return out, nil
}

// call runs the function and reports the JSON result and status.
func (b *binder) call(req string) (result string, status int32) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("bound function panicked",
				zap.String("name", b.name),
				zap.String("panic", fmt.Sprint(r)))
			result, status = rejection(fmt.Errorf("%s: panic: %v", b.name, r)), StatusReject
		}
	}()

	args, err := b.args(req)
	if err != nil {
		return rejection(err), StatusReject
	}

	out := b.fn.Call(args)
	if b.fails {
		if e := out[len(out)-1]; !e.IsNil() {
			return rejection(e.Interface().(error)), StatusReject
		}
	}
	if !b.value {
		return "null", StatusResolve
	}

	data, err := json.Marshal(out[0].Interface())
	if err != nil {
		return rejection(errors.Wrap(errors.PhaseBind, errors.KindEncoding, err, "result of "+b.name)), StatusReject
	}
	return string(data), StatusResolve
}

func rejection(err error) string {
	data, _ := json.Marshal(err.Error())
	return string(data)
}

// BindFunc binds a Go function under name. Script arguments are decoded from
// JSON into the function's parameters. The function may return nothing, a
// value, an error, or a value and an error; a value resolves the promise with
// its JSON encoding and an error rejects it with the message.
//
// The function runs synchronously on the event-loop thread. The binding holds
// only a weak reference to the instance.
func (w *Webview) BindFunc(name string, fn any) error {
	if _, err := w.live(errors.PhaseBind, "bind_func"); err != nil {
		return err
	}
	b, err := newBinder(name, fn)
	if err != nil {
		return err
	}

	weak := w.Downgrade()
	return w.Bind(name, func(seq, req string) {
		result, status := b.call(req)
		if err := weak.Return(seq, status, result); err != nil {
			Logger().Debug("bound call result dropped",
				zap.String("name", name),
				zap.String("seq", seq),
				zap.Error(err))
		}
	})
}
