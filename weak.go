package webview

import (
	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/native"
)

// Weak observes an instance without keeping it alive. The zero value is
// always expired. Weak is a value type and may be copied freely.
type Weak struct {
	ctl *control
}

// Upgrade returns a new owning reference, or a HandleExpired error once the
// last owning reference is gone. It never revives a released instance.
func (w Weak) Upgrade() (*Webview, error) {
	if w.ctl == nil || !w.ctl.acquire() {
		return nil, errors.HandleExpired(errors.PhaseHandle, "upgrade")
	}
	return newOwner(w.ctl), nil
}

// Alive reports whether an owning reference still exists. The answer may be
// stale by the time the caller acts on it; use Upgrade to hold the instance.
func (w Weak) Alive() bool {
	return w.ctl != nil && w.ctl.alive()
}

// with upgrades, runs fn against the temporary reference and releases it.
func (w Weak) with(phase errors.Phase, op string, fn func(*Webview) error) error {
	if w.ctl == nil || !w.ctl.acquire() {
		return errors.HandleExpired(phase, op)
	}
	tmp := newOwner(w.ctl)
	defer tmp.Close()
	return fn(tmp)
}

// Terminate stops the event loop if the instance is still alive.
func (w Weak) Terminate() error {
	return w.with(errors.PhaseHandle, native.SymTerminate, (*Webview).Terminate)
}

// Dispatch schedules fn on the event-loop thread if the instance is still alive.
func (w Weak) Dispatch(fn func(*Webview)) error {
	return w.with(errors.PhaseDispatch, native.SymDispatch, func(v *Webview) error {
		return v.Dispatch(fn)
	})
}

// Bind binds name if the instance is still alive.
func (w Weak) Bind(name string, fn func(seq, req string)) error {
	return w.with(errors.PhaseBind, native.SymBind, func(v *Webview) error {
		return v.Bind(name, fn)
	})
}

// BindFunc binds a typed Go function if the instance is still alive.
func (w Weak) BindFunc(name string, fn any) error {
	return w.with(errors.PhaseBind, native.SymBind, func(v *Webview) error {
		return v.BindFunc(name, fn)
	})
}

// Window returns the native window reference if the instance is still alive.
func (w Weak) Window() (native.Window, error) {
	var win native.Window
	err := w.with(errors.PhaseNative, native.SymGetWindow, func(v *Webview) error {
		var err error
		win, err = v.Window()
		return err
	})
	return win, err
}

// Return settles a bound call if the instance is still alive.
func (w Weak) Return(seq string, status int32, result string) error {
	return w.with(errors.PhaseReturn, native.SymReturn, func(v *Webview) error {
		return v.Return(seq, status, result)
	})
}

// Eval runs js if the instance is still alive.
func (w Weak) Eval(js string) error {
	return w.with(errors.PhaseNative, native.SymEval, func(v *Webview) error {
		return v.Eval(js)
	})
}
