package webview

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/wippyai/webview/cstring"
	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/native"
	"github.com/wippyai/webview/resource"
)

// Callback contexts live in a process-wide table. The table handle is the
// opaque argument the native engine hands back to the trampolines, so no Go
// pointer ever crosses the boundary.
var contexts = resource.NewTable()

const (
	contextDispatch resource.Kind = 1
	contextBind     resource.Kind = 2
)

func init() {
	contexts.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		Logger().Debug("callback context",
			zap.Stringer("event", e.Type),
			zap.Uint32("context", uint32(e.Handle)),
			zap.Uint32("kind", uint32(e.Kind)))
	}))
}

type dispatchContext struct {
	ctl *control
	fn  func(*Webview)
}

type bindContext struct {
	ctl  *control
	name string
	fn   func(seq, req string)
}

// Dispatch schedules fn to run once on the event-loop thread. It is safe to
// call from any goroutine. fn receives a borrowed view of the instance which
// must not be retained beyond the call.
//
// A dispatch still queued when the instance is destroyed never runs.
func (w *Webview) Dispatch(fn func(*Webview)) error {
	ctl, err := w.live(errors.PhaseDispatch, native.SymDispatch)
	if err != nil {
		return err
	}
	if fn == nil {
		return errors.InvalidInput(errors.PhaseDispatch, "nil dispatch function")
	}

	h, err := register(ctl, contextDispatch, &dispatchContext{ctl: ctl, fn: fn}, errors.PhaseDispatch, native.SymDispatch)
	if err != nil {
		return err
	}
	ctl.engine.Dispatch(ctl.handle, dispatchTrampoline, uintptr(h))
	return nil
}

// Bind exposes a global JavaScript function called name. Each call from
// script invokes fn on the event-loop thread with a call identifier and the
// JSON array of arguments; answer it with Return. Binding the same name again
// replaces the previous function.
func (w *Webview) Bind(name string, fn func(seq, req string)) error {
	ctl, err := w.live(errors.PhaseBind, native.SymBind)
	if err != nil {
		return err
	}
	if fn == nil {
		return errors.InvalidInput(errors.PhaseBind, "nil bind function")
	}
	buf, err := encode("name", native.SymBind, name)
	if err != nil {
		return err
	}

	h, err := register(ctl, contextBind, &bindContext{ctl: ctl, name: name, fn: fn}, errors.PhaseBind, native.SymBind)
	if err != nil {
		return err
	}
	ctl.engine.Bind(ctl.handle, buf.Ptr(), bindTrampoline, uintptr(h))
	runtime.KeepAlive(buf)

	Logger().Debug("function bound",
		zap.Uintptr("handle", uintptr(ctl.handle)),
		zap.String("name", name),
		zap.Uint32("context", uint32(h)))
	return nil
}

// register stores a callback context, refusing instances already destroyed.
func register(ctl *control, kind resource.Kind, ctx any, phase errors.Phase, op string) (resource.Handle, error) {
	h := contexts.Insert(kind, ctx)
	if h == 0 {
		return 0, errors.New(phase, errors.KindNative).Op(op).Detail("callback context table closed").Build()
	}
	// Teardown may have swept the table between the liveness check and the insert.
	if ctl.destroyed.Load() {
		contexts.Remove(h)
		return 0, errors.HandleExpired(phase, op)
	}
	return h, nil
}

// dispatchTrampoline is the native entry point for every Dispatch.
// The context is one-shot and removed before the closure runs.
func dispatchTrampoline(_ native.Handle, arg uintptr) {
	h := resource.Handle(arg)
	if _, ok := contexts.GetTyped(h, contextDispatch); !ok {
		Logger().Warn("dispatch context not found", zap.Uint32("context", uint32(h)))
		return
	}
	v, ok := contexts.Remove(h)
	if !ok {
		return
	}
	ctx := v.(*dispatchContext)

	if !ctx.ctl.acquire() {
		Logger().Debug("dispatch dropped, instance released", zap.Uint32("context", uint32(h)))
		return
	}
	defer ctx.ctl.release()

	invoke("dispatch", func() { ctx.fn(borrowed(ctx.ctl)) })
}

// bindTrampoline is the native entry point for every bound function call.
// The context outlives the call; it is dropped with the instance.
func bindTrampoline(seq, req *byte, arg uintptr) {
	s := cstring.Decode(seq)
	r := cstring.Decode(req)

	h := resource.Handle(arg)
	v, ok := contexts.GetTyped(h, contextBind)
	if !ok {
		Logger().Warn("bind context not found", zap.Uint32("context", uint32(h)), zap.String("seq", s))
		return
	}
	ctx := v.(*bindContext)

	invoke("bind:"+ctx.name, func() { ctx.fn(s, r) })
}

// invoke runs a user callback. A panic must not unwind into the native event
// loop, so it is logged and swallowed.
func invoke(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("callback panicked",
				zap.String("callback", what),
				zap.String("panic", fmt.Sprint(r)),
				zap.StackSkip("stack", 1))
		}
	}()
	fn()
}

// dropContexts frees every context owned by c and reports how many.
func dropContexts(c *control) int {
	return contexts.RemoveIf(func(_ resource.Handle, _ resource.Kind, v any) bool {
		return ownerOf(v) == c
	})
}

// contextsOwnedBy counts the live contexts of c.
func contextsOwnedBy(c *control) int {
	n := 0
	contexts.Each(func(_ resource.Handle, _ resource.Kind, v any) bool {
		if ownerOf(v) == c {
			n++
		}
		return true
	})
	return n
}

func ownerOf(v any) *control {
	switch ctx := v.(type) {
	case *dispatchContext:
		return ctx.ctl
	case *bindContext:
		return ctx.ctl
	}
	return nil
}
