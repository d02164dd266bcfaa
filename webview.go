package webview

import (
	stderrors "errors"
	"math"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/webview/cstring"
	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/native"
)

// Webview is an owning reference to one native webview instance.
//
// Each *Webview returned by New, Clone or Weak.Upgrade must be closed exactly
// once. Views handed to Dispatch callbacks are borrowed: they share the
// caller's reference and their Close does nothing.
type Webview struct {
	ctl     *control
	ref     *reference // nil for borrowed views
	cleanup runtime.Cleanup
}

type reference struct {
	released atomic.Bool
}

type options struct {
	debug  bool
	parent native.Window
}

// Option configures New.
type Option func(*options)

// WithDebug enables the engine's developer tools.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = debug }
}

// WithParent embeds the webview into an existing native window.
// The window reference is passed through unmodified.
func WithParent(w native.Window) Option {
	return func(o *options) { o.parent = w }
}

// New creates a native instance and returns the first owning reference to it.
func New(engine native.Engine, opts ...Option) (*Webview, error) {
	if engine == nil {
		return nil, errors.InvalidInput(errors.PhaseHandle, "nil native engine")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	h := engine.Create(o.debug, o.parent)
	if h == 0 {
		return nil, errors.Native(native.SymCreate, 0)
	}

	Logger().Debug("engine created",
		zap.Uintptr("handle", uintptr(h)),
		zap.Bool("debug", o.debug))

	return newOwner(newControl(engine, h)), nil
}

// newOwner wraps a strong reference the caller already holds.
func newOwner(ctl *control) *Webview {
	w := &Webview{ctl: ctl, ref: &reference{}}
	w.cleanup = runtime.AddCleanup(w, releaseLeaked, leak{ctl: ctl, ref: w.ref})
	return w
}

type leak struct {
	ctl *control
	ref *reference
}

func releaseLeaked(l leak) {
	if !l.ref.released.CompareAndSwap(false, true) {
		return
	}
	Logger().Warn("webview reference garbage collected without Close",
		zap.Uintptr("handle", uintptr(l.ctl.handle)))
	l.ctl.release()
}

// borrowed returns a view sharing a reference held elsewhere.
func borrowed(ctl *control) *Webview {
	return &Webview{ctl: ctl}
}

// live returns the control block if this reference may still be used.
func (w *Webview) live(phase errors.Phase, op string) (*control, error) {
	if w == nil || w.ctl == nil {
		return nil, errors.HandleExpired(phase, op)
	}
	if w.ref != nil && w.ref.released.Load() {
		return nil, errors.HandleExpired(phase, op)
	}
	if w.ctl.destroyed.Load() {
		return nil, errors.HandleExpired(phase, op)
	}
	return w.ctl, nil
}

// encode converts text for op, tagging encoding errors with the operation name.
func encode(field, op, text string) (cstring.Buffer, error) {
	buf, err := cstring.Encode(field, text)
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			e.Op = op
		}
		return nil, err
	}
	return buf, nil
}

// Handle returns the native instance this reference points at.
func (w *Webview) Handle() native.Handle {
	return w.ctl.handle
}

// Clone returns a new owning reference to the same instance.
func (w *Webview) Clone() (*Webview, error) {
	ctl, err := w.live(errors.PhaseHandle, "clone")
	if err != nil {
		return nil, err
	}
	if !ctl.acquire() {
		return nil, errors.HandleExpired(errors.PhaseHandle, "clone")
	}
	return newOwner(ctl), nil
}

// Downgrade returns a weak observer that does not keep the instance alive.
func (w *Webview) Downgrade() Weak {
	return Weak{ctl: w.ctl}
}

// Close releases this reference. Closing the last reference terminates and
// destroys the native instance. Close is idempotent and a no-op on borrowed views.
func (w *Webview) Close() error {
	if w == nil || w.ref == nil {
		return nil
	}
	if !w.ref.released.CompareAndSwap(false, true) {
		return nil
	}
	w.cleanup.Stop()
	w.ctl.release()
	return nil
}

// Run navigates to the URL recorded by Navigate, if any, and blocks running
// the native event loop until Terminate. It must be called on the event-loop thread.
func (w *Webview) Run() error {
	ctl, err := w.live(errors.PhaseRun, native.SymRun)
	if err != nil {
		return err
	}
	url, ok := ctl.enterRun()
	if !ok {
		return errors.HandleExpired(errors.PhaseRun, native.SymRun)
	}
	defer ctl.exitRun()

	if url != nil {
		ctl.engine.Navigate(ctl.handle, url.Ptr())
		runtime.KeepAlive(url)
	}

	Logger().Debug("event loop starting", zap.Uintptr("handle", uintptr(ctl.handle)))
	ctl.engine.Run(ctl.handle)
	Logger().Debug("event loop stopped", zap.Uintptr("handle", uintptr(ctl.handle)))
	return nil
}

// Terminate asks the event loop to stop. Safe from any goroutine and
// repeatable.
func (w *Webview) Terminate() error {
	ctl, err := w.live(errors.PhaseHandle, native.SymTerminate)
	if err != nil {
		return err
	}
	ctl.engine.Terminate(ctl.handle)
	return nil
}

// Navigate loads url. Before Run the URL is recorded and loaded when the
// loop starts; the last call wins.
func (w *Webview) Navigate(url string) error {
	ctl, err := w.live(errors.PhaseNative, native.SymNavigate)
	if err != nil {
		return err
	}
	buf, err := encode("url", native.SymNavigate, url)
	if err != nil {
		return err
	}
	if ctl.deferNavigate(buf) {
		return nil
	}
	ctl.engine.Navigate(ctl.handle, buf.Ptr())
	runtime.KeepAlive(buf)
	return nil
}

// SetTitle sets the native window title.
func (w *Webview) SetTitle(title string) error {
	ctl, err := w.live(errors.PhaseNative, native.SymSetTitle)
	if err != nil {
		return err
	}
	buf, err := encode("title", native.SymSetTitle, title)
	if err != nil {
		return err
	}
	ctl.engine.SetTitle(ctl.handle, buf.Ptr())
	runtime.KeepAlive(buf)
	return nil
}

// SetSize resizes the window and sets its sizing policy.
func (w *Webview) SetSize(width, height int, hint SizeHint) error {
	ctl, err := w.live(errors.PhaseNative, native.SymSetSize)
	if err != nil {
		return err
	}
	if !hint.Valid() {
		return errors.InvalidEnum(errors.PhaseNative, []string{"hint"}, int32(hint), "SizeHint")
	}
	if width < 0 || height < 0 || width > math.MaxInt32 || height > math.MaxInt32 {
		return errors.New(errors.PhaseNative, errors.KindInvalidInput).
			Op(native.SymSetSize).
			Value([2]int{width, height}).
			Detail("size %dx%d out of range", width, height).
			Build()
	}
	ctl.engine.SetSize(ctl.handle, int32(width), int32(height), int32(hint))
	return nil
}

// Window returns the native window reference. Ownership stays with the engine.
func (w *Webview) Window() (native.Window, error) {
	ctl, err := w.live(errors.PhaseNative, native.SymGetWindow)
	if err != nil {
		return 0, err
	}
	return ctl.engine.GetWindow(ctl.handle), nil
}

// Init injects js into every page before window.onload, starting with the next navigation.
func (w *Webview) Init(js string) error {
	ctl, err := w.live(errors.PhaseNative, native.SymInit)
	if err != nil {
		return err
	}
	buf, err := encode("js", native.SymInit, js)
	if err != nil {
		return err
	}
	ctl.engine.Init(ctl.handle, buf.Ptr())
	runtime.KeepAlive(buf)
	return nil
}

// Eval runs js in the current page. The result is discarded; use a binding to
// send values back.
func (w *Webview) Eval(js string) error {
	ctl, err := w.live(errors.PhaseNative, native.SymEval)
	if err != nil {
		return err
	}
	buf, err := encode("js", native.SymEval, js)
	if err != nil {
		return err
	}
	ctl.engine.Eval(ctl.handle, buf.Ptr())
	runtime.KeepAlive(buf)
	return nil
}

// Return settles the pending call seq of a bound function. Status 0 resolves
// the JavaScript promise with result, any other status rejects it. result
// must be JSON. Safe from any goroutine.
func (w *Webview) Return(seq string, status int32, result string) error {
	ctl, err := w.live(errors.PhaseReturn, native.SymReturn)
	if err != nil {
		return err
	}
	s, err := encode("seq", native.SymReturn, seq)
	if err != nil {
		return err
	}
	r, err := encode("result", native.SymReturn, result)
	if err != nil {
		return err
	}
	ctl.engine.Return(ctl.handle, s.Ptr(), status, r.Ptr())
	runtime.KeepAlive(s)
	runtime.KeepAlive(r)
	return nil
}
