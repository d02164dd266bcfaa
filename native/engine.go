package native

// Handle identifies one native webview instance. It is a bare address with no
// lifetime of its own.
type Handle uintptr

// Window is an opaque native window reference (GtkWindow*, NSWindow*, HWND).
type Window uintptr

// DispatchFunc is the trampoline shape for Engine.Dispatch.
type DispatchFunc func(h Handle, arg uintptr)

// BindFunc is the trampoline shape for Engine.Bind.
// seq and req are NUL-terminated and owned by the engine for the duration of the call.
type BindFunc func(seq, req *byte, arg uintptr)

// Engine is the native function table.
//
// Run blocks on the event-loop thread until Terminate is observed. Dispatch,
// Terminate and Return may be called from any thread; everything else belongs
// on the event-loop thread.
type Engine interface {
	Create(debug bool, parent Window) Handle
	Run(h Handle)
	Terminate(h Handle)
	Destroy(h Handle)
	Navigate(h Handle, url *byte)
	SetTitle(h Handle, title *byte)
	SetSize(h Handle, width, height, hint int32)
	GetWindow(h Handle) Window
	Init(h Handle, js *byte)
	Eval(h Handle, js *byte)
	Dispatch(h Handle, fn DispatchFunc, arg uintptr)
	Bind(h Handle, name *byte, fn BindFunc, arg uintptr)
	Return(h Handle, seq *byte, status int32, result *byte)
}

// Symbol names of the C entry points, in Engine method order.
const (
	SymCreate    = "webview_create"
	SymRun       = "webview_run"
	SymTerminate = "webview_terminate"
	SymDestroy   = "webview_destroy"
	SymNavigate  = "webview_navigate"
	SymSetTitle  = "webview_set_title"
	SymSetSize   = "webview_set_size"
	SymGetWindow = "webview_get_window"
	SymInit      = "webview_init"
	SymEval      = "webview_eval"
	SymDispatch  = "webview_dispatch"
	SymBind      = "webview_bind"
	SymReturn    = "webview_return"
)
