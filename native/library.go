//go:build darwin || freebsd || linux || windows

package native

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/wippyai/webview/errors"
)

// Library is an Engine backed by a dynamically loaded libwebview.
type Library struct {
	path string

	create, run, terminate, destroy uintptr
	navigate, setTitle, setSize     uintptr
	getWindow, init, eval           uintptr
	dispatch, bind, ret             uintptr

	mu        sync.Mutex
	callbacks map[uintptr]uintptr
}

var _ Engine = (*Library)(nil)

// Load opens the shared library at path and resolves every entry point.
func Load(path string) (*Library, error) {
	handle, err := openLibrary(path)
	if err != nil {
		return nil, errors.Load("open "+path, err)
	}

	l := &Library{
		path:      path,
		callbacks: make(map[uintptr]uintptr),
	}
	syms := []struct {
		name string
		dst  *uintptr
	}{
		{SymCreate, &l.create},
		{SymRun, &l.run},
		{SymTerminate, &l.terminate},
		{SymDestroy, &l.destroy},
		{SymNavigate, &l.navigate},
		{SymSetTitle, &l.setTitle},
		{SymSetSize, &l.setSize},
		{SymGetWindow, &l.getWindow},
		{SymInit, &l.init},
		{SymEval, &l.eval},
		{SymDispatch, &l.dispatch},
		{SymBind, &l.bind},
		{SymReturn, &l.ret},
	}
	for _, s := range syms {
		ptr, err := lookupSymbol(handle, s.name)
		if err != nil || ptr == 0 {
			nf := errors.NotFound(errors.PhaseLoad, "symbol", s.name)
			nf.Cause = err
			return nil, nf
		}
		*s.dst = ptr
	}
	return l, nil
}

// LoadDefault searches $WEBVIEW_PATH and the executable directory for the
// platform library, then falls back to the system loader search path.
func LoadDefault() (*Library, error) {
	for _, dir := range SearchPaths() {
		fn := filepath.Join(dir, LibraryName)
		if _, err := os.Stat(fn); err == nil {
			return Load(fn)
		}
	}
	return Load(LibraryName)
}

// SearchPaths returns the directories LoadDefault checks, in order.
func SearchPaths() []string {
	var paths []string
	if p := os.Getenv("WEBVIEW_PATH"); p != "" {
		paths = append(paths, p)
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append(paths, dir)
		paths = append(paths, platformPaths(dir)...)
	}
	return paths
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

func (l *Library) Create(debug bool, parent Window) Handle {
	var d uintptr
	if debug {
		d = 1
	}
	r, _, _ := purego.SyscallN(l.create, d, uintptr(parent))
	return Handle(r)
}

func (l *Library) Run(h Handle) {
	purego.SyscallN(l.run, uintptr(h))
}

func (l *Library) Terminate(h Handle) {
	purego.SyscallN(l.terminate, uintptr(h))
}

func (l *Library) Destroy(h Handle) {
	purego.SyscallN(l.destroy, uintptr(h))
}

func (l *Library) Navigate(h Handle, url *byte) {
	purego.SyscallN(l.navigate, uintptr(h), uintptr(unsafe.Pointer(url)))
}

func (l *Library) SetTitle(h Handle, title *byte) {
	purego.SyscallN(l.setTitle, uintptr(h), uintptr(unsafe.Pointer(title)))
}

func (l *Library) SetSize(h Handle, width, height, hint int32) {
	purego.SyscallN(l.setSize, uintptr(h), uintptr(width), uintptr(height), uintptr(hint))
}

func (l *Library) GetWindow(h Handle) Window {
	r, _, _ := purego.SyscallN(l.getWindow, uintptr(h))
	return Window(r)
}

func (l *Library) Init(h Handle, js *byte) {
	purego.SyscallN(l.init, uintptr(h), uintptr(unsafe.Pointer(js)))
}

func (l *Library) Eval(h Handle, js *byte) {
	purego.SyscallN(l.eval, uintptr(h), uintptr(unsafe.Pointer(js)))
}

// Dispatch schedules fn on the event loop. fn must be a top-level function:
// C callbacks are cached by code pointer and never freed.
func (l *Library) Dispatch(h Handle, fn DispatchFunc, arg uintptr) {
	cb := l.callback(fn, func() uintptr {
		return purego.NewCallback(func(w, a uintptr) uintptr {
			fn(Handle(w), a)
			return 0
		})
	})
	purego.SyscallN(l.dispatch, uintptr(h), cb, arg)
}

// Bind registers fn under name. fn must be a top-level function, as for Dispatch.
func (l *Library) Bind(h Handle, name *byte, fn BindFunc, arg uintptr) {
	cb := l.callback(fn, func() uintptr {
		return purego.NewCallback(func(seq, req, a uintptr) uintptr {
			fn((*byte)(unsafe.Pointer(seq)), (*byte)(unsafe.Pointer(req)), a)
			return 0
		})
	})
	purego.SyscallN(l.bind, uintptr(h), uintptr(unsafe.Pointer(name)), cb, arg)
}

func (l *Library) Return(h Handle, seq *byte, status int32, result *byte) {
	purego.SyscallN(l.ret, uintptr(h), uintptr(unsafe.Pointer(seq)), uintptr(status), uintptr(unsafe.Pointer(result)))
}

// callback returns the C-callable pointer for fn, creating it on first use.
// purego supports a bounded number of callbacks, so they are created once per trampoline.
func (l *Library) callback(fn any, mk func() uintptr) uintptr {
	key := reflect.ValueOf(fn).Pointer()

	l.mu.Lock()
	defer l.mu.Unlock()

	if cb, ok := l.callbacks[key]; ok {
		return cb
	}
	cb := mk()
	l.callbacks[key] = cb
	return cb
}
