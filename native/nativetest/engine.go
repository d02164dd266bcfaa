// Package nativetest provides an in-memory native.Engine for tests.
//
// The engine records every call, keeps a FIFO dispatch queue per instance and
// lets tests play the part of embedded content by invoking bound functions
// directly. It never holds its lock while running a callback, so callbacks
// may call back into the engine.
package nativetest

import (
	"runtime"
	"sync"

	"github.com/wippyai/webview/cstring"
	"github.com/wippyai/webview/native"
)

// Call is one recorded engine call. String arguments are recorded decoded.
type Call struct {
	Op     string
	Handle native.Handle
	Args   []any
}

// Result is one delivered Return.
type Result struct {
	Seq    string
	Status int32
	Value  string
}

// State is a snapshot of an instance's window state.
type State struct {
	Title     string
	URL       string
	Init      []string
	Evals     []string
	Width     int32
	Height    int32
	Hint      int32
	Parent    native.Window
	Debug     bool
	Running   bool
	Destroyed bool
}

type job struct {
	fn   native.DispatchFunc
	arg  uintptr
	stop bool
}

type binding struct {
	fn  native.BindFunc
	arg uintptr
}

type instance struct {
	state    State
	queue    []job
	wake     chan struct{}
	bindings map[string]binding
	returns  []Result
	window   native.Window
}

// Engine is a recording native.Engine.
type Engine struct {
	mu        sync.Mutex
	next      native.Handle
	calls     []Call
	instances map[native.Handle]*instance
}

var _ native.Engine = (*Engine)(nil)

// New creates an empty engine.
func New() *Engine {
	return &Engine{
		next:      0x1000,
		instances: make(map[native.Handle]*instance),
	}
}

func (e *Engine) record(op string, h native.Handle, args ...any) *instance {
	e.calls = append(e.calls, Call{Op: op, Handle: h, Args: args})
	return e.instances[h]
}

func (e *Engine) Create(debug bool, parent native.Window) native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.next += 0x10
	h := e.next
	e.instances[h] = &instance{
		state:    State{Debug: debug, Parent: parent},
		wake:     make(chan struct{}, 1),
		bindings: make(map[string]binding),
		window:   native.Window(h + 1),
	}
	e.record(native.SymCreate, h, debug, parent)
	return h
}

// Run drains the dispatch queue on the calling goroutine until a Terminate
// marker is reached. Jobs queued behind the marker are discarded.
func (e *Engine) Run(h native.Handle) {
	e.mu.Lock()
	in := e.record(native.SymRun, h)
	if in == nil {
		e.mu.Unlock()
		return
	}
	in.state.Running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		in.state.Running = false
		e.mu.Unlock()
	}()

	for {
		e.mu.Lock()
		if len(in.queue) == 0 {
			e.mu.Unlock()
			<-in.wake
			continue
		}
		j := in.queue[0]
		in.queue = in.queue[1:]
		if j.stop {
			in.queue = nil
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()

		j.fn(h, j.arg)
	}
}

func (e *Engine) Terminate(h native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.record(native.SymTerminate, h)
	if in == nil || in.state.Destroyed {
		return
	}
	in.queue = append(in.queue, job{stop: true})
	in.signal()
}

func (e *Engine) Destroy(h native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.record(native.SymDestroy, h)
	if in == nil {
		return
	}
	in.state.Destroyed = true
	in.queue = nil
	in.bindings = nil
}

func (e *Engine) Navigate(h native.Handle, url *byte) {
	u := cstring.Decode(url)

	e.mu.Lock()
	defer e.mu.Unlock()

	if in := e.record(native.SymNavigate, h, u); in != nil {
		in.state.URL = u
	}
}

func (e *Engine) SetTitle(h native.Handle, title *byte) {
	s := cstring.Decode(title)

	e.mu.Lock()
	defer e.mu.Unlock()

	if in := e.record(native.SymSetTitle, h, s); in != nil {
		in.state.Title = s
	}
}

func (e *Engine) SetSize(h native.Handle, width, height, hint int32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in := e.record(native.SymSetSize, h, width, height, hint); in != nil {
		in.state.Width, in.state.Height, in.state.Hint = width, height, hint
	}
}

func (e *Engine) GetWindow(h native.Handle) native.Window {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in := e.record(native.SymGetWindow, h); in != nil {
		return in.window
	}
	return 0
}

func (e *Engine) Init(h native.Handle, js *byte) {
	s := cstring.Decode(js)

	e.mu.Lock()
	defer e.mu.Unlock()

	if in := e.record(native.SymInit, h, s); in != nil {
		in.state.Init = append(in.state.Init, s)
	}
}

func (e *Engine) Eval(h native.Handle, js *byte) {
	s := cstring.Decode(js)

	e.mu.Lock()
	defer e.mu.Unlock()

	if in := e.record(native.SymEval, h, s); in != nil {
		in.state.Evals = append(in.state.Evals, s)
	}
}

func (e *Engine) Dispatch(h native.Handle, fn native.DispatchFunc, arg uintptr) {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.record(native.SymDispatch, h, arg)
	if in == nil || in.state.Destroyed {
		return
	}
	in.queue = append(in.queue, job{fn: fn, arg: arg})
	in.signal()
}

func (e *Engine) Bind(h native.Handle, name *byte, fn native.BindFunc, arg uintptr) {
	n := cstring.Decode(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.record(native.SymBind, h, n, arg)
	if in == nil || in.state.Destroyed {
		return
	}
	in.bindings[n] = binding{fn: fn, arg: arg}
}

func (e *Engine) Return(h native.Handle, seq *byte, status int32, result *byte) {
	s, r := cstring.Decode(seq), cstring.Decode(result)

	e.mu.Lock()
	defer e.mu.Unlock()

	if in := e.record(native.SymReturn, h, s, status, r); in != nil {
		in.returns = append(in.returns, Result{Seq: s, Status: status, Value: r})
	}
}

func (in *instance) signal() {
	select {
	case in.wake <- struct{}{}:
	default:
	}
}

// Invoke plays embedded content calling the bound function name.
// It reports false when nothing is bound under name.
func (e *Engine) Invoke(h native.Handle, name, seq, req string) bool {
	e.mu.Lock()
	in := e.instances[h]
	if in == nil || in.bindings == nil {
		e.mu.Unlock()
		return false
	}
	b, ok := in.bindings[name]
	e.mu.Unlock()
	if !ok {
		return false
	}

	s, err := cstring.Encode("seq", seq)
	if err != nil {
		panic(err)
	}
	r, err := cstring.Encode("req", req)
	if err != nil {
		panic(err)
	}
	b.fn(s.Ptr(), r.Ptr(), b.arg)
	runtime.KeepAlive(s)
	runtime.KeepAlive(r)
	return true
}

// Drain runs every queued dispatch up to the first Terminate marker on the
// calling goroutine and reports how many ran.
func (e *Engine) Drain(h native.Handle) int {
	n := 0
	for {
		e.mu.Lock()
		in := e.instances[h]
		if in == nil || len(in.queue) == 0 || in.queue[0].stop {
			e.mu.Unlock()
			return n
		}
		j := in.queue[0]
		in.queue = in.queue[1:]
		e.mu.Unlock()

		j.fn(h, j.arg)
		n++
	}
}

// Pending returns the number of queued dispatches, excluding Terminate markers.
func (e *Engine) Pending(h native.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	if in := e.instances[h]; in != nil {
		for _, j := range in.queue {
			if !j.stop {
				n++
			}
		}
	}
	return n
}

// Calls returns a copy of the call log.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Ops returns the operation names of the call log, optionally filtered by handle.
func (e *Engine) Ops(h native.Handle) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ops []string
	for _, c := range e.calls {
		if h == 0 || c.Handle == h {
			ops = append(ops, c.Op)
		}
	}
	return ops
}

// Count returns how many times op was called.
func (e *Engine) Count(op string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, c := range e.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Returns lists the results delivered to h.
func (e *Engine) Returns(h native.Handle) []Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in := e.instances[h]; in != nil {
		return append([]Result(nil), in.returns...)
	}
	return nil
}

// State returns a snapshot of h's window state.
func (e *Engine) State(h native.Handle) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.instances[h]
	if in == nil {
		return State{}, false
	}
	s := in.state
	s.Init = append([]string(nil), s.Init...)
	s.Evals = append([]string(nil), s.Evals...)
	return s, true
}

// Reset clears the call log.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}
