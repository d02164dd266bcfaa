package headless

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/webview/cstring"
	"github.com/wippyai/webview/native"
	"github.com/wippyai/webview/resource"
)

const kindInstance resource.Kind = 1

// State is a snapshot of an instance.
type State struct {
	Title   string
	URL     string
	Width   int32
	Height  int32
	Hint    int32
	Parent  native.Window
	Debug   bool
	Running bool
	Pages   int // interpreters started so far
}

// Result is one value delivered through Return.
type Result struct {
	Seq    string
	Status int32
	Value  string
}

type job struct {
	run  func()
	stop bool
}

type binding struct {
	fn  native.BindFunc
	arg uintptr
}

type instance struct {
	mu        sync.Mutex
	state     State
	init      []string
	bindings  map[string]binding
	queue     []job
	wake      chan struct{}
	results   []Result
	seq       uint64
	running   bool
	destroyed bool

	// page is only touched by jobs, which run inside Run.
	page *page
}

func (in *instance) signal() {
	select {
	case in.wake <- struct{}{}:
	default:
	}
}

// enqueue appends a job unless the instance is destroyed. Callers hold in.mu.
func (in *instance) enqueue(j job) {
	if in.destroyed {
		return
	}
	in.queue = append(in.queue, j)
	in.signal()
}

// Option configures an Engine.
type Option func(*Engine)

// WithMemoryLimit caps the heap of every page interpreter, in bytes.
func WithMemoryLimit(bytes uintptr) Option {
	return func(e *Engine) { e.memoryLimit = bytes }
}

// Engine is a window-less native.Engine. The zero value is not usable; call New.
type Engine struct {
	instances   *resource.Table
	memoryLimit uintptr
}

var _ native.Engine = (*Engine)(nil)

// New creates an engine with no instances.
func New(opts ...Option) *Engine {
	e := &Engine{instances: resource.NewTable()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) lookup(h native.Handle) *instance {
	v, ok := e.instances.GetTyped(resource.Handle(h), kindInstance)
	if !ok {
		return nil
	}
	return v.(*instance)
}

// Create starts a new instance. It returns 0 only after the engine was closed.
func (e *Engine) Create(debug bool, parent native.Window) native.Handle {
	in := &instance{
		state:    State{Debug: debug, Parent: parent},
		bindings: make(map[string]binding),
		wake:     make(chan struct{}, 1),
	}
	h := native.Handle(e.instances.Insert(kindInstance, in))
	if h != 0 {
		Logger().Debug("headless instance created", zap.Uintptr("handle", uintptr(h)), zap.Bool("debug", debug))
	}
	return h
}

// Run executes queued jobs on the calling goroutine until Terminate.
func (e *Engine) Run(h native.Handle) {
	in := e.lookup(h)
	if in == nil {
		Logger().Warn("run on unknown instance", zap.Uintptr("handle", uintptr(h)))
		return
	}

	in.mu.Lock()
	if in.running || in.destroyed {
		running := in.running
		in.mu.Unlock()
		Logger().Warn("run refused", zap.Uintptr("handle", uintptr(h)), zap.Bool("running", running))
		return
	}
	in.running = true
	in.state.Running = true
	in.mu.Unlock()

	defer func() {
		in.mu.Lock()
		in.running = false
		in.state.Running = false
		closing := in.destroyed
		in.mu.Unlock()
		if closing {
			in.closePage()
		}
	}()

	for {
		in.mu.Lock()
		if len(in.queue) == 0 {
			in.mu.Unlock()
			<-in.wake
			continue
		}
		j := in.queue[0]
		in.queue = in.queue[1:]
		if j.stop {
			dropped := len(in.queue)
			in.queue = nil
			in.mu.Unlock()
			Logger().Debug("headless loop stopped",
				zap.Uintptr("handle", uintptr(h)),
				zap.Int("discarded", dropped))
			return
		}
		in.mu.Unlock()

		j.run()
		if in.page != nil {
			runMicrotasks(in.page.vm)
		}
	}
}

func (e *Engine) Terminate(h native.Handle) {
	if in := e.lookup(h); in != nil {
		in.mu.Lock()
		in.enqueue(job{stop: true})
		in.mu.Unlock()
	}
}

// Destroy releases the instance. Undelivered jobs are discarded.
func (e *Engine) Destroy(h native.Handle) {
	v, ok := e.instances.Remove(resource.Handle(h))
	if !ok {
		return
	}
	in := v.(*instance)

	in.mu.Lock()
	in.destroyed = true
	in.queue = nil
	in.bindings = nil
	running := in.running
	in.mu.Unlock()

	if !running {
		in.closePage()
	}
	Logger().Debug("headless instance destroyed", zap.Uintptr("handle", uintptr(h)))
}

func (e *Engine) Navigate(h native.Handle, url *byte) {
	u := cstring.Decode(url)
	in := e.lookup(h)
	if in == nil {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.state.URL = u
	in.enqueue(job{run: func() { e.load(h, in, u) }})
}

func (e *Engine) SetTitle(h native.Handle, title *byte) {
	t := cstring.Decode(title)
	if in := e.lookup(h); in != nil {
		in.mu.Lock()
		in.state.Title = t
		in.mu.Unlock()
	}
}

func (e *Engine) SetSize(h native.Handle, width, height, hint int32) {
	if in := e.lookup(h); in != nil {
		in.mu.Lock()
		in.state.Width, in.state.Height, in.state.Hint = width, height, hint
		in.mu.Unlock()
	}
}

// GetWindow returns a synthetic window reference; there is no window.
func (e *Engine) GetWindow(h native.Handle) native.Window {
	if e.lookup(h) == nil {
		return 0
	}
	return native.Window(h)
}

// Init records js for every page loaded from now on.
func (e *Engine) Init(h native.Handle, js *byte) {
	s := cstring.Decode(js)
	if in := e.lookup(h); in != nil {
		in.mu.Lock()
		in.init = append(in.init, s)
		in.mu.Unlock()
	}
}

func (e *Engine) Eval(h native.Handle, js *byte) {
	s := cstring.Decode(js)
	in := e.lookup(h)
	if in == nil {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.enqueue(job{run: func() {
		p := e.current(h, in)
		if p == nil {
			return
		}
		if err := p.exec(s); err != nil {
			Logger().Warn("script error", zap.Uintptr("handle", uintptr(h)), zap.Error(err))
		}
	}})
}

func (e *Engine) Dispatch(h native.Handle, fn native.DispatchFunc, arg uintptr) {
	in := e.lookup(h)
	if in == nil {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.enqueue(job{run: func() { fn(h, arg) }})
}

func (e *Engine) Bind(h native.Handle, name *byte, fn native.BindFunc, arg uintptr) {
	n := cstring.Decode(name)
	in := e.lookup(h)
	if in == nil {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.destroyed {
		return
	}
	in.bindings[n] = binding{fn: fn, arg: arg}
	in.enqueue(job{run: func() {
		if in.page != nil {
			in.page.bind(n)
		}
	}})
}

// Return records the result and settles the matching promise in the current
// page. It may be called from any goroutine.
func (e *Engine) Return(h native.Handle, seq *byte, status int32, result *byte) {
	s, r := cstring.Decode(seq), cstring.Decode(result)
	in := e.lookup(h)
	if in == nil {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.results = append(in.results, Result{Seq: s, Status: status, Value: r})
	in.enqueue(job{run: func() {
		if in.page != nil {
			in.page.settle(s, status, r)
		}
	}})
}

// load replaces the current page with a fresh interpreter for url.
func (e *Engine) load(h native.Handle, in *instance, url string) {
	in.closePage()

	in.mu.Lock()
	scripts := append([]string(nil), in.init...)
	names := make([]string, 0, len(in.bindings))
	for n := range in.bindings {
		names = append(names, n)
	}
	in.mu.Unlock()

	p, err := newPage(url, e.memoryLimit, in.invoker(h))
	if err != nil {
		Logger().Error("page load failed", zap.String("url", url), zap.Error(err))
		return
	}
	p.setup(names, scripts)
	in.page = p

	in.mu.Lock()
	in.state.Pages++
	in.mu.Unlock()

	Logger().Debug("page loaded", zap.Uintptr("handle", uintptr(h)), zap.String("url", url))
}

// current returns the page, loading about:blank when nothing was navigated yet.
func (e *Engine) current(h native.Handle, in *instance) *page {
	if in.page == nil {
		e.load(h, in, "about:blank")
	}
	return in.page
}

func (in *instance) closePage() {
	if in.page != nil {
		in.page.close()
		in.page = nil
	}
}

// invoker returns the function bound calls from script are routed through.
func (in *instance) invoker(h native.Handle) func(name, req string) string {
	return func(name, req string) string {
		in.mu.Lock()
		b, ok := in.bindings[name]
		if ok {
			in.seq++
		}
		seq := in.seq
		in.mu.Unlock()
		if !ok {
			return ""
		}

		id := formatSeq(seq)
		s, err := cstring.Encode("seq", id)
		if err != nil {
			return ""
		}
		r, err := cstring.Encode("req", req)
		if err != nil {
			Logger().Warn("bound call dropped", zap.String("name", name), zap.Error(err))
			return ""
		}
		b.fn(s.Ptr(), r.Ptr(), b.arg)
		return id
	}
}

// State returns a snapshot of h.
func (e *Engine) State(h native.Handle) (State, bool) {
	in := e.lookup(h)
	if in == nil {
		return State{}, false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state, true
}

// Results lists the values delivered to h through Return, in order.
func (e *Engine) Results(h native.Handle) []Result {
	in := e.lookup(h)
	if in == nil {
		return nil
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]Result(nil), in.results...)
}

// Result returns the value delivered for seq.
func (e *Engine) Result(h native.Handle, seq string) (Result, bool) {
	for _, r := range e.Results(h) {
		if r.Seq == seq {
			return r, true
		}
	}
	return Result{}, false
}

// Len returns the number of live instances.
func (e *Engine) Len() int {
	return e.instances.Len()
}

// Close destroys every remaining instance. Create fails afterwards.
func (e *Engine) Close() error {
	var handles []native.Handle
	e.instances.Each(func(h resource.Handle, _ resource.Kind, _ any) bool {
		handles = append(handles, native.Handle(h))
		return true
	})
	for _, h := range handles {
		e.Destroy(h)
	}
	return e.instances.Close()
}
